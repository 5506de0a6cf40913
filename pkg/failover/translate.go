package failover

import "github.com/downfa11-org/escapebridge/pkg/types"

// transformSendResult maps a remote send outcome onto the local put
// vocabulary. The mapping is total: an absent result or an unknown
// status fails closed to PutToRemoteBrokerFail. Every mapped result is
// marked remote and never carries append info.
func transformSendResult(sendResult *types.SendResult) *types.PutResult {
	if sendResult == nil {
		return &types.PutResult{Status: types.PutToRemoteBrokerFail, Remote: true}
	}

	switch sendResult.Status {
	case types.SendOK:
		return &types.PutResult{Status: types.PutOK, Remote: true}
	case types.SendSlaveNotAvailable:
		return &types.PutResult{Status: types.PutSlaveNotAvailable, Remote: true}
	case types.SendFlushDiskTimeout:
		return &types.PutResult{Status: types.PutFlushDiskTimeout, Remote: true}
	case types.SendFlushSlaveTimeout:
		return &types.PutResult{Status: types.PutFlushSlaveTimeout, Remote: true}
	default:
		return &types.PutResult{Status: types.PutToRemoteBrokerFail, Remote: true}
	}
}
