package failover

import (
	"testing"

	"github.com/downfa11-org/escapebridge/pkg/types"
)

func TestTransformSendResultNil(t *testing.T) {
	result := transformSendResult(nil)

	if result.Status != types.PutToRemoteBrokerFail {
		t.Errorf("Absent outcome must map to PUT_TO_REMOTE_BROKER_FAIL, got %v", result.Status)
	}
	if !result.Remote {
		t.Errorf("Translated result must be marked remote")
	}
}

func TestTransformSendResultMapping(t *testing.T) {
	cases := []struct {
		send types.SendStatus
		want types.PutStatus
	}{
		{types.SendOK, types.PutOK},
		{types.SendSlaveNotAvailable, types.PutSlaveNotAvailable},
		{types.SendFlushDiskTimeout, types.PutFlushDiskTimeout},
		{types.SendFlushSlaveTimeout, types.PutFlushSlaveTimeout},
		{types.SendStatus(-1), types.PutToRemoteBrokerFail},
		{types.SendStatus(42), types.PutToRemoteBrokerFail},
	}

	for _, c := range cases {
		result := transformSendResult(&types.SendResult{Status: c.send})
		if result.Status != c.want {
			t.Errorf("%v translated to %v, want %v", c.send, result.Status, c.want)
		}
		if !result.Remote {
			t.Errorf("%v translated without remote mark", c.send)
		}
		if result.AppendResult != nil {
			t.Errorf("%v translated with append info", c.send)
		}
	}
}
