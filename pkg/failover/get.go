package failover

import (
	"github.com/downfa11-org/escapebridge/pkg/metrics"
	"github.com/downfa11-org/escapebridge/pkg/types"
	"github.com/downfa11-org/escapebridge/util"
)

// GetMessage reads one message at (topic, queueID, offset), from the
// local store registered under brokerName when reachable, otherwise from
// the remote broker. Nil means absent; reads never propagate a fault.
func (eb *EscapeBridge) GetMessage(topic string, offset uint64, queueID int, brokerName string) *types.MessageExt {
	if ms := eb.locator.StoreByBrokerName(brokerName); ms != nil {
		result := ms.GetMessage(eb.consumerGroup, topic, queueID, offset, 1, "")
		if result == nil {
			util.Warn("get message result is nil, group %s, topic %s, offset %d, queueId %d",
				eb.consumerGroup, topic, offset, queueID)
			return nil
		}

		list := eb.decodeMsgList(result)
		if len(list) == 0 {
			util.Warn("can not get msg, topic %s, offset %d, queueId %d", topic, offset, queueID)
			return nil
		}
		return list[0]
	}

	if eb.consumer != nil {
		return eb.getMessageFromRemote(topic, offset, queueID, brokerName)
	}

	return nil
}

// decodeMsgList turns a raw read batch into messages. Undecodable
// buffers are skipped, the batch is released exactly once, and each
// decoded message gets the store-assigned queue offset of its index,
// not the offset embedded in the serialized bytes.
func (eb *EscapeBridge) decodeMsgList(result *types.GetMessageResult) []*types.MessageExt {
	defer result.Release()

	found := make([]*types.MessageExt, 0, len(result.BufferList))
	for i, buf := range result.BufferList {
		if buf == nil {
			util.Error("message buffer at index %d is nil", i)
			metrics.DecodeSkipsTotal.Inc()
			continue
		}

		msg, err := util.DecodeMessageExt(buf)
		if err != nil {
			util.Error("decode message at index %d failed: %v", i, err)
			metrics.DecodeSkipsTotal.Inc()
			continue
		}

		msg.QueueOffset = result.QueueOffsets[i]
		found = append(found, msg)
	}

	return found
}

func (eb *EscapeBridge) getMessageFromRemote(topic string, offset uint64, queueID int, brokerName string) *types.MessageExt {
	metrics.RemotePullTotal.Inc()

	mq := types.MessageQueue{Topic: topic, BrokerName: brokerName, QueueID: queueID}
	pullResult, err := eb.consumer.Pull(mq, "*", offset, 1)
	if err != nil {
		util.Error("get message from remote failed: %v", err)
		metrics.RemotePullFailures.Inc()
		return nil
	}

	if pullResult.Status == types.PullFound && len(pullResult.MsgFoundList) > 0 {
		return pullResult.MsgFoundList[0]
	}

	metrics.RemotePullFailures.Inc()
	return nil
}
