package failover

import (
	"github.com/downfa11-org/escapebridge/pkg/types"
	"github.com/downfa11-org/escapebridge/util"
)

// RoutingKey derives the queue-selection key for a message. It is never
// persisted; equal keys must select equal queues.
func RoutingKey(msg *types.MessageExt) string {
	return msg.Topic + msg.StoreHost
}

// SelectQueueByHash picks queues[hash(arg) % len(queues)]. util.Hash is
// non-negative, so the index is always in range for a non-empty list.
func SelectQueueByHash(queues []types.MessageQueue, msg *types.MessageExt, arg interface{}) types.MessageQueue {
	key, _ := arg.(string)
	index := util.Hash(key) % len(queues)
	return queues[index]
}
