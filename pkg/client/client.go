package client

import "github.com/downfa11-org/escapebridge/pkg/types"

// QueueSelector picks the destination queue for one send. Selection must
// be deterministic for a given arg and queue list so that re-forwarding
// the same logical message lands on the same queue.
type QueueSelector func(queues []types.MessageQueue, msg *types.MessageExt, arg interface{}) types.MessageQueue

// Producer sends messages to a remote broker on behalf of this node.
// Implementations make exactly one attempt per call; retry policy, if
// any, belongs to the caller.
type Producer interface {
	Start(nameServers []string) error
	Shutdown()

	Send(msg *types.MessageExt) (*types.SendResult, error)

	// SendAsync either returns a non-nil error (callback never invoked)
	// or invokes the callback exactly once from the client's own
	// goroutine.
	SendAsync(msg *types.MessageExt, callback func(*types.SendResult, error)) error

	SendWithSelector(msg *types.MessageExt, selector QueueSelector, arg interface{}) (*types.SendResult, error)
}

// PullConsumer reads messages from a remote broker queue.
type PullConsumer interface {
	Start(nameServers []string) error
	Shutdown()

	Pull(mq types.MessageQueue, subExpr string, offset uint64, maxNums int) (*types.PullResult, error)
}
