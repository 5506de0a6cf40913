package store

import "github.com/downfa11-org/escapebridge/pkg/types"

// MessageStore is the write/read surface of a local persistence engine.
// The engine itself lives outside this module; this interface is the
// boundary the escape bridge delegates to when a local store can serve
// the call.
type MessageStore interface {
	PutMessage(msg *types.MessageExt) *types.PutResult
	AsyncPutMessage(msg *types.MessageExt) <-chan *types.PutResult
	GetMessage(group, topic string, queueID int, offset uint64, maxCount int, filter string) *types.GetMessageResult
}

// StoreLocator answers, per call, whether a local store can currently
// serve a request. Broker roles change at runtime, so callers must not
// cache the answer.
type StoreLocator interface {
	// PeekMaster returns the authoritative local store, or nil when the
	// node is not currently acting for a master store.
	PeekMaster() MessageStore

	// StoreByBrokerName returns the locally reachable store registered
	// under the given broker name, or nil.
	StoreByBrokerName(brokerName string) MessageStore
}
