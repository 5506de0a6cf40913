package store

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/downfa11-org/escapebridge/pkg/types"
	"github.com/downfa11-org/escapebridge/util"
)

// MemoryStore is an in-memory MessageStore used by the demo broker and
// tests. It assigns queue offsets the way a real store would and hands
// out read batches whose release is tracked, so callers exercise the
// same ownership rules the disk engine enforces.
type MemoryStore struct {
	brokerName string

	mu     sync.RWMutex
	queues map[string][][]byte

	inflightReads atomic.Int64
}

func NewMemoryStore(brokerName string) *MemoryStore {
	return &MemoryStore{
		brokerName: brokerName,
		queues:     make(map[string][][]byte),
	}
}

func queueKey(topic string, queueID int) string {
	return fmt.Sprintf("%s-%d", topic, queueID)
}

func (s *MemoryStore) PutMessage(msg *types.MessageExt) *types.PutResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := queueKey(msg.Topic, msg.QueueID)
	queueOffset := uint64(len(s.queues[key]))

	stored := *msg
	stored.QueueOffset = queueOffset
	s.queues[key] = append(s.queues[key], util.EncodeMessageExt(&stored))

	util.Debug("stored message on %s at offset %d", key, queueOffset)

	return &types.PutResult{
		Status: types.PutOK,
		AppendResult: &types.AppendResult{
			MsgID:       fmt.Sprintf("%s-%016x", s.brokerName, util.GenerateID(string(msg.Payload))),
			QueueID:     msg.QueueID,
			QueueOffset: queueOffset,
		},
	}
}

func (s *MemoryStore) AsyncPutMessage(msg *types.MessageExt) <-chan *types.PutResult {
	future := make(chan *types.PutResult, 1)
	future <- s.PutMessage(msg)
	return future
}

// GetMessage returns up to maxCount buffers starting at offset, or nil
// when the queue has never been written. The returned batch must be
// released by the caller.
func (s *MemoryStore) GetMessage(group, topic string, queueID int, offset uint64, maxCount int, filter string) *types.GetMessageResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	buffers, ok := s.queues[queueKey(topic, queueID)]
	if !ok {
		return nil
	}

	result := &types.GetMessageResult{
		ReleaseFunc: func() { s.inflightReads.Add(-1) },
	}
	s.inflightReads.Add(1)

	for i := offset; i < uint64(len(buffers)) && len(result.BufferList) < maxCount; i++ {
		buf := make([]byte, len(buffers[i]))
		copy(buf, buffers[i])
		result.BufferList = append(result.BufferList, buf)
		result.QueueOffsets = append(result.QueueOffsets, i)
	}

	return result
}

// InflightReads reports read batches handed out but not yet released.
func (s *MemoryStore) InflightReads() int64 {
	return s.inflightReads.Load()
}
