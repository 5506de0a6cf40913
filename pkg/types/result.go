package types

import "sync"

// PutStatus is the result vocabulary of a store write, local or escaped.
type PutStatus int

const (
	PutOK PutStatus = iota
	PutFlushDiskTimeout
	PutFlushSlaveTimeout
	PutSlaveNotAvailable
	PutServiceNotAvailable
	PutToRemoteBrokerFail
)

func (s PutStatus) String() string {
	switch s {
	case PutOK:
		return "PUT_OK"
	case PutFlushDiskTimeout:
		return "FLUSH_DISK_TIMEOUT"
	case PutFlushSlaveTimeout:
		return "FLUSH_SLAVE_TIMEOUT"
	case PutSlaveNotAvailable:
		return "SLAVE_NOT_AVAILABLE"
	case PutServiceNotAvailable:
		return "SERVICE_NOT_AVAILABLE"
	case PutToRemoteBrokerFail:
		return "PUT_TO_REMOTE_BROKER_FAIL"
	}
	return "UNKNOWN"
}

// AppendResult describes where the store placed an appended message.
type AppendResult struct {
	MsgID       string
	QueueID     int
	QueueOffset uint64
}

// PutResult is returned by every write path. Remote marks results that
// were produced by forwarding the write to another broker.
type PutResult struct {
	Status       PutStatus
	AppendResult *AppendResult
	Remote       bool
}

// SendStatus is the outcome vocabulary of a remote producer send.
type SendStatus int

const (
	SendOK SendStatus = iota
	SendFlushDiskTimeout
	SendFlushSlaveTimeout
	SendSlaveNotAvailable
)

func (s SendStatus) String() string {
	switch s {
	case SendOK:
		return "SEND_OK"
	case SendFlushDiskTimeout:
		return "FLUSH_DISK_TIMEOUT"
	case SendFlushSlaveTimeout:
		return "FLUSH_SLAVE_TIMEOUT"
	case SendSlaveNotAvailable:
		return "SLAVE_NOT_AVAILABLE"
	}
	return "UNKNOWN"
}

// SendResult is the remote producer's answer to one send attempt.
type SendResult struct {
	Status      SendStatus
	MsgID       string
	Queue       MessageQueue
	QueueOffset uint64
}

// PullStatus is the outcome vocabulary of a remote single-queue pull.
type PullStatus int

const (
	PullFound PullStatus = iota
	PullNoNewMsg
	PullNoMatchedMsg
	PullOffsetIllegal
)

// PullResult is the remote consumer's answer to one pull attempt.
type PullResult struct {
	Status          PullStatus
	NextBeginOffset uint64
	MsgFoundList    []*MessageExt
}

// GetMessageResult is a raw local read: serialized message buffers plus
// the store-assigned queue offset of each buffer at the same index. The
// batch holds a releasable resource; Release frees it and is safe to
// call more than once, but the reader is expected to release exactly
// once on every exit path.
type GetMessageResult struct {
	BufferList   [][]byte
	QueueOffsets []uint64

	releaseOnce sync.Once
	ReleaseFunc func()
}

func (r *GetMessageResult) Release() {
	r.releaseOnce.Do(func() {
		if r.ReleaseFunc != nil {
			r.ReleaseFunc()
		}
	})
}
