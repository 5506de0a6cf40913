package types

// MessageExt is a single broker message together with its store metadata.
// QueueOffset is authoritative only when set from the store's own queue
// index; the value carried inside a serialized payload is not trusted.
type MessageExt struct {
	Topic       string
	QueueID     int
	QueueOffset uint64
	Payload     []byte
	BornHost    string
	StoreHost   string

	// WaitStoreMsgOK asks the local store to block until the message is
	// durable. A remote hop changes the message's effective timestamp and
	// identity, so the flag is forced off before any escape send.
	WaitStoreMsgOK bool

	Properties map[string]string
}

func (m *MessageExt) String() string {
	return m.Topic
}

// MessageQueue identifies one queue of a topic on a named broker.
type MessageQueue struct {
	Topic      string `json:"topic"`
	BrokerName string `json:"brokerName"`
	QueueID    int    `json:"queueId"`
}
