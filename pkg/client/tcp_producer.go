package client

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/downfa11-org/escapebridge/pkg/types"
	"github.com/downfa11-org/escapebridge/util"
)

type sendRequest struct {
	Group     string `json:"group"`
	Producer  string `json:"producer"`
	Topic     string `json:"topic"`
	QueueID   int    `json:"queueId"`
	Payload   []byte `json:"payload"`
	BornHost  string `json:"bornHost"`
	StoreHost string `json:"storeHost"`
}

type sendResponse struct {
	Success     bool   `json:"success"`
	Status      string `json:"status"`
	MsgID       string `json:"msgId"`
	QueueID     int    `json:"queueId"`
	QueueOffset uint64 `json:"queueOffset"`
	Error       string `json:"error"`
}

// TCPProducer sends messages to remote brokers over length-prefixed TCP
// frames, resolving topic routes through the configured name servers.
type TCPProducer struct {
	group      string
	instanceID string
	timeout    time.Duration

	mu          sync.RWMutex
	nameServers []string
	routes      map[string]*topicRoute
	started     bool

	roundRobin atomic.Uint32
}

func NewTCPProducer(group string, timeout time.Duration) *TCPProducer {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &TCPProducer{
		group:      group,
		instanceID: uuid.NewString(),
		timeout:    timeout,
		routes:     make(map[string]*topicRoute),
	}
}

func (p *TCPProducer) Start(nameServers []string) error {
	if len(nameServers) == 0 {
		return fmt.Errorf("producer %s: name server list is empty", p.group)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.nameServers = append([]string(nil), nameServers...)
	p.started = true

	util.Info("producer %s (%s) started with %d name servers", p.group, p.instanceID, len(nameServers))
	return nil
}

func (p *TCPProducer) Shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return
	}
	p.started = false
	p.routes = make(map[string]*topicRoute)
	util.Info("producer %s stopped", p.group)
}

// Send delivers one message to a round-robin selected queue of its topic.
func (p *TCPProducer) Send(msg *types.MessageExt) (*types.SendResult, error) {
	route, err := p.routeFor(msg.Topic)
	if err != nil {
		return nil, err
	}

	idx := int(p.roundRobin.Add(1)-1) % len(route.Queues)
	return p.sendToQueue(msg, route, route.Queues[idx])
}

func (p *TCPProducer) SendAsync(msg *types.MessageExt, callback func(*types.SendResult, error)) error {
	p.mu.RLock()
	started := p.started
	p.mu.RUnlock()
	if !started {
		return fmt.Errorf("producer %s: not started", p.group)
	}

	go func() {
		callback(p.Send(msg))
	}()
	return nil
}

// SendWithSelector delivers one message to the queue the selector picks
// from the topic's full queue list.
func (p *TCPProducer) SendWithSelector(msg *types.MessageExt, selector QueueSelector, arg interface{}) (*types.SendResult, error) {
	route, err := p.routeFor(msg.Topic)
	if err != nil {
		return nil, err
	}

	queue := selector(route.Queues, msg, arg)
	return p.sendToQueue(msg, route, queue)
}

func (p *TCPProducer) sendToQueue(msg *types.MessageExt, route *topicRoute, queue types.MessageQueue) (*types.SendResult, error) {
	addr, ok := route.BrokerAddrs[queue.BrokerName]
	if !ok {
		return nil, fmt.Errorf("no address for broker %s", queue.BrokerName)
	}

	body, err := json.Marshal(sendRequest{
		Group:     p.group,
		Producer:  p.instanceID,
		Topic:     msg.Topic,
		QueueID:   queue.QueueID,
		Payload:   msg.Payload,
		BornHost:  msg.BornHost,
		StoreHost: msg.StoreHost,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal send request: %w", err)
	}

	resp, err := exchange(addr, "SEND", string(body), p.timeout)
	if err != nil {
		return nil, fmt.Errorf("send to %s failed: %w", addr, err)
	}

	var sr sendResponse
	if err := json.Unmarshal(resp, &sr); err != nil {
		return nil, fmt.Errorf("invalid send response from %s: %w", addr, err)
	}
	if !sr.Success {
		return nil, fmt.Errorf("send rejected by %s: %s", addr, sr.Error)
	}

	return &types.SendResult{
		Status:      parseSendStatus(sr.Status),
		MsgID:       sr.MsgID,
		Queue:       types.MessageQueue{Topic: msg.Topic, BrokerName: queue.BrokerName, QueueID: sr.QueueID},
		QueueOffset: sr.QueueOffset,
	}, nil
}

func (p *TCPProducer) routeFor(topic string) (*topicRoute, error) {
	p.mu.RLock()
	if !p.started {
		p.mu.RUnlock()
		return nil, fmt.Errorf("producer %s: not started", p.group)
	}
	if route, ok := p.routes[topic]; ok {
		p.mu.RUnlock()
		return route, nil
	}
	nameServers := p.nameServers
	p.mu.RUnlock()

	route, err := queryRoute(nameServers, topic, p.timeout)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.routes[topic] = route
	p.mu.Unlock()
	return route, nil
}

// parseSendStatus maps a wire status to the SendStatus vocabulary. An
// unknown status maps outside the known range so callers fail closed.
func parseSendStatus(s string) types.SendStatus {
	switch s {
	case "SEND_OK":
		return types.SendOK
	case "FLUSH_DISK_TIMEOUT":
		return types.SendFlushDiskTimeout
	case "FLUSH_SLAVE_TIMEOUT":
		return types.SendFlushSlaveTimeout
	case "SLAVE_NOT_AVAILABLE":
		return types.SendSlaveNotAvailable
	}
	return types.SendStatus(-1)
}
