package client_test

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/downfa11-org/escapebridge/pkg/client"
	"github.com/downfa11-org/escapebridge/pkg/types"
	"github.com/downfa11-org/escapebridge/util"
)

// fakeBroker answers ROUTE, SEND and PULL frames on a loopback listener,
// acting as both name server and broker for the topic under test.
type fakeBroker struct {
	ln         net.Listener
	brokerName string
	queueCount int
	sendStatus string
	pullStatus string
	messages   [][]byte
}

func startFakeBroker(t *testing.T, fb *fakeBroker) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	fb.ln = ln
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go fb.handle(conn)
		}
	}()

	return ln.Addr().String()
}

func (fb *fakeBroker) handle(conn net.Conn) {
	defer func() { _ = conn.Close() }()

	frame, err := util.ReadWithLength(conn)
	if err != nil {
		return
	}
	name, body, err := util.DecodeCommand(frame)
	if err != nil {
		return
	}

	switch name {
	case "ROUTE":
		queues := make([]types.MessageQueue, fb.queueCount)
		for i := range queues {
			queues[i] = types.MessageQueue{Topic: "orders", BrokerName: fb.brokerName, QueueID: i}
		}
		resp, _ := json.Marshal(struct {
			Success     bool                 `json:"success"`
			Queues      []types.MessageQueue `json:"queues"`
			BrokerAddrs map[string]string    `json:"brokerAddrs"`
		}{true, queues, map[string]string{fb.brokerName: fb.ln.Addr().String()}})
		_ = util.WriteWithLength(conn, resp)

	case "SEND":
		var req struct {
			QueueID int `json:"queueId"`
		}
		_ = json.Unmarshal([]byte(body), &req)
		resp, _ := json.Marshal(struct {
			Success     bool   `json:"success"`
			Status      string `json:"status"`
			MsgID       string `json:"msgId"`
			QueueID     int    `json:"queueId"`
			QueueOffset uint64 `json:"queueOffset"`
		}{true, fb.sendStatus, "msg-1", req.QueueID, 7})
		_ = util.WriteWithLength(conn, resp)

	case "PULL":
		resp, _ := json.Marshal(struct {
			Success         bool     `json:"success"`
			Status          string   `json:"status"`
			NextBeginOffset uint64   `json:"nextBeginOffset"`
			Messages        [][]byte `json:"messages"`
		}{true, fb.pullStatus, 8, fb.messages})
		_ = util.WriteWithLength(conn, resp)
	}
}

func TestTCPProducerSend(t *testing.T) {
	fb := &fakeBroker{brokerName: "broker-b", queueCount: 2, sendStatus: "SEND_OK"}
	addr := startFakeBroker(t, fb)

	p := client.NewTCPProducer("InnerProducerGroup_broker-a_1", time.Second)
	if err := p.Start([]string{addr}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer p.Shutdown()

	result, err := p.Send(&types.MessageExt{Topic: "orders", Payload: []byte("x")})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if result.Status != types.SendOK {
		t.Errorf("Expected SEND_OK, got %v", result.Status)
	}
	if result.MsgID != "msg-1" {
		t.Errorf("Unexpected msg id %q", result.MsgID)
	}
	if result.QueueOffset != 7 {
		t.Errorf("Unexpected queue offset %d", result.QueueOffset)
	}
}

func TestTCPProducerSendWithSelector(t *testing.T) {
	fb := &fakeBroker{brokerName: "broker-b", queueCount: 4, sendStatus: "SLAVE_NOT_AVAILABLE"}
	addr := startFakeBroker(t, fb)

	p := client.NewTCPProducer("g", time.Second)
	if err := p.Start([]string{addr}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer p.Shutdown()

	selector := func(queues []types.MessageQueue, msg *types.MessageExt, arg interface{}) types.MessageQueue {
		return queues[2]
	}

	result, err := p.SendWithSelector(&types.MessageExt{Topic: "orders"}, selector, "key")
	if err != nil {
		t.Fatalf("SendWithSelector failed: %v", err)
	}
	if result.Queue.QueueID != 2 {
		t.Errorf("Expected the selected queue 2, got %d", result.Queue.QueueID)
	}
	if result.Status != types.SendSlaveNotAvailable {
		t.Errorf("Expected SLAVE_NOT_AVAILABLE, got %v", result.Status)
	}
}

func TestTCPProducerSendAsync(t *testing.T) {
	fb := &fakeBroker{brokerName: "broker-b", queueCount: 1, sendStatus: "SEND_OK"}
	addr := startFakeBroker(t, fb)

	p := client.NewTCPProducer("g", time.Second)
	if err := p.Start([]string{addr}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer p.Shutdown()

	done := make(chan struct{})
	err := p.SendAsync(&types.MessageExt{Topic: "orders"}, func(result *types.SendResult, sendErr error) {
		if sendErr != nil {
			t.Errorf("Async send failed: %v", sendErr)
		} else if result.Status != types.SendOK {
			t.Errorf("Expected SEND_OK, got %v", result.Status)
		}
		close(done)
	})
	if err != nil {
		t.Fatalf("SendAsync initiation failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Callback never invoked")
	}
}

func TestTCPProducerNotStarted(t *testing.T) {
	p := client.NewTCPProducer("g", time.Second)

	if _, err := p.Send(&types.MessageExt{Topic: "orders"}); err == nil {
		t.Errorf("Send before Start must fail")
	}
	if err := p.SendAsync(&types.MessageExt{Topic: "orders"}, nil); err == nil {
		t.Errorf("SendAsync before Start must fail")
	}
}

func TestTCPProducerStartEmptyNameServers(t *testing.T) {
	p := client.NewTCPProducer("g", time.Second)

	if err := p.Start(nil); err == nil {
		t.Errorf("Start with no name servers must fail")
	}
}

func TestTCPPullConsumerPull(t *testing.T) {
	stored := util.EncodeMessageExt(&types.MessageExt{Topic: "orders", QueueOffset: 8, Payload: []byte("hello")})
	fb := &fakeBroker{brokerName: "broker-b", queueCount: 1, pullStatus: "FOUND", messages: [][]byte{stored}}
	addr := startFakeBroker(t, fb)

	c := client.NewTCPPullConsumer("InnerConsumerGroup_broker-a_1", time.Second)
	if err := c.Start([]string{addr}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer c.Shutdown()

	mq := types.MessageQueue{Topic: "orders", BrokerName: "broker-b", QueueID: 0}
	result, err := c.Pull(mq, "*", 8, 1)
	if err != nil {
		t.Fatalf("Pull failed: %v", err)
	}

	if result.Status != types.PullFound {
		t.Errorf("Expected FOUND, got %v", result.Status)
	}
	if len(result.MsgFoundList) != 1 {
		t.Fatalf("Expected one message, got %d", len(result.MsgFoundList))
	}
	if string(result.MsgFoundList[0].Payload) != "hello" {
		t.Errorf("Unexpected payload %q", result.MsgFoundList[0].Payload)
	}
}

func TestTCPPullConsumerNoNewMsg(t *testing.T) {
	fb := &fakeBroker{brokerName: "broker-b", queueCount: 1, pullStatus: "NO_NEW_MSG"}
	addr := startFakeBroker(t, fb)

	c := client.NewTCPPullConsumer("g", time.Second)
	if err := c.Start([]string{addr}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer c.Shutdown()

	mq := types.MessageQueue{Topic: "orders", BrokerName: "broker-b", QueueID: 0}
	result, err := c.Pull(mq, "*", 0, 1)
	if err != nil {
		t.Fatalf("Pull failed: %v", err)
	}
	if result.Status != types.PullNoNewMsg || len(result.MsgFoundList) != 0 {
		t.Errorf("Expected empty NO_NEW_MSG result, got %+v", result)
	}
}

func TestTCPPullConsumerUnknownBroker(t *testing.T) {
	fb := &fakeBroker{brokerName: "broker-b", queueCount: 1, pullStatus: "FOUND"}
	addr := startFakeBroker(t, fb)

	c := client.NewTCPPullConsumer("g", time.Second)
	if err := c.Start([]string{addr}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer c.Shutdown()

	mq := types.MessageQueue{Topic: "orders", BrokerName: "broker-z", QueueID: 0}
	if _, err := c.Pull(mq, "*", 0, 1); err == nil {
		t.Errorf("Pull for an unrouted broker must fail")
	}
}
