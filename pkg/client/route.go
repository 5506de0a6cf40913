package client

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/downfa11-org/escapebridge/pkg/types"
	"github.com/downfa11-org/escapebridge/util"
)

// topicRoute is what a name server knows about one topic: its queues and
// the address of each broker hosting them.
type topicRoute struct {
	Queues      []types.MessageQueue
	BrokerAddrs map[string]string
}

type routeRequest struct {
	Topic string `json:"topic"`
}

type routeResponse struct {
	Success     bool                 `json:"success"`
	Queues      []types.MessageQueue `json:"queues"`
	BrokerAddrs map[string]string    `json:"brokerAddrs"`
	Error       string               `json:"error"`
}

// queryRoute asks the name servers, in order, for the route of a topic.
// The first server that answers wins.
func queryRoute(nameServers []string, topic string, timeout time.Duration) (*topicRoute, error) {
	body, err := json.Marshal(routeRequest{Topic: topic})
	if err != nil {
		return nil, fmt.Errorf("marshal route request: %w", err)
	}

	var lastErr error
	for _, addr := range nameServers {
		resp, err := exchange(addr, "ROUTE", string(body), timeout)
		if err != nil {
			util.Warn("route query to %s failed: %v", addr, err)
			lastErr = err
			continue
		}

		var rr routeResponse
		if err := json.Unmarshal(resp, &rr); err != nil {
			lastErr = fmt.Errorf("invalid route response from %s: %w", addr, err)
			continue
		}
		if !rr.Success {
			lastErr = fmt.Errorf("route query rejected: %s", rr.Error)
			continue
		}
		if len(rr.Queues) == 0 {
			lastErr = fmt.Errorf("no queues for topic %s", topic)
			continue
		}

		return &topicRoute{Queues: rr.Queues, BrokerAddrs: rr.BrokerAddrs}, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no name servers configured")
	}
	return nil, fmt.Errorf("route lookup for topic %s failed: %w", topic, lastErr)
}

// exchange performs one length-prefixed command round trip.
func exchange(addr, command, body string, timeout time.Duration) ([]byte, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("connect failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}

	if err := util.WriteWithLength(conn, util.EncodeCommand(command, body)); err != nil {
		return nil, fmt.Errorf("send command failed: %w", err)
	}

	resp, err := util.ReadWithLength(conn)
	if err != nil {
		return nil, fmt.Errorf("read response failed: %w", err)
	}
	return resp, nil
}
