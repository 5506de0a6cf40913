package client

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/downfa11-org/escapebridge/pkg/types"
	"github.com/downfa11-org/escapebridge/util"
)

type pullRequest struct {
	Group      string `json:"group"`
	Consumer   string `json:"consumer"`
	Topic      string `json:"topic"`
	BrokerName string `json:"brokerName"`
	QueueID    int    `json:"queueId"`
	Offset     uint64 `json:"offset"`
	MaxNums    int    `json:"maxNums"`
	SubExpr    string `json:"subExpr"`
}

type pullResponse struct {
	Success         bool     `json:"success"`
	Status          string   `json:"status"`
	NextBeginOffset uint64   `json:"nextBeginOffset"`
	Messages        [][]byte `json:"messages"`
	Error           string   `json:"error"`
}

// TCPPullConsumer pulls messages from a remote broker queue over the
// same framed TCP protocol the producer uses.
type TCPPullConsumer struct {
	group      string
	instanceID string
	timeout    time.Duration

	mu          sync.RWMutex
	nameServers []string
	routes      map[string]*topicRoute
	started     bool
}

func NewTCPPullConsumer(group string, timeout time.Duration) *TCPPullConsumer {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &TCPPullConsumer{
		group:      group,
		instanceID: uuid.NewString(),
		timeout:    timeout,
		routes:     make(map[string]*topicRoute),
	}
}

func (c *TCPPullConsumer) Start(nameServers []string) error {
	if len(nameServers) == 0 {
		return fmt.Errorf("consumer %s: name server list is empty", c.group)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.nameServers = append([]string(nil), nameServers...)
	c.started = true

	util.Info("consumer %s (%s) started with %d name servers", c.group, c.instanceID, len(nameServers))
	return nil
}

func (c *TCPPullConsumer) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return
	}
	c.started = false
	c.routes = make(map[string]*topicRoute)
	util.Info("consumer %s stopped", c.group)
}

// Pull fetches up to maxNums messages from one queue at the given offset.
func (c *TCPPullConsumer) Pull(mq types.MessageQueue, subExpr string, offset uint64, maxNums int) (*types.PullResult, error) {
	addr, err := c.brokerAddr(mq)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(pullRequest{
		Group:      c.group,
		Consumer:   c.instanceID,
		Topic:      mq.Topic,
		BrokerName: mq.BrokerName,
		QueueID:    mq.QueueID,
		Offset:     offset,
		MaxNums:    maxNums,
		SubExpr:    subExpr,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal pull request: %w", err)
	}

	resp, err := exchange(addr, "PULL", string(body), c.timeout)
	if err != nil {
		return nil, fmt.Errorf("pull from %s failed: %w", addr, err)
	}

	var pr pullResponse
	if err := json.Unmarshal(resp, &pr); err != nil {
		return nil, fmt.Errorf("invalid pull response from %s: %w", addr, err)
	}
	if !pr.Success {
		return nil, fmt.Errorf("pull rejected by %s: %s", addr, pr.Error)
	}

	result := &types.PullResult{
		Status:          parsePullStatus(pr.Status),
		NextBeginOffset: pr.NextBeginOffset,
	}
	for i, buf := range pr.Messages {
		msg, err := util.DecodeMessageExt(buf)
		if err != nil {
			util.Error("pull response message %d undecodable: %v", i, err)
			continue
		}
		result.MsgFoundList = append(result.MsgFoundList, msg)
	}
	return result, nil
}

func (c *TCPPullConsumer) brokerAddr(mq types.MessageQueue) (string, error) {
	c.mu.RLock()
	if !c.started {
		c.mu.RUnlock()
		return "", fmt.Errorf("consumer %s: not started", c.group)
	}
	route, ok := c.routes[mq.Topic]
	nameServers := c.nameServers
	c.mu.RUnlock()

	if !ok {
		fetched, err := queryRoute(nameServers, mq.Topic, c.timeout)
		if err != nil {
			return "", err
		}
		c.mu.Lock()
		c.routes[mq.Topic] = fetched
		c.mu.Unlock()
		route = fetched
	}

	addr, ok := route.BrokerAddrs[mq.BrokerName]
	if !ok {
		return "", fmt.Errorf("no address for broker %s", mq.BrokerName)
	}
	return addr, nil
}

func parsePullStatus(s string) types.PullStatus {
	switch s {
	case "FOUND":
		return types.PullFound
	case "NO_NEW_MSG":
		return types.PullNoNewMsg
	case "NO_MATCHED_MSG":
		return types.PullNoMatchedMsg
	case "OFFSET_ILLEGAL":
		return types.PullOffsetIllegal
	}
	return types.PullNoMatchedMsg
}
