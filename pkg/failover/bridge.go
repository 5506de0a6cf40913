package failover

import (
	"fmt"
	"time"

	"github.com/downfa11-org/escapebridge/pkg/client"
	"github.com/downfa11-org/escapebridge/pkg/config"
	"github.com/downfa11-org/escapebridge/pkg/metrics"
	"github.com/downfa11-org/escapebridge/pkg/store"
	"github.com/downfa11-org/escapebridge/pkg/types"
	"github.com/downfa11-org/escapebridge/util"
)

// EscapeBridge serves writes and reads on a node that has no
// authoritative local store by forwarding them to a remote broker,
// while keeping the result contract of local store operations. A local
// store, when one is designated, is always preferred.
type EscapeBridge struct {
	cfg     *config.Config
	locator store.StoreLocator

	producerGroup string
	consumerGroup string

	// Client factories, overridable before Start.
	NewProducer func(group string) client.Producer
	NewConsumer func(group string) client.PullConsumer

	// Write-once at Start, read-only afterwards.
	producer client.Producer
	consumer client.PullConsumer
}

func New(cfg *config.Config, locator store.StoreLocator) *EscapeBridge {
	sendTimeout := time.Duration(cfg.SendTimeoutMS) * time.Millisecond
	pullTimeout := time.Duration(cfg.PullTimeoutMS) * time.Millisecond

	return &EscapeBridge{
		cfg:           cfg,
		locator:       locator,
		producerGroup: fmt.Sprintf("InnerProducerGroup_%s_%d", cfg.BrokerName, cfg.BrokerID),
		consumerGroup: fmt.Sprintf("InnerConsumerGroup_%s_%d", cfg.BrokerName, cfg.BrokerID),
		NewProducer: func(group string) client.Producer {
			return client.NewTCPProducer(group, sendTimeout)
		},
		NewConsumer: func(group string) client.PullConsumer {
			return client.NewTCPPullConsumer(group, pullTimeout)
		},
	}
}

// Start brings up the inner producer and consumer when the node is
// configured to escape. An empty name server list while escape is
// enabled is a configuration error, not a transient fault.
func (eb *EscapeBridge) Start() error {
	if !eb.cfg.EnableSlaveActingMaster || !eb.cfg.EnableRemoteEscape {
		return nil
	}

	if len(eb.cfg.NameServerAddrs) == 0 {
		return fmt.Errorf("escape bridge: name server address list is empty")
	}

	if err := eb.startInnerProducer(); err != nil {
		return err
	}
	if err := eb.startInnerConsumer(); err != nil {
		return err
	}

	metrics.BridgeUp.Set(1)
	util.Info("start inner producer and consumer success.")
	return nil
}

// Shutdown tears down whichever inner clients were started. Safe to call
// repeatedly and after a failed or skipped Start.
func (eb *EscapeBridge) Shutdown() {
	if eb.producer != nil {
		eb.producer.Shutdown()
		eb.producer = nil
	}
	if eb.consumer != nil {
		eb.consumer.Shutdown()
		eb.consumer = nil
	}
	metrics.BridgeUp.Set(0)
}

func (eb *EscapeBridge) startInnerProducer() error {
	producer := eb.NewProducer(eb.producerGroup)
	if err := producer.Start(eb.cfg.NameServerAddrs); err != nil {
		util.Error("start inner producer failed, name servers: %v, err: %v", eb.cfg.NameServerAddrs, err)
		return fmt.Errorf("start inner producer: %w", err)
	}
	eb.producer = producer
	return nil
}

func (eb *EscapeBridge) startInnerConsumer() error {
	consumer := eb.NewConsumer(eb.consumerGroup)
	if err := consumer.Start(eb.cfg.NameServerAddrs); err != nil {
		util.Error("start inner consumer failed, name servers: %v, err: %v", eb.cfg.NameServerAddrs, err)
		return fmt.Errorf("start inner consumer: %w", err)
	}
	eb.consumer = consumer
	return nil
}

// putAction is the outcome of the per-call routing decision shared by
// all write entry points.
type putAction int

const (
	putLocal putAction = iota
	putRemote
	putUnavailable
)

// decidePut performs the three-way routing decision: a designated local
// store always wins, the escape path needs both config switches and a
// running producer, anything else is unavailable. The master lookup is
// fresh on every call because roles change at runtime.
func (eb *EscapeBridge) decidePut() (store.MessageStore, putAction) {
	if master := eb.locator.PeekMaster(); master != nil {
		return master, putLocal
	}
	if eb.cfg.EnableSlaveActingMaster && eb.cfg.EnableRemoteEscape && eb.producer != nil {
		return nil, putRemote
	}
	return nil, putUnavailable
}

func (eb *EscapeBridge) unavailableResult(op string) *types.PutResult {
	util.Warn("%s failed, enableSlaveActingMaster=%v, enableRemoteEscape=%v",
		op, eb.cfg.EnableSlaveActingMaster, eb.cfg.EnableRemoteEscape)
	metrics.ServiceUnavailableTotal.Inc()
	return &types.PutResult{Status: types.PutServiceNotAvailable}
}

// PutMessage stores one message, preferring a designated local store and
// escaping to a remote broker otherwise. Remote failures surface as
// results, never as errors.
func (eb *EscapeBridge) PutMessage(msg *types.MessageExt) *types.PutResult {
	master, action := eb.decidePut()
	switch action {
	case putLocal:
		return master.PutMessage(msg)

	case putRemote:
		// The remote hop changes the message's born timestamp and id,
		// so local durability semantics cannot apply.
		msg.WaitStoreMsgOK = false
		metrics.RemoteSendTotal.Inc()

		sendResult, err := eb.producer.Send(msg)
		if err != nil {
			util.Error("send message to remote broker failed: %v", err)
			metrics.RemoteSendFailures.Inc()
			return &types.PutResult{Status: types.PutToRemoteBrokerFail, Remote: true}
		}
		return transformSendResult(sendResult)

	default:
		return eb.unavailableResult("put message")
	}
}

// AsyncPutMessage is PutMessage with an explicit completion handle. The
// returned channel always receives exactly one result; a send attempt
// never surfaces as a fault on the channel.
func (eb *EscapeBridge) AsyncPutMessage(msg *types.MessageExt) <-chan *types.PutResult {
	master, action := eb.decidePut()
	if action == putLocal {
		return master.AsyncPutMessage(msg)
	}

	future := make(chan *types.PutResult, 1)

	if action == putRemote {
		msg.WaitStoreMsgOK = false
		metrics.RemoteSendTotal.Inc()

		err := eb.producer.SendAsync(msg, func(sendResult *types.SendResult, sendErr error) {
			if sendErr != nil {
				util.Error("async send to remote broker failed: %v", sendErr)
				metrics.RemoteSendFailures.Inc()
				future <- &types.PutResult{Status: types.PutToRemoteBrokerFail, Remote: true}
				return
			}
			future <- transformSendResult(sendResult)
		})
		if err != nil {
			util.Error("initiate async send to remote broker failed: %v", err)
			metrics.RemoteSendFailures.Inc()
			future <- &types.PutResult{Status: types.PutToRemoteBrokerFail, Remote: true}
		}
		return future
	}

	future <- eb.unavailableResult("put message")
	return future
}

// PutMessageToSpecificQueue stores one message like PutMessage, but the
// escape path picks the destination queue deterministically from the
// message's routing key, so re-forwarding the same logical message lands
// on the same queue.
func (eb *EscapeBridge) PutMessageToSpecificQueue(msg *types.MessageExt) *types.PutResult {
	master, action := eb.decidePut()
	switch action {
	case putLocal:
		return master.PutMessage(msg)

	case putRemote:
		msg.WaitStoreMsgOK = false
		metrics.RemoteSendTotal.Inc()

		sendResult, err := eb.producer.SendWithSelector(msg, SelectQueueByHash, RoutingKey(msg))
		if err != nil {
			util.Error("send message to specific remote queue failed: %v", err)
			metrics.RemoteSendFailures.Inc()
			return &types.PutResult{Status: types.PutToRemoteBrokerFail, Remote: true}
		}
		return transformSendResult(sendResult)

	default:
		return eb.unavailableResult("put message to specific queue")
	}
}
