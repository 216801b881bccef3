//go:build !no_mqtt

// Package mqtt mirrors the record collection to an MQTT broker as retained
// messages, one topic per record.
package mqtt

import (
	"fmt"
	"log/slog"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"people-crud/internal/records"
)

// Config holds MQTT bridge configuration.
type Config struct {
	Broker      string
	Username    string
	Password    string
	TopicPrefix string
}

// Bridge publishes record events to MQTT.
type Bridge struct {
	client pahomqtt.Client
	svc    *records.Service
	prefix string
	logger *slog.Logger
	unsub  func()
}

// NewBridge creates and connects an MQTT bridge.
func NewBridge(svc *records.Service, cfg Config, logger *slog.Logger) (*Bridge, error) {
	b := &Bridge{
		svc:    svc,
		prefix: cfg.TopicPrefix,
		logger: logger.With("component", "mqtt"),
	}

	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID("people-crud").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetWill(bridgeStateTopic(cfg.TopicPrefix), "offline", 1, true).
		SetOnConnectHandler(func(_ pahomqtt.Client) {
			b.logger.Info("MQTT connected")
			b.publishBridgeState("online")
			b.publishAllRecords()
		}).
		SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
			b.logger.Warn("MQTT connection lost", "err", err)
		})

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	// The on-connect handler publishes through b.client.
	b.client = pahomqtt.NewClient(opts)
	token := b.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return b, nil
}

// Start subscribes to record events and begins MQTT publishing.
func (b *Bridge) Start() {
	b.unsub = b.svc.Events().OnAll(b.handleEvent)
	b.logger.Info("MQTT bridge started", "prefix", b.prefix)
}

// Stop publishes offline state, unsubscribes, and disconnects.
func (b *Bridge) Stop() {
	if b.unsub != nil {
		b.unsub()
	}
	b.publishBridgeState("offline")
	b.client.Disconnect(1000)
	b.logger.Info("MQTT bridge stopped")
}

func (b *Bridge) handleEvent(event records.Event) {
	msg, ok := buildEventMessage(b.prefix, event)
	if !ok {
		return
	}
	b.publish(msg.Topic, msg.Payload, true)
}

func (b *Bridge) publishBridgeState(state string) {
	b.publish(bridgeStateTopic(b.prefix), []byte(state), true)
}

func (b *Bridge) publishAllRecords() {
	recs, err := b.svc.List()
	if err != nil {
		b.logger.Error("list records for publish", "err", err)
		return
	}
	for _, rec := range recs {
		msg := buildRecordMessage(b.prefix, rec)
		b.publish(msg.Topic, msg.Payload, true)
	}
	b.logger.Info("published records", "count", len(recs))
}

func (b *Bridge) publish(topic string, payload []byte, retained bool) {
	token := b.client.Publish(topic, 1, retained, payload)
	go func() {
		if !token.WaitTimeout(5 * time.Second) {
			b.logger.Warn("MQTT publish timeout", "topic", topic)
		} else if err := token.Error(); err != nil {
			b.logger.Warn("MQTT publish error", "topic", topic, "err", err)
		}
	}()
}
