package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ehub-dashboard/internal/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher relays dashboard data to an MQTT broker.
type Publisher struct {
	client    mqtt.Client
	cfg       config.Config
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewPublisher(cfg config.Config, logger *slog.Logger) *Publisher {
	p := &Publisher{
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(cfg.MQTTClientID)

	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		p.setConnected(true)
		logger.Info("mqtt connected", "broker", cfg.MQTTBroker, "port", cfg.MQTTPort)
	})

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		p.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	p.client = mqtt.NewClient(opts)
	return p
}

// Connect waits for the initial broker connection, honouring ctx and
// Disconnect. The client keeps retrying in the background afterwards.
func (p *Publisher) Connect(ctx context.Context) error {
	select {
	case <-p.stopCh:
		return fmt.Errorf("publisher stopped")
	default:
	}

	if p.IsConnected() {
		return nil
	}

	token := p.client.Connect()

	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.stopCh:
			return fmt.Errorf("publisher stopped")
		default:
		}
	}
}

// PublishJSON marshals v and publishes it to topic with QoS 1.
func (p *Publisher) PublishJSON(topic string, v any) error {
	if !p.IsConnected() {
		return fmt.Errorf("mqtt client not connected")
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	token := p.client.Publish(topic, 1, false, data)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	p.logger.Debug("published", "topic", topic, "size", len(data))
	return nil
}

// IsConnected returns whether the client is connected.
func (p *Publisher) IsConnected() bool {
	p.mu.RLock()
	connected := p.connected
	p.mu.RUnlock()
	return connected && p.client.IsConnected()
}

// Disconnect stops the publisher. Idempotent.
func (p *Publisher) Disconnect() {
	p.stopOnce.Do(func() { close(p.stopCh) })

	if p.client != nil {
		p.client.Disconnect(250)
	}

	p.setConnected(false)
	p.logger.Info("mqtt disconnected")
}

func (p *Publisher) setConnected(v bool) {
	p.mu.Lock()
	p.connected = v
	p.mu.Unlock()
}
