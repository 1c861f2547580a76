// Package events announces successful mutations to other systems over MQTT.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/vessel-ops/internal/models"
)

// Event is the message body published after a mutation succeeds.
type Event struct {
	Operation  string            `json:"operation"`
	Collection models.Collection `json:"collection"`
	TargetID   string            `json:"target_id,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// Publisher sends mutation events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

const (
	publishQoS     = 1
	publishTimeout = 5 * time.Second
	disconnectWait = 250 // milliseconds
)

// MQTTPublisher publishes events as JSON to {topic}/{operation}.
type MQTTPublisher struct {
	client mqtt.Client
	topic  string
}

// NewMQTTPublisher connects to broker and returns a publisher for topic.
func NewMQTTPublisher(broker, clientID, topic string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(publishTimeout)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.WithField("broker", broker).Info("Connected to MQTT broker")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.WithError(err).Warn("MQTT connection lost")
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(publishTimeout) {
		return nil, fmt.Errorf("mqtt connect to %s: timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", broker, err)
	}
	return newMQTTPublisher(client, topic), nil
}

func newMQTTPublisher(client mqtt.Client, topic string) *MQTTPublisher {
	return &MQTTPublisher{client: client, topic: topic}
}

// Publish sends event and waits for the broker to acknowledge it, bounded by
// ctx and a fixed timeout.
func (p *MQTTPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	topic := p.topic + "/" + event.Operation
	token := p.client.Publish(topic, publishQoS, false, payload)

	timer := time.NewTimer(publishTimeout)
	defer timer.Stop()
	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("publish %s: %w", topic, ctx.Err())
	case <-timer.C:
		return fmt.Errorf("publish %s: timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	log.WithFields(log.Fields{"topic": topic, "target_id": event.TargetID}).Debug("Published event")
	return nil
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(disconnectWait)
}

// Nop discards events. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close()                               {}
