// Package events publishes classification outcomes to RabbitMQ so other
// services can react without polling the reports collection. The pipeline
// runs fine without a broker; the publisher is optional and best-effort.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"civic-ml-pipeline/models"
)

const (
	// RoutingKeyClassified is the routing key for classified-report events.
	RoutingKeyClassified = "report.classified"

	publishTimeout = 10 * time.Second
)

// ClassifiedEvent announces a report whose classification was persisted.
type ClassifiedEvent struct {
	ReportID   string    `json:"reportId"`
	Severity   string    `json:"severity"`
	Department string    `json:"department"`
	Title      string    `json:"title"`
	Conflicts  string    `json:"conflicts,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher publishes events to a durable direct exchange. It reconnects
// lazily when the broker drops the connection.
type Publisher struct {
	mu       sync.Mutex
	amqpURL  string
	exchange string
	conn     *amqp.Connection
	channel  *amqp.Channel
}

// NewPublisher connects to RabbitMQ and declares the exchange.
func NewPublisher(amqpURL, exchange string) (*Publisher, error) {
	p := &Publisher{
		amqpURL:  amqpURL,
		exchange: exchange,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.connectLocked(); err != nil {
		return nil, err
	}
	return p, nil
}

// PublishClassified sends a classified-report event.
func (p *Publisher) PublishClassified(reportID string, result models.ClassificationResponse) error {
	event := ClassifiedEvent{
		ReportID:   reportID,
		Severity:   result.Severity,
		Department: result.Department,
		Title:      result.Title,
		Conflicts:  result.Conflicts,
		Timestamp:  time.Now().UTC(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	}

	return p.publish(RoutingKeyClassified, publishing)
}

// IsConnected indicates whether the publisher currently has an open
// connection and channel.
func (p *Publisher) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn != nil && !p.conn.IsClosed() && p.channel != nil
}

// Close closes the publisher connection and channel.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	if p.channel != nil {
		if channelErr := p.channel.Close(); channelErr != nil {
			err = channelErr
		}
		p.channel = nil
	}
	if p.conn != nil {
		if connErr := p.conn.Close(); connErr != nil && err == nil {
			err = connErr
		}
		p.conn = nil
	}
	return err
}

func (p *Publisher) publish(routingKey string, publishing amqp.Publishing) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() || p.channel == nil {
		p.closeLocked()
		if err := p.connectLocked(); err != nil {
			return err
		}
	}

	err := p.channel.Publish(p.exchange, routingKey, false, false, publishing)
	if err != nil && isConnClosedErr(err) {
		p.closeLocked()
		if connErr := p.connectLocked(); connErr != nil {
			return fmt.Errorf("failed to publish event: %w (reconnect failed: %v)", err, connErr)
		}
		err = p.channel.Publish(p.exchange, routingKey, false, false, publishing)
	}
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func (p *Publisher) connectLocked() error {
	conn, err := amqp.DialConfig(p.amqpURL, amqp.Config{Dial: amqp.DefaultDial(publishTimeout)})
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		p.exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	p.conn = conn
	p.channel = ch
	return nil
}

func (p *Publisher) closeLocked() {
	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func isConnClosedErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp.ErrClosed) {
		return true
	}
	return strings.Contains(err.Error(), "channel/connection is not open")
}
