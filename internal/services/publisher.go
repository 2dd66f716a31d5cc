package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"eventhub/internal/config"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPPublisher publishes ticket confirmations to a durable RabbitMQ queue.
// A connection is opened per message; confirmations are infrequent.
type AMQPPublisher struct {
	url   string
	queue string
}

// NewAMQPPublisher creates a publisher for the configured broker
func NewAMQPPublisher(cfg config.RabbitMQConfig) *AMQPPublisher {
	return &AMQPPublisher{url: cfg.URL, queue: cfg.Queue}
}

// PublishTicketsConfirmed sends msg as a persistent JSON message
func (p *AMQPPublisher) PublishTicketsConfirmed(ctx context.Context, msg TicketsConfirmedMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal confirmation: %w", err)
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel open failed: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		p.queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		return fmt.Errorf("rabbitmq queue declare failed: %w", err)
	}

	err = ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    msg.ConfirmedAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("rabbitmq publish failed: %w", err)
	}
	return nil
}

// LogPublisher logs confirmations when no broker is configured
type LogPublisher struct{}

// PublishTicketsConfirmed logs the confirmation
func (LogPublisher) PublishTicketsConfirmed(ctx context.Context, msg TicketsConfirmedMessage) error {
	log.Printf("Tickets confirmed | payment_id=%d | event_id=%d | buyer_id=%d | quantity=%d | total=%s",
		msg.PaymentID, msg.EventID, msg.BuyerID, msg.Quantity, msg.Total)
	return nil
}

// NewConfirmationPublisher returns an AMQP publisher when a broker URL is configured
func NewConfirmationPublisher(cfg config.RabbitMQConfig) ConfirmationPublisher {
	if cfg.URL == "" {
		log.Println("RabbitMQ not configured, confirmations are logged only")
		return LogPublisher{}
	}
	return NewAMQPPublisher(cfg)
}
