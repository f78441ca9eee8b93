package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends summary events to RabbitMQ.  Each publish opens its own
// connection, so a broker outage only costs the events sent during it.
type Publisher struct {
	url string
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url string) *Publisher {
	return &Publisher{url: url}
}

const maxDialTimeout = 5 * time.Second

// dialTimeout bounds the TCP connect and the AMQP handshake by ctx's
// deadline, capped at maxDialTimeout.
func dialTimeout(ctx context.Context) time.Duration {
	d := maxDialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < d {
			d = left
		}
	}
	if d < time.Millisecond {
		d = time.Millisecond
	}
	return d
}

// PublishSummaryServed publishes event to the summary.served queue as a
// persistent JSON message.  Errors are logged and returned so that the
// caller can choose to ignore them.
func (p *Publisher) PublishSummaryServed(ctx context.Context, event SummaryServedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout(ctx)),
	})
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// idempotent; durable so messages survive broker restarts
	if _, err := ch.QueueDeclare(
		SummaryServedQueue, // name
		true,               // durable
		false,              // autoDelete
		false,              // exclusive
		false,              // noWait
		nil,                // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",                 // default exchange
		SummaryServedQueue, // routing key = queue name
		false,              // mandatory
		false,              // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}

	return nil
}
