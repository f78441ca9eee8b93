package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const maxBackoff = 30 * time.Second

// StartSummaryConsumer connects to the broker at url, declares the
// summary.served queue and appends every event it receives to logPath as a
// single line.  It reconnects with exponential backoff and only returns
// when ctx is cancelled.  Messages that cannot be handled are rejected
// without requeue so a bad payload cannot loop.
func StartSummaryConsumer(ctx context.Context, url, logPath string) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("summary-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, logPath)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("summary-consumer: consume loop ended: %v; reconnecting", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, logPath string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("summary-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(SummaryServedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(SummaryServedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handleMessage(d.Body, logPath); err != nil {
				log.Printf("summary-consumer: handle message failed: %v", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func handleMessage(body []byte, logPath string) error {
	var ev SummaryServedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// formatLine renders ev as one human-friendly log line.  Figures are listed
// in key order so lines are stable.
func formatLine(ev SummaryServedEvent) string {
	var subject string
	switch ev.Kind {
	case KindFlight:
		subject = fmt.Sprintf("flight=%d", ev.FlightNumber)
	case KindAirport:
		subject = fmt.Sprintf("airport=%s", strings.ToUpper(ev.IATACode))
	default:
		subject = fmt.Sprintf("kind=%q", ev.Kind)
	}

	keys := make([]string, 0, len(ev.Figures))
	for k := range ev.Figures {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	figures := make([]string, 0, len(keys))
	for _, k := range keys {
		figures = append(figures, fmt.Sprintf("%s=%d", k, ev.Figures[k]))
	}

	return fmt.Sprintf("[%s] Summary served | %s | date=%s | %s\n",
		ev.ServedAt, subject, ev.Date, strings.Join(figures, " "))
}
