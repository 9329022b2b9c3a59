// internal/adapter/events/nats.go

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"socialpulse/internal/domain/content"
)

// Event types
const (
	TypeAggregated = "aggregated"
	TypeTrends     = "trends"
)

// Conn is the subset of a NATS connection used for publishing
type Conn interface {
	Publish(subj string, data []byte) error
}

var _ Conn = (*nats.Conn)(nil)

// Event is the envelope of every published pulse event
type Event struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Time time.Time       `json:"time"`
	Data json.RawMessage `json:"data"`
}

// TrendsPayload is the data of a trends event
type TrendsPayload struct {
	Trends      []content.ScoredItem `json:"trends"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// Publisher publishes pulses to NATS
type Publisher struct {
	conn  Conn
	topic string
	now   func() time.Time
}

// NewPublisher creates a publisher for subjects under topic
func NewPublisher(conn Conn, topic string) *Publisher {
	if topic == "" {
		topic = "pulse"
	}
	return &Publisher{
		conn:  conn,
		topic: topic,
		now:   time.Now,
	}
}

// Subject returns the subject an event type is published on
func Subject(topic, eventType string) string {
	return fmt.Sprintf("%s.%s", topic, eventType)
}

// Subjects returns every subject a publisher on topic writes to
func Subjects(topic string) []string {
	return []string{Subject(topic, TypeAggregated), Subject(topic, TypeTrends)}
}

// PublishPulse publishes the full result and a trends-only summary
func (p *Publisher) PublishPulse(ctx context.Context, result content.AggregationResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := p.publish(TypeAggregated, result); err != nil {
		return err
	}
	return p.publish(TypeTrends, TrendsPayload{
		Trends:      result.Trends,
		GeneratedAt: result.GeneratedAt,
	})
}

func (p *Publisher) publish(eventType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshaling %s event: %w", eventType, err)
	}

	event, err := json.Marshal(Event{
		ID:   uuid.New().String(),
		Type: eventType,
		Time: p.now(),
		Data: data,
	})
	if err != nil {
		return fmt.Errorf("error marshaling %s event: %w", eventType, err)
	}

	subject := Subject(p.topic, eventType)
	if err := p.conn.Publish(subject, event); err != nil {
		return fmt.Errorf("error publishing to %s: %w", subject, err)
	}
	return nil
}
