package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher mirrors change events to a Kafka topic for external consumers
// (reporting, downstream HR systems). Mirroring is fire-and-forget: write
// failures are logged, never surfaced to the triggering mutation.
type Publisher struct {
	log   *zap.SugaredLogger
	w     *kafka.Writer
	topic string
}

func NewPublisher(log *zap.SugaredLogger, brokers []string, topic string) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.LeastBytes{},
		Async:                  true,
		AllowAutoTopicCreation: true,
	}

	return &Publisher{log: log, w: w, topic: topic}
}

type wireEvent struct {
	ID         string      `json:"id"`
	Collection string      `json:"collection"`
	DocID      uint        `json:"doc_id"`
	Before     interface{} `json:"before,omitempty"`
	After      interface{} `json:"after,omitempty"`
}

// Mirror is a Bus handler; attach with bus.SubscribeAll(p.Mirror).
func (p *Publisher) Mirror(ev ChangeEvent) {
	b, err := json.Marshal(wireEvent{
		ID:         ev.ID,
		Collection: ev.Collection,
		DocID:      ev.DocID,
		Before:     ev.Before,
		After:      ev.After,
	})
	if err != nil {
		p.log.Errorw("marshal change event", "event_id", ev.ID, "error", err)
		return
	}

	err = p.w.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(fmt.Sprintf("%s:%d", ev.Collection, ev.DocID)),
		Value: b,
		Topic: p.topic,
	})
	if err != nil {
		p.log.Errorw("write change event", "event_id", ev.ID, "error", err)
	}
}

func (p *Publisher) Close() {
	if err := p.w.Close(); err != nil {
		p.log.Errorw("close kafka writer", "error", err)
	}
}
