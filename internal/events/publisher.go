// Package events publishes discovery results to NATS for external
// consumers (inventory systems, alerting). Publishing is best-effort; a
// down broker never fails a batch.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

const DefaultSubject = "scout.discovery.result"

// ResultEvent is the wire shape of one discovery result.
type ResultEvent struct {
	CameraID  string    `json:"camera_id"`
	IP        string    `json:"ip"`
	Status    string    `json:"status"`
	Vendor    string    `json:"vendor"`
	URL       string    `json:"url,omitempty"`
	Path      string    `json:"path"`
	Port      int       `json:"port"`
	LatencyMs int64     `json:"latency_ms"`
	At        time.Time `json:"at"`
}

type Publisher struct {
	conn       *nats.Conn
	subject    string
	maxRetries int
}

func NewPublisher(conn *nats.Conn, subject string, maxRetries int) *Publisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Publisher{conn: conn, subject: subject, maxRetries: maxRetries}
}

func (p *Publisher) Publish(evt ResultEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	for i := 0; i <= p.maxRetries; i++ {
		err = p.conn.Publish(p.subject, data)
		if err == nil {
			return nil
		}
		time.Sleep(time.Duration(i*100) * time.Millisecond)
	}
	return fmt.Errorf("publish failed after %d retries: %w", p.maxRetries, err)
}
