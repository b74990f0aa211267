// Package events publishes product change events to NATS.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/centralelevate/elevate/internal/product"
)

// Event types.
const (
	ProductCreated = "product.created"
	ProductUpdated = "product.updated"
	ProductDeleted = "product.deleted"
)

// Conn is the subset of *nats.Conn used for publishing.
type Conn interface {
	Publish(subject string, data []byte) error
}

// Event is the JSON payload published for every product mutation.
type Event struct {
	Type      string           `json:"type"`
	ProductID uuid.UUID        `json:"productId"`
	Product   *product.Product `json:"product,omitempty"`
	At        time.Time        `json:"at"`
}

// NATSPublisher publishes events on a fixed subject.
type NATSPublisher struct {
	conn    Conn
	subject string
}

// NewNATSPublisher binds a connection to a subject.
func NewNATSPublisher(conn Conn, subject string) *NATSPublisher {
	return &NATSPublisher{conn: conn, subject: subject}
}

// Publish marshals evt and sends it.
func (n *NATSPublisher) Publish(evt Event) error {
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", evt.Type, err)
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("publishing %s event: %w", evt.Type, err)
	}
	return nil
}

// Nop discards events. Used when NATS is not configured.
type Nop struct{}

func (Nop) Publish(Event) error { return nil }
