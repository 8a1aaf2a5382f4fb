package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Envelope es el sobre común de todos los eventos publicados, sea cual sea el broker.
type Envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Source     string          `json:"source"`
	Key        string          `json:"key"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// NewEnvelope serializa payload dentro de un sobre con id nuevo.
func NewEnvelope(eventType, source, key string, payload any, at time.Time) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("serializar evento %s: %w", eventType, err)
	}
	return &Envelope{
		ID:         uuid.New().String(),
		Type:       eventType,
		Source:     source,
		Key:        key,
		OccurredAt: at.UTC(),
		Data:       data,
	}, nil
}

// Marshal devuelve el sobre en JSON.
func (e *Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}
