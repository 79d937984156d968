package catalog

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EventProductCreated = "ProductCreated"
	EventProductUpdated = "ProductUpdated"
	EventProductDeleted = "ProductDeleted"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "catalog-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // product id
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload tipe per event ----

type PricePayload struct {
	ID        int64     `json:"id,omitempty"`
	Amount    int       `json:"amount"`
	PriceType PriceType `json:"price_type"`
}

type ProductPayload struct {
	ProductID   int64          `json:"product_id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Prices      []PricePayload `json:"prices"`
}

type ProductDeletedPayload struct {
	ProductID int64 `json:"product_id"`
}

func NewProductPayload(p Product) ProductPayload {
	prices := make([]PricePayload, 0, len(p.Prices))
	for _, pr := range p.Prices {
		prices = append(prices, PricePayload{ID: pr.ID, Amount: pr.Amount, PriceType: pr.PriceType})
	}
	return ProductPayload{
		ProductID:   p.ID,
		Name:        p.Name,
		Description: p.Description,
		Prices:      prices,
	}
}

// NewEnvelope wraps an already-encoded payload in a version 1 envelope.
func NewEnvelope(eventType, producer, traceID, correlationID string, payload json.RawMessage) Envelope {
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		TraceID:       traceID,
		CorrelationID: correlationID,
		Payload:       payload,
	}
}
