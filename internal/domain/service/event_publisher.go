package service

import (
	"context"
	"time"
)

// ComplianceEvent is published for every eligibility evaluation
type ComplianceEvent struct {
	RequestID            string    `json:"request_id,omitempty"` // For distributed tracing
	EventID              string    `json:"event_id"`
	Type                 string    `json:"type"`
	OrderReference       string    `json:"order_reference,omitempty"`
	AlcoholLicenseNumber string    `json:"alcohol_license_number,omitempty"`
	Eligible             bool      `json:"eligible"`
	HasAlcohol           bool      `json:"has_alcohol"`
	Reasons              []string  `json:"reasons"`
	EvaluatedAt          time.Time `json:"evaluated_at"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishComplianceEvent publishes a compliance decision for downstream audit consumers
	PublishComplianceEvent(ctx context.Context, event *ComplianceEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
