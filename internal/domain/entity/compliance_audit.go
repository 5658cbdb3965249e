package entity

import (
	"time"

	"github.com/google/uuid"
)

// ComplianceAudit is the retained record of one eligibility evaluation.
type ComplianceAudit struct {
	ID                   uuid.UUID          `json:"id"`
	OrderReference       string             `json:"order_reference"`
	AlcoholLicenseNumber string             `json:"alcohol_license_number,omitempty"`
	Eligible             bool               `json:"eligible"`
	HasAlcohol           bool               `json:"has_alcohol"`
	FoodRatio            float64            `json:"food_ratio"`
	Checks               ComplianceCheckSet `json:"checks"`
	Reasons              []string           `json:"reasons"`
	EvaluatedAt          time.Time          `json:"evaluated_at"`
	RetainUntil          time.Time          `json:"retain_until"`
	CreatedAt            time.Time          `json:"created_at"`
}
