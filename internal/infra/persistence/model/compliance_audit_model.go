package model

import (
	"time"

	"github.com/google/uuid"
)

// ComplianceAuditModel is the GORM-specific struct for the 'compliance_audits' table.
// Rows are append-only and kept until RetainUntil.
type ComplianceAuditModel struct {
	ID                      uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderReference          string    `gorm:"type:varchar(255);index"`
	AlcoholLicenseNumber    string    `gorm:"type:varchar(64)"`
	Eligible                bool      `gorm:"not null"`
	HasAlcohol              bool      `gorm:"not null"`
	FoodRatio               float64   `gorm:"type:numeric(6,4);not null"`
	RestaurantLicensed      bool      `gorm:"not null"`
	WithinDeliveryWindow    bool      `gorm:"not null"`
	FoodRatioMet            bool      `gorm:"not null"`
	SealedContainerRequired bool      `gorm:"not null"`
	AgeVerificationRequired bool      `gorm:"not null"`
	DriverBackgroundChecked bool      `gorm:"not null"`
	Reasons                 []string  `gorm:"type:jsonb;serializer:json;not null"`
	EvaluatedAt             time.Time `gorm:"not null;index"`
	RetainUntil             time.Time `gorm:"not null;index"`
	CreatedAt               time.Time
}

// TableName explicitly sets the table name for GORM.
func (ComplianceAuditModel) TableName() string {
	return "compliance_audits"
}
