// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"dispatch/internal/domain/entity"

	"github.com/pkg/errors"
)

// Domain-specific errors for compliance audit persistence.
var (
	// ErrDuplicateAudit is returned when an audit with the same ID already exists.
	ErrDuplicateAudit = errors.New("compliance audit already exists")
)

// ComplianceAuditRepository stores eligibility evaluations for the retention period.
type ComplianceAuditRepository interface {
	// CreateAudit persists one evaluation; CreatedAt is filled on success.
	CreateAudit(ctx context.Context, audit *entity.ComplianceAudit) error

	// FindAuditsByOrderReference lists evaluations for an order, newest first.
	FindAuditsByOrderReference(ctx context.Context, orderReference string, limit int) ([]*entity.ComplianceAudit, error)
}
