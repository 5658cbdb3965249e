package usecase

import (
	"context"

	"dispatch/internal/domain/entity"
)

// ComplianceUsecase evaluates alcohol delivery eligibility
type ComplianceUsecase interface {
	// Evaluate runs every check and returns a verdict. It never fails:
	// ineligible is a normal outcome.
	Evaluate(ctx context.Context, input *entity.ComplianceInput) *entity.ComplianceResult

	// Requirements returns the static statute and threshold table
	Requirements() *entity.ComplianceRequirements

	// AuditTrail lists the recorded evaluations for an order, newest first.
	// A limit of zero means the default page size.
	AuditTrail(ctx context.Context, orderReference string, limit int) ([]*entity.ComplianceAudit, error)
}
