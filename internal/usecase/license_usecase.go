package usecase

import (
	"context"

	"dispatch/internal/domain/entity"
)

// LicenseUsecase verifies liquor license numbers
type LicenseUsecase interface {
	// Verify always resolves to a result. Registry failures fall back to a
	// format heuristic flagged for manual review.
	Verify(ctx context.Context, licenseNumber, businessName string) *entity.LicenseVerificationResult
}
