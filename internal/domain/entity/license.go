package entity

import "time"

// VerificationMethod records how a license verdict was reached.
type VerificationMethod string

const (
	VerificationMethodExternalLookup VerificationMethod = "external_lookup"
	// VerificationMethodManualReview is set by the admin review flow.
	VerificationMethodManualReview VerificationMethod = "manual_review"
	VerificationMethodHeuristic    VerificationMethod = "heuristic"
)

// Heuristic statuses.
const (
	LicenseStatusPendingManualReview = "pending_manual_review"
	LicenseStatusInvalidFormat       = "invalid_format"
)

// LicenseVerificationResult is the verdict for one liquor license number.
type LicenseVerificationResult struct {
	Valid                bool               `json:"valid"`
	LicenseNumber        string             `json:"license_number"`
	BusinessName         string             `json:"business_name,omitempty"`
	LicenseType          string             `json:"license_type,omitempty"`
	Status               string             `json:"status,omitempty"`
	ExpirationDate       string             `json:"expiration_date,omitempty"`
	County               string             `json:"county,omitempty"`
	Method               VerificationMethod `json:"method"`
	VerifiedAt           time.Time          `json:"verified_at"`
	Details              string             `json:"details,omitempty"`
	RequiresManualReview bool               `json:"requires_manual_review"`
}
