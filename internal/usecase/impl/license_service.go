package impl

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	deliverycontext "dispatch/internal/delivery/context"
	"dispatch/internal/domain/entity"
	"dispatch/internal/domain/service"
	"dispatch/internal/errors"
	"dispatch/internal/usecase"
)

// licenseFormat is the common state license shape: 2-4 letters, optional hyphen, 5-10 digits
var licenseFormat = regexp.MustCompile(`^[A-Za-z]{2,4}-?[0-9]{5,10}$`)

const minHeuristicLicenseLength = 5

type licenseService struct {
	registry service.LicenseRegistry
	now      func() time.Time
	logger   *slog.Logger
}

// NewLicenseService creates a license verifier. registry may be nil, in which
// case every verification uses the heuristic.
func NewLicenseService(registry service.LicenseRegistry, logger *slog.Logger) usecase.LicenseUsecase {
	return &licenseService{
		registry: registry,
		now:      time.Now,
		logger:   logger,
	}
}

// Verify resolves a license number to a verdict and never fails
func (s *licenseService) Verify(ctx context.Context, licenseNumber, businessName string) *entity.LicenseVerificationResult {
	record, err := s.lookup(ctx, licenseNumber)
	if err == nil {
		return s.fromRecord(licenseNumber, businessName, record)
	}

	deliverycontext.GetLoggerOrDefault(ctx, s.logger).Warn("License registry lookup failed, using format heuristic",
		slog.String("license_number", licenseNumber),
		slog.String("reason", err.Error()),
		slog.Bool("timeout", errors.IsTimeout(err)),
	)

	return s.heuristic(licenseNumber, businessName, err)
}

func (s *licenseService) lookup(ctx context.Context, licenseNumber string) (*service.LicenseRecord, error) {
	if s.registry == nil {
		return nil, service.ErrLicenseRegistryNotConfigured
	}

	record, err := s.registry.Lookup(ctx, licenseNumber)
	if err != nil {
		return nil, err
	}
	if record == nil || strings.TrimSpace(record.Status) == "" {
		return nil, service.ErrMalformedLicense
	}

	return record, nil
}

func (s *licenseService) fromRecord(licenseNumber, businessName string, record *service.LicenseRecord) *entity.LicenseVerificationResult {
	status := strings.ToLower(strings.TrimSpace(record.Status))
	valid := status == "active" || status == "current"

	name := record.BusinessName
	if name == "" {
		name = businessName
	}

	details := "Verified against the state license registry"
	if !valid {
		details = "Registry reports the license as " + status
	}

	return &entity.LicenseVerificationResult{
		Valid:          valid,
		LicenseNumber:  licenseNumber,
		BusinessName:   name,
		LicenseType:    record.LicenseType,
		Status:         status,
		ExpirationDate: record.ExpirationDate,
		County:         record.County,
		Method:         entity.VerificationMethodExternalLookup,
		VerifiedAt:     s.now(),
		Details:        details,
	}
}

// heuristic is a liveness fallback, not a compliance verdict: the result is
// always flagged for manual admin review.
func (s *licenseService) heuristic(licenseNumber, businessName string, cause error) *entity.LicenseVerificationResult {
	valid := MatchesLicenseFormat(licenseNumber) || utf8.RuneCountInString(licenseNumber) >= minHeuristicLicenseLength

	status := entity.LicenseStatusInvalidFormat
	if valid {
		status = entity.LicenseStatusPendingManualReview
	}

	return &entity.LicenseVerificationResult{
		Valid:                valid,
		LicenseNumber:        licenseNumber,
		BusinessName:         businessName,
		Status:               status,
		Method:               entity.VerificationMethodHeuristic,
		VerifiedAt:           s.now(),
		Details:              "Registry unavailable (" + cause.Error() + "); format check only, manual admin review required",
		RequiresManualReview: true,
	}
}

// MatchesLicenseFormat reports whether the license number has the standard shape
func MatchesLicenseFormat(licenseNumber string) bool {
	return licenseFormat.MatchString(strings.TrimSpace(licenseNumber))
}
