package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"dispatch/config"
	deliverycontext "dispatch/internal/delivery/context"
	"dispatch/internal/domain/constants"
	"dispatch/internal/domain/entity"
	"dispatch/internal/domain/repository"
	"dispatch/internal/domain/service"
	"dispatch/internal/usecase"

	"github.com/google/uuid"
)

const (
	deliveryWindowStartHour = 8
	deliveryWindowEndHour   = 22
	minFoodRatio            = 0.4
	minAlcoholAge           = 21
	recordRetentionYears    = 7
	auditTrailPageSize      = 20

	defaultComplianceTimezone = "America/New_York"
)

const (
	statuteLicense      = "NY ABC Law §64"
	statuteMinimumAge   = "NY ABC Law §65"
	statuteHours        = "NY ABC Law §106"
	statuteFoodRequired = "NY ABC Law §64-d"
	statuteRecords      = "NY ABC Law §106(12)"
)

const (
	reasonLicense          = "Restaurant does not hold a valid liquor license (" + statuteLicense + ")"
	reasonDeliveryWindow   = "Delivery time is outside the permitted 08:00-22:00 window (" + statuteHours + ")"
	reasonFoodRatio        = "Food must make up at least 40% of the order value (" + statuteFoodRequired + ")"
	reasonAgeVerification  = "Customer age (21+) must be verified for alcohol orders (" + statuteMinimumAge + ")"
	reasonDriverBackground = "Driver has not passed a background check (" + statuteLicense + " delivery agent requirement)"
)

type complianceService struct {
	auditRepo repository.ComplianceAuditRepository
	publisher service.EventPublisher
	location  *time.Location
	now       func() time.Time
	logger    *slog.Logger
}

// NewComplianceService creates the alcohol delivery evaluator. auditRepo and
// publisher are best-effort sinks and may be nil.
func NewComplianceService(
	cfg *config.Config,
	auditRepo repository.ComplianceAuditRepository,
	publisher service.EventPublisher,
	logger *slog.Logger,
) usecase.ComplianceUsecase {
	timezone := defaultComplianceTimezone
	if cfg.Compliance != nil && cfg.Compliance.Timezone != "" {
		timezone = cfg.Compliance.Timezone
	}

	location, err := time.LoadLocation(timezone)
	if err != nil {
		logger.Error("Failed to load compliance timezone, using UTC",
			slog.String("timezone", timezone),
			slog.Any("error", err),
		)
		location = time.UTC
	}

	return &complianceService{
		auditRepo: auditRepo,
		publisher: publisher,
		location:  location,
		now:       time.Now,
		logger:    logger,
	}
}

func (s *complianceService) getLogger(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, s.logger)
}

// Evaluate runs every check unconditionally and records the verdict
func (s *complianceService) Evaluate(ctx context.Context, input *entity.ComplianceInput) *entity.ComplianceResult {
	if input == nil {
		input = &entity.ComplianceInput{}
	}

	evaluatedAt := s.now()
	result := s.evaluate(input, evaluatedAt)

	s.recordAudit(ctx, input, result)
	s.publish(ctx, input, result)

	return result
}

func (s *complianceService) evaluate(input *entity.ComplianceInput, evaluatedAt time.Time) *entity.ComplianceResult {
	deliveryTime := evaluatedAt
	if input.DeliveryTime != nil {
		deliveryTime = *input.DeliveryTime
	}

	foodRatio, foodRatioMet := FoodRatio(input.OrderItems)
	hasAlcohol := HasAlcohol(input.OrderItems)

	checks := entity.ComplianceCheckSet{
		RestaurantLicensed:      input.RestaurantHasLicense && strings.TrimSpace(input.AlcoholLicenseNumber) != "",
		WithinDeliveryWindow:    WithinDeliveryWindow(deliveryTime, s.location),
		FoodRatioMet:            foodRatioMet,
		SealedContainerRequired: true,
		AgeVerificationRequired: hasAlcohol,
		DriverBackgroundChecked: input.DriverBackgroundChecked,
	}

	reasons := make([]string, 0, 5)
	if !checks.RestaurantLicensed {
		reasons = append(reasons, reasonLicense)
	}
	if !checks.WithinDeliveryWindow {
		reasons = append(reasons, reasonDeliveryWindow)
	}
	if !checks.FoodRatioMet {
		reasons = append(reasons, reasonFoodRatio)
	}
	if hasAlcohol && !input.CustomerAgeVerified {
		reasons = append(reasons, reasonAgeVerification)
	}
	if !checks.DriverBackgroundChecked {
		reasons = append(reasons, reasonDriverBackground)
	}

	return &entity.ComplianceResult{
		Eligible:    len(reasons) == 0,
		Checks:      checks,
		Reasons:     reasons,
		HasAlcohol:  hasAlcohol,
		FoodRatio:   foodRatio,
		EvaluatedAt: evaluatedAt,
	}
}

func (s *complianceService) recordAudit(ctx context.Context, input *entity.ComplianceInput, result *entity.ComplianceResult) {
	if s.auditRepo == nil {
		return
	}

	audit := &entity.ComplianceAudit{
		ID:                   uuid.New(),
		OrderReference:       input.OrderReference,
		AlcoholLicenseNumber: input.AlcoholLicenseNumber,
		Eligible:             result.Eligible,
		HasAlcohol:           result.HasAlcohol,
		FoodRatio:            result.FoodRatio,
		Checks:               result.Checks,
		Reasons:              result.Reasons,
		EvaluatedAt:          result.EvaluatedAt,
		RetainUntil:          result.EvaluatedAt.AddDate(recordRetentionYears, 0, 0),
	}

	if err := s.auditRepo.CreateAudit(ctx, audit); err != nil {
		s.getLogger(ctx).Error("Failed to record compliance audit",
			slog.String("order_reference", input.OrderReference),
			slog.Any("error", err),
		)
	}
}

func (s *complianceService) publish(ctx context.Context, input *entity.ComplianceInput, result *entity.ComplianceResult) {
	if s.publisher == nil {
		return
	}

	event := &service.ComplianceEvent{
		RequestID:            deliverycontext.GetRequestIDFromContext(ctx),
		EventID:              uuid.New().String(),
		Type:                 constants.EventComplianceEvaluated,
		OrderReference:       input.OrderReference,
		AlcoholLicenseNumber: input.AlcoholLicenseNumber,
		Eligible:             result.Eligible,
		HasAlcohol:           result.HasAlcohol,
		Reasons:              result.Reasons,
		EvaluatedAt:          result.EvaluatedAt,
	}

	if err := s.publisher.PublishComplianceEvent(ctx, event); err != nil {
		s.getLogger(ctx).Warn("Failed to publish compliance event",
			slog.String("event_id", event.EventID),
			slog.Any("error", err),
		)
	}
}

// AuditTrail reads back the evaluations recorded for an order
func (s *complianceService) AuditTrail(ctx context.Context, orderReference string, limit int) ([]*entity.ComplianceAudit, error) {
	if s.auditRepo == nil {
		return []*entity.ComplianceAudit{}, nil
	}

	if limit <= 0 {
		limit = auditTrailPageSize
	}

	audits, err := s.auditRepo.FindAuditsByOrderReference(ctx, orderReference, limit)
	if err != nil {
		s.getLogger(ctx).Error("Failed to read compliance audit trail",
			slog.String("order_reference", orderReference),
			slog.Any("error", err),
		)

		return nil, err
	}

	return audits, nil
}

// Requirements returns the static statute and threshold table
func (s *complianceService) Requirements() *entity.ComplianceRequirements {
	return &entity.ComplianceRequirements{
		Jurisdiction: "New York State",
		Statutes: []entity.Statute{
			{
				Code:        statuteLicense,
				Title:       "Retail license requirement",
				Description: "Alcoholic beverages may only be sold for delivery by a licensee holding an active on-premises or retail license.",
			},
			{
				Code:        statuteMinimumAge,
				Title:       "Sale to persons under 21",
				Description: "No alcoholic beverage may be sold or delivered to a person under 21. Identification must be checked at handoff.",
			},
			{
				Code:        statuteHours,
				Title:       "Hours of sale",
				Description: "Alcohol deliveries are limited to 08:00-22:00 local time.",
			},
			{
				Code:        statuteFoodRequired,
				Title:       "Alcohol to go with food",
				Description: "Alcohol sold for off-premises consumption must accompany a substantial food order.",
			},
			{
				Code:        statuteRecords,
				Title:       "Record keeping",
				Description: "Delivery and sale records must be retained and available for inspection.",
			},
		},
		Thresholds: entity.ComplianceThresholds{
			DeliveryWindowStartHour: deliveryWindowStartHour,
			DeliveryWindowEndHour:   deliveryWindowEndHour,
			DeliveryWindowTimezone:  s.location.String(),
			MinFoodRatio:            minFoodRatio,
			MinAge:                  minAlcoholAge,
			RecordRetentionYears:    recordRetentionYears,
		},
		PartnerRequirements: []string{
			"Active on-premises liquor license on file",
			"Alcoholic items flagged on the menu",
			"Alcohol sealed in tamper-evident packaging",
			"Food items make up at least 40% of every alcohol order",
		},
		DriverRequirements: []string{
			"Passed background check",
			"Completed responsible alcohol delivery training",
			"Verify customer ID (21+) at handoff",
			"Refuse delivery to visibly intoxicated customers",
		},
	}
}

// WithinDeliveryWindow reports whether t falls in [08:00, 22:00) in location
func WithinDeliveryWindow(t time.Time, location *time.Location) bool {
	hour := t.In(location).Hour()

	return hour >= deliveryWindowStartHour && hour < deliveryWindowEndHour
}

// FoodRatio returns the share of order value from non-alcohol items and whether
// it meets the minimum. An order with no value trivially meets it.
func FoodRatio(items []entity.OrderItem) (float64, bool) {
	var total, food float64
	for _, item := range items {
		value := item.Price * float64(item.Quantity)
		total += value
		if !item.IsAlcohol {
			food += value
		}
	}

	if total == 0 {
		return 0, true
	}

	ratio := food / total

	return ratio, ratio >= minFoodRatio
}

// HasAlcohol reports whether any item is alcoholic
func HasAlcohol(items []entity.OrderItem) bool {
	for _, item := range items {
		if item.IsAlcohol {
			return true
		}
	}

	return false
}
