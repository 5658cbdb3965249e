package impl

import (
	"context"
	"log/slog"
	"testing"
	"time"
	_ "time/tzdata"

	"dispatch/config"
	deliverycontext "dispatch/internal/delivery/context"
	"dispatch/internal/domain/constants"
	"dispatch/internal/domain/entity"
	"dispatch/internal/domain/service"
	"dispatch/internal/errors"
	mockRepository "dispatch/internal/mocks/repository"
	mockService "dispatch/internal/mocks/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newYork(t *testing.T) *time.Location {
	t.Helper()

	location, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	return location
}

func newTestComplianceService(t *testing.T) *complianceService {
	t.Helper()

	svc := NewComplianceService(&config.Config{}, nil, nil, slog.Default()).(*complianceService)
	noon := time.Date(2025, 6, 2, 12, 0, 0, 0, newYork(t))
	svc.now = func() time.Time { return noon }

	return svc
}

// eligibleInput passes every check
func eligibleInput(t *testing.T) *entity.ComplianceInput {
	deliveryTime := time.Date(2025, 6, 2, 18, 30, 0, 0, newYork(t))

	return &entity.ComplianceInput{
		OrderReference:       "order-42",
		RestaurantHasLicense: true,
		AlcoholLicenseNumber: "NY-1234567",
		OrderItems: []entity.OrderItem{
			{Name: "Pad Thai", Price: 18, Quantity: 2},
			{Name: "Singha", Price: 8, Quantity: 2, IsAlcohol: true},
		},
		DeliveryTime:            &deliveryTime,
		CustomerAgeVerified:     true,
		DriverBackgroundChecked: true,
	}
}

func TestComplianceService_Eligible(t *testing.T) {
	svc := newTestComplianceService(t)

	result := svc.Evaluate(context.Background(), eligibleInput(t))

	assert.True(t, result.Eligible)
	assert.Empty(t, result.Reasons)
	assert.True(t, result.HasAlcohol)
	assert.InDelta(t, 36.0/52.0, result.FoodRatio, 1e-9)
	assert.Equal(t, entity.ComplianceCheckSet{
		RestaurantLicensed:      true,
		WithinDeliveryWindow:    true,
		FoodRatioMet:            true,
		SealedContainerRequired: true,
		AgeVerificationRequired: true,
		DriverBackgroundChecked: true,
	}, result.Checks)
	assert.Equal(t, svc.now(), result.EvaluatedAt)
}

func TestComplianceService_NoLicenseIsAlwaysIneligible(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*entity.ComplianceInput)
	}{
		{"flag false", func(in *entity.ComplianceInput) { in.RestaurantHasLicense = false }},
		{"blank license number", func(in *entity.ComplianceInput) { in.AlcoholLicenseNumber = "  " }},
		{"flag false and no number", func(in *entity.ComplianceInput) {
			in.RestaurantHasLicense = false
			in.AlcoholLicenseNumber = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestComplianceService(t)
			input := eligibleInput(t)
			tt.mutate(input)

			result := svc.Evaluate(context.Background(), input)

			assert.False(t, result.Eligible)
			assert.False(t, result.Checks.RestaurantLicensed)
			assert.Equal(t, []string{reasonLicense}, result.Reasons)
		})
	}
}

func TestComplianceService_FoodRatio(t *testing.T) {
	svc := newTestComplianceService(t)

	input := eligibleInput(t)
	input.OrderItems = []entity.OrderItem{
		{Name: "Wine", Price: 10, Quantity: 1, IsAlcohol: true},
		{Name: "Salad", Price: 6, Quantity: 1},
	}

	result := svc.Evaluate(context.Background(), input)
	assert.False(t, result.Checks.FoodRatioMet, "6/16 is below 0.4")
	assert.InDelta(t, 0.375, result.FoodRatio, 1e-9)
	assert.False(t, result.Eligible)
	assert.Equal(t, []string{reasonFoodRatio}, result.Reasons)

	input.OrderItems = append(input.OrderItems, entity.OrderItem{Name: "Bread", Price: 1, Quantity: 1})

	result = svc.Evaluate(context.Background(), input)
	assert.True(t, result.Checks.FoodRatioMet, "7/17 meets 0.4")
	assert.True(t, result.Eligible)
}

func TestFoodRatio(t *testing.T) {
	tests := []struct {
		name      string
		items     []entity.OrderItem
		wantRatio float64
		wantMet   bool
	}{
		{"empty order", nil, 0, true},
		{"zero priced items", []entity.OrderItem{{Price: 0, Quantity: 3, IsAlcohol: true}}, 0, true},
		{"alcohol only", []entity.OrderItem{{Price: 20, Quantity: 1, IsAlcohol: true}}, 0, false},
		{"food only", []entity.OrderItem{{Price: 20, Quantity: 1}}, 1, true},
		{"exactly forty percent", []entity.OrderItem{
			{Price: 3, Quantity: 2, IsAlcohol: true},
			{Price: 2, Quantity: 2},
		}, 0.4, true},
		{"quantity weights value", []entity.OrderItem{
			{Price: 10, Quantity: 1, IsAlcohol: true},
			{Price: 1, Quantity: 10},
		}, 0.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ratio, met := FoodRatio(tt.items)
			assert.InDelta(t, tt.wantRatio, ratio, 1e-9)
			assert.Equal(t, tt.wantMet, met)
		})
	}
}

func TestWithinDeliveryWindow(t *testing.T) {
	ny := newYork(t)

	tests := []struct {
		hour int
		want bool
	}{
		{0, false},
		{7, false},
		{8, true},
		{12, true},
		{21, true},
		{22, false},
		{23, false},
	}

	for _, tt := range tests {
		at := time.Date(2025, 6, 2, tt.hour, 59, 0, 0, ny)
		assert.Equal(t, tt.want, WithinDeliveryWindow(at, ny), "hour %d", tt.hour)
	}

	// 02:30 UTC is 22:30 in New York during daylight saving time
	assert.False(t, WithinDeliveryWindow(time.Date(2025, 6, 3, 2, 30, 0, 0, time.UTC), ny))
	// 13:00 UTC is 09:00 in New York
	assert.True(t, WithinDeliveryWindow(time.Date(2025, 6, 3, 13, 0, 0, 0, time.UTC), ny))
}

func TestComplianceService_LateNightIsIneligible(t *testing.T) {
	svc := newTestComplianceService(t)

	input := eligibleInput(t)
	late := time.Date(2025, 6, 2, 23, 15, 0, 0, newYork(t))
	input.DeliveryTime = &late

	result := svc.Evaluate(context.Background(), input)

	assert.False(t, result.Checks.WithinDeliveryWindow)
	assert.False(t, result.Eligible)
	assert.Equal(t, []string{reasonDeliveryWindow}, result.Reasons)
}

func TestComplianceService_DefaultsDeliveryTimeToNow(t *testing.T) {
	svc := newTestComplianceService(t)
	input := eligibleInput(t)
	input.DeliveryTime = nil

	assert.True(t, svc.Evaluate(context.Background(), input).Checks.WithinDeliveryWindow)

	svc.now = func() time.Time { return time.Date(2025, 6, 2, 6, 0, 0, 0, newYork(t)) }
	assert.False(t, svc.Evaluate(context.Background(), input).Checks.WithinDeliveryWindow)
}

func TestComplianceService_ReasonOrder(t *testing.T) {
	svc := newTestComplianceService(t)
	late := time.Date(2025, 6, 2, 23, 0, 0, 0, newYork(t))

	result := svc.Evaluate(context.Background(), &entity.ComplianceInput{
		OrderItems:   []entity.OrderItem{{Name: "Vodka", Price: 30, Quantity: 1, IsAlcohol: true}},
		DeliveryTime: &late,
	})

	assert.False(t, result.Eligible)
	assert.Equal(t, []string{
		reasonLicense,
		reasonDeliveryWindow,
		reasonFoodRatio,
		reasonAgeVerification,
		reasonDriverBackground,
	}, result.Reasons)
	assert.True(t, result.Checks.SealedContainerRequired)
	assert.True(t, result.Checks.AgeVerificationRequired)
}

func TestComplianceService_AgeVerificationOnlyForAlcohol(t *testing.T) {
	svc := newTestComplianceService(t)

	input := eligibleInput(t)
	input.CustomerAgeVerified = false
	input.OrderItems = []entity.OrderItem{{Name: "Soup", Price: 9, Quantity: 1}}

	result := svc.Evaluate(context.Background(), input)
	assert.True(t, result.Eligible)
	assert.False(t, result.HasAlcohol)
	assert.False(t, result.Checks.AgeVerificationRequired)
	assert.True(t, result.Checks.SealedContainerRequired)

	input.OrderItems = append(input.OrderItems, entity.OrderItem{Name: "Beer", Price: 5, Quantity: 1, IsAlcohol: true})

	result = svc.Evaluate(context.Background(), input)
	assert.False(t, result.Eligible)
	assert.Equal(t, []string{reasonAgeVerification}, result.Reasons)
}

func TestComplianceService_DriverBackgroundCheck(t *testing.T) {
	svc := newTestComplianceService(t)

	input := eligibleInput(t)
	input.DriverBackgroundChecked = false

	result := svc.Evaluate(context.Background(), input)
	assert.False(t, result.Eligible)
	assert.False(t, result.Checks.DriverBackgroundChecked)
	assert.Equal(t, []string{reasonDriverBackground}, result.Reasons)
}

func TestComplianceService_NilInput(t *testing.T) {
	svc := newTestComplianceService(t)

	var result *entity.ComplianceResult
	require.NotPanics(t, func() {
		result = svc.Evaluate(context.Background(), nil)
	})
	assert.False(t, result.Eligible)
	assert.Equal(t, reasonLicense, result.Reasons[0])
}

func TestComplianceService_RecordsAuditAndPublishesEvent(t *testing.T) {
	auditRepo := mockRepository.NewMockComplianceAuditRepository(t)
	publisher := mockService.NewMockEventPublisher(t)

	svc := NewComplianceService(&config.Config{}, auditRepo, publisher, slog.Default()).(*complianceService)
	evaluatedAt := time.Date(2025, 6, 2, 12, 0, 0, 0, newYork(t))
	svc.now = func() time.Time { return evaluatedAt }

	ctx := deliverycontext.WithRequestID(context.Background(), "req-1")

	auditRepo.On("CreateAudit", ctx, mock.MatchedBy(func(audit *entity.ComplianceAudit) bool {
		return audit.OrderReference == "order-42" &&
			audit.Eligible &&
			audit.HasAlcohol &&
			audit.AlcoholLicenseNumber == "NY-1234567" &&
			audit.EvaluatedAt.Equal(evaluatedAt) &&
			audit.RetainUntil.Equal(evaluatedAt.AddDate(7, 0, 0))
	})).Return(nil).Once()

	publisher.On("PublishComplianceEvent", ctx, mock.MatchedBy(func(event *service.ComplianceEvent) bool {
		return event.RequestID == "req-1" &&
			event.Type == constants.EventComplianceEvaluated &&
			event.EventID != "" &&
			event.OrderReference == "order-42" &&
			event.Eligible
	})).Return(nil).Once()

	result := svc.Evaluate(ctx, eligibleInput(t))
	assert.True(t, result.Eligible)
}

func TestComplianceService_SinkFailuresDoNotChangeVerdict(t *testing.T) {
	auditRepo := mockRepository.NewMockComplianceAuditRepository(t)
	publisher := mockService.NewMockEventPublisher(t)

	svc := NewComplianceService(&config.Config{}, auditRepo, publisher, slog.Default()).(*complianceService)

	auditRepo.On("CreateAudit", mock.Anything, mock.Anything).Return(errors.New("connection refused")).Once()
	publisher.On("PublishComplianceEvent", mock.Anything, mock.Anything).Return(errors.New("topic not found")).Once()

	input := eligibleInput(t)
	result := svc.Evaluate(context.Background(), input)

	assert.True(t, result.Eligible)
	assert.Empty(t, result.Reasons)
}

func TestComplianceService_AuditTrail(t *testing.T) {
	auditRepo := mockRepository.NewMockComplianceAuditRepository(t)
	svc := NewComplianceService(&config.Config{}, auditRepo, nil, slog.Default())
	ctx := context.Background()

	stored := []*entity.ComplianceAudit{{OrderReference: "order-42", Eligible: true}}
	auditRepo.On("FindAuditsByOrderReference", ctx, "order-42", 20).Return(stored, nil).Once()
	auditRepo.On("FindAuditsByOrderReference", ctx, "order-42", 5).Return(stored, nil).Once()
	auditRepo.On("FindAuditsByOrderReference", ctx, "order-43", 20).Return(nil, errors.New("connection refused")).Once()

	audits, err := svc.AuditTrail(ctx, "order-42", 0)
	require.NoError(t, err)
	assert.Equal(t, stored, audits)

	_, err = svc.AuditTrail(ctx, "order-42", 5)
	require.NoError(t, err)

	_, err = svc.AuditTrail(ctx, "order-43", 0)
	assert.Error(t, err)
}

func TestComplianceService_AuditTrailWithoutRepository(t *testing.T) {
	svc := NewComplianceService(&config.Config{}, nil, nil, slog.Default())

	audits, err := svc.AuditTrail(context.Background(), "order-42", 0)
	require.NoError(t, err)
	assert.NotNil(t, audits)
	assert.Empty(t, audits)
}

func TestComplianceService_Requirements(t *testing.T) {
	svc := newTestComplianceService(t)

	requirements := svc.Requirements()

	assert.Equal(t, entity.ComplianceThresholds{
		DeliveryWindowStartHour: 8,
		DeliveryWindowEndHour:   22,
		DeliveryWindowTimezone:  "America/New_York",
		MinFoodRatio:            0.4,
		MinAge:                  21,
		RecordRetentionYears:    7,
	}, requirements.Thresholds)
	assert.NotEmpty(t, requirements.Statutes)
	assert.NotEmpty(t, requirements.PartnerRequirements)
	assert.NotEmpty(t, requirements.DriverRequirements)

	for _, statute := range requirements.Statutes {
		assert.NotEmpty(t, statute.Code)
		assert.NotEmpty(t, statute.Description)
	}
}

func TestNewComplianceService_Timezone(t *testing.T) {
	cfg := &config.Config{Compliance: &config.ComplianceConfig{Timezone: "America/Chicago"}}
	svc := NewComplianceService(cfg, nil, nil, slog.Default()).(*complianceService)
	assert.Equal(t, "America/Chicago", svc.location.String())

	cfg.Compliance.Timezone = "Not/AZone"
	svc = NewComplianceService(cfg, nil, nil, slog.Default()).(*complianceService)
	assert.Equal(t, time.UTC, svc.location)
}
