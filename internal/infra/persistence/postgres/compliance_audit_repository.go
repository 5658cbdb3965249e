// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"log/slog"

	"dispatch/internal/domain/entity"
	domainerrors "dispatch/internal/domain/errors"
	"dispatch/internal/domain/repository"
	"dispatch/internal/infra/persistence/model"

	"gorm.io/gorm"
)

const defaultAuditQueryLimit = 100

// complianceAuditRepository implements the repository.ComplianceAuditRepository interface.
type complianceAuditRepository struct {
	db *gorm.DB
}

// NewComplianceAuditRepository returns the gorm-backed audit trail, or a no-op
// trail when no database is configured.
func NewComplianceAuditRepository(db *gorm.DB, logger *slog.Logger) repository.ComplianceAuditRepository {
	if db == nil {
		logger.Warn("Postgres not configured, compliance audit records are not persisted")

		return noopComplianceAuditRepository{}
	}

	return &complianceAuditRepository{
		db: db,
	}
}

// CreateAudit appends one evaluation record.
func (repo *complianceAuditRepository) CreateAudit(ctx context.Context, audit *entity.ComplianceAudit) error {
	auditM := fromComplianceAuditDomain(audit)

	if err := repo.db.WithContext(ctx).Create(auditM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateAudit
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create compliance audit")
	}

	audit.CreatedAt = auditM.CreatedAt

	return nil
}

// FindAuditsByOrderReference returns the newest records for an order first.
func (repo *complianceAuditRepository) FindAuditsByOrderReference(ctx context.Context, orderReference string, limit int) ([]*entity.ComplianceAudit, error) {
	if limit <= 0 {
		limit = defaultAuditQueryLimit
	}

	var auditModels []*model.ComplianceAuditModel

	if err := repo.db.WithContext(ctx).
		Where("order_reference = ?", orderReference).
		Order("evaluated_at DESC").
		Limit(limit).
		Find(&auditModels).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find compliance audits")
	}

	audits := make([]*entity.ComplianceAudit, 0, len(auditModels))
	for _, auditM := range auditModels {
		audits = append(audits, toComplianceAuditDomain(auditM))
	}

	return audits, nil
}

type noopComplianceAuditRepository struct{}

func (noopComplianceAuditRepository) CreateAudit(context.Context, *entity.ComplianceAudit) error {
	return nil
}

func (noopComplianceAuditRepository) FindAuditsByOrderReference(context.Context, string, int) ([]*entity.ComplianceAudit, error) {
	return []*entity.ComplianceAudit{}, nil
}

func fromComplianceAuditDomain(audit *entity.ComplianceAudit) *model.ComplianceAuditModel {
	reasons := audit.Reasons
	if reasons == nil {
		reasons = []string{}
	}

	return &model.ComplianceAuditModel{
		ID:                      audit.ID,
		OrderReference:          audit.OrderReference,
		AlcoholLicenseNumber:    audit.AlcoholLicenseNumber,
		Eligible:                audit.Eligible,
		HasAlcohol:              audit.HasAlcohol,
		FoodRatio:               audit.FoodRatio,
		RestaurantLicensed:      audit.Checks.RestaurantLicensed,
		WithinDeliveryWindow:    audit.Checks.WithinDeliveryWindow,
		FoodRatioMet:            audit.Checks.FoodRatioMet,
		SealedContainerRequired: audit.Checks.SealedContainerRequired,
		AgeVerificationRequired: audit.Checks.AgeVerificationRequired,
		DriverBackgroundChecked: audit.Checks.DriverBackgroundChecked,
		Reasons:                 reasons,
		EvaluatedAt:             audit.EvaluatedAt,
		RetainUntil:             audit.RetainUntil,
		CreatedAt:               audit.CreatedAt,
	}
}

func toComplianceAuditDomain(auditM *model.ComplianceAuditModel) *entity.ComplianceAudit {
	return &entity.ComplianceAudit{
		ID:                   auditM.ID,
		OrderReference:       auditM.OrderReference,
		AlcoholLicenseNumber: auditM.AlcoholLicenseNumber,
		Eligible:             auditM.Eligible,
		HasAlcohol:           auditM.HasAlcohol,
		FoodRatio:            auditM.FoodRatio,
		Checks: entity.ComplianceCheckSet{
			RestaurantLicensed:      auditM.RestaurantLicensed,
			WithinDeliveryWindow:    auditM.WithinDeliveryWindow,
			FoodRatioMet:            auditM.FoodRatioMet,
			SealedContainerRequired: auditM.SealedContainerRequired,
			AgeVerificationRequired: auditM.AgeVerificationRequired,
			DriverBackgroundChecked: auditM.DriverBackgroundChecked,
		},
		Reasons:     auditM.Reasons,
		EvaluatedAt: auditM.EvaluatedAt,
		RetainUntil: auditM.RetainUntil,
		CreatedAt:   auditM.CreatedAt,
	}
}
