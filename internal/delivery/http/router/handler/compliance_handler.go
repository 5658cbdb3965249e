package handler

import (
	"net/http"
	"time"

	"dispatch/internal/delivery/http/response"
	"dispatch/internal/domain/entity"
	"dispatch/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ComplianceHandler exposes the alcohol delivery evaluator and license verifier
type ComplianceHandler struct {
	compliance usecase.ComplianceUsecase
	license    usecase.LicenseUsecase
}

// NewComplianceHandler is the constructor for ComplianceHandler
func NewComplianceHandler(compliance usecase.ComplianceUsecase, license usecase.LicenseUsecase) *ComplianceHandler {
	return &ComplianceHandler{
		compliance: compliance,
		license:    license,
	}
}

// OrderItemRequest is one line of an evaluated order
type OrderItemRequest struct {
	Name      string  `json:"name"`
	Price     float64 `json:"price" validate:"min=0"`
	Quantity  int     `json:"quantity" validate:"min=0"`
	IsAlcohol bool    `json:"is_alcohol"`
}

// EvaluateComplianceRequest is the order context to evaluate
type EvaluateComplianceRequest struct {
	OrderReference          string             `json:"order_reference,omitempty"`
	RestaurantHasLicense    bool               `json:"restaurant_has_license"`
	AlcoholLicenseNumber    string             `json:"alcohol_license_number,omitempty"`
	OrderItems              []OrderItemRequest `json:"order_items" validate:"dive"`
	DeliveryTime            *time.Time         `json:"delivery_time,omitempty"`
	CustomerAgeVerified     bool               `json:"customer_age_verified"`
	DriverBackgroundChecked bool               `json:"driver_background_checked"`
}

// VerifyLicenseRequest names the license to verify
type VerifyLicenseRequest struct {
	LicenseNumber string `json:"license_number" validate:"required"`
	BusinessName  string `json:"business_name,omitempty"`
}

// AuditTrailQuery pages the audit trail of one order
type AuditTrailQuery struct {
	Limit int `json:"limit" validate:"min=0,max=100"`
}

// Evaluate returns the eligibility verdict. An ineligible order is still a 200.
func (h *ComplianceHandler) Evaluate(c echo.Context) error {
	var req EvaluateComplianceRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid compliance input")
	}

	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, err)
	}

	result := h.compliance.Evaluate(c.Request().Context(), req.toEntity())

	return response.Success(c, http.StatusOK, result, "")
}

// Requirements returns the statute and threshold table
func (h *ComplianceHandler) Requirements(c echo.Context) error {
	return response.Success(c, http.StatusOK, h.compliance.Requirements(), "")
}

// VerifyLicense resolves a liquor license number to a verdict
func (h *ComplianceHandler) VerifyLicense(c echo.Context) error {
	var req VerifyLicenseRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid license input")
	}

	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, err)
	}

	result := h.license.Verify(c.Request().Context(), req.LicenseNumber, req.BusinessName)

	return response.Success(c, http.StatusOK, result, "")
}

// AuditTrail returns the recorded evaluations for an order reference
func (h *ComplianceHandler) AuditTrail(c echo.Context) error {
	var query AuditTrailQuery
	if err := echo.QueryParamsBinder(c).Int("limit", &query.Limit).BindError(); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "limit must be an integer")
	}

	if err := c.Validate(&query); err != nil {
		return response.ValidationError(c, err)
	}

	audits, err := h.compliance.AuditTrail(c.Request().Context(), c.Param("orderReference"), query.Limit)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, audits, "")
}

func (r *EvaluateComplianceRequest) toEntity() *entity.ComplianceInput {
	items := make([]entity.OrderItem, 0, len(r.OrderItems))
	for _, item := range r.OrderItems {
		items = append(items, entity.OrderItem{
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			IsAlcohol: item.IsAlcohol,
		})
	}

	return &entity.ComplianceInput{
		OrderReference:          r.OrderReference,
		RestaurantHasLicense:    r.RestaurantHasLicense,
		AlcoholLicenseNumber:    r.AlcoholLicenseNumber,
		OrderItems:              items,
		DeliveryTime:            r.DeliveryTime,
		CustomerAgeVerified:     r.CustomerAgeVerified,
		DriverBackgroundChecked: r.DriverBackgroundChecked,
	}
}
