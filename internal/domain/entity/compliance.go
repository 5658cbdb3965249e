package entity

import "time"

// OrderItem is a line of an order as seen by the compliance evaluator.
type OrderItem struct {
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	IsAlcohol bool    `json:"is_alcohol"`
}

// ComplianceInput is the order context evaluated for alcohol delivery.
type ComplianceInput struct {
	OrderReference          string      `json:"order_reference,omitempty"`
	RestaurantHasLicense    bool        `json:"restaurant_has_license"`
	AlcoholLicenseNumber    string      `json:"alcohol_license_number,omitempty"`
	OrderItems              []OrderItem `json:"order_items"`
	DeliveryTime            *time.Time  `json:"delivery_time,omitempty"`
	CustomerAgeVerified     bool        `json:"customer_age_verified"`
	DriverBackgroundChecked bool        `json:"driver_background_checked"`
}

// ComplianceCheckSet reports every check, whether or not it failed.
type ComplianceCheckSet struct {
	RestaurantLicensed      bool `json:"restaurant_licensed"`
	WithinDeliveryWindow    bool `json:"within_delivery_window"`
	FoodRatioMet            bool `json:"food_ratio_met"`
	SealedContainerRequired bool `json:"sealed_container_required"`
	AgeVerificationRequired bool `json:"age_verification_required"`
	DriverBackgroundChecked bool `json:"driver_background_checked"`
}

// ComplianceResult is the eligibility verdict. Eligible is authoritative;
// Checks alone does not determine eligibility.
type ComplianceResult struct {
	Eligible    bool               `json:"eligible"`
	Checks      ComplianceCheckSet `json:"checks"`
	Reasons     []string           `json:"reasons"`
	HasAlcohol  bool               `json:"has_alcohol"`
	FoodRatio   float64            `json:"food_ratio"`
	EvaluatedAt time.Time          `json:"evaluated_at"`
}

// Statute is a cited regulation.
type Statute struct {
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ComplianceThresholds holds the numeric limits applied by the evaluator.
type ComplianceThresholds struct {
	DeliveryWindowStartHour int     `json:"delivery_window_start_hour"`
	DeliveryWindowEndHour   int     `json:"delivery_window_end_hour"`
	DeliveryWindowTimezone  string  `json:"delivery_window_timezone"`
	MinFoodRatio            float64 `json:"min_food_ratio"`
	MinAge                  int     `json:"min_age"`
	RecordRetentionYears    int     `json:"record_retention_years"`
}

// ComplianceRequirements is the static table exposed for display and audit.
type ComplianceRequirements struct {
	Jurisdiction        string               `json:"jurisdiction"`
	Statutes            []Statute            `json:"statutes"`
	Thresholds          ComplianceThresholds `json:"thresholds"`
	PartnerRequirements []string             `json:"partner_requirements"`
	DriverRequirements  []string             `json:"driver_requirements"`
}
