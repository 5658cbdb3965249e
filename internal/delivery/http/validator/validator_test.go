package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	Lat *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lng *float64 `json:"lng" validate:"required,min=-180,max=180"`
}

type verifyRequest struct {
	LicenseNumber string `json:"license_number" validate:"required"`
	Origin        point  `json:"origin"`
}

func ptr(v float64) *float64 { return &v }

func TestCustomValidator_Valid(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&verifyRequest{LicenseNumber: "AB-12345", Origin: point{Lat: ptr(0), Lng: ptr(0)}}))
}

func TestCustomValidator_Messages(t *testing.T) {
	v := New()

	err := v.Validate(&verifyRequest{Origin: point{Lat: ptr(91), Lng: nil}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "license_number is required")
	assert.Contains(t, err.Error(), "origin.lat must be at most 90")
	assert.Contains(t, err.Error(), "origin.lng is required")
}

func TestCustomValidator_NotAStruct(t *testing.T) {
	assert.Error(t, New().Validate("nope"))
}
