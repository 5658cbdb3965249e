package service

import (
	"context"

	"dispatch/internal/errors"
)

// License lookup failure reasons.
var (
	ErrLicenseRegistryNotConfigured = errors.New("license registry not configured")
	ErrLicenseNotFound              = errors.New("license not found in registry")
	ErrMalformedLicense             = errors.New("license registry returned a malformed response")
)

// LicenseRecord is the registry's view of a liquor license.
type LicenseRecord struct {
	LicenseNumber  string
	Status         string
	BusinessName   string
	LicenseType    string
	ExpirationDate string
	County         string
}

// LicenseRegistry looks up a liquor license by number.
type LicenseRegistry interface {
	Lookup(ctx context.Context, licenseNumber string) (*LicenseRecord, error)
}
