// Package license is a LicenseRegistry backed by a state liquor authority HTTP endpoint.
package license

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dispatch/config"
	"dispatch/internal/domain/service"
	"dispatch/internal/errors"
)

const maxResponseBytes = 1 << 20

// registryRecord accepts both snake_case and the open-data column names
type registryRecord struct {
	LicenseNumber  string `json:"license_number"`
	Status         string `json:"status"`
	LicenseStatus  string `json:"license_status"`
	BusinessName   string `json:"business_name"`
	PremisesName   string `json:"premises_name"`
	LicenseType    string `json:"license_type"`
	ExpirationDate string `json:"expiration_date"`
	County         string `json:"county"`
}

// Client performs a single registry lookup per verification
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// NewLicenseRegistry returns a registry client, or nil when no endpoint is
// configured so that every verification uses the format heuristic.
func NewLicenseRegistry(cfg *config.Config, logger *slog.Logger) service.LicenseRegistry {
	if cfg.LicenseRegistry == nil || cfg.LicenseRegistry.BaseURL == "" {
		logger.Info("License registry not configured, verifications use the format heuristic")

		return nil
	}

	return NewClient(cfg.LicenseRegistry, logger)
}

// NewClient creates a registry client
func NewClient(cfg *config.LicenseRegistryConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// Lookup fetches the license record for licenseNumber
func (c *Client) Lookup(ctx context.Context, licenseNumber string) (*service.LicenseRecord, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(licenseNumber), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build license registry request")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-App-Token", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "license registry request")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, service.ErrLicenseNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Errorf("license registry returned non-success status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Wrap(err, "read license registry response")
	}

	record, err := parseRecord(body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("License registry lookup finished",
		slog.String("license_number", licenseNumber),
		slog.String("status", record.Status),
	)

	return record, nil
}

func (c *Client) requestURL(licenseNumber string) string {
	params := url.Values{}
	params.Set("license_number", licenseNumber)

	separator := "?"
	if strings.Contains(c.baseURL, "?") {
		separator = "&"
	}

	return c.baseURL + separator + params.Encode()
}

// parseRecord accepts a single object or an array whose first element is used
func parseRecord(body []byte) (*service.LicenseRecord, error) {
	trimmed := bytes.TrimSpace(body)

	var raw registryRecord
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []registryRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, errors.Wrap(service.ErrMalformedLicense, err.Error())
		}
		if len(records) == 0 {
			return nil, service.ErrLicenseNotFound
		}
		raw = records[0]
	} else if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, errors.Wrap(service.ErrMalformedLicense, err.Error())
	}

	status := firstNonEmpty(raw.Status, raw.LicenseStatus)
	if status == "" {
		return nil, service.ErrMalformedLicense
	}

	return &service.LicenseRecord{
		LicenseNumber:  raw.LicenseNumber,
		Status:         status,
		BusinessName:   firstNonEmpty(raw.BusinessName, raw.PremisesName),
		LicenseType:    raw.LicenseType,
		ExpirationDate: raw.ExpirationDate,
		County:         raw.County,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}

	return ""
}
