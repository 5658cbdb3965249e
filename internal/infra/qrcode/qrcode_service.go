package qrcode

import (
	"fmt"
	"net/url"
	"strings"

	"dispatch/config"
	"dispatch/internal/domain/service"

	"github.com/skip2/go-qrcode"
)

const (
	defaultSize    = 256
	trackingPrefix = "/track/"
)

type qrcodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
	baseURL              string
}

// NewQRCodeService creates a new QR code service instance from config
func NewQRCodeService(cfg *config.Config) service.QRCodeService {
	if cfg.QRCode == nil {
		return newQRCodeService(defaultSize, "M", "")
	}

	return newQRCodeService(cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel, cfg.QRCode.BaseURL)
}

func newQRCodeService(size int, errorCorrectionLevel, baseURL string) *qrcodeService {
	var level qrcode.RecoveryLevel
	switch errorCorrectionLevel {
	case "L":
		level = qrcode.Low
	case "M":
		level = qrcode.Medium
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}

	if size <= 0 {
		size = defaultSize
	}

	return &qrcodeService{
		size:                 size,
		errorCorrectionLevel: level,
		baseURL:              strings.TrimRight(baseURL, "/"),
	}
}

// TrackingURL returns the link encoded in an order's QR code
func (s *qrcodeService) TrackingURL(orderID string) string {
	return s.baseURL + trackingPrefix + url.PathEscape(orderID)
}

// GenerateTrackingQR generates a PNG QR code linking to the order's tracking page
func (s *qrcodeService) GenerateTrackingQR(orderID string) ([]byte, error) {
	if orderID == "" {
		return nil, fmt.Errorf("order ID is required")
	}

	qrCode, err := qrcode.New(s.TrackingURL(orderID), s.errorCorrectionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}

	return pngBytes, nil
}

// ParseTrackingQR extracts the order ID from a scanned tracking link
func (s *qrcodeService) ParseTrackingQR(qrData string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(qrData))
	if err != nil {
		return "", fmt.Errorf("failed to parse QR code data: %w", err)
	}

	idx := strings.LastIndex(parsed.EscapedPath(), trackingPrefix)
	if idx < 0 {
		return "", fmt.Errorf("invalid QR code: not a tracking link")
	}

	orderID, err := url.PathUnescape(parsed.EscapedPath()[idx+len(trackingPrefix):])
	if err != nil {
		return "", fmt.Errorf("failed to decode order ID: %w", err)
	}
	if orderID == "" {
		return "", fmt.Errorf("invalid QR code: missing order ID")
	}

	return orderID, nil
}
