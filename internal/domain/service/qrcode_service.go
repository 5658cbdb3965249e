package service

// QRCodeService defines the interface for tracking QR code generation and parsing
type QRCodeService interface {
	// GenerateTrackingQR renders a PNG QR code that links to the order's tracking page
	GenerateTrackingQR(orderID string) ([]byte, error)

	// ParseTrackingQR extracts the order ID from QR code payload data
	ParseTrackingQR(qrData string) (string, error)
}
