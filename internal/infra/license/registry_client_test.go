package license

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dispatch/config"
	"dispatch/internal/domain/service"
	"dispatch/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(&config.LicenseRegistryConfig{
		BaseURL: server.URL + "/resource/licenses.json",
		APIKey:  "token",
		Timeout: timeout,
	}, slog.Default())
}

func TestClient_Lookup_Object(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/resource/licenses.json", r.URL.Path)
		assert.Equal(t, "AB-12345", r.URL.Query().Get("license_number"))
		assert.Equal(t, "token", r.Header.Get("X-App-Token"))

		_, _ = w.Write([]byte(`{
			"license_number": "AB-12345",
			"status": "Active",
			"business_name": "Joe's Pizza",
			"license_type": "Restaurant Wine",
			"expiration_date": "2027-06-30",
			"county": "Kings"
		}`))
	}, time.Second)

	record, err := client.Lookup(context.Background(), "AB-12345")
	require.NoError(t, err)
	assert.Equal(t, &service.LicenseRecord{
		LicenseNumber:  "AB-12345",
		Status:         "Active",
		BusinessName:   "Joe's Pizza",
		LicenseType:    "Restaurant Wine",
		ExpirationDate: "2027-06-30",
		County:         "Kings",
	}, record)
}

func TestClient_Lookup_OpenDataArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"license_number":"AB-12345","license_status":"CURRENT","premises_name":"Corner Bistro"}]`))
	}, time.Second)

	record, err := client.Lookup(context.Background(), "AB-12345")
	require.NoError(t, err)
	assert.Equal(t, "CURRENT", record.Status)
	assert.Equal(t, "Corner Bistro", record.BusinessName)
}

func TestClient_Lookup_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"not found status", http.StatusNotFound, ``, service.ErrLicenseNotFound},
		{"empty array", http.StatusOK, `[]`, service.ErrLicenseNotFound},
		{"server error", http.StatusBadGateway, ``, nil},
		{"not json", http.StatusOK, `oops`, service.ErrMalformedLicense},
		{"missing status", http.StatusOK, `{"business_name":"x"}`, service.ErrMalformedLicense},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, time.Second)

			record, err := client.Lookup(context.Background(), "AB-12345")
			require.Error(t, err)
			assert.Nil(t, record)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestClient_Lookup_Timeout(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, 50*time.Millisecond)
	defer close(release)

	_, err := client.Lookup(context.Background(), "AB-12345")
	require.Error(t, err)
	assert.True(t, errors.IsTimeout(err))
}

func TestNewLicenseRegistry(t *testing.T) {
	assert.Nil(t, NewLicenseRegistry(&config.Config{}, slog.Default()))
	assert.Nil(t, NewLicenseRegistry(&config.Config{LicenseRegistry: &config.LicenseRegistryConfig{}}, slog.Default()))
	assert.NotNil(t, NewLicenseRegistry(&config.Config{LicenseRegistry: &config.LicenseRegistryConfig{BaseURL: "http://registry"}}, slog.Default()))
}
