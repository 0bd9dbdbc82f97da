package stepup_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestHealthEndpoints verifies the liveness and readiness probes, including
// the database check on readiness.
func TestHealthEndpoints(t *testing.T) {
	baseURL, cleanup := setupStepUpStack(t)
	defer cleanup()

	status, raw := doJSON(t, http.MethodGet, baseURL+"/livez", "", nil)
	require.Equal(t, http.StatusOK, status)

	live := decode[healthResponse](t, raw)
	require.Equal(t, "ok", live.Status)

	status, raw = doJSON(t, http.MethodGet, baseURL+"/readyz", "", nil)
	require.Equal(t, http.StatusOK, status)

	ready := decode[healthResponse](t, raw)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)
}

// TestAuthenticationRequired verifies that the API rejects requests without a
// valid bearer token.
func TestAuthenticationRequired(t *testing.T) {
	baseURL, cleanup := setupStepUpStack(t)
	defer cleanup()

	status, _ := doJSON(t, http.MethodPost, baseURL+"/v1/challenges", "",
		map[string]string{"method": "sms", "destination": "+15551234567"})
	require.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, http.MethodGet, baseURL+"/v1/devices", "garbage-token", nil)
	require.Equal(t, http.StatusUnauthorized, status)
}
