// Package apitest contains assertions shared by the HTTP API tests.
package apitest

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hbomb79/Cadence/internal/api"
	"gotest.tools/v3/assert"
)

// AssertErrorResponse asserts that the recorded response carries the status
// code expected, and an error body containing exactly the message given and
// nothing else.
func AssertErrorResponse(t *testing.T, rec *httptest.ResponseRecorder, expectedStatusCode int, expectedMessage string) {
	t.Helper()

	assert.Equal(t, rec.Code, expectedStatusCode, "HTTP status code did not match expected")
	assert.Assert(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json"), "error responses must be JSON")

	var fields map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &fields); err != nil {
		t.Fatalf("Could not decode error response body %q: %s", rec.Body.String(), err)
	}
	assert.Equal(t, len(fields), 1, "error response must contain only the 'error' field, got %v", fields)

	apiErr := ExtractErrorResponse(t, rec.Body.Bytes())
	assert.Equal(t, apiErr.Error, expectedMessage)
}

func ExtractErrorResponse(t *testing.T, body []byte) api.ErrorResponse {
	var apiErr api.ErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil {
		t.Errorf("Could not extract ErrorResponse from HTTP response body: %s", err)
	}

	return apiErr
}
