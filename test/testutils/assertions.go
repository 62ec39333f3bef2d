// Package testutils provides custom assertions for HTTP handler tests
package testutils

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/deliveria/api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// HTTPAssertions provides HTTP-specific assertion methods
type HTTPAssertions struct {
	t *testing.T
}

// NewHTTPAssertions creates a new HTTP assertions helper
func NewHTTPAssertions(t *testing.T) *HTTPAssertions {
	return &HTTPAssertions{t: t}
}

// StatusCode asserts the HTTP status code
func (ha *HTTPAssertions) StatusCode(rec *httptest.ResponseRecorder, expectedCode int, msgAndArgs ...interface{}) {
	ha.t.Helper()
	require.NotNil(ha.t, rec, "Response should not be nil")
	assert.Equal(ha.t, expectedCode, rec.Code, msgAndArgs...)
}

// JSONResponse asserts that the body is JSON and decodes it into target
func (ha *HTTPAssertions) JSONResponse(rec *httptest.ResponseRecorder, target interface{}) {
	ha.t.Helper()
	require.NotNil(ha.t, rec, "Response should not be nil")

	contentType := rec.Header().Get("Content-Type")
	assert.True(ha.t, strings.Contains(contentType, "application/json"),
		"Response should have JSON content type, got: %s", contentType)

	require.NoError(ha.t, json.Unmarshal(rec.Body.Bytes(), target), "Response should be valid JSON: %s", rec.Body.String())
}

// ErrorResponse asserts the status and the error envelope code, returning
// the decoded envelope for further checks.
func (ha *HTTPAssertions) ErrorResponse(rec *httptest.ResponseRecorder, expectedStatus int, expectedCode apperrors.ErrorCode) apperrors.ErrorResponse {
	ha.t.Helper()
	ha.StatusCode(rec, expectedStatus, "body: %s", rec.Body.String())

	var resp apperrors.ErrorResponse
	ha.JSONResponse(rec, &resp)
	assert.Equal(ha.t, expectedCode, resp.Error.Code)
	assert.NotEmpty(ha.t, resp.Error.Message)
	return resp
}

// Header asserts that a header exists with expected value
func (ha *HTTPAssertions) Header(rec *httptest.ResponseRecorder, headerName, expectedValue string, msgAndArgs ...interface{}) {
	ha.t.Helper()
	assert.Equal(ha.t, expectedValue, rec.Header().Get(headerName), msgAndArgs...)
}

// SecurityHeaders asserts that the baseline security headers are present
func (ha *HTTPAssertions) SecurityHeaders(rec *httptest.ResponseRecorder) {
	ha.t.Helper()
	for _, header := range []string{"X-Content-Type-Options", "X-Frame-Options", "Referrer-Policy"} {
		assert.NotEmpty(ha.t, rec.Header().Get(header), "Security header %s should be present", header)
	}
}
