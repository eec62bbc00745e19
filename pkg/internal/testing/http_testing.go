package testing

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// HTTPErrorPayload is a shape of the error body produced by the router
type HTTPErrorPayload struct {
	StatusCode int    `json:"statusCode"`
	Status     string `json:"error"`
	Message    string `json:"message"`
	Kind       string `json:"kind,omitempty"`
	Field      string `json:"field,omitempty"`
}

// NewHTTPErrorPayload creates an expected error payload
func NewHTTPErrorPayload(statusCode int, status string, message string) HTTPErrorPayload {
	return HTTPErrorPayload{StatusCode: statusCode, Status: status, Message: message}
}

// AssertHTTPErrorResponse asserts that recorded response is a given error
func AssertHTTPErrorResponse(t *testing.T, want HTTPErrorPayload, recorder *httptest.ResponseRecorder) bool {
	if !assert.Equal(t, want.StatusCode, recorder.Code) {
		return false
	}
	if !assert.Equal(t, "application/json", recorder.Header().Get("content-type")) {
		return false
	}
	var got HTTPErrorPayload
	if err := json.Unmarshal(recorder.Body.Bytes(), &got); !assert.NoError(t, err) {
		return false
	}
	return assert.Equal(t, want, got)
}
