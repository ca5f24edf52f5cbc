package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope mirrors the API response envelope with the data left raw
type Envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

// ReadEnvelope decodes the response body into an Envelope
func ReadEnvelope(t *testing.T, resp *http.Response) Envelope {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	var env Envelope
	err = json.Unmarshal(body, &env)
	require.NoError(t, err, "failed to unmarshal envelope: %s", string(body))
	return env
}

// DecodeEnvelope decodes the envelope's data payload into v
func DecodeEnvelope(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	env := ReadEnvelope(t, resp)
	require.True(t, env.Success, "expected success envelope, got: %s", env.Message)
	err := json.Unmarshal(env.Data, v)
	require.NoError(t, err, "failed to unmarshal envelope data: %s", string(env.Data))
}

// AssertErrorEnvelope verifies a failed response's status and message
func AssertErrorEnvelope(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage string) {
	t.Helper()

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	env := ReadEnvelope(t, resp)
	assert.False(t, env.Success, "expected failure envelope")
	assert.Equal(t, expectedStatus, env.StatusCode, "envelope status mismatch")
	if expectedMessage != "" {
		assert.Contains(t, env.Message, expectedMessage, "error message mismatch")
	}
}
