// Package testutil drives record and status handlers without a router.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/harborline/internal/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// NewTestContext returns a context whose request carries body encoded as JSON.
// A nil body sends no payload.
func NewTestContext(method, path string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	return NewRawContext(method, path, string(payload))
}

// NewRawContext returns a context whose request body is sent verbatim.
func NewRawContext(method, path, body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

func SetURLParam(c *gin.Context, key, value string) {
	c.Params = append(c.Params, gin.Param{Key: key, Value: value})
}

// APIResponse mirrors utils.APIResponse with the payload left raw.
type APIResponse struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     *ErrorInfo      `json:"error,omitempty"`
	Message   string          `json:"message,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

type ErrorInfo struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ListData mirrors utils.ListResponse.
type ListData struct {
	Items  json.RawMessage `json:"items"`
	Total  int             `json:"total"`
	Regime string          `json:"regime"`
	Phase  string          `json:"phase"`
}

// Decode parses the response envelope and, when data is non-nil, its data
// field into data.
func Decode(t testing.TB, w *httptest.ResponseRecorder, data any) APIResponse {
	t.Helper()

	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(resp.Data, data))
	}
	return resp
}

// DecodeList parses a list reply and, when items is non-nil, its items.
func DecodeList(t testing.TB, w *httptest.ResponseRecorder, items any) ListData {
	t.Helper()

	var list ListData
	resp := Decode(t, w, &list)
	require.True(t, resp.Success)
	if items != nil {
		require.NoError(t, json.Unmarshal(list.Items, items))
	}
	return list
}

func NewMockLogger() logger.Interface {
	return logger.NewDiscardLogger()
}
