package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set(RequestIDHeader, "req-42")
	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorInfo {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	raw, err := json.Marshal(resp.Error)
	require.NoError(t, err)
	var info ErrorInfo
	require.NoError(t, json.Unmarshal(raw, &info))
	return info
}

func TestErrorResponse_TypeFollowsStatus(t *testing.T) {
	c, w := newContext()

	ErrorResponse(c, http.StatusTooManyRequests, "slow down")

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	info := decodeError(t, w)
	assert.Equal(t, "rate_limited", info.Type)
	assert.Equal(t, "req-42", info.RequestID)
}

func TestErrorResponseWithError(t *testing.T) {
	t.Run("app error keeps its status", func(t *testing.T) {
		c, w := newContext()

		ErrorResponseWithError(c, fmt.Errorf("wrapped: %w", errors.NewConflictError("busy", "retry later")))

		assert.Equal(t, http.StatusConflict, w.Code)
		info := decodeError(t, w)
		assert.Equal(t, string(errors.ErrorTypeConflict), info.Type)
		assert.Equal(t, "retry later", info.Details)
	})

	t.Run("unknown error is hidden", func(t *testing.T) {
		c, w := newContext()

		ErrorResponseWithError(c, fmt.Errorf("dial tcp 10.0.0.3:3306: refused"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "10.0.0.3")
		require.Len(t, c.Errors, 1)
		assert.Contains(t, c.Errors.String(), "refused")
	})
}

func TestCreatedResponse(t *testing.T) {
	c, w := newContext()

	CreatedResponse(c, map[string]int{"id": 1})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"Resource created successfully"`)
}
