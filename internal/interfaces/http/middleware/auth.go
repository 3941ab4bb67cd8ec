package middleware

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/logger"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/utils"
)

const (
	// UserIDHeader carries the caller identity established by the upstream gateway.
	UserIDHeader = "X-User-ID"
	// CallbackTokenHeader carries the provider's static webhook token.
	CallbackTokenHeader = "X-Callback-Token"
)

type AuthMiddleware struct {
	callbackToken string
	logger        logger.Interface
}

func NewAuthMiddleware(callbackToken string, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		callbackToken: callbackToken,
		logger:        logger,
	}
}

// RequireUser stores the gateway-provided user id as "user_id" in the context.
func (m *AuthMiddleware) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if raw == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "missing user identity")
			c.Abort()
			return
		}

		userID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || userID == 0 {
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid user identity")
			c.Abort()
			return
		}

		c.Set("user_id", uint(userID))
		c.Next()
	}
}

// RequireCallbackToken rejects webhook calls whose token does not match. An unset
// token rejects every call.
func (m *AuthMiddleware) RequireCallbackToken() gin.HandlerFunc {
	expected := []byte(m.callbackToken)

	return func(c *gin.Context) {
		got := []byte(c.GetHeader(CallbackTokenHeader))
		if len(expected) == 0 || subtle.ConstantTimeCompare(got, expected) != 1 {
			m.logger.Warnw("webhook callback token rejected", "ip", c.ClientIP())
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid callback token")
			c.Abort()
			return
		}
		c.Next()
	}
}
