package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-payments/pkg/helpers"
	"github.com/oksasatya/go-ddd-payments/pkg/response"
)

const CtxClientKey = "client"

// BearerAuth validates the Authorization bearer token and stores the calling
// client in the Gin context. A nil manager disables the check.
func BearerAuth(jwt *helpers.JWTManager) gin.HandlerFunc {
	if jwt == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			response.Abort(c, http.StatusUnauthorized, "missing bearer token", nil)
			return
		}
		claims, err := jwt.ParseToken(strings.TrimSpace(token))
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid bearer token", err.Error())
			return
		}
		c.Set(CtxClientKey, claims.Client)
		c.Next()
	}
}
