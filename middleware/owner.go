package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/membership/utils"
)

const (
	// ContextOwnerIDKey is the key used to store the requesting owner in Gin context.
	ContextOwnerIDKey = "owner_id"
)

// OwnerRequired resolves the owner identity from the configured header, falling back to a
// bearer JWT when a secret is configured.
func OwnerRequired(header, jwtSecret string) gin.HandlerFunc {
	if header == "" {
		header = "X-USER-ID"
	}
	return func(ctx *gin.Context) {
		if owner := strings.TrimSpace(ctx.GetHeader(header)); owner != "" {
			ctx.Set(ContextOwnerIDKey, owner)
			ctx.Next()
			return
		}

		authHeader := ctx.GetHeader("Authorization")
		if jwtSecret == "" || authHeader == "" {
			utils.ErrorKind(ctx, http.StatusBadRequest, 40002, "MISSING_OWNER", header+" header is required")
			ctx.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			utils.ErrorKind(ctx, http.StatusUnauthorized, 40101, "INVALID_TOKEN", "invalid authorization header format")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(jwtSecret, strings.TrimSpace(parts[1]))
		if err != nil {
			utils.ErrorKind(ctx, http.StatusUnauthorized, 40101, "INVALID_TOKEN", "invalid token")
			ctx.Abort()
			return
		}

		ctx.Set(ContextOwnerIDKey, claims.OwnerID)
		ctx.Next()
	}
}

// OwnerID returns the owner resolved by OwnerRequired.
func OwnerID(ctx *gin.Context) (string, bool) {
	owner := ctx.GetString(ContextOwnerIDKey)
	return owner, owner != ""
}
