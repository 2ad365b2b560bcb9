package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"storefront/internal/services"
	"storefront/pkg/utils"
)

const callerKey = "caller"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*services.Caller, error)
}

// Identity resolves the bearer token into a caller. With required=false a
// missing token passes through as anonymous; a token that is present but
// invalid is always rejected.
func Identity(auth Authenticator, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			if required {
				utils.RespondError(c, http.StatusUnauthorized, "Unauthorized (missing Bearer token)")
				return
			}
			c.Next()
			return
		}

		caller, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			utils.HandleServiceError(c, err)
			return
		}

		c.Set(callerKey, caller)
		c.Set("user_id", caller.UserID.String())
		c.Next()
	}
}

func BearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

// CallerFrom returns nil for anonymous requests.
func CallerFrom(c *gin.Context) *services.Caller {
	v, ok := c.Get(callerKey)
	if !ok {
		return nil
	}
	caller, _ := v.(*services.Caller)
	return caller
}
