package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/barberhq/booking-api/internal/model"
	"github.com/barberhq/booking-api/internal/service/identity"
	apperrors "github.com/barberhq/booking-api/pkg/errors"
	"github.com/barberhq/booking-api/pkg/httputil"
)

const ContextIdentity = "identity"

type AuthMiddleware struct {
	resolver *identity.Service
}

func NewAuthMiddleware(resolver *identity.Service) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// Authenticate resolves the caller's identity and stores it in the
// request context. Resolution failure blocks the request: no operation
// runs with a null actor.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)

		resolved, err := m.resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			httputil.RespondWithError(c, err)
			c.Abort()
			return
		}

		c.Set(ContextIdentity, resolved)
		c.Next()
	}
}

// IdentityFrom extracts the resolved identity set by Authenticate.
func IdentityFrom(c *gin.Context) (*model.Identity, error) {
	v, ok := c.Get(ContextIdentity)
	if !ok {
		return nil, apperrors.NewIdentityUnavailable(nil)
	}
	resolved, ok := v.(*model.Identity)
	if !ok {
		return nil, apperrors.NewIdentityUnavailable(nil)
	}
	return resolved, nil
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
