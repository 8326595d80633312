package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/domain"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// RequireKind ensures the session belongs to one of the allowed identity kinds.
func RequireKind(allowed ...domain.IdentityKind) fiber.Handler {
	allowedSet := make(map[domain.IdentityKind]struct{}, len(allowed))
	for _, kind := range allowed {
		allowedSet[kind] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		session, ok := SessionFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[session.Kind]; !exists {
			return apperrors.NewForbidden("access denied for " + string(session.Kind))
		}
		return c.Next()
	}
}
