package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/domain"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

const sessionKey = "auth_session"

// LegacyTokenHeader is the header older clients send the raw token in.
const LegacyTokenHeader = "x-auth-token"

// SubjectChecker confirms the subject behind a token still exists.
type SubjectChecker interface {
	SubjectExists(ctx context.Context, kind domain.IdentityKind, id string) (bool, error)
}

// SessionMiddleware validates tokens and stores the session on the request.
type SessionMiddleware struct {
	tokens   *TokenManager
	subjects SubjectChecker
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(tokens *TokenManager, subjects SubjectChecker) *SessionMiddleware {
	return &SessionMiddleware{tokens: tokens, subjects: subjects}
}

// Handle enforces authentication for protected routes.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	raw, err := extractToken(c)
	if err != nil {
		return err
	}

	claims, err := m.tokens.ParseToken(raw)
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	if m.subjects != nil {
		exists, err := m.subjects.SubjectExists(c.UserContext(), claims.Kind, claims.SubjectID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if !exists {
			return apperrors.NewUnauthorized("account no longer exists")
		}
	}

	c.Locals(sessionKey, claims.Session())
	return c.Next()
}

func extractToken(c *fiber.Ctx) (string, error) {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", apperrors.NewUnauthorized("invalid authorization header")
		}
		return strings.TrimSpace(parts[1]), nil
	}
	if legacy := strings.TrimSpace(c.Get(LegacyTokenHeader)); legacy != "" {
		return legacy, nil
	}
	return "", apperrors.NewUnauthorized("missing authorization token")
}

// SessionFromContext retrieves the authenticated session.
func SessionFromContext(c *fiber.Ctx) (*domain.Session, bool) {
	val := c.Locals(sessionKey)
	if val == nil {
		return nil, false
	}
	session, ok := val.(*domain.Session)
	return session, ok
}
