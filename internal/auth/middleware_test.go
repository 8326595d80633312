package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/grievance-service/internal/domain"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

type stubSubjects map[string]bool

func (s stubSubjects) SubjectExists(_ context.Context, kind domain.IdentityKind, id string) (bool, error) {
	return s[string(kind)+":"+id], nil
}

func newTestApp(mw *SessionMiddleware, guards ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Code)
		},
	})
	handlers := append([]fiber.Handler{mw.Handle}, guards...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		session, ok := SessionFromContext(c)
		if !ok {
			return fiber.ErrInternalServerError
		}
		return c.SendString(string(session.Kind) + ":" + session.SubjectID)
	})
	app.Get("/me", handlers...)
	return app
}

func TestSessionMiddlewareHeaders(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	mw := NewSessionMiddleware(tm, stubSubjects{"MIGRANT:m1": true})
	app := newTestApp(mw)

	token, _, err := tm.GenerateToken("m1", domain.KindMigrant, "Asha")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"bearer", fiber.HeaderAuthorization, "Bearer " + token, http.StatusOK},
		{"legacy header", LegacyTokenHeader, token, http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"malformed bearer", fiber.HeaderAuthorization, "Token " + token, http.StatusUnauthorized},
		{"garbage token", LegacyTokenHeader, "abc.def.ghi", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestSessionMiddlewareDeletedSubject(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	app := newTestApp(NewSessionMiddleware(tm, stubSubjects{}))

	token, _, err := tm.GenerateToken("a1", domain.KindAgency, "Gone")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireKind(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	subjects := stubSubjects{"MIGRANT:m1": true, "DEPARTMENT:d1": true}
	app := newTestApp(NewSessionMiddleware(tm, subjects), RequireKind(domain.KindDepartment))

	migrantToken, _, err := tm.GenerateToken("m1", domain.KindMigrant, "")
	require.NoError(t, err)
	deptToken, _, err := tm.GenerateToken("d1", domain.KindDepartment, "Housing")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(LegacyTokenHeader, migrantToken)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(LegacyTokenHeader, deptToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
