package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/dto"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/service"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// AuthHandler exposes migrant account endpoints under /api/auth.
type AuthHandler struct {
	credentials  *service.CredentialService
	verification *service.VerificationService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(credentials *service.CredentialService, verification *service.VerificationService) *AuthHandler {
	return &AuthHandler{credentials: credentials, verification: verification}
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.MigrantSignupRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	migrant, result, err := h.credentials.RegisterMigrant(c.UserContext(), service.MigrantSignupInput{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Password:         req.Password,
		DOB:              req.DOB,
		Gender:           req.Gender,
		Mobile:           req.Mobile,
		PermanentAddress: req.PermanentAddress,
		CurrentAddress:   req.CurrentAddress,
		OccupationType:   req.OccupationType,
		WorkLocation:     req.WorkLocation,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"data": fiber.Map{
			"user": migrantResponse(migrant, nil),
			"auth": authResponse(result),
		},
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.credentials.Login(c.UserContext(), domain.KindMigrant, req.Email, req.Password)
	if err != nil {
		return err
	}
	profile, err := h.verification.Profile(c.UserContext(), result.Session.SubjectID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": migrantResponse(profile.Migrant, profile.Agency),
			"auth": authResponse(result),
		},
	})
}

// Profile handles GET /api/auth/user.
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	profile, err := h.verification.Profile(c.UserContext(), session.SubjectID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": migrantResponse(profile.Migrant, profile.Agency)})
}

// Session handles GET /api/auth/session for any account kind.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": session})
}

// UpdateMigrant handles POST /api/auth/update-migrant.
func (h *AuthHandler) UpdateMigrant(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.UpdateMigrantRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.IsMigrant == nil {
		return apperrors.NewValidationError("validation failed", map[string]any{"isMigrant": "required"})
	}
	migrant, err := h.verification.SetMigrantStatus(c.UserContext(), session.SubjectID, *req.IsMigrant)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Migrant status updated",
		"data":    migrantResponse(migrant, nil),
	})
}

// VerifyMigrant handles POST /api/auth/verify-migrant (multipart: file, latitude, longitude).
func (h *AuthHandler) VerifyMigrant(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}

	fields := map[string]any{}
	lat, err := strconv.ParseFloat(strings.TrimSpace(c.FormValue("latitude")), 64)
	if err != nil {
		fields["latitude"] = "must be a number"
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(c.FormValue("longitude")), 64)
	if err != nil {
		fields["longitude"] = "must be a number"
	}
	var (
		filename string
		content  []byte
	)
	if header, err := c.FormFile("file"); err != nil {
		fields["file"] = "required"
	} else {
		file, err := header.Open()
		if err != nil {
			return apperrors.NewValidationError("unreadable upload", nil)
		}
		defer file.Close()
		if content, err = io.ReadAll(file); err != nil {
			return apperrors.NewValidationError("unreadable upload", nil)
		}
		filename = header.Filename
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError("validation failed", fields)
	}

	check, err := h.verification.VerifyMigrantStatus(c.UserContext(), session.SubjectID, service.MigrantCheckInput{
		Filename:  filename,
		Document:  content,
		Latitude:  lat,
		Longitude: lon,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Migrant status updated",
		"data": dto.MigrantCheckResponse{
			DocumentState: check.DocumentState,
			CurrentState:  check.CurrentState,
			IsMigrant:     check.IsMigrant,
			User:          migrantResponse(check.Migrant, nil),
		},
	})
}
