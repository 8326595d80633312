package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/dto"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/service"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// AgencyHandler exposes agency accounts and the migrant verification relation.
type AgencyHandler struct {
	credentials  *service.CredentialService
	verification *service.VerificationService
}

// NewAgencyHandler constructs handler.
func NewAgencyHandler(credentials *service.CredentialService, verification *service.VerificationService) *AgencyHandler {
	return &AgencyHandler{credentials: credentials, verification: verification}
}

// Signup handles POST /api/agency/signup.
func (h *AgencyHandler) Signup(c *fiber.Ctx) error {
	var req dto.AgencySignupRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	agency, err := h.credentials.RegisterAgency(c.UserContext(), service.AgencySignupInput{
		Name:          req.Name,
		Email:         req.Email,
		Password:      req.Password,
		Department:    req.Department,
		Location:      req.Location,
		LicenseNumber: req.LicenseNumber,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Agency registered successfully. Waiting for admin verification.",
		"data":    agencyResponse(agency),
	})
}

// Login handles POST /api/agency/login.
func (h *AgencyHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.credentials.Login(c.UserContext(), domain.KindAgency, req.Email, req.Password)
	if err != nil {
		return err
	}
	agency, err := h.credentials.Agency(c.UserContext(), result.Session.SubjectID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"agency": agencyResponse(agency),
			"auth":   authResponse(result),
		},
	})
}

// ListAgencies handles GET /api/agency/agencies.
func (h *AgencyHandler) ListAgencies(c *fiber.Ctx) error {
	agencies, err := h.verification.ListSelectableAgencies(c.UserContext(), agencyFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": agencyList(agencies)})
}

// RequestVerification handles POST /api/agency/request-verification from a migrant.
func (h *AgencyHandler) RequestVerification(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.RequestVerificationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	migrant, err := h.verification.RequestVerification(c.UserContext(), session.SubjectID, req.AgencyID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Verification request sent",
		"data":    migrantResponse(migrant, nil),
	})
}

// Requests handles GET /api/agency/requests.
func (h *AgencyHandler) Requests(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	migrants, err := h.verification.PendingRequests(c.UserContext(), session.SubjectID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": migrantList(migrants)})
}

// UpdateVerification handles POST /api/agency/update-verification.
func (h *AgencyHandler) UpdateVerification(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.UpdateVerificationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	fields := map[string]any{}
	if req.UserID == "" {
		fields["userId"] = "required"
	}
	if req.Status == nil {
		fields["status"] = "required"
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError("validation failed", fields)
	}

	migrant, err := h.verification.Decide(c.UserContext(), session.SubjectID, req.UserID, *req.Status)
	if err != nil {
		return err
	}
	message := "Verification Declined"
	if *req.Status {
		message = "Verification Approved"
	}
	return c.JSON(fiber.Map{
		"message": message,
		"data":    migrantResponse(migrant, nil),
	})
}

// Users handles GET /api/agency/users.
func (h *AgencyHandler) Users(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	migrants, err := h.verification.LinkedMigrants(c.UserContext(), session.SubjectID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": migrantList(migrants)})
}

// Stats handles GET /api/agency/stats.
func (h *AgencyHandler) Stats(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	stats, err := h.verification.Stats(c.UserContext(), session.SubjectID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

// Profile handles GET /api/agency/profile.
func (h *AgencyHandler) Profile(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	agency, err := h.credentials.Agency(c.UserContext(), session.SubjectID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": agencyResponse(agency)})
}

func agencyFilter(c *fiber.Ctx) service.AgencyListFilter {
	return service.AgencyListFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
	}
}
