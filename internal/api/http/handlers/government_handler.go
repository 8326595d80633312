package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/dto"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/service"
)

// GovernmentHandler serves government accounts, agency review and routing.
type GovernmentHandler struct {
	credentials *service.CredentialService
	reviews     *service.AgencyReviewService
	complaints  *service.ComplaintService
}

// NewGovernmentHandler constructs handler.
func NewGovernmentHandler(credentials *service.CredentialService, reviews *service.AgencyReviewService, complaints *service.ComplaintService) *GovernmentHandler {
	return &GovernmentHandler{credentials: credentials, reviews: reviews, complaints: complaints}
}

// Signup handles POST /api/government/signup.
func (h *GovernmentHandler) Signup(c *fiber.Ctx) error {
	var req dto.AccountSignupRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	gov, err := h.credentials.RegisterGovernment(c.UserContext(), service.AccountSignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Government account registered successfully",
		"data":    governmentResponse(gov),
	})
}

// Login handles POST /api/government/login.
func (h *GovernmentHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.credentials.Login(c.UserContext(), domain.KindGovernment, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"name": result.Session.Name,
			"auth": authResponse(result),
		},
	})
}

// Profile handles GET /api/government/profile.
func (h *GovernmentHandler) Profile(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	gov, err := h.credentials.Government(c.UserContext(), session.SubjectID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": governmentResponse(gov)})
}

// ListAgencies handles GET /api/government/agencies.
func (h *GovernmentHandler) ListAgencies(c *fiber.Ctx) error {
	agencies, err := h.reviews.ListAgencies(c.UserContext(), agencyFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": agencyList(agencies)})
}

// ListUnverified handles GET /api/government/agencies/unverified.
func (h *GovernmentHandler) ListUnverified(c *fiber.Ctx) error {
	filter := agencyFilter(c)
	filter.Status = service.AgencyStatusUnverified
	agencies, err := h.reviews.ListAgencies(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": agencyList(agencies)})
}

// GetAgency handles GET /api/government/agencies/:id.
func (h *GovernmentHandler) GetAgency(c *fiber.Ctx) error {
	agency, err := h.reviews.GetAgency(c.UserContext(), pathParam(c, "id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": agencyResponse(agency)})
}

// ReviewAgency handles PUT /api/government/agencies/:id.
func (h *GovernmentHandler) ReviewAgency(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.ReviewAgencyRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	action := service.ReviewAction(strings.ToLower(strings.TrimSpace(req.Action)))
	result, err := h.reviews.Review(c.UserContext(), session.SubjectID, pathParam(c, "id"), action, req.Reason)
	if err != nil {
		return err
	}
	if result.Action == service.ReviewReject {
		return c.JSON(fiber.Map{
			"message": "Agency rejected and removed",
			"data":    rejectionResponse(result.Rejection),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Agency verified successfully",
		"data":    agencyResponse(result.Agency),
	})
}

// Stats handles GET /api/government/stats.
func (h *GovernmentHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.reviews.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

// UnroutedComplaints handles GET /api/government/complaints/unrouted.
func (h *GovernmentHandler) UnroutedComplaints(c *fiber.Ctx) error {
	complaints, err := h.complaints.ListUnrouted(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintList(complaints)})
}

// RouteComplaint handles PUT /api/government/complaints/:id/route.
func (h *GovernmentHandler) RouteComplaint(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.RouteComplaintRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	complaint, err := h.complaints.Route(c.UserContext(), session.SubjectID, pathParam(c, "id"), req.DepartmentID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Complaint routed",
		"data":    complaintResponse(complaint),
	})
}
