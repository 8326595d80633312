package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/dto"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/service"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// DepartmentHandler serves department accounts and their complaint queue.
type DepartmentHandler struct {
	credentials *service.CredentialService
	complaints  *service.ComplaintService
}

// NewDepartmentHandler constructs handler.
func NewDepartmentHandler(credentials *service.CredentialService, complaints *service.ComplaintService) *DepartmentHandler {
	return &DepartmentHandler{credentials: credentials, complaints: complaints}
}

// Signup handles POST /api/department/signup.
func (h *DepartmentHandler) Signup(c *fiber.Ctx) error {
	var req dto.AccountSignupRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	dept, err := h.credentials.RegisterDepartment(c.UserContext(), service.AccountSignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Department registered successfully",
		"data":    departmentResponse(dept),
	})
}

// Login handles POST /api/department/login.
func (h *DepartmentHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.credentials.Login(c.UserContext(), domain.KindDepartment, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"departmentId":   result.Session.SubjectID,
			"departmentName": result.Session.Name,
			"auth":           authResponse(result),
		},
	})
}

// UpdateStatus handles POST /api/department/update-status.
func (h *DepartmentHandler) UpdateStatus(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.ComplaintID) == "" {
		return apperrors.NewValidationError("validation failed", map[string]any{"complaintId": "required"})
	}
	complaint, err := h.complaints.UpdateStatus(c.UserContext(), session.SubjectID, req.ComplaintID, domain.ComplaintStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Complaint marked as " + string(complaint.Status),
		"data":    complaintResponse(complaint),
	})
}

// Complaints handles GET /api/department/complaints.
func (h *DepartmentHandler) Complaints(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	complaints, err := h.complaints.ListForDepartmentName(c.UserContext(), session.SubjectID, c.Query("departmentName"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintList(complaints)})
}

// Profile handles GET /api/department/profile.
func (h *DepartmentHandler) Profile(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	dept, err := h.credentials.Department(c.UserContext(), session.SubjectID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": departmentResponse(dept)})
}
