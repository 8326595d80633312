package handlers

import (
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/dto"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/service"
)

// ComplaintsHandler manages migrant complaint endpoints.
type ComplaintsHandler struct {
	service *service.ComplaintService
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaintService *service.ComplaintService) *ComplaintsHandler {
	return &ComplaintsHandler{service: complaintService}
}

// Submit POST /api/complaints/submit. A complaint the classifier could not
// handle yet is accepted with 202.
func (h *ComplaintsHandler) Submit(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.SubmitComplaintRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	complaint, err := h.service.Submit(c.UserContext(), session.SubjectID, req.ComplaintText)
	if err != nil {
		return err
	}
	status, message := http.StatusCreated, "Complaint submitted successfully"
	if complaint.RoutingState == domain.RoutingClassificationPending {
		status, message = http.StatusAccepted, "Complaint received; classification pending"
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"data":    complaintResponse(complaint),
	})
}

// UserComplaints GET /api/complaints/user-complaints.
func (h *ComplaintsHandler) UserComplaints(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	complaints, err := h.service.ListForUser(c.UserContext(), session.SubjectID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintList(complaints)})
}

// GetComplaint GET /api/complaints/:id.
func (h *ComplaintsHandler) GetComplaint(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	detail, err := h.service.GetForUser(c.UserContext(), session.SubjectID, pathParam(c, "id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintDetail(detail)})
}

// DepartmentComplaints GET /api/complaints/department/:departmentName.
func (h *ComplaintsHandler) DepartmentComplaints(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	name, err := url.PathUnescape(pathParam(c, "departmentName"))
	if err != nil {
		name = pathParam(c, "departmentName")
	}
	complaints, err := h.service.ListForDepartmentName(c.UserContext(), session.SubjectID, name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintList(complaints)})
}
