package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/spec-kit/grievance-service/internal/api/dto"
	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/service"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

func requireSession(c *fiber.Ctx) (*domain.Session, error) {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return session, nil
}

// pathParam returns a copy of a route parameter. fiber hands out strings
// backed by the pooled request buffer, so anything that may be stored must
// be copied first.
func pathParam(c *fiber.Ctx, name string) string {
	return utils.CopyString(c.Params(name))
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

func authResponse(result *service.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{Token: result.Token, ExpiresAt: result.ExpiresAt}
}

func agencyResponse(a *domain.Agency) dto.AgencyResponse {
	return dto.AgencyResponse{
		ID:            a.ID,
		Name:          a.Name,
		Email:         a.Email,
		Department:    a.Department,
		Location:      a.Location,
		LicenseNumber: a.LicenseNumber,
		IsVerified:    a.IsVerified,
		CreatedAt:     a.CreatedAt,
	}
}

func agencyList(agencies []domain.Agency) []dto.AgencyResponse {
	items := make([]dto.AgencyResponse, 0, len(agencies))
	for i := range agencies {
		items = append(items, agencyResponse(&agencies[i]))
	}
	return items
}

func rejectionResponse(r *domain.AgencyRejection) dto.AgencyRejectionResponse {
	return dto.AgencyRejectionResponse{
		AgencyID:      r.AgencyID,
		Name:          r.Name,
		Email:         r.Email,
		LicenseNumber: r.LicenseNumber,
		RejectedBy:    r.RejectedBy,
		Reason:        r.Reason,
		RejectedAt:    r.CreatedAt,
	}
}

func migrantResponse(m *domain.Migrant, agency *domain.Agency) dto.MigrantResponse {
	resp := dto.MigrantResponse{
		ID:                 m.ID,
		FirstName:          m.FirstName,
		LastName:           m.LastName,
		Email:              m.Email,
		DOB:                m.DOB.Format("2006-01-02"),
		Gender:             m.Gender,
		Mobile:             m.Mobile,
		PermanentAddress:   m.PermanentAddress,
		CurrentAddress:     m.CurrentAddress,
		OccupationType:     m.OccupationType,
		WorkLocation:       m.WorkLocation,
		IsMigrant:          m.IsMigrant,
		AgencyID:           m.AgencyID,
		VerificationStatus: m.VerificationStatus,
		AgencyVerified:     m.AgencyVerified(),
		CreatedAt:          m.CreatedAt,
	}
	if agency != nil {
		a := agencyResponse(agency)
		resp.Agency = &a
	}
	return resp
}

func migrantList(migrants []domain.Migrant) []dto.MigrantResponse {
	items := make([]dto.MigrantResponse, 0, len(migrants))
	for i := range migrants {
		items = append(items, migrantResponse(&migrants[i], nil))
	}
	return items
}

func departmentResponse(d *domain.Department) dto.AccountResponse {
	return dto.AccountResponse{ID: d.ID, Name: d.Name, Email: d.Email, CreatedAt: d.CreatedAt}
}

func governmentResponse(g *domain.Government) dto.AccountResponse {
	return dto.AccountResponse{ID: g.ID, Name: g.Name, Email: g.Email, CreatedAt: g.CreatedAt}
}

func complaintResponse(c *domain.Complaint) dto.ComplaintResponse {
	alternatives := c.AlternativeCategories
	if alternatives == nil {
		alternatives = []domain.AlternativeCategory{}
	}
	keywords := c.KeywordsFound
	if keywords == nil {
		keywords = []string{}
	}
	return dto.ComplaintResponse{
		ID:                    c.ID,
		UserID:                c.UserID,
		ComplaintText:         c.Text,
		Category:              c.Category,
		CategoryConfidence:    c.CategoryConfidence,
		AlternativeCategories: alternatives,
		RecommendedDepartment: c.RecommendedDepartment,
		KeywordsFound:         keywords,
		Explanation:           c.Explanation,
		Status:                c.Status,
		RoutingState:          c.RoutingState,
		DepartmentID:          c.DepartmentID,
		CreatedAt:             c.CreatedAt,
		UpdatedAt:             c.UpdatedAt,
	}
}

func complaintList(complaints []domain.Complaint) []dto.ComplaintResponse {
	items := make([]dto.ComplaintResponse, 0, len(complaints))
	for i := range complaints {
		items = append(items, complaintResponse(&complaints[i]))
	}
	return items
}

func complaintDetail(detail *service.ComplaintDetail) dto.ComplaintDetailResponse {
	history := make([]dto.ComplaintHistoryResponse, 0, len(detail.History))
	for _, h := range detail.History {
		history = append(history, dto.ComplaintHistoryResponse{
			ID:            h.ID,
			ChangeType:    h.ChangeType,
			ChangedByKind: h.ChangedByKind,
			ChangedByID:   h.ChangedByID,
			OldValue:      h.OldValue,
			NewValue:      h.NewValue,
			CreatedAt:     h.CreatedAt,
		})
	}
	return dto.ComplaintDetailResponse{
		ComplaintResponse: complaintResponse(detail.Complaint),
		History:           history,
	}
}
