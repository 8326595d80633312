package events

import (
	"time"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintSubmitted           EventType = "complaint_submitted"
	EventComplaintClassified          EventType = "complaint_classified"
	EventComplaintStatusChanged       EventType = "complaint_status_changed"
	EventComplaintRouted              EventType = "complaint_routed"
	EventMigrantVerificationRequested EventType = "migrant_verification_requested"
	EventMigrantVerificationDecided   EventType = "migrant_verification_decided"
	EventAgencyVerified               EventType = "agency_verified"
	EventAgencyRejected               EventType = "agency_rejected"
)

// AllEventTypes lists every type the service publishes.
var AllEventTypes = []EventType{
	EventComplaintSubmitted,
	EventComplaintClassified,
	EventComplaintStatusChanged,
	EventComplaintRouted,
	EventMigrantVerificationRequested,
	EventMigrantVerificationDecided,
	EventAgencyVerified,
	EventAgencyRejected,
}

// Actor identifies who caused an event.
type Actor struct {
	Kind domain.IdentityKind `json:"kind,omitempty"`
	ID   string              `json:"id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ComplaintSubmittedPayload payload.
type ComplaintSubmittedPayload struct {
	UserID       string              `json:"user_id"`
	Category     string              `json:"category,omitempty"`
	RoutingState domain.RoutingState `json:"routing_state"`
	DepartmentID *string             `json:"department_id,omitempty"`
}

// ComplaintClassifiedPayload payload.
type ComplaintClassifiedPayload struct {
	Category              string              `json:"category"`
	RecommendedDepartment string              `json:"recommended_department"`
	RoutingState          domain.RoutingState `json:"routing_state"`
}

// ComplaintStatusChangedPayload payload.
type ComplaintStatusChangedPayload struct {
	UserID    string                 `json:"user_id"`
	OldStatus domain.ComplaintStatus `json:"old_status"`
	NewStatus domain.ComplaintStatus `json:"new_status"`
}

// ComplaintRoutedPayload payload.
type ComplaintRoutedPayload struct {
	DepartmentID string `json:"department_id"`
}

// VerificationRequestedPayload payload.
type VerificationRequestedPayload struct {
	AgencyID string `json:"agency_id"`
}

// VerificationDecidedPayload payload.
type VerificationDecidedPayload struct {
	AgencyID string                    `json:"agency_id"`
	Status   domain.VerificationStatus `json:"status"`
}

// AgencyRejectedPayload payload.
type AgencyRejectedPayload struct {
	Name   string `json:"name"`
	Reason string `json:"reason,omitempty"`
}
