package dto

import (
	"time"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// RequestVerificationRequest payload.
type RequestVerificationRequest struct {
	AgencyID string `json:"agencyId"`
}

// UpdateVerificationRequest carries an agency decision; status true approves.
type UpdateVerificationRequest struct {
	UserID string `json:"userId"`
	Status *bool  `json:"status"`
}

// ReviewAgencyRequest payload for PUT /api/government/agencies/:id.
type ReviewAgencyRequest struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// AgencyResponse never carries the password hash.
type AgencyResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Department    string    `json:"department"`
	Location      string    `json:"location"`
	LicenseNumber string    `json:"licenseNumber"`
	IsVerified    bool      `json:"isVerified"`
	CreatedAt     time.Time `json:"createdAt"`
}

// AgencyRejectionResponse is the audit row of a removed agency.
type AgencyRejectionResponse struct {
	AgencyID      string    `json:"agencyId"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	LicenseNumber string    `json:"licenseNumber"`
	RejectedBy    string    `json:"rejectedBy"`
	Reason        string    `json:"reason,omitempty"`
	RejectedAt    time.Time `json:"rejectedAt"`
}

// MigrantResponse is the migrant profile as agencies and the migrant see it.
type MigrantResponse struct {
	ID                 string                    `json:"id"`
	FirstName          string                    `json:"firstName"`
	LastName           string                    `json:"lastName"`
	Email              string                    `json:"email"`
	DOB                string                    `json:"dob"`
	Gender             string                    `json:"gender"`
	Mobile             string                    `json:"mobile"`
	PermanentAddress   string                    `json:"permanentAddress"`
	CurrentAddress     string                    `json:"currentAddress"`
	OccupationType     string                    `json:"occupationType"`
	WorkLocation       string                    `json:"workLocation"`
	IsMigrant          *bool                     `json:"isMigrant"`
	AgencyID           *string                   `json:"agencyId"`
	Agency             *AgencyResponse           `json:"agency,omitempty"`
	VerificationStatus domain.VerificationStatus `json:"verificationStatus"`
	AgencyVerified     bool                      `json:"agencyVerified"`
	CreatedAt          time.Time                 `json:"createdAt"`
}

// MigrantCheckResponse reports the document and location comparison.
type MigrantCheckResponse struct {
	DocumentState string          `json:"documentState"`
	CurrentState  string          `json:"currentState"`
	IsMigrant     bool            `json:"isMigrant"`
	User          MigrantResponse `json:"user"`
}

// AccountResponse describes a department or government account.
type AccountResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}
