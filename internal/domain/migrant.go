package domain

import "time"

// VerificationStatus tracks a migrant's request to an agency.
type VerificationStatus string

const (
	VerificationNone     VerificationStatus = "NONE"
	VerificationPending  VerificationStatus = "PENDING"
	VerificationApproved VerificationStatus = "APPROVED"
	VerificationRejected VerificationStatus = "REJECTED"
)

// Gender values accepted at signup.
var Genders = []string{"Male", "Female", "Other"}

// OccupationTypes accepted at signup.
var OccupationTypes = []string{
	"Government Employee",
	"Private Sector",
	"Self-Employed",
	"Student",
	"Unemployed",
	"Retired",
	"Other",
}

// Migrant is the end-user who files complaints.
type Migrant struct {
	ID                 string
	FirstName          string
	LastName           string
	Email              string
	PasswordHash       string
	DOB                time.Time
	Gender             string
	Mobile             string
	PermanentAddress   string
	CurrentAddress     string
	OccupationType     string
	WorkLocation       string
	IsMigrant          *bool
	AgencyID           *string
	VerificationStatus VerificationStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// FullName joins first and last name.
func (m *Migrant) FullName() string {
	if m.LastName == "" {
		return m.FirstName
	}
	return m.FirstName + " " + m.LastName
}

// AgencyVerified is true only for an approved request against a linked agency.
func (m *Migrant) AgencyVerified() bool {
	return m.AgencyID != nil && m.VerificationStatus == VerificationApproved
}

// Credential exposes the migrant's login material.
func (m *Migrant) Credential() *Credential {
	return &Credential{
		SubjectID:    m.ID,
		Kind:         KindMigrant,
		Name:         m.FullName(),
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
	}
}
