package domain

import "time"

// Agency verifies migrants and is itself verified by government.
type Agency struct {
	ID            string
	Name          string
	Email         string
	PasswordHash  string
	Department    string
	Location      string
	LicenseNumber string
	IsVerified    bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Credential exposes the agency's login material.
func (a *Agency) Credential() *Credential {
	return &Credential{
		SubjectID:    a.ID,
		Kind:         KindAgency,
		Name:         a.Name,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
	}
}

// AgencyRejection is the audit row kept after a rejected agency is removed.
type AgencyRejection struct {
	ID            string
	AgencyID      string
	Name          string
	Email         string
	LicenseNumber string
	RejectedBy    string
	Reason        string
	CreatedAt     time.Time
}

// AgencyStats counts an agency's migrants per verification state.
type AgencyStats struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}
