package domain

import "time"

// Government authorizes agencies.
type Government struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Credential exposes the government account's login material.
func (g *Government) Credential() *Credential {
	return &Credential{
		SubjectID:    g.ID,
		Kind:         KindGovernment,
		Name:         g.Name,
		Email:        g.Email,
		PasswordHash: g.PasswordHash,
	}
}

// GovernmentStats backs the government dashboard.
type GovernmentStats struct {
	AgenciesTotal      int                     `json:"agenciesTotal"`
	AgenciesVerified   int                     `json:"agenciesVerified"`
	AgenciesUnverified int                     `json:"agenciesUnverified"`
	AgenciesRejected   int                     `json:"agenciesRejected"`
	Complaints         map[ComplaintStatus]int `json:"complaints"`
	ComplaintsUnrouted int                     `json:"complaintsUnrouted"`
	ComplaintsPending  int                     `json:"complaintsClassificationPending"`
}
