package domain

import "time"

// Department handles complaints routed to it.
type Department struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Credential exposes the department's login material.
func (d *Department) Credential() *Credential {
	return &Credential{
		SubjectID:    d.ID,
		Kind:         KindDepartment,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
	}
}
