package domain

import "time"

// IdentityKind differentiates the four account types that can hold a session.
type IdentityKind string

const (
	KindMigrant    IdentityKind = "MIGRANT"
	KindAgency     IdentityKind = "AGENCY"
	KindDepartment IdentityKind = "DEPARTMENT"
	KindGovernment IdentityKind = "GOVERNMENT"

	// KindSystem attributes audit entries written by background work.
	// It never appears in a session.
	KindSystem IdentityKind = "SYSTEM"
)

// Valid reports whether k is a known identity kind.
func (k IdentityKind) Valid() bool {
	switch k {
	case KindMigrant, KindAgency, KindDepartment, KindGovernment:
		return true
	}
	return false
}

// Session is the authenticated caller decoded from a token.
type Session struct {
	Kind      IdentityKind `json:"kind"`
	SubjectID string       `json:"subjectId"`
	Name      string       `json:"name"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// Credential is the login material shared by every identity kind.
type Credential struct {
	SubjectID    string
	Kind         IdentityKind
	Name         string
	Email        string
	PasswordHash string
}
