package dto

import "time"

// LoginRequest payload shared by every account kind.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MigrantSignupRequest payload for POST /api/auth/signup.
type MigrantSignupRequest struct {
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	DOB              string `json:"dob"`
	Gender           string `json:"gender"`
	Mobile           string `json:"mobile"`
	PermanentAddress string `json:"permanentAddress"`
	CurrentAddress   string `json:"currentAddress"`
	OccupationType   string `json:"occupationType"`
	WorkLocation     string `json:"workLocation"`
}

// AgencySignupRequest payload.
type AgencySignupRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Department    string `json:"department"`
	Location      string `json:"location"`
	LicenseNumber string `json:"licenseNumber"`
}

// AccountSignupRequest registers a department or government account.
type AccountSignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateMigrantRequest records the migrant flag.
type UpdateMigrantRequest struct {
	IsMigrant *bool `json:"isMigrant"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
