package service

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/spec-kit/grievance-service/internal/repository"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	lettersPattern  = regexp.MustCompile(`^[A-Za-z][A-Za-z\s]*$`)
	locationPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z\s,]*$`)
	licensePattern  = regexp.MustCompile(`^\d{10}$`)
	mobilePattern   = regexp.MustCompile(`^\+?\d{10,15}$`)
)

const passwordSpecials = "@$!%*?&"

// fieldErrors collects the first problem found for each request field.
type fieldErrors map[string]any

func (f fieldErrors) add(field, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

func (f fieldErrors) required(field, value string) bool {
	if strings.TrimSpace(value) == "" {
		f.add(field, "required")
		return false
	}
	return true
}

func (f fieldErrors) email(field, value string) {
	if f.required(field, value) && !emailPattern.MatchString(normalizeEmail(value)) {
		f.add(field, "invalid email address")
	}
}

func (f fieldErrors) match(field, value string, pattern *regexp.Regexp, msg string) {
	if f.required(field, value) && !pattern.MatchString(value) {
		f.add(field, msg)
	}
}

func (f fieldErrors) oneOf(field, value string, allowed []string) {
	if !f.required(field, value) {
		return
	}
	for _, candidate := range allowed {
		if value == candidate {
			return
		}
	}
	f.add(field, "must be one of "+strings.Join(allowed, ", "))
}

// strongPassword requires a lower, an upper, a digit and one of @$!%*?&,
// with no other symbols and at least 8 characters.
func (f fieldErrors) strongPassword(field, value string) {
	if !f.required(field, value) {
		return
	}
	var lower, upper, digit, special bool
	for _, r := range value {
		switch {
		case r > unicode.MaxASCII:
			f.add(field, "contains unsupported characters")
			return
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			f.add(field, "contains unsupported characters")
			return
		}
	}
	if len(value) < 8 || !lower || !upper || !digit || !special {
		f.add(field, "must be at least 8 characters with upper, lower, digit and one of "+passwordSpecials)
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return apperrors.NewValidationError("validation failed", map[string]any(f))
}

func parseDOB(value string, now time.Time) (time.Time, string) {
	dob, err := time.Parse("2006-01-02", strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, "must be a date formatted YYYY-MM-DD"
	}
	if !dob.Before(now) {
		return time.Time{}, "must be in the past"
	}
	return dob, ""
}

// wellFormedID reports whether id can name a stored record. Anything else is
// treated as unknown before it reaches a uuid column.
func wellFormedID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// conflictError reports duplicates keyed by the colliding field.
func conflictError(fields ...string) error {
	details := make(map[string]any, len(fields))
	for _, field := range fields {
		details[field] = "already registered"
	}
	return apperrors.NewConflict("already registered", details)
}

// mapUnique converts a repository unique violation into a field conflict.
func mapUnique(err error) error {
	var uv *repository.UniqueViolation
	if errors.As(err, &uv) {
		return conflictError(uv.Field)
	}
	return err
}

// notFoundAs names the missing resource in not-found errors.
func notFoundAs(err error, resource string) error {
	if err != nil && apperrors.IsNotFound(err) {
		return apperrors.NewNotFound(resource, nil)
	}
	return err
}
