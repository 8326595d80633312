package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/repository"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// identityStore adapts one identity kind's repository to the shared
// credential flows.
type identityStore struct {
	byEmail func(ctx context.Context, email string) (*domain.Credential, error)
	byID    func(ctx context.Context, id string) (*domain.Credential, error)
	// notFound names the account in login errors. Empty keeps unknown
	// emails indistinguishable from wrong passwords.
	notFound string
}

// CredentialService registers accounts of every identity kind, checks
// passwords and issues session tokens.
type CredentialService struct {
	migrants    repository.MigrantRepository
	agencies    repository.AgencyRepository
	departments repository.DepartmentRepository
	governments repository.GovernmentRepository
	stores      map[domain.IdentityKind]identityStore
	tokenMgr    *auth.TokenManager
	bcryptCost  int
	logger      *zap.Logger
	now         func() time.Time
}

// CredentialDependencies bundles repositories for the credential service.
type CredentialDependencies struct {
	MigrantRepo    repository.MigrantRepository
	AgencyRepo     repository.AgencyRepository
	DepartmentRepo repository.DepartmentRepository
	GovernmentRepo repository.GovernmentRepository
	Logger         *zap.Logger
}

// AuthResult is a freshly issued session token.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	Session   *domain.Session
}

// MigrantSignupInput is the migrant registration form.
type MigrantSignupInput struct {
	FirstName        string
	LastName         string
	Email            string
	Password         string
	DOB              string
	Gender           string
	Mobile           string
	PermanentAddress string
	CurrentAddress   string
	OccupationType   string
	WorkLocation     string
}

// AgencySignupInput is the agency registration form.
type AgencySignupInput struct {
	Name          string
	Email         string
	Password      string
	Department    string
	Location      string
	LicenseNumber string
}

// AccountSignupInput registers a department or government account.
type AccountSignupInput struct {
	Name     string
	Email    string
	Password string
}

// NewCredentialService builds the service.
func NewCredentialService(cfg config.Config, deps CredentialDependencies) *CredentialService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &CredentialService{
		migrants:    deps.MigrantRepo,
		agencies:    deps.AgencyRepo,
		departments: deps.DepartmentRepo,
		governments: deps.GovernmentRepo,
		tokenMgr:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL()),
		bcryptCost:  cfg.Auth.BcryptCost,
		logger:      logger,
		now:         time.Now,
	}
	s.stores = map[domain.IdentityKind]identityStore{
		domain.KindMigrant: {
			byEmail: func(ctx context.Context, email string) (*domain.Credential, error) {
				m, err := s.migrants.GetByEmail(ctx, email)
				if err != nil {
					return nil, err
				}
				return m.Credential(), nil
			},
			byID: func(ctx context.Context, id string) (*domain.Credential, error) {
				m, err := s.migrants.GetByID(ctx, id)
				if err != nil {
					return nil, err
				}
				return m.Credential(), nil
			},
		},
		domain.KindAgency: {
			byEmail: func(ctx context.Context, email string) (*domain.Credential, error) {
				a, err := s.agencies.GetByEmail(ctx, email)
				if err != nil {
					return nil, err
				}
				return a.Credential(), nil
			},
			byID: func(ctx context.Context, id string) (*domain.Credential, error) {
				a, err := s.agencies.GetByID(ctx, id)
				if err != nil {
					return nil, err
				}
				return a.Credential(), nil
			},
			notFound: "Agency",
		},
		domain.KindDepartment: {
			byEmail: func(ctx context.Context, email string) (*domain.Credential, error) {
				d, err := s.departments.GetByEmail(ctx, email)
				if err != nil {
					return nil, err
				}
				return d.Credential(), nil
			},
			byID: func(ctx context.Context, id string) (*domain.Credential, error) {
				d, err := s.departments.GetByID(ctx, id)
				if err != nil {
					return nil, err
				}
				return d.Credential(), nil
			},
			notFound: "Department",
		},
		domain.KindGovernment: {
			byEmail: func(ctx context.Context, email string) (*domain.Credential, error) {
				g, err := s.governments.GetByEmail(ctx, email)
				if err != nil {
					return nil, err
				}
				return g.Credential(), nil
			},
			byID: func(ctx context.Context, id string) (*domain.Credential, error) {
				g, err := s.governments.GetByID(ctx, id)
				if err != nil {
					return nil, err
				}
				return g.Credential(), nil
			},
			notFound: "Government",
		},
	}
	return s
}

// TokenManager exposes token helper for middleware.
func (s *CredentialService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Login authenticates any identity kind by email and password.
func (s *CredentialService) Login(ctx context.Context, kind domain.IdentityKind, email, password string) (*AuthResult, error) {
	store, ok := s.stores[kind]
	if !ok {
		return nil, apperrors.NewValidationError("unknown account kind", map[string]any{"kind": string(kind)})
	}
	fields := fieldErrors{}
	fields.required("email", email)
	fields.required("password", password)
	if err := fields.err(); err != nil {
		return nil, err
	}

	cred, err := store.byEmail(ctx, normalizeEmail(email))
	if apperrors.IsNotFound(err) {
		if store.notFound == "" {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.NewNotFound(store.notFound, nil)
	}
	if err != nil {
		return nil, err
	}
	if err := auth.ComparePassword(cred.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.issue(cred)
}

// SubjectExists satisfies auth.SubjectChecker.
func (s *CredentialService) SubjectExists(ctx context.Context, kind domain.IdentityKind, id string) (bool, error) {
	store, ok := s.stores[kind]
	if !ok {
		return false, nil
	}
	_, err := store.byID(ctx, id)
	if apperrors.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// RegisterMigrant creates a migrant account and signs it in.
func (s *CredentialService) RegisterMigrant(ctx context.Context, input MigrantSignupInput) (*domain.Migrant, *AuthResult, error) {
	fields := fieldErrors{}
	fields.required("firstName", input.FirstName)
	fields.required("lastName", input.LastName)
	fields.email("email", input.Email)
	if fields.required("password", input.Password) && len(input.Password) < 8 {
		fields.add("password", "must be at least 8 characters")
	}
	var dob time.Time
	if fields.required("dob", input.DOB) {
		var msg string
		if dob, msg = parseDOB(input.DOB, s.now()); msg != "" {
			fields.add("dob", msg)
		}
	}
	fields.oneOf("gender", input.Gender, domain.Genders)
	fields.match("mobile", strings.TrimSpace(input.Mobile), mobilePattern, "must be 10 to 15 digits")
	fields.required("permanentAddress", input.PermanentAddress)
	fields.required("currentAddress", input.CurrentAddress)
	fields.oneOf("occupationType", input.OccupationType, domain.OccupationTypes)
	fields.required("workLocation", input.WorkLocation)
	if err := fields.err(); err != nil {
		return nil, nil, err
	}

	email := normalizeEmail(input.Email)
	if taken, err := s.emailTaken(ctx, domain.KindMigrant, email); err != nil {
		return nil, nil, err
	} else if taken {
		return nil, nil, conflictError("email")
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, nil, err
	}
	migrant := &domain.Migrant{
		FirstName:          strings.TrimSpace(input.FirstName),
		LastName:           strings.TrimSpace(input.LastName),
		Email:              email,
		PasswordHash:       hash,
		DOB:                dob,
		Gender:             input.Gender,
		Mobile:             strings.TrimSpace(input.Mobile),
		PermanentAddress:   strings.TrimSpace(input.PermanentAddress),
		CurrentAddress:     strings.TrimSpace(input.CurrentAddress),
		OccupationType:     input.OccupationType,
		WorkLocation:       strings.TrimSpace(input.WorkLocation),
		VerificationStatus: domain.VerificationNone,
	}
	if err := s.migrants.Create(ctx, migrant); err != nil {
		return nil, nil, mapUnique(err)
	}
	s.logger.Info("migrant registered", zap.String("migrant_id", migrant.ID))

	result, err := s.issue(migrant.Credential())
	if err != nil {
		return nil, nil, err
	}
	return migrant, result, nil
}

// RegisterAgency creates an unverified agency.
func (s *CredentialService) RegisterAgency(ctx context.Context, input AgencySignupInput) (*domain.Agency, error) {
	name := strings.TrimSpace(input.Name)
	location := strings.TrimSpace(input.Location)
	license := strings.TrimSpace(input.LicenseNumber)

	fields := fieldErrors{}
	fields.match("name", name, lettersPattern, "may contain only letters and spaces")
	fields.email("email", input.Email)
	fields.strongPassword("password", input.Password)
	fields.required("department", input.Department)
	fields.match("location", location, locationPattern, "may contain only letters, spaces and commas")
	fields.match("licenseNumber", license, licensePattern, "must be exactly 10 digits")
	if err := fields.err(); err != nil {
		return nil, err
	}

	email := normalizeEmail(input.Email)
	var duplicates []string
	if taken, err := s.emailTaken(ctx, domain.KindAgency, email); err != nil {
		return nil, err
	} else if taken {
		duplicates = append(duplicates, "email")
	}
	if _, err := s.agencies.GetByLicense(ctx, license); err == nil {
		duplicates = append(duplicates, "licenseNumber")
	} else if !apperrors.IsNotFound(err) {
		return nil, err
	}
	if len(duplicates) > 0 {
		return nil, conflictError(duplicates...)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	agency := &domain.Agency{
		Name:          name,
		Email:         email,
		PasswordHash:  hash,
		Department:    strings.TrimSpace(input.Department),
		Location:      location,
		LicenseNumber: license,
	}
	if err := s.agencies.Create(ctx, agency); err != nil {
		return nil, mapUnique(err)
	}
	s.logger.Info("agency registered", zap.String("agency_id", agency.ID))
	return agency, nil
}

// RegisterDepartment creates a complaint-handling department.
func (s *CredentialService) RegisterDepartment(ctx context.Context, input AccountSignupInput) (*domain.Department, error) {
	name, email, hash, err := s.prepareAccount(ctx, domain.KindDepartment, input)
	if err != nil {
		return nil, err
	}
	dept := &domain.Department{Name: name, Email: email, PasswordHash: hash}
	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, mapUnique(err)
	}
	s.logger.Info("department registered", zap.String("department_id", dept.ID), zap.String("name", dept.Name))
	return dept, nil
}

// RegisterGovernment creates a government account.
func (s *CredentialService) RegisterGovernment(ctx context.Context, input AccountSignupInput) (*domain.Government, error) {
	name, email, hash, err := s.prepareAccount(ctx, domain.KindGovernment, input)
	if err != nil {
		return nil, err
	}
	gov := &domain.Government{Name: name, Email: email, PasswordHash: hash}
	if err := s.governments.Create(ctx, gov); err != nil {
		return nil, mapUnique(err)
	}
	s.logger.Info("government account registered", zap.String("government_id", gov.ID))
	return gov, nil
}

// Agency returns the agency's own record.
func (s *CredentialService) Agency(ctx context.Context, id string) (*domain.Agency, error) {
	agency, err := s.agencies.GetByID(ctx, id)
	return agency, notFoundAs(err, "Agency")
}

// Department returns the department's own record.
func (s *CredentialService) Department(ctx context.Context, id string) (*domain.Department, error) {
	dept, err := s.departments.GetByID(ctx, id)
	return dept, notFoundAs(err, "Department")
}

// Government returns the government account's own record.
func (s *CredentialService) Government(ctx context.Context, id string) (*domain.Government, error) {
	gov, err := s.governments.GetByID(ctx, id)
	return gov, notFoundAs(err, "Government")
}

func (s *CredentialService) prepareAccount(ctx context.Context, kind domain.IdentityKind, input AccountSignupInput) (string, string, string, error) {
	name := strings.TrimSpace(input.Name)
	fields := fieldErrors{}
	fields.required("name", name)
	fields.email("email", input.Email)
	fields.strongPassword("password", input.Password)
	if err := fields.err(); err != nil {
		return "", "", "", err
	}

	email := normalizeEmail(input.Email)
	var duplicates []string
	if taken, err := s.emailTaken(ctx, kind, email); err != nil {
		return "", "", "", err
	} else if taken {
		duplicates = append(duplicates, "email")
	}
	if kind == domain.KindDepartment {
		if _, err := s.departments.GetByName(ctx, name); err == nil {
			duplicates = append(duplicates, "name")
		} else if !apperrors.IsNotFound(err) {
			return "", "", "", err
		}
	}
	if len(duplicates) > 0 {
		return "", "", "", conflictError(duplicates...)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return "", "", "", err
	}
	return name, email, hash, nil
}

func (s *CredentialService) emailTaken(ctx context.Context, kind domain.IdentityKind, email string) (bool, error) {
	_, err := s.stores[kind].byEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	if apperrors.IsNotFound(err) {
		return false, nil
	}
	return false, err
}

func (s *CredentialService) issue(cred *domain.Credential) (*AuthResult, error) {
	token, exp, err := s.tokenMgr.GenerateToken(cred.SubjectID, cred.Kind, cred.Name)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Token:     token,
		ExpiresAt: exp,
		Session: &domain.Session{
			Kind:      cred.Kind,
			SubjectID: cred.SubjectID,
			Name:      cred.Name,
			ExpiresAt: exp,
		},
	}, nil
}
