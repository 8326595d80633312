package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/queue"
	"github.com/spec-kit/grievance-service/internal/repository/memory"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

type fakeClassifier struct {
	mu     sync.Mutex
	result *domain.Classification
	err    error
	texts  []string
}

func (f *fakeClassifier) Classify(_ context.Context, text string) (*domain.Classification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	result := *f.result
	return &result, nil
}

type fakeDocuments struct {
	state string
	err   error
}

func (f fakeDocuments) ExtractState(context.Context, string, []byte) (string, error) {
	return f.state, f.err
}

type fakeGeocoder struct {
	state string
	err   error
}

func (f fakeGeocoder) ReverseState(context.Context, float64, float64) (string, error) {
	return f.state, f.err
}

type fixture struct {
	store        *memory.Store
	queue        *queue.MemoryQueue
	classifier   *fakeClassifier
	published    []events.Event
	credentials  *CredentialService
	verification *VerificationService
	reviews      *AgencyReviewService
	complaints   *ComplaintService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: memory.NewStore(),
		queue: queue.NewMemoryQueue(),
		classifier: &fakeClassifier{result: &domain.Classification{
			Category:              "Housing",
			CategoryConfidence:    0.9,
			RecommendedDepartment: "Housing",
			KeywordsFound:         []string{"ration"},
		}},
	}
	dispatcher := events.NewInMemoryDispatcher()
	for _, eventType := range events.AllEventTypes {
		dispatcher.Subscribe(eventType, func(_ context.Context, e events.Event) error {
			f.published = append(f.published, e)
			return nil
		})
	}

	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test", AccessTokenTTLMinutes: 60, BcryptCost: 4}}
	f.credentials = NewCredentialService(cfg, CredentialDependencies{
		MigrantRepo:    f.store.Migrants(),
		AgencyRepo:     f.store.Agencies(),
		DepartmentRepo: f.store.Departments(),
		GovernmentRepo: f.store.Governments(),
	})
	f.verification = NewVerificationService(VerificationDependencies{
		MigrantRepo:    f.store.Migrants(),
		AgencyRepo:     f.store.Agencies(),
		DocumentReader: fakeDocuments{state: "Bihar"},
		Geocoder:       fakeGeocoder{state: "Maharashtra"},
		Dispatcher:     dispatcher,
	})
	f.reviews = NewAgencyReviewService(AgencyReviewDependencies{
		AgencyRepo:    f.store.Agencies(),
		ComplaintRepo: f.store.Complaints(),
		Dispatcher:    dispatcher,
	})
	f.complaints = NewComplaintService(ComplaintDependencies{
		ComplaintRepo:  f.store.Complaints(),
		HistoryRepo:    f.store.History(),
		DepartmentRepo: f.store.Departments(),
		Classifier:     f.classifier,
		Queue:          f.queue,
		Dispatcher:     dispatcher,
		MaxTextLength:  200,
	})
	return f
}

func validMigrantInput(email string) MigrantSignupInput {
	return MigrantSignupInput{
		FirstName:        "Asha",
		LastName:         "Rao",
		Email:            email,
		Password:         "password1",
		DOB:              "1994-03-02",
		Gender:           "Female",
		Mobile:           "9876543210",
		PermanentAddress: "Patna, Bihar",
		CurrentAddress:   "Andheri, Mumbai",
		OccupationType:   "Private Sector",
		WorkLocation:     "Mumbai",
	}
}

func (f *fixture) migrant(t *testing.T, email string) *domain.Migrant {
	t.Helper()
	m, _, err := f.credentials.RegisterMigrant(context.Background(), validMigrantInput(email))
	require.NoError(t, err)
	return m
}

func (f *fixture) agency(t *testing.T, email, license string, verified bool) *domain.Agency {
	t.Helper()
	a, err := f.credentials.RegisterAgency(context.Background(), AgencySignupInput{
		Name:          "Helping Hands",
		Email:         email,
		Password:      "Secret@123",
		Department:    "Labour",
		Location:      "Mumbai, Maharashtra",
		LicenseNumber: license,
	})
	require.NoError(t, err)
	if verified {
		_, err = f.reviews.Review(context.Background(), "gov-1", a.ID, ReviewVerify, "")
		require.NoError(t, err)
		a.IsVerified = true
	}
	return a
}

func (f *fixture) department(t *testing.T, name, email string) *domain.Department {
	t.Helper()
	d, err := f.credentials.RegisterDepartment(context.Background(), AccountSignupInput{
		Name:     name,
		Email:    email,
		Password: "Secret@123",
	})
	require.NoError(t, err)
	return d
}

func domainErr(t *testing.T, err error) *apperrors.DomainError {
	t.Helper()
	require.Error(t, err)
	var de *apperrors.DomainError
	require.True(t, errors.As(err, &de), "expected DomainError, got %T: %v", err, err)
	return de
}
