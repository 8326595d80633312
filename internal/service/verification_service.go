package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/observability"
	"github.com/spec-kit/grievance-service/internal/outbound"
	"github.com/spec-kit/grievance-service/internal/repository"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// VerificationService runs the migrant side of verification: the migrant
// status check and the migrant-to-agency approval relation.
type VerificationService struct {
	migrants   repository.MigrantRepository
	agencies   repository.AgencyRepository
	documents  outbound.DocumentReader
	geocoder   outbound.Geocoder
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// VerificationDependencies bundles collaborators for the verification service.
type VerificationDependencies struct {
	MigrantRepo    repository.MigrantRepository
	AgencyRepo     repository.AgencyRepository
	DocumentReader outbound.DocumentReader
	Geocoder       outbound.Geocoder
	Dispatcher     events.Dispatcher
	Metrics        *observability.Metrics
	Logger         *zap.Logger
}

// MigrantProfile is a migrant with its agency resolved.
type MigrantProfile struct {
	Migrant *domain.Migrant
	Agency  *domain.Agency
}

// MigrantCheckInput carries an identity document and the caller's location.
type MigrantCheckInput struct {
	Filename  string
	Document  []byte
	Latitude  float64
	Longitude float64
}

// MigrantCheck reports how the migrant status was decided.
type MigrantCheck struct {
	DocumentState string
	CurrentState  string
	IsMigrant     bool
	Migrant       *domain.Migrant
}

// NewVerificationService constructs the service.
func NewVerificationService(deps VerificationDependencies) *VerificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VerificationService{
		migrants:   deps.MigrantRepo,
		agencies:   deps.AgencyRepo,
		documents:  deps.DocumentReader,
		geocoder:   deps.Geocoder,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// Profile returns the migrant with its agency populated.
func (s *VerificationService) Profile(ctx context.Context, migrantID string) (*MigrantProfile, error) {
	migrant, err := s.migrants.GetByID(ctx, migrantID)
	if err != nil {
		return nil, notFoundAs(err, "Migrant")
	}
	profile := &MigrantProfile{Migrant: migrant}
	if migrant.AgencyID != nil {
		agency, err := s.agencies.GetByID(ctx, *migrant.AgencyID)
		if err != nil && !apperrors.IsNotFound(err) {
			return nil, err
		}
		profile.Agency = agency
	}
	return profile, nil
}

// ListSelectableAgencies lists agencies a migrant may pick from.
func (s *VerificationService) ListSelectableAgencies(ctx context.Context, filter AgencyListFilter) ([]domain.Agency, error) {
	repoFilter, err := filter.repositoryFilter()
	if err != nil {
		return nil, err
	}
	return s.agencies.List(ctx, repoFilter)
}

// RequestVerification links the migrant to an agency as a pending request.
// An earlier pending or rejected request is replaced.
func (s *VerificationService) RequestVerification(ctx context.Context, migrantID, agencyID string) (*domain.Migrant, error) {
	agencyID = strings.TrimSpace(agencyID)
	if agencyID == "" {
		return nil, apperrors.NewValidationError("validation failed", map[string]any{"agencyId": "required"})
	}
	if !wellFormedID(agencyID) {
		return nil, apperrors.NewValidationError("validation failed", map[string]any{"agencyId": "unknown agency"})
	}
	agency, err := s.agencies.GetByID(ctx, agencyID)
	if apperrors.IsNotFound(err) {
		return nil, apperrors.NewValidationError("validation failed", map[string]any{"agencyId": "unknown agency"})
	}
	if err != nil {
		return nil, err
	}
	if !agency.IsVerified {
		return nil, apperrors.NewValidationError("validation failed", map[string]any{"agencyId": "agency is not verified"})
	}

	migrant, err := s.migrants.GetByID(ctx, migrantID)
	if err != nil {
		return nil, notFoundAs(err, "Migrant")
	}
	if migrant.VerificationStatus == domain.VerificationApproved {
		return nil, apperrors.NewConflict("migrant already verified by an agency", nil)
	}

	migrant.AgencyID = &agency.ID
	migrant.VerificationStatus = domain.VerificationPending
	if err := s.migrants.Update(ctx, migrant); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventMigrantVerificationRequested,
		SubjectID: migrant.ID,
		Actor:     events.Actor{Kind: domain.KindMigrant, ID: migrant.ID},
		Payload:   events.VerificationRequestedPayload{AgencyID: agency.ID},
	})
	return migrant, nil
}

// Decide approves or rejects a pending request addressed to the agency.
// Repeating the same decision is a no-op; reversing it is a conflict.
func (s *VerificationService) Decide(ctx context.Context, agencyID, migrantID string, approve bool) (*domain.Migrant, error) {
	if !wellFormedID(migrantID) {
		return nil, apperrors.NewNotFound("Migrant", nil)
	}
	migrant, err := s.migrants.GetByID(ctx, migrantID)
	if err != nil {
		return nil, notFoundAs(err, "Migrant")
	}
	if migrant.AgencyID == nil || *migrant.AgencyID != agencyID {
		return nil, apperrors.NewNotFound("Migrant", nil)
	}

	target := domain.VerificationRejected
	if approve {
		target = domain.VerificationApproved
	}
	if migrant.VerificationStatus == target {
		return migrant, nil
	}
	if migrant.VerificationStatus != domain.VerificationPending {
		return nil, apperrors.NewConflict("verification request already decided",
			map[string]any{"status": string(migrant.VerificationStatus)})
	}

	migrant.VerificationStatus = target
	if err := s.migrants.Update(ctx, migrant); err != nil {
		return nil, err
	}
	s.metrics.VerificationDecided(string(target))
	s.publishEvent(ctx, events.Event{
		Type:      events.EventMigrantVerificationDecided,
		SubjectID: migrant.ID,
		Actor:     events.Actor{Kind: domain.KindAgency, ID: agencyID},
		Payload:   events.VerificationDecidedPayload{AgencyID: agencyID, Status: target},
	})
	return migrant, nil
}

// PendingRequests lists migrants awaiting the agency's decision.
func (s *VerificationService) PendingRequests(ctx context.Context, agencyID string) ([]domain.Migrant, error) {
	return s.migrants.ListByAgency(ctx, agencyID, domain.VerificationPending)
}

// LinkedMigrants lists every migrant that chose the agency.
func (s *VerificationService) LinkedMigrants(ctx context.Context, agencyID string) ([]domain.Migrant, error) {
	return s.migrants.ListByAgency(ctx, agencyID)
}

// Stats counts the agency's migrants by verification state.
func (s *VerificationService) Stats(ctx context.Context, agencyID string) (domain.AgencyStats, error) {
	return s.migrants.StatsByAgency(ctx, agencyID)
}

// SetMigrantStatus records whether the caller is a migrant. It can be set once.
func (s *VerificationService) SetMigrantStatus(ctx context.Context, migrantID string, isMigrant bool) (*domain.Migrant, error) {
	migrant, err := s.migrants.GetByID(ctx, migrantID)
	if err != nil {
		return nil, notFoundAs(err, "Migrant")
	}
	if migrant.IsMigrant != nil {
		return nil, apperrors.NewConflict("migrant status already recorded",
			map[string]any{"isMigrant": *migrant.IsMigrant})
	}
	migrant.IsMigrant = &isMigrant
	if err := s.migrants.Update(ctx, migrant); err != nil {
		return nil, err
	}
	s.logger.Info("migrant status recorded", zap.String("migrant_id", migrant.ID), zap.Bool("is_migrant", isMigrant))
	return migrant, nil
}

// VerifyMigrantStatus compares the state printed on the identity document
// with the state of the caller's current location. A mismatch means the
// caller lives away from home and is recorded as a migrant.
func (s *VerificationService) VerifyMigrantStatus(ctx context.Context, migrantID string, input MigrantCheckInput) (*MigrantCheck, error) {
	fields := fieldErrors{}
	if len(input.Document) == 0 {
		fields.add("file", "required")
	}
	if input.Latitude < -90 || input.Latitude > 90 {
		fields.add("latitude", "must be between -90 and 90")
	}
	if input.Longitude < -180 || input.Longitude > 180 {
		fields.add("longitude", "must be between -180 and 180")
	}
	if err := fields.err(); err != nil {
		return nil, err
	}
	current, err := s.migrants.GetByID(ctx, migrantID)
	if err != nil {
		return nil, notFoundAs(err, "Migrant")
	}
	if current.IsMigrant != nil {
		return nil, apperrors.NewConflict("migrant status already recorded",
			map[string]any{"isMigrant": *current.IsMigrant})
	}

	documentState, err := s.documents.ExtractState(ctx, input.Filename, input.Document)
	if err != nil {
		return nil, err
	}
	currentState, err := s.geocoder.ReverseState(ctx, input.Latitude, input.Longitude)
	if err != nil {
		return nil, err
	}

	isMigrant := !strings.EqualFold(strings.TrimSpace(documentState), strings.TrimSpace(currentState))
	migrant, err := s.SetMigrantStatus(ctx, migrantID, isMigrant)
	if err != nil {
		return nil, err
	}
	return &MigrantCheck{
		DocumentState: documentState,
		CurrentState:  currentState,
		IsMigrant:     isMigrant,
		Migrant:       migrant,
	}, nil
}

func (s *VerificationService) publishEvent(ctx context.Context, event events.Event) {
	publish(ctx, s.dispatcher, s.logger, event)
}

// publish stamps and dispatches an event; handler failures are logged only.
func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
