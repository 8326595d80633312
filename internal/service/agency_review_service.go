package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/observability"
	"github.com/spec-kit/grievance-service/internal/repository"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// Agency list status filters.
const (
	AgencyStatusAll        = "all"
	AgencyStatusVerified   = "verified"
	AgencyStatusUnverified = "unverified"
)

// ReviewAction is a government decision on an agency.
type ReviewAction string

const (
	ReviewVerify ReviewAction = "verify"
	ReviewReject ReviewAction = "reject"
)

// AgencyListFilter narrows agency listings.
type AgencyListFilter struct {
	Status string
	Search string
	Limit  int
	Offset int
}

func (f AgencyListFilter) repositoryFilter() (repository.AgencyFilter, error) {
	filter := repository.AgencyFilter{
		Search: strings.TrimSpace(f.Search),
		Limit:  f.Limit,
		Offset: f.Offset,
	}
	switch strings.ToLower(strings.TrimSpace(f.Status)) {
	case "", AgencyStatusAll:
	case AgencyStatusVerified:
		verified := true
		filter.Verified = &verified
	case AgencyStatusUnverified:
		verified := false
		filter.Verified = &verified
	default:
		return filter, apperrors.NewValidationError("validation failed",
			map[string]any{"status": "must be one of all, verified, unverified"})
	}
	return filter, nil
}

// ReviewResult is the outcome of a government review.
type ReviewResult struct {
	Action    ReviewAction
	Agency    *domain.Agency
	Rejection *domain.AgencyRejection
}

// AgencyReviewService lets government accounts verify or reject agencies.
type AgencyReviewService struct {
	agencies   repository.AgencyRepository
	complaints repository.ComplaintRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// AgencyReviewDependencies bundles collaborators for the review service.
type AgencyReviewDependencies struct {
	AgencyRepo    repository.AgencyRepository
	ComplaintRepo repository.ComplaintRepository
	Dispatcher    events.Dispatcher
	Metrics       *observability.Metrics
	Logger        *zap.Logger
}

// NewAgencyReviewService constructs the service.
func NewAgencyReviewService(deps AgencyReviewDependencies) *AgencyReviewService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AgencyReviewService{
		agencies:   deps.AgencyRepo,
		complaints: deps.ComplaintRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// ListAgencies returns agencies newest first.
func (s *AgencyReviewService) ListAgencies(ctx context.Context, filter AgencyListFilter) ([]domain.Agency, error) {
	repoFilter, err := filter.repositoryFilter()
	if err != nil {
		return nil, err
	}
	return s.agencies.List(ctx, repoFilter)
}

// GetAgency fetches one agency.
func (s *AgencyReviewService) GetAgency(ctx context.Context, id string) (*domain.Agency, error) {
	if !wellFormedID(id) {
		return nil, apperrors.NewNotFound("Agency", nil)
	}
	agency, err := s.agencies.GetByID(ctx, id)
	return agency, notFoundAs(err, "Agency")
}

// Review applies a government decision. Verifying is idempotent. Rejecting
// keeps an audit row, releases the agency's migrants and deletes the agency.
func (s *AgencyReviewService) Review(ctx context.Context, governmentID, agencyID string, action ReviewAction, reason string) (*ReviewResult, error) {
	if (action == ReviewVerify || action == ReviewReject) && !wellFormedID(agencyID) {
		return nil, apperrors.NewNotFound("Agency", nil)
	}
	switch action {
	case ReviewVerify:
		agency, err := s.agencies.GetByID(ctx, agencyID)
		if err != nil {
			return nil, notFoundAs(err, "Agency")
		}
		if !agency.IsVerified {
			if err := s.agencies.SetVerified(ctx, agencyID); err != nil {
				return nil, notFoundAs(err, "Agency")
			}
			agency.IsVerified = true
			s.metrics.AgencyReviewed(string(action))
			publish(ctx, s.dispatcher, s.logger, events.Event{
				Type:      events.EventAgencyVerified,
				SubjectID: agency.ID,
				Actor:     events.Actor{Kind: domain.KindGovernment, ID: governmentID},
			})
		}
		return &ReviewResult{Action: action, Agency: agency}, nil

	case ReviewReject:
		rejection := &domain.AgencyRejection{
			AgencyID:   agencyID,
			RejectedBy: governmentID,
			Reason:     strings.TrimSpace(reason),
		}
		if err := s.agencies.Reject(ctx, rejection); err != nil {
			return nil, notFoundAs(err, "Agency")
		}
		s.metrics.AgencyReviewed(string(action))
		s.logger.Info("agency rejected",
			zap.String("agency_id", rejection.AgencyID),
			zap.String("government_id", governmentID))
		publish(ctx, s.dispatcher, s.logger, events.Event{
			Type:      events.EventAgencyRejected,
			SubjectID: rejection.AgencyID,
			Actor:     events.Actor{Kind: domain.KindGovernment, ID: governmentID},
			Payload:   events.AgencyRejectedPayload{Name: rejection.Name, Reason: rejection.Reason},
		})
		return &ReviewResult{Action: action, Rejection: rejection}, nil
	}
	return nil, apperrors.NewValidationError("validation failed",
		map[string]any{"action": "must be verify or reject"})
}

// Stats aggregates the government dashboard numbers.
func (s *AgencyReviewService) Stats(ctx context.Context) (*domain.GovernmentStats, error) {
	counts, err := s.agencies.Counts(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.complaints.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byRouting, err := s.complaints.CountByRouting(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.GovernmentStats{
		AgenciesTotal:      counts.Total,
		AgenciesVerified:   counts.Verified,
		AgenciesUnverified: counts.Unverified,
		AgenciesRejected:   counts.Rejected,
		Complaints:         byStatus,
		ComplaintsUnrouted: byRouting[domain.RoutingUnrouted],
		ComplaintsPending:  byRouting[domain.RoutingClassificationPending],
	}, nil
}
