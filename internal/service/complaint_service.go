package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/observability"
	"github.com/spec-kit/grievance-service/internal/outbound"
	"github.com/spec-kit/grievance-service/internal/queue"
	"github.com/spec-kit/grievance-service/internal/repository"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

const (
	defaultMaxComplaintLength = 5000
	persistTimeout            = 5 * time.Second
)

// ComplaintService coordinates complaint submission, routing and status.
type ComplaintService struct {
	complaints  repository.ComplaintRepository
	history     repository.ComplaintHistoryRepository
	departments repository.DepartmentRepository
	classifier  outbound.Classifier
	queue       queue.ClassificationQueue
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
	maxLength   int
}

// ComplaintDependencies bundles collaborators for the complaint service.
type ComplaintDependencies struct {
	ComplaintRepo  repository.ComplaintRepository
	HistoryRepo    repository.ComplaintHistoryRepository
	DepartmentRepo repository.DepartmentRepository
	Classifier     outbound.Classifier
	Queue          queue.ClassificationQueue
	Dispatcher     events.Dispatcher
	Metrics        *observability.Metrics
	Logger         *zap.Logger
	MaxTextLength  int
}

// ComplaintDetail is a complaint with its audit trail.
type ComplaintDetail struct {
	Complaint *domain.Complaint
	History   []domain.ComplaintHistory
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxLength := deps.MaxTextLength
	if maxLength <= 0 {
		maxLength = defaultMaxComplaintLength
	}
	return &ComplaintService{
		complaints:  deps.ComplaintRepo,
		history:     deps.HistoryRepo,
		departments: deps.DepartmentRepo,
		classifier:  deps.Classifier,
		queue:       deps.Queue,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		logger:      logger,
		maxLength:   maxLength,
	}
}

// Submit files a complaint for the migrant. When the classifier cannot be
// reached the complaint is still saved, marked CLASSIFICATION_PENDING and
// queued for another attempt.
func (s *ComplaintService) Submit(ctx context.Context, migrantID, text string) (*domain.Complaint, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("validation failed", map[string]any{"complaintText": "required"})
	}
	if utf8.RuneCountInString(text) > s.maxLength {
		return nil, apperrors.NewValidationError("validation failed",
			map[string]any{"complaintText": "too long", "maxLength": s.maxLength})
	}

	complaint := &domain.Complaint{
		UserID: migrantID,
		Text:   text,
		Status: domain.ComplaintPending,
	}
	classification, err := s.classifier.Classify(ctx, text)
	if err != nil {
		s.logger.Warn("classification failed; deferring", zap.String("user_id", migrantID), zap.Error(err))
		complaint.RoutingState = domain.RoutingClassificationPending
	} else {
		complaint.ApplyClassification(classification)
		if err := s.resolveDepartment(ctx, complaint); err != nil {
			return nil, err
		}
	}

	// Classification may have used up the caller's deadline; the complaint
	// is still written so the pending fallback holds.
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	if err := s.complaints.Create(storeCtx, complaint); err != nil {
		return nil, notFoundAs(err, "Migrant")
	}
	if err := s.record(storeCtx, complaint.ID, domain.KindMigrant, &migrantID, domain.ChangeTypeCreated, nil, map[string]any{
		"status":        complaint.Status,
		"routing_state": complaint.RoutingState,
		"category":      complaint.Category,
	}); err != nil {
		s.logger.Error("complaint history not recorded",
			zap.String("complaint_id", complaint.ID),
			zap.Error(err))
	}

	if complaint.RoutingState == domain.RoutingClassificationPending {
		s.enqueue(storeCtx, complaint.ID)
	}
	s.metrics.ComplaintSubmitted(string(complaint.RoutingState))
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventComplaintSubmitted,
		SubjectID: complaint.ID,
		Actor:     events.Actor{Kind: domain.KindMigrant, ID: migrantID},
		Payload: events.ComplaintSubmittedPayload{
			UserID:       migrantID,
			Category:     complaint.Category,
			RoutingState: complaint.RoutingState,
			DepartmentID: complaint.DepartmentID,
		},
	})
	return complaint, nil
}

// Reclassify retries classification for a deferred complaint. Complaints
// that already left CLASSIFICATION_PENDING are returned unchanged.
func (s *ComplaintService) Reclassify(ctx context.Context, complaintID string) (*domain.Complaint, error) {
	if !wellFormedID(complaintID) {
		return nil, apperrors.NewNotFound("Complaint", nil)
	}
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		return nil, notFoundAs(err, "Complaint")
	}
	if complaint.RoutingState != domain.RoutingClassificationPending {
		return complaint, nil
	}

	classification, err := s.classifier.Classify(ctx, complaint.Text)
	if err != nil {
		return nil, err
	}
	complaint.ApplyClassification(classification)
	if err := s.resolveDepartment(ctx, complaint); err != nil {
		return nil, err
	}
	if err := s.complaints.Update(ctx, complaint); err != nil {
		return nil, err
	}
	if err := s.record(ctx, complaint.ID, domain.KindSystem, nil, domain.ChangeTypeClassification,
		map[string]any{"routing_state": domain.RoutingClassificationPending},
		map[string]any{
			"routing_state":          complaint.RoutingState,
			"category":               complaint.Category,
			"recommended_department": complaint.RecommendedDepartment,
		}); err != nil {
		return nil, err
	}
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventComplaintClassified,
		SubjectID: complaint.ID,
		Actor:     events.Actor{Kind: domain.KindSystem},
		Payload: events.ComplaintClassifiedPayload{
			Category:              complaint.Category,
			RecommendedDepartment: complaint.RecommendedDepartment,
			RoutingState:          complaint.RoutingState,
		},
	})
	return complaint, nil
}

// PendingClassification lists complaints still waiting for the classifier.
func (s *ComplaintService) PendingClassification(ctx context.Context) ([]domain.Complaint, error) {
	return s.complaints.List(ctx, repository.ComplaintFilter{
		RoutingStates: []domain.RoutingState{domain.RoutingClassificationPending},
	})
}

// ListForUser returns the migrant's complaints newest first.
func (s *ComplaintService) ListForUser(ctx context.Context, migrantID string) ([]domain.Complaint, error) {
	return s.complaints.List(ctx, repository.ComplaintFilter{UserID: &migrantID})
}

// GetForUser returns one of the migrant's complaints with its history.
func (s *ComplaintService) GetForUser(ctx context.Context, migrantID, complaintID string) (*ComplaintDetail, error) {
	if !wellFormedID(complaintID) {
		return nil, apperrors.NewNotFound("Complaint", nil)
	}
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		return nil, notFoundAs(err, "Complaint")
	}
	if complaint.UserID != migrantID {
		return nil, apperrors.NewNotFound("Complaint", nil)
	}
	history, err := s.history.ListByComplaint(ctx, complaint.ID)
	if err != nil {
		return nil, err
	}
	return &ComplaintDetail{Complaint: complaint, History: history}, nil
}

// ListForDepartment returns complaints routed to the department.
func (s *ComplaintService) ListForDepartment(ctx context.Context, departmentID string) ([]domain.Complaint, error) {
	return s.complaints.List(ctx, repository.ComplaintFilter{DepartmentID: &departmentID})
}

// ListForDepartmentName lists by department name, which must be the caller's own.
func (s *ComplaintService) ListForDepartmentName(ctx context.Context, departmentID, name string) ([]domain.Complaint, error) {
	dept, err := s.departments.GetByID(ctx, departmentID)
	if err != nil {
		return nil, notFoundAs(err, "Department")
	}
	if name = strings.TrimSpace(name); name != "" && !strings.EqualFold(name, dept.Name) {
		return nil, apperrors.NewForbidden("departments may only list their own complaints")
	}
	return s.ListForDepartment(ctx, dept.ID)
}

// ListUnrouted returns complaints no department matched.
func (s *ComplaintService) ListUnrouted(ctx context.Context) ([]domain.Complaint, error) {
	return s.complaints.List(ctx, repository.ComplaintFilter{
		RoutingStates: []domain.RoutingState{domain.RoutingUnrouted},
	})
}

// UpdateStatus moves a complaint routed to the department along its lifecycle.
// Setting the current status again is a no-op.
func (s *ComplaintService) UpdateStatus(ctx context.Context, departmentID, complaintID string, status domain.ComplaintStatus) (*domain.Complaint, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("validation failed",
			map[string]any{"status": "must be one of Pending, Solving, Solved"})
	}
	if !wellFormedID(complaintID) {
		return nil, apperrors.NewNotFound("Complaint", nil)
	}
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		return nil, notFoundAs(err, "Complaint")
	}
	if complaint.DepartmentID == nil || *complaint.DepartmentID != departmentID {
		return nil, apperrors.NewForbidden("complaint is not routed to this department")
	}
	if complaint.Status == status {
		return complaint, nil
	}
	if !canAdvance(complaint.Status, status) {
		return nil, apperrors.NewConflict("invalid status transition", map[string]any{
			"from": string(complaint.Status),
			"to":   string(status),
		})
	}

	oldStatus := complaint.Status
	complaint.Status = status
	if err := s.complaints.Update(ctx, complaint); err != nil {
		return nil, err
	}
	if err := s.record(ctx, complaint.ID, domain.KindDepartment, &departmentID, domain.ChangeTypeStatus,
		map[string]any{"status": oldStatus},
		map[string]any{"status": status}); err != nil {
		return nil, err
	}
	s.metrics.ComplaintStatusChanged(string(oldStatus), string(status))
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventComplaintStatusChanged,
		SubjectID: complaint.ID,
		Actor:     events.Actor{Kind: domain.KindDepartment, ID: departmentID},
		Payload: events.ComplaintStatusChangedPayload{
			UserID:    complaint.UserID,
			OldStatus: oldStatus,
			NewStatus: status,
		},
	})
	return complaint, nil
}

// Route assigns an unrouted complaint to a department by hand.
func (s *ComplaintService) Route(ctx context.Context, governmentID, complaintID, departmentID string) (*domain.Complaint, error) {
	if strings.TrimSpace(departmentID) == "" {
		return nil, apperrors.NewValidationError("validation failed", map[string]any{"departmentId": "required"})
	}
	if !wellFormedID(complaintID) {
		return nil, apperrors.NewNotFound("Complaint", nil)
	}
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		return nil, notFoundAs(err, "Complaint")
	}
	if complaint.RoutingState != domain.RoutingUnrouted {
		return nil, apperrors.NewConflict("complaint is not awaiting routing",
			map[string]any{"routingState": string(complaint.RoutingState)})
	}
	unknownDepartment := apperrors.NewValidationError("validation failed", map[string]any{"departmentId": "unknown department"})
	if !wellFormedID(departmentID) {
		return nil, unknownDepartment
	}
	dept, err := s.departments.GetByID(ctx, departmentID)
	if apperrors.IsNotFound(err) {
		return nil, unknownDepartment
	}
	if err != nil {
		return nil, err
	}

	complaint.DepartmentID = &dept.ID
	complaint.RoutingState = domain.RoutingRouted
	if err := s.complaints.Update(ctx, complaint); err != nil {
		return nil, err
	}
	if err := s.record(ctx, complaint.ID, domain.KindGovernment, &governmentID, domain.ChangeTypeRouting,
		map[string]any{"routing_state": domain.RoutingUnrouted},
		map[string]any{"routing_state": domain.RoutingRouted, "department_id": dept.ID}); err != nil {
		return nil, err
	}
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventComplaintRouted,
		SubjectID: complaint.ID,
		Actor:     events.Actor{Kind: domain.KindGovernment, ID: governmentID},
		Payload:   events.ComplaintRoutedPayload{DepartmentID: dept.ID},
	})
	return complaint, nil
}

// resolveDepartment turns the classifier's department name into a reference.
func (s *ComplaintService) resolveDepartment(ctx context.Context, complaint *domain.Complaint) error {
	complaint.DepartmentID = nil
	complaint.RoutingState = domain.RoutingUnrouted
	name := strings.TrimSpace(complaint.RecommendedDepartment)
	if name == "" {
		return nil
	}
	dept, err := s.departments.GetByName(ctx, name)
	if apperrors.IsNotFound(err) {
		s.logger.Info("no department matches recommendation", zap.String("recommended_department", name))
		return nil
	}
	if err != nil {
		return err
	}
	complaint.DepartmentID = &dept.ID
	complaint.RoutingState = domain.RoutingRouted
	return nil
}

func (s *ComplaintService) enqueue(ctx context.Context, complaintID string) {
	if s.queue == nil {
		return
	}
	if err := s.queue.Enqueue(ctx, complaintID); err != nil {
		s.logger.Error("enqueue classification retry", zap.String("complaint_id", complaintID), zap.Error(err))
	}
}

func (s *ComplaintService) record(ctx context.Context, complaintID string, kind domain.IdentityKind, actorID *string, changeType domain.ComplaintChangeType, oldValue, newValue map[string]any) error {
	if s.history == nil {
		return nil
	}
	entry := &domain.ComplaintHistory{
		ComplaintID:   complaintID,
		ChangedByKind: kind,
		ChangedByID:   actorID,
		ChangeType:    changeType,
		OldValue:      oldValue,
		NewValue:      newValue,
	}
	return s.history.Create(ctx, entry)
}

var complaintTransitions = map[domain.ComplaintStatus][]domain.ComplaintStatus{
	domain.ComplaintPending: {domain.ComplaintSolving, domain.ComplaintSolved},
	domain.ComplaintSolving: {domain.ComplaintSolved},
	domain.ComplaintSolved:  {},
}

func canAdvance(current, next domain.ComplaintStatus) bool {
	for _, candidate := range complaintTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
