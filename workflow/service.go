package workflow

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	dErrors "material-master/domainerrors"
	"material-master/kpi"
	"material-master/metrics"
	"material-master/models"
)

// Service runs workflow operations against a Store. Mutations are
// serialized so the read-check-write of an approval is atomic within the
// process.
type Service struct {
	mu      sync.Mutex
	store   Store
	now     func() time.Time
	newID   func() string
	policy  VersionPolicy
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

func WithVersionPolicy(p VersionPolicy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// NewService constructs a Service.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
		policy: VersionFixed,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates the input and stores a new Requested request.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (models.WorkflowRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, err := NewRequest(s.newID(), in, s.now())
	if err != nil {
		s.reject("submit", err)
		return models.WorkflowRequest{}, err
	}
	if err := s.store.InsertRequest(ctx, req); err != nil {
		return models.WorkflowRequest{}, err
	}

	s.metrics.IncrementSubmitted()
	s.logger.Info().
		Str("request_id", req.RequestID).
		Str("material", req.MaterialNumber).
		Str("requested_by", req.RequestedBy).
		Msg("material request submitted")
	return req, nil
}

// Approve moves the request from Requested to Approved and appends one
// audit record. Unknown IDs fail with NotFound; requests that are not
// Requested fail with InvalidState and leave the store unchanged.
func (s *Service) Approve(ctx context.Context, requestID string, in ApproveInput) (models.WorkflowRequest, models.AuditRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	requests, err := s.store.ListRequests(ctx)
	if err != nil {
		return models.WorkflowRequest{}, models.AuditRecord{}, err
	}
	req, ok := findRequest(requests, requestID)
	if !ok {
		err := dErrors.Newf(dErrors.CodeNotFound, "request %s not found", requestID)
		s.reject("approve", err)
		return models.WorkflowRequest{}, models.AuditRecord{}, err
	}

	version := 1
	if s.policy == VersionIncrement {
		prior, err := s.store.ListAudit(ctx, req.MaterialNumber)
		if err != nil {
			return models.WorkflowRequest{}, models.AuditRecord{}, err
		}
		version = s.policy.Next(len(prior))
	}

	approved, audit, err := ApproveRequest(req, in, s.now(), version)
	if err != nil {
		s.reject("approve", err)
		return models.WorkflowRequest{}, models.AuditRecord{}, err
	}
	if err := s.store.RecordApproval(ctx, approved, audit); err != nil {
		return models.WorkflowRequest{}, models.AuditRecord{}, err
	}

	s.metrics.IncrementApproved()
	s.logger.Info().
		Str("request_id", approved.RequestID).
		Str("material", approved.MaterialNumber).
		Str("approved_by", approved.ApprovedBy).
		Int("version", audit.Version).
		Msg("material request approved")
	return approved, audit, nil
}

// Requests lists requests, optionally only those in status.
func (s *Service) Requests(ctx context.Context, status string) ([]models.WorkflowRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.store.ListRequests(ctx)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return all, nil
	}
	out := make([]models.WorkflowRequest, 0)
	for _, r := range all {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

// Pending lists requests awaiting approval.
func (s *Service) Pending(ctx context.Context) ([]models.WorkflowRequest, error) {
	return s.Requests(ctx, models.StatusRequested)
}

// History returns the audit records of one material ordered by Version.
// Records with equal versions keep their insertion order.
func (s *Service) History(ctx context.Context, materialNumber string) ([]models.AuditRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.ListAudit(ctx, materialNumber)
	if err != nil {
		return nil, err
	}
	out := append(make([]models.AuditRecord, 0, len(records)), records...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// AuditedMaterials lists the material numbers with audit records, in the
// order they were first audited.
func (s *Service) AuditedMaterials(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.ListAudit(ctx, "")
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, a := range records {
		if _, ok := seen[a.MaterialNumber]; ok {
			continue
		}
		seen[a.MaterialNumber] = struct{}{}
		out = append(out, a.MaterialNumber)
	}
	return out, nil
}

// KPIs computes the workflow report over all stored requests.
func (s *Service) KPIs(ctx context.Context) (kpi.WorkflowReport, error) {
	all, err := s.Requests(ctx, "")
	if err != nil {
		return kpi.WorkflowReport{}, err
	}
	return kpi.ComputeWorkflowKPIs(all), nil
}

// Dashboard gathers everything the workflow dashboard shows.
func (s *Service) Dashboard(ctx context.Context) (models.WorkflowDashboard, error) {
	all, err := s.Requests(ctx, "")
	if err != nil {
		return models.WorkflowDashboard{}, err
	}
	materials, err := s.AuditedMaterials(ctx)
	if err != nil {
		return models.WorkflowDashboard{}, err
	}
	pending := make([]models.WorkflowRequest, 0)
	for _, r := range all {
		if r.Status == models.StatusRequested {
			pending = append(pending, r)
		}
	}
	return models.WorkflowDashboard{
		KPIs:             kpi.ComputeWorkflowKPIs(all).Metrics(),
		Pending:          pending,
		Requests:         all,
		AuditedMaterials: materials,
	}, nil
}

func (s *Service) reject(op string, err error) {
	code := dErrors.CodeOf(err)
	s.metrics.IncrementRejected(string(code))
	s.logger.Warn().Err(err).Str("op", op).Str("code", string(code)).Msg("workflow operation rejected")
}

func findRequest(requests []models.WorkflowRequest, id string) (models.WorkflowRequest, bool) {
	for _, r := range requests {
		if r.RequestID == id {
			return r, true
		}
	}
	return models.WorkflowRequest{}, false
}
