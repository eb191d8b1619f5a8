package workflow

import (
	"context"
	"sync"

	dErrors "material-master/domainerrors"
	"material-master/models"
)

// Store persists requests and audit records. Implementations must never
// update or delete an audit record once written.
type Store interface {
	// ListRequests returns every request in insertion order.
	ListRequests(ctx context.Context) ([]models.WorkflowRequest, error)
	InsertRequest(ctx context.Context, req models.WorkflowRequest) error
	// RecordApproval replaces the stored request with the same RequestID and
	// appends audit. Either both happen or neither does. The stored request
	// must still be Requested at write time, otherwise it fails with
	// InvalidState; an unknown RequestID fails with NotFound.
	RecordApproval(ctx context.Context, req models.WorkflowRequest, audit models.AuditRecord) error
	// ListAudit returns audit records in insertion order, restricted to one
	// material unless materialNumber is empty.
	ListAudit(ctx context.Context, materialNumber string) ([]models.AuditRecord, error)
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu       sync.RWMutex
	requests []models.WorkflowRequest
	audit    []models.AuditRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) ListRequests(_ context.Context) ([]models.WorkflowRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.WorkflowRequest(nil), s.requests...), nil
}

func (s *MemoryStore) InsertRequest(_ context.Context, req models.WorkflowRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.requests {
		if r.RequestID == req.RequestID {
			return dErrors.Newf(dErrors.CodeInvalidState, "request %s already exists", req.RequestID)
		}
	}
	s.requests = append(s.requests, req)
	return nil
}

func (s *MemoryStore) RecordApproval(_ context.Context, req models.WorkflowRequest, audit models.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.requests {
		if r.RequestID == req.RequestID {
			if r.Status != models.StatusRequested {
				return dErrors.Newf(dErrors.CodeInvalidState,
					"request %s is %s, only %s requests can be approved", r.RequestID, r.Status, models.StatusRequested)
			}
			s.requests[i] = req
			s.audit = append(s.audit, audit)
			return nil
		}
	}
	return dErrors.Newf(dErrors.CodeNotFound, "request %s not found", req.RequestID)
}

func (s *MemoryStore) ListAudit(_ context.Context, materialNumber string) ([]models.AuditRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.AuditRecord
	for _, a := range s.audit {
		if materialNumber == "" || a.MaterialNumber == materialNumber {
			out = append(out, a)
		}
	}
	return out, nil
}
