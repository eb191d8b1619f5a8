package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	dErrors "material-master/domainerrors"
	"material-master/models"
)

// lockRetry is how often a writer polls for the file lock held by another
// process.
const lockRetry = 20 * time.Millisecond

// FileStore keeps workflow requests and audit records in two CSV files.
// The request file is rewritten on every change; the audit file is only
// ever appended to. Writers hold an exclusive lock on <workflow>.lock so
// stores in other processes never interleave a read-check-write.
type FileStore struct {
	mu           sync.Mutex
	lock         *flock.Flock
	workflowPath string
	auditPath    string
}

func NewFileStore(workflowPath, auditPath string) *FileStore {
	return &FileStore{
		lock:         flock.New(workflowPath + ".lock"),
		workflowPath: workflowPath,
		auditPath:    auditPath,
	}
}

// writeLock takes the in-process mutex and the cross-process file lock.
// The returned func releases both.
func (s *FileStore) writeLock(ctx context.Context) (func(), error) {
	s.mu.Lock()
	if err := os.MkdirAll(filepath.Dir(s.workflowPath), 0o755); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	locked, err := s.lock.TryLockContext(ctx, lockRetry)
	if err != nil || !locked {
		s.mu.Unlock()
		if err == nil {
			err = ctx.Err()
		}
		return nil, fmt.Errorf("lock %s: %w", s.lock.Path(), err)
	}
	return func() {
		s.lock.Unlock()
		s.mu.Unlock()
	}, nil
}

func (s *FileStore) ListRequests(_ context.Context) ([]models.WorkflowRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readRequests()
}

func (s *FileStore) InsertRequest(ctx context.Context, req models.WorkflowRequest) error {
	unlock, err := s.writeLock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	requests, err := s.readRequests()
	if err != nil {
		return err
	}
	for _, r := range requests {
		if r.RequestID == req.RequestID {
			return dErrors.Newf(dErrors.CodeInvalidState, "request %s already exists", req.RequestID)
		}
	}
	return SaveTable(RequestsToTable(append(requests, req)), s.workflowPath)
}

// RecordApproval rewrites the request file, then appends the audit row. If
// the append fails the previous request file is restored. The stored request
// must still be Requested when the lock is held.
func (s *FileStore) RecordApproval(ctx context.Context, req models.WorkflowRequest, audit models.AuditRecord) error {
	unlock, err := s.writeLock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	requests, err := s.readRequests()
	if err != nil {
		return err
	}
	updated := make([]models.WorkflowRequest, len(requests))
	copy(updated, requests)
	found := false
	for i, r := range updated {
		if r.RequestID != req.RequestID {
			continue
		}
		if r.Status != models.StatusRequested {
			return dErrors.Newf(dErrors.CodeInvalidState,
				"request %s is %s, only %s requests can be approved", r.RequestID, r.Status, models.StatusRequested)
		}
		updated[i] = req
		found = true
		break
	}
	if !found {
		return dErrors.Newf(dErrors.CodeNotFound, "request %s not found", req.RequestID)
	}

	if err := SaveTable(RequestsToTable(updated), s.workflowPath); err != nil {
		return err
	}
	if err := s.appendAudit(audit); err != nil {
		if restoreErr := SaveTable(RequestsToTable(requests), s.workflowPath); restoreErr != nil {
			return fmt.Errorf("append audit: %w (restore failed: %v)", err, restoreErr)
		}
		return fmt.Errorf("append audit: %w", err)
	}
	return nil
}

func (s *FileStore) ListAudit(_ context.Context, materialNumber string) ([]models.AuditRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := LoadTable(s.auditPath)
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []models.AuditRecord
	for _, a := range AuditFromTable(t) {
		if materialNumber == "" || a.MaterialNumber == materialNumber {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *FileStore) readRequests() ([]models.WorkflowRequest, error) {
	t, err := LoadTable(s.workflowPath)
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return RequestsFromTable(t), nil
}

// appendAudit adds one row to the audit file, writing the header first when
// the file is new. Rows follow the column order of an existing header.
func (s *FileStore) appendAudit(a models.AuditRecord) error {
	if err := os.MkdirAll(filepath.Dir(s.auditPath), 0o755); err != nil {
		return err
	}
	columns, err := existingHeader(s.auditPath)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(s.auditPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if columns == nil {
		columns = AuditColumns
		if err := w.Write(columns); err != nil {
			return err
		}
	}
	if err := w.Write(auditRow(a, columns)); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Sync()
}

// existingHeader returns the header of the CSV at path, or nil when the
// file does not exist or is empty.
func existingHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header, err := csv.NewReader(f).Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	return header, nil
}
