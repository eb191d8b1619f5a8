package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	dErrors "material-master/domainerrors"
	"material-master/models"
	"material-master/table"
)

// SQLiteStore keeps workflow requests and audit records in the database
// opened by config.OpenDB. Triggers on audit_log reject updates and deletes.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) ListRequests(ctx context.Context) ([]models.WorkflowRequest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT request_id, material_number, material_description, request_date, requested_by,
		       status, COALESCE(approved_by, ''), COALESCE(approval_date, ''), COALESCE(comments, '')
		FROM workflow_requests
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query workflow requests: %w", err)
	}
	defer rows.Close()

	var out []models.WorkflowRequest
	for rows.Next() {
		var r models.WorkflowRequest
		var requestDate, approvalDate string
		if err := rows.Scan(&r.RequestID, &r.MaterialNumber, &r.MaterialDescription, &requestDate,
			&r.RequestedBy, &r.Status, &r.ApprovedBy, &approvalDate, &r.Comments); err != nil {
			return nil, fmt.Errorf("scan workflow request: %w", err)
		}
		r.RequestDate, _ = table.ParseTime(requestDate)
		if ts, ok := table.ParseTime(approvalDate); ok {
			r.ApprovalDate = &ts
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) InsertRequest(ctx context.Context, req models.WorkflowRequest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workflow_requests
			(request_id, material_number, material_description, request_date, requested_by, status, approved_by, approval_date, comments)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.RequestID, req.MaterialNumber, req.MaterialDescription, table.FormatTime(req.RequestDate),
		req.RequestedBy, req.Status, nullable(req.ApprovedBy), approvalDate(req), nullable(req.Comments))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return dErrors.Wrap(err, dErrors.CodeInvalidState, "request "+req.RequestID+" already exists")
		}
		return fmt.Errorf("insert workflow request: %w", err)
	}
	return nil
}

// RecordApproval updates the request and appends the audit row in one
// transaction. The update only matches a request that is still Requested,
// so a writer working from a stale snapshot gets InvalidState.
func (s *SQLiteStore) RecordApproval(ctx context.Context, req models.WorkflowRequest, audit models.AuditRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin approval: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE workflow_requests
		SET status = ?, approved_by = ?, approval_date = ?, comments = ?
		WHERE request_id = ? AND status = ?`,
		req.Status, nullable(req.ApprovedBy), approvalDate(req), nullable(req.Comments), req.RequestID,
		models.StatusRequested)
	if err != nil {
		return fmt.Errorf("update workflow request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update workflow request: %w", err)
	}
	if n == 0 {
		var status string
		err := tx.QueryRowContext(ctx, `SELECT status FROM workflow_requests WHERE request_id = ?`, req.RequestID).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return dErrors.Newf(dErrors.CodeNotFound, "request %s not found", req.RequestID)
		}
		if err != nil {
			return fmt.Errorf("read workflow request status: %w", err)
		}
		return dErrors.Newf(dErrors.CodeInvalidState,
			"request %s is %s, only %s requests can be approved", req.RequestID, status, models.StatusRequested)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO audit_log
			(material_number, material_description, status, created_by, created_at, modified_by, modified_at, version, comments)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		audit.MaterialNumber, audit.MaterialDescription, audit.Status, audit.CreatedBy,
		table.FormatTime(audit.CreatedAt), audit.ModifiedBy, table.FormatTime(audit.ModifiedAt),
		audit.Version, audit.Comments); err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit approval: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListAudit(ctx context.Context, materialNumber string) ([]models.AuditRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT material_number, COALESCE(material_description, ''), status, COALESCE(created_by, ''),
		       COALESCE(created_at, ''), modified_by, modified_at, version, COALESCE(comments, '')
		FROM audit_log
		WHERE ? = '' OR material_number = ?
		ORDER BY id`, materialNumber, materialNumber)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var out []models.AuditRecord
	for rows.Next() {
		var a models.AuditRecord
		var createdAt, modifiedAt string
		if err := rows.Scan(&a.MaterialNumber, &a.MaterialDescription, &a.Status, &a.CreatedBy,
			&createdAt, &a.ModifiedBy, &modifiedAt, &a.Version, &a.Comments); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		a.CreatedAt, _ = table.ParseTime(createdAt)
		a.ModifiedAt, _ = table.ParseTime(modifiedAt)
		out = append(out, a)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func approvalDate(req models.WorkflowRequest) any {
	if req.ApprovalDate == nil {
		return nil
	}
	return table.FormatTime(*req.ApprovalDate)
}
