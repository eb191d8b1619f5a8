// models/workflow.go
package models

import "time"

const (
	StatusRequested = "Requested"
	StatusApproved  = "Approved"
)

type WorkflowRequest struct {
	RequestID           string     `json:"request_id"`
	MaterialNumber      string     `json:"material_number"`
	MaterialDescription string     `json:"material_description"`
	RequestDate         time.Time  `json:"request_date"` // zero when a legacy row could not be parsed
	RequestedBy         string     `json:"requested_by"`
	Status              string     `json:"status"`
	ApprovedBy          string     `json:"approved_by"`
	ApprovalDate        *time.Time `json:"approval_date"`
	Comments            string     `json:"comments"`
}

// AuditRecord is written once per approval and never changed afterwards.
type AuditRecord struct {
	MaterialNumber      string    `json:"material_number"`
	MaterialDescription string    `json:"material_description"`
	Status              string    `json:"status"`
	CreatedBy           string    `json:"created_by"`
	CreatedAt           time.Time `json:"created_at"`
	ModifiedBy          string    `json:"modified_by"`
	ModifiedAt          time.Time `json:"modified_at"`
	Version             int       `json:"version"`
	Comments            string    `json:"comments"`
}
