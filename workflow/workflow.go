// Package workflow implements the material request lifecycle: a request is
// submitted in the Requested state and approved exactly once, and every
// approval appends one audit record.
package workflow

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	dErrors "material-master/domainerrors"
	"material-master/models"
)

// VersionPolicy decides the Version written on an audit record.
type VersionPolicy string

const (
	// VersionFixed writes 1 on every audit record.
	VersionFixed VersionPolicy = "fixed"
	// VersionIncrement writes one more than the number of audit records
	// already stored for the material.
	VersionIncrement VersionPolicy = "increment"
)

// ParseVersionPolicy reads a policy name; empty selects VersionFixed.
func ParseVersionPolicy(s string) (VersionPolicy, error) {
	switch VersionPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", VersionFixed:
		return VersionFixed, nil
	case VersionIncrement:
		return VersionIncrement, nil
	default:
		return "", fmt.Errorf("unknown version policy %q", s)
	}
}

// Next returns the version for a new audit record given the number of
// records already stored for the material.
func (p VersionPolicy) Next(prior int) int {
	if p == VersionIncrement {
		return prior + 1
	}
	return 1
}

// SubmitInput is what a requester provides.
type SubmitInput struct {
	MaterialNumber      string `json:"material_number" validate:"required"`
	MaterialDescription string `json:"material_description" validate:"required"`
	RequestedBy         string `json:"requested_by" validate:"required"`
}

// ApproveInput is what an approver provides.
type ApproveInput struct {
	ApprovedBy string `json:"approved_by" validate:"required"`
	Comments   string `json:"comments"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationError turns validator output into a ValidationError naming
// every missing field.
func validationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return dErrors.Wrap(err, dErrors.CodeValidation, "invalid input")
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return dErrors.Newf(dErrors.CodeValidation, "required fields missing: %s", strings.Join(fields, ", "))
}

// Normalize trims surrounding whitespace from every field.
func (in SubmitInput) Normalize() SubmitInput {
	return SubmitInput{
		MaterialNumber:      strings.TrimSpace(in.MaterialNumber),
		MaterialDescription: strings.TrimSpace(in.MaterialDescription),
		RequestedBy:         strings.TrimSpace(in.RequestedBy),
	}
}

// NewRequest creates a request in the Requested state. Fields are trimmed;
// any field left empty fails the whole submission.
func NewRequest(id string, in SubmitInput, now time.Time) (models.WorkflowRequest, error) {
	in = in.Normalize()
	if err := validate.Struct(in); err != nil {
		return models.WorkflowRequest{}, validationError(err)
	}
	return models.WorkflowRequest{
		RequestID:           id,
		MaterialNumber:      in.MaterialNumber,
		MaterialDescription: in.MaterialDescription,
		RequestDate:         now,
		RequestedBy:         in.RequestedBy,
		Status:              models.StatusRequested,
	}, nil
}

// ApproveRequest moves req from Requested to Approved and builds its audit
// record. req is not modified; on error nothing should be persisted.
func ApproveRequest(req models.WorkflowRequest, in ApproveInput, now time.Time, version int) (models.WorkflowRequest, models.AuditRecord, error) {
	if req.Status != models.StatusRequested {
		return models.WorkflowRequest{}, models.AuditRecord{}, dErrors.Newf(dErrors.CodeInvalidState,
			"request %s is %s, only %s requests can be approved", req.RequestID, req.Status, models.StatusRequested)
	}
	in.ApprovedBy = strings.TrimSpace(in.ApprovedBy)
	if err := validate.Struct(in); err != nil {
		return models.WorkflowRequest{}, models.AuditRecord{}, validationError(err)
	}

	approvedAt := now
	out := req
	out.Status = models.StatusApproved
	out.ApprovedBy = in.ApprovedBy
	out.ApprovalDate = &approvedAt
	out.Comments = in.Comments

	audit := models.AuditRecord{
		MaterialNumber:      req.MaterialNumber,
		MaterialDescription: req.MaterialDescription,
		Status:              models.StatusApproved,
		CreatedBy:           req.RequestedBy,
		CreatedAt:           req.RequestDate,
		ModifiedBy:          in.ApprovedBy,
		ModifiedAt:          approvedAt,
		Version:             version,
		Comments:            in.Comments,
	}
	return out, audit, nil
}
