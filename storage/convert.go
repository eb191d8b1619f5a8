package storage

import (
	"math"
	"strconv"

	dErrors "material-master/domainerrors"
	"material-master/models"
	"material-master/table"
)

// Column layouts of the files this module writes.
var (
	MaterialColumns = []string{
		"MaterialNumber", "MaterialDescription", "MaterialType", "BaseUnit",
		"ProcurementType", "Plant", "ValuationClass",
	}
	WorkflowColumns = []string{
		"RequestID", "MaterialNumber", "MaterialDescription", "RequestDate", "RequestedBy",
		"Status", "ApprovedBy", "ApprovalDate", "Comments",
	}
	AuditColumns = []string{
		"MaterialNumber", "MaterialDescription", "Status", "CreatedBy", "CreatedAt",
		"ModifiedBy", "ModifiedAt", "Version", "Comments",
	}
)

func str(t *table.Table, row int, column string) string {
	v, _ := t.Value(row, column)
	return v.String()
}

func optional(s string) table.Value {
	if s == "" {
		return table.Null()
	}
	return table.String(s)
}

// ---------------------------------------------------------------------------
// Materials
// ---------------------------------------------------------------------------

// MaterialsFromTable reads a material master table. MaterialNumber is the
// only column that must be present.
func MaterialsFromTable(t *table.Table) ([]models.MaterialMasterEntry, error) {
	if !t.HasColumn("MaterialNumber") {
		return nil, dErrors.New(dErrors.CodeValidation, "material master has no MaterialNumber column")
	}
	out := make([]models.MaterialMasterEntry, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		e := models.MaterialMasterEntry{
			MaterialNumber:  str(t, i, "MaterialNumber"),
			MaterialType:    str(t, i, "MaterialType"),
			BaseUnit:        str(t, i, "BaseUnit"),
			ProcurementType: str(t, i, "ProcurementType"),
			Plant:           str(t, i, "Plant"),
			ValuationClass:  str(t, i, "ValuationClass"),
		}
		if v, _ := t.Value(i, "MaterialDescription"); !v.IsNull() {
			desc := v.String()
			e.MaterialDescription = &desc
		}
		out = append(out, e)
	}
	return out, nil
}

// MaterialsToTable lays entries out in MaterialColumns order.
func MaterialsToTable(entries []models.MaterialMasterEntry) *table.Table {
	t := table.New(MaterialColumns...)
	for _, e := range entries {
		_ = t.AppendRow(
			table.String(e.MaterialNumber),
			table.Of(e.MaterialDescription),
			table.String(e.MaterialType),
			table.String(e.BaseUnit),
			table.String(e.ProcurementType),
			table.String(e.Plant),
			table.String(e.ValuationClass),
		)
	}
	return t
}

// LoadMaterials reads the simulated material master file.
func LoadMaterials(path string) ([]models.MaterialMasterEntry, error) {
	t, err := LoadTable(path)
	if err != nil {
		return nil, err
	}
	return MaterialsFromTable(t)
}

// SaveMaterials overwrites the material master file.
func SaveMaterials(entries []models.MaterialMasterEntry, path string) error {
	return SaveTable(MaterialsToTable(entries), path)
}

// ---------------------------------------------------------------------------
// Workflow requests
// ---------------------------------------------------------------------------

// RequestsFromTable reads workflow rows. Rows without a RequestID, as
// written by older versions of the workflow file, are identified by their
// row index. Unreadable dates load as zero.
func RequestsFromTable(t *table.Table) []models.WorkflowRequest {
	out := make([]models.WorkflowRequest, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		id := str(t, i, "RequestID")
		if id == "" {
			id = t.RowID(i)
		}
		req := models.WorkflowRequest{
			RequestID:           id,
			MaterialNumber:      str(t, i, "MaterialNumber"),
			MaterialDescription: str(t, i, "MaterialDescription"),
			RequestedBy:         str(t, i, "RequestedBy"),
			Status:              str(t, i, "Status"),
			ApprovedBy:          str(t, i, "ApprovedBy"),
			Comments:            str(t, i, "Comments"),
		}
		if ts, ok := table.ParseTime(str(t, i, "RequestDate")); ok {
			req.RequestDate = ts
		}
		if ts, ok := table.ParseTime(str(t, i, "ApprovalDate")); ok {
			req.ApprovalDate = &ts
		}
		out = append(out, req)
	}
	return out
}

// RequestsToTable lays requests out in WorkflowColumns order.
func RequestsToTable(requests []models.WorkflowRequest) *table.Table {
	t := table.New(WorkflowColumns...)
	for _, r := range requests {
		approval := table.Null()
		if r.ApprovalDate != nil {
			approval = optional(table.FormatTime(*r.ApprovalDate))
		}
		_ = t.AppendRow(
			table.String(r.RequestID),
			table.String(r.MaterialNumber),
			table.String(r.MaterialDescription),
			optional(table.FormatTime(r.RequestDate)),
			table.String(r.RequestedBy),
			table.String(r.Status),
			optional(r.ApprovedBy),
			approval,
			optional(r.Comments),
		)
	}
	return t
}

// ---------------------------------------------------------------------------
// Audit records
// ---------------------------------------------------------------------------

// AuditFromTable reads audit rows. An unreadable Version loads as 0.
func AuditFromTable(t *table.Table) []models.AuditRecord {
	out := make([]models.AuditRecord, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		a := models.AuditRecord{
			MaterialNumber:      str(t, i, "MaterialNumber"),
			MaterialDescription: str(t, i, "MaterialDescription"),
			Status:              str(t, i, "Status"),
			CreatedBy:           str(t, i, "CreatedBy"),
			ModifiedBy:          str(t, i, "ModifiedBy"),
			Comments:            str(t, i, "Comments"),
		}
		a.CreatedAt, _ = table.ParseTime(str(t, i, "CreatedAt"))
		a.ModifiedAt, _ = table.ParseTime(str(t, i, "ModifiedAt"))
		if v, _ := t.Value(i, "Version"); !v.IsNull() {
			if f, ok := v.Float(); ok {
				a.Version = int(math.Round(f))
			}
		}
		out = append(out, a)
	}
	return out
}

// auditRow renders a in the given column order.
func auditRow(a models.AuditRecord, columns []string) []string {
	fields := map[string]string{
		"MaterialNumber":      a.MaterialNumber,
		"MaterialDescription": a.MaterialDescription,
		"Status":              a.Status,
		"CreatedBy":           a.CreatedBy,
		"CreatedAt":           table.FormatTime(a.CreatedAt),
		"ModifiedBy":          a.ModifiedBy,
		"ModifiedAt":          table.FormatTime(a.ModifiedAt),
		"Version":             strconv.Itoa(a.Version),
		"Comments":            a.Comments,
	}
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = fields[c]
	}
	return out
}
