// Package kpi computes the data-quality and workflow metrics shown on the
// dashboards. All functions are pure and accept empty input.
package kpi

import (
	"math"
	"unicode/utf8"

	"material-master/models"
)

// Dashboard metric names.
const (
	TotalMaterials             = "Total Materials"
	MissingDescriptions        = "Missing Descriptions"
	DuplicateMaterialNumbers   = "Duplicate Material Numbers"
	UniqueMaterialTypes        = "Unique Material Types"
	ShortDescriptions          = "Materials with Short Description (<5 chars)"
	PercentMissingDescriptions = "% Missing Descriptions"

	TotalRequests              = "Total Requests"
	ApprovedRequests           = "Approved"
	ApprovalRate               = "Approval Rate"
	AvgApprovalDays            = "Avg Approval Time (days)"
	ShortOrMissingDescriptions = "Short/Missing Descriptions"
)

// ShortDescriptionLength is the rune count below which a description is
// considered too short.
const ShortDescriptionLength = 5

// MaterialReport holds the material master KPIs.
type MaterialReport struct {
	TotalMaterials             int     `json:"total_materials"`
	MissingDescriptions        int     `json:"missing_descriptions"`
	DuplicateMaterialNumbers   int     `json:"duplicate_material_numbers"`
	UniqueMaterialTypes        int     `json:"unique_material_types"`
	ShortDescriptions          int     `json:"short_descriptions"`
	PercentMissingDescriptions float64 `json:"percent_missing_descriptions"`
}

// ComputeMaterialKPIs aggregates entries. Duplicate Material Numbers counts
// distinct numbers that occur more than once.
func ComputeMaterialKPIs(entries []models.MaterialMasterEntry) MaterialReport {
	r := MaterialReport{TotalMaterials: len(entries)}

	numbers := make([]string, 0, len(entries))
	types := make(map[string]struct{})
	for _, e := range entries {
		numbers = append(numbers, e.MaterialNumber)
		if e.MaterialType != "" {
			types[e.MaterialType] = struct{}{}
		}
		if e.MaterialDescription == nil {
			r.MissingDescriptions++
			continue
		}
		if isShort(*e.MaterialDescription) {
			r.ShortDescriptions++
		}
	}
	r.DuplicateMaterialNumbers = countDuplicated(numbers)
	r.UniqueMaterialTypes = len(types)
	r.PercentMissingDescriptions = Percent(r.MissingDescriptions, r.TotalMaterials)
	return r
}

// Metrics returns the report in dashboard order.
func (r MaterialReport) Metrics() []models.Metric {
	return []models.Metric{
		{Name: TotalMaterials, Value: float64(r.TotalMaterials)},
		{Name: MissingDescriptions, Value: float64(r.MissingDescriptions)},
		{Name: DuplicateMaterialNumbers, Value: float64(r.DuplicateMaterialNumbers)},
		{Name: UniqueMaterialTypes, Value: float64(r.UniqueMaterialTypes)},
		{Name: ShortDescriptions, Value: float64(r.ShortDescriptions)},
		{Name: PercentMissingDescriptions, Value: r.PercentMissingDescriptions},
	}
}

// AsMap returns the metrics keyed by name.
func (r MaterialReport) AsMap() map[string]float64 {
	return toMap(r.Metrics())
}

// WorkflowReport holds the workflow KPIs.
type WorkflowReport struct {
	TotalRequests              int     `json:"total_requests"`
	Approved                   int     `json:"approved"`
	ApprovalRate               float64 `json:"approval_rate"`
	AvgApprovalDays            float64 `json:"avg_approval_days"`
	DuplicateMaterialNumbers   int     `json:"duplicate_material_numbers"`
	ShortOrMissingDescriptions int     `json:"short_or_missing_descriptions"`
}

// ComputeWorkflowKPIs aggregates requests. Approval time is measured in
// whole elapsed days per request and averaged over requests that have both
// a request date and an approval date.
func ComputeWorkflowKPIs(requests []models.WorkflowRequest) WorkflowReport {
	r := WorkflowReport{TotalRequests: len(requests)}

	numbers := make([]string, 0, len(requests))
	var daysTotal float64
	var timed int
	for _, req := range requests {
		numbers = append(numbers, req.MaterialNumber)
		if req.Status == models.StatusApproved {
			r.Approved++
		}
		if isShort(req.MaterialDescription) {
			r.ShortOrMissingDescriptions++
		}
		if req.ApprovalDate == nil || req.ApprovalDate.IsZero() || req.RequestDate.IsZero() {
			continue
		}
		elapsed := req.ApprovalDate.Sub(req.RequestDate).Hours() / 24
		daysTotal += math.Floor(elapsed)
		timed++
	}

	r.ApprovalRate = Percent(r.Approved, r.TotalRequests)
	if timed > 0 {
		r.AvgApprovalDays = RoundTo2(daysTotal / float64(timed))
	}
	r.DuplicateMaterialNumbers = countDuplicated(numbers)
	return r
}

// Metrics returns the report in dashboard order.
func (r WorkflowReport) Metrics() []models.Metric {
	return []models.Metric{
		{Name: TotalRequests, Value: float64(r.TotalRequests)},
		{Name: ApprovedRequests, Value: float64(r.Approved)},
		{Name: ApprovalRate, Value: r.ApprovalRate},
		{Name: AvgApprovalDays, Value: r.AvgApprovalDays},
		{Name: DuplicateMaterialNumbers, Value: float64(r.DuplicateMaterialNumbers)},
		{Name: ShortOrMissingDescriptions, Value: float64(r.ShortOrMissingDescriptions)},
	}
}

// AsMap returns the metrics keyed by name.
func (r WorkflowReport) AsMap() map[string]float64 {
	return toMap(r.Metrics())
}

// Percent returns part/total*100 rounded to two decimals, or 0 when total
// is 0.
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return RoundTo2(float64(part) / float64(total) * 100)
}

// RoundTo2 rounds v half away from zero to two decimals.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

func isShort(s string) bool {
	return utf8.RuneCountInString(s) < ShortDescriptionLength
}

// countDuplicated counts distinct non-empty values seen more than once.
func countDuplicated(values []string) int {
	seen := make(map[string]int, len(values))
	dups := 0
	for _, v := range values {
		if v == "" {
			continue
		}
		seen[v]++
		if seen[v] == 2 {
			dups++
		}
	}
	return dups
}

func toMap(ms []models.Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name] = m.Value
	}
	return out
}
