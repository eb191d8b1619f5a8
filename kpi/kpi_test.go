package kpi_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"material-master/kpi"
	"material-master/models"
)

func strPtr(s string) *string { return &s }

func entry(number string, desc *string, materialType string) models.MaterialMasterEntry {
	return models.MaterialMasterEntry{
		MaterialNumber:      number,
		MaterialDescription: desc,
		MaterialType:        materialType,
		BaseUnit:            "EA",
	}
}

func TestComputeMaterialKPIs(t *testing.T) {
	entries := []models.MaterialMasterEntry{
		entry("10001", strPtr("Widget"), models.MaterialTypeFinished),
		entry("10001", strPtr("Widget Blue"), models.MaterialTypeFinished),
		entry("20002", strPtr("Cup"), models.MaterialTypeSemiFinished),
		entry("20003", nil, models.MaterialTypeSemiFinished),
		entry("20003", strPtr("Décor"), models.MaterialTypeSemiFinished),
		entry("20003", strPtr("Lamp shade"), models.MaterialTypeSemiFinished),
	}

	r := kpi.ComputeMaterialKPIs(entries)
	assert.Equal(t, 6, r.TotalMaterials)
	assert.Equal(t, 1, r.MissingDescriptions)
	assert.Equal(t, 2, r.DuplicateMaterialNumbers)
	assert.Equal(t, 2, r.UniqueMaterialTypes)
	assert.Equal(t, 1, r.ShortDescriptions, "Décor has five runes")
	assert.Equal(t, 16.67, r.PercentMissingDescriptions)

	m := r.AsMap()
	assert.Equal(t, 16.67, m[kpi.PercentMissingDescriptions])
	assert.Equal(t, 6.0, m[kpi.TotalMaterials])

	metrics := r.Metrics()
	require.Len(t, metrics, 6)
	assert.Equal(t, kpi.TotalMaterials, metrics[0].Name)
	assert.Equal(t, kpi.PercentMissingDescriptions, metrics[5].Name)
}

func TestComputeMaterialKPIsEmpty(t *testing.T) {
	r := kpi.ComputeMaterialKPIs(nil)
	assert.Equal(t, kpi.MaterialReport{}, r)
	assert.Equal(t, 0.0, r.AsMap()[kpi.PercentMissingDescriptions])
}

func TestComputeMaterialKPIsIgnoresEmptyType(t *testing.T) {
	r := kpi.ComputeMaterialKPIs([]models.MaterialMasterEntry{
		entry("1", strPtr("Hammer"), ""),
		entry("2", strPtr("Wrench"), models.MaterialTypeFinished),
	})
	assert.Equal(t, 1, r.UniqueMaterialTypes)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 0, 0, 0, time.UTC)
}

func TestComputeWorkflowKPIs(t *testing.T) {
	approved := date(2024, 1, 4)
	sameDay := date(2024, 1, 2).Add(5 * time.Hour)
	requests := []models.WorkflowRequest{
		{MaterialNumber: "M1", MaterialDescription: "Widget", RequestDate: date(2024, 1, 1), Status: models.StatusApproved, ApprovalDate: &approved},
		{MaterialNumber: "M2", MaterialDescription: "Gear", RequestDate: date(2024, 1, 2), Status: models.StatusApproved, ApprovalDate: &sameDay},
		{MaterialNumber: "M2", MaterialDescription: "", RequestDate: date(2024, 1, 3), Status: models.StatusRequested},
		{MaterialNumber: "M3", MaterialDescription: "Pallet", Status: models.StatusRequested},
	}

	r := kpi.ComputeWorkflowKPIs(requests)
	assert.Equal(t, 4, r.TotalRequests)
	assert.Equal(t, 2, r.Approved)
	assert.Equal(t, 50.0, r.ApprovalRate)
	assert.Equal(t, 1.5, r.AvgApprovalDays)
	assert.Equal(t, 1, r.DuplicateMaterialNumbers)
	assert.Equal(t, 2, r.ShortOrMissingDescriptions)

	m := r.AsMap()
	assert.Equal(t, 1.5, m[kpi.AvgApprovalDays])
	assert.Equal(t, 50.0, m[kpi.ApprovalRate])
}

func TestAvgApprovalDaysSingleRequest(t *testing.T) {
	approved := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)
	r := kpi.ComputeWorkflowKPIs([]models.WorkflowRequest{{
		MaterialNumber: "M1",
		RequestDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:         models.StatusApproved,
		ApprovalDate:   &approved,
	}})
	assert.Equal(t, 3.0, r.AvgApprovalDays)
}

func TestComputeWorkflowKPIsEmpty(t *testing.T) {
	r := kpi.ComputeWorkflowKPIs(nil)
	assert.Equal(t, 0.0, r.ApprovalRate)
	assert.Equal(t, 0.0, r.AvgApprovalDays)
	assert.Equal(t, 0, r.TotalRequests)
}

func TestApprovalRateRounding(t *testing.T) {
	requests := []models.WorkflowRequest{
		{MaterialNumber: "A", Status: models.StatusApproved},
		{MaterialNumber: "B", Status: models.StatusRequested},
		{MaterialNumber: "C", Status: models.StatusRequested},
	}
	assert.Equal(t, 33.33, kpi.ComputeWorkflowKPIs(requests).ApprovalRate)
}

func TestRoundTo2(t *testing.T) {
	assert.Equal(t, 1.0, kpi.RoundTo2(0.999))
	assert.Equal(t, 2.35, kpi.RoundTo2(2.345000001))
	assert.Equal(t, -1.5, kpi.RoundTo2(-1.5))
	assert.Equal(t, 0.0, kpi.Percent(3, 0))
}
