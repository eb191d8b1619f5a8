package storage_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "material-master/domainerrors"
	"material-master/models"
	"material-master/storage"
	"material-master/table"
)

func TestMaterialsRoundTrip(t *testing.T) {
	desc := "Widget"
	entries := []models.MaterialMasterEntry{
		{MaterialNumber: "10001", MaterialDescription: &desc, MaterialType: "FERT", BaseUnit: "EA", ProcurementType: "E", Plant: "1000", ValuationClass: "3000"},
		{MaterialNumber: "20002", MaterialType: "HALB", BaseUnit: "EA", ProcurementType: "E", Plant: "1000", ValuationClass: "3000"},
	}
	path := filepath.Join(t.TempDir(), "master.csv")
	require.NoError(t, storage.SaveMaterials(entries, path))

	back, err := storage.LoadMaterials(path)
	require.NoError(t, err)
	assert.Equal(t, entries, back)
}

func TestMaterialsFromTableRequiresNumber(t *testing.T) {
	_, err := storage.MaterialsFromTable(table.New("MaterialDescription"))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestRequestsFromLegacyTable(t *testing.T) {
	path := writeFile(t, "material_workflow.csv",
		"MaterialNumber,MaterialDescription,RequestDate,RequestedBy,Status,ApprovedBy,ApprovalDate,Comments\n"+
			"M-1,Bolt,2024-01-01 09:00:00.123456,alice,Approved,bob,2024-01-04 10:00:00,fine\n"+
			"M-2,Nut,2024-01-02 09:00:00,alice,Requested,,,\n")

	tbl, err := storage.LoadTable(path)
	require.NoError(t, err)
	requests := storage.RequestsFromTable(tbl)
	require.Len(t, requests, 2)

	assert.Equal(t, "0", requests[0].RequestID)
	assert.Equal(t, "1", requests[1].RequestID)
	assert.Equal(t, time.Date(2024, 1, 1, 9, 0, 0, 123456000, time.UTC), requests[0].RequestDate)
	require.NotNil(t, requests[0].ApprovalDate)
	assert.Equal(t, 4, requests[0].ApprovalDate.Day())
	assert.Nil(t, requests[1].ApprovalDate)
	assert.Equal(t, "", requests[1].ApprovedBy)
}

func TestRequestsRoundTrip(t *testing.T) {
	approved := time.Date(2024, 1, 4, 10, 0, 0, 0, time.UTC)
	requests := []models.WorkflowRequest{
		{RequestID: "a", MaterialNumber: "M-1", MaterialDescription: "Bolt", RequestDate: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
			RequestedBy: "alice", Status: models.StatusApproved, ApprovedBy: "bob", ApprovalDate: &approved, Comments: "ok"},
		{RequestID: "b", MaterialNumber: "M-2", MaterialDescription: "Nut", RequestDate: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
			RequestedBy: "alice", Status: models.StatusRequested},
	}
	assert.Equal(t, requests, storage.RequestsFromTable(storage.RequestsToTable(requests)))
}

func TestAuditFromTable(t *testing.T) {
	tbl := table.FromMaps(storage.AuditColumns, []map[string]any{
		{"MaterialNumber": "M-1", "Status": "Approved", "ModifiedBy": "bob", "ModifiedAt": "2024-01-04 10:00:00", "Version": "1"},
		{"MaterialNumber": "M-1", "Status": "Approved", "ModifiedBy": "bob", "Version": "2.0"},
		{"MaterialNumber": "M-2", "Version": "n/a"},
	})
	records := storage.AuditFromTable(tbl)
	require.Len(t, records, 3)
	assert.Equal(t, 1, records[0].Version)
	assert.Equal(t, 2, records[1].Version)
	assert.Equal(t, 0, records[2].Version)
	assert.Equal(t, 2024, records[0].ModifiedAt.Year())
}
