package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"material-master/config"
)

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	cfg, err := config.LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, filepath.Join("data", "material_workflow.csv"), cfg.WorkflowPath())
}

func TestLoadFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mdm.yaml")
	doc := `
port: "9090"
storage: sqlite
data_dir: /srv/mdm
paths:
  workflow: wf.csv
  audit: /var/audit.csv
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, config.StorageSQLite, cfg.Storage)
	assert.Equal(t, filepath.Join("/srv/mdm", "wf.csv"), cfg.WorkflowPath())
	assert.Equal(t, "/var/audit.csv", cfg.AuditPath())
	assert.Equal(t, filepath.Join("/srv/mdm", "material_master_raw.csv"), cfg.RawMasterPath(), "unset keys keep defaults")
}

func TestLoadFileBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mdm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: ["), 0o644))
	_, err := config.LoadFile(path)
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MDM_CONFIG", filepath.Join(t.TempDir(), "none.yaml"))
	t.Setenv("PORT", "7000")
	t.Setenv("MDM_STORAGE", "sqlite")
	t.Setenv("MDM_AUDIT_VERSIONING", "increment")
	t.Setenv("MDM_DATA_DIR", "/tmp/mdm")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, config.StorageSQLite, cfg.Storage)
	assert.Equal(t, "increment", cfg.AuditVersioning)
	assert.Equal(t, filepath.Join("/tmp/mdm", "simulated_material_master.csv"), cfg.MaterialMasterPath())
}

func TestLoadAcceptsAnyCaseForModes(t *testing.T) {
	t.Setenv("MDM_CONFIG", filepath.Join(t.TempDir(), "none.yaml"))
	t.Setenv("MDM_STORAGE", "SQLite")
	t.Setenv("MDM_AUDIT_VERSIONING", " Increment ")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.StorageSQLite, cfg.Storage)
	assert.Equal(t, "increment", cfg.AuditVersioning)

	raw := config.Default()
	raw.AuditVersioning = "FIXED"
	assert.NoError(t, raw.Validate())
}

func TestLoadRejectsUnknownValues(t *testing.T) {
	t.Setenv("MDM_CONFIG", filepath.Join(t.TempDir(), "none.yaml"))
	t.Setenv("MDM_STORAGE", "postgres")
	_, err := config.Load()
	assert.Error(t, err)

	t.Setenv("MDM_STORAGE", "csv")
	t.Setenv("MDM_AUDIT_VERSIONING", "random")
	_, err = config.Load()
	assert.Error(t, err)
}

func TestOpenDBCreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mdm.db")
	db, err := config.OpenDB(path)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'trigger' AND tbl_name = 'audit_log'`,
	).Scan(&n))
	assert.Equal(t, 2, n)
	require.NoError(t, db.Close())

	// Opening again is idempotent.
	again, err := config.OpenDB(path)
	require.NoError(t, err)
	again.Close()
}
