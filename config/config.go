package config

// config.go: service configuration.
//
// Values are resolved in three layers: built-in defaults, then an optional
// YAML file (MDM_CONFIG, default mdm.yaml), then environment variables.
// A missing YAML file is not an error.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	StorageCSV    = "csv"
	StorageSQLite = "sqlite"

	DefaultConfigFile = "mdm.yaml"
)

// Config holds everything the server and the CLI need to start.
type Config struct {
	Port            string `yaml:"port"`
	LogLevel        string `yaml:"log_level"`
	Environment     string `yaml:"environment"`
	GinMode         string `yaml:"gin_mode"`
	Storage         string `yaml:"storage"` // csv or sqlite
	SQLitePath      string `yaml:"sqlite_path"`
	DataDir         string `yaml:"data_dir"`
	RulesPath       string `yaml:"rules"`            // empty selects the built-in material rules
	AuditVersioning string `yaml:"audit_versioning"` // fixed or increment
	Paths           Paths  `yaml:"paths"`
}

// Paths names the data files. Relative names are resolved against DataDir.
type Paths struct {
	RetailExport   string `yaml:"retail_export"`
	MaterialMaster string `yaml:"material_master"`
	RawMaster      string `yaml:"raw_master"`
	Workflow       string `yaml:"workflow"`
	Audit          string `yaml:"audit"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:            "8080",
		LogLevel:        "info",
		Environment:     "development",
		GinMode:         "debug",
		Storage:         StorageCSV,
		SQLitePath:      "mdm.db",
		DataDir:         "data",
		AuditVersioning: "fixed",
		Paths: Paths{
			RetailExport:   "Online Retail.xlsx",
			MaterialMaster: "simulated_material_master.csv",
			RawMaster:      "material_master_raw.csv",
			Workflow:       "material_workflow.csv",
			Audit:          "material_master_audit.csv",
		},
	}
}

// Load resolves the configuration from defaults, the YAML file named by
// MDM_CONFIG and the environment.
func Load() (Config, error) {
	path := os.Getenv("MDM_CONFIG")
	if path == "" {
		path = DefaultConfigFile
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg.applyEnv()
	cfg.normalize()
	return cfg, cfg.Validate()
}

// LoadFile overlays the YAML file at path onto the defaults. A missing file
// yields the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"PORT":                 &c.Port,
		"LOG_LEVEL":            &c.LogLevel,
		"APP_ENV":              &c.Environment,
		"GIN_MODE":             &c.GinMode,
		"MDM_STORAGE":          &c.Storage,
		"MDM_SQLITE_PATH":      &c.SQLitePath,
		"MDM_DATA_DIR":         &c.DataDir,
		"MDM_RULES":            &c.RulesPath,
		"MDM_AUDIT_VERSIONING": &c.AuditVersioning,
	}
	for key, dst := range overrides {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
}

// normalize lower-cases the enumerated settings so "SQLite" or "Increment"
// from a file or the environment select the same mode.
func (c *Config) normalize() {
	c.Storage = strings.ToLower(strings.TrimSpace(c.Storage))
	c.AuditVersioning = strings.ToLower(strings.TrimSpace(c.AuditVersioning))
	if c.AuditVersioning == "" {
		c.AuditVersioning = "fixed"
	}
}

// Validate rejects unknown storage backends and versioning policies. Case
// and surrounding space are ignored.
func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Storage)) {
	case StorageCSV, StorageSQLite:
	default:
		return fmt.Errorf("unknown storage %q (want %s or %s)", c.Storage, StorageCSV, StorageSQLite)
	}
	switch strings.ToLower(strings.TrimSpace(c.AuditVersioning)) {
	case "fixed", "increment":
	default:
		return fmt.Errorf("unknown audit versioning %q (want fixed or increment)", c.AuditVersioning)
	}
	return nil
}

// Resolve returns name joined to DataDir unless it is absolute.
func (c Config) Resolve(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

func (c Config) RetailExportPath() string   { return c.Resolve(c.Paths.RetailExport) }
func (c Config) MaterialMasterPath() string { return c.Resolve(c.Paths.MaterialMaster) }
func (c Config) RawMasterPath() string      { return c.Resolve(c.Paths.RawMaster) }
func (c Config) WorkflowPath() string       { return c.Resolve(c.Paths.Workflow) }
func (c Config) AuditPath() string          { return c.Resolve(c.Paths.Audit) }
