// Package pipeline wires loading, cleaning, simulation, validation and KPI
// computation together for the HTTP and command line shells.
package pipeline

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"material-master/config"
	"material-master/kpi"
	"material-master/metrics"
	"material-master/models"
	"material-master/rules"
	"material-master/simulator"
	"material-master/storage"
)

// DefaultPageSize is how many materials the dashboard shows.
const DefaultPageSize = 100

type Pipeline struct {
	cfg     config.Config
	rules   []rules.Rule
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

type Option func(p *Pipeline)

func WithLogger(logger zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithRules replaces the rule set used by Validate.
func WithRules(rs []rules.Rule) Option {
	return func(p *Pipeline) {
		p.rules = rs
	}
}

// New constructs a Pipeline. Without WithRules it validates with
// rules.DefaultMaterialRules.
func New(cfg config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:    cfg,
		rules:  rules.DefaultMaterialRules(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SimulationResult summarizes one BuildMaterialMaster run.
type SimulationResult struct {
	Source    string               `json:"source"`
	Output    string               `json:"output"`
	Cleaning  simulator.CleanStats `json:"cleaning"`
	Materials int                  `json:"materials"`
}

// BuildMaterialMaster loads the retail export, cleans it, derives the
// material master and overwrites the material master file.
func (p *Pipeline) BuildMaterialMaster() (SimulationResult, error) {
	start := time.Now()
	defer p.metrics.ObservePipeline("simulate", start)

	source := p.cfg.RetailExportPath()
	raw, err := storage.LoadTable(source)
	if err != nil {
		return SimulationResult{}, err
	}
	p.logger.Info().
		Str("path", source).
		Str("rows", humanize.Comma(int64(raw.Len()))).
		Int("columns", len(raw.Columns())).
		Msg("loaded retail export")

	txs, stats, err := simulator.Clean(raw)
	if err != nil {
		return SimulationResult{}, err
	}
	p.logger.Info().
		Str("rows", humanize.Comma(int64(stats.Output))).
		Int("missing_fields", stats.MissingFields).
		Int("non_positive", stats.NonPositive).
		Int("duplicates", stats.Duplicates).
		Int("bad_dates", stats.BadDates).
		Msg("cleaned retail export")

	entries := simulator.Simulate(txs)
	output := p.cfg.MaterialMasterPath()
	if err := storage.SaveMaterials(entries, output); err != nil {
		return SimulationResult{}, err
	}
	p.logger.Info().
		Str("path", output).
		Str("materials", humanize.Comma(int64(len(entries)))).
		Msg("material master written")

	return SimulationResult{Source: source, Output: output, Cleaning: stats, Materials: len(entries)}, nil
}

// Materials loads the simulated material master.
func (p *Pipeline) Materials() ([]models.MaterialMasterEntry, error) {
	return storage.LoadMaterials(p.cfg.MaterialMasterPath())
}

// MaterialKPIs computes the data-quality report of the material master.
func (p *Pipeline) MaterialKPIs() (kpi.MaterialReport, error) {
	entries, err := p.Materials()
	if err != nil {
		return kpi.MaterialReport{}, err
	}
	return kpi.ComputeMaterialKPIs(entries), nil
}

// MaterialDashboard gathers the KPI report, the material types and the
// first limit materials. A limit <= 0 selects DefaultPageSize.
func (p *Pipeline) MaterialDashboard(limit int) (models.MaterialDashboard, error) {
	start := time.Now()
	defer p.metrics.ObservePipeline("material_dashboard", start)

	entries, err := p.Materials()
	if err != nil {
		return models.MaterialDashboard{}, err
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	return models.MaterialDashboard{
		KPIs:          kpi.ComputeMaterialKPIs(entries).Metrics(),
		TotalRows:     len(entries),
		MaterialTypes: MaterialTypes(entries),
		Materials:     Head(entries, limit),
	}, nil
}

// MaterialTypes lists the distinct material types in first-seen order.
func MaterialTypes(entries []models.MaterialMasterEntry) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, e := range entries {
		if _, ok := seen[e.MaterialType]; ok || e.MaterialType == "" {
			continue
		}
		seen[e.MaterialType] = struct{}{}
		out = append(out, e.MaterialType)
	}
	return out
}

// FilterByType keeps entries of materialType; an empty type keeps all.
func FilterByType(entries []models.MaterialMasterEntry, materialType string) []models.MaterialMasterEntry {
	if materialType == "" {
		return entries
	}
	out := make([]models.MaterialMasterEntry, 0)
	for _, e := range entries {
		if e.MaterialType == materialType {
			out = append(out, e)
		}
	}
	return out
}

// Head returns at most n entries.
func Head(entries []models.MaterialMasterEntry, n int) []models.MaterialMasterEntry {
	if n >= 0 && len(entries) > n {
		return entries[:n]
	}
	return entries
}
