package pipeline

import (
	"time"

	"material-master/rules"
	"material-master/storage"
)

// ValidationReport is the outcome of one rule-set run.
type ValidationReport struct {
	Path    string        `json:"path"`
	Rows    int           `json:"rows"`
	Rules   []rules.Spec  `json:"rules"`
	Skipped []rules.Spec  `json:"skipped"` // rules whose column the file lacks
	Issues  []rules.Issue `json:"issues"`
}

// Passed reports whether no rule found an issue.
func (r ValidationReport) Passed() bool { return len(r.Issues) == 0 }

// Validate runs the configured rule set over the raw material master file
// at path, or the configured raw master file when path is empty. Findings
// are reported, never returned as errors.
func (p *Pipeline) Validate(path string) (ValidationReport, error) {
	start := time.Now()
	defer p.metrics.ObservePipeline("validate", start)

	if path == "" {
		path = p.cfg.RawMasterPath()
	}
	t, err := storage.LoadTable(path)
	if err != nil {
		return ValidationReport{}, err
	}

	skipped := rules.Missing(t, p.rules...)
	for _, r := range skipped {
		p.logger.Warn().
			Str("rule", r.Name()).
			Str("column", r.Column()).
			Msg("column missing, rule skipped")
	}

	issues := rules.Evaluate(t, p.rules...)
	p.metrics.ResetValidationIssues()
	for _, is := range issues {
		p.metrics.SetValidationIssues(is.Rule, is.Column, len(is.AffectedKeys))
	}
	p.logger.Info().
		Str("path", path).
		Int("rows", t.Len()).
		Int("issues", len(issues)).
		Msg("validation finished")

	return ValidationReport{
		Path:    path,
		Rows:    t.Len(),
		Rules:   rules.Specs(p.rules),
		Skipped: rules.Specs(skipped),
		Issues:  issues,
	}, nil
}
