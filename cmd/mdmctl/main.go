package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"material-master/config"
	dErrors "material-master/domainerrors"
	"material-master/logger"
	"material-master/models"
	"material-master/pipeline"
	"material-master/rules"
	"material-master/storage"
	"material-master/workflow"
)

// command describes a CLI subcommand.
type command struct {
	name  string
	short string
	usage string
	long  string
	run   func(a *app, args []string) error
}

var commands = []command{
	{
		name:  "simulate",
		short: "Build the material master from the retail export",
		usage: "mdmctl simulate",
		long: `Load the retail export, clean it, derive one material per distinct
(StockCode, Description) pair and overwrite the material master file.
`,
		run: runSimulate,
	},
	{
		name:  "kpis",
		short: "Print material master or workflow KPIs",
		usage: "mdmctl kpis [-workflow]",
		long: `Print the data-quality KPIs of the material master file.

With -workflow, print the workflow KPIs instead.
`,
		run: runKPIs,
	},
	{
		name:  "validate",
		short: "Run the rule set over a raw material master file",
		usage: "mdmctl validate [-strict] [-rules file] [file]",
		long: `Apply the validation rule set to the raw material master file (or the
given file) and list every issue found.

  -rules file   YAML rule set to use instead of the configured one
  -strict       exit non-zero when any issue is found
`,
		run: runValidate,
	},
	{
		name:  "submit",
		short: "Submit a new material request",
		usage: "mdmctl submit [-material number] [-description text] [-by name]",
		long: `Create a material request in the Requested state.

When a field is missing and stdin is a terminal, a form opens with the
flag values filled in.
`,
		run: runSubmit,
	},
	{
		name:  "approve",
		short: "Approve a pending material request",
		usage: "mdmctl approve [-by name] [-comments text] <request-id>",
		long: `Approve a request and append its audit record.

When the approver is missing and stdin is a terminal, a form opens for the
approver and comments.
`,
		run: runApprove,
	},
	{
		name:  "pending",
		short: "List requests awaiting approval",
		usage: "mdmctl pending",
		long: `List every request still in the Requested state.
`,
		run: runPending,
	},
	{
		name:  "history",
		short: "Show the audit history of a material",
		usage: "mdmctl history [material]",
		long: `Show the audit records of one material ordered by version.

Without a material, list the materials that have audit records.
`,
		run: runHistory,
	},
}

// app carries what the commands share.
type app struct {
	cfg         config.Config
	out         io.Writer
	log         zerolog.Logger
	interactive bool
	prompt      func([]question) (map[string]string, error)

	svc        *workflow.Service
	closeStore func() error
}

func newApp(cfg config.Config, out io.Writer, log zerolog.Logger, interactive bool) *app {
	return &app{cfg: cfg, out: out, log: log, interactive: interactive, prompt: promptQuestions}
}

func (a *app) pipeline(rs []rules.Rule) *pipeline.Pipeline {
	opts := []pipeline.Option{pipeline.WithLogger(a.log)}
	if rs != nil {
		opts = append(opts, pipeline.WithRules(rs))
	}
	return pipeline.New(a.cfg, opts...)
}

// workflow opens the configured store on first use.
func (a *app) workflow() (*workflow.Service, error) {
	if a.svc != nil {
		return a.svc, nil
	}
	policy, err := workflow.ParseVersionPolicy(a.cfg.AuditVersioning)
	if err != nil {
		return nil, err
	}
	store, closeStore, err := storage.OpenWorkflowStore(a.cfg)
	if err != nil {
		return nil, err
	}
	a.closeStore = closeStore
	a.svc = workflow.NewService(store, workflow.WithLogger(a.log), workflow.WithVersionPolicy(policy))
	return a.svc, nil
}

func (a *app) close() {
	if a.closeStore != nil {
		a.closeStore()
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "mdmctl: material master data management\n\n")
	fmt.Fprintf(w, "Usage:\n  mdmctl <command> [arguments]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", cmd.name, cmd.short)
	}
	fmt.Fprintf(w, "\nRun 'mdmctl help <command>' for details on a specific command.\n")
}

func printCommandHelp(w io.Writer, name string) {
	for _, cmd := range commands {
		if cmd.name == name {
			fmt.Fprintf(w, "Usage: %s\n\n%s", cmd.usage, cmd.long)
			return
		}
	}
	fmt.Fprintf(w, "mdmctl: unknown command %q\n\nRun 'mdmctl help' for usage.\n", name)
}

func dispatch(a *app, args []string) error {
	if len(args) == 0 || args[0] == "--help" || args[0] == "-h" {
		printUsage(a.out)
		return nil
	}
	if args[0] == "help" {
		if len(args) >= 2 {
			printCommandHelp(a.out, args[1])
		} else {
			printUsage(a.out)
		}
		return nil
	}
	for _, cmd := range commands {
		if cmd.name == args[0] {
			return cmd.run(a, args[1:])
		}
	}
	return fmt.Errorf("unknown command %q\n\nRun 'mdmctl help' for usage.", args[0])
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// ---------------------------------------------------------------------------
// simulate
// ---------------------------------------------------------------------------

func runSimulate(a *app, args []string) error {
	res, err := a.pipeline(nil).BuildMaterialMaster()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Loaded %s rows from %s\n", humanize.Comma(int64(res.Cleaning.Input)), res.Source)
	fmt.Fprintf(a.out, "Cleaned dataset: %s rows remain after cleaning\n", humanize.Comma(int64(res.Cleaning.Output)))
	fmt.Fprintf(a.out, "Wrote %s materials to %s\n", humanize.Comma(int64(res.Materials)), res.Output)
	return nil
}

// ---------------------------------------------------------------------------
// kpis
// ---------------------------------------------------------------------------

func runKPIs(a *app, args []string) error {
	fs := newFlagSet("kpis")
	workflowKPIs := fs.Bool("workflow", false, "print workflow KPIs")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("usage: mdmctl kpis [-workflow]")
	}

	var metrics []models.Metric
	if *workflowKPIs {
		svc, err := a.workflow()
		if err != nil {
			return err
		}
		report, err := svc.KPIs(context.Background())
		if err != nil {
			return err
		}
		metrics = report.Metrics()
	} else {
		report, err := a.pipeline(nil).MaterialKPIs()
		if err != nil {
			return err
		}
		metrics = report.Metrics()
	}

	for _, m := range metrics {
		fmt.Fprintf(a.out, "%-45s %s\n", m.Name, humanize.Ftoa(m.Value))
	}
	return nil
}

// ---------------------------------------------------------------------------
// validate
// ---------------------------------------------------------------------------

func runValidate(a *app, args []string) error {
	fs := newFlagSet("validate")
	strict := fs.Bool("strict", false, "exit non-zero when issues are found")
	rulesPath := fs.String("rules", a.cfg.RulesPath, "YAML rule set")
	if err := fs.Parse(args); err != nil || fs.NArg() > 1 {
		return fmt.Errorf("usage: mdmctl validate [-strict] [-rules file] [file]")
	}

	rs, err := rules.LoadRuleSet(*rulesPath)
	if err != nil {
		return err
	}
	report, err := a.pipeline(rs).Validate(fs.Arg(0))
	if err != nil {
		return err
	}

	for _, s := range report.Skipped {
		fmt.Fprintf(a.out, "skipped %s rule: column %s not found\n", s.Type, s.Column)
	}
	if report.Passed() {
		fmt.Fprintf(a.out, "All %s records passed validation checks.\n", humanize.Comma(int64(report.Rows)))
		return nil
	}
	fmt.Fprintf(a.out, "Data validation issues found:\n")
	for _, is := range report.Issues {
		fmt.Fprintf(a.out, " - %s\n", is.Message)
	}
	if *strict {
		return fmt.Errorf("%d validation issue(s) in %s", len(report.Issues), report.Path)
	}
	return nil
}

// ---------------------------------------------------------------------------
// submit / approve
// ---------------------------------------------------------------------------

func runSubmit(a *app, args []string) error {
	fs := newFlagSet("submit")
	material := fs.String("material", "", "material number")
	description := fs.String("description", "", "material description")
	by := fs.String("by", "", "requester")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("usage: mdmctl submit [-material number] [-description text] [-by name]")
	}

	answers, err := a.fill([]question{
		{key: "material", prompt: "Material Number", value: *material, required: true},
		{key: "description", prompt: "Material Description", value: *description, required: true},
		{key: "by", prompt: "Requested By", value: *by, required: true},
	})
	if err != nil {
		return err
	}

	svc, err := a.workflow()
	if err != nil {
		return err
	}
	req, err := svc.Submit(context.Background(), workflow.SubmitInput{
		MaterialNumber:      answers["material"],
		MaterialDescription: answers["description"],
		RequestedBy:         answers["by"],
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Request %s for material %s submitted.\n", req.RequestID, req.MaterialNumber)
	return nil
}

func runApprove(a *app, args []string) error {
	fs := newFlagSet("approve")
	by := fs.String("by", "", "approver")
	comments := fs.String("comments", "", "approval comments")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return fmt.Errorf("usage: mdmctl approve [-by name] [-comments text] <request-id>")
	}

	answers, err := a.fill([]question{
		{key: "by", prompt: "Approver Name", value: *by, required: true},
		{key: "comments", prompt: "Comments", value: *comments},
	})
	if err != nil {
		return err
	}

	svc, err := a.workflow()
	if err != nil {
		return err
	}
	req, audit, err := svc.Approve(context.Background(), fs.Arg(0), workflow.ApproveInput{
		ApprovedBy: answers["by"],
		Comments:   answers["comments"],
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Material %s approved by %s (audit version %d).\n", req.MaterialNumber, req.ApprovedBy, audit.Version)
	return nil
}

// fill opens the form when a required field is still blank and stdin is a
// terminal. The form shows every field with the flag values filled in.
// Without a terminal the blanks are left for validation to reject.
func (a *app) fill(questions []question) (map[string]string, error) {
	answers := make(map[string]string, len(questions))
	blank := false
	for _, q := range questions {
		answers[q.key] = q.value
		if q.required && strings.TrimSpace(q.value) == "" {
			blank = true
		}
	}
	if !blank || !a.interactive {
		return answers, nil
	}
	return a.prompt(questions)
}

// ---------------------------------------------------------------------------
// pending / history
// ---------------------------------------------------------------------------

func runPending(a *app, args []string) error {
	svc, err := a.workflow()
	if err != nil {
		return err
	}
	pending, err := svc.Pending(context.Background())
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Fprintln(a.out, "No pending approvals.")
		return nil
	}
	for _, r := range pending {
		fmt.Fprintf(a.out, "%s  %s  %s  requested by %s %s\n",
			r.RequestID, r.MaterialNumber, r.MaterialDescription, r.RequestedBy, humanize.Time(r.RequestDate))
	}
	return nil
}

func runHistory(a *app, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("usage: mdmctl history [material]")
	}
	svc, err := a.workflow()
	if err != nil {
		return err
	}
	ctx := context.Background()

	if len(args) == 0 {
		materials, err := svc.AuditedMaterials(ctx)
		if err != nil {
			return err
		}
		if len(materials) == 0 {
			fmt.Fprintln(a.out, "No audit records yet.")
			return nil
		}
		for _, m := range materials {
			fmt.Fprintln(a.out, m)
		}
		return nil
	}

	history, err := svc.History(ctx, args[0])
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Fprintf(a.out, "No audit records for %s.\n", args[0])
		return nil
	}
	fmt.Fprintf(a.out, "Version history for %s:\n", args[0])
	for _, h := range history {
		fmt.Fprintf(a.out, "  v%d  %s  created by %s, modified by %s at %s  %s\n",
			h.Version, h.Status, h.CreatedBy, h.ModifiedBy, h.ModifiedAt.Format("2006-01-02 15:04"), h.Comments)
	}
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "mdmctl: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Environment: cfg.Environment, ServiceName: "mdmctl"})
	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())

	a := newApp(cfg, os.Stdout, log, interactive)
	err = dispatch(a, os.Args[1:])
	a.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "mdmctl: %v\n", err)
		if errors.Is(err, errPromptCancelled) || dErrors.HasCode(err, dErrors.CodeValidation) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
