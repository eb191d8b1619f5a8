package main

import (
	"context"
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"material-master/config"
	dErrors "material-master/domainerrors"
)

const retailCSV = `InvoiceNo,StockCode,Description,Quantity,InvoiceDate,UnitPrice,CustomerID,Country
536365,10001,widget,6,12/1/10 8:26,2.55,17850,United Kingdom
536366,20002,gadget,1,12/1/10 9:10,1.00,13047,France
536367,20003,pen,1,12/1/10 9:20,1.00,13047,France
`

const rawMasterCSV = `MaterialNumber,MaterialName,BaseUnit,Vendor,Status,Price
M-1,Bolt,box,Acme,Draft,1.5
`

// helpText calls the help function and returns the output as a string.
func helpText() string {
	var sb strings.Builder
	printUsage(&sb)
	return sb.String()
}

// longHelpText returns the long help for a named command.
func longHelpText(name string) string {
	var sb strings.Builder
	printCommandHelp(&sb, name)
	return sb.String()
}

// testApp returns an app over a fresh data directory and the buffer it
// writes to.
func testApp(t *testing.T) (*app, *strings.Builder) {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Paths.RetailExport = "retail.csv"
	require.NoError(t, os.WriteFile(cfg.RetailExportPath(), []byte(retailCSV), 0o644))
	require.NoError(t, os.WriteFile(cfg.RawMasterPath(), []byte(rawMasterCSV), 0o644))

	var out strings.Builder
	a := newApp(cfg, &out, zerolog.Nop(), false)
	a.prompt = func([]question) (map[string]string, error) {
		t.Fatal("prompt called in non-interactive mode")
		return nil, nil
	}
	t.Cleanup(a.close)
	return a, &out
}

func TestHelpContainsAllCommands(t *testing.T) {
	help := helpText()
	assert.Contains(t, help, "Usage:")
	for _, cmd := range commands {
		assert.Contains(t, help, cmd.name)
		assert.Contains(t, help, cmd.short)
	}
}

func TestLongHelpForKnownCommands(t *testing.T) {
	for _, cmd := range commands {
		t.Run(cmd.name, func(t *testing.T) {
			assert.Contains(t, longHelpText(cmd.name), cmd.usage)
		})
	}
}

func TestLongHelpUnknownCommand(t *testing.T) {
	assert.Contains(t, longHelpText("no-such-command"), "unknown command")
}

func TestNoArgsPrintsHelp(t *testing.T) {
	for _, args := range [][]string{nil, {"--help"}, {"-h"}, {"help"}} {
		a, out := testApp(t)
		require.NoError(t, dispatch(a, args))
		assert.Equal(t, helpText(), out.String())
	}
}

func TestUnknownCommand(t *testing.T) {
	a, _ := testApp(t)
	err := dispatch(a, []string{"frobnicate"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frobnicate")
	assert.Contains(t, err.Error(), "mdmctl help")
}

func TestUsageErrors(t *testing.T) {
	cases := map[string][]string{
		"approve without id": {"approve", "-by", "bob"},
		"validate two files": {"validate", "a.csv", "b.csv"},
		"kpis bad flag":      {"kpis", "-nope"},
		"history two args":   {"history", "M-1", "M-2"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			a, _ := testApp(t)
			err := dispatch(a, args)
			require.Error(t, err)
			assert.True(t, strings.HasPrefix(err.Error(), "usage: mdmctl "+args[0]), err.Error())
		})
	}
}

func TestSimulateThenKPIs(t *testing.T) {
	a, out := testApp(t)
	require.NoError(t, dispatch(a, []string{"simulate"}))
	assert.Contains(t, out.String(), "Wrote 3 materials")

	out.Reset()
	require.NoError(t, dispatch(a, []string{"kpis"}))
	assert.Contains(t, out.String(), "Total Materials")
	assert.Contains(t, out.String(), "3")
}

func TestKPIsBeforeSimulationIsNotFound(t *testing.T) {
	a, _ := testApp(t)
	err := dispatch(a, []string{"kpis"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound), err)
}

func TestValidate(t *testing.T) {
	a, out := testApp(t)
	require.NoError(t, dispatch(a, []string{"validate"}))
	assert.Contains(t, out.String(), "Data validation issues found:")
	assert.Contains(t, out.String(), "Invalid BaseUnit values in rows: [0]")

	err := dispatch(a, []string{"validate", "-strict"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 validation issue")
}

func TestValidateCustomRules(t *testing.T) {
	a, out := testApp(t)
	rulesPath := a.cfg.Resolve("rules.yaml")
	require.NoError(t, os.WriteFile(rulesPath, []byte("rules:\n  - type: required\n    column: MaterialNumber\n  - type: positive\n    column: Weight\n"), 0o644))

	require.NoError(t, dispatch(a, []string{"validate", "-strict", "-rules", rulesPath}))
	assert.Contains(t, out.String(), "skipped positive rule: column Weight not found")
	assert.Contains(t, out.String(), "All 1 records passed validation checks.")
}

func TestSubmitRequiresFieldsWithoutTerminal(t *testing.T) {
	a, _ := testApp(t)
	err := dispatch(a, []string{"submit", "-material", "M-1"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), err)
}

func TestWorkflowCommands(t *testing.T) {
	a, out := testApp(t)

	require.NoError(t, dispatch(a, []string{"pending"}))
	assert.Contains(t, out.String(), "No pending approvals.")

	out.Reset()
	require.NoError(t, dispatch(a, []string{"submit", "-material", "M-100", "-description", "Hex Bolt", "-by", "alice"}))
	assert.Contains(t, out.String(), "for material M-100 submitted")

	pending, err := a.svc.Pending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	id := pending[0].RequestID

	out.Reset()
	require.NoError(t, dispatch(a, []string{"pending"}))
	assert.Contains(t, out.String(), id)

	out.Reset()
	require.NoError(t, dispatch(a, []string{"approve", "-by", "bob", "-comments", "looks good", id}))
	assert.Contains(t, out.String(), "Material M-100 approved by bob (audit version 1).")

	err = dispatch(a, []string{"approve", "-by", "carol", id})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState), err)

	out.Reset()
	require.NoError(t, dispatch(a, []string{"history"}))
	assert.Equal(t, "M-100\n", out.String())

	out.Reset()
	require.NoError(t, dispatch(a, []string{"history", "M-100"}))
	assert.Contains(t, out.String(), "v1  Approved  created by alice, modified by bob")
	assert.Contains(t, out.String(), "looks good")

	out.Reset()
	require.NoError(t, dispatch(a, []string{"history", "M-999"}))
	assert.Contains(t, out.String(), "No audit records for M-999.")
}

func TestInteractiveSubmitOpensFormWithFlagValues(t *testing.T) {
	a, out := testApp(t)
	a.interactive = true

	var shown []question
	a.prompt = func(qs []question) (map[string]string, error) {
		shown = qs
		answers := map[string]string{}
		for _, q := range qs {
			answers[q.key] = q.value
			if q.value == "" {
				answers[q.key] = "answer-" + q.key
			}
		}
		return answers, nil
	}

	require.NoError(t, dispatch(a, []string{"submit", "-material", "M-7"}))
	require.Len(t, shown, 3)
	assert.Equal(t, "material", shown[0].key)
	assert.Equal(t, "M-7", shown[0].value)
	assert.Contains(t, out.String(), "for material M-7 submitted")

	pending, err := a.svc.Pending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "answer-description", pending[0].MaterialDescription)
	assert.Equal(t, "answer-by", pending[0].RequestedBy)
}

func TestInteractiveSkipsFormWhenRequiredFieldsGiven(t *testing.T) {
	a, _ := testApp(t)
	a.interactive = true
	a.prompt = func([]question) (map[string]string, error) {
		t.Fatal("form opened although every required field was given")
		return nil, nil
	}
	require.NoError(t, dispatch(a, []string{"submit", "-material", "M-8", "-description", "Nut", "-by", "alice"}))
}

func TestInteractivePromptCancelled(t *testing.T) {
	a, _ := testApp(t)
	a.interactive = true
	a.prompt = func([]question) (map[string]string, error) { return nil, errPromptCancelled }

	err := dispatch(a, []string{"approve", "some-id"})
	assert.ErrorIs(t, err, errPromptCancelled)
}

func keyMsg(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func TestFormStartsOnFirstBlankAndKeepsFlagValues(t *testing.T) {
	m := newFormModel([]question{
		{key: "by", prompt: "Approver Name", required: true},
		{key: "comments", prompt: "Comments", value: "ok"},
	})
	assert.Equal(t, 0, m.focus)
	assert.Contains(t, m.View(), "> Approver Name:")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("bob")})
	m = next.(formModel)
	next, _ = m.Update(keyMsg(tea.KeyEnter))
	m = next.(formModel)
	assert.False(t, m.submitted)
	assert.Equal(t, 1, m.focus)

	next, cmd := m.Update(keyMsg(tea.KeyEnter))
	m = next.(formModel)
	assert.True(t, m.submitted)
	assert.NotNil(t, cmd)
	assert.Equal(t, map[string]string{"by": "bob", "comments": "ok"}, m.answers())
}

func TestFormRefusesToSubmitWithBlankRequiredField(t *testing.T) {
	m := newFormModel([]question{
		{key: "material", prompt: "Material Number", value: "M-1", required: true},
		{key: "by", prompt: "Requested By", required: true},
	})
	assert.Equal(t, 1, m.focus, "focus starts on the blank field")

	next, _ := m.Update(keyMsg(tea.KeyShiftTab))
	m = next.(formModel)
	assert.Equal(t, 0, m.focus)
	next, _ = m.Update(keyMsg(tea.KeyTab))
	m = next.(formModel)

	next, _ = m.Update(keyMsg(tea.KeyEnter))
	m = next.(formModel)
	assert.False(t, m.submitted)
	assert.Equal(t, 1, m.focus)
	assert.Contains(t, m.View(), "Requested By is required")
}

func TestFormEscapeCancels(t *testing.T) {
	m := newFormModel([]question{{key: "by", prompt: "Approver Name", required: true}})
	next, cmd := m.Update(keyMsg(tea.KeyEsc))
	assert.False(t, next.(formModel).submitted)
	assert.NotNil(t, cmd)
}
