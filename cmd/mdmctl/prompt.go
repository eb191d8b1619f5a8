package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

var errPromptCancelled = errors.New("prompt cancelled")

// question is one form field. value carries what the flags already supplied.
type question struct {
	key      string
	prompt   string
	value    string
	required bool
}

// formModel shows every field of a submit or approve at once, prefilled from
// the flags, and only finishes once the required fields are filled in.
type formModel struct {
	questions []question
	inputs    []textinput.Model
	focus     int
	problem   string
	submitted bool
}

func newFormModel(questions []question) formModel {
	m := formModel{questions: questions, inputs: make([]textinput.Model, len(questions))}
	for i, q := range questions {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 256
		if q.value != "" {
			in.SetValue(q.value)
		} else if !q.required {
			in.Placeholder = "optional"
		}
		m.inputs[i] = in
	}
	m.focus = m.firstBlank()
	if m.focus < 0 {
		m.focus = 0
	}
	if len(m.inputs) > 0 {
		m.inputs[m.focus].Focus()
	}
	return m
}

// firstBlank returns the index of the first empty required field, or -1.
func (m formModel) firstBlank() int {
	for i, q := range m.questions {
		if q.required && strings.TrimSpace(m.inputs[i].Value()) == "" {
			return i
		}
	}
	return -1
}

func (m *formModel) moveTo(i int) {
	n := len(m.inputs)
	m.inputs[m.focus].Blur()
	m.focus = (i%n + n) % n
	m.inputs[m.focus].Focus()
}

func (m formModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m formModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyTab, tea.KeyDown:
			m.moveTo(m.focus + 1)
			return m, nil
		case tea.KeyShiftTab, tea.KeyUp:
			m.moveTo(m.focus - 1)
			return m, nil
		case tea.KeyEnter:
			if m.focus < len(m.inputs)-1 {
				m.moveTo(m.focus + 1)
				return m, nil
			}
			if i := m.firstBlank(); i >= 0 {
				m.problem = m.questions[i].prompt + " is required"
				m.moveTo(i)
				return m, nil
			}
			m.submitted = true
			return m, tea.Quit
		}
	}
	m.problem = ""
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m formModel) View() string {
	if m.submitted {
		return ""
	}
	var b strings.Builder
	for i, q := range m.questions {
		marker := "  "
		if i == m.focus {
			marker = "> "
		}
		fmt.Fprintf(&b, "%s%-22s %s\n", marker, q.prompt+":", m.inputs[i].View())
	}
	if m.problem != "" {
		fmt.Fprintf(&b, "\n%s\n", m.problem)
	}
	b.WriteString("\nenter: next/submit  tab: move  esc: cancel\n")
	return b.String()
}

// answers returns the entered values keyed by question key.
func (m formModel) answers() map[string]string {
	out := make(map[string]string, len(m.questions))
	for i, q := range m.questions {
		out[q.key] = strings.TrimSpace(m.inputs[i].Value())
	}
	return out
}

// promptQuestions runs the form on the terminal.
func promptQuestions(questions []question) (map[string]string, error) {
	result, err := tea.NewProgram(newFormModel(questions)).Run()
	if err != nil {
		return nil, err
	}
	final, ok := result.(formModel)
	if !ok || !final.submitted {
		return nil, errPromptCancelled
	}
	return final.answers(), nil
}
