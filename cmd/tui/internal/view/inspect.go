package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/misrecon/internal/pipeline"
)

type inspectFields struct {
	path      string
	preferred string
}

// InspectModel lists the sheets and headers of a workbook before it is
// processed.
type InspectModel struct {
	CommonModel
	svc *pipeline.Service

	fields *inspectFields
	form   *huh.Form
	result *pipeline.Inspection
	err    error
}

func NewInspectModel(svc *pipeline.Service) InspectModel {
	m := InspectModel{
		svc:    svc,
		fields: &inspectFields{preferred: pipeline.FinalSheet},
	}
	m.form = m.buildForm()

	return m
}

func (m InspectModel) Title() string     { return "Inspect Workbook" }
func (m InspectModel) ShortHelp() string { return "Esc: back | Enter: confirm" }

func (m InspectModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case inspectResultMsg:
		m.result, m.err = msg.result, msg.err
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			if m.result != nil || m.err != nil {
				m.result, m.err = nil, nil
				m.form = m.buildForm()

				return m, m.form.Init()
			}

			return m, Back
		}
	}

	if m.result != nil || m.err != nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.inspectCmd(*m.fields)
}

func (m InspectModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("path").
				Title("Workbook").
				Value(&m.fields.path).
				Validate(required),
			huh.NewInput().
				Key("preferred").
				Title("Expected Sheet").
				Value(&m.fields.preferred),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (m InspectModel) View() string {
	pad := lipgloss.NewStyle().Padding(1)

	if m.err != nil {
		return pad.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to go back)")
	}

	if m.result == nil {
		return pad.Render(m.form.View())
	}

	var b strings.Builder

	for _, name := range m.result.Sheets {
		fmt.Fprintf(&b, "%s  %s\n", lipgloss.NewStyle().Bold(true).Render(name),
			mutedStyle.Render(fmt.Sprintf("%d rows", m.result.Rows[name])))

		if cols := m.result.Columns[name]; len(cols) > 0 {
			fmt.Fprintf(&b, "  %s\n", strings.Join(cols, ", "))
		}
	}

	if m.fields.preferred != "" {
		status := errorStyle.Render("missing")
		if m.result.PreferredPresent {
			status = successStyle.Render("present")
		}

		fmt.Fprintf(&b, "\n%s: %s\n", m.fields.preferred, status)
	}

	return pad.Render(b.String() + "\n(Esc to go back)")
}

type inspectResultMsg struct {
	result *pipeline.Inspection
	err    error
}

func (m InspectModel) inspectCmd(f inspectFields) tea.Cmd {
	return func() tea.Msg {
		up, err := readUpload(f.path)
		if err != nil {
			return inspectResultMsg{err: err}
		}

		ctx, cancel := processCtx()
		defer cancel()

		res, err := m.svc.Inspect(ctx, up, strings.TrimSpace(f.preferred))

		return inspectResultMsg{result: res, err: err}
	}
}
