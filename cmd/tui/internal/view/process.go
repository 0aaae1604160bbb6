package view

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/misrecon/internal/bank"
	"github.com/MrJamesThe3rd/misrecon/internal/dataset"
	"github.com/MrJamesThe3rd/misrecon/internal/pipeline"
	"github.com/MrJamesThe3rd/misrecon/internal/workbook"
)

// Stage is one processing step offered by the TUI.
type Stage string

const (
	StageSales    Stage = "Sales"
	StageAdvances Stage = "Advances"
	StageBanking  Stage = "Banking"
	StageCombine  Stage = "Combine MIS"
	StageFinal    Stage = "Final MIS"
)

var stages = []Stage{StageSales, StageAdvances, StageBanking, StageCombine, StageFinal}

type processState int

const (
	processStateStage processState = iota
	processStateInputs
	processStateRange
	processStateRunning
	processStatePreview
	processStateSave
	processStateResult
)

// processFields holds the form bindings. It lives behind a pointer so the
// huh fields keep writing to it while the model is copied between updates.
type processFields struct {
	stage    Stage
	file     string
	previous string
	bankName string
	outDir   string
}

type ProcessModel struct {
	CommonModel
	svc *pipeline.Service

	state   processState
	fields  *processFields
	form    *huh.Form
	picker  DateRangePicker
	spinner spinner.Model
	preview Preview

	from, to string
	sheets   []dataset.Sheet
	filename string
	notes    []string

	status string
	err    error
}

func NewProcessModel(svc *pipeline.Service) ProcessModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := ProcessModel{
		svc:     svc,
		fields:  &processFields{stage: StageSales, outDir: "."},
		picker:  NewDateRangePicker(),
		spinner: s,
	}
	m.form = m.buildStageForm()

	return m
}

func (m ProcessModel) Title() string { return "Process Files" }

func (m ProcessModel) ShortHelp() string {
	switch m.state {
	case processStatePreview:
		return "Tab: next sheet | s: save | Esc: back"
	case processStateRunning:
		return "Processing..."
	case processStateResult:
		return "Esc: back to menu"
	}

	return "Esc: back | Enter: confirm"
}

func (m ProcessModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ProcessModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
	case DateRangeSelectedMsg:
		m.from, m.to = msg.From, msg.To
		return m.run()
	case processResultMsg:
		return m.finishRun(msg), nil
	case saveResultMsg:
		m.state = processStateResult
		m.err = msg.err

		if msg.err == nil {
			m.status = fmt.Sprintf("Saved %s", msg.path)
		}

		return m, nil
	}

	switch m.state {
	case processStateStage:
		return m.updateForm(msg, ProcessModel.back, ProcessModel.stageDone)
	case processStateInputs:
		return m.updateForm(msg, ProcessModel.restart, ProcessModel.inputsDone)
	case processStateRange:
		return m.updateRange(msg)
	case processStateRunning:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	case processStatePreview:
		return m.updatePreview(msg)
	case processStateSave:
		return m.updateForm(msg, ProcessModel.backToPreview, ProcessModel.saveDone)
	case processStateResult:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	return m, nil
}

// updateForm forwards msg to the active form, calling esc on Esc and done
// once the form completes.
func (m ProcessModel) updateForm(msg tea.Msg, esc, done func(ProcessModel) (tea.Model, tea.Cmd)) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return esc(m)
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return done(m)
}

func (m ProcessModel) back() (tea.Model, tea.Cmd) {
	return m, Back
}

func (m ProcessModel) restart() (tea.Model, tea.Cmd) {
	m.state = processStateStage
	m.err = nil
	m.form = m.buildStageForm()

	return m, m.form.Init()
}

func (m ProcessModel) backToPreview() (tea.Model, tea.Cmd) {
	m.state = processStatePreview
	return m, nil
}

func (m ProcessModel) stageDone() (tea.Model, tea.Cmd) {
	m.state = processStateInputs
	m.form = m.buildInputsForm()

	return m, m.form.Init()
}

func (m ProcessModel) inputsDone() (tea.Model, tea.Cmd) {
	if m.fields.stage == StageBanking {
		m.state = processStateRange
		m.picker.Reset()

		return m, nil
	}

	m.from, m.to = "", ""

	return m.run()
}

func (m ProcessModel) saveDone() (tea.Model, tea.Cmd) {
	m.state = processStateRunning
	return m, tea.Batch(m.spinner.Tick, saveCmd(m.fields.outDir, m.filename, m.sheets))
}

func (m ProcessModel) updateRange(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.picker.IsSelecting() {
		return m.stageDone()
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	return m, cmd
}

func (m ProcessModel) updatePreview(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m.restart()
		case "s":
			m.state = processStateSave
			m.form = m.buildSaveForm()

			return m, m.form.Init()
		}
	}

	var cmd tea.Cmd
	m.preview, cmd = m.preview.Update(msg)

	return m, cmd
}

func (m ProcessModel) run() (tea.Model, tea.Cmd) {
	m.state = processStateRunning
	m.err = nil
	m.status = fmt.Sprintf("Processing %s...", m.fields.stage)

	return m, tea.Batch(m.spinner.Tick, m.processCmd(*m.fields, m.from, m.to))
}

func (m ProcessModel) finishRun(msg processResultMsg) ProcessModel {
	if msg.err != nil {
		m.state = processStateResult
		m.err = msg.err

		return m
	}

	m.sheets = msg.sheets
	m.filename = msg.filename
	m.notes = msg.notes
	m.preview = NewPreview(msg.sheets, m.Height-12)
	m.state = processStatePreview

	return m
}

func (m ProcessModel) buildStageForm() *huh.Form {
	opts := make([]huh.Option[Stage], len(stages))
	for i, s := range stages {
		opts[i] = huh.NewOption(string(s), s)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[Stage]().
				Key("stage").
				Title("Processing Step").
				Options(opts...).
				Value(&m.fields.stage),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ProcessModel) buildInputsForm() *huh.Form {
	f := m.fields

	file := huh.NewInput().
		Key("file").
		Title(inputTitle(f.stage)).
		Value(&f.file).
		Validate(required)

	var group *huh.Group

	switch f.stage {
	case StageAdvances:
		group = huh.NewGroup(file,
			huh.NewInput().
				Key("previous").
				Title("Processed Sales Workbook").
				Description("Output of the Sales step, used for the store code lookup").
				Value(&f.previous),
		)
	case StageBanking:
		group = huh.NewGroup(
			huh.NewInput().
				Key("bank").
				Title("Bank Name").
				Placeholder("HDFC").
				Value(&f.bankName).
				Validate(required),
			file,
		)
	case StageCombine:
		group = huh.NewGroup(file.Description("Comma separated paths"))
	case StageFinal:
		group = huh.NewGroup(file,
			huh.NewInput().
				Key("previous").
				Title("Combined Workbook").
				Description("Output of the Combine MIS step").
				Value(&f.previous).
				Validate(required),
		)
	default:
		group = huh.NewGroup(file)
	}

	return huh.NewForm(group).WithWidth(60).WithShowHelp(false)
}

func (m ProcessModel) buildSaveForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("dir").
				Title("Output Directory").
				Description(fmt.Sprintf("Writes %s; the directory is created if needed", m.filename)).
				Placeholder(".").
				Value(&m.fields.outDir),
		),
	).WithWidth(60).WithShowHelp(false)
}

func inputTitle(s Stage) string {
	switch s {
	case StageCombine:
		return "MIS Working Files"
	case StageBanking:
		return "Bank Export"
	case StageFinal:
		return "Final MIS Workbook"
	}

	return s.String() + " Report"
}

func (s Stage) String() string { return string(s) }

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}

	return nil
}

func (m ProcessModel) View() string {
	pad := lipgloss.NewStyle().Padding(1)

	switch m.state {
	case processStateStage, processStateInputs, processStateSave:
		return pad.Render(m.form.View())
	case processStateRange:
		return pad.Render(m.picker.View())
	case processStateRunning:
		return pad.Render(fmt.Sprintf("%s %s", m.spinner.View(), m.status))
	case processStatePreview:
		content := m.preview.View()
		if len(m.notes) > 0 {
			content = lipgloss.JoinVertical(lipgloss.Left, content, "", mutedStyle.Render(strings.Join(m.notes, "\n")))
		}

		return pad.Render(content)
	case processStateResult:
		if m.err != nil {
			return pad.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to go back)")
		}

		return pad.Render(successStyle.Render(m.status) + "\n\n(Esc to go back)")
	}

	return ""
}

// Messages

type processResultMsg struct {
	sheets   []dataset.Sheet
	filename string
	notes    []string
	err      error
}

type saveResultMsg struct {
	path string
	err  error
}

func (m ProcessModel) processCmd(f processFields, from, to string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := processCtx()
		defer cancel()

		switch f.stage {
		case StageSales:
			up, err := readUpload(f.file)
			if err != nil {
				return processResultMsg{err: err}
			}

			ds, err := m.svc.Sales(ctx, up)
			if err != nil {
				return processResultMsg{err: err}
			}

			return processResultMsg{sheets: []dataset.Sheet{{Name: pipeline.SheetSales, Data: ds}}, filename: pipeline.FilenameSales}

		case StageAdvances:
			up, err := readUpload(f.file)
			if err != nil {
				return processResultMsg{err: err}
			}

			var sales *dataset.Dataset
			if strings.TrimSpace(f.previous) != "" {
				if sales, err = readPrevious(f.previous); err != nil {
					return processResultMsg{err: err}
				}
			}

			sheets, err := m.svc.Advances(ctx, up, sales)
			if err != nil {
				return processResultMsg{err: err}
			}

			return processResultMsg{sheets: sheets, filename: pipeline.FilenameAdvances}

		case StageBanking:
			up, err := readUpload(f.file)
			if err != nil {
				return processResultMsg{err: err}
			}

			res, err := m.svc.Banking(ctx, []bank.Input{{
				BankName: strings.TrimSpace(f.bankName),
				Filename: up.Filename,
				Data:     up.Data,
				From:     from,
				To:       to,
			}})
			if err != nil {
				return processResultMsg{err: err}
			}

			return processResultMsg{
				sheets:   []dataset.Sheet{{Name: pipeline.SheetBanking, Data: res.Data}},
				filename: pipeline.BankingFilename(res.Data),
				notes:    res.Warnings,
			}

		case StageCombine:
			var uploads []pipeline.Upload

			for _, p := range splitPaths(f.file) {
				up, err := readUpload(p)
				if err != nil {
					return processResultMsg{err: err}
				}

				uploads = append(uploads, up)
			}

			res, err := m.svc.Combine(ctx, uploads)
			if err != nil {
				return processResultMsg{err: err}
			}

			return processResultMsg{
				sheets:   []dataset.Sheet{{Name: pipeline.SheetCombine, Data: res.Data}},
				filename: pipeline.CombineFilename(res),
				notes:    []string{fmt.Sprintf("Store column: %s, date column: %s", res.StoreColumn, res.DateColumn)},
			}

		case StageFinal:
			up, err := readUpload(f.file)
			if err != nil {
				return processResultMsg{err: err}
			}

			combine, err := readPrevious(f.previous)
			if err != nil {
				return processResultMsg{err: err}
			}

			res, err := m.svc.Final(ctx, up, combine)
			if err != nil {
				return processResultMsg{err: err}
			}

			return processResultMsg{
				sheets:   res.Sheets,
				filename: pipeline.FilenameFinal,
				notes:    []string{"Updated sheet: " + res.Target},
			}
		}

		return processResultMsg{err: fmt.Errorf("unknown step %q", f.stage)}
	}
}

func readPrevious(path string) (*dataset.Dataset, error) {
	data, err := os.ReadFile(strings.TrimSpace(path))
	if err != nil {
		return nil, err
	}

	sheets, err := workbook.Read(data)
	if err != nil {
		return nil, err
	}

	if len(sheets) == 0 {
		return nil, workbook.ErrNoSheets
	}

	return sheets[0].Data, nil
}

func saveCmd(dir, filename string, sheets []dataset.Sheet) tea.Cmd {
	return func() tea.Msg {
		if strings.TrimSpace(dir) == "" {
			dir = "."
		}

		path, err := workbook.WriteFile(dir, filename, sheets...)

		return saveResultMsg{path: path, err: err}
	}
}
