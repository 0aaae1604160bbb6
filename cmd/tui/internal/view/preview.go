package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/misrecon/internal/dataset"
)

// Preview limits. Wider or longer sheets are cut off on screen only.
const (
	previewColumns = 8
	previewRows    = 200
	columnWidth    = 16
)

// Preview shows the sheets of a processing result one at a time.
type Preview struct {
	sheets []dataset.Sheet
	sheet  int
	table  table.Model
}

func NewPreview(sheets []dataset.Sheet, height int) Preview {
	t := table.New(
		table.WithFocused(true),
		table.WithHeight(max(height, 5)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	p := Preview{sheets: sheets, table: t}
	p.refresh()

	return p
}

func (p Preview) Update(msg tea.Msg) (Preview, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "]":
			if len(p.sheets) > 1 {
				p.sheet = (p.sheet + 1) % len(p.sheets)
				p.refresh()
			}

			return p, nil
		case "shift+tab", "[":
			if len(p.sheets) > 1 {
				p.sheet = (p.sheet + len(p.sheets) - 1) % len(p.sheets)
				p.refresh()
			}

			return p, nil
		}
	case tea.WindowSizeMsg:
		p.table.SetHeight(max(msg.Height-12, 5))
		return p, nil
	}

	var cmd tea.Cmd
	p.table, cmd = p.table.Update(msg)

	return p, cmd
}

// refresh loads the current sheet into the table. Rows are cleared before
// the columns change so the table never renders rows wider than its header.
func (p *Preview) refresh() {
	p.table.SetRows(nil)

	if len(p.sheets) == 0 || p.sheets[p.sheet].Data == nil {
		p.table.SetColumns(nil)
		return
	}

	ds := p.sheets[p.sheet].Data
	names := ds.Columns()
	width := min(len(names), previewColumns)

	columns := make([]table.Column, width)
	for i := range width {
		columns[i] = table.Column{Title: names[i], Width: columnWidth}
	}

	p.table.SetColumns(columns)

	rows := make([]table.Row, 0, min(ds.Len(), previewRows))
	for i := range min(ds.Len(), previewRows) {
		row := make(table.Row, width)
		for c := range width {
			row[c] = FormatValue(ds.At(i, c))
		}

		rows = append(rows, row)
	}

	p.table.SetRows(rows)
	p.table.GotoTop()
}

// Title names the shown sheet and its size.
func (p Preview) Title() string {
	if len(p.sheets) == 0 {
		return "No sheets"
	}

	s := p.sheets[p.sheet]

	rows, cols := 0, 0
	if s.Data != nil {
		rows, cols = s.Data.Len(), s.Data.Width()
	}

	return fmt.Sprintf("Sheet %d/%d: %s (%d rows, %d columns)", p.sheet+1, len(p.sheets), s.Name, rows, cols)
}

func (p Preview) View() string {
	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(p.table.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(p.Title()),
		tableView,
	)
}
