package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/misrecon/internal/dataset"
)

// Range is a predefined or custom bank credit date filter.
type Range int

const (
	RangeAll       Range = 0
	RangeThisMonth Range = 1
	RangeLastMonth Range = 2
	RangeCustom    Range = 3
)

func (r Range) String() string {
	switch r {
	case RangeAll:
		return "All Dates"
	case RangeThisMonth:
		return "This Month"
	case RangeLastMonth:
		return "Last Month"
	case RangeCustom:
		return "Custom Range"
	}

	return "Unknown"
}

// monthRange returns the first and last day of the month containing t.
func monthRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}

func rangeDates(r Range, now time.Time) (time.Time, time.Time) {
	if r == RangeLastMonth {
		return monthRange(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0))
	}

	return monthRange(now)
}

// DateRangeSelectedMsg carries DD-MM-YYYY bounds, both empty for all dates.
type DateRangeSelectedMsg struct {
	From string
	To   string
}

type rangeState int

const (
	rangeStateSelect rangeState = iota
	rangeStateCustom
)

// DateRangePicker selects the credit date bounds of a banking run.
type DateRangePicker struct {
	state    rangeState
	selected Range
	now      func() time.Time

	fromInput  textinput.Model
	toInput    textinput.Model
	focusIndex int

	err error
}

func NewDateRangePicker() DateRangePicker {
	fi := textinput.New()
	fi.Placeholder = "DD-MM-YYYY"
	fi.CharLimit = 10
	fi.Width = 12
	fi.Prompt = "From: "

	ti := textinput.New()
	ti.Placeholder = "DD-MM-YYYY"
	ti.CharLimit = 10
	ti.Width = 12
	ti.Prompt = "To:   "

	return DateRangePicker{
		state:     rangeStateSelect,
		selected:  RangeAll,
		now:       time.Now,
		fromInput: fi,
		toInput:   ti,
	}
}

func (m DateRangePicker) Update(msg tea.Msg) (DateRangePicker, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case rangeStateSelect:
			return m.updateSelect(msg)
		case rangeStateCustom:
			if next, cmd, handled := m.updateCustom(msg); handled {
				return next, cmd
			}
		}
	}

	if m.state == rangeStateCustom {
		return m.updateInputs(msg)
	}

	return m, nil
}

func (m DateRangePicker) updateSelect(msg tea.KeyMsg) (DateRangePicker, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.selected > RangeAll {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < RangeCustom {
			m.selected++
		}
	case tea.KeyEnter:
		switch m.selected {
		case RangeCustom:
			m.state = rangeStateCustom
			m.focusIndex = 0
			m.fromInput.Focus()

			return m, textinput.Blink
		case RangeAll:
			return m, selected("", "")
		}

		from, to := rangeDates(m.selected, m.now())

		return m, selected(from.Format(dataset.DayMonthYear), to.Format(dataset.DayMonthYear))
	}

	return m, nil
}

func (m DateRangePicker) updateCustom(msg tea.KeyMsg) (DateRangePicker, tea.Cmd, bool) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = (m.focusIndex + 1) % 2
		m.fromInput.Blur()
		m.toInput.Blur()

		if m.focusIndex == 0 {
			m.fromInput.Focus()
		} else {
			m.toInput.Focus()
		}

		return m, textinput.Blink, true

	case "enter":
		from, err := time.Parse(dataset.DayMonthYear, m.fromInput.Value())
		if err != nil {
			m.err = fmt.Errorf("invalid from date (DD-MM-YYYY)")
			return m, nil, true
		}

		to, err := time.Parse(dataset.DayMonthYear, m.toInput.Value())
		if err != nil {
			m.err = fmt.Errorf("invalid to date (DD-MM-YYYY)")
			return m, nil, true
		}

		if to.Before(from) {
			m.err = fmt.Errorf("to date is before from date")
			return m, nil, true
		}

		m.err = nil

		return m, selected(m.fromInput.Value(), m.toInput.Value()), true

	case "esc":
		m.state = rangeStateSelect
		m.err = nil

		return m, nil, true
	}

	return m, nil, false
}

func (m DateRangePicker) updateInputs(msg tea.Msg) (DateRangePicker, tea.Cmd) {
	var cmds []tea.Cmd
	var c tea.Cmd

	m.fromInput, c = m.fromInput.Update(msg)
	cmds = append(cmds, c)
	m.toInput, c = m.toInput.Update(msg)
	cmds = append(cmds, c)

	return m, tea.Batch(cmds...)
}

func selected(from, to string) tea.Cmd {
	return func() tea.Msg {
		return DateRangeSelectedMsg{From: from, To: to}
	}
}

func (m DateRangePicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = errorStyle.Render(fmt.Sprintf("\n\nError: %v", m.err))
	}

	if m.state == rangeStateCustom {
		return fmt.Sprintf(
			"Bank Credit Date Range:\n\n%s\n%s\n\n(Enter to confirm, Tab to switch, Esc to back)%s",
			m.fromInput.View(),
			m.toInput.View(),
			errStr,
		)
	}

	s := "Bank Credit Date Range:\n\n"
	for r := RangeAll; r <= RangeCustom; r++ {
		cursor := " "
		if m.selected == r {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, r.String())
	}

	s += "\n(Enter to select, Esc to back)"

	return s + errStr
}

// IsSelecting reports whether the picker shows the preset list.
func (m DateRangePicker) IsSelecting() bool {
	return m.state == rangeStateSelect
}

func (m *DateRangePicker) Reset() {
	m.state = rangeStateSelect
	m.selected = RangeAll
	m.err = nil
	m.fromInput.SetValue("")
	m.toInput.SetValue("")
}
