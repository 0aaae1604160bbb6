package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/misrecon/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/misrecon/internal/config"
	"github.com/MrJamesThe3rd/misrecon/internal/pipeline"
	"github.com/MrJamesThe3rd/misrecon/internal/rules/source"
)

type model struct {
	svc *pipeline.Service

	currentView View
	width       int
	height      int

	processView view.ProcessModel
	inspectView view.InspectModel
}

type View int

const (
	ViewMenu    View = 0
	ViewProcess View = 1
	ViewInspect View = 2
)

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewProcess
				m.processView = view.NewProcessModel(m.svc)
				m.processView.Width, m.processView.Height = m.width, m.height

				return m, m.processView.Init()
			case "2":
				m.currentView = ViewInspect
				m.inspectView = view.NewInspectModel(m.svc)

				return m, m.inspectView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewProcess:
		var newModel tea.Model
		newModel, cmd = m.processView.Update(msg)
		m.processView = newModel.(view.ProcessModel)
	case ViewInspect:
		var newModel tea.Model
		newModel, cmd = m.inspectView.Update(msg)
		m.inspectView = newModel.(view.InspectModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"MIS Reconciliation\n\n" +
				"1. Process Files\n" +
				"2. Inspect Workbook\n\n" +
				"q. Quit",
		)
	case ViewProcess:
		return m.frame(m.processView)
	case ViewInspect:
		return m.frame(m.inspectView)
	}

	return "Unknown View"
}

func (m model) frame(v view.View) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Render(v.Title())
	help := lipgloss.NewStyle().Faint(true).Render(v.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left, title, v.View(), help)
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	repo, closeRules, err := source.Open(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to load rules", "source", cfg.Rules.Source, "error", err)
		os.Exit(1)
	}
	defer closeRules()

	// Log lines would corrupt the terminal UI.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := pipeline.NewService(repo, logger, pipeline.WithStrictDates(cfg.Rules.StrictDates))

	p := tea.NewProgram(model{svc: svc, currentView: ViewMenu}, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
