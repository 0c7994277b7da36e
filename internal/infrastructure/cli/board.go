package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Interactive TUI board of logged work and flagged jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Getenv("ONSITE_SKIP_BOARD_RUN") == "true" {
			return nil
		}
		p := tea.NewProgram(initialBoardModel())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("board run failed: %w", err)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(boardCmd)
}

// Styles
var baseStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("240"))

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#2563EB")).
	PaddingLeft(1).
	PaddingRight(1)

var activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
var flaggedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

type boardModel struct {
	table    table.Model
	projects int
	workMin  int
	active   int
	flagged  []string
	err      error
}

func initialBoardModel() boardModel {
	services, err := loadServicesForCurrentDir()
	if err != nil {
		return boardModel{err: err}
	}

	rows, err := services.Timesheet.Rows()
	if err != nil {
		return boardModel{err: err}
	}

	summaries := services.Timesheet.Ledger().Summaries()

	// Setup Table
	columns := []table.Column{
		{Title: "Project", Width: 22},
		{Title: "Worker", Width: 16},
		{Title: "Work Order", Width: 22},
		{Title: "Status", Width: 12},
		{Title: "Work", Width: 7},
		{Title: "Break", Width: 7},
	}

	tableRows := []table.Row{}
	workMin := 0
	active := 0
	for _, row := range rows {
		name := row.WorkOrderName
		if name == "" {
			name = "(ad hoc)"
		}
		status := row.Status
		if row.IsCurrentlyActive {
			status = status + " *"
			active++
		}
		workMin += row.WorkMinutes
		tableRows = append(tableRows, table.Row{
			row.ProjectName, row.WorkerName, name, status, row.WorkHours, row.BreakHours,
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(tableRows),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240"))

	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229"))

	t.SetStyles(s)

	// Flag overview
	flaggedMsgs := []string{}
	if flags, err := services.Flags.Flags(); err == nil {
		for id, flag := range flags {
			if flag.IsFlagged {
				flaggedMsgs = append(flaggedMsgs,
					fmt.Sprintf("[%s] %s (%d min)", id, flag.FlagReason, flag.DelayMinutes))
			}
		}
	}

	return boardModel{
		table:    t,
		projects: len(summaries),
		workMin:  workMin,
		active:   active,
		flagged:  flaggedMsgs,
	}
}

func (m boardModel) Init() tea.Cmd { return nil }

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m boardModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error loading board: %v\nPress q to quit.", m.err)
	}

	header := headerStyle.Render(fmt.Sprintf("Onsite  %d projects  %d min logged", m.projects, m.workMin))

	activeText := "No one on site."
	if m.active > 0 {
		activeText = activeStyle.Render(fmt.Sprintf("%d active sessions", m.active))
	}

	flagView := ""
	if len(m.flagged) > 0 {
		flagView = flaggedStyle.Render("\nFLAGGED JOBS:\n")
		for _, f := range m.flagged {
			flagView += fmt.Sprintf("- %s\n", f)
		}
	} else {
		flagView = activeStyle.Render("\nAll jobs on time.")
	}

	return baseStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			activeText,
			"\nLogged Work:",
			m.table.View(),
			flagView,
			"\n[q] Quit  [Up/Down] Navigate",
		),
	) + "\n"
}
