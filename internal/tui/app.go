// internal/tui/app.go
//
// Terminal monitor for a running armature host. It uses bubbletea, which
// follows The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen

package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/armature-dev/armature/internal/host"
	"github.com/armature-dev/armature/internal/journal"
)

const snapshotRefreshInterval = 500 * time.Millisecond

// ControlPlane is the slice of the host the monitor needs. The host satisfies
// it directly; tests inject a stub.
type ControlPlane interface {
	Snapshot() host.Snapshot
	SetCommand(joint string, value float64) error
	Joints() []string
}

type snapshotMsg struct {
	snapshot host.Snapshot
}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithJournal attaches a journal whose tail is rendered under the joint table.
func WithJournal(j *journal.Journal) AppOption {
	return func(a *App) {
		a.journal = j
	}
}

// App is the monitor model. In bubbletea, this holds ALL your state.
type App struct {
	plane   ControlPlane
	journal *journal.Journal

	snapshot  host.Snapshot
	input     textinput.Model
	entering  bool
	statusMsg string

	width  int
	height int
}

// NewApp builds a monitor bound to a running control plane.
func NewApp(plane ControlPlane, opts ...AppOption) *App {
	input := textinput.New()
	input.Placeholder = "joint=position"
	input.CharLimit = 64
	input.Width = 32
	app := &App{
		plane:     plane,
		input:     input,
		statusMsg: "c → command a joint    q → quit",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	return app
}

// Run starts the monitor in the alternate screen until the user quits.
func Run(plane ControlPlane, opts ...AppOption) error {
	program := tea.NewProgram(NewApp(plane, opts...), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return a.fetchSnapshot()
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case snapshotMsg:
		a.snapshot = msg.snapshot
		return a, a.scheduleRefresh()

	case tea.KeyMsg:
		if a.entering {
			return a.updateCommandEntry(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return a, tea.Quit
		case "r":
			a.statusMsg = "Refreshing..."
			return a, a.fetchSnapshot()
		case "c":
			return a.beginCommandEntry()
		}
	}

	return a, nil
}

func (a *App) beginCommandEntry() (tea.Model, tea.Cmd) {
	a.entering = true
	a.input.SetValue("")
	a.statusMsg = "Enter → send command    Esc → cancel"
	return a, a.input.Focus()
}

func (a *App) updateCommandEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.entering = false
		a.input.Blur()
		a.statusMsg = "Command cancelled"
		return a, nil
	case "enter":
		joint, value, err := parseCommandInput(a.input.Value())
		if err != nil {
			a.statusMsg = fmt.Sprintf("⚠ %v", err)
			return a, nil
		}
		if err := a.plane.SetCommand(joint, value); err != nil {
			a.statusMsg = fmt.Sprintf("⚠ %v", err)
			return a, nil
		}
		a.entering = false
		a.input.Blur()
		a.statusMsg = fmt.Sprintf("Commanded %s → %g", joint, value)
		return a, a.fetchSnapshot()
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// parseCommandInput turns "joint1=0.75" into its joint and position parts.
func parseCommandInput(raw string) (string, float64, error) {
	trimmed := strings.TrimSpace(raw)
	joint, position, found := strings.Cut(trimmed, "=")
	if !found {
		return "", 0, fmt.Errorf("expected joint=position, got %q", trimmed)
	}
	joint = strings.TrimSpace(joint)
	if joint == "" {
		return "", 0, fmt.Errorf("joint name is required")
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(position), 64)
	if err != nil {
		return "", 0, fmt.Errorf("position must be a number, got %q", strings.TrimSpace(position))
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "", 0, fmt.Errorf("position must be finite")
	}
	return joint, value, nil
}

func (a *App) fetchSnapshot() tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg{snapshot: a.plane.Snapshot()}
	}
}

func (a *App) scheduleRefresh() tea.Cmd {
	return tea.Tick(snapshotRefreshInterval, func(time.Time) tea.Msg {
		return snapshotMsg{snapshot: a.plane.Snapshot()}
	})
}

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		MarginBottom(1).
		Render("⬡ ARMATURE")
	sections := []string{header, a.renderJointPanel(width - 4)}
	if logPanel := a.renderJournalPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	if a.entering {
		prompt := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5B8DEF")).
			Padding(0, 1).
			Render("Command: " + a.input.View())
		sections = append(sections, prompt)
	}
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render(a.statusMsg)
	sections = append(sections, footer)
	return strings.Join(sections, "\n")
}

func (a *App) renderJointPanel(width int) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("Joints (cycle %d)", a.snapshot.Cycle))
	if len(a.snapshot.Joints) == 0 {
		note := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Render("No joints loaded. Check the hardware description.")
		return a.boxed(lipgloss.JoinVertical(lipgloss.Left, title, note), width)
	}
	head := fmt.Sprintf("%-14s %-14s %-12s %12s %12s", "COMPONENT", "JOINT", "LIFECYCLE", "STATE", "COMMAND")
	rows := []string{lipgloss.NewStyle().Bold(true).Render(head)}
	for _, joint := range a.snapshot.Joints {
		rows = append(rows, fmt.Sprintf("%-14s %-14s %-12s %12s %12s",
			joint.Component,
			joint.Joint,
			joint.Lifecycle,
			formatValue(joint.State),
			formatValue(joint.Command),
		))
	}
	body := strings.Join(rows, "\n")
	return a.boxed(lipgloss.JoinVertical(lipgloss.Left, title, body), width)
}

func (a *App) renderJournalPanel() string {
	if a.journal == nil {
		return ""
	}
	lines := a.journal.Tail(6)
	if len(lines) == 0 {
		return ""
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("JOURNAL · %s", a.journal.SessionID()))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

func (a *App) boxed(content string, width int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(maxInt(24, width)).
		Render(content)
}

func formatValue(value float64) string {
	if math.IsNaN(value) {
		return "unset"
	}
	return strconv.FormatFloat(value, 'f', 4, 64)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
