package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/spec-kit/amats-service/internal/suspension"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F87"))
	clockStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 2).Border(lipgloss.RoundedBorder())
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
)

type tickMsg time.Time

// CountdownModel renders the suspended-login dialog in a terminal.
type CountdownModel struct {
	countdown   *suspension.Countdown
	suspendedBy string
	interval    time.Duration
	dismissed   bool
}

// NewCountdownModel starts a countdown of minutes:seconds ticking every interval.
func NewCountdownModel(suspendedBy string, minutes, seconds int, interval time.Duration) CountdownModel {
	if interval <= 0 {
		interval = time.Second
	}
	c := suspension.NewCountdown()
	c.Start(minutes, seconds)
	return CountdownModel{countdown: c, suspendedBy: suspendedBy, interval: interval}
}

// Init schedules the first tick.
func (m CountdownModel) Init() tea.Cmd {
	if m.Expired() {
		return tea.Quit
	}
	return m.tick()
}

// Update advances the countdown on ticks and quits on expiry or dismissal.
func (m CountdownModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.dismissed = true
			return m, tea.Quit
		}
	case tickMsg:
		if m.countdown.Tick() == suspension.StateExpired {
			return m, tea.Quit
		}
		return m, m.tick()
	}
	return m, nil
}

// View renders the dialog.
func (m CountdownModel) View() string {
	var b strings.Builder
	if m.Expired() {
		b.WriteString(successStyle.Render("Your suspension has ended. You can log in again."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(titleStyle.Render("Account suspended"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Suspended by %s\n", m.suspendedBy))
	b.WriteString(clockStyle.Render(m.countdown.Display()))
	b.WriteString("\n")
	if m.dismissed {
		b.WriteString(subtleStyle.Render("Dismissed. The suspension is still in place."))
	} else {
		b.WriteString(subtleStyle.Render("press q to close"))
	}
	b.WriteString("\n")
	return b.String()
}

// Expired reports whether the countdown reached zero.
func (m CountdownModel) Expired() bool {
	return m.countdown.State() == suspension.StateExpired
}

// Dismissed reports whether the user closed the dialog early.
func (m CountdownModel) Dismissed() bool {
	return m.dismissed
}

func (m CountdownModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}
