package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/gwillem/gripper/pkg/gripper"
	"github.com/gwillem/gripper/pkg/panel"
)

type ControlCommand struct {
	Port string `long:"port" short:"p" description:"Gripper serial port (default from gripper.json)"`
}

const maxLogs = 5

var (
	buttonStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("34")).
			Foreground(lipgloss.Color("34"))
	activeButtonStyle = buttonStyle.
				BorderForeground(lipgloss.Color("203")).
				Foreground(lipgloss.Color("203")).
				Bold(true)
	stopButtonStyle = buttonStyle.
			BorderForeground(lipgloss.Color("214")).
			Foreground(lipgloss.Color("214")).
			Bold(true)
)

type controlModel struct {
	panel    *panel.Panel
	port     string
	ports    func() []string // refreshes the port list; defaults to gripper.PortNames
	width    int
	logs     []string
	quitting bool
}

type panelLogMsg string

func waitForPanelLog(p *panel.Panel) tea.Cmd {
	return func() tea.Msg {
		return panelLogMsg(<-p.Logs())
	}
}

func (m *controlModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

func (m *controlModel) report(err error) {
	if err != nil {
		m.addLog(errorStyle.Render("Error: " + err.Error()))
	}
}

// nextPort refreshes the port list and selects the port after the current
// one, wrapping around. The port can only change while disconnected.
func (m *controlModel) nextPort() error {
	if m.panel.Connected() {
		return fmt.Errorf("disconnect before changing port")
	}
	list := gripper.PortNames
	if m.ports != nil {
		list = m.ports
	}
	names := list()
	if len(names) == 0 {
		return nil
	}
	next := names[0]
	for i, name := range names {
		if name == m.port {
			next = names[(i+1)%len(names)]
			break
		}
	}
	m.port = next
	return nil
}

func (m controlModel) Init() tea.Cmd {
	return waitForPanelLog(m.panel)
}

func (m controlModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			m.panel.Disconnect()
			return m, tea.Quit
		case "c":
			m.report(m.panel.Toggle(context.Background(), m.port))
		case "p":
			m.report(m.nextPort())
		case "g":
			m.report(m.panel.Press(panel.Grip))
		case "r":
			m.report(m.panel.Press(panel.Release))
		case "s", " ":
			m.report(m.panel.EmergencyStop())
		}
		return m, nil

	case panelLogMsg:
		m.addLog(string(msg))
		return m, waitForPanelLog(m.panel)
	}

	return m, nil
}

func (m controlModel) View() string {
	if m.quitting {
		return "Gripper control stopped.\n"
	}

	status := m.panel.Status()
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Smart Gripper Control"))
	sb.WriteString("\n\n")

	// Connection
	if status.Connected {
		sb.WriteString(successStyle.Render("● Connected to " + status.Port))
	} else {
		sb.WriteString(dimStyle.Render("○ Not connected"))
		sb.WriteString(dimStyle.Render("  port: " + m.port))
	}
	sb.WriteString("\n\n")

	// Buttons
	grip := buttonStyle
	if status.Active == panel.Grip {
		grip = activeButtonStyle
	}
	release := buttonStyle
	if status.Active == panel.Release {
		release = activeButtonStyle
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		grip.Render("[g] Secure Grip"),
		" ",
		release.Render("[r] Release Grip"),
		" ",
		stopButtonStyle.Render("[space] EMERGENCY STOP"),
	))
	sb.WriteString("\n")

	// Status
	msgStyle := dimStyle
	if status.Emergency {
		msgStyle = errorStyle.Bold(true)
	}
	sb.WriteString(msgStyle.Render("Status: " + status.Message))
	sb.WriteString("\n\n")

	// Log box
	logBox := boxStyle
	if m.width > 4 {
		logBox = logBox.Width(m.width - 4)
	}
	var logLines string
	if len(m.logs) == 0 {
		logLines = dimStyle.Render("Press 'p' to change port, 'c' to connect, 'q' to quit")
	} else {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logBox.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func (c *ControlCommand) Execute(args []string) error {
	cfg := loadConfig()

	port := c.Port
	if port == "" {
		port = cfg.Gripper.Port
	}
	if port == "" {
		port = gripper.PortNames()[0]
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Select Port").
					Options(huh.NewOptions(gripper.PortNames()...)...).
					Value(&port),
			),
		)
		if err := form.Run(); err != nil {
			fmt.Println()
			os.Exit(0)
		}
	}

	p := panel.New(panel.SerialDialer{Dialer: newDialer(cfg.Gripper.BaudOrDefault())})
	defer p.Disconnect()

	prog := tea.NewProgram(controlModel{panel: p, port: port}, tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("run control panel: %w", err)
	}
	return nil
}
