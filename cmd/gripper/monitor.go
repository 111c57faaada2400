package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/gripper/internal/log"
	"github.com/gwillem/gripper/pkg/magfield"
)

type MonitorCommand struct {
	Port   string  `long:"port" short:"p" description:"Sensor serial port (default from gripper.json)"`
	Window int     `long:"window" default:"200" description:"Number of samples kept on screen"`
	YRange float64 `long:"y-range" default:"100" description:"Chart range is -y-range..y-range"`
	Save   string  `long:"save" description:"Write the final window to this CSV file on exit"`
}

const (
	headerHeight = 2 // title + blank line
	legendHeight = 2 // legend row + blank
	footerHeight = 7 // log box height
	borderSize   = 2 // chart border
)

// Axis colors
var axisColors = map[magfield.Axis]string{
	magfield.X: "196", // red
	magfield.Y: "46",  // green
	magfield.Z: "51",  // cyan
}

type monitorModel struct {
	mon      *magfield.Monitor
	port     string
	chart    *streamlinechart.Model
	width    int
	height   int
	logs     []string
	last     magfield.Sample
	samples  int
	quitting bool
}

type sampleMsg magfield.Sample
type monitorLogMsg string

func waitForSample(mon *magfield.Monitor) tea.Cmd {
	return func() tea.Msg {
		return sampleMsg(<-mon.Samples())
	}
}

func waitForMonitorLog(mon *magfield.Monitor) tea.Cmd {
	return func() tea.Msg {
		return monitorLogMsg(<-mon.Logs())
	}
}

func (m *monitorModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// chartSize calculates the size of the chart based on terminal dimensions
func (m *monitorModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 20 // default size before we know terminal size
	}
	width = max(m.width-borderSize-2, 40)
	height = max(m.height-headerHeight-legendHeight-footerHeight-borderSize, 10)
	return width, height
}

func initialMonitorModel(mon *magfield.Monitor, port string, yRange float64) monitorModel {
	chart := streamlinechart.New(80, 20,
		streamlinechart.WithYRange(-yRange, yRange),
	)
	for _, axis := range magfield.AllAxes() {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(axisColors[axis]))
		chart.SetDataSetStyles(string(axis), runes.ThinLineStyle, style)
	}
	return monitorModel{
		mon:   mon,
		port:  port,
		chart: &chart,
	}
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(
		waitForSample(m.mon),
		waitForMonitorLog(m.mon),
	)
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := m.chartSize()
		m.chart.Resize(w, h)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case sampleMsg:
		s := magfield.Sample(msg)
		for _, axis := range magfield.AllAxes() {
			m.chart.PushDataSet(string(axis), s.Get(axis))
		}
		m.chart.DrawAll()
		m.last = s
		m.samples++
		return m, waitForSample(m.mon)

	case monitorLogMsg:
		m.addLog(string(msg))
		return m, waitForMonitorLog(m.mon)
	}

	return m, nil
}

func (m monitorModel) View() string {
	if m.quitting {
		return "Monitor stopped.\n"
	}

	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Live Magnetic Field Data"))
	sb.WriteString(dimStyle.Render(fmt.Sprintf("  %s  samples: %d  last: %.2f, %.2f, %.2f",
		m.port, m.samples, m.last.X, m.last.Y, m.last.Z)))
	sb.WriteString("\n\n")

	sb.WriteString(boxStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	var items []string
	for _, axis := range magfield.AllAxes() {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(axisColors[axis])).Bold(true)
		items = append(items, colorStyle.Render("━━")+" "+string(axis))
	}
	sb.WriteString(strings.Join(items, "  "))
	sb.WriteString("\n")

	logBox := boxStyle
	if m.width > 4 {
		logBox = logBox.Width(m.width - 4)
	}
	logLines := dimStyle.Render("Press 'q' to quit")
	if len(m.logs) > 0 {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logBox.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func (c *MonitorCommand) Execute(args []string) error {
	cfg := loadConfig()

	port := c.Port
	if port == "" {
		port = cfg.Sensor.Port
	}
	if port == "" {
		fmt.Fprintln(os.Stderr, "No sensor port configured. Run 'gripper setup' or pass --port.")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := newDialer(cfg.Sensor.BaudOrDefault())
	d.ReadTimeout = 100 * time.Millisecond
	sensor, err := d.DialPort(ctx, port)
	if err != nil {
		return err
	}
	defer sensor.Close()
	log.Debug("connected to sensor", "port", port)

	mon := magfield.NewMonitor(sensor, c.Window)
	done := make(chan error, 1)
	go func() {
		done <- mon.Run(ctx)
	}()

	p := tea.NewProgram(initialMonitorModel(mon, port, c.YRange), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run monitor: %w", err)
	}

	cancel()
	if err := <-done; err != nil && err != context.Canceled {
		log.Warn("sensor stream ended", "err", err)
	}
	received, dropped := mon.Stats()
	log.Info("sensor stream closed", "samples", received, "discarded", dropped)

	if c.Save != "" {
		return saveSamples(c.Save, mon.Window().Samples())
	}
	return nil
}

func saveSamples(path string, samples []magfield.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := magfield.WriteCSV(f, samples); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("Saved %d samples to %s\n", len(samples), path)
	return nil
}
