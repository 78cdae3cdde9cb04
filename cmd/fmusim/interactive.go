package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/fmu-runtime/fmi"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD866"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4"))
)

// headerLines is the height of everything above the log pane.
const headerLines = 8

// logLines collects host logger output for the log pane.
type logLines struct {
	lines []string
}

func (l *logLines) Log(c fmi.Component, instanceName string, status fmi.Status, category, message string, args ...any) {
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}
	line := fmt.Sprintf("%s [%s] %s", instanceName, status, message)
	if category != "" {
		line = fmt.Sprintf("%s [%s] %s: %s", instanceName, status, category, message)
	}
	switch status {
	case fmi.Error, fmi.Fatal:
		line = errorStyle.Render(line)
	case fmi.Warning, fmi.Discard:
		line = warnStyle.Render(line)
	}
	l.lines = append(l.lines, line)
}

type interactiveModel struct {
	err    error
	host   *simHost
	sim    *simulation
	logs   *logLines
	input  textinput.Model
	pane   viewport.Model
	status fmi.Status
	ready  bool
}

func newInteractiveModel(h *simHost, cfg simConfig) *interactiveModel {
	logs := &logLines{}
	cfg.callbacks = h.build(logs)

	ti := textinput.New()
	ti.Prompt = "steps: "
	ti.Placeholder = "1"
	ti.CharLimit = 6
	ti.Width = 8

	m := &interactiveModel{
		host:  h,
		logs:  logs,
		input: ti,
		pane:  viewport.New(80, 10),
	}
	m.sim, m.err = newSimulation(cfg)
	m.refresh()
	return m
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.pane.Width = msg.Width - 2
		m.pane.Height = max(msg.Height-headerLines-2, 3)
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}
		if m.input.Focused() {
			switch msg.String() {
			case "enter":
				m.input.Blur()
				m.stepN(m.input.Value())
				m.input.SetValue("")
				return m, nil
			case "esc", "tab":
				m.input.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "q":
			return m, m.quit()

		case "s", " ":
			m.stepN("1")
			return m, nil

		case "d":
			if m.sim != nil {
				m.sim.inst.SetDebugLogging(!m.sim.inst.DebugFlag().Enabled())
			}
			return m, nil

		case "tab", "n":
			return m, m.input.Focus()
		}
	}

	var cmd tea.Cmd
	m.pane, cmd = m.pane.Update(msg)
	return m, cmd
}

func (m *interactiveModel) quit() tea.Cmd {
	if m.sim != nil {
		m.sim.Close()
		m.sim = nil
	}
	return tea.Quit
}

func (m *interactiveModel) stepN(value string) {
	if m.sim == nil || m.status == fmi.Fatal {
		return
	}
	n := 1
	if value != "" {
		v, err := strconv.Atoi(value)
		if err != nil || v < 1 {
			m.logs.lines = append(m.logs.lines, errorStyle.Render(fmt.Sprintf("invalid step count %q", value)))
			m.refresh()
			return
		}
		n = v
	}
	for i := 0; i < n; i++ {
		m.status = m.sim.doStep()
		if m.status != fmi.OK {
			break
		}
	}
	m.refresh()
}

func (m *interactiveModel) refresh() {
	m.pane.SetContent(strings.Join(m.logs.lines, "\n"))
	m.pane.GotoBottom()
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nHost memory: %s\n\nPress q to quit.", m.err, m.host.summary()))
	}
	if m.sim == nil {
		return ""
	}
	if !m.ready {
		return "Starting..."
	}

	var b strings.Builder
	o := m.sim.snapshot()

	b.WriteString(titleStyle.Render("FMU Simulator"))
	b.WriteString(" ")
	b.WriteString(m.sim.inst.Logger().InstanceName())
	b.WriteString("\n\n")

	debug := "off"
	if m.sim.inst.DebugFlag().Enabled() {
		debug = "on"
	}
	fmt.Fprintf(&b, "%s %s   %s %s   %s %s\n",
		labelStyle.Render("host:"), m.host.name,
		labelStyle.Render("status:"), m.renderStatus(),
		labelStyle.Render("debug:"), valueStyle.Render(debug))
	fmt.Fprintf(&b, "%s %s   %s %s   %s %s\n",
		labelStyle.Render("t:"), valueStyle.Render(fmt.Sprintf("%.2f", o.time)),
		labelStyle.Render("x:"), valueStyle.Render(fmt.Sprintf("%.4f", o.x)),
		labelStyle.Render("v:"), valueStyle.Render(fmt.Sprintf("%.4f", o.v)))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("memory:"), m.host.summary())
	b.WriteString(m.input.View())
	b.WriteString("\n")

	b.WriteString(paneStyle.Render(m.pane.View()))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("s step • n step N • d toggle debug • ↑/↓ scroll • q quit"))

	return b.String()
}

func (m *interactiveModel) renderStatus() string {
	if m.status == fmi.Error || m.status == fmi.Fatal {
		return errorStyle.Render(m.status.String())
	}
	return valueStyle.Render(m.status.String())
}

func runInteractive(h *simHost, cfg simConfig) error {
	p := tea.NewProgram(newInteractiveModel(h, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
