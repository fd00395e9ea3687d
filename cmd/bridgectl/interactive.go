package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/plugkit/engine-bridge/bridge"
	"github.com/plugkit/engine-bridge/isolate"
	"github.com/plugkit/engine-bridge/variant"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	statLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB")).
			Width(18)

	statValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	historyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	b       *bridge.Bridge
	iso     *isolate.Isolate
	alloc   func(int) (variant.Value, error)
	live    []variant.Value
	input   textinput.Model
	history []string
	err     error
}

func newInteractiveModel() (*interactiveModel, error) {
	iso := isolate.New()
	exports := isolate.NewExports()

	b, err := bridge.Load(iso, exports, bridge.Options{})
	if err != nil {
		return nil, err
	}

	fn, _ := exports.Get("buffer.alloc")

	ti := textinput.New()
	ti.Placeholder = "alloc 1500 | drop | collect | quit"
	ti.Focus()

	return &interactiveModel{
		b:     b,
		iso:   iso,
		alloc: fn.(func(int) (variant.Value, error)),
		input: ti,
	}, nil
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.b.Close()
			return m, tea.Quit
		case tea.KeyEnter:
			cmd := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if cmd == "quit" || cmd == "q" {
				m.b.Close()
				return m, tea.Quit
			}
			m.execute(cmd)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) execute(cmd string) {
	m.err = nil
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "alloc":
		size := 1500
		if len(fields) > 1 {
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				m.err = fmt.Errorf("alloc: %w", err)
				return
			}
			size = n
		}
		v, err := m.alloc(size)
		if err != nil {
			m.err = err
			return
		}
		m.live = append(m.live, v)
		m.log(fmt.Sprintf("allocated %d bytes (%d live wrappers)", size, len(m.live)))

	case "drop":
		if len(m.live) == 0 {
			m.log("no live wrappers")
			return
		}
		for _, v := range m.live {
			v.Release()
		}
		m.log(fmt.Sprintf("dropped %d wrappers (pending until next collect)", len(m.live)))
		m.live = nil

	case "collect":
		m.iso.Collect()
		m.log(fmt.Sprintf("collection %d complete", m.iso.Collections()))

	default:
		m.err = fmt.Errorf("unknown command %q", fields[0])
	}
}

func (m *interactiveModel) log(line string) {
	m.history = append(m.history, line)
	if len(m.history) > 8 {
		m.history = m.history[len(m.history)-8:]
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("bridgectl — isolate %d", m.iso.ID())))
	b.WriteString("\n\n")

	s := m.b.Stats()
	stat := func(label string, value uint64) {
		b.WriteString(statLabelStyle.Render(label))
		b.WriteString(statValueStyle.Render(fmt.Sprintf("%d", value)))
		b.WriteByte('\n')
	}
	stat("allocated bytes", uint64(s.AllocatedBytes))
	stat("active buffers", uint64(s.ActiveBuffers))
	stat("pending release", uint64(s.PendingReleases))
	stat("reclaimed", s.Reclaimed)
	stat("leaked", s.Leaked)
	stat("epochs", s.Epochs)
	b.WriteByte('\n')

	for _, line := range m.history {
		b.WriteString(historyStyle.Render("· " + line))
		b.WriteByte('\n')
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("✗ " + m.err.Error()))
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("alloc [size] · drop · collect · quit"))
	b.WriteByte('\n')

	return b.String()
}

func runInteractive() error {
	m, err := newInteractiveModel()
	if err != nil {
		return err
	}

	_, err = tea.NewProgram(m).Run()
	return err
}
