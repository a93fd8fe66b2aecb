// Package viewer is a terminal UI for a translated program: the circuit
// diagram with the selected operator highlighted, the program text, and the
// simulated qubit probabilities after the cursor step.
package viewer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"pauliqasm/internal/circuit"
)

// focus represents which panel has keyboard input.
type focus int

const (
	focusCircuit focus = iota
	focusProgram
)

const paramStep = 0.1

// Model is the viewer state.
type Model struct {
	circ    *circuit.Circuit
	title   string
	lines   []string // program text, one entry per line
	program viewport.Model
	help    help.Model
	keys    keyMap
	focus   focus

	cursorQubit int
	cursorStep  int
	viewStart   int // first visible step
	segment     int // selected operator, -1 for none

	bindings circuit.Bindings
	paramIdx int

	probs  []circuit.QubitProbability
	simErr error

	width  int
	height int
}

// New builds a viewer for c, whose source text is program. Every declared
// parameter starts bound to 1, which renders the unparameterized angles.
func New(c *circuit.Circuit, program, title string) Model {
	m := Model{
		circ:     c,
		title:    title,
		lines:    strings.Split(strings.TrimRight(program, "\n"), "\n"),
		program:  viewport.New(40, 20),
		help:     help.New(),
		keys:     defaultKeyMap(),
		segment:  -1,
		bindings: make(circuit.Bindings, len(c.Params)),
	}
	for _, p := range c.Params {
		m.bindings[p] = 1
	}
	if len(c.Segments) > 0 {
		m.segment = 0
	}
	m.refreshProgram()
	m.simulate()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Segment returns the selected operator index, or -1.
func (m Model) Segment() int { return m.segment }

// Cursor returns the cursor position.
func (m Model) Cursor() (step, qubit int) { return m.cursorStep, m.cursorQubit }

// Binding returns the current value of a parameter.
func (m Model) Binding(name string) (float64, bool) {
	v, ok := m.bindings[name]
	return v, ok
}

// Probabilities returns the marginal qubit probabilities after the cursor step.
func (m Model) Probabilities() []circuit.QubitProbability { return m.probs }

func (m *Model) simulate() {
	m.probs, m.simErr = nil, nil
	s, err := circuit.Simulate(m.circ, m.bindings, m.cursorStep)
	if err != nil {
		m.simErr = err
		return
	}
	m.probs = s.QubitProbabilities()
}

// refreshProgram rebuilds the program text with the selected operator's
// lines highlighted.
func (m *Model) refreshProgram() {
	lo, hi := m.segmentLines()
	var sb strings.Builder
	for i, line := range m.lines {
		n := i + 1
		num := dimStyle.Render(fmt.Sprintf("%4d ", n))
		if n >= lo && n <= hi {
			line = selectedLineStyle.Render(line)
		}
		sb.WriteString(num + line)
		if i < len(m.lines)-1 {
			sb.WriteByte('\n')
		}
	}
	m.program.SetContent(sb.String())
}

// segmentLines returns the program lines of the selected operator, the
// comment included. Both are zero when nothing is selected.
func (m Model) segmentLines() (lo, hi int) {
	if m.segment < 0 {
		return 0, 0
	}
	s := m.circ.Segments[m.segment]
	if s.Len() == 0 {
		return 0, 0
	}
	return m.circ.Gates[s.FirstGate].Line - 1, m.circ.Gates[s.LastGate].Line
}

func (m *Model) selectSegment(i int) {
	if len(m.circ.Segments) == 0 {
		return
	}
	i = (i%len(m.circ.Segments) + len(m.circ.Segments)) % len(m.circ.Segments)
	m.segment = i
	m.setStep(m.circ.Segments[i].FirstStep)
	m.refreshProgram()
	lo, _ := m.segmentLines()
	m.program.SetYOffset(max(lo-2, 0))
}

func (m *Model) setStep(step int) {
	last := max(m.circ.MaxSteps-1, 0)
	m.cursorStep = min(max(step, 0), last)
	if seg := m.circ.SegmentAtStep(m.cursorStep); seg >= 0 && seg != m.segment {
		m.segment = seg
		m.refreshProgram()
	}
	m.simulate()
}

func (m *Model) adjustParam(delta float64, reset bool) {
	if len(m.circ.Params) == 0 {
		return
	}
	name := m.circ.Params[m.paramIdx]
	if reset {
		m.bindings[name] = 1
	} else {
		m.bindings[name] += delta
	}
	m.simulate()
}

// visibleSteps is how many step columns fit in the circuit panel.
func (m Model) visibleSteps() int {
	return max((m.circuitWidth()-labelVisualW-4)/cellW, 1)
}

func (m Model) circuitWidth() int {
	return m.width - m.width/3 - 4
}

func (m *Model) scrollToCursor() {
	n := m.visibleSteps()
	if m.cursorStep < m.viewStart {
		m.viewStart = m.cursorStep
	}
	if m.cursorStep >= m.viewStart+n {
		m.viewStart = m.cursorStep - n + 1
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.program.Width = max(msg.Width/3-4, 20)
		m.program.Height = max(msg.Height-probPanelH-8, 4)
		m.scrollToCursor()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Focus):
			if m.focus == focusCircuit {
				m.focus = focusProgram
			} else {
				m.focus = focusCircuit
			}
			return m, nil
		}

		if m.focus == focusProgram {
			var cmd tea.Cmd
			m.program, cmd = m.program.Update(msg)
			return m, cmd
		}

		switch {
		case key.Matches(msg, m.keys.Up):
			if m.cursorQubit > 0 {
				m.cursorQubit--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursorQubit < m.circ.NumQubits-1 {
				m.cursorQubit++
			}
		case key.Matches(msg, m.keys.Left):
			m.setStep(m.cursorStep - 1)
		case key.Matches(msg, m.keys.Right):
			m.setStep(m.cursorStep + 1)
		case key.Matches(msg, m.keys.Start):
			m.setStep(0)
		case key.Matches(msg, m.keys.End):
			m.setStep(m.circ.MaxSteps - 1)
		case key.Matches(msg, m.keys.NextOp):
			m.selectSegment(m.segment + 1)
		case key.Matches(msg, m.keys.PrevOp):
			m.selectSegment(m.segment - 1)
		case key.Matches(msg, m.keys.NextParam):
			if n := len(m.circ.Params); n > 0 {
				m.paramIdx = (m.paramIdx + 1) % n
			}
		case key.Matches(msg, m.keys.PrevParam):
			if n := len(m.circ.Params); n > 0 {
				m.paramIdx = (m.paramIdx - 1 + n) % n
			}
		case key.Matches(msg, m.keys.Inc):
			m.adjustParam(paramStep, false)
		case key.Matches(msg, m.keys.Dec):
			m.adjustParam(-paramStep, false)
		case key.Matches(msg, m.keys.Reset):
			m.adjustParam(0, true)
		}
		m.scrollToCursor()
	}

	return m, nil
}

// Run starts the viewer full screen and blocks until the user quits.
func Run(c *circuit.Circuit, program, title string) error {
	_, err := tea.NewProgram(New(c, program, title), tea.WithAltScreen()).Run()
	return err
}
