package viewer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"pauliqasm/internal/circuit"
)

// padCenter centres a string within the given width.
func padCenter(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	total := width - len(s)
	left := total / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", total-left)
}

func gateDisplayName(gateType string) string {
	if gateType == "MEASURE" {
		return "M"
	}
	return gateType
}

func controlSymbol(gateType string) string {
	if gateType == "SWAP" {
		return "×"
	}
	return "●"
}

func targetSymbol(gateType string) string {
	switch gateType {
	case "CZ":
		return "●"
	case "SWAP":
		return "×"
	default:
		return "⊕"
	}
}

// cellInfo describes what occupies a single cell in the circuit grid.
type cellInfo struct {
	gate        *circuit.Gate
	isControl   bool
	isTarget    bool
	vertAbove   bool
	vertBelow   bool
	passThrough bool
	isBarrier   bool
}

func cellAt(c *circuit.Circuit, step, qubit int) cellInfo {
	var info cellInfo
	gates := c.GatesAt(step)
	for i := range gates {
		g := &gates[i]
		if g.IsBarrier() {
			info.isBarrier = true
			if info.gate == nil {
				info.gate = g
			}
			continue
		}
		if g.Target == qubit || g.Control == qubit {
			info.gate = g
			info.isControl = g.Control == qubit
			info.isTarget = g.Target == qubit && g.Control >= 0
		}
		if g.Control < 0 {
			continue
		}
		lo, hi := min(g.Control, g.Target), max(g.Control, g.Target)
		if qubit < lo || qubit > hi {
			continue
		}
		if qubit > lo {
			info.vertAbove = true
		}
		if qubit < hi {
			info.vertBelow = true
		}
		if qubit > lo && qubit < hi && info.gate == nil {
			info.passThrough = true
		}
	}
	return info
}

// renderCell returns 3 lines (top, mid, bot) for a single cell, each cellW
// visual characters wide.
func renderCell(info cellInfo, cursor bool, gs lipgloss.Style) (top, mid, bot string) {
	emptyRow := strings.Repeat(" ", cellW)
	halfW := cellW / 2
	vertRow := strings.Repeat(" ", halfW) + "│" + strings.Repeat(" ", cellW-halfW-1)

	if cursor {
		innerW := cellW - 2
		dashL := (innerW - 1) / 2
		dashR := innerW - dashL - 1
		bdr := cursorBoxStyle
		if info.isBarrier {
			return vertRow, bdr.Render("║") + strings.Repeat("─", dashL) + "│" + strings.Repeat("─", dashR) + bdr.Render("║"), vertRow
		}
		top = bdr.Render("╔" + strings.Repeat("═", innerW) + "╗")
		bot = bdr.Render("╚" + strings.Repeat("═", innerW) + "╝")
		switch {
		case info.gate != nil && info.isControl:
			mid = bdr.Render("║") + strings.Repeat("─", dashL) + gs.Render(controlSymbol(info.gate.Type)) + strings.Repeat("─", dashR) + bdr.Render("║")
		case info.gate != nil && info.isTarget:
			mid = bdr.Render("║") + strings.Repeat("─", dashL) + gs.Render(targetSymbol(info.gate.Type)) + strings.Repeat("─", dashR) + bdr.Render("║")
		case info.gate != nil:
			mid = bdr.Render("║") + gs.Render("┤"+padCenter(gateDisplayName(info.gate.Type), gateNameW+1)+"├") + bdr.Render("║")
		case info.passThrough:
			mid = bdr.Render("║") + strings.Repeat("─", dashL) + "┼" + strings.Repeat("─", dashR) + bdr.Render("║")
		default:
			mid = bdr.Render("║") + strings.Repeat("─", innerW) + bdr.Render("║")
		}
		return top, mid, bot
	}

	dashL := (cellW - 1) / 2
	dashR := cellW - dashL - 1
	top, bot = emptyRow, emptyRow
	if info.vertAbove {
		top = vertRow
	}
	if info.vertBelow {
		bot = vertRow
	}

	switch {
	case info.isBarrier:
		return vertRow, strings.Repeat("─", dashL) + "│" + strings.Repeat("─", dashR), vertRow
	case info.gate != nil && info.isControl:
		mid = strings.Repeat("─", dashL) + gs.Render(controlSymbol(info.gate.Type)) + strings.Repeat("─", dashR)
	case info.gate != nil && info.isTarget:
		mid = strings.Repeat("─", dashL) + gs.Render(targetSymbol(info.gate.Type)) + strings.Repeat("─", dashR)
	case info.gate != nil:
		margin := (cellW - gateBoxW) / 2
		rightMargin := cellW - margin - gateBoxW
		name := padCenter(gateDisplayName(info.gate.Type), gateNameW)
		top = strings.Repeat(" ", margin) + gs.Render("┌"+strings.Repeat("─", gateNameW)+"┐") + strings.Repeat(" ", rightMargin)
		mid = strings.Repeat("─", margin) + gs.Render("┤"+name+"├") + strings.Repeat("─", rightMargin)
		bot = strings.Repeat(" ", margin) + gs.Render("└"+strings.Repeat("─", gateNameW)+"┘") + strings.Repeat(" ", rightMargin)
	case info.passThrough:
		mid = strings.Repeat("─", dashL) + "┼" + strings.Repeat("─", dashR)
	default:
		mid = strings.Repeat("─", cellW)
	}
	return top, mid, bot
}

// gateStyleFor dims gates outside the selected operator.
func (m Model) gateStyleFor(g *circuit.Gate) lipgloss.Style {
	if g == nil || m.segment < 0 || g.Segment == m.segment {
		return gateStyle
	}
	return otherGateStyle
}

func (m Model) renderCircuitPanel(width, height int) string {
	var sb strings.Builder

	title := "Circuit"
	if m.title != "" {
		title += " · " + m.title
	}
	if m.focus == focusCircuit {
		title += " [ACTIVE]"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n")

	n := m.visibleSteps()
	end := min(m.viewStart+n, max(m.circ.MaxSteps, 1))
	if m.viewStart > 0 {
		fmt.Fprintf(&sb, "  ◀ showing steps %d–%d of %d\n", m.viewStart, end-1, m.circ.MaxSteps)
	} else {
		sb.WriteString("\n")
	}

	header := strings.Repeat(" ", labelVisualW)
	for step := m.viewStart; step < end; step++ {
		label := padCenter(fmt.Sprintf("%d", step), cellW)
		if step == m.cursorStep {
			header += activeGateStyle.Render(label)
		} else {
			header += dimStyle.Render(label)
		}
	}
	sb.WriteString(header + "\n")

	for qubit := range m.circ.NumQubits {
		topLine := strings.Repeat(" ", labelVisualW)
		midLine := qubitLabelStyle.Render(fmt.Sprintf("%-5s", fmt.Sprintf("q[%d]", qubit))) + "──"
		botLine := strings.Repeat(" ", labelVisualW)
		for step := m.viewStart; step < end; step++ {
			info := cellAt(m.circ, step, qubit)
			cursor := m.focus == focusCircuit && step == m.cursorStep && qubit == m.cursorQubit
			top, mid, bot := renderCell(info, cursor, m.gateStyleFor(info.gate))
			topLine += top
			midLine += mid
			botLine += bot
		}
		sb.WriteString(topLine + "\n" + midLine + "\n" + botLine + "\n")
	}

	sb.WriteString("\n  " + m.statusLine())

	return circuitStyle.Width(width).Height(height).Render(sb.String())
}

// statusLine describes the cursor position and the gate under it.
func (m Model) statusLine() string {
	s := fmt.Sprintf("Step %d, Qubit %d", m.cursorStep, m.cursorQubit)
	if m.segment >= 0 {
		seg := m.circ.Segments[m.segment]
		s += fmt.Sprintf("  │  operator %d/%d (input line %d, %d gates)", m.segment+1, len(m.circ.Segments), seg.Line, seg.Len())
	}
	g := m.circ.GateAt(m.cursorStep, m.cursorQubit)
	if g == nil || g.IsBarrier() {
		return s
	}
	desc := strings.ToLower(g.Type)
	if len(g.Params) > 0 {
		a := g.Params[0]
		desc += "(" + a.Label() + ")"
		if a.Symbolic() {
			if v, err := a.Eval(m.bindings); err == nil {
				desc += " = " + circuit.FormatAngle(v)
			}
		}
	}
	return s + "  │  " + activeGateStyle.Render(desc)
}

func (m Model) renderProgramPanel(width, height int) string {
	title := "Program"
	if m.focus == focusProgram {
		title += " [ACTIVE]"
	}
	return programStyle.Width(width).Height(height).Render(titleStyle.Render(title) + "\n\n" + m.program.View())
}

func probabilityBar(p float64) string {
	filled := int(p*barW + 0.5)
	filled = min(max(filled, 0), barW)
	return barFullStyle.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", barW-filled))
}

func (m Model) renderStatePanel(width int) string {
	var left strings.Builder
	left.WriteString(titleStyle.Render(fmt.Sprintf("P(|1⟩) after step %d", m.cursorStep)))
	left.WriteString("\n")
	switch {
	case m.simErr != nil:
		left.WriteString(errorStyle.Render(m.simErr.Error()))
	default:
		rows := probPanelH - 3
		for q, p := range m.probs {
			if q == rows {
				fmt.Fprintf(&left, "… %d more", len(m.probs)-rows)
				break
			}
			fmt.Fprintf(&left, "%s %s %.3f\n", qubitLabelStyle.Render(fmt.Sprintf("%-5s", fmt.Sprintf("q[%d]", q))), probabilityBar(p.Prob1), p.Prob1)
		}
	}

	var right strings.Builder
	right.WriteString(titleStyle.Render("Parameters"))
	right.WriteString("\n")
	if len(m.circ.Params) == 0 {
		right.WriteString(dimStyle.Render("none"))
	}
	for i, name := range m.circ.Params {
		line := fmt.Sprintf("%s = %.2f", name, m.bindings[name])
		if i == m.paramIdx {
			right.WriteString(activeGateStyle.Render("▸ " + line))
		} else {
			right.WriteString("  " + line)
		}
		right.WriteString("\n")
	}

	half := max(width/2-2, 10)
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(half).Render(left.String()),
		lipgloss.NewStyle().Width(half).Render(right.String()),
	)
	return stateStyle.Width(width).Height(probPanelH - 2).Render(body)
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	programWidth := m.width / 3
	circuitWidth := m.circuitWidth()
	topHeight := max(m.height-probPanelH-3, 6)

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderCircuitPanel(circuitWidth, topHeight),
		m.renderProgramPanel(programWidth, topHeight),
	)
	return lipgloss.JoinVertical(lipgloss.Left,
		top,
		m.renderStatePanel(m.width-4),
		" "+m.help.View(m.keys),
	)
}
