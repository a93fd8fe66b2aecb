package viewer

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Start     key.Binding
	End       key.Binding
	NextOp    key.Binding
	PrevOp    key.Binding
	NextParam key.Binding
	PrevParam key.Binding
	Inc       key.Binding
	Dec       key.Binding
	Reset     key.Binding
	Focus     key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "qubit up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "qubit down")),
		Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "step back")),
		Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "step forward")),
		Start:     key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first step")),
		End:       key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last step")),
		NextOp:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next operator")),
		PrevOp:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prev operator")),
		NextParam: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next param")),
		PrevParam: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev param")),
		Inc:       key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "param +0.1")),
		Dec:       key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "param -0.1")),
		Reset:     key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "param = 1")),
		Focus:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "circuit/program")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.NextOp, k.PrevOp, k.Focus, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Start, k.End},
		{k.NextOp, k.PrevOp, k.Focus},
		{k.NextParam, k.PrevParam, k.Inc, k.Dec, k.Reset},
		{k.Help, k.Quit},
	}
}
