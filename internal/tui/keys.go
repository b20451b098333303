package tui

import "github.com/charmbracelet/bubbles/key"

// gridKeyMap holds the bindings of the grid view
type gridKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Edit      key.Binding
	Drag      key.Binding
	Cancel    key.Binding
	Clear     key.Binding
	AddRow    key.Binding
	AddTop    key.Binding
	RemoveRow key.Binding
	RemoveTop key.Binding
	Save      key.Binding
	FullReset key.Binding
	Retry     key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k gridKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Edit, k.Drag, k.AddRow, k.RemoveRow, k.Save, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k gridKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Edit, k.Drag, k.Cancel, k.Clear},
		{k.AddRow, k.AddTop, k.RemoveRow, k.RemoveTop},
		{k.Save, k.FullReset, k.Retry, k.Help, k.Quit},
	}
}

// panelKeyMap holds the bindings of the editing panel
type panelKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Choose   key.Binding
	Copy     key.Binding
	Paste    key.Binding
	Previous key.Binding
	Import   key.Binding
	Reset    key.Binding
	Close    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k panelKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Choose, k.Copy, k.Paste, k.Previous, k.Import, k.Reset, k.Close}
}

// FullHelp returns keybindings for the expanded help view
func (k panelKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Choose},
		{k.Copy, k.Paste, k.Previous, k.Import},
		{k.Reset, k.Close},
	}
}

// promptKeyMap holds the bindings of text prompts and choice lists
type promptKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k promptKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (k promptKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Confirm, k.Cancel}}
}

func newGridKeys() gridKeyMap {
	return gridKeyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Edit:      key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter", "edit")),
		Drag:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pick/drop")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel drag")),
		Clear:     key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "clear cell")),
		AddRow:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add row")),
		AddTop:    key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "add row on top")),
		RemoveRow: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "remove row")),
		RemoveTop: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "remove top row")),
		Save:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		FullReset: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "full reset")),
		Retry:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry catalog")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func newPanelKeys() panelKeyMap {
	return panelKeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j", "tab"), key.WithHelp("↓/j", "down")),
		Choose:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "choose")),
		Copy:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy")),
		Paste:    key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "paste")),
		Previous: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "copy previous")),
		Import:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "import NFT")),
		Reset:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reset cell")),
		Close:    key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "done")),
	}
}

func newPromptKeys() promptKeyMap {
	return promptKeyMap{
		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}
