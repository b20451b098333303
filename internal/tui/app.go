package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/muurk/giftgrid/internal/catalog"
	"github.com/muurk/giftgrid/internal/constructor"
	"github.com/muurk/giftgrid/internal/discovery"
	"github.com/muurk/giftgrid/internal/logging"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenDiscovery Screen = "discovery"
	ScreenEditor    Screen = "editor"
	ScreenFailure   Screen = "failure"
)

// Opener creates the workspace to edit. server is nil when the catalog is
// reached directly.
type Opener func(server *discovery.Server) (*constructor.Workspace, error)

// Options configures the application
type Options struct {
	Open Opener

	// Workspace is the label shown in the header
	Workspace   string
	ShowRibbons bool

	// Discover starts with the server picker
	Discover    bool
	ScanTimeout time.Duration

	// AutoSave saves the grid when the program exits
	AutoSave bool
}

// failureKeyMap defines key bindings for the failure screen
type failureKeyMap struct {
	Retry key.Binding
	Quit  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k failureKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Retry, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k failureKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Retry, k.Quit}}
}

// AppModel is the top-level coordinator model that manages screen transitions
type AppModel struct {
	CurrentScreen Screen
	Options       Options

	DiscoveryModel DiscoveryModel
	EditorModel    EditorModel

	workspace *constructor.Workspace
	server    *discovery.Server
	LastError error

	Width  int
	Height int

	Help        help.Model
	FailureKeys failureKeyMap
}

// NewAppModel creates the application. Without discovery the workspace is
// opened right away.
func NewAppModel(opts Options) AppModel {
	m := AppModel{
		Options: opts,
		Help:    help.New(),
		FailureKeys: failureKeyMap{
			Retry: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
			Quit:  key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
		},
	}

	if opts.Discover {
		m.CurrentScreen = ScreenDiscovery
		m.DiscoveryModel = NewDiscoveryModel(opts.ScanTimeout)
		return m
	}
	m, _ = m.open(nil)
	return m
}

// Workspace returns the workspace opened by the application, if any
func (m AppModel) Workspace() *constructor.Workspace {
	return m.workspace
}

// Init initializes the application
func (m AppModel) Init() tea.Cmd {
	switch m.CurrentScreen {
	case ScreenDiscovery:
		return m.DiscoveryModel.Init()
	case ScreenEditor:
		return m.EditorModel.Init()
	}
	return nil
}

// open creates the workspace and switches to the editor, or to the failure
// screen when the workspace cannot be created
func (m AppModel) open(server *discovery.Server) (AppModel, tea.Cmd) {
	m.server = server
	if m.Options.Open == nil {
		m.LastError = errors.New("no workspace configured")
		m.CurrentScreen = ScreenFailure
		return m, nil
	}

	ws, err := m.Options.Open(server)
	if err != nil {
		logging.Error("Failed to open workspace", zap.Error(err))
		m.LastError = err
		m.CurrentScreen = ScreenFailure
		return m, nil
	}

	m.workspace = ws
	m.LastError = nil
	m.CurrentScreen = ScreenEditor
	m.EditorModel = NewEditorModel(ws, m.label(), m.Options.ShowRibbons)
	m.EditorModel.Width = m.Width
	m.EditorModel.Height = m.Height
	return m, m.EditorModel.Init()
}

func (m AppModel) label() string {
	if m.server == nil {
		return m.Options.Workspace
	}
	if m.Options.Workspace == "" {
		return "via " + m.server.Instance
	}
	return m.Options.Workspace + " via " + m.server.Instance
}

// Update handles all messages and routes them to the appropriate screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		var c1, c2 tea.Cmd
		var updated tea.Model
		if m.Options.Discover {
			updated, c1 = m.DiscoveryModel.Update(msg)
			m.DiscoveryModel = updated.(DiscoveryModel)
		}
		if m.workspace != nil {
			updated, c2 = m.EditorModel.Update(msg)
			m.EditorModel = updated.(EditorModel)
		}
		return m, tea.Batch(c1, c2)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	switch m.CurrentScreen {
	case ScreenDiscovery:
		updated, cmd := m.DiscoveryModel.Update(msg)
		m.DiscoveryModel = updated.(DiscoveryModel)
		if m.DiscoveryModel.Done {
			return m.open(m.DiscoveryModel.Chosen)
		}
		return m, cmd

	case ScreenEditor:
		updated, cmd := m.EditorModel.Update(msg)
		m.EditorModel = updated.(EditorModel)
		return m, cmd

	case ScreenFailure:
		return m.updateFailure(msg)
	}
	return m, nil
}

func (m AppModel) updateFailure(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.FailureKeys.Retry):
		if m.Options.Discover {
			m.CurrentScreen = ScreenDiscovery
			m.DiscoveryModel = NewDiscoveryModel(m.Options.ScanTimeout)
			m.DiscoveryModel.Width, m.DiscoveryModel.Height = m.Width, m.Height
			return m, m.DiscoveryModel.Init()
		}
		return m.open(m.server)
	case key.Matches(keyMsg, m.FailureKeys.Quit):
		return m, tea.Quit
	}
	return m, nil
}

// View renders the current screen
func (m AppModel) View() string {
	switch m.CurrentScreen {
	case ScreenDiscovery:
		return m.DiscoveryModel.View()
	case ScreenEditor:
		return m.EditorModel.View()
	case ScreenFailure:
		return m.renderFailure()
	}
	return "Unknown screen"
}

func (m AppModel) renderFailure() string {
	var b strings.Builder
	b.WriteString(RenderTitle("✗ Could not open the workspace"))
	b.WriteString("\n")
	if m.LastError != nil {
		b.WriteString(RenderError(m.LastError.Error()))
		b.WriteString("\n\n")
		if hint := catalog.GetTroubleshootingHint(m.LastError); hint != "" {
			b.WriteString("  " + hint + "\n\n")
		}
	}
	b.WriteString("Troubleshooting:\n")
	b.WriteString("  • Check that the store directory is writable\n")
	if m.server != nil {
		b.WriteString(fmt.Sprintf("  • Check that %s is still running\n", m.server.BaseURL()))
	}
	return RenderApplicationContainer(BuildHeaderContent(m.Options.Workspace), b.String(), m.Help.View(m.FailureKeys), m.Width, m.Height)
}

// Run starts the program and blocks until the user quits. The workspace is
// saved when AutoSave is set, then closed.
func Run(opts Options, programOpts ...tea.ProgramOption) error {
	if len(programOpts) == 0 {
		programOpts = []tea.ProgramOption{tea.WithAltScreen()}
	}
	final, err := tea.NewProgram(NewAppModel(opts), programOpts...).Run()

	if app, ok := final.(AppModel); ok && app.workspace != nil {
		app.EditorModel.Close()
		if opts.AutoSave {
			if serr := app.workspace.Save(); serr != nil && !errors.Is(serr, constructor.ErrNoStorage) {
				logging.Warn("Auto-save failed", zap.Error(serr))
				if err == nil {
					err = fmt.Errorf("auto-save failed: %w", serr)
				}
			}
		}
		app.workspace.Close()
	}
	return err
}
