package tui

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/giftgrid/internal/discovery"
)

// Messages for async operations
type scanStartMsg struct{}
type scanCompleteMsg struct {
	servers []*discovery.Server
	err     error
}

// discoveryKeyMap defines key bindings for the server picker
type discoveryKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Direct key.Binding
	Rescan key.Binding
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k discoveryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Direct, k.Rescan, k.Manual, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k discoveryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter},
		{k.Direct, k.Rescan, k.Manual, k.Quit},
	}
}

// serverItem wraps a Server for use with bubbles/list
type serverItem struct {
	server *discovery.Server
}

// FilterValue implements list.Item
func (s serverItem) FilterValue() string {
	return s.server.Instance + " " + s.server.IP + " " + s.server.Hostname
}

// serverDelegate renders each server as a card
type serverDelegate struct {
	width int
}

func (d serverDelegate) Height() int { return 6 }

func (d serverDelegate) Spacing() int { return 1 }

func (d serverDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d serverDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	si, ok := item.(serverItem)
	if !ok {
		return
	}
	srv := si.server
	selected := index == m.Index()

	var content strings.Builder
	if selected {
		content.WriteString(SelectedMenuItemStyle.Render("→ " + srv.Instance))
	} else {
		content.WriteString("  " + srv.Instance)
	}
	content.WriteString("\n")
	content.WriteString(fmt.Sprintf("  Address: %s\n", srv.BaseURL()))
	version := srv.Version
	if version == "" {
		version = "unknown"
	}
	content.WriteString(fmt.Sprintf("  Version: %s", version))

	cardWidth := min(max(d.width-6, MinTerminalWidth-6), MaxContentWidth-6)
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(0, 2).
		MarginLeft(2).
		Width(cardWidth)
	if selected {
		card = card.BorderForeground(HighlightColor)
	}

	fmt.Fprint(w, card.Render(content.String()))
}

// DiscoveryModel is the server picker shown before the editor when
// discovery is enabled. Choosing a server routes catalog traffic through
// it; choosing direct talks to the catalog upstream.
type DiscoveryModel struct {
	Scanning   bool
	ServerList list.Model
	Timeout    time.Duration
	Err        error

	// Done is set once the user picked a server or chose direct access.
	// Chosen is nil for direct access.
	Done   bool
	Chosen *discovery.Server

	ManualMode bool
	AddrInput  textinput.Model
	ManualErr  string

	Width         int
	Height        int
	Spinner       spinner.Model
	ProgressBar   progress.Model
	ScanStartTime time.Time
	Help          help.Model
	Keys          discoveryKeyMap
	PromptKeys    promptKeyMap
}

// NewDiscoveryModel creates the server picker
func NewDiscoveryModel(timeout time.Duration) DiscoveryModel {
	if timeout <= 0 {
		timeout = discovery.DefaultScanTimeout
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	addr := textinput.New()
	addr.Placeholder = fmt.Sprintf("192.168.1.20:%d", discovery.DefaultPort)
	addr.CharLimit = 253
	addr.Width = 40

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40

	servers := list.New([]list.Item{}, serverDelegate{width: MinTerminalWidth}, 0, 0)
	servers.Title = "giftgrid servers"
	servers.SetShowStatusBar(false)
	servers.SetFilteringEnabled(false)
	servers.Styles.Title = TitleStyle

	return DiscoveryModel{
		ServerList:  servers,
		Timeout:     timeout,
		AddrInput:   addr,
		Spinner:     s,
		ProgressBar: bar,
		Help:        help.New(),
		Keys: discoveryKeyMap{
			Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "move up")),
			Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "move down")),
			Enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "use server")),
			Direct: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "direct")),
			Rescan: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rescan")),
			Manual: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "enter address")),
			Quit:   key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
		},
		PromptKeys: newPromptKeys(),
	}
}

// Init starts scanning immediately
func (m DiscoveryModel) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return scanStartMsg{} },
		scanServers(m.Timeout),
		m.Spinner.Tick,
	)
}

// Update handles messages and updates the model
func (m DiscoveryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.ManualMode {
			return m.updateManualMode(msg)
		}
		return m.updateNormalMode(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.ServerList.SetDelegate(serverDelegate{width: msg.Width})
		m.ServerList.SetWidth(msg.Width - 4)
		m.ServerList.SetHeight(max(msg.Height-10, 8))

	case scanStartMsg:
		m.Scanning = true
		m.ScanStartTime = time.Now()

	case scanCompleteMsg:
		m.Scanning = false
		m.Err = msg.err
		items := make([]list.Item, len(msg.servers))
		for i, srv := range msg.servers {
			items[i] = serverItem{server: srv}
		}
		m.ServerList.SetItems(items)

	case spinner.TickMsg:
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	if !m.ManualMode && !m.Scanning {
		m.ServerList, cmd = m.ServerList.Update(msg)
	}
	return m, cmd
}

func (m DiscoveryModel) updateNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Direct):
		m.Done = true
		m.Chosen = nil
		return m, nil

	case key.Matches(msg, m.Keys.Manual):
		m.ManualMode = true
		m.ManualErr = ""
		m.AddrInput.SetValue("")
		m.AddrInput.Focus()
		return m, textinput.Blink

	case m.Scanning:
		return m, nil

	case key.Matches(msg, m.Keys.Enter):
		if item, ok := m.ServerList.SelectedItem().(serverItem); ok {
			m.Done = true
			m.Chosen = item.server
		}
		return m, nil

	case key.Matches(msg, m.Keys.Rescan):
		m.ServerList.SetItems([]list.Item{})
		m.Err = nil
		return m, tea.Batch(
			func() tea.Msg { return scanStartMsg{} },
			scanServers(m.Timeout),
			m.Spinner.Tick,
		)
	}

	var cmd tea.Cmd
	m.ServerList, cmd = m.ServerList.Update(msg)
	return m, cmd
}

func (m DiscoveryModel) updateManualMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.PromptKeys.Cancel):
		m.ManualMode = false
		m.AddrInput.Blur()
		return m, nil

	case key.Matches(msg, m.PromptKeys.Confirm):
		srv, err := ParseServerAddress(m.AddrInput.Value())
		if err != nil {
			m.ManualErr = err.Error()
			return m, nil
		}
		m.ManualMode = false
		m.AddrInput.Blur()
		items := append([]list.Item{serverItem{server: srv}}, m.ServerList.Items()...)
		m.ServerList.SetItems(items)
		m.ServerList.Select(0)
		return m, nil
	}

	var cmd tea.Cmd
	m.AddrInput, cmd = m.AddrInput.Update(msg)
	return m, cmd
}

// ParseServerAddress turns "host" or "host:port" into a Server
func ParseServerAddress(addr string) (*discovery.Server, error) {
	addr = strings.TrimSpace(addr)
	addr = strings.TrimPrefix(addr, "http://")
	addr = strings.TrimSuffix(addr, "/")
	if addr == "" {
		return nil, fmt.Errorf("address is empty")
	}

	host, port := addr, discovery.DefaultPort
	if h, p, err := net.SplitHostPort(addr); err == nil {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 || n > 65535 {
			return nil, fmt.Errorf("invalid port %q", p)
		}
		host, port = h, n
	}
	if host == "" || strings.ContainsAny(host, " /") {
		return nil, fmt.Errorf("invalid host %q", host)
	}

	return &discovery.Server{
		Instance:     "manual: " + net.JoinHostPort(host, strconv.Itoa(port)),
		Hostname:     host,
		IP:           host,
		Port:         port,
		DiscoveredAt: time.Now(),
	}, nil
}

// View renders the discovery screen
func (m DiscoveryModel) View() string {
	width := m.Width
	if width == 0 {
		width = MinTerminalWidth
	}

	var content, helpText string
	switch {
	case m.ManualMode:
		content = m.renderManualEntry()
		helpText = m.Help.View(m.PromptKeys)
	case m.Scanning:
		content = m.renderScanning(width)
		helpText = m.Help.View(m.Keys)
	default:
		content = m.renderResults()
		helpText = m.Help.View(m.Keys)
	}

	return RenderApplicationContainer(BuildHeaderContent(""), content, helpText, m.Width, m.Height)
}

func (m DiscoveryModel) renderScanning(width int) string {
	elapsed := time.Since(m.ScanStartTime)
	pct := min(elapsed.Seconds()/m.Timeout.Seconds(), 1)

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		TitleStyle.Render(m.Spinner.View()+" SEARCHING FOR SERVERS"),
		SubtitleStyle.Render("Looking for giftgrid servers on your network..."),
		"",
		m.ProgressBar.ViewAs(pct),
		"",
		SubtitleStyle.Render("Press d to skip and talk to the catalog directly"),
		"",
	)
	return lipgloss.Place(width, 0, lipgloss.Center, lipgloss.Top, content)
}

func (m DiscoveryModel) renderResults() string {
	var b strings.Builder
	b.WriteString("\n")

	switch {
	case m.Err != nil:
		b.WriteString(RenderError(fmt.Sprintf("Scan failed: %v", m.Err)))
		b.WriteString("\n\n")
		b.WriteString("  Press d to use the catalog directly, or m to enter an address.\n")
	case len(m.ServerList.Items()) == 0:
		warning := lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
		b.WriteString("  " + warning.Render("⚠ No giftgrid servers found on your network"))
		b.WriteString("\n\n")
		b.WriteString("  Troubleshooting:\n")
		b.WriteString("    • Start one with: giftgrid-server --advertise\n")
		b.WriteString("    • mDNS does not cross routers or most VPNs\n")
		b.WriteString("    • Press d to use the catalog directly\n")
	default:
		b.WriteString(m.ServerList.View())
	}
	return b.String()
}

func (m DiscoveryModel) renderManualEntry() string {
	var b strings.Builder
	b.WriteString(RenderSubtitle("Enter the server address"))
	b.WriteString("\n\n  Address: ")
	b.WriteString(m.AddrInput.View())
	b.WriteString("\n")
	if m.ManualErr != "" {
		b.WriteString("\n" + RenderError(m.ManualErr) + "\n")
	}
	return b.String()
}

// scanServers performs server discovery
func scanServers(timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		servers, err := discovery.Scan(context.Background(), timeout)
		return scanCompleteMsg{servers: servers, err: err}
	}
}
