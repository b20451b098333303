package tui

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/giftgrid/internal/catalog"
	"github.com/muurk/giftgrid/internal/constructor"
	"github.com/muurk/giftgrid/internal/grid"
	"github.com/muurk/giftgrid/internal/nft"
	"github.com/muurk/giftgrid/internal/session"
	"github.com/muurk/giftgrid/internal/ui"
)

// editorMode is what keyboard input currently drives
type editorMode int

const (
	modeGrid editorMode = iota
	modePanel
	modeChoose
	modeImport
	modeConfirmReset
	modeHelp
)

// noneChoice clears a field from the choice list
const noneChoice = "(none)"

var fields = []session.Field{session.FieldGift, session.FieldModel, session.FieldBackdrop, session.FieldPattern}

// choiceItem is one entry of the choice list
type choiceItem string

func (c choiceItem) FilterValue() string { return string(c) }

// choiceDelegate renders choices one per line
type choiceDelegate struct{}

func (choiceDelegate) Height() int                               { return 1 }
func (choiceDelegate) Spacing() int                              { return 0 }
func (choiceDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (choiceDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	c, ok := item.(choiceItem)
	if !ok {
		return
	}
	fmt.Fprint(w, RenderMenuItem(string(c), index == m.Index()))
}

// EditorModel is the grid editor screen. Every change goes through the
// workspace; the model mirrors the workspace through its event feed.
type EditorModel struct {
	Workspace   *constructor.Workspace
	Label       string
	ShowRibbons bool

	events      <-chan constructor.Event
	unsubscribe func()

	// Mirrored workspace state
	grid  grid.Grid
	view  session.View
	ready bool
	gifts []string

	preloading bool
	preloadErr error
	importing  bool

	// Navigation
	cursorRow int
	cursorCol int
	drag      *grid.DragSession

	mode        editorMode
	helpReturn  editorMode
	field       session.Field
	chooseField session.Field
	chooser     list.Model
	slugInput   textinput.Model
	resetInput  textinput.Model

	colors    map[string]catalog.Colors
	requested map[string]bool
	pulse     bool

	notice     string
	noticeWarn bool

	Width  int
	Height int

	Spinner    spinner.Model
	Help       help.Model
	GridKeys   gridKeyMap
	PanelKeys  panelKeyMap
	PromptKeys promptKeyMap
}

// NewEditorModel creates the editor over ws and subscribes to its events.
// Call Close when done.
func NewEditorModel(ws *constructor.Workspace, label string, showRibbons bool) EditorModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	chooser := list.New([]list.Item{}, choiceDelegate{}, PanelWidth, 12)
	chooser.SetShowStatusBar(false)
	chooser.SetShowHelp(false)
	chooser.SetFilteringEnabled(true)
	chooser.Styles.Title = lipgloss.NewStyle().Foreground(PrimaryColor).Bold(true)

	slug := textinput.New()
	slug.Placeholder = "DeskCalendar-7 or t.me/nft/..."
	slug.CharLimit = 200
	slug.Width = PanelWidth - 4

	reset := textinput.New()
	reset.Placeholder = ui.ResetPhrase
	reset.CharLimit = 16
	reset.Width = 20

	events, unsubscribe := ws.Subscribe(constructor.DefaultEventBuffer)

	m := EditorModel{
		Workspace:   ws,
		Label:       label,
		ShowRibbons: showRibbons,
		events:      events,
		unsubscribe: unsubscribe,
		drag:        grid.NewDragSession(grid.KeyboardThresholds),
		chooser:     chooser,
		slugInput:   slug,
		resetInput:  reset,
		colors:      make(map[string]catalog.Colors),
		requested:   make(map[string]bool),
		Spinner:     s,
		Help:        help.New(),
		GridKeys:    newGridKeys(),
		PanelKeys:   newPanelKeys(),
		PromptKeys:  newPromptKeys(),
	}
	m.refresh()
	m.preloading = !m.ready
	return m
}

// Close ends the event subscription
func (m EditorModel) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Init starts the event feed, the spinner, the catalog preload when needed
// and the color lookups of the initial grid
func (m EditorModel) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForEvent(m.events), m.Spinner.Tick}
	if m.preloading {
		cmds = append(cmds, preloadCmd(m.Workspace))
	}
	cmds = append(cmds, m.colorCmds()...)
	return tea.Batch(cmds...)
}

// refresh copies the workspace state into the model
func (m *EditorModel) refresh() {
	m.grid = m.Workspace.Snapshot()
	m.view = m.Workspace.SessionView()
	if ref, ok := m.Workspace.Reference(); ok {
		m.ready = true
		m.gifts = ref.Gifts
	}
	m.clampCursor()
	if m.view.State != session.Open.String() && (m.mode == modePanel || m.mode == modeChoose || m.mode == modeImport) {
		m.mode = modeGrid
	}
}

// colorCmds requests the backdrop palettes not looked up yet
func (m *EditorModel) colorCmds() []tea.Cmd {
	res := m.Workspace.Resolver()
	if res == nil {
		return nil
	}
	var cmds []tea.Cmd
	for _, c := range m.grid.Cells() {
		if c.IsEmpty || c.Backdrop == "" {
			continue
		}
		k := colorKey(c.Gift, c.Backdrop)
		if m.requested[k] {
			continue
		}
		m.requested[k] = true
		cmds = append(cmds, colorsCmd(res, c.Gift, c.Backdrop))
	}
	return cmds
}

func (m *EditorModel) clampCursor() {
	m.cursorRow = min(max(m.cursorRow, 0), max(m.grid.Rows()-1, 0))
	m.cursorCol = min(max(m.cursorCol, 0), max(m.grid.Cols()-1, 0))
}

// cursorCell returns the cell under the cursor
func (m EditorModel) cursorCell() (grid.Cell, bool) {
	c, err := m.grid.At(m.cursorRow, m.cursorCol)
	return c, err == nil
}

func (m *EditorModel) info(msg string) {
	m.notice, m.noticeWarn = msg, false
}

func (m *EditorModel) warn(msg string) {
	m.notice, m.noticeWarn = msg, true
}

// Update handles messages and updates the model
func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.chooser.SetSize(PanelWidth, max(msg.Height-16, 6))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case eventMsg:
		if !msg.ok {
			m.events = nil
			return m, nil
		}
		cmds := m.handleEvent(msg.event)
		cmds = append(cmds, waitForEvent(m.events))
		return m, tea.Batch(cmds...)

	case preloadDoneMsg:
		m.preloading = false
		m.preloadErr = msg.err
		if msg.err != nil {
			m.warn(catalog.GetShortErrorMessage(msg.err) + ". Press r to retry.")
			return m, nil
		}
		m.refresh()
		m.info(fmt.Sprintf("Catalog loaded: %d gifts", len(m.gifts)))
		return m, nil

	case importDoneMsg:
		m.importing = false
		m.refresh()
		if msg.err != nil {
			m.warn(importError(msg.err))
			return m, nil
		}
		m.info(fmt.Sprintf("Imported %s #%d", msg.gift.Gift, msg.gift.Number))
		return m, tea.Batch(m.colorCmds()...)

	case colorsMsg:
		if msg.ok {
			m.colors[msg.key] = msg.colors
		}
		return m, nil

	case pulseEndMsg:
		m.pulse = false
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modePanel:
			return m.updatePanel(msg)
		case modeChoose:
			return m.updateChooser(msg)
		case modeImport:
			return m.updateImport(msg)
		case modeConfirmReset:
			return m.updateConfirmReset(msg)
		case modeHelp:
			m.mode = m.helpReturn
			return m, nil
		default:
			return m.updateGrid(msg)
		}
	}

	// Filtering and cursor blink messages
	var cmd tea.Cmd
	switch m.mode {
	case modeChoose:
		m.chooser, cmd = m.chooser.Update(msg)
	case modeImport:
		m.slugInput, cmd = m.slugInput.Update(msg)
	case modeConfirmReset:
		m.resetInput, cmd = m.resetInput.Update(msg)
	}
	return m, cmd
}

func (m *EditorModel) handleEvent(ev constructor.Event) []tea.Cmd {
	switch ev.Kind {
	case constructor.EventGrid:
		if ev.Grid != nil {
			m.grid = *ev.Grid
			m.clampCursor()
		}
		return m.colorCmds()

	case constructor.EventSession:
		if ev.Session != nil {
			m.view = *ev.Session
			if m.view.State != session.Open.String() && (m.mode == modePanel || m.mode == modeChoose || m.mode == modeImport) {
				m.mode = modeGrid
			}
			if m.mode == modeChoose && m.chooseField != session.FieldGift {
				m.setChoices(m.chooseField)
			}
		}

	case constructor.EventPulse:
		m.pulse = true
		return []tea.Cmd{pulseEnd()}

	case constructor.EventNotice:
		if ev.Notice != nil {
			if ev.Notice.Level == constructor.NoticeWarning {
				m.warn(ev.Notice.Message)
			} else {
				m.info(ev.Notice.Message)
			}
		}
	}
	return nil
}

// updateGrid handles keys while no cell is being edited
func (m EditorModel) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.GridKeys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit

	case key.Matches(msg, k.Help):
		m.helpReturn, m.mode = m.mode, modeHelp

	case key.Matches(msg, k.Up):
		m.moveCursor(-1, 0)
	case key.Matches(msg, k.Down):
		m.moveCursor(1, 0)
	case key.Matches(msg, k.Left):
		m.moveCursor(0, -1)
	case key.Matches(msg, k.Right):
		m.moveCursor(0, 1)

	case key.Matches(msg, k.Drag):
		m.pickOrDrop()

	case key.Matches(msg, k.Cancel):
		if m.drag.Active() {
			m.drag.Cancel()
			m.drag.Reset()
			m.info("Move cancelled")
		}

	case key.Matches(msg, k.Edit):
		if m.drag.Active() {
			return m, nil
		}
		return m.openCursorCell()

	case key.Matches(msg, k.Clear):
		if c, ok := m.cursorCell(); ok && m.Workspace.ResetCell(c.ID) {
			m.info("Cell cleared")
		}

	case key.Matches(msg, k.AddRow):
		m.Workspace.AddRow(grid.EdgeBottom)
	case key.Matches(msg, k.AddTop):
		m.Workspace.AddRow(grid.EdgeTop)
	case key.Matches(msg, k.RemoveRow):
		if !m.Workspace.RemoveRow(grid.EdgeBottom) {
			m.warn(fmt.Sprintf("The grid cannot have fewer than %d rows", grid.MinRows))
		}
	case key.Matches(msg, k.RemoveTop):
		if !m.Workspace.RemoveRow(grid.EdgeTop) {
			m.warn(fmt.Sprintf("The grid cannot have fewer than %d rows", grid.MinRows))
		}

	case key.Matches(msg, k.Save):
		if err := m.Workspace.Save(); errors.Is(err, constructor.ErrNoStorage) {
			m.warn("This workspace has no storage; the grid lives in memory only")
		}

	case key.Matches(msg, k.FullReset):
		m.mode = modeConfirmReset
		m.resetInput.SetValue("")
		m.resetInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, k.Retry):
		if !m.ready && !m.preloading {
			m.preloading = true
			m.preloadErr = nil
			m.info("Loading catalog...")
			return m, preloadCmd(m.Workspace)
		}
	}

	m.refresh()
	return m, tea.Batch(m.colorCmds()...)
}

// moveCursor moves the cursor and carries a picked-up cell with it
func (m *EditorModel) moveCursor(dr, dc int) {
	m.cursorRow += dr
	m.cursorCol += dc
	m.clampCursor()
	if m.drag.Active() {
		c, _ := m.cursorCell()
		m.drag.Move(m.cursorPoint(), c.ID, time.Now())
	}
}

func (m EditorModel) cursorPoint() grid.Point {
	return grid.Point{X: float64(m.cursorCol), Y: float64(m.cursorRow)}
}

// pickOrDrop starts a keyboard drag on the cursor cell, or drops the
// dragged cell onto it
func (m *EditorModel) pickOrDrop() {
	c, ok := m.cursorCell()
	if !ok {
		return
	}
	now := time.Now()
	if !m.drag.Active() {
		m.drag.Begin(c.ID, m.cursorPoint(), now)
		m.info("Move the cursor and press space to drop, esc to cancel")
		return
	}
	if _, _, ok := m.drag.Release(m.cursorPoint(), c.ID, now); ok && m.Workspace.Drop(m.drag) {
		m.info("Cells swapped")
	} else {
		m.info("Move cancelled")
	}
	m.drag.Reset()
}

func (m EditorModel) openCursorCell() (tea.Model, tea.Cmd) {
	c, ok := m.cursorCell()
	if !ok {
		return m, nil
	}
	err := m.Workspace.Open(c.ID)
	switch {
	case errors.Is(err, constructor.ErrNotReady):
		if m.preloading {
			m.warn("Catalog still loading, try again in a moment")
		} else {
			m.warn("Catalog not loaded. Press r to retry.")
		}
		return m, nil
	case err != nil:
		m.warn(err.Error())
		return m, nil
	}
	m.mode = modePanel
	m.field = session.FieldGift
	m.notice = ""
	m.refresh()
	return m, nil
}

// updatePanel handles keys while a cell is being edited
func (m EditorModel) updatePanel(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.PanelKeys
	switch {
	case key.Matches(msg, k.Up):
		m.field = fields[(slices.Index(fields, m.field)+len(fields)-1)%len(fields)]
	case key.Matches(msg, k.Down):
		m.field = fields[(slices.Index(fields, m.field)+1)%len(fields)]

	case key.Matches(msg, k.Choose):
		if m.openChooser(m.field) {
			return m, nil
		}

	case key.Matches(msg, k.Copy):
		if m.Workspace.Copy() {
			m.info("Attributes copied")
		} else {
			m.warn("Nothing to copy: choose a gift first")
		}
	case key.Matches(msg, k.Paste):
		if !m.Workspace.Paste() {
			m.warn("Clipboard is empty")
		}
	case key.Matches(msg, k.Previous):
		if !m.Workspace.CopyPrevious() {
			m.warn("No other filled cell to copy from")
		}

	case key.Matches(msg, k.Import):
		m.mode = modeImport
		m.slugInput.SetValue("")
		m.slugInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, k.Reset):
		if err := m.Workspace.ResetAndClose(); err != nil {
			m.warn(err.Error())
		}
		m.mode = modeGrid
	case key.Matches(msg, k.Close):
		m.Workspace.CloseSession()
		m.mode = modeGrid
	}

	m.refresh()
	return m, tea.Batch(m.colorCmds()...)
}

// openChooser shows the choice list for f. It returns false with a notice
// when there is nothing to choose from.
func (m *EditorModel) openChooser(f session.Field) bool {
	if f != session.FieldGift {
		switch {
		case !m.view.Working.HasGift():
			m.warn("Choose a gift first")
			return false
		case m.view.Loading:
			m.warn("Choices are still loading")
			return false
		case m.view.IsUnavailable(f):
			m.warn(fmt.Sprintf("The %s list could not be loaded", f))
			return false
		}
	}
	m.chooseField = f
	m.setChoices(f)
	m.chooser.ResetFilter()
	m.mode = modeChoose
	return true
}

// setChoices fills the choice list for f and selects the current value
func (m *EditorModel) setChoices(f session.Field) {
	values := m.gifts
	if f != session.FieldGift {
		values = m.view.Choices(f)
	}
	items := make([]list.Item, 0, len(values)+1)
	items = append(items, choiceItem(noneChoice))
	for _, v := range values {
		items = append(items, choiceItem(v))
	}
	m.chooser.SetItems(items)
	m.chooser.Title = "Choose " + f.String()

	current := f.Get(m.view.Working)
	idx := 0
	if i := slices.Index(values, current); i >= 0 {
		idx = i + 1
	}
	m.chooser.Select(idx)
}

// updateChooser handles keys while the choice list is shown
func (m EditorModel) updateChooser(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.chooser.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.PromptKeys.Cancel):
			m.mode = modePanel
			return m, nil
		case key.Matches(msg, m.PromptKeys.Confirm):
			item, ok := m.chooser.SelectedItem().(choiceItem)
			if !ok {
				return m, nil
			}
			value := string(item)
			if value == noneChoice {
				value = ""
			}
			if err := m.Workspace.Edit(m.chooseField, value); err != nil {
				m.warn(err.Error())
			}
			m.mode = modePanel
			m.refresh()
			return m, tea.Batch(m.colorCmds()...)
		}
	}

	var cmd tea.Cmd
	m.chooser, cmd = m.chooser.Update(msg)
	return m, cmd
}

// updateImport handles the collectible slug prompt
func (m EditorModel) updateImport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.PromptKeys.Cancel):
		m.slugInput.Blur()
		m.mode = modePanel
		return m, nil
	case key.Matches(msg, m.PromptKeys.Confirm):
		slug := strings.TrimSpace(m.slugInput.Value())
		m.slugInput.Blur()
		m.mode = modePanel
		if slug == "" {
			return m, nil
		}
		m.importing = true
		m.info("Importing " + slug + "...")
		return m, importCmd(m.Workspace, slug)
	}

	var cmd tea.Cmd
	m.slugInput, cmd = m.slugInput.Update(msg)
	return m, cmd
}

// updateConfirmReset handles the typed confirmation of a full reset
func (m EditorModel) updateConfirmReset(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.PromptKeys.Cancel):
		m.resetInput.Blur()
		m.mode = modeGrid
		m.info("Full reset cancelled")
		return m, nil
	case key.Matches(msg, m.PromptKeys.Confirm):
		m.resetInput.Blur()
		m.mode = modeGrid
		if strings.TrimSpace(m.resetInput.Value()) != ui.ResetPhrase {
			m.info("Full reset cancelled")
			return m, nil
		}
		if err := m.Workspace.FullReset(true); err != nil {
			m.warn(err.Error())
		}
		m.drag.Reset()
		m.cursorRow, m.cursorCol = 0, 0
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.resetInput, cmd = m.resetInput.Update(msg)
	return m, cmd
}

func importError(err error) string {
	switch {
	case errors.Is(err, nft.ErrInvalidSlug):
		return "Not a collectible link or slug"
	case errors.Is(err, nft.ErrNoAttributes):
		return "The collectible page has no attributes"
	case errors.Is(err, constructor.ErrSessionChanged):
		return "Import finished after you left the cell; nothing was changed"
	case errors.Is(err, constructor.ErrUnknownGift):
		return "The collectible's gift is not in the catalog"
	case catalog.IsNotFound(err):
		return "Collectible not found"
	case catalog.IsNetworkError(err):
		return catalog.GetShortErrorMessage(err)
	}
	return err.Error()
}

// View renders the editor
func (m EditorModel) View() string {
	switch m.mode {
	case modeConfirmReset:
		return RenderModal(m.renderConfirmReset(), m.Width, m.Height)
	case modeHelp:
		return RenderModal(m.renderHelp(), m.Width, m.Height)
	}

	body := m.renderGrid()
	if m.mode == modePanel || m.mode == modeChoose || m.mode == modeImport {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, "  ", m.renderPanel())
	}
	content := lipgloss.JoinVertical(lipgloss.Left, m.renderStatus(), "", body)

	return RenderApplicationContainer(BuildHeaderContent(m.Label), content, m.helpView(), m.Width, m.Height)
}

func (m EditorModel) helpView() string {
	switch m.mode {
	case modePanel:
		return m.Help.View(m.PanelKeys)
	case modeChoose, modeImport:
		return m.Help.View(m.PromptKeys)
	}
	return m.Help.View(m.GridKeys)
}

func (m EditorModel) renderStatus() string {
	var parts []string
	parts = append(parts, m.grid.Summary())

	switch {
	case m.preloading:
		parts = append(parts, m.Spinner.View()+" Loading catalog")
	case !m.ready:
		parts = append(parts, UnavailableStyle.Render("Catalog unavailable, press r to retry"))
	}
	if m.importing {
		parts = append(parts, m.Spinner.View()+" Importing")
	}
	line := strings.Join(parts, "  ·  ")

	if m.notice != "" {
		style := NoticeInfoStyle
		if m.noticeWarn {
			style = NoticeWarningStyle
		}
		line = lipgloss.JoinVertical(lipgloss.Left, line, style.Render(m.notice))
	}
	return line
}

func (m EditorModel) renderGrid() string {
	states := make(map[grid.CellID]ui.TileState)
	if c, ok := m.cursorCell(); ok {
		states[c.ID] = ui.TileCursor
	}
	if m.view.State == session.Open.String() {
		states[m.view.CellID] = ui.TileEditing
	}
	if m.drag.Active() {
		states[m.drag.Source()] = ui.TileDragSource
		if t := m.drag.Target(); t != "" {
			states[t] = ui.TileDropTarget
		}
	}

	return ui.RenderGrid(m.grid, ui.GridOptions{
		Palette:    m.palette,
		ShowRibbon: m.ShowRibbons,
		Pulse:      m.pulse,
		State:      states,
	})
}

func (m EditorModel) palette(c grid.Cell) (catalog.Colors, bool) {
	col, ok := m.colors[colorKey(c.Gift, c.Backdrop)]
	return col, ok
}

func (m EditorModel) renderPanel() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Editing " + string(m.view.CellID)))
	b.WriteString("\n\n")

	for _, f := range fields {
		value := f.Get(m.view.Working)
		if value == "" {
			value = "-"
		}
		label := FieldLabelStyle.Render(strings.ToUpper(f.String()[:1]) + f.String()[1:] + ":")
		line := label + FieldValueStyle.Render(value)
		switch {
		case f != session.FieldGift && m.view.Loading:
			line += " " + m.Spinner.View()
		case f != session.FieldGift && m.view.IsUnavailable(f):
			line += " " + UnavailableStyle.Render("(unavailable)")
		}
		if f == m.field && m.mode == modePanel {
			b.WriteString(SelectedMenuItemStyle.Render("→ ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	var hints []string
	if m.view.CanPaste {
		hints = append(hints, "v paste")
	}
	if m.view.HasPrevious {
		hints = append(hints, "p copy previous")
	}
	if len(hints) > 0 {
		b.WriteString("\n" + SubtitleStyle.Render(strings.Join(hints, " · ")) + "\n")
	}

	switch m.mode {
	case modeChoose:
		b.WriteString("\n" + m.chooser.View())
	case modeImport:
		b.WriteString("\nCollectible:\n" + m.slugInput.View())
	}

	return PanelStyle.Render(b.String())
}

func (m EditorModel) renderConfirmReset() string {
	c := ui.FullResetConfirmation(m.Label)
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(WarningColor).Bold(true).Render("⚠  " + c.Title))
	b.WriteString("\n\n")
	for _, w := range c.Warnings {
		b.WriteString("• " + w + "\n")
	}
	b.WriteString("\n" + SubtitleStyle.Render(c.Disclaimer) + "\n\n")
	b.WriteString(fmt.Sprintf("Type %q and press enter:\n", c.Phrase))
	b.WriteString(m.resetInput.View())
	return ModalStyle.Width(SafeModalWidth(60, m.Width)).Render(b.String())
}

func (m EditorModel) renderHelp() string {
	h := m.Help
	h.ShowAll = true
	content := lipgloss.JoinVertical(lipgloss.Left,
		RenderTitle("Keys"),
		"Grid", h.View(m.GridKeys), "",
		"Editing", h.View(m.PanelKeys), "",
		SubtitleStyle.Render("Press any key to close"),
	)
	return ModalStyle.BorderForeground(PrimaryColor).Width(SafeModalWidth(80, m.Width)).Render(content)
}
