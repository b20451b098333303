package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/giftgrid/internal/catalog"
	"github.com/muurk/giftgrid/internal/constructor"
	"github.com/muurk/giftgrid/internal/nft"
	"github.com/muurk/giftgrid/internal/resolver"
)

// Timeouts for work started from the UI
const (
	preloadTimeout = 30 * time.Second
	importTimeout  = 15 * time.Second
	colorTimeout   = 10 * time.Second
	pulseDuration  = 400 * time.Millisecond
)

// Messages for async operations
type eventMsg struct {
	event constructor.Event
	ok    bool
}

type preloadDoneMsg struct {
	err error
}

type importDoneMsg struct {
	gift nft.Gift
	err  error
}

type colorsMsg struct {
	key    string
	colors catalog.Colors
	ok     bool
}

type pulseEndMsg struct{}

// waitForEvent delivers the next workspace event
func waitForEvent(events <-chan constructor.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		return eventMsg{event: ev, ok: ok}
	}
}

func preloadCmd(ws *constructor.Workspace) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), preloadTimeout)
		defer cancel()
		return preloadDoneMsg{err: ws.Preload(ctx)}
	}
}

func importCmd(ws *constructor.Workspace, slug string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()
		g, err := ws.ImportNFT(ctx, slug)
		return importDoneMsg{gift: g, err: err}
	}
}

func colorsCmd(res *resolver.Resolver, gift, backdrop string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), colorTimeout)
		defer cancel()
		c, ok := res.BackdropColors(ctx, gift, backdrop)
		return colorsMsg{key: colorKey(gift, backdrop), colors: c, ok: ok}
	}
}

func pulseEnd() tea.Cmd {
	return tea.Tick(pulseDuration, func(time.Time) tea.Msg { return pulseEndMsg{} })
}

func colorKey(gift, backdrop string) string {
	return gift + "\x00" + backdrop
}
