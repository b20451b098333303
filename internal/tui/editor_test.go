package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/giftgrid/internal/catalog"
	"github.com/muurk/giftgrid/internal/constructor"
	"github.com/muurk/giftgrid/internal/grid"
	"github.com/muurk/giftgrid/internal/persist"
	"github.com/muurk/giftgrid/internal/resolver"
	"github.com/muurk/giftgrid/internal/session"
)

type fakeSource struct {
	down bool
}

func (f *fakeSource) Gifts(ctx context.Context) ([]string, error) {
	if f.down {
		return nil, errors.New("catalog down")
	}
	return []string{"Desk Calendar", "Plush Pepe"}, nil
}

func (f *fakeSource) Backdrops(ctx context.Context) ([]catalog.Backdrop, error) {
	return []catalog.Backdrop{{Attribute: catalog.Attribute{Name: "Onyx"}, CenterColor: 0x333333}}, nil
}

func (f *fakeSource) BackdropsFor(ctx context.Context, gift string) ([]catalog.Backdrop, error) {
	return []catalog.Backdrop{{Attribute: catalog.Attribute{Name: "Onyx", RarityPermille: 12}}}, nil
}

func (f *fakeSource) ModelsFor(ctx context.Context, gift string) ([]catalog.Attribute, error) {
	return []catalog.Attribute{{Name: "Neon"}}, nil
}

func (f *fakeSource) PatternsFor(ctx context.Context, gift string) ([]catalog.Attribute, error) {
	return []catalog.Attribute{{Name: "Stripes"}, {Name: "Dots"}}, nil
}

func (f *fakeSource) IDToName(ctx context.Context) (map[string]string, error) {
	return map[string]string{"1": "Desk Calendar"}, nil
}

func newTestWorkspace(t *testing.T, src *fakeSource, preload bool) *constructor.Workspace {
	t.Helper()
	ws := constructor.New(constructor.Config{
		ID:         "tui",
		Resolver:   resolver.New(src),
		Gateway:    persist.NewGateway(persist.NewMemoryKV(), "tui"),
		PulseDelay: time.Millisecond,
	})
	t.Cleanup(ws.Close)
	if preload {
		require.NoError(t, ws.Preload(context.Background()))
	}
	return ws
}

func newTestEditor(t *testing.T, ws *constructor.Workspace) EditorModel {
	t.Helper()
	m := NewEditorModel(ws, "test", true)
	t.Cleanup(m.Close)
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
)

func press(t *testing.T, m EditorModel, keys ...tea.KeyMsg) EditorModel {
	t.Helper()
	for _, k := range keys {
		updated, _ := m.Update(k)
		m = updated.(EditorModel)
	}
	return m
}

func TestEditorRows(t *testing.T) {
	ws := newTestWorkspace(t, &fakeSource{}, true)
	m := newTestEditor(t, ws)

	m = press(t, m, runes("a"))
	assert.Equal(t, 4, ws.Snapshot().Rows())
	assert.Equal(t, 4, m.grid.Rows())

	m = press(t, m, runes("d"), runes("d"))
	assert.Equal(t, grid.MinRows, ws.Snapshot().Rows())
	assert.True(t, m.noticeWarn)
	assert.Contains(t, m.notice, "fewer than 3 rows")
}

func TestEditorKeyboardDragSwaps(t *testing.T) {
	ws := newTestWorkspace(t, &fakeSource{}, true)
	_, err := ws.ApplyAttributes("c1", grid.Attributes{Gift: "Desk Calendar"})
	require.NoError(t, err)
	m := newTestEditor(t, ws)

	m = press(t, m, keySpace)
	require.True(t, m.drag.Active())
	assert.Equal(t, grid.CellID("c1"), m.drag.Source())

	m = press(t, m, runes("l"), keySpace)
	assert.False(t, m.drag.Active())
	assert.Equal(t, "Cells swapped", m.notice)

	c1, err := ws.Snapshot().At(0, 0)
	require.NoError(t, err)
	c2, err := ws.Snapshot().At(0, 1)
	require.NoError(t, err)
	assert.True(t, c1.IsEmpty)
	assert.Equal(t, "Desk Calendar", c2.Gift)
}

func TestEditorDragDroppedOnSourceCancels(t *testing.T) {
	ws := newTestWorkspace(t, &fakeSource{}, true)
	m := newTestEditor(t, ws)
	before := ws.Snapshot()

	m = press(t, m, keySpace, keySpace)
	assert.False(t, m.drag.Active())
	assert.Equal(t, "Move cancelled", m.notice)
	assert.Equal(t, before.Cells(), ws.Snapshot().Cells())
}

func TestEditorOpenBeforeReady(t *testing.T) {
	ws := newTestWorkspace(t, &fakeSource{down: true}, false)
	m := newTestEditor(t, ws)
	require.True(t, m.preloading)

	updated, _ := m.Update(preloadDoneMsg{err: errors.New("catalog down")})
	m = updated.(EditorModel)
	assert.False(t, m.preloading)
	assert.True(t, m.noticeWarn)

	m = press(t, m, keyEnter)
	assert.Equal(t, modeGrid, m.mode)
	assert.Equal(t, "Catalog not loaded. Press r to retry.", m.notice)
	assert.Equal(t, session.Closed.String(), ws.SessionView().State)

	updated, cmd := m.Update(runes("r"))
	m = updated.(EditorModel)
	assert.True(t, m.preloading)
	assert.NotNil(t, cmd)
}

func TestEditorPreloadDone(t *testing.T) {
	ws := newTestWorkspace(t, &fakeSource{}, false)
	m := newTestEditor(t, ws)
	require.False(t, m.ready)

	require.NoError(t, ws.Preload(context.Background()))
	updated, _ := m.Update(preloadDoneMsg{})
	m = updated.(EditorModel)

	assert.True(t, m.ready)
	assert.Equal(t, []string{"Desk Calendar", "Plush Pepe"}, m.gifts)
	assert.Equal(t, "Catalog loaded: 2 gifts", m.notice)
}

func TestEditorChooseGift(t *testing.T) {
	ws := newTestWorkspace(t, &fakeSource{}, true)
	m := newTestEditor(t, ws)

	m = press(t, m, keyEnter)
	require.Equal(t, modePanel, m.mode)
	assert.Equal(t, grid.CellID("c1"), m.view.CellID)

	m = press(t, m, keyEnter)
	require.Equal(t, modeChoose, m.mode)
	assert.Len(t, m.chooser.Items(), 3)

	m = press(t, m, keyDown, keyEnter)
	assert.Equal(t, modePanel, m.mode)
	ws.Wait()

	view := ws.SessionView()
	assert.Equal(t, "Desk Calendar", view.Working.Gift)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, modeGrid, m.mode)
	assert.Equal(t, session.Closed.String(), ws.SessionView().State)
}

func TestEditorChooserNeedsGift(t *testing.T) {
	ws := newTestWorkspace(t, &fakeSource{}, true)
	m := newTestEditor(t, ws)

	m = press(t, m, keyEnter, keyDown, keyEnter)
	assert.Equal(t, modePanel, m.mode)
	assert.Equal(t, "Choose a gift first", m.notice)
}

func TestEditorFullReset(t *testing.T) {
	tests := []struct {
		name  string
		typed string
		rows  int
	}{
		{name: "confirmed", typed: "RESET", rows: grid.DefaultRows},
		{name: "wrong phrase", typed: "reset", rows: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := newTestWorkspace(t, &fakeSource{}, true)
			m := newTestEditor(t, ws)

			m = press(t, m, runes("a"), runes("R"))
			require.Equal(t, modeConfirmReset, m.mode)
			assert.Contains(t, m.View(), "RESET")

			m = press(t, m, runes(tt.typed), keyEnter)
			assert.Equal(t, modeGrid, m.mode)
			assert.Equal(t, tt.rows, ws.Snapshot().Rows())
		})
	}
}

func TestEditorEvents(t *testing.T) {
	ws := newTestWorkspace(t, &fakeSource{}, true)
	m := newTestEditor(t, ws)

	updated, cmd := m.Update(eventMsg{event: constructor.Event{Kind: constructor.EventPulse}, ok: true})
	m = updated.(EditorModel)
	assert.True(t, m.pulse)
	assert.NotNil(t, cmd)

	updated, _ = m.Update(pulseEndMsg{})
	m = updated.(EditorModel)
	assert.False(t, m.pulse)

	notice := &constructor.Notice{Level: constructor.NoticeWarning, Message: "Ribbon lookup failed"}
	updated, _ = m.Update(eventMsg{event: constructor.Event{Kind: constructor.EventNotice, Notice: notice}, ok: true})
	m = updated.(EditorModel)
	assert.Equal(t, "Ribbon lookup failed", m.notice)
	assert.True(t, m.noticeWarn)

	updated, _ = m.Update(eventMsg{ok: false})
	m = updated.(EditorModel)
	assert.Nil(t, m.events)
}

func TestImportError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{constructor.ErrSessionChanged, "Import finished after you left the cell; nothing was changed"},
		{constructor.ErrUnknownGift, "The collectible's gift is not in the catalog"},
		{errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, importError(tt.err))
	}
}
