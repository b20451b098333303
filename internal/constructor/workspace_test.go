package constructor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/muurk/giftgrid/internal/catalog"
	"github.com/muurk/giftgrid/internal/grid"
	"github.com/muurk/giftgrid/internal/nft"
	"github.com/muurk/giftgrid/internal/persist"
	"github.com/muurk/giftgrid/internal/resolver"
	"github.com/muurk/giftgrid/internal/session"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSource struct {
	mu       sync.Mutex
	gate     map[string]chan struct{}
	failGift bool
}

func (f *fakeSource) wait(gift string) {
	f.mu.Lock()
	ch := f.gate[gift]
	f.mu.Unlock()
	if ch != nil {
		<-ch
	}
}

func (f *fakeSource) Gifts(ctx context.Context) ([]string, error) {
	if f.failGift {
		return nil, errors.New("catalog down")
	}
	return []string{"Desk Calendar", "Plush Pepe"}, nil
}

func (f *fakeSource) Backdrops(ctx context.Context) ([]catalog.Backdrop, error) {
	return []catalog.Backdrop{{Attribute: catalog.Attribute{Name: "Onyx"}, CenterColor: 0x333333}}, nil
}

func (f *fakeSource) BackdropsFor(ctx context.Context, gift string) ([]catalog.Backdrop, error) {
	f.wait(gift)
	return []catalog.Backdrop{{Attribute: catalog.Attribute{Name: "Onyx", RarityPermille: 12}}}, nil
}

func (f *fakeSource) ModelsFor(ctx context.Context, gift string) ([]catalog.Attribute, error) {
	f.wait(gift)
	return []catalog.Attribute{{Name: "Neon"}, {Name: "Original"}}, nil
}

func (f *fakeSource) PatternsFor(ctx context.Context, gift string) ([]catalog.Attribute, error) {
	f.wait(gift)
	if gift == "Plush Pepe" {
		return []catalog.Attribute{{Name: "Hearts"}}, nil
	}
	return []catalog.Attribute{{Name: "Stripes"}, {Name: "Dots"}}, nil
}

func (f *fakeSource) IDToName(ctx context.Context) (map[string]string, error) {
	return map[string]string{"1": "Desk Calendar"}, nil
}

type fakeNFT struct{}

func (fakeNFT) Resolve(ctx context.Context, slug string) (nft.Gift, error) {
	if slug != "PlushPepe-42" {
		return nft.Gift{}, nft.ErrInvalidSlug
	}
	return nft.Gift{Slug: slug, Gift: "Plush Pepe", Number: 42, Model: "Frog", Backdrop: "Onyx", Pattern: "Hearts"}, nil
}

func newWorkspace(t *testing.T, src *fakeSource, gw *persist.Gateway) *Workspace {
	t.Helper()
	w := New(Config{
		ID:         "test",
		Resolver:   resolver.New(src),
		Gateway:    gw,
		NFT:        fakeNFT{},
		PulseDelay: time.Millisecond,
	})
	t.Cleanup(w.Close)
	require.NoError(t, w.Preload(context.Background()))
	return w
}

func cellAt(t *testing.T, w *Workspace, row, col int) grid.Cell {
	t.Helper()
	c, err := w.Snapshot().At(row, col)
	require.NoError(t, err)
	return c
}

func TestDeskCalendarScenario(t *testing.T) {
	w := newWorkspace(t, &fakeSource{}, nil)

	g := w.Snapshot()
	require.Len(t, g.Cells(), 9)
	for i, c := range g.Cells() {
		assert.True(t, c.IsEmpty)
		assert.Equal(t, grid.CellID("c"+string(rune('1'+i))), c.ID)
	}

	require.NoError(t, w.OpenAt(0, 0))
	require.NoError(t, w.Edit(session.FieldGift, "Desk Calendar"))
	w.Wait()
	w.CloseSession()

	c00 := cellAt(t, w, 0, 0)
	assert.Equal(t, grid.Attributes{Gift: "Desk Calendar", Pattern: "Stripes"}, c00.Attributes)
	assert.False(t, c00.IsEmpty)

	require.NoError(t, w.OpenAt(0, 0))
	assert.True(t, w.Copy())
	w.CloseSession()

	require.NoError(t, w.OpenAt(1, 1))
	assert.True(t, w.Paste())
	w.Wait()
	w.CloseSession()

	c11 := cellAt(t, w, 1, 1)
	assert.Equal(t, c00.Attributes, c11.Attributes)
	assert.Equal(t, grid.CellID("c5"), c11.ID)
}

func TestEditsRefusedBeforePreload(t *testing.T) {
	src := &fakeSource{failGift: true}
	w := New(Config{ID: "cold", Resolver: resolver.New(src)})
	defer w.Close()

	require.Error(t, w.Preload(context.Background()))
	assert.False(t, w.Ready())
	assert.ErrorIs(t, w.Open("c1"), ErrNotReady)

	src.failGift = false
	require.NoError(t, w.Preload(context.Background()))
	assert.NoError(t, w.Open("c1"))
}

func TestUnknownInputs(t *testing.T) {
	w := newWorkspace(t, &fakeSource{}, nil)
	assert.ErrorIs(t, w.Open("c99"), ErrUnknownCell)
	assert.ErrorIs(t, w.Edit(session.FieldModel, "Neon"), session.ErrNotOpen)

	require.NoError(t, w.Open("c1"))
	assert.ErrorIs(t, w.Edit(session.FieldGift, "Rubber Duck"), ErrUnknownGift)

	_, err := w.ApplyAttributes("c2", grid.Attributes{Gift: "Rubber Duck"})
	assert.ErrorIs(t, err, ErrUnknownGift)
}

func TestStaleResolutionDiscarded(t *testing.T) {
	src := &fakeSource{gate: map[string]chan struct{}{"Desk Calendar": make(chan struct{})}}
	w := newWorkspace(t, src, nil)

	require.NoError(t, w.Open("c1"))
	require.NoError(t, w.Edit(session.FieldGift, "Desk Calendar"))

	// The user moves on before the first lookup answers.
	require.NoError(t, w.Edit(session.FieldGift, "Plush Pepe"))
	close(src.gate["Desk Calendar"])
	w.Wait()

	c1, _ := w.Snapshot().Find("c1")
	assert.Equal(t, grid.Attributes{Gift: "Plush Pepe", Pattern: "Hearts"}, c1.Attributes)

	v := w.SessionView()
	assert.Equal(t, []string{"Hearts"}, v.Patterns)
}

func TestResolutionForClosedCellIsDropped(t *testing.T) {
	src := &fakeSource{gate: map[string]chan struct{}{"Desk Calendar": make(chan struct{})}}
	w := newWorkspace(t, src, nil)

	require.NoError(t, w.Open("c1"))
	require.NoError(t, w.Edit(session.FieldGift, "Desk Calendar"))
	require.NoError(t, w.Open("c2"))
	close(src.gate["Desk Calendar"])
	w.Wait()

	c1, _ := w.Snapshot().Find("c1")
	assert.Equal(t, grid.Attributes{Gift: "Desk Calendar"}, c1.Attributes, "no pattern auto-selected after leaving the cell")
}

func TestRibbonAnnotation(t *testing.T) {
	w := newWorkspace(t, &fakeSource{}, nil)

	_, err := w.ApplyAttributes("c3", grid.Attributes{Gift: "Desk Calendar", Model: "Neon", Backdrop: "Onyx", Pattern: "Dots"})
	require.NoError(t, err)
	w.Wait()

	c3, _ := w.Snapshot().Find("c3")
	assert.Equal(t, "1 of 83", c3.RibbonText)

	assert.True(t, w.Swap("c3", "c1"))
	c1, _ := w.Snapshot().Find("c1")
	assert.Equal(t, "1 of 83", c1.RibbonText, "ribbon travels with the content")

	assert.True(t, w.ResetCell("c1"))
	c1, _ = w.Snapshot().Find("c1")
	assert.Empty(t, c1.RibbonText)
	assert.True(t, c1.IsEmpty)
}

func TestCopyPrevious(t *testing.T) {
	w := newWorkspace(t, &fakeSource{}, nil)
	attrs := grid.Attributes{Gift: "Plush Pepe", Model: "Frog", Backdrop: "Onyx", Pattern: "Hearts"}
	_, err := w.ApplyAttributes("c4", attrs)
	require.NoError(t, err)

	require.NoError(t, w.Open("c9"))
	assert.True(t, w.SessionView().HasPrevious)
	assert.True(t, w.CopyPrevious())
	w.Wait()

	c9, _ := w.Snapshot().Find("c9")
	assert.Equal(t, attrs, c9.Attributes)
}

func TestResetAndClose(t *testing.T) {
	w := newWorkspace(t, &fakeSource{}, nil)
	_, err := w.ApplyAttributes("c2", grid.Attributes{Gift: "Desk Calendar"})
	require.NoError(t, err)

	require.NoError(t, w.Open("c2"))
	require.NoError(t, w.ResetAndClose())
	w.Wait()

	c2, _ := w.Snapshot().Find("c2")
	assert.True(t, c2.IsEmpty)
	assert.Equal(t, session.Closed.String(), w.SessionView().State)
}

func TestSessionFollowsStructuralChanges(t *testing.T) {
	w := newWorkspace(t, &fakeSource{}, nil)
	attrs := grid.Attributes{Gift: "Plush Pepe", Pattern: "Hearts"}
	_, err := w.ApplyAttributes("c1", attrs)
	require.NoError(t, err)

	require.NoError(t, w.Open("c2"))
	require.True(t, w.Swap("c1", "c2"))
	assert.Equal(t, attrs, w.SessionView().Working)

	require.True(t, w.AddRow(grid.EdgeBottom))
	require.NoError(t, w.Open("c10"))
	require.True(t, w.RemoveRow(grid.EdgeBottom))
	assert.Equal(t, "closed", w.SessionView().State)
	w.Wait()
}

func TestDrop(t *testing.T) {
	w := newWorkspace(t, &fakeSource{}, nil)
	_, err := w.ApplyAttributes("c1", grid.Attributes{Gift: "Desk Calendar"})
	require.NoError(t, err)

	d := grid.NewDragSession(grid.KeyboardThresholds)
	now := time.Now()
	d.Begin("c1", grid.Point{}, now)
	assert.False(t, w.Drop(d), "uncommitted drag does nothing")

	_, _, ok := d.Release(grid.Point{X: 1}, "c9", now)
	require.True(t, ok)
	assert.True(t, w.Drop(d))

	c9, _ := w.Snapshot().Find("c9")
	assert.Equal(t, "Desk Calendar", c9.Gift)
	w.Wait()
}

func TestSaveRestoreAndFullReset(t *testing.T) {
	kv := persist.NewMemoryKV()
	gw := persist.NewGateway(kv, "ws")
	w := newWorkspace(t, &fakeSource{}, gw)

	require.True(t, w.AddRow(grid.EdgeTop))
	_, err := w.ApplyAttributes("c10", grid.Attributes{Gift: "Plush Pepe"})
	require.NoError(t, err)
	require.NoError(t, w.Save())
	w.Wait()

	again := New(Config{ID: "again", Resolver: resolver.New(&fakeSource{}), Gateway: gw})
	defer again.Close()
	assert.True(t, again.Restored())
	assert.Equal(t, 4, again.Snapshot().Rows())
	c, err := again.Snapshot().At(0, 0)
	require.NoError(t, err)
	assert.Equal(t, grid.CellID("c10"), c.ID)

	assert.ErrorIs(t, w.FullReset(false), grid.ErrResetNotConfirmed)
	assert.Equal(t, 4, w.Snapshot().Rows())

	require.NoError(t, w.FullReset(true))
	assert.Equal(t, 3, w.Snapshot().Rows())
	assert.Equal(t, grid.CellID("c1"), w.Snapshot().Cells()[0].ID)
	assert.False(t, kv.Has("ws/grid"))
}

func TestSaveWithoutStorage(t *testing.T) {
	w := newWorkspace(t, &fakeSource{}, nil)
	assert.ErrorIs(t, w.Save(), ErrNoStorage)
}

func TestImportNFT(t *testing.T) {
	w := newWorkspace(t, &fakeSource{}, nil)
	ctx := context.Background()

	_, err := w.ImportNFT(ctx, "PlushPepe-42")
	assert.ErrorIs(t, err, session.ErrNotOpen)

	require.NoError(t, w.Open("c5"))
	g, err := w.ImportNFT(ctx, "PlushPepe-42")
	require.NoError(t, err)
	assert.Equal(t, 42, g.Number)
	w.Wait()

	c5, _ := w.Snapshot().Find("c5")
	assert.Equal(t, grid.Attributes{Gift: "Plush Pepe", Model: "Frog", Backdrop: "Onyx", Pattern: "Hearts"}, c5.Attributes)

	_, err = w.ImportNFT(ctx, "bad")
	assert.ErrorIs(t, err, nft.ErrInvalidSlug)
}

func TestEventFeed(t *testing.T) {
	w := newWorkspace(t, &fakeSource{}, nil)
	events, unsubscribe := w.Subscribe(16)
	defer unsubscribe()

	require.True(t, w.AddRow(grid.EdgeBottom))

	var kinds []EventKind
	timeout := time.After(2 * time.Second)
	for len(kinds) < 2 {
		select {
		case ev := <-events:
			kinds = append(kinds, ev.Kind)
			if ev.Kind == EventGrid {
				assert.Equal(t, grid.ChangeAddRow, ev.Change)
				assert.Equal(t, 4, ev.Grid.Rows())
			}
		case <-timeout:
			t.Fatalf("events = %v, want grid and pulse", kinds)
		}
	}
	assert.Equal(t, []EventKind{EventGrid, EventPulse}, kinds)
}

func TestCloseEndsSubscriptions(t *testing.T) {
	w := New(Config{ID: "closing", Resolver: resolver.New(&fakeSource{})})
	events, unsubscribe := w.Subscribe(1)
	w.Close()

	_, open := <-events
	assert.False(t, open)
	unsubscribe()

	assert.ErrorIs(t, w.Open("c1"), ErrClosed)
}
