package persist

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/giftgrid/internal/catalog"
	"github.com/muurk/giftgrid/internal/grid"
)

func sampleGrid(t *testing.T) (grid.Grid, uint64) {
	t.Helper()
	seq := grid.NewSequence(0)
	g := grid.New(3, 3, seq)
	g = grid.AddRow(g, grid.EdgeBottom, seq)
	g, _ = grid.ApplyAttributes(g, "c5", grid.Attributes{Gift: "Desk Calendar", Pattern: "Stripes"})
	return g, seq.Counter()
}

func TestGatewayRoundTrip(t *testing.T) {
	backends := map[string]KV{
		"memory": NewMemoryKV(),
		"disk":   NewDiskKV(t.TempDir()),
	}

	for name, kv := range backends {
		t.Run(name, func(t *testing.T) {
			gw := NewGateway(kv, "workspace")
			g, counter := sampleGrid(t)

			require.NoError(t, gw.Save(g, counter))
			assert.True(t, kv.Has("workspace/grid"))
			assert.True(t, kv.Has("workspace/counter"))

			got, gotCounter, ok := gw.Restore()
			require.True(t, ok)
			assert.Equal(t, counter, gotCounter)
			if diff := cmp.Diff(g.RowsCopy(), got.RowsCopy()); diff != "" {
				t.Errorf("restored grid mismatch (-want +got):\n%s", diff)
			}

			require.NoError(t, gw.Clear())
			_, _, ok = gw.Restore()
			assert.False(t, ok)
			require.NoError(t, gw.Clear(), "clearing twice is fine")
		})
	}
}

func TestRestoreMissing(t *testing.T) {
	gw := NewGateway(NewMemoryKV(), "")
	_, err := gw.Load()
	assert.ErrorIs(t, err, ErrNoSnapshot)

	store, restored := gw.RestoreStore()
	assert.False(t, restored)
	assert.Equal(t, grid.DefaultRows, store.Snapshot().Rows())
}

func TestRestoreCorrupt(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: `{{{`},
		{name: "wrong version", data: `{"version":7,"grid":[]}`},
		{name: "too few rows", data: `{"version":1,"grid":[[{"id":"c1","row":0,"col":0,"isEmpty":true}]]}`},
		{name: "duplicate ids", data: `{"version":1,"grid":[` +
			`[{"id":"c1","row":0,"col":0,"isEmpty":true}],` +
			`[{"id":"c1","row":1,"col":0,"isEmpty":true}],` +
			`[{"id":"c3","row":2,"col":0,"isEmpty":true}]]}`},
		{name: "isEmpty mismatch", data: `{"version":1,"grid":[` +
			`[{"id":"c1","row":0,"col":0,"gift":"Desk Calendar","isEmpty":true}],` +
			`[{"id":"c2","row":1,"col":0,"isEmpty":true}],` +
			`[{"id":"c3","row":2,"col":0,"isEmpty":true}]]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := NewMemoryKV()
			require.NoError(t, kv.Write(GridKey, []byte(tt.data)))
			gw := NewGateway(kv, "")

			_, err := gw.Load()
			require.Error(t, err)
			assert.False(t, errors.Is(err, ErrNoSnapshot))

			_, _, ok := gw.Restore()
			assert.False(t, ok)
			store, restored := gw.RestoreStore()
			assert.False(t, restored)
			assert.Equal(t, 9, len(store.Snapshot().Cells()))
		})
	}
}

func TestRestoreRecoversCounterFromIDs(t *testing.T) {
	kv := NewMemoryKV()
	gw := NewGateway(kv, "ws")
	g, counter := sampleGrid(t)
	require.NoError(t, gw.Save(g, counter))
	require.NoError(t, kv.Write("ws/counter", []byte("garbage")))

	store, ok := gw.RestoreStore()
	require.True(t, ok)
	assert.Equal(t, counter, store.Counter())
}

func TestRestoredStoreMintsFreshIDs(t *testing.T) {
	gw := NewGateway(NewMemoryKV(), "")
	g, counter := sampleGrid(t)
	require.NoError(t, gw.Save(g, counter))

	store, ok := gw.RestoreStore()
	require.True(t, ok)
	m := grid.NewMutator(store, nil)
	require.True(t, m.AddRow(grid.EdgeBottom))

	seen := map[grid.CellID]bool{}
	for _, c := range store.Snapshot().Cells() {
		assert.False(t, seen[c.ID], "duplicate id %s", c.ID)
		seen[c.ID] = true
	}
}

type fakeCatalog struct {
	failIDs bool
}

func (f fakeCatalog) Gifts(ctx context.Context) ([]string, error) {
	return []string{"Desk Calendar"}, nil
}

func (f fakeCatalog) AllBackdrops(ctx context.Context) ([]catalog.Backdrop, error) {
	return []catalog.Backdrop{{Attribute: catalog.Attribute{Name: "Onyx"}}}, nil
}

func (f fakeCatalog) IDToName(ctx context.Context) (map[string]string, error) {
	if f.failIDs {
		return nil, errors.New("cdn down")
	}
	return map[string]string{"42": "Desk Calendar"}, nil
}

func TestPreload(t *testing.T) {
	ref, err := Preload(context.Background(), fakeCatalog{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Desk Calendar"}, ref.Gifts)
	assert.Len(t, ref.Backdrops, 1)
	name, ok := ref.GiftName("42")
	assert.True(t, ok)
	assert.Equal(t, "Desk Calendar", name)

	_, err = Preload(context.Background(), fakeCatalog{failIDs: true})
	assert.ErrorContains(t, err, "gift ids")
}
