package resolver

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/muurk/giftgrid/internal/catalog"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSource struct {
	mu      sync.Mutex
	calls   map[string]int
	delay   time.Duration
	failing map[string]error
	release chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{calls: make(map[string]int), failing: make(map[string]error)}
}

func (f *fakeSource) record(key string) error {
	f.mu.Lock()
	f.calls[key]++
	err := f.failing[key]
	release := f.release
	f.mu.Unlock()
	if release != nil {
		<-release
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return err
}

func (f *fakeSource) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeSource) Gifts(ctx context.Context) ([]string, error) {
	if err := f.record("gifts"); err != nil {
		return nil, err
	}
	return []string{"Desk Calendar", "Plush Pepe"}, nil
}

func (f *fakeSource) Backdrops(ctx context.Context) ([]catalog.Backdrop, error) {
	if err := f.record("backdrops"); err != nil {
		return nil, err
	}
	return []catalog.Backdrop{
		{Attribute: catalog.Attribute{Name: "Onyx"}, CenterColor: 0x333333, EdgeColor: 0x111111},
		{Attribute: catalog.Attribute{Name: "Ruby"}, Hex: catalog.BackdropHex{CenterColor: "#e0115f", EdgeColor: "#9b111e"}},
	}, nil
}

func (f *fakeSource) BackdropsFor(ctx context.Context, gift string) ([]catalog.Backdrop, error) {
	if err := f.record("backdrops/" + gift); err != nil {
		return nil, err
	}
	return []catalog.Backdrop{
		{Attribute: catalog.Attribute{Name: "Onyx", RarityPermille: 12}},
		{Attribute: catalog.Attribute{Name: "Ruby", RarityPermille: 0}},
		{Attribute: catalog.Attribute{Name: "Amber", RarityPermille: 20}, CenterColor: 0xffbf00},
	}, nil
}

func (f *fakeSource) ModelsFor(ctx context.Context, gift string) ([]catalog.Attribute, error) {
	if err := f.record("models/" + gift); err != nil {
		return nil, err
	}
	return []catalog.Attribute{{Name: "Original", RarityPermille: 15}, {Name: "Neon", RarityPermille: 5}}, nil
}

func (f *fakeSource) PatternsFor(ctx context.Context, gift string) ([]catalog.Attribute, error) {
	if err := f.record("patterns/" + gift); err != nil {
		return nil, err
	}
	return []catalog.Attribute{{Name: "Stars"}, {Name: "Hearts"}}, nil
}

func (f *fakeSource) IDToName(ctx context.Context) (map[string]string, error) {
	if err := f.record("id-to-name"); err != nil {
		return nil, err
	}
	return map[string]string{"5170145012310081615": "Desk Calendar"}, nil
}

func TestRibbonText(t *testing.T) {
	tests := []struct {
		permille int
		want     string
	}{
		{12, "1 of 83"},
		{20, "1 of 50"},
		{1, "1 of 1000"},
		{3, "1 of 333"},
		{6, "1 of 167"},
		{1000, "1 of 1"},
		{0, UnknownRibbon},
		{-5, UnknownRibbon},
	}
	for _, tt := range tests {
		if got := RibbonText(tt.permille); got != tt.want {
			t.Errorf("RibbonText(%d) = %q, want %q", tt.permille, got, tt.want)
		}
	}
}

func TestResolverLists(t *testing.T) {
	src := newFakeSource()
	r := New(src)
	ctx := context.Background()

	models, err := r.ModelsFor(ctx, "Desk Calendar")
	require.NoError(t, err)
	assert.Equal(t, []string{"Original", "Neon"}, models)

	backdrops, err := r.BackdropsFor(ctx, "Desk Calendar")
	require.NoError(t, err)
	assert.Equal(t, []string{"Onyx", "Ruby", "Amber"}, backdrops)

	patterns, err := r.PatternsFor(ctx, "Desk Calendar")
	require.NoError(t, err)
	assert.Equal(t, []string{"Stars", "Hearts"}, patterns)

	empty, err := r.ModelsFor(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.Zero(t, src.count("models/"))
}

func TestResolverCachesWithinTTL(t *testing.T) {
	src := newFakeSource()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	r := New(src, WithCache(NewCache(DefaultTTL, WithClock(clock))))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := r.ModelsFor(ctx, "Desk Calendar")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, src.count("models/Desk Calendar"))

	mu.Lock()
	now = now.Add(DefaultTTL - time.Second)
	mu.Unlock()
	_, err := r.ModelsFor(ctx, "Desk Calendar")
	require.NoError(t, err)
	assert.Equal(t, 1, src.count("models/Desk Calendar"))

	mu.Lock()
	now = now.Add(2 * time.Second)
	mu.Unlock()
	_, err = r.ModelsFor(ctx, "Desk Calendar")
	require.NoError(t, err)
	assert.Equal(t, 2, src.count("models/Desk Calendar"))
}

func TestResolverCoalescesConcurrentLookups(t *testing.T) {
	src := newFakeSource()
	src.release = make(chan struct{})
	r := New(src)
	ctx := context.Background()

	const callers = 8
	var started, done sync.WaitGroup
	results := make([][]string, callers)
	started.Add(callers)
	done.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer done.Done()
			started.Done()
			results[i], _ = r.PatternsFor(ctx, "Plush Pepe")
		}(i)
	}
	started.Wait()
	// Give every caller time to join the flight before it completes.
	time.Sleep(50 * time.Millisecond)
	close(src.release)
	done.Wait()

	assert.Equal(t, 1, src.count("patterns/Plush Pepe"))
	for i, got := range results {
		if diff := cmp.Diff([]string{"Stars", "Hearts"}, got); diff != "" {
			t.Errorf("caller %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestResolverDoesNotCacheFailures(t *testing.T) {
	src := newFakeSource()
	src.failing["models/Desk Calendar"] = errors.New("boom")
	r := New(src)
	ctx := context.Background()

	_, err := r.ModelsFor(ctx, "Desk Calendar")
	require.Error(t, err)

	src.mu.Lock()
	delete(src.failing, "models/Desk Calendar")
	src.mu.Unlock()

	models, err := r.ModelsFor(ctx, "Desk Calendar")
	require.NoError(t, err)
	assert.Len(t, models, 2)
	assert.Equal(t, 2, src.count("models/Desk Calendar"))
}

func TestResolverCallerCancellation(t *testing.T) {
	src := newFakeSource()
	src.release = make(chan struct{})
	r := New(src)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := r.ModelsFor(ctx, "Desk Calendar")
		errCh <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	// The shared fetch completes and fills the cache for later callers.
	close(src.release)
	assert.Eventually(t, func() bool {
		_, ok := r.Cache().Get("models/Desk Calendar")
		return ok
	}, time.Second, 10*time.Millisecond)
}

func TestRibbonTextFor(t *testing.T) {
	src := newFakeSource()
	r := New(src)
	ctx := context.Background()

	tests := []struct {
		gift, backdrop string
		want           string
	}{
		{"Desk Calendar", "Onyx", "1 of 83"},
		{"Desk Calendar", "Amber", "1 of 50"},
		{"Desk Calendar", "Ruby", UnknownRibbon},
		{"Desk Calendar", "Missing", UnknownRibbon},
		{"", "Onyx", UnknownRibbon},
		{"Desk Calendar", "", UnknownRibbon},
	}
	for _, tt := range tests {
		if got := r.RibbonTextFor(ctx, tt.gift, tt.backdrop); got != tt.want {
			t.Errorf("RibbonTextFor(%q, %q) = %q, want %q", tt.gift, tt.backdrop, got, tt.want)
		}
	}

	src.failing["backdrops/Plush Pepe"] = errors.New("down")
	assert.Equal(t, UnknownRibbon, r.RibbonTextFor(ctx, "Plush Pepe", "Onyx"))
}

func TestBackdropColors(t *testing.T) {
	r := New(newFakeSource())
	ctx := context.Background()

	colors, ok := r.BackdropColors(ctx, "Desk Calendar", "Amber")
	require.True(t, ok)
	assert.Equal(t, "#ffbf00", colors.Center)

	// Onyx has no colors in the per-gift list; the full list supplies them.
	colors, ok = r.BackdropColors(ctx, "Desk Calendar", "Onyx")
	require.True(t, ok)
	assert.Equal(t, "#333333", colors.Center)
	assert.Equal(t, "#111111", colors.Edge)

	colors, ok = r.BackdropColors(ctx, "", "Ruby")
	require.True(t, ok)
	assert.Equal(t, "#e0115f", colors.Center)

	_, ok = r.BackdropColors(ctx, "Desk Calendar", "Nope")
	assert.False(t, ok)
}

func TestOptionsForReportsPerListFailures(t *testing.T) {
	src := newFakeSource()
	src.failing["patterns/Desk Calendar"] = errors.New("down")
	r := New(src)

	opts := r.OptionsFor(context.Background(), "Desk Calendar")
	assert.NoError(t, opts.ModelsErr)
	assert.NoError(t, opts.BackdropsErr)
	assert.Error(t, opts.PatternsErr)
	assert.Len(t, opts.Models, 2)
	assert.Empty(t, opts.Patterns)
}

func TestNeedsDependentReset(t *testing.T) {
	assert.True(t, NeedsDependentReset("Desk Calendar", "Plush Pepe"))
	assert.True(t, NeedsDependentReset("", "Plush Pepe"))
	assert.False(t, NeedsDependentReset("Plush Pepe", "Plush Pepe"))
}

func TestCacheEviction(t *testing.T) {
	c := NewCache(time.Minute, WithMaxEntries(2))
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("c")
	assert.True(t, ok)

	c.Invalidate("c")
	_, ok = c.Get("c")
	assert.False(t, ok)

	c.Purge()
	assert.Zero(t, c.Len())
}
