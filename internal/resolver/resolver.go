package resolver

import (
	"context"
	"fmt"
	"math"

	"github.com/muurk/giftgrid/internal/catalog"
)

// Source is the catalog the resolver reads from. *catalog.Client satisfies it.
type Source interface {
	Gifts(ctx context.Context) ([]string, error)
	Backdrops(ctx context.Context) ([]catalog.Backdrop, error)
	BackdropsFor(ctx context.Context, gift string) ([]catalog.Backdrop, error)
	ModelsFor(ctx context.Context, gift string) ([]catalog.Attribute, error)
	PatternsFor(ctx context.Context, gift string) ([]catalog.Attribute, error)
	IDToName(ctx context.Context) (map[string]string, error)
}

// UnknownRibbon is shown when the rarity of a combination is not known
const UnknownRibbon = "1 of ???"

// Resolver answers attribute questions about gifts through a shared cache
type Resolver struct {
	src   Source
	cache *Cache
}

// Option configures a Resolver
type Option func(*Resolver)

// WithCache replaces the default cache
func WithCache(c *Cache) Option {
	return func(r *Resolver) { r.cache = c }
}

// New creates a resolver over src with a DefaultTTL cache
func New(src Source, opts ...Option) *Resolver {
	r := &Resolver{src: src, cache: NewCache(DefaultTTL)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Cache returns the cache backing the resolver
func (r *Resolver) Cache() *Cache {
	return r.cache
}

// Gifts returns every gift name
func (r *Resolver) Gifts(ctx context.Context) ([]string, error) {
	return cached(ctx, r.cache, "gifts", r.src.Gifts)
}

// AllBackdrops returns the full backdrop list with colors
func (r *Resolver) AllBackdrops(ctx context.Context) ([]catalog.Backdrop, error) {
	return cached(ctx, r.cache, "backdrops", r.src.Backdrops)
}

// IDToName returns the gift id-to-name table
func (r *Resolver) IDToName(ctx context.Context) (map[string]string, error) {
	return cached(ctx, r.cache, "id-to-name", r.src.IDToName)
}

// ModelDetails returns the models of gift with rarity
func (r *Resolver) ModelDetails(ctx context.Context, gift string) ([]catalog.Attribute, error) {
	if gift == "" {
		return nil, nil
	}
	return cached(ctx, r.cache, "models/"+gift, func(ctx context.Context) ([]catalog.Attribute, error) {
		return r.src.ModelsFor(ctx, gift)
	})
}

// PatternDetails returns the patterns of gift with rarity
func (r *Resolver) PatternDetails(ctx context.Context, gift string) ([]catalog.Attribute, error) {
	if gift == "" {
		return nil, nil
	}
	return cached(ctx, r.cache, "patterns/"+gift, func(ctx context.Context) ([]catalog.Attribute, error) {
		return r.src.PatternsFor(ctx, gift)
	})
}

// BackdropDetails returns the backdrops of gift with rarity and colors
func (r *Resolver) BackdropDetails(ctx context.Context, gift string) ([]catalog.Backdrop, error) {
	if gift == "" {
		return nil, nil
	}
	return cached(ctx, r.cache, "backdrops/"+gift, func(ctx context.Context) ([]catalog.Backdrop, error) {
		return r.src.BackdropsFor(ctx, gift)
	})
}

// ModelsFor returns the model names of gift in catalog order
func (r *Resolver) ModelsFor(ctx context.Context, gift string) ([]string, error) {
	attrs, err := r.ModelDetails(ctx, gift)
	if err != nil {
		return nil, err
	}
	return catalog.Names(attrs), nil
}

// PatternsFor returns the pattern names of gift in catalog order
func (r *Resolver) PatternsFor(ctx context.Context, gift string) ([]string, error) {
	attrs, err := r.PatternDetails(ctx, gift)
	if err != nil {
		return nil, err
	}
	return catalog.Names(attrs), nil
}

// BackdropsFor returns the backdrop names of gift in catalog order
func (r *Resolver) BackdropsFor(ctx context.Context, gift string) ([]string, error) {
	backdrops, err := r.BackdropDetails(ctx, gift)
	if err != nil {
		return nil, err
	}
	return catalog.BackdropNames(backdrops), nil
}

// RibbonTextFor returns the rarity label for a gift on a backdrop. It never
// fails: unknown rarity and lookup errors both yield UnknownRibbon.
func (r *Resolver) RibbonTextFor(ctx context.Context, gift, backdrop string) string {
	if gift == "" || backdrop == "" {
		return UnknownRibbon
	}
	backdrops, err := r.BackdropDetails(ctx, gift)
	if err != nil {
		return UnknownRibbon
	}
	b, ok := catalog.FindBackdrop(backdrops, backdrop)
	if !ok {
		return UnknownRibbon
	}
	return RibbonText(b.RarityPermille)
}

// BackdropColors returns the palette of a backdrop, looking first at the
// gift's own backdrop list and then at the full list
func (r *Resolver) BackdropColors(ctx context.Context, gift, backdrop string) (catalog.Colors, bool) {
	if backdrop == "" {
		return catalog.Colors{}, false
	}
	if gift != "" {
		if list, err := r.BackdropDetails(ctx, gift); err == nil {
			if b, ok := catalog.FindBackdrop(list, backdrop); ok && hasColor(b) {
				return b.Colors(), true
			}
		}
	}
	all, err := r.AllBackdrops(ctx)
	if err != nil {
		return catalog.Colors{}, false
	}
	b, ok := catalog.FindBackdrop(all, backdrop)
	if !ok {
		return catalog.Colors{}, false
	}
	return b.Colors(), true
}

func hasColor(b catalog.Backdrop) bool {
	return b.Hex.CenterColor != "" || b.CenterColor != 0 || b.EdgeColor != 0
}

// RibbonText formats a rarity in permille as "1 of N" with
// N = round(1000 / permille). Non-positive values are unknown.
func RibbonText(permille int) string {
	if permille <= 0 {
		return UnknownRibbon
	}
	n := int(math.Round(1000 / float64(permille)))
	return fmt.Sprintf("1 of %d", n)
}

// NeedsDependentReset reports whether changing the gift from oldGift to
// newGift invalidates model, backdrop and pattern
func NeedsDependentReset(oldGift, newGift string) bool {
	return oldGift != newGift
}

// Options is the full set of choices for one gift
type Options struct {
	Gift      string
	Models    []string
	Backdrops []string
	Patterns  []string

	// Per-list failures; a failed list is empty and the others still usable
	ModelsErr    error
	BackdropsErr error
	PatternsErr  error
}

// OptionsFor resolves the three choice lists of gift concurrently. Failures
// are reported per list.
func (r *Resolver) OptionsFor(ctx context.Context, gift string) Options {
	out := Options{Gift: gift}
	if gift == "" {
		return out
	}

	done := make(chan struct{}, 3)
	go func() {
		out.Models, out.ModelsErr = r.ModelsFor(ctx, gift)
		done <- struct{}{}
	}()
	go func() {
		out.Backdrops, out.BackdropsErr = r.BackdropsFor(ctx, gift)
		done <- struct{}{}
	}()
	go func() {
		out.Patterns, out.PatternsErr = r.PatternsFor(ctx, gift)
		done <- struct{}{}
	}()
	for i := 0; i < 3; i++ {
		<-done
	}
	return out
}
