package persist

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/muurk/giftgrid/internal/catalog"
)

// Catalog is the reference data source read by Preload.
// *resolver.Resolver satisfies it.
type Catalog interface {
	Gifts(ctx context.Context) ([]string, error)
	AllBackdrops(ctx context.Context) ([]catalog.Backdrop, error)
	IDToName(ctx context.Context) (map[string]string, error)
}

// Reference is the catalog data needed before any cell can be edited
type Reference struct {
	Gifts     []string           `json:"gifts"`
	Backdrops []catalog.Backdrop `json:"backdrops"`
	IDToName  map[string]string  `json:"idToName"`
}

// GiftName maps a gift id to its name
func (r Reference) GiftName(id string) (string, bool) {
	name, ok := r.IDToName[id]
	return name, ok
}

// Preload fetches the gift list, backdrop list and id table concurrently.
// Any failure fails the whole preload.
func Preload(ctx context.Context, src Catalog) (Reference, error) {
	var ref Reference
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		gifts, err := src.Gifts(ctx)
		if err != nil {
			return fmt.Errorf("failed to load gifts: %w", err)
		}
		ref.Gifts = gifts
		return nil
	})
	g.Go(func() error {
		backdrops, err := src.AllBackdrops(ctx)
		if err != nil {
			return fmt.Errorf("failed to load backdrops: %w", err)
		}
		ref.Backdrops = backdrops
		return nil
	})
	g.Go(func() error {
		ids, err := src.IDToName(ctx)
		if err != nil {
			return fmt.Errorf("failed to load gift ids: %w", err)
		}
		ref.IDToName = ids
		return nil
	})

	if err := g.Wait(); err != nil {
		return Reference{}, err
	}
	return ref, nil
}
