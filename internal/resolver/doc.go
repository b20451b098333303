// Package resolver answers attribute questions about gifts: which models,
// backdrops and patterns a gift has, the rarity ribbon of a gift on a
// backdrop, and the palette of a backdrop.
//
// Lookups go through a Cache that keeps successful results for a TTL
// (DefaultTTL unless configured) and shares one in-flight fetch between
// concurrent callers of the same key. Failures are never cached, so the
// next caller retries.
//
//	r := resolver.New(catalog.NewClient())
//	models, err := r.ModelsFor(ctx, "Desk Calendar")
//	ribbon := r.RibbonTextFor(ctx, "Desk Calendar", "Onyx") // "1 of 83"
//
// RibbonTextFor never fails; it returns UnknownRibbon when rarity cannot be
// determined.
package resolver
