// Package urls provides centralized constants for the upstream hosts and
// documentation URLs used throughout the application.
//
// Usage:
//
//	import "github.com/muurk/giftgrid/internal/urls"
//
//	client := catalog.NewClientWithURLs(urls.CatalogAPI, urls.CatalogCDN)
package urls
