// Package catalog is the HTTP client for the collectible-gift catalog.
//
// Two hosts are involved: the catalog API, which lists gifts and the models,
// backdrops and patterns available for each, and the asset CDN, which serves
// the id-to-name table, model animations and pattern images.
//
// # Endpoints
//
//	API  GET /gifts
//	API  GET /backdrops?sort=asc
//	API  GET /backdrops/{gift}
//	API  GET /models/{gift}
//	API  GET /patterns/{gift}
//	CDN  GET /gifts/id-to-name.json
//	CDN  GET /gifts/models/{gift}/lottie/{model}.json
//	CDN  GET /gifts/patterns/{gift}/png/{pattern}.png
//
// List endpoints may return bare names or records; both decode into
// Attribute and Backdrop.
//
// # Errors
//
// Every failure is an *Error with an ErrorType. Network failures, timeouts,
// 5xx and 429 responses are retried with exponential backoff; 404 becomes
// ErrTypeNotFound and is returned at once. GetShortErrorMessage and
// GetTroubleshootingHint turn an error into text for the UI.
//
// # Usage
//
//	client := catalog.NewClient()
//	models, err := client.ModelsFor(ctx, "Desk Calendar")
//	if err != nil {
//	    fmt.Println(catalog.GetTroubleshootingHint(err))
//	}
package catalog
