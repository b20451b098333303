// Package proxy forwards browser requests to the catalog API, the CDN and
// the collectible pages so a web client can reach them despite cross-origin
// restrictions.
//
// Requests under each upstream prefix keep their method, remaining path and
// query. Successful responses are copied with their status and content type.
// Failures become 502 responses with a JSON body: {"error","message"} when
// the upstream could not be reached, {"error","status","statusText"} when it
// answered with a non-2xx status.
//
//	api, _ := proxy.NewUpstream("api", "/api", urls.CatalogAPI)
//	cdn, _ := proxy.NewUpstream("cdn", "/cdn", urls.CatalogCDN)
//	http.Handle("/", proxy.New(api, cdn))
package proxy
