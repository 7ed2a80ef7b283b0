// Package minihttp provides the request-gating and directory-presentation core
// of a small static file server.
//
// The package holds the pure decision logic; the http package wires it into a
// chi router together with the file-serving collaborator from the filesystem
// package.
//
// # Key Components
//
//   - PathFilter: case-insensitive denylist of request path patterns
//   - AuthPolicy: decides whether a request passes or is challenged to log in
//   - Session: value object issued at login, bound to a ServerIdentity
//   - Credentials: the single configured username/password pair
//   - ListingPage: sorted, paginated view over a directory's entries
//
// # Server Identity
//
// A ServerIdentity is generated once per process and passed explicitly to the
// components that issue and validate sessions. Sessions issued by a previous
// process carry a different identity and are rejected:
//
//	identity := minihttp.NewServerIdentity()
//	policy := minihttp.AuthPolicy{Credentials: creds, Identity: identity}
//
//	sess := minihttp.NewSession("admin", identity, time.Now(), 8*time.Hour)
//	result := policy.Authorize("/docs/", &sess, nil, time.Now())
//
// # Directory Listings
//
//	q := minihttp.ParseListingQuery(r.URL.Query())
//	page := minihttp.NewListingPage(r.URL.Path, entries, q)
//	for _, e := range page.Entries {
//	    fmt.Println(e.Name, minihttp.FormatSize(e.Size))
//	}
package minihttp
