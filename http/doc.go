// Package http provides the HTTP server for minihttp: a static file server with
// an optional path denylist, an optional single-user login gate and an
// optional directory browser.
//
// # Request Pipeline
//
// Every request passes through the same chain, in order:
//
//   - NotFoundFallback: a 404 without a body gets a plain-text "404 Not Found".
//   - Path filter: a path matching any denylist pattern, as sent or once
//     cleaned, gets a 403 and goes no further. Blocked paths are refused even
//     for logged-in users.
//   - Canonical path: "//", "." and ".." segments are redirected to the
//     cleaned path, so the gate sees what the file source will serve.
//   - Login gate: requests without a valid session are redirected to
//     /login?returnUrl=<original path and query>. Sessions issued by another
//     server process are cleared from the client before the redirect.
//   - Routes: GET/POST /login, GET /logout, the metrics endpoint when enabled
//     and GET/HEAD for everything else. Only the exact /login and /logout
//     paths bypass the gate.
//
// # Sessions
//
// Sessions live entirely in an HttpOnly cookie holding a signed token (see the
// session package). Each authenticated request re-issues the cookie, sliding
// the idle deadline forward up to the absolute session lifetime. The session
// of the current request is available through SessionFromContext.
//
// # Usage
//
//	root, _ := os.OpenRoot("./wwwroot")
//	files := filesystem.NewFileStorage(root, false)
//
//	filter, _ := minihttp.NewPathFilter([]string{`\.git(/|$)`})
//	codec, _ := session.NewCodec(secret, time.Hour)
//
//	handlerCfg := http.HandlerConfig{
//	    DirectoryBrowser: true,
//	    PathFilter:       filter,
//	    Auth: &http.AuthConfig{
//	        Credentials: minihttp.Credentials{Username: "admin", Password: "s3cret"},
//	        Identity:    minihttp.NewServerIdentity(),
//	        Codec:       codec,
//	    },
//	}
//	handler := http.NewHandler(&handlerCfg, files)
//	http.ListenAndServe(":8080", handler.Router())
//
// Leave Auth nil to serve files without a login, and PathFilter nil to serve
// every path.
package http
