// Package server exposes the founders directory over HTTP.
//
// # Routing
//
// [BasicRouter] wraps [http.ServeMux] method patterns ("GET /founders/{id}"). Middleware added with
// [BasicRouter.Use] wraps each route and sees the matched pattern; [Chain] wraps the whole router so that
// CORS preflights, 404s and rate limiting run before routing. In both, the first middleware listed runs first.
//
// Custom handlers implement [Handler], which adds Routes to the stdlib handler so a handler can carry its
// own patterns (the local uploads file server does this).
//
// # Authentication
//
// [Authenticate] turns a bearer token into an [auth.Principal] using the configured [auth.Authenticator].
// A request without a token is anonymous: it may read public data and nothing else. Writes are checked
// against an [auth.Policy]; admins are listed by email in the config.
//
// # Errors
//
// Handlers return errors as {"error": "..."}. Sentinel errors from the shared package pick the status
// (not found 404, duplicates 409, bad input 400), batch import failures are 400 and unsupported uploads 415.
// Anything else is logged and reported as a bare 500.
//
// # Imports
//
// POST /admin/import accepts a sheet either as multipart field "file" or as the raw body. Imports are
// serialized, recorded as import runs and, when storage is configured, archived before they run.
package server
