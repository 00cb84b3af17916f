// Package core is the application layer behind the HTTP server.
//
// It owns the live uploader instances, wires their completions into the
// gallery, and runs the session-backed auth flows and the leave views. It
// has no HTTP dependencies and can be driven directly from tests.
//
// # Uploaders
//
// Each uploader is an independent [upload.Uploader] addressed by id. All
// instances share one [upload.Limiter], so at most Upload.MaxConcurrent
// simulations run at once. When a simulation completes the file is read
// again and the resulting data URI is added to the gallery.
//
// Idle and completed uploaders that nobody touches for IdleTTL are removed
// by the janitor (see [Service.StartJanitor]).
//
// # Auth
//
// Signup and login are simulated. Both wait SignupDelay on the service clock
// before storing {name, email, isLoggedIn: true} in the caller's session.
// Nothing is verified against a user database.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - UPL001-UPL005: uploader lifecycle (in progress, busy, not found)
//   - FILE001-FILE004: rejected or unreadable files
//   - AUTH001-AUTH004: signup, login and API key failures
//   - LEAVE001-LEAVE005: leave form and filter errors
//   - GAL001: gallery lookups
//   - DB001-DB003: gallery database connectivity
//   - REQ001, RATE001: malformed and throttled requests
package core
