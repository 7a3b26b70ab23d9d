// Package server provides the temporary localhost HTTP server backing the
// OAuth2 authorization code flow.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// OAuthHandler implements the OAuth2 authorization code callback flow.
//
// The handler validates the state parameter (CSRF protection), exchanges the authorization code for tokens,
// and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// # Lifecycle
//
// The server exists only for the duration of an authentication command: the
// CLI opens the authorization URL in the browser, [CallbackServer] listens on
// the configured host and port for the redirect, and shuts down as soon as a
// token (or an error) arrives or the wait times out.
package server
