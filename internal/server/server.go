package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotctl/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Logging returns a Middleware that logs each request to the given logger.
func Logging(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("handled request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
		})
	}
}

// CallbackServer runs a short-lived HTTP server for the OAuth2 redirect.
type CallbackServer struct {
	srv     *http.Server
	handler *OAuthHandler
	logger  *log.Logger
}

// NewCallbackServer binds the OAuth handler to host:port behind a BasicRouter.
func NewCallbackServer(host string, port int, handler *OAuthHandler, logger *log.Logger) *CallbackServer {
	router := NewBasicRouter()
	router.Use(Logging(logger))
	router.Handler(handler)

	return &CallbackServer{
		srv: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", host, port),
			Handler: router,
		},
		handler: handler,
		logger:  logger,
	}
}

// Start begins serving in the background.
func (s *CallbackServer) Start() {
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.handler.Send(OAuthResult{err: fmt.Errorf("callback server: %w", err)})
		}
	}()
}

// Wait blocks until the OAuth flow completes or the context expires, then
// shuts the server down.
func (s *CallbackServer) Wait(ctx context.Context) (OAuthResult, error) {
	defer s.Shutdown()

	select {
	case <-ctx.Done():
		return OAuthResult{}, fmt.Errorf("%w: no callback received", shared.ErrTimeout)
	case result := <-s.handler.Result():
		return result, result.Error()
	}
}

// Shutdown stops the server, giving in-flight requests a moment to finish.
func (s *CallbackServer) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Debug("callback server shutdown", "error", err)
	}
}
