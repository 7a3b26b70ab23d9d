package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// Platform and daemon errors
	ErrUnsupportedPlatform = fmt.Errorf("unsupported platform")
	ErrDownloadFailed      = fmt.Errorf("daemon download failed")
	ErrLaunchFailed        = fmt.Errorf("daemon launch failed")
	ErrDeviceUnavailable   = fmt.Errorf("playback device unavailable")

	// API and playback errors
	ErrAPIRequest       = fmt.Errorf("API request failed")
	ErrNoActiveSession  = fmt.Errorf("no active playback session")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
