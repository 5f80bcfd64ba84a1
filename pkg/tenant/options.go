package tenant

import "log/slog"

// config holds middleware configuration.
type config struct {
	binder     SessionBinder
	skipPaths  []string
	echoHeader string
	logger     *slog.Logger
}

// Option configures the middleware.
type Option func(*config)

// WithSessionBinder sets the binder that projects the tenant identifier
// into the data-store session.
func WithSessionBinder(binder SessionBinder) Option {
	return func(c *config) {
		c.binder = binder
	}
}

// WithSkipPaths sets path prefixes that bypass tenant resolution and
// binding entirely.
func WithSkipPaths(paths ...string) Option {
	return func(c *config) {
		c.skipPaths = append(c.skipPaths, paths...)
	}
}

// WithEchoHeader sets the response header carrying the resolved tenant.
func WithEchoHeader(header string) Option {
	return func(c *config) {
		if header != "" {
			c.echoHeader = header
		}
	}
}

// WithLogger sets a custom logger for the middleware.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}
