package devbolt

import (
	"log/slog"
	"time"
)

// Option configures a [Client].
type Option func(*Client)

// WithConfigPath sets an explicit flags file path instead of searching
// [DefaultLocations].
func WithConfigPath(path string) Option {
	return func(c *Client) { c.configPath = path }
}

// WithAutoReload toggles watching the flags file for changes. Enabled by
// default.
func WithAutoReload(enabled bool) Option {
	return func(c *Client) { c.autoReload = enabled }
}

// WithReloadDebounce sets the quiet period after a file change before the
// config is reloaded.
func WithReloadDebounce(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithDefaultContext sets a context merged into every evaluation. Attributes
// in a per-call context take precedence.
func WithDefaultContext(ctx EvaluationContext) Option {
	return func(c *Client) { c.defaultContext = ctx }
}

// WithLogger supplies a logger. Overrides WithLogLevel.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithLogLevel sets the minimum level for the client's own stderr JSON
// logger ("debug", "info", "warn", "error"). Ignored when WithLogger is set.
func WithLogLevel(level string) Option {
	return func(c *Client) { c.logLevel = level }
}

// WithStrict makes unknown flag names evaluation errors (reported through
// the error handler and resolved via fallbacks) instead of a quiet disabled
// default.
func WithStrict(strict bool) Option {
	return func(c *Client) { c.strict = strict }
}

// WithFallbacks sets per-flag results used when an evaluation fails. Flags
// without a fallback resolve to false on error.
func WithFallbacks(fallbacks map[string]bool) Option {
	return func(c *Client) {
		c.fallbacks = make(map[string]bool, len(fallbacks))
		for name, enabled := range fallbacks {
			c.fallbacks[name] = enabled
		}
	}
}

// WithErrorHandler registers a hook invoked for every evaluation or reload
// error. When unset, errors are logged.
func WithErrorHandler(fn func(error)) Option {
	return func(c *Client) { c.onError = fn }
}

// WithConfigUpdateHandler registers a hook invoked with the new config after
// every successful reload or replacement.
func WithConfigUpdateHandler(fn func(FlagsConfig)) Option {
	return func(c *Client) { c.onConfigUpdate = fn }
}

// WithEvaluationHandler registers a hook invoked after every evaluation with
// the result and the merged context it was computed against.
func WithEvaluationHandler(fn func(EvaluationResult, EvaluationContext)) Option {
	return func(c *Client) { c.onFlagEvaluated = fn }
}
