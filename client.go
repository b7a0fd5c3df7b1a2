package devbolt

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ModelRed/devbolt/internal/config"
	"github.com/ModelRed/devbolt/internal/logging"
	"github.com/ModelRed/devbolt/internal/metrics"
	"github.com/ModelRed/devbolt/internal/watcher"
)

// DefaultLocations are the flags file paths searched, in order, when no
// explicit path is configured.
var DefaultLocations = []string{
	".devbolt/flags.yml",
	".devbolt/flags.yaml",
	"devbolt.yml",
	"devbolt.yaml",
	".devbolt.yml",
	".devbolt.yaml",
}

const tracerName = "github.com/ModelRed/devbolt"

// Client is the devbolt façade: it discovers the flags file, keeps the
// active config hot-reloaded, merges a default context into evaluations, and
// reports outcomes through hooks, Prometheus metrics, and trace spans.
//
// Evaluation methods never return errors; failures (including strict-mode
// unknown flags) resolve to the flag's fallback and reach the error handler.
type Client struct {
	id             string
	logger         *slog.Logger
	logLevel       string
	configPath     string
	autoReload     bool
	debounce       time.Duration
	defaultContext EvaluationContext
	strict         bool
	fallbacks      map[string]bool

	onError         func(error)
	onConfigUpdate  func(FlagsConfig)
	onFlagEvaluated func(EvaluationResult, EvaluationContext)

	engine    *Engine
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	watcher   *watcher.Watcher
	closeOnce sync.Once
}

// New creates a Client, locates and loads the flags file, and starts the
// file watcher unless auto-reload is disabled. The initial load is
// all-or-nothing: a missing file, YAML error, or validation failure returns
// the error and no client.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		id:         uuid.NewString(),
		autoReload: true,
		debounce:   500 * time.Millisecond,
		fallbacks:  map[string]bool{},
		metrics:    metrics.New(),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.New(c.logLevel)
	}

	path, err := c.findConfigPath()
	if err != nil {
		return nil, err
	}
	c.configPath = path

	cfg, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	c.engine = NewEngine(cfg, c.logger, c.strict)
	c.metrics.RecordReload(len(cfg))

	if c.autoReload {
		w := watcher.New(path, c.reloadFromWatch,
			watcher.WithDebounce(c.debounce),
			watcher.WithLogger(c.logger))
		if err := w.Start(); err != nil {
			c.logger.Warn("failed to start flags file watcher", "error", err)
		} else {
			c.watcher = w
		}
	}

	c.logger.Info("devbolt client initialized",
		"client_id", c.id,
		"config_path", path,
		"flags", len(cfg),
		"auto_reload", c.autoReload,
		"strict", c.strict)
	return c, nil
}

// NewFromEnv creates a Client configured from DEVBOLT_* environment
// variables (see the internal config package for the variable list).
// Explicit opts take precedence over the environment.
func NewFromEnv(opts ...Option) (*Client, error) {
	envOpts, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load environment options: %w", err)
	}
	base := []Option{
		WithLogLevel(envOpts.LogLevel),
		WithAutoReload(envOpts.AutoReload),
		WithStrict(envOpts.Strict),
		WithReloadDebounce(envOpts.ReloadDebounce),
	}
	if envOpts.ConfigPath != "" {
		base = append(base, WithConfigPath(envOpts.ConfigPath))
	}
	return New(append(base, opts...)...)
}

func (c *Client) findConfigPath() (string, error) {
	if c.configPath != "" {
		if _, err := os.Stat(c.configPath); err != nil {
			return "", &ParseError{Message: fmt.Sprintf("config file not found: %s", c.configPath), Err: err}
		}
		return filepath.Clean(c.configPath), nil
	}
	for _, location := range DefaultLocations {
		if _, err := os.Stat(location); err == nil {
			c.logger.Debug("found flags file", "config_path", location)
			return location, nil
		}
	}
	return "", &ParseError{Message: fmt.Sprintf(
		"devbolt flags file not found; searched: %s (set DEVBOLT_CONFIG_PATH or use WithConfigPath)",
		strings.Join(DefaultLocations, ", "))}
}

// Evaluate decides flagName for ectx merged over the client's default
// context. A nil ectx evaluates against the default context alone. ctx
// carries the trace span only; evaluation itself never blocks.
func (c *Client) Evaluate(ctx context.Context, flagName string, ectx *EvaluationContext) EvaluationResult {
	start := time.Now()
	merged := c.mergeContext(ectx)

	_, span := c.tracer.Start(ctx, "devbolt.evaluate",
		trace.WithAttributes(attribute.String("devbolt.flag", flagName)))
	defer span.End()

	result, err := c.engine.Evaluate(flagName, merged)
	if err != nil {
		c.handleError(err)
		result = EvaluationResult{
			FlagName: flagName,
			Enabled:  c.fallbacks[flagName],
			Reason:   "Error evaluating flag: " + err.Error(),
			Metadata: EvaluationMetadata{Timestamp: start},
		}
	}

	span.SetAttributes(
		attribute.Bool("devbolt.enabled", result.Enabled),
		attribute.String("devbolt.reason", result.Reason))
	c.metrics.RecordEvaluation(flagName, result.Enabled, time.Since(start).Seconds())

	if c.onFlagEvaluated != nil {
		c.onFlagEvaluated(result, merged)
	}
	return result
}

// IsEnabled is a boolean-only convenience over Evaluate.
func (c *Client) IsEnabled(ctx context.Context, flagName string, ectx *EvaluationContext) bool {
	return c.Evaluate(ctx, flagName, ectx).Enabled
}

// AllFlagNames returns the names in the active configuration, sorted.
func (c *Client) AllFlagNames() []string { return c.engine.AllFlagNames() }

// FlagConfig returns one flag's configuration from the active snapshot.
func (c *Client) FlagConfig(name string) (FlagConfig, bool) { return c.engine.FlagConfig(name) }

// Config returns a copy of the active configuration.
func (c *Client) Config() FlagsConfig { return c.engine.Config() }

// ReplaceConfig atomically installs an already-validated configuration,
// bypassing the flags file. Intended for programmatic callers.
func (c *Client) ReplaceConfig(cfg FlagsConfig) {
	c.engine.ReplaceConfig(cfg)
	c.metrics.RecordReload(len(cfg))
	if c.onConfigUpdate != nil {
		c.onConfigUpdate(cfg)
	}
}

// Reload re-reads the flags file. On any parse or validation failure the
// active config is left untouched and the error is reported and returned.
func (c *Client) Reload() error {
	cfg, err := ParseFile(c.configPath)
	if err != nil {
		c.metrics.ReloadFailuresTotal.Inc()
		c.handleError(err)
		return err
	}
	c.engine.ReplaceConfig(cfg)
	c.metrics.RecordReload(len(cfg))
	if c.onConfigUpdate != nil {
		c.onConfigUpdate(cfg)
	}
	c.logger.Info("config reloaded", "config_path", c.configPath, "flags", len(cfg))
	return nil
}

func (c *Client) reloadFromWatch() {
	c.logger.Info("flags file changed, reloading", "config_path", c.configPath)
	if err := c.Reload(); err != nil {
		c.logger.Error("reload failed, keeping previous config", "error", err)
	}
}

// MetricsRegistry exposes the client's Prometheus registry.
func (c *Client) MetricsRegistry() *prometheus.Registry { return c.metrics.Registry }

// MetricsHandler returns an HTTP handler serving the client's metrics, for
// mounting on an application mux.
func (c *Client) MetricsHandler() http.Handler { return c.metrics.Handler() }

// ID returns the client's instance identifier, as stamped into its logs.
func (c *Client) ID() string { return c.id }

// Close stops the file watcher. The client remains usable for evaluation
// against the last loaded config.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.logger.Info("closing devbolt client", "client_id", c.id)
		if c.watcher != nil {
			err = c.watcher.Stop()
		}
	})
	return err
}

// mergeContext combines the per-call context with the client default: a
// supplied context replaces the default wholesale, except custom attributes,
// which are the union of both with the per-call context winning on conflicts.
func (c *Client) mergeContext(ectx *EvaluationContext) EvaluationContext {
	merged := c.defaultContext
	if ectx != nil {
		merged = *ectx
	}
	if len(c.defaultContext.CustomAttributes) == 0 {
		return merged
	}
	attrs := maps.Clone(c.defaultContext.CustomAttributes)
	if ectx != nil {
		maps.Copy(attrs, ectx.CustomAttributes)
	}
	merged.CustomAttributes = attrs
	return merged
}

func (c *Client) handleError(err error) {
	if c.onError != nil {
		c.onError(err)
		return
	}
	c.logger.Error("devbolt error", "error", err)
}
