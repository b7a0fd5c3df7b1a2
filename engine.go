package devbolt

import (
	"log/slog"
	"maps"
	"sort"
	"time"

	"github.com/ModelRed/devbolt/internal/logging"
)

// Engine evaluates flags against an in-memory configuration. The config must
// already be validated ([Validate], or produced by [ParseYAML]/[ParseFile]).
//
// In strict mode an unknown flag name is a hard error; otherwise it resolves
// to a disabled result with reason "Flag not found".
type Engine struct {
	store     *Store
	evaluator *Evaluator
	logger    *slog.Logger
	strict    bool
}

// NewEngine creates an Engine over a trusted config. A nil logger disables
// diagnostics.
func NewEngine(cfg FlagsConfig, logger *slog.Logger, strict bool) *Engine {
	if logger == nil {
		logger = logging.Discard()
	}
	e := &Engine{
		store:     NewStore(cfg),
		evaluator: NewEvaluator(logger),
		logger:    logger,
		strict:    strict,
	}
	logger.Info("flag engine initialized", "flags", e.store.Len(), "strict", strict)
	return e
}

// EngineFromYAML parses, validates, and loads a YAML flags document.
func EngineFromYAML(data []byte, logger *slog.Logger, strict bool) (*Engine, error) {
	cfg, err := ParseYAML(data)
	if err != nil {
		return nil, err
	}
	return NewEngine(cfg, logger, strict), nil
}

// EngineFromFile parses, validates, and loads a YAML flags file.
func EngineFromFile(path string, logger *slog.Logger, strict bool) (*Engine, error) {
	cfg, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return NewEngine(cfg, logger, strict), nil
}

// Evaluate decides flagName for ctx against one atomic snapshot of the
// active configuration. The only possible error is *FlagNotFoundError in
// strict mode.
func (e *Engine) Evaluate(flagName string, ctx EvaluationContext) (EvaluationResult, error) {
	cfg, ok := e.store.Get(flagName)
	if !ok {
		if e.strict {
			return EvaluationResult{}, &FlagNotFoundError{FlagName: flagName}
		}
		e.logger.Warn("flag not found, returning disabled", "flag", flagName)
		return EvaluationResult{
			FlagName: flagName,
			Enabled:  false,
			Reason:   "Flag not found",
			Metadata: EvaluationMetadata{Timestamp: time.Now()},
		}, nil
	}
	return e.evaluator.Evaluate(flagName, cfg, ctx), nil
}

// IsEnabled is a boolean-only convenience over Evaluate. A strict-mode
// missing flag reports false.
func (e *Engine) IsEnabled(flagName string, ctx EvaluationContext) bool {
	result, err := e.Evaluate(flagName, ctx)
	if err != nil {
		return false
	}
	return result.Enabled
}

// AllFlagNames returns the names in the current snapshot, sorted.
func (e *Engine) AllFlagNames() []string {
	snapshot := e.store.Snapshot()
	names := make([]string, 0, len(snapshot))
	for name := range snapshot {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FlagConfig returns one flag's configuration from the current snapshot.
func (e *Engine) FlagConfig(name string) (FlagConfig, bool) {
	return e.store.Get(name)
}

// Config returns a copy of the active configuration.
func (e *Engine) Config() FlagsConfig {
	return maps.Clone(e.store.Snapshot())
}

// ReplaceConfig atomically installs cfg as the active configuration. The
// caller is responsible for having validated it; concurrent evaluations see
// either the old map or the new one, never a mixture.
func (e *Engine) ReplaceConfig(cfg FlagsConfig) {
	e.store.Replace(cfg)
	e.logger.Info("configuration replaced", "flags", len(cfg))
}
