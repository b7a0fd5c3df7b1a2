package devbolt

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ModelRed/devbolt/internal/logging"
)

// Evaluator applies the decision algorithm to one flag's trusted
// configuration. It is stateless and safe for concurrent use.
type Evaluator struct {
	logger *slog.Logger
}

// NewEvaluator creates an Evaluator. A nil logger disables diagnostics.
func NewEvaluator(logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Evaluator{logger: logger}
}

// Evaluate decides whether flagName is on for ctx. The priority chain is
// fixed, each step short-circuiting on first applicable outcome:
//
//  1. Environment override: ctx.Environment present as a key in
//     cfg.Environments wins outright, even over a global enabled=false.
//  2. Global kill switch: cfg.Enabled == false disables the flag.
//  3. Targeting rules in declared order; the first match wins.
//  4. Percentage rollout, bucketed on userId, else email, else "anonymous".
//  5. Default: enabled for all users.
//
// Evaluate never fails for a validated config; a malformed rule simply does
// not match (see matchRule's fail-closed behavior).
func (e *Evaluator) Evaluate(flagName string, cfg FlagConfig, ctx EvaluationContext) EvaluationResult {
	start := time.Now()

	if cfg.Environments != nil && ctx.Environment != "" {
		if enabled, ok := cfg.Environments[ctx.Environment]; ok {
			e.logger.Debug("environment override",
				"flag", flagName, "environment", ctx.Environment, "enabled", enabled)
			return e.finish(flagName, enabled,
				"Environment override: "+ctx.Environment, start, nil, nil)
		}
	}

	if !cfg.Enabled {
		return e.finish(flagName, false, "Flag is disabled globally", start, nil, nil)
	}

	for index, rule := range cfg.Targeting {
		if !matchRule(rule, ctx, e.logger) {
			continue
		}
		e.logger.Debug("matched targeting rule", "flag", flagName, "rule", index+1)
		reason := fmt.Sprintf("Matched targeting rule #%d", index+1)
		if rule.Description != "" {
			reason += ": " + rule.Description
		}
		matched := index
		return e.finish(flagName, rule.Enabled, reason, start, &matched, nil)
	}

	if cfg.Rollout != nil {
		identifier := ctx.UserID
		if identifier == "" {
			identifier = ctx.Email
		}
		if identifier == "" {
			identifier = "anonymous"
		}
		seed := cfg.Rollout.Seed
		if seed == "" {
			seed = ctx.HashSeedOverride
		}
		bucket := Bucket(flagName, identifier, seed)
		enabled := float64(bucket) < cfg.Rollout.Percentage
		e.logger.Debug("rollout evaluation",
			"flag", flagName,
			"percentage", cfg.Rollout.Percentage,
			"bucket", bucket,
			"enabled", enabled)
		reason := fmt.Sprintf("Rollout %s%% (user bucket: %d)",
			formatPercentage(cfg.Rollout.Percentage), bucket)
		return e.finish(flagName, enabled, reason, start, nil, &bucket)
	}

	return e.finish(flagName, true, "Flag is enabled for all users", start, nil, nil)
}

func (e *Evaluator) finish(flagName string, enabled bool, reason string, start time.Time, matchedRule, bucket *int) EvaluationResult {
	result := EvaluationResult{
		FlagName: flagName,
		Enabled:  enabled,
		Reason:   reason,
		Metadata: EvaluationMetadata{
			Timestamp:        start,
			MatchedRuleIndex: matchedRule,
			RolloutBucket:    bucket,
		},
	}
	e.logger.Debug("evaluation complete",
		"flag", flagName,
		"enabled", enabled,
		"reason", reason,
		"duration", time.Since(start))
	return result
}
