package devbolt

import (
	"fmt"
	"testing"
)

func BenchmarkEvaluateDefault(b *testing.B) {
	eval := NewEvaluator(nil)
	cfg := FlagConfig{Enabled: true}
	ctx := EvaluationContext{UserID: "user-123"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		eval.Evaluate("bench_flag", cfg, ctx)
	}
}

func BenchmarkEvaluateTargeting(b *testing.B) {
	eval := NewEvaluator(nil)
	rules := make([]TargetingRule, 10)
	for i := range rules {
		rules[i] = TargetingRule{
			Attribute: "plan",
			Operator:  OperatorEquals,
			Enabled:   true,
			Value:     valuePtr(StringValue(fmt.Sprintf("tier-%d", i))),
		}
	}
	cfg := FlagConfig{Enabled: true, Targeting: rules}
	ctx := EvaluationContext{CustomAttributes: map[string]Value{"plan": StringValue("tier-9")}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		eval.Evaluate("bench_flag", cfg, ctx)
	}
}

func BenchmarkEvaluateRollout(b *testing.B) {
	eval := NewEvaluator(nil)
	cfg := FlagConfig{Enabled: true, Rollout: &Rollout{Percentage: 50}}
	ctx := EvaluationContext{UserID: "user-123"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		eval.Evaluate("bench_flag", cfg, ctx)
	}
}

func BenchmarkBucket(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Bucket("bench_flag", "user-123", "")
	}
}
