package devbolt

import (
	"log/slog"
	"regexp"
	"strings"
)

// matchRule evaluates one targeting rule against one context. It never fails:
// a missing attribute, missing operand, failed numeric coercion, or invalid
// regex all resolve to "no match", with a diagnostic on logger.
func matchRule(rule TargetingRule, ctx EvaluationContext, logger *slog.Logger) bool {
	attr, ok := resolveAttribute(rule.Attribute, ctx)
	if !ok {
		return false
	}

	switch rule.Operator {
	case OperatorEquals:
		return rule.Value != nil && attr.Equal(*rule.Value)

	case OperatorNotEquals:
		return rule.Value != nil && !attr.Equal(*rule.Value)

	case OperatorIn:
		return containsValue(rule.Values, attr)

	case OperatorNotIn:
		return !containsValue(rule.Values, attr)

	case OperatorContains:
		return rule.Value != nil &&
			strings.Contains(lowered(attr), lowered(*rule.Value))

	case OperatorNotContains:
		return rule.Value != nil &&
			!strings.Contains(lowered(attr), lowered(*rule.Value))

	case OperatorStartsWith:
		return rule.Value != nil &&
			strings.HasPrefix(lowered(attr), lowered(*rule.Value))

	case OperatorEndsWith:
		return rule.Value != nil &&
			strings.HasSuffix(lowered(attr), lowered(*rule.Value))

	case OperatorGreaterThan, OperatorLessThan,
		OperatorGreaterThanOrEqual, OperatorLessThanOrEqual:
		return compareNumeric(rule, attr, logger)

	case OperatorMatchesRegex:
		if rule.Value == nil {
			return false
		}
		re, err := regexp.Compile(rule.Value.String())
		if err != nil {
			logger.Error("invalid targeting regex",
				"attribute", rule.Attribute,
				"pattern", rule.Value.String(),
				"error", err)
			return false
		}
		return re.MatchString(attr.String())

	default:
		logger.Warn("unknown targeting operator", "operator", string(rule.Operator))
		return false
	}
}

// resolveAttribute looks the rule's attribute up in the context: the fixed
// fields userId, email, and environment first, then customAttributes. The
// second return is false when the attribute is absent, which fails the rule
// closed regardless of operator.
func resolveAttribute(name string, ctx EvaluationContext) (Value, bool) {
	switch name {
	case "userId":
		if ctx.UserID == "" {
			return Value{}, false
		}
		return StringValue(ctx.UserID), true
	case "email":
		if ctx.Email == "" {
			return Value{}, false
		}
		return StringValue(ctx.Email), true
	case "environment":
		if ctx.Environment == "" {
			return Value{}, false
		}
		return StringValue(ctx.Environment), true
	}
	v, ok := ctx.CustomAttributes[name]
	return v, ok
}

func containsValue(values []Value, v Value) bool {
	for _, candidate := range values {
		if candidate.Equal(v) {
			return true
		}
	}
	return false
}

func lowered(v Value) string {
	return strings.ToLower(v.String())
}

func compareNumeric(rule TargetingRule, attr Value, logger *slog.Logger) bool {
	if rule.Value == nil {
		return false
	}
	left, okLeft := attr.Float()
	right, okRight := rule.Value.Float()
	if !okLeft || !okRight {
		logger.Error("non-numeric operand in targeting comparison",
			"attribute", rule.Attribute,
			"operator", string(rule.Operator))
		return false
	}

	switch rule.Operator {
	case OperatorGreaterThan:
		return left > right
	case OperatorLessThan:
		return left < right
	case OperatorGreaterThanOrEqual:
		return left >= right
	default:
		return left <= right
	}
}
