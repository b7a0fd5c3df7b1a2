package devbolt

import (
	"fmt"
	"regexp"
	"sort"
)

const (
	// MaxFlagNameLength bounds flag name length.
	MaxFlagNameLength = 100
	// MaxDescriptionLength bounds flag description length.
	MaxDescriptionLength = 500
)

var flagNamePattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Validate walks a raw, untyped configuration tree depth-first and returns a
// *ValidationError on the first structural violation. It is the single gate
// between decoded YAML and trusted [FlagsConfig] data: anything it accepts
// converts losslessly to the typed model.
//
// Flags are checked in sorted name order, and a flag's name before its body,
// so error messages are reproducible for a given malformed input.
func Validate(raw any) error {
	config, ok := raw.(map[string]any)
	if !ok {
		return validationErrorf("", raw, "config must be a mapping of flag names to flag configs")
	}

	names := make([]string, 0, len(config))
	for name := range config {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := validateFlagName(name); err != nil {
			return err
		}
		if err := validateFlagConfig(name, config[name]); err != nil {
			return err
		}
	}
	return nil
}

func validateFlagName(name string) error {
	if name == "" {
		return validationErrorf("flagName", name, "flag name must be a non-empty string")
	}
	if !flagNamePattern.MatchString(name) {
		return validationErrorf("flagName", name,
			"flag name %q must contain only lowercase letters, numbers, underscores, and hyphens", name)
	}
	if len(name) > MaxFlagNameLength {
		return validationErrorf("flagName", name,
			"flag name %q exceeds maximum length of %d", name, MaxFlagNameLength)
	}
	return nil
}

func validateFlagConfig(name string, raw any) error {
	flag, ok := raw.(map[string]any)
	if !ok {
		return validationErrorf(name, raw, "flag %q: config must be a mapping", name)
	}

	if enabled, ok := flag["enabled"]; !ok || !isBool(enabled) {
		return validationErrorf(name+".enabled", flag["enabled"],
			"flag %q: 'enabled' must be a boolean", name)
	}

	if description, ok := flag["description"]; ok {
		if err := validateDescription(name, description); err != nil {
			return err
		}
	}
	if rollout, ok := flag["rollout"]; ok {
		if err := validateRollout(name, rollout); err != nil {
			return err
		}
	}
	if targeting, ok := flag["targeting"]; ok {
		if err := validateTargeting(name, targeting); err != nil {
			return err
		}
	}
	if environments, ok := flag["environments"]; ok {
		if err := validateEnvironments(name, environments); err != nil {
			return err
		}
	}
	if metadata, ok := flag["metadata"]; ok {
		if _, isMap := metadata.(map[string]any); !isMap {
			return validationErrorf(name+".metadata", metadata,
				"flag %q: metadata must be a mapping", name)
		}
	}
	return nil
}

func validateDescription(name string, raw any) error {
	description, ok := raw.(string)
	if !ok {
		return validationErrorf(name+".description", raw,
			"flag %q: description must be a string", name)
	}
	if len(description) > MaxDescriptionLength {
		return validationErrorf(name+".description", description,
			"flag %q: description exceeds maximum length of %d", name, MaxDescriptionLength)
	}
	return nil
}

func validateRollout(name string, raw any) error {
	rollout, ok := raw.(map[string]any)
	if !ok {
		return validationErrorf(name+".rollout", raw,
			"flag %q: rollout must be a mapping", name)
	}

	percentage, ok := asNumber(rollout["percentage"])
	if !ok {
		return validationErrorf(name+".rollout.percentage", rollout["percentage"],
			"flag %q: rollout.percentage must be a number", name)
	}
	if percentage < 0 || percentage > 100 {
		return validationErrorf(name+".rollout.percentage", rollout["percentage"],
			"flag %q: rollout.percentage must be between 0 and 100", name)
	}

	if seed, ok := rollout["seed"]; ok {
		if _, isString := seed.(string); !isString {
			return validationErrorf(name+".rollout.seed", seed,
				"flag %q: rollout.seed must be a string", name)
		}
	}
	return nil
}

func validateTargeting(name string, raw any) error {
	targeting, ok := raw.([]any)
	if !ok {
		return validationErrorf(name+".targeting", raw,
			"flag %q: targeting must be a list", name)
	}
	for index, rule := range targeting {
		if err := validateTargetingRule(name, rule, index); err != nil {
			return err
		}
	}
	return nil
}

func validateTargetingRule(name string, raw any, index int) error {
	rule, ok := raw.(map[string]any)
	if !ok {
		return validationErrorf(fmt.Sprintf("%s.targeting[%d]", name, index), raw,
			"flag %q: targeting rule %d must be a mapping", name, index)
	}
	ruleKey := fmt.Sprintf("%s.targeting[%d]", name, index)

	attribute, ok := rule["attribute"].(string)
	if !ok || attribute == "" {
		return validationErrorf(ruleKey+".attribute", rule["attribute"],
			"flag %q: targeting rule %d attribute must be a non-empty string", name, index)
	}

	operatorRaw, _ := rule["operator"].(string)
	operator := Operator(operatorRaw)
	if !operator.Valid() {
		return validationErrorf(ruleKey+".operator", rule["operator"],
			"flag %q: targeting rule %d has invalid operator %q", name, index, fmt.Sprint(rule["operator"]))
	}

	if operator.TakesValues() {
		values, ok := rule["values"].([]any)
		if !ok || len(values) == 0 {
			return validationErrorf(ruleKey+".values", rule["values"],
				"flag %q: targeting rule %d with operator %q requires non-empty 'values' list", name, index, operator)
		}
		for i, v := range values {
			if _, ok := valueOf(v); !ok {
				return validationErrorf(fmt.Sprintf("%s.values[%d]", ruleKey, i), v,
					"flag %q: targeting rule %d values[%d] must be a scalar (string, number, or bool)", name, index, i)
			}
		}
	} else {
		value, ok := rule["value"]
		if !ok {
			return validationErrorf(ruleKey+".value", nil,
				"flag %q: targeting rule %d with operator %q requires 'value' field", name, index, operator)
		}
		if _, ok := valueOf(value); !ok {
			return validationErrorf(ruleKey+".value", value,
				"flag %q: targeting rule %d 'value' must be a scalar (string, number, or bool)", name, index)
		}
	}

	if enabled, ok := rule["enabled"]; !ok || !isBool(enabled) {
		return validationErrorf(ruleKey+".enabled", rule["enabled"],
			"flag %q: targeting rule %d 'enabled' must be a boolean", name, index)
	}

	if description, ok := rule["description"]; ok {
		if _, isString := description.(string); !isString {
			return validationErrorf(ruleKey+".description", description,
				"flag %q: targeting rule %d description must be a string", name, index)
		}
	}

	if operator == OperatorMatchesRegex {
		pattern, _ := valueOf(rule["value"])
		if _, err := regexp.Compile(pattern.String()); err != nil {
			return validationErrorf(ruleKey+".value", rule["value"],
				"flag %q: targeting rule %d has invalid regex pattern", name, index)
		}
	}
	return nil
}

func validateEnvironments(name string, raw any) error {
	environments, ok := raw.(map[string]any)
	if !ok {
		return validationErrorf(name+".environments", raw,
			"flag %q: environments must be a mapping", name)
	}

	envNames := make([]string, 0, len(environments))
	for env := range environments {
		envNames = append(envNames, env)
	}
	sort.Strings(envNames)

	for _, env := range envNames {
		if !isBool(environments[env]) {
			return validationErrorf(name+".environments."+env, environments[env],
				"flag %q: environment %q value must be a boolean", name, env)
		}
	}
	return nil
}

func isBool(raw any) bool {
	_, ok := raw.(bool)
	return ok
}

// asNumber accepts every numeric type the YAML decoder produces.
func asNumber(raw any) (float64, bool) {
	switch n := raw.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}
