package devbolt

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes a YAML flags document, validates it, and converts it to
// the typed model. Parsing either fully succeeds or fails without producing
// a partially converted config.
func ParseYAML(data []byte) (FlagsConfig, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Message: "failed to parse YAML", Err: err}
	}
	if raw == nil {
		return nil, &ParseError{Message: "config must be a YAML mapping"}
	}
	if err := Validate(raw); err != nil {
		return nil, err
	}
	return convertConfig(raw), nil
}

// ParseFile reads and parses a YAML flags file.
func ParseFile(path string) (FlagsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ParseError{Message: fmt.Sprintf("config file not found: %s", path), Err: err}
		}
		return nil, &ParseError{Message: fmt.Sprintf("failed to read config file: %s", path), Err: err}
	}
	return ParseYAML(data)
}

// convertConfig turns a validated raw tree into the typed model. It assumes
// Validate has accepted the tree; the conversions below cannot fail.
func convertConfig(raw map[string]any) FlagsConfig {
	config := make(FlagsConfig, len(raw))
	for name, rawFlag := range raw {
		config[name] = convertFlag(rawFlag.(map[string]any))
	}
	return config
}

func convertFlag(raw map[string]any) FlagConfig {
	flag := FlagConfig{Enabled: raw["enabled"].(bool)}

	if description, ok := raw["description"].(string); ok {
		flag.Description = description
	}

	if rawRollout, ok := raw["rollout"].(map[string]any); ok {
		percentage, _ := asNumber(rawRollout["percentage"])
		rollout := &Rollout{Percentage: percentage}
		if seed, ok := rawRollout["seed"].(string); ok {
			rollout.Seed = seed
		}
		flag.Rollout = rollout
	}

	if rawTargeting, ok := raw["targeting"].([]any); ok {
		flag.Targeting = make([]TargetingRule, 0, len(rawTargeting))
		for _, rawRule := range rawTargeting {
			flag.Targeting = append(flag.Targeting, convertRule(rawRule.(map[string]any)))
		}
	}

	if rawEnvironments, ok := raw["environments"].(map[string]any); ok {
		flag.Environments = make(map[string]bool, len(rawEnvironments))
		for env, enabled := range rawEnvironments {
			flag.Environments[env] = enabled.(bool)
		}
	}

	if metadata, ok := raw["metadata"].(map[string]any); ok {
		flag.Metadata = metadata
	}
	return flag
}

func convertRule(raw map[string]any) TargetingRule {
	rule := TargetingRule{
		Attribute: raw["attribute"].(string),
		Operator:  Operator(raw["operator"].(string)),
		Enabled:   raw["enabled"].(bool),
	}
	if description, ok := raw["description"].(string); ok {
		rule.Description = description
	}
	if rule.Operator.TakesValues() {
		rawValues := raw["values"].([]any)
		rule.Values = make([]Value, 0, len(rawValues))
		for _, rawValue := range rawValues {
			v, _ := valueOf(rawValue)
			rule.Values = append(rule.Values, v)
		}
	} else {
		v, _ := valueOf(raw["value"])
		rule.Value = &v
	}
	return rule
}
