package devbolt

import (
	"errors"
	"strings"
	"testing"
)

func validFlagBody() map[string]any {
	return map[string]any{"enabled": true}
}

func TestValidateAcceptsFullConfig(t *testing.T) {
	raw := map[string]any{
		"new_checkout": map[string]any{
			"enabled":     true,
			"description": "New checkout flow",
			"rollout":     map[string]any{"percentage": 25, "seed": "checkout"},
			"targeting": []any{
				map[string]any{
					"attribute":   "email",
					"operator":    "ends_with",
					"value":       "@example.com",
					"enabled":     true,
					"description": "internal users",
				},
				map[string]any{
					"attribute": "plan",
					"operator":  "in",
					"values":    []any{"pro", "enterprise"},
					"enabled":   true,
				},
			},
			"environments": map[string]any{"production": false, "staging": true},
			"metadata":     map[string]any{"owner": "growth", "jira": 1234},
		},
	}
	if err := Validate(raw); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name        string
		raw         any
		wantField   string
		wantMessage string
	}{
		{
			name:        "non-mapping config",
			raw:         []any{"nope"},
			wantField:   "",
			wantMessage: "must be a mapping",
		},
		{
			name:        "uppercase flag name",
			raw:         map[string]any{"InvalidFlag": validFlagBody()},
			wantField:   "flagName",
			wantMessage: "lowercase",
		},
		{
			name:        "flag name too long",
			raw:         map[string]any{strings.Repeat("a", 101): validFlagBody()},
			wantField:   "flagName",
			wantMessage: "maximum length",
		},
		{
			name:        "flag body not a mapping",
			raw:         map[string]any{"my_flag": "yes"},
			wantField:   "my_flag",
			wantMessage: "must be a mapping",
		},
		{
			name:        "missing enabled",
			raw:         map[string]any{"my_flag": map[string]any{}},
			wantField:   "my_flag.enabled",
			wantMessage: "'enabled' must be a boolean",
		},
		{
			name:        "enabled wrong type",
			raw:         map[string]any{"my_flag": map[string]any{"enabled": "true"}},
			wantField:   "my_flag.enabled",
			wantMessage: "'enabled' must be a boolean",
		},
		{
			name:        "description wrong type",
			raw:         map[string]any{"my_flag": map[string]any{"enabled": true, "description": 7}},
			wantField:   "my_flag.description",
			wantMessage: "description must be a string",
		},
		{
			name: "description too long",
			raw: map[string]any{"my_flag": map[string]any{
				"enabled": true, "description": strings.Repeat("x", 501),
			}},
			wantField:   "my_flag.description",
			wantMessage: "maximum length",
		},
		{
			name: "rollout not a mapping",
			raw: map[string]any{"my_flag": map[string]any{
				"enabled": true, "rollout": 50,
			}},
			wantField:   "my_flag.rollout",
			wantMessage: "rollout must be a mapping",
		},
		{
			name: "rollout percentage missing",
			raw: map[string]any{"my_flag": map[string]any{
				"enabled": true, "rollout": map[string]any{},
			}},
			wantField:   "my_flag.rollout.percentage",
			wantMessage: "must be a number",
		},
		{
			name: "rollout percentage above 100",
			raw: map[string]any{"my_flag": map[string]any{
				"enabled": true, "rollout": map[string]any{"percentage": 101},
			}},
			wantField:   "my_flag.rollout.percentage",
			wantMessage: "between 0 and 100",
		},
		{
			name: "rollout percentage negative",
			raw: map[string]any{"my_flag": map[string]any{
				"enabled": true, "rollout": map[string]any{"percentage": -0.5},
			}},
			wantField:   "my_flag.rollout.percentage",
			wantMessage: "between 0 and 100",
		},
		{
			name: "rollout seed wrong type",
			raw: map[string]any{"my_flag": map[string]any{
				"enabled": true, "rollout": map[string]any{"percentage": 50, "seed": 3},
			}},
			wantField:   "my_flag.rollout.seed",
			wantMessage: "seed must be a string",
		},
		{
			name: "targeting not a list",
			raw: map[string]any{"my_flag": map[string]any{
				"enabled": true, "targeting": map[string]any{},
			}},
			wantField:   "my_flag.targeting",
			wantMessage: "targeting must be a list",
		},
		{
			name: "targeting rule not a mapping",
			raw: map[string]any{"my_flag": map[string]any{
				"enabled": true, "targeting": []any{"rule"},
			}},
			wantField:   "my_flag.targeting[0]",
			wantMessage: "must be a mapping",
		},
		{
			name: "targeting rule empty attribute",
			raw: map[string]any{"my_flag": map[string]any{
				"enabled": true, "targeting": []any{
					map[string]any{"attribute": "", "operator": "equals", "value": "x", "enabled": true},
				},
			}},
			wantField:   "my_flag.targeting[0].attribute",
			wantMessage: "non-empty string",
		},
		{
			name: "targeting rule invalid operator",
			raw: map[string]any{"my_flag": map[string]any{
				"enabled": true, "targeting": []any{
					map[string]any{"attribute": "plan", "operator": "almost_equals", "value": "x", "enabled": true},
				},
			}},
			wantField:   "my_flag.targeting[0].operator",
			wantMessage: "invalid operator",
		},
		{
			name: "in operator without values",
			raw: map[string]any{"my_flag": map[string]any{
				"enabled": true, "targeting": []any{
					map[string]any{"attribute": "plan", "operator": "in", "enabled": true},
				},
			}},
			wantField:   "my_flag.targeting[0].values",
			wantMessage: "requires non-empty 'values'",
		},
		{
			name: "in operator with empty values",
			raw: map[string]any{"my_flag": map[string]any{
				"enabled": true, "targeting": []any{
					map[string]any{"attribute": "plan", "operator": "in", "values": []any{}, "enabled": true},
				},
			}},
			wantField:   "my_flag.targeting[0].values",
			wantMessage: "requires non-empty 'values'",
		},
		{
			name: "equals without value",
			raw: map[string]any{"my_flag": map[string]any{
				"enabled": true, "targeting": []any{
					map[string]any{"attribute": "plan", "operator": "equals", "enabled": true},
				},
			}},
			wantField:   "my_flag.targeting[0].value",
			wantMessage: "requires 'value'",
		},
		{
			name: "value must be scalar",
			raw: map[string]any{"my_flag": map[string]any{
				"enabled": true, "targeting": []any{
					map[string]any{"attribute": "plan", "operator": "equals", "value": map[string]any{}, "enabled": true},
				},
			}},
			wantField:   "my_flag.targeting[0].value",
			wantMessage: "must be a scalar",
		},
		{
			name: "values elements must be scalar",
			raw: map[string]any{"my_flag": map[string]any{
				"enabled": true, "targeting": []any{
					map[string]any{"attribute": "plan", "operator": "in", "values": []any{"ok", []any{}}, "enabled": true},
				},
			}},
			wantField:   "my_flag.targeting[0].values[1]",
			wantMessage: "must be a scalar",
		},
		{
			name: "targeting rule missing enabled",
			raw: map[string]any{"my_flag": map[string]any{
				"enabled": true, "targeting": []any{
					map[string]any{"attribute": "plan", "operator": "equals", "value": "x"},
				},
			}},
			wantField:   "my_flag.targeting[0].enabled",
			wantMessage: "'enabled' must be a boolean",
		},
		{
			name: "invalid regex pattern",
			raw: map[string]any{"my_flag": map[string]any{
				"enabled": true, "targeting": []any{
					map[string]any{"attribute": "email", "operator": "matches_regex", "value": "[unclosed", "enabled": true},
				},
			}},
			wantField:   "my_flag.targeting[0].value",
			wantMessage: "invalid regex",
		},
		{
			name: "environments not a mapping",
			raw: map[string]any{"my_flag": map[string]any{
				"enabled": true, "environments": []any{"production"},
			}},
			wantField:   "my_flag.environments",
			wantMessage: "environments must be a mapping",
		},
		{
			name: "environment value not boolean",
			raw: map[string]any{"my_flag": map[string]any{
				"enabled": true, "environments": map[string]any{"production": "yes"},
			}},
			wantField:   "my_flag.environments.production",
			wantMessage: "must be a boolean",
		},
		{
			name: "metadata not a mapping",
			raw: map[string]any{"my_flag": map[string]any{
				"enabled": true, "metadata": "owner=growth",
			}},
			wantField:   "my_flag.metadata",
			wantMessage: "metadata must be a mapping",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.raw)
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error type %T, want *ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", verr.Field, tt.wantField)
			}
			if !strings.Contains(verr.Message, tt.wantMessage) {
				t.Errorf("Message = %q, want it to contain %q", verr.Message, tt.wantMessage)
			}
		})
	}
}

func TestValidateChecksNameBeforeBody(t *testing.T) {
	// The flag name violation must win even though the body is also broken.
	raw := map[string]any{"BadName": map[string]any{"enabled": "nope"}}
	err := Validate(raw)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type %T, want *ValidationError", err)
	}
	if verr.Field != "flagName" {
		t.Errorf("Field = %q, want flagName", verr.Field)
	}
}

func TestValidateAllowsEmptyStringValue(t *testing.T) {
	raw := map[string]any{"my_flag": map[string]any{
		"enabled": true,
		"targeting": []any{
			map[string]any{"attribute": "plan", "operator": "equals", "value": "", "enabled": true},
		},
	}}
	if err := Validate(raw); err != nil {
		t.Fatalf("empty-string value should be legal, got %v", err)
	}
}
