package devbolt

import "testing"

func FuzzParseYAML(f *testing.F) {
	f.Add([]byte("my_flag:\n  enabled: true\n"))
	f.Add([]byte(sampleYAML))
	f.Add([]byte("{}"))
	f.Add([]byte(":"))
	f.Add([]byte("a: {enabled: true, rollout: {percentage: 50}}"))

	f.Fuzz(func(t *testing.T, data []byte) {
		cfg, err := ParseYAML(data)
		if err != nil {
			return
		}
		// Anything the parser accepts must be evaluable without panicking.
		engine := NewEngine(cfg, nil, false)
		for _, name := range engine.AllFlagNames() {
			if _, err := engine.Evaluate(name, EvaluationContext{UserID: "fuzz"}); err != nil {
				t.Fatalf("evaluate %q: %v", name, err)
			}
		}
	})
}
