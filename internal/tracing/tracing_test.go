package tracing

import (
	"context"
	"testing"
)

func TestInitDisabledWithoutEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	shutdown, err := Init(context.Background(), "myapp", "0.3.0")
	if err != nil {
		t.Fatalf("Init() = %v", err)
	}
	if shutdown == nil {
		t.Fatal("expected non-nil shutdown function")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("no-op shutdown returned %v", err)
	}
}

func TestNewResourceServiceNameFallback(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		envName string
		want    string
	}{
		{name: "explicit name wins", arg: "myapp", envName: "envapp", want: "myapp"},
		{name: "env fallback", arg: "", envName: "envapp", want: "envapp"},
		{name: "default fallback", arg: "", envName: "", want: "devbolt"},
		{name: "whitespace is unset", arg: "  ", envName: "", want: "devbolt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OTEL_SERVICE_NAME", tt.envName)

			res, err := newResource(tt.arg, "0.3.0")
			if err != nil {
				t.Fatalf("newResource() = %v", err)
			}
			var got string
			for _, attr := range res.Attributes() {
				if string(attr.Key) == "service.name" {
					got = attr.Value.AsString()
				}
			}
			if got != tt.want {
				t.Errorf("service.name = %q, want %q", got, tt.want)
			}
		})
	}
}
