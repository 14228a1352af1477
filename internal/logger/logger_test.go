package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewJSONIncludesServiceName(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info", "json")
	log.Info().Msg("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line["service"] != ServiceName {
		t.Fatalf("service = %v, want %s", line["service"], ServiceName)
	}
	if line["message"] != "hello" {
		t.Fatalf("message = %v, want hello", line["message"])
	}
}

func TestNewFallsBackToInfoOnBadLevel(t *testing.T) {
	var buf bytes.Buffer
	_ = New(&buf, "shouting", "json")
	if got := zerolog.GlobalLevel(); got != zerolog.InfoLevel {
		t.Fatalf("global level = %v, want info", got)
	}
}
