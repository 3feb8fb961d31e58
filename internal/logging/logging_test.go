package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"":      zapcore.InfoLevel,
		"debug": zapcore.DebugLevel,
		"WARN":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Fatalf("ParseLevel(%q) error = %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseLevel("chatty"); err == nil {
		t.Fatalf("expected an error for an unknown level")
	}
}

func TestInitRejectsUnknownFormat(t *testing.T) {
	if err := Init(Config{Format: "xml"}); err == nil {
		t.Fatalf("expected an error for an unknown format")
	}
}

func TestInitWritesJSONToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "sync.log")
	if err := Init(Config{Level: "warn", Format: "json", OutputPath: out}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	L().Info("hidden")
	L().Warn("visible", String("file", "messages.properties"), Int("attempt", 2))
	_ = Sync()

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	text := string(data)
	if strings.Contains(text, "hidden") {
		t.Fatalf("info entry logged at warn level: %s", text)
	}
	if !strings.Contains(text, `"file":"messages.properties"`) || !strings.Contains(text, `"attempt":2`) {
		t.Fatalf("unexpected log output: %s", text)
	}
}
