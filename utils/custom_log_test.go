package utils

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
)

func captureLog(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	flags := log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	}()
	fn()
	return buf.String()
}

func TestLogLevels(t *testing.T) {
	out := captureLog(t, func() {
		SetDebug(false)
		LogDebug("hidden %d", 1)
		LogInfo("info %d", 2)
		LogWarn("warn %d", 3)
		LogErro("erro %d", 4)
	})
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line printed while debug disabled: %q", out)
	}
	for _, want := range []string{"INFO info 2", "WARN warn 3", "ERRO erro 4"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got %q", want, out)
		}
	}
}

func TestLogDebugAndColor(t *testing.T) {
	out := captureLog(t, func() {
		SetDebug(true)
		SetColorPrint(true)
		defer SetDebug(false)
		defer SetColorPrint(false)
		LogDebug("shown")
	})
	if !strings.Contains(out, colorCyan+"DEBU shown") || !strings.Contains(out, colorReset) {
		t.Fatalf("expected coloured debug line, got %q", out)
	}
}
