package main

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"
)

func TestParseToolArgs(t *testing.T) {
	tests := []struct {
		name  string
		pairs []string
		want  map[string]any
	}{
		{"empty", nil, map[string]any{}},
		{"string", []string{"pane_name=Build"}, map[string]any{"pane_name": "Build"}},
		{"number", []string{"max_lines=10"}, map[string]any{"max_lines": float64(10)}},
		{"bool", []string{"wait=false"}, map[string]any{"wait": false}},
		{"quoted", []string{`format="json"`}, map[string]any{"format": "json"}},
		{"equals in value", []string{"pane_name=a=b"}, map[string]any{"pane_name": "a=b"}},
		{"empty value", []string{"pane_name="}, map[string]any{"pane_name": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseToolArgs(tt.pairs)
			if err != nil {
				t.Fatalf("parseToolArgs: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParseToolArgs_Invalid(t *testing.T) {
	for _, p := range []string{"pane_name", "=Build"} {
		if _, err := parseToolArgs([]string{p}); err == nil {
			t.Errorf("%q: expected error", p)
		}
	}
}

func TestRun_ExitCodes(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no command", nil, 2},
		{"unknown command", []string{"bogus"}, 2},
		{"version", []string{"version"}, 0},
		{"help", []string{"help"}, 0},
		{"call without tool", []string{"call"}, 2},
		{"call bad argument", []string{"call", "read_output_pane", "pane_name"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(tt.args); got != tt.want {
				t.Errorf("run(%q) = %d, want %d", tt.args, got, tt.want)
			}
		})
	}
}

func TestRun_CallWithoutInstance(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("would attach to a real Visual Studio instance")
	}
	cfg := filepath.Join(t.TempDir(), "missing.yaml")

	if got := run([]string{"call", "-config", cfg, "get_debugger_state"}); got != 0 {
		t.Errorf("get_debugger_state: exit %d, want 0", got)
	}
	if got := run([]string{"call", "-config", cfg, "read_output_pane", "pane_name="}); got != 1 {
		t.Errorf("blank pane_name: exit %d, want 1", got)
	}
}

func TestLogConnection_NoInstance(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("would attach to a real Visual Studio instance")
	}
	var out bytes.Buffer
	log.SetOutput(&out)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	b, err := openBridge(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("openBridge: %v", err)
	}
	defer b.Close()

	if b.logConnection() {
		t.Fatal("logConnection() = true without an instance")
	}
	if !strings.Contains(out.String(), "no Visual Studio instance found") {
		t.Errorf("missing resolution log:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "until Visual Studio is started") {
		t.Errorf("missing startup status:\n%s", out.String())
	}
}
