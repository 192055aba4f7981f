package automation

import (
	"fmt"
	"strings"
	"testing"
)

func numberedLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i+1)
	}
	return lines
}

func TestTruncate(t *testing.T) {
	five := strings.Join(numberedLines(5), "\n")

	tests := []struct {
		name     string
		text     string
		maxLines int
		want     string
	}{
		{"zero returns all", five, 0, five},
		{"negative returns all", five, -3, five},
		{"equal returns all", five, 5, five},
		{"larger returns all", five, 9, five},
		{"keeps last lines", five, 2, "[Truncated to last 2 lines]\nline 4\nline 5"},
		{"trailing newline not counted", five + "\n", 5, five + "\n"},
		{"trailing newline kept", five + "\n", 1, "[Truncated to last 1 lines]\nline 5\n"},
		{"empty", "", 10, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.text, tt.maxLines); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.text, tt.maxLines, got, tt.want)
			}
		})
	}
}

func TestTruncate_BuildPaneScenario(t *testing.T) {
	all := numberedLines(120)
	got := Truncate(strings.Join(all, "\n"), 50)

	marker, rest, ok := strings.Cut(got, "\n")
	if !ok || marker != "[Truncated to last 50 lines]" {
		t.Fatalf("first line = %q, want truncation marker", marker)
	}
	kept := strings.Split(rest, "\n")
	if len(kept) != 50 {
		t.Fatalf("kept %d lines, want 50", len(kept))
	}
	for i, line := range kept {
		if want := fmt.Sprintf("line %d", 71+i); line != want {
			t.Fatalf("kept[%d] = %q, want %q", i, line, want)
		}
	}
}

func TestMatchPane(t *testing.T) {
	names := []string{"Build", "Build Order", "Debug", "Xamarin Diagnostics", "Ünïcode"}

	tests := []struct {
		query string
		want  int
	}{
		{"build", 0},
		{"BUILD", 0},
		{"order", 1},
		{"bug", 2},
		{"diag", 3},
		{"ÜNÏ", 4},
		{"Tests", -1},
		{"", 0},
	}
	for _, tt := range tests {
		if got := MatchPane(names, tt.query); got != tt.want {
			t.Errorf("MatchPane(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestBaseName(t *testing.T) {
	tests := map[string]string{
		`C:\src\App\App.sln`: "App.sln",
		"/home/dev/app.cs":   "app.cs",
		"Program.cs":         "Program.cs",
		"":                   "",
	}
	for in, want := range tests {
		if got := BaseName(in); got != want {
			t.Errorf("BaseName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInferSeverity(t *testing.T) {
	tests := map[string]Severity{
		"CS0168: warning, variable declared but never used": SeverityWarning,
		"Info: package restored":                            SeverityMessage,
		"Message from analyzer":                             SeverityMessage,
		"CS1002: ; expected":                                SeverityError,
	}
	for desc, want := range tests {
		if got := inferSeverity(desc); got != want {
			t.Errorf("inferSeverity(%q) = %s, want %s", desc, got, want)
		}
	}
}
