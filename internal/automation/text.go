package automation

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// MatchPane returns the index of the first name containing query, compared
// with Unicode case folding, or -1.
func MatchPane(names []string, query string) int {
	fold := cases.Fold()
	q := fold.String(query)
	for i, name := range names {
		if strings.Contains(fold.String(name), q) {
			return i
		}
	}
	return -1
}

// Truncate keeps the last maxLines lines of text behind a marker line.
// Text with maxLines or fewer lines, or a maxLines <= 0, is returned as is.
// A trailing newline ends the last line; it does not start a new one.
func Truncate(text string, maxLines int) string {
	if maxLines <= 0 {
		return text
	}

	body, nl := strings.CutSuffix(text, "\n")
	lines := strings.Split(body, "\n")
	if len(lines) <= maxLines {
		return text
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[Truncated to last %d lines]\n", maxLines)
	b.WriteString(strings.Join(lines[len(lines)-maxLines:], "\n"))
	if nl {
		b.WriteByte('\n')
	}
	return b.String()
}
