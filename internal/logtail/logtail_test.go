package logtail

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func numbered(n int) (string, []string) {
	var b strings.Builder
	lines := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		line := fmt.Sprintf("line %d", i)
		b.WriteString(line + "\n")
		lines = append(lines, line)
	}
	return b.String(), lines
}

func TestTail(t *testing.T) {
	content, all := numbered(10)

	tests := []struct {
		name     string
		maxLines int
		want     []string
	}{
		{"all with zero", 0, all},
		{"all with negative", -1, all},
		{"last five", 5, all[5:]},
		{"exactly all", 10, all},
		{"more than exists", 20, all},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tail(strings.NewReader(content), tt.maxLines)
			if err != nil {
				t.Fatalf("Tail: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Tail = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadMissingFile(t *testing.T) {
	lines, err := Read(filepath.Join(t.TempDir(), "absent.log"), 10)
	if err != nil || lines != nil {
		t.Fatalf("Read(missing) = %v, %v", lines, err)
	}
}

func TestReadFile(t *testing.T) {
	content, all := numbered(3)
	path := filepath.Join(t.TempDir(), "nixtrack.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	lines, err := Read(path, 2)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !reflect.DeepEqual(lines, all[1:]) {
		t.Fatalf("Read = %v", lines)
	}
}

func TestFilter(t *testing.T) {
	lines := []string{"refresh dashboard: timeout", "Load Orders: ok", "session saved"}
	if got := Filter(lines, "ORDERS"); !reflect.DeepEqual(got, []string{"Load Orders: ok"}) {
		t.Fatalf("Filter = %v", got)
	}
	if got := Filter(lines, " "); len(got) != 3 {
		t.Fatalf("blank filter dropped lines: %v", got)
	}
}

func TestIsFailure(t *testing.T) {
	tests := map[string]bool{
		"refresh dashboard: request failed":  true,
		"api error 503":                      true,
		"session token expired, signing out": true,
		"load orders: 200 items":             false,
		"errorless message":                  false,
	}
	for line, want := range tests {
		if got := IsFailure(line); got != want {
			t.Errorf("IsFailure(%q) = %v, want %v", line, got, want)
		}
	}
}

func TestHighlighterPlainOnNonTerminal(t *testing.T) {
	h := NewHighlighter(lipgloss.NewRenderer(io.Discard))
	line := "nixtrack 2026/04/02 15:04:05 refresh dashboard: request failed"
	if got := h.Line(line); got != line {
		t.Fatalf("Line = %q, want unchanged %q", got, line)
	}
	if got := h.Line("  continuation"); got != "  continuation" {
		t.Fatalf("Line = %q", got)
	}
}
