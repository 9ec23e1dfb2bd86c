// Package logtail reads the tail of the console log file and highlights
// failure lines for terminal output.
package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Tail returns the last maxLines lines of r in order. A non-positive
// maxLines returns every line.
func Tail(r io.Reader, maxLines int) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count, idx := 0, 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		count = min(count+1, maxLines)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count < maxLines {
		copy(lines, ring[:count])
		return lines, nil
	}
	for i := range lines {
		lines[i] = ring[(idx+i)%maxLines]
	}
	return lines, nil
}

// Read returns the last maxLines lines of the file at path. A missing file
// has no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()
	return Tail(file, maxLines)
}

// Filter keeps the lines containing substr, ignoring case. An empty substr
// keeps everything.
func Filter(lines []string, substr string) []string {
	substr = strings.ToLower(strings.TrimSpace(substr))
	if substr == "" {
		return lines
	}
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), substr) {
			out = append(out, line)
		}
	}
	return out
}

// lineRe matches the standard logger layout, optionally prefixed.
var lineRe = regexp.MustCompile(`^((?:\S+ )?\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}) (.*)$`)

var failureRe = regexp.MustCompile(`(?i)\b(error|fail(ed|ure)?|expired|unauthorized)\b`)

// IsFailure reports whether a log message describes a failure.
func IsFailure(line string) bool {
	return failureRe.MatchString(line)
}

// Highlighter dims timestamps and marks failures.
type Highlighter struct {
	stamp   lipgloss.Style
	failure lipgloss.Style
}

// NewHighlighter builds styles for the renderer's output. Renderers on a
// non-terminal writer produce plain text.
func NewHighlighter(r *lipgloss.Renderer) Highlighter {
	return Highlighter{
		stamp:   r.NewStyle().Foreground(lipgloss.Color("#666666")),
		failure: r.NewStyle().Foreground(lipgloss.Color("#c94f6d")).Bold(true),
	}
}

// Line styles one log line.
func (h Highlighter) Line(line string) string {
	m := lineRe.FindStringSubmatch(line)
	if m == nil {
		if IsFailure(line) {
			return h.failure.Render(line)
		}
		return line
	}
	msg := m[2]
	if IsFailure(msg) {
		msg = h.failure.Render(msg)
	}
	return h.stamp.Render(m[1]) + " " + msg
}
