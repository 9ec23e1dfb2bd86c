package app

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/nixtrack/internal/config"
	"github.com/five82/nixtrack/internal/logtail"
)

// defaultLogLines is how much of the console log Logs prints by default.
const defaultLogLines = 200

// LogsRequest selects which console log lines to print.
type LogsRequest struct {
	Lines    int    // zero prints defaultLogLines; negative prints everything
	Match    string // case-insensitive substring filter
	Failures bool   // only lines that describe a failure
}

// Logs prints the tail of the console log to out, highlighting failures when
// out is a terminal.
func Logs(opts Options, req LogsRequest, out io.Writer) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	lines := req.Lines
	if lines == 0 {
		lines = defaultLogLines
	}

	entries, err := logtail.Read(cfg.LogPath(), lines)
	if err != nil {
		return err
	}
	entries = logtail.Filter(entries, req.Match)
	if req.Failures {
		var failures []string
		for _, line := range entries {
			if logtail.IsFailure(line) {
				failures = append(failures, line)
			}
		}
		entries = failures
	}
	if len(entries) == 0 {
		fmt.Fprintf(out, "No log entries in %s\n", cfg.LogPath())
		return nil
	}

	h := logtail.NewHighlighter(lipgloss.NewRenderer(out))
	for _, line := range entries {
		fmt.Fprintln(out, h.Line(line))
	}
	return nil
}
