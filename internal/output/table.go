package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/pankaj-dahiya-devops/shcx/internal/models"
)

// ANSI color codes (used when Colored=true).
const (
	ansiReset   = "\033[0m"
	ansiBoldRed = "\033[1;31m"
	ansiRed     = "\033[0;31m"
	ansiYellow  = "\033[0;33m"
	ansiBlue    = "\033[0;34m"
	ansiGreen   = "\033[0;32m"
)

// TableOptions controls how the summary tables are rendered.
type TableOptions struct {
	// Colored wraps severity labels and non-zero failure counts with ANSI
	// codes. Default false (CI-safe).
	Colored bool

	// ShowFailures lists each item failure under the stage table.
	ShowFailures bool

	// MaxFailures caps the listed failures per stage. 0 means 10.
	MaxFailures int
}

// ColorSeverity wraps a severity string with ANSI codes when colored is true.
// When colored is false the string is returned unchanged.
func ColorSeverity(sev models.Severity, colored bool) string {
	s := string(sev)
	if code := severityColor(sev); colored && code != "" {
		return code + s + ansiReset
	}
	return s
}

func severityColor(sev models.Severity) string {
	switch sev {
	case models.SeverityCritical:
		return ansiBoldRed
	case models.SeverityHigh:
		return ansiRed
	case models.SeverityMedium:
		return ansiYellow
	case models.SeverityLow:
		return ansiBlue
	}
	return ""
}

// ShortenMessage truncates msg to at most max runes, appending "..." when truncated.
// max is treated as at least 4 to guarantee space for the ellipsis.
func ShortenMessage(msg string, max int) string {
	if max < 4 {
		max = 4
	}
	runes := []rune(msg)
	if len(runes) <= max {
		return msg
	}
	return string(runes[:max-3]) + "..."
}

// paddedCell pads text to width and wraps only the text with code, so the
// trailing spaces stay plain and later columns line up on any terminal.
func paddedCell(text string, width int, code string) string {
	if code == "" {
		return fmt.Sprintf("%-*s", width, text)
	}
	spaces := width - len(text)
	if spaces < 0 {
		spaces = 0
	}
	return code + text + ansiReset + strings.Repeat(" ", spaces)
}

// truncateField shortens s to at most max runes for label columns.
func truncateField(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// RenderStageSummaries writes one row per pipeline stage to w.
//
// Column order:
//
//	STAGE  SUCCEEDED  DROPPED  FAILED
func RenderStageSummaries(w io.Writer, summaries []models.StageSummary, opts TableOptions) {
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No stages ran.")
		return
	}

	const (
		wStage = 12
		wCount = 10
	)

	header := fmt.Sprintf("%-*s  %-*s  %-*s  %s", wStage, "STAGE", wCount, "SUCCEEDED", wCount, "DROPPED", "FAILED")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", len(header)))

	for _, s := range summaries {
		failed := len(s.Failures)
		code := ""
		if opts.Colored {
			code = ansiGreen
			if failed > 0 {
				code = ansiRed
			}
		}
		fmt.Fprintf(w, "%-*s  %-*d  %-*d  %s\n",
			wStage, truncateField(s.Stage, wStage),
			wCount, s.Succeeded,
			wCount, s.Dropped,
			paddedCell(fmt.Sprint(failed), 0, code),
		)
	}

	if opts.ShowFailures {
		renderFailures(w, summaries, opts)
	}
}

func renderFailures(w io.Writer, summaries []models.StageSummary, opts TableOptions) {
	limit := opts.MaxFailures
	if limit <= 0 {
		limit = 10
	}
	for _, s := range summaries {
		if len(s.Failures) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s failures (%d):\n", s.Stage, len(s.Failures))
		for i, err := range s.Failures {
			if i == limit {
				fmt.Fprintf(w, "  ... and %d more\n", len(s.Failures)-limit)
				break
			}
			fmt.Fprintf(w, "  ✗ %s\n", ShortenMessage(err.Error(), 100))
		}
	}
}

// severityOrder is the display order of the severity breakdown.
var severityOrder = []models.Severity{
	models.SeverityCritical,
	models.SeverityHigh,
	models.SeverityMedium,
	models.SeverityLow,
}

// RenderSeverityCounts writes the number of exported controls per severity.
// Severities outside the four known ratings are grouped under their own
// label after the known ones.
func RenderSeverityCounts(w io.Writer, records []*models.ControlRecord, opts TableOptions) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No controls.")
		return
	}

	counts := make(map[models.Severity]int)
	var other []models.Severity
	for _, r := range records {
		sev := r.Detail.Severity
		if _, seen := counts[sev]; !seen && severityColor(sev) == "" {
			other = append(other, sev)
		}
		counts[sev]++
	}

	const wSeverity = 10
	header := fmt.Sprintf("%-*s  %s", wSeverity, "SEVERITY", "CONTROLS")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", len(header)))

	for _, sev := range append(append([]models.Severity{}, severityOrder...), other...) {
		n, ok := counts[sev]
		if !ok {
			continue
		}
		code := ""
		if opts.Colored {
			code = severityColor(sev)
		}
		label := string(sev)
		if label == "" {
			label = models.NotAvailable
		}
		fmt.Fprintf(w, "%s  %d\n", paddedCell(truncateField(label, wSeverity), wSeverity, code), n)
	}
}
