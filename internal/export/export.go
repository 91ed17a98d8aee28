// Package export writes a shaped control table to a spreadsheet, JSON, or
// YAML document.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pankaj-dahiya-devops/shcx/internal/pipeline"
)

// Format names an output encoding.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists every supported format, default first.
var Formats = []Format{FormatXLSX, FormatJSON, FormatYAML}

// ParseFormat validates a format name. The empty string selects xlsx.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatXLSX, nil
	case FormatXLSX, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported export format %q (want xlsx, json or yaml)", s)
}

// Writer encodes a table to w.
type Writer interface {
	Write(w io.Writer, t *pipeline.Table) error
}

// NewWriter returns the Writer for f.
func NewWriter(f Format) (Writer, error) {
	switch f {
	case FormatXLSX, "":
		return XLSXWriter{}, nil
	case FormatJSON:
		return JSONWriter{Indent: "  "}, nil
	case FormatYAML:
		return YAMLWriter{}, nil
	}
	return nil, fmt.Errorf("unsupported export format %q", f)
}

// DefaultFilename is the output file name used when none is given, e.g.
// securityhub_controls_241231_2359.xlsx.
func DefaultFilename(f Format, now time.Time) string {
	if f == "" {
		f = FormatXLSX
	}
	return fmt.Sprintf("securityhub_controls_%s.%s", now.Format("060102_1504"), f)
}
