package pipeline

import (
	"fmt"

	"github.com/pankaj-dahiya-devops/shcx/internal/models"
)

// Layout selects the export column set.
type Layout string

const (
	// LayoutNarrow omits the per-standard boolean columns.
	LayoutNarrow Layout = "narrow"

	// LayoutWide adds one "Implemented in <standard>" column per standard.
	LayoutWide Layout = "wide"
)

// ParseLayout validates a layout name.
func ParseLayout(s string) (Layout, error) {
	switch Layout(s) {
	case LayoutNarrow, LayoutWide:
		return Layout(s), nil
	case "":
		return LayoutNarrow, nil
	}
	return "", fmt.Errorf("unknown layout %q (want %q or %q)", s, LayoutNarrow, LayoutWide)
}

// ImplementedInPrefix starts every per-standard column name.
const ImplementedInPrefix = "Implemented in "

// Column names of the export, in order.
const (
	ColControlID          = "Security Control ID"
	ColTitle              = "Title"
	ColDescription        = "Description"
	ColSeverity           = "Severity Rating"
	ColRegionAvailability = "Current Region Availability"
	ColRemediationURL     = "Remediation URL"
	ColParameters         = "Parameters"
	ColStandardsCount     = "NbStandardsImplementedIn"
	ColStandardsList      = "ImplementedInStandards"
	ColCrawlURL           = "Remediation URL to Crawl"
	ColCategory           = "Category"
	ColResourceType       = "Resource type"
	ColConfigRule         = "AWS Config rule"
	ColScheduleType       = "Schedule type"
	ColRemediation        = "Remediation"
)

// Table is the export-ready record set. Cells are string, int, or bool.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Shape lays records out as rows in their current order. With LayoutWide a
// boolean column is emitted for each name in standards, in the given order.
func Shape(records []*models.ControlRecord, standards []string, layout Layout) *Table {
	wide := layout == LayoutWide

	cols := []string{
		ColControlID, ColTitle, ColDescription, ColSeverity, ColRegionAvailability,
		ColRemediationURL, ColParameters, ColStandardsCount, ColStandardsList,
	}
	if wide {
		for _, name := range standards {
			cols = append(cols, ImplementedInPrefix+name)
		}
	}
	cols = append(cols, ColCrawlURL, ColCategory, ColResourceType, ColConfigRule, ColScheduleType, ColRemediation)

	t := &Table{Columns: cols, Rows: make([][]any, 0, len(records))}
	for _, r := range records {
		row := make([]any, 0, len(cols))
		row = append(row,
			r.Detail.ID,
			r.Detail.Title,
			r.Detail.Description,
			string(r.Detail.Severity),
			r.Detail.RegionAvailability,
			r.Detail.RemediationURL,
			r.ParametersText,
			r.StandardsCount,
			r.StandardsList,
		)
		if wide {
			for _, name := range standards {
				row = append(row, r.ImplementedIn[name])
			}
		}
		row = append(row,
			r.CrawlURL,
			r.Crawl.Category,
			r.Crawl.ResourceType,
			r.Crawl.ConfigRule,
			r.Crawl.ScheduleType,
			r.Crawl.Remediation,
		)
		t.Rows = append(t.Rows, row)
	}
	return t
}
