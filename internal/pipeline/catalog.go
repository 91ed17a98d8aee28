// Package pipeline aggregates the Security Hub control catalog and the
// Security Hub user guide into one sorted, export-ready record set.
//
// Flow:
//  1. BuildIndex enumerates standards and their controls into a
//     MembershipIndex (sequential, single owner; any error is fatal).
//  2. DetailFetcher fetches every control's definition on a worker pool and
//     projects it into a ControlRecord; failed controls are dropped.
//  3. Crawler derives each control's documentation URL, fetches the pages
//     under bounded concurrency, and fills the five crawl fields in place.
//  4. Aggregate sorts the records; Shape lays them out as a table.
package pipeline

import (
	"context"
	"iter"

	"golang.org/x/net/html"

	"github.com/pankaj-dahiya-devops/shcx/internal/models"
)

// Catalog is the control-catalog API. Sequences are lazy, handle pagination
// internally, and stop after yielding the first error.
type Catalog interface {
	ListStandards(ctx context.Context) iter.Seq2[models.Standard, error]
	ListControlsForStandard(ctx context.Context, standardARN string) iter.Seq2[models.ControlSummary, error]
	ListAllControls(ctx context.Context) iter.Seq2[models.ControlSummary, error]
	GetControlDetail(ctx context.Context, controlID string) (*models.ControlDetail, error)
}

// DocumentSource returns the parsed documentation page behind a URL.
// Returned documents may be shared and must be treated as read-only.
type DocumentSource interface {
	Get(ctx context.Context, url string) (*html.Node, error)
}
