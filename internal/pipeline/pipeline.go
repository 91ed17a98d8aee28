package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/pankaj-dahiya-devops/shcx/internal/controlid"
	"github.com/pankaj-dahiya-devops/shcx/internal/docs"
	"github.com/pankaj-dahiya-devops/shcx/internal/logger"
	"github.com/pankaj-dahiya-devops/shcx/internal/models"
	"github.com/pankaj-dahiya-devops/shcx/internal/runner"
)

// ErrNoControls is returned when no control survives the detail stage.
// Nothing is exported in that case.
var ErrNoControls = errors.New("no security control could be processed")

// Options tunes a Pipeline. Zero values select defaults.
type Options struct {
	// BaseURL is the user guide root used to derive documentation URLs.
	BaseURL string

	// Workers sizes the detail worker pool; <= 0 means GOMAXPROCS.
	Workers int

	// MaxInFlight caps concurrent documentation lookups. Request pacing
	// belongs to the Fetcher behind the DocumentSource.
	MaxInFlight int

	Layout Layout

	// OnStage, when set, is called after each stage completes.
	OnStage func(models.StageSummary)
}

// Result is the output of a successful run.
type Result struct {
	Records   []*models.ControlRecord
	Standards []string
	Malformed []string
	Table     *Table
	Summaries []models.StageSummary
}

// Pipeline wires the stages together.
type Pipeline struct {
	catalog   Catalog
	documents DocumentSource
	opts      Options
}

// New returns a Pipeline reading from catalog and documents.
func New(catalog Catalog, documents DocumentSource, opts Options) *Pipeline {
	if opts.BaseURL == "" {
		opts.BaseURL = docs.DefaultBaseURL
	}
	if opts.MaxInFlight <= 0 {
		opts.MaxInFlight = runner.DefaultMaxInFlight
	}
	if opts.Layout == "" {
		opts.Layout = LayoutNarrow
	}
	return &Pipeline{catalog: catalog, documents: documents, opts: opts}
}

// detailExecutor runs the per-control API calls on a fixed worker pool.
func (p *Pipeline) detailExecutor() runner.Executor {
	return runner.WorkerPool{Workers: p.opts.Workers}
}

// crawlExecutor bounds documentation lookups in flight.
func (p *Pipeline) crawlExecutor() runner.Executor {
	return runner.Bounded{MaxInFlight: p.opts.MaxInFlight}
}

// Run executes every stage. Index and enumeration errors are fatal. Item
// failures in later stages are reported in the stage summaries. If ctx ends
// mid-run the partial work is discarded and ctx's error is returned.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	log := logger.FromContext(ctx)
	res := &Result{}

	stage := func(s models.StageSummary) {
		res.Summaries = append(res.Summaries, s)
		if p.opts.OnStage != nil {
			p.opts.OnStage(s)
		}
	}

	idx, standards, err := BuildIndex(ctx, p.catalog)
	if err != nil {
		return nil, err
	}
	res.Standards = standards
	log.Infow("collected standards", "standards", len(standards), "controls", idx.Len())
	stage(models.StageSummary{Stage: models.StageIndex, Succeeded: idx.Len()})

	ids, err := ListControlIDs(ctx, p.catalog)
	if err != nil {
		return nil, err
	}
	log.Infow("found security controls", "controls", len(ids))

	workers := runner.WorkerPool{Workers: p.opts.Workers}.Size(len(ids))
	log.Infow("fetching control definitions", "workers", workers)
	records, detailSummary := DetailFetcher{Catalog: p.catalog, Executor: p.detailExecutor()}.
		Fetch(ctx, ids, idx, standards)
	stage(detailSummary)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fetch control definitions: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoControls
	}

	log.Infow("crawling documentation", "max_in_flight", p.opts.MaxInFlight)
	crawlSummary := Crawler{Documents: p.documents, Executor: p.crawlExecutor(), BaseURL: p.opts.BaseURL}.
		Crawl(ctx, records)
	stage(crawlSummary)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("crawl documentation: %w", err)
	}

	sorted, malformed := Aggregate(records)
	aggSummary := models.StageSummary{Stage: models.StageAggregate, Succeeded: len(sorted) - len(malformed)}
	for _, id := range malformed {
		log.Warnw("control identifier cannot be ordered; placed last", "control", id)
		aggSummary.Failures = append(aggSummary.Failures, &models.ControlError{
			ControlID: id,
			Stage:     models.StageAggregate,
			Err:       controlid.ErrMalformed,
		})
	}
	stage(aggSummary)

	res.Records = sorted
	res.Malformed = malformed
	res.Table = Shape(sorted, standards, p.opts.Layout)
	return res, nil
}
