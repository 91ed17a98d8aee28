package pipeline

import (
	"context"

	"github.com/pankaj-dahiya-devops/shcx/internal/docs"
	"github.com/pankaj-dahiya-devops/shcx/internal/logger"
	"github.com/pankaj-dahiya-devops/shcx/internal/models"
	"github.com/pankaj-dahiya-devops/shcx/internal/runner"
)

// Crawler fills the crawl fields of records from the user guide.
type Crawler struct {
	Documents DocumentSource
	Executor  runner.Executor
	BaseURL   string
}

// Crawl derives a documentation URL for every record and extracts the crawl
// fields in place. Each task writes only the record in its own slot, so no
// locking is needed. Records whose identifier is malformed, whose page
// cannot be fetched, or whose section is missing keep empty crawl fields;
// no record is ever dropped here.
func (c Crawler) Crawl(ctx context.Context, records []*models.ControlRecord) models.StageSummary {
	log := logger.FromContext(ctx)
	summary := models.StageSummary{Stage: models.StageCrawl}

	tasks := make([]models.CrawlTask, 0, len(records))
	for slot, r := range records {
		u, err := docs.DeriveURL(c.BaseURL, r.ID())
		if err != nil {
			log.Warnw("skipping documentation crawl", "control", r.ID(), "error", err)
			summary.Failures = append(summary.Failures, &models.ControlError{
				ControlID: r.ID(),
				Stage:     models.StageCrawl,
				Err:       err,
			})
			continue
		}
		r.CrawlURL = u
		tasks = append(tasks, models.CrawlTask{Slot: slot, ControlID: r.ID(), URL: u})
	}

	rep := c.Executor.Execute(ctx, len(tasks), func(ctx context.Context, i int) error {
		t := tasks[i]
		doc, err := c.Documents.Get(ctx, t.URL)
		if err != nil {
			return err
		}
		fields := docs.Extract(doc, t.ControlID)
		if fields.Empty() {
			log.Debugw("no documentation section found", "control", t.ControlID, "url", t.URL)
		}
		records[t.Slot].Crawl = fields
		return nil
	})

	for _, fl := range rep.Failures {
		t := tasks[fl.Index]
		log.Warnw("documentation crawl failed", "control", t.ControlID, "url", t.URL, "error", fl.Err)
		summary.Failures = append(summary.Failures, &models.ControlError{
			ControlID: t.ControlID,
			Stage:     models.StageCrawl,
			Err:       fl.Err,
		})
	}
	summary.Succeeded = rep.Succeeded
	return summary
}
