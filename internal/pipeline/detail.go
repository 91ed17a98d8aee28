package pipeline

import (
	"context"

	"github.com/pankaj-dahiya-devops/shcx/internal/logger"
	"github.com/pankaj-dahiya-devops/shcx/internal/models"
	"github.com/pankaj-dahiya-devops/shcx/internal/runner"
)

// DetailFetcher turns control identifiers into records by fetching each
// control's definition. Controls are independent; the only shared inputs
// are the read-only index and standard list.
type DetailFetcher struct {
	Catalog  Catalog
	Executor runner.Executor
}

// Fetch returns a record for every control whose definition could be
// fetched, in no particular order, and the stage summary. A control that
// fails is logged and dropped; it never affects the others.
//
// A control missing from the index gets a zero membership. That is logged
// as a warning because a control outside every standard usually means the
// catalog and the standard listings disagree.
func (f DetailFetcher) Fetch(
	ctx context.Context,
	ids []string,
	idx *models.MembershipIndex,
	standards []string,
) ([]*models.ControlRecord, models.StageSummary) {
	log := logger.FromContext(ctx)

	// One slot per control; task i only writes slots[i].
	slots := make([]*models.ControlRecord, len(ids))

	rep := f.Executor.Execute(ctx, len(ids), func(ctx context.Context, i int) error {
		detail, err := f.Catalog.GetControlDetail(ctx, ids[i])
		if err != nil {
			return err
		}
		m, ok := idx.Lookup(ids[i])
		if !ok {
			log.Warnw("control is not part of any standard", "control", ids[i])
		}
		slots[i] = NewRecord(*detail, m, standards)
		return nil
	})

	summary := models.StageSummary{Stage: models.StageDetail}
	for _, fl := range rep.Failures {
		log.Warnw("dropping control", "control", ids[fl.Index], "error", fl.Err)
		summary.Failures = append(summary.Failures, &models.ControlError{
			ControlID: ids[fl.Index],
			Stage:     models.StageDetail,
			Err:       fl.Err,
		})
	}

	records := make([]*models.ControlRecord, 0, rep.Succeeded)
	for _, r := range slots {
		if r != nil {
			records = append(records, r)
		}
	}
	summary.Succeeded = len(records)
	summary.Dropped = len(ids) - len(records)
	return records, summary
}
