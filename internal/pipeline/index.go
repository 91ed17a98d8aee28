package pipeline

import (
	"context"
	"fmt"
	"sort"

	"github.com/pankaj-dahiya-devops/shcx/internal/models"
)

// BuildIndex enumerates every standard and the controls it contains. It
// returns the membership index and the sorted distinct standard names.
//
// Enumeration is sequential and BuildIndex is the only writer of the index.
// Any catalog error is returned as *models.FatalIndexError: a partial index
// would produce wrong per-standard columns.
func BuildIndex(ctx context.Context, cat Catalog) (*models.MembershipIndex, []string, error) {
	idx := models.NewMembershipIndex()
	names := make(map[string]struct{})

	for std, err := range cat.ListStandards(ctx) {
		if err != nil {
			return nil, nil, &models.FatalIndexError{Op: "list standards", Err: err}
		}
		names[std.Name] = struct{}{}

		for control, err := range cat.ListControlsForStandard(ctx, std.ARN) {
			if err != nil {
				return nil, nil, &models.FatalIndexError{
					Op:  fmt.Sprintf("list controls of standard %q", std.Name),
					Err: err,
				}
			}
			idx.Add(control.ID, std.Name)
		}
	}

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)
	return idx, sorted, nil
}

// ListControlIDs returns the identifier of every control in the catalog,
// deduplicated, in the order the catalog yields them. A failure here is as
// fatal as an index failure.
func ListControlIDs(ctx context.Context, cat Catalog) ([]string, error) {
	seen := make(map[string]struct{})
	var ids []string
	for control, err := range cat.ListAllControls(ctx) {
		if err != nil {
			return nil, &models.FatalIndexError{Op: "list all controls", Err: err}
		}
		if _, dup := seen[control.ID]; dup {
			continue
		}
		seen[control.ID] = struct{}{}
		ids = append(ids, control.ID)
	}
	return ids, nil
}
