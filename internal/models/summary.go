package models

// StageSummary is the per-stage outcome shown to the user after each stage.
type StageSummary struct {
	Stage     string
	Succeeded int
	Dropped   int

	// Failures lists every item-level error of the stage. For the crawl
	// stage a failure does not drop the record, so Dropped stays zero.
	Failures []error
}

// Total returns the number of items the stage processed.
func (s StageSummary) Total() int {
	return s.Succeeded + s.Dropped
}
