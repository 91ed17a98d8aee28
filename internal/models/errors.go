package models

import "fmt"

// Pipeline stage names used in ControlError and StageSummary.
const (
	StageIndex     = "index"
	StageDetail    = "detail"
	StageCrawl     = "crawl"
	StageAggregate = "aggregate"
)

// FatalIndexError reports a failure while enumerating standards or their
// controls. Nothing downstream is trustworthy without the complete standard
// universe, so it aborts the run.
type FatalIndexError struct {
	Op  string
	Err error
}

func (e *FatalIndexError) Error() string {
	return fmt.Sprintf("build standards index: %s: %v", e.Op, e.Err)
}

func (e *FatalIndexError) Unwrap() error { return e.Err }

// ControlError is a failure confined to one control in one stage. In the
// detail stage the control is dropped; in the crawl stage its crawl fields
// stay empty.
type ControlError struct {
	ControlID string
	Stage     string
	Err       error
}

func (e *ControlError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.ControlID, e.Err)
}

func (e *ControlError) Unwrap() error { return e.Err }
