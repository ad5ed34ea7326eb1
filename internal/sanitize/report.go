package sanitize

import (
	"errors"
	"fmt"

	"timelinekit/internal/model"
	"timelinekit/internal/validate"
)

// ActionKind names a repair.
type ActionKind string

const (
	ActionRateReplaced      ActionKind = "rate_replaced"
	ActionDurationClamped   ActionKind = "duration_clamped"
	ActionTransitionRemoved ActionKind = "transition_removed"
	ActionOffsetClamped     ActionKind = "offset_clamped"
	ActionMarkerClamped     ActionKind = "marker_clamped"
	ActionZeroLengthDropped ActionKind = "zero_length_dropped"
	ActionGapsMerged        ActionKind = "gaps_merged"
)

// Action records a repair applied to the tree. Path names positions in the
// document as it was read, before any child was removed or merged.
type Action struct {
	Kind   ActionKind
	Path   model.Path
	Detail string
}

func (a Action) String() string {
	return fmt.Sprintf("%s at %s: %s", a.Kind, a.Path, a.Detail)
}

// Error is a violation with no defined repair. The subtree it names was left
// as found.
type Error struct {
	Kind    validate.Kind
	Path    model.Path
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("unrecoverable %s at %s: %s", e.Kind, e.Path, e.Message)
}

// Report is the outcome of a sanitize run.
type Report struct {
	Actions []Action
	Errors  []Error
}

// Changed reports whether any repair was applied.
func (r Report) Changed() bool {
	return len(r.Actions) > 0
}

// Err joins the unrecoverable errors, or returns nil when there are none.
func (r Report) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}
