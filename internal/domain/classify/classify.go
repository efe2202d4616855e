// Package classify decides how a single board action counts toward
// velocity. Both the container filter and the classifier are pure functions
// of the action and an immutable rule set, so they are safe to reuse from
// exploratory tooling.
package classify

import (
	"strings"

	"github.com/okian/burnup/internal/domain/model"
)

// Rules holds the list names that steer classification. Build one with New
// and the options; a Rules value is immutable afterwards.
type Rules struct {
	// reject holds name prefixes of lists excluded from accounting.
	reject []string
	// finish holds the exact names of lists whose entry counts as done.
	finish map[string]struct{}
}

// New creates a rule set. With no options every list is in scope and no
// list counts as a finish state.
func New(opts ...Option) *Rules {
	r := &Rules{
		finish: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rejected reports whether the named list is excluded from accounting.
// A list is rejected when its name begins with (or equals) one of the
// configured reject names.
func (r *Rules) Rejected(list string) bool {
	if list == "" {
		return false
	}
	for _, name := range r.reject {
		if strings.HasPrefix(list, name) {
			return true
		}
	}
	return false
}

// finished reports whether the named list is a finish state.
func (r *Rules) finished(list string) bool {
	_, ok := r.finish[list]
	return ok
}

// Classify maps one action to its velocity class. It is deterministic and
// total: every kind outside the known vocabulary classifies as Ignored.
//
// A move whose origin was rejected but whose destination is not counts as
// Created; only entry into and exit from scope are observed.
func (r *Rules) Classify(a model.Action) model.Class {
	switch a.Kind {
	case model.KindCreateCard, model.KindCopyCard:
		if r.Rejected(a.List()) {
			return model.Ignored
		}
		return model.Created
	case model.KindMoveToBoard:
		// The card enters scope only when the receiving list is known.
		if a.DestList == "" || r.Rejected(a.DestList) {
			return model.Ignored
		}
		return model.Created
	case model.KindDeleteCard, model.KindMoveFromBoard:
		// A card that was never in scope cannot be removed from it.
		if r.Rejected(a.List()) {
			return model.Ignored
		}
		return model.Removed
	case model.KindCardClosed:
		if r.Rejected(a.List()) {
			return model.Ignored
		}
		return model.Finished
	case model.KindCardRelisted:
		// A plain list-to-list move inside the working lists is not a
		// velocity event; only arrival in a finish list is.
		if a.DestList == "" || r.Rejected(a.DestList) {
			return model.Ignored
		}
		if r.finished(a.DestList) {
			return model.Finished
		}
		return model.Ignored
	default:
		return model.Ignored
	}
}
