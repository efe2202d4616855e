// Package velocity folds a classified action stream into cumulative
// per-date totals, the burn-up numbers.
//
// Every stage is a pull-based iterator: nothing here materializes the
// event history, so memory stays constant no matter how long the board has
// been active.
package velocity

import (
	"fmt"
	"iter"
	"time"

	"github.com/okian/burnup/internal/domain/classify"
	"github.com/okian/burnup/internal/domain/model"
)

// Snapshot is the cumulative tally as of the end of one calendar date.
// Counts never reset across dates; that is the burn-up property. Each
// emitted Snapshot is an independent copy and never mutates afterwards.
type Snapshot struct {
	Date     time.Time
	Created  int
	Removed  int
	Finished int
}

// Totals consumes an action stream ordered by ascending timestamp and
// yields one Snapshot per distinct date present in the stream, plus a final
// snapshot for the last open date. An empty stream yields nothing.
//
// Ascending order is a precondition, not something this function checks:
// the reducer is single-pass and holds exactly one accumulator, and its
// output is undefined for an unsorted stream.
//
// An action with a zero date is a data-integrity failure: the sequence
// yields the error and stops, and no partial snapshot is emitted for the
// date in flight. Errors from the upstream source propagate the same way.
//
// Actions on rejected containers are filtered out before the accumulator
// ever sees their date: a date whose activity is entirely rejected produces
// no snapshot. An action that merely classifies as Ignored (a list move
// between working lists, say) still opens its date.
func Totals(events iter.Seq2[model.Action, error], rules *classify.Rules) iter.Seq2[Snapshot, error] {
	return func(yield func(Snapshot, error) bool) {
		var acc Snapshot
		open := false
		for a, err := range events {
			if err != nil {
				yield(Snapshot{}, err)
				return
			}
			if a.Date.IsZero() {
				yield(Snapshot{}, fmt.Errorf("card %q: %w", a.CardID, ErrMissingDate))
				return
			}
			if rules.Rejected(a.List()) {
				continue
			}
			day := a.Date.UTC().Truncate(24 * time.Hour)
			switch {
			case !open:
				acc.Date = day
				open = true
			case !day.Equal(acc.Date):
				// Date boundary: hand out a copy for the date just
				// closed, then keep accumulating under the new date.
				if !yield(acc, nil) {
					return
				}
				acc.Date = day
			}
			switch rules.Classify(a) {
			case model.Created:
				acc.Created++
			case model.Removed:
				acc.Removed++
			case model.Finished:
				acc.Finished++
			case model.Ignored:
				// counts toward nothing
			}
		}
		if open {
			yield(acc, nil)
		}
	}
}
