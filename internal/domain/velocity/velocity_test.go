package velocity_test

import (
	"errors"
	"iter"
	"testing"
	"time"

	"github.com/okian/burnup/internal/domain/classify"
	"github.com/okian/burnup/internal/domain/model"
	"github.com/okian/burnup/internal/domain/velocity"
	. "github.com/smartystreets/goconvey/convey"
)

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
}

// stream replays a slice as an error-free action sequence.
func stream(actions ...model.Action) iter.Seq2[model.Action, error] {
	return func(yield func(model.Action, error) bool) {
		for _, a := range actions {
			if !yield(a, nil) {
				return
			}
		}
	}
}

// collect drains a snapshot sequence, failing on the first error.
func collect(seq iter.Seq2[velocity.Snapshot, error]) ([]velocity.Snapshot, error) {
	var out []velocity.Snapshot
	for s, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
	return out, nil
}

func TestTotals(t *testing.T) {
	Convey("Given empty classification rules", t, func() {
		rules := classify.New()

		Convey("When reducing a create, close and delete across two days", func() {
			snaps, err := collect(velocity.Totals(stream(
				model.Action{Date: day(1), Kind: model.KindCreateCard, CardID: "c1", DestList: "ListA"},
				model.Action{Date: day(1), Kind: model.KindCardClosed, CardID: "c1", DestList: "ListA"},
				model.Action{Date: day(2), Kind: model.KindDeleteCard, CardID: "c1", SourceList: "ListA"},
			), rules))

			Convey("Then one snapshot per date carries cumulative totals", func() {
				So(err, ShouldBeNil)
				So(snaps, ShouldHaveLength, 2)
				So(snaps[0].Date, ShouldResemble, day(1))
				So(snaps[0].Created, ShouldEqual, 1)
				So(snaps[0].Removed, ShouldEqual, 0)
				So(snaps[0].Finished, ShouldEqual, 1)
				So(snaps[1].Date, ShouldResemble, day(2))
				So(snaps[1].Created, ShouldEqual, 1)
				So(snaps[1].Removed, ShouldEqual, 1)
				So(snaps[1].Finished, ShouldEqual, 1)
			})
		})

		Convey("When reducing an empty stream", func() {
			snaps, err := collect(velocity.Totals(stream(), rules))

			Convey("Then nothing is emitted and there is no error", func() {
				So(err, ShouldBeNil)
				So(snaps, ShouldBeEmpty)
			})
		})

		Convey("When two events share one date", func() {
			snaps, err := collect(velocity.Totals(stream(
				model.Action{Date: day(1), Kind: model.KindCreateCard, CardID: "c1", DestList: "ListA"},
				model.Action{Date: day(1), Kind: model.KindCreateCard, CardID: "c2", DestList: "ListA"},
			), rules))

			Convey("Then a single snapshot reflects both increments", func() {
				So(err, ShouldBeNil)
				So(snaps, ShouldHaveLength, 1)
				So(snaps[0].Date, ShouldResemble, day(1))
				So(snaps[0].Created, ShouldEqual, 2)
			})
		})

		Convey("When an action has no timestamp", func() {
			snaps, err := collect(velocity.Totals(stream(
				model.Action{Date: day(1), Kind: model.KindCreateCard, CardID: "c1", DestList: "ListA"},
				model.Action{Kind: model.KindCreateCard, CardID: "c2", DestList: "ListA"},
			), rules))

			Convey("Then the run fails fast with a data-integrity error", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, velocity.ErrMissingDate), ShouldBeTrue)
			})

			Convey("And no partial snapshot was emitted for the open date", func() {
				So(snaps, ShouldBeEmpty)
			})
		})

		Convey("When the source yields an error mid-stream", func() {
			boom := errors.New("boom")
			src := func(yield func(model.Action, error) bool) {
				if !yield(model.Action{Date: day(1), Kind: model.KindCreateCard, DestList: "A"}, nil) {
					return
				}
				yield(model.Action{}, boom)
			}
			snaps, err := collect(velocity.Totals(src, rules))

			Convey("Then the error propagates and the open date is dropped", func() {
				So(errors.Is(err, boom), ShouldBeTrue)
				So(snaps, ShouldBeEmpty)
			})
		})

		Convey("When timestamps carry time-of-day detail", func() {
			late := time.Date(2026, time.March, 1, 23, 59, 59, 0, time.UTC)
			early := time.Date(2026, time.March, 2, 0, 0, 1, 0, time.UTC)
			snaps, err := collect(velocity.Totals(stream(
				model.Action{Date: late, Kind: model.KindCreateCard, DestList: "A"},
				model.Action{Date: early, Kind: model.KindCreateCard, DestList: "A"},
			), rules))

			Convey("Then bucketing is by calendar date", func() {
				So(err, ShouldBeNil)
				So(snaps, ShouldHaveLength, 2)
				So(snaps[0].Date, ShouldResemble, day(1))
				So(snaps[1].Date, ShouldResemble, day(2))
			})
		})
	})

	Convey("Given rules with a reject list", t, func() {
		rules := classify.New(classify.WithRejectLists([]string{"Reference"}))

		Convey("When every action targets a rejected list", func() {
			snaps, err := collect(velocity.Totals(stream(
				model.Action{Date: day(1), Kind: model.KindCreateCard, DestList: "Reference Material"},
				model.Action{Date: day(2), Kind: model.KindDeleteCard, SourceList: "Reference Material"},
			), rules))

			Convey("Then no date snapshots at all", func() {
				So(err, ShouldBeNil)
				So(snaps, ShouldBeEmpty)
			})
		})

		Convey("When a rejected-only date sits between two working dates", func() {
			snaps, err := collect(velocity.Totals(stream(
				model.Action{Date: day(1), Kind: model.KindCreateCard, CardID: "c1", DestList: "To Do"},
				model.Action{Date: day(2), Kind: model.KindCreateCard, CardID: "c2", DestList: "Reference Material"},
				model.Action{Date: day(3), Kind: model.KindDeleteCard, CardID: "c1", SourceList: "To Do"},
			), rules))

			Convey("Then only the working dates emit rows", func() {
				So(err, ShouldBeNil)
				So(snaps, ShouldHaveLength, 2)
				So(snaps[0].Date, ShouldResemble, day(1))
				So(snaps[0].Created, ShouldEqual, 1)
				So(snaps[1].Date, ShouldResemble, day(3))
				So(snaps[1].Created, ShouldEqual, 1)
				So(snaps[1].Removed, ShouldEqual, 1)
			})
		})

		Convey("When a date's only event is ignored but not rejected", func() {
			snaps, err := collect(velocity.Totals(stream(
				model.Action{Date: day(1), Kind: model.KindCreateCard, CardID: "c1", DestList: "To Do"},
				model.Action{Date: day(2), Kind: model.KindCardRelisted, CardID: "c1", SourceList: "To Do", DestList: "In Progress"},
			), rules))

			Convey("Then the date still snapshots, counts unchanged", func() {
				So(err, ShouldBeNil)
				So(snaps, ShouldHaveLength, 2)
				So(snaps[1].Date, ShouldResemble, day(2))
				So(snaps[1].Created, ShouldEqual, 1)
				So(snaps[1].Finished, ShouldEqual, 0)
			})
		})
	})
}

func TestTotalsProperties(t *testing.T) {
	Convey("Given a longer mixed stream", t, func() {
		rules := classify.New(classify.WithFinishLists([]string{"Done"}))
		actions := []model.Action{
			{Date: day(1), Kind: model.KindCreateCard, DestList: "To Do"},
			{Date: day(1), Kind: model.KindCreateCard, DestList: "To Do"},
			{Date: day(2), Kind: model.KindCardRelisted, SourceList: "To Do", DestList: "In Progress"},
			{Date: day(2), Kind: model.KindCardRelisted, SourceList: "In Progress", DestList: "Done"},
			{Date: day(4), Kind: model.KindDeleteCard, SourceList: "To Do"},
			{Date: day(4), Kind: model.KindCreateCard, DestList: "To Do"},
			{Date: day(7), Kind: model.KindCardClosed, DestList: "To Do"},
		}

		snaps, err := collect(velocity.Totals(stream(actions...), rules))
		So(err, ShouldBeNil)

		Convey("Then there is exactly one snapshot per distinct date", func() {
			distinct := map[time.Time]bool{}
			for _, a := range actions {
				distinct[a.Date] = true
			}
			So(snaps, ShouldHaveLength, len(distinct))
		})

		Convey("And every count is non-decreasing in emission order", func() {
			for i := 1; i < len(snaps); i++ {
				So(snaps[i].Created, ShouldBeGreaterThanOrEqualTo, snaps[i-1].Created)
				So(snaps[i].Removed, ShouldBeGreaterThanOrEqualTo, snaps[i-1].Removed)
				So(snaps[i].Finished, ShouldBeGreaterThanOrEqualTo, snaps[i-1].Finished)
			}
		})

		Convey("And the final snapshot carries the whole run's totals", func() {
			last := snaps[len(snaps)-1]
			So(last.Created, ShouldEqual, 3)
			So(last.Removed, ShouldEqual, 1)
			So(last.Finished, ShouldEqual, 2)
		})

		Convey("And snapshots emitted earlier never change afterwards", func() {
			first := snaps[0]
			So(first.Created, ShouldEqual, 2)
			So(first.Removed, ShouldEqual, 0)
			So(first.Finished, ShouldEqual, 0)
		})
	})
}
