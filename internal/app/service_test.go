package app_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"iter"
	"os"
	"testing"
	"time"

	"github.com/okian/burnup/internal/adapters/trello"
	"github.com/okian/burnup/internal/app"
	"github.com/okian/burnup/internal/domain/classify"
	"github.com/okian/burnup/internal/domain/model"
	"github.com/okian/burnup/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.InitWithWriter(io.Discard); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// fakeSource serves canned boards, lists and actions.
type fakeSource struct {
	boards    []trello.Board
	boardsErr error
	lists     map[string][]trello.List
	actions   map[string][]model.Action
	kinds     []model.Kind
}

func (f *fakeSource) Boards(ctx context.Context) ([]trello.Board, error) {
	return f.boards, f.boardsErr
}

func (f *fakeSource) Lists(ctx context.Context, boardID string) ([]trello.List, error) {
	return f.lists[boardID], nil
}

func (f *fakeSource) Actions(ctx context.Context, boardID string, kinds []model.Kind) iter.Seq2[model.Action, error] {
	f.kinds = kinds
	return func(yield func(model.Action, error) bool) {
		for _, a := range f.actions[boardID] {
			if !yield(a, nil) {
				return
			}
		}
	}
}

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestServiceVelocity(t *testing.T) {
	Convey("Given a source with one matching board", t, func() {
		src := &fakeSource{
			boards: []trello.Board{
				{ID: "b1", Name: "Blog: Algorithmic study"},
				{ID: "b2", Name: "Household"},
			},
			actions: map[string][]model.Action{
				"b1": {
					{Date: day(1), Kind: model.KindCreateCard, CardID: "c1", DestList: "To Do"},
					{Date: day(1), Kind: model.KindCardClosed, CardID: "c1", DestList: "To Do"},
					{Date: day(2), Kind: model.KindDeleteCard, CardID: "c1", SourceList: "To Do"},
					{Date: day(2), Kind: model.KindCreateCard, CardID: "c2", DestList: "Reference Material"},
				},
			},
		}
		svc := app.New(
			app.WithSource(src),
			app.WithBoard("Blog"),
			app.WithRules(classify.New(classify.WithRejectLists([]string{"Reference"}))),
		)

		Convey("When computing velocity", func() {
			var buf bytes.Buffer
			err := svc.Velocity(t.Context(), &buf)

			Convey("Then the report carries one cumulative row per date", func() {
				So(err, ShouldBeNil)
				So(buf.String(), ShouldEqual,
					"date\tcreated\tremoved\tfinished\n"+
						"2026-03-01\t1\t0\t1\n"+
						"2026-03-02\t1\t1\t1\n")
			})

			Convey("And the source was asked for the full query vocabulary", func() {
				So(src.kinds, ShouldResemble, model.QueryKinds())
			})
		})

		Convey("When a custom delimiter is configured", func() {
			var buf bytes.Buffer
			svc := app.New(
				app.WithSource(src),
				app.WithBoard("Blog"),
				app.WithDelimiter(','),
			)
			err := svc.Velocity(t.Context(), &buf)

			Convey("Then rows use it", func() {
				So(err, ShouldBeNil)
				So(buf.String(), ShouldStartWith, "date,created,removed,finished\n")
			})
		})
	})

	Convey("Given a board with no qualifying activity", t, func() {
		src := &fakeSource{
			boards: []trello.Board{{ID: "b1", Name: "Blog"}},
		}
		svc := app.New(app.WithSource(src), app.WithBoard("Blog"))

		Convey("When computing velocity", func() {
			var buf bytes.Buffer
			err := svc.Velocity(t.Context(), &buf)

			Convey("Then the report is the header alone", func() {
				So(err, ShouldBeNil)
				So(buf.String(), ShouldEqual, "date\tcreated\tremoved\tfinished\n")
			})
		})
	})
}

func TestServiceBoardResolution(t *testing.T) {
	Convey("Given several boards", t, func() {
		src := &fakeSource{
			boards: []trello.Board{
				{ID: "b1", Name: "Blog: Algorithmic study"},
				{ID: "b2", Name: "Blog: Essays"},
				{ID: "b3", Name: "Household"},
			},
			lists: map[string][]trello.List{
				"b3": {{ID: "l1", Name: "Chores"}},
			},
		}

		Convey("When no board is configured", func() {
			svc := app.New(app.WithSource(src))
			err := svc.Velocity(t.Context(), &bytes.Buffer{})

			Convey("Then the run refuses to guess", func() {
				So(errors.Is(err, app.ErrBoardRequired), ShouldBeTrue)
			})
		})

		Convey("When the prefix matches nothing", func() {
			svc := app.New(app.WithSource(src), app.WithBoard("Sprint"))
			err := svc.Velocity(t.Context(), &bytes.Buffer{})

			So(errors.Is(err, app.ErrBoardNotFound), ShouldBeTrue)
		})

		Convey("When the prefix matches two boards", func() {
			svc := app.New(app.WithSource(src), app.WithBoard("Blog"))
			err := svc.Velocity(t.Context(), &bytes.Buffer{})

			So(errors.Is(err, app.ErrBoardAmbiguous), ShouldBeTrue)
		})

		Convey("When the prefix matches exactly one board", func() {
			svc := app.New(app.WithSource(src), app.WithBoard("House"))
			lists, err := svc.Lists(t.Context())

			Convey("Then its lists come back", func() {
				So(err, ShouldBeNil)
				So(lists, ShouldResemble, []trello.List{{ID: "l1", Name: "Chores"}})
			})
		})

		Convey("When the board listing itself fails", func() {
			src := &fakeSource{boardsErr: errors.New("unauthorized")}
			svc := app.New(app.WithSource(src), app.WithBoard("Blog"))
			err := svc.Velocity(t.Context(), &bytes.Buffer{})

			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "unauthorized")
		})
	})
}

func TestServiceBoards(t *testing.T) {
	Convey("Given a source with boards", t, func() {
		src := &fakeSource{boards: []trello.Board{{ID: "b1", Name: "Blog"}}}
		svc := app.New(app.WithSource(src))

		Convey("When listing boards", func() {
			boards, err := svc.Boards(t.Context())

			Convey("Then no board configuration is needed", func() {
				So(err, ShouldBeNil)
				So(boards, ShouldHaveLength, 1)
			})
		})
	})
}
