// Package app wires the board source, classification rules and report
// writer into the operations the CLI exposes.
package app

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/okian/burnup/internal/adapters/report"
	"github.com/okian/burnup/internal/adapters/trello"
	"github.com/okian/burnup/internal/domain/classify"
	"github.com/okian/burnup/internal/domain/model"
	"github.com/okian/burnup/internal/domain/velocity"
	"github.com/okian/burnup/pkg/logger"
)

// Source is the board service surface the operations need. *trello.Client
// satisfies it; tests substitute fakes.
type Source interface {
	Boards(ctx context.Context) ([]trello.Board, error)
	Lists(ctx context.Context, boardID string) ([]trello.List, error)
	Actions(ctx context.Context, boardID string, kinds []model.Kind) iter.Seq2[model.Action, error]
}

// Service owns the collaborators of a run. Everything a run needs arrives
// through options; there is no ambient state.
type Service struct {
	source    Source
	rules     *classify.Rules
	board     string
	delimiter rune
	log       logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets the board source.
func WithSource(src Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithRules sets the classification rules.
func WithRules(rules *classify.Rules) Option {
	return func(s *Service) {
		if rules != nil {
			s.rules = rules
		}
	}
}

// WithBoard sets the board name prefix to report on.
func WithBoard(name string) Option {
	return func(s *Service) {
		s.board = name
	}
}

// WithDelimiter sets the report column separator.
func WithDelimiter(d rune) Option {
	return func(s *Service) {
		if d != 0 {
			s.delimiter = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates a Service using provided options.
func New(opts ...Option) *Service {
	s := &Service{
		rules:     classify.New(),
		delimiter: '\t',
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get()
	}
	return s
}

// Velocity resolves the configured board, streams its actions through the
// running-total reducer and writes one report row per date to w.
func (s *Service) Velocity(ctx context.Context, w io.Writer) error {
	board, err := s.resolveBoard(ctx)
	if err != nil {
		return err
	}
	s.log.Info(ctx, "computing velocity", logger.String("board", board.Name))

	events := s.source.Actions(ctx, board.ID, model.QueryKinds())
	rw := report.NewWriter(w, report.WithDelimiter(s.delimiter))

	rows := 0
	for snap, err := range velocity.Totals(events, s.rules) {
		if err != nil {
			return fmt.Errorf("reduce actions: %w", err)
		}
		if err := rw.Write(snap); err != nil {
			return fmt.Errorf("write report row: %w", err)
		}
		rows++
	}
	if err := rw.Flush(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}

	s.log.Info(ctx, "velocity report complete",
		logger.String("board", board.Name),
		logger.Int("rows", rows))
	return nil
}

// Boards returns all boards visible to the credentials, for locating the
// right board name.
func (s *Service) Boards(ctx context.Context) ([]trello.Board, error) {
	return s.source.Boards(ctx)
}

// Lists returns all lists on the configured board, for locating reject and
// finish list names.
func (s *Service) Lists(ctx context.Context) ([]trello.List, error) {
	board, err := s.resolveBoard(ctx)
	if err != nil {
		return nil, err
	}
	return s.source.Lists(ctx, board.ID)
}

// resolveBoard finds the single board whose name starts with the
// configured prefix. Zero matches and more than one match are distinct
// failures; a typo should never silently report on the wrong board.
func (s *Service) resolveBoard(ctx context.Context) (trello.Board, error) {
	if s.board == "" {
		return trello.Board{}, ErrBoardRequired
	}
	boards, err := s.source.Boards(ctx)
	if err != nil {
		return trello.Board{}, fmt.Errorf("list boards: %w", err)
	}

	var matches []trello.Board
	for _, b := range boards {
		if strings.HasPrefix(b.Name, s.board) {
			matches = append(matches, b)
		}
	}
	switch len(matches) {
	case 0:
		return trello.Board{}, fmt.Errorf("%w: %q", ErrBoardNotFound, s.board)
	case 1:
		return matches[0], nil
	default:
		return trello.Board{}, fmt.Errorf("%w: %q matches %d boards", ErrBoardAmbiguous, s.board, len(matches))
	}
}
