// Package model contains domain records passed between pipeline stages.
package model

import "time"

// Kind tags a board action document. The vocabulary is closed: the
// classifier switches over these constants with a default arm, so an
// upstream vocabulary change never breaks a run.
type Kind string

// Kind values, spelled the way the board API spells them in action queries.
// The two updateCard kinds are refined from a plain "updateCard" document by
// the adapter that decodes it.
const (
	KindCreateCard    Kind = "createCard"
	KindCopyCard      Kind = "copyCard"
	KindDeleteCard    Kind = "deleteCard"
	KindMoveToBoard   Kind = "moveCardToBoard"
	KindMoveFromBoard Kind = "moveCardFromBoard"
	KindCardClosed    Kind = "updateCard:closed"
	KindCardRelisted  Kind = "updateCard:idList"
)

// QueryKinds returns the action vocabulary used to filter the board's
// activity stream. Deriving the query from the same constants the
// classifier switches over keeps the rule set and the API query in step.
func QueryKinds() []Kind {
	return []Kind{
		KindCreateCard,
		KindCopyCard,
		KindDeleteCard,
		KindMoveToBoard,
		KindMoveFromBoard,
		KindCardClosed,
		KindCardRelisted,
	}
}

// Action is one immutable record from a board's activity stream.
type Action struct {
	Date       time.Time // calendar date the action occurred (UTC midnight)
	Kind       Kind      // action kind, possibly outside the known vocabulary
	CardID     string    // opaque card identifier
	CardName   string    // card name when the document carries one
	SourceList string    // list the card moved or was removed from, when known
	DestList   string    // list the card moved to or currently resides in, when known
}

// List reports the container relevant to accounting: the destination when
// one is known, otherwise the source. Only one of the two is meaningful for
// most kinds.
func (a Action) List() string {
	if a.DestList != "" {
		return a.DestList
	}
	return a.SourceList
}

// Class is the semantic category assigned to one action.
type Class int

// Class values. Ignored is the zero value so an unclassified action counts
// toward nothing.
const (
	Ignored Class = iota
	Created
	Removed
	Finished
)

// String returns the lower-case class name.
func (c Class) String() string {
	switch c {
	case Created:
		return "created"
	case Removed:
		return "removed"
	case Finished:
		return "finished"
	default:
		return "ignored"
	}
}
