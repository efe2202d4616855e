package trello

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/okian/burnup/internal/domain/model"
)

// wireTimeLayout is the timestamp format on action documents.
const wireTimeLayout = "2006-01-02T15:04:05.000Z"

// Board is one board visible to the credentials.
type Board struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// List is one list on a board.
type List struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// actionDoc mirrors the fields of a board action document this tool reads.
type actionDoc struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Date string `json:"date"`
	Data struct {
		Card struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"card"`
		List struct {
			Name string `json:"name"`
		} `json:"list"`
		ListBefore struct {
			Name string `json:"name"`
		} `json:"listBefore"`
		ListAfter struct {
			Name string `json:"name"`
		} `json:"listAfter"`
		// Old carries the previous values of whichever card fields the
		// update changed; its keys tell closes apart from list moves.
		Old map[string]json.RawMessage `json:"old"`
	} `json:"data"`
}

// kind refines the document's raw type into the query-style vocabulary:
// an updateCard document becomes updateCard:closed or updateCard:idList
// depending on which field changed.
func (d actionDoc) kind() model.Kind {
	if d.Type != "updateCard" {
		return model.Kind(d.Type)
	}
	if _, ok := d.Data.Old["closed"]; ok {
		return model.KindCardClosed
	}
	if _, ok := d.Data.Old["idList"]; ok {
		return model.KindCardRelisted
	}
	return model.Kind(d.Type)
}

// toAction projects a raw document into the domain record. A document
// without a parsable date yields an error; the date is the one field
// nothing downstream can work without.
func (d actionDoc) toAction() (model.Action, error) {
	a := model.Action{
		Kind:     d.kind(),
		CardID:   d.Data.Card.ID,
		CardName: d.Data.Card.Name,
	}

	if d.Date != "" {
		ts, err := time.Parse(wireTimeLayout, d.Date)
		if err != nil {
			return model.Action{}, fmt.Errorf("action %s: %w: %w", d.ID, ErrBadDocument, err)
		}
		y, m, day := ts.UTC().Date()
		a.Date = time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	}

	switch a.Kind {
	case model.KindCardRelisted:
		a.SourceList = d.Data.ListBefore.Name
		a.DestList = d.Data.ListAfter.Name
	case model.KindDeleteCard, model.KindMoveFromBoard:
		a.SourceList = d.Data.List.Name
	default:
		// Creates, copies, arrivals and closes carry the card's list
		// under data.list.
		a.DestList = d.Data.List.Name
	}
	return a, nil
}
