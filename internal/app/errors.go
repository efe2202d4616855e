package app

import "errors"

// Sentinel kinds for operation errors.
var (
	ErrBoardRequired  = errors.New("no board configured")
	ErrBoardNotFound  = errors.New("board not found")
	ErrBoardAmbiguous = errors.New("board name is ambiguous")
)
