package game

import (
	"fmt"

	"github.com/notnil/chess"
)

type noKingError chess.Color

func (err noKingError) Error() string {
	return fmt.Sprintf("No %v king on the board", chess.Color(err))
}

// ErrNoKing returns the error reported when a backend cannot set up a board that lacks a king.
func ErrNoKing(c chess.Color) error { return noKingError(c) }

// IsNoKing returns true if the error is caused by a missing king.
func IsNoKing(err error) bool {
	_, ok := err.(noKingError)
	return ok
}

// MoveError is returned by Board.Push when the move is not legal on the board.
type MoveError Move

func (err MoveError) Error() string {
	return fmt.Sprintf("Unable to make %v", Move(err))
}
