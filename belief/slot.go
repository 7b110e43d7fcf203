package belief

import (
	"fmt"

	"github.com/lealex262/recon/game"
	"github.com/notnil/chess"
)

// Slot identifies one of the opponent's sixteen pieces for the whole game.
//
// Slots 0-7 are the back rank pieces in file order (R N B Q K B N R), slots 8-15 are the pawns
// on files a through h.
type Slot int

// NumSlots is the number of pieces a side starts with.
const NumSlots = 16

// NoSlot is used where no slot owns a square.
const NoSlot Slot = -1

// IsPawn returns true if the slot started the game as a pawn.
func (s Slot) IsPawn() bool { return s >= 8 && s < NumSlots }

// Valid returns true for the sixteen slots.
func (s Slot) Valid() bool { return s >= 0 && s < NumSlots }

// StartKind is the piece type the slot starts the game as.
func (s Slot) StartKind() chess.PieceType {
	if s.IsPawn() {
		return chess.Pawn
	}
	return game.BackRank(int(s))
}

// Home is the starting square of the slot for the given colour.
func (s Slot) Home(c chess.Color) chess.Square {
	back, pawns := game.HomeRanks(c)
	if s.IsPawn() {
		return game.Square(int(s)-8, pawns)
	}
	return game.Square(int(s), back)
}

func (s Slot) String() string {
	if !s.Valid() {
		return "none"
	}
	return fmt.Sprintf("%d(%v%c)", int(s), s.StartKind(), 'a'+rune(int(s)%8))
}

// Guesses are the best-guess squares of every slot and the inverse map, resolved so that no two
// slots share a square.
type Guesses struct {
	Square [NumSlots]chess.Square // chess.NoSquare when the slot has no square
	Owner  [64]Slot               // NoSlot when no slot guesses the square
}
