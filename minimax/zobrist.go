package minimax

import (
	"math/rand"

	"github.com/lealex262/recon/game"
	"github.com/notnil/chess"
)

// zobrist holds the keys for Zobrist hashing of placements.
// https://en.wikipedia.org/wiki/Zobrist_hashing
//
// The table is indexed by square and by chess.Piece, so the NoPiece column is never used.
type zobrist struct {
	table [64][13]uint64
	side  uint64
}

// the keys are fixed so that hashes are stable across runs.
var keys = makeZobrist(0x1e3779b97f4a7c15)

func makeZobrist(seed int64) (retVal zobrist) {
	r := rand.New(rand.NewSource(seed))
	for sq := range retVal.table {
		for pc := range retVal.table[sq] {
			retVal.table[sq][pc] = r.Uint64()
		}
	}
	retVal.side = r.Uint64()
	return retVal
}

// Hash returns the Zobrist hash of a placement with the given side to move.
func Hash(p game.Placement, turn chess.Color) (retVal uint64) {
	for sq, pc := range p {
		if pc != chess.NoPiece {
			retVal ^= keys.table[sq][pc]
		}
	}
	if turn == chess.Black {
		retVal ^= keys.side
	}
	return retVal
}

// evaluate is Evaluate, memoized for the duration of a search. Leaves reached by different move
// orders share one evaluation.
func (e *Engine) evaluate(board game.Board) Score {
	p := board.Placement()
	h := Hash(p, e.perspective)
	if v, ok := e.evals[h]; ok {
		e.hits++
		return v
	}
	v := EvaluatePlacement(p, e.perspective)
	e.evals[h] = v
	return v
}
