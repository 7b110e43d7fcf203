package minimax

import (
	"github.com/lealex262/recon/game"
	"github.com/notnil/chess"
)

// material values in centipawns. The king is weighted so heavily that losing it outweighs everything else.
var material = [...]Score{
	chess.King:   20000,
	chess.Queen:  900,
	chess.Rook:   500,
	chess.Bishop: 300,
	chess.Knight: 300,
	chess.Pawn:   100,
}

// piece-square tables, from White's point of view, indexed a1, b1 ... h8.
// Black pieces look up the square mirrored across the middle of the board.
var tables = [...][64]Score{
	chess.Pawn: {
		0, 0, 0, 0, 0, 0, 0, 0,
		5, 10, 10, -20, -20, 10, 10, 5,
		5, -5, -10, 0, 0, -10, -5, 5,
		0, 0, 0, 20, 20, 0, 0, 0,
		5, 5, 10, 25, 25, 10, 5, 5,
		10, 10, 20, 30, 30, 20, 10, 10,
		50, 50, 50, 50, 50, 50, 50, 50,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	chess.Knight: {
		-50, -40, -30, -30, -30, -30, -40, -50,
		-40, -20, 0, 5, 5, 0, -20, -40,
		-30, 5, 10, 15, 15, 10, 5, -30,
		-30, 0, 15, 20, 20, 15, 0, -30,
		-30, 5, 15, 20, 20, 15, 5, -30,
		-30, 0, 10, 15, 15, 10, 0, -30,
		-40, -20, 0, 0, 0, 0, -20, -40,
		-50, -40, -30, -30, -30, -30, -40, -50,
	},
	chess.Bishop: {
		-20, -10, -10, -10, -10, -10, -10, -20,
		-10, 5, 0, 0, 0, 0, 5, -10,
		-10, 10, 10, 10, 10, 10, 10, -10,
		-10, 0, 10, 10, 10, 10, 0, -10,
		-10, 5, 5, 10, 10, 5, 5, -10,
		-10, 0, 5, 10, 10, 5, 0, -10,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-20, -10, -10, -10, -10, -10, -10, -20,
	},
	chess.Rook: {
		0, 0, 0, 5, 5, 0, 0, 0,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		5, 10, 10, 10, 10, 10, 10, 5,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	chess.Queen: {
		-20, -10, -10, -5, -5, -10, -10, -20,
		-10, 0, 5, 0, 0, 0, 0, -10,
		-10, 5, 5, 5, 5, 5, 0, -10,
		0, 0, 5, 5, 5, 5, 0, -5,
		-5, 0, 5, 5, 5, 5, 0, -5,
		-10, 0, 5, 5, 5, 5, 0, -10,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-20, -10, -10, -5, -5, -10, -10, -20,
	},
	chess.King: {
		20, 30, 10, 0, 0, 10, 30, 20,
		20, 20, 0, 0, 0, 0, 20, 20,
		-10, -20, -20, -20, -20, -20, -20, -10,
		-20, -30, -30, -40, -40, -30, -30, -20,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
	},
}

// PieceValue is the material plus positional value of a piece on a square.
func PieceValue(pc chess.Piece, sq chess.Square) Score {
	if pc == chess.NoPiece || !game.OnBoard(sq) {
		return 0
	}
	idx := int(sq)
	if pc.Color() == chess.Black {
		idx ^= 56
	}
	return material[pc.Type()] + tables[pc.Type()][idx]
}

// EvaluatePlacement is the material and positional balance of a placement from perspective's point of view.
func EvaluatePlacement(p game.Placement, perspective chess.Color) (retVal Score) {
	for sq, pc := range p {
		if pc == chess.NoPiece {
			continue
		}
		v := PieceValue(pc, chess.Square(sq))
		if pc.Color() == perspective {
			retVal += v
		} else {
			retVal -= v
		}
	}
	return retVal
}

// Evaluate is the static evaluation of a board from perspective's point of view.
func Evaluate(b game.Board, perspective chess.Color) Score {
	return EvaluatePlacement(b.Placement(), perspective)
}
