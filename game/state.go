package game

import (
	"fmt"

	"github.com/notnil/chess"
	"github.com/pkg/errors"
)

// Move is a move as requested by a player or as taken by the referee.
//
// Squares use the notnil/chess numbering:
//		- 0 represents a1
//		- 7 represents h1
//		- 63 represents h8
// A Move whose squares are NoSquare is the null move (a "pass").
type Move struct {
	From, To chess.Square
	Promo    chess.PieceType
}

// Null is the pass move. The referee reports it when a requested move could not be taken at all.
var Null = Move{From: chess.NoSquare, To: chess.NoSquare}

// IsNull returns true when the move does not move anything.
func (m Move) IsNull() bool {
	return !OnBoard(m.From) || !OnBoard(m.To) || m.From == m.To
}

// Eq returns true if both are equal. All null moves are equal.
func (m Move) Eq(other Move) bool {
	if m.IsNull() || other.IsNull() {
		return m.IsNull() && other.IsNull()
	}
	return m == other
}

// String returns the UCI representation of the move ("e2e4", "e7e8q", "0000" for a pass)
func (m Move) String() string {
	if m.IsNull() {
		return "0000"
	}
	s := SquareName(m.From) + SquareName(m.To)
	if m.Promo != chess.NoPieceType {
		s += string(pieceLetters[m.Promo])
	}
	return s
}

func (m Move) Format(s fmt.State, c rune) { fmt.Fprint(s, m.String()) }

// ParseMove parses a move in UCI notation. "0000", "pass" and "-" parse as Null.
func ParseMove(s string) (Move, error) {
	switch s {
	case "0000", "pass", "-", "none":
		return Null, nil
	}
	if len(s) != 4 && len(s) != 5 {
		return Null, errors.Errorf("Cannot parse move %q", s)
	}
	from, err := ParseSquare(s[:2])
	if err != nil {
		return Null, errors.WithMessage(err, "Unable to parse origin")
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return Null, errors.WithMessage(err, "Unable to parse destination")
	}
	m := Move{From: from, To: to}
	if len(s) == 5 {
		switch s[4] {
		case 'q':
			m.Promo = chess.Queen
		case 'r':
			m.Promo = chess.Rook
		case 'b':
			m.Promo = chess.Bishop
		case 'n':
			m.Promo = chess.Knight
		default:
			return Null, errors.Errorf("Unknown promotion %q in move %q", s[4], s)
		}
	}
	return m, nil
}

// OnBoard returns true if the square is one of the 64 board squares.
func OnBoard(sq chess.Square) bool { return sq >= chess.A1 && sq <= chess.H8 }

// Square returns the square at (file, rank), both in [0, 8).
func Square(file, rank int) chess.Square { return chess.Square(rank*8 + file) }

// FileRank splits a square into its file and rank, both in [0, 8).
func FileRank(sq chess.Square) (file, rank int) { return int(sq) % 8, int(sq) / 8 }

// SquareName returns the algebraic name of a square ("e4"). Off-board squares are "-".
func SquareName(sq chess.Square) string {
	if !OnBoard(sq) {
		return "-"
	}
	f, r := FileRank(sq)
	return string([]byte{byte('a' + f), byte('1' + r)})
}

// ParseSquare parses an algebraic square name. "-" parses as NoSquare.
func ParseSquare(s string) (chess.Square, error) {
	if s == "-" || s == "none" {
		return chess.NoSquare, nil
	}
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return chess.NoSquare, errors.Errorf("Invalid square %q", s)
	}
	return Square(int(s[0]-'a'), int(s[1]-'1')), nil
}

// Distance is the king-move (Chebyshev) distance between two squares. It is in [0, 7].
func Distance(a, b chess.Square) int {
	af, ar := FileRank(a)
	bf, br := FileRank(b)
	df, dr := abs(af-bf), abs(ar-br)
	if df > dr {
		return df
	}
	return dr
}

// Neighbourhood returns the squares of the 3x3 window centred on sq that lie on the board.
func Neighbourhood(sq chess.Square) []chess.Square {
	retVal := make([]chess.Square, 0, 9)
	f, r := FileRank(sq)
	for df := -1; df <= 1; df++ {
		for dr := -1; dr <= 1; dr++ {
			x, y := f+df, r+dr
			if x >= 0 && x < 8 && y >= 0 && y < 8 {
				retVal = append(retVal, Square(x, y))
			}
		}
	}
	return retVal
}

// SenseResult is one square of a sense window. Piece is chess.NoPiece when the square is empty.
type SenseResult struct {
	Square chess.Square
	Piece  chess.Piece
}

// Board is a chess position that can enumerate its legal moves and be pushed and popped in place.
//
// It is the board oracle used by the belief tracker and the search.
type Board interface {
	Turn() chess.Color                 // side to move
	Piece(sq chess.Square) chess.Piece // piece at a square
	Placement() Placement              // all the pieces
	LegalMoves() []Move                // legal moves for the side to move

	Push(m Move) error  // apply a legal move. The required side effect is that Turn() changes.
	Pop() (Move, bool)  // undo the last pushed move
	History() []Move    // moves pushed so far, oldest first
	Copy(withHistory bool) Board
}

// Oracle sets up Boards from placements.
type Oracle interface {
	Name() string
	Setup(p Placement, turn chess.Color) (Board, error)
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

var pieceLetters = [...]byte{
	chess.NoPieceType: '-',
	chess.King:        'k',
	chess.Queen:       'q',
	chess.Rook:        'r',
	chess.Bishop:      'b',
	chess.Knight:      'n',
	chess.Pawn:        'p',
}
