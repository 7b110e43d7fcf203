package game

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/notnil/chess"
	"github.com/pkg/errors"
)

// Placement is the content of each of the 64 squares. chess.NoPiece marks an empty square.
//
// It is a value type: copying a Placement copies the board.
type Placement [64]chess.Piece

// backRank lists the back rank piece types in file order.
var backRank = [8]chess.PieceType{chess.Rook, chess.Knight, chess.Bishop, chess.Queen, chess.King, chess.Bishop, chess.Knight, chess.Rook}

// BackRank returns the starting piece type on the given file of the back rank.
func BackRank(file int) chess.PieceType { return backRank[file] }

// HomeRanks returns the back rank and the pawn rank of a colour.
func HomeRanks(c chess.Color) (back, pawns int) {
	if c == chess.Black {
		return 7, 6
	}
	return 0, 1
}

// StartingPlacement returns the pieces of one colour at their starting squares.
func StartingPlacement(c chess.Color) Placement {
	var p Placement
	back, pawns := HomeRanks(c)
	for f := 0; f < 8; f++ {
		p[Square(f, back)] = MakePiece(backRank[f], c)
		p[Square(f, pawns)] = MakePiece(chess.Pawn, c)
	}
	return p
}

// ParsePlacement parses the piece placement of a FEN string. Only the first field is required.
func ParsePlacement(fen string) (Placement, error) {
	var p Placement
	fields := strings.Fields(fen)
	if len(fields) == 0 {
		return p, errors.New("Empty FEN")
	}
	opt, err := chess.FEN(fields[0] + " w - - 0 1")
	if err != nil {
		return p, errors.WithMessage(err, "Unable to parse placement")
	}
	g := chess.NewGame(opt)
	for sq, pc := range g.Position().Board().SquareMap() {
		p[sq] = pc
	}
	return p, nil
}

// MakePiece returns the piece of the given type and colour.
func MakePiece(t chess.PieceType, c chess.Color) chess.Piece {
	if c == chess.White {
		switch t {
		case chess.King:
			return chess.WhiteKing
		case chess.Queen:
			return chess.WhiteQueen
		case chess.Rook:
			return chess.WhiteRook
		case chess.Bishop:
			return chess.WhiteBishop
		case chess.Knight:
			return chess.WhiteKnight
		case chess.Pawn:
			return chess.WhitePawn
		}
	}
	if c == chess.Black {
		switch t {
		case chess.King:
			return chess.BlackKing
		case chess.Queen:
			return chess.BlackQueen
		case chess.Rook:
			return chess.BlackRook
		case chess.Bishop:
			return chess.BlackBishop
		case chess.Knight:
			return chess.BlackKnight
		case chess.Pawn:
			return chess.BlackPawn
		}
	}
	return chess.NoPiece
}

// Only returns the pieces of one colour.
func (p Placement) Only(c chess.Color) Placement {
	var retVal Placement
	for sq, pc := range p {
		if pc != chess.NoPiece && pc.Color() == c {
			retVal[sq] = pc
		}
	}
	return retVal
}

// Overlay returns p with every piece of other placed on top of it.
func (p Placement) Overlay(other Placement) Placement {
	for sq, pc := range other {
		if pc != chess.NoPiece {
			p[sq] = pc
		}
	}
	return p
}

// Count returns the number of pieces of the given colour.
func (p Placement) Count(c chess.Color) int {
	var n int
	for _, pc := range p {
		if pc != chess.NoPiece && pc.Color() == c {
			n++
		}
	}
	return n
}

// HasKing returns true if the colour has a king on the board.
func (p Placement) HasKing(c chess.Color) bool {
	k := MakePiece(chess.King, c)
	for _, pc := range p {
		if pc == k {
			return true
		}
	}
	return false
}

// Apply moves a piece the way a completed move would, including the castling rook, promotions
// and en passant captures. It returns the captured piece, if any.
// A pawn moving diagonally to an empty square only captures en passant if an enemy piece stands
// beside it, so the agent's own placement (which holds no enemy pieces) can be updated safely.
// Null moves are no-ops.
func (p *Placement) Apply(m Move) (captured chess.Piece) {
	if m.IsNull() {
		return chess.NoPiece
	}
	moving := p[m.From]
	if moving == chess.NoPiece {
		return chess.NoPiece
	}
	captured = p[m.To]
	p[m.From] = chess.NoPiece
	p[m.To] = moving
	ff, fr := FileRank(m.From)
	tf, tr := FileRank(m.To)

	switch moving.Type() {
	case chess.King:
		if abs(tf-ff) == 2 {
			rookFrom, rookTo := Square(7, fr), Square(5, fr)
			if tf < ff {
				rookFrom, rookTo = Square(0, fr), Square(3, fr)
			}
			p[rookTo] = p[rookFrom]
			p[rookFrom] = chess.NoPiece
		}
	case chess.Pawn:
		if ep := Square(tf, fr); captured == chess.NoPiece && tf != ff && p[ep] != chess.NoPiece && p[ep].Color() != moving.Color() {
			captured = p[ep]
			p[ep] = chess.NoPiece
		}
		if m.Promo != chess.NoPieceType {
			p[m.To] = MakePiece(m.Promo, moving.Color())
		} else if tr == 0 || tr == 7 {
			p[m.To] = MakePiece(chess.Queen, moving.Color())
		}
	}
	return captured
}

// Remove clears a square and returns what was on it.
func (p *Placement) Remove(sq chess.Square) chess.Piece {
	if !OnBoard(sq) {
		return chess.NoPiece
	}
	pc := p[sq]
	p[sq] = chess.NoPiece
	return pc
}

// FEN returns a full FEN string for the placement with the given side to move.
// Castling rights are derived from kings and rooks standing on their starting squares.
// There is never an en passant square.
func (p Placement) FEN(turn chess.Color) string {
	m := make(map[chess.Square]chess.Piece)
	for sq, pc := range p {
		if pc != chess.NoPiece {
			m[chess.Square(sq)] = pc
		}
	}
	side := "w"
	if turn == chess.Black {
		side = "b"
	}
	return fmt.Sprintf("%s %s %s - 0 1", chess.NewBoard(m).String(), side, p.castling())
}

func (p Placement) castling() string {
	var buf bytes.Buffer
	if p[chess.E1] == chess.WhiteKing {
		if p[chess.H1] == chess.WhiteRook {
			buf.WriteByte('K')
		}
		if p[chess.A1] == chess.WhiteRook {
			buf.WriteByte('Q')
		}
	}
	if p[chess.E8] == chess.BlackKing {
		if p[chess.H8] == chess.BlackRook {
			buf.WriteByte('k')
		}
		if p[chess.A8] == chess.BlackRook {
			buf.WriteByte('q')
		}
	}
	if buf.Len() == 0 {
		return "-"
	}
	return buf.String()
}

// Format prints the board with rank 8 at the top.
func (p Placement) Format(s fmt.State, c rune) {
	for r := 7; r >= 0; r-- {
		fmt.Fprint(s, "⎢ ")
		for f := 0; f < 8; f++ {
			pc := p[Square(f, r)]
			if pc == chess.NoPiece {
				fmt.Fprint(s, "· ")
				continue
			}
			fmt.Fprintf(s, "%s ", pieceRune(pc))
		}
		fmt.Fprint(s, "⎥\n")
	}
}

func pieceRune(pc chess.Piece) string {
	l := string(pieceLetters[pc.Type()])
	if pc.Color() == chess.White {
		return strings.ToUpper(l)
	}
	return l
}
