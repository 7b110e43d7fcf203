// package bitboard provides a game.Oracle backed by github.com/dylhunn/dragontoothmg.
//
// Moves are applied in place and undone with the closures dragontoothmg returns, which makes it the
// cheaper backend for the search. dragontoothmg cannot generate moves for a side without a king, so
// Setup refuses such placements with game.ErrNoKing.
package bitboard

import (
	"github.com/dylhunn/dragontoothmg"
	"github.com/lealex262/recon/game"
	"github.com/notnil/chess"
)

// Oracle sets up dragontoothmg boards.
type Oracle struct{}

func (Oracle) Name() string { return "bitboard" }

func (Oracle) Setup(p game.Placement, turn chess.Color) (game.Board, error) {
	return New(p, turn)
}

type frame struct {
	move game.Move
	undo func()
}

// Board is a game.Board implemented over a dragontoothmg.Board.
type Board struct {
	b     dragontoothmg.Board
	fen   string
	stack []frame
}

// New creates a Board from a placement. Both kings must be on the board.
func New(p game.Placement, turn chess.Color) (*Board, error) {
	for _, c := range []chess.Color{chess.White, chess.Black} {
		if !p.HasKing(c) {
			return nil, game.ErrNoKing(c)
		}
	}
	fen := p.FEN(turn)
	return &Board{
		b:   dragontoothmg.ParseFen(fen),
		fen: fen,
	}, nil
}

func (b *Board) Turn() chess.Color {
	if b.b.Wtomove {
		return chess.White
	}
	return chess.Black
}

func (b *Board) Piece(sq chess.Square) chess.Piece {
	if !game.OnBoard(sq) {
		return chess.NoPiece
	}
	mask := uint64(1) << uint(sq)
	if b.b.White.All&mask != 0 {
		return game.MakePiece(pieceType(&b.b.White, mask), chess.White)
	}
	if b.b.Black.All&mask != 0 {
		return game.MakePiece(pieceType(&b.b.Black, mask), chess.Black)
	}
	return chess.NoPiece
}

func (b *Board) Placement() (retVal game.Placement) {
	for sq := chess.A1; sq <= chess.H8; sq++ {
		retVal[sq] = b.Piece(sq)
	}
	return retVal
}

// LegalMoves returns no moves once the side to move has lost its king: the game is over.
func (b *Board) LegalMoves() []game.Move {
	if !b.hasKing() {
		return nil
	}
	moves := b.b.GenerateLegalMoves()
	retVal := make([]game.Move, 0, len(moves))
	for i := range moves {
		retVal = append(retVal, convert(&moves[i]))
	}
	return retVal
}

// Push plays the legal move matching m. A move without a promotion piece matches the queen promotion.
func (b *Board) Push(m game.Move) error {
	if !b.hasKing() {
		return game.MoveError(m)
	}
	moves := b.b.GenerateLegalMoves()
	found := -1
	for i := range moves {
		mv := convert(&moves[i])
		if mv.From != m.From || mv.To != m.To {
			continue
		}
		if mv.Promo == m.Promo {
			found = i
			break
		}
		if m.Promo == chess.NoPieceType && mv.Promo == chess.Queen {
			found = i
		}
	}
	if found < 0 {
		return game.MoveError(m)
	}
	undo := b.b.Apply(moves[found])
	b.stack = append(b.stack, frame{move: convert(&moves[found]), undo: undo})
	return nil
}

// dragontoothmg looks up the king of the side to move to generate moves.
func (b *Board) hasKing() bool {
	if b.b.Wtomove {
		return b.b.White.Kings != 0
	}
	return b.b.Black.Kings != 0
}

func (b *Board) Pop() (game.Move, bool) {
	if len(b.stack) == 0 {
		return game.Null, false
	}
	last := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	last.undo()
	return last.move, true
}

func (b *Board) History() []game.Move {
	retVal := make([]game.Move, 0, len(b.stack))
	for _, f := range b.stack {
		retVal = append(retVal, f.move)
	}
	return retVal
}

// Copy copies the board. Undo closures close over the original board, so a copy with history
// replays the moves on a fresh board parsed from the setup FEN.
func (b *Board) Copy(withHistory bool) game.Board {
	if !withHistory {
		fen := b.Placement().FEN(b.Turn())
		return &Board{b: dragontoothmg.ParseFen(fen), fen: fen}
	}
	retVal := &Board{b: dragontoothmg.ParseFen(b.fen), fen: b.fen}
	for _, f := range b.stack {
		// moves on the stack were legal when they were pushed
		if err := retVal.Push(f.move); err != nil {
			panic(err)
		}
	}
	return retVal
}

func pieceType(bb *dragontoothmg.Bitboards, mask uint64) chess.PieceType {
	switch {
	case bb.Pawns&mask != 0:
		return chess.Pawn
	case bb.Knights&mask != 0:
		return chess.Knight
	case bb.Bishops&mask != 0:
		return chess.Bishop
	case bb.Rooks&mask != 0:
		return chess.Rook
	case bb.Queens&mask != 0:
		return chess.Queen
	case bb.Kings&mask != 0:
		return chess.King
	}
	return chess.NoPieceType
}

var promotions = [...]chess.PieceType{
	dragontoothmg.Nothing: chess.NoPieceType,
	dragontoothmg.Knight:  chess.Knight,
	dragontoothmg.Bishop:  chess.Bishop,
	dragontoothmg.Rook:    chess.Rook,
	dragontoothmg.Queen:   chess.Queen,
}

func convert(m *dragontoothmg.Move) game.Move {
	return game.Move{
		From:  chess.Square(m.From()),
		To:    chess.Square(m.To()),
		Promo: promotions[m.Promote()],
	}
}
