// package standard provides a game.Oracle backed by github.com/notnil/chess.
//
// Positions are immutable in notnil/chess, so a Board keeps a stack of them and Pop simply drops the top.
// Boards without kings are accepted: notnil/chess does not look for checks when a king is missing.
package standard

import (
	"github.com/lealex262/recon/game"
	"github.com/notnil/chess"
	"github.com/pkg/errors"
)

// Oracle sets up notnil/chess boards.
type Oracle struct{}

func (Oracle) Name() string { return "standard" }

// Setup creates a board with the given placement and side to move.
func (Oracle) Setup(p game.Placement, turn chess.Color) (game.Board, error) {
	return New(p, turn)
}

// Board is a game.Board implemented over *chess.Position.
type Board struct {
	positions []*chess.Position
	history   []game.Move
}

// New creates a Board from a placement.
func New(p game.Placement, turn chess.Color) (*Board, error) {
	fen := p.FEN(turn)
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, errors.WithMessagef(err, "Unable to set up %q", fen)
	}
	g := chess.NewGame(opt)
	return &Board{
		positions: []*chess.Position{g.Position()},
	}, nil
}

func (b *Board) pos() *chess.Position { return b.positions[len(b.positions)-1] }

// Position returns the underlying position.
func (b *Board) Position() *chess.Position { return b.pos() }

func (b *Board) Turn() chess.Color { return b.pos().Turn() }

func (b *Board) Piece(sq chess.Square) chess.Piece {
	if !game.OnBoard(sq) {
		return chess.NoPiece
	}
	return b.pos().Board().Piece(sq)
}

func (b *Board) Placement() (retVal game.Placement) {
	for sq, pc := range b.pos().Board().SquareMap() {
		retVal[sq] = pc
	}
	return retVal
}

func (b *Board) LegalMoves() []game.Move {
	valid := b.pos().ValidMoves()
	retVal := make([]game.Move, 0, len(valid))
	for _, m := range valid {
		retVal = append(retVal, convert(m))
	}
	return retVal
}

// Push finds the legal move that matches m and plays it. A move without a promotion piece matches the queen promotion.
func (b *Board) Push(m game.Move) error {
	mv := b.find(m)
	if mv == nil {
		return game.MoveError(m)
	}
	b.positions = append(b.positions, b.pos().Update(mv))
	b.history = append(b.history, convert(mv))
	return nil
}

func (b *Board) Pop() (game.Move, bool) {
	if len(b.history) == 0 {
		return game.Null, false
	}
	last := b.history[len(b.history)-1]
	b.history = b.history[:len(b.history)-1]
	b.positions[len(b.positions)-1] = nil
	b.positions = b.positions[:len(b.positions)-1]
	return last, true
}

func (b *Board) History() []game.Move {
	retVal := make([]game.Move, len(b.history))
	copy(retVal, b.history)
	return retVal
}

func (b *Board) Copy(withHistory bool) game.Board {
	if !withHistory {
		return &Board{positions: []*chess.Position{b.pos()}}
	}
	retVal := &Board{
		positions: make([]*chess.Position, len(b.positions)),
		history:   make([]game.Move, len(b.history)),
	}
	copy(retVal.positions, b.positions)
	copy(retVal.history, b.history)
	return retVal
}

// Status returns the method by which the game at the current position has ended, if any.
func (b *Board) Status() chess.Method { return b.pos().Status() }

func (b *Board) find(m game.Move) *chess.Move {
	var fallback *chess.Move
	for _, mv := range b.pos().ValidMoves() {
		if mv.S1() != m.From || mv.S2() != m.To {
			continue
		}
		if mv.Promo() == m.Promo {
			return mv
		}
		if m.Promo == chess.NoPieceType && mv.Promo() == chess.Queen {
			fallback = mv
		}
	}
	return fallback
}

func convert(m *chess.Move) game.Move {
	return game.Move{From: m.S1(), To: m.S2(), Promo: m.Promo()}
}
