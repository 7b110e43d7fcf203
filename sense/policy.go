// package sense chooses where to look each turn.
//
// The policy keeps, for every square, the number of turns since a sense window last covered it,
// and looks where the 3x3 sum of that staleness is largest. A capture of one of the agent's pieces
// overrides the heatmap: the next sense goes to the square where it happened.
package sense

import (
	"github.com/lealex262/recon/game"
	"github.com/notnil/chess"
)

// History is the number of turns since each square was last sensed.
type History [64]int

// Window is the 3x3 sum of the history around sq.
func (h *History) Window(sq chess.Square) (sum int) {
	for _, n := range game.Neighbourhood(sq) {
		sum += h[n]
	}
	return sum
}

// Policy is the sense policy of one agent for one game.
type Policy struct {
	color   chess.Color
	history History
	target  chess.Square
}

// New creates a Policy for the agent playing the given colour.
func New(color chess.Color) *Policy {
	return &Policy{
		color:  color,
		target: chess.NoSquare,
	}
}

// Opening is the square sensed on the first turn: the centre of the opponent's half.
func Opening(c chess.Color) chess.Square {
	if c == chess.Black {
		return chess.E3
	}
	return chess.E6
}

// OnOpponentMove computes the target of the next sense. A capture at a square forces the next sense there.
func (p *Policy) OnOpponentMove(captured bool, at chess.Square) {
	if captured && game.OnBoard(at) {
		p.target = at
		return
	}
	p.target = p.Stalest()
}

// Stalest returns the interior square with the largest 3x3 sum of history. The first found in
// file-major order wins ties.
func (p *Policy) Stalest() chess.Square {
	best := chess.NoSquare
	max := -1
	for f := 1; f < 7; f++ {
		for r := 1; r < 7; r++ {
			sq := game.Square(f, r)
			if sum := p.history.Window(sq); sum > max {
				max = sum
				best = sq
			}
		}
	}
	return best
}

// ChooseSense returns the square to sense on the given turn (0 is the agent's first turn) and
// updates the history: every square ages by one, then the sensed window and the squares holding
// the agent's own pieces are reset.
func (p *Policy) ChooseSense(turn int, own game.Placement) chess.Square {
	var sq chess.Square
	switch {
	case turn == 0:
		sq = Opening(p.color)
	case p.target != chess.NoSquare:
		sq = p.target
	default:
		sq = p.Stalest()
	}
	p.target = chess.NoSquare

	for i := range p.history {
		p.history[i]++
	}
	for _, n := range game.Neighbourhood(sq) {
		p.history[n] = 0
	}
	for i, pc := range own {
		if pc != chess.NoPiece && pc.Color() == p.color {
			p.history[i] = 0
		}
	}
	return sq
}

// History returns a copy of the sense history.
func (p *Policy) History() History { return p.history }

// Target returns the pending target, or chess.NoSquare.
func (p *Policy) Target() chess.Square { return p.target }
