// package belief tracks where the opponent's pieces probably are.
//
// Each of the opponent's sixteen pieces has its own distribution over the 64 squares. The
// distributions are factored: no joint configuration is ever represented, and the single most
// likely board is rebuilt on demand from the per-slot best guesses.
package belief

import (
	"sort"

	"github.com/lealex262/recon/game"
	"github.com/notnil/chess"
	"github.com/rs/zerolog"
)

// Distribution is the probability of a slot being on each square.
type Distribution [64]float64

// Sum returns the total mass.
func (d *Distribution) Sum() (retVal float64) {
	for _, p := range d {
		retVal += p
	}
	return retVal
}

// Argmax returns the most likely square. Ties go to the lowest square. It returns chess.NoSquare if there is no mass.
func (d *Distribution) Argmax() chess.Square {
	best := chess.NoSquare
	var max float64
	for sq, p := range d {
		if p > max {
			max = p
			best = chess.Square(sq)
		}
	}
	return best
}

func (d *Distribution) pointMass(sq chess.Square) {
	*d = Distribution{}
	d[sq] = 1
}

// normalize rescales the distribution to sum to 1. It returns false and leaves the distribution alone if there is no mass.
func (d *Distribution) normalize() bool {
	sum := d.Sum()
	if sum <= 0 {
		return false
	}
	for i := range d {
		d[i] /= sum
	}
	return true
}

// Tracker is the belief over the opponent's pieces. It is created at game start and mutated in place.
//
// A Tracker is not safe for concurrent use.
type Tracker struct {
	opponent chess.Color
	oracle   game.Oracle
	logger   zerolog.Logger

	dist     [NumSlots]Distribution
	captured [NumSlots]bool
	kind     [NumSlots]chess.PieceType

	// own is the agent's own placement, as last reported.
	own game.Placement
}

// New creates a Tracker for the opponent's colour. The oracle is used to enumerate the opponent's moves.
func New(opponent chess.Color, oracle game.Oracle) *Tracker {
	t := &Tracker{
		oracle: oracle,
		logger: zerolog.Nop(),
	}
	t.Initialize(opponent)
	return t
}

// SetLogger sets the logger. Degenerate observations are logged at warn level.
func (t *Tracker) SetLogger(l zerolog.Logger) { t.logger = l }

// Initialize puts every slot on its home square for the tracked colour. The own placement is set
// to the standard starting position of the other colour.
func (t *Tracker) Initialize(opponent chess.Color) {
	t.opponent = opponent
	for i := range t.dist {
		s := Slot(i)
		t.dist[i].pointMass(s.Home(opponent))
		t.captured[i] = false
		t.kind[i] = s.StartKind()
	}
	t.own = game.StartingPlacement(opponent.Other())
}

// Opponent returns the tracked colour.
func (t *Tracker) Opponent() chess.Color { return t.opponent }

// Own returns the agent's own placement as the tracker knows it.
func (t *Tracker) Own() game.Placement { return t.own }

// SetOwn replaces the own placement. Only the agent's pieces are kept.
func (t *Tracker) SetOwn(p game.Placement) { t.own = p.Only(t.opponent.Other()) }

// Distribution returns a copy of the slot's distribution.
func (t *Tracker) Distribution(s Slot) Distribution { return t.dist[s] }

// Captured returns true once the slot has been captured.
func (t *Tracker) Captured(s Slot) bool { return t.captured[s] }

// Kind returns the current piece type of a slot. Pawns change kind once a promotion is observed.
func (t *Tracker) Kind(s Slot) chess.PieceType { return t.kind[s] }

// Live returns the number of slots not yet captured.
func (t *Tracker) Live() (n int) {
	for _, c := range t.captured {
		if !c {
			n++
		}
	}
	return n
}

// Heat is the total probability of any opponent piece on each square.
func (t *Tracker) Heat() (retVal [64]float64) {
	for i := range t.dist {
		if t.captured[i] {
			continue
		}
		for sq, p := range t.dist[i] {
			retVal[sq] += p
		}
	}
	return retVal
}

// Guesses computes the best-guess square of every live slot.
//
// Slots claim squares in descending order of confidence (the probability at their argmax, ties to
// the lower slot). A slot whose argmax is already claimed takes its next most likely unclaimed
// square with positive mass, or nothing.
func (t *Tracker) Guesses() (g Guesses) {
	for i := range g.Square {
		g.Square[i] = chess.NoSquare
	}
	for i := range g.Owner {
		g.Owner[i] = NoSlot
	}

	type cand struct {
		slot Slot
		conf float64
	}
	cands := make([]cand, 0, NumSlots)
	for i := range t.dist {
		if t.captured[i] {
			continue
		}
		sq := t.dist[i].Argmax()
		if sq == chess.NoSquare {
			continue
		}
		cands = append(cands, cand{Slot(i), t.dist[i][sq]})
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].conf > cands[j].conf })

	for _, c := range cands {
		d := &t.dist[c.slot]
		if sq := d.Argmax(); g.Owner[sq] == NoSlot {
			g.Square[c.slot] = sq
			g.Owner[sq] = c.slot
			continue
		}
		best := chess.NoSquare
		var max float64
		for sq, p := range d {
			if p > max && g.Owner[sq] == NoSlot {
				max = p
				best = chess.Square(sq)
			}
		}
		if best == chess.NoSquare {
			continue
		}
		g.Square[c.slot] = best
		g.Owner[best] = c.slot
	}
	return g
}

// Reconstruct returns the most likely board: the given own pieces exactly, and every live slot
// at its best guess. A guess on a square held by an own piece is dropped. A pawn guessed on the
// first or last rank is shown as a queen.
func (t *Tracker) Reconstruct(own game.Placement) game.Placement {
	return t.reconstruct(own.Only(t.opponent.Other()), t.Guesses())
}

func (t *Tracker) reconstruct(own game.Placement, g Guesses) game.Placement {
	retVal := own
	for i, sq := range g.Square {
		if sq == chess.NoSquare || retVal[sq] != chess.NoPiece {
			continue
		}
		kind := t.kind[i]
		if _, r := game.FileRank(sq); kind == chess.Pawn && (r == 0 || r == 7) {
			kind = chess.Queen
		}
		retVal[sq] = game.MakePiece(kind, t.opponent)
	}
	return retVal
}

// Board sets up the reconstructed board with the own placement through the oracle.
func (t *Tracker) Board(turn chess.Color) (game.Board, error) {
	return t.oracle.Setup(t.Reconstruct(t.own), turn)
}
