package belief

import (
	"github.com/lealex262/recon/game"
	"github.com/notnil/chess"
)

// ObserveOwnMoveOutcome updates the belief after the agent's own move has been resolved.
//
// after is the agent's placement once the move was taken. A move that did not succeed carries no
// information. A capture removes the slot most likely to have been at the captured square. Every
// square the agent now occupies is known to be free of opponent pieces.
func (t *Tracker) ObserveOwnMoveOutcome(after game.Placement, succeeded, captured bool, at chess.Square) {
	t.SetOwn(after)
	if !succeeded {
		return
	}
	if captured {
		if !game.OnBoard(at) {
			t.logger.Warn().Int("square", int(at)).Msg("capture reported off the board")
		} else if s := t.match(at, t.live(func(Slot) bool { return true })); s != NoSlot {
			t.dist[s] = Distribution{}
			t.captured[s] = true
			t.logger.Debug().Str("slot", s.String()).Str("square", game.SquareName(at)).Msg("captured")
		} else {
			t.logger.Warn().Str("square", game.SquareName(at)).Msg("no live slot to capture")
		}
	}

	var known [64]bool
	for sq, pc := range t.own {
		known[sq] = pc != chess.NoPiece
	}
	t.clear(known, known)
}

// ObserveOpponentMoveOutcome updates the belief after the opponent has moved.
//
// If the opponent captured one of the agent's pieces, the capturing piece is known to be exactly at
// the square. Otherwise every live slot is advanced one step of the transition model.
func (t *Tracker) ObserveOpponentMoveOutcome(captured bool, at chess.Square) {
	if !captured {
		t.propagate()
		return
	}
	if !game.OnBoard(at) {
		t.logger.Warn().Int("square", int(at)).Msg("capture reported off the board")
		return
	}
	t.own.Remove(at)
	s := t.match(at, t.live(func(Slot) bool { return true }))
	if s == NoSlot {
		t.logger.Warn().Str("square", game.SquareName(at)).Msg("no live slot for capturing piece")
		return
	}
	var known [64]bool
	known[at] = true
	t.collapse(s, at, known)
}

// ObserveSense updates the belief with the content of a sensed window.
//
// Empty squares and squares holding the agent's own pieces are cleared for every slot. An opponent
// piece is attributed to the best matching live slot of the same kind, which then sits there with
// certainty. A promoted piece with no slot of its kind left is attributed to a pawn slot, which
// takes the new kind.
func (t *Tracker) ObserveSense(results []game.SenseResult) {
	var cleared, sensed [64]bool
	for _, r := range results {
		if !game.OnBoard(r.Square) {
			t.logger.Warn().Int("square", int(r.Square)).Msg("sensed square off the board")
			continue
		}
		sensed[r.Square] = true
		if r.Piece == chess.NoPiece || r.Piece.Color() != t.opponent {
			cleared[r.Square] = true
		}
	}
	for sq, pc := range t.own {
		if pc != chess.NoPiece {
			sensed[sq] = true
		}
	}
	t.clear(cleared, sensed)

	var used [NumSlots]bool
	for _, r := range results {
		if !game.OnBoard(r.Square) || r.Piece == chess.NoPiece || r.Piece.Color() != t.opponent {
			continue
		}
		kind := r.Piece.Type()
		cands := t.live(func(s Slot) bool { return !used[s] && t.kind[s] == kind })
		promoted := false
		if len(cands) == 0 && promotable(kind) {
			cands = t.live(func(s Slot) bool { return !used[s] && t.kind[s] == chess.Pawn })
			promoted = true
		}
		s := t.match(r.Square, cands)
		if s == NoSlot {
			t.logger.Warn().Str("square", game.SquareName(r.Square)).Str("piece", r.Piece.String()).Msg("no slot matches sensed piece")
			continue
		}
		used[s] = true
		if promoted {
			t.kind[s] = kind
			t.logger.Debug().Str("slot", s.String()).Str("kind", kind.String()).Msg("promotion observed")
		}
		t.collapse(s, r.Square, sensed)
	}
}

func promotable(k chess.PieceType) bool {
	switch k {
	case chess.Queen, chess.Rook, chess.Bishop, chess.Knight:
		return true
	}
	return false
}

// live returns the live slots for which fn is true, in slot order.
func (t *Tracker) live(fn func(Slot) bool) []Slot {
	retVal := make([]Slot, 0, NumSlots)
	for i := range t.captured {
		if !t.captured[i] && fn(Slot(i)) {
			retVal = append(retVal, Slot(i))
		}
	}
	return retVal
}

// Score is how well a slot matches a piece seen at target: the probability of the slot being there
// plus a closeness term from its best guess. A slot without a guess only scores the probability.
func (t *Tracker) Score(s Slot, target chess.Square, g Guesses) float64 {
	score := t.dist[s][target]
	if guess := g.Square[s]; guess != chess.NoSquare {
		score += 1 - float64(game.Distance(target, guess))/16
	}
	return score
}

// match returns the candidate with the highest score at target. Ties go to the lowest slot.
func (t *Tracker) match(target chess.Square, cands []Slot) Slot {
	if len(cands) == 0 {
		return NoSlot
	}
	g := t.Guesses()
	best := NoSlot
	var max float64
	for _, s := range cands {
		if score := t.Score(s, target, g); best == NoSlot || score > max {
			best = s
			max = score
		}
	}
	return best
}

// collapse puts the slot at sq with certainty, and removes every other slot from sq. known are
// the squares whose content was observed along with sq.
func (t *Tracker) collapse(s Slot, sq chess.Square, known [64]bool) {
	var at [64]bool
	at[sq] = true
	t.dist[s].pointMass(sq)
	for i := range t.dist {
		if Slot(i) == s || t.captured[i] {
			continue
		}
		t.zero(Slot(i), at, known)
	}
}

// clear zeroes the squares in sqs for every live slot.
func (t *Tracker) clear(sqs, known [64]bool) {
	for i := range t.dist {
		if t.captured[i] {
			continue
		}
		t.zero(Slot(i), sqs, known)
	}
}

// zero removes the slot's mass at sqs and renormalizes. A slot left without any mass is spread
// uniformly over every square outside known that the agent does not occupy.
func (t *Tracker) zero(s Slot, sqs, known [64]bool) {
	d := &t.dist[s]
	var removed float64
	for sq, z := range sqs {
		if z && d[sq] > 0 {
			removed += d[sq]
			d[sq] = 0
		}
	}
	if removed == 0 {
		return
	}
	if d.normalize() {
		return
	}

	var n int
	for sq := range d {
		if !known[sq] && !sqs[sq] && t.own[sq] == chess.NoPiece {
			d[sq] = 1
			n++
		}
	}
	if !d.normalize() {
		t.logger.Warn().Str("slot", s.String()).Msg("no square left to reseed")
		return
	}
	t.logger.Debug().Str("slot", s.String()).Int("squares", n).Msg("reseeded")
}

// propagate advances every live slot one step of the transition model.
//
// The opponent's legal moves are enumerated on the reconstructed board. For N moves in total, a
// slot with k moves from its best guess, holding p there, sends p/N to each destination and
// keeps p(1-k/N) at its square.
func (t *Tracker) propagate() {
	g := t.Guesses()
	board, err := t.oracle.Setup(t.reconstruct(t.own, g), t.opponent)
	if err != nil {
		t.logger.Warn().Err(err).Msg("unable to set up reconstructed board, skipping transition")
		return
	}
	moves := board.LegalMoves()
	n := len(moves)
	if n == 0 {
		t.logger.Debug().Msg("opponent has no legal moves, skipping transition")
		return
	}

	var dests [NumSlots][]chess.Square
	for _, m := range moves {
		s := g.Owner[m.From]
		if s == NoSlot {
			continue
		}
		dests[s] = append(dests[s], m.To)
	}

	for i, to := range dests {
		if len(to) == 0 {
			continue
		}
		from := g.Square[i]
		d := &t.dist[i]
		p := d[from]
		step := p / float64(n)
		d[from] = p * (1 - float64(len(to))/float64(n))
		for _, sq := range to {
			d[sq] += step
		}
		if !d.normalize() {
			t.logger.Warn().Str("slot", Slot(i).String()).Msg("degenerate distribution after transition")
		}
	}
	t.logger.Debug().Int("moves", n).Msg("transition")
}
