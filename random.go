package recon

import (
	"math/rand"
	"time"

	"github.com/lealex262/recon/game"
	"github.com/notnil/chess"
)

// RandomPlayer senses and moves uniformly at random. It passes one move in PassEvery (never if 0).
type RandomPlayer struct {
	name      string
	rng       *rand.Rand
	PassEvery int
}

// NewRandomPlayer creates a RandomPlayer. A seed of 0 seeds from the clock.
func NewRandomPlayer(name string, seed int64) *RandomPlayer {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if name == "" {
		name = "random"
	}
	return &RandomPlayer{
		name: name,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

func (p *RandomPlayer) Name() string { return p.name }

func (p *RandomPlayer) OnGameStart(color chess.Color, board game.Placement, opponent string) {}

func (p *RandomPlayer) OnOpponentMoveResult(captured bool, at chess.Square) {}

func (p *RandomPlayer) ChooseSense(candidates []chess.Square, moves []game.Move, timeLeft time.Duration) chess.Square {
	if len(candidates) == 0 {
		return chess.NoSquare
	}
	return candidates[p.rng.Intn(len(candidates))]
}

func (p *RandomPlayer) OnSenseResult(results []game.SenseResult) {}

func (p *RandomPlayer) ChooseMove(moves []game.Move, timeLeft time.Duration) game.Move {
	if len(moves) == 0 || (p.PassEvery > 0 && p.rng.Intn(p.PassEvery) == 0) {
		return game.Null
	}
	return moves[p.rng.Intn(len(moves))]
}

func (p *RandomPlayer) OnMoveResult(requested, taken game.Move, reason string, captured bool, at chess.Square) {
}

func (p *RandomPlayer) OnGameEnd(winner chess.Color, reason string) {}
