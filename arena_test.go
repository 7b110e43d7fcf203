package recon

import (
	"context"
	"testing"
	"time"

	"github.com/lealex262/recon/game"
	"github.com/lealex262/recon/minimax"
	"github.com/notnil/chess"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	turns   []int
	truths  []game.Placement
	views   int
	ended   bool
	flushed bool
}

func (r *recorder) Encode(ms MetaState) error {
	r.turns = append(r.turns, ms.Turn())
	r.truths = append(r.truths, ms.Truth())
	for _, c := range []chess.Color{chess.White, chess.Black} {
		if _, ok := ms.View(c); ok {
			r.views++
		}
	}
	r.ended, _ = ms.Ended()
	return nil
}

func (r *recorder) Flush() error { r.flushed = true; return nil }

func TestArenaRandom(t *testing.T) {
	assert := assert.New(t)
	a := NewRandomPlayer("A", 1)
	b := NewRandomPlayer("B", 2)
	conf := ArenaConfig{MaxTurns: 30, TimeControl: time.Minute, Seed: 3}
	arena := NewArena(a, b, conf, "test", zerolog.Nop())

	rec := new(recorder)
	winner, reason := arena.Play(rec)
	assert.NotEmpty(reason)
	assert.True(rec.ended)
	assert.Equal(start(), rec.truths[0])
	assert.Zero(rec.views)
	assert.True(arena.Turn() <= conf.MaxTurns)

	switch reason {
	case "king captured":
		assert.NotEqual(chess.NoColor, winner)
		assert.False(arena.Truth().HasKing(winner.Other()))
	case "turn limit":
		assert.Equal(chess.NoColor, winner)
		assert.Equal(conf.MaxTurns, arena.Turn())
	default:
		t.Errorf("unexpected reason %q", reason)
	}

	// each player keeps at most sixteen pieces and only loses them
	for i := 1; i < len(rec.truths); i++ {
		for _, c := range []chess.Color{chess.White, chess.Black} {
			assert.True(rec.truths[i].Count(c) <= rec.truths[i-1].Count(c))
		}
	}

	stats := arena.Statistics()
	assert.ElementsMatch([]string{"A", "B"}, stats.Creation)
	assert.Len(stats.Wins["A"], 1)
}

func TestArenaTurnLimit(t *testing.T) {
	assert := assert.New(t)
	a := NewRandomPlayer("A", 1)
	a.PassEvery = 1
	b := NewRandomPlayer("B", 2)
	b.PassEvery = 1
	arena := NewArena(a, b, ArenaConfig{MaxTurns: 5, TimeControl: time.Minute, Seed: 1}, "", zerolog.Nop())

	rec := new(recorder)
	winner, reason := arena.Play(rec)
	assert.Equal(chess.NoColor, winner)
	assert.Equal("turn limit", reason)
	assert.Equal(5, arena.Turn())
	assert.Len(rec.turns, 11) // start, then every half move
	assert.Equal(start(), arena.Truth())
	assert.Equal("UNKNOWN GAME", arena.Name())
}

type slowPlayer struct{ *RandomPlayer }

func (p slowPlayer) ChooseMove(moves []game.Move, timeLeft time.Duration) game.Move {
	time.Sleep(20 * time.Millisecond)
	return p.RandomPlayer.ChooseMove(moves, timeLeft)
}

func TestArenaTimeout(t *testing.T) {
	a := slowPlayer{NewRandomPlayer("slow", 1)}
	b := slowPlayer{NewRandomPlayer("slower", 2)}
	arena := NewArena(a, b, ArenaConfig{MaxTurns: 100, TimeControl: 10 * time.Millisecond, Seed: 1}, "timeout", zerolog.Nop())
	winner, reason := arena.Play(nil)
	assert.Equal(t, "timeout", reason)
	assert.Equal(t, chess.Black, winner) // White runs out first
}

func TestArenaAgent(t *testing.T) {
	assert := assert.New(t)
	conf := DefaultConfig()
	conf.MoveTimeCap = 30 * time.Millisecond
	conf.Search = minimax.Config{MaxDepth: 2}
	agent, err := NewAgent(conf, zerolog.Nop())
	require.NoError(t, err)

	m := NewMatch(agent, NewRandomPlayer("random", 7), ArenaConfig{MaxTurns: 25, TimeControl: time.Minute, Seed: 5}, "agent", new(recorder), zerolog.Nop())
	winsA, winsB, draws, err := m.Run(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(2, winsA+winsB+draws)
	assert.Equal(2, m.GameNumber())
	assert.True(m.outEnc.(*recorder).flushed)
	assert.True(m.outEnc.(*recorder).views > 0)
	assert.NoError(ValidBelief(EncodeBelief(agent.Tracker, agent.Own(), agent.Color(), nil)))
	assert.NoError(ValidBelief(agent.Features()))
	heat, ok := m.Heat(agent.Color())
	require.True(t, ok)
	assert.Equal([]int{8, 8}, []int(heat.Shape()))
	_, ok = m.Heat(agent.Color().Other())
	assert.False(ok, "the random player has no heat map")

	stats := m.Statistics()
	assert.Len(stats.Wins[agent.Name()], 2)
	assert.Equal(float32(winsA)/2, stats.WinRate(agent.Name()))
}
