package recon

import (
	"context"
	"testing"
	"time"

	"github.com/lealex262/recon/belief"
	"github.com/lealex262/recon/game"
	"github.com/lealex262/recon/minimax"
	"github.com/lealex262/recon/sense"
	"github.com/notnil/chess"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/vecf32"
)

func TestConfig(t *testing.T) {
	assert := assert.New(t)
	assert.NoError(DefaultConfig().Validate())

	conf := DefaultConfig()
	conf.Name = ""
	assert.Error(conf.Validate())

	conf = DefaultConfig()
	conf.MoveTimeCap = 0
	assert.Error(conf.Validate())

	conf = DefaultConfig()
	conf.Backend = "stockfish"
	assert.Error(conf.Validate())
	_, err := NewAgent(conf, zerolog.Nop())
	assert.Error(err)

	conf = DefaultConfig()
	conf.Search.MaxDepth = -1
	assert.Error(conf.Validate())

	o, err := Backend("standard")
	require.NoError(t, err)
	assert.Equal("standard", o.Name())
}

func newTestAgent(t *testing.T, backend string) *Agent {
	t.Helper()
	conf := DefaultConfig()
	conf.Backend = backend
	conf.MoveTimeCap = 200 * time.Millisecond
	conf.Search = minimax.Config{MaxDepth: 2}
	a, err := NewAgent(conf, zerolog.Nop())
	require.NoError(t, err)
	return a
}

func TestAgentFirstTurn(t *testing.T) {
	for _, backend := range []string{"standard", "bitboard"} {
		t.Run(backend, func(t *testing.T) {
			assert := assert.New(t)
			a := newTestAgent(t, backend)
			a.OnGameStart(chess.White, start(), "opponent")
			assert.Equal(start().Only(chess.White), a.Own())
			assert.Equal(start(), a.Belief())

			// nothing has happened yet
			a.OnOpponentMoveResult(false, chess.NoSquare)
			assert.Equal(1.0, a.Tracker.Distribution(0)[chess.A8])

			moves := MoveActions(start(), chess.White)
			sq := a.ChooseSense(allSquares(), moves, time.Minute)
			assert.Equal(sense.Opening(chess.White), sq)
			a.OnSenseResult(Sense(start(), sq))

			m := a.ChooseMove(moves, time.Minute)
			assert.Contains(moves, m)
			assert.True(a.LastSearch().Found)
			assert.Equal(m, a.LastSearch().Move)

			truth := start()
			taken, _ := Revise(truth, chess.White, m)
			truth.Apply(taken)
			a.OnMoveResult(m, taken, "", false, chess.NoSquare)
			assert.Equal(truth.Only(chess.White), a.Own())
		})
	}
}

func TestAgentCapturedOwnPiece(t *testing.T) {
	assert := assert.New(t)
	a := newTestAgent(t, "standard")
	a.OnGameStart(chess.Black, start(), "opponent")
	a.OnOpponentMoveResult(false, chess.NoSquare)
	assert.Equal(sense.Opening(chess.Black), a.ChooseSense(allSquares(), nil, time.Minute))
	a.OnSenseResult(Sense(start(), chess.E3))
	a.OnMoveResult(game.Null, game.Null, "pass", false, chess.NoSquare)

	// white took the pawn on e7, out of nowhere
	a.OnOpponentMoveResult(true, chess.E7)
	assert.Equal(chess.NoPiece, a.Own()[chess.E7])
	assert.Equal(chess.E7, a.Policy.Target())
	assert.Equal(chess.E7, a.ChooseSense(allSquares(), nil, time.Minute))

	var found bool
	for s := belief.Slot(0); s < belief.NumSlots; s++ {
		if a.Tracker.Distribution(s)[chess.E7] == 1 {
			found = true
		}
	}
	assert.True(found)
}

func TestAgentFallback(t *testing.T) {
	assert := assert.New(t)
	a := newTestAgent(t, "standard")
	a.OnGameStart(chess.White, start(), "opponent")
	assert.Equal(game.Null, a.ChooseMove(nil, time.Minute))

	// a move the search would never play is all that is on offer
	offered := []game.Move{{From: chess.A2, To: chess.B3}}
	assert.Equal(offered[0], a.ChooseMove(offered, time.Minute))

	// no time to search
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a.WithContext(ctx)
	moves := MoveActions(start(), chess.White)
	m := a.ChooseMove(moves, time.Minute)
	assert.Contains(moves, m)
	assert.True(a.LastSearch().Fallback)
}

func TestEncodeBelief(t *testing.T) {
	assert := assert.New(t)
	tr := belief.New(chess.Black, nil)
	own := game.StartingPlacement(chess.White)

	encoded := EncodeBelief(tr, own, chess.White, nil)
	require.Len(t, encoded, Planes*64)
	assert.NoError(ValidBelief(encoded))
	assert.Equal(float32(1), encoded[int(chess.A8)]) // slot 0 is the rook on a8
	assert.Equal(float32(1), encoded[belief.NumSlots*64+int(chess.E1)])
	assert.Equal(float32(0), encoded[belief.NumSlots*64+int(chess.E8)])

	// from black's side the ranks are mirrored
	flipped := EncodeBelief(tr, own.Only(chess.White), chess.Black, encoded)
	assert.Equal(float32(1), flipped[int(chess.A1)])
	assert.Equal(float32(0), flipped[belief.NumSlots*64+int(chess.E8)]) // own plane holds black pieces only

	T := BeliefTensor(tr, own, chess.White)
	assert.Equal([]int{Planes, 8, 8}, []int(T.Shape()))

	heat, err := HeatMap(EncodeBelief(tr, own, chess.White, nil), 1)
	require.NoError(t, err)
	data := heat.Data().([]float32)
	expected := tr.Heat()
	for sq := range data {
		assert.InDelta(expected[sq], float64(data[sq]), 1e-6)
	}

	bad := EncodeBelief(tr, own, chess.White, nil)
	bad[3] = 0.5
	assert.Error(ValidBelief(bad))
	_, err = HeatMap(bad[:10], 1)
	assert.Error(err)
}

func TestAgentBeforeGame(t *testing.T) {
	assert := assert.New(t)
	a := newTestAgent(t, "bitboard")
	assert.NotPanics(func() {
		a.OnOpponentMoveResult(true, chess.E2)
		a.OnSenseResult([]game.SenseResult{{Square: chess.E5, Piece: chess.BlackPawn}})
		a.OnMoveResult(game.Null, game.Null, "pass", false, chess.NoSquare)
	})
	assert.Equal(chess.B2, a.ChooseSense([]chess.Square{chess.B2, chess.C3}, nil, time.Minute))
	assert.Equal(chess.NoSquare, a.ChooseSense(nil, nil, time.Minute))
	offered := []game.Move{{From: chess.G1, To: chess.F3}}
	assert.Equal(offered[0], a.ChooseMove(offered, time.Minute))
	assert.Equal(game.Null, a.ChooseMove(nil, time.Minute))
	_, err := a.HeatMap()
	assert.Error(err)

	// nothing was recorded
	assert.Equal(game.Placement{}, a.Own())
	a.OnGameStart(chess.White, start(), "opponent")
	assert.Equal(chess.E6, a.ChooseSense(nil, nil, time.Minute))
}

func TestAgentBeliefChecks(t *testing.T) {
	assert := assert.New(t)
	a := newTestAgent(t, "standard")
	a.OnGameStart(chess.White, start(), "opponent")
	a.OnOpponentMoveResult(false, chess.NoSquare)
	a.ChooseSense(nil, nil, time.Minute)
	a.OnSenseResult(Sense(start(), chess.E6))
	require.Len(t, a.Features(), Planes*64)
	assert.NoError(ValidBelief(a.Features()))
	assert.Equal(float32(1), a.Features()[belief.NumSlots*64+int(chess.E1)])

	heat, err := a.HeatMap()
	require.NoError(t, err)
	assert.Equal([]int{8, 8}, []int(heat.Shape()))
	data := heat.Data().([]float32)
	assert.InDelta(1, data[chess.E8], 1e-6)
	assert.InDelta(0, data[chess.E4], 1e-6)
	assert.InDelta(16, vecf32.Sum(data), 1e-3)

	m := a.ChooseMove(MoveActions(start(), chess.White), time.Minute)
	assert.NotEqual(game.Null, m)
	assert.Contains(a.SearchTree(), "digraph")
}
