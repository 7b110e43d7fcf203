package bitboard

import (
	"testing"

	"github.com/lealex262/recon/game"
	"github.com/lealex262/recon/game/standard"
	"github.com/notnil/chess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func start() game.Placement {
	return game.StartingPlacement(chess.White).Overlay(game.StartingPlacement(chess.Black))
}

func TestSetup(t *testing.T) {
	assert := assert.New(t)
	b, err := Oracle{}.Setup(start(), chess.Black)
	require.NoError(t, err)
	assert.Equal(chess.Black, b.Turn())
	assert.Len(b.LegalMoves(), 20)
	assert.Equal(start(), b.Placement())

	_, err = Oracle{}.Setup(game.StartingPlacement(chess.White), chess.White)
	assert.True(game.IsNoKing(err))
}

func TestPushPop(t *testing.T) {
	assert := assert.New(t)
	b, err := New(start(), chess.White)
	require.NoError(t, err)

	line := []game.Move{
		{From: chess.E2, To: chess.E4},
		{From: chess.D7, To: chess.D5},
		{From: chess.E4, To: chess.D5},
		{From: chess.D8, To: chess.D5},
	}
	for _, m := range line {
		require.NoError(t, b.Push(m))
	}
	assert.Equal(chess.BlackQueen, b.Piece(chess.D5))
	assert.Equal(chess.White, b.Turn())
	assert.Equal(line, b.History())
	assert.Error(b.Push(game.Move{From: chess.E2, To: chess.E4}))

	cp := b.Copy(true)
	assert.Equal(line, cp.History())
	assert.Equal(b.Placement(), cp.Placement())

	for i := len(line) - 1; i >= 0; i-- {
		m, ok := b.Pop()
		require.True(t, ok)
		assert.Equal(line[i], m)
	}
	_, ok := b.Pop()
	assert.False(ok)
	assert.Equal(start(), b.Placement())
	assert.Equal(chess.BlackQueen, cp.Piece(chess.D5), "popping the original leaves the copy alone")

	flat := cp.Copy(false)
	assert.Empty(flat.History())
	assert.Equal(cp.Placement(), flat.Placement())
}

// Both backends must agree on the legal moves of the same position.
func TestAgreesWithStandard(t *testing.T) {
	fens := []string{
		"r3k2r/pppq1ppp/2np1n2/2b1p1B1/2B1P1b1/2NP1N2/PPPQ1PPP/R3K2R",
		"4k3/1P6/8/8/8/8/6p1/4K2R",
		"8/8/3k4/8/8/8/3K4/8",
	}
	for _, fen := range fens {
		p, err := game.ParsePlacement(fen)
		require.NoError(t, err)
		for _, turn := range []chess.Color{chess.White, chess.Black} {
			bb, err := New(p, turn)
			require.NoError(t, err)
			std, err := standard.New(p, turn)
			require.NoError(t, err)
			assert.ElementsMatch(t, std.LegalMoves(), bb.LegalMoves(), "%s %v", fen, turn)
		}
	}
}

func TestKingCaptured(t *testing.T) {
	assert := assert.New(t)
	p, err := game.ParsePlacement("4k3/8/8/8/8/8/8/K3R3")
	require.NoError(t, err)
	b, err := New(p, chess.White)
	require.NoError(t, err)

	take := game.Move{From: chess.E1, To: chess.E8}
	assert.Contains(b.LegalMoves(), take)
	require.NoError(t, b.Push(take))
	assert.Equal(chess.WhiteRook, b.Piece(chess.E8))
	assert.Empty(b.LegalMoves())
	assert.Error(b.Push(game.Move{From: chess.E8, To: chess.E7}))

	m, ok := b.Pop()
	require.True(t, ok)
	assert.Equal(take, m)
	assert.Equal(chess.BlackKing, b.Piece(chess.E8))
	assert.NotEmpty(b.LegalMoves())
}
