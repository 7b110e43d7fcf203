package minimax

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lealex262/recon/game"
	"github.com/lealex262/recon/game/bitboard"
	"github.com/lealex262/recon/game/standard"
	"github.com/notnil/chess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var oracles = []game.Oracle{standard.Oracle{}, bitboard.Oracle{}}

func setup(t *testing.T, o game.Oracle, fen string, turn chess.Color) game.Board {
	t.Helper()
	p, err := game.ParsePlacement(fen)
	require.NoError(t, err)
	b, err := o.Setup(p, turn)
	require.NoError(t, err)
	return b
}

func TestConfig(t *testing.T) {
	assert.True(t, DefaultConfig().IsValid())
	assert.False(t, Config{MaxDepth: -1}.IsValid())
	assert.False(t, Config{Epsilon: -time.Second}.IsValid())
}

func TestNoResult(t *testing.T) {
	assert.True(t, isNullResult(noResult()))
	assert.False(t, isNullResult(0))
	assert.False(t, isNullResult(negInf))
}

func TestEvaluate(t *testing.T) {
	assert := assert.New(t)
	start := game.StartingPlacement(chess.White).Overlay(game.StartingPlacement(chess.Black))
	assert.Equal(Score(0), EvaluatePlacement(start, chess.White))
	assert.Equal(Score(0), EvaluatePlacement(start, chess.Black))

	p := start
	p.Remove(chess.D8)
	assert.True(EvaluatePlacement(p, chess.White) > 800)
	assert.Equal(EvaluatePlacement(p, chess.White), -EvaluatePlacement(p, chess.Black))

	// mirrored tables
	assert.Equal(PieceValue(chess.WhiteKnight, chess.C3), PieceValue(chess.BlackKnight, chess.C6))
	assert.Equal(PieceValue(chess.WhitePawn, chess.E7), Score(150))
	assert.Equal(PieceValue(chess.BlackPawn, chess.E2), Score(150))
	assert.Equal(Score(0), PieceValue(chess.NoPiece, chess.E2))
}

var plyTests = []struct {
	fen  string
	turn chess.Color
}{
	{"4k3/8/8/3q4/8/8/3Q4/4K3", chess.White},
	{"4k3/8/8/3q4/8/8/3Q4/4K3", chess.Black},
	{"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR", chess.White},
	{"r3k2r/pppq1ppp/2np1n2/2b1p1B1/2B1P1b1/2NP1N2/PPPQ1PPP/R3K2R", chess.Black},
	{"6k1/5ppp/8/8/8/8/1r3PPP/R5K1", chess.White},
}

// With a single ply, the chosen move is at least as good as every other legal move.
func TestSinglePlyOptimal(t *testing.T) {
	for _, o := range oracles {
		for _, tc := range plyTests {
			b := setup(t, o, tc.fen, tc.turn)
			e := New(Config{MaxDepth: 1, Epsilon: time.Millisecond})
			res := e.Search(context.Background(), b, 10*time.Second)
			require.True(t, res.Found, "%s %s", o.Name(), tc.fen)
			assert.Equal(t, 1, res.Depth)
			assert.False(t, res.Fallback)

			require.NoError(t, b.Push(res.Move))
			chosen := Evaluate(b, tc.turn)
			b.Pop()
			assert.Equal(t, res.Score, chosen)
			for _, m := range b.LegalMoves() {
				require.NoError(t, b.Push(m))
				v := Evaluate(b, tc.turn)
				b.Pop()
				assert.True(t, chosen >= v, "%s %s: %v (%v) is worse than %v (%v)", o.Name(), tc.fen, res.Move, chosen, m, v)
			}
		}
	}
}

func TestCapturesQueen(t *testing.T) {
	for _, o := range oracles {
		b := setup(t, o, "4k3/8/8/3q4/8/8/3Q4/4K3", chess.White)
		e := New(Config{MaxDepth: 3, Epsilon: time.Millisecond})
		res := e.Search(context.Background(), b, 10*time.Second)
		assert.Equal(t, game.Move{From: chess.D2, To: chess.D5}, res.Move, o.Name())
		assert.Equal(t, 3, res.Depth)
		assert.Empty(t, b.History(), "the board is restored")
	}
}

func TestNoLegalMoves(t *testing.T) {
	// black is stalemated
	b := setup(t, standard.Oracle{}, "k7/8/1Q6/8/8/8/8/K7", chess.Black)
	e := New(Config{MaxDepth: 2, Epsilon: time.Millisecond})
	res := e.Search(context.Background(), b, time.Second)
	assert.False(t, res.Found)
	assert.True(t, res.Move.IsNull())
}

// A clock that only moves when the engine visits nodes.
func nodeClock(e *Engine) func() time.Time {
	base := time.Unix(0, 0)
	return func() time.Time { return base.Add(time.Duration(e.nodes) * time.Millisecond) }
}

func TestAbortKeepsPreviousDepth(t *testing.T) {
	b := setup(t, standard.Oracle{}, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR", chess.White)
	e := New(Config{Epsilon: 100 * time.Millisecond})
	e.Clock = nodeClock(e)

	// depth 1 visits 21 nodes. Depth 2 needs at least 60 more but aborts after 50 in total.
	res := e.Search(context.Background(), b, 150*time.Millisecond)
	assert.True(t, res.Found)
	assert.False(t, res.Fallback)
	assert.Equal(t, 1, res.Depth)
	assert.Empty(t, b.History())

	greedy := New(Config{MaxDepth: 1, Epsilon: time.Millisecond})
	want := greedy.Search(context.Background(), b, time.Minute)
	assert.Equal(t, want.Move, res.Move)
}

func TestFallback(t *testing.T) {
	assert := assert.New(t)
	b := setup(t, bitboard.Oracle{}, "4k3/8/8/3q4/8/8/3Q4/4K3", chess.White)
	e := New(DefaultConfig())

	// no time at all
	res := e.Search(context.Background(), b, 0)
	assert.True(res.Found)
	assert.True(res.Fallback)
	assert.Equal(0, res.Depth)
	assert.Equal(game.Move{From: chess.D2, To: chess.D5}, res.Move)

	// cancelled
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res = e.Search(ctx, b, time.Minute)
	assert.True(res.Fallback)
	assert.Equal(game.Move{From: chess.D2, To: chess.D5}, res.Move)

	stale := setup(t, standard.Oracle{}, "k7/8/1Q6/8/8/8/8/K7", chess.Black)
	res = e.Search(context.Background(), stale, 0)
	assert.True(res.Fallback)
	assert.False(res.Found)
}

func TestToDot(t *testing.T) {
	b := setup(t, standard.Oracle{}, "4k3/8/8/3q4/8/8/3Q4/4K3", chess.White)
	e := New(Config{MaxDepth: 1, Epsilon: time.Millisecond})
	e.Search(context.Background(), b, 10*time.Second)
	dot := e.ToDot()
	assert.True(t, strings.Contains(dot, "digraph"))
	assert.True(t, strings.Contains(dot, "d2d5"))
	assert.True(t, strings.Contains(dot, "red"))
	assert.Equal(t, len(b.LegalMoves()), strings.Count(dot, "root->"))
}

func TestHash(t *testing.T) {
	assert := assert.New(t)
	start := game.StartingPlacement(chess.White).Overlay(game.StartingPlacement(chess.Black))
	assert.Equal(Hash(start, chess.White), Hash(start, chess.White))
	assert.NotEqual(Hash(start, chess.White), Hash(start, chess.Black))
	assert.Equal(uint64(0), Hash(game.Placement{}, chess.White))

	// the same placement reached by two move orders
	a, b := start, start
	a.Apply(game.Move{From: chess.G1, To: chess.F3})
	a.Apply(game.Move{From: chess.B1, To: chess.C3})
	b.Apply(game.Move{From: chess.B1, To: chess.C3})
	b.Apply(game.Move{From: chess.G1, To: chess.F3})
	assert.Equal(Hash(a, chess.Black), Hash(b, chess.Black))
	assert.NotEqual(Hash(start, chess.Black), Hash(a, chess.Black))
}

func TestEvaluationCache(t *testing.T) {
	b := setup(t, bitboard.Oracle{}, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR", chess.White)
	e := New(Config{MaxDepth: 3})
	res := e.Search(context.Background(), b, 10*time.Second)
	require.Equal(t, 3, res.Depth)
	assert.True(t, res.CacheHits > 0)

	// a second search starts from an empty cache
	again := e.Search(context.Background(), b, 10*time.Second)
	assert.Equal(t, res.CacheHits, again.CacheHits)
	assert.True(t, res.CacheHits < res.Nodes)
}

// Taking the king ends the game, so the search stops there on every backend.
func TestKingCapture(t *testing.T) {
	take := game.Move{From: chess.E1, To: chess.E8}
	for _, o := range oracles {
		for _, depth := range []int{1, 2, 3} {
			b := setup(t, o, "4k3/8/8/8/8/8/8/K3R3", chess.White)
			e := New(Config{MaxDepth: depth})
			var res Result
			require.NotPanics(t, func() { res = e.Search(context.Background(), b, 10*time.Second) }, "%s depth %d", o.Name(), depth)
			assert.True(t, res.Found)
			assert.Equal(t, take, res.Move, "%s depth %d", o.Name(), depth)
			assert.True(t, res.Score > 10000)
			assert.Empty(t, b.History(), "the board is restored")
		}
	}
}
