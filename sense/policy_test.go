package sense

import (
	"testing"

	"github.com/lealex262/recon/game"
	"github.com/notnil/chess"
	"github.com/stretchr/testify/assert"
)

func TestOpening(t *testing.T) {
	assert := assert.New(t)
	w := New(chess.White)
	assert.Equal(chess.E6, w.ChooseSense(0, game.StartingPlacement(chess.White)))
	b := New(chess.Black)
	assert.Equal(chess.E3, b.ChooseSense(0, game.StartingPlacement(chess.Black)))
}

func TestHistoryUpdate(t *testing.T) {
	assert := assert.New(t)
	p := New(chess.White)
	own := game.StartingPlacement(chess.White)
	p.ChooseSense(0, own)
	h := p.History()
	for _, sq := range game.Neighbourhood(chess.E6) {
		assert.Equal(0, h[sq])
	}
	assert.Equal(0, h[chess.A1], "own pieces reset")
	assert.Equal(1, h[chess.A8])
	assert.Equal(1, h[chess.E4])

	p.ChooseSense(0, own)
	h = p.History()
	assert.Equal(2, h[chess.A8])
	assert.Equal(0, h[chess.E6])
}

func TestStalest(t *testing.T) {
	assert := assert.New(t)
	p := New(chess.White)

	// all zero: the first interior square in file-major order
	assert.Equal(chess.B2, p.Stalest())

	p.history[chess.G7] = 5
	assert.Equal(chess.F6, p.Stalest(), "f6 is the first window that covers g7")

	p.history[chess.H8] = 1
	assert.Equal(chess.G7, p.Stalest())

	p.history[chess.A1] = 10
	assert.Equal(chess.B2, p.Stalest())
}

func TestHeatmapChoice(t *testing.T) {
	assert := assert.New(t)
	p := New(chess.White)
	own := game.StartingPlacement(chess.White)
	p.ChooseSense(0, own)
	p.ChooseSense(1, own)
	p.OnOpponentMove(false, chess.NoSquare)
	want := p.Target()
	assert.NotEqual(chess.NoSquare, want)
	got := p.ChooseSense(2, own)
	assert.Equal(want, got)
	assert.Equal(chess.NoSquare, p.Target())

	h := p.History()
	for _, sq := range game.Neighbourhood(got) {
		assert.Equal(0, h[sq])
	}
}

// The turn right after a capture always senses the capture square.
func TestForcedCapture(t *testing.T) {
	own := game.StartingPlacement(chess.Black)
	for _, at := range []chess.Square{chess.A1, chess.E5, chess.H8, chess.C2} {
		p := New(chess.Black)
		p.ChooseSense(0, own)
		for i := 1; i < 5; i++ {
			p.OnOpponentMove(false, chess.NoSquare)
			p.ChooseSense(i, own)
		}
		p.OnOpponentMove(true, at)
		assert.Equal(t, at, p.ChooseSense(5, own))

		p.OnOpponentMove(false, chess.NoSquare)
		assert.NotEqual(t, chess.NoSquare, p.ChooseSense(6, own))
	}

	// an off-board capture falls back to the heatmap
	p := New(chess.White)
	p.OnOpponentMove(true, chess.NoSquare)
	assert.Equal(t, chess.B2, p.Target())
}
