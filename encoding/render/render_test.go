package render

import (
	"strings"
	"testing"

	"github.com/lealex262/recon/game"
	"github.com/notnil/chess"
	"github.com/stretchr/testify/assert"
	"gorgonia.org/tensor"
)

type state struct {
	views  map[chess.Color]game.Placement
	ended  bool
	winner chess.Color
}

func (s state) Name() string          { return "test game" }
func (s state) GameNumber() int       { return 2 }
func (s state) Turn() int             { return 7 }
func (s state) ToMove() chess.Color   { return chess.Black }
func (s state) Truth() game.Placement { return game.StartingPlacement(chess.White) }
func (s state) View(c chess.Color) (game.Placement, bool) {
	p, ok := s.views[c]
	return p, ok
}
func (s state) Ended() (bool, chess.Color) { return s.ended, s.winner }

func TestLines(t *testing.T) {
	assert := assert.New(t)
	lines := Lines(state{})
	assert.Len(lines, 11) // title, 8 ranks, name, status
	assert.True(strings.HasPrefix(lines[0], "truth"))
	assert.Equal("test game", lines[9])
	assert.Equal("Game Number: 2, Turn: 7, Black to move", lines[10])

	s := state{
		views:  map[chess.Color]game.Placement{chess.White: game.StartingPlacement(chess.Black)},
		ended:  true,
		winner: chess.White,
	}
	lines = Lines(s)
	assert.Len(lines, 12)
	assert.Contains(lines[0], "White belief")
	assert.Equal("Winner: White", lines[11])
	// rank 8 of the truth is empty, rank 8 of the belief is not
	assert.True(strings.HasPrefix(lines[1], "⎢ · · · · · · · · ⎥"+columnGap+"⎢ r n b q k b n r ⎥"))
}

type heatState struct {
	state
	heat []float32
}

func (s heatState) Heat(c chess.Color) (*tensor.Dense, bool) {
	if c != chess.White {
		return nil, false
	}
	return tensor.New(tensor.WithShape(8, 8), tensor.WithBacking(s.heat)), true
}

func TestHeatLines(t *testing.T) {
	assert := assert.New(t)
	h := make([]float32, 64)
	h[chess.A8] = 0.5
	h[chess.H8] = 2
	h[chess.E1] = 0.04
	lines := Lines(heatState{heat: h})
	assert.Len(lines, 11)
	assert.Contains(lines[0], "White heat")
	assert.True(strings.HasSuffix(lines[1], columnGap+"⎢ 5 · · · · · · 9 ⎥"))
	assert.True(strings.HasSuffix(lines[8], columnGap+"⎢ · · · · · · · · ⎥"))
}

func TestRender(t *testing.T) {
	assert := assert.New(t)
	r := New(1000, 2000)
	im := r.Render(state{})
	assert.Equal(r.W, im.Bounds().Dx())
	assert.Equal(r.H, im.Bounds().Dy())

	// frames keep the size of the first one
	im = r.Render(state{views: map[chess.Color]game.Placement{chess.Black: {}}})
	assert.Equal(r.W, im.Bounds().Dx())

	small := New(50, 60)
	im = small.Render(state{})
	assert.Equal(60, im.Bounds().Dx())
	assert.Equal(50, im.Bounds().Dy())
}
