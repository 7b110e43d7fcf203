package mjpeg

import (
	"testing"

	"github.com/lealex262/recon/game"
	"github.com/notnil/chess"
	"github.com/stretchr/testify/assert"
)

type state struct{}

func (s state) Name() string                              { return "mjpeg" }
func (s state) GameNumber() int                           { return 1 }
func (s state) Turn() int                                 { return 3 }
func (s state) ToMove() chess.Color                       { return chess.Black }
func (s state) Truth() game.Placement                     { return game.StartingPlacement(chess.Black) }
func (s state) View(c chess.Color) (game.Placement, bool) { return game.StartingPlacement(c), true }
func (s state) Ended() (bool, chess.Color)                { return false, chess.NoColor }

func TestEncoder(t *testing.T) {
	assert := assert.New(t)
	enc := NewEncoder(400, 800)
	assert.NoError(enc.Encode(state{}))
	assert.NoError(enc.Encode(state{}))
	assert.NoError(enc.Flush())
}
