package gif

import (
	"image/gif"
	"io"

	"github.com/lealex262/recon"
	"github.com/lealex262/recon/encoding/render"
)

// Encoder encodes every turn of a game as a frame of an animated GIF, according to the
// recon.OutputEncoder interface.
type Encoder struct {
	*render.Renderer
	io.Writer

	out *gif.GIF
}

// NewGifEncoder with height and width
func NewGifEncoder(h, w int) *Encoder {
	return &Encoder{
		Renderer: render.New(h, w),
		out:      &gif.GIF{LoopCount: -1},
	}
}

// Encode a game
func (enc *Encoder) Encode(ms recon.MetaState) error {
	var delay int
	if ok, _ := ms.Ended(); ok {
		delay = 300
	}
	enc.out.Image = append(enc.out.Image, enc.Render(ms))
	enc.out.Delay = append(enc.out.Delay, delay)
	return nil
}

// Frames is the number of frames encoded so far.
func (enc *Encoder) Frames() int { return len(enc.out.Image) }

// Flush writes the gif into the writer and starts a new one.
func (enc *Encoder) Flush() error {
	if len(enc.out.Image) == 0 {
		return nil
	}
	err := gif.EncodeAll(enc.Writer, enc.out)
	enc.out = &gif.GIF{LoopCount: -1}
	return err
}
