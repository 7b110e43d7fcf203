package mjpeg

import (
	"bytes"
	"image/jpeg"
	"net/http"

	"github.com/lealex262/recon"
	"github.com/lealex262/recon/encoding/render"
	"github.com/mattn/go-mjpeg"
	"github.com/pkg/errors"
)

// Encoder streams every turn of a game as a JPEG frame of an MJPEG stream, according to the
// recon.OutputEncoder interface.
type Encoder struct {
	*render.Renderer

	stream *mjpeg.Stream
}

func (e *Encoder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.stream.ServeHTTP(w, r)
}

// NewEncoder with height and width
func NewEncoder(h, w int) *Encoder {
	return &Encoder{
		Renderer: render.New(h, w),
		stream:   mjpeg.NewStream(),
	}
}

// Encode a game
func (enc *Encoder) Encode(ms recon.MetaState) error {
	var b bytes.Buffer
	if err := jpeg.Encode(&b, enc.Render(ms), nil); err != nil {
		return errors.WithMessage(err, "Unable to encode frame")
	}
	if err := enc.stream.Update(b.Bytes()); err != nil {
		return errors.WithMessage(err, "Unable to update stream")
	}
	return nil
}

func (enc *Encoder) Flush() error { return nil }
