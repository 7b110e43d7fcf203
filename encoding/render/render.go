// package render draws the state of an arena game as text on an image. The true board is drawn
// next to what each player believes.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"
	"strings"

	"github.com/golang/freetype/truetype"
	"github.com/lealex262/recon"
	"github.com/lealex262/recon/game"
	"github.com/notnil/chess"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/math/fixed"
	"gorgonia.org/tensor"
)

var regular *truetype.Font

const (
	dpi             = 144.0
	fontsize        = 12.0
	lineheight      = 1.2
	dummyLongString = `Game Number: 10000, Turn: 1000, White to move`
	columnGap       = "   "
)

func init() {
	var err error
	if regular, err = truetype.Parse(gomono.TTF); err != nil {
		panic(err)
	}
}

// Palette is black on white.
var Palette = color.Palette{
	color.Gray{0},
	color.Gray{253},
}

// Renderer draws frames of a fixed size, decided by the first frame drawn.
type Renderer struct {
	H, W int
	font.Drawer

	face font.Face

	maxH, maxW  int // maxHeight and maxWidth
	padH, padW  int // padding so everything don't start at the topleft
	initialized bool
}

// New creates a Renderer whose frames are at most h by w pixels.
func New(h, w int) *Renderer {
	return &Renderer{
		H:    -1,
		W:    -1,
		maxH: h,
		maxW: w,
		padH: 10,
		padW: 10,

		Drawer: font.Drawer{
			Src: image.Black,
		},
	}
}

// Lines is the text of a frame.
func Lines(ms recon.MetaState) []string {
	columns := [][]string{board("truth", ms.Truth())}
	for _, c := range []chess.Color{chess.White, chess.Black} {
		if p, ok := ms.View(c); ok {
			columns = append(columns, board(c.Name()+" belief", p))
		}
	}
	if h, ok := ms.(heater); ok {
		for _, c := range []chess.Color{chess.White, chess.Black} {
			if T, ok := h.Heat(c); ok {
				columns = append(columns, heat(c.Name()+" heat", T))
			}
		}
	}

	var retVal []string
	for i := range columns[0] {
		row := make([]string, 0, len(columns))
		for _, col := range columns {
			row = append(row, col[i])
		}
		retVal = append(retVal, strings.Join(row, columnGap))
	}

	retVal = append(retVal, ms.Name())
	retVal = append(retVal, fmt.Sprintf("Game Number: %d, Turn: %d, %v to move", ms.GameNumber(), ms.Turn(), ms.ToMove().Name()))
	if ok, winner := ms.Ended(); ok {
		retVal = append(retVal, fmt.Sprintf("Winner: %v", winner.Name()))
	}
	return retVal
}

func board(title string, p game.Placement) []string {
	rows := strings.Split(strings.TrimRight(fmt.Sprintf("%v", p), "\n"), "\n")
	return titled(title, rows)
}

func titled(title string, rows []string) []string {
	width := len([]rune(rows[0]))
	if pad := width - len([]rune(title)); pad > 0 {
		title += strings.Repeat(" ", pad)
	}
	return append([]string{title}, rows...)
}

// heater is a MetaState that can show the heat map of a player.
type heater interface {
	Heat(c chess.Color) (*tensor.Dense, bool)
}

// heat draws an 8x8 heat map with rank 8 at the top. Each square shows the tenths of the
// probability, capped at 9, or a dot when it is below 0.05.
func heat(title string, T *tensor.Dense) []string {
	data, ok := T.Data().([]float32)
	if !ok || len(data) != 64 {
		return board(title, game.Placement{})
	}
	rows := make([]string, 0, 8)
	for r := 7; r >= 0; r-- {
		var b strings.Builder
		b.WriteString("⎢ ")
		for f := 0; f < 8; f++ {
			v := data[r*8+f]
			switch {
			case v < 0.05:
				b.WriteString("· ")
			case v >= 0.9:
				b.WriteString("9 ")
			default:
				b.WriteString(strconv.Itoa(int(v*10)) + " ")
			}
		}
		b.WriteString("⎥")
		rows = append(rows, b.String())
	}
	return titled(title, rows)
}

// Render draws a frame.
func (r *Renderer) Render(ms recon.MetaState) *image.Paletted {
	text := Lines(ms)
	dy := int(math.Ceil(fontsize * lineheight * dpi / 72))

	if !r.initialized {
		// lazy init of specifications
		r.face = truetype.NewFace(regular, &truetype.Options{
			Size:    fontsize,
			DPI:     dpi,
			Hinting: font.HintingFull,
		})
		r.Drawer.Src = image.Black
		r.Drawer.Face = r.face

		maxW := font.MeasureString(r.Face, dummyLongString).Ceil()
		for _, s := range text {
			maxW = maxInt(maxW, font.MeasureString(r.Face, s).Ceil())
		}
		w := maxW + 2*r.padW
		h := (len(text)+1)*dy + 2*r.padH // + 1 for the winner

		w = minInt(w, r.maxW)
		h = minInt(h, r.maxH)

		if w == r.maxW {
			r.padW = 0
		}
		if h == r.maxH {
			r.padH = 0
		}

		r.H = h
		r.W = w
		r.initialized = true
	}

	im := image.NewPaletted(image.Rect(0, 0, r.W, r.H), Palette)
	draw.Draw(im, im.Bounds(), image.White, image.Point{}, draw.Src)
	r.Dst = im
	y := r.padH + dy
	for _, s := range text {
		r.Dot = fixed.P(r.padW, y)
		r.DrawString(s)
		y += dy
	}
	return im
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
