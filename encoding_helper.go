package recon

import (
	"github.com/chewxy/math32"
	"github.com/lealex262/recon/belief"
	"github.com/lealex262/recon/game"
	"github.com/notnil/chess"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
	"gorgonia.org/vecf32"
)

// Planes is the number of 8x8 planes EncodeBelief produces: one per opponent slot and one for the
// player's own pieces.
const Planes = belief.NumSlots + 1

// EncodeBelief encodes the belief as Planes planes of 64 squares each. Plane s holds the
// distribution of slot s; the last plane is 1 where the player's own pieces stand.
//
// The board is seen from the perspective colour: for Black the ranks are mirrored so that the
// player's home rank is always the first row.
func EncodeBelief(t *belief.Tracker, own game.Placement, perspective chess.Color, prealloc []float32) []float32 {
	if len(prealloc) != Planes*64 {
		prealloc = make([]float32, Planes*64)
	}
	for s := belief.Slot(0); s < belief.NumSlots; s++ {
		d := t.Distribution(s)
		encodePlane(prealloc[int(s)*64:int(s)*64+64], perspective, func(sq chess.Square) float32 { return float32(d[sq]) })
	}
	ownPlane := prealloc[belief.NumSlots*64:]
	encodePlane(ownPlane, perspective, func(sq chess.Square) float32 {
		if pc := own[sq]; pc != chess.NoPiece && pc.Color() == perspective {
			return 1
		}
		return 0
	})
	return prealloc
}

func encodePlane(plane []float32, perspective chess.Color, fn func(sq chess.Square) float32) {
	it := makeIterator(plane)
	defer returnIterator(it)
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			sq := game.Square(f, r)
			if perspective == chess.Black {
				sq ^= 56
			}
			it[r][f] = fn(sq)
		}
	}
}

// ValidBelief checks that every slot plane is a distribution: no NaN or negative entries, and a
// total of 1 (or 0 for a captured slot).
func ValidBelief(encoded []float32) error {
	if len(encoded) != Planes*64 {
		return errors.Errorf("Expected %d features, got %d", Planes*64, len(encoded))
	}
	for s := 0; s < belief.NumSlots; s++ {
		plane := encoded[s*64 : s*64+64]
		for _, v := range plane {
			if math32.IsNaN(v) || math32.IsInf(v, 0) || v < 0 {
				return errors.Errorf("Slot %v has an invalid probability %v", belief.Slot(s), v)
			}
		}
		sum := vecf32.Sum(plane)
		if sum != 0 && math32.Abs(sum-1) > 1e-3 {
			return errors.Errorf("Slot %v sums to %v", belief.Slot(s), sum)
		}
	}
	return nil
}

// BeliefTensor returns the encoded belief as a (Planes, 8, 8) tensor.
func BeliefTensor(t *belief.Tracker, own game.Placement, perspective chess.Color) *tensor.Dense {
	backing := EncodeBelief(t, own, perspective, nil)
	return tensor.New(tensor.WithShape(Planes, 8, 8), tensor.WithBacking(backing))
}

// HeatMap reduces the slot planes of an encoded belief to the probability of any opponent piece
// being on each square, as an 8x8 tensor. scale multiplies the result.
func HeatMap(encoded []float32, scale float32) (*tensor.Dense, error) {
	if len(encoded) != Planes*64 {
		return nil, errors.Errorf("Expected %d features, got %d", Planes*64, len(encoded))
	}
	slots := make([]float32, belief.NumSlots*64)
	copy(slots, encoded)
	T := tensor.New(tensor.WithShape(belief.NumSlots, 8, 8), tensor.WithBacking(slots))
	heat, err := T.Sum(0)
	if err != nil {
		return nil, errors.WithMessage(err, "Unable to reduce the slot planes")
	}
	vecf32.Scale(heat.Data().([]float32), scale)
	return heat, nil
}
