// package minimax searches a fully known board with iterative deepening alpha-beta minimax.
//
// The search runs against a single reconstructed board under a time budget. Every frame checks the
// remaining time; a frame that runs out returns noResult, which unwinds the whole iteration, and
// the result of the last completed depth is kept.
package minimax

import (
	"time"

	"github.com/chewxy/math32"
	"github.com/lealex262/recon/game"
)

// Config configures the search.
type Config struct {
	MaxDepth int           // deepest iteration. 0 means deepen until time runs out.
	Epsilon  time.Duration // a frame with less than this left aborts the iteration
}

// DefaultConfig returns the configuration used by the agent.
func DefaultConfig() Config {
	return Config{
		MaxDepth: 0,
		Epsilon:  100 * time.Millisecond,
	}
}

func (c Config) IsValid() bool {
	return c.MaxDepth >= 0 && c.Epsilon >= 0
}

// Score is a NaN tagged floating point, used to represent the search scores.
type Score float32

const (
	noResultBits = 0x7FE00000
)

func noResult() Score {
	return Score(math32.Float32frombits(noResultBits))
}

// isNullResult returns true if the Score (a NaN tagged number) is noResult
func isNullResult(r Score) bool {
	b := math32.Float32bits(float32(r))
	return b == noResultBits
}

var (
	negInf = Score(math32.Inf(-1))
	posInf = Score(math32.Inf(1))
)

// Result is the outcome of a search.
type Result struct {
	Move  game.Move
	Score Score
	Depth int // deepest completed iteration
	Nodes int

	CacheHits int // leaf evaluations answered from the cache

	// Found is false when the board has no legal move at all.
	Found bool

	// Fallback is true when no iteration completed and Move is the best move one ply deep,
	// picked without looking at the clock.
	Fallback bool
}
