package recon

import (
	"time"

	"github.com/lealex262/recon/game"
	"github.com/lealex262/recon/game/bitboard"
	"github.com/lealex262/recon/game/standard"
	"github.com/lealex262/recon/minimax"
	"github.com/notnil/chess"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Config configures an Agent.
type Config struct {
	Name        string         `mapstructure:"name"`
	MoveTimeCap time.Duration  `mapstructure:"move_time_cap"` // the most time a single move search may take
	Backend     string         `mapstructure:"backend"`       // board oracle used by the search: "bitboard" or "standard"
	Search      minimax.Config `mapstructure:"search"`
}

// DefaultConfig returns the default agent configuration.
func DefaultConfig() Config {
	return Config{
		Name:        "recon",
		MoveTimeCap: 5 * time.Second,
		Backend:     "bitboard",
		Search:      minimax.DefaultConfig(),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Name == "" {
		return errors.New("name must not be empty")
	}
	if c.MoveTimeCap <= 0 {
		return errors.Errorf("move_time_cap must be positive, got %v", c.MoveTimeCap)
	}
	if _, err := Backend(c.Backend); err != nil {
		return err
	}
	if !c.Search.IsValid() {
		return errors.Errorf("invalid search configuration %+v", c.Search)
	}
	return nil
}

// Backend returns the board oracle with the given name.
func Backend(name string) (game.Oracle, error) {
	switch name {
	case "bitboard":
		return bitboard.Oracle{}, nil
	case "standard":
		return standard.Oracle{}, nil
	}
	return nil, errors.Errorf("unknown backend %q", name)
}

// Player is anything that can play reconnaissance blind chess. The callbacks are made in turn order:
// opponent move result, sense, sense result, move, move result.
type Player interface {
	Name() string
	OnGameStart(color chess.Color, board game.Placement, opponent string)
	OnOpponentMoveResult(captured bool, at chess.Square)
	ChooseSense(candidates []chess.Square, moves []game.Move, timeLeft time.Duration) chess.Square
	OnSenseResult(results []game.SenseResult)
	ChooseMove(moves []game.Move, timeLeft time.Duration) game.Move
	OnMoveResult(requested, taken game.Move, reason string, captured bool, at chess.Square)
	OnGameEnd(winner chess.Color, reason string)
}

// Believer is a Player that can show what it believes the board looks like.
type Believer interface {
	Belief() game.Placement
}

// Heater is a Player that can show how likely each square is to hold an opponent piece.
type Heater interface {
	HeatMap() (*tensor.Dense, error)
}

// Searcher is a Player that can show its last search as a graphviz graph.
type Searcher interface {
	SearchTree() string
}

// OutputEncoder encodes the entire meta state as whatever.
//
// An example OutputEncoder is the GifEncoder. Another example would be a logger.
type OutputEncoder interface {
	Encode(ms MetaState) error
	Flush() error
}

// MetaState is the state of an arena game as seen by an outside observer.
type MetaState interface {
	Name() string
	GameNumber() int
	Turn() int
	ToMove() chess.Color
	Truth() game.Placement

	// View is what the player of the given colour believes, if it can tell.
	View(c chess.Color) (game.Placement, bool)

	// Ended returns the winner when the game is over. A draw has no winner.
	Ended() (ended bool, winner chess.Color)
}
