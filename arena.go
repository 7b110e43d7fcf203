package recon

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/lealex262/recon/game"
	"github.com/notnil/chess"
	"github.com/rs/zerolog"
	"gorgonia.org/tensor"
)

// ArenaConfig configures the games played in an Arena.
type ArenaConfig struct {
	MaxTurns    int           `mapstructure:"max_turns"`    // full turns before the game is called a draw
	TimeControl time.Duration `mapstructure:"time_control"` // thinking time of each player for the whole game
	Seed        int64         `mapstructure:"seed"`         // colour assignment. 0 seeds from the clock.
}

// DefaultArenaConfig returns the default arena configuration.
func DefaultArenaConfig() ArenaConfig {
	return ArenaConfig{
		MaxTurns:    200,
		TimeControl: 15 * time.Minute,
	}
}

// Arena is a referee that plays two Players against each other. It holds the true board and tells
// each player only what reconnaissance blind chess lets it know.
type Arena struct {
	A, B   Player
	conf   ArenaConfig
	r      *rand.Rand
	logger zerolog.Logger
	name   string
	stats  Statistics

	// state
	id         uuid.UUID
	gameNumber int
	truth      game.Placement
	toMove     chess.Color
	turn       int
	white      Player
	black      Player
	clocks     map[chess.Color]time.Duration
	ended      bool
	winner     chess.Color
	reason     string
}

// NewArena creates an Arena.
func NewArena(a, b Player, conf ArenaConfig, name string, logger zerolog.Logger) *Arena {
	seed := conf.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if name == "" {
		name = "UNKNOWN GAME"
	}
	return &Arena{
		A:      a,
		B:      b,
		conf:   conf,
		r:      rand.New(rand.NewSource(seed)),
		logger: logger.With().Str("arena", name).Logger(),
		name:   name,
		stats:  MakeStatistics(),
	}
}

func (a *Arena) player(c chess.Color) Player {
	if c == chess.White {
		return a.white
	}
	return a.black
}

// Play plays a game and returns the winner. If it is a draw, the returned colour is chess.NoColor.
func (a *Arena) Play(enc OutputEncoder) (winner chess.Color, reason string) {
	if a.r.Intn(2) == 0 {
		a.white, a.black = a.A, a.B
	} else {
		a.white, a.black = a.B, a.A
	}
	a.id = uuid.New()
	a.gameNumber++
	a.truth = game.StartingPlacement(chess.White).Overlay(game.StartingPlacement(chess.Black))
	a.toMove = chess.White
	a.turn = 0
	a.clocks = map[chess.Color]time.Duration{chess.White: a.conf.TimeControl, chess.Black: a.conf.TimeControl}
	a.ended, a.winner, a.reason = false, chess.NoColor, ""

	log := a.logger.With().Str("game", a.id.String()).Logger()
	log.Info().Str("white", a.white.Name()).Str("black", a.black.Name()).Msg("playing")
	a.white.OnGameStart(chess.White, a.truth, a.black.Name())
	a.black.OnGameStart(chess.Black, a.truth, a.white.Name())
	a.encode(enc)

	lastCaptured, lastAt := false, chess.NoSquare
	for !a.ended {
		p := a.player(a.toMove)
		start := time.Now()

		p.OnOpponentMoveResult(lastCaptured, lastAt)
		moves := MoveActions(a.truth, a.toMove)
		sq := p.ChooseSense(allSquares(), moves, a.clocks[a.toMove])
		p.OnSenseResult(Sense(a.truth, sq))
		requested := p.ChooseMove(moves, a.clocks[a.toMove]-time.Since(start))

		if a.clocks[a.toMove] -= time.Since(start); a.clocks[a.toMove] <= 0 {
			a.end(a.toMove.Other(), "timeout")
			break
		}

		taken, why := Revise(a.truth, a.toMove, requested)
		captured := a.truth.Apply(taken)
		lastCaptured, lastAt = captured != chess.NoPiece, chess.NoSquare
		if lastCaptured {
			lastAt = taken.To
		}
		p.OnMoveResult(requested, taken, why, lastCaptured, lastAt)
		log.Debug().Int("turn", a.turn).Str("color", a.toMove.Name()).Str("sense", game.SquareName(sq)).Str("requested", requested.String()).Str("taken", taken.String()).Bool("captured", lastCaptured).Msg("move")

		switch {
		case captured != chess.NoPiece && captured.Type() == chess.King:
			a.end(a.toMove, "king captured")
		case a.toMove == chess.Black && a.turn+1 >= a.conf.MaxTurns:
			a.end(chess.NoColor, "turn limit")
		}
		if a.toMove == chess.Black {
			a.turn++
		}
		a.toMove = a.toMove.Other()
		a.encode(enc)
	}

	a.white.OnGameEnd(a.winner, a.reason)
	a.black.OnGameEnd(a.winner, a.reason)
	a.stats.Update(a.winner, a.white.Name(), a.black.Name())
	log.Info().Str("winner", a.winner.Name()).Str("reason", a.reason).Int("turns", a.turn).Msg("done playing")
	return a.winner, a.reason
}

func (a *Arena) end(winner chess.Color, reason string) {
	a.ended, a.winner, a.reason = true, winner, reason
}

func (a *Arena) encode(enc OutputEncoder) {
	if enc == nil {
		return
	}
	if err := enc.Encode(a); err != nil {
		a.logger.Warn().Err(err).Msg("unable to encode game state")
	}
}

// Sense returns what a sense at sq reveals of the true placement.
func Sense(truth game.Placement, sq chess.Square) []game.SenseResult {
	if !game.OnBoard(sq) {
		return nil
	}
	window := game.Neighbourhood(sq)
	retVal := make([]game.SenseResult, 0, len(window))
	for _, s := range window {
		retVal = append(retVal, game.SenseResult{Square: s, Piece: truth[s]})
	}
	return retVal
}

func allSquares() []chess.Square {
	retVal := make([]chess.Square, 0, 64)
	for sq := chess.A1; sq <= chess.H8; sq++ {
		retVal = append(retVal, sq)
	}
	return retVal
}

func (a *Arena) Name() string              { return a.name }
func (a *Arena) ID() uuid.UUID             { return a.id }
func (a *Arena) GameNumber() int           { return a.gameNumber }
func (a *Arena) Turn() int                 { return a.turn }
func (a *Arena) ToMove() chess.Color       { return a.toMove }
func (a *Arena) Truth() game.Placement     { return a.truth }
func (a *Arena) Ended() (bool, chess.Color) { return a.ended, a.winner }
func (a *Arena) Statistics() *Statistics   { return &a.stats }

// Heat is the heat map of the player of colour c, if it exposes one.
func (a *Arena) Heat(c chess.Color) (*tensor.Dense, bool) {
	h, ok := a.player(c).(Heater)
	if !ok {
		return nil, false
	}
	T, err := h.HeatMap()
	if err != nil {
		a.logger.Debug().Err(err).Str("color", c.Name()).Msg("no heat map")
		return nil, false
	}
	return T, true
}

// View is the belief of the player of colour c, if it exposes one.
func (a *Arena) View(c chess.Color) (game.Placement, bool) {
	b, ok := a.player(c).(Believer)
	if !ok {
		return game.Placement{}, false
	}
	return b.Belief(), true
}
