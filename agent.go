package recon

import (
	"context"
	"time"

	"github.com/lealex262/recon/belief"
	"github.com/lealex262/recon/game"
	"github.com/lealex262/recon/game/standard"
	"github.com/lealex262/recon/minimax"
	"github.com/lealex262/recon/sense"
	"github.com/notnil/chess"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gorgonia.org/tensor"
)

// An Agent is the belief-tracking player. It wires the harness callbacks to the belief tracker, the
// sense policy and the search.
type Agent struct {
	conf   Config
	ctx    context.Context
	logger zerolog.Logger
	oracle game.Oracle // used by the search

	Tracker *belief.Tracker
	Policy  *sense.Policy
	Engine  *minimax.Engine

	color    chess.Color
	opponent string
	turn     int // the agent's own turns so far
	own      game.Placement
	last     minimax.Result
	features []float32
}

// NewAgent creates an Agent.
func NewAgent(conf Config, logger zerolog.Logger) (*Agent, error) {
	if err := conf.Validate(); err != nil {
		return nil, errors.WithMessage(err, "Invalid agent configuration")
	}
	oracle, _ := Backend(conf.Backend)
	a := &Agent{
		conf:   conf,
		ctx:    context.Background(),
		logger: logger.With().Str("agent", conf.Name).Logger(),
		oracle: oracle,
		Engine: minimax.New(conf.Search),
	}
	a.Engine.SetLogger(a.logger)
	return a, nil
}

// WithContext returns the agent with a context that cancels its searches.
func (a *Agent) WithContext(ctx context.Context) *Agent {
	a.ctx = ctx
	return a
}

func (a *Agent) Name() string { return a.conf.Name }

// Color is the colour the agent plays in the current game.
func (a *Agent) Color() chess.Color { return a.color }

// Own is the agent's own placement.
func (a *Agent) Own() game.Placement { return a.own }

// LastSearch returns the result of the last move search.
func (a *Agent) LastSearch() minimax.Result { return a.last }

// Belief is the most likely board.
func (a *Agent) Belief() game.Placement {
	if a.Tracker == nil {
		return a.own
	}
	return a.Tracker.Reconstruct(a.own)
}

func (a *Agent) OnGameStart(color chess.Color, board game.Placement, opponent string) {
	a.color = color
	a.opponent = opponent
	a.turn = 0
	a.own = board.Only(color)
	a.Tracker = belief.New(color.Other(), standard.Oracle{})
	a.Tracker.SetLogger(a.logger.With().Str("component", "belief").Logger())
	a.Tracker.SetOwn(a.own)
	a.Policy = sense.New(color)
	a.logger.Info().Str("color", color.Name()).Str("opponent", opponent).Msg("game start")
}

// playing reports whether a game has started. Callbacks outside a game are ignored.
func (a *Agent) playing(callback string) bool {
	if a.Tracker == nil {
		a.logger.Warn().Str("callback", callback).Msg("no game in progress")
		return false
	}
	return true
}

func (a *Agent) OnOpponentMoveResult(captured bool, at chess.Square) {
	if !a.playing("opponent move result") {
		return
	}
	if captured {
		a.own.Remove(at)
	}
	// White is told about the opponent's move before its first turn too, but nothing has moved yet.
	if a.color == chess.White && a.turn == 0 {
		return
	}
	a.Tracker.ObserveOpponentMoveOutcome(captured, at)
	a.Policy.OnOpponentMove(captured, at)
	a.checkBelief("opponent move")
}

func (a *Agent) ChooseSense(candidates []chess.Square, moves []game.Move, timeLeft time.Duration) chess.Square {
	if !a.playing("choose sense") {
		if len(candidates) > 0 {
			return candidates[0]
		}
		return chess.NoSquare
	}
	sq := a.Policy.ChooseSense(a.turn, a.own)
	if len(candidates) > 0 && !containsSquare(candidates, sq) {
		a.logger.Warn().Str("square", game.SquareName(sq)).Msg("chosen sense is not a candidate")
		sq = candidates[0]
	}
	a.logger.Debug().Int("turn", a.turn).Str("square", game.SquareName(sq)).Msg("sense")
	return sq
}

func (a *Agent) OnSenseResult(results []game.SenseResult) {
	if !a.playing("sense result") {
		return
	}
	a.Tracker.ObserveSense(results)
	a.checkBelief("sense")
}

// ChooseMove searches the most likely board. The budget is the move time cap or the time left,
// whichever is smaller. If the search finds nothing the harness offers, the first offered move is
// played, and with nothing offered the agent passes.
func (a *Agent) ChooseMove(moves []game.Move, timeLeft time.Duration) game.Move {
	budget := a.conf.MoveTimeCap
	if timeLeft < budget {
		budget = timeLeft
	}

	fallback := game.Null
	if len(moves) > 0 {
		fallback = moves[0]
	}
	if !a.playing("choose move") {
		return fallback
	}
	board, err := a.board()
	if err != nil {
		a.logger.Warn().Err(err).Msg("unable to set up the most likely board")
		return fallback
	}

	a.last = a.Engine.Search(a.ctx, board, budget)
	if !a.last.Found {
		return fallback
	}
	for _, m := range moves {
		if m.Eq(a.last.Move) || (m.From == a.last.Move.From && m.To == a.last.Move.To && a.last.Move.Promo == chess.NoPieceType) {
			return m
		}
	}
	a.logger.Warn().Str("move", a.last.Move.String()).Msg("searched move is not on offer")
	return fallback
}

// board sets up the most likely board through the search oracle, or through the standard oracle if
// the search oracle refuses it.
func (a *Agent) board() (game.Board, error) {
	p := a.Tracker.Reconstruct(a.own)
	b, err := a.oracle.Setup(p, a.color)
	if err == nil {
		return b, nil
	}
	a.logger.Debug().Err(err).Str("backend", a.oracle.Name()).Msg("falling back to the standard backend")
	return standard.Oracle{}.Setup(p, a.color)
}

func (a *Agent) OnMoveResult(requested, taken game.Move, reason string, captured bool, at chess.Square) {
	if !a.playing("move result") {
		return
	}
	if !taken.IsNull() {
		a.own.Apply(taken)
	}
	a.Tracker.ObserveOwnMoveOutcome(a.own, !taken.IsNull(), captured, at)
	a.logger.Debug().Str("requested", requested.String()).Str("taken", taken.String()).Str("reason", reason).Bool("captured", captured).Msg("move result")
	a.checkBelief("own move")
	a.turn++
}

// checkBelief encodes the belief and logs an error if some slot is no longer a distribution.
func (a *Agent) checkBelief(after string) {
	a.features = EncodeBelief(a.Tracker, a.own, a.color, a.features)
	if err := ValidBelief(a.features); err != nil {
		a.logger.Error().Err(err).Str("after", after).Msg("invalid belief")
	}
}

// Features is the encoded belief after the last observation. See EncodeBelief.
func (a *Agent) Features() []float32 { return a.features }

// HeatMap is the probability of an opponent piece on each square, as an 8x8 tensor with rank 1 in
// the first row.
func (a *Agent) HeatMap() (*tensor.Dense, error) {
	if a.Tracker == nil {
		return nil, errors.New("no game in progress")
	}
	T := BeliefTensor(a.Tracker, a.own, chess.White)
	return HeatMap(T.Data().([]float32), 1)
}

// SearchTree is the last search's root and its scored moves in the DOT language.
func (a *Agent) SearchTree() string { return a.Engine.ToDot() }

func (a *Agent) OnGameEnd(winner chess.Color, reason string) {
	a.logger.Info().Str("winner", winner.Name()).Str("reason", reason).Int("turns", a.turn).Msg("game over")
}

func containsSquare(a []chess.Square, sq chess.Square) bool {
	for _, s := range a {
		if s == sq {
			return true
		}
	}
	return false
}
