// package recon is a player for reconnaissance blind chess.
//
// The Agent keeps a probability distribution over the squares of each of the opponent's sixteen
// pieces (package belief), senses where it has looked least recently or where it just lost a piece
// (package sense), and plays the best move on the single most likely board (package minimax).
//
// Arena is a local referee that plays two Players against each other. Match plays a series of
// arena games and keeps the statistics.
package recon

import (
	"context"
	"encoding/gob"
	"os"

	"github.com/notnil/chess"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Match plays a series of games between two players.
type Match struct {
	*Arena
	outEnc OutputEncoder
	logger zerolog.Logger
}

// NewMatch creates a Match. enc may be nil.
func NewMatch(a, b Player, conf ArenaConfig, name string, enc OutputEncoder, logger zerolog.Logger) *Match {
	return &Match{
		Arena:  NewArena(a, b, conf, name, logger),
		outEnc: enc,
		logger: logger,
	}
}

// Run plays the given number of games and returns the number of wins of A and B and the draws.
// A cancelled context stops the match after the current game.
func (m *Match) Run(ctx context.Context, games int) (winsA, winsB, draws int, err error) {
	for i := 0; i < games && ctx.Err() == nil; i++ {
		winner, reason := m.Play(m.outEnc)
		switch {
		case winner == chess.NoColor:
			draws++
		case m.player(winner) == m.A:
			winsA++
		default:
			winsB++
		}
		m.logger.Info().Int("game", m.GameNumber()).Str("reason", reason).Int("A", winsA).Int("B", winsB).Int("draws", draws).Msg("played")
	}
	if m.outEnc != nil {
		if err = m.outEnc.Flush(); err != nil {
			return winsA, winsB, draws, errors.WithMessage(err, "Unable to flush the output encoder")
		}
	}
	return winsA, winsB, draws, nil
}

// Save writes the statistics of the match into filename.
func (m *Match) Save(filename string) error {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	enc := gob.NewEncoder(f)
	return enc.Encode(m.Statistics())
}

// Load reads statistics saved by Save, so that a match carries on where an earlier one stopped.
func (m *Match) Load(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	var s Statistics
	if err = gob.NewDecoder(f).Decode(&s); err != nil {
		return errors.WithStack(err)
	}
	s.rebuild()
	m.stats = s
	return nil
}
