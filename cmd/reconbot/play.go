package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/lealex262/recon"
	"github.com/lealex262/recon/encoding/gif"
	"github.com/lealex262/recon/encoding/mjpeg"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play games against a local opponent",
	Long: `play runs a local referee and plays the agent against a random player or against
another copy of itself. The games can be watched as a GIF, an MJPEG stream or a
websocket feed of JSON turns.`,
	RunE: runPlay,
}

func init() {
	conf := recon.DefaultArenaConfig()
	flags := playCmd.Flags()
	flags.Int("games", 1, "Number of games to play")
	flags.String("opponent", "random", "Opponent (random, recon)")
	flags.Int("max-turns", conf.MaxTurns, "Turns before a game is called a draw")
	flags.Duration("time-control", conf.TimeControl, "Thinking time of each player for a whole game")
	flags.Int64("seed", 0, "Seed of the colour assignment and the random opponent (0 for the clock)")
	flags.String("gif", "", "Write the games into this GIF file")
	flags.String("mjpeg", "", "Stream the games as MJPEG on this address (e.g. :8080)")
	flags.String("ws", "", "Stream the turns as JSON over a websocket on this address (e.g. :8081)")
	flags.String("stats", "", "Dump the win rates into this CSV file")
	flags.String("save", "", "Save the statistics into this file, and load them from it first if it exists")
	flags.String("dot", "", "Write the agent's last search into this graphviz file")
	viper.BindPFlags(flags)
}

func runPlay(cmd *cobra.Command, args []string) error {
	conf, logger, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info().Msg("shutdown signal received, stopping after this game")
		cancel()
	}()

	agent, err := recon.NewAgent(conf, logger)
	if err != nil {
		return err
	}
	agent.WithContext(ctx)

	var opponent recon.Player
	switch viper.GetString("opponent") {
	case "random":
		opponent = recon.NewRandomPlayer("random", viper.GetInt64("seed"))
	case "recon":
		mirror := conf
		mirror.Name = conf.Name + "-mirror"
		a, err := recon.NewAgent(mirror, logger)
		if err != nil {
			return err
		}
		opponent = a.WithContext(ctx)
	default:
		return errors.Errorf("Unknown opponent %q", viper.GetString("opponent"))
	}

	enc, closer, err := outputs(logger)
	if err != nil {
		return err
	}
	defer closer()

	arenaConf := recon.ArenaConfig{
		MaxTurns:    viper.GetInt("max-turns"),
		TimeControl: viper.GetDuration("time-control"),
		Seed:        viper.GetInt64("seed"),
	}
	m := recon.NewMatch(agent, opponent, arenaConf, conf.Name+" vs "+opponent.Name(), enc, logger)
	save := viper.GetString("save")
	if save != "" {
		if _, err := os.Stat(save); err == nil {
			if err := m.Load(save); err != nil {
				return err
			}
		}
	}

	wins, losses, draws, err := m.Run(ctx, viper.GetInt("games"))
	if err != nil {
		return err
	}
	logger.Info().Int("wins", wins).Int("losses", losses).Int("draws", draws).Float32("win_rate", m.Statistics().WinRate(agent.Name())).Msg("match over")

	if file := viper.GetString("stats"); file != "" {
		if err := m.Statistics().Dump(file); err != nil {
			return errors.WithMessage(err, "Unable to dump statistics")
		}
	}
	if file := viper.GetString("dot"); file != "" {
		if err := os.WriteFile(file, []byte(agent.SearchTree()), 0644); err != nil {
			return errors.WithMessage(err, "Unable to write the search tree")
		}
	}
	if save != "" {
		return m.Save(save)
	}
	return nil
}

// outputs sets up the requested output encoders.
func outputs(logger zerolog.Logger) (recon.OutputEncoder, func(), error) {
	var encs multiEncoder
	var closers []func()
	closer := func() {
		for _, c := range closers {
			c()
		}
	}

	if file := viper.GetString("gif"); file != "" {
		f, err := os.Create(file)
		if err != nil {
			return nil, closer, errors.WithStack(err)
		}
		closers = append(closers, func() { f.Close() })
		enc := gif.NewGifEncoder(600, 1200)
		enc.Writer = f
		encs = append(encs, enc)
	}
	if addr := viper.GetString("mjpeg"); addr != "" {
		enc := mjpeg.NewEncoder(600, 1200)
		closers = append(closers, serve(addr, "/stream", enc, logger))
		encs = append(encs, enc)
	}
	if addr := viper.GetString("ws"); addr != "" {
		enc := NewFeed(logger)
		closers = append(closers, serve(addr, "/ws", enc, logger))
		encs = append(encs, enc)
	}
	if len(encs) == 0 {
		return nil, closer, nil
	}
	return encs, closer, nil
}

func serve(addr, path string, h http.Handler, logger zerolog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle(path, h)
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Info().Str("addr", addr).Str("path", path).Msg("serving")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Str("addr", addr).Msg("server failed")
		}
	}()
	return func() { srv.Close() }
}

// multiEncoder sends every state to each of its encoders.
type multiEncoder []recon.OutputEncoder

func (m multiEncoder) Encode(ms recon.MetaState) error {
	for _, enc := range m {
		if err := enc.Encode(ms); err != nil {
			return err
		}
	}
	return nil
}

func (m multiEncoder) Flush() error {
	for _, enc := range m {
		if err := enc.Flush(); err != nil {
			return err
		}
	}
	return nil
}
