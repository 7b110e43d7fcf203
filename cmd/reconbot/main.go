package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/lealex262/recon"
	"github.com/lealex262/recon/minimax"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "reconbot",
	Short: "A belief-tracking player for reconnaissance blind chess",
	Long: `reconbot tracks where the opponent's pieces probably are, senses where it knows least,
and plays the best move on the most likely board.

Use "play" to run games against a local opponent, or "serve" to be driven by a harness
over stdin and stdout.`,
	SilenceUsage: true,
}

func init() {
	conf := recon.DefaultConfig()
	flags := rootCmd.PersistentFlags()

	flags.String("config", "", "Config file (yaml, json or toml)")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "console", "Log format (console, json)")

	// Agent settings
	flags.String("name", conf.Name, "Name of the agent")
	flags.Duration("move-time-cap", conf.MoveTimeCap, "Most time a single move search may take")
	flags.String("backend", conf.Backend, "Board backend of the search (bitboard, standard)")
	flags.Int("max-depth", conf.Search.MaxDepth, "Deepest search iteration (0 for no limit)")
	flags.Duration("epsilon", conf.Search.Epsilon, "Time reserve under which the search stops")

	// Bind flags to viper for environment variable support
	viper.BindPFlags(flags)
	viper.SetEnvPrefix("RECON")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(playCmd, serveCmd)
}

// setup reads the config file, if any, and builds the logger and the agent configuration.
func setup() (recon.Config, zerolog.Logger, error) {
	logger := zerolog.Nop()
	if file := viper.GetString("config"); file != "" {
		viper.SetConfigFile(file)
		if err := viper.ReadInConfig(); err != nil {
			return recon.Config{}, logger, errors.WithMessage(err, "Unable to read config file")
		}
	}

	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return recon.Config{}, logger, errors.WithMessage(err, "Invalid log level")
	}
	switch viper.GetString("log-format") {
	case "json":
		logger = zerolog.New(os.Stderr)
	default:
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	logger = logger.Level(level).With().Timestamp().Logger()

	conf := recon.Config{
		Name:        viper.GetString("name"),
		MoveTimeCap: viper.GetDuration("move-time-cap"),
		Backend:     viper.GetString("backend"),
		Search: minimax.Config{
			MaxDepth: viper.GetInt("max-depth"),
			Epsilon:  viper.GetDuration("epsilon"),
		},
	}
	if err := conf.Validate(); err != nil {
		return conf, logger, errors.WithMessage(err, "Invalid configuration")
	}
	return conf, logger, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
