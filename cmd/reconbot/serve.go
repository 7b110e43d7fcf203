package main

import (
	"os"

	"github.com/lealex262/recon"
	"github.com/lealex262/recon/protocol"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Play through the text protocol on stdin and stdout",
	Long: `serve reads protocol commands from stdin and writes the responses to stdout, so that
a harness in another process can drive the agent. Logs go to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, logger, err := setup()
		if err != nil {
			return err
		}
		agent, err := recon.NewAgent(conf, logger)
		if err != nil {
			return err
		}
		e := protocol.New(agent, conf.Name, version, nil)
		e.SetLogger(logger.With().Str("component", "protocol").Logger())
		return e.Serve(os.Stdin, os.Stdout)
	},
}
