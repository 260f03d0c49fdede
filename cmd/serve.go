package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/hbomb79/Cadence/internal"
	"github.com/hbomb79/Cadence/pkg/logger"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP conversion server",
	Args:  cobra.NoArgs,
	RunE:  serveRun,
}

func serveRun(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cadence := internal.New(config)
	if err := cadence.Run(ctx); err != nil {
		return err
	}

	log.Emit(logger.STOP, "Cadence shutdown complete\n")
	return nil
}
