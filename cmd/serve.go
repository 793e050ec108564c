package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gocausal/app"
	"gocausal/internal/config"
	"gocausal/internal/logger"
	"gocausal/ui"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the lesson report over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: configured addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if serveAddr != "" {
		cfg.Serve.Addr = serveAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.NewWithLevel("serve", cfg.Logging.Level)
	svc := app.NewService(cfg, log)
	srv := ui.NewServer(svc, log)
	return srv.Start(ctx, cfg.Serve.Addr)
}
