package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"gocausal/adapters/excel"
	"gocausal/app"
	"gocausal/internal/config"
	"gocausal/internal/logger"
	"gocausal/internal/render"
)

var (
	runLessons  []string
	runSeed     int64
	runOutDir   string
	runWorkbook string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the lessons and print the report",
	RunE:  runLessonsCmd,
}

func init() {
	runCmd.Flags().StringSliceVar(&runLessons, "lessons", nil, "lessons to run (default: all)")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "base seed (default: configured seed)")
	runCmd.Flags().StringVar(&runOutDir, "out", "", "directory to write report.md into")
	runCmd.Flags().StringVar(&runWorkbook, "workbook", "", "path for an Excel workbook export")
	rootCmd.AddCommand(runCmd)
}

func runLessonsCmd(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if len(runLessons) > 0 {
		cfg.Run.Lessons = runLessons
	}
	if cmd.Flags().Changed("seed") {
		cfg.Run.Seed = runSeed
	}
	if runOutDir != "" {
		cfg.Export.OutDir = runOutDir
	}
	if runWorkbook != "" {
		cfg.Export.Workbook = runWorkbook
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.NewWithLevel("run", cfg.Logging.Level)

	var sinks []app.Sink
	if cfg.Export.OutDir != "" {
		if err := os.MkdirAll(cfg.Export.OutDir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", cfg.Export.OutDir, err)
		}
		sinks = append(sinks, render.FileSink{Path: filepath.Join(cfg.Export.OutDir, "report.md")})
	}
	if cfg.Export.Workbook != "" {
		sinks = append(sinks, excel.NewWriter(cfg.Export.Workbook))
	}

	svc := app.NewService(cfg, log, sinks...)
	res, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	return render.Text(cmd.OutOrStdout(), res)
}
