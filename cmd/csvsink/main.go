package main

import (
	"os"

	"github.com/spf13/cobra"

	"csvsink/internal/config"
	"csvsink/internal/logger"
	"csvsink/pkg/logging"
)

var (
	configFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "csvsink",
		Short:        "CSV sink for newline-delimited stream messages",
		Long:         "csvsink consumes typed stream messages on stdin, appends validated records to per-stream CSV files, and emits the final checkpoint on stdout",
		SilenceUsage: true,
		RunE:         run,
	}

	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to config file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	earlyLog := logging.NewEarlyLog()

	cfg, err := config.Load(configFile)
	if err != nil {
		earlyLog.Error("Failed to load config: %v", err)
		return err
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		earlyLog.Error("Failed to init logger: %v", err)
		return err
	}
	defer log.Sync()

	app := NewApp(cfg, log)
	if err := app.Initialize(); err != nil {
		log.Errorw("Failed to initialize", "error", err)
		return err
	}

	if err := app.Run(); err != nil {
		log.Errorw("Run failed", "error", err)
		return err
	}

	log.Debug("Exiting normally")
	return nil
}
