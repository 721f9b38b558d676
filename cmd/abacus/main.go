package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rahul/abacus/internal/observability"
	"github.com/rahul/abacus/pkg/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
	jsonOutput bool
	demo       bool
	auditLimit int

	cfg    *config.Config
	logger *observability.Logger
)

var rootCmd = &cobra.Command{
	Use:   "abacus",
	Short: "Natural-language calculator",
	Long: `abacus turns a plain-language arithmetic request into a plan of atomic
operations, checks every operation against the allow-list and runs the plan.

Run without arguments to start the interactive prompt.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return err
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		logger, err = observability.NewLogger(observability.Config{
			Level:   level,
			File:    cfg.Logging.File,
			Console: verbose || cmd.Name() == "telegram",
		})
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()
		return runInteractive(cmd.Context(), app, demo)
	},
}

var runCmd = &cobra.Command{
	Use:   "run [request]",
	Short: "Calculate a single request and exit",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runOnce(ctx, cmd.OutOrStdout(), app.Pipeline, strings.Join(args, " "), jsonOutput)
	},
}

var telegramCmd = &cobra.Command{
	Use:   "telegram",
	Short: "Serve calculations over the Telegram gateway",
	RunE:  runTelegram,
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "List recently denied operations",
	RunE:  runAudit,
}

var opsCmd = &cobra.Command{
	Use:   "ops",
	Short: "List registered operations and whether they are allowed",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()
		printOperations(cmd.OutOrStdout(), app)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug events to stderr")
	rootCmd.Flags().BoolVar(&demo, "demo", false, "run the sample requests before the prompt")
	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the full result envelope as JSON")
	auditCmd.Flags().IntVarP(&auditLimit, "limit", "n", 20, "number of denials to show")

	rootCmd.AddCommand(runCmd, telegramCmd, auditCmd, opsCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
