package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"reservation-monitor/config"
	"reservation-monitor/storage"
	"reservation-monitor/utils"

	"github.com/spf13/cobra"
)

// Build info, set with -ldflags at release time
var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

// rootOptions are the flags shared by every command
type rootOptions struct {
	targetsFile string
	stateFile   string
	debug       bool
}

// NewRootCmd builds the resmon command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "resmon",
		Short:        "Check restaurant booking pages for newly opened reservation slots",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	root.PersistentFlags().StringVar(&opts.targetsFile, "targets", "", "JSON5 file with targets, dates, partySize and preferredTime (default: TARGETS_FILE or built-in list)")
	root.PersistentFlags().StringVar(&opts.stateFile, "state-file", "", "state file path (default: STATE_FILE or reservation-state.json)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "verbose logging")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newStateCmd(opts))

	return root
}

// Execute runs the command tree and exits 1 on a fatal error
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Fatal error:", err)
		os.Exit(1)
	}
}

// loadConfig applies env, then flags, then validates
func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.targetsFile != "" {
		if err := cfg.LoadTargetsFile(opts.targetsFile); err != nil {
			return nil, err
		}
	}
	if opts.stateFile != "" {
		cfg.StateFile = opts.stateFile
	}
	if opts.debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openStore picks PostgreSQL when DATABASE_URL is set, the JSON file otherwise
func openStore(ctx context.Context, cfg *config.Config, logger *utils.Logger) (storage.StateStore, error) {
	if cfg.DatabaseURL != "" {
		store, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return storage.NewJSONStore(cfg.StateFile, logger), nil
}
