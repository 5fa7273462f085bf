package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yukikurage/tasknest/internal/app"
	"github.com/yukikurage/tasknest/internal/config"
	"github.com/yukikurage/tasknest/internal/telemetry"
)

// cliOptions holds the global flags
type cliOptions struct {
	jsonOutput bool
	configPath string
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tasknest",
		Short:         "Tasknest personal task tracker",
		Long:          `Manage tasks and tags stored in the tasknest database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a TOML config file (default $"+config.EnvConfigFile+")")

	rootCmd.AddCommand(
		newMigrateCmd(opts),
		newTaskCmd(opts),
		newTagCmd(opts),
		newStatsCmd(opts),
	)

	return rootCmd
}

// execute runs the command line and returns the process exit code
func execute(args []string, stdout, stderr io.Writer) int {
	opts := &cliOptions{}
	rootCmd := newRootCmd(opts)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()
	if err != nil {
		printError(stderr, err, opts.jsonOutput)
	}
	return exitCode(err)
}

// withApp opens the configured database, runs fn and releases everything
func withApp(cmd *cobra.Command, opts *cliOptions, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger := telemetry.NewJSONLogger(cmd.ErrOrStderr(), slog.LevelWarn)
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}

	runErr := fn(ctx, a)
	if err := a.Close(ctx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func parseID(arg string) (uint64, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func toUint64s(values []uint) []uint64 {
	ids := make([]uint64, len(values))
	for i, v := range values {
		ids[i] = uint64(v)
	}
	return ids
}

func newMigrateCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Database schema is up to date (%s)", a.Config.DBDriver), opts.jsonOutput)
				return nil
			})
		},
	}
}

func newStatsCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show task counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				stats, err := a.Tasks.TaskStats(ctx)
				if err != nil {
					return err
				}
				printStats(cmd.OutOrStdout(), *stats, opts.jsonOutput)
				return nil
			})
		},
	}
}
