// Package cli is the edu-admin command tree: one command group per record
// type plus bootstrap and export commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-manager/internal/service"
	appErrors "github.com/noah-isme/edu-manager/pkg/errors"
	"github.com/noah-isme/edu-manager/pkg/export"
)

// Exit codes of the edu-admin process.
const (
	ExitOK        = 0
	ExitBootstrap = 1
	ExitCommand   = 2
)

// SetupFunc connects to and bootstraps the database.
type SetupFunc func(ctx context.Context) (*Runtime, error)

// Options configures the command tree.
type Options struct {
	Streams         *IOStreams
	Logger          *zap.Logger
	Setup           SetupFunc
	MetricsTextfile string
}

// CLI owns the command tree and the runtime created for the executed command.
type CLI struct {
	opts Options
	root *cobra.Command
	rt   *Runtime
}

// New builds the command tree. The database is only touched when a command
// that needs it runs.
func New(opts Options) *CLI {
	if opts.Streams == nil {
		opts.Streams = StdStreams()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	c := &CLI{opts: opts}

	root := &cobra.Command{
		Use:           "edu-admin",
		Short:         "Manage lessons, curriculum, staff, students and grade records",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsDatabase(cmd) {
				return nil
			}
			return c.setup(cmd.Context())
		},
	}
	root.SetIn(opts.Streams.In)
	root.SetOut(opts.Streams.Out)
	root.SetErr(opts.Streams.Err)

	root.AddCommand(c.bootstrapCommand(), c.exportCommand())
	root.AddCommand(entityCommands(c.runtime, opts.Streams)...)
	c.root = root
	return c
}

// Root exposes the cobra command, mainly for tests.
func (c *CLI) Root() *cobra.Command {
	return c.root
}

// Execute runs the command line in args and returns the process exit code.
func (c *CLI) Execute(ctx context.Context, args []string) int {
	c.root.SetArgs(args)
	start := time.Now()
	cmd, err := c.root.ExecuteContextC(ctx)
	defer c.close()

	if c.rt != nil && cmd != nil {
		c.rt.Metrics.ObserveCommand(cmd.CommandPath(), err, time.Since(start))
		if werr := c.rt.Metrics.WriteTextfile(c.opts.MetricsTextfile); werr != nil {
			c.opts.Logger.Warn("write metrics textfile", zap.Error(werr))
		}
	}
	if err != nil {
		fmt.Fprintf(c.opts.Streams.Err, "error: %v\n", err)
	}
	return ExitCode(err)
}

// ExitCode maps a command error to the process exit code: bootstrap and
// usage failures exit 1, rejected operations exit 2.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, appErrors.ErrBootstrap) {
		return ExitBootstrap
	}
	var typed *appErrors.Error
	if errors.As(err, &typed) {
		return ExitCommand
	}
	return ExitBootstrap
}

func (c *CLI) setup(ctx context.Context) error {
	if c.rt != nil {
		return nil
	}
	if c.opts.Setup == nil {
		return appErrors.Clone(appErrors.ErrBootstrap, "no database configured")
	}
	rt, err := c.opts.Setup(ctx)
	if err != nil {
		if !errors.Is(err, appErrors.ErrBootstrap) {
			err = appErrors.Wrap(err, appErrors.ErrBootstrap.Code, appErrors.ErrBootstrap.Message)
		}
		return err
	}
	c.rt = rt
	return nil
}

func needsDatabase(cmd *cobra.Command) bool {
	for ; cmd != nil; cmd = cmd.Parent() {
		switch cmd.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return false
		}
	}
	return true
}

func (c *CLI) runtime() *Runtime {
	return c.rt
}

func (c *CLI) close() {
	if c.rt == nil {
		return
	}
	if err := c.rt.Close(); err != nil {
		c.opts.Logger.Warn("close database", zap.Error(err))
	}
}

func (c *CLI) bootstrapCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Create missing tables, seed the default module and migrate grades",
		Long: "Every command bootstraps the database before it runs; this command " +
			"only reports what the bootstrap did.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := c.rt.Report
			out := c.opts.Streams.Out
			fmt.Fprintf(out, "run id:            %s\n", r.RunID)
			fmt.Fprintf(out, "default module id: %d\n", r.DefaultModuleID)
			fmt.Fprintf(out, "grading branch:    %s\n", r.Migration.Branch)
			if len(r.Migration.AddedColumns) > 0 {
				fmt.Fprintf(out, "added columns:     %v\n", r.Migration.AddedColumns)
			}
			fmt.Fprintf(out, "rows absorbed:     %d\n", r.Migration.RowsAbsorbed)
			fmt.Fprintf(out, "rows recomputed:   %d\n", r.Migration.RowsRecomputed)
			fmt.Fprintf(out, "duration:          %s\n", r.Duration.Round(time.Millisecond))
			return nil
		},
	}
}

func (c *CLI) exportCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:       "export <entity>",
		Short:     "Write an entity listing to the exports directory",
		Args:      cobra.ExactArgs(1),
		ValidArgs: service.Entities,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid export format")
			}
			result, err := c.rt.Exports.Export(cmd.Context(), args[0], f)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.opts.Streams.Out, "%s (%d rows)\n", result.Path, result.Rows)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatCSV), "csv, pdf or xlsx")

	var olderThan time.Duration
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Remove old export files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deleted, err := c.rt.Exports.Cleanup(olderThan)
			if err != nil {
				return err
			}
			for _, name := range deleted {
				fmt.Fprintln(c.opts.Streams.Out, name)
			}
			fmt.Fprintf(c.opts.Streams.Out, "removed %d files\n", len(deleted))
			return nil
		},
	}
	prune.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "minimum age of removed files")
	cmd.AddCommand(prune)
	return cmd
}
