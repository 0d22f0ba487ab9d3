// Package commands implements the CLI commands for the cicd pipeline tool.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/cicd/internal/app"
	"go.trai.ch/cicd/internal/build"
	"go.trai.ch/cicd/internal/core/domain"
)

// CLI represents the command line interface for cicd.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Configure(opts app.GlobalOptions) error
	Synth(ctx context.Context, opts app.SynthOptions) ([]app.SynthResult, error)
	Deploy(ctx context.Context, opts app.DeployOptions) ([]app.DeployOutcome, error)
	Diff(ctx context.Context, opts app.DiffOptions) ([]domain.TemplateDiff, error)
	Describe(ctx context.Context, opts app.DescribeOptions) ([]app.DescribedPipeline, error)
	Watch(ctx context.Context, opts app.WatchOptions) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "cicd",
		Short:         "Synthesize and deploy the continuous delivery pipeline of a mobile app",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	flags := rootCmd.PersistentFlags()
	flags.Bool("json", false, "Print results and logs as JSON")
	flags.String("debug-log", "", "Write a debug log to this file")
	flags.Lookup("debug-log").NoOptDefVal = domain.DefaultDebugLogPath()
	flags.StringP("output", "o", "auto", "Output mode: auto, interactive, or ci")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentPreRunE = c.configure

	rootCmd.AddCommand(c.newSynthCmd())
	rootCmd.AddCommand(c.newDeployCmd())
	rootCmd.AddCommand(c.newDiffCmd())
	rootCmd.AddCommand(c.newDescribeCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

func (c *CLI) configure(cmd *cobra.Command, _ []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	debugLog, _ := cmd.Flags().GetString("debug-log")
	outputMode, _ := cmd.Flags().GetString("output")

	return c.app.Configure(app.GlobalOptions{
		JSON:       jsonOutput,
		DebugLog:   debugLog,
		OutputMode: outputMode,
	})
}

// addStageFlag registers the repeatable --env flag selecting deployment stages.
func addStageFlag(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("env", "e", nil, "Deployment stage to use (repeatable, default all)")
}

func stages(cmd *cobra.Command) []string {
	s, _ := cmd.Flags().GetStringSlice("env")
	return s
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
