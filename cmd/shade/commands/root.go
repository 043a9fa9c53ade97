// Package commands implements the CLI commands for shade.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/shade/internal/app"
	"go.trai.ch/shade/internal/build"
	"go.trai.ch/shade/internal/core/domain"
	"go.trai.ch/zerr"
)

// CLI represents the command line interface for shade.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Compile(ctx context.Context, opts app.CompileOptions) (domain.RunSummary, error)
	Watch(ctx context.Context, opts app.CompileOptions) error
	Link(ctx context.Context, src, dst string) error
	Format(ctx context.Context, opts app.FormatOptions) (domain.FormatReport, error)
	ConfigureLogging(json bool)
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	c := &CLI{app: a}

	rootCmd := &cobra.Command{
		Use:   "shade <compiler> <source_dir> <output_dir>",
		Short: "Incremental shader compilation",
		Long: "Compiles every shader in source_dir whose content changed since its last successful\n" +
			"compilation. Fingerprints are kept in " + domain.LockFileName + " inside source_dir.",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			jsonLogs, _ := cmd.Flags().GetBool("json")
			c.app.ConfigureLogging(jsonLogs)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := compileOptions(cmd, args)
			if err != nil {
				return err
			}
			_, err = c.app.Compile(cmd.Context(), opts)
			return err
		},
	}
	addCompileFlags(rootCmd)
	rootCmd.PersistentFlags().Bool("json", false, "Emit logs as JSON")

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c.rootCmd = rootCmd

	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newLinkCmd())
	rootCmd.AddCommand(c.newFormatCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
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

func addCompileFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("force", "f", false, "Recompile every shader regardless of the lock file")
	cmd.Flags().StringP("config", "c", domain.ConfigFileName, "Path to the configuration file")
	cmd.Flags().String("ext", "", "Extension appended to compiled outputs (default from config, then "+
		domain.DefaultOutputExt+")")
	cmd.Flags().Bool("record-failures", false, "Record fingerprints of shaders that failed to compile")
	cmd.Flags().Duration("timeout", 0, "Maximum duration of a single compiler invocation (0 disables)")
	cmd.Flags().Duration("lock-timeout", 0, "How long to wait for another run to release the lock file")
}

func compileOptions(cmd *cobra.Command, args []string) (app.CompileOptions, error) {
	force, _ := cmd.Flags().GetBool("force")
	configPath, _ := cmd.Flags().GetString("config")
	ext, _ := cmd.Flags().GetString("ext")
	recordFailures, _ := cmd.Flags().GetBool("record-failures")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	lockTimeout, _ := cmd.Flags().GetDuration("lock-timeout")

	if timeout < 0 || lockTimeout < 0 {
		return app.CompileOptions{}, zerr.New("durations must not be negative")
	}

	return app.CompileOptions{
		Config: app.ConfigOptions{
			Path:     configPath,
			Explicit: cmd.Flags().Changed("config"),
		},
		CompilerPath:   args[0],
		SourceDir:      args[1],
		OutputDir:      args[2],
		Force:          force,
		OutputExt:      ext,
		RecordFailures: recordFailures,
		Timeout:        timeout,
		LockTimeout:    lockTimeout,
	}, nil
}
