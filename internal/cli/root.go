// Package cli builds the shaarli command line from the endpoint registry.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaarli/shaarli-client-go/internal/errors"
	"github.com/shaarli/shaarli-client-go/internal/logger"
	"github.com/shaarli/shaarli-client-go/internal/output"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	instance   string
	url        string
	secret     string
	format     string
	outfile    string
	insecure   bool
	timeout    time.Duration
	verbose    bool
	debug      bool
	logLevel   string
}

// app carries the state of one invocation.
type app struct {
	version string
	opts    globalOptions
	stderr  io.Writer
}

// NewRootCommand returns the root command with one subcommand per endpoint.
func NewRootCommand(version string, stdout, stderr io.Writer) *cobra.Command {
	a := &app{version: version, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "shaarli",
		Short: "Shaarli REST API client",
		Long: `shaarli - A command-line client for the Shaarli REST API.

Credentials are read from the [shaarli] section of an INI file, or from
[shaarli:<instance>] when --instance is given. The file is searched in
~/.config/shaarli/client.ini, ~/.shaarli_client.ini and ./shaarli_client.ini.
A file passed with --config may also be TOML when its name ends in .toml.

Global flags given before the subcommand always apply to the instance, so
"shaarli -u URL -s SECRET post-link --url LINK" works as expected.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	// Flags before the subcommand name are parsed by the root, so the
	// global --url survives on commands declaring their own --url.
	rootCmd.TraverseChildren = true
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.NewValueError(cmd.Name(), err.Error())
	})

	formats := make([]string, 0, len(output.Formats()))
	for _, f := range output.Formats() {
		formats = append(formats, string(f))
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.opts.configPath, "config", "c", "", "Configuration file")
	flags.StringVarP(&a.opts.instance, "instance", "i", "", "Shaarli instance (configuration alias)")
	flags.StringVarP(&a.opts.url, "url", "u", "", "Shaarli instance URL (unsafe)")
	flags.StringVarP(&a.opts.secret, "secret", "s", "", "API secret (unsafe)")
	flags.StringVarP(&a.opts.format, "format", "f", string(output.DefaultFormat), fmt.Sprintf("Output formatting %v", formats))
	flags.StringVarP(&a.opts.outfile, "outfile", "o", "", "File to save the program output to")
	flags.BoolVar(&a.opts.insecure, "insecure", false, "Bypass API SSL/TLS certificate verification")
	flags.DurationVar(&a.opts.timeout, "timeout", 0, "Request timeout (0 for none)")
	flags.BoolVarP(&a.opts.verbose, "verbose", "v", false, "Verbose output")
	flags.BoolVar(&a.opts.debug, "debug", false, "Debug mode")
	flags.StringVar(&a.opts.logLevel, "log-level", "", "Log level (debug, info, warn, error, disabled); overrides --verbose and --debug")

	// Traversal looks flags up on the root flag set to tell boolean flags
	// from flags taking a value.
	rootCmd.Flags().AddFlagSet(flags)

	for _, cmd := range a.endpointCommands() {
		rootCmd.AddCommand(cmd)
	}

	return rootCmd
}

// Run executes args and returns the process exit code. Configuration and
// validation errors print the command usage.
func Run(ctx context.Context, version string, args []string, stdout, stderr io.Writer) int {
	rootCmd := NewRootCommand(version, stdout, stderr)
	rootCmd.SetArgs(args)

	cmd, err := rootCmd.ExecuteContextC(ctx)
	if err == nil {
		return 0
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	if errors.IsConfiguration(err) || errors.IsValidation(err) {
		fmt.Fprint(stderr, cmd.UsageString())
	}
	return 1
}

// newLogger returns the logger selected by --log-level, --debug or
// --verbose, in that order of precedence.
func (a *app) newLogger() (*logger.Logger, error) {
	cfg := logger.DefaultConfig()
	cfg.Output = a.stderr
	log := logger.New(cfg)

	level := cfg.Level
	switch {
	case a.opts.debug:
		level = logger.DebugLevel
	case a.opts.verbose:
		level = logger.InfoLevel
	}
	if a.opts.logLevel != "" {
		parsed, err := logger.ParseLevel(a.opts.logLevel)
		if err != nil {
			return nil, errors.NewConfigurationErrorf("invalid log level %q", a.opts.logLevel)
		}
		level = parsed
	}

	log.SetLevel(level)
	return log, nil
}
