package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dqcheck/dqcheck/internal/adapters/outbound/config"
	"github.com/dqcheck/dqcheck/internal/adapters/outbound/tui"
)

var (
	version = "dev"
	commit  = "none"
)

// rootOptions carries persistent flags and the logger built from them.
type rootOptions struct {
	logLevel string
	verbose  bool
	log      *logrus.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{log: logrus.New()}
	flags := &validateFlags{}

	cmd := &cobra.Command{
		Use:   "dqcheck [data]",
		Short: "Validate tabular data against an expectations suite",
		Long: "dqcheck validates a CSV (or xlsx) dataset against a JSON suite of expectations, " +
			"prints a pass/fail summary and writes a timestamped JSON report.\n\n" +
			"dqcheck <data> --suite <suite> is shorthand for dqcheck validate <data> --suite <suite>.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setupLogging(cmd.ErrOrStderr(), cmd.Flags().Changed("log-level"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			if flags.suitePath == "" {
				return &ExitError{Code: ExitUsage, Err: errors.New(`required flag(s) "suite" not set`)}
			}
			return flags.run(cmd, opts, args[0])
		},
	}
	flags.bind(cmd)
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Shorthand for --log-level debug")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newValidateCmd(opts))
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newExpectationsCmd())
	cmd.AddCommand(newMCPCmd(opts))
	return cmd
}

// setupLogging configures the text logger on w. DQCHECK_LOG_LEVEL applies
// unless --log-level was given explicitly.
func (o *rootOptions) setupLogging(w io.Writer, flagSet bool) error {
	level := o.logLevel
	if !flagSet {
		if env, err := config.ReadEnvironment(); err == nil && env.LogLevel != "" {
			level = env.LogLevel
		}
	}
	if o.verbose {
		level = "debug"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return &ExitError{Code: ExitUsage, Err: fmt.Errorf("invalid log level %q", level)}
	}
	o.log.SetOutput(w)
	o.log.SetLevel(lvl)
	o.log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return nil
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	err := newRootCmd().Execute()
	if err == nil {
		return ExitPassed
	}
	var ee *ExitError
	if !errors.As(err, &ee) || !ee.Reported {
		fmt.Fprint(os.Stderr, tui.RenderError(err.Error()))
	}
	return ExitCode(err)
}
