// Package main is the entry point for vtmux.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/vtmux/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit status.
// Errors are printed after the terminal has been restored.
func run(args []string, stdout, stderr io.Writer) int {
	var runErr error
	cmd := newRootCmd(func(opts app.Options) error {
		application, err := app.New(opts)
		if err != nil {
			return err
		}
		runErr = application.Run()
		return nil
	})
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "vtmux: %v\n", err)
		return 1
	}
	if code := app.ExitCode(runErr); code != 0 {
		fmt.Fprintf(stderr, "vtmux: %v\n", runErr)
		return code
	}
	return 0
}

func newRootCmd(start func(app.Options) error) *cobra.Command {
	var opts app.Options

	cmd := &cobra.Command{
		Use:   "vtmux [flags] [command...]",
		Short: "Run commands side by side in one terminal",
		Long: `vtmux runs each command in its own pseudo-terminal and draws the panes
side by side with a one-line header above each.

Keyboard input goes to the selected tab. ESC followed by a digit selects
a tab: ESC 1 selects the first pane, ESC 0 sends input to every pane.
With no command the configured shell is started.`,
		Example: `  vtmux                          Run the configured shell
  vtmux top htop                 Two panes, split evenly
  vtmux -g 80x24 'tail -f log'   One 80x24 pane`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Commands = args
			return start(opts)
		},
	}
	cmd.SetVersionTemplate("vtmux {{.Version}}\n")

	flags := cmd.Flags()
	flags.SetInterspersed(false)
	flags.StringVarP(&opts.Geometry, "geometry", "g", "", "fixed pane size as WxH, e.g. 80x24")
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "path to configuration file")
	flags.StringVar(&opts.LogFile, "log-file", "", "write logs to this file")
	flags.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.BoolP("version", "v", false, "print version information")

	return cmd
}
