// Package commands implements the selenide command line.
package commands

import (
	"flag"
	"time"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/wanmail/selenide"
)

var (
	remote   string
	browser  string
	headless bool
	timeout  time.Duration
	reports  string
)

// Execute runs the command named by the process arguments.
func Execute() error {
	return run(newRootCmd())
}

// run executes root and prints the error, such as an assertion failure, to
// its error stream.
func run(root *cobra.Command) error {
	err := root.Execute()
	if err != nil {
		root.PrintErrln(err)
	}
	glog.Flush()
	return err
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "selenide",
		Short:         "Concise UI assertions against a WebDriver session",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// glog reads its flags from the standard flag set.
			return flag.CommandLine.Parse(nil)
		},
	}

	root.PersistentFlags().StringVar(&remote, "remote", "", "WebDriver server URL (default $SELENIDE_REMOTE)")
	root.PersistentFlags().StringVar(&browser, "browser", "", "chrome, firefox, android or ios (default $SELENIDE_BROWSER)")
	root.PersistentFlags().BoolVar(&headless, "headless", false, "run the browser without a display")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 0, "how long to retry each assertion (default $SELENIDE_TIMEOUT)")
	root.PersistentFlags().StringVar(&reports, "reports", "", "save a screenshot and the page source into this folder on failure")
	root.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	root.AddCommand(checkCmd(), versionCmd())
	return root
}

// loadConfig reads the environment and applies the flags set on cmd.
func loadConfig(cmd *cobra.Command) (selenide.Config, error) {
	cfg, err := selenide.ConfigFromEnv()
	if err != nil {
		return selenide.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("remote") {
		cfg.Remote = remote
	}
	if flags.Changed("browser") {
		cfg.Browser = browser
	}
	if flags.Changed("headless") {
		cfg.Headless = headless
	}
	if flags.Changed("timeout") {
		cfg.Timeout = timeout
	}
	if flags.Changed("reports") {
		cfg.ReportsFolder = reports
		cfg.Screenshots = true
		cfg.SavePageSource = true
	}
	return cfg, cfg.Validate()
}
