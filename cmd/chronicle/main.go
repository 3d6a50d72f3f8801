package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chronicle-hq/chronicle/internal/config"
	"github.com/chronicle-hq/chronicle/internal/logging"
	"github.com/chronicle-hq/chronicle/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var closeLog = func() error { return nil }

var rootCmd = &cobra.Command{
	Use:   "chronicle",
	Short: "Save daily reports and mirror them into the team archive",
	Long: `Chronicle keeps one Markdown file per day on disk and commits the same
content to the team's archive repository on GitHub.`,
	Version: version.Detailed(),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(cmd)
	},
}

func init() {
	addRootFlags(rootCmd.PersistentFlags())
}

func addRootFlags(flags *pflag.FlagSet) {
	flags.StringP("config", "c", config.DefaultConfigPath, "Chronicle config file")
	flags.BoolP("verbose", "v", false, "Enable debug logs")
	flags.String("log-file", "", "Also write debug logs to this file")
}

func main() {
	// Setup root context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if cerr := closeLog(); cerr != nil {
		fmt.Fprintf(os.Stderr, "close log file: %v\n", cerr)
	}
	if err != nil {
		os.Exit(1)
	}
}

func setupLogging(cmd *cobra.Command) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logFile, _ := cmd.Flags().GetString("log-file")

	_, closeFn, err := logging.Setup(logging.Options{
		Verbose: verbose,
		Console: cmd.ErrOrStderr(),
		File:    logFile,
	})
	if err != nil {
		return err
	}
	closeLog = closeFn
	return nil
}
