package main

import (
	"fmt"

	"github.com/chronicle-hq/chronicle/internal/config"
	"github.com/chronicle-hq/chronicle/internal/report"
	"github.com/chronicle-hq/chronicle/internal/utils"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newReportDirCmd())
}

func newReportDirCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report-dir",
		Short: "Print the directory daily reports are saved to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			dir := report.NewOSStore().ResolveOutputDir(cfg.ReportDir)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), dir)
			return err
		},
	}

	cmd.AddCommand(newReportDirSetCmd(), newReportDirUnsetCmd())
	return cmd
}

func newReportDirSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <path>",
		Short: "Save daily reports to path from now on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := utils.ResolvePath(args[0])
			if err != nil {
				return err
			}
			if err := utils.EnsureDir(dir); err != nil {
				return fmt.Errorf("report dir: %w", err)
			}

			_, err = config.Update(resolveConfigPath(cmd), func(c *config.Config) error {
				return c.Set(config.KeyReportDir, dir)
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), dir)
			return err
		},
	}
}

func newReportDirUnsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unset",
		Short: "Forget the report directory preference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := config.Update(resolveConfigPath(cmd), func(c *config.Config) error {
				return c.Set(config.KeyReportDir, "")
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "report dir preference cleared, using %s\n", report.DefaultDir())
			return err
		},
	}
}
