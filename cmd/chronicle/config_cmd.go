package main

import (
	"fmt"

	"github.com/chronicle-hq/chronicle/internal/config"
	"github.com/chronicle-hq/chronicle/internal/utils"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newConfigCmd())
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the Chronicle profile",
	}
	cmd.AddCommand(newConfigShowCmd(), newConfigSetCmd(), newConfigPathCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-13s %s\n", "config", cfg.Path)
			for _, key := range config.Keys() {
				val, _ := cfg.Get(key)
				if key == config.KeyToken {
					val = utils.MaskSecret(val)
				}
				if val == "" {
					val = gray.Render("(unset)")
				}
				fmt.Fprintf(out, "%-13s %s\n", key, val)
			}
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a profile value, an empty value clears it",
		Example: `  chronicle config set member_id alice
  chronicle config set team_dir china-team`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: config.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			_, err := config.Update(resolveConfigPath(cmd), func(c *config.Config) error {
				return c.Set(key, value)
			})
			if err != nil {
				return err
			}

			if key == config.KeyToken {
				value = utils.MaskSecret(value)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", cyan.Render(key), value)
			return err
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the resolved config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), resolveConfigPath(cmd))
			return err
		},
	}
}
