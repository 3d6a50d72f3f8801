package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chronicle-hq/chronicle/internal/config"
	"github.com/chronicle-hq/chronicle/internal/dailysync"
	"github.com/chronicle-hq/chronicle/internal/ghcontents"
	"github.com/chronicle-hq/chronicle/internal/report"
	"github.com/chronicle-hq/chronicle/internal/utils"
	"github.com/spf13/cobra"
)

var errPushFailed = errors.New("push failed")

func init() {
	rootCmd.AddCommand(newPushCmd())
}

func newPushCmd() *cobra.Command {
	var (
		date      = report.Today()
		file      string
		fromLocal bool
	)

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Save a daily report and commit it to the team archive",
		Example: `  chronicle push --file today.md
  pbpaste | chronicle push --date 2024-01-01
  chronicle push --from-local`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			store := report.NewOSStore()
			content, err := readReport(cmd, store, cfg, date, file, fromLocal)
			if err != nil {
				return err
			}

			outcome := push(cmd.Context(), store, cfg, date, content)
			fmt.Fprintln(cmd.OutOrStdout(), renderOutcome(outcome))
			if !outcome.OK {
				return fmt.Errorf("%w at stage %s", errPushFailed, outcome.Stage)
			}
			return nil
		},
	}

	cmd.Flags().SortFlags = false
	cmd.Flags().Var(&date, "date", "Report date, defaults to today")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the report from this file, - for stdin")
	cmd.Flags().BoolVar(&fromLocal, "from-local", false, "Push the report already saved for --date")
	cmd.Flags().StringP("member", "m", "", "Member folder in the archive")
	cmd.Flags().StringP("team", "t", "", "Team folder in the archive")
	cmd.Flags().String("repo", "", "Archive repository as owner/name")
	cmd.Flags().String("archive-root", "", "Folder in the repository holding all teams")
	cmd.Flags().String("report-dir", "", "Local report directory")
	cmd.Flags().String("token", "", "GitHub token")
	cmd.Flags().String("api-url", "", "GitHub API base URL")
	cmd.MarkFlagsMutuallyExclusive("file", "from-local")

	return cmd
}

// readReport returns the raw report text from --file, from the local store
// with --from-local, or from stdin.
func readReport(cmd *cobra.Command, store *report.Store, cfg *config.Config, date report.Date, file string, fromLocal bool) (string, error) {
	switch {
	case fromLocal:
		return store.Read(store.ResolveOutputDir(cfg.ReportDir), date)
	case file == "" || file == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	path, err := utils.ResolvePath(file)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read report: %w", err)
	}
	return string(data), nil
}

func push(ctx context.Context, store *report.Store, cfg *config.Config, date report.Date, content string) *dailysync.Outcome {
	client, err := ghcontents.New(&ghcontents.Config{
		BaseURL: cfg.APIURL,
		Token:   cfg.Token,
	})
	if err != nil {
		outcome := dailysync.Failed(dailysync.StageValidate, err)
		outcome.Date = date.Dashed()
		outcome.Team = cfg.TeamDir
		outcome.Member = cfg.MemberID
		return outcome
	}
	defer client.Close()

	syncer := dailysync.New(store, client,
		dailysync.WithRepo(cfg.Repo),
		dailysync.WithArchiveRoot(cfg.ArchiveRoot),
	)
	return syncer.Sync(ctx, &dailysync.Request{
		Date:      date,
		Content:   content,
		Team:      cfg.TeamDir,
		Member:    cfg.MemberID,
		ReportDir: cfg.ReportDir,
	})
}

func renderOutcome(o *dailysync.Outcome) string {
	title, rest, _ := strings.Cut(o.Summary(), "\n")
	style := green.Bold(true)
	if !o.OK {
		style = red.Bold(true)
	}
	return style.Render(title) + "\n" + rest
}
