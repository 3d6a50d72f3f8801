package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"regexp"
	"testing"

	"github.com/spf13/cobra"
)

var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

// profileEnv is every variable loadSettings reads.
var profileEnv = []string{
	"CHRONICLE_CONFIG",
	"CHRONICLE_REPORT_DIR",
	"CHRONICLE_MEMBER_ID",
	"CHRONICLE_TEAM_DIR",
	"CHRONICLE_REPO",
	"CHRONICLE_ARCHIVE_ROOT",
	"CHRONICLE_API_URL",
	"CHRONICLE_TOKEN",
	"GITHUB_PAT_TEAM_HUB",
	"MEMBER_ID",
	"TEAM_DIR",
}

// isolateEnv unsets the profile variables for the duration of the test.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, k := range profileEnv {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

// runCLI executes sub under a bare root carrying the persistent flags and
// returns what it wrote to stdout.
func runCLI(t *testing.T, sub *cobra.Command, stdin io.Reader, args ...string) (string, error) {
	t.Helper()

	root := &cobra.Command{Use: "chronicle", SilenceErrors: true, SilenceUsage: true}
	addRootFlags(root.PersistentFlags())
	root.AddCommand(sub)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	if stdin != nil {
		root.SetIn(stdin)
	}
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return stripANSI(out.String()), err
}
