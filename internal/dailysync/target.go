package dailysync

import (
	"fmt"
	"strings"

	"github.com/chronicle-hq/chronicle/internal/ghcontents"
	"github.com/chronicle-hq/chronicle/internal/report"
	"github.com/chronicle-hq/chronicle/internal/utils"
)

const (
	DefaultRepo        = "AIEC-Team/AIEC-agent-hub"
	DefaultArchiveRoot = "成员日志 members"

	// Branch is the only branch reports are committed to.
	Branch = "main"
)

// RemotePath is `<root>/<team>/<member>/<dashed-date>_log.md`.
func RemotePath(root, team, member string, date report.Date) string {
	parts := []string{team, member, date.Dashed() + "_log.md"}
	if root = strings.Trim(root, "/"); root != "" {
		parts = append([]string{root}, parts...)
	}
	return strings.Join(parts, "/")
}

// BuildTarget validates team and member as single path segments so neither
// can move the file outside its team/member folder.
func BuildTarget(repo, root, team, member string, date report.Date) (ghcontents.Target, error) {
	if err := utils.ValidateSegment(team); err != nil {
		return ghcontents.Target{}, fmt.Errorf("team %q: %w", team, err)
	}
	if err := utils.ValidateSegment(member); err != nil {
		return ghcontents.Target{}, fmt.Errorf("member %q: %w", member, err)
	}

	target := ghcontents.Target{
		Repo:   repo,
		Path:   RemotePath(root, team, member, date),
		Branch: Branch,
	}
	if err := target.Validate(); err != nil {
		return ghcontents.Target{}, err
	}
	return target, nil
}

func CommitMessage(member string, date report.Date) string {
	return fmt.Sprintf("📝 [%s] Sync log for %s", member, date.Dashed())
}
