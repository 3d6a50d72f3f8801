// Package dailysync saves a day's report locally and mirrors it into the team
// archive repository.
//
// A sync is one linear pass: normalize, persist locally, probe the remote
// version, commit. Nothing is retried and nothing is rolled back; the local
// file stays on disk when the commit fails.
package dailysync

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chronicle-hq/chronicle/internal/ghcontents"
	"github.com/chronicle-hq/chronicle/internal/report"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

var ErrNoDate = errors.New("dailysync: report date missing")

// Remote is the archive a report is committed to. Probe must fold every
// failure into found=false.
type Remote interface {
	Probe(ctx context.Context, target ghcontents.Target) (sha string, found bool)
	Commit(ctx context.Context, target ghcontents.Target, body *ghcontents.CommitRequest) (*ghcontents.CommitResult, error)
}

// Request is the input of one sync.
type Request struct {
	Date    report.Date
	Content string // raw, normalized by Sync
	Team    string
	Member  string
	// ReportDir is the preferred local directory; empty means the default.
	ReportDir string
}

type Syncer struct {
	store  *report.Store
	remote Remote
	repo   string
	root   string
}

type Option func(*Syncer)

func WithRepo(repo string) Option {
	return func(s *Syncer) {
		if repo != "" {
			s.repo = repo
		}
	}
}

func WithArchiveRoot(root string) Option {
	return func(s *Syncer) {
		if root != "" {
			s.root = root
		}
	}
}

func New(store *report.Store, remote Remote, opts ...Option) *Syncer {
	s := &Syncer{
		store:  store,
		remote: remote,
		repo:   DefaultRepo,
		root:   DefaultArchiveRoot,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync never returns nil. Cancelling ctx before the commit is sent stops the
// sync after the local write with stage StageProbe; once the commit is sent it
// runs until the server answers or the client times out.
func (s *Syncer) Sync(ctx context.Context, req *Request) *Outcome {
	out := &Outcome{
		Date:   req.Date.Dashed(),
		Team:   req.Team,
		Member: req.Member,
	}
	if req.Date.IsZero() {
		out.Date = ""
		return out.fail(StageValidate, ErrNoDate)
	}

	log := slog.With("sync_id", uuid.NewString(), "date", out.Date)

	target, err := BuildTarget(s.repo, s.root, req.Team, req.Member, req.Date)
	if err != nil {
		log.Error("sync rejected", "error", err)
		return out.fail(StageValidate, err)
	}
	out.RemotePath = target.Path

	content := report.Normalize(req.Content)

	dir := s.store.ResolveOutputDir(req.ReportDir)
	localPath, err := s.store.Persist(dir, req.Date, content)
	if err != nil {
		log.Error("sync local persist", "dir", dir, "error", err)
		return out.fail(StageLocalPersist, err)
	}
	out.LocalPath = localPath
	out.Size = len(content)
	log.Info("sync local persist", "path", localPath, "size", humanize.Bytes(uint64(out.Size)))

	sha, found := s.remote.Probe(ctx, target)
	out.Updated = found
	log.Debug("sync probe", "path", target.Path, "found", found, "sha", sha)

	// an inconclusive probe under a cancelled ctx must not turn into an
	// unconditioned write
	if err := ctx.Err(); err != nil {
		log.Warn("sync cancelled before commit", "path", target.Path, "error", err)
		return out.fail(StageProbe, err)
	}

	body := &ghcontents.CommitRequest{
		Message: CommitMessage(req.Member, req.Date),
		Content: base64.StdEncoding.EncodeToString([]byte(content)),
		Branch:  target.Branch,
	}
	if found {
		body.SHA = sha
	}

	res, err := s.remote.Commit(context.WithoutCancel(ctx), target, body)
	if res != nil {
		out.StatusCode = res.StatusCode
	}
	if err == nil && (res == nil || res.StatusCode < 200 || res.StatusCode > 299) {
		err = fmt.Errorf("unexpected commit result: %+v", res)
	}
	if err != nil {
		if res != nil {
			out.Body = res.Body
		}
		log.Error("sync commit", "path", target.Path, "status", out.StatusCode, "error", err)
		return out.fail(StageCommit, err)
	}

	if res.Response != nil && res.Response.Commit.SHA != "" {
		out.CommitSHA = res.Response.Commit.SHA
	}
	out.OK = true
	log.Info("sync commit", "path", target.Path, "status", res.StatusCode, "updated", found)
	return out
}
