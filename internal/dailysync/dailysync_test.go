package dailysync

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/chronicle-hq/chronicle/internal/ghcontents"
	"github.com/chronicle-hq/chronicle/internal/report"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultDir = "/docs/Chronicle/日报"

type fakeRemote struct {
	sha   string
	found bool

	result *ghcontents.CommitResult
	err    error

	// hooks run at the start of the call
	onProbe  func()
	onCommit func()

	probed    []ghcontents.Target
	committed []*ghcontents.CommitRequest
	commitCtx context.Context
}

func (f *fakeRemote) Probe(ctx context.Context, target ghcontents.Target) (string, bool) {
	if f.onProbe != nil {
		f.onProbe()
	}
	f.probed = append(f.probed, target)
	if ctx.Err() != nil {
		return "", false
	}
	return f.sha, f.found
}

func (f *fakeRemote) Commit(ctx context.Context, target ghcontents.Target, body *ghcontents.CommitRequest) (*ghcontents.CommitResult, error) {
	if f.onCommit != nil {
		f.onCommit()
	}
	f.committed = append(f.committed, body)
	f.commitCtx = ctx
	return f.result, f.err
}

func mustDate(t *testing.T, s string) report.Date {
	t.Helper()
	d, err := report.ParseDate(s)
	require.NoError(t, err)
	return d
}

func newRequest(t *testing.T) *Request {
	return &Request{
		Date:      mustDate(t, "2024-03-05"),
		Content:   "```markdown\n# Done\n- a\n```\n",
		Team:      "中国团队 china-team",
		Member:    "alice",
		ReportDir: "/reports",
	}
}

func TestSync_CreateWhenAbsent(t *testing.T) {
	fs := memfs.New()
	remote := &fakeRemote{result: &ghcontents.CommitResult{StatusCode: http.StatusCreated}}
	s := New(report.NewStore(fs, defaultDir), remote)

	out := s.Sync(context.Background(), newRequest(t))
	require.True(t, out.OK, out.Summary())
	assert.Equal(t, "/reports/2024.03.05.md", out.LocalPath)
	assert.Equal(t, "成员日志 members/中国团队 china-team/alice/2024-03-05_log.md", out.RemotePath)
	assert.Equal(t, http.StatusCreated, out.StatusCode)
	assert.False(t, out.Updated)

	data, err := util.ReadFile(fs, out.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, "# Done\n- a\n", string(data))

	require.Len(t, remote.probed, 1)
	assert.Equal(t, DefaultRepo, remote.probed[0].Repo)
	assert.Equal(t, Branch, remote.probed[0].Branch)

	require.Len(t, remote.committed, 1)
	body := remote.committed[0]
	assert.Empty(t, body.SHA)
	assert.Equal(t, Branch, body.Branch)
	assert.Equal(t, "📝 [alice] Sync log for 2024-03-05", body.Message)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("# Done\n- a\n")), body.Content)
}

func TestSync_UpdateWhenPresent(t *testing.T) {
	remote := &fakeRemote{
		sha: "v1", found: true,
		result: &ghcontents.CommitResult{StatusCode: http.StatusOK},
	}
	s := New(report.NewStore(memfs.New(), defaultDir), remote)

	out := s.Sync(context.Background(), newRequest(t))
	require.True(t, out.OK)
	assert.True(t, out.Updated)
	require.Len(t, remote.committed, 1)
	assert.Equal(t, "v1", remote.committed[0].SHA)
}

func TestSync_CommitConflict(t *testing.T) {
	const body = `{"message":"does not match v1"}`
	fs := memfs.New()
	remote := &fakeRemote{
		sha: "v1", found: true,
		result: &ghcontents.CommitResult{StatusCode: http.StatusConflict, Body: body},
		err:    &ghcontents.APIError{Operation: "put file", StatusCode: http.StatusConflict, Body: body},
	}
	s := New(report.NewStore(fs, defaultDir), remote)

	out := s.Sync(context.Background(), newRequest(t))
	assert.False(t, out.OK)
	assert.Equal(t, StageCommit, out.Stage)
	assert.Equal(t, http.StatusConflict, out.StatusCode)
	assert.Equal(t, body, out.Body)

	// the local copy survives a failed commit
	_, err := fs.Stat("/reports/2024.03.05.md")
	assert.NoError(t, err)
}

func TestSync_CommitNon2xxWithoutError(t *testing.T) {
	remote := &fakeRemote{result: &ghcontents.CommitResult{StatusCode: http.StatusUnprocessableEntity, Body: "bad"}}
	s := New(report.NewStore(memfs.New(), defaultDir), remote)

	out := s.Sync(context.Background(), newRequest(t))
	assert.False(t, out.OK)
	assert.Equal(t, StageCommit, out.Stage)
	assert.Equal(t, http.StatusUnprocessableEntity, out.StatusCode)
	assert.Equal(t, "bad", out.Body)
}

func TestSync_CommitTransportError(t *testing.T) {
	remote := &fakeRemote{err: errors.New("connection reset")}
	s := New(report.NewStore(memfs.New(), defaultDir), remote)

	out := s.Sync(context.Background(), newRequest(t))
	assert.False(t, out.OK)
	assert.Equal(t, StageCommit, out.Stage)
	assert.Zero(t, out.StatusCode)
	assert.Contains(t, out.Summary(), "connection reset")
}

func TestSync_LocalFailureSkipsRemote(t *testing.T) {
	fs := osfs.New(t.TempDir())
	require.NoError(t, util.WriteFile(fs, "/blocked", []byte("x"), 0o644))
	// both the preference and the default are unusable
	remote := &fakeRemote{}
	s := New(report.NewStore(fs, "/blocked/default"), remote)

	req := newRequest(t)
	req.ReportDir = "/blocked/pref"
	out := s.Sync(context.Background(), req)

	assert.False(t, out.OK)
	assert.Equal(t, StageLocalPersist, out.Stage)
	var lwErr *report.LocalWriteError
	assert.ErrorAs(t, out.Err, &lwErr)
	assert.Empty(t, remote.probed)
	assert.Empty(t, remote.committed)
}

func TestSync_FallsBackToDefaultDir(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/taken", []byte("x"), 0o644))
	remote := &fakeRemote{result: &ghcontents.CommitResult{StatusCode: http.StatusCreated}}
	s := New(report.NewStore(fs, defaultDir), remote)

	req := newRequest(t)
	req.ReportDir = "/taken"
	out := s.Sync(context.Background(), req)
	require.True(t, out.OK)
	assert.Equal(t, defaultDir+"/2024.03.05.md", out.LocalPath)
}

func TestSync_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{name: "missing date", mutate: func(r *Request) { r.Date = report.Date{} }},
		{name: "empty member", mutate: func(r *Request) { r.Member = "" }},
		{name: "member traversal", mutate: func(r *Request) { r.Member = ".." }},
		{name: "member with slash", mutate: func(r *Request) { r.Member = "bob/../../x" }},
		{name: "team with slash", mutate: func(r *Request) { r.Team = "a/b" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := memfs.New()
			remote := &fakeRemote{}
			s := New(report.NewStore(fs, defaultDir), remote)

			req := newRequest(t)
			tt.mutate(req)
			out := s.Sync(context.Background(), req)

			assert.False(t, out.OK)
			assert.Equal(t, StageValidate, out.Stage)
			assert.Error(t, out.Err)
			assert.Empty(t, remote.probed)

			_, err := fs.Stat("/reports")
			assert.Error(t, err, "nothing is written for a rejected request")
		})
	}
}

func TestSync_CancelledBeforeCommit(t *testing.T) {
	tests := []struct {
		name  string
		setup func(remote *fakeRemote, cancel context.CancelFunc)
	}{
		{name: "cancelled up front", setup: func(_ *fakeRemote, cancel context.CancelFunc) { cancel() }},
		{name: "cancelled during probe", setup: func(r *fakeRemote, cancel context.CancelFunc) { r.onProbe = cancel }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := memfs.New()
			remote := &fakeRemote{sha: "v1", found: true, result: &ghcontents.CommitResult{StatusCode: http.StatusOK}}
			s := New(report.NewStore(fs, defaultDir), remote)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			tt.setup(remote, cancel)

			out := s.Sync(ctx, newRequest(t))
			assert.False(t, out.OK)
			assert.Equal(t, StageProbe, out.Stage)
			assert.ErrorIs(t, out.Err, context.Canceled)
			assert.Empty(t, remote.committed)

			// the local copy is already written
			data, err := util.ReadFile(fs, out.LocalPath)
			require.NoError(t, err)
			assert.Equal(t, "# Done\n- a\n", string(data))
		})
	}
}

func TestSync_CommitDetachedFromCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	remote := &fakeRemote{
		result:   &ghcontents.CommitResult{StatusCode: http.StatusCreated},
		onCommit: cancel,
	}
	s := New(report.NewStore(memfs.New(), defaultDir), remote)

	out := s.Sync(ctx, newRequest(t))
	require.True(t, out.OK, out.Summary())
	require.Len(t, remote.committed, 1)
	assert.NoError(t, remote.commitCtx.Err())
}

func TestSync_Options(t *testing.T) {
	remote := &fakeRemote{result: &ghcontents.CommitResult{StatusCode: http.StatusCreated}}
	s := New(report.NewStore(memfs.New(), defaultDir), remote,
		WithRepo("acme/logs"), WithArchiveRoot("daily"), WithRepo(""))

	out := s.Sync(context.Background(), newRequest(t))
	require.True(t, out.OK)
	assert.Equal(t, "acme/logs", remote.probed[0].Repo)
	assert.Equal(t, "daily/中国团队 china-team/alice/2024-03-05_log.md", out.RemotePath)
}

// archiveServer is a minimal in-memory contents API.
type archiveServer struct {
	mu    sync.Mutex
	files map[string]string // path -> sha
	puts  []map[string]any
}

func (a *archiveServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.Method {
	case http.MethodGet:
		sha, ok := a.files[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message":"Not Found"}`)
			return
		}
		_, _ = io.WriteString(w, `{"type":"file","sha":"`+sha+`"}`)
	case http.MethodPut:
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		a.puts = append(a.puts, body)

		current, exists := a.files[r.URL.Path]
		given, _ := body["sha"].(string)
		switch {
		case exists && given != current:
			w.WriteHeader(http.StatusConflict)
			_, _ = io.WriteString(w, `{"message":"sha mismatch"}`)
			return
		case !exists && given != "":
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = io.WriteString(w, `{"message":"sha given for new file"}`)
			return
		}

		next := "sha-" + time.Now().Format("150405.000000000")
		a.files[r.URL.Path] = next
		if exists {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusCreated)
		}
		_, _ = io.WriteString(w, `{"content":{"sha":"`+next+`"},"commit":{"sha":"c-`+next+`"}}`)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestSync_EndToEnd(t *testing.T) {
	archive := &archiveServer{files: map[string]string{}}
	srv := httptest.NewServer(archive)
	t.Cleanup(srv.Close)

	client, err := ghcontents.New(&ghcontents.Config{BaseURL: srv.URL, Token: "secret-token"})
	require.NoError(t, err)

	fs := memfs.New()
	s := New(report.NewStore(fs, defaultDir), client)

	req := &Request{
		Date:      mustDate(t, "2024-01-01"),
		Content:   "```\nHello\n```",
		Team:      "team",
		Member:    "bob",
		ReportDir: "/reports",
	}

	out := s.Sync(context.Background(), req)
	require.True(t, out.OK, out.Summary())
	assert.Equal(t, http.StatusCreated, out.StatusCode)
	assert.Equal(t, "/reports/2024.01.01.md", out.LocalPath)
	assert.Equal(t, "成员日志 members/team/bob/2024-01-01_log.md", out.RemotePath)
	assert.NotEmpty(t, out.CommitSHA)

	data, err := util.ReadFile(fs, out.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, "Hello\n", string(data))

	require.Len(t, archive.puts, 1)
	assert.NotContains(t, archive.puts[0], "sha")
	assert.Equal(t, "SGVsbG8K", archive.puts[0]["content"])

	// a second run for the same day updates with the current version
	req.Content = "Hello again"
	out = s.Sync(context.Background(), req)
	require.True(t, out.OK, out.Summary())
	assert.Equal(t, http.StatusOK, out.StatusCode)
	assert.True(t, out.Updated)
	require.Len(t, archive.puts, 2)
	assert.NotEmpty(t, archive.puts[1]["sha"])
}

func TestSync_CancelledSendsNoUnconditionedWrite(t *testing.T) {
	const existing = "/repos/AIEC-Team/AIEC-agent-hub/contents/成员日志 members/team/bob/2024-01-01_log.md"
	archive := &archiveServer{files: map[string]string{existing: "v1"}}
	srv := httptest.NewServer(archive)
	t.Cleanup(srv.Close)

	client, err := ghcontents.New(&ghcontents.Config{BaseURL: srv.URL, Token: "secret-token"})
	require.NoError(t, err)
	s := New(report.NewStore(memfs.New(), defaultDir), client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := s.Sync(ctx, &Request{
		Date:    mustDate(t, "2024-01-01"),
		Content: "Hello",
		Team:    "team",
		Member:  "bob",
	})

	assert.False(t, out.OK)
	assert.Equal(t, StageProbe, out.Stage)
	archive.mu.Lock()
	defer archive.mu.Unlock()
	assert.Empty(t, archive.puts)
	assert.Equal(t, "v1", archive.files[existing])
}

func TestOutcome_Summary(t *testing.T) {
	ok := &Outcome{
		OK: true, Date: "2024-01-01", Member: "bob", Team: "team",
		LocalPath: "/r/2024.01.01.md", RemotePath: "x/team/bob/2024-01-01_log.md",
		Size: 6, StatusCode: http.StatusCreated, CommitSHA: "c1",
	}
	s := ok.Summary()
	assert.Contains(t, s, "Daily report pushed")
	assert.Contains(t, s, "/r/2024.01.01.md (6 B)")
	assert.Contains(t, s, "201 Created")
	assert.Contains(t, s, "created")

	failed := &Outcome{Stage: StageCommit, StatusCode: http.StatusConflict, Body: `{"message":"conflict"}`, Err: errors.New("x")}
	s = failed.Summary()
	assert.Contains(t, s, "Push failed (commit)")
	assert.Contains(t, s, "409 Conflict")
	assert.Contains(t, s, `{"message":"conflict"}`)

	pre := Failed(StageValidate, ghcontents.ErrNoToken)
	assert.Contains(t, pre.Summary(), "token missing")
}
