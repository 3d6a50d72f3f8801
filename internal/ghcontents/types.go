package ghcontents

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/chronicle-hq/chronicle/internal/utils"
)

const (
	HeaderAccept     = "Accept"
	HeaderAPIVersion = "X-GitHub-Api-Version"

	mediaTypeJSON = "application/vnd.github+json"
	apiVersion    = "2022-11-28"
)

// Target addresses one file on one branch of a repository.
type Target struct {
	Repo   string // owner/name
	Path   string // slash-separated, no leading slash
	Branch string
}

func (t Target) Validate() error {
	owner, name, ok := strings.Cut(t.Repo, "/")
	if !ok || utils.ValidateSegment(owner) != nil || utils.ValidateSegment(name) != nil {
		return fmt.Errorf("%w: %q", ErrInvalidRepo, t.Repo)
	}

	if t.Path == "" {
		return ErrInvalidPath
	}
	for _, seg := range strings.Split(t.Path, "/") {
		if err := utils.ValidateSegment(seg); err != nil {
			return fmt.Errorf("%w %q: %w", ErrInvalidPath, t.Path, err)
		}
	}

	if strings.TrimSpace(t.Branch) == "" {
		return ErrInvalidBranch
	}
	return nil
}

// endpoint is the escaped `/repos/{owner}/{repo}/contents/{path}` URL path.
func (t Target) endpoint() string {
	owner, name, _ := strings.Cut(t.Repo, "/")

	var b strings.Builder
	b.WriteString("/repos/")
	b.WriteString(url.PathEscape(owner))
	b.WriteString("/")
	b.WriteString(url.PathEscape(name))
	b.WriteString("/contents")
	for _, seg := range strings.Split(t.Path, "/") {
		b.WriteString("/")
		b.WriteString(url.PathEscape(seg))
	}
	return b.String()
}

func (t Target) String() string {
	return t.Repo + ":" + t.Branch + ":" + t.Path
}

// FileMetadata is the subset of the contents GET response we read.
type FileMetadata struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Path    string `json:"path"`
	SHA     string `json:"sha"`
	Size    int64  `json:"size"`
	HTMLURL string `json:"html_url"`
}

// CommitRequest is the contents PUT body. SHA is the update precondition and
// is left out entirely when creating a file.
type CommitRequest struct {
	Message string `json:"message"`
	Content string `json:"content"` // base64
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

// CommitResponse is the subset of the contents PUT response we read.
type CommitResponse struct {
	Content *FileMetadata `json:"content"`
	Commit  struct {
		SHA     string `json:"sha"`
		HTMLURL string `json:"html_url"`
	} `json:"commit"`
}

// CommitResult is returned for every PUT that produced an HTTP response.
type CommitResult struct {
	StatusCode int
	Body       string
	Response   *CommitResponse // nil when the body could not be decoded
}
