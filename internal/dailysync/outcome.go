package dailysync

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"
)

// Stage names the step at which a sync stopped.
type Stage string

const (
	StageValidate     Stage = "validate"
	StageLocalPersist Stage = "local_persist"
	// StageProbe means the caller cancelled before the commit was sent.
	StageProbe        Stage = "probe"
	StageCommit       Stage = "commit"
)

// Outcome is the result of one Sync call. It is handed to the caller and
// not retained.
type Outcome struct {
	OK    bool
	Stage Stage // set when !OK
	Err   error // set when !OK

	Date   string
	Team   string
	Member string

	LocalPath  string
	RemotePath string
	Size       int

	// Updated is true when the commit carried a version precondition.
	Updated    bool
	StatusCode int
	// Body is the raw remote response on commit failure.
	Body      string
	CommitSHA string
}

// Failed builds an outcome for a failure that happened before Sync could run,
// such as a missing credential.
func Failed(stage Stage, err error) *Outcome {
	return &Outcome{Stage: stage, Err: err}
}

func (o *Outcome) fail(stage Stage, err error) *Outcome {
	o.OK = false
	o.Stage = stage
	o.Err = err
	return o
}

// Title is the one-line headline of the outcome.
func (o *Outcome) Title() string {
	if o.OK {
		return "Daily report pushed"
	}
	return fmt.Sprintf("Push failed (%s)", o.Stage)
}

// Summary renders the outcome as plain text for the user.
func (o *Outcome) Summary() string {
	var b strings.Builder
	b.WriteString(o.Title())
	b.WriteString("\n\n")

	field := func(k, v string) {
		if v != "" {
			fmt.Fprintf(&b, "%-12s %s\n", k+":", v)
		}
	}

	field("Date", o.Date)
	field("Member", o.Member)
	field("Team", o.Team)
	field("Remote path", o.RemotePath)
	if o.LocalPath != "" {
		field("Local file", fmt.Sprintf("%s (%s)", o.LocalPath, humanize.Bytes(uint64(o.Size))))
	}
	if o.OK {
		if o.Updated {
			field("Action", "updated")
		} else {
			field("Action", "created")
		}
		field("Commit", o.CommitSHA)
	}
	if o.StatusCode != 0 {
		field("HTTP status", fmt.Sprintf("%d %s", o.StatusCode, http.StatusText(o.StatusCode)))
	}
	if !o.OK {
		if o.Body != "" {
			field("Response", o.Body)
		} else if o.Err != nil {
			field("Error", o.Err.Error())
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
