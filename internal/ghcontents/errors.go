package ghcontents

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/imroc/req/v3"
)

var (
	// client config
	ErrNoToken   = errors.New("contents: token missing")
	ErrNoBaseURL = errors.New("contents: api url missing")

	// target
	ErrInvalidRepo   = errors.New("contents: repository must be owner/name")
	ErrInvalidPath   = errors.New("contents: invalid file path")
	ErrInvalidBranch = errors.New("contents: branch missing")

	// responses
	ErrNotFound        = errors.New("contents: file not found")
	ErrInvalidResponse = errors.New("contents: unparsable response")
)

const maxErrorBody = 256

// APIError is any non-2xx answer from the contents API. Body is kept verbatim.
type APIError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	return fmt.Sprintf("contents %s: http %d: %s", e.Operation, e.StatusCode, body)
}

// Is lets callers match a 404 with errors.Is(err, ErrNotFound).
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// handleAPIError folds a transport error or a non-2xx response into an error.
func handleAPIError(resp *req.Response, requestErr error, operation string) error {
	if resp == nil || resp.Response == nil {
		if requestErr == nil {
			requestErr = errors.New("no response")
		}
		return fmt.Errorf("http request error: %s: %w", operation, requestErr)
	}

	if !resp.IsSuccessState() {
		return &APIError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Body:       resp.String(),
		}
	}

	if requestErr != nil {
		return fmt.Errorf("%s: %w", operation, requestErr)
	}

	return nil
}
