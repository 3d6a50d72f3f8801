// Package ghcontents talks to a GitHub-style repository contents API: read a
// file's metadata to learn its blob SHA, and create or update a file with a
// single PUT.
package ghcontents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chronicle-hq/chronicle/internal/version"
	"github.com/imroc/req/v3"
)

// Client is safe for concurrent use. It never retries.
type Client struct {
	client *req.Client
}

func New(cfg *Config) (*Client, error) {
	c := *cfg
	c.setDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	client := req.C().
		SetBaseURL(c.BaseURL).
		SetTimeout(c.Timeout).
		SetCommonRetryCount(0).
		SetUserAgent(version.UserAgent()).
		SetCommonBearerAuthToken(c.Token).
		SetCommonHeader(HeaderAccept, mediaTypeJSON).
		SetCommonHeader(HeaderAPIVersion, apiVersion).
		SetJsonMarshal(jsonMarshal).
		SetJsonUnmarshal(jsonUnmarshal)

	return &Client{client: client}, nil
}

// GetFile reads the metadata of the file at target.
func (c *Client) GetFile(ctx context.Context, target Target) (*FileMetadata, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("ref", target.Branch).
		Get(target.endpoint())

	if err := handleAPIError(resp, err, "get file"); err != nil {
		return nil, err
	}

	var meta FileMetadata
	if err := jsonUnmarshal(resp.Bytes(), &meta); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if meta.SHA == "" {
		return nil, fmt.Errorf("%w: sha missing", ErrInvalidResponse)
	}

	return &meta, nil
}

// Probe returns the current blob SHA of target, or found=false when the file
// is missing or its existence cannot be confirmed for any reason. Failures are
// logged and never returned.
func (c *Client) Probe(ctx context.Context, target Target) (sha string, found bool) {
	meta, err := c.GetFile(ctx, target)
	if err != nil {
		slog.Debug("contents probe inconclusive", "path", target.Path, "error", err)
		return "", false
	}

	slog.Debug("contents probe", "path", target.Path, "sha", meta.SHA)
	return meta.SHA, true
}

// Commit creates or updates the file at target. A result is returned whenever
// the server answered; a non-2xx status also yields an *APIError.
func (c *Client) Commit(ctx context.Context, target Target, body *CommitRequest) (*CommitResult, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Put(target.endpoint())

	if err := handleAPIError(resp, err, "put file"); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return &CommitResult{StatusCode: apiErr.StatusCode, Body: apiErr.Body}, apiErr
		}
		return nil, err
	}

	result := &CommitResult{
		StatusCode: resp.StatusCode,
		Body:       resp.String(),
	}

	var commitResp CommitResponse
	if err := jsonUnmarshal(resp.Bytes(), &commitResp); err == nil {
		result.Response = &commitResp
	} else {
		slog.Debug("contents commit response not decoded", "error", err)
	}

	return result, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.client.GetClient().CloseIdleConnections()
}
