package forgejo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/m-mizutani/cogrelease/pkg/domain/interfaces"
	"github.com/m-mizutani/cogrelease/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option is a functional option for client configuration
type Option func(*client)

// WithHTTPClient replaces the HTTP client, mainly for tests
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *client) {
		c.httpClient = httpClient
	}
}

// New creates a Forgejo API client. baseURL must include a scheme.
func New(baseURL, token string, opts ...Option) interfaces.ForgejoClient {
	c := &client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// releaseResponse is the subset of the Forgejo release resource we consume
type releaseResponse struct {
	ID      int64  `json:"id"`
	HTMLURL string `json:"html_url"`
}

// CreateRelease calls POST /api/v1/repos/{owner}/{repo}/releases and builds
// the release record. When the API omits html_url, a deterministic URL is
// constructed from the server base instead.
func (c *client) CreateRelease(ctx context.Context, owner, repo string, req *model.CreateReleaseRequest) (*model.Release, error) {
	endpoint := fmt.Sprintf("%s/api/v1/repos/%s/%s/releases",
		c.baseURL, url.PathEscape(owner), url.PathEscape(repo))

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal release request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create release request", goerr.V("endpoint", endpoint))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "token "+c.token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call release API", goerr.V("endpoint", endpoint))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read release API response")
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, goerr.New("unexpected status code from release API",
			goerr.V("status", resp.StatusCode),
			goerr.V("endpoint", endpoint),
			goerr.V("body", string(body)),
		)
	}

	var apiResp releaseResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, goerr.Wrap(err, "failed to decode release API response")
	}

	release := &model.Release{
		TagName: req.TagName,
		Name:    req.Name,
		Body:    req.Body,
		HTMLURL: apiResp.HTMLURL,
		ID:      apiResp.ID,
	}
	if release.HTMLURL == "" {
		release.HTMLURL = fmt.Sprintf("%s/%s/%s/releases/tag/%s", c.baseURL, owner, repo, req.TagName)
	}

	return release, nil
}
