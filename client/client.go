// Package client is the HTTP implementation of the remote store contract
// consumed by the idea collection store. Transport failures map to
// ErrRemoteUnavailable; remote refusals map to the error taxonomy by
// status code.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/yamoridev/ideaboard"
)

const (
	defaultTimeout = 10 * time.Second
)

type Client struct {
	client  *http.Client
	cache   *cache.Cache
	baseURL string
	token   string
}

func New(baseURL string) *Client {
	httpClient := http.Client{
		Timeout: defaultTimeout,
	}

	return &Client{
		client:  &httpClient,
		cache:   cache.New(time.Minute, 5*time.Minute),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// SetToken installs the bearer token used for mutating calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Register obtains a bearer token for the given identity.
func (c *Client) Register(ctx context.Context, identity ideaboard.Identity) (string, error) {
	var resp ideaboard.RegisterResponse
	err := c.request(ctx, http.MethodPost, "/api/v1/register", ideaboard.RegisterRequest{
		ID:          identity.ID,
		DisplayName: identity.DisplayName,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

// Query fetches every idea, ordered by created_at descending.
func (c *Client) Query(ctx context.Context) ([]ideaboard.Idea, error) {
	var ideas []ideaboard.Idea
	err := c.request(ctx, http.MethodGet, "/api/v1/ideas", nil, &ideas)
	if err != nil {
		return nil, err
	}
	return ideas, nil
}

// GetIdea fetches a single idea, serving repeated detail lookups from a
// short-lived cache.
func (c *Client) GetIdea(ctx context.Context, id string) (ideaboard.Idea, error) {
	if cached, ok := c.cache.Get(ideaCacheKey(id)); ok {
		return cached.(ideaboard.Idea), nil
	}

	var idea ideaboard.Idea
	err := c.request(ctx, http.MethodGet, "/api/v1/ideas/"+id, nil, &idea)
	if err != nil {
		return ideaboard.Idea{}, err
	}

	c.cache.SetDefault(ideaCacheKey(id), idea)
	return idea, nil
}

// Insert creates a new idea owned by the authenticated identity. The
// server initializes status to open.
func (c *Client) Insert(ctx context.Context, input ideaboard.CreateIdeaInput) (ideaboard.Idea, error) {
	var idea ideaboard.Idea
	err := c.request(ctx, http.MethodPost, "/api/v1/ideas", input, &idea)
	if err != nil {
		return ideaboard.Idea{}, err
	}
	return idea, nil
}

// Update applies a partial edit to an idea.
func (c *Client) Update(ctx context.Context, id string, fields ideaboard.UpdateIdeaInput) error {
	err := c.request(ctx, http.MethodPatch, "/api/v1/ideas/"+id, fields, nil)
	if err != nil {
		return err
	}
	c.cache.Delete(ideaCacheKey(id))
	return nil
}

// UpdateStatus moves an idea to the given status.
func (c *Client) UpdateStatus(ctx context.Context, id string, status ideaboard.IdeaStatus) error {
	body := map[string]ideaboard.IdeaStatus{"status": status}
	err := c.request(ctx, http.MethodPut, "/api/v1/ideas/"+id+"/status", body, nil)
	if err != nil {
		return err
	}
	c.cache.Delete(ideaCacheKey(id))
	return nil
}

// Delete removes an idea permanently.
func (c *Client) Delete(ctx context.Context, id string) error {
	err := c.request(ctx, http.MethodDelete, "/api/v1/ideas/"+id, nil, nil)
	if err != nil {
		return err
	}
	c.cache.Delete(ideaCacheKey(id))
	return nil
}

func ideaCacheKey(id string) string {
	return "idea:" + id
}

func (c *Client) request(ctx context.Context, method, path string, body any, response any) error {

	var reader io.Reader
	if body != nil {
		serialized, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(serialized)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ideaboard.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	if response == nil {
		return nil
	}

	err = json.NewDecoder(resp.Body).Decode(response)
	if err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}

	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func statusError(resp *http.Response) error {
	var body errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ideaboard.ErrUnauthenticated
	case http.StatusForbidden:
		return ideaboard.ErrUnauthorized
	case http.StatusNotFound:
		return ideaboard.NotFoundError{Resource: "idea"}
	case http.StatusBadRequest:
		if body.Error != "" {
			return fmt.Errorf("%w: %s", ideaboard.ErrRemoteRejected, body.Error)
		}
		return ideaboard.ErrRemoteRejected
	default:
		return fmt.Errorf("%w: unexpected status code %d", ideaboard.ErrRemoteRejected, resp.StatusCode)
	}
}
