package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/newguy103/passvault-client/internal/logging"
)

// requestTimeout bounds every remote call; there is no other cancellation.
const requestTimeout = 30 * time.Second

// HTTPClient implements Client over HTTP+JSON with bearer authentication.
type HTTPClient struct {
	baseURL *url.URL
	token   string
	hc      *http.Client
	log     logging.Logger
}

// NewHTTPClient builds an authenticated client for serverURL. The handle is
// cheap but holds a connection pool; callers keep one per sync session.
func NewHTTPClient(serverURL, accessToken string, logger logging.Logger) (*HTTPClient, error) {
	base, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("server url %q is not absolute", serverURL)
	}

	return &HTTPClient{
		baseURL: base,
		token:   accessToken,
		hc:      &http.Client{Timeout: requestTimeout},
		log:     logger.With("component", "remote"),
	}, nil
}

// TokenLogin performs the OAuth2 password grant against serverURL and returns
// the bearer access token. It is the only unauthenticated call.
func TokenLogin(ctx context.Context, serverURL, username, password string) (string, error) {
	base, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", username)
	form.Set("password", password)

	endpoint := base.JoinPath("/api/auth/token").String()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	hc := &http.Client{Timeout: requestTimeout}
	res, err := hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if err := checkStatus(res, http.MethodPost, "/api/auth/token"); err != nil {
		return "", err
	}

	var tok TokenResponse
	if err := json.NewDecoder(res.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	return tok.AccessToken, nil
}

// Close releases idle connections held by the pool.
func (c *HTTPClient) Close() error {
	c.hc.CloseIdleConnections()
	return nil
}

// do runs one JSON round trip. body may be nil; out may be nil for calls
// whose response is discarded after the status check.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL.JoinPath(path)
	if query != nil {
		endpoint.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug(ctx, "http request sent", "method", method, "path", path)

	res, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	c.log.Debug(ctx, "http response received", "method", method, "path", path, "status", res.StatusCode)

	if err := checkStatus(res, method, path); err != nil {
		return err
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s %s: %w", method, path, err)
	}
	return nil
}

// checkStatus maps non-2xx responses to typed errors: 401 to ErrUnauthorized,
// 422 to ValidationError with field detail, everything else to
// UnexpectedStatusError.
func checkStatus(res *http.Response, method, path string) error {
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(res.Body, 64*1024))

	switch res.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
	case http.StatusUnprocessableEntity:
		var ve ValidationError
		if err := json.Unmarshal(raw, &ve); err == nil && len(ve.Detail) > 0 {
			return &ve
		}
	}

	return &UnexpectedStatusError{Method: method, Path: path, Status: res.StatusCode, Body: string(raw)}
}

func (c *HTTPClient) Whoami(ctx context.Context) (*UserInfo, error) {
	var out UserInfo
	if err := c.do(ctx, http.MethodGet, "/api/auth/test-auth", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CreateGroup(ctx context.Context, name string, parentID uuid.UUID) (*GroupModify, error) {
	body := map[string]any{"group_name": name, "parent_id": parentID}
	var out GroupModify
	if err := c.do(ctx, http.MethodPost, "/api/groups/", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) RootGroup(ctx context.Context) (*GroupGet, error) {
	var out GroupGet
	if err := c.do(ctx, http.MethodGet, "/api/groups/", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GroupChildren(ctx context.Context, id uuid.UUID) (*GroupGet, error) {
	var out GroupGet
	if err := c.do(ctx, http.MethodGet, "/api/groups/"+id.String()+"/children", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GroupInfo(ctx context.Context, id uuid.UUID) (*GroupModify, error) {
	var out GroupModify
	if err := c.do(ctx, http.MethodGet, "/api/groups/"+id.String()+"/info", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) RenameGroup(ctx context.Context, id uuid.UUID, name string) (*GroupModify, error) {
	body := map[string]any{"group_name": name}
	var out GroupModify
	if err := c.do(ctx, http.MethodPut, "/api/groups/"+id.String()+"/", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) MoveGroup(ctx context.Context, id, newParentID uuid.UUID) (*GroupModify, error) {
	body := map[string]any{"new_parent_id": newParentID}
	var out GroupModify
	if err := c.do(ctx, http.MethodPost, "/api/groups/"+id.String()+"/move", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/groups/"+id.String(), nil, nil, nil)
}

func (c *HTTPClient) CreateEntry(ctx context.Context, groupID uuid.UUID, body EntryPayload) (*EntryGet, error) {
	var out EntryGet
	if err := c.do(ctx, http.MethodPost, "/api/groups/"+groupID.String()+"/entries/", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListEntries(ctx context.Context, groupID uuid.UUID, amount, offset int) ([]EntryGet, error) {
	query := url.Values{}
	query.Set("amount", strconv.Itoa(amount))
	query.Set("offset", strconv.Itoa(offset))

	var out []EntryGet
	if err := c.do(ctx, http.MethodGet, "/api/groups/"+groupID.String()+"/entries/", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) UpdateEntry(ctx context.Context, groupID, entryID uuid.UUID, body EntryPayload) (*EntryGet, error) {
	var out EntryGet
	if err := c.do(ctx, http.MethodPut, "/api/groups/"+groupID.String()+"/entries/"+entryID.String(), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteEntry(ctx context.Context, groupID, entryID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/groups/"+groupID.String()+"/entries/"+entryID.String(), nil, nil, nil)
}
