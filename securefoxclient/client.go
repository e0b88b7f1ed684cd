// Package securefoxclient is a thin HTTP client for the securefoxd API
// of spec.md §6, used by the securefox CLI so its commands never touch
// the vault file or an in-memory session directly: the daemon is the
// single owner of the decrypted vault.
package securefoxclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/securefoxd/securefox/vaultmodel"
)

// DefaultAddr is securefoxd's default bind address.
const DefaultAddr = "127.0.0.1:8787"

// Client talks to a running securefoxd instance.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New returns a Client targeting addr (host:port, no scheme) using
// token for authenticated requests. token may be empty for /api/unlock,
// /api/status, and /health.
func New(addr, token string) *Client {
	return &Client{
		baseURL: "http://" + addr,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is returned when the daemon responds with a non-2xx status.
type APIError struct {
	Status  int
	Kind    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader

	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}

		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("securefoxd unreachable at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}

		_ = json.NewDecoder(resp.Body).Decode(&apiErr)

		return &APIError{Status: resp.StatusCode, Kind: apiErr.Error, Message: apiErr.Message}
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// UnlockResult is the decoded response of POST /api/unlock.
type UnlockResult struct {
	Token        string `json:"token"`
	ExpiresAt    string `json:"expires_at"`
	VaultSummary struct {
		ItemCount   int `json:"item_count"`
		FolderCount int `json:"folder_count"`
	} `json:"vault_summary"`
}

// Unlock calls POST /api/unlock.
func (c *Client) Unlock(ctx context.Context, password string) (*UnlockResult, error) {
	var out UnlockResult
	if err := c.do(ctx, http.MethodPost, "/api/unlock", map[string]string{"password": password}, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// Lock calls POST /api/lock.
func (c *Client) Lock(ctx context.Context) (*StatusResult, error) {
	var out StatusResult
	if err := c.do(ctx, http.MethodPost, "/api/lock", nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// StatusResult is the decoded response of GET /api/status and
// POST /api/lock.
type StatusResult struct {
	Locked       bool `json:"locked"`
	SessionValid bool `json:"session_valid"`
	VaultExists  bool `json:"vault_exists"`
}

// Status calls GET /api/status.
func (c *Client) Status(ctx context.Context) (*StatusResult, error) {
	var out StatusResult
	if err := c.do(ctx, http.MethodGet, "/api/status", nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// Healthy calls GET /health and reports whether the daemon is reachable.
func (c *Client) Healthy(ctx context.Context) bool {
	return c.do(ctx, http.MethodGet, "/health", nil, nil) == nil
}

// ListItems calls GET /api/items, optionally filtered by search text
// and folder id.
func (c *Client) ListItems(ctx context.Context, search, folderID string) ([]vaultmodel.Item, error) {
	path := "/api/items"

	q := make([]string, 0, 2)
	if search != "" {
		q = append(q, "search="+search)
	}

	if folderID != "" {
		q = append(q, "folder_id="+folderID)
	}

	if len(q) > 0 {
		path += "?" + q[0]
		for _, extra := range q[1:] {
			path += "&" + extra
		}
	}

	var out []vaultmodel.Item
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}

	return out, nil
}

// CreateItem calls POST /api/items.
func (c *Client) CreateItem(ctx context.Context, item vaultmodel.Item) (*vaultmodel.Item, error) {
	var out vaultmodel.Item
	if err := c.do(ctx, http.MethodPost, "/api/items", item, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// GetItem calls GET /api/items/{id}.
func (c *Client) GetItem(ctx context.Context, id string) (*vaultmodel.Item, error) {
	var out vaultmodel.Item
	if err := c.do(ctx, http.MethodGet, "/api/items/"+id, nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// UpdateItem calls PUT /api/items/{id}.
func (c *Client) UpdateItem(ctx context.Context, id string, patch vaultmodel.Item) (*vaultmodel.Item, error) {
	var out vaultmodel.Item
	if err := c.do(ctx, http.MethodPut, "/api/items/"+id, patch, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// DeleteItem calls DELETE /api/items/{id}.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/items/"+id, nil, nil)
}

// TOTPResult is the decoded response of GET /api/items/{id}/totp.
type TOTPResult struct {
	Code string `json:"code"`
	TTL  int    `json:"ttl"`
}

// ItemTOTP calls GET /api/items/{id}/totp.
func (c *Client) ItemTOTP(ctx context.Context, id string) (*TOTPResult, error) {
	var out TOTPResult
	if err := c.do(ctx, http.MethodGet, "/api/items/"+id+"/totp", nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// GeneratePasswordOptions mirrors httpapi's request shape for
// POST /api/generate/password.
type GeneratePasswordOptions struct {
	Length           int  `json:"length,omitempty"`
	IncludeUppercase bool `json:"include_uppercase"`
	IncludeDigits    bool `json:"include_digits"`
	IncludeSymbols   bool `json:"include_symbols"`
}

// GeneratePasswordResult is the decoded response of
// POST /api/generate/password.
type GeneratePasswordResult struct {
	Password string `json:"password"`
	Strength int    `json:"strength"`
}

// GeneratePassword calls POST /api/generate/password.
func (c *Client) GeneratePassword(ctx context.Context, opts GeneratePasswordOptions) (*GeneratePasswordResult, error) {
	var out GeneratePasswordResult
	if err := c.do(ctx, http.MethodPost, "/api/generate/password", opts, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// SyncResult is the decoded response of the push/pull sync endpoints.
type SyncResult struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	ItemsSynced int    `json:"items_synced"`
}

// SyncPush calls POST /api/sync/push.
func (c *Client) SyncPush(ctx context.Context) (*SyncResult, error) {
	var out SyncResult
	if err := c.do(ctx, http.MethodPost, "/api/sync/push", nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// SyncPull calls POST /api/sync/pull.
func (c *Client) SyncPull(ctx context.Context) (*SyncResult, error) {
	var out SyncResult
	if err := c.do(ctx, http.MethodPost, "/api/sync/pull", nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// SyncStatusResult is the decoded response of GET /api/sync/status.
type SyncStatusResult struct {
	Ahead  int  `json:"ahead"`
	Behind int  `json:"behind"`
	Dirty  bool `json:"dirty"`
}

// SyncStatus calls GET /api/sync/status.
func (c *Client) SyncStatus(ctx context.Context) (*SyncStatusResult, error) {
	var out SyncStatusResult
	if err := c.do(ctx, http.MethodGet, "/api/sync/status", nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}
