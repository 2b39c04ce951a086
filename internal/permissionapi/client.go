package permissionapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/clinicore/access-management/internal/access"
	"github.com/clinicore/access-management/internal/catalog"
)

// Client is the REST implementation of the access engine's backend
// contract. It is transport plumbing only, no retries and no caching; the
// synchronizer owns the reconciliation semantics.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

type Config struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
}

func NewClient(config Config, logger *slog.Logger) *Client {
	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    config.BaseURL,
		apiKey:     config.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type recordPayload struct {
	ID       int64  `json:"id"`
	Role     string `json:"role"`
	Username string `json:"username,omitempty"`
	ModuleID string `json:"module_id"`
	Type     string `json:"permission_type"`
}

type recordsPayload struct {
	Records []recordPayload `json:"records"`
}

func (c *Client) ListAll(ctx context.Context) ([]access.PermissionRecord, error) {
	return c.list(ctx, c.baseURL+"/permissions")
}

func (c *Client) ListByRole(ctx context.Context, role catalog.Role) ([]access.PermissionRecord, error) {
	return c.list(ctx, fmt.Sprintf("%s/permissions?role=%s", c.baseURL, url.QueryEscape(string(role))))
}

func (c *Client) ListByUsername(ctx context.Context, username string) ([]access.PermissionRecord, error) {
	return c.list(ctx, fmt.Sprintf("%s/permissions?username=%s", c.baseURL, url.QueryEscape(username)))
}

func (c *Client) list(ctx context.Context, endpoint string) ([]access.PermissionRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("permission backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("permission backend returned status %d", resp.StatusCode)
	}

	var payload recordsPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode permission records: %w", err)
	}

	records := make([]access.PermissionRecord, 0, len(payload.Records))
	for _, p := range payload.Records {
		records = append(records, access.PermissionRecord{
			ID:       p.ID,
			Role:     catalog.Role(p.Role),
			Username: p.Username,
			ModuleID: p.ModuleID,
			Type:     access.PermissionType(p.Type),
		})
	}

	return records, nil
}

func (c *Client) Upsert(ctx context.Context, entry access.UpsertEntry) (access.PermissionRecord, error) {
	body, err := json.Marshal(recordPayload{
		Role:     string(entry.Role),
		Username: entry.Username,
		ModuleID: entry.ModuleID,
		Type:     string(entry.Type),
	})
	if err != nil {
		return access.PermissionRecord{}, fmt.Errorf("failed to marshal permission record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/permissions", bytes.NewBuffer(body))
	if err != nil {
		return access.PermissionRecord{}, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return access.PermissionRecord{}, fmt.Errorf("permission backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return access.PermissionRecord{}, fmt.Errorf("permission backend returned status %d", resp.StatusCode)
	}

	var p recordPayload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return access.PermissionRecord{}, fmt.Errorf("failed to decode permission record: %w", err)
	}

	c.logger.Debug("permission record upserted",
		"record_id", p.ID,
		"role", p.Role,
		"username", p.Username,
		"module_id", p.ModuleID)

	return access.PermissionRecord{
		ID:       p.ID,
		Role:     catalog.Role(p.Role),
		Username: p.Username,
		ModuleID: p.ModuleID,
		Type:     access.PermissionType(p.Type),
	}, nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/permissions/%d", c.baseURL, id), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("permission backend request failed: %w", err)
	}
	defer resp.Body.Close()

	// A missing record counts as deleted: resets replay fine after a
	// partial failure.
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("permission backend returned status %d", resp.StatusCode)
	}

	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
