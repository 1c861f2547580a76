// Package client talks to the remote fleet-management REST API. Every
// collection lives at {base}/{collection}/ and accepts list, create and
// partial-update requests.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/vessel-ops/internal/models"
)

// ErrUnknownCollection is returned before any request is sent for a
// collection the remote API does not serve.
var ErrUnknownCollection = errors.New("unknown collection")

// StatusError is returned when the remote API answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("status %d %s: %s", e.Code, http.StatusText(e.Code), e.Body)
}

// ClientError reports whether the remote API rejected the request itself.
func (e *StatusError) ClientError() bool {
	return e.Code >= 400 && e.Code < 500
}

// Client is an HTTP client for the remote API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a client for baseURL. An empty token sends no Authorization header.
func New(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// List fetches the full contents of a collection.
func (c *Client) List(ctx context.Context, coll models.Collection) ([]models.Record, error) {
	target, err := c.collectionURL(coll)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", coll, err)
	}
	defer resp.Body.Close()

	records, err := models.DecodeRecords(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", coll, err)
	}
	return records, nil
}

// Create posts a new record to a collection.
func (c *Client) Create(ctx context.Context, coll models.Collection, payload any) error {
	target, err := c.collectionURL(coll)
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, http.MethodPost, target, payload)
	if err != nil {
		return fmt.Errorf("create %s: %w", coll, err)
	}
	resp.Body.Close()
	return nil
}

// Update sends a partial update for one record. The id is escaped as a
// single path segment.
func (c *Client) Update(ctx context.Context, coll models.Collection, id string, payload any) error {
	target, err := c.collectionURL(coll)
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, http.MethodPatch, target+url.PathEscape(id)+"/", payload)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", coll, id, err)
	}
	resp.Body.Close()
	return nil
}

func (c *Client) collectionURL(coll models.Collection) (string, error) {
	if !models.IsValidCollection(coll) {
		return "", fmt.Errorf("%w: %q", ErrUnknownCollection, coll)
	}
	return c.baseURL + "/" + string(coll) + "/", nil
}

// do sends the request and returns the response only for 2xx statuses.
func (c *Client) do(ctx context.Context, method, target string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"method":   method,
		"url":      target,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("Remote API call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return resp, nil
}
