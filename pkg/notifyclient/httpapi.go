package notifyclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/storefront/pkg/notifications"
)

const maxResponseBody = 1 << 20

// HTTPAPI implements API over the hub REST endpoints with bearer auth.
type HTTPAPI struct {
	baseURL string
	creds   CredentialStore
	client  *http.Client
	timeout time.Duration
}

// HTTPAPIOption configures an HTTPAPI.
type HTTPAPIOption func(*HTTPAPI)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(client *http.Client) HTTPAPIOption {
	return func(a *HTTPAPI) {
		if client != nil {
			a.client = client
		}
	}
}

// WithRequestTimeout bounds each request on top of the caller's context.
func WithRequestTimeout(d time.Duration) HTTPAPIOption {
	return func(a *HTTPAPI) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// NewHTTPAPI creates a REST client for baseURL. Tokens are read from creds
// on every request so a re-login is picked up without rebuilding the client.
func NewHTTPAPI(baseURL string, creds CredentialStore, opts ...HTTPAPIOption) *HTTPAPI {
	if creds == nil {
		creds = noCredentials{}
	}
	a := &HTTPAPI{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		creds:   creds,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var _ API = (*HTTPAPI)(nil)

func (a *HTTPAPI) MarkAsRead(ctx context.Context, id string) (notifications.Notification, error) {
	var n notifications.Notification
	err := a.do(ctx, http.MethodPatch, "/notifications/"+url.PathEscape(id)+"/read", nil, nil, &n)
	if err != nil {
		return notifications.Notification{}, err
	}
	if n.ID == "" {
		return notifications.Notification{}, ErrMalformedResponse
	}
	return n, nil
}

func (a *HTTPAPI) MarkAllAsRead(ctx context.Context, notifType string) (Result, error) {
	var res Result
	err := a.do(ctx, http.MethodPatch, "/notifications/read-all", typeQuery(notifType), nil, &res)
	return res, err
}

func (a *HTTPAPI) Delete(ctx context.Context, id string) (Result, error) {
	var res Result
	err := a.do(ctx, http.MethodDelete, "/notifications/"+url.PathEscape(id), nil, nil, &res)
	return res, err
}

func (a *HTTPAPI) List(ctx context.Context, opts notifications.ListOptions) (Page, error) {
	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Type != "" {
		q.Set("type", opts.Type)
	}
	if opts.Priority != "" {
		q.Set("priority", string(opts.Priority))
	}
	if opts.Read != nil {
		q.Set("read", strconv.FormatBool(*opts.Read))
	}

	var body struct {
		Notifications *[]notifications.Notification `json:"notifications"`
		Total         int                           `json:"total"`
		Page          int                           `json:"page"`
		Limit         int                           `json:"limit"`
	}
	if err := a.do(ctx, http.MethodGet, "/notifications", q, nil, &body); err != nil {
		return Page{}, err
	}
	if body.Notifications == nil {
		return Page{}, fmt.Errorf("%w: missing notifications", ErrMalformedResponse)
	}
	return Page{Notifications: *body.Notifications, Total: body.Total, Page: body.Page, Limit: body.Limit}, nil
}

func (a *HTTPAPI) UnreadCount(ctx context.Context, notifType string) (int, error) {
	var body struct {
		Count *int `json:"count"`
	}
	if err := a.do(ctx, http.MethodGet, "/notifications/unread-count", typeQuery(notifType), nil, &body); err != nil {
		return 0, err
	}
	if body.Count == nil {
		return 0, fmt.Errorf("%w: missing count", ErrMalformedResponse)
	}
	return *body.Count, nil
}

// Send creates a notification through the admin endpoint.
func (a *HTTPAPI) Send(ctx context.Context, n notifications.Notification) (notifications.Notification, error) {
	var created notifications.Notification
	if err := a.do(ctx, http.MethodPost, "/notifications", nil, n, &created); err != nil {
		return notifications.Notification{}, err
	}
	return created, nil
}

func (a *HTTPAPI) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	if a.baseURL == "" {
		return ErrNoServerURL
	}

	reqCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	target := a.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, target, body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, err := a.creds.Token(ctx); err == nil && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	if err := classifyStatus(resp.StatusCode, raw); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Join(ErrMalformedResponse, err)
	}
	return nil
}

// StatusError carries the HTTP status of a failed call.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return errors.Join(ErrUnexpectedStatus, ErrNotificationNotFound)
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.Join(ErrUnexpectedStatus, ErrUnauthorized)
	default:
		return ErrUnexpectedStatus
	}
}

func classifyStatus(code int, body []byte) error {
	if code >= 200 && code < 300 {
		return nil
	}
	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}
	return &StatusError{StatusCode: code, Message: msg}
}

func typeQuery(notifType string) url.Values {
	if notifType == "" {
		return nil
	}
	return url.Values{"type": {notifType}}
}
