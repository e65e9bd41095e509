// Package soap resolves UPnP service URLs from a device description
// document and sends SOAP actions over HTTP (C5).
package soap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"streamer/internal/observability"
	"streamer/internal/xmlutil"
)

// Limiter bounds the rate of SOAP actions sent to a given target (keyed by
// control URL), guarding against retry storms against an unreachable
// renderer. Satisfied by *ratelimit.TargetLimiter.
type Limiter interface {
	Allow(key string) bool
}

// Client talks SOAP over HTTP to a single renderer, identified by its
// device description URL and a base URL relative service URLs resolve
// against.
type Client struct {
	DeviceURL string
	BaseURL   string
	HTTP      *http.Client
	Log       *slog.Logger
	Limiter   Limiter // optional
}

// NewClient constructs a Client with sane defaults; logger defaults to
// slog.Default() if nil.
func NewClient(deviceURL, baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		DeviceURL: deviceURL,
		BaseURL:   baseURL,
		HTTP:      &http.Client{Timeout: 10 * time.Second},
		Log:       logger,
	}
}

// fetchDescription downloads the device-description document on demand;
// it is re-downloaded per action to keep the client itself stateless, per
// the source's "fetch on demand" convention.
func (c *Client) fetchDescription(ctx context.Context) (*xmlutil.Root, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.DeviceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build device description request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch device description: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch device description: status %d", resp.StatusCode)
	}

	root, err := xmlutil.ParseDeviceDescription(resp.Body)
	if err != nil {
		return nil, err
	}
	return root, nil
}

// ServiceURL resolves the control (or event subscription) URL for the
// service whose serviceType contains urnSubstring.
func (c *Client) ServiceURL(ctx context.Context, urnSubstring string, event bool) (string, error) {
	root, err := c.fetchDescription(ctx)
	if err != nil {
		return "", err
	}

	svc, ok := xmlutil.FindService(root, urnSubstring)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrServiceNotFound, urnSubstring)
	}

	rel := svc.ControlURL
	if event {
		rel = svc.EventSubURL
	}

	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	ref, err := url.Parse(rel)
	if err != nil {
		return "", fmt.Errorf("parse service url %q: %w", rel, err)
	}

	return base.ResolveReference(ref).String(), nil
}

// Send resolves the control URL for urn and sends action, returning the
// raw response body. On transport failure or a non-2xx response, or a
// SOAP Fault in the body, it returns an error naming the action, code,
// and payload.
func (c *Client) Send(ctx context.Context, urnSubstring string, action *Action) (_ []byte, err error) {
	start := time.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		observability.SoapActionsTotal.WithLabelValues(action.Name, outcome).Inc()
		observability.SoapActionDuration.WithLabelValues(action.Name).Observe(time.Since(start).Seconds())
	}()

	controlURL, err := c.ServiceURL(ctx, urnSubstring, false)
	if err != nil {
		return nil, err
	}

	if c.Limiter != nil && !c.Limiter.Allow(controlURL) {
		return nil, fmt.Errorf("%w: %s: rate limited", ErrActionFailed, action.Name)
	}

	reqBody, err := action.Marshal()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, controlURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("build soap request for %s: %w", action.Name, err)
	}
	req.Header.Set("Content-Type", `text/xml; charset="utf-8"`)
	req.Header.Set("SOAPAction", fmt.Sprintf(`"%s#%s"`, action.URN, action.Name))

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: transport error: %v", ErrActionFailed, action.Name, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read response: %v", ErrActionFailed, action.Name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s: http %d: %s", ErrActionFailed, action.Name, resp.StatusCode, string(respBody))
	}

	if err := checkFault(respBody); err != nil {
		return nil, err
	}

	return respBody, nil
}
