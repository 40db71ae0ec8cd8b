package httpclient

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

	"github.com/rs/zerolog/log"
	"github.com/urmzd/switchboard/pkg/device"
	"github.com/urmzd/switchboard/pkg/device/schema"
)

// Client implements device.Client over the backend's JSON HTTP API.
type Client struct {
	base       string
	httpClient *http.Client
	validator  *schema.Validator
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the overall per-request timeout. Zero means none.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithTransport replaces the underlying round tripper. The logging
// transport still wraps it.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.httpClient.Transport = &loggingTransport{next: rt} }
}

// WithValidator shares a schema validator with other components.
func WithValidator(v *schema.Validator) Option {
	return func(c *Client) { c.validator = v }
}

// New creates a Client for the backend at base (e.g. http://192.168.0.100:5000).
func New(base string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(base, "/"),
		httpClient: &http.Client{
			Transport: &loggingTransport{next: http.DefaultTransport},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.validator == nil {
		c.validator = schema.NewValidator()
	}
	return c
}

// Base returns the backend base URL.
func (c *Client) Base() string {
	return c.base
}

type listResponse struct {
	Data struct {
		Devices []device.Device `json:"devices"`
	} `json:"data"`
}

// FetchAll implements device.Client.
func (c *Client) FetchAll(ctx context.Context) ([]device.Device, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/device/all", nil)
	if err != nil {
		return []device.Device{}, fmt.Errorf("%w: %v", device.ErrTransport, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return []device.Device{}, fmt.Errorf("%w: %v", device.ErrTransport, cause(err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return []device.Device{}, fmt.Errorf("%w: status %d", device.ErrUnsuccessfulResponse, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return []device.Device{}, fmt.Errorf("%w: read body: %v", device.ErrTransport, err)
	}

	if err := c.validator.ValidateJSON(schema.DeviceList, body); err != nil {
		return []device.Device{}, fmt.Errorf("%w: %v", device.ErrMalformedResponse, err)
	}

	var parsed listResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return []device.Device{}, fmt.Errorf("%w: %v", device.ErrMalformedResponse, err)
	}

	devices := parsed.Data.Devices
	if devices == nil {
		devices = []device.Device{}
	}
	return devices, nil
}

// Toggle implements device.Client. The request runs on its own goroutine.
func (c *Client) Toggle(ctx context.Context, id int, name string, desired bool) <-chan device.ToggleOutcome {
	out := make(chan device.ToggleOutcome, 1)

	go func() {
		defer close(out)
		out <- c.toggle(ctx, id, name, desired)
	}()

	return out
}

func (c *Client) toggle(ctx context.Context, id int, name string, desired bool) device.ToggleOutcome {
	outcome := device.ToggleOutcome{ID: id}

	payload, err := json.Marshal(device.ToggleRequest{Name: name, Status: desired})
	if err != nil {
		outcome.Err = err
		return outcome
	}

	endpoint := fmt.Sprintf("%s/device/%d", c.base, id)
	log.Debug().Str("url", endpoint).RawJSON("payload", payload).Msg("Sending toggle")

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(payload))
	if err != nil {
		outcome.Err = err
		return outcome
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		outcome.Err = cause(err)
		log.Error().Err(err).Int("id", id).Msg("Toggle request failed")
		return outcome
	}
	defer func() { _ = resp.Body.Close() }()

	outcome.StatusCode = resp.StatusCode

	body, _ := io.ReadAll(resp.Body)
	log.Debug().Int("id", id).Int("status", resp.StatusCode).Bytes("body", body).Msg("Toggle response")

	return outcome
}

// cause strips the *url.Error wrapper net/http puts around transport errors.
func cause(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Err != nil {
		return uerr.Err
	}
	return err
}
