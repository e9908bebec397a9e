package tourism

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ricky-kiva/andro-tourism-app/internal/resource"
)

const (
	DefaultBaseURL = "https://tourism-api.dicoding.dev"
	DefaultTimeout = 120 * time.Second

	listPath = "/list"
)

// doGet performs a GET request and decodes the JSON response into dst.
func doGet(ctx context.Context, client *http.Client, rawURL string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request for %s: %w", rawURL, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s returned status %d", rawURL, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decoding response from %s: %w", rawURL, err)
	}

	return nil
}

// Client fetches the destination listing from the tourism API.
type Client struct {
	baseURL string
	client  *http.Client
	log     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	timeout   time.Duration
	pins      []string
	log       *slog.Logger
	transport http.RoundTripper
}

// WithTimeout overrides the request timeout. Defaults to 120 seconds.
func WithTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// WithPinnedKeys restricts TLS connections to servers whose certificate chain
// contains one of the given "sha256/<base64>" public key pins.
func WithPinnedKeys(pins ...string) ClientOption {
	return func(o *clientOptions) {
		o.pins = append(o.pins, pins...)
	}
}

// WithLogger sets the logger used for request and failure logs.
func WithLogger(log *slog.Logger) ClientOption {
	return func(o *clientOptions) {
		if log != nil {
			o.log = log
		}
	}
}

// WithTransport replaces the base HTTP transport (pins are then ignored).
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(o *clientOptions) {
		o.transport = rt
	}
}

// NewClient constructs a Client for the production API.
func NewClient(opts ...ClientOption) (*Client, error) {
	return NewClientWithURL(DefaultBaseURL, opts...)
}

// NewClientWithURL constructs a Client pointing at a custom base URL.
func NewClientWithURL(baseURL string, opts ...ClientOption) (*Client, error) {
	o := clientOptions{timeout: DefaultTimeout, log: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	base := o.transport
	if base == nil {
		t, err := newPinnedTransport(o.pins)
		if err != nil {
			return nil, fmt.Errorf("configuring tourism api transport: %w", err)
		}
		base = t
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout:   o.timeout,
			Transport: &loggingTransport{next: base, log: o.log},
		},
		log: o.log,
	}, nil
}

// FetchList retrieves all destinations. A listing with no places is reported
// as Empty; any transport, status or decoding failure as Error.
func (c *Client) FetchList(ctx context.Context) resource.APIResponse[[]Response] {
	var raw ListResponse
	if err := doGet(ctx, c.client, c.baseURL+listPath, &raw); err != nil {
		c.log.Error("tourism list fetch failed", "err", err)
		return resource.ErrorResponse[[]Response](err.Error())
	}

	if raw.Error {
		msg := raw.Message
		if msg == "" {
			msg = "tourism api reported an error"
		}
		c.log.Error("tourism api returned error envelope", "message", msg)
		return resource.ErrorResponse[[]Response](msg)
	}

	if len(raw.Places) == 0 {
		return resource.EmptyResponse[[]Response]()
	}

	return resource.SuccessResponse(raw.Places)
}
