package flutterwave

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"fxvps/platform/internal/retry"

	"github.com/andybalholm/brotli"
)

type Config struct {
	APIURL    string
	SecretKey string
	Retry     retry.Policy
}

type Client struct {
	client *http.Client
	config Config
}

func NewClient(cfg Config) *Client {
	if cfg.Retry.Attempts == 0 {
		cfg.Retry = retry.Default
	}
	return &Client{
		client: &http.Client{
			Transport: &AuthTransport{
				SecretKey: cfg.SecretKey,
				Base:      http.DefaultTransport,
			},
			Timeout: 10 * time.Second,
		},
		config: cfg,
	}
}

// AuthTransport adds the bearer secret key to every request.
type AuthTransport struct {
	SecretKey string
	Base      http.RoundTripper
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+t.SecretKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "br")
	return t.Base.RoundTrip(req)
}

// VerifyTransaction fetches the authoritative state of a charge.
func (c *Client) VerifyTransaction(ctx context.Context, id string) (*Transaction, error) {
	if id == "" {
		return nil, errors.New("transaction id is required")
	}

	var tx *Transaction
	err := retry.Do(ctx, c.config.Retry, func(ctx context.Context) error {
		var err error
		tx, err = c.verify(ctx, id)
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.IsRetryable() {
			return retry.Permanent(err)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("verify transaction %s: %w", id, err)
	}
	return tx, nil
}

func (c *Client) verify(ctx context.Context, id string) (*Transaction, error) {
	endpoint := fmt.Sprintf("%s/transactions/%s/verify", c.config.APIURL, url.PathEscape(id))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.Header.Get("Content-Encoding") == "br" {
		resp.Body = &readCloserWrapper{Reader: brotli.NewReader(resp.Body), Closer: resp.Body}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return nil, apiErr
	}

	var out verifyResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	if out.Status != "success" || out.Data == nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Status: out.Status, Message: out.Message}
	}

	return out.Data, nil
}

type readCloserWrapper struct {
	io.Reader
	io.Closer
}

func (r *readCloserWrapper) Read(p []byte) (n int, err error) {
	return r.Reader.Read(p)
}

func (r *readCloserWrapper) Close() error {
	return r.Closer.Close()
}
