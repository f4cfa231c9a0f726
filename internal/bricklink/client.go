// Package bricklink is the OAuth1 signed client of the BrickLink store API.
package bricklink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/brickbot/bricklink-telegram-bot/internal/catalog"
	"github.com/brickbot/bricklink-telegram-bot/internal/metrics"
)

const (
	ApiBaseUrl = "https://api.bricklink.com/api/store/v1/"

	// DefaultRatePerSecond keeps a busy bot well below the daily API quota.
	DefaultRatePerSecond = 2
	DefaultBurst         = 5
)

// Credentials are the four OAuth1 values issued on the API access page.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	TokenSecret    string
}

type ClientOpts struct {
	BaseURL       string
	Credentials   Credentials
	RatePerSecond float64
	Burst         int
	Timeout       time.Duration
	Metrics       *metrics.Metrics
}

// Client implements catalog.Gateway.
type Client struct {
	httpClient *resty.Client
	limiter    *rate.Limiter
	metrics    *metrics.Metrics
}

var _ catalog.Gateway = (*Client)(nil)

func NewClient(opts ClientOpts) *Client {
	baseURL := ApiBaseUrl
	if opts.BaseURL != "" {
		baseURL = opts.BaseURL
	}
	ratePerSecond := opts.RatePerSecond
	if ratePerSecond <= 0 {
		ratePerSecond = DefaultRatePerSecond
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = DefaultBurst
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	creds := opts.Credentials
	config := oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret)
	signed := config.Client(oauth1.NoContext, oauth1.NewToken(creds.AccessToken, creds.TokenSecret))

	httpClient := resty.NewWithClient(signed).
		SetDebug(false).
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(ratePerSecond), burst),
		metrics:    opts.Metrics,
	}
}

type meta struct {
	Code        int    `json:"code"`
	Message     string `json:"message"`
	Description string `json:"description"`
}

type envelope struct {
	Meta *meta           `json:"meta"`
	Data json.RawMessage `json:"data"`
}

// Get performs a signed GET on path and returns the data member of the
// response envelope.
func (c *Client) Get(ctx context.Context, path string, params map[string]string) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	start := time.Now()
	res, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(path)
	if err != nil {
		c.metrics.RecordUpstream("bricklink", "error", time.Since(start))
		return nil, fmt.Errorf("request failed: GET %s: %w", path, err)
	}

	data, err := parseEnvelope(res.Body(), res.StatusCode())
	c.metrics.RecordUpstream("bricklink", statusLabel(err), time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	return data, nil
}

func parseEnvelope(body []byte, status int) (json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil || env.Meta == nil {
		return nil, &APIError{Code: status, Message: "INVALID_RESPONSE", Description: "no meta in response"}
	}
	switch env.Meta.Code {
	case 200, 201, 204:
		return env.Data, nil
	}
	return nil, &APIError{Code: env.Meta.Code, Message: env.Meta.Message, Description: env.Meta.Description}
}

func statusLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case isNotFound(err):
		return "not_found"
	default:
		return "error"
	}
}
