// Package rebrickable searches LEGO sets by name through the Rebrickable API.
package rebrickable

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/brickbot/bricklink-telegram-bot/internal/catalog"
	"github.com/brickbot/bricklink-telegram-bot/internal/metrics"
)

const (
	ApiBaseUrl = "https://rebrickable.com/api/v3"
)

type ClientOpts struct {
	BaseURL string
	Key     string
	Metrics *metrics.Metrics
}

type Client struct {
	httpClient *resty.Client
	metrics    *metrics.Metrics
}

type setResult struct {
	SetNum string `json:"set_num"`
	Name   string `json:"name"`
	Year   int    `json:"year"`
}

type searchResponse struct {
	Count   int         `json:"count"`
	Results []setResult `json:"results"`
}

func NewClient(opts ClientOpts) *Client {
	baseURL := ApiBaseUrl
	if opts.BaseURL != "" {
		baseURL = opts.BaseURL
	}
	httpClient := resty.New().
		SetDebug(false).
		SetBaseURL(baseURL).
		SetTimeout(15*time.Second).
		SetHeaders(map[string]string{
			"Accept":        "application/json",
			"Authorization": "key " + opts.Key,
		})

	return &Client{httpClient: httpClient, metrics: opts.Metrics}
}

// SearchSets returns the sets whose name or number matches query.
func (c *Client) SearchSets(ctx context.Context, query string) ([]catalog.SearchHit, error) {
	result := &searchResponse{}

	start := time.Now()
	_, err := handleError(c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		SetQueryParam("search", query).
		Get("/lego/sets/"))
	status := "success"
	if err != nil {
		status = "error"
	}
	c.metrics.RecordUpstream("rebrickable", status, time.Since(start))
	if err != nil {
		return nil, err
	}

	hits := make([]catalog.SearchHit, 0, len(result.Results))
	for _, r := range result.Results {
		hits = append(hits, catalog.SearchHit{
			Kind:   catalog.KindSet,
			Number: r.SetNum,
			Name:   r.Name,
			Year:   r.Year,
		})
	}
	return hits, nil
}

// handleError is a generic error handler for failing response (>399 status
// code). Without this, failing responses would have nil error.
func handleError(res *resty.Response, err error) (*resty.Response, error) {
	if err != nil {
		return res, err
	}
	if res.IsError() {
		return res, fmt.Errorf("request failed: %s %s (status: %d)", res.Request.Method, res.Request.URL, res.StatusCode())
	}

	return res, nil
}
