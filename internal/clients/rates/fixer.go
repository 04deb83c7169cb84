package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const (
	baseParam      = "base"
	relativesParam = "symbols"
	apiKeyHeader   = "apikey"
)

type fixerConfig interface {
	SecondaryURL() string
	SecondaryApiKey() string
	TimeoutSeconds() int64
}

// FixerClient is the secondary provider, a fixer-compatible API behind an
// API key header.
type FixerClient struct {
	baseURL string
	apiKey  string
	local   string
	client  *http.Client
}

type fixerResponse struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	Success   bool               `json:"success"`
	Timestamp int64              `json:"timestamp"`
}

func NewFixer(config fixerConfig, localCurrency string) *FixerClient {
	return &FixerClient{
		baseURL: config.SecondaryURL(),
		apiKey:  config.SecondaryApiKey(),
		local:   localCurrency,
		client:  &http.Client{Timeout: time.Duration(config.TimeoutSeconds()) * time.Second},
	}
}

func (c *FixerClient) HistoricalRate(ctx context.Context, code, date string) (float64, error) {
	return c.fetch(ctx, date, code)
}

func (c *FixerClient) LatestRate(ctx context.Context, code string) (float64, error) {
	return c.fetch(ctx, latestPath, code)
}

func (c *FixerClient) fetch(ctx context.Context, path, code string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+path, nil)
	if err != nil {
		return 0, err
	}

	req.Header.Set(apiKeyHeader, c.apiKey)
	q := req.URL.Query()
	q.Add(baseParam, code)
	q.Add(relativesParam, c.local)
	req.URL.RawQuery = q.Encode()

	res, err := c.client.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "requesting rates")
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return 0, errors.Wrap(err, "reading response")
	}
	if res.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rates provider returned %d: %s", res.StatusCode, string(body))
	}

	resp := fixerResponse{}
	if err = json.Unmarshal(body, &resp); err != nil {
		return 0, errors.Wrap(err, "unmarshalling response")
	}
	if !resp.Success {
		return 0, errors.New("error from provider (success = false)")
	}

	rate, ok := resp.Rates[c.local]
	if !ok {
		return 0, fmt.Errorf("no %s rate in response for %s", c.local, code)
	}
	return rate, nil
}
