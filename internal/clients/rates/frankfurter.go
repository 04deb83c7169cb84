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
	latestPath = "latest"
	fromParam  = "from"
	toParam    = "to"
)

type frankfurterConfig interface {
	PrimaryURL() string
	TimeoutSeconds() int64
}

// FrankfurterClient fetches rates towards the local currency from a
// frankfurter-compatible API. Historical lookups use the dated endpoint
// /{YYYY-MM-DD}, latest lookups /latest.
type FrankfurterClient struct {
	baseURL string
	local   string
	client  *http.Client
}

type frankfurterResponse struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

func NewFrankfurter(config frankfurterConfig, localCurrency string) *FrankfurterClient {
	return &FrankfurterClient{
		baseURL: config.PrimaryURL(),
		local:   localCurrency,
		client:  &http.Client{Timeout: time.Duration(config.TimeoutSeconds()) * time.Second},
	}
}

// HistoricalRate returns the code->local rate effective on date (YYYY-MM-DD).
func (c *FrankfurterClient) HistoricalRate(ctx context.Context, code, date string) (float64, error) {
	return c.fetch(ctx, date, code)
}

// LatestRate returns the most recent code->local rate.
func (c *FrankfurterClient) LatestRate(ctx context.Context, code string) (float64, error) {
	return c.fetch(ctx, latestPath, code)
}

func (c *FrankfurterClient) fetch(ctx context.Context, path, code string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+path, nil)
	if err != nil {
		return 0, err
	}

	q := req.URL.Query()
	q.Add(fromParam, code)
	q.Add(toParam, c.local)
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

	resp := frankfurterResponse{}
	if err = json.Unmarshal(body, &resp); err != nil {
		return 0, errors.Wrap(err, "unmarshalling response")
	}

	rate, ok := resp.Rates[c.local]
	if !ok {
		return 0, fmt.Errorf("no %s rate in response for %s", c.local, code)
	}
	return rate, nil
}
