package rates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFrankfurterConfig struct {
	url string
}

func (s stubFrankfurterConfig) PrimaryURL() string    { return s.url }
func (s stubFrankfurterConfig) TimeoutSeconds() int64 { return 5 }

func Test_OnHistoricalRate_ShouldHitDatedEndpointWithConversionPair(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2025-02-01", r.URL.Path)
		assert.Equal(t, "USD", r.URL.Query().Get("from"))
		assert.Equal(t, "JPY", r.URL.Query().Get("to"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"USD","date":"2025-02-01","rates":{"JPY":150.5}}`))
	}))
	defer server.Close()

	client := NewFrankfurter(stubFrankfurterConfig{url: server.URL}, "JPY")
	rate, err := client.HistoricalRate(context.Background(), "USD", "2025-02-01")

	require.NoError(t, err)
	assert.Equal(t, 150.5, rate)
}

func Test_OnLatestRate_ShouldHitLatestEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest", r.URL.Path)
		_, _ = w.Write([]byte(`{"base":"EUR","rates":{"JPY":161.2}}`))
	}))
	defer server.Close()

	client := NewFrankfurter(stubFrankfurterConfig{url: server.URL}, "JPY")
	rate, err := client.LatestRate(context.Background(), "EUR")

	require.NoError(t, err)
	assert.Equal(t, 161.2, rate)
}

func Test_OnProviderError_ShouldReturnErrorWithStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewFrankfurter(stubFrankfurterConfig{url: server.URL}, "JPY")
	_, err := client.HistoricalRate(context.Background(), "XXX", "2025-02-01")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func Test_OnResponseWithoutLocalRate_ShouldReturnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"base":"USD","rates":{"EUR":0.9}}`))
	}))
	defer server.Close()

	client := NewFrankfurter(stubFrankfurterConfig{url: server.URL}, "JPY")
	_, err := client.LatestRate(context.Background(), "USD")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no JPY rate")
}
