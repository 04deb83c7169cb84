package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kakeibo-dev/ledger/internal/entity/record"
	"github.com/kakeibo-dev/ledger/internal/model/customerr"
	"github.com/kakeibo-dev/ledger/internal/model/ledger"
	"github.com/kakeibo-dev/ledger/internal/model/storage"
)

type stubServerConfig struct{}

func (stubServerConfig) Port() int { return 8080 }

type stubStoreConfig struct{}

func (stubStoreConfig) LocalCurrency() string { return "JPY" }

type fakeResolver struct {
	rate float64
	err  error
}

func (r fakeResolver) ResolveRate(context.Context, string, string) (float64, error) {
	return r.rate, r.err
}

func newTestServer(resolver rateResolver) *Server {
	store := ledger.NewStore(context.Background(), stubStoreConfig{}, storage.NewInMemStorage())
	return New(stubServerConfig{}, store, resolver, nil)
}

func postForm(s *Server, method, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res := httptest.NewRecorder()
	s.engine.ServeHTTP(res, req)
	return res
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	res := httptest.NewRecorder()
	s.engine.ServeHTTP(res, httptest.NewRequest(http.MethodGet, path, nil))
	return res
}

func Test_OnCreateRecord_ShouldPersistAndReturnIt(t *testing.T) {
	srv := newTestServer(fakeResolver{rate: 1})

	res := postForm(srv, http.MethodPost, "/api/records", url.Values{
		"date":     {"2025-01-15"},
		"category": {"food"},
		"amount":   {"900"},
		"memo":     {"lunch"},
	})
	require.Equal(t, http.StatusCreated, res.Code)

	var created record.Record
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, record.TypeExpense, created.Type)

	res = get(srv, "/api/records")
	require.Equal(t, http.StatusOK, res.Code)
	var listed []record.Record
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &listed))
	assert.Len(t, listed, 1)
}

func Test_OnCreateWithBadAmount_ShouldReturnBadRequest(t *testing.T) {
	srv := newTestServer(fakeResolver{rate: 1})

	res := postForm(srv, http.MethodPost, "/api/records", url.Values{
		"date":     {"2025-01-15"},
		"category": {"food"},
		"amount":   {"not-a-number"},
	})

	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func Test_OnUpdateMissingRecord_ShouldReturnNotFound(t *testing.T) {
	srv := newTestServer(fakeResolver{rate: 1})

	res := postForm(srv, http.MethodPut, "/api/records/nope", url.Values{
		"date":     {"2025-01-15"},
		"category": {"food"},
		"amount":   {"900"},
	})

	assert.Equal(t, http.StatusNotFound, res.Code)
}

func Test_OnDeleteMissingRecord_ShouldReturnNotFound(t *testing.T) {
	srv := newTestServer(fakeResolver{rate: 1})

	res := httptest.NewRecorder()
	srv.engine.ServeHTTP(res, httptest.NewRequest(http.MethodDelete, "/api/records/nope", nil))

	assert.Equal(t, http.StatusNotFound, res.Code)
}

func Test_OnDeleteRecord_ShouldReturnNoContent(t *testing.T) {
	srv := newTestServer(fakeResolver{rate: 1})
	res := postForm(srv, http.MethodPost, "/api/records", url.Values{
		"date": {"2025-01-15"}, "category": {"food"}, "amount": {"900"},
	})
	require.Equal(t, http.StatusCreated, res.Code)
	var created record.Record
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &created))

	res = httptest.NewRecorder()
	srv.engine.ServeHTTP(res, httptest.NewRequest(http.MethodDelete, "/api/records/"+created.ID, nil))

	assert.Equal(t, http.StatusNoContent, res.Code)
	assert.Empty(t, srv.store.List(ledger.Filter{}))
}

func Test_OnExportCSV_ShouldReturnHeaderAndRows(t *testing.T) {
	srv := newTestServer(fakeResolver{rate: 1})
	res := postForm(srv, http.MethodPost, "/api/records", url.Values{
		"date": {"2025-01-15"}, "category": {"food"}, "amount": {"900"},
	})
	require.Equal(t, http.StatusCreated, res.Code)

	res = get(srv, "/api/export/csv")

	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Header().Get("Content-Type"), "text/csv")
	lines := strings.Split(strings.TrimRight(res.Body.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, ledger.Header, lines[0])
}

func Test_OnRateLookup_ShouldReturnResolvedRate(t *testing.T) {
	srv := newTestServer(fakeResolver{rate: 150.5})

	res := get(srv, "/api/rates/USD?date=2025-02-01")

	require.Equal(t, http.StatusOK, res.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, "USD", body["currency"])
	assert.Equal(t, "2025-02-01", body["date"])
	assert.Equal(t, 150.5, body["rate"])
}

func Test_OnRateUnavailable_ShouldReturnBadGateway(t *testing.T) {
	srv := newTestServer(fakeResolver{err: &customerr.RateUnavailableError{
		Currency: "USD", Date: "2025-02-01", Err: errors.New("all providers down"),
	}})

	res := get(srv, "/api/rates/USD")

	assert.Equal(t, http.StatusBadGateway, res.Code)
}

func Test_OnMonthlyReport_ShouldReturnTotalsForRequestedMonth(t *testing.T) {
	srv := newTestServer(fakeResolver{rate: 1})
	res := postForm(srv, http.MethodPost, "/api/records", url.Values{
		"date": {"2025-01-05"}, "category": {"salary"}, "amount": {"300000"},
	})
	require.Equal(t, http.StatusCreated, res.Code)
	res = postForm(srv, http.MethodPost, "/api/records", url.Values{
		"date": {"2025-01-15"}, "category": {"food"}, "amount": {"900"},
	})
	require.Equal(t, http.StatusCreated, res.Code)

	res = get(srv, "/api/reports/monthly?month=2025-01")

	require.Equal(t, http.StatusOK, res.Code)
	var body struct {
		Month  string        `json:"month"`
		Totals ledger.Totals `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, "2025-01", body.Month)
	assert.EqualValues(t, 300000, body.Totals.Income)
	assert.EqualValues(t, 900, body.Totals.Expense)
	assert.EqualValues(t, 299100, body.Totals.Net)
}

func Test_OnUploadWithoutGateway_ShouldReturnBadGateway(t *testing.T) {
	srv := newTestServer(fakeResolver{rate: 1})

	body := &strings.Builder{}
	body.WriteString("--boundary\r\n")
	body.WriteString("Content-Disposition: form-data; name=\"date\"\r\n\r\n2025-01-15\r\n")
	body.WriteString("--boundary\r\n")
	body.WriteString("Content-Disposition: form-data; name=\"category\"\r\n\r\nfood\r\n")
	body.WriteString("--boundary\r\n")
	body.WriteString("Content-Disposition: form-data; name=\"amount\"\r\n\r\n900\r\n")
	body.WriteString("--boundary\r\n")
	body.WriteString("Content-Disposition: form-data; name=\"file\"; filename=\"receipt.pdf\"\r\n")
	body.WriteString("Content-Type: application/pdf\r\n\r\npdf-bytes\r\n")
	body.WriteString("--boundary--\r\n")

	req := httptest.NewRequest(http.MethodPost, "/api/records", strings.NewReader(body.String()))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=boundary")
	res := httptest.NewRecorder()
	srv.engine.ServeHTTP(res, req)

	assert.Equal(t, http.StatusBadGateway, res.Code)
	assert.Empty(t, srv.store.List(ledger.Filter{}))
}
