package http_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	httpadapter "github.com/couchcryptid/forecast-report-service/internal/adapter/http"
	"github.com/couchcryptid/forecast-report-service/internal/domain"
	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockForecaster struct {
	forecasts []domain.DailyForecast
	err       error
}

func (m *mockForecaster) DailyForecasts(_ context.Context, _ string) ([]domain.DailyForecast, error) {
	return m.forecasts, m.err
}

type mockArchive struct {
	reports map[string]domain.ArchivedReport
	err     error
}

func (m *mockArchive) Latest(_ context.Context, key string) (domain.ArchivedReport, error) {
	if m.err != nil {
		return domain.ArchivedReport{}, m.err
	}
	r, ok := m.reports[key]
	if !ok {
		return domain.ArchivedReport{}, domain.ErrReportNotFound
	}
	return r, nil
}

func newTestServer(readyErr error, opts ...httpadapter.Option) *httpadapter.Server {
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, slog.Default(), opts...)
}

func serve(srv *httpadapter.Server, method, target string, body []byte) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	srv.ServeHTTP(rec, req)
	return rec
}

func testdata(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "domain", "testdata", name))
	require.NoError(t, err)
	return data
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthzReturns200(t *testing.T) {
	rec := serve(newTestServer(nil), http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeBody(t, rec)["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := serve(newTestServer(nil), http.MethodGet, "/readyz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decodeBody(t, rec)["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := serve(newTestServer(fmt.Errorf("not ready yet")), http.MethodGet, "/readyz", nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "not ready yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(newTestServer(nil), http.MethodGet, "/metrics", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestReport_DefaultModeIsLegacy(t *testing.T) {
	rec := serve(newTestServer(nil), http.MethodPost, "/api/v1/report", testdata(t, "forecast_5days_mixed.json"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ReportContentType, rec.Header().Get("Content-Type"))
	if diff := cmp.Diff(string(testdata(t, "forecast_5days_mixed_legacy.txt")), rec.Body.String()); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestReport_FixMaxQuery(t *testing.T) {
	srv := newTestServer(nil)
	doc := testdata(t, "forecast_5days_mixed.json")

	rec := serve(srv, http.MethodPost, "/api/v1/report?fix_max=true", doc)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(testdata(t, "forecast_5days_mixed_corrected.txt")), rec.Body.String())

	// fix_max=false overrides a corrected server default.
	srv = newTestServer(nil, httpadapter.WithReportMode(domain.MaxTemperatureCorrected))
	rec = serve(srv, http.MethodPost, "/api/v1/report?fix_max=false", doc)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(testdata(t, "forecast_5days_mixed_legacy.txt")), rec.Body.String())
}

func TestReport_ServerModeOption(t *testing.T) {
	srv := newTestServer(nil, httpadapter.WithReportMode(domain.MaxTemperatureCorrected))
	rec := serve(srv, http.MethodPost, "/api/v1/report", testdata(t, "forecast_5days_mixed.json"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(testdata(t, "forecast_5days_mixed_corrected.txt")), rec.Body.String())
}

func TestReport_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		body    string
		message string
	}{
		{"invalid fix_max", "/api/v1/report?fix_max=maybe", `{}`, "fix_max"},
		{"malformed json", "/api/v1/report", `{nope`, "decode forecast document"},
		{"missing field", "/api/v1/report", `{"Headline": {}}`, "DailyForecasts"},
		{"empty input", "/api/v1/report", `{"DailyForecasts": []}`, domain.ErrEmptyInput.Error()},
		{
			"offset-less date",
			"/api/v1/report",
			`{"DailyForecasts": [{"Date": "2020-06-19T07:00:00", "Temperature": {"Minimum": {"Value": 1, "Unit": "C"}, "Maximum": {"Value": 2, "Unit": "C"}}, "Day": {"LongPhrase": "a", "RainProbability": 1}, "Night": {"LongPhrase": "b", "RainProbability": 2}}]}`,
			"2020-06-19T07:00:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(newTestServer(nil), http.MethodPost, tt.target, []byte(tt.body))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Contains(t, decodeBody(t, rec)["error"], tt.message)
		})
	}
}

func TestReport_BodyTooLarge(t *testing.T) {
	body := bytes.Repeat([]byte(" "), 1<<20+1)
	rec := serve(newTestServer(nil), http.MethodPost, "/api/v1/report", body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "too large")
}

func TestReport_BodyReadFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/report", iotest.ErrReader(errors.New("connection reset")))
	newTestServer(nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "connection reset")
}

func TestReport_MethodNotAllowed(t *testing.T) {
	rec := serve(newTestServer(nil), http.MethodGet, "/api/v1/report", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSeries_Temperature(t *testing.T) {
	rec := serve(newTestServer(nil), http.MethodPost, "/api/v1/series", testdata(t, "forecast_5days_mixed.json"))
	require.Equal(t, http.StatusOK, rec.Code)

	var series domain.TemperatureSeries
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &series))
	assert.Len(t, series.Days, 5)
	assert.Equal(t, []float64{8.3, -10.3, 10, -12.8, 7.2}, series.Minimum)
	assert.Equal(t, []float64{15.6, -6.1, -5.3, 17.8, 14.4}, series.Maximum)
}

func TestSeries_RealFeel(t *testing.T) {
	rec := serve(newTestServer(nil), http.MethodPost, "/api/v1/series?realfeel=true", testdata(t, "forecast_5days_mixed.json"))
	require.Equal(t, http.StatusOK, rec.Code)

	var series domain.RealFeelSeries
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &series))
	assert.Equal(t, []float64{5.6, 4.4, 8.3, 7.2, 3.9}, series.RealFeel)
	assert.Equal(t, []float64{6.7, 6.1, 9.4, 7.8, 5}, series.RealFeelShade)
}

func TestSeries_RealFeelMissing(t *testing.T) {
	doc := `{"DailyForecasts": [{"Date": "2020-06-19T07:00:00+08:00", "Temperature": {"Minimum": {"Value": 1, "Unit": "C"}, "Maximum": {"Value": 2, "Unit": "C"}}, "Day": {"LongPhrase": "a", "RainProbability": 1}, "Night": {"LongPhrase": "b", "RainProbability": 2}}]}`
	rec := serve(newTestServer(nil), http.MethodPost, "/api/v1/series?realfeel=true", []byte(doc))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "RealFeelTemperature.Minimum")
}

func TestForecastReport(t *testing.T) {
	forecasts, err := domain.ParseForecastDocument(testdata(t, "forecast_5days_mixed.json"))
	require.NoError(t, err)

	t.Run("renders provider forecast", func(t *testing.T) {
		srv := newTestServer(nil, httpadapter.WithForecaster(&mockForecaster{forecasts: forecasts}))
		rec := serve(srv, http.MethodGet, "/api/v1/forecast/349727/report", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, strings.HasPrefix(rec.Body.String(), "5 Day Overview\n"))
	})

	t.Run("provider error", func(t *testing.T) {
		srv := newTestServer(nil, httpadapter.WithForecaster(&mockForecaster{err: errors.New("status 503")}))
		rec := serve(srv, http.MethodGet, "/api/v1/forecast/349727/report", nil)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("no forecast", func(t *testing.T) {
		srv := newTestServer(nil, httpadapter.WithForecaster(&mockForecaster{}))
		rec := serve(srv, http.MethodGet, "/api/v1/forecast/349727/report", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("route absent without forecaster", func(t *testing.T) {
		rec := serve(newTestServer(nil), http.MethodGet, "/api/v1/forecast/349727/report", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestArchivedReport(t *testing.T) {
	generated := time.Date(2020, time.June, 18, 23, 0, 0, 0, time.UTC)
	archive := &mockArchive{reports: map[string]domain.ArchivedReport{
		"349727": {Key: "349727", GeneratedAt: generated, DayCount: 5, Body: "5 Day Overview\n"},
	}}

	t.Run("found", func(t *testing.T) {
		rec := serve(newTestServer(nil, httpadapter.WithArchive(archive)), http.MethodGet, "/api/v1/reports/349727", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "5 Day Overview\n", rec.Body.String())
		assert.Equal(t, "2020-06-18T23:00:00Z", rec.Header().Get("X-Report-Generated-At"))
		assert.Equal(t, "5", rec.Header().Get("X-Report-Day-Count"))
	})

	t.Run("not found", func(t *testing.T) {
		rec := serve(newTestServer(nil, httpadapter.WithArchive(archive)), http.MethodGet, "/api/v1/reports/328328", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("lookup error", func(t *testing.T) {
		srv := newTestServer(nil, httpadapter.WithArchive(&mockArchive{err: errors.New("database is locked")}))
		rec := serve(srv, http.MethodGet, "/api/v1/reports/349727", nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "archive lookup failed", decodeBody(t, rec)["error"])
	})

	t.Run("route absent without archive", func(t *testing.T) {
		rec := serve(newTestServer(nil), http.MethodGet, "/api/v1/reports/349727", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
