package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/cycles/internal/domain"
	"github.com/pbaille/cycles/internal/store"
)

const exportBody = `{"data": [
  {"day": "2024-01-01T00:00:00Z", "period": "heavy"},
  {"day": "2024-01-02T00:00:00Z", "period": "medium"},
  {"day": "2024-01-03T00:00:00Z", "period": "spotting"},
  {"day": "2024-01-10T00:00:00Z", "mood": ["happy"]},
  {"day": "2024-01-20T00:00:00Z", "period": "light"},
  {"day": "2024-02-17T00:00:00Z", "period": "heavy"}
]}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "cycles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	s := New(st, ":0", "Test Report")
	s.now = func() time.Time { return time.Date(2024, 2, 20, 9, 0, 0, 0, time.UTC) }

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postImport(t *testing.T, srv *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/imports?source=test.json", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func getJSON(t *testing.T, srv *httptest.Server, path string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	var body map[string]string
	assert.Equal(t, http.StatusOK, getJSON(t, srv, "/health", &body))
	assert.Equal(t, "ok", body["status"])
}

func TestImportAndAnalyze(t *testing.T) {
	srv := newTestServer(t)

	resp := postImport(t, srv, exportBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var imported ImportResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&imported))
	assert.Equal(t, "test.json", imported.Import.Source)
	assert.Equal(t, 5, imported.Import.Entries)
	assert.Equal(t, 1, imported.Import.Discarded)
	assert.Equal(t, 2, imported.Cycles)

	var cycles struct {
		Cycles  []domain.Cycle `json:"cycles"`
		Current *domain.Cycle  `json:"current_cycle"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/cycles", &cycles))
	require.Len(t, cycles.Cycles, 2)
	assert.Equal(t, 19, *cycles.Cycles[0].CycleLength)
	assert.Equal(t, 2, cycles.Cycles[0].PeriodLength)
	assert.Equal(t, 28, *cycles.Cycles[1].CycleLength)

	var stats domain.Stats
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/stats", &stats))
	assert.Equal(t, 2, stats.NumCycles)
	assert.Equal(t, 28, stats.MaxCycleLength)
	assert.Equal(t, 23.5, stats.AverageCycleLength)

	var current struct {
		Current    domain.Cycle      `json:"current_cycle"`
		Prediction domain.Prediction `json:"prediction"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/cycles/current", &current))
	assert.Equal(t, time.Date(2024, 2, 17, 0, 0, 0, 0, time.UTC), current.Current.StartDate)
	assert.Equal(t, 4, current.Prediction.CycleDay)

	csvResp, err := http.Get(srv.URL + "/export.csv")
	require.NoError(t, err)
	defer csvResp.Body.Close()
	assert.Equal(t, http.StatusOK, csvResp.StatusCode)
	assert.Equal(t, "text/csv", csvResp.Header.Get("Content-Type"))

	reportResp, err := http.Get(srv.URL + "/report")
	require.NoError(t, err)
	defer reportResp.Body.Close()
	assert.Equal(t, http.StatusOK, reportResp.StatusCode)
}

func TestImportRejectsWholeBatch(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusCreated, postImport(t, srv, exportBody).StatusCode)

	resp := postImport(t, srv, `{"data": [
		{"day": "2024-03-01", "period": "heavy"},
		{"day": "2024-03-02", "period": "very heavy"}
	]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var entries struct {
		Entries []domain.Entry `json:"entries"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/entries", &entries))
	assert.Len(t, entries.Entries, 5)

	assert.Equal(t, http.StatusBadRequest, postImport(t, srv, "not json").StatusCode)
}

func TestStatsWithoutCompleteCycles(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusCreated, postImport(t, srv, `{"data": [{"day": "2024-02-01", "period": "light"}]}`).StatusCode)

	var body map[string]string
	assert.Equal(t, http.StatusUnprocessableEntity, getJSON(t, srv, "/stats", &body))
	assert.Contains(t, body["error"], "not enough data yet")

	var current map[string]interface{}
	assert.Equal(t, http.StatusOK, getJSON(t, srv, "/cycles/current", &current))
	assert.NotNil(t, current["current_cycle"])
	assert.Nil(t, current["prediction"])

	assert.Equal(t, http.StatusUnprocessableEntity, getJSON(t, srv, "/export.csv", nil))
}

func TestCurrentCycleWithoutImport(t *testing.T) {
	srv := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv, "/cycles/current", nil))
}
