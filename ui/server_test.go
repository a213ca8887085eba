package ui

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"gotally/adapters/blobstore"
	"gotally/adapters/codec"
	"gotally/adapters/coercer"
	"gotally/adapters/excel"
	"gotally/app"
	"gotally/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const salesCSV = "category,amount\nA,10\nA,20\nB,30\nB,40\n"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T, dir string) *Server {
	t.Helper()
	store, err := blobstore.NewLocalBlobStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	c := codec.New(true)
	config := app.NewConfigurationService(codec.NewSelectionRepository(store, c), coercer.NewZeroFill(), nil)
	services := Services{
		Datasets:      app.NewDatasetService(excel.NewDataReader(nil), codec.NewDatasetRepository(store, c), 5, nil),
		Configuration: config,
		Dashboard:     app.NewDashboardService(config, nil),
		Analysis:      app.NewAnalysisService(nil),
		Query:         app.NewQueryService(),
	}
	return NewServer(services, session.New(), nil)
}

func do(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func upload(t *testing.T, s *Server, path, filename, content string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, t.TempDir())
	w := do(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestNoDatasetResponses(t *testing.T) {
	s := newTestServer(t, t.TempDir())

	w := do(t, s, http.MethodGet, "/api/dataset", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodGet, "/api/config", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view app.ConfigView
	decode(t, w, &view)
	assert.Equal(t, []string{app.WarningNoDataset}, view.Warnings)

	w = do(t, s, http.MethodPost, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var dash app.DashboardView
	decode(t, w, &dash)
	assert.Equal(t, []string{app.WarningNotConfigured}, dash.Warnings)
}

func TestDashboardFlow(t *testing.T) {
	dir := t.TempDir()
	s := newTestServer(t, dir)

	w := upload(t, s, "/api/dataset/sheets", "ventas.csv", salesCSV, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"sheets":["csv"]}`, w.Body.String())

	w = upload(t, s, "/api/dataset", "ventas.csv", salesCSV, map[string]string{"header_row": "1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var loaded app.LoadResult
	decode(t, w, &loaded)
	assert.Equal(t, 4, loaded.RowCount)

	w = do(t, s, http.MethodPut, "/api/config", map[string]interface{}{
		"sum_fields":     []string{"amount"},
		"count_fields":   []string{"amount"},
		"average_fields": []string{"amount"},
		"save":           true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, s, http.MethodPost, "/api/dashboard", map[string]interface{}{
		"filters": []map[string]interface{}{{"field": "category", "values": []string{"B"}}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var dash app.DashboardView
	decode(t, w, &dash)
	require.Len(t, dash.Sums, 1)
	assert.Equal(t, int64(70), dash.Sums[0].Value)
	assert.Equal(t, int64(35), dash.Averages[0].Value)

	w = do(t, s, http.MethodPost, "/api/analysis", map[string]interface{}{
		"categorical_field": "category",
		"values":            []string{"A", "B"},
		"numeric_field":     "amount",
		"operations":        []string{"sum", "count", "average"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"label":"Sum of amount"`)
	assert.Contains(t, w.Body.String(), `"display":"100"`)

	w = do(t, s, http.MethodPost, "/api/query", map[string]interface{}{"field": "category", "value": "A"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"record_count":2`)

	w = do(t, s, http.MethodPost, "/api/dashboard/report?format=md", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "# Dashboard"))

	// A fresh server over the same store restores the dataset and configuration
	restarted := newTestServer(t, dir)
	w = do(t, restarted, http.MethodPost, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &dash)
	assert.Equal(t, int64(100), dash.Sums[0].Value)

	w = do(t, restarted, http.MethodDelete, "/api/config", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"saved":false`)

	w = do(t, restarted, http.MethodPost, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cleared app.DashboardView
	decode(t, w, &cleared)
	assert.False(t, cleared.Configured)
	assert.Equal(t, []string{app.WarningNotConfigured}, cleared.Warnings)
}

func TestBadRequests(t *testing.T) {
	s := newTestServer(t, t.TempDir())

	w := do(t, s, http.MethodPost, "/api/dataset", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = upload(t, s, "/api/dataset", "ventas.csv", salesCSV, map[string]string{"header_row": "zero"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = upload(t, s, "/api/dataset", "broken.xlsx", "not a workbook", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"INVALID_INPUT"`)

	upload(t, s, "/api/dataset", "ventas.csv", salesCSV, nil)
	w = do(t, s, http.MethodGet, "/api/dashboard/choices?field=nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPost, "/api/dashboard", map[string]interface{}{
		"filters": []map[string]interface{}{
			{"field": "category", "values": []string{"A"}},
			{"field": "amount", "values": []int{10}},
			{"field": "category", "values": []string{"B"}},
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
