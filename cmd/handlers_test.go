package main

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/church-stats/attendance-cli/internal/store"
)

func newTestServer(t *testing.T) *server {
	t.Helper()
	dir := t.TempDir()

	st, err := store.NewSQLite(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	return &server{
		store:      st,
		reportsDir: filepath.Join(dir, "reports"),
		chartsDir:  filepath.Join(dir, "charts"),
	}
}

func reportBytes(t *testing.T, rows [][]string) []byte {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	require.NoError(t, err)
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func uploadReport(t *testing.T, srv *server, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("report", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/reports", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.handleUpload(rec, req)
	return rec
}

func TestHandleRegions_NoSnapshot(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.handleRegions(rec, httptest.NewRequest(http.MethodGet, "/api/regions", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleUpload_ThenQuery(t *testing.T) {
	srv := newTestServer(t)

	content := reportBytes(t, [][]string{
		{"大區", "主日", "小排"},
		{"東區", "120", "80"},
	})
	rec := uploadReport(t, srv, "週報～2024年3月17日.xlsx", content)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	srv.handleRegions(rec, httptest.NewRequest(http.MethodGet, "/api/regions", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var regions struct {
		Regions []string `json:"regions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &regions))
	assert.Contains(t, regions.Regions, "總計")
	assert.Contains(t, regions.Regions, "東區")
}

func TestHandleUpload_MissingFile(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/reports", nil)
	rec := httptest.NewRecorder()
	srv.handleUpload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUpload_UndatedFilenameIsFatalWhenAlone(t *testing.T) {
	srv := newTestServer(t)

	content := reportBytes(t, [][]string{
		{"大區", "主日"},
		{"東區", "120"},
	})
	rec := uploadReport(t, srv, "weekly.xlsx", content)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleRates(t *testing.T) {
	srv := newTestServer(t)

	content := reportBytes(t, [][]string{
		{"大區", "主日"},
		{"東區", "120"},
	})
	rec := uploadReport(t, srv, "週報～2024年3月17日.xlsx", content)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.handleRates(rec, httptest.NewRequest(http.MethodGet, "/api/rates?region=東區&base=100", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Rates []rateJSON `json:"rates"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Rates)

	assert.Equal(t, "主日", resp.Rates[0].Metric)
	assert.Equal(t, 120, resp.Rates[0].Latest)
	require.NotNil(t, resp.Rates[0].LatestRate)
	assert.InDelta(t, 20.0, *resp.Rates[0].LatestRate, 1e-9)
}

func TestHandleRates_ZeroBaseEncodesNull(t *testing.T) {
	srv := newTestServer(t)

	content := reportBytes(t, [][]string{
		{"大區", "主日"},
		{"東區", "120"},
	})
	rec := uploadReport(t, srv, "週報～2024年3月17日.xlsx", content)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.handleRates(rec, httptest.NewRequest(http.MethodGet, "/api/rates?region=東區&base=0", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Rates []rateJSON `json:"rates"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	for _, r := range resp.Rates {
		assert.Nil(t, r.LatestRate, r.Metric)
		assert.Nil(t, r.AverageRate, r.Metric)
	}
}

func TestHandleRates_InvalidBase(t *testing.T) {
	srv := newTestServer(t)

	content := reportBytes(t, [][]string{
		{"大區", "主日"},
		{"東區", "120"},
	})
	rec := uploadReport(t, srv, "週報～2024年3月17日.xlsx", content)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.handleRates(rec, httptest.NewRequest(http.MethodGet, "/api/rates?base=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleTimeSeries_UnknownRegion(t *testing.T) {
	srv := newTestServer(t)

	content := reportBytes(t, [][]string{
		{"大區", "主日"},
		{"東區", "120"},
	})
	rec := uploadReport(t, srv, "週報～2024年3月17日.xlsx", content)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.handleTimeSeries(rec, httptest.NewRequest(http.MethodGet, "/api/timeseries?region=南區", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		NoData bool `json:"no_data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.NoData)
}
