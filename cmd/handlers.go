package main

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/church-stats/attendance-cli/internal/report"
	"github.com/church-stats/attendance-cli/internal/store"
)

// server holds the dependencies of the upload and query handlers. The
// snapshot store is the only shared state; every query reads the latest
// saved corpus rather than anything cached in-process.
type server struct {
	store       store.Store
	reportsDir  string
	chartsDir   string
	defaultBase float64
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleRegions(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.latestSnapshot(w, r)
	if !ok {
		return
	}
	regions := append([]string{report.ScopeAll}, snap.Corpus.Regions()...)
	writeJSON(w, http.StatusOK, map[string]any{"regions": regions})
}

func (s *server) handleTimeSeries(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.latestSnapshot(w, r)
	if !ok {
		return
	}
	region := scopeParam(r)
	ts := report.BuildTimeSeries(snap.Corpus, region)
	if ts.Empty() {
		writeJSON(w, http.StatusOK, map[string]any{"region": region, "no_data": true})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"region": region, "series": ts})
}

func (s *server) handleRates(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.latestSnapshot(w, r)
	if !ok {
		return
	}

	base := s.defaultBase
	if raw := r.URL.Query().Get("base"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid base number"})
			return
		}
		base = parsed
	}

	region := scopeParam(r)
	ts := report.BuildTimeSeries(snap.Corpus, region)
	if ts.Empty() {
		writeJSON(w, http.StatusOK, map[string]any{"region": region, "no_data": true})
		return
	}

	rates := report.ComputeRates(ts, base)
	out := make([]rateJSON, len(rates))
	for i, rate := range rates {
		out[i] = newRateJSON(rate)
	}
	writeJSON(w, http.StatusOK, map[string]any{"region": region, "base": base, "rates": out})
}

// handleUpload accepts one report file, drops it into the reports
// directory, and re-runs the aggregation synchronously.
func (s *server) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("report")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing report file"})
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if name == "." || name == "/" || name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid filename"})
		return
	}

	if err := saveUpload(file, filepath.Join(s.reportsDir, name)); err != nil {
		zap.L().Error("upload: save failed", zap.String("file", name), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not store file"})
		return
	}

	corpus, err := refreshAnalysis(r.Context(), s.store, s.reportsDir, s.chartsDir)
	if err != nil {
		zap.L().Error("upload: aggregation failed", zap.Error(err))
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"file":  name,
		"rows":  len(corpus.Rows),
		"weeks": len(corpus.Weeks()),
	})
}

func (s *server) latestSnapshot(w http.ResponseWriter, r *http.Request) (*store.Snapshot, bool) {
	snap, err := s.store.Latest(r.Context())
	if eris.Is(err, store.ErrNoSnapshot) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no analysis has run yet"})
		return nil, false
	}
	if err != nil {
		zap.L().Error("snapshot load failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "snapshot load failed"})
		return nil, false
	}
	return snap, true
}

func scopeParam(r *http.Request) string {
	if region := r.URL.Query().Get("region"); region != "" {
		return region
	}
	return report.ScopeAll
}

func saveUpload(src io.Reader, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return eris.Wrap(err, "upload: create reports dir")
	}
	out, err := os.Create(dst)
	if err != nil {
		return eris.Wrap(err, "upload: create file")
	}
	defer out.Close()
	if _, err := io.Copy(out, src); err != nil {
		return eris.Wrap(err, "upload: write file")
	}
	return nil
}

// rateJSON mirrors report.Rate with NaN rates encoded as null, since JSON
// has no NaN.
type rateJSON struct {
	Metric      string   `json:"metric"`
	Latest      int      `json:"latest"`
	Average     float64  `json:"average"`
	LatestRate  *float64 `json:"latest_rate"`
	AverageRate *float64 `json:"average_rate"`
}

func newRateJSON(r report.Rate) rateJSON {
	return rateJSON{
		Metric:      r.Metric,
		Latest:      r.Latest,
		Average:     r.Average,
		LatestRate:  nanToNull(r.LatestRate),
		AverageRate: nanToNull(r.AverageRate),
	}
}

func nanToNull(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
