package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meenmo/credlib/batch"
	"github.com/meenmo/credlib/journal"
	"github.com/meenmo/credlib/metrics"
	"github.com/meenmo/credlib/report"
	"github.com/meenmo/credlib/scenario"
	"github.com/meenmo/credlib/utils"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "credlib",
		"journal": s.journal != nil,
	})
}

// handlePrice prices every scenario in a YAML or JSON body. The response status is 200 only when
// every scenario priced; failures are reported per scenario with status 422.
func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "too_large", err.Error())
			return
		}
		s.writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	scenarios, err := scenario.Parse(body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "bad_scenario", err.Error())
		return
	}

	jobs := make([]batch.Job, len(scenarios))
	for i, sc := range scenarios {
		data, err := sc.PricingData()
		if err != nil {
			s.writeError(w, http.StatusUnprocessableEntity, metrics.Outcome(err), err.Error())
			return
		}
		jobs[i] = batch.Job{Name: sc.Name, Data: data}
	}

	outcomes := s.runner.Run(r.Context(), jobs)

	status := http.StatusOK
	runs := make([]map[string]any, len(outcomes))
	for i, o := range outcomes {
		if o.Err != nil {
			status = http.StatusUnprocessableEntity
			runs[i] = map[string]any{
				"name":  o.Name,
				"error": o.Err.Error(),
				"kind":  metrics.Outcome(o.Err),
			}
			continue
		}
		doc := report.Run(o.Name, o.Data.ValDate, o.Data.Spec, o.Result)
		if o.RunID != "" {
			doc["run_id"] = o.RunID
		}
		runs[i] = doc
	}

	s.writeJSON(w, status, map[string]any{
		report.KeySchemaVersion: report.SchemaVersion,
		"runs":                  runs,
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		s.writeError(w, http.StatusServiceUnavailable, "journal_disabled", "run journal is not enabled")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, "bad_request", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	runs, err := s.journal.ListRuns(r.Context(), r.URL.Query().Get("issuer"), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("list runs")
		s.writeError(w, http.StatusInternalServerError, "journal_error", err.Error())
		return
	}

	out := make([]map[string]any, len(runs))
	for i, run := range runs {
		out[i] = runSummary(run)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"runs": out})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		s.writeError(w, http.StatusServiceUnavailable, "journal_disabled", "run journal is not enabled")
		return
	}

	run, err := s.journal.GetRun(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, journal.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "not_found", err.Error())
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("get run")
		s.writeError(w, http.StatusInternalServerError, "journal_error", err.Error())
		return
	}

	spec, err := report.DecodeMsgpack(run.Specification)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "journal_error", err.Error())
		return
	}
	doc := runSummary(run)
	doc["specification"] = spec
	s.writeJSON(w, http.StatusOK, doc)
}

func runSummary(run journal.Run) map[string]any {
	return map[string]any{
		"run_id":         run.ID,
		"name":           run.Name,
		"issuer":         run.Issuer,
		"valuation_date": utils.FormatDate(run.ValuationDate),
		"priced_at":      run.PricedAt.Format(time.RFC3339Nano),
		"result":         report.ResultMap(run.Result()),
	}
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, kind, msg string) {
	s.writeJSON(w, status, map[string]any{"error": msg, "kind": kind})
}
