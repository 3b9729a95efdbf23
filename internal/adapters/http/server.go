package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"venturelens/internal/domain"
	"venturelens/internal/logger"
	"venturelens/internal/ports"
	reportsvc "venturelens/internal/services/reports"
	runworker "venturelens/internal/workers/runworker"
)

type Server struct {
	validator ports.Validator
	reports   *reportsvc.Service
	jobs      ports.JobRepository
	processor runworker.RunProcessor
	log       *logger.Logger
}

func New(validator ports.Validator, reports *reportsvc.Service, jobs ports.JobRepository, processor runworker.RunProcessor, log *logger.Logger) *Server {
	return &Server{validator: validator, reports: reports, jobs: jobs, processor: processor, log: log}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealthz)
	r.Post("/startups", s.handleCreateStartup)
	r.Post("/validations", s.handleEnqueueValidation)
	r.Get("/validations/{id}", s.handleRunStatus)
	r.Get("/dimensions", s.handleListDimensions)
	r.Get("/report/{reportID}", s.handleGetReport)
	r.Get("/report/{reportID}/{section}", s.handleGetDimension)
	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createStartupRequest struct {
	Name    string `json:"name"`
	Website string `json:"website"`
}

func (s *Server) handleCreateStartup(w http.ResponseWriter, r *http.Request) {
	var req createStartupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	startup, err := s.validator.RegisterStartup(r.Context(), req.Name, req.Website)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, startupJSON(startup))
}

type enqueueRequest struct {
	StartupID string          `json:"startup_id"`
	Context   json.RawMessage `json:"context"`
}

func (s *Server) handleEnqueueValidation(w http.ResponseWriter, r *http.Request) {
	var req enqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.StartupID == "" {
		writeError(w, http.StatusBadRequest, "startup_id is required")
		return
	}
	runID, err := s.validator.Enqueue(r.Context(), req.StartupID, req.Context)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, http.StatusNotFound, "startup not found")
			return
		}
		s.serverError(w, err)
		return
	}

	// Blocking path: process the run with the same logic as the workers.
	if r.URL.Query().Get("wait") == "true" {
		timeout := 30
		if t, err := strconv.Atoi(r.URL.Query().Get("timeout")); err == nil && t > 0 {
			timeout = t
		}
		ctx, cancel := context.WithTimeout(r.Context(), time.Duration(timeout)*time.Second)
		defer cancel()
		if err := runworker.ProcessInline(ctx, s.jobs, s.processor, runID); err != nil {
			s.serverError(w, err)
			return
		}
		run, err := s.validator.Status(ctx, runID)
		if err != nil {
			s.serverError(w, err)
			return
		}
		rep, err := s.reports.GetReport(ctx, run.ReportRef)
		if err != nil {
			s.serverError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, reportJSON(rep))
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"run_id": runID})
}

func (s *Server) handleRunStatus(w http.ResponseWriter, r *http.Request) {
	run, err := s.validator.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		s.serverError(w, err)
		return
	}
	resp := map[string]any{
		"id":       run.ID,
		"status":   run.Status,
		"progress": run.Progress,
	}
	if run.ReportRef != "" {
		resp["report_id"] = run.ReportRef
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListDimensions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.reports.ListDimensions())
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.reports.GetReport(r.Context(), chi.URLParam(r, "reportID"))
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, http.StatusNotFound, "report not found")
			return
		}
		s.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reportJSON(rep))
}

func (s *Server) handleGetDimension(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")
	section := chi.URLParam(r, "section")
	view, err := s.reports.GetDimension(r.Context(), reportID, section)
	if err != nil {
		switch {
		case errors.Is(err, reportsvc.ErrUnknownSection):
			writeError(w, http.StatusNotFound, "unknown report section")
		case errors.Is(err, ports.ErrNotFound):
			writeError(w, http.StatusNotFound, "report not found")
		default:
			s.serverError(w, err)
		}
		return
	}

	resp := map[string]any{
		"definition": view.Definition,
		"pending":    view.Pending,
	}
	if view.Score != nil {
		resp["sub_score"] = view.Score.SubScore
	}
	if view.Diagram != nil {
		resp["diagram"] = view.Diagram
	}
	if view.MappingError != "" {
		resp["mapping_error"] = view.MappingError
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) serverError(w http.ResponseWriter, err error) {
	s.log.Error("request failed", "err", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func startupJSON(st domain.Startup) map[string]any {
	out := map[string]any{
		"id":            st.ID,
		"name":          st.Name,
		"first_seen_at": st.FirstSeenAt,
	}
	if st.Website != nil {
		out["website"] = *st.Website
	}
	if st.RegistrableDomain != "" {
		out["registrable_domain"] = st.RegistrableDomain
	}
	return out
}

func reportJSON(rep domain.Report) map[string]any {
	scores := make([]map[string]any, 0, len(rep.DimensionScores))
	for _, ds := range rep.DimensionScores {
		scores = append(scores, map[string]any{
			"dimension_id": ds.DimensionID,
			"sub_score":    ds.SubScore,
			"data":         ds.Data,
		})
	}
	out := map[string]any{
		"id":               rep.ID,
		"run_id":           rep.RunRef,
		"startup_id":       rep.StartupRef,
		"state":            rep.State,
		"dimension_scores": scores,
		"risk_signals":     rep.RiskSignals,
		"created_at":       rep.CreatedAt,
	}
	// Composite and signal ship only on complete reports; a partial report
	// shows per-dimension data with the composite pending.
	if rep.State == domain.ReportComplete && rep.CompositeScore != nil {
		out["composite_score"] = *rep.CompositeScore
		out["signal"] = rep.Signal
	}
	if len(rep.MissingDimensions) > 0 {
		out["missing_dimensions"] = rep.MissingDimensions
	}
	if rep.FailureReason != "" {
		out["failure_reason"] = rep.FailureReason
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
