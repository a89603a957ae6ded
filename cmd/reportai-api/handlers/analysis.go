package handlers

import (
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/edwinlov3tt/report-ai-sub000/internal/observability"
	"github.com/edwinlov3tt/report-ai-sub000/internal/report"
)

// AnalysisHandler runs the report pipeline and serves stored analyses.
type AnalysisHandler struct {
	logger   *observability.Logger
	pipeline *report.Pipeline
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(logger *observability.Logger, pipeline *report.Pipeline) *AnalysisHandler {
	return &AnalysisHandler{logger: logger, pipeline: pipeline}
}

// StoredAnalysisDTO is the response of GET /analyses/{id}. Whether the
// analysis was templated is not exposed.
type StoredAnalysisDTO struct {
	AnalysisID   string          `json:"analysisId"`
	CampaignName string          `json:"campaignName"`
	CreatedAt    time.Time       `json:"createdAt"`
	Analysis     report.Analysis `json:"analysis"`
}

// Analyze handles POST /analyze.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req report.AnalyzeRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	result, err := h.pipeline.Generate(r.Context(), req)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Get handles GET /analyses/{id}.
func (h *AnalysisHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, analysis, err := h.pipeline.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, StoredAnalysisDTO{
		AnalysisID:   rec.ID,
		CampaignName: rec.CampaignName,
		CreatedAt:    rec.CreatedAt,
		Analysis:     analysis,
	})
}

// HTML handles GET /analyses/{id}/html.
func (h *AnalysisHandler) HTML(w http.ResponseWriter, r *http.Request) {
	rec, analysis, err := h.pipeline.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	body, err := report.RenderHTML(analysis)
	if err != nil {
		h.logger.Error().Err(err).Str("analysis_id", rec.ID).Msg("Failed to render analysis")
		writeError(w, http.StatusInternalServerError, "failed to render analysis", "")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>%s</title></head><body>\n<h1>%s</h1>\n%s</body></html>\n",
		html.EscapeString(rec.CampaignName), html.EscapeString(rec.CampaignName), body)
}
