package handlers

import (
	"net/http"

	"github.com/edwinlov3tt/report-ai-sub000/internal/domain"
	"github.com/edwinlov3tt/report-ai-sub000/internal/lumina"
	"github.com/edwinlov3tt/report-ai-sub000/internal/observability"
)

// CampaignHandler serves order lookups and tactic grouping.
type CampaignHandler struct {
	logger *observability.Logger
	lumina *lumina.Service
}

// NewCampaignHandler creates a new campaign handler. svc may be nil when no
// order API is configured; lookups then fail with a configuration error.
func NewCampaignHandler(logger *observability.Logger, svc *lumina.Service) *CampaignHandler {
	return &CampaignHandler{logger: logger, lumina: svc}
}

// LuminaRequestDTO is the body of POST /lumina.
type LuminaRequestDTO struct {
	OrderID string `json:"orderId"`
}

// TacticsRequestDTO is the body of POST /tactics.
type TacticsRequestDTO struct {
	LineItems []map[string]interface{} `json:"lineItems"`
}

// TacticsResponseDTO is the response of POST /tactics.
type TacticsResponseDTO struct {
	Tactics []lumina.Tactic `json:"tactics"`
}

// Lumina handles POST /lumina.
func (h *CampaignHandler) Lumina(w http.ResponseWriter, r *http.Request) {
	var req LuminaRequestDTO
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if err := lumina.ValidateOrderID(req.OrderID); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if h.lumina == nil {
		writeDomainError(w, h.logger, domain.ConfigurationError("order lookup is not configured", nil))
		return
	}

	campaign, err := h.lumina.Lookup(r.Context(), req.OrderID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, campaign)
}

// Tactics handles POST /tactics.
func (h *CampaignHandler) Tactics(w http.ResponseWriter, r *http.Request) {
	var req TacticsRequestDTO
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	items := make([]lumina.LineItem, 0, len(req.LineItems))
	for _, m := range req.LineItems {
		items = append(items, lumina.LineItemFromMap(m))
	}

	writeJSON(w, http.StatusOK, TacticsResponseDTO{Tactics: lumina.GroupTactics(items)})
}
