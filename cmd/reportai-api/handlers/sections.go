package handlers

import (
	"net/http"
	"strconv"

	"github.com/edwinlov3tt/report-ai-sub000/internal/domain"
	"github.com/edwinlov3tt/report-ai-sub000/internal/observability"
	"github.com/edwinlov3tt/report-ai-sub000/internal/sections"
	"github.com/edwinlov3tt/report-ai-sub000/internal/storage"
)

// SectionsHandler serves report section CRUD on /sections.php.
type SectionsHandler struct {
	logger *observability.Logger
	store  sections.Store
}

// NewSectionsHandler creates a new sections handler.
func NewSectionsHandler(logger *observability.Logger, store sections.Store) *SectionsHandler {
	return &SectionsHandler{logger: logger, store: store}
}

// SectionListDTO is the response of a list request.
type SectionListDTO struct {
	Sections []*storage.ReportSection `json:"sections"`
}

// ServeHTTP dispatches on method. The optional id query parameter selects
// one section.
func (h *SectionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, hasID, err := queryID(r, "id")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		if hasID {
			s, err := h.store.Get(ctx, id)
			if err != nil {
				writeDomainError(w, h.logger, err)
				return
			}
			writeJSON(w, http.StatusOK, s)
			return
		}
		all, err := h.store.List(ctx)
		if err != nil {
			writeDomainError(w, h.logger, err)
			return
		}
		if all == nil {
			all = []*storage.ReportSection{}
		}
		writeJSON(w, http.StatusOK, SectionListDTO{Sections: all})

	case http.MethodPost:
		var s storage.ReportSection
		if err := decodeBody(r, &s); err != nil {
			writeDomainError(w, h.logger, err)
			return
		}
		if err := h.store.Create(ctx, &s); err != nil {
			writeDomainError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, &s)

	case http.MethodPut:
		var s storage.ReportSection
		if err := decodeBody(r, &s); err != nil {
			writeDomainError(w, h.logger, err)
			return
		}
		if hasID {
			s.ID = id
		}
		if s.ID == 0 {
			writeDomainError(w, h.logger, domain.ValidationError("id is required", nil))
			return
		}
		if err := h.store.Update(ctx, &s); err != nil {
			writeDomainError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, &s)

	case http.MethodDelete:
		if !hasID {
			writeDomainError(w, h.logger, domain.ValidationError("id is required", nil))
			return
		}
		if err := h.store.Delete(ctx, id); err != nil {
			writeDomainError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", r.Method)
	}
}

// queryID parses an optional integer query parameter.
func queryID(r *http.Request, name string) (int64, bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false, domain.ValidationError(name+" must be a positive integer", nil)
	}
	return id, true, nil
}
