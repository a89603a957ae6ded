package handlers

import (
	"net/http"
	"strings"

	"github.com/edwinlov3tt/report-ai-sub000/internal/domain"
	"github.com/edwinlov3tt/report-ai-sub000/internal/llm"
	"github.com/edwinlov3tt/report-ai-sub000/internal/observability"
)

// AIHandler exposes the model adapter directly for harness testing.
type AIHandler struct {
	logger *observability.Logger
	client *llm.Client
}

// NewAIHandler creates a new AI handler.
func NewAIHandler(logger *observability.Logger, client *llm.Client) *AIHandler {
	return &AIHandler{logger: logger, client: client}
}

// AITestRequestDTO is the body of POST /ai-test.php.
type AITestRequestDTO struct {
	Prompt      string   `json:"prompt"`
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   int      `json:"maxTokens,omitempty"`
}

// AITestResponseDTO is the response of POST /ai-test.php.
type AITestResponseDTO struct {
	Success    bool   `json:"success"`
	Response   string `json:"response,omitempty"`
	Model      string `json:"model"`
	Error      string `json:"error,omitempty"`
	Configured *bool  `json:"configured,omitempty"`
}

// ModelsResponseDTO is the response of GET /models.php.
type ModelsResponseDTO struct {
	Models       []llm.ModelStatus `json:"models"`
	DefaultModel string            `json:"defaultModel"`
}

// Test handles POST /ai-test.php.
func (h *AIHandler) Test(w http.ResponseWriter, r *http.Request) {
	var req AITestRequestDTO
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeDomainError(w, h.logger, domain.ValidationError("prompt is required", nil))
		return
	}

	model := req.Model
	if model == "" {
		model = h.client.DefaultModel()
	}
	temperature := 0.7
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	text, err := h.client.Call(r.Context(), model, req.Prompt, temperature, req.MaxTokens)
	if err != nil {
		resp := AITestResponseDTO{Model: model, Error: domain.PublicMessage(err)}
		if domain.Is(err, domain.ErrorTypeConfiguration) {
			configured := false
			resp.Configured = &configured
		}
		writeJSON(w, domain.HTTPStatus(err), resp)
		return
	}

	writeJSON(w, http.StatusOK, AITestResponseDTO{Success: true, Response: text, Model: model})
}

// Models handles GET /models.php.
func (h *AIHandler) Models(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ModelsResponseDTO{
		Models:       h.client.Registry().Statuses(),
		DefaultModel: h.client.DefaultModel(),
	})
}
