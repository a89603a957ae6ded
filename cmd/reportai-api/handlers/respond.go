// Package handlers provides HTTP handlers for the report API.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/edwinlov3tt/report-ai-sub000/internal/domain"
	"github.com/edwinlov3tt/report-ai-sub000/internal/observability"
)

// maxBodyBytes bounds request bodies. Uploaded CSVs arrive inline.
const maxBodyBytes = 32 << 20

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, detail string) {
	resp := map[string]string{
		"error":   message,
		"message": message,
	}
	if detail != "" {
		resp["detail"] = detail
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps err onto a status and a client-safe message. Server
// errors are logged with their full chain.
func writeDomainError(w http.ResponseWriter, logger *observability.Logger, err error) {
	status := domain.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("Request failed")
	}
	writeError(w, status, domain.PublicMessage(err), "")
}

// decodeBody decodes a JSON body into dst. An empty body leaves dst zeroed.
func decodeBody(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && err != io.EOF {
		return domain.ValidationError("invalid request body", err)
	}
	return nil
}
