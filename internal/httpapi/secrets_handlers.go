package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"coogi-engine/internal/secrets"
)

type SecretsHandler struct{}

type setSecretReq struct {
	Value string `json:"value"`
}

// SetByPath serves POST /api/secrets/{account}.
func (h SecretsHandler) SetByPath(w http.ResponseWriter, r *http.Request) {
	account := strings.TrimPrefix(r.URL.Path, "/api/secrets/")
	if !secrets.Known(account) {
		WriteError(w, r, http.StatusNotFound, "unknown_account", "no secret account "+account)
		return
	}

	var req setSecretReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := secrets.Set(account, req.Value); err != nil {
		http.Error(w, "failed to store secret: "+err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteByPath serves DELETE /api/secrets/{account}.
func (h SecretsHandler) DeleteByPath(w http.ResponseWriter, r *http.Request) {
	account := strings.TrimPrefix(r.URL.Path, "/api/secrets/")
	if !secrets.Known(account) {
		WriteError(w, r, http.StatusNotFound, "unknown_account", "no secret account "+account)
		return
	}
	if err := secrets.Delete(account); err != nil {
		http.Error(w, "failed to delete secret: "+err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
