package httpapi

import (
	"encoding/json"
	"net/http"

	"coogi-engine/internal/store"
)

type HealthHandler struct {
	Store *store.Store
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok":    true,
		"store": h.Store != nil,
	})
}
