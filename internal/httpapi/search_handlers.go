package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"coogi-engine/internal/aggregate"
	"coogi-engine/internal/domain"
)

type SearchHandler struct {
	Pipeline *aggregate.JobPipeline
}

// Search runs the job fallback chain synchronously. Slow (it talks to
// real providers) but handy for dashboards and smoke checks; full runs
// should go through /agents.
func (h SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req domain.SearchRequest
	if err := dec.Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_query", "query is required")
		return
	}

	res := h.Pipeline.Collect(r.Context(), req)

	failures := make([]map[string]string, 0, len(res.Failures))
	for _, f := range res.Failures {
		failures = append(failures, map[string]string{"provider": f.Provider, "kind": string(f.Kind)})
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"jobs":          res.Jobs,
		"count":         len(res.Jobs),
		"source_counts": res.SourceCounts,
		"failures":      failures,
		"used_demo":     res.UsedDemo,
	})
}
