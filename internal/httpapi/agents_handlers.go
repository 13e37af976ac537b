package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"coogi-engine/internal/agent"
	"coogi-engine/internal/store"
)

type AgentsHandler struct {
	Registry *agent.Registry
	Store    *store.Store
	StartRun func(h *agent.Handle, req agent.Request)
}

// agentView is a poll response: the snapshot plus a hint for when to
// poll again.
type agentView struct {
	agent.Snapshot
	NextUpdateInSeconds int `json:"next_update_in_seconds"`
}

func viewOf(s agent.Snapshot) agentView {
	next := 5
	if s.Done() {
		next = 0
	}
	return agentView{Snapshot: s, NextUpdateInSeconds: next}
}

func (h AgentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req agent.Request
	if err := dec.Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_query", "query is required")
		return
	}
	if req.HoursOld <= 0 {
		req.HoursOld = 24
	}
	if req.CompanySize == "" {
		req.CompanySize = "all"
	}
	if req.TargetType == "" {
		req.TargetType = "hiring_managers"
	}

	handle := h.Registry.Create(req)
	go h.StartRun(handle, req)

	WriteJSON(w, http.StatusAccepted, viewOf(handle.Snapshot()))
}

func (h AgentsHandler) List(w http.ResponseWriter, r *http.Request) {
	snaps := h.Registry.List()
	views := make([]agentView, 0, len(snaps))
	for _, s := range snaps {
		views = append(views, viewOf(s))
	}
	WriteJSON(w, http.StatusOK, map[string]any{"agents": views})
}

// GetByPath serves /agents/{id} and /agents/{id}/records.
func (h AgentsHandler) GetByPath(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/agents/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_id", "agent id is required")
		return
	}

	snap, ok := h.Registry.Get(id)
	if !ok {
		WriteError(w, r, http.StatusNotFound, "agent_not_found", "no agent "+id)
		return
	}

	switch sub {
	case "":
		WriteJSON(w, http.StatusOK, viewOf(snap))
	case "records":
		h.records(w, r, id)
	default:
		WriteError(w, r, http.StatusNotFound, "not_found", "unknown agent resource "+sub)
	}
}

// DeleteByPath serves DELETE /agents/{id}: the agent leaves the
// registry (stopping a live run's consumer) and its stored rows go
// with it.
func (h AgentsHandler) DeleteByPath(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/agents/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" || sub != "" {
		WriteError(w, r, http.StatusBadRequest, "bad_path", "expected /agents/{id}")
		return
	}

	if !h.Registry.Delete(id) {
		WriteError(w, r, http.StatusNotFound, "agent_not_found", "no agent "+id)
		return
	}
	if err := h.Store.DeleteAgent(r.Context(), id); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h AgentsHandler) records(w http.ResponseWriter, r *http.Request, id string) {
	kind := r.URL.Query().Get("kind")
	switch kind {
	case "jobs", "contacts", "campaigns":
	case "":
		kind = "jobs"
	default:
		WriteError(w, r, http.StatusBadRequest, "bad_kind", "kind must be jobs, contacts, or campaigns")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	records, err := h.Store.ReadRecords(r.Context(), id, kind, limit)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	if records == nil {
		records = []json.RawMessage{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"agent_id": id,
		"kind":     kind,
		"count":    len(records),
		"records":  records,
	})
}
