package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"coogi-engine/internal/agent"
)

func testMux(startRun func(h *agent.Handle, req agent.Request)) (*http.ServeMux, *agent.Registry) {
	if startRun == nil {
		startRun = func(h *agent.Handle, req agent.Request) {}
	}
	reg := agent.NewRegistry(nil, nil)
	mux := NewMux(Deps{Registry: reg, StartRun: startRun})
	return mux, reg
}

func TestCreateAgentAccepted(t *testing.T) {
	t.Parallel()

	started := make(chan agent.Request, 1)
	mux, _ := testMux(func(h *agent.Handle, req agent.Request) {
		started <- req
	})

	body := strings.NewReader(`{"query":"golang developer","location":"Austin"}`)
	req := httptest.NewRequest(http.MethodPost, "/agents", body)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		ID                  string `json:"id"`
		Status              string `json:"status"`
		NextUpdateInSeconds int    `json:"next_update_in_seconds"`
		Request             struct {
			HoursOld    int    `json:"hours_old"`
			CompanySize string `json:"company_size"`
			TargetType  string `json:"target_type"`
		} `json:"request"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.HasPrefix(resp.ID, "agent_") {
		t.Fatalf("id = %q", resp.ID)
	}
	if resp.Status != agent.StatusInitializing || resp.NextUpdateInSeconds != 5 {
		t.Fatalf("response = %+v", resp)
	}
	if resp.Request.HoursOld != 24 || resp.Request.CompanySize != "all" || resp.Request.TargetType != "hiring_managers" {
		t.Fatalf("request defaults not applied: %+v", resp.Request)
	}

	got := <-started
	if got.Query != "golang developer" {
		t.Fatalf("pipeline started with %+v", got)
	}
}

func TestCreateAgentRequiresQuery(t *testing.T) {
	t.Parallel()

	mux, _ := testMux(nil)
	req := httptest.NewRequest(http.MethodPost, "/agents", strings.NewReader(`{"location":"Austin"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateAgentRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	mux, _ := testMux(nil)
	req := httptest.NewRequest(http.MethodPost, "/agents", strings.NewReader(`{"query":"x","bogus":1}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetUnknownAgentIs404(t *testing.T) {
	t.Parallel()

	mux, _ := testMux(nil)
	req := httptest.NewRequest(http.MethodGet, "/agents/agent_missing", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGetAgentByID(t *testing.T) {
	t.Parallel()

	mux, reg := testMux(nil)
	h := reg.Create(agent.Request{Query: "sre"})

	req := httptest.NewRequest(http.MethodGet, "/agents/"+h.ID(), nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		ID     string                 `json:"id"`
		Stages map[string]agent.Stage `json:"stages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != h.ID() || len(resp.Stages) != len(agent.StageDefs) {
		t.Fatalf("response = %+v", resp)
	}
}

func TestListAgentsEnvelope(t *testing.T) {
	t.Parallel()

	mux, reg := testMux(nil)
	reg.Create(agent.Request{Query: "a"})
	reg.Create(agent.Request{Query: "b"})

	req := httptest.NewRequest(http.MethodGet, "/agents", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var resp struct {
		Agents []json.RawMessage `json:"agents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Agents) != 2 {
		t.Fatalf("got %d agents, want 2", len(resp.Agents))
	}
}

func TestDeleteAgent(t *testing.T) {
	t.Parallel()

	mux, reg := testMux(nil)
	h := reg.Create(agent.Request{Query: "sre"})

	req := httptest.NewRequest(http.MethodDelete, "/agents/"+h.ID(), nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/agents/"+h.ID(), nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("deleted agent still served: status = %d", rec.Code)
	}
}

func TestDeleteUnknownAgentIs404(t *testing.T) {
	t.Parallel()

	mux, _ := testMux(nil)
	req := httptest.NewRequest(http.MethodDelete, "/agents/agent_missing", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestAgentRecordsWithoutStoreIsEmpty(t *testing.T) {
	t.Parallel()

	mux, reg := testMux(nil)
	h := reg.Create(agent.Request{Query: "x"})

	req := httptest.NewRequest(http.MethodGet, "/agents/"+h.ID()+"/records?kind=contacts", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Kind    string            `json:"kind"`
		Count   int               `json:"count"`
		Records []json.RawMessage `json:"records"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Kind != "contacts" || resp.Count != 0 || resp.Records == nil {
		t.Fatalf("response = %+v", resp)
	}
}

func TestAgentRecordsBadKind(t *testing.T) {
	t.Parallel()

	mux, reg := testMux(nil)
	h := reg.Create(agent.Request{Query: "x"})

	req := httptest.NewRequest(http.MethodGet, "/agents/"+h.ID()+"/records?kind=invoices", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
