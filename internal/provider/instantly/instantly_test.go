package instantly

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"coogi-engine/internal/domain"
	"coogi-engine/internal/provider"
)

func TestCreateCampaignUploadsLeads(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var paths []string
	var leadBody struct {
		Leads []lead `json:"leads"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()

		if got := r.Header.Get("api_key"); got != "key1" {
			t.Errorf("api_key header = %q", got)
		}
		switch r.URL.Path {
		case "/campaigns":
			w.Write([]byte(`{"id":"c42"}`))
		case "/campaigns/c42/leads":
			mu.Lock()
			json.NewDecoder(r.Body).Decode(&leadBody)
			mu.Unlock()
			w.Write([]byte(`{}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	svc := New(Config{APIKey: "key1", BaseURL: srv.URL}, provider.NewClient(time.Second, 1000))
	draft := provider.CampaignDraft{
		Name:      "Outreach to Acme - Go Engineer",
		Subject:   "Re: Go Engineer Position at Acme",
		Message:   "hello",
		Company:   "Acme",
		FromEmail: "alex@example.com",
		Contacts: []domain.ContactRecord{
			{Name: "Sarah Johnson", Email: "sarah@acme.com", Company: "Acme", Title: "CTO"},
		},
	}

	rec, err := svc.CreateCampaign(context.Background(), draft)
	if err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}
	if rec.ID != "instantly_c42" || rec.ExternalID != "c42" {
		t.Fatalf("record ids: %q / %q", rec.ID, rec.ExternalID)
	}
	if rec.Status != domain.CampaignActive || rec.LeadCount != 1 {
		t.Fatalf("record = %+v", rec)
	}

	if len(paths) != 2 {
		t.Fatalf("requests = %v, want create then leads", paths)
	}
	if len(leadBody.Leads) != 1 || leadBody.Leads[0].FirstName != "Sarah" || leadBody.Leads[0].LastName != "Johnson" {
		t.Fatalf("uploaded leads = %+v", leadBody.Leads)
	}
}

func TestPauseHitsActionEndpoint(t *testing.T) {
	t.Parallel()

	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	svc := New(Config{APIKey: "k", BaseURL: srv.URL}, provider.NewClient(time.Second, 1000))
	if err := svc.PauseCampaign(context.Background(), "c42"); err != nil {
		t.Fatalf("PauseCampaign: %v", err)
	}
	if path != "/campaigns/c42/pause" {
		t.Fatalf("path = %q", path)
	}
}

func TestCancelUsesDelete(t *testing.T) {
	t.Parallel()

	var method, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	svc := New(Config{APIKey: "k", BaseURL: srv.URL}, provider.NewClient(time.Second, 1000))
	if err := svc.CancelCampaign(context.Background(), "c42"); err != nil {
		t.Fatalf("CancelCampaign: %v", err)
	}
	if method != http.MethodDelete || path != "/campaigns/c42" {
		t.Fatalf("%s %s", method, path)
	}
}
