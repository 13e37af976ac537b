package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"coogi-engine/internal/domain"
	"coogi-engine/internal/provider"
	"coogi-engine/internal/store"
)

type fakeCampaignService struct {
	name  string
	calls []string
	fail  bool
}

func (f *fakeCampaignService) Name() string { return f.name }

func (f *fakeCampaignService) CreateCampaign(ctx context.Context, draft provider.CampaignDraft) (domain.CampaignRecord, error) {
	return domain.CampaignRecord{}, errors.New("not used")
}

func (f *fakeCampaignService) PauseCampaign(ctx context.Context, externalID string) error {
	return f.record("pause", externalID)
}

func (f *fakeCampaignService) ResumeCampaign(ctx context.Context, externalID string) error {
	return f.record("resume", externalID)
}

func (f *fakeCampaignService) CancelCampaign(ctx context.Context, externalID string) error {
	return f.record("cancel", externalID)
}

func (f *fakeCampaignService) record(action, externalID string) error {
	f.calls = append(f.calls, action+":"+externalID)
	if f.fail {
		return errors.New("upstream down")
	}
	return nil
}

func TestCampaignPauseDispatchesByPrefix(t *testing.T) {
	t.Parallel()

	svc := &fakeCampaignService{name: "instantly"}
	h := CampaignsHandler{Services: map[string]provider.CampaignService{"instantly": svc}}

	req := httptest.NewRequest(http.MethodPost, "/campaigns/instantly_c42/pause", nil)
	rec := httptest.NewRecorder()
	h.ActionByPath(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if len(svc.calls) != 1 || svc.calls[0] != "pause:c42" {
		t.Fatalf("calls = %v", svc.calls)
	}
}

func TestCampaignInternalActionsWithoutStore(t *testing.T) {
	t.Parallel()

	h := CampaignsHandler{Services: map[string]provider.CampaignService{}}

	for _, action := range []string{"pause", "resume", "cancel"} {
		req := httptest.NewRequest(http.MethodPost, "/campaigns/internal_1723/"+action, nil)
		rec := httptest.NewRecorder()
		h.ActionByPath(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("%s: status = %d", action, rec.Code)
		}
	}
}

func openCampaignStore(t *testing.T, campaigns ...domain.CampaignRecord) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := s.AppendRecords(context.Background(), "agent_1", "campaigns", campaigns); err != nil {
		t.Fatalf("AppendRecords: %v", err)
	}
	return s
}

func storedCampaignStatus(t *testing.T, s *store.Store, id string) string {
	t.Helper()
	rows, err := s.AllRecords(context.Background(), "campaigns")
	if err != nil {
		t.Fatalf("AllRecords: %v", err)
	}
	for _, row := range rows {
		var c domain.CampaignRecord
		if err := json.Unmarshal(row.Payload, &c); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if c.ID == id {
			return c.Status
		}
	}
	t.Fatalf("no stored campaign %s", id)
	return ""
}

func TestCampaignInternalPausePersistsStatus(t *testing.T) {
	t.Parallel()

	s := openCampaignStore(t, domain.CampaignRecord{ID: "internal_1723", Company: "Acme", Status: domain.CampaignDraft})
	h := CampaignsHandler{Services: map[string]provider.CampaignService{}, Store: s}

	req := httptest.NewRequest(http.MethodPost, "/campaigns/internal_1723/pause", nil)
	rec := httptest.NewRecorder()
	h.ActionByPath(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if got := storedCampaignStatus(t, s, "internal_1723"); got != domain.CampaignPaused {
		t.Fatalf("stored status = %q, want %q", got, domain.CampaignPaused)
	}
}

func TestCampaignExternalCancelPersistsStatus(t *testing.T) {
	t.Parallel()

	s := openCampaignStore(t, domain.CampaignRecord{ID: "instantly_c42", Company: "Globex", Status: domain.CampaignActive})
	svc := &fakeCampaignService{name: "instantly"}
	h := CampaignsHandler{Services: map[string]provider.CampaignService{"instantly": svc}, Store: s}

	req := httptest.NewRequest(http.MethodPost, "/campaigns/instantly_c42/cancel", nil)
	rec := httptest.NewRecorder()
	h.ActionByPath(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if len(svc.calls) != 1 || svc.calls[0] != "cancel:c42" {
		t.Fatalf("calls = %v", svc.calls)
	}
	if got := storedCampaignStatus(t, s, "instantly_c42"); got != domain.CampaignCancelled {
		t.Fatalf("stored status = %q, want %q", got, domain.CampaignCancelled)
	}
}

func TestCampaignFailedActionLeavesStatus(t *testing.T) {
	t.Parallel()

	s := openCampaignStore(t, domain.CampaignRecord{ID: "smartlead_9", Company: "Initech", Status: domain.CampaignActive})
	svc := &fakeCampaignService{name: "smartlead", fail: true}
	h := CampaignsHandler{Services: map[string]provider.CampaignService{"smartlead": svc}, Store: s}

	req := httptest.NewRequest(http.MethodPost, "/campaigns/smartlead_9/pause", nil)
	rec := httptest.NewRecorder()
	h.ActionByPath(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if got := storedCampaignStatus(t, s, "smartlead_9"); got != domain.CampaignActive {
		t.Fatalf("stored status rewritten on failure: %q", got)
	}
}

func TestCampaignUnknownServiceIs404(t *testing.T) {
	t.Parallel()

	h := CampaignsHandler{Services: map[string]provider.CampaignService{}}
	req := httptest.NewRequest(http.MethodPost, "/campaigns/mailgun_5/pause", nil)
	rec := httptest.NewRecorder()
	h.ActionByPath(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCampaignServiceErrorIsBadGateway(t *testing.T) {
	t.Parallel()

	svc := &fakeCampaignService{name: "smartlead", fail: true}
	h := CampaignsHandler{Services: map[string]provider.CampaignService{"smartlead": svc}}

	req := httptest.NewRequest(http.MethodPost, "/campaigns/smartlead_9/cancel", nil)
	rec := httptest.NewRecorder()
	h.ActionByPath(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestCampaignBadPathAndBadAction(t *testing.T) {
	t.Parallel()

	h := CampaignsHandler{Services: map[string]provider.CampaignService{}}

	req := httptest.NewRequest(http.MethodPost, "/campaigns/noprefix", nil)
	rec := httptest.NewRecorder()
	h.ActionByPath(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing action: status = %d, want 400", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/campaigns/internal_1/archive", nil)
	rec = httptest.NewRecorder()
	h.ActionByPath(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("bad action: status = %d, want 404", rec.Code)
	}
}
