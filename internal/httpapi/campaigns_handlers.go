package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"coogi-engine/internal/domain"
	"coogi-engine/internal/provider"
	"coogi-engine/internal/store"
)

type CampaignsHandler struct {
	// Services by name; the campaign ID prefix picks the one to call.
	Services map[string]provider.CampaignService
	Store    *store.Store
}

// actionStatus maps a control action to the status the stored campaign
// record ends up in.
var actionStatus = map[string]string{
	"pause":  domain.CampaignPaused,
	"resume": domain.CampaignActive,
	"cancel": domain.CampaignCancelled,
}

// ActionByPath serves POST /campaigns/{id}/{pause|resume|cancel}.
// Internal campaigns (internal_ prefix) have no upstream to call, so
// the action mutates the stored record's status only. Service-backed
// campaigns call the originating service first and rewrite the stored
// copy on success.
func (h CampaignsHandler) ActionByPath(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/campaigns/")
	id, action, ok := strings.Cut(rest, "/")
	if !ok || id == "" {
		WriteError(w, r, http.StatusBadRequest, "bad_path", "expected /campaigns/{id}/{action}")
		return
	}

	service, _, found := strings.Cut(id, "_")
	if !found {
		WriteError(w, r, http.StatusBadRequest, "bad_campaign_id", "campaign id has no service prefix: "+id)
		return
	}

	status, ok := actionStatus[action]
	if !ok {
		WriteError(w, r, http.StatusNotFound, "bad_action", "unknown action "+action)
		return
	}

	if service == "internal" {
		h.storeStatus(r.Context(), id, status)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	svc, ok := h.Services[service]
	if !ok {
		WriteError(w, r, http.StatusNotFound, "unknown_service", "no campaign service "+service)
		return
	}

	externalID := strings.TrimPrefix(id, service+"_")
	var err error
	switch action {
	case "pause":
		err = svc.PauseCampaign(r.Context(), externalID)
	case "resume":
		err = svc.ResumeCampaign(r.Context(), externalID)
	case "cancel":
		err = svc.CancelCampaign(r.Context(), externalID)
	}
	if err != nil {
		WriteError(w, r, http.StatusBadGateway, "service_error", service+" "+action+" failed: "+err.Error())
		return
	}

	h.storeStatus(r.Context(), id, status)
	w.WriteHeader(http.StatusNoContent)
}

// storeStatus rewrites the stored campaign record's status, the same
// scan-and-replace the reply poller uses. A missing store or row is a
// warning: the upstream action already took effect.
func (h CampaignsHandler) storeStatus(ctx context.Context, id, status string) {
	rows, err := h.Store.AllRecords(ctx, "campaigns")
	if err != nil {
		log.Printf("[httpapi] campaign status write for %s failed: %v", id, err)
		return
	}
	for _, row := range rows {
		var c domain.CampaignRecord
		if err := json.Unmarshal(row.Payload, &c); err != nil {
			continue
		}
		if c.ID != id {
			continue
		}
		c.Status = status
		if err := h.Store.ReplaceRecord(ctx, row.RowID, c); err != nil {
			log.Printf("[httpapi] campaign status write for %s failed: %v", id, err)
		}
		return
	}
	log.Printf("[httpapi] no stored record for campaign %s, status not persisted", id)
}
