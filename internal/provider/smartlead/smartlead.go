// Package smartlead wraps the Smartlead campaign API: campaign, then
// sequence, then leads, three calls per creation. Auth is a bearer token.
package smartlead

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"coogi-engine/internal/domain"
	"coogi-engine/internal/provider"
)

const (
	serviceName = "smartlead"
	apiBase     = "https://server.smartlead.ai/api/v1"
)

type Config struct {
	APIKey   string
	FromName string
	BaseURL  string // override for tests
}

type Service struct {
	cfg Config
	hc  *provider.Client
}

func New(cfg Config, hc *provider.Client) *Service {
	if cfg.BaseURL == "" {
		cfg.BaseURL = apiBase
	}
	if cfg.FromName == "" {
		cfg.FromName = "Recruiting Team"
	}
	return &Service{cfg: cfg, hc: hc}
}

func (s *Service) Name() string { return serviceName }

func (s *Service) header() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+s.cfg.APIKey)
	return h
}

type createResponse struct {
	ID string `json:"id"`
}

func (s *Service) CreateCampaign(ctx context.Context, draft provider.CampaignDraft) (domain.CampaignRecord, error) {
	if strings.TrimSpace(s.cfg.APIKey) == "" {
		return domain.CampaignRecord{}, provider.AuthMissing(serviceName)
	}

	campaignBody := map[string]any{
		"name":         draft.Name,
		"from_email":   draft.FromEmail,
		"from_name":    s.cfg.FromName,
		"timezone":     "America/New_York",
		"track_opens":  true,
		"track_clicks": true,
	}

	var created createResponse
	if err := s.hc.PostJSON(ctx, serviceName, s.cfg.BaseURL+"/campaigns", s.header(), campaignBody, &created); err != nil {
		return domain.CampaignRecord{}, err
	}

	sequenceBody := map[string]any{
		"campaign_id":   created.ID,
		"subject":       draft.Subject,
		"body":          draft.Message,
		"delay_days":    0,
		"delay_hours":   0,
		"delay_minutes": 0,
	}
	if err := s.hc.PostJSON(ctx, serviceName, s.cfg.BaseURL+"/sequences", s.header(), sequenceBody, nil); err != nil {
		return domain.CampaignRecord{}, fmt.Errorf("campaign %s created but sequence failed: %w", created.ID, err)
	}

	added := 0
	for _, c := range draft.Contacts {
		first, last := splitName(c.Name)
		leadBody := map[string]any{
			"campaign_id": created.ID,
			"email":       c.Email,
			"first_name":  first,
			"last_name":   last,
			"company":     c.Company,
			"title":       c.Title,
		}
		if err := s.hc.PostJSON(ctx, serviceName, s.cfg.BaseURL+"/leads", s.header(), leadBody, nil); err != nil {
			log.Printf("[smartlead] lead add failed email=%s err=%v", c.Email, err)
			continue
		}
		added++
	}

	return domain.CampaignRecord{
		ID:         serviceName + "_" + created.ID,
		Name:       draft.Name,
		Subject:    draft.Subject,
		Message:    draft.Message,
		Status:     domain.CampaignActive,
		Service:    serviceName,
		Company:    draft.Company,
		Contacts:   draft.Contacts,
		LeadCount:  added,
		ExternalID: created.ID,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

func (s *Service) PauseCampaign(ctx context.Context, externalID string) error {
	return s.setStatus(ctx, externalID, "paused")
}

func (s *Service) ResumeCampaign(ctx context.Context, externalID string) error {
	return s.setStatus(ctx, externalID, "active")
}

func (s *Service) CancelCampaign(ctx context.Context, externalID string) error {
	if strings.TrimSpace(s.cfg.APIKey) == "" {
		return provider.AuthMissing(serviceName)
	}
	return s.hc.Delete(ctx, serviceName, fmt.Sprintf("%s/campaigns/%s", s.cfg.BaseURL, externalID), s.header())
}

func (s *Service) setStatus(ctx context.Context, externalID, status string) error {
	if strings.TrimSpace(s.cfg.APIKey) == "" {
		return provider.AuthMissing(serviceName)
	}
	url := fmt.Sprintf("%s/campaigns/%s", s.cfg.BaseURL, externalID)
	return s.hc.PutJSON(ctx, serviceName, url, s.header(), map[string]any{"status": status}, nil)
}

func splitName(name string) (first, last string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}
