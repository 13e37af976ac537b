// Package instantly wraps the Instantly.ai campaign API. It is the
// primary campaign service; auth is an api_key header.
package instantly

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"coogi-engine/internal/domain"
	"coogi-engine/internal/provider"
)

const (
	serviceName = "instantly"
	apiBase     = "https://api.instantly.ai/api/v1"
)

type Config struct {
	APIKey  string
	BaseURL string // override for tests
}

type Service struct {
	cfg Config
	hc  *provider.Client
}

func New(cfg Config, hc *provider.Client) *Service {
	if cfg.BaseURL == "" {
		cfg.BaseURL = apiBase
	}
	return &Service{cfg: cfg, hc: hc}
}

func (s *Service) Name() string { return serviceName }

func (s *Service) header() http.Header {
	h := http.Header{}
	h.Set("api_key", s.cfg.APIKey)
	return h
}

type createResponse struct {
	ID string `json:"id"`
}

type lead struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Title     string `json:"title"`
}

func (s *Service) CreateCampaign(ctx context.Context, draft provider.CampaignDraft) (domain.CampaignRecord, error) {
	if strings.TrimSpace(s.cfg.APIKey) == "" {
		return domain.CampaignRecord{}, provider.AuthMissing(serviceName)
	}

	body := map[string]any{
		"campaign_name":       draft.Name,
		"from_email":          draft.FromEmail,
		"reply_to_email":      draft.FromEmail,
		"subject":             draft.Subject,
		"body_text":           draft.Message,
		"schedule_start_time": "now",
	}

	var created createResponse
	if err := s.hc.PostJSON(ctx, serviceName, s.cfg.BaseURL+"/campaigns", s.header(), body, &created); err != nil {
		return domain.CampaignRecord{}, err
	}

	// Lead upload failure is logged by the caller; the campaign exists
	// either way and the record reflects that.
	leadErr := s.addLeads(ctx, created.ID, draft.Contacts)

	rec := domain.CampaignRecord{
		ID:         serviceName + "_" + created.ID,
		Name:       draft.Name,
		Subject:    draft.Subject,
		Message:    draft.Message,
		Status:     domain.CampaignActive,
		Service:    serviceName,
		Company:    draft.Company,
		Contacts:   draft.Contacts,
		LeadCount:  len(draft.Contacts),
		ExternalID: created.ID,
		CreatedAt:  time.Now().UTC(),
	}
	return rec, leadErr
}

func (s *Service) addLeads(ctx context.Context, campaignID string, contacts []domain.ContactRecord) error {
	if len(contacts) == 0 {
		return nil
	}

	leads := make([]lead, 0, len(contacts))
	for _, c := range contacts {
		first, last := splitName(c.Name)
		leads = append(leads, lead{
			Email:     c.Email,
			FirstName: first,
			LastName:  last,
			Company:   c.Company,
			Title:     c.Title,
		})
	}

	url := fmt.Sprintf("%s/campaigns/%s/leads", s.cfg.BaseURL, campaignID)
	return s.hc.PostJSON(ctx, serviceName, url, s.header(), map[string]any{"leads": leads}, nil)
}

func (s *Service) PauseCampaign(ctx context.Context, externalID string) error {
	return s.setStatus(ctx, externalID, "pause")
}

func (s *Service) ResumeCampaign(ctx context.Context, externalID string) error {
	return s.setStatus(ctx, externalID, "resume")
}

func (s *Service) CancelCampaign(ctx context.Context, externalID string) error {
	return s.hc.Delete(ctx, serviceName, fmt.Sprintf("%s/campaigns/%s", s.cfg.BaseURL, externalID), s.header())
}

func (s *Service) setStatus(ctx context.Context, externalID, action string) error {
	if strings.TrimSpace(s.cfg.APIKey) == "" {
		return provider.AuthMissing(serviceName)
	}
	url := fmt.Sprintf("%s/campaigns/%s/%s", s.cfg.BaseURL, externalID, action)
	return s.hc.PostJSON(ctx, serviceName, url, s.header(), map[string]any{}, nil)
}

func splitName(name string) (first, last string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}
