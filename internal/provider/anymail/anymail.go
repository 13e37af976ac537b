// Package anymail wraps the AnyMailFinder domain lookup on RapidAPI.
// Last paid source in the contact chain; its results arrive unverified.
package anymail

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"coogi-engine/internal/domain"
	"coogi-engine/internal/provider"
)

const (
	sourceName = "anymail"
	lookupURL  = "https://anymail-finder.p.rapidapi.com/domain"
	apiHost    = "anymail-finder.p.rapidapi.com"

	unverifiedConfidence = 75
)

type Config struct {
	RapidAPIKey string
	BaseURL     string // override for tests
}

type Source struct {
	cfg Config
	hc  *provider.Client
}

func New(cfg Config, hc *provider.Client) *Source {
	if cfg.BaseURL == "" {
		cfg.BaseURL = lookupURL
	}
	return &Source{cfg: cfg, hc: hc}
}

func (s *Source) Name() string { return sourceName }

type lookupResponse struct {
	Emails []emailPayload `json:"emails"`
}

type emailPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Position string `json:"position"`
}

func (s *Source) FindContacts(ctx context.Context, company, companyDomain string, _ []string, limit int) ([]domain.ContactRecord, error) {
	if strings.TrimSpace(s.cfg.RapidAPIKey) == "" {
		return nil, provider.AuthMissing(sourceName)
	}
	if limit <= 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("domain", companyDomain)

	header := http.Header{}
	header.Set("X-RapidAPI-Key", s.cfg.RapidAPIKey)
	header.Set("X-RapidAPI-Host", apiHost)

	var resp lookupResponse
	if err := s.hc.GetJSON(ctx, sourceName, s.cfg.BaseURL, params, header, &resp); err != nil {
		return nil, err
	}

	contacts := make([]domain.ContactRecord, 0, len(resp.Emails))
	for i, e := range resp.Emails {
		if i == limit {
			break
		}
		name := e.Name
		if name == "" {
			name = "Unknown"
		}
		contacts = append(contacts, domain.ContactRecord{
			ID:           fmt.Sprintf("anymail_%d_%d", time.Now().Unix(), i),
			Name:         name,
			Email:        e.Email,
			Title:        e.Position,
			Company:      company,
			Source:       sourceName,
			Confidence:   unverifiedConfidence,
			Verification: domain.VerifyUnknown,
			FoundAt:      time.Now().UTC(),
		})
	}
	return contacts, nil
}
