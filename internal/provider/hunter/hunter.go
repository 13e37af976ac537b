// Package hunter wraps the Hunter.io domain-search API. Auth is a
// query-string key, not a header.
package hunter

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"coogi-engine/internal/domain"
	"coogi-engine/internal/provider"
)

const (
	sourceName      = "hunter"
	domainSearchURL = "https://api.hunter.io/v2/domain-search"
)

type Config struct {
	APIKey  string
	BaseURL string // override for tests
}

type Source struct {
	cfg Config
	hc  *provider.Client
}

func New(cfg Config, hc *provider.Client) *Source {
	if cfg.BaseURL == "" {
		cfg.BaseURL = domainSearchURL
	}
	return &Source{cfg: cfg, hc: hc}
}

func (s *Source) Name() string { return sourceName }

type domainSearchResponse struct {
	Data struct {
		Emails []emailPayload `json:"emails"`
	} `json:"data"`
}

type emailPayload struct {
	Value        string `json:"value"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Position     string `json:"position"`
	Company      string `json:"company"`
	Confidence   int    `json:"confidence"`
	Verification struct {
		Result string `json:"result"`
	} `json:"verification"`
}

// FindContacts runs a Hunter domain search. Role relevance is the
// aggregator's job, so the roles argument goes unused here.
func (s *Source) FindContacts(ctx context.Context, company, companyDomain string, _ []string, limit int) ([]domain.ContactRecord, error) {
	if strings.TrimSpace(s.cfg.APIKey) == "" {
		return nil, provider.AuthMissing(sourceName)
	}
	if limit <= 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("domain", companyDomain)
	params.Set("api_key", s.cfg.APIKey)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", "0")

	var resp domainSearchResponse
	if err := s.hc.GetJSON(ctx, sourceName, s.cfg.BaseURL, params, nil, &resp); err != nil {
		return nil, err
	}

	contacts := make([]domain.ContactRecord, 0, len(resp.Data.Emails))
	for i, e := range resp.Data.Emails {
		name := strings.TrimSpace(e.FirstName + " " + e.LastName)
		co := e.Company
		if co == "" {
			co = company
		}
		contacts = append(contacts, domain.ContactRecord{
			ID:           fmt.Sprintf("hunter_%d_%d", time.Now().Unix(), i),
			Name:         name,
			Email:        e.Value,
			Title:        e.Position,
			Company:      co,
			Source:       sourceName,
			Confidence:   e.Confidence,
			Verification: verification(e.Verification.Result),
			FoundAt:      time.Now().UTC(),
		})
	}
	return contacts, nil
}

func verification(result string) string {
	switch result {
	case "deliverable", "valid":
		return domain.VerifyValid
	case "undeliverable", "invalid":
		return domain.VerifyInvalid
	default:
		return domain.VerifyUnknown
	}
}
