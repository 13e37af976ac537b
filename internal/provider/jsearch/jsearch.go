// Package jsearch wraps the JSearch job-search API on RapidAPI.
package jsearch

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
	sourceName = "jsearch"
	searchURL  = "https://jsearch.p.rapidapi.com/search"
	apiHost    = "jsearch.p.rapidapi.com"
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
		cfg.BaseURL = searchURL
	}
	return &Source{cfg: cfg, hc: hc}
}

func (s *Source) Name() string { return sourceName }

type searchResponse struct {
	Data []jobPayload `json:"data"`
}

// jobPayload is JSearch's raw job shape; only the fields we map are kept.
type jobPayload struct {
	JobID          string `json:"job_id"`
	Title          string `json:"job_title"`
	Employer       string `json:"employer_name"`
	City           string `json:"job_city"`
	State          string `json:"job_state"`
	ApplyLink      string `json:"job_apply_link"`
	Description    string `json:"job_description"`
	PostedAt       string `json:"job_posted_at_datetime_utc"`
	EmploymentType string `json:"job_employment_type"`
	Salary         string `json:"job_salary"`
}

func (s *Source) Search(ctx context.Context, req domain.SearchRequest, limit int) ([]domain.JobRecord, error) {
	if strings.TrimSpace(s.cfg.RapidAPIKey) == "" {
		return nil, provider.AuthMissing(sourceName)
	}
	if limit <= 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("query", req.Query)
	params.Set("page", "1")
	params.Set("num_pages", "3")
	params.Set("date_posted", datePosted(req.HoursOld))
	if loc := strings.TrimSpace(req.Location); loc != "" && !strings.EqualFold(loc, "United States") {
		params.Set("location", loc)
	}

	header := http.Header{}
	header.Set("X-RapidAPI-Key", s.cfg.RapidAPIKey)
	header.Set("X-RapidAPI-Host", apiHost)

	var resp searchResponse
	if err := s.hc.GetJSON(ctx, sourceName, s.cfg.BaseURL, params, header, &resp); err != nil {
		return nil, err
	}

	jobs := make([]domain.JobRecord, 0, len(resp.Data))
	for i, p := range resp.Data {
		if i == limit {
			break
		}
		jobs = append(jobs, normalize(p))
	}
	return jobs, nil
}

func datePosted(hoursOld int) string {
	switch {
	case hoursOld > 0 && hoursOld <= 24:
		return "today"
	case hoursOld > 0 && hoursOld <= 168:
		return "week"
	default:
		return "month"
	}
}

func normalize(p jobPayload) domain.JobRecord {
	id := p.JobID
	if id == "" {
		id = fmt.Sprintf("jsearch_%d", time.Now().UnixNano())
	}
	loc := strings.TrimSuffix(strings.TrimSpace(p.City+", "+p.State), ",")
	return domain.JobRecord{
		ID:             id,
		Title:          orUnknown(p.Title, "Unknown Title"),
		Company:        orUnknown(p.Employer, "Unknown Company"),
		Location:       loc,
		URL:            p.ApplyLink,
		Description:    provider.Truncate(p.Description),
		PostedDate:     p.PostedAt,
		EmploymentType: p.EmploymentType,
		Salary:         provider.CleanSalary(p.Salary),
		Site:           sourceName,
		IsRemote:       provider.IsRemoteText(p.Title, p.Description),
		Skills:         provider.ExtractSkills(p.Description),
		ScrapedAt:      time.Now().UTC(),
	}
}

func orUnknown(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
