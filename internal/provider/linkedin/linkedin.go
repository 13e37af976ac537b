// Package linkedin wraps the Fresh LinkedIn scraper API on RapidAPI.
// It is the fast first-stage source: the UI wants LinkedIn postings on
// screen within a couple of minutes.
package linkedin

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
	sourceName = "linkedin"
	searchURL  = "https://fresh-linkedin-scraper-api.p.rapidapi.com/api/v1/job/search"
	apiHost    = "fresh-linkedin-scraper-api.p.rapidapi.com"

	// The API caps one page at 25 results.
	pageLimit = 25
)

// primaryLocations are queried in order when the request has no
// location of its own. Capped at two lookups per search for speed.
var primaryLocations = []string{"United States", "San Francisco", "New York"}

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
	Success bool         `json:"success"`
	Data    []jobPayload `json:"data"`
}

type jobPayload struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Location string `json:"location"`
	URL      string `json:"url"`
	PostedAt string `json:"posted_at"`
	IsRemote bool   `json:"is_remote"`
	Company  struct {
		Name string `json:"name"`
	} `json:"company"`
}

func (s *Source) Search(ctx context.Context, req domain.SearchRequest, limit int) ([]domain.JobRecord, error) {
	if strings.TrimSpace(s.cfg.RapidAPIKey) == "" {
		return nil, provider.AuthMissing(sourceName)
	}
	if limit <= 0 {
		return nil, nil
	}

	locations := primaryLocations[:2]
	if loc := strings.TrimSpace(req.Location); loc != "" {
		locations = []string{loc}
	}

	header := http.Header{}
	header.Set("X-RapidAPI-Key", s.cfg.RapidAPIKey)
	header.Set("X-RapidAPI-Host", apiHost)

	var jobs []domain.JobRecord
	var lastErr error
	for _, location := range locations {
		params := url.Values{}
		params.Set("keyword", req.Query)
		params.Set("location", location)
		params.Set("limit", strconv.Itoa(min(limit, pageLimit)))

		var resp searchResponse
		if err := s.hc.GetJSON(ctx, sourceName, s.cfg.BaseURL, params, header, &resp); err != nil {
			// one bad location must not sink the others
			lastErr = err
			continue
		}
		if !resp.Success {
			continue
		}
		for _, p := range resp.Data {
			jobs = append(jobs, normalize(p, location))
			if len(jobs) == limit {
				return jobs, nil
			}
		}
	}

	if len(jobs) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return jobs, nil
}

func normalize(p jobPayload, queriedLocation string) domain.JobRecord {
	id := p.ID
	if id == "" {
		id = fmt.Sprintf("linkedin_%d", time.Now().UnixNano())
	}
	loc := p.Location
	if loc == "" {
		loc = queriedLocation
	}
	return domain.JobRecord{
		ID:         id,
		Title:      p.Title,
		Company:    p.Company.Name,
		Location:   loc,
		URL:        p.URL,
		PostedDate: p.PostedAt,
		Site:       sourceName,
		IsRemote:   p.IsRemote || provider.IsRemoteText(p.Title, p.Location),
		ScrapedAt:  time.Now().UTC(),
	}
}
