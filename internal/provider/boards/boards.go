// Package boards scrapes public job-board search pages directly. It is
// the cheap source in the fallback chain: no API key, no metered quota,
// just HTML. Parsing is deliberately crude anchor-walking; boards change
// their markup often and we only need title/company/url.
package boards

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"coogi-engine/internal/domain"
	"coogi-engine/internal/provider"

	"github.com/PuerkitoBio/goquery"
)

const sourceName = "boards"

// Board describes one scrapeable job board.
type Board struct {
	Site      string // origin tag stamped on records, e.g. "indeed"
	SearchURL string // printf-style: query, location
	JobPath   string // substring an anchor href must contain to count as a posting
}

// DefaultBoards mirrors the boards the original multi-board scraper hit.
func DefaultBoards() []Board {
	return []Board{
		{Site: "indeed", SearchURL: "https://www.indeed.com/jobs?q=%s&l=%s", JobPath: "/viewjob"},
		{Site: "ziprecruiter", SearchURL: "https://www.ziprecruiter.com/jobs-search?search=%s&location=%s", JobPath: "/jobs/"},
	}
}

type Config struct {
	Boards []Board
}

type Scraper struct {
	cfg Config
	hc  *http.Client
	lim *provider.HostLimiter
}

func New(cfg Config) *Scraper {
	if len(cfg.Boards) == 0 {
		cfg.Boards = DefaultBoards()
	}
	return &Scraper{
		cfg: cfg,
		hc:  &http.Client{Timeout: 20 * time.Second},
		lim: provider.NewHostLimiter(1, 1),
	}
}

func (s *Scraper) Name() string { return sourceName }

func (s *Scraper) Search(ctx context.Context, req domain.SearchRequest, limit int) ([]domain.JobRecord, error) {
	if limit <= 0 {
		return nil, nil
	}

	var out []domain.JobRecord
	var lastErr error
	for _, b := range s.cfg.Boards {
		jobs, err := s.scrapeBoard(ctx, b, req, limit-len(out))
		if err != nil {
			// one board down is not a source failure; log upstream, keep going
			lastErr = err
			continue
		}
		out = append(out, jobs...)
		if len(out) >= limit {
			break
		}
	}

	if len(out) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}

func (s *Scraper) scrapeBoard(ctx context.Context, b Board, req domain.SearchRequest, limit int) ([]domain.JobRecord, error) {
	searchURL := fmt.Sprintf(b.SearchURL, url.QueryEscape(req.Query), url.QueryEscape(req.Location))

	if err := s.lim.WaitURL(ctx, searchURL); err != nil {
		return nil, &provider.Failure{Provider: sourceName, Kind: provider.FailTimeout, Err: err}
	}

	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	httpReq.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")

	res, err := s.hc.Do(httpReq)
	if err != nil {
		kind := provider.FailHTTP
		if ctx.Err() != nil {
			kind = provider.FailTimeout
		}
		return nil, &provider.Failure{Provider: sourceName, Kind: kind, Err: err}
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusTooManyRequests:
		return nil, &provider.Failure{Provider: sourceName, Kind: provider.FailRateLimited, Status: res.StatusCode}
	case res.StatusCode >= 400:
		return nil, &provider.Failure{Provider: sourceName, Kind: provider.FailHTTP, Status: res.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, &provider.Failure{Provider: sourceName, Kind: provider.FailHTTP, Err: fmt.Errorf("parse board html: %w", err)}
	}

	base, _ := url.Parse(searchURL)
	seen := map[string]bool{}

	var jobs []domain.JobRecord
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, ok := a.Attr("href")
		if !ok {
			return true
		}
		href = strings.TrimSpace(href)
		if href == "" || !strings.Contains(href, b.JobPath) {
			return true
		}

		abs := href
		if u, err := url.Parse(href); err == nil {
			abs = base.ResolveReference(u).String()
		}
		if seen[abs] {
			return true
		}
		seen[abs] = true

		title := cleanText(a.Text())
		if title == "" || looksLikeJunkTitle(title) {
			return true
		}

		jobs = append(jobs, domain.JobRecord{
			ID:        fmt.Sprintf("%s_%d", b.Site, len(seen)),
			Title:     title,
			Company:   companyNear(a),
			Location:  req.Location,
			URL:       abs,
			Site:      b.Site,
			IsRemote:  provider.IsRemoteText(title, req.Location),
			ScrapedAt: time.Now().UTC(),
		})
		return len(jobs) < limit
	})

	return jobs, nil
}

// companyNear looks for a company label in the anchor's card container.
func companyNear(a *goquery.Selection) string {
	card := a.Closest("li, article, div[class*=card]")
	if card.Length() == 0 {
		return "Unknown Company"
	}
	for _, sel := range []string{"[data-company]", ".companyName", ".company", "[class*=company]"} {
		if t := cleanText(card.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return "Unknown Company"
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

func looksLikeJunkTitle(t string) bool {
	l := strings.ToLower(t)
	return l == "apply" || strings.HasPrefix(l, "view ") || strings.HasPrefix(l, "see ")
}
