package boards

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"coogi-engine/internal/domain"
	"coogi-engine/internal/provider"
)

const boardPage = `<html><body>
<ul>
  <li>
    <a href="/viewjob?id=1">Go Engineer</a>
    <span class="companyName">Acme Corp</span>
  </li>
  <li>
    <a href="/viewjob?id=2">Remote SRE</a>
    <span class="company">Globex</span>
  </li>
  <li>
    <a href="/viewjob?id=1">Go Engineer duplicate link</a>
  </li>
  <li>
    <a href="/viewjob?id=3">Apply</a>
  </li>
  <li>
    <a href="/about">About us</a>
  </li>
</ul>
</body></html>`

func testBoard(srvURL string) Board {
	return Board{Site: "indeed", SearchURL: srvURL + "/jobs?q=%s&l=%s", JobPath: "/viewjob"}
}

func TestScrapeExtractsPostings(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "go engineer" {
			t.Errorf("query = %q", got)
		}
		w.Write([]byte(boardPage))
	}))
	defer srv.Close()

	s := New(Config{Boards: []Board{testBoard(srv.URL)}})
	jobs, err := s.Search(context.Background(), domain.SearchRequest{Query: "go engineer", Location: "Austin"}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	// Duplicate hrefs, junk anchor text and non-posting links are skipped.
	if len(jobs) != 2 {
		t.Fatalf("got %d jobs: %+v", len(jobs), jobs)
	}
	if jobs[0].Title != "Go Engineer" || jobs[0].Company != "Acme Corp" {
		t.Fatalf("first job = %+v", jobs[0])
	}
	if jobs[0].URL != srv.URL+"/viewjob?id=1" {
		t.Fatalf("relative href not resolved: %q", jobs[0].URL)
	}
	if jobs[0].Site != "indeed" || jobs[0].Location != "Austin" {
		t.Fatalf("metadata = %+v", jobs[0])
	}
	if !jobs[1].IsRemote {
		t.Fatal("title says remote, IsRemote false")
	}
}

func TestScrapeHonorsLimit(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(boardPage))
	}))
	defer srv.Close()

	s := New(Config{Boards: []Board{testBoard(srv.URL)}})
	jobs, err := s.Search(context.Background(), domain.SearchRequest{Query: "x"}, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("got %d jobs, want 1", len(jobs))
	}
}

func TestScrapeRateLimitedIsFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := New(Config{Boards: []Board{testBoard(srv.URL)}})
	_, err := s.Search(context.Background(), domain.SearchRequest{Query: "x"}, 10)

	var f *provider.Failure
	if !errors.As(err, &f) || f.Kind != provider.FailRateLimited {
		t.Fatalf("err = %v, want rate_limited failure", err)
	}
}

func TestScrapeOneBoardDownOthersServe(t *testing.T) {
	t.Parallel()

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer down.Close()
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(boardPage))
	}))
	defer up.Close()

	s := New(Config{Boards: []Board{testBoard(down.URL), testBoard(up.URL)}})
	jobs, err := s.Search(context.Background(), domain.SearchRequest{Query: "x"}, 10)
	if err != nil {
		t.Fatalf("Search with one board down: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("got %d jobs from the healthy board", len(jobs))
	}
}
