package aggregate

import (
	"context"
	"strings"
	"testing"

	"coogi-engine/internal/demo"
	"coogi-engine/internal/domain"
	"coogi-engine/internal/provider"
)

type fakeJobSource struct {
	name  string
	jobs  []domain.JobRecord
	err   error
	calls int
}

func (f *fakeJobSource) Name() string { return f.name }

func (f *fakeJobSource) Search(ctx context.Context, req domain.SearchRequest, limit int) ([]domain.JobRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.jobs) {
		return f.jobs[:limit], nil
	}
	return f.jobs, nil
}

func makeJobs(site string, n int) []domain.JobRecord {
	out := make([]domain.JobRecord, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.JobRecord{
			Title:   "Software Engineer " + site + string(rune('a'+i)),
			Company: "Company" + site + string(rune('a'+i)),
			Site:    site,
		})
	}
	return out
}

func TestCollectAllSourcesRateLimitedFallsBackToDemo(t *testing.T) {
	t.Parallel()

	rl := func(name string) error {
		return &provider.Failure{Provider: name, Kind: provider.FailRateLimited, Status: 429}
	}
	p := &JobPipeline{Sources: []provider.JobSource{
		&fakeJobSource{name: "boards", err: rl("boards")},
		&fakeJobSource{name: "jsearch", err: rl("jsearch")},
		&fakeJobSource{name: "linkedin", err: rl("linkedin")},
	}}

	res := p.Collect(context.Background(), domain.SearchRequest{
		Query:    "software engineer",
		Location: "United States",
		Target:   50,
	})

	if len(res.Jobs) < demo.JobFloor {
		t.Fatalf("got %d jobs, want at least the demo floor %d", len(res.Jobs), demo.JobFloor)
	}
	if !res.UsedDemo {
		t.Fatal("UsedDemo not set")
	}
	if len(res.Failures) != 3 {
		t.Fatalf("got %d failures, want 3", len(res.Failures))
	}
	allowed := make(map[string]bool)
	for _, c := range demo.Companies("all") {
		allowed[c] = true
	}
	for _, j := range res.Jobs {
		if !j.IsDemo {
			t.Errorf("job %q not flagged is_demo", j.Title)
		}
		if j.Site != demo.Site {
			t.Errorf("job %q has site %q, want %q", j.Title, j.Site, demo.Site)
		}
		if !allowed[j.Company] {
			t.Errorf("job %q has company %q outside the synthetic list", j.Title, j.Company)
		}
	}
}

func TestCollectEarlyStopSkipsLaterSources(t *testing.T) {
	t.Parallel()

	cheap := &fakeJobSource{name: "boards", jobs: makeJobs("indeed", 10)}
	paid := &fakeJobSource{name: "jsearch", jobs: makeJobs("jsearch", 10)}
	p := &JobPipeline{Sources: []provider.JobSource{cheap, paid}}

	res := p.Collect(context.Background(), domain.SearchRequest{Query: "engineer", Target: 10})

	if paid.calls != 0 {
		t.Fatalf("paid source called %d times after target was met cheaply", paid.calls)
	}
	if len(res.Jobs) != 10 {
		t.Fatalf("got %d jobs, want 10", len(res.Jobs))
	}
	if res.UsedDemo {
		t.Fatal("UsedDemo set despite full real collection")
	}
}

func TestCollectZeroResultsIsNotFailure(t *testing.T) {
	t.Parallel()

	empty := &fakeJobSource{name: "boards"}
	backup := &fakeJobSource{name: "jsearch", jobs: makeJobs("jsearch", 20)}
	p := &JobPipeline{Sources: []provider.JobSource{empty, backup}}

	res := p.Collect(context.Background(), domain.SearchRequest{Query: "engineer", Target: 20})

	if len(res.Failures) != 0 {
		t.Fatalf("zero results recorded as failure: %v", res.Failures)
	}
	if got := res.SourceCounts["boards"]; got != 0 {
		t.Fatalf("boards count = %d, want 0", got)
	}
	if backup.calls != 1 {
		t.Fatalf("backup source called %d times, want 1", backup.calls)
	}
}

func TestCollectAccumulatesAcrossSources(t *testing.T) {
	t.Parallel()

	p := &JobPipeline{Sources: []provider.JobSource{
		&fakeJobSource{name: "boards", jobs: makeJobs("indeed", 4)},
		&fakeJobSource{name: "jsearch", err: &provider.Failure{Provider: "jsearch", Kind: provider.FailTimeout}},
		&fakeJobSource{name: "linkedin", jobs: makeJobs("linkedin", 6)},
	}, DisableDemoPadding: true}

	res := p.Collect(context.Background(), domain.SearchRequest{Query: "engineer", Target: 50})

	if len(res.Jobs) != 10 {
		t.Fatalf("got %d jobs, want 10 accumulated across sources", len(res.Jobs))
	}
	if len(res.Failures) != 1 || res.Failures[0].Kind != provider.FailTimeout {
		t.Fatalf("failures = %v, want one timeout", res.Failures)
	}
}

func TestCollectRanksTitleMatchesFirst(t *testing.T) {
	t.Parallel()

	jobs := []domain.JobRecord{
		{Title: "Accountant", Company: "A Corp", Description: "numbers"},
		{Title: "Golang Developer", Company: "B Corp", Description: "services"},
	}
	p := &JobPipeline{
		Sources:            []provider.JobSource{&fakeJobSource{name: "boards", jobs: jobs}},
		DisableDemoPadding: true,
	}

	res := p.Collect(context.Background(), domain.SearchRequest{Query: "golang developer", Target: 10})

	if len(res.Jobs) != 2 {
		t.Fatalf("got %d jobs, want 2", len(res.Jobs))
	}
	if !strings.Contains(res.Jobs[0].Title, "Golang") {
		t.Fatalf("top job is %q, want the query match first", res.Jobs[0].Title)
	}
}
