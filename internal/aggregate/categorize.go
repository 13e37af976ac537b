package aggregate

import (
	"log"
	"sort"
	"strings"

	"coogi-engine/internal/domain"
)

type sizeFilter struct {
	keywords []string
	exclude  []string
}

var sizeFilters = map[string]sizeFilter{
	"small": {
		keywords: []string{"startup", "small business", "boutique", "growing company"},
		exclude:  []string{"enterprise", "corporation", "multinational", "fortune 500"},
	},
	"medium": {
		keywords: []string{"medium-sized", "mid-market", "growing", "established"},
		exclude:  []string{"startup", "small business", "enterprise", "multinational"},
	},
}

// FromLinkedIn reports whether a job record originated on LinkedIn.
// Records scraped directly from LinkedIn always count; JSearch results
// count only when their URL points back at linkedin.com.
func FromLinkedIn(j domain.JobRecord) bool {
	switch j.Site {
	case "linkedin":
		return true
	case "jsearch":
		return strings.Contains(strings.ToLower(j.URL), "linkedin.com")
	}
	return false
}

// SplitByOrigin partitions jobs into linkedin-origin and everything else.
func SplitByOrigin(jobs []domain.JobRecord) (linkedin, other []domain.JobRecord) {
	for _, j := range jobs {
		if FromLinkedIn(j) {
			linkedin = append(linkedin, j)
		} else {
			other = append(other, j)
		}
	}
	return linkedin, other
}

// FilterByCompanySize keeps jobs whose company name or description
// suggests the requested size bucket. "all" and unknown buckets pass
// everything through. When the keyword filter would throw away more than
// 70% of the input, it relaxes to exclusions-only so a strict bucket on
// sparse data does not starve the pipeline.
func FilterByCompanySize(jobs []domain.JobRecord, companySize string) []domain.JobRecord {
	f, ok := sizeFilters[companySize]
	if !ok {
		return jobs
	}

	strict := filterSize(jobs, f, false)
	if len(jobs) > 0 && len(strict)*10 < len(jobs)*3 {
		relaxed := filterSize(jobs, f, true)
		if len(relaxed) > len(strict) {
			log.Printf("[aggregate] size filter %q too strict (%d/%d kept), relaxing to %d", companySize, len(strict), len(jobs), len(relaxed))
			return relaxed
		}
	}
	return strict
}

func filterSize(jobs []domain.JobRecord, f sizeFilter, relaxed bool) []domain.JobRecord {
	out := jobs[:0:0]
	for _, j := range jobs {
		text := strings.ToLower(j.Company) + " " + strings.ToLower(j.Description)

		if containsAny(text, f.exclude) {
			continue
		}
		if relaxed || containsAny(text, f.keywords) {
			out = append(out, j)
			continue
		}
		// Ambiguous records lean medium rather than small.
		if matchesAmbiguous(f) {
			out = append(out, j)
		}
	}
	return out
}

func matchesAmbiguous(f sizeFilter) bool {
	return len(f.keywords) > 0 && f.keywords[0] == "medium-sized"
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

// SortByRelevance orders jobs by how well title and description match
// the query, with a small boost for postings marked today. Stable so
// the source-priority order breaks ties.
func SortByRelevance(jobs []domain.JobRecord, query string) {
	words := strings.Fields(strings.ToLower(query))

	type scored struct {
		job   domain.JobRecord
		score int
	}
	ranked := make([]scored, len(jobs))
	for i, j := range jobs {
		title := strings.ToLower(j.Title)
		desc := strings.ToLower(j.Description)
		s := 0
		for _, w := range words {
			if strings.Contains(title, w) {
				s += 10
			}
			if strings.Contains(desc, w) {
				s++
			}
		}
		if strings.Contains(strings.ToLower(j.PostedDate), "today") {
			s += 5
		}
		ranked[i] = scored{job: j, score: s}
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].score > ranked[b].score })
	for i, r := range ranked {
		jobs[i] = r.job
	}
}
