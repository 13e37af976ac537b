package domain

import "time"

// JobRecord is the normalized shape every job source adapter maps into.
// Records are immutable after normalization; the deduplicator drops later
// copies instead of merging.
type JobRecord struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Company        string    `json:"company"`
	Location       string    `json:"location"`
	URL            string    `json:"url"`
	Description    string    `json:"description"` // truncated to 500 chars at normalization
	PostedDate     string    `json:"posted_date"`
	EmploymentType string    `json:"employment_type"`
	Salary         string    `json:"salary,omitempty"` // free text, best-effort
	Site           string    `json:"site"`             // origin tag: linkedin/jsearch/boards/demo
	IsRemote       bool      `json:"is_remote"`
	Skills         []string  `json:"skills,omitempty"`
	IsDemo         bool      `json:"is_demo"`
	ScrapedAt      time.Time `json:"scraped_at"`
}

// SearchRequest is the caller-facing input of one pipeline run.
type SearchRequest struct {
	Query       string `json:"query"`
	Location    string `json:"location,omitempty"`
	Target      int    `json:"target,omitempty"`       // desired result count
	HoursOld    int    `json:"hours_old,omitempty"`    // recency filter
	CompanySize string `json:"company_size,omitempty"` // small/medium/all
}
