// Package demo generates synthetic placeholder records for when every
// external provider has failed. Everything produced here carries
// IsDemo=true so callers can tell placeholder from real.
package demo

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"coogi-engine/internal/domain"
)

// Site is the origin tag stamped on all synthetic jobs.
const Site = "demo"

// JobFloor is how many synthetic jobs one fallback pass produces.
const JobFloor = 5

var companies = map[string][]string{
	"small":  {"TechStart Inc", "Innovation Labs", "GrowthCorp", "StartupXYZ", "AgileTeam"},
	"medium": {"MidScale Solutions", "Regional Corp", "GrowthTech", "ExpandCo", "ScaleUp Inc"},
	"all":    {"Global Corp", "Enterprise Solutions", "MegaTech", "Industry Leader", "Fortune Company"},
}

var titleSuffixes = [JobFloor]string{"Specialist", "Manager", "Director", "Lead", "Senior"}

// Companies returns the fixed company list for a size bucket.
func Companies(companySize string) []string {
	if cs, ok := companies[companySize]; ok {
		return cs
	}
	return companies["all"]
}

// Jobs synthesizes the demo-floor worth of job records for a query.
func Jobs(req domain.SearchRequest) []domain.JobRecord {
	names := Companies(req.CompanySize)
	location := req.Location
	if location == "" || strings.EqualFold(location, "United States") {
		location = "New York, NY"
	}
	size := req.CompanySize
	if size == "" {
		size = "all"
	}

	jobs := make([]domain.JobRecord, 0, JobFloor)
	for i := 0; i < JobFloor; i++ {
		jobs = append(jobs, domain.JobRecord{
			ID:             fmt.Sprintf("demo_%d", rand.Intn(90000)+10000),
			Title:          titleCase(req.Query) + " " + titleSuffixes[i],
			Company:        names[i%len(names)],
			Location:       location,
			URL:            fmt.Sprintf("https://demo-job-%d.example.com", i),
			Description:    fmt.Sprintf("We are looking for a skilled %s to join our %s team...", req.Query, size),
			PostedDate:     "1 day ago",
			EmploymentType: "fulltime",
			Salary:         fmt.Sprintf("$%dk - $%dk", rand.Intn(90)+60, rand.Intn(40)+160),
			Site:           Site,
			IsRemote:       i%2 == 0,
			Skills:         append(strings.Fields(req.Query), "teamwork", "communication"),
			IsDemo:         true,
			ScrapedAt:      time.Now().UTC(),
		})
	}
	return jobs
}

var contactSeeds = []struct {
	name  string
	title string
}{
	{"Sarah Johnson", "HR Manager"},
	{"Michael Davis", "Talent Acquisition Specialist"},
	{"Lisa Wilson", "Recruiting Director"},
	{"David Brown", "Head of People Operations"},
	{"Emily Chen", "Senior Recruiter"},
}

// Contacts synthesizes up to count plausible recruiting contacts for a
// company, with deterministic first.last addresses on its guessed domain.
func Contacts(company, companyDomain string, count int) []domain.ContactRecord {
	if count > len(contactSeeds) {
		count = len(contactSeeds)
	}

	contacts := make([]domain.ContactRecord, 0, count)
	for i := 0; i < count; i++ {
		seed := contactSeeds[i]
		parts := strings.Fields(seed.name)
		first := strings.ToLower(parts[0])
		last := strings.ToLower(parts[1])

		contacts = append(contacts, domain.ContactRecord{
			ID:           fmt.Sprintf("demo_%d", rand.Intn(9000)+1000),
			Name:         seed.name,
			Email:        fmt.Sprintf("%s.%s@%s", first, last, companyDomain),
			Title:        seed.title,
			Company:      company,
			Phone:        fmt.Sprintf("+1-555-%03d-%04d", rand.Intn(900)+100, rand.Intn(9000)+1000),
			LinkedInURL:  fmt.Sprintf("https://linkedin.com/in/%s-%s", first, last),
			Source:       "demo",
			Confidence:   70,
			Verification: domain.VerifyUnknown,
			IsDemo:       true,
			FoundAt:      time.Now().UTC(),
		})
	}
	return contacts
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
