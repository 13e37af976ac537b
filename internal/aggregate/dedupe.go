package aggregate

import (
	"strings"

	"coogi-engine/internal/domain"
)

// jobKey is the composite identity used for duplicate detection across
// sources: lowercased title plus lowercased company.
func jobKey(j domain.JobRecord) string {
	return strings.ToLower(strings.TrimSpace(j.Title)) + "_" + strings.ToLower(strings.TrimSpace(j.Company))
}

// DedupeJobs removes duplicate jobs, keeping the first occurrence. The
// input ordering encodes source priority, so first-seen wins.
func DedupeJobs(jobs []domain.JobRecord) []domain.JobRecord {
	seen := make(map[string]struct{}, len(jobs))
	out := jobs[:0:0]
	for _, j := range jobs {
		k := jobKey(j)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, j)
	}
	return out
}

// DedupeContacts removes duplicate contacts by lowercased email address,
// first occurrence kept. Contacts without an email pass through.
func DedupeContacts(contacts []domain.ContactRecord) []domain.ContactRecord {
	seen := make(map[string]struct{}, len(contacts))
	out := contacts[:0:0]
	for _, c := range contacts {
		email := strings.ToLower(strings.TrimSpace(c.Email))
		if email == "" {
			out = append(out, c)
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		out = append(out, c)
	}
	return out
}
