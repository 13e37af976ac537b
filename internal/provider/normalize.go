package provider

import "strings"

// descriptionLimit keeps normalized records small; full postings are
// never needed downstream.
const descriptionLimit = 500

var commonSkills = []string{
	"python", "javascript", "react", "node.js", "go", "sql", "aws",
	"docker", "kubernetes", "git", "agile", "scrum", "leadership",
	"communication", "teamwork", "problem-solving", "analytical",
	"management",
}

// Truncate caps a description at the normalized limit.
func Truncate(s string) string {
	if len(s) > descriptionLimit {
		return s[:descriptionLimit]
	}
	return s
}

// ExtractSkills pulls known skill keywords out of a description.
// Capped at 10 so demo-heavy descriptions don't bloat records.
func ExtractSkills(description string) []string {
	if description == "" {
		return nil
	}
	low := strings.ToLower(description)

	var found []string
	for _, skill := range commonSkills {
		if strings.Contains(low, skill) {
			found = append(found, skill)
			if len(found) == 10 {
				break
			}
		}
	}
	return found
}

// CleanSalary normalizes the free-text salary field; provider payloads
// use "null"/"none" strings for absent values.
func CleanSalary(s string) string {
	t := strings.TrimSpace(s)
	switch strings.ToLower(t) {
	case "", "null", "none":
		return ""
	}
	return t
}

// IsRemoteText reports whether any of the given fields mention remote work.
func IsRemoteText(fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), "remote") {
			return true
		}
	}
	return false
}
