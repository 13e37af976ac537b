package aggregate

import "strings"

var companySuffixes = []string{
	" incorporated", " corporation", " company", " group",
	" inc", " llc", " corp", " ltd", " co",
}

// GuessDomain derives a best-effort web domain from a company name:
// lowercase, corporate suffixes stripped, punctuation and spaces
// removed, ".com" appended. "Acme Corp." becomes "acme.com".
func GuessDomain(company string) string {
	s := strings.ToLower(strings.TrimSpace(company))
	s = strings.TrimSuffix(s, ".")
	for _, suf := range companySuffixes {
		s = strings.TrimSuffix(s, suf)
	}
	var b strings.Builder
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "example.com"
	}
	return b.String() + ".com"
}
