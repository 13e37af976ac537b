package domain

import "time"

// Verification status values for ContactRecord.
const (
	VerifyValid   = "valid"
	VerifyInvalid = "invalid"
	VerifyUnknown = "unknown"
)

type ContactRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Phone        string    `json:"phone,omitempty"`
	LinkedInURL  string    `json:"linkedin_url,omitempty"`
	Source       string    `json:"source"`     // which provider found it
	Confidence   int       `json:"confidence"` // 0-100 heuristic
	Verification string    `json:"verification_status"`
	IsDemo       bool      `json:"is_demo"`
	FoundAt      time.Time `json:"found_at"`
}
