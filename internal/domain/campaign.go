package domain

import "time"

// Campaign status values. Service-backed campaigns start active; the
// internal fallback starts as a draft.
const (
	CampaignDraft     = "draft"
	CampaignActive    = "active"
	CampaignPaused    = "paused"
	CampaignCancelled = "cancelled"
)

type CampaignRecord struct {
	ID         string          `json:"id"` // prefixed by originating service
	Name       string          `json:"name"`
	Subject    string          `json:"subject"`
	Message    string          `json:"message"`
	Status     string          `json:"status"`
	Service    string          `json:"service"` // instantly/smartlead/internal
	Company    string          `json:"company"`
	Contacts   []ContactRecord `json:"contacts,omitempty"`
	LeadCount  int             `json:"lead_count"`
	ReplyCount int             `json:"reply_count"`
	ExternalID string          `json:"external_id,omitempty"`
	IsDemo     bool            `json:"is_demo"`
	CreatedAt  time.Time       `json:"created_at"`
}
