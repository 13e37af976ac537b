package provider

import (
	"context"
	"errors"
	"fmt"

	"coogi-engine/internal/domain"
)

// FailKind is the adapter failure taxonomy. Zero results is NOT a
// failure; adapters return an empty slice and a nil error for that.
type FailKind string

const (
	FailTimeout     FailKind = "timeout"
	FailRateLimited FailKind = "rate_limited"
	FailHTTP        FailKind = "http_error"
	FailAuthMissing FailKind = "auth_missing"
)

// Failure is the typed error every adapter reports. The orchestrators
// switch on Kind instead of unwrapping provider-specific errors.
type Failure struct {
	Provider string
	Kind     FailKind
	Status   int // HTTP status when Kind is http_error or rate_limited
	Err      error
}

func (f *Failure) Error() string {
	if f.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d)", f.Provider, f.Kind, f.Status)
	}
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Provider, f.Kind, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Provider, f.Kind)
}

func (f *Failure) Unwrap() error { return f.Err }

// AsFailure extracts a *Failure from an error chain.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// AuthMissing marks an adapter that was skipped because its credential
// is not configured.
func AuthMissing(providerName string) *Failure {
	return &Failure{Provider: providerName, Kind: FailAuthMissing}
}

// JobSource searches one external job API. limit is a remaining-capacity
// hint from the orchestrator, not a hard contract.
type JobSource interface {
	Name() string
	Search(ctx context.Context, req domain.SearchRequest, limit int) ([]domain.JobRecord, error)
}

// ContactSource discovers contacts for one company domain.
type ContactSource interface {
	Name() string
	FindContacts(ctx context.Context, company, companyDomain string, roles []string, limit int) ([]domain.ContactRecord, error)
}

// CampaignDraft is the normalized input to a campaign service.
type CampaignDraft struct {
	Name      string
	Subject   string
	Message   string
	Company   string
	FromName  string
	FromEmail string
	Contacts  []domain.ContactRecord
}

// CampaignService creates and manages outreach campaigns on one
// external platform.
type CampaignService interface {
	Name() string
	CreateCampaign(ctx context.Context, draft CampaignDraft) (domain.CampaignRecord, error)
	PauseCampaign(ctx context.Context, externalID string) error
	ResumeCampaign(ctx context.Context, externalID string) error
	CancelCampaign(ctx context.Context, externalID string) error
}
