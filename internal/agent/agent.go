// Package agent tracks long-running recruiting runs as staged progress
// records. Each agent walks four stages (linkedin fetch, other boards,
// contact enrichment, campaign creation); callers poll snapshots while
// the pipeline mutates state through a per-agent update channel.
package agent

import (
	"time"
)

// Stage keys, in pipeline order.
const (
	StageLinkedIn  = "linkedin_fetch"
	StageBoards    = "other_boards"
	StageContacts  = "contact_enrichment"
	StageCampaigns = "campaign_creation"
)

// Stage statuses.
const (
	StagePending   = "pending"
	StageRunning   = "running"
	StageCompleted = "completed"
	StageFailed    = "failed"
)

// Overall agent statuses.
const (
	StatusInitializing = "initializing"
	StatusLinkedIn     = "linkedin_stage"
	StatusEnrichment   = "enrichment_stage"
	StatusCompleted    = "completed"
	StatusFailed       = "failed"
)

// StageDef fixes a stage's display name, share of overall progress and
// wall-clock budget.
type StageDef struct {
	Key     string
	Name    string
	Weight  int
	Timeout time.Duration
}

// StageDefs lists the pipeline stages in execution order. Weights sum
// to 100.
var StageDefs = []StageDef{
	{Key: StageLinkedIn, Name: "LinkedIn Job Fetching", Weight: 40, Timeout: 3 * time.Minute},
	{Key: StageBoards, Name: "Other Job Boards", Weight: 30, Timeout: 5 * time.Minute},
	{Key: StageContacts, Name: "Contact Discovery & Verification", Weight: 20, Timeout: 10 * time.Minute},
	{Key: StageCampaigns, Name: "Campaign Creation", Weight: 10, Timeout: 2 * time.Minute},
}

func stageDef(key string) (StageDef, bool) {
	for _, d := range StageDefs {
		if d.Key == key {
			return d, true
		}
	}
	return StageDef{}, false
}

// Stage is one stage's externally visible state.
type Stage struct {
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	Results     int        `json:"results_count"`
	Error       string     `json:"error_message,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Totals counts what the run has produced so far, by record kind.
type Totals struct {
	Jobs      int `json:"total_jobs"`
	Contacts  int `json:"total_contacts"`
	Campaigns int `json:"total_campaigns"`
}

// Request is the caller's run specification.
type Request struct {
	Query       string   `json:"query"`
	Location    string   `json:"location,omitempty"`
	HoursOld    int      `json:"hours_old"`
	Target      int      `json:"target,omitempty"`
	CompanySize string   `json:"company_size"`
	TargetType  string   `json:"target_type"`
	CustomTags  []string `json:"custom_tags,omitempty"`
}

// Snapshot is a point-in-time copy of one agent handed to pollers. It
// shares no memory with the live state.
type Snapshot struct {
	ID        string           `json:"id"`
	Request   Request          `json:"request"`
	Status    string           `json:"status"`
	Progress  int              `json:"total_progress"`
	Stages    map[string]Stage `json:"stages"`
	Totals    Totals           `json:"staged_results"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Done reports whether the run has reached a terminal status.
func (s Snapshot) Done() bool {
	return s.Status == StatusCompleted || s.Status == StatusFailed
}

// update is one stage mutation posted to an agent's channel.
type update struct {
	stage    string
	status   string
	progress int
	results  int
	err      string
}

// newStages builds the initial pending stage map.
func newStages() map[string]Stage {
	stages := make(map[string]Stage, len(StageDefs))
	for _, d := range StageDefs {
		stages[d.Key] = Stage{Name: d.Name, Status: StagePending}
	}
	return stages
}

// apply folds one update into the snapshot and recomputes the derived
// overall progress and status. Stage progress never moves backwards.
func (s *Snapshot) apply(u update, now time.Time) {
	st, ok := s.Stages[u.stage]
	if !ok {
		return
	}
	st.Status = u.status
	if u.progress > st.Progress {
		st.Progress = u.progress
	}
	if u.results > 0 {
		st.Results = u.results
	}
	st.Error = u.err
	switch u.status {
	case StageRunning:
		if st.StartedAt == nil {
			t := now
			st.StartedAt = &t
		}
	case StageCompleted, StageFailed:
		if st.Progress < 100 && u.status == StageCompleted {
			st.Progress = 100
		}
		t := now
		st.CompletedAt = &t
	}
	s.Stages[u.stage] = st

	s.recompute()
	s.UpdatedAt = now
}

// recompute derives overall progress and status from the stages.
//
// Partial success wins over strictness: any collected records plus 80%
// progress counts as completed, and the run only fails outright when
// the linkedin stage failed and nothing at all was produced.
func (s *Snapshot) recompute() {
	total := 0
	records := 0
	for key, st := range s.Stages {
		if d, ok := stageDef(key); ok {
			total += d.Weight * st.Progress / 100
		}
		records += st.Results
	}
	s.Progress = total
	s.Totals = Totals{
		Jobs:      s.Stages[StageLinkedIn].Results + s.Stages[StageBoards].Results,
		Contacts:  s.Stages[StageContacts].Results,
		Campaigns: s.Stages[StageCampaigns].Results,
	}

	switch {
	case total >= 100:
		s.Progress = 100
		s.Status = StatusCompleted
	case s.Stages[StageLinkedIn].Status == StageFailed && records == 0:
		s.Status = StatusFailed
	case records > 0 && total >= 80:
		s.Progress = 100
		s.Status = StatusCompleted
	case allTerminal(s.Stages) && records > 0:
		s.Progress = 100
		s.Status = StatusCompleted
	case allTerminal(s.Stages):
		s.Status = StatusFailed
	case records > 0:
		s.Status = StatusEnrichment
	case anyRunning(s.Stages):
		if st := s.Stages[StageLinkedIn].Status; st == StageCompleted || st == StageFailed {
			s.Status = StatusEnrichment
		} else {
			s.Status = StatusLinkedIn
		}
	default:
		s.Status = StatusEnrichment
	}
}

// allTerminal reports whether every stage has finished one way or the
// other, meaning the run itself is over.
func allTerminal(stages map[string]Stage) bool {
	for _, st := range stages {
		if st.Status != StageCompleted && st.Status != StageFailed {
			return false
		}
	}
	return true
}

func anyRunning(stages map[string]Stage) bool {
	for _, st := range stages {
		if st.Status == StageRunning {
			return true
		}
	}
	return false
}

// clone deep-copies the snapshot so readers never alias live state.
func (s *Snapshot) clone() Snapshot {
	out := *s
	out.Stages = make(map[string]Stage, len(s.Stages))
	for k, st := range s.Stages {
		if st.StartedAt != nil {
			t := *st.StartedAt
			st.StartedAt = &t
		}
		if st.CompletedAt != nil {
			t := *st.CompletedAt
			st.CompletedAt = &t
		}
		out.Stages[k] = st
	}
	out.Request.CustomTags = append([]string(nil), s.Request.CustomTags...)
	return out
}
