// Package aggregate chains individual providers into the bulletproof
// pipelines: job search across sources, contact discovery per company,
// and campaign creation across outreach services. Each pipeline tries
// providers in priority order, treats per-provider failure as a reason
// to move on rather than abort, and degrades to synthetic records only
// when everything real has been exhausted.
package aggregate

import (
	"context"
	"errors"
	"log"

	"coogi-engine/internal/demo"
	"coogi-engine/internal/domain"
	"coogi-engine/internal/provider"
)

const (
	// defaultEarlyStop stops calling further (paid) sources once this
	// fraction of the target has been collected.
	defaultEarlyStop = 0.8
	// demoFloorRatio triggers synthetic padding when real collection
	// lands below this fraction of the target.
	demoFloorRatio = 0.3
)

// JobPipeline runs the job-search fallback chain. Sources are tried in
// slice order; put cheap sources first.
type JobPipeline struct {
	Sources        []provider.JobSource
	EarlyStopRatio float64
	// DisableDemoPadding leaves a thin result thin. Used when a caller
	// runs several pipelines and wants to pad once at the end.
	DisableDemoPadding bool
}

// JobResult carries what the pipeline collected plus enough breakdown
// for progress reporting.
type JobResult struct {
	Jobs         []domain.JobRecord
	SourceCounts map[string]int
	Failures     []*provider.Failure
	UsedDemo     bool
}

// Collect runs every source needed to reach the target, then filters,
// dedupes and ranks the pool. A source returning zero jobs is a miss,
// not a failure; a source returning an error is logged, recorded and
// skipped. If real collection falls below 30% of target the result is
// padded with synthetic records so downstream stages always have
// something to work with.
func (p *JobPipeline) Collect(ctx context.Context, req domain.SearchRequest) JobResult {
	target := req.Target
	if target <= 0 {
		target = 50
	}
	ratio := p.EarlyStopRatio
	if ratio <= 0 {
		ratio = defaultEarlyStop
	}
	earlyStop := int(float64(target) * ratio)

	res := JobResult{SourceCounts: make(map[string]int, len(p.Sources))}
	var pool []domain.JobRecord

	for _, src := range p.Sources {
		if len(pool) >= earlyStop {
			log.Printf("[aggregate] %d/%d jobs collected, skipping remaining sources", len(pool), target)
			break
		}
		if err := ctx.Err(); err != nil {
			break
		}

		remaining := target - len(pool)
		jobs, err := src.Search(ctx, req, remaining)
		if err != nil {
			var f *provider.Failure
			if !errors.As(err, &f) {
				f = &provider.Failure{Provider: src.Name(), Kind: provider.FailHTTP, Err: err}
			}
			res.Failures = append(res.Failures, f)
			log.Printf("[aggregate] job source %s failed: %v", src.Name(), f)
			continue
		}
		res.SourceCounts[src.Name()] = len(jobs)
		log.Printf("[aggregate] job source %s: %d jobs", src.Name(), len(jobs))
		pool = append(pool, jobs...)
	}

	pool = FilterByCompanySize(pool, req.CompanySize)
	pool = DedupeJobs(pool)

	if len(pool)*10 < target*3 && !p.DisableDemoPadding {
		synth := demo.Jobs(req)
		log.Printf("[aggregate] only %d real jobs for target %d, padding with %d demo records", len(pool), target, len(synth))
		pool = DedupeJobs(append(pool, synth...))
		res.UsedDemo = true
	}

	SortByRelevance(pool, req.Query)
	if len(pool) > target {
		pool = pool[:target]
	}
	res.Jobs = pool
	return res
}
