package aggregate

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"coogi-engine/internal/demo"
	"coogi-engine/internal/domain"
	"coogi-engine/internal/provider"
)

// TargetRoles are the titles outreach cares about, most wanted first.
// Callers that pass no role list get the top ten of these.
var TargetRoles = []string{
	"talent acquisition", "recruiter", "hr manager", "hiring manager",
	"head of talent", "people operations", "human resources",
	"ceo", "founder", "president", "vp", "director", "head of",
	"chief", "manager", "lead", "senior manager",
	"engineering manager", "product manager", "marketing manager",
	"sales manager", "operations manager", "finance manager",
}

const defaultRoleCount = 10

// maxCompanyFanout bounds how many companies are enriched concurrently.
const maxCompanyFanout = 4

// ContactPipeline runs the per-company contact fallback chain. Sources
// are tried in slice order until the per-company budget is met.
type ContactPipeline struct {
	Sources            []provider.ContactSource
	PerCompany         int // max contacts per company, default 5
	DisableDemoPadding bool
}

// ContactResult is the merged outcome across all companies.
type ContactResult struct {
	Contacts     []domain.ContactRecord
	SourceCounts map[string]int
	Failures     []*provider.Failure
	UsedDemo     bool
}

// Collect enriches every company concurrently, chaining sources per
// company and falling back to a synthetic contact when all sources come
// up empty. Results are role-filtered, deduped by email and
// syntactically verified; invalid addresses are dropped.
func (p *ContactPipeline) Collect(ctx context.Context, companies []string, roles []string) ContactResult {
	if len(roles) == 0 {
		roles = TargetRoles[:defaultRoleCount]
	}
	perCompany := p.PerCompany
	if perCompany <= 0 {
		perCompany = 5
	}

	res := ContactResult{SourceCounts: make(map[string]int, len(p.Sources))}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxCompanyFanout)
	for _, company := range companies {
		g.Go(func() error {
			found, counts, failures, demoed := p.collectCompany(gctx, company, roles, perCompany)
			mu.Lock()
			defer mu.Unlock()
			res.Contacts = append(res.Contacts, found...)
			for name, n := range counts {
				res.SourceCounts[name] += n
			}
			res.Failures = append(res.Failures, failures...)
			res.UsedDemo = res.UsedDemo || demoed
			return nil
		})
	}
	_ = g.Wait() // workers never return errors, failures are collected per company

	res.Contacts = DedupeContacts(res.Contacts)
	res.Contacts = verifyContacts(res.Contacts)
	return res
}

func (p *ContactPipeline) collectCompany(ctx context.Context, company string, roles []string, budget int) ([]domain.ContactRecord, map[string]int, []*provider.Failure, bool) {
	companyDomain := GuessDomain(company)
	counts := make(map[string]int, len(p.Sources))
	var failures []*provider.Failure
	var found []domain.ContactRecord

	for _, src := range p.Sources {
		if len(found) >= budget {
			break
		}
		if ctx.Err() != nil {
			break
		}

		contacts, err := src.FindContacts(ctx, company, companyDomain, roles, budget-len(found))
		if err != nil {
			var f *provider.Failure
			if !errors.As(err, &f) {
				f = &provider.Failure{Provider: src.Name(), Kind: provider.FailHTTP, Err: err}
			}
			failures = append(failures, f)
			log.Printf("[aggregate] contact source %s failed for %s: %v", src.Name(), company, f)
			continue
		}
		contacts = filterRelevant(contacts, roles)
		counts[src.Name()] += len(contacts)
		found = append(found, contacts...)
	}

	demoed := false
	if len(found) == 0 && !p.DisableDemoPadding {
		log.Printf("[aggregate] no real contacts for %s, using demo contact", company)
		found = demo.Contacts(company, companyDomain, 1)
		demoed = true
	}
	return found, counts, failures, demoed
}

// filterRelevant keeps contacts whose title contains one of the target
// roles. Untitled contacts are kept: a deliverable address at the right
// company beats no address.
func filterRelevant(contacts []domain.ContactRecord, roles []string) []domain.ContactRecord {
	out := contacts[:0:0]
	for _, c := range contacts {
		if c.Title == "" || roleMatches(c.Title, roles) {
			out = append(out, c)
		}
	}
	return out
}

func roleMatches(title string, roles []string) bool {
	t := strings.ToLower(title)
	for _, r := range roles {
		if strings.Contains(t, strings.ToLower(r)) {
			return true
		}
	}
	return false
}

// verifyContacts applies a syntactic sanity check to every address and
// drops the invalid ones. Records already marked valid by a provider
// keep that stronger status.
func verifyContacts(contacts []domain.ContactRecord) []domain.ContactRecord {
	out := contacts[:0:0]
	for _, c := range contacts {
		at := strings.Index(c.Email, "@")
		if at <= 0 || !strings.Contains(c.Email[at+1:], ".") {
			continue
		}
		if c.Verification == "" || c.Verification == domain.VerifyUnknown {
			c.Verification = domain.VerifyValid
		}
		if c.Verification == domain.VerifyInvalid {
			continue
		}
		out = append(out, c)
	}
	return out
}
