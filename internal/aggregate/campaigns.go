package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"strings"
	"time"

	"coogi-engine/internal/domain"
	"coogi-engine/internal/provider"
)

// SenderInfo identifies the outreach sender on outgoing campaigns.
type SenderInfo struct {
	Name  string
	Email string
	Title string
}

// DefaultSender is used when no sender is configured.
var DefaultSender = SenderInfo{
	Name:  "Alex Johnson",
	Email: "alex.johnson@example.com",
	Title: "Business Development Specialist",
}

type campaignTemplate struct {
	nameFormat string
	subjects   []string
	message    string
}

var campaignTemplates = map[string]campaignTemplate{
	"hiring_managers": {
		nameFormat: "Outreach to %s - %s",
		subjects: []string{
			"Re: %[1]s Position at %[2]s",
			"Application for %[1]s Role",
			"Interest in %[1]s Opportunity",
			"Following up on %[1]s Position",
		},
		message: `Hi there,

I hope this email finds you well. I came across the %[1]s position at %[2]s and was immediately drawn to the opportunity.

With my relevant background, I believe I would be a strong fit for this role. I would welcome the opportunity to discuss how my skills align with your needs.

Thank you for your time and consideration.

Best regards,
%[3]s
%[4]s`,
	},
	"candidates": {
		nameFormat: "Opportunity at %s - %s",
		subjects: []string{
			"Exciting %[1]s Opportunity at %[2]s",
			"Your Next Career Move - %[1]s",
			"Premium %[1]s Role at %[2]s",
			"Confidential %[1]s Opportunity",
		},
		message: `Hi there,

I'm reaching out because I have an exciting %[1]s opportunity at %[2]s that I believe would be a strong match for your background.

The position offers competitive compensation and the chance to work with a fast-growing team. Would you be open to a brief 10-15 minute conversation to learn more?

Best regards,
%[3]s
%[4]s`,
	},
}

// CampaignPipeline runs campaign creation per company across the
// outreach services in order, ending with a local internal campaign so
// every company group yields something.
type CampaignPipeline struct {
	Services []provider.CampaignService
	Sender   SenderInfo
	Type     string // template key, default hiring_managers
}

// CampaignResult is the outcome of one campaign-creation pass.
type CampaignResult struct {
	Campaigns    []domain.CampaignRecord
	ServiceCount map[string]int
	Failures     []*provider.Failure
	UsedInternal bool
}

type companyGroup struct {
	company  string
	jobs     []domain.JobRecord
	contacts []domain.ContactRecord
}

// Create groups contacts with their company's jobs and spins one
// campaign per group. Service failures fall through to the next
// service; the internal campaign is the floor.
func (p *CampaignPipeline) Create(ctx context.Context, jobs []domain.JobRecord, contacts []domain.ContactRecord) CampaignResult {
	sender := p.Sender
	if sender.Name == "" {
		sender = DefaultSender
	}
	tmpl, ok := campaignTemplates[p.Type]
	if !ok {
		tmpl = campaignTemplates["hiring_managers"]
	}

	res := CampaignResult{ServiceCount: make(map[string]int, len(p.Services)+1)}
	for _, group := range groupByCompany(jobs, contacts) {
		if ctx.Err() != nil {
			break
		}
		draft := buildDraft(group, tmpl, sender)

		created := false
		for _, svc := range p.Services {
			rec, err := svc.CreateCampaign(ctx, draft)
			if err != nil {
				var f *provider.Failure
				if !errors.As(err, &f) {
					f = &provider.Failure{Provider: svc.Name(), Kind: provider.FailHTTP, Err: err}
				}
				res.Failures = append(res.Failures, f)
				log.Printf("[aggregate] campaign service %s failed for %s: %v", svc.Name(), group.company, f)
				continue
			}
			res.ServiceCount[svc.Name()]++
			res.Campaigns = append(res.Campaigns, rec)
			created = true
			break
		}
		if !created {
			rec := internalCampaign(draft)
			log.Printf("[aggregate] all campaign services failed for %s, stored internal campaign %s", group.company, rec.ID)
			res.ServiceCount["internal"]++
			res.Campaigns = append(res.Campaigns, rec)
			res.UsedInternal = true
		}
	}
	return res
}

// groupByCompany pairs each company's contacts with its jobs.
// Companies with contacts but no matching job still get a group so the
// contacts are not wasted. Output order is deterministic.
func groupByCompany(jobs []domain.JobRecord, contacts []domain.ContactRecord) []companyGroup {
	byCompany := make(map[string]*companyGroup)
	key := func(company string) string { return strings.ToLower(strings.TrimSpace(company)) }

	for _, c := range contacts {
		k := key(c.Company)
		if k == "" {
			continue
		}
		g, ok := byCompany[k]
		if !ok {
			g = &companyGroup{company: c.Company}
			byCompany[k] = g
		}
		g.contacts = append(g.contacts, c)
	}
	for _, j := range jobs {
		if g, ok := byCompany[key(j.Company)]; ok {
			g.jobs = append(g.jobs, j)
		}
	}

	groups := make([]companyGroup, 0, len(byCompany))
	for _, g := range byCompany {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(a, b int) bool { return groups[a].company < groups[b].company })
	return groups
}

func buildDraft(g companyGroup, tmpl campaignTemplate, sender SenderInfo) provider.CampaignDraft {
	jobTitle := "Multiple Positions"
	if len(g.jobs) > 0 {
		jobTitle = g.jobs[0].Title
	}
	subject := fmt.Sprintf(tmpl.subjects[rand.Intn(len(tmpl.subjects))], jobTitle, g.company)
	return provider.CampaignDraft{
		Name:      fmt.Sprintf(tmpl.nameFormat, g.company, jobTitle),
		Subject:   subject,
		Message:   fmt.Sprintf(tmpl.message, jobTitle, g.company, sender.Name, sender.Title),
		Company:   g.company,
		FromName:  sender.Name,
		FromEmail: sender.Email,
		Contacts:  g.contacts,
	}
}

// internalCampaign records a draft locally when no external service
// would take it. It can be launched later once a service recovers.
func internalCampaign(draft provider.CampaignDraft) domain.CampaignRecord {
	return domain.CampaignRecord{
		ID:        fmt.Sprintf("internal_%d", time.Now().UnixNano()),
		Name:      draft.Name,
		Subject:   draft.Subject,
		Message:   draft.Message,
		Status:    domain.CampaignDraft,
		Service:   "internal",
		Company:   draft.Company,
		Contacts:  draft.Contacts,
		LeadCount: len(draft.Contacts),
		CreatedAt: time.Now().UTC(),
	}
}
