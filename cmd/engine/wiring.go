package main

import (
	"log"
	"time"

	"coogi-engine/internal/agent"
	"coogi-engine/internal/aggregate"
	"coogi-engine/internal/config"
	"coogi-engine/internal/provider"
	"coogi-engine/internal/provider/anymail"
	"coogi-engine/internal/provider/boards"
	"coogi-engine/internal/provider/clearout"
	"coogi-engine/internal/provider/hunter"
	"coogi-engine/internal/provider/instantly"
	"coogi-engine/internal/provider/jsearch"
	"coogi-engine/internal/provider/linkedin"
	"coogi-engine/internal/provider/smartlead"
	"coogi-engine/internal/secrets"
)

// pipelines is everything built from the provider config: the staged
// runner's inputs plus the synchronous search chain.
type pipelines struct {
	search    *aggregate.JobPipeline // cheap sources first, demo padding on
	linkedin  *aggregate.JobPipeline
	boards    *aggregate.JobPipeline
	contacts  *aggregate.ContactPipeline
	campaigns *aggregate.CampaignPipeline
	services  map[string]provider.CampaignService
}

// buildPipelines wires enabled providers. A provider whose credential
// is missing is skipped with a log line rather than wired to fail on
// every call.
func buildPipelines(cfg config.Config) pipelines {
	hc := provider.NewClient(30*time.Second, cfg.Orchestrator.RequestsPerSecond)

	var linkedinSources []provider.JobSource
	if cfg.Providers.JSearch.Enabled {
		if key := secrets.GetOptional("rapidapi"); key != "" {
			linkedinSources = append(linkedinSources, jsearch.New(jsearch.Config{RapidAPIKey: key, BaseURL: cfg.Providers.JSearch.BaseURL}, hc))
		} else {
			log.Printf("[wiring] jsearch enabled but rapidapi key missing, skipping")
		}
	}
	if cfg.Providers.LinkedIn.Enabled {
		if key := secrets.GetOptional("rapidapi"); key != "" {
			linkedinSources = append(linkedinSources, linkedin.New(linkedin.Config{RapidAPIKey: key, BaseURL: cfg.Providers.LinkedIn.BaseURL}, hc))
		} else {
			log.Printf("[wiring] linkedin enabled but rapidapi key missing, skipping")
		}
	}

	var boardSources []provider.JobSource
	if cfg.Providers.Boards.Enabled {
		boardSources = append(boardSources, boards.New(boards.Config{}))
	}

	var contactSources []provider.ContactSource
	if cfg.Providers.Hunter.Enabled {
		if key := secrets.GetOptional("hunter"); key != "" {
			contactSources = append(contactSources, hunter.New(hunter.Config{APIKey: key, BaseURL: cfg.Providers.Hunter.BaseURL}, hc))
		} else {
			log.Printf("[wiring] hunter enabled but key missing, skipping")
		}
	}
	if cfg.Providers.Clearout.Enabled {
		if key := secrets.GetOptional("clearout"); key != "" {
			contactSources = append(contactSources, clearout.New(clearout.Config{APIKey: key, BaseURL: cfg.Providers.Clearout.BaseURL}, hc))
		} else {
			log.Printf("[wiring] clearout enabled but key missing, skipping")
		}
	}
	if cfg.Providers.Anymail.Enabled {
		if key := secrets.GetOptional("rapidapi"); key != "" {
			contactSources = append(contactSources, anymail.New(anymail.Config{RapidAPIKey: key, BaseURL: cfg.Providers.Anymail.BaseURL}, hc))
		} else {
			log.Printf("[wiring] anymail enabled but rapidapi key missing, skipping")
		}
	}

	var campaignServices []provider.CampaignService
	services := make(map[string]provider.CampaignService)
	if cfg.Providers.Instantly.Enabled {
		if key := secrets.GetOptional("instantly"); key != "" {
			svc := instantly.New(instantly.Config{APIKey: key, BaseURL: cfg.Providers.Instantly.BaseURL}, hc)
			campaignServices = append(campaignServices, svc)
			services[svc.Name()] = svc
		} else {
			log.Printf("[wiring] instantly enabled but key missing, skipping")
		}
	}
	if cfg.Providers.Smartlead.Enabled {
		if key := secrets.GetOptional("smartlead"); key != "" {
			svc := smartlead.New(smartlead.Config{APIKey: key, FromName: cfg.Campaigns.Sender.Name, BaseURL: cfg.Providers.Smartlead.BaseURL}, hc)
			campaignServices = append(campaignServices, svc)
			services[svc.Name()] = svc
		} else {
			log.Printf("[wiring] smartlead enabled but key missing, skipping")
		}
	}

	sender := aggregate.SenderInfo{
		Name:  cfg.Campaigns.Sender.Name,
		Email: cfg.Campaigns.Sender.Email,
		Title: cfg.Campaigns.Sender.Title,
	}

	return pipelines{
		// Cheapest source first so paid APIs only fire when scraping
		// comes up short.
		search: &aggregate.JobPipeline{
			Sources:        append(append([]provider.JobSource{}, boardSources...), linkedinSources...),
			EarlyStopRatio: cfg.Orchestrator.EarlyStopRatio,
		},
		linkedin: &aggregate.JobPipeline{
			Sources:            linkedinSources,
			EarlyStopRatio:     cfg.Orchestrator.EarlyStopRatio,
			DisableDemoPadding: true,
		},
		boards: &aggregate.JobPipeline{
			Sources:            boardSources,
			EarlyStopRatio:     cfg.Orchestrator.EarlyStopRatio,
			DisableDemoPadding: true,
		},
		contacts: &aggregate.ContactPipeline{
			Sources:    contactSources,
			PerCompany: cfg.Orchestrator.ContactsPerCompany,
		},
		campaigns: &aggregate.CampaignPipeline{
			Services: campaignServices,
			Sender:   sender,
			Type:     cfg.Campaigns.Type,
		},
		services: services,
	}
}

// runner assembles the staged pipeline for agent runs.
func (p pipelines) runner(records agent.RecordSink) *agent.Runner {
	return &agent.Runner{
		LinkedInJobs: p.linkedin,
		BoardJobs:    p.boards,
		Contacts:     p.contacts,
		Campaigns:    p.campaigns,
		Records:      records,
	}
}
