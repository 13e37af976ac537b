package httpapi

import (
	"sync/atomic"

	"coogi-engine/internal/agent"
	"coogi-engine/internal/aggregate"
	"coogi-engine/internal/config"
	"coogi-engine/internal/events"
	"coogi-engine/internal/provider"
	"coogi-engine/internal/store"
)

type Deps struct {
	Registry *agent.Registry
	Store    *store.Store
	Hub      *events.Hub

	// StartRun launches the pipeline for a freshly created agent.
	// Injected so handler tests can run without real providers.
	StartRun func(h *agent.Handle, req agent.Request)

	// JobSearch serves the synchronous /search endpoint.
	JobSearch *aggregate.JobPipeline

	// CampaignServices by name, for pause/resume/cancel dispatch on
	// campaign ID prefix (instantly_..., smartlead_...).
	CampaignServices map[string]provider.CampaignService

	// Atomic stores
	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
}
