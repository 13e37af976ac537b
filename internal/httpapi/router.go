package httpapi

import "net/http"

// NewMux returns the raw mux so main() can still attach /shutdown (needs srv+token).
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Agents
	ah := AgentsHandler{Registry: d.Registry, Store: d.Store, StartRun: d.StartRun}
	mux.HandleFunc("/agents", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  ah.List,
		http.MethodPost: ah.Create,
	}))
	mux.HandleFunc("/agents/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    ah.GetByPath, // /agents/{id} and /agents/{id}/records
		http.MethodDelete: ah.DeleteByPath,
	}))

	// Synchronous job search
	srh := SearchHandler{Pipeline: d.JobSearch}
	mux.HandleFunc("/search", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: srh.Search,
	}))

	// Campaign control
	cph := CampaignsHandler{Services: d.CampaignServices, Store: d.Store}
	mux.HandleFunc("/campaigns/", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: cph.ActionByPath, // /campaigns/{id}/{pause|resume|cancel}
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))

	// Secrets
	sh := SecretsHandler{}
	mux.HandleFunc("/api/secrets/", methodMux(map[string]http.HandlerFunc{
		http.MethodPost:   sh.SetByPath, // /api/secrets/{account}
		http.MethodDelete: sh.DeleteByPath,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	// Health
	hh := HealthHandler{Store: d.Store}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	return mux
}
