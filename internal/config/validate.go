package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate fills defaults, then reports what is still
// wrong. The normalized copy is usable whenever Validation.OK().
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	if out.Orchestrator.DefaultTarget <= 0 {
		out.Orchestrator.DefaultTarget = 50
	}
	if out.Orchestrator.EarlyStopRatio <= 0 || out.Orchestrator.EarlyStopRatio > 1 {
		out.Orchestrator.EarlyStopRatio = 0.8
	}
	if out.Orchestrator.MaxCompanies <= 0 {
		out.Orchestrator.MaxCompanies = 10
	}
	if out.Orchestrator.ContactsPerCompany <= 0 {
		out.Orchestrator.ContactsPerCompany = 5
	}
	if out.Orchestrator.RequestsPerSecond <= 0 {
		out.Orchestrator.RequestsPerSecond = 2
	}
	if out.Campaigns.Type == "" {
		out.Campaigns.Type = "hiring_managers"
	}
	if out.Replies.PollSeconds <= 0 {
		out.Replies.PollSeconds = 300
	}

	// ---- Validation rules ----

	p := out.Providers
	if !p.JSearch.Enabled && !p.LinkedIn.Enabled && !p.Boards.Enabled {
		res.addErr("No job sources enabled: enable jsearch, linkedin, or boards")
	}
	if !p.Hunter.Enabled && !p.Clearout.Enabled && !p.Anymail.Enabled {
		res.addWarn("no contact sources enabled; contact enrichment will yield demo records only")
	}
	if !p.Instantly.Enabled && !p.Smartlead.Enabled {
		res.addWarn("no campaign services enabled; all campaigns will be stored internally")
	}

	if out.Campaigns.Type != "hiring_managers" && out.Campaigns.Type != "candidates" {
		res.addErr("campaigns.type must be hiring_managers or candidates, got %q", out.Campaigns.Type)
	}
	if out.Campaigns.Sender.Email != "" && !strings.Contains(out.Campaigns.Sender.Email, "@") {
		res.addErr("campaigns.sender.email %q is not an email address", out.Campaigns.Sender.Email)
	}

	if out.Orchestrator.RequestsPerSecond > 10 {
		res.addWarn("orchestrator.requests_per_second is very high (%.0f) and may trip provider rate limits.", out.Orchestrator.RequestsPerSecond)
	}

	// replies required fields if enabled (password lives in the keychain)
	if out.Replies.Enabled {
		if strings.TrimSpace(out.Replies.IMAPHost) == "" {
			res.addErr("replies.imap_host is required when replies.enabled=true")
		}
		if out.Replies.IMAPPort == 0 {
			res.addErr("replies.imap_port is required when replies.enabled=true")
		}
		if strings.TrimSpace(out.Replies.Username) == "" {
			res.addErr("replies.username is required when replies.enabled=true")
		}
		if strings.TrimSpace(out.Replies.Mailbox) == "" {
			res.addErr("replies.mailbox is required when replies.enabled=true")
		}
		if out.Replies.PollSeconds < 60 {
			res.addWarn("replies.poll_seconds is very low (%d) and may cause IMAP rate limits.", out.Replies.PollSeconds)
		}
	}

	return out, res
}
