package replies

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/emersion/go-imap/v2"

	"coogi-engine/internal/domain"
	"coogi-engine/internal/store"
)

// Poller periodically scans the mailbox and attributes replies to
// stored campaigns.
type Poller struct {
	Store    *store.Store
	Addr     string
	Username string
	Password string
	Mailbox  string
	Interval time.Duration

	seen map[imap.UID]struct{}
}

// Run blocks until the context is cancelled, polling on the interval.
// One failed pass is logged and retried next tick.
func (p *Poller) Run(ctx context.Context) {
	if p.Interval <= 0 {
		p.Interval = 5 * time.Minute
	}
	p.seen = make(map[imap.UID]struct{})

	t := time.NewTicker(p.Interval)
	defer t.Stop()
	for {
		if err := p.PollOnce(ctx); err != nil {
			log.Printf("[replies] poll failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// PollOnce runs a single scan-and-attribute pass.
func (p *Poller) PollOnce(ctx context.Context) error {
	rows, err := p.Store.AllRecords(ctx, "campaigns")
	if err != nil {
		return fmt.Errorf("load campaigns: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	type stored struct {
		row      store.StoredRecord
		campaign domain.CampaignRecord
		dirty    bool
	}
	bySubject := make(map[string]*stored, len(rows))
	for _, row := range rows {
		var c domain.CampaignRecord
		if err := json.Unmarshal(row.Payload, &c); err != nil {
			log.Printf("[replies] skipping unreadable campaign row %d: %v", row.RowID, err)
			continue
		}
		if c.Subject == "" {
			continue
		}
		bySubject[NormalizeSubject(c.Subject)] = &stored{row: row, campaign: c}
	}
	if len(bySubject) == 0 {
		return nil
	}

	client, err := DialAndLogin(ctx, p.Addr, p.Username, p.Password)
	if err != nil {
		return err
	}
	defer client.Close()

	msgs, err := FetchRecent(ctx, client, p.Mailbox, 200)
	if err != nil {
		return err
	}

	matched := 0
	for _, m := range msgs {
		if _, dup := p.seen[m.UID]; dup {
			continue
		}
		p.seen[m.UID] = struct{}{}

		s, ok := bySubject[NormalizeSubject(m.Subject)]
		if !ok {
			continue
		}
		s.campaign.ReplyCount++
		s.dirty = true
		matched++
		log.Printf("[replies] %s replied to campaign %s", m.From, s.campaign.ID)
	}
	if matched == 0 {
		return nil
	}

	for _, s := range bySubject {
		if !s.dirty {
			continue
		}
		if err := p.Store.ReplaceRecord(ctx, s.row.RowID, s.campaign); err != nil {
			log.Printf("[replies] reply count write for %s failed: %v", s.campaign.ID, err)
		}
	}
	return nil
}
