package agent

import (
	"context"
	"log"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"coogi-engine/internal/events"
)

// Sink is the persistence boundary. Implementations may be nil-safe
// no-ops; the registry never lets a sink error block state updates.
type Sink interface {
	UpsertAgentMeta(ctx context.Context, id string, fields map[string]any) error
}

// Publisher fans status updates out to live listeners (SSE).
type Publisher interface {
	Publish(evt string)
}

// Handle is one live agent: its consumer goroutine owns the state, and
// everything else talks to it through the updates channel.
type Handle struct {
	id        string
	updates   chan update
	snap      atomic.Pointer[Snapshot]
	done      chan struct{}
	closeOnce sync.Once
}

// ID returns the agent's identifier.
func (h *Handle) ID() string { return h.id }

// Snapshot returns a copy of the current state, safe to hold.
func (h *Handle) Snapshot() Snapshot {
	return *h.snap.Load()
}

// Update posts one stage mutation. It never blocks the pipeline: if the
// consumer has been closed the update is dropped.
func (h *Handle) Update(stage, status string, progress, results int, errMsg string) {
	select {
	case h.updates <- update{stage: stage, status: status, progress: progress, results: results, err: errMsg}:
	case <-h.done:
	}
}

// Close stops the consumer once the pipeline is finished with the
// handle. Pending updates are drained first. Safe to call more than
// once: deletion and the runner's own cleanup may race.
func (h *Handle) Close() {
	h.closeOnce.Do(func() { close(h.updates) })
	<-h.done
}

// Registry creates agents and serves snapshot lookups for pollers.
type Registry struct {
	sink  Sink
	pub   Publisher
	mu    sync.RWMutex
	byID  map[string]*Handle
	order []string
}

func NewRegistry(sink Sink, pub Publisher) *Registry {
	return &Registry{sink: sink, pub: pub, byID: make(map[string]*Handle)}
}

// Create registers a new agent in the initializing state and starts its
// consumer goroutine. Metadata is written through to the sink
// asynchronously.
func (r *Registry) Create(req Request) *Handle {
	now := time.Now().UTC()
	snap := Snapshot{
		ID:        "agent_" + uuid.NewString(),
		Request:   req,
		Status:    StatusInitializing,
		Stages:    newStages(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	h := &Handle{
		id:      snap.ID,
		updates: make(chan update, 16),
		done:    make(chan struct{}),
	}
	h.snap.Store(&snap)

	r.mu.Lock()
	r.byID[h.id] = h
	r.order = append(r.order, h.id)
	r.mu.Unlock()

	go r.consume(h, snap)
	r.persist(h.id, snap)
	return h
}

// consume is the single goroutine that owns an agent's state. It folds
// updates into its private copy, publishes a fresh snapshot pointer,
// and writes through to the sink without blocking on it.
func (r *Registry) consume(h *Handle, state Snapshot) {
	defer close(h.done)
	for u := range h.updates {
		state.apply(u, time.Now().UTC())
		snap := state.clone()
		h.snap.Store(&snap)
		r.persist(h.id, snap)
		if r.pub != nil {
			r.pub.Publish(stageEvent(snap, u.stage))
		}
	}
}

// persist fires the metadata write in the background. Store trouble is
// a warning, never a failure.
func (r *Registry) persist(id string, snap Snapshot) {
	if r.sink == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := r.sink.UpsertAgentMeta(ctx, id, map[string]any{
			"query":           snap.Request.Query,
			"status":          snap.Status,
			"total_progress":  snap.Progress,
			"hours_old":       snap.Request.HoursOld,
			"company_size":    snap.Request.CompanySize,
			"target_type":     snap.Request.TargetType,
			"location_filter": snap.Request.Location,
			"total_jobs":      snap.Totals.Jobs,
			"total_contacts":  snap.Totals.Contacts,
			"total_campaigns": snap.Totals.Campaigns,
			"updated_at":      snap.UpdatedAt,
		})
		if err != nil {
			log.Printf("[agent] metadata write for %s failed: %v", id, err)
		}
	}()
}

// stageEvent shapes one SSE payload for a stage change.
func stageEvent(snap Snapshot, stage string) string {
	st := snap.Stages[stage]
	return events.MakeEvent("", events.TypeAgentStage, 1, map[string]any{
		"agent_id":       snap.ID,
		"stage":          stage,
		"stage_status":   st.Status,
		"stage_progress": st.Progress,
		"status":         snap.Status,
		"total_progress": snap.Progress,
	})
}

// Delete removes an agent from the registry, stopping its consumer if
// the run is still live. In-flight pipeline updates land on a closed
// handle and are dropped. Reports whether the agent existed.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	h, ok := r.byID[id]
	if !ok {
		r.mu.Unlock()
		return false
	}
	delete(r.byID, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	h.Close()
	return true
}

// Get returns a snapshot by agent ID.
func (r *Registry) Get(id string) (Snapshot, bool) {
	r.mu.RLock()
	h, ok := r.byID[id]
	r.mu.RUnlock()
	if !ok {
		return Snapshot{}, false
	}
	return h.Snapshot(), true
}

// List returns snapshots of all agents, newest first.
func (r *Registry) List() []Snapshot {
	r.mu.RLock()
	ids := append([]string(nil), r.order...)
	handles := make([]*Handle, 0, len(ids))
	for _, id := range ids {
		handles = append(handles, r.byID[id])
	}
	r.mu.RUnlock()

	out := make([]Snapshot, 0, len(handles))
	for _, h := range handles {
		out = append(out, h.Snapshot())
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out
}
