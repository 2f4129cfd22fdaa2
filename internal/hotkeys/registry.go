package hotkeys

import (
	"log/slog"
	"sync"
	"time"
)

const (
	// GlobalToggleID is the trigger identity of the show/hide window binding.
	GlobalToggleID = "global-toggle"

	// DefaultDebounce is the minimum interval between forwarded triggers for
	// the same binding identity. Triggers inside the window are dropped.
	DefaultDebounce = 300 * time.Millisecond
)

// Request asks Reconcile to keep one binding active for the given owner.
// Owners with an empty Hotkey are skipped silently.
type Request struct {
	ID     string
	Hotkey string
}

// SkipReason classifies why Reconcile left a requested binding inactive.
type SkipReason string

const (
	SkipInvalid         SkipReason = "invalid"
	SkipDuplicate       SkipReason = "duplicate"
	SkipGlobalConflict  SkipReason = "conflicts-with-global-toggle"
	SkipBackendRejected SkipReason = "backend-rejected"
)

// Skipped records one binding that Reconcile could not activate. The owning
// record keeps its stored hotkey; it is merely inactive until the conflict
// clears.
type Skipped struct {
	ID     string
	Hotkey string
	Reason SkipReason
	Err    error
}

// Report summarizes a Reconcile pass.
type Report struct {
	// Active maps normalized hotkey strings to the owning identity.
	Active map[string]string
	// Skipped lists requested bindings that are stored but not live.
	Skipped []Skipped
}

// SkippedFor returns the skip entry for the given owner, or nil when the
// owner's binding is active (or was never requested).
func (r Report) SkippedFor(id string) *Skipped {
	for i := range r.Skipped {
		if r.Skipped[i].ID == id {
			return &r.Skipped[i]
		}
	}
	return nil
}

type boundEntry struct {
	ownerID    string
	unregister func()
}

// Registry owns the process-wide mapping from normalized hotkey strings to
// trigger identities. Triggers arrive on backend goroutines, pass the
// per-identity debounce, and are handed to the UI loop through dispatch;
// the registry never runs owner actions inline.
//
// Trigger resolution is by table lookup at fire time rather than by closures
// capturing records, so stale captures cannot outlive a Reconcile.
type Registry struct {
	backend   Backend
	dispatch  func(func())
	onTrigger func(ownerID string)
	debounce  time.Duration

	// nowFn returns monotonic elapsed time; replaced in tests.
	nowFn func() time.Duration

	mu    sync.Mutex
	bound map[string]boundEntry
	// lastFire tracks the last forwarded trigger per identity for debouncing.
	lastFire map[string]time.Duration
}

// Option adjusts Registry construction.
type Option func(*Registry)

// WithDebounce overrides the debounce window. Non-positive values disable
// debouncing.
func WithDebounce(d time.Duration) Option {
	return func(r *Registry) { r.debounce = d }
}

// NewRegistry creates a registry. dispatch must hand the given closure to the
// UI-owned event loop; onTrigger receives the owning identity of the fired
// binding and runs on that loop.
func NewRegistry(backend Backend, dispatch func(func()), onTrigger func(ownerID string), opts ...Option) *Registry {
	start := time.Now()
	r := &Registry{
		backend:   backend,
		dispatch:  dispatch,
		onTrigger: onTrigger,
		debounce:  DefaultDebounce,
		nowFn:     func() time.Duration { return time.Since(start) },
		bound:     map[string]boundEntry{},
		lastFire:  map[string]time.Duration{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register binds spec to ownerID. Returns false without raising when the
// spec is malformed, already bound to another owner, or rejected by the OS
// hook. Re-registering a spec already bound to the same owner is a no-op
// success so reloads stay idempotent.
func (r *Registry) Register(ownerID string, spec string) bool {
	b, err := ParseBinding(spec)
	if err != nil {
		slog.Warn("[hotkey] register rejected: malformed combo", "owner", ownerID, "spec", spec, "error", err)
		return false
	}
	combo := b.Normalized()

	r.mu.Lock()
	if existing, ok := r.bound[combo]; ok {
		r.mu.Unlock()
		if existing.ownerID == ownerID {
			slog.Debug("[hotkey] already bound to same owner, keeping", "combo", combo, "owner", ownerID)
			return true
		}
		slog.Warn("[hotkey] register skipped: combo already bound", "combo", combo, "owner", ownerID, "boundTo", existing.ownerID)
		return false
	}
	r.mu.Unlock()

	unregister, err := r.backend.Register(b, func() { r.fired(combo) })
	if err != nil {
		slog.Warn("[hotkey] backend rejected combo", "combo", combo, "owner", ownerID, "error", err)
		return false
	}

	// The lock is dropped around the backend call, so a concurrent Register
	// for the same combo may have won the table in the meantime. The loser
	// releases its fresh OS binding; the table entry stays with the winner.
	r.mu.Lock()
	if existing, ok := r.bound[combo]; ok {
		r.mu.Unlock()
		unregister()
		if existing.ownerID == ownerID {
			slog.Debug("[hotkey] already bound to same owner, keeping", "combo", combo, "owner", ownerID)
			return true
		}
		slog.Warn("[hotkey] register skipped: combo bound concurrently", "combo", combo, "owner", ownerID, "boundTo", existing.ownerID)
		return false
	}
	r.bound[combo] = boundEntry{ownerID: ownerID, unregister: unregister}
	r.mu.Unlock()
	slog.Info("[hotkey] bound", "combo", combo, "owner", ownerID)
	return true
}

// Unregister removes the binding for spec. Unregistering a combo that was
// never successfully bound logs and returns without failing.
func (r *Registry) Unregister(spec string) {
	combo, err := Normalize(spec)
	if err != nil || combo == "" {
		slog.Debug("[hotkey] unregister ignored", "spec", spec, "error", err)
		return
	}

	r.mu.Lock()
	entry, ok := r.bound[combo]
	if ok {
		delete(r.bound, combo)
	}
	r.mu.Unlock()

	if !ok {
		slog.Debug("[hotkey] unregister: combo was not bound", "combo", combo)
		return
	}
	entry.unregister()
	slog.Info("[hotkey] unbound", "combo", combo, "owner", entry.ownerID)
}

// UnregisterAll tears down every live binding.
func (r *Registry) UnregisterAll() {
	r.mu.Lock()
	entries := r.bound
	r.bound = map[string]boundEntry{}
	r.mu.Unlock()

	for combo, entry := range entries {
		entry.unregister()
		slog.Debug("[hotkey] unbound during teardown", "combo", combo, "owner", entry.ownerID)
	}
}

// Reconcile makes the live binding set match the given requests: everything
// is unregistered, the global toggle is bound first, then each request in
// order. Requests that collide with the global toggle or an earlier request
// are skipped with a warning (first registered wins) and reported, never
// escalated. Calling Reconcile twice with the same inputs yields the same
// active set.
func (r *Registry) Reconcile(requests []Request, globalBinding string) Report {
	r.UnregisterAll()

	report := Report{Active: map[string]string{}}

	globalCombo := ""
	if globalBinding != "" {
		combo, err := Normalize(globalBinding)
		switch {
		case err != nil:
			slog.Warn("[hotkey] reconcile: global toggle combo invalid", "spec", globalBinding, "error", err)
			report.Skipped = append(report.Skipped, Skipped{ID: GlobalToggleID, Hotkey: globalBinding, Reason: SkipInvalid, Err: err})
		case r.Register(GlobalToggleID, combo):
			globalCombo = combo
			report.Active[combo] = GlobalToggleID
		default:
			report.Skipped = append(report.Skipped, Skipped{ID: GlobalToggleID, Hotkey: combo, Reason: SkipBackendRejected})
		}
	}

	for _, req := range requests {
		if req.Hotkey == "" {
			continue
		}
		combo, err := Normalize(req.Hotkey)
		if err != nil {
			slog.Warn("[hotkey] reconcile: skipping malformed combo", "owner", req.ID, "spec", req.Hotkey, "error", err)
			report.Skipped = append(report.Skipped, Skipped{ID: req.ID, Hotkey: req.Hotkey, Reason: SkipInvalid, Err: err})
			continue
		}
		if globalCombo != "" && combo == globalCombo {
			slog.Warn("[hotkey] reconcile: combo collides with global toggle, skipping", "owner", req.ID, "combo", combo)
			report.Skipped = append(report.Skipped, Skipped{ID: req.ID, Hotkey: combo, Reason: SkipGlobalConflict})
			continue
		}
		if owner, taken := report.Active[combo]; taken {
			slog.Warn("[hotkey] reconcile: combo already bound, skipping", "owner", req.ID, "combo", combo, "boundTo", owner)
			report.Skipped = append(report.Skipped, Skipped{ID: req.ID, Hotkey: combo, Reason: SkipDuplicate})
			continue
		}
		if !r.Register(req.ID, combo) {
			report.Skipped = append(report.Skipped, Skipped{ID: req.ID, Hotkey: combo, Reason: SkipBackendRejected})
			continue
		}
		report.Active[combo] = req.ID
	}

	return report
}

// ActiveBindings returns a snapshot of the live combo -> owner table.
func (r *Registry) ActiveBindings() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.bound))
	for combo, entry := range r.bound {
		out[combo] = entry.ownerID
	}
	return out
}

// fired runs on a backend goroutine. It resolves the owner by lookup,
// applies the per-identity debounce, and hands the trigger to the UI loop.
func (r *Registry) fired(combo string) {
	r.mu.Lock()
	entry, ok := r.bound[combo]
	if !ok {
		// Trigger raced an unregister; drop it.
		r.mu.Unlock()
		return
	}
	ownerID := entry.ownerID

	now := r.nowFn()
	if r.debounce > 0 {
		if last, seen := r.lastFire[ownerID]; seen && now-last < r.debounce {
			r.mu.Unlock()
			slog.Debug("[hotkey] trigger debounced", "combo", combo, "owner", ownerID)
			return
		}
	}
	r.lastFire[ownerID] = now
	r.mu.Unlock()

	r.dispatch(func() { r.onTrigger(ownerID) })
}
