// Package order assigns fractional rank values to drag-reordered lists so
// that moving one item only requires rewriting that item's rank, not the
// whole collection.
package order

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
)

const (
	// collisionTolerance is the minimum distance between adjacent ranks.
	// Values closer than this are treated as ties and repaired.
	collisionTolerance = 1e-5

	// nudgeOffset is the fixed step applied when a computed rank ties with a
	// neighbor. A fixed offset avoids infinite bisection against adversarial
	// rank sequences.
	nudgeOffset = 0.5

	// minPositiveRank is the floor for ranks that would otherwise collapse to
	// zero or below when halving small head-of-list values.
	minPositiveRank = 0.001
)

// Ranked is one entry of an ordered view: an item identifier and its current
// rank. Views are sorted ascending by Priority.
type Ranked struct {
	ID       string
	Priority float64
}

// Result is the outcome of a Reprioritize call. When Renumbered is nil the
// moved item takes Priority and nothing else changes. When Renumbered is
// non-nil the available float gap was exhausted and every entry of the view
// was reassigned 1.0, 2.0, ... in current order; callers must persist all of
// them.
type Result struct {
	Priority   float64
	Renumbered []Ranked
}

// ErrNotInView is returned when the moved item is absent from the view.
var ErrNotInView = errors.New("moved item is not part of the ordered view")

// Reprioritize computes a rank for the item movedID inside view. The caller
// must pass the view with the moved item already relocated to its target
// index; the remaining entries keep their previous ranks.
//
// The rank is chosen strictly between the moved item's new neighbors. Repeated
// moves into the same gap consume float precision; once a repaired value still
// ties with a neighbor the whole view is renumbered instead of retrying the
// nudge, which keeps the repair bounded.
func Reprioritize(view []Ranked, movedID string) (Result, error) {
	idx := -1
	for i := range view {
		if view[i].ID == movedID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Result{}, fmt.Errorf("%w: %q", ErrNotInView, movedID)
	}

	candidate := candidateRank(view, idx)

	if !collides(view, idx, candidate) {
		return Result{Priority: candidate}, nil
	}

	nudged := nudgeRank(view, idx, candidate)
	if !collides(view, idx, nudged) && ordered(view, idx, nudged) {
		return Result{Priority: nudged}, nil
	}

	slog.Warn("[order] rank precision exhausted, renumbering view",
		"moved", movedID, "candidate", candidate, "viewSize", len(view))
	return Result{Renumbered: Renumber(view)}, nil
}

// Renumber reassigns 1.0, 2.0, ... to the view in its current order. Used as
// the precision-reset fallback and exposed for data-repair paths.
func Renumber(view []Ranked) []Ranked {
	out := make([]Ranked, len(view))
	for i := range view {
		out[i] = Ranked{ID: view[i].ID, Priority: float64(i + 1)}
	}
	return out
}

func candidateRank(view []Ranked, idx int) float64 {
	n := len(view)
	switch {
	case n == 1:
		return 1.0
	case idx == 0:
		succ := view[1].Priority
		candidate := succ / 2
		if candidate <= 0 {
			candidate = succ - nudgeOffset
		}
		if candidate <= 0 {
			candidate = minPositiveRank
		}
		return candidate
	case idx == n-1:
		return view[n-2].Priority + 1.0
	default:
		return (view[idx-1].Priority + view[idx+1].Priority) / 2
	}
}

// collides reports whether rank ties with either neighbor of idx within the
// collision tolerance.
func collides(view []Ranked, idx int, rank float64) bool {
	if idx > 0 && math.Abs(rank-view[idx-1].Priority) < collisionTolerance {
		return true
	}
	if idx < len(view)-1 && math.Abs(rank-view[idx+1].Priority) < collisionTolerance {
		return true
	}
	return false
}

// ordered reports whether rank sorts strictly between the neighbors of idx.
func ordered(view []Ranked, idx int, rank float64) bool {
	if idx > 0 && rank <= view[idx-1].Priority {
		return false
	}
	if idx < len(view)-1 && rank >= view[idx+1].Priority {
		return false
	}
	return rank > 0
}

// nudgeRank steps away from the neighbor the candidate landed on. Stepping is
// a single attempt; the caller falls back to Renumber when the result still
// ties or breaks ordering.
func nudgeRank(view []Ranked, idx int, candidate float64) float64 {
	predDist := math.Inf(1)
	succDist := math.Inf(1)
	if idx > 0 {
		predDist = math.Abs(candidate - view[idx-1].Priority)
	}
	if idx < len(view)-1 {
		succDist = math.Abs(candidate - view[idx+1].Priority)
	}

	if predDist <= succDist && idx > 0 {
		return view[idx-1].Priority + nudgeOffset
	}
	if idx < len(view)-1 {
		nudged := view[idx+1].Priority - nudgeOffset
		if nudged <= 0 {
			nudged = view[idx+1].Priority / 2
		}
		return nudged
	}
	return 1.0
}
