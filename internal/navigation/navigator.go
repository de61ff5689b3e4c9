// Package navigation implements the turn-by-turn navigation state machine.
// It consumes live position updates against a route's step list, advancing
// through steps, throttling announcements and flagging route departure.
package navigation

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/openwander/wayfind/internal/geomath"
	"github.com/openwander/wayfind/internal/models"
)

// Thresholds, in meters. Fixed for all profiles; the source system never
// tuned them per profile.
const (
	// StepCompletionMeters is the radius around a step's maneuver point
	// below which the step is considered completed.
	StepCompletionMeters = 15
	// AnnounceFarMeters and AnnounceNearMeters bound the advance-warning
	// announcement tiers.
	AnnounceFarMeters  = 50
	AnnounceNearMeters = 50
	// AnnounceNowMeters bounds the immediate announcement tier.
	AnnounceNowMeters = 20
	// OffRouteMeters is the distance from the route geometry beyond which
	// the position counts as off-route.
	OffRouteMeters = 50
	// offRouteLookahead is how many steps beyond the current one are
	// sampled for off-route detection.
	offRouteLookahead = 2
)

// ErrNoSteps is returned by Start when the step list is empty.
var ErrNoSteps = errors.New("navigation requires at least one route step")

// State is the navigator's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateNavigating
	StateCompleted
)

// Tier is the announcement proximity tier for the current step. Tiers are
// monotonic: once a higher tier has been announced for a step, lower tiers
// stay silent until the step changes.
type Tier int

const (
	TierNone Tier = iota
	TierFar
	TierNear
	TierNow
)

// Update is the outcome of a position update, handed to the UI/voice layer.
type Update struct {
	CurrentStepIndex       int     `json:"current_step_index"`
	DistanceToNextManeuver float64 `json:"distance_to_next_maneuver"` // meters
	RemainingDistance      float64 `json:"remaining_distance"`        // meters
	RemainingDuration      float64 `json:"remaining_duration"`        // seconds
	ShouldAnnounce         bool    `json:"should_announce"`
	Announcement           string  `json:"announcement,omitempty"`
	IsOffRoute             bool    `json:"is_off_route"`
	Completed              bool    `json:"completed"`
}

// Navigator is the navigation state machine. It performs no I/O, never
// returns errors from position updates, and completes each update
// synchronously, so it is safe to call directly from a location callback.
// A Navigator is owned by a single goroutine; it does not lock.
type Navigator struct {
	log *slog.Logger

	state             State
	steps             []models.RouteStep
	currentStep       int
	lastAnnouncedStep int
	lastAnnouncedTier Tier
	lastUpdate        Update
}

// New creates an idle Navigator.
func New(log *slog.Logger) *Navigator {
	return &Navigator{log: log}
}

// State returns the navigator's current lifecycle state.
func (n *Navigator) State() State {
	return n.state
}

// Start begins navigating the given steps. An empty step list is rejected
// up front rather than discovered lazily. Starting discards any previous
// session state.
func (n *Navigator) Start(steps []models.RouteStep) error {
	if len(steps) == 0 {
		return ErrNoSteps
	}

	n.reset()
	n.state = StateNavigating
	n.steps = steps
	n.log.Debug("Navigation started", "steps", len(steps))
	return nil
}

// Stop ends navigation and discards all session state, including
// announcement-tier memory, so a subsequent session starts clean.
func (n *Navigator) Stop() {
	n.log.Debug("Navigation stopped")
	n.reset()
}

func (n *Navigator) reset() {
	n.state = StateIdle
	n.steps = nil
	n.currentStep = 0
	n.lastAnnouncedStep = -1
	n.lastAnnouncedTier = TierNone
	n.lastUpdate = Update{}
}

// UpdatePosition consumes one position fix and recomputes the navigation
// outputs. Outside the Navigating state it is a no-op returning the
// last-known update. A single call advances at most one step; the caller is
// expected to poll at roughly 1 Hz or faster.
func (n *Navigator) UpdatePosition(pos models.Coordinate) Update {
	if n.state != StateNavigating {
		return n.lastUpdate
	}

	dist := geomath.Distance(pos, n.steps[n.currentStep].Location)

	if dist < StepCompletionMeters {
		if n.currentStep < len(n.steps)-1 {
			n.currentStep++
			n.lastAnnouncedStep = -1
			n.lastAnnouncedTier = TierNone
			dist = geomath.Distance(pos, n.steps[n.currentStep].Location)
			n.log.Debug("Advanced to next step", "step", n.currentStep)
		} else {
			n.state = StateCompleted
			n.lastUpdate = Update{
				CurrentStepIndex: n.currentStep,
				Completed:        true,
			}
			n.log.Debug("Navigation completed")
			return n.lastUpdate
		}
	}

	remainingDist, remainingDur := n.remaining(dist)

	update := Update{
		CurrentStepIndex:       n.currentStep,
		DistanceToNextManeuver: dist,
		RemainingDistance:      remainingDist,
		RemainingDuration:      remainingDur,
		IsOffRoute:             n.isOffRoute(pos),
	}

	if tier := tierFor(dist); tier > TierNone && n.shouldAnnounce(tier) {
		n.lastAnnouncedStep = n.currentStep
		n.lastAnnouncedTier = tier
		update.ShouldAnnounce = true
		update.Announcement = n.announcement(tier)
	}

	n.lastUpdate = update
	return update
}

// remaining sums the current step's remaining share and the full
// distance/duration of every subsequent step.
func (n *Navigator) remaining(distToManeuver float64) (distance, duration float64) {
	step := n.steps[n.currentStep]

	distance = distToManeuver
	if step.Distance > 0 {
		fraction := math.Min(distToManeuver/step.Distance, 1)
		duration = step.Duration * fraction
	}

	for _, s := range n.steps[n.currentStep+1:] {
		distance += s.Distance
		duration += s.Duration
	}
	return distance, duration
}

func tierFor(dist float64) Tier {
	switch {
	case dist <= AnnounceNowMeters:
		return TierNow
	case dist <= AnnounceNearMeters:
		return TierNear
	case dist <= AnnounceFarMeters:
		return TierFar
	default:
		return TierNone
	}
}

// shouldAnnounce enforces at most one announcement per tier per step and
// tier monotonicity within a step.
func (n *Navigator) shouldAnnounce(tier Tier) bool {
	if n.lastAnnouncedStep != n.currentStep {
		return true
	}
	return tier > n.lastAnnouncedTier
}

func (n *Navigator) announcement(tier Tier) string {
	instruction := n.steps[n.currentStep].Instruction
	if tier == TierNow {
		return instruction
	}
	return fmt.Sprintf("In %d meters, %s", AnnounceNearMeters, lowerFirst(instruction))
}

// isOffRoute compares the position against the geometry of the current step
// and the next two steps; only when every sampled point is farther than the
// off-route threshold does the position count as off-route. Near sharp turns
// false positives are expected; callers debounce rather than react to a
// single tick.
func (n *Navigator) isOffRoute(pos models.Coordinate) bool {
	end := n.currentStep + offRouteLookahead
	if end > len(n.steps)-1 {
		end = len(n.steps) - 1
	}

	for i := n.currentStep; i <= end; i++ {
		step := n.steps[i]
		if geomath.Distance(pos, step.Location) <= OffRouteMeters {
			return false
		}
		for _, point := range step.Geometry {
			if geomath.Distance(pos, point) <= OffRouteMeters {
				return false
			}
		}
	}
	return true
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'A' && c <= 'Z' {
		return string(c+'a'-'A') + s[1:]
	}
	return s
}
