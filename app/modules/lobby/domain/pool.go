package lobbydomain

import (
	"context"
	"sync"
	"time"

	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
)

const (
	// MaxActive caps the number of candidates eligible for assignment.
	MaxActive = 10

	// DefaultRating substitutes for a rating that could not be resolved.
	DefaultRating = 1300

	defaultRatingTimeout = 5 * time.Second
)

// Candidate is one participant's live intent within a lobby.
type Candidate struct {
	ID     sharedtypes.DiscordID
	Roles  RoleSet
	Rating int
}

// RatingSource resolves a participant's skill rating. Implementations must
// honor the context deadline; the pool substitutes DefaultRating on error.
type RatingSource interface {
	LookupRating(ctx context.Context, id sharedtypes.DiscordID) (int, error)
}

// RatingSourceFunc adapts a function to the RatingSource interface.
type RatingSourceFunc func(ctx context.Context, id sharedtypes.DiscordID) (int, error)

func (f RatingSourceFunc) LookupRating(ctx context.Context, id sharedtypes.DiscordID) (int, error) {
	return f(ctx, id)
}

// PoolState is the pool's readiness phase.
type PoolState string

const (
	StateFilling PoolState = "FILLING"
	StateReady   PoolState = "READY"
)

// PoolStatus is the read-only projection of a pool for display. Active and
// Waitlist are copies in arrival order.
type PoolStatus struct {
	State    PoolState
	Active   []Candidate
	Waitlist []Candidate
}

// Pool tracks who wants to play what for one lobby. The active set never
// exceeds MaxActive; later joiners wait in FIFO order and are promoted as
// active slots free up. All mutations degrade to no-ops on unknown or
// duplicate keys because the driving event source replays and reorders.
type Pool struct {
	mu       sync.Mutex
	active   map[sharedtypes.DiscordID]*Candidate
	order    []sharedtypes.DiscordID
	waitlist []*Candidate

	// ratings caches resolved ratings for the lobby's lifetime, surviving
	// withdraw-and-rejoin, so each identity is looked up at most once.
	ratings map[sharedtypes.DiscordID]int

	source  RatingSource
	timeout time.Duration
}

// NewPool creates an empty pool. source may be nil, in which case every
// candidate gets DefaultRating. ratingTimeout bounds each lookup; zero
// selects a sane default.
func NewPool(source RatingSource, ratingTimeout time.Duration) *Pool {
	if ratingTimeout <= 0 {
		ratingTimeout = defaultRatingTimeout
	}
	return &Pool{
		active:  make(map[sharedtypes.DiscordID]*Candidate),
		ratings: make(map[sharedtypes.DiscordID]int),
		source:  source,
		timeout: ratingTimeout,
	}
}

// RegisterIntent applies one join or leave event. With active true the role
// is added to the identity's desired set, creating the candidate (and
// resolving its rating) on first contact; with active false the role is
// removed, and a candidate whose desired set empties out leaves the pool,
// promoting the longest-waiting waitlisted candidate.
func (p *Pool) RegisterIntent(ctx context.Context, id sharedtypes.DiscordID, role Role, active bool) {
	if role < 0 || int(role) >= NumRoles {
		return
	}
	if active {
		p.addIntent(ctx, id, role)
		return
	}
	p.removeIntent(id, role)
}

func (p *Pool) addIntent(ctx context.Context, id sharedtypes.DiscordID, role Role) {
	p.mu.Lock()
	if c, ok := p.active[id]; ok {
		c.Roles = c.Roles.With(role)
		p.mu.Unlock()
		return
	}
	if c := p.waitlistedLocked(id); c != nil {
		c.Roles = c.Roles.With(role)
		p.mu.Unlock()
		return
	}
	_, resolved := p.ratings[id]
	p.mu.Unlock()

	// First contact: resolve the rating outside the lock so a slow source
	// never blocks other pool mutations.
	if !resolved {
		rating := p.resolveRating(ctx, id)
		p.mu.Lock()
		if _, ok := p.ratings[id]; !ok {
			p.ratings[id] = rating
		}
		p.mu.Unlock()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// The identity may have joined through a concurrent event while the
	// lock was released; degrade to a role update.
	if c, ok := p.active[id]; ok {
		c.Roles = c.Roles.With(role)
		return
	}
	if c := p.waitlistedLocked(id); c != nil {
		c.Roles = c.Roles.With(role)
		return
	}

	cand := &Candidate{ID: id, Roles: NewRoleSet(role), Rating: p.ratings[id]}
	if len(p.active) < MaxActive {
		p.active[id] = cand
		p.order = append(p.order, id)
		return
	}
	p.waitlist = append(p.waitlist, cand)
}

func (p *Pool) removeIntent(id sharedtypes.DiscordID, role Role) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.active[id]; ok {
		c.Roles = c.Roles.Without(role)
		if c.Roles.IsEmpty() {
			delete(p.active, id)
			p.dropFromOrderLocked(id)
			p.promoteLocked()
		}
		return
	}

	for i, c := range p.waitlist {
		if c.ID == id {
			c.Roles = c.Roles.Without(role)
			if c.Roles.IsEmpty() {
				p.waitlist = append(p.waitlist[:i], p.waitlist[i+1:]...)
			}
			return
		}
	}
	// Unknown identity: stale or replayed event, ignore.
}

func (p *Pool) waitlistedLocked(id sharedtypes.DiscordID) *Candidate {
	for _, c := range p.waitlist {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (p *Pool) dropFromOrderLocked(id sharedtypes.DiscordID) {
	for i, existing := range p.order {
		if existing == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			return
		}
	}
}

// promoteLocked moves the longest-waiting candidate into a free active
// slot. Ratings were resolved at join time, so promotion does no I/O.
func (p *Pool) promoteLocked() {
	if len(p.waitlist) == 0 || len(p.active) >= MaxActive {
		return
	}
	c := p.waitlist[0]
	p.waitlist = p.waitlist[1:]
	p.active[c.ID] = c
	p.order = append(p.order, c.ID)
}

func (p *Pool) resolveRating(ctx context.Context, id sharedtypes.DiscordID) int {
	if p.source == nil {
		return DefaultRating
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	rating, err := p.source.LookupRating(ctx, id)
	if err != nil {
		return DefaultRating
	}
	return rating
}

// IsReady reports whether the active set holds exactly MaxActive candidates.
func (p *Pool) IsReady() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.active) == MaxActive
}

// State returns FILLING below capacity and READY at capacity.
func (p *Pool) State() PoolState {
	if p.IsReady() {
		return StateReady
	}
	return StateFilling
}

// Snapshot returns copies of the active candidates in arrival order and
// whether the pool is ready. Only a ready snapshot may be handed to Solve.
func (p *Pool) Snapshot() ([]Candidate, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Candidate, 0, len(p.active))
	for _, id := range p.order {
		out = append(out, *p.active[id])
	}
	return out, len(out) == MaxActive
}

// Status returns the display projection. It always succeeds, whatever the
// readiness state.
func (p *Pool) Status() PoolStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	status := PoolStatus{State: StateFilling}
	if len(p.active) == MaxActive {
		status.State = StateReady
	}
	status.Active = make([]Candidate, 0, len(p.active))
	for _, id := range p.order {
		status.Active = append(status.Active, *p.active[id])
	}
	status.Waitlist = make([]Candidate, 0, len(p.waitlist))
	for _, c := range p.waitlist {
		status.Waitlist = append(status.Waitlist, *c)
	}
	return status
}

// Clear discards all pool state, cached ratings included.
func (p *Pool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.active = make(map[sharedtypes.DiscordID]*Candidate)
	p.order = nil
	p.waitlist = nil
	p.ratings = make(map[sharedtypes.DiscordID]int)
}
