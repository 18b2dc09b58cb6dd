package lobbydomain

import (
	"errors"
	"fmt"
	"testing"

	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
	"github.com/google/go-cmp/cmp"
)

func candidate(i int, rating int, roles ...Role) Candidate {
	return Candidate{
		ID:     sharedtypes.DiscordID(fmt.Sprintf("player-%d", i)),
		Roles:  NewRoleSet(roles...),
		Rating: rating,
	}
}

// onePerRoleTeams builds two disjoint five-player groups, each covering all
// five roles with single-role candidates.
func onePerRoleTeams(ratingA, ratingB int) []Candidate {
	out := make([]Candidate, 0, 2*TeamSize)
	for i, r := range AllRoles {
		out = append(out, candidate(i, ratingA, r))
	}
	for i, r := range AllRoles {
		out = append(out, candidate(TeamSize+i, ratingB, r))
	}
	return out
}

// verifyAssignment checks the structural invariants: every role filled once
// per team, ten pairwise-distinct candidates, and self-consistent scores.
func verifyAssignment(t *testing.T, input []Candidate, a TeamAssignment) {
	t.Helper()

	seen := make(map[sharedtypes.DiscordID]bool)
	inputIDs := make(map[sharedtypes.DiscordID]bool)
	for _, c := range input {
		inputIDs[c.ID] = true
	}

	violations := 0
	for _, lineup := range []TeamLineup{a.TeamA, a.TeamB} {
		for _, r := range AllRoles {
			c := lineup[r]
			if c.ID == "" {
				t.Fatalf("role %s left unfilled", r)
			}
			if seen[c.ID] {
				t.Fatalf("candidate %s assigned twice", c.ID)
			}
			if !inputIDs[c.ID] {
				t.Fatalf("candidate %s not part of the input", c.ID)
			}
			seen[c.ID] = true
			if !c.Roles.Has(r) {
				violations++
			}
		}
	}

	if violations != a.PreferenceViolations {
		t.Fatalf("reported %d violations, recounted %d", a.PreferenceViolations, violations)
	}

	gap := a.TeamA.TotalRating() - a.TeamB.TotalRating()
	if gap < 0 {
		gap = -gap
	}
	if gap != a.RatingGap {
		t.Fatalf("reported gap %d, recomputed %d", a.RatingGap, gap)
	}
}

func TestSolveRejectsWrongCandidateCount(t *testing.T) {
	for _, n := range []int{0, 9, 11} {
		candidates := make([]Candidate, n)
		for i := range candidates {
			candidates[i] = candidate(i, DefaultRating, RoleTop)
		}
		_, err := Solve(candidates)
		if !errors.Is(err, ErrPoolSize) {
			t.Fatalf("n=%d: expected ErrPoolSize, got %v", n, err)
		}
	}
}

func TestSolvePerfectSplit(t *testing.T) {
	// Two disjoint one-role-each groups at equal ratings admit a
	// zero-violation, zero-gap split.
	candidates := onePerRoleTeams(1300, 1300)

	got, err := Solve(candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	verifyAssignment(t, candidates, got)

	if got.PreferenceViolations != 0 {
		t.Fatalf("expected 0 violations, got %d", got.PreferenceViolations)
	}
	if got.RatingGap != 0 {
		t.Fatalf("expected 0 gap, got %d", got.RatingGap)
	}
}

func TestSolveUnavoidableGap(t *testing.T) {
	// Single-role pairs force every zero-violation split to place one member
	// of each pair per team. The TOP pair differs by 500; every other pair is
	// flat, so every valid split carries exactly that gap.
	candidates := []Candidate{
		candidate(0, 1550, RoleTop), candidate(1, 1050, RoleTop),
		candidate(2, 1300, RoleJungle), candidate(3, 1300, RoleJungle),
		candidate(4, 1300, RoleMid), candidate(5, 1300, RoleMid),
		candidate(6, 1300, RoleBottom), candidate(7, 1300, RoleBottom),
		candidate(8, 1300, RoleSupport), candidate(9, 1300, RoleSupport),
	}

	got, err := Solve(candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	verifyAssignment(t, candidates, got)

	if got.PreferenceViolations != 0 {
		t.Fatalf("expected strict solution despite imbalance, got %d violations", got.PreferenceViolations)
	}
	if got.RatingGap != 500 {
		t.Fatalf("expected unavoidable gap 500, got %d", got.RatingGap)
	}
}

func TestSolveMinimizesGapAmongStrictSolutions(t *testing.T) {
	// Two pairs carry a +100 member. Splits that put both heavy members on
	// one side gap at 200; balanced splits reach 0. The solver must find 0.
	candidates := []Candidate{
		candidate(0, 1400, RoleTop), candidate(1, 1300, RoleTop),
		candidate(2, 1400, RoleJungle), candidate(3, 1300, RoleJungle),
		candidate(4, 1300, RoleMid), candidate(5, 1300, RoleMid),
		candidate(6, 1300, RoleBottom), candidate(7, 1300, RoleBottom),
		candidate(8, 1300, RoleSupport), candidate(9, 1300, RoleSupport),
	}

	got, err := Solve(candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	verifyAssignment(t, candidates, got)

	if got.PreferenceViolations != 0 {
		t.Fatalf("expected 0 violations, got %d", got.PreferenceViolations)
	}
	if got.RatingGap != 0 {
		t.Fatalf("expected minimal gap 0, got %d", got.RatingGap)
	}
}

func TestSolveRelaxedWhenRoleUndesired(t *testing.T) {
	// Nobody wants SUPPORT: four single-role pairs plus two flex players
	// covering the other four roles. Each team must push someone into
	// SUPPORT, so the best possible result is one violation per team.
	flex := NewRoleSet(RoleTop, RoleJungle, RoleMid, RoleBottom)
	candidates := []Candidate{
		candidate(0, 1300, RoleTop), candidate(1, 1300, RoleTop),
		candidate(2, 1300, RoleJungle), candidate(3, 1300, RoleJungle),
		candidate(4, 1300, RoleMid), candidate(5, 1300, RoleMid),
		candidate(6, 1300, RoleBottom), candidate(7, 1300, RoleBottom),
		{ID: "player-8", Roles: flex, Rating: 1300},
		{ID: "player-9", Roles: flex, Rating: 1300},
	}

	got, err := Solve(candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	verifyAssignment(t, candidates, got)

	if got.PreferenceViolations != 2 {
		t.Fatalf("expected exactly 2 violations, got %d", got.PreferenceViolations)
	}
}

func TestSolveRelaxedFillsAllRoles(t *testing.T) {
	// Everyone queues MID only. All roles must still be filled, at four
	// violations per team.
	candidates := make([]Candidate, 0, 2*TeamSize)
	for i := 0; i < 2*TeamSize; i++ {
		candidates = append(candidates, candidate(i, 1200+10*i, RoleMid))
	}

	got, err := Solve(candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	verifyAssignment(t, candidates, got)

	if got.PreferenceViolations != 8 {
		t.Fatalf("expected 8 violations (4 per team), got %d", got.PreferenceViolations)
	}
}

func TestSolveDeterministic(t *testing.T) {
	candidates := []Candidate{
		candidate(0, 1620, RoleTop, RoleMid),
		candidate(1, 1480, RoleTop),
		candidate(2, 1555, RoleJungle, RoleSupport),
		candidate(3, 1390, RoleJungle),
		candidate(4, 1210, RoleMid, RoleBottom),
		candidate(5, 1335, RoleMid),
		candidate(6, 1450, RoleBottom),
		candidate(7, 1280, RoleBottom, RoleTop),
		candidate(8, 1500, RoleSupport),
		candidate(9, 1405, RoleSupport, RoleJungle),
	}

	first, err := Solve(candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	verifyAssignment(t, candidates, first)

	second, err := Solve(candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("solver not deterministic for a fixed input (-first +second):\n%s", diff)
	}
}

func TestSolveNeverRelaxesWhenStrictExists(t *testing.T) {
	// Overlapping preferences with exactly one strict arrangement per side:
	// a chain where each player's flexibility hides the unique solution from
	// greedy assignment.
	candidates := []Candidate{
		candidate(0, 1300, RoleTop, RoleJungle),
		candidate(1, 1300, RoleJungle, RoleMid),
		candidate(2, 1300, RoleMid, RoleBottom),
		candidate(3, 1300, RoleBottom, RoleSupport),
		candidate(4, 1300, RoleSupport),
		candidate(5, 1310, RoleTop, RoleJungle),
		candidate(6, 1310, RoleJungle, RoleMid),
		candidate(7, 1310, RoleMid, RoleBottom),
		candidate(8, 1310, RoleBottom, RoleSupport),
		candidate(9, 1310, RoleSupport),
	}

	got, err := Solve(candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	verifyAssignment(t, candidates, got)

	if got.PreferenceViolations != 0 {
		t.Fatalf("solver relaxed although a strict assignment exists: %d violations", got.PreferenceViolations)
	}
}
