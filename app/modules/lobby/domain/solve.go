package lobbydomain

import (
	"cmp"
	"errors"
	"fmt"
	"math/bits"
	"slices"
)

// TeamSize is the number of players on each side.
const TeamSize = 5

// ErrPoolSize is returned when Solve receives anything but exactly ten
// candidates. It marks a caller bug, not a solvable condition.
var ErrPoolSize = errors.New("team assignment requires exactly 10 candidates")

// TeamLineup assigns one candidate to each role, indexed by Role.
type TeamLineup [NumRoles]Candidate

// TotalRating sums the lineup's ratings.
func (l TeamLineup) TotalRating() int {
	total := 0
	for _, c := range l {
		total += c.Rating
	}
	return total
}

// TeamAssignment is a complete two-team split. Every role appears exactly
// once per lineup and no candidate is used twice; both facts are structural
// given how Solve fills the arrays.
type TeamAssignment struct {
	TeamA                TeamLineup
	TeamB                TeamLineup
	RatingGap            int
	PreferenceViolations int
}

// Solve partitions exactly ten candidates into two role-complete teams.
//
// The strict pass walks 5/5 splits in ascending rating-gap order and, per
// split, searches each side for a lineup where every candidate holds a
// desired role. Scarce roles are assigned first so impossible branches die
// early, and partial lineups travel by value so backtracking never unwinds
// shared state. The first split where both sides succeed is optimal: no
// later split can have a smaller gap, and it has zero violations.
//
// When no split passes strictly, the relaxed pass revisits the same splits
// and takes, per side, the complete role bijection with the fewest
// undesired assignments, keeping the overall best (violations, gap) pair.
// Once a one-violation assignment is held nothing better remains, because
// zero total violations would have satisfied the strict pass.
func Solve(candidates []Candidate) (TeamAssignment, error) {
	if len(candidates) != 2*TeamSize {
		return TeamAssignment{}, fmt.Errorf("%w: got %d", ErrPoolSize, len(candidates))
	}

	splits := enumerateSplits(candidates)

	for _, sp := range splits {
		lineupA, okA := strictLineup(sp.teamA)
		if !okA {
			continue
		}
		lineupB, okB := strictLineup(sp.teamB)
		if !okB {
			continue
		}
		return TeamAssignment{
			TeamA:     lineupA,
			TeamB:     lineupB,
			RatingGap: sp.gap,
		}, nil
	}

	best := TeamAssignment{PreferenceViolations: 2*TeamSize + 1}
	for _, sp := range splits {
		lineupA, violationsA := relaxedLineup(sp.teamA)
		lineupB, violationsB := relaxedLineup(sp.teamB)
		violations := violationsA + violationsB

		if violations < best.PreferenceViolations ||
			(violations == best.PreferenceViolations && sp.gap < best.RatingGap) {
			best = TeamAssignment{
				TeamA:                lineupA,
				TeamB:                lineupB,
				RatingGap:            sp.gap,
				PreferenceViolations: violations,
			}
		}
		if best.PreferenceViolations == 1 {
			break
		}
	}
	return best, nil
}

type split struct {
	teamA []Candidate
	teamB []Candidate
	gap   int
}

// enumerateSplits lists every 5/5 partition once, sorted by ascending
// rating gap. The first candidate is pinned to team A so mirrored splits
// are not generated twice.
func enumerateSplits(candidates []Candidate) []split {
	n := len(candidates)
	total := 0
	for _, c := range candidates {
		total += c.Rating
	}

	splits := make([]split, 0, 126)
	for mask := 0; mask < 1<<(n-1); mask++ {
		if bits.OnesCount(uint(mask)) != TeamSize-1 {
			continue
		}

		teamA := make([]Candidate, 0, TeamSize)
		teamB := make([]Candidate, 0, TeamSize)
		teamA = append(teamA, candidates[0])
		sumA := candidates[0].Rating

		for i := 1; i < n; i++ {
			if mask&(1<<(i-1)) != 0 {
				teamA = append(teamA, candidates[i])
				sumA += candidates[i].Rating
			} else {
				teamB = append(teamB, candidates[i])
			}
		}

		gap := sumA - (total - sumA)
		if gap < 0 {
			gap = -gap
		}
		splits = append(splits, split{teamA: teamA, teamB: teamB, gap: gap})
	}

	slices.SortStableFunc(splits, func(a, b split) int {
		return cmp.Compare(a.gap, b.gap)
	})
	return splits
}

// rolesByScarcity orders roles by how few team members desire them, so the
// backtracking search fails fast on the tightest constraint.
func rolesByScarcity(team []Candidate) [NumRoles]Role {
	var counts [NumRoles]int
	for _, c := range team {
		for _, r := range AllRoles {
			if c.Roles.Has(r) {
				counts[r]++
			}
		}
	}

	order := AllRoles
	slices.SortStableFunc(order[:], func(a, b Role) int {
		return cmp.Compare(counts[a], counts[b])
	})
	return order
}

// strictLineup searches for a lineup where every member holds a desired
// role. Lineups pass by value, so abandoned branches leave no residue.
func strictLineup(team []Candidate) (TeamLineup, bool) {
	order := rolesByScarcity(team)
	return assignStrict(team, order, 0, TeamLineup{}, 0)
}

func assignStrict(team []Candidate, order [NumRoles]Role, pos int, lineup TeamLineup, used uint8) (TeamLineup, bool) {
	if pos == NumRoles {
		return lineup, true
	}
	role := order[pos]
	for i, c := range team {
		if used&(1<<uint(i)) != 0 || !c.Roles.Has(role) {
			continue
		}
		lineup[role] = c
		if result, ok := assignStrict(team, order, pos+1, lineup, used|1<<uint(i)); ok {
			return result, true
		}
	}
	return TeamLineup{}, false
}

// relaxedLineup returns the complete role bijection with the fewest
// undesired assignments for one team.
func relaxedLineup(team []Candidate) (TeamLineup, int) {
	bestViolations := NumRoles + 1
	var bestLineup TeamLineup

	var assign func(pos int, lineup TeamLineup, used uint8, violations int)
	assign = func(pos int, lineup TeamLineup, used uint8, violations int) {
		if violations >= bestViolations {
			return
		}
		if pos == NumRoles {
			bestViolations = violations
			bestLineup = lineup
			return
		}
		role := AllRoles[pos]
		for i, c := range team {
			if used&(1<<uint(i)) != 0 {
				continue
			}
			next := violations
			if !c.Roles.Has(role) {
				next++
			}
			lineup[role] = c
			assign(pos+1, lineup, used|1<<uint(i), next)
		}
	}
	assign(0, TeamLineup{}, 0, 0)

	return bestLineup, bestViolations
}
