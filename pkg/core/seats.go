package core

import "sort"

// SeatTotals maps party to seat count for a whole council. Totals always
// sum to the council's full seat count; vacancies are carried under
// PartyVacant rather than dropped.
type SeatTotals map[string]int

// Total returns the sum of all seat counts.
func (s SeatTotals) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}

// Clone returns an independent copy of the totals.
func (s SeatTotals) Clone() SeatTotals {
	out := make(SeatTotals, len(s))
	for p, n := range s {
		out[p] = n
	}
	return out
}

// Largest returns the party with the most seats and its count, ties
// broken alphabetically. Returns ("", 0) for empty totals.
func (s SeatTotals) Largest() (string, int) {
	best, bestSeats := "", 0
	for _, p := range s.Parties() {
		if s[p] > bestSeats {
			best, bestSeats = p, s[p]
		}
	}
	return best, bestSeats
}

// Parties returns the parties in deterministic order: seats descending,
// then alphabetically.
func (s SeatTotals) Parties() []string {
	parties := make([]string, 0, len(s))
	for p := range s {
		parties = append(parties, p)
	}
	sort.Slice(parties, func(i, j int) bool {
		if s[parties[i]] != s[parties[j]] {
			return s[parties[i]] > s[parties[j]]
		}
		return parties[i] < parties[j]
	})
	return parties
}

// MajorityThreshold returns the minimum seats required for outright
// control of a chamber with the given seat count.
func MajorityThreshold(totalSeats int) int {
	return totalSeats/2 + 1
}

// CoalitionKind distinguishes a single-party majority from a
// multi-party coalition.
type CoalitionKind string

const (
	// KindMajority is outright single-party control.
	KindMajority CoalitionKind = "majority"
	// KindCoalition is a multi-party governing combination.
	KindCoalition CoalitionKind = "coalition"
)

// Coalition is one viable governing combination of parties.
type Coalition struct {
	// Parties is ordered by seats descending.
	Parties []string `json:"parties"`
	// Seats is the combined seat count.
	Seats int `json:"totalSeats"`
	// Margin is the combined seats above the majority threshold.
	Margin int           `json:"majority"`
	Kind   CoalitionKind `json:"type"`
}

// AuthorityProjection is the seat picture for one proposed merged
// authority, summed from whichever constituent councils had data.
type AuthorityProjection struct {
	Authority string `json:"authority"`
	// Councils lists the constituent councils that contributed data,
	// in the order they appear in the reorganisation model.
	Councils []string   `json:"councils"`
	Seats    SeatTotals `json:"seats"`
	// HasMajority reports whether any single party meets the
	// authority's own majority threshold.
	HasMajority bool `json:"hasMajority"`
	// ControlledBy names the controlling party, or "" for no overall
	// control.
	ControlledBy string `json:"controlledBy,omitempty"`
	LargestParty string `json:"largestParty,omitempty"`
}
