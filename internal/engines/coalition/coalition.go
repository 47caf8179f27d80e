// Package coalition enumerates viable governing coalitions from a
// seat-totals table and a majority threshold.
//
// Party counts in a council are small (typically under ten), so the
// search is an explicit bounded subset enumeration with early pruning
// rather than anything specialised: combinations are visited smallest
// first, and any combination containing an already-qualifying smaller
// combination is skipped. Termination and complexity are therefore
// independent of the input beyond the hard party cap.
package coalition

import (
	"math/bits"
	"sort"
	"strings"

	"github.com/opencouncildata/forecast/pkg/core"
)

// maxParties bounds the subset search. Councils with more distinct
// parties than this have the search restricted to the largest
// maxParties parties; the remainder could not change which minimal
// coalitions exist near the top of the ranking.
const maxParties = 16

// Analyze returns the viable governing coalitions for the given seat
// totals, ordered by combined seats descending, then by party count
// ascending.
//
// If any single party meets the threshold, exactly that party is
// returned as a majority-type coalition and no multi-party combinations
// are offered. Otherwise every minimal qualifying combination is
// returned: no result is a strict superset of another. Vacant seats
// can vote for nobody and are excluded from the search.
func Analyze(totals core.SeatTotals, threshold int) []core.Coalition {
	if threshold < 1 {
		threshold = core.MajorityThreshold(totals.Total())
	}

	parties := eligibleParties(totals)
	if len(parties) == 0 {
		return nil
	}

	// Single-party majority short-circuits the search entirely.
	for _, party := range parties {
		if totals[party] >= threshold {
			return []core.Coalition{{
				Parties: []string{party},
				Seats:   totals[party],
				Margin:  totals[party] - threshold,
				Kind:    core.KindMajority,
			}}
		}
	}

	if len(parties) > maxParties {
		parties = parties[:maxParties]
	}

	var results []core.Coalition
	var qualifying []uint

	// Visit combinations smallest first so that every qualifying mask
	// found is minimal, then prune all of its supersets.
	n := len(parties)
	for size := 2; size <= n; size++ {
		for mask := uint(1); mask < 1<<n; mask++ {
			if bits.OnesCount(mask) != size {
				continue
			}
			if containsQualifying(mask, qualifying) {
				continue
			}

			seats := 0
			for i := 0; i < n; i++ {
				if mask&(1<<i) != 0 {
					seats += totals[parties[i]]
				}
			}
			if seats < threshold {
				continue
			}

			qualifying = append(qualifying, mask)
			results = append(results, core.Coalition{
				Parties: maskParties(mask, parties),
				Seats:   seats,
				Margin:  seats - threshold,
				Kind:    core.KindCoalition,
			})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Seats != results[j].Seats {
			return results[i].Seats > results[j].Seats
		}
		if len(results[i].Parties) != len(results[j].Parties) {
			return len(results[i].Parties) < len(results[j].Parties)
		}
		return strings.Join(results[i].Parties, "+") < strings.Join(results[j].Parties, "+")
	})

	return results
}

// eligibleParties returns the parties that can take part in a
// coalition, ordered by seats descending: vacant and zero-seat entries
// are dropped.
func eligibleParties(totals core.SeatTotals) []string {
	var parties []string
	for _, party := range totals.Parties() {
		if party == core.PartyVacant || totals[party] <= 0 {
			continue
		}
		parties = append(parties, party)
	}
	return parties
}

// containsQualifying reports whether the mask is a superset of any
// already-qualifying mask.
func containsQualifying(mask uint, qualifying []uint) bool {
	for _, q := range qualifying {
		if mask&q == q {
			return true
		}
	}
	return false
}

// maskParties expands a bitmask into its party names. The parties slice
// is ordered by seats descending, so the expansion is too.
func maskParties(mask uint, parties []string) []string {
	out := make([]string, 0, bits.OnesCount(mask))
	for i, party := range parties {
		if mask&(1<<i) != 0 {
			out = append(out, party)
		}
	}
	return out
}
