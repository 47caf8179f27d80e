package coalition

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/opencouncildata/forecast/pkg/core"
)

var _ = Describe("Analyze", func() {
	Context("with a single-party majority", func() {
		totals := core.SeatTotals{"Labour": 23, "Conservative": 10, "Independent": 8, "LibDem": 4}

		It("should return exactly one majority-type coalition", func() {
			results := Analyze(totals, core.MajorityThreshold(totals.Total()))

			Expect(results).To(HaveLen(1))
			Expect(results[0].Parties).To(Equal([]string{"Labour"}))
			Expect(results[0].Seats).To(Equal(23))
			Expect(results[0].Margin).To(Equal(0))
			Expect(results[0].Kind).To(Equal(core.KindMajority))
		})
	})

	Context("with a hung council", func() {
		totals := core.SeatTotals{"Conservative": 18, "Labour": 15, "LibDem": 8, "Green": 4}
		threshold := core.MajorityThreshold(totals.Total()) // 45 seats, threshold 23

		It("should only return coalitions meeting the threshold", func() {
			results := Analyze(totals, threshold)

			Expect(results).NotTo(BeEmpty())
			for _, c := range results {
				Expect(c.Seats).To(BeNumerically(">=", threshold))
				Expect(c.Kind).To(Equal(core.KindCoalition))
				Expect(c.Margin).To(Equal(c.Seats - threshold))
			}
		})

		It("should not return supersets of a qualifying coalition", func() {
			results := Analyze(totals, threshold)

			for i, a := range results {
				for j, b := range results {
					if i == j {
						continue
					}
					Expect(isStrictSubset(a.Parties, b.Parties)).To(BeFalse(),
						"%v is a strict subset of %v", a.Parties, b.Parties)
				}
			}
		})

		It("should rank by seats descending then party count ascending", func() {
			results := Analyze(totals, threshold)

			for i := 1; i < len(results); i++ {
				prev, cur := results[i-1], results[i]
				ok := prev.Seats > cur.Seats ||
					(prev.Seats == cur.Seats && len(prev.Parties) <= len(cur.Parties))
				Expect(ok).To(BeTrue(), "results out of order at %d: %v before %v", i, prev, cur)
			}
		})

		It("should order parties within a coalition by seats descending", func() {
			results := Analyze(totals, threshold)

			for _, c := range results {
				for i := 1; i < len(c.Parties); i++ {
					Expect(totals[c.Parties[i-1]]).To(BeNumerically(">=", totals[c.Parties[i]]))
				}
			}
		})

		It("should find the two-party combinations that clear the threshold", func() {
			results := Analyze(totals, threshold)

			var pairs [][]string
			for _, c := range results {
				if len(c.Parties) == 2 {
					pairs = append(pairs, c.Parties)
				}
			}
			Expect(pairs).To(ContainElement([]string{"Conservative", "Labour"}))
			Expect(pairs).To(ContainElement([]string{"Conservative", "LibDem"}))
			Expect(pairs).To(ContainElement([]string{"Labour", "LibDem"}))
		})
	})

	Context("with edge-case inputs", func() {
		It("should return nothing for empty totals", func() {
			Expect(Analyze(core.SeatTotals{}, 1)).To(BeEmpty())
		})

		It("should exclude vacant seats from coalitions", func() {
			totals := core.SeatTotals{"Labour": 10, "Conservative": 9, core.PartyVacant: 8}
			results := Analyze(totals, core.MajorityThreshold(totals.Total()))

			for _, c := range results {
				Expect(c.Parties).NotTo(ContainElement(core.PartyVacant))
			}
		})

		It("should derive the threshold when given a non-positive one", func() {
			totals := core.SeatTotals{"Labour": 30, "Conservative": 10}
			results := Analyze(totals, 0)

			Expect(results).To(HaveLen(1))
			Expect(results[0].Kind).To(Equal(core.KindMajority))
			// 40 seats: threshold 21, margin 9.
			Expect(results[0].Margin).To(Equal(9))
		})

		It("should return a grand coalition when nothing smaller qualifies", func() {
			totals := core.SeatTotals{"A": 5, "B": 5, "C": 5}
			results := Analyze(totals, 15)

			Expect(results).To(HaveLen(1))
			Expect(results[0].Parties).To(HaveLen(3))
			Expect(results[0].Seats).To(Equal(15))
			Expect(results[0].Margin).To(Equal(0))
		})
	})
})

// isStrictSubset reports whether a is a strict subset of b.
func isStrictSubset(a, b []string) bool {
	if len(a) >= len(b) {
		return false
	}
	set := make(map[string]struct{}, len(b))
	for _, p := range b {
		set[p] = struct{}{}
	}
	for _, p := range a {
		if _, ok := set[p]; !ok {
			return false
		}
	}
	return true
}
