// Package scenario recomputes council seat totals under manual
// "what-if" overrides of individual ward outcomes.
//
// Overrides substitute the party credited with an overridden ward's
// contested seat; they never add or remove seats elsewhere. Application
// is pure and idempotent: it always starts from the baseline
// prediction, so reapplying the same overrides yields identical totals
// and removing an override restores the baseline contribution exactly.
package scenario

import (
	"context"
	"sort"

	"github.com/go-logr/logr"

	"github.com/opencouncildata/forecast/internal/engines/aggregator"
	"github.com/opencouncildata/forecast/internal/metrics"
	"github.com/opencouncildata/forecast/pkg/core"
)

// Apply returns the seat totals with the given ward overrides
// substituted into the baseline prediction. Overrides naming an unknown
// ward or an empty party are ignored with a logged reason (fail-soft):
// an unknown ward cannot be mapped to any seat without breaking the
// totals invariant.
func Apply(ctx context.Context, baseline *aggregator.CouncilPrediction, overrides map[string]string) core.SeatTotals {
	logger := logr.FromContextOrDiscard(ctx)

	totals := baseline.Seats.Clone()
	if len(overrides) == 0 {
		return totals
	}

	wards := make([]string, 0, len(overrides))
	for ward := range overrides {
		wards = append(wards, ward)
	}
	sort.Strings(wards)

	for _, ward := range wards {
		party := overrides[ward]

		previous, known := baseline.Outcomes[ward]
		if !known {
			metrics.OverridesIgnored.Inc()
			logger.Info("Ignoring override for unknown ward", "ward", ward, "party", party)
			continue
		}
		if party == "" {
			metrics.OverridesIgnored.Inc()
			logger.Info("Ignoring override with empty party", "ward", ward)
			continue
		}
		if party == previous {
			continue
		}

		totals[previous]--
		if totals[previous] == 0 {
			delete(totals, previous)
		}
		totals[party]++
		metrics.OverridesApplied.Inc()
	}

	return totals
}
