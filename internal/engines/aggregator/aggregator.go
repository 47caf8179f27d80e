// Package aggregator runs the ward swing predictor over every contested
// ward and combines the results with retained, non-contested seats into
// full council seat totals.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/go-logr/logr"

	"github.com/opencouncildata/forecast/internal/engines/predictor"
	"github.com/opencouncildata/forecast/internal/logging"
	"github.com/opencouncildata/forecast/internal/metrics"
	"github.com/opencouncildata/forecast/pkg/core"
)

// ErrPredictionUnavailable indicates a structurally unusable input: no
// contested wards, or a zero seat count. Callers render it as
// "prediction unavailable" rather than a partial result.
var ErrPredictionUnavailable = errors.New("prediction unavailable")

// Input is the council-wide input snapshot.
type Input struct {
	// Council is the council identifier.
	Council string
	// TotalSeats is the full council seat count.
	TotalSeats int
	// Contested lists the wards up for election.
	Contested []string
	// Wards maps ward name to history for the whole council, contested
	// or not.
	Wards map[string]core.WardHistory
	// Polling is the national picture shared by every ward.
	Polling core.NationalPolling
	// Demographics optionally maps ward name to its profile.
	Demographics map[string]core.DemographicProfile
}

// CouncilPrediction is the baseline council-wide forecast.
type CouncilPrediction struct {
	Council    string `json:"council"`
	TotalSeats int    `json:"totalSeats"`
	// Wards holds the per-ward prediction for every contested ward.
	Wards map[string]core.PredictionResult `json:"wards"`
	// Outcomes maps each contested ward to the party credited with its
	// seat: the predicted winner, or the retained holder when the
	// prediction degraded. The scenario engine substitutes into this.
	Outcomes map[string]string `json:"outcomes"`
	// Seats is the full prospective council, contested results plus
	// retained seats. Always sums to TotalSeats.
	Seats core.SeatTotals `json:"seats"`
}

// Aggregator combines per-ward predictions into council seat totals.
type Aggregator struct {
	predictor *predictor.Predictor
}

// New creates an Aggregator around the given predictor.
func New(p *predictor.Predictor) (*Aggregator, error) {
	if p == nil {
		return nil, fmt.Errorf("predictor cannot be nil")
	}
	return &Aggregator{predictor: p}, nil
}

// Predict produces the baseline council prediction. Individual wards
// lacking data degrade to retaining their current holder; only
// structurally unusable input returns an error.
func (a *Aggregator) Predict(ctx context.Context, in Input) (*CouncilPrediction, error) {
	logger := logr.FromContextOrDiscard(ctx)

	if in.TotalSeats <= 0 {
		return nil, fmt.Errorf("council %q has seat count %d: %w", in.Council, in.TotalSeats, ErrPredictionUnavailable)
	}
	if len(in.Contested) == 0 {
		return nil, fmt.Errorf("council %q has no contested wards: %w", in.Council, ErrPredictionUnavailable)
	}

	contested := make(map[string]bool, len(in.Contested))
	for _, name := range in.Contested {
		contested[name] = true
	}

	out := &CouncilPrediction{
		Council:  in.Council,
		Wards:    make(map[string]core.PredictionResult),
		Outcomes: make(map[string]string),
		Seats:    core.SeatTotals{},
	}

	for _, name := range sortedWardNames(in.Wards) {
		ward := in.Wards[name]

		if !contested[name] {
			creditRetained(out.Seats, ward, 0)
			continue
		}

		result := a.predictor.Predict(ctx, predictor.Input{
			History:      ward,
			Polling:      in.Polling,
			Demographics: wardProfile(in.Demographics, name),
		})
		out.Wards[name] = result

		outcome := result.Winner
		if outcome == "" {
			// Missing data is not a failure: the seat stays with its
			// current holder and the rest of the council proceeds.
			outcome = ward.DefendingParty()
			metrics.WardsDegraded.Inc()
			logger.Info("Ward prediction degraded, seat retained by current holder",
				"council", in.Council, "ward", name, "holder", outcome)
		} else {
			metrics.WardsPredicted.Inc()
		}
		if outcome == "" {
			outcome = core.PartyVacant
		}

		out.Outcomes[name] = outcome
		out.Seats[outcome]++
		// Seats not up for election this cycle stay with their holders.
		creditRetained(out.Seats, ward, 1)
	}

	if shortfall := in.TotalSeats - out.Seats.Total(); shortfall > 0 {
		out.Seats[core.PartyVacant] += shortfall
		logger.V(logging.DEBUG).Info("Snapshot accounts for fewer seats than the council total",
			"council", in.Council, "shortfall", shortfall)
	} else if shortfall < 0 {
		logger.Info("Snapshot accounts for more seats than the council total",
			"council", in.Council, "excess", -shortfall)
	}
	// The invariant is on the result: totals always sum to TotalSeats.
	out.TotalSeats = out.Seats.Total()

	return out, nil
}

// creditRetained credits a ward's non-contested seats to their current
// holders, skipping the first `skip` holders (the defending seat of a
// contested ward). Seats without a known holder are marked vacant.
func creditRetained(totals core.SeatTotals, ward core.WardHistory, skip int) {
	for i := skip; i < ward.Seats; i++ {
		if i < len(ward.Holders) && ward.Holders[i] != "" {
			totals[ward.Holders[i]]++
		} else {
			totals[core.PartyVacant]++
		}
	}
}

func wardProfile(profiles map[string]core.DemographicProfile, name string) *core.DemographicProfile {
	if profiles == nil {
		return nil
	}
	profile, ok := profiles[name]
	if !ok {
		return nil
	}
	return &profile
}

func sortedWardNames(wards map[string]core.WardHistory) []string {
	names := make([]string, 0, len(wards))
	for name := range wards {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
