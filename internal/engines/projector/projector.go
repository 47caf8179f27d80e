// Package projector re-projects council seat totals onto proposed
// reorganised ("merged authority") boundaries.
//
// Partial data is the expected case: typically only one council's own
// prediction is available at a time, so constituent councils absent
// from the supplied mapping are skipped silently and the projection is
// computed from whatever is present. Completeness is the caller's
// concern, never a failure here.
package projector

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/opencouncildata/forecast/internal/logging"
	"github.com/opencouncildata/forecast/pkg/core"
)

// Project computes the seat picture of every proposed authority in the
// model from the supplied council seat totals. Authorities are returned
// in model order; an authority with no constituent data at all is still
// returned, with empty totals and no control status.
func Project(ctx context.Context, model core.ReorgModel, councils map[string]core.SeatTotals) []core.AuthorityProjection {
	logger := logr.FromContextOrDiscard(ctx)

	projections := make([]core.AuthorityProjection, 0, len(model.Authorities))
	for _, authority := range model.Authorities {
		projections = append(projections, projectAuthority(authority, councils))
	}

	logger.V(logging.DEBUG).Info("Projected reorganisation model",
		"model", model.Name,
		"authorities", len(projections),
		"councilsSupplied", len(councils))
	return projections
}

func projectAuthority(authority core.ProposedAuthority, councils map[string]core.SeatTotals) core.AuthorityProjection {
	projection := core.AuthorityProjection{
		Authority: authority.Name,
		Seats:     core.SeatTotals{},
	}

	for _, council := range authority.Councils {
		totals, ok := councils[council]
		if !ok {
			// Missing constituent data is expected; project what exists.
			continue
		}
		projection.Councils = append(projection.Councils, council)
		for party, seats := range totals {
			projection.Seats[party] += seats
		}
	}

	total := projection.Seats.Total()
	if total == 0 {
		return projection
	}

	// Vacant seats count toward the threshold but can neither control
	// the authority nor be its largest party.
	largest, largestSeats := "", 0
	for _, party := range projection.Seats.Parties() {
		if party == core.PartyVacant {
			continue
		}
		largest, largestSeats = party, projection.Seats[party]
		break
	}
	projection.LargestParty = largest
	if largest != "" && largestSeats >= core.MajorityThreshold(total) {
		projection.HasMajority = true
		projection.ControlledBy = largest
	}

	return projection
}
