package predictor

import (
	"math"

	"github.com/opencouncildata/forecast/pkg/core"
)

// Demographic correlation coefficients, in share points per unit of the
// centred indicator. Signs follow the well-established UK local
// election correlations: deprivation leans Labour, owner-occupancy and
// age lean Conservative. Parties not listed take no nudge.
type demographicLean struct {
	deprivation float64
	ownership   float64
	age         float64
}

var partyLeans = map[string]demographicLean{
	"Labour":           {deprivation: 0.04, ownership: -0.03, age: -0.02},
	"Conservative":     {deprivation: -0.04, ownership: 0.03, age: 0.03},
	"Liberal Democrat": {deprivation: -0.01, ownership: 0.01, age: 0},
	"Green":            {deprivation: 0, ownership: -0.01, age: -0.02},
	"Reform UK":        {deprivation: 0.02, ownership: 0, age: 0.01},
}

// Centring constants: national-ish midpoints so that an average ward
// takes no nudge at all.
const (
	midDeprivation    = 0.5
	midOwnerOccupancy = 0.65
	midMedianAge      = 45.0
	ageScaleYears     = 20.0
)

// demographicNudge returns the share-point adjustment for a party given
// a ward profile. The result is capped at maxDemographicNudge so a
// demographic signal can never outweigh the swing itself.
func demographicNudge(party string, profile core.DemographicProfile, weight float64) float64 {
	lean, ok := partyLeans[party]
	if !ok {
		return 0
	}

	dep := profile.DeprivationIndex - midDeprivation
	own := profile.OwnerOccupancy - midOwnerOccupancy
	age := (profile.MedianAge - midMedianAge) / ageScaleYears
	age = math.Max(-1, math.Min(1, age))

	nudge := weight * (lean.deprivation*dep + lean.ownership*own + lean.age*age)
	return math.Max(-maxDemographicNudge, math.Min(maxDemographicNudge, nudge))
}
