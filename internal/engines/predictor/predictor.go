package predictor

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/go-logr/logr"
	"gonum.org/v1/gonum/stat"

	"github.com/opencouncildata/forecast/internal/logging"
	"github.com/opencouncildata/forecast/pkg/config"
	"github.com/opencouncildata/forecast/pkg/core"
)

// maxDemographicNudge caps the combined demographic adjustment for any
// single party, so local signals can shade a result but never drive it.
const maxDemographicNudge = 0.05

// Config holds the tunable parameters for a Predictor.
type Config struct {
	Assumptions config.Assumptions
	Tuning      config.ModelTuning
}

// Predictor projects a single ward's likely outcome from its history,
// the national swing, and local signals. It is pure: identical inputs
// always produce identical results.
type Predictor struct {
	assumptions config.Assumptions
	tuning      config.ModelTuning
}

// New creates a Predictor. Zero-valued tuning fields inherit the
// package defaults.
func New(cfg *Config) (*Predictor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Assumptions.Validate(); err != nil {
		return nil, fmt.Errorf("invalid assumptions: %w", err)
	}
	tuning := config.EffectiveTuning(cfg.Tuning)
	if err := tuning.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tuning: %w", err)
	}
	return &Predictor{
		assumptions: cfg.Assumptions,
		tuning:      tuning,
	}, nil
}

// Input is the per-ward input snapshot. Demographics is optional;
// wards without a profile are predicted without demographic nudges.
type Input struct {
	History      core.WardHistory
	Polling      core.NationalPolling
	Demographics *core.DemographicProfile
}

// Predict produces the prediction for one ward.
func (p *Predictor) Predict(ctx context.Context, in Input) core.PredictionResult {
	logger := logr.FromContextOrDiscard(ctx)

	result := core.PredictionResult{Ward: in.History.Ward}
	tr := &trace{}

	baseline, complete, ok := p.establishBaseline(in.History, tr)
	if !ok {
		result.Confidence = core.ConfidenceNone
		result.Methodology = tr.steps
		logger.V(logging.DEBUG).Info("No usable history for ward", "ward", in.History.Ward)
		return result
	}

	shares := p.applySwing(baseline, in.Polling, tr)
	shares = p.applyLocalFactors(shares, in, tr)

	histTurnout := historicalTurnout(in.History)
	result.Turnout = p.estimateTurnout(histTurnout, tr)

	result.Shares = shares
	p.rankAndClassify(&result, in.History, histTurnout, complete, tr)
	result.Methodology = tr.steps

	logger.V(logging.DEBUG).Info("Ward prediction complete",
		"ward", in.History.Ward,
		"winner", result.Winner,
		"confidence", string(result.Confidence),
		"majorityPct", result.MajorityPct)
	return result
}

// establishBaseline derives the starting vote shares. Returns ok=false
// when the ward has no usable history at all. complete reports whether
// the underlying data supports a high-confidence classification.
func (p *Predictor) establishBaseline(history core.WardHistory, tr *trace) (map[string]float64, bool, bool) {
	if len(history.Elections) == 0 {
		tr.add("no-history", "No past election results recorded for this ward; no prediction is possible.", nil)
		return nil, false, false
	}

	latest := history.Latest()

	if latest.Uncontested() {
		party := latest.Candidates[0].Party
		tr.add("establish-baseline",
			fmt.Sprintf("Most recent election was uncontested; %s is treated as holding 100%% of the vote.", party),
			map[string]float64{party: 1},
			"uncontested election")
		return map[string]float64{party: 1}, false, true
	}

	if shares := partyShares(*latest); len(shares) > 0 {
		tr.add("establish-baseline",
			"Baseline vote shares taken from the most recent ward election.",
			copyShares(shares),
			fmt.Sprintf("election of %s", latest.Date.Format("2006-01-02")))
		complete := len(history.Elections) >= 2 && latest.Turnout > 0
		return shares, complete, true
	}

	// The latest result carries no usable share data: average whatever
	// the recent window does offer.
	averaged := p.averageRecent(history)
	if len(averaged) == 0 {
		tr.add("no-history", "Recorded elections carry no vote figures; no prediction is possible.", nil)
		return nil, false, false
	}
	tr.add("establish-baseline",
		fmt.Sprintf("Most recent result has no vote figures; baseline averaged over the last %d elections with data.", p.tuning.RecentElections),
		copyShares(averaged),
		"sparse history")
	return averaged, false, true
}

// partyShares extracts per-party shares from one election. In
// multi-member wards each party's strongest candidate stands proxy for
// the party. Vote counts are preferred; quoted shares are the fallback.
func partyShares(e core.ElectionRecord) map[string]float64 {
	votes := make(map[string]float64)
	quoted := make(map[string]float64)
	for _, c := range e.Candidates {
		if float64(c.Votes) > votes[c.Party] {
			votes[c.Party] = float64(c.Votes)
		}
		if c.Share > quoted[c.Party] {
			quoted[c.Party] = c.Share
		}
	}

	basis := votes
	if sum(basis) == 0 {
		basis = quoted
	}
	if sum(basis) == 0 {
		return nil
	}
	return normalize(basis)
}

// averageRecent computes per-party mean shares over the most recent
// elections that carry usable data.
func (p *Predictor) averageRecent(history core.WardHistory) map[string]float64 {
	window := p.tuning.RecentElections
	if window <= 0 {
		window = config.DefaultRecentElections
	}

	var perElection []map[string]float64
	for i := len(history.Elections) - 1; i >= 0 && len(perElection) < window; i-- {
		if shares := partyShares(history.Elections[i]); len(shares) > 0 {
			perElection = append(perElection, shares)
		}
	}
	if len(perElection) == 0 {
		return nil
	}

	parties := make(map[string]struct{})
	for _, shares := range perElection {
		for party := range shares {
			parties[party] = struct{}{}
		}
	}

	averaged := make(map[string]float64, len(parties))
	for party := range parties {
		series := make([]float64, len(perElection))
		for i, shares := range perElection {
			series[i] = shares[party]
		}
		averaged[party] = stat.Mean(series, nil)
	}
	return normalize(averaged)
}

// applySwing applies the uniform national swing: each locally present
// party moves by its raw national delta times the swing multiplier.
// Shares are floored at zero and renormalised. Parties polling
// nationally but absent locally are not invented here; only the
// configured new entrant is ever injected, in applyLocalFactors.
func (p *Predictor) applySwing(baseline map[string]float64, polling core.NationalPolling, tr *trace) map[string]float64 {
	swung := make(map[string]float64, len(baseline))
	deltas := make(map[string]float64, len(baseline))
	for _, party := range sortedKeys(baseline) {
		delta := polling.Swing(party) * p.assumptions.SwingMultiplier
		deltas[party] = delta
		share := baseline[party] + delta
		if share < 0 {
			share = 0
		}
		swung[party] = share
	}

	if sum(swung) == 0 {
		// A pathological swing zeroed every share; keep the baseline
		// rather than emit nothing.
		tr.add("apply-swing", "National swing eliminated all shares; baseline retained unchanged.", deltas,
			"uniform national swing")
		return copyShares(baseline)
	}

	result := normalize(swung)
	tr.add("apply-swing",
		fmt.Sprintf("Uniform national swing applied at multiplier %.2f (relative to %s); negative shares floored and the total renormalised.",
			p.assumptions.SwingMultiplier, precedentOr(polling.Precedent, "the reference election")),
		deltas,
		"uniform national swing")
	return result
}

// applyLocalFactors layers ward-level signals over the swung shares:
// the incumbency retention bonus, demographic correlation nudges when a
// profile is present, and new-entrant injection when the assumptions
// call for it.
func (p *Predictor) applyLocalFactors(shares map[string]float64, in Input, tr *trace) map[string]float64 {
	adjusted := copyShares(shares)
	var factors []string
	data := make(map[string]float64)

	if defending := in.History.DefendingParty(); defending != "" {
		if _, stood := adjusted[defending]; stood {
			adjusted[defending] += p.tuning.IncumbencyBonus
			data[defending] = p.tuning.IncumbencyBonus
			factors = append(factors, "incumbency")
		}
	}

	if in.Demographics != nil && p.tuning.DemographicWeight > 0 {
		for _, party := range sortedKeys(adjusted) {
			nudge := demographicNudge(party, *in.Demographics, p.tuning.DemographicWeight)
			if nudge == 0 {
				continue
			}
			adjusted[party] += nudge
			if adjusted[party] < 0 {
				adjusted[party] = 0
			}
			data[party] += nudge
		}
		factors = append(factors, "demographics")
	}

	if len(factors) > 0 {
		adjusted = normalize(adjusted)
		tr.add("local-adjustments",
			"Ward-level adjustments applied to the swung shares, then renormalised.",
			data, factors...)
	}

	if p.assumptions.NewEntrantStandsEverywhere && p.assumptions.NewEntrantParty != "" {
		adjusted = p.injectNewEntrant(adjusted, in, tr)
	}

	return adjusted
}

// injectNewEntrant adds the configured entrant party, where it has not
// previously stood, at its national polling share, scaling the existing
// shares down proportionally so the total stays at 1.
func (p *Predictor) injectNewEntrant(shares map[string]float64, in Input, tr *trace) map[string]float64 {
	entrant := p.assumptions.NewEntrantParty
	if hasStood(in.History, entrant) {
		return shares
	}

	entry := in.Polling.Current[entrant]
	if entry <= 0 || entry >= 1 {
		return shares
	}

	injected := make(map[string]float64, len(shares)+1)
	for party, share := range shares {
		injected[party] = share * (1 - entry)
	}
	injected[entrant] = entry

	tr.add("inject-new-entrant",
		fmt.Sprintf("%s assumed to contest this ward for the first time at its national polling share; existing shares scaled to fit.", entrant),
		map[string]float64{entrant: entry},
		"new entrant contests every ward")
	return injected
}

// estimateTurnout projects turnout as historical ward turnout plus the
// user's adjustment, clamped to [0, 1].
func (p *Predictor) estimateTurnout(histTurnout float64, tr *trace) float64 {
	estimated := histTurnout + p.assumptions.TurnoutAdjustment
	estimated = math.Max(0, math.Min(1, estimated))
	tr.add("estimate-turnout",
		"Turnout estimated as historical ward turnout plus the turnout adjustment, clamped to [0, 1].",
		map[string]float64{
			"historical": histTurnout,
			"adjustment": p.assumptions.TurnoutAdjustment,
			"estimated":  estimated,
		})
	return estimated
}

// rankAndClassify names the winner, computes the majority, and derives
// confidence from margin and data completeness.
func (p *Predictor) rankAndClassify(result *core.PredictionResult, history core.WardHistory, histTurnout float64, complete bool, tr *trace) {
	ranked := result.Ranked()
	if len(ranked) == 0 {
		result.Confidence = core.ConfidenceNone
		return
	}

	result.Winner = ranked[0]
	gap := result.Shares[ranked[0]]
	if len(ranked) > 1 {
		gap -= result.Shares[ranked[1]]
	}
	result.MajorityPct = gap
	result.Majority = estimateMajorityVotes(gap, history, histTurnout, result.Turnout)

	switch {
	case !complete:
		result.Confidence = core.ConfidenceLow
	case gap >= p.tuning.HighConfidenceMargin:
		result.Confidence = core.ConfidenceHigh
	case gap >= p.tuning.MediumConfidenceMargin:
		result.Confidence = core.ConfidenceMedium
	default:
		result.Confidence = core.ConfidenceLow
	}

	factors := []string{fmt.Sprintf("margin %.1fpp", gap*100)}
	if !complete {
		factors = append(factors, "incomplete data")
	}
	tr.add("rank-and-classify",
		fmt.Sprintf("%s predicted to win with a %.1f point margin; confidence %s.",
			result.Winner, gap*100, result.Confidence),
		map[string]float64{"margin": gap},
		factors...)
}

// estimateMajorityVotes converts the share-point gap into an estimated
// vote margin, scaling the last recorded electorate by the projected
// turnout. Returns 0 when the electorate cannot be estimated.
func estimateMajorityVotes(gap float64, history core.WardHistory, histTurnout, estTurnout float64) int {
	latest := history.Latest()
	if latest == nil || histTurnout <= 0 {
		return 0
	}
	totalVotes := float64(latest.TotalVotes())
	if totalVotes == 0 {
		return 0
	}
	electorate := totalVotes / histTurnout
	return int(math.Round(gap * electorate * estTurnout))
}

// historicalTurnout returns the most recent recorded turnout, walking
// back through the history, or 0 when none was recorded.
func historicalTurnout(history core.WardHistory) float64 {
	for i := len(history.Elections) - 1; i >= 0; i-- {
		if t := history.Elections[i].Turnout; t > 0 {
			return t
		}
	}
	return 0
}

// hasStood reports whether the party fielded a candidate in any
// recorded election for the ward.
func hasStood(history core.WardHistory, party string) bool {
	for _, e := range history.Elections {
		for _, c := range e.Candidates {
			if c.Party == party {
				return true
			}
		}
	}
	return false
}

func precedentOr(precedent, fallback string) string {
	if precedent != "" {
		return precedent
	}
	return fallback
}

func sum(shares map[string]float64) float64 {
	total := 0.0
	for _, s := range shares {
		total += s
	}
	return total
}

// normalize scales shares so they sum to 1. Shares that already sum to
// zero are returned unchanged.
func normalize(shares map[string]float64) map[string]float64 {
	total := sum(shares)
	if total == 0 {
		return shares
	}
	out := make(map[string]float64, len(shares))
	for party, s := range shares {
		out[party] = s / total
	}
	return out
}

func copyShares(shares map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(shares))
	for party, s := range shares {
		out[party] = s
	}
	return out
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
