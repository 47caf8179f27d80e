package core

import "sort"

// Confidence is the qualitative reliability label attached to a ward
// prediction. It is derived solely from margin size and data
// completeness, never assigned ad hoc.
type Confidence string

const (
	// ConfidenceHigh: clear margin on complete data.
	ConfidenceHigh Confidence = "high"
	// ConfidenceMedium: moderate margin.
	ConfidenceMedium Confidence = "medium"
	// ConfidenceLow: thin margin or incomplete data.
	ConfidenceLow Confidence = "low"
	// ConfidenceNone: the ward has no usable history; no winner is named.
	ConfidenceNone Confidence = "none"
)

// MethodologyStep is one entry in the ordered derivation trace of a
// prediction. The display layer renders the trace verbatim and the test
// suite inspects it, so steps are first-class output, not debug logging.
type MethodologyStep struct {
	// Number is the 1-based position of the step in the derivation.
	Number int `json:"number"`
	// Name is a short stable identifier (e.g. "apply-swing").
	Name string `json:"name"`
	// Description is a human-readable account of what the step did.
	Description string `json:"description"`
	// Data holds the supporting figures the step worked from.
	Data map[string]float64 `json:"data,omitempty"`
	// Factors lists qualitative contributing factors (e.g. "incumbency").
	Factors []string `json:"factors,omitempty"`
}

// PredictionResult is the forecast for a single ward.
type PredictionResult struct {
	Ward string `json:"ward"`
	// Shares maps party to predicted vote share; shares sum to 1 within
	// rounding tolerance whenever a prediction was possible.
	Shares map[string]float64 `json:"shares,omitempty"`
	// Winner is the predicted winning party, or "" when Confidence is
	// ConfidenceNone.
	Winner     string     `json:"winner,omitempty"`
	Confidence Confidence `json:"confidence"`
	// Majority is the estimated winning margin in votes, 0 when the
	// electorate size cannot be estimated.
	Majority int `json:"majority,omitempty"`
	// MajorityPct is the share-point gap between first and second place.
	MajorityPct float64 `json:"majorityPct"`
	// Turnout is the estimated turnout as a fraction in [0, 1].
	Turnout float64 `json:"turnout"`
	// Methodology is the ordered derivation trace.
	Methodology []MethodologyStep `json:"methodology"`
}

// Ranked returns the predicted parties ordered by share descending,
// ties broken alphabetically for determinism.
func (r PredictionResult) Ranked() []string {
	parties := make([]string, 0, len(r.Shares))
	for p := range r.Shares {
		parties = append(parties, p)
	}
	sort.Slice(parties, func(i, j int) bool {
		si, sj := r.Shares[parties[i]], r.Shares[parties[j]]
		if si != sj {
			return si > sj
		}
		return parties[i] < parties[j]
	})
	return parties
}

// ShareSum returns the sum of all predicted shares. A valid prediction
// sums to 1 within a 0.001 tolerance.
func (r PredictionResult) ShareSum() float64 {
	sum := 0.0
	for _, s := range r.Shares {
		sum += s
	}
	return sum
}
