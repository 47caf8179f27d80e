package predictor

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencouncildata/forecast/pkg/config"
	"github.com/opencouncildata/forecast/pkg/core"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

// abbeyHistory is a two-election ward with Labour defending:
// latest result Labour 50%, Conservative 30%, Green 20%.
func abbeyHistory() core.WardHistory {
	return core.WardHistory{
		Ward:    "Abbey",
		Seats:   1,
		Holders: []string{"Labour"},
		Elections: []core.ElectionRecord{
			{
				Date: date(2022, 5, 5), Kind: core.KindLocal, Turnout: 0.31,
				Candidates: []core.Candidate{
					{Party: "Labour", Votes: 1040, Share: 0.52},
					{Party: "Conservative", Votes: 560, Share: 0.28},
					{Party: "Green", Votes: 400, Share: 0.20},
				},
			},
			{
				Date: date(2023, 5, 4), Kind: core.KindLocal, Turnout: 0.34,
				Candidates: []core.Candidate{
					{Party: "Labour", Votes: 1000, Share: 0.50},
					{Party: "Conservative", Votes: 600, Share: 0.30},
					{Party: "Green", Votes: 400, Share: 0.20},
				},
			},
		},
	}
}

func flatPolling() core.NationalPolling {
	return core.NationalPolling{
		Current:   map[string]float64{"Labour": 0.33, "Conservative": 0.25, "Green": 0.05},
		Reference: map[string]float64{"Labour": 0.33, "Conservative": 0.25, "Green": 0.05},
	}
}

func newPredictor(t *testing.T, cfg Config) *Predictor {
	t.Helper()
	if cfg.Assumptions.SwingMultiplier == 0 {
		cfg.Assumptions.SwingMultiplier = 1
	}
	p, err := New(&cfg)
	require.NoError(t, err)
	return p
}

func TestNewRejectsNilConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestNoHistoryYieldsConfidenceNone(t *testing.T) {
	p := newPredictor(t, Config{})

	result := p.Predict(context.Background(), Input{
		History: core.WardHistory{Ward: "Empty", Seats: 1},
		Polling: flatPolling(),
	})

	assert.Equal(t, core.ConfidenceNone, result.Confidence)
	assert.Empty(t, result.Winner)
	assert.Empty(t, result.Shares)
	require.NotEmpty(t, result.Methodology)
	assert.Equal(t, "no-history", result.Methodology[0].Name)
}

func TestSharesSumToOne(t *testing.T) {
	configs := []Config{
		{},
		{Assumptions: config.Assumptions{SwingMultiplier: 1.5, TurnoutAdjustment: -0.05}},
		{Assumptions: config.Assumptions{SwingMultiplier: 1, NewEntrantStandsEverywhere: true, NewEntrantParty: "Reform UK"}},
	}
	polling := flatPolling()
	polling.Current["Reform UK"] = 0.15

	for _, cfg := range configs {
		p := newPredictor(t, cfg)
		result := p.Predict(context.Background(), Input{History: abbeyHistory(), Polling: polling})
		assert.InDelta(t, 1.0, result.ShareSum(), 0.001)
	}
}

func TestUniformSwingWithNewEntrant(t *testing.T) {
	// The national picture gives Labour a -5pp swing and a new entrant
	// polling at 15% that has never stood in the ward.
	polling := core.NationalPolling{
		Current:   map[string]float64{"Labour": 0.28, "Conservative": 0.25, "Green": 0.05, "Reform UK": 0.15},
		Reference: map[string]float64{"Labour": 0.33, "Conservative": 0.25, "Green": 0.05},
	}
	history := abbeyHistory()
	history.Holders = nil // isolate the swing from the incumbency bonus

	p := newPredictor(t, Config{Assumptions: config.Assumptions{
		SwingMultiplier:            1,
		NewEntrantStandsEverywhere: true,
		NewEntrantParty:            "Reform UK",
	}})
	result := p.Predict(context.Background(), Input{History: history, Polling: polling})

	assert.InDelta(t, 1.0, result.ShareSum(), 0.001)
	assert.InDelta(t, 0.15, result.Shares["Reform UK"], 1e-9)
	assert.Less(t, result.Shares["Labour"], 0.50, "Labour share should fall relative to baseline")
	assert.Greater(t, result.Shares["Labour"], result.Shares["Conservative"])

	var names []string
	for _, step := range result.Methodology {
		names = append(names, step.Name)
	}
	assert.Equal(t, []string{"establish-baseline", "apply-swing", "inject-new-entrant", "estimate-turnout", "rank-and-classify"}, names)
}

func TestEntrantNotInjectedWhereItAlreadyStood(t *testing.T) {
	history := abbeyHistory()
	history.Elections[1].Candidates = append(history.Elections[1].Candidates,
		core.Candidate{Party: "Reform UK", Votes: 100, Share: 0.05})

	polling := flatPolling()
	polling.Current["Reform UK"] = 0.15

	p := newPredictor(t, Config{Assumptions: config.Assumptions{
		SwingMultiplier:            1,
		NewEntrantStandsEverywhere: true,
		NewEntrantParty:            "Reform UK",
	}})
	result := p.Predict(context.Background(), Input{History: history, Polling: polling})

	for _, step := range result.Methodology {
		assert.NotEqual(t, "inject-new-entrant", step.Name)
	}
	// Reform UK is still present, from its actual past result.
	assert.Contains(t, result.Shares, "Reform UK")
}

func TestIncumbencyBonus(t *testing.T) {
	withHolder := abbeyHistory()
	withoutHolder := abbeyHistory()
	withoutHolder.Holders = nil

	p := newPredictor(t, Config{})
	held := p.Predict(context.Background(), Input{History: withHolder, Polling: flatPolling()})
	open := p.Predict(context.Background(), Input{History: withoutHolder, Polling: flatPolling()})

	assert.Greater(t, held.Shares["Labour"], open.Shares["Labour"])
}

func TestNegativeSharesFlooredAtZero(t *testing.T) {
	polling := core.NationalPolling{
		Current:   map[string]float64{"Green": 0.01},
		Reference: map[string]float64{"Green": 0.40},
	}
	history := abbeyHistory()
	history.Holders = nil

	p := newPredictor(t, Config{})
	result := p.Predict(context.Background(), Input{History: history, Polling: polling})

	for party, share := range result.Shares {
		assert.GreaterOrEqual(t, share, 0.0, "share for %s", party)
	}
	assert.InDelta(t, 1.0, result.ShareSum(), 0.001)
	assert.Equal(t, 0.0, result.Shares["Green"])
}

func TestUncontestedBaseline(t *testing.T) {
	history := core.WardHistory{
		Ward: "Castle", Seats: 1, Holders: []string{"Conservative"},
		Elections: []core.ElectionRecord{{
			Date: date(2023, 5, 4), Kind: core.KindLocal, Turnout: 0.25,
			Candidates: []core.Candidate{{Party: "Conservative", Votes: 640}},
		}},
	}

	p := newPredictor(t, Config{})
	result := p.Predict(context.Background(), Input{History: history, Polling: flatPolling()})

	assert.Equal(t, "Conservative", result.Winner)
	// Single past election and an uncontested baseline: never better
	// than low confidence.
	assert.Equal(t, core.ConfidenceLow, result.Confidence)

	require.NotEmpty(t, result.Methodology)
	assert.Contains(t, result.Methodology[0].Description, "uncontested")
}

func TestSparseHistoryAveragesRecentElections(t *testing.T) {
	history := core.WardHistory{
		Ward: "Dane", Seats: 1,
		Elections: []core.ElectionRecord{
			{
				Date: date(2021, 5, 6), Kind: core.KindLocal, Turnout: 0.30,
				Candidates: []core.Candidate{
					{Party: "Labour", Votes: 600},
					{Party: "Conservative", Votes: 400},
				},
			},
			{
				// Result known only as names, no figures.
				Date: date(2023, 5, 4), Kind: core.KindLocal,
				Candidates: []core.Candidate{
					{Party: "Labour"},
					{Party: "Conservative"},
				},
			},
		},
	}

	p := newPredictor(t, Config{})
	result := p.Predict(context.Background(), Input{History: history, Polling: flatPolling()})

	assert.Equal(t, "Labour", result.Winner)
	assert.InDelta(t, 0.6, result.Shares["Labour"], 0.01)
	assert.Contains(t, result.Methodology[0].Description, "averaged")
	// Averaged baselines are incomplete data.
	assert.Equal(t, core.ConfidenceLow, result.Confidence)
}

func TestConfidenceClassification(t *testing.T) {
	tests := []struct {
		name   string
		shares map[string]int // latest-election votes
		want   core.Confidence
	}{
		{"wide margin", map[string]int{"Labour": 600, "Conservative": 300}, core.ConfidenceHigh},
		{"moderate margin", map[string]int{"Labour": 530, "Conservative": 470}, core.ConfidenceMedium},
		{"thin margin", map[string]int{"Labour": 505, "Conservative": 495}, core.ConfidenceLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := abbeyHistory()
			history.Holders = nil
			var candidates []core.Candidate
			for party, votes := range tt.shares {
				candidates = append(candidates, core.Candidate{Party: party, Votes: votes})
			}
			history.Elections[1].Candidates = candidates

			p := newPredictor(t, Config{})
			result := p.Predict(context.Background(), Input{History: history, Polling: flatPolling()})
			assert.Equal(t, tt.want, result.Confidence)
		})
	}
}

func TestTurnoutEstimate(t *testing.T) {
	p := newPredictor(t, Config{Assumptions: config.Assumptions{
		SwingMultiplier:   1,
		TurnoutAdjustment: -0.40,
	}})
	result := p.Predict(context.Background(), Input{History: abbeyHistory(), Polling: flatPolling()})
	// 0.34 - 0.40 clamps at zero.
	assert.Equal(t, 0.0, result.Turnout)

	p = newPredictor(t, Config{Assumptions: config.Assumptions{
		SwingMultiplier:   1,
		TurnoutAdjustment: 0.05,
	}})
	result = p.Predict(context.Background(), Input{History: abbeyHistory(), Polling: flatPolling()})
	assert.InDelta(t, 0.39, result.Turnout, 1e-9)
}

func TestMajorityVotesEstimated(t *testing.T) {
	p := newPredictor(t, Config{})
	result := p.Predict(context.Background(), Input{History: abbeyHistory(), Polling: flatPolling()})

	assert.Greater(t, result.Majority, 0)
	assert.Greater(t, result.MajorityPct, 0.0)
}

func TestDemographicNudges(t *testing.T) {
	history := abbeyHistory()
	history.Holders = nil
	deprived := core.DemographicProfile{DeprivationIndex: 0.9, MedianAge: 38, OwnerOccupancy: 0.45}

	p := newPredictor(t, Config{})
	plain := p.Predict(context.Background(), Input{History: history, Polling: flatPolling()})
	nudged := p.Predict(context.Background(), Input{History: history, Polling: flatPolling(), Demographics: &deprived})

	assert.Greater(t, nudged.Shares["Labour"], plain.Shares["Labour"])
	assert.Less(t, nudged.Shares["Conservative"], plain.Shares["Conservative"])
	assert.InDelta(t, 1.0, nudged.ShareSum(), 0.001)
}

func TestPredictionIsDeterministic(t *testing.T) {
	polling := flatPolling()
	polling.Current["Reform UK"] = 0.12
	deprived := core.DemographicProfile{DeprivationIndex: 0.7, MedianAge: 41, OwnerOccupancy: 0.55}
	in := Input{History: abbeyHistory(), Polling: polling, Demographics: &deprived}

	p := newPredictor(t, Config{Assumptions: config.Assumptions{
		SwingMultiplier:            1.2,
		NewEntrantStandsEverywhere: true,
		NewEntrantParty:            "Reform UK",
	}})

	first := p.Predict(context.Background(), in)
	second := p.Predict(context.Background(), in)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("identical inputs produced different predictions (-first +second):\n%s", diff)
	}
}
