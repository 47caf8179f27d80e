// Command forecast runs the full election forecasting pipeline over a
// set of snapshot files and writes the resulting records as JSON to
// stdout: per-ward predictions, council seat totals, viable coalitions,
// and optional reorganised-authority projections.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	flag "github.com/spf13/pflag"

	"github.com/opencouncildata/forecast/internal/engines/aggregator"
	"github.com/opencouncildata/forecast/internal/engines/coalition"
	"github.com/opencouncildata/forecast/internal/engines/predictor"
	"github.com/opencouncildata/forecast/internal/engines/projector"
	"github.com/opencouncildata/forecast/internal/engines/scenario"
	"github.com/opencouncildata/forecast/internal/logging"
	"github.com/opencouncildata/forecast/internal/snapshot"
	"github.com/opencouncildata/forecast/pkg/config"
	"github.com/opencouncildata/forecast/pkg/core"
)

type output struct {
	Council       string                                `json:"council"`
	TotalSeats    int                                   `json:"totalSeats"`
	Wards         map[string]core.PredictionResult      `json:"wards"`
	Seats         core.SeatTotals                       `json:"seats"`
	ScenarioSeats core.SeatTotals                       `json:"scenarioSeats,omitempty"`
	Coalitions    []core.Coalition                      `json:"coalitions"`
	Projections   map[string][]core.AuthorityProjection `json:"projections,omitempty"`
}

func main() {
	var (
		electionsPath    string
		referencePath    string
		demographicsPath string
		reorgPath        string
		configPath       string
		overrides        map[string]string
		verbosity        int
	)

	flag.StringVar(&electionsPath, "elections", "", "path to the elections snapshot YAML (required)")
	flag.StringVar(&referencePath, "reference", "", "path to the reference polling snapshot YAML (required)")
	flag.StringVar(&demographicsPath, "demographics", "", "path to the optional ward demographics YAML")
	flag.StringVar(&reorgPath, "reorg", "", "path to the optional reorganisation models YAML")
	flag.StringVar(&configPath, "config", "", "path to the assumptions/tuning config YAML")
	flag.StringToStringVar(&overrides, "override", nil, "scenario override as ward=party (repeatable)")
	flag.IntVarP(&verbosity, "verbosity", "v", 0, "log verbosity (0=info, 1=debug, 2=trace)")
	flag.Parse()

	logger := logging.NewLogger(verbosity)
	ctx := logr.NewContext(context.Background(), logger)

	if err := run(ctx, electionsPath, referencePath, demographicsPath, reorgPath, configPath, overrides); err != nil {
		if errors.Is(err, aggregator.ErrPredictionUnavailable) {
			fmt.Fprintf(os.Stderr, "prediction unavailable: %v\n", err)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, electionsPath, referencePath, demographicsPath, reorgPath, configPath string, overrides map[string]string) error {
	logger := logr.FromContextOrDiscard(ctx)

	if electionsPath == "" || referencePath == "" {
		return fmt.Errorf("--elections and --reference are required")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	elections, err := snapshot.LoadElections(electionsPath, logger)
	if err != nil {
		return err
	}
	polling, err := snapshot.LoadReference(referencePath)
	if err != nil {
		return err
	}

	var demographics map[string]core.DemographicProfile
	if demographicsPath != "" {
		if demographics, err = snapshot.LoadDemographics(demographicsPath, logger); err != nil {
			return err
		}
	}

	pred, err := predictor.New(&predictor.Config{
		Assumptions: cfg.Assumptions,
		Tuning:      cfg.Tuning,
	})
	if err != nil {
		return err
	}
	agg, err := aggregator.New(pred)
	if err != nil {
		return err
	}

	baseline, err := agg.Predict(ctx, aggregator.Input{
		Council:      elections.Council,
		TotalSeats:   elections.TotalSeats,
		Contested:    elections.Contested,
		Wards:        elections.Wards,
		Polling:      polling,
		Demographics: demographics,
	})
	if err != nil {
		return err
	}

	out := output{
		Council:    baseline.Council,
		TotalSeats: baseline.TotalSeats,
		Wards:      baseline.Wards,
		Seats:      baseline.Seats,
	}

	seats := baseline.Seats
	if len(overrides) > 0 {
		seats = scenario.Apply(ctx, baseline, overrides)
		out.ScenarioSeats = seats
	}

	out.Coalitions = coalition.Analyze(seats, core.MajorityThreshold(baseline.TotalSeats))

	if reorgPath != "" {
		models, err := snapshot.LoadReorgModels(reorgPath)
		if err != nil {
			return err
		}
		councilSeats := map[string]core.SeatTotals{baseline.Council: seats}
		out.Projections = make(map[string][]core.AuthorityProjection, len(models))
		for _, model := range models {
			out.Projections[model.Name] = projector.Project(ctx, model, councilSeats)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
