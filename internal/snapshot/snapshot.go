package snapshot

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/go-logr/logr"
	"gopkg.in/yaml.v3"

	"github.com/opencouncildata/forecast/pkg/core"
)

const dateLayout = "2006-01-02"

// Elections is the parsed elections snapshot for one council.
type Elections struct {
	// Council is the council identifier (e.g. "west-northamptonshire").
	Council string
	// TotalSeats is the full council seat count.
	TotalSeats int
	// Contested lists the wards up for election, sorted.
	Contested []string
	// Wards maps ward name to its history.
	Wards map[string]core.WardHistory
}

type electionsYAML struct {
	Council    string              `yaml:"council"`
	TotalSeats int                 `yaml:"totalSeats"`
	Contested  []string            `yaml:"contested"`
	Wards      map[string]wardYAML `yaml:"wards"`
}

type wardYAML struct {
	Seats     int            `yaml:"seats"`
	Holders   []string       `yaml:"holders"`
	Elections []electionYAML `yaml:"elections"`
}

type electionYAML struct {
	Date       string          `yaml:"date"`
	Kind       string          `yaml:"kind"`
	Turnout    float64         `yaml:"turnout"`
	Candidates []candidateYAML `yaml:"candidates"`
}

type candidateYAML struct {
	Name    string  `yaml:"name"`
	Party   string  `yaml:"party"`
	Votes   int     `yaml:"votes"`
	Share   float64 `yaml:"share"`
	Elected bool    `yaml:"elected"`
}

// LoadElections reads and validates an elections snapshot file.
// Malformed ward or candidate entries are skipped with a logged reason.
func LoadElections(path string, logger logr.Logger) (*Elections, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading elections snapshot %s: %w", path, err)
	}
	return ParseElections(data, logger)
}

// ParseElections parses an elections snapshot from raw YAML.
func ParseElections(data []byte, logger logr.Logger) (*Elections, error) {
	var raw electionsYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing elections snapshot: %w", err)
	}

	out := &Elections{
		Council:    raw.Council,
		TotalSeats: raw.TotalSeats,
		Wards:      make(map[string]core.WardHistory, len(raw.Wards)),
	}

	names := make([]string, 0, len(raw.Wards))
	for name := range raw.Wards {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ward, ok := parseWard(name, raw.Wards[name], logger)
		if !ok {
			continue
		}
		out.Wards[name] = ward
	}

	// Keep only contested wards that exist in the snapshot; unknown
	// names cannot be mapped to any seat.
	for _, name := range raw.Contested {
		if _, exists := out.Wards[name]; !exists {
			logger.Info("Skipping contested ward absent from snapshot", "ward", name)
			continue
		}
		out.Contested = append(out.Contested, name)
	}
	sort.Strings(out.Contested)

	return out, nil
}

func parseWard(name string, raw wardYAML, logger logr.Logger) (core.WardHistory, bool) {
	if name == "" {
		logger.Info("Skipping ward entry with empty name")
		return core.WardHistory{}, false
	}
	if raw.Seats <= 0 {
		logger.Info("Skipping ward with non-positive seat count", "ward", name, "seats", raw.Seats)
		return core.WardHistory{}, false
	}

	ward := core.WardHistory{
		Ward:    name,
		Seats:   raw.Seats,
		Holders: raw.Holders,
	}

	for i, e := range raw.Elections {
		record, ok := parseElection(name, i, e, logger)
		if !ok {
			continue
		}
		ward.Elections = append(ward.Elections, record)
	}

	// Histories are ordered oldest first regardless of file order.
	sort.SliceStable(ward.Elections, func(i, j int) bool {
		return ward.Elections[i].Date.Before(ward.Elections[j].Date)
	})

	return ward, true
}

func parseElection(ward string, index int, raw electionYAML, logger logr.Logger) (core.ElectionRecord, bool) {
	record := core.ElectionRecord{
		Kind:    core.ElectionKind(raw.Kind),
		Turnout: toFraction(raw.Turnout),
	}
	if record.Kind == "" {
		record.Kind = core.KindLocal
	}

	if raw.Date != "" {
		date, err := time.Parse(dateLayout, raw.Date)
		if err != nil {
			logger.Info("Skipping election with unparseable date",
				"ward", ward, "index", index, "date", raw.Date, "error", err.Error())
			return core.ElectionRecord{}, false
		}
		record.Date = date
	}

	for _, c := range raw.Candidates {
		if c.Party == "" {
			logger.Info("Skipping candidate without a party", "ward", ward, "candidate", c.Name)
			continue
		}
		record.Candidates = append(record.Candidates, core.Candidate{
			Name:    c.Name,
			Party:   c.Party,
			Votes:   c.Votes,
			Share:   toFraction(c.Share),
			Elected: c.Elected,
		})
	}

	if len(record.Candidates) == 0 {
		logger.Info("Skipping election with no usable candidates", "ward", ward, "index", index)
		return core.ElectionRecord{}, false
	}

	return record, true
}

type referenceYAML struct {
	Precedent string             `yaml:"precedent"`
	Current   map[string]float64 `yaml:"current"`
	Reference map[string]float64 `yaml:"reference"`
}

// LoadReference reads the reference snapshot: current national polling
// shares and the prior reference election result.
func LoadReference(path string) (core.NationalPolling, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.NationalPolling{}, fmt.Errorf("reading reference snapshot %s: %w", path, err)
	}
	return ParseReference(data)
}

// ParseReference parses a reference snapshot from raw YAML.
func ParseReference(data []byte) (core.NationalPolling, error) {
	var raw referenceYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return core.NationalPolling{}, fmt.Errorf("parsing reference snapshot: %w", err)
	}
	if len(raw.Current) == 0 {
		return core.NationalPolling{}, fmt.Errorf("reference snapshot has no current polling shares")
	}

	polling := core.NationalPolling{
		Current:   make(map[string]float64, len(raw.Current)),
		Reference: make(map[string]float64, len(raw.Reference)),
		Precedent: raw.Precedent,
	}
	for party, share := range raw.Current {
		polling.Current[party] = toFraction(share)
	}
	for party, share := range raw.Reference {
		polling.Reference[party] = toFraction(share)
	}
	return polling, nil
}

// LoadDemographics reads the optional ward demographics map. A missing
// file is not an error; the predictor simply runs without nudges.
func LoadDemographics(path string, logger logr.Logger) (map[string]core.DemographicProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("No demographics file, predictions run without demographic nudges", "path", path)
			return nil, nil
		}
		return nil, fmt.Errorf("reading demographics %s: %w", path, err)
	}

	var raw map[string]demographicYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing demographics: %w", err)
	}

	out := make(map[string]core.DemographicProfile, len(raw))
	for ward, d := range raw {
		out[ward] = core.DemographicProfile{
			DeprivationIndex: d.DeprivationIndex,
			MedianAge:        d.MedianAge,
			OwnerOccupancy:   toFraction(d.OwnerOccupancy),
		}
	}
	return out, nil
}

type demographicYAML struct {
	DeprivationIndex float64 `yaml:"deprivationIndex"`
	MedianAge        float64 `yaml:"medianAge"`
	OwnerOccupancy   float64 `yaml:"ownerOccupancy"`
}

type reorgYAML struct {
	Models []reorgModelYAML `yaml:"models"`
}

type reorgModelYAML struct {
	Name        string `yaml:"name"`
	Authorities []struct {
		Name     string   `yaml:"name"`
		Councils []string `yaml:"councils"`
	} `yaml:"authorities"`
}

// LoadReorgModels reads the proposed reorganisation model list.
func LoadReorgModels(path string) ([]core.ReorgModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading reorganisation models %s: %w", path, err)
	}

	var raw reorgYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing reorganisation models: %w", err)
	}

	models := make([]core.ReorgModel, 0, len(raw.Models))
	for _, m := range raw.Models {
		model := core.ReorgModel{Name: m.Name}
		for _, a := range m.Authorities {
			model.Authorities = append(model.Authorities, core.ProposedAuthority{
				Name:     a.Name,
				Councils: a.Councils,
			})
		}
		models = append(models, model)
	}
	return models, nil
}

// toFraction normalises a figure that may be given as a percentage.
// Values above 1 are treated as percentages and divided by 100.
func toFraction(v float64) float64 {
	if v > 1 {
		return v / 100
	}
	return v
}
