package core

import "time"

// ElectionKind classifies a past election record.
type ElectionKind string

const (
	// KindLocal is a scheduled local (council) election.
	KindLocal ElectionKind = "local"
	// KindByElection is an out-of-cycle by-election.
	KindByElection ElectionKind = "by-election"
	// KindGeneral is a parliamentary general election.
	KindGeneral ElectionKind = "general"
)

// PartyVacant is the seat-totals bucket for seats with no known holder.
// Keeping vacancies explicit preserves the invariant that seat totals
// always sum to the council's full seat count.
const PartyVacant = "Vacant"

// Candidate is a single candidate line from a past election result.
type Candidate struct {
	Name    string  `json:"name"`
	Party   string  `json:"party"`
	Votes   int     `json:"votes,omitempty"`
	Share   float64 `json:"share,omitempty"`
	Elected bool    `json:"elected,omitempty"`
}

// ElectionRecord is one past election in a ward's history.
type ElectionRecord struct {
	Date       time.Time    `json:"date"`
	Kind       ElectionKind `json:"kind"`
	Turnout    float64      `json:"turnout,omitempty"`
	Candidates []Candidate  `json:"candidates"`
}

// TotalVotes returns the sum of candidate votes, or 0 when vote counts
// are not recorded.
func (e ElectionRecord) TotalVotes() int {
	total := 0
	for _, c := range e.Candidates {
		total += c.Votes
	}
	return total
}

// Uncontested reports whether the election had a single candidate.
func (e ElectionRecord) Uncontested() bool {
	return len(e.Candidates) == 1
}

// WardHistory holds everything known about one ward: its past election
// results ordered oldest first, the parties currently holding its seats,
// and its seat count.
type WardHistory struct {
	Ward      string           `json:"ward"`
	Seats     int              `json:"seats"`
	Holders   []string         `json:"holders,omitempty"`
	Elections []ElectionRecord `json:"elections,omitempty"`
}

// Latest returns the most recent election record, or nil when the ward
// has no recorded history.
func (w WardHistory) Latest() *ElectionRecord {
	if len(w.Elections) == 0 {
		return nil
	}
	return &w.Elections[len(w.Elections)-1]
}

// DefendingParty returns the party whose seat is up for election, or ""
// when no holder is known. By convention the defending seat is listed
// first in Holders.
func (w WardHistory) DefendingParty() string {
	if len(w.Holders) == 0 {
		return ""
	}
	return w.Holders[0]
}

// NationalPolling carries the current national party shares together
// with the prior reference election result used as the swing baseline.
type NationalPolling struct {
	// Current maps party to its current national polling share.
	Current map[string]float64 `json:"current"`
	// Reference maps party to its share at the reference election.
	Reference map[string]float64 `json:"reference"`
	// Precedent optionally names a benchmark election the reference
	// figures were taken from (e.g. "2024 general election").
	Precedent string `json:"precedent,omitempty"`
}

// Swing returns the national swing for a party: current polling share
// minus reference share. Parties absent from either map contribute a
// zero term for the missing side.
func (p NationalPolling) Swing(party string) float64 {
	return p.Current[party] - p.Reference[party]
}

// DemographicProfile holds optional socio-economic indicators for a
// ward. Profiles are supplied for some wards and absent for others;
// callers branch on presence, never on zero values.
type DemographicProfile struct {
	// DeprivationIndex is a normalised deprivation score in [0, 1],
	// higher meaning more deprived.
	DeprivationIndex float64 `json:"deprivationIndex"`
	// MedianAge is the ward's median resident age in years.
	MedianAge float64 `json:"medianAge"`
	// OwnerOccupancy is the owner-occupied household rate in [0, 1].
	OwnerOccupancy float64 `json:"ownerOccupancy"`
}

// ProposedAuthority is one merged authority in a reorganisation model.
type ProposedAuthority struct {
	Name     string   `json:"name"`
	Councils []string `json:"councils"`
}

// ReorgModel describes a proposed local government reorganisation as a
// set of merged authorities, each listing its constituent councils.
type ReorgModel struct {
	Name        string              `json:"name"`
	Authorities []ProposedAuthority `json:"authorities"`
}
