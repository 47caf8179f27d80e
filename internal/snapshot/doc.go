// Package snapshot loads the immutable input snapshots the forecasting
// engines run over: the elections snapshot (ward histories, current
// holders, contested wards), the reference snapshot (national polling
// and the prior-election baseline), optional demographics, and proposed
// reorganisation models.
//
// Loading is the only suspension point in the system; everything
// downstream is a pure computation over the records returned here.
//
// Input files are YAML. Percentage-denominated figures (candidate
// shares, turnout) are converted to fractions on load so that the rest
// of the engine deals in [0, 1] values only.
//
// Malformed entries degrade, they do not fail the load: a candidate
// without a party, an election with no candidates, or a ward entry that
// cannot be validated is skipped with a logged reason and the rest of
// the snapshot loads. Only an unreadable or unparseable file is an
// error.
package snapshot
