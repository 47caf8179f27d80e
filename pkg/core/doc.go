// Package core provides the fundamental data structures for the election
// forecasting engine.
//
// This package contains the domain records shared by every engine:
//
//   - WardHistory: a ward's past election results, current holders, and seats
//   - NationalPolling: current national shares plus the reference baseline
//   - DemographicProfile: optional socio-economic indicators for a ward
//   - PredictionResult: a single ward forecast with its methodology trace
//   - SeatTotals: party to seat-count mapping for a whole council
//   - Coalition: a viable governing combination of parties
//   - AuthorityProjection: seat totals re-projected onto merged authorities
//   - ReorgModel: a proposed local government reorganisation
//
// Vote shares are fractions in [0, 1] throughout; the snapshot loader is
// responsible for converting percentage-denominated inputs. Election
// histories are ordered oldest first, with Latest returning the most
// recent record.
//
// The core package is designed to be:
//   - Plain data: nested records passed in-process to the display layer
//   - Deterministic: helpers that order map contents always sort keys
//   - Independent of the input and logging layers (pure domain types)
package core
