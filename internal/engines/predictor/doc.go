// Package predictor implements the ward swing predictor, the innermost
// engine of the forecast pipeline.
//
// A prediction is derived in fixed stages, each appending to the
// methodology trace that the display layer renders and the test suite
// inspects:
//
//  1. Establish baseline shares from the most recent ward election,
//     falling back to an average of recent elections when the latest
//     result carries no usable share data.
//  2. Apply the uniform national swing (current polling minus the
//     reference result, scaled by the swing multiplier), flooring
//     negative shares at zero and renormalising.
//  3. Apply local adjustments: incumbency retention bonus, demographic
//     correlation nudges where a profile is supplied, and new-entrant
//     injection when the assumptions call for it.
//  4. Estimate turnout from ward history plus the turnout adjustment,
//     clamped to [0, 1].
//  5. Rank shares, name the winner, and classify confidence from the
//     first-to-second margin and data completeness.
//
// The swing formula and the local-adjustment magnitudes are isolated in
// applySwing and applyLocalFactors so either can be replaced without
// touching the rest of the pipeline.
//
// A ward with no recorded history yields ConfidenceNone and no winner;
// it never yields a fabricated result.
package predictor
