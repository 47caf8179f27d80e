// Package logging provides the logr-based logging setup shared by the
// forecasting engines. The backend is zap; verbosity follows the logr
// convention where higher V levels are chattier.
package logging

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels used with logger.V(...). INFO is the default level
// emitted by a production logger; DEBUG and TRACE must be enabled
// explicitly via NewLogger.
const (
	INFO  = 0
	DEBUG = 1
	TRACE = 2
)

// NewLogger builds a production logr.Logger emitting at the given
// verbosity. Levels above the requested verbosity are suppressed.
func NewLogger(verbosity int) logr.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-verbosity))
	z, err := cfg.Build()
	if err != nil {
		// Fall back to a no-op logger rather than failing startup on a
		// logging misconfiguration.
		return logr.Discard()
	}
	return zapr.NewLogger(z)
}

// NewTestLogger builds a development-mode logger for use in test
// suites. All verbosity levels up to TRACE are enabled.
func NewTestLogger() logr.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-TRACE))
	z, err := cfg.Build()
	if err != nil {
		return logr.Discard()
	}
	return zapr.NewLogger(z)
}
