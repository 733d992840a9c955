package goAudit

import (
	"fmt"
	"strings"
)

// LintSeverity ranks advisory findings produced by Config.Lint.
type LintSeverity int

const (
	LintInfo LintSeverity = iota
	LintWarn
	LintHigh
)

func (s LintSeverity) String() string {
	switch s {
	case LintHigh:
		return "HIGH"
	case LintWarn:
		return "WARN"
	default:
		return "INFO"
	}
}

// LintWarning is a single advisory finding about a Config. Findings never
// block construction; they flag settings that are legal but likely to lose
// records or hide that loss.
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

// LintWarnings defines a public type used by goAudit APIs.
type LintWarnings []LintWarning

// Codes returns the warning codes in emission order.
func (ws LintWarnings) Codes() []string {
	codes := make([]string, 0, len(ws))
	for _, w := range ws {
		codes = append(codes, w.Code)
	}
	return codes
}

// BySeverity returns the warnings at or above min.
func (ws LintWarnings) BySeverity(min LintSeverity) LintWarnings {
	var out LintWarnings
	for _, w := range ws {
		if w.Severity >= min {
			out = append(out, w)
		}
	}
	return out
}

// AsError collapses the warnings at or above min into a single error, or
// returns nil when none reach that severity. Callers that refuse to start
// with a questionable audit config gate on AsError(LintHigh).
func (ws LintWarnings) AsError(min LintSeverity) error {
	hits := ws.BySeverity(min)
	if len(hits) == 0 {
		return nil
	}
	return fmt.Errorf("config lint: %d finding(s) at or above %s: %s",
		len(hits), min, strings.Join(hits.Codes(), ", "))
}

// Lint reports advisory findings that Validate deliberately tolerates.
//
// Lint may return findings even for the default configuration: the default
// is intentionally lossy under overload, and that tradeoff is surfaced
// rather than hidden. Only contradictory settings reach LintHigh.
func (c *Config) Lint() LintWarnings {
	var ws LintWarnings

	if c.Dispatch.DropIfFull {
		ws = append(ws, LintWarning{
			Code:     "lossy_dispatch",
			Severity: LintInfo,
			Message:  "dispatch queue sheds audit records when full",
		})
		if !c.Metrics.Enabled {
			ws = append(ws, LintWarning{
				Code:     "drops_unobservable",
				Severity: LintWarn,
				Message:  "records can be shed while metrics are disabled, so drops leave no trace",
			})
		}
	}

	if c.Dispatch.BufferSize > 0 && c.Dispatch.BufferSize < 256 {
		ws = append(ws, LintWarning{
			Code:     "buffer_small",
			Severity: LintWarn,
			Message:  "dispatch buffer under 256 records drops or blocks on modest write bursts",
		})
	}

	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		ws = append(ws, LintWarning{
			Code:     "latency_without_metrics",
			Severity: LintHigh,
			Message:  "latency histograms are enabled but metrics are disabled, so they are never recorded",
		})
	}

	return ws
}
