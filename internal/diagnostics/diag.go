package diagnostics

import "github.com/rs/zerolog"

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

// Codes raised by the adapters.
const (
	ControlBad    = "CONTROL.BAD"
	InputDropped  = "INPUT.DROPPED"
	SelectInvalid = "SELECT.INVALID"
	LEDFallback   = "LED.FALLBACK"
	LEDWrite      = "LED.WRITE"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// Log writes d to l at the level matching its severity.
func (d Diagnostic) Log(l zerolog.Logger) {
	var ev *zerolog.Event
	switch d.Severity {
	case Err:
		ev = l.Error()
	case Warn:
		ev = l.Warn()
	default:
		ev = l.Info()
	}
	ev = ev.Str("code", d.Code)
	if d.Detail != "" {
		ev = ev.Str("detail", d.Detail)
	}
	if len(d.Evidence) > 0 {
		ev = ev.Interface("evidence", d.Evidence)
	}
	ev.Msg(d.Summary)
}
