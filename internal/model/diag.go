package model

import "fmt"

// Diagnostic severities.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Diagnostic is one structured finding from a translation pass.
// Codes group by family: FMT detection, MIG migration, CAT catalogs,
// GEO geometry, SYS systems, EXP export, VAL validation.
type Diagnostic struct {
	Level   string `json:"level"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Source  string `json:"source,omitempty"`
}

func (d Diagnostic) String() string {
	if d.Source != "" {
		return fmt.Sprintf("[%s] %s: %s (%s)", d.Level, d.Code, d.Message, d.Source)
	}
	return fmt.Sprintf("[%s] %s: %s", d.Level, d.Code, d.Message)
}

// Log is an append-only diagnostic collector.
type Log struct {
	entries []Diagnostic
}

func (l *Log) add(level, code, source, format string, args ...any) {
	l.entries = append(l.entries, Diagnostic{
		Level:   level,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Source:  source,
	})
}

// Infof records an informational finding.
func (l *Log) Infof(code, source, format string, args ...any) {
	l.add(LevelInfo, code, source, format, args...)
}

// Warnf records a warning.
func (l *Log) Warnf(code, source, format string, args ...any) {
	l.add(LevelWarning, code, source, format, args...)
}

// Errorf records an error finding. Errors do not abort translation;
// they mark the output as degraded.
func (l *Log) Errorf(code, source, format string, args ...any) {
	l.add(LevelError, code, source, format, args...)
}

// Entries returns the recorded diagnostics in order.
func (l *Log) Entries() []Diagnostic {
	return l.entries
}

// HasErrors reports whether any error-level diagnostic was recorded.
func (l *Log) HasErrors() bool {
	for _, d := range l.entries {
		if d.Level == LevelError {
			return true
		}
	}
	return false
}
