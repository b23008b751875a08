package models

import "strings"

// Redaction defaults.
const (
	DefaultRedactionPlaceholder = "[REDACTED]"
	DefaultWitnessFetchLimit    = 100
)

// RedactionSettings is the process-wide redaction configuration.
// It is read-only to the redaction services and passed to them explicitly.
type RedactionSettings struct {
	GlobalKeywords     []string `json:"global_keywords"`
	RedactWitnessNames bool     `json:"redact_witness_names"`
	Placeholder        string   `json:"placeholder"`
	WitnessFetchLimit  int      `json:"witness_fetch_limit"`
}

// Normalize fills defaults and drops blank keywords.
func (s RedactionSettings) Normalize() RedactionSettings {
	if s.Placeholder == "" {
		s.Placeholder = DefaultRedactionPlaceholder
	}
	if s.WitnessFetchLimit <= 0 {
		s.WitnessFetchLimit = DefaultWitnessFetchLimit
	}

	keywords := make([]string, 0, len(s.GlobalKeywords))
	for _, kw := range s.GlobalKeywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	s.GlobalKeywords = keywords
	return s
}
