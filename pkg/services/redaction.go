package services

import (
	"cmp"
	"regexp"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/spectral-records/casekeeper/pkg/metrics"
	"github.com/spectral-records/casekeeper/pkg/models"
)

// RedactionEngine scrubs sensitive terms from text shown to unprivileged viewers.
// It holds no per-call state and is safe for concurrent use.
type RedactionEngine interface {
	// Redact replaces every configured global keyword and every term in extraTerms
	// with the placeholder, longest term first, case-insensitively.
	// Privileged viewers get text back unchanged.
	Redact(text string, extraTerms mapset.Set[string], viewerIsPrivileged bool) string

	// RedactAll redacts each text with the same term set.
	RedactAll(texts []string, extraTerms mapset.Set[string], viewerIsPrivileged bool) []string

	// Placeholder returns the replacement string.
	Placeholder() string
}

type redactionEngine struct {
	globalKeywords mapset.Set[string]
	placeholder    string
}

// NewRedactionEngine creates a RedactionEngine from normalized settings.
func NewRedactionEngine(settings models.RedactionSettings) RedactionEngine {
	settings = settings.Normalize()
	return &redactionEngine{
		globalKeywords: mapset.NewThreadUnsafeSet(settings.GlobalKeywords...),
		placeholder:    settings.Placeholder,
	}
}

var _ RedactionEngine = (*redactionEngine)(nil)

func (e *redactionEngine) Placeholder() string {
	return e.placeholder
}

func (e *redactionEngine) Redact(text string, extraTerms mapset.Set[string], viewerIsPrivileged bool) string {
	if text == "" {
		return text
	}
	if viewerIsPrivileged {
		metrics.RedactionsApplied.WithLabelValues(metrics.RedactionSkippedPrivileged).Inc()
		return text
	}

	patterns := e.compile(extraTerms)
	if len(patterns) == 0 {
		metrics.RedactionsApplied.WithLabelValues(metrics.RedactionSkippedNoTerms).Inc()
		return text
	}

	metrics.RedactionsApplied.WithLabelValues(metrics.RedactionApplied).Inc()
	return e.apply(text, patterns)
}

func (e *redactionEngine) RedactAll(texts []string, extraTerms mapset.Set[string], viewerIsPrivileged bool) []string {
	out := slices.Clone(texts)
	if viewerIsPrivileged || len(out) == 0 {
		return out
	}

	patterns := e.compile(extraTerms)
	if len(patterns) == 0 {
		return out
	}

	for i, text := range out {
		if text != "" {
			out[i] = e.apply(text, patterns)
		}
	}
	return out
}

func (e *redactionEngine) apply(text string, patterns []*regexp.Regexp) string {
	// Literal replacement: "$" in a placeholder must not expand as a group reference.
	for _, re := range patterns {
		text = re.ReplaceAllLiteralString(text, e.placeholder)
	}
	return text
}

// compile merges the global keywords with extraTerms and returns one
// case-insensitive literal matcher per term, longest first.
func (e *redactionEngine) compile(extraTerms mapset.Set[string]) []*regexp.Regexp {
	terms := orderedTerms(e.globalKeywords, extraTerms)

	patterns := make([]*regexp.Regexp, 0, len(terms))
	for _, term := range terms {
		patterns = append(patterns, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(term)))
	}
	return patterns
}

// orderedTerms returns the trimmed, non-empty union of the sets sorted by
// descending length, ties broken lexically so output is deterministic.
func orderedTerms(sets ...mapset.Set[string]) []string {
	merged := mapset.NewThreadUnsafeSet[string]()
	for _, set := range sets {
		if set == nil {
			continue
		}
		for _, term := range set.ToSlice() {
			if term = strings.TrimSpace(term); term != "" {
				merged.Add(term)
			}
		}
	}

	terms := merged.ToSlice()
	slices.SortFunc(terms, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return terms
}
