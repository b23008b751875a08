package services

import (
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"

	"github.com/spectral-records/casekeeper/pkg/models"
)

func newTestEngine(globals ...string) RedactionEngine {
	return NewRedactionEngine(models.RedactionSettings{GlobalKeywords: globals, Placeholder: "[X]"})
}

func TestRedactionEngine_EmptyInputs(t *testing.T) {
	engine := newTestEngine()

	assert.Equal(t, "", engine.Redact("", mapset.NewSet("Jane"), false))
	assert.Equal(t, "Jane was here", engine.Redact("Jane was here", mapset.NewSet[string](), false))
	assert.Equal(t, "Jane was here", engine.Redact("Jane was here", nil, false))
}

func TestRedactionEngine_PrivilegeBypass(t *testing.T) {
	engine := newTestEngine("Ouija")
	text := "Jane used the Ouija board"

	assert.Equal(t, text, engine.Redact(text, mapset.NewSet("Jane"), true))
}

func TestRedactionEngine_LongestMatchFirst(t *testing.T) {
	engine := newTestEngine()

	got := engine.Redact("Jane Doe called Jane", mapset.NewSet("Jane", "Jane Doe"), false)
	assert.Equal(t, "[X] called [X]", got)
}

func TestRedactionEngine_CaseInsensitive(t *testing.T) {
	engine := newTestEngine()

	assert.Equal(t, "[X] was seen", engine.Redact("JANE was seen", mapset.NewSet("jane"), false))
	assert.Equal(t, "[X] and [X]", engine.Redact("jane and JaNe", mapset.NewSet("Jane"), false))
}

func TestRedactionEngine_LiteralMatching(t *testing.T) {
	engine := newTestEngine()

	tests := []struct {
		name string
		text string
		term string
		want string
	}{
		{"dot is literal", "call 555.0100 or 5550100", "555.0100", "call [X] or 5550100"},
		{"parens", "Smith (née Jones) testified", "(née Jones)", "Smith [X] testified"},
		{"plus and star", "a+b* and ab", "a+b*", "[X] and ab"},
		{"email", "mail ann@example.com now", "ann@example.com", "mail [X] now"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.Redact(tt.text, mapset.NewSet(tt.term), false))
		})
	}
}

func TestRedactionEngine_GlobalKeywordsMerged(t *testing.T) {
	engine := newTestEngine("Blackwood Manor", "  ")

	got := engine.Redact("Ann Lee visited Blackwood Manor", mapset.NewSet("Ann Lee", " ", ""), false)
	assert.Equal(t, "[X] visited [X]", got)

	// Globals apply even without per-case terms.
	assert.Equal(t, "the [X] cellar", engine.Redact("the blackwood manor cellar", nil, false))
}

func TestRedactionEngine_TermsAreTrimmed(t *testing.T) {
	engine := newTestEngine()

	assert.Equal(t, "met [X] today", engine.Redact("met Ann today", mapset.NewSet("  Ann  "), false))
}

func TestRedactionEngine_DefaultPlaceholder(t *testing.T) {
	engine := NewRedactionEngine(models.RedactionSettings{})

	assert.Equal(t, models.DefaultRedactionPlaceholder, engine.Placeholder())
	assert.Equal(t,
		"[REDACTED] reported a cold spot near the stairs.",
		engine.Redact("Ann Lee reported a cold spot near the stairs.", mapset.NewSet("Ann", "Lee", "Ann Lee"), false))
}

func TestRedactionEngine_DollarPlaceholderIsLiteral(t *testing.T) {
	engine := NewRedactionEngine(models.RedactionSettings{Placeholder: "$1"})

	assert.Equal(t, "$1 left", engine.Redact("Ann left", mapset.NewSet("Ann"), false))
}

func TestRedactionEngine_RedactAll(t *testing.T) {
	engine := newTestEngine()
	terms := mapset.NewSet("Bob Smith", "Bob", "Smith")
	texts := []string{"Bob Smith", "", "Mr Smith said hi", "nothing here"}

	got := engine.RedactAll(texts, terms, false)
	assert.Equal(t, []string{"[X]", "", "Mr [X] said hi", "nothing here"}, got)
	assert.Equal(t, "Bob Smith", texts[0], "input slice is not modified")

	assert.Equal(t, texts, engine.RedactAll(texts, terms, true))
	assert.Empty(t, engine.RedactAll(nil, terms, false))
}

func TestOrderedTerms(t *testing.T) {
	got := orderedTerms(mapset.NewSet("bb", "a", "ccc"), mapset.NewSet("aa", " bb ", ""), nil)
	assert.Equal(t, []string{"ccc", "aa", "bb", "a"}, got)
}
