package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merit/internal/domain"
	"merit/internal/models"
	"merit/internal/repository"
)

var defaultThresholds = models.IntegrityThresholds{
	SimilarityMax:           0.80,
	TemplateMinMatches:      3,
	TemplateShortWordCount:  30,
	TemplateShortMinMatches: 2,
	TemplateUniqueRatio:     0.6,
	DedupWindowDays:         7,
}

func TestCanonicalize(t *testing.T) {
	assert.Equal(t, "hello world", Canonicalize("  Hello,   WORLD!! "))
	assert.Equal(t, "a b c", Canonicalize("a-b-c"))
	assert.Equal(t, "", Canonicalize("!!! ... ???"))
}

func TestContentHashStable(t *testing.T) {
	a := ContentHash(Canonicalize("Today I practiced breathing."))
	b := ContentHash(Canonicalize("today i practiced   breathing"))
	assert.Equal(t, a, b, "canonicalization must make hashing punctuation-insensitive")
	assert.Len(t, a, 64)
}

func TestJaccardSimilarity(t *testing.T) {
	a := []string{"one", "two", "three", "four"}
	b := []string{"one", "two", "three", "five"}
	assert.InDelta(t, 3.0/5.0, JaccardSimilarity(a, b), 1e-9)
	assert.Equal(t, 1.0, JaccardSimilarity(a, a))
	assert.Equal(t, 0.0, JaccardSimilarity(a, nil))
}

func TestCheckIntegrity_TooShort(t *testing.T) {
	res := CheckIntegrity("short text", 50, defaultThresholds, nil)
	require.False(t, res.OK)
	assert.Equal(t, domain.ReasonTooShort, res.Reason)
}

func TestCheckIntegrity_ExactDuplicate(t *testing.T) {
	text := "Today I sat quietly for twenty minutes and noticed how my thoughts kept pulling me toward tomorrow instead of now."
	first := CheckIntegrity(text, 50, defaultThresholds, nil)
	require.True(t, first.OK)

	recent := []repository.ContentFingerprint{{Hash: first.ContentHash, Words: first.UniqueWords}}
	second := CheckIntegrity(text, 50, defaultThresholds, recent)
	require.False(t, second.OK)
	assert.Equal(t, domain.ReasonDuplicateContent, second.Reason)
}

func TestCheckIntegrity_NearDuplicate(t *testing.T) {
	orig := "morning practice helped calm anxious feelings before work deadlines arrived today"
	// Same word set with one word swapped: Jaccard 10/12 ~= 0.83 > 0.80.
	reworded := "today arrived deadlines work before feelings anxious calm helped evening practice"

	first := CheckIntegrity(orig, 20, defaultThresholds, nil)
	require.True(t, first.OK)

	recent := []repository.ContentFingerprint{{Hash: first.ContentHash, Words: first.UniqueWords}}
	second := CheckIntegrity(reworded, 20, defaultThresholds, recent)
	require.False(t, second.OK)
	assert.Equal(t, domain.ReasonSimilarContent, second.Reason)
}

func TestCheckIntegrity_TemplateShortRepetitive(t *testing.T) {
	// <30 words, two boilerplate phrases, heavy repetition.
	text := "I am blessed. Thank you universe. I am blessed. Thank you universe. I am blessed."
	res := CheckIntegrity(text, 30, defaultThresholds, nil)
	require.False(t, res.OK)
	assert.Equal(t, domain.ReasonTemplateContent, res.Reason)
}

func TestCheckIntegrity_LongVariedTextWithOnePhrasePasses(t *testing.T) {
	text := "This evening after closing my laptop I walked along the river and thought about the argument " +
		"with my brother last weekend. I realized I kept defending a position I no longer believe in, " +
		"mostly out of stubbornness. Writing it down makes it easier to see. I am blessed to have " +
		"people patient enough to wait for me to figure this out, and tomorrow I want to call him and say so."
	res := CheckIntegrity(text, 50, defaultThresholds, nil)
	assert.True(t, res.OK, "one incidental boilerplate phrase in long varied text must not reject")
}

func TestIsGreeting(t *testing.T) {
	assert.True(t, IsGreeting("Hello!"))
	assert.True(t, IsGreeting("thank you"))
	assert.True(t, IsGreeting("   "))
	assert.False(t, IsGreeting("Hello, today I want to describe the long walk I took through the old quarter"))
}
