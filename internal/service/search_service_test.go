package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordMatcher(t *testing.T) {
	matcher, err := wordMatcher("train")
	require.NoError(t, err)

	assert.True(t, matcher.MatchString("I train every day"))
	assert.True(t, matcher.MatchString("Train hard"))
	assert.True(t, matcher.MatchString("we TRAIN at dawn"))
	assert.True(t, matcher.MatchString("train."))

	// Substrings inside longer words do not count as hits
	assert.False(t, matcher.MatchString("training plan"))
	assert.False(t, matcher.MatchString("restraint"))
}

func TestWordMatcher_QuotesMetacharacters(t *testing.T) {
	matcher, err := wordMatcher("5.10a")
	require.NoError(t, err)

	assert.True(t, matcher.MatchString("sent my first 5.10a today"))
	// The dot is literal, not a wildcard
	assert.False(t, matcher.MatchString("sent my first 5x10a today"))
}

func TestSnippet(t *testing.T) {
	matcher, err := wordMatcher("marathon")
	require.NoError(t, err)

	t.Run("short text returned whole", func(t *testing.T) {
		out := snippet("my first marathon next week", matcher)
		assert.Equal(t, "my first marathon next week", out)
	})

	t.Run("long text windowed around the hit", func(t *testing.T) {
		text := strings.Repeat("a", 200) + " marathon " + strings.Repeat("b", 200)
		out := snippet(text, matcher)

		assert.Contains(t, out, "marathon")
		assert.True(t, strings.HasPrefix(out, "…"))
		assert.True(t, strings.HasSuffix(out, "…"))
		assert.Less(t, len([]rune(out)), len([]rune(text)))
	})

	t.Run("hit at the start keeps the head", func(t *testing.T) {
		text := "marathon " + strings.Repeat("b", 200)
		out := snippet(text, matcher)

		assert.True(t, strings.HasPrefix(out, "marathon"))
		assert.True(t, strings.HasSuffix(out, "…"))
	})
}
