package ratings

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hourbot/hourbot/store"
)

func TestRoleplayScorePattern(t *testing.T) {
	accepted := map[string]string{
		"+1":                  "+1",
		"-1":                  "-1",
		"+1 LUL":              "+1",
		"great roleplay +1":   "+1",
		"-1, not feeling it":  "-1",
		"that deserves a +1!": "+1",
	}
	for comment, score := range accepted {
		match := roleplayScorePattern.FindStringSubmatch(comment)
		require.NotNil(t, match, comment)
		require.Equal(t, score, match[1], comment)
	}

	rejected := []string{
		"+2",
		"1",
		"a+1",
		"+10",
		"5/10",
	}
	for _, comment := range rejected {
		require.Nil(t, roleplayScorePattern.FindStringSubmatch(comment), comment)
	}
}

func TestRoleplayMapper(t *testing.T) {
	totals, err := store.New(filepath.Join(t.TempDir(), "totals.db"))
	require.NoError(t, err)
	defer totals.Close()

	tally := NewRoleplayTallyWithDefaults("#hasanabi", totals)
	mapper := tally.mapper("hourbot")

	counter, ok := mapper(roomMessage("#hasanabi", "chatter", "+1"))
	require.True(t, ok)
	require.Equal(t, Counter{Value: 1, Count: 1}, counter)

	counter, ok = mapper(roomMessage("#hasanabi", "chatter", "awful decision -1"))
	require.True(t, ok)
	require.Equal(t, Counter{Value: -1, Count: 1}, counter)

	_, ok = mapper(roomMessage("#hasanabi", "chatter", "plus one"))
	require.False(t, ok)

	_, ok = mapper(roomMessage("#other", "chatter", "+1"))
	require.False(t, ok)

	_, ok = mapper(roomMessage("#hasanabi", "hourbot", "+1"))
	require.False(t, ok)
}
