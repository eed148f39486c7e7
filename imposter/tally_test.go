package imposter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imposterbox/server/imposter"
)

func TestTallyRanking(t *testing.T) {
	votes := map[string]string{
		"Ann":  "Bob",
		"Bob":  "Cara",
		"Cara": "Bob",
		"Dee":  "Bob",
	}
	result := imposter.Tally(votes, []string{"Ann", "Bob", "Cara", "Dee"})

	require.Equal(t, []imposter.VoteCount{
		{Name: "Bob", Count: 3},
		{Name: "Cara", Count: 1},
		{Name: "Ann", Count: 0},
		{Name: "Dee", Count: 0},
	}, result.Ranked)
	assert.Equal(t, 3, result.MaxVotes)
	assert.Equal(t, []string{"Bob"}, result.TiedLeaders)
	assert.False(t, result.Tie())
}

func TestTallyIdempotent(t *testing.T) {
	votes := map[string]string{"Ann": "Bob", "Bob": "Ann", "Cara": "Bob"}
	candidates := []string{"Ann", "Bob", "Cara"}

	first := imposter.Tally(votes, candidates)
	second := imposter.Tally(votes, candidates)
	require.Equal(t, first, second)
}

func TestTallyTie(t *testing.T) {
	// A:2 B:2 C:1 => tied leaders are A and B.
	votes := map[string]string{
		"A": "B",
		"B": "A",
		"C": "A",
		"D": "B",
		"E": "C",
	}
	result := imposter.Tally(votes, []string{"A", "B", "C", "D", "E"})

	assert.Equal(t, 2, result.MaxVotes)
	assert.True(t, result.Tie())
	assert.Equal(t, []string{"A", "B"}, result.TiedLeaders)
}

func TestTallyNoVotes(t *testing.T) {
	result := imposter.Tally(map[string]string{}, []string{"Ann", "Bob"})

	assert.Equal(t, 0, result.MaxVotes)
	assert.Empty(t, result.TiedLeaders)
	assert.False(t, result.Tie())
	require.Len(t, result.Ranked, 2)
}

func TestTallyIgnoresOutsideVotes(t *testing.T) {
	// Votes for someone outside the candidate set (eliminated or gone)
	// must not count.
	votes := map[string]string{"Ann": "Zed", "Bob": "Ann"}
	result := imposter.Tally(votes, []string{"Ann", "Bob"})

	require.Equal(t, []imposter.VoteCount{
		{Name: "Ann", Count: 1},
		{Name: "Bob", Count: 0},
	}, result.Ranked)
}

func TestTallyEmptyCandidates(t *testing.T) {
	result := imposter.Tally(map[string]string{"Ann": "Bob"}, nil)
	assert.Empty(t, result.Ranked)
	assert.Equal(t, 0, result.MaxVotes)
}
