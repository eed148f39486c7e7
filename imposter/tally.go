package imposter

import "sort"

// VoteCount is one row of a ranked tally.
type VoteCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TallyResult is the outcome of counting one round of votes.
type TallyResult struct {
	Ranked      []VoteCount // count descending, name ascending on equal counts
	MaxVotes    int
	TiedLeaders []string // every candidate sitting at MaxVotes
}

// Tie reports whether more than one candidate holds the top count.
func (t TallyResult) Tie() bool {
	return len(t.TiedLeaders) > 1
}

// Tally counts votes against the given candidate set. Every candidate gets
// a row, including zero-vote ones; votes for names outside the candidate
// set are ignored. MaxVotes of zero means nobody should be eliminated.
func Tally(votes map[string]string, candidates []string) TallyResult {
	counts := make(map[string]int, len(candidates))
	for _, name := range candidates {
		counts[name] = 0
	}
	for _, target := range votes {
		if _, ok := counts[target]; ok {
			counts[target]++
		}
	}

	ranked := make([]VoteCount, 0, len(counts))
	for name, count := range counts {
		ranked = append(ranked, VoteCount{Name: name, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Name < ranked[j].Name
	})

	result := TallyResult{Ranked: ranked}
	if len(ranked) == 0 {
		return result
	}

	result.MaxVotes = ranked[0].Count
	if result.MaxVotes == 0 {
		return result
	}
	for _, row := range ranked {
		if row.Count == result.MaxVotes {
			result.TiedLeaders = append(result.TiedLeaders, row.Name)
		}
	}

	return result
}
