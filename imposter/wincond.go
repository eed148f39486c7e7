package imposter

// Verdict is the outcome of a win-condition check.
type Verdict string

const (
	NoVerdict    Verdict = ""          // game continues
	PeopleWin    Verdict = "people"    // every imposter eliminated
	ImpostersWin Verdict = "imposters" // too few people left to vote them out
)

// EvaluateWin decides the game over the currently active (non-host,
// non-eliminated) players. It must be re-run after every elimination and
// after every disconnect that removes an active player.
func EvaluateWin(active []RolePlayer) Verdict {
	imposters, normals := 0, 0
	for _, p := range active {
		if p.IsImposter {
			imposters++
		} else {
			normals++
		}
	}

	if imposters == 0 {
		return PeopleWin
	}
	// With a single normal left the next round cannot exonerate anyone.
	if normals <= 1 || imposters > normals {
		return ImpostersWin
	}
	return NoVerdict
}
