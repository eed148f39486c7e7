package imposter

import "math/rand/v2"

// ImposterCount returns how many imposters a game with n participants gets.
// A valid override (0 < override < n) takes precedence over the auto rule.
func ImposterCount(n, override int) int {
	if override > 0 && override < n {
		return override
	}
	switch {
	case n <= 9:
		return 1
	case n <= 12:
		return 2
	default:
		return 3
	}
}

// Roles is a partition of participants into imposters and normals.
type Roles struct {
	Imposters map[string]bool
	Normals   map[string]bool
}

// AssignRoles partitions the given participants uniformly at random.
// The input slice is not modified.
func AssignRoles(names []string, override int) Roles {
	count := ImposterCount(len(names), override)

	shuffled := make([]string, len(names))
	copy(shuffled, names)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rand.IntN(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	roles := Roles{
		Imposters: make(map[string]bool, count),
		Normals:   make(map[string]bool, len(names)-count),
	}
	for i, name := range shuffled {
		if i < count {
			roles.Imposters[name] = true
		} else {
			roles.Normals[name] = true
		}
	}

	return roles
}
