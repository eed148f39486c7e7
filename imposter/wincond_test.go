package imposter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/imposterbox/server/imposter"
)

func TestEvaluateWin(t *testing.T) {
	tests := []struct {
		name   string
		active []imposter.RolePlayer
		want   imposter.Verdict
	}{
		{
			name: "all_imposters_gone",
			active: []imposter.RolePlayer{
				{Name: "Ann"},
				{Name: "Bob"},
			},
			want: imposter.PeopleWin,
		},
		{
			name:   "nobody_left",
			active: nil,
			want:   imposter.PeopleWin,
		},
		{
			name: "one_normal_left",
			active: []imposter.RolePlayer{
				{Name: "Ann"},
				{Name: "Bob", IsImposter: true},
			},
			want: imposter.ImpostersWin,
		},
		{
			name: "imposters_outnumber",
			active: []imposter.RolePlayer{
				{Name: "Ann"},
				{Name: "Bob"},
				{Name: "Cara", IsImposter: true},
				{Name: "Dee", IsImposter: true},
				{Name: "Eve", IsImposter: true},
			},
			want: imposter.ImpostersWin,
		},
		{
			name: "game_continues",
			active: []imposter.RolePlayer{
				{Name: "Ann"},
				{Name: "Bob"},
				{Name: "Cara", IsImposter: true},
			},
			want: imposter.NoVerdict,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, imposter.EvaluateWin(tc.active))
		})
	}
}
