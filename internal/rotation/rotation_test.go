package rotation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/alert_me/internal/model"
)

func TestNewPlan_TwoGroups(t *testing.T) {
	countries := []string{"US", "UK", "FR", "DE"}

	p0, err := NewPlan(model.RotationState{GroupCount: 2, CurrentGroup: 0, ResultOffset: 4}, countries, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"US", "UK"}, p0.Countries)
	assert.Equal(t, 4, p0.Offset)
	assert.Equal(t, model.RotationState{GroupCount: 2, CurrentGroup: 1, ResultOffset: 4}, p0.Next)
	assert.Empty(t, p0.Dropped)

	p1, err := NewPlan(p0.Next, countries, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"FR", "DE"}, p1.Countries)
	assert.Equal(t, model.RotationState{GroupCount: 2, CurrentGroup: 0, ResultOffset: 6}, p1.Next)
}

func TestNewPlan_SingleGroupAdvancesEveryRun(t *testing.T) {
	countries := []string{"US", "UK", "FR"}
	state := model.RotationState{GroupCount: 1}

	for run := 1; run <= 3; run++ {
		p, err := NewPlan(state, countries, 2)
		require.NoError(t, err)
		assert.Equal(t, countries, p.Countries)
		state = p.Next
		assert.Equal(t, 0, state.CurrentGroup)
		assert.Equal(t, run*2, state.ResultOffset)
	}
}

func TestNewPlan_RemainderDropped(t *testing.T) {
	countries := []string{"US", "UK", "FR", "DE", "JP"}

	p, err := NewPlan(model.RotationState{GroupCount: 2, CurrentGroup: 1}, countries, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"FR", "DE"}, p.Countries)
	assert.Equal(t, []string{"JP"}, p.Dropped)
}

func TestNewPlan_FewerCountriesThanGroups(t *testing.T) {
	p, err := NewPlan(model.RotationState{GroupCount: 3, CurrentGroup: 2}, []string{"US", "UK"}, 2)
	require.NoError(t, err)
	assert.Empty(t, p.Countries)
	assert.Equal(t, []string{"US", "UK"}, p.Dropped)
}

func TestNewPlan_InvalidState(t *testing.T) {
	tests := []struct {
		name     string
		state    model.RotationState
		pageSize int
	}{
		{"zero groups", model.RotationState{GroupCount: 0}, 2},
		{"negative groups", model.RotationState{GroupCount: -1}, 2},
		{"group too large", model.RotationState{GroupCount: 2, CurrentGroup: 2}, 2},
		{"negative group", model.RotationState{GroupCount: 2, CurrentGroup: -1}, 2},
		{"negative offset", model.RotationState{GroupCount: 2, ResultOffset: -1}, 2},
		{"zero page size", model.RotationState{GroupCount: 2}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPlan(tt.state, []string{"US", "UK"}, tt.pageSize)
			var cfgErr *model.ConfigError
			assert.True(t, errors.As(err, &cfgErr), "want ConfigError, got %v", err)
		})
	}
}

// 所有分组的并集只包含 < G*floor(N/G) 的下标
func TestGroup_UnionCoversOnlyFullChunks(t *testing.T) {
	for n := 0; n <= 12; n++ {
		countries := make([]string, n)
		index := make(map[string]int, n)
		for i := range countries {
			countries[i] = fmt.Sprintf("c%d", i)
			index[countries[i]] = i
		}

		for g := 1; g <= 5; g++ {
			limit := g * (n / g)
			seen := make(map[int]bool)
			for group := 0; group < g; group++ {
				for _, c := range Group(countries, g, group) {
					i := index[c]
					assert.Less(t, i, limit, "n=%d g=%d", n, g)
					assert.False(t, seen[i], "index %d selected twice (n=%d g=%d)", i, n, g)
					seen[i] = true
				}
			}
			assert.Len(t, seen, limit, "n=%d g=%d", n, g)
		}
	}
}

// 从第 0 组出发，G 次推进后回到第 0 组，偏移只前进一次
func TestAdvance_FullCycle(t *testing.T) {
	for g := 1; g <= 6; g++ {
		state := model.RotationState{GroupCount: g, CurrentGroup: 0, ResultOffset: 10}
		for i := 0; i < g; i++ {
			state = Advance(state, 3)
		}
		assert.Equal(t, model.RotationState{GroupCount: g, CurrentGroup: 0, ResultOffset: 13}, state, "g=%d", g)
	}
}
