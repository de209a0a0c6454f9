// Package rotation 计算每次运行要搜索的国家分组以及下一次的轮转状态。
//
// 国家列表按 floor(N/G) 切成 G 组，每次运行只搜索其中一组；
// 轮转回到第 0 组时结果偏移前进一页，保证同一轮内不会重复抓取同一页结果。
package rotation

import "github.com/iWorld-y/alert_me/internal/model"

// Plan 一次运行的计划
type Plan struct {
	Countries []string            // 本次要搜索的国家
	Offset    int                 // 本次使用的结果偏移
	Next      model.RotationState // 运行成功后写回的状态
	Dropped   []string            // N mod G 余出的国家，任何分组都不会包含
}

// Validate 校验轮转状态
func Validate(state model.RotationState) error {
	if state.GroupCount <= 0 {
		return model.NewConfigError("group count must be positive, got %d", state.GroupCount)
	}
	if state.CurrentGroup < 0 || state.CurrentGroup >= state.GroupCount {
		return model.NewConfigError("current group %d out of range [0, %d)", state.CurrentGroup, state.GroupCount)
	}
	if state.ResultOffset < 0 {
		return model.NewConfigError("result offset must be non-negative, got %d", state.ResultOffset)
	}
	return nil
}

// Group 返回第 group 组国家，chunk = floor(N/G)
func Group(countries []string, groupCount, group int) []string {
	chunk := len(countries) / groupCount
	return countries[group*chunk : (group+1)*chunk]
}

// Advance 计算下一次的轮转状态：只有从最后一组回绕时偏移才前进 pageSize
func Advance(state model.RotationState, pageSize int) model.RotationState {
	next := model.RotationState{
		GroupCount:   state.GroupCount,
		CurrentGroup: (state.CurrentGroup + 1) % state.GroupCount,
		ResultOffset: state.ResultOffset,
	}
	if state.CurrentGroup == state.GroupCount-1 {
		next.ResultOffset += pageSize
	}
	return next
}

// NewPlan 根据当前状态和国家列表生成本次运行计划
func NewPlan(state model.RotationState, countries []string, pageSize int) (*Plan, error) {
	if err := Validate(state); err != nil {
		return nil, err
	}
	if pageSize <= 0 {
		return nil, model.NewConfigError("page size must be positive, got %d", pageSize)
	}

	chunk := len(countries) / state.GroupCount
	return &Plan{
		Countries: Group(countries, state.GroupCount, state.CurrentGroup),
		Offset:    state.ResultOffset,
		Next:      Advance(state, pageSize),
		Dropped:   countries[state.GroupCount*chunk:],
	}, nil
}
