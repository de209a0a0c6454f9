package source

import (
	"context"

	"github.com/iWorld-y/alert_me/internal/model"
)

// Source 配置源：提供 term、国家、排除站点与轮转状态，并接收新的轮转状态
type Source interface {
	Load(ctx context.Context) (*model.Inputs, error)
	SaveState(ctx context.Context, state model.RotationState) error
}

// StateStore 单独存放轮转状态的存储
type StateStore interface {
	LoadState(ctx context.Context) (model.RotationState, error)
	SaveState(ctx context.Context, state model.RotationState) error
}

type splitSource struct {
	inputs Source
	state  StateStore
}

// WithStateStore 输入仍从 src 读取，轮转状态改由 store 读写
func WithStateStore(src Source, store StateStore) Source {
	return &splitSource{inputs: src, state: store}
}

func (s *splitSource) Load(ctx context.Context) (*model.Inputs, error) {
	in, err := s.inputs.Load(ctx)
	if err != nil {
		return nil, err
	}
	state, err := s.state.LoadState(ctx)
	if err != nil {
		return nil, err
	}
	in.State = state
	return in, nil
}

func (s *splitSource) SaveState(ctx context.Context, state model.RotationState) error {
	return s.state.SaveState(ctx, state)
}
