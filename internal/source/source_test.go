package source

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/alert_me/internal/model"
)

type fakeSource struct {
	inputs *model.Inputs
	saved  []model.RotationState
}

func (f *fakeSource) Load(context.Context) (*model.Inputs, error) {
	in := *f.inputs
	return &in, nil
}

func (f *fakeSource) SaveState(_ context.Context, s model.RotationState) error {
	f.saved = append(f.saved, s)
	return nil
}

type fakeStore struct {
	state   model.RotationState
	loadErr error
	saved   []model.RotationState
}

func (f *fakeStore) LoadState(context.Context) (model.RotationState, error) {
	return f.state, f.loadErr
}

func (f *fakeStore) SaveState(_ context.Context, s model.RotationState) error {
	f.saved = append(f.saved, s)
	return nil
}

func TestWithStateStore(t *testing.T) {
	src := &fakeSource{inputs: &model.Inputs{
		Terms:     []string{"ai"},
		Countries: []string{"US"},
		State:     model.RotationState{GroupCount: 9},
	}}
	store := &fakeStore{state: model.RotationState{GroupCount: 2, CurrentGroup: 1, ResultOffset: 4}}
	s := WithStateStore(src, store)

	in, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ai"}, in.Terms)
	assert.Equal(t, store.state, in.State)

	next := model.RotationState{GroupCount: 2, ResultOffset: 6}
	require.NoError(t, s.SaveState(context.Background(), next))
	assert.Equal(t, []model.RotationState{next}, store.saved)
	assert.Empty(t, src.saved)
}

func TestWithStateStore_LoadError(t *testing.T) {
	src := &fakeSource{inputs: &model.Inputs{}}
	s := WithStateStore(src, &fakeStore{loadErr: errors.New("db down")})

	_, err := s.Load(context.Background())
	assert.EqualError(t, err, "db down")
}
