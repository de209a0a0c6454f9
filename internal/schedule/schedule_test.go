package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for _, spec := range []string{"0 8 * * MON", "@weekly", "@every 1h"} {
		_, err := Parse(spec)
		assert.NoError(t, err, spec)
	}

	_, err := Parse("0 8 * *")
	assert.Error(t, err)
}

func TestParse_NextInLocation(t *testing.T) {
	s, err := Parse("0 8 * * MON")
	require.NoError(t, err)

	// 2026-03-04 是周三
	from := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	want := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)
	got := s.Next(from)
	assert.True(t, want.Equal(got), "got %s", got)
}

func TestLocation(t *testing.T) {
	loc, err := Location("")
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = Location("UTC")
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	_, err = Location("Not/AZone")
	assert.Error(t, err)
}

func TestRun_InvalidSpec(t *testing.T) {
	err := Run(context.Background(), "bad", "UTC", func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestRun_ExecutesUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ran := make(chan struct{}, 10)

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, "@every 1s", "UTC", func(context.Context) error {
			ran <- struct{}{}
			return errors.New("logged, not fatal")
		})
	}()

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run")
	}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
