package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_AddInvalidSpec(t *testing.T) {
	t.Parallel()

	s := New(time.UTC)

	err := s.Add("not a spec", "broken", func(context.Context) {})

	assert.Error(t, err)
}

func TestScheduler_Next(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("CST", 8*60*60)
	s := New(loc)
	require.NoError(t, s.Add("30 15 * * *", "daily", func(context.Context) {}))
	require.NoError(t, s.Add("0 2 * * *", "solar", func(context.Context) {}))

	assert.True(t, s.Next().IsZero(), "entries have no next time before Start")

	s.Start()
	defer s.Stop(context.Background())

	next := s.Next().In(loc)
	require.False(t, next.IsZero())
	assert.True(t, (next.Hour() == 15 && next.Minute() == 30) || (next.Hour() == 2 && next.Minute() == 0))
	assert.True(t, next.After(time.Now()))
}

func TestScheduler_StopCancelsJobContext(t *testing.T) {
	t.Parallel()

	s := New(time.UTC)
	started := make(chan struct{})
	cancelled := make(chan struct{})
	require.NoError(t, s.Add("@every 1s", "long", func(ctx context.Context) {
		select {
		case started <- struct{}{}:
		default:
			return
		}
		<-ctx.Done()
		close(cancelled)
	}))

	s.Start()
	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("job was not triggered")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.Stop(ctx)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("job context was not cancelled")
	}
}
