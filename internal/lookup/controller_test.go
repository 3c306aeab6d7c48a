// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lookup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/report-card/internal/records"
	"github.com/pdiddy/report-card/pkg/types"
)

// stubFetcher answers from a map; queries listed in gates block until
// their channel is closed.
type stubFetcher struct {
	mu      sync.Mutex
	answers map[string][]types.SubjectRecord
	gates   map[string]chan struct{}
	calls   []string
}

func (f *stubFetcher) Fetch(ctx context.Context, regNo string) ([]types.SubjectRecord, error) {
	f.mu.Lock()
	f.calls = append(f.calls, regNo)
	gate := f.gates[regNo]
	recs, ok := f.answers[regNo]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if !ok {
		return nil, fmt.Errorf("%w: record service returned HTTP 404", records.ErrLookupFailed)
	}
	return recs, nil
}

func newStub() *stubFetcher {
	return &stubFetcher{
		answers: map[string][]types.SubjectRecord{
			"HIGH": {subject("CS101", "O", "4"), subject("MA101", "E", "4")},
			"LOW":  {subject("CS101", "A", "3"), subject("MA101", "B", "3")},
			"NONE": {},
		},
		gates: map[string]chan struct{}{},
	}
}

func TestControllerSuccessAndFailure(t *testing.T) {
	c := NewController(newStub(), testOpts())
	defer c.Close()

	s, applied, err := c.Submit(context.Background(), "LOW")
	require.True(t, applied)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, s.Outcome)
	assert.Len(t, s.Records, 2)
	assert.Equal(t, 7.5, s.CGPA)
	assert.False(t, s.BannerVisible(c.Now()), "7.5 does not qualify for the banner")

	s, _, err = c.Submit(context.Background(), "MISSING")
	require.Error(t, err)
	assert.True(t, errors.Is(err, records.ErrLookupFailed))
	assert.Equal(t, records.UserMessage, s.Error)
	assert.False(t, s.HasRecords())
	assert.Equal(t, s, c.Snapshot())
}

func TestControllerEmptyResponse(t *testing.T) {
	c := NewController(newStub(), testOpts())
	defer c.Close()

	s, _, err := c.Submit(context.Background(), "NONE")
	require.NoError(t, err)
	assert.Zero(t, s.CGPA)
	assert.Empty(t, s.Error)
	assert.Empty(t, s.StudentName)
	assert.False(t, s.HasRecords())
}

func TestControllerBannerExpires(t *testing.T) {
	opts := Options{BannerThreshold: 8, BannerDuration: 50 * time.Millisecond}
	c := NewController(newStub(), opts)
	defer c.Close()

	var mu sync.Mutex
	var seen []State
	c.OnChange(func(s State) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s)
	})

	s, _, err := c.Submit(context.Background(), "HIGH")
	require.NoError(t, err)
	assert.True(t, s.BannerVisible(c.Now()))

	assert.Eventually(t, func() bool {
		return c.Snapshot().BannerUntil.IsZero()
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	// submitted, succeeded, banner expired
	require.Len(t, seen, 3)
	assert.Equal(t, PhaseSubmitted, seen[0].Phase)
	assert.False(t, seen[1].BannerUntil.IsZero())
	assert.True(t, seen[2].BannerUntil.IsZero())
}

func TestControllerBannerRestartUsesOneTimer(t *testing.T) {
	opts := Options{BannerThreshold: 8, BannerDuration: 150 * time.Millisecond}
	c := NewController(newStub(), opts)
	defer c.Close()

	_, _, err := c.Submit(context.Background(), "HIGH")
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)
	s, _, err := c.Submit(context.Background(), "HIGH")
	require.NoError(t, err)

	// The first deadline has passed but the restarted one has not.
	time.Sleep(75 * time.Millisecond)
	assert.Equal(t, s.BannerUntil, c.Snapshot().BannerUntil)

	assert.Eventually(t, func() bool {
		return c.Snapshot().BannerUntil.IsZero()
	}, time.Second, 5*time.Millisecond)
}

func TestControllerCloseStopsBannerTimer(t *testing.T) {
	opts := Options{BannerThreshold: 8, BannerDuration: 20 * time.Millisecond}
	c := NewController(newStub(), opts)

	var mu sync.Mutex
	changes := 0
	c.OnChange(func(State) {
		mu.Lock()
		changes++
		mu.Unlock()
	})

	_, _, err := c.Submit(context.Background(), "HIGH")
	require.NoError(t, err)
	c.Close()

	time.Sleep(60 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, changes, "no banner expiry after Close")
	assert.False(t, c.Snapshot().BannerUntil.IsZero())
}

func TestControllerDropsStaleResponse(t *testing.T) {
	f := newStub()
	slow := make(chan struct{})
	f.gates["LOW"] = slow
	c := NewController(f, testOpts())
	defer c.Close()

	done := make(chan State)
	staleApplied := make(chan bool, 1)
	go func() {
		s, applied, _ := c.Submit(context.Background(), "LOW")
		staleApplied <- applied
		done <- s
	}()

	assert.Eventually(t, func() bool {
		return c.Snapshot().Seq == 1
	}, time.Second, time.Millisecond)

	latest, applied, err := c.Submit(context.Background(), "HIGH")
	require.True(t, applied)
	require.NoError(t, err)
	assert.Equal(t, 9.5, latest.CGPA)

	close(slow)
	assert.False(t, <-staleApplied)
	stale := <-done
	assert.Equal(t, uint64(2), stale.Seq)
	assert.Equal(t, 9.5, stale.CGPA, "the slow first response must not overwrite the second")
	assert.Equal(t, 9.5, c.Snapshot().CGPA)
	assert.Equal(t, "HIGH", c.Snapshot().Query)
}
