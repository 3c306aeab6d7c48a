// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lookup

import (
	"context"
	"sync"
	"time"

	"github.com/pdiddy/report-card/internal/records"
	"github.com/pdiddy/report-card/pkg/types"
)

// Listener is called with the new state after every applied transition.
type Listener func(State)

// Controller owns one page's state. All mutation happens under its lock,
// the fetch is the only blocking step, and a single timer hides the
// banner. Close must be called on teardown to stop that timer.
type Controller struct {
	fetcher records.Fetcher
	opts    Options
	now     func() time.Time

	mu        sync.Mutex
	state     State
	timer     *time.Timer
	listeners []Listener
	closed    bool
}

// NewController returns a Controller in the initial state.
func NewController(fetcher records.Fetcher, opts Options) *Controller {
	return &Controller{
		fetcher: fetcher,
		opts:    opts,
		now:     time.Now,
		state:   Initial(),
	}
}

// OnChange registers fn to be called after each applied transition.
// Listeners run outside the controller's lock.
func (c *Controller) OnChange(fn Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Now returns the controller's clock reading, for rendering the banner.
func (c *Controller) Now() time.Time { return c.now() }

// Submit runs one lookup cycle for query and returns the state after it.
// applied reports whether this submission's response was applied. If a
// later Submit started while this one was in flight, the response is
// dropped, applied is false and the returned state reflects the newer
// submission. The returned error is the underlying fetch failure, for
// logging only; the state already carries the user-facing message.
func (c *Controller) Submit(ctx context.Context, query string) (s State, applied bool, err error) {
	c.mu.Lock()
	c.state = Submit(c.state, query)
	seq := c.state.Seq
	submitted, listeners := c.state, c.snapshotListeners()
	c.mu.Unlock()
	notify(listeners, submitted)

	recs, err := c.fetcher.Fetch(ctx, query)
	s, applied = c.resolve(seq, recs, err)
	return s, applied, err
}

// resolve applies the response to submission seq.
func (c *Controller) resolve(seq uint64, recs []types.SubjectRecord, fetchErr error) (State, bool) {
	c.mu.Lock()
	var applied bool
	if fetchErr != nil {
		c.state, applied = Fail(c.state, seq, c.now(), c.opts)
	} else {
		c.state, applied = Succeed(c.state, seq, recs, c.now(), c.opts)
	}
	if !applied {
		s := c.state
		c.mu.Unlock()
		return s, false
	}
	c.scheduleBannerLocked()
	s, listeners := c.state, c.snapshotListeners()
	c.mu.Unlock()

	notify(listeners, s)
	return s, true
}

// scheduleBannerLocked restarts the banner timer for the current deadline,
// or stops it when there is no banner.
func (c *Controller) scheduleBannerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.closed || c.state.BannerUntil.IsZero() {
		return
	}
	c.timer = time.AfterFunc(c.state.BannerUntil.Sub(c.now()), c.expireBanner)
}

func (c *Controller) expireBanner() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	before := c.state.BannerUntil
	c.state = ExpireBanner(c.state, c.now())
	if c.state.BannerUntil.Equal(before) {
		// A newer deadline replaced the one this timer was armed for.
		c.mu.Unlock()
		return
	}
	c.timer = nil
	s, listeners := c.state, c.snapshotListeners()
	c.mu.Unlock()

	notify(listeners, s)
}

// Close stops the banner timer. The controller must not be used after.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) snapshotListeners() []Listener {
	return append([]Listener(nil), c.listeners...)
}

func notify(listeners []Listener, s State) {
	for _, fn := range listeners {
		fn(s)
	}
}
