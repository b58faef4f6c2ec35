// Package enhancer implements the interactive behaviour of the environment
// page: keeping the log pane scrolled to the newest output, counting down to
// the environment's expiration, and turning selector changes into a new
// query string for the server to render.
//
// The enhancer never looks elements up by itself. Callers pass them in a Page,
// and any of them may be missing; a missing element only disables the
// behaviour that needs it.
package enhancer

import (
	"context"
	"time"

	"github.com/ghiac/ephdash/log"
)

// Query parameter names written by the selector handlers.
const (
	ParamRepo   = "repo"
	ParamBranch = "branch"
	ParamPath   = "path"
)

// DefaultInterval is the countdown refresh period.
const DefaultInterval = time.Second

// Enhancer attaches page behaviours. The zero value is not usable; call New.
type Enhancer struct {
	now      func() time.Time
	interval time.Duration
}

// Option configures an Enhancer.
type Option func(*Enhancer)

// WithClock replaces time.Now as the countdown's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Enhancer) {
		if now != nil {
			e.now = now
		}
	}
}

// WithInterval changes the countdown refresh period.
func WithInterval(d time.Duration) Option {
	return func(e *Enhancer) {
		if d > 0 {
			e.interval = d
		}
	}
}

// New creates an Enhancer.
func New(opts ...Option) *Enhancer {
	e := &Enhancer{
		now:      time.Now,
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Session is the state created by one Load. Teardown plays the role of the
// page unloading.
type Session struct {
	scrolled  bool
	countdown *Countdown
}

// Scrolled reports whether a log pane was found and scrolled.
func (s *Session) Scrolled() bool {
	return s.scrolled
}

// Countdown returns the running countdown, or nil when it was not activated.
func (s *Session) Countdown() *Countdown {
	return s.countdown
}

// Teardown stops the countdown, if any, and waits for it to exit.
func (s *Session) Teardown() {
	if s.countdown == nil {
		return
	}
	s.countdown.Stop()
	<-s.countdown.Done()
}

// Load runs the load-time behaviours against page. The countdown keeps
// running until Teardown is called or ctx is cancelled.
func (e *Enhancer) Load(ctx context.Context, page Page) *Session {
	s := &Session{}

	if present(page.LogPane) {
		page.LogPane.SetScrollTop(page.LogPane.ScrollHeight())
		s.scrolled = true
	}

	if !present(page.Expiration) || !present(page.Countdown) {
		return s
	}

	expiration, err := ParseExpiration(page.Expiration.Text())
	if err != nil {
		log.Log.Debugf("[Enhancer] countdown disabled: %v", err)
		return s
	}

	s.countdown = newCountdown(expiration, page.Countdown, e.now, e.interval)
	s.countdown.start(ctx)
	return s
}

// RepoChanged writes the repo selector's value into the query string and
// navigates. It reports whether navigation happened.
func (e *Enhancer) RepoChanged(page Page) bool {
	if !present(page.Repo) || !present(page.Location) {
		return false
	}
	params := ParseParams(page.Location.Search())
	params.Set(ParamRepo, page.Repo.Value())
	page.Location.SetSearch(params.Encode())
	return true
}

// BranchChanged writes repo, branch and, when the page has a path selector,
// path into the query string and navigates. It reports whether navigation
// happened.
func (e *Enhancer) BranchChanged(page Page) bool {
	if !present(page.Repo) || !present(page.Branch) || !present(page.Location) {
		return false
	}
	params := ParseParams(page.Location.Search())
	params.Set(ParamRepo, page.Repo.Value())
	params.Set(ParamBranch, page.Branch.Value())
	if present(page.Path) {
		params.Set(ParamPath, page.Path.Value())
	}
	page.Location.SetSearch(params.Encode())
	return true
}
