// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lookup holds the state of the report-card page and the pure
// transitions that move it through a lookup cycle:
//
//	Idle → Submitted → {Success, Failure} → Idle
//
// Each submission is numbered; a response is applied only when it answers
// the latest submission, so a slow earlier response can never overwrite a
// newer one. Controller wraps the transitions with a fetcher, a lock and
// the banner timer.
package lookup

import (
	"time"

	"github.com/pdiddy/report-card/internal/grades"
	"github.com/pdiddy/report-card/internal/records"
	"github.com/pdiddy/report-card/pkg/types"
)

// Phase is the request phase of the page.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseSubmitted Phase = "submitted"
)

// Outcome is the result of the last applied lookup.
type Outcome string

const (
	OutcomeNone    Outcome = ""
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

const (
	DefaultBannerThreshold = 8.0
	DefaultBannerDuration  = 5 * time.Second
)

// Options tunes the congratulations banner.
type Options struct {
	// BannerThreshold is the CGPA a result must strictly exceed.
	BannerThreshold float64
	// BannerDuration is how long the banner stays visible.
	BannerDuration time.Duration
}

// OptionsFromConfig fills unset banner settings with the defaults.
func OptionsFromConfig(cfg types.BannerConfig) Options {
	opts := Options{BannerThreshold: cfg.Threshold, BannerDuration: cfg.Duration}
	if opts.BannerThreshold <= 0 {
		opts.BannerThreshold = DefaultBannerThreshold
	}
	if opts.BannerDuration <= 0 {
		opts.BannerDuration = DefaultBannerDuration
	}
	return opts
}

// State is everything the page renders.
type State struct {
	Query   string  `json:"query"`
	Phase   Phase   `json:"phase"`
	Outcome Outcome `json:"outcome,omitempty"`

	// Seq is the number of the latest submission.
	Seq uint64 `json:"seq"`

	Records            []types.SubjectRecord `json:"records"`
	StudentName        string                `json:"student_name"`
	RegistrationNumber string                `json:"registration_number"`

	// Error is the user-facing failure message. It is never set while
	// Records is non-empty.
	Error string `json:"error,omitempty"`

	Summary grades.Summary `json:"-"`
	CGPA    float64        `json:"cgpa"`

	// BannerUntil is when the congratulations banner hides. Zero means
	// no banner.
	BannerUntil time.Time `json:"banner_until,omitzero"`
}

// Initial returns the state of a freshly opened page.
func Initial() State {
	return State{Phase: PhaseIdle}
}

// HasRecords reports whether the results table is shown.
func (s State) HasRecords() bool { return len(s.Records) > 0 }

// BannerVisible reports whether the congratulations banner shows at now.
func (s State) BannerVisible(now time.Time) bool {
	return !s.BannerUntil.IsZero() && now.Before(s.BannerUntil)
}

// BannerRemaining returns how long the banner stays up after now.
func (s State) BannerRemaining(now time.Time) time.Duration {
	if !s.BannerVisible(now) {
		return 0
	}
	return s.BannerUntil.Sub(now)
}

// Submit starts a new lookup for query and returns the state with the new
// submission number in Seq. Prior results stay in place until the
// response arrives.
func Submit(s State, query string) State {
	s.Seq++
	s.Query = query
	s.Phase = PhaseSubmitted
	return s
}

// Succeed applies a successful response to submission seq. The record set
// is replaced wholesale and identity is taken from the first record. It
// reports false, leaving s untouched, when seq is not the latest
// submission.
func Succeed(s State, seq uint64, recs []types.SubjectRecord, now time.Time, opts Options) (State, bool) {
	if seq != s.Seq {
		return s, false
	}
	s.Phase = PhaseIdle
	s.Outcome = OutcomeSuccess
	s.Records = recs
	s.StudentName, s.RegistrationNumber = "", ""
	if len(recs) > 0 {
		s.StudentName = recs[0].StudentName
		s.RegistrationNumber = recs[0].RegistrationNumber
	}
	s.Error = ""
	return recompute(s, now, opts), true
}

// Fail applies a failed response to submission seq: the record set and
// identity are cleared and the fixed user message is set. It reports
// false when seq is stale.
func Fail(s State, seq uint64, now time.Time, opts Options) (State, bool) {
	if seq != s.Seq {
		return s, false
	}
	s.Phase = PhaseIdle
	s.Outcome = OutcomeFailure
	s.Records = nil
	s.StudentName, s.RegistrationNumber = "", ""
	s.Error = records.UserMessage
	return recompute(s, now, opts), true
}

// ExpireBanner hides the banner once now has reached its deadline.
func ExpireBanner(s State, now time.Time) State {
	if !s.BannerUntil.IsZero() && !now.Before(s.BannerUntil) {
		s.BannerUntil = time.Time{}
	}
	return s
}

// recompute derives the CGPA from the record set. A qualifying CGPA
// restarts the banner deadline; any other result hides the banner.
func recompute(s State, now time.Time, opts Options) State {
	s.Summary = grades.Summarize(s.Records)
	s.CGPA = s.Summary.CGPA
	if s.CGPA > opts.BannerThreshold {
		s.BannerUntil = now.Add(opts.BannerDuration)
	} else {
		s.BannerUntil = time.Time{}
	}
	return s
}
