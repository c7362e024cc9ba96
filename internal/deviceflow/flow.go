// Package deviceflow runs the device-authorization login against the tier
// web app and stores the issued token.
package deviceflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tierdev/tier-cli/internal/auth"
	clierrors "github.com/tierdev/tier-cli/internal/errors"
	"github.com/tierdev/tier-cli/internal/tier"
)

// State is a step of the login state machine.
type State string

const (
	StateInit      State = "INIT"
	StateRequested State = "REQUESTED"
	StatePolling   State = "POLLING"
	StateApproved  State = "APPROVED"
	StateDenied    State = "DENIED"
	StateExpired   State = "EXPIRED"
	StateError     State = "ERROR"
)

// Terminal reports whether no further transition can happen from s.
func (s State) Terminal() bool {
	switch s {
	case StateApproved, StateDenied, StateExpired, StateError:
		return true
	}
	return false
}

const (
	// DefaultInterval is used when the server sends no poll interval.
	DefaultInterval = 5 * time.Second
	// DefaultExpiry bounds a session whose server sent no expiry.
	DefaultExpiry = 15 * time.Minute
	// slowDownStep is added to the interval on every slow_down answer.
	slowDownStep = 5 * time.Second
)

// Remote is the part of the tier client the flow talks to.
type Remote interface {
	InitLogin(ctx context.Context, projectRoot string) (*tier.DeviceAuthorization, error)
	PollLogin(ctx context.Context, deviceCode string) (*tier.PollResult, error)
}

// CredentialWriter persists the token once the login is approved.
type CredentialWriter interface {
	Put(k auth.Key, rec auth.Record) error
}

// Session is an in-flight device authorization.
type Session struct {
	DeviceCode              string
	UserCode                string
	VerificationURI         string
	VerificationURIComplete string
	ExpiresAt               time.Time
	Interval                time.Duration
}

// Outcome describes how a flow ended.
type Outcome struct {
	State State
	Trace []State
	Polls int
}

// Flow drives one login attempt. Remote and Store are required; the other
// fields have working defaults.
type Flow struct {
	Remote Remote
	Store  CredentialWriter

	// Present shows the user code and verification URIs.
	Present func(Session)
	// OpenBrowser must not wait for the browser. Errors are only logged.
	OpenBrowser func(url string) error
	// NoBrowser suppresses OpenBrowser.
	NoBrowser bool

	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

type run struct {
	out Outcome
}

func (r *run) to(s State) {
	r.out.State = s
	r.out.Trace = append(r.out.Trace, s)
}

// Run executes the flow for the project at projectRoot and, on approval,
// writes exactly one credential for (apiHost, projectRoot). Any non-approved
// end returns an error, and no credential is written.
func (f *Flow) Run(ctx context.Context, apiHost, projectRoot string) (Outcome, error) {
	now := f.Now
	if now == nil {
		now = time.Now
	}
	sleep := f.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	r := &run{}
	r.to(StateInit)

	authz, err := f.Remote.InitLogin(ctx, projectRoot)
	if err != nil {
		r.to(StateError)
		return r.out, fmt.Errorf("failed to start login: %w", err)
	}
	if authz.Err != nil {
		r.to(StateError)
		return r.out, &clierrors.FlowError{State: "error", Message: authz.Err.Error()}
	}
	if authz.Success == nil {
		r.to(StateError)
		return r.out, &clierrors.FlowError{State: "error", Message: "empty device authorization"}
	}

	sess := newSession(authz, now())
	r.to(StateRequested)
	slog.Debug("device authorization requested",
		"expires_at", sess.ExpiresAt.Format(time.RFC3339),
		"interval", sess.Interval.String())

	if f.Present != nil {
		f.Present(sess)
	}
	if sess.VerificationURIComplete != "" && !f.NoBrowser && f.OpenBrowser != nil {
		if err := f.OpenBrowser(sess.VerificationURIComplete); err != nil {
			slog.Debug("failed to open browser", "error", err)
		}
	}

	interval := sess.Interval
	for {
		if err := sleep(ctx, interval); err != nil {
			return r.out, err
		}
		if now().After(sess.ExpiresAt) {
			r.to(StateExpired)
			return r.out, &clierrors.FlowError{State: "expired", Message: "the login code expired before it was approved"}
		}

		r.out.Polls++
		res, err := f.Remote.PollLogin(ctx, sess.DeviceCode)
		if err != nil {
			if ctx.Err() != nil {
				return r.out, ctx.Err()
			}
			slog.Warn("login poll failed, retrying", "error", err, "transient", clierrors.IsTransient(err))
			r.to(StatePolling)
			continue
		}

		switch res.Status {
		case tier.PollPending:
			r.to(StatePolling)
		case tier.PollSlowDown:
			interval += slowDownStep
			slog.Debug("server asked to slow down", "interval", interval.String())
			r.to(StatePolling)
		case tier.PollDenied:
			r.to(StateDenied)
			return r.out, &clierrors.FlowError{State: "denied", Message: res.Message}
		case tier.PollExpired:
			r.to(StateExpired)
			return r.out, &clierrors.FlowError{State: "expired", Message: res.Message}
		case tier.PollApproved:
			rec := auth.Record{Token: res.Token, AuthType: recordAuthType(res.TokenType)}
			key := auth.Key{APIHost: apiHost, ProjectRoot: projectRoot}
			if err := f.Store.Put(key, rec); err != nil {
				r.to(StateError)
				return r.out, fmt.Errorf("login approved but the token could not be saved: %w", err)
			}
			r.to(StateApproved)
			return r.out, nil
		default:
			slog.Warn("unexpected login poll status, retrying", "status", string(res.Status))
			r.to(StatePolling)
		}
	}
}

func newSession(authz *tier.DeviceAuthorization, now time.Time) Session {
	s := authz.Success
	sess := Session{
		DeviceCode:              s.DeviceCode,
		UserCode:                s.UserCode,
		VerificationURI:         s.VerificationURI,
		VerificationURIComplete: s.VerificationURIComplete,
		ExpiresAt:               s.Expiry,
		Interval:                time.Duration(s.Interval) * time.Second,
	}
	if sess.Interval <= 0 {
		sess.Interval = DefaultInterval
	}
	if sess.ExpiresAt.IsZero() {
		sess.ExpiresAt = now.Add(DefaultExpiry)
	}
	return sess
}

// recordAuthType picks the auth type stored with an issued token. Tokens
// from the login endpoint are bearer tokens unless the server says basic.
func recordAuthType(tokenType string) string {
	if tokenType == tier.AuthBasic {
		return tier.AuthBasic
	}
	return tier.AuthBearer
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsCanceled reports whether err came from the context ending the flow.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
