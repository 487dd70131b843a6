// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package call

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/time/rate"

	"github.com/prepped-health/prepped-tui/internal/backend"
	"github.com/prepped-health/prepped-tui/internal/model"
)

// =============================================================================
// POLLER
// =============================================================================

// Polling bounds.
const (
	// maxInterval caps the backed-off polling interval.
	maxInterval = 10 * time.Second

	// ringingRunLength is how many consecutive "ringing" ticks trigger one
	// backoff step.
	ringingRunLength = 15
)

// PollFunc fetches the current session detail. Production wires this to
// backend.Client.GetSession; tests substitute a counter.
type PollFunc func(ctx context.Context) (*backend.SessionDetail, error)

// Options bound the polling loop. Zero values fall back to defaults.
type Options struct {
	Interval            time.Duration
	MaxAttempts         int
	BackoffFactor       float64
	CompletedCloseDelay time.Duration
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = 2 * time.Second
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 90
	}
	if o.BackoffFactor < 1 {
		o.BackoffFactor = 1.5
	}
	if o.CompletedCloseDelay <= 0 {
		o.CompletedCloseDelay = 2 * time.Second
	}
	return o
}

// =============================================================================
// MESSAGES
// =============================================================================

// TickMsg reports one poll observation while the call is live.
type TickMsg struct {
	SessionID   string
	Status      model.CallStatus
	AgentStatus string
	LastMessage string
	Attempt     int
}

// CompletedMsg reports that the interview finished.
type CompletedMsg struct {
	SessionID string
}

// EndedMsg reports a failed attempt with the inline text to display.
type EndedMsg struct {
	SessionID string
	Reason    string
}

// NavigateMsg asks the app to open the briefing for the session. Sent at
// most once per attempt, after the completed display delay.
type NavigateMsg struct {
	SessionID string
}

// =============================================================================
// RUN LOOP
// =============================================================================

// Poller polls one session's call status until a terminal status, the
// attempt bound, or context cancellation.
type Poller struct {
	sessionID string
	poll      PollFunc
	send      func(tea.Msg)
	opts      Options
}

// NewPoller creates a poller for a session. send receives the poller's
// messages; it must be safe to call from the poller goroutine.
func NewPoller(sessionID string, poll PollFunc, send func(tea.Msg), opts Options) *Poller {
	return &Poller{
		sessionID: sessionID,
		poll:      poll,
		send:      send,
		opts:      opts.withDefaults(),
	}
}

// Run executes the polling loop. It returns when a terminal status is
// observed, the attempt bound is hit, or ctx is cancelled. Callers run it
// in a goroutine; no message is sent after it returns.
func (p *Poller) Run(ctx context.Context) {
	interval := p.opts.Interval
	limiter := rate.NewLimiter(rate.Every(interval), 1)
	ringingRun := 0

	for attempt := 1; attempt <= p.opts.MaxAttempts; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		detail, err := p.poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// A dropped tick is not fatal; the next one may land.
			continue
		}

		lastMessage := ""
		if n := len(detail.Messages); n > 0 {
			lastMessage = detail.Messages[n-1].Content
		}

		p.send(TickMsg{
			SessionID:   p.sessionID,
			Status:      detail.CallStatus,
			AgentStatus: detail.AgentStatus,
			LastMessage: lastMessage,
			Attempt:     attempt,
		})

		switch {
		case detail.CallStatus == model.CallCompleted:
			p.send(CompletedMsg{SessionID: p.sessionID})
			select {
			case <-ctx.Done():
				return
			case <-time.After(p.opts.CompletedCloseDelay):
			}
			p.send(NavigateMsg{SessionID: p.sessionID})
			return

		case detail.CallStatus.Failed():
			p.send(EndedMsg{
				SessionID: p.sessionID,
				Reason:    "Call ended: " + string(detail.CallStatus),
			})
			return
		}

		// A call stuck in ringing slows down instead of hammering the
		// backend for the full attempt budget.
		if detail.CallStatus == model.CallRinging {
			ringingRun++
			if ringingRun%ringingRunLength == 0 {
				interval = time.Duration(float64(interval) * p.opts.BackoffFactor)
				if interval > maxInterval {
					interval = maxInterval
				}
				limiter.SetLimit(rate.Every(interval))
			}
		} else {
			ringingRun = 0
		}
	}

	p.send(EndedMsg{SessionID: p.sessionID, Reason: "call timed out"})
}
