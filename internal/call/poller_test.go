// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package call

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/prepped-health/prepped-tui/internal/backend"
	"github.com/prepped-health/prepped-tui/internal/model"
)

// scriptedPoll returns each status in order, then repeats the last one,
// counting every request.
func scriptedPoll(count *atomic.Int64, statuses ...model.CallStatus) PollFunc {
	return func(ctx context.Context) (*backend.SessionDetail, error) {
		n := count.Add(1)
		idx := int(n) - 1
		if idx >= len(statuses) {
			idx = len(statuses) - 1
		}
		return &backend.SessionDetail{
			CallStatus:  statuses[idx],
			AgentStatus: "interviewing",
			Messages: []*model.Message{
				model.NewAssistantMessage("How long has this been going on?", "Intake Nurse", nil),
			},
		}, nil
	}
}

func fastOptions() Options {
	return Options{
		Interval:            time.Millisecond,
		MaxAttempts:         90,
		BackoffFactor:       1.5,
		CompletedCloseDelay: 5 * time.Millisecond,
	}
}

// runPoller runs the poller to completion and returns every message sent.
func runPoller(t *testing.T, poll PollFunc, opts Options) []tea.Msg {
	t.Helper()
	var msgs []tea.Msg
	p := NewPoller("sess-1", poll, func(msg tea.Msg) { msgs = append(msgs, msg) }, opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p.Run(ctx)
	return msgs
}

func TestPollerNavigatesExactlyOnceOnCompleted(t *testing.T) {
	var count atomic.Int64
	poll := scriptedPoll(&count, model.CallRinging, model.CallInProgress, model.CallCompleted)

	msgs := runPoller(t, poll, fastOptions())

	if got := count.Load(); got != 3 {
		t.Errorf("poll count = %d, want 3 (no poll after terminal status)", got)
	}

	var ticks, completed, navigates, ended int
	var lastNavigate NavigateMsg
	for _, msg := range msgs {
		switch m := msg.(type) {
		case TickMsg:
			ticks++
		case CompletedMsg:
			completed++
		case NavigateMsg:
			navigates++
			lastNavigate = m
		case EndedMsg:
			ended++
		}
	}

	if ticks != 3 {
		t.Errorf("ticks = %d, want 3", ticks)
	}
	if completed != 1 {
		t.Errorf("completed msgs = %d, want 1", completed)
	}
	if navigates != 1 {
		t.Errorf("navigate msgs = %d, want exactly 1", navigates)
	}
	if lastNavigate.SessionID != "sess-1" {
		t.Errorf("navigate session id = %q, want sess-1", lastNavigate.SessionID)
	}
	if ended != 0 {
		t.Errorf("ended msgs = %d, want 0", ended)
	}
}

func TestPollerNavigateWaitsDisplayDelay(t *testing.T) {
	var count atomic.Int64
	poll := scriptedPoll(&count, model.CallCompleted)

	opts := fastOptions()
	opts.CompletedCloseDelay = 50 * time.Millisecond

	var completedAt, navigatedAt time.Time
	p := NewPoller("sess-1", poll, func(msg tea.Msg) {
		switch msg.(type) {
		case CompletedMsg:
			completedAt = time.Now()
		case NavigateMsg:
			navigatedAt = time.Now()
		}
	}, opts)
	p.Run(context.Background())

	if completedAt.IsZero() || navigatedAt.IsZero() {
		t.Fatal("missing completed or navigate message")
	}
	if gap := navigatedAt.Sub(completedAt); gap < 40*time.Millisecond {
		t.Errorf("navigate fired %v after completed, want >= ~50ms", gap)
	}
}

func TestPollerBusyShowsLiteralTextAndStops(t *testing.T) {
	var count atomic.Int64
	poll := scriptedPoll(&count, model.CallBusy)

	msgs := runPoller(t, poll, fastOptions())

	if got := count.Load(); got != 1 {
		t.Errorf("poll count = %d, want 1 (zero further polls after busy)", got)
	}

	var ended *EndedMsg
	for _, msg := range msgs {
		if m, ok := msg.(EndedMsg); ok {
			ended = &m
		}
		if _, ok := msg.(NavigateMsg); ok {
			t.Error("navigate sent for a failed call")
		}
	}
	if ended == nil {
		t.Fatal("no EndedMsg sent")
	}
	if ended.Reason != "Call ended: busy" {
		t.Errorf("ended reason = %q, want %q", ended.Reason, "Call ended: busy")
	}
}

func TestPollerFailureStatuses(t *testing.T) {
	tests := []struct {
		status model.CallStatus
		reason string
	}{
		{model.CallBusy, "Call ended: busy"},
		{model.CallFailed, "Call ended: failed"},
		{model.CallNoAnswer, "Call ended: no-answer"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			var count atomic.Int64
			msgs := runPoller(t, scriptedPoll(&count, tt.status), fastOptions())

			found := false
			for _, msg := range msgs {
				if m, ok := msg.(EndedMsg); ok {
					found = true
					if m.Reason != tt.reason {
						t.Errorf("reason = %q, want %q", m.Reason, tt.reason)
					}
				}
			}
			if !found {
				t.Error("no EndedMsg sent")
			}
		})
	}
}

func TestPollerBoundsStuckRinging(t *testing.T) {
	var count atomic.Int64
	poll := scriptedPoll(&count, model.CallRinging)

	opts := fastOptions()
	opts.MaxAttempts = 5

	msgs := runPoller(t, poll, opts)

	if got := count.Load(); got != 5 {
		t.Errorf("poll count = %d, want exactly max attempts (5)", got)
	}

	var ended *EndedMsg
	for _, msg := range msgs {
		if m, ok := msg.(EndedMsg); ok {
			ended = &m
		}
	}
	if ended == nil {
		t.Fatal("no EndedMsg after exhausting attempts")
	}
	if ended.Reason != "call timed out" {
		t.Errorf("ended reason = %q, want %q", ended.Reason, "call timed out")
	}
}

func TestPollerCancelledBeforeNavigate(t *testing.T) {
	var count atomic.Int64
	poll := scriptedPoll(&count, model.CallCompleted)

	opts := fastOptions()
	opts.CompletedCloseDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	completed := make(chan struct{})
	done := make(chan struct{})

	var navigated atomic.Bool
	p := NewPoller("sess-1", poll, func(msg tea.Msg) {
		switch msg.(type) {
		case CompletedMsg:
			close(completed)
		case NavigateMsg:
			navigated.Store(true)
		}
	}, opts)

	go func() {
		p.Run(ctx)
		close(done)
	}()

	select {
	case <-completed:
	case <-time.After(5 * time.Second):
		t.Fatal("poller never reached completed")
	}

	// Closing the modal cancels the poll before the display delay elapses.
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("poller did not stop after cancel")
	}
	if navigated.Load() {
		t.Error("navigate sent after cancellation")
	}
}

func TestPollerTransientErrorsConsumeAttempts(t *testing.T) {
	var count atomic.Int64
	poll := func(ctx context.Context) (*backend.SessionDetail, error) {
		count.Add(1)
		return nil, errors.New("transient")
	}

	opts := fastOptions()
	opts.MaxAttempts = 3

	msgs := runPoller(t, poll, opts)

	if got := count.Load(); got != 3 {
		t.Errorf("poll count = %d, want 3", got)
	}
	var ended *EndedMsg
	for _, msg := range msgs {
		if m, ok := msg.(EndedMsg); ok {
			ended = &m
		}
	}
	if ended == nil || ended.Reason != "call timed out" {
		t.Errorf("ended = %+v, want call timed out", ended)
	}
}
