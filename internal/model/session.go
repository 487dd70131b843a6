// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// SESSION SUMMARY
// =============================================================================

// SessionSummary is one row of the backend session list. The client never
// computes or infers any of these fields; it only renders and deletes.
type SessionSummary struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Date    string `json:"date"` // coarse label: "Today", "Yesterday", "Previous 7 Days", ...
	Preview string `json:"preview"`
}

// =============================================================================
// CALL STATUS
// =============================================================================

// CallStatus is the telephony status string reported by the backend while
// a voice interview call is live.
type CallStatus string

const (
	CallRinging    CallStatus = "ringing"
	CallInProgress CallStatus = "in-progress"
	CallCompleted  CallStatus = "completed"
	CallBusy       CallStatus = "busy"
	CallFailed     CallStatus = "failed"
	CallNoAnswer   CallStatus = "no-answer"
)

// Terminal returns true when the status ends the call either way.
func (s CallStatus) Terminal() bool {
	return s == CallCompleted || s.Failed()
}

// Failed returns true for the failure-terminal statuses.
func (s CallStatus) Failed() bool {
	switch s {
	case CallBusy, CallFailed, CallNoAnswer:
		return true
	}
	return false
}

// DisplayLabel returns the headline shown while a call is live.
func (s CallStatus) DisplayLabel() string {
	switch s {
	case CallRinging:
		return "Ringing..."
	case CallInProgress:
		return "Call in Progress"
	default:
		return "Calling you..."
	}
}
