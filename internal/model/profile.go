// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "strings"

// =============================================================================
// MEDICAL PROFILE (MEMORY BANK)
// =============================================================================

// Symptom is one entry in the symptom timeline of a medical profile.
type Symptom struct {
	Description string `json:"description"`
	Duration    string `json:"duration"`
	Severity    string `json:"severity"`
	Notes       string `json:"notes,omitempty"`
}

// MemoryBank is the structured medical profile the backend maintains per
// session. It is wholly replaced (never merged) on every backend response;
// the client holds at most one snapshot per active session and the backend
// owns durability.
type MemoryBank struct {
	ChiefComplaint     string    `json:"chief_complaint"`
	SymptomTimeline    []Symptom `json:"symptom_timeline"`
	CurrentMedications []string  `json:"current_medications"`
	FamilyHistory      []string  `json:"family_history"`
	SuggestedQuestions []string  `json:"suggested_questions"`
}

// IsEmpty returns true when the profile carries no recorded data at all.
func (mb MemoryBank) IsEmpty() bool {
	return strings.TrimSpace(mb.ChiefComplaint) == "" &&
		len(mb.SymptomTimeline) == 0 &&
		len(mb.CurrentMedications) == 0 &&
		len(mb.FamilyHistory) == 0 &&
		len(mb.SuggestedQuestions) == 0
}

// SymptomCount returns the number of recorded symptoms.
func (mb MemoryBank) SymptomCount() int {
	return len(mb.SymptomTimeline)
}

// PlaceholderNone is the text rendered for empty list sections. Empty
// medication/history lists must render an explicit placeholder rather
// than a blank section.
const PlaceholderNone = "None recorded"

// MedicationsOrPlaceholder returns the medication list, or a single
// placeholder entry when nothing is recorded.
func (mb MemoryBank) MedicationsOrPlaceholder() []string {
	if len(mb.CurrentMedications) == 0 {
		return []string{PlaceholderNone}
	}
	return mb.CurrentMedications
}

// FamilyHistoryOrPlaceholder returns the family history list, or a single
// placeholder entry when nothing is recorded.
func (mb MemoryBank) FamilyHistoryOrPlaceholder() []string {
	if len(mb.FamilyHistory) == 0 {
		return []string{PlaceholderNone}
	}
	return mb.FamilyHistory
}
