// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/prepped-health/prepped-tui/internal/model"
	"github.com/prepped-health/prepped-tui/internal/ui/styles"
)

// =============================================================================
// MEDICAL PROFILE CARD
// =============================================================================

// ProfileCard renders the memory bank the intake agent has built so far:
// chief complaint, symptom timeline, medications, family history, and the
// questions the patient should ask their clinician.
type ProfileCard struct {
	theme *styles.Theme

	Width   int
	Profile model.MemoryBank
}

// NewProfileCard creates a card for a memory bank snapshot.
func NewProfileCard(theme *styles.Theme, profile model.MemoryBank) ProfileCard {
	return ProfileCard{theme: theme, Profile: profile}
}

// View renders the card.
func (p *ProfileCard) View() string {
	var b strings.Builder

	b.WriteString(p.theme.ModalTitle.Render("Medical profile"))
	b.WriteString("\n\n")

	b.WriteString(p.theme.ProfileSection.Render("Chief complaint"))
	b.WriteString("\n")
	b.WriteString(p.renderValue(p.Profile.ChiefComplaint))
	b.WriteString("\n\n")

	b.WriteString(p.theme.ProfileSection.Render("Symptoms"))
	b.WriteString("\n")
	if len(p.Profile.SymptomTimeline) == 0 {
		b.WriteString(p.theme.ProfileEmpty.Render(model.PlaceholderNone))
		b.WriteString("\n")
	} else {
		for _, sym := range p.Profile.SymptomTimeline {
			line := "- " + sym.Description
			if sym.Duration != "" {
				line += " (" + sym.Duration + ")"
			}
			b.WriteString(p.theme.ProfileValue.Render(line))
			b.WriteString("\n")
			if sym.Notes != "" {
				b.WriteString(p.theme.ProfileLabel.Render("    " + sym.Notes))
				b.WriteString("\n")
			}
		}
	}
	b.WriteString("\n")

	b.WriteString(p.theme.ProfileSection.Render("Medications"))
	b.WriteString("\n")
	b.WriteString(p.renderList(p.Profile.MedicationsOrPlaceholder()))
	b.WriteString("\n")

	b.WriteString(p.theme.ProfileSection.Render("Family history"))
	b.WriteString("\n")
	b.WriteString(p.renderList(p.Profile.FamilyHistoryOrPlaceholder()))
	b.WriteString("\n")

	if len(p.Profile.SuggestedQuestions) > 0 {
		b.WriteString(p.theme.ProfileSection.Render("Questions for your clinician"))
		b.WriteString("\n")
		for i, q := range p.Profile.SuggestedQuestions {
			b.WriteString(p.theme.ProfileValue.Render(strconv.Itoa(i+1) + ". " + q))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(p.theme.ModalHint.Render("esc closes"))

	box := p.theme.ModalBox
	if p.Width > 0 {
		box = box.Width(p.Width)
	}
	return box.Render(strings.TrimRight(b.String(), "\n"))
}

// renderValue renders a single field, with the placeholder style when empty.
func (p *ProfileCard) renderValue(v string) string {
	if v == "" {
		return p.theme.ProfileEmpty.Render(model.PlaceholderNone)
	}
	return p.theme.ProfileValue.Render(v)
}

// renderList renders a bulleted list, with the placeholder style when the
// list collapsed to the placeholder.
func (p *ProfileCard) renderList(items []string) string {
	if len(items) == 1 && items[0] == model.PlaceholderNone {
		return p.theme.ProfileEmpty.Render(model.PlaceholderNone) + "\n"
	}
	var b strings.Builder
	for _, item := range items {
		b.WriteString(p.theme.ProfileValue.Render("- " + item))
		b.WriteString("\n")
	}
	return b.String()
}
