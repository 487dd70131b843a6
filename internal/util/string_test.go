// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import "testing"

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten chars here", 10, "exactly..."},
		{"héllo wörld", 8, "héllo..."},
		{"abc", 0, ""},
		{"abcdef", 2, "ab"},
	}
	for _, tt := range tests {
		if got := TruncateRunes(tt.in, tt.max); got != tt.want {
			t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestTruncateWidthCJK(t *testing.T) {
	// Each CJK rune is two columns wide.
	if got := TruncateWidth("膝の痛み", 4); got != "膝の" {
		t.Errorf("got %q", got)
	}
	if got := TruncateWidth("膝の痛みがあります", 9); StringWidth(got) > 9 {
		t.Errorf("width %d exceeds 9", StringWidth(got))
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 5); got != "ab   " {
		t.Errorf("got %q", got)
	}
}

func TestNormalizeNFC(t *testing.T) {
	decomposed := "café"
	composed := "café"

	if got := NormalizeNFC(decomposed); got != composed {
		t.Errorf("got %q, want %q", got, composed)
	}
	// Already-composed input passes through unchanged.
	if got := NormalizeNFC(composed); got != composed {
		t.Errorf("composed input changed: %q", got)
	}
}
