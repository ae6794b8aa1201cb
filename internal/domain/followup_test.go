package domain

import (
	"strings"
	"testing"
)

func TestNeedsFollowUp(t *testing.T) {
	tiers := []string{"Basic", "basic", "Premium", "premium", "PREMIUM", "Enterprise", "enterprise", "ENTERPRISE", "Gold", ""}
	for rating := 1; rating <= 5; rating++ {
		for _, tier := range tiers {
			lower := strings.ToLower(tier)
			expected := rating < 3 && (lower == "premium" || lower == "enterprise")
			if got := NeedsFollowUp(rating, tier); got != expected {
				t.Fatalf("NeedsFollowUp(%d, %q): ожидали %v, получили %v", rating, tier, expected, got)
			}
		}
	}
}

func TestNeedsFollowUpBoundary(t *testing.T) {
	if NeedsFollowUp(3, "Premium") {
		t.Fatalf("оценка 3 не должна требовать follow-up")
	}
	if !NeedsFollowUp(2, "Enterprise") {
		t.Fatalf("оценка 2 на Enterprise должна требовать follow-up")
	}
}
