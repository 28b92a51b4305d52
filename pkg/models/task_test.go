package models

import "testing"

func TestPriorityRank(t *testing.T) {
	tests := []struct {
		priority Priority
		rank     int
	}{
		{PriorityUrgent, 0},
		{PriorityHigh, 1},
		{PriorityMedium, 2},
		{PriorityNormal, 3},
		{Priority("bogus"), 3},
		{Priority(""), 3},
	}

	for _, tt := range tests {
		if got := tt.priority.Rank(); got != tt.rank {
			t.Errorf("Rank(%q) = %d, want %d", tt.priority, got, tt.rank)
		}
	}
}

func TestPriorityValid(t *testing.T) {
	for _, p := range []Priority{PriorityUrgent, PriorityHigh, PriorityMedium, PriorityNormal} {
		if !p.Valid() {
			t.Errorf("expected %q to be valid", p)
		}
	}
	if Priority("asap").Valid() {
		t.Error("expected 'asap' to be invalid")
	}
}
