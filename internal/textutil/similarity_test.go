package textutil

import (
	"math"
	"testing"
)

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"identical", "complete the report", "complete the report", 1.0},
		{"case insensitive", "Complete The Report", "complete the report", 1.0},
		{"disjoint", "alpha beta", "gamma delta", 0.0},
		{"empty left", "", "complete the report", 0.0},
		{"empty right", "complete the report", "", 0.0},
		{"both empty", "", "", 0.0},
		// 4 shared tokens, 5 in the union.
		{"four of five", "Complete the report by Friday", "Complete report by Friday", 0.8},
		{"half overlap", "send the invoice", "send the reminder", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Jaccard(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Jaccard(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestJaccardSymmetric(t *testing.T) {
	a := "review the quarterly numbers"
	b := "review quarterly numbers today"
	if Jaccard(a, b) != Jaccard(b, a) {
		t.Error("expected Jaccard to be symmetric")
	}
}
