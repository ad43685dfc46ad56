package ast

import "testing"

// TestCitedLabels checks discharge-citation extraction from
// justification text
func TestCitedLabels(t *testing.T) {
	tests := []struct {
		name string
		just string
		want []int
	}{
		{"single", "=> intro from 1", []int{1}},
		{"comma_list", "or elim from 2, 3", []int{2, 3}},
		{"and_list", "conj from 4 and 5", []int{4, 5}},
		{"no_citation", "arithmetic", nil},
		{"from_without_number", "follows from the lemma", nil},
		{"number_without_from", "case 3 of the table", nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CitedLabels(tt.just)
			if len(got) != len(tt.want) {
				t.Fatalf("CitedLabels(%q) = %v, want %v", tt.just, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("CitedLabels(%q) = %v, want %v", tt.just, got, tt.want)
				}
			}
		})
	}
}
