package models

import "testing"

func TestSeverityFromScore(t *testing.T) {
	tests := []struct {
		score float64
		want  Severity
	}{
		{0, SeverityLow},
		{2.5, SeverityLow},
		{3.999, SeverityLow},
		{4, SeverityMedium}, // boundary: exactly 4 is Medium
		{5.5, SeverityMedium},
		{6.999, SeverityMedium},
		{7, SeverityHigh}, // boundary: exactly 7 is High
		{8.2, SeverityHigh},
		{10, SeverityHigh},
	}

	for _, tt := range tests {
		if got := SeverityFromScore(tt.score); got != tt.want {
			t.Errorf("SeverityFromScore(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestSeverityWeight(t *testing.T) {
	if SeverityLow.Weight() != 1 || SeverityMedium.Weight() != 2 || SeverityHigh.Weight() != 3 {
		t.Errorf("severity weights = %d/%d/%d, want 1/2/3",
			SeverityLow.Weight(), SeverityMedium.Weight(), SeverityHigh.Weight())
	}
}

func TestNoHazardFindingInvariant(t *testing.T) {
	f := NoHazardFinding("IMG_abc12345", "site.jpg")

	if f.HasHazard {
		t.Error("NoHazardFinding sets HasHazard = true")
	}
	if f.Score != 0 {
		t.Errorf("NoHazardFinding score = %d, want 0", f.Score)
	}
	if len(f.HazardCategories) != 1 || f.HazardCategories[0] != NoVisibleHazard {
		t.Errorf("NoHazardFinding categories = %v, want [%q]", f.HazardCategories, NoVisibleHazard)
	}
	if !f.IsNoHazard() {
		t.Error("IsNoHazard() = false for sentinel finding")
	}
	if f.RiskExplanation != NoHazardExplanation {
		t.Errorf("NoHazardFinding explanation = %q, want fixed message", f.RiskExplanation)
	}
}

func TestVocabularyContainsSentinel(t *testing.T) {
	found := false
	for _, c := range HazardCategories {
		if c == NoVisibleHazard {
			found = true
		}
	}
	if !found {
		t.Error("classification vocabulary is missing the sentinel category")
	}
	if len(HazardCategories) != 17 {
		t.Errorf("vocabulary has %d categories, want 17", len(HazardCategories))
	}
}
