package models

import (
	"encoding/json"
	"testing"
)

func TestSafetyRating_Order(t *testing.T) {
	order := []SafetyRating{RatingExcellent, RatingGood, RatingFair, RatingPoor, RatingDangerous}
	for i := 1; i < len(order); i++ {
		if order[i-1] >= order[i] {
			t.Errorf("%v should rank below %v", order[i-1], order[i])
		}
	}
}

func TestSafetyAssessment_Downgrade(t *testing.T) {
	tests := []struct {
		name      string
		start     SafetyRating
		candidate SafetyRating
		want      SafetyRating
	}{
		{"worse candidate wins", RatingGood, RatingPoor, RatingPoor},
		{"better candidate ignored", RatingPoor, RatingExcellent, RatingPoor},
		{"equal is a no-op", RatingFair, RatingFair, RatingFair},
		{"dangerous is terminal", RatingDangerous, RatingGood, RatingDangerous},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := SafetyAssessment{Rating: tt.start}
			s.Downgrade(tt.candidate)
			if s.Rating != tt.want {
				t.Errorf("Downgrade(%v) from %v = %v, want %v", tt.candidate, tt.start, s.Rating, tt.want)
			}
		})
	}
}

func TestSafetyAssessment_Dedup(t *testing.T) {
	var s SafetyAssessment
	s.AddRiskFactor("High winds (>40 km/h)")
	s.AddRiskFactor("High winds (>40 km/h)")
	s.AddRiskFactor("  ")
	s.AddRecommendation("Bring weather protection")
	s.AddRecommendation("Bring weather protection")

	if len(s.RiskFactors) != 1 {
		t.Errorf("RiskFactors = %v, want one entry", s.RiskFactors)
	}
	if len(s.Recommendations) != 1 {
		t.Errorf("Recommendations = %v, want one entry", s.Recommendations)
	}
}

func TestSafetyRating_Text(t *testing.T) {
	b, err := json.Marshal(struct {
		Rating SafetyRating `json:"rating"`
	}{RatingPoor})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(b) != `{"rating":"POOR"}` {
		t.Errorf("Marshal() = %s", b)
	}

	var r SafetyRating
	if err := r.UnmarshalText([]byte("dangerous")); err != nil {
		t.Fatalf("UnmarshalText() error = %v", err)
	}
	if r != RatingDangerous {
		t.Errorf("UnmarshalText(dangerous) = %v", r)
	}
	if err := r.UnmarshalText([]byte("calm")); err == nil {
		t.Error("UnmarshalText(calm) should fail")
	}
}
