package models

import (
	"fmt"
	"strings"
)

// SafetyRating is an ordered fishing safety level. Higher values are worse.
type SafetyRating int

const (
	RatingExcellent SafetyRating = iota
	RatingGood
	RatingFair
	RatingPoor
	RatingDangerous
)

var ratingNames = [...]string{"EXCELLENT", "GOOD", "FAIR", "POOR", "DANGEROUS"}

// String returns the upper-case rating name
func (r SafetyRating) String() string {
	if r < RatingExcellent || r > RatingDangerous {
		return fmt.Sprintf("SafetyRating(%d)", int(r))
	}
	return ratingNames[r]
}

// Worse returns whichever of r and other is closer to DANGEROUS
func (r SafetyRating) Worse(other SafetyRating) SafetyRating {
	return max(r, other)
}

// MarshalText implements encoding.TextMarshaler
func (r SafetyRating) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (r *SafetyRating) UnmarshalText(b []byte) error {
	parsed, err := ParseSafetyRating(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseSafetyRating parses a rating name case-insensitively
func ParseSafetyRating(s string) (SafetyRating, error) {
	for i, name := range ratingNames {
		if strings.EqualFold(s, name) {
			return SafetyRating(i), nil
		}
	}
	return RatingExcellent, fmt.Errorf("unknown safety rating %q", s)
}

// SPCRisk is a Storm Prediction Center categorical outlook level
type SPCRisk string

const (
	RiskThunder  SPCRisk = "TSTM"
	RiskMarginal SPCRisk = "MRGL"
	RiskSlight   SPCRisk = "SLGT"
	RiskEnhanced SPCRisk = "ENH"
	RiskModerate SPCRisk = "MDT"
	RiskHigh     SPCRisk = "HIGH"
)

// OutlookRisk is the categorical outlook covering a point
type OutlookRisk struct {
	Risk SPCRisk `json:"risk"`
	Day  int     `json:"day"`
}

// SafetyAssessment is the accumulated safety verdict for a day. The rating
// only moves toward DANGEROUS; use Downgrade rather than assigning Rating.
type SafetyAssessment struct {
	Rating          SafetyRating `json:"rating"`
	ActiveAlerts    []Alert      `json:"activeAlerts"`
	RiskFactors     []string     `json:"riskFactors"`
	Recommendations []string     `json:"recommendations"`
	SPCOutlook      *OutlookRisk `json:"spcOutlook,omitempty"`
}

// Downgrade moves the rating to candidate if candidate is worse
func (s *SafetyAssessment) Downgrade(candidate SafetyRating) {
	s.Rating = s.Rating.Worse(candidate)
}

// AddRiskFactor appends a risk factor unless already present
func (s *SafetyAssessment) AddRiskFactor(factor string) {
	s.RiskFactors = appendUnique(s.RiskFactors, factor)
}

// AddRecommendation appends a recommendation unless already present
func (s *SafetyAssessment) AddRecommendation(rec string) {
	s.Recommendations = appendUnique(s.Recommendations, rec)
}

func appendUnique(list []string, v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return list
	}
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
