package domain

import (
	"time"

	"github.com/google/uuid"
)

// RiskRating is the banded due-diligence grade for a customer
type RiskRating string

const (
	RiskRatingLow    RiskRating = "LOW"
	RiskRatingMedium RiskRating = "MEDIUM"
	RiskRatingHigh   RiskRating = "HIGH"
)

// RiskAssessment is the scored output of the customer risk model
type RiskAssessment struct {
	CustomerID uuid.UUID  `json:"customer_id"`
	Score      int        `json:"score"`
	Rating     RiskRating `json:"rating"`
	Factors    []string   `json:"factors"`

	AssessedAt   time.Time `json:"assessed_at"`
	NextReviewAt time.Time `json:"next_review_at"`
}

// IsStale reports whether the periodic review window has lapsed
func (r *RiskAssessment) IsStale(now time.Time) bool {
	return now.After(r.NextReviewAt)
}

// RatingForScore maps a numeric score to its band
func RatingForScore(score int) RiskRating {
	switch {
	case score >= 70:
		return RiskRatingHigh
	case score >= 40:
		return RiskRatingMedium
	default:
		return RiskRatingLow
	}
}
