package compliance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moneyex/compliance-service/internal/config"
	"github.com/moneyex/compliance-service/internal/domain"
)

var (
	volumeHighWater = decimal.NewFromInt(100000)
	volumeLowWater  = decimal.NewFromInt(50000)
)

// RiskInput is everything the scoring model consumes about a customer
type RiskInput struct {
	Rating            domain.RiskRating
	TotalVolume       decimal.Decimal
	TransactionCount  int
	VerifiedDocuments int
	KYCStatus         domain.KYCStatus
	AccountAgeDays    int
}

// RiskScorer grades customers for due-diligence intensity. Scoring is a
// pure additive model; every triggered contribution is reported back as
// a named factor for explainability.
type RiskScorer struct {
	reviewDays int
}

// NewRiskScorer creates a risk scorer
func NewRiskScorer(cfg *config.ComplianceConfig) *RiskScorer {
	return &RiskScorer{reviewDays: cfg.RiskReviewDays}
}

// Score computes the additive risk score and band for a customer
func (s *RiskScorer) Score(customerID uuid.UUID, in RiskInput, now time.Time) *domain.RiskAssessment {
	score := 0
	factors := make([]string, 0)

	switch in.Rating {
	case domain.RiskRatingHigh:
		score += 60
		factors = append(factors, "existing rating high (+60)")
	case domain.RiskRatingMedium:
		score += 30
		factors = append(factors, "existing rating medium (+30)")
	default:
		score += 10
		factors = append(factors, "existing rating low (+10)")
	}

	if in.TotalVolume.GreaterThan(volumeHighWater) {
		score += 20
		factors = append(factors, "transaction volume over 100,000 (+20)")
	} else if in.TotalVolume.GreaterThan(volumeLowWater) {
		score += 10
		factors = append(factors, "transaction volume over 50,000 (+10)")
	}

	if in.TransactionCount > 50 {
		score += 15
		factors = append(factors, "more than 50 transactions (+15)")
	} else if in.TransactionCount > 20 {
		score += 8
		factors = append(factors, "more than 20 transactions (+8)")
	}

	if in.VerifiedDocuments == 0 {
		score += 25
		factors = append(factors, "no verified documents (+25)")
	} else if in.VerifiedDocuments < 2 {
		score += 10
		factors = append(factors, "fewer than 2 verified documents (+10)")
	}

	switch in.KYCStatus {
	case domain.KYCStatusPending:
		score += 15
		factors = append(factors, "KYC pending (+15)")
	case domain.KYCStatusRejected:
		score += 30
		factors = append(factors, "KYC rejected (+30)")
	}

	if in.AccountAgeDays < 30 {
		score += 10
		factors = append(factors, fmt.Sprintf("account age %d days (+10)", in.AccountAgeDays))
	}

	return &domain.RiskAssessment{
		CustomerID:   customerID,
		Score:        score,
		Rating:       domain.RatingForScore(score),
		Factors:      factors,
		AssessedAt:   now,
		NextReviewAt: now.AddDate(0, 0, s.reviewDays),
	}
}

// NeedsRecompute reports whether a fresh score is warranted: a KYC
// disposition change, a document verification change, or a lapsed
// periodic-review window. A missing prior assessment always recomputes.
func (s *RiskScorer) NeedsRecompute(last *domain.RiskAssessment, lastKYC, currentKYC domain.KYCStatus, lastVerifiedDocs, currentVerifiedDocs int, now time.Time) bool {
	if last == nil {
		return true
	}
	if lastKYC != currentKYC {
		return true
	}
	if lastVerifiedDocs != currentVerifiedDocs {
		return true
	}
	return last.IsStale(now)
}
