package compliance

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/moneyex/compliance-service/internal/config"
	"github.com/moneyex/compliance-service/internal/domain"
)

// SuspiciousActivityScreener applies independent qualitative rules to a
// transaction. Each triggered rule contributes one risk factor; any hit
// also warrants a SUSPICIOUS_ACTIVITY_REVIEW flag on the assessment.
type SuspiciousActivityScreener struct {
	structuringAmounts []decimal.Decimal
	giftThreshold      decimal.Decimal
	highRiskCountries  map[string]bool
}

// NewSuspiciousActivityScreener creates a screener from configuration
func NewSuspiciousActivityScreener(cfg *config.ScreeningConfig) *SuspiciousActivityScreener {
	amounts := make([]decimal.Decimal, 0, len(cfg.StructuringAmounts))
	for _, a := range cfg.StructuringAmounts {
		amounts = append(amounts, decimal.NewFromFloat(a))
	}

	countries := make(map[string]bool, len(cfg.HighRiskCountries))
	for _, c := range cfg.HighRiskCountries {
		countries[strings.ToUpper(strings.TrimSpace(c))] = true
	}

	return &SuspiciousActivityScreener{
		structuringAmounts: amounts,
		giftThreshold:      decimal.NewFromFloat(cfg.GiftThreshold),
		highRiskCountries:  countries,
	}
}

// Screen evaluates every rule against the transaction and returns the
// triggered risk factors. Rules are independent; order does not matter.
func (s *SuspiciousActivityScreener) Screen(tx *domain.Transaction, cadAmount decimal.Decimal) []domain.RiskFactor {
	factors := make([]domain.RiskFactor, 0)

	if s.isStructuringAmount(cadAmount) {
		factors = append(factors, domain.RiskFactor{
			Code:        "STRUCTURING_AMOUNT",
			Description: "Transaction amount sits just under the reporting threshold",
			Details:     cadAmount.StringFixed(2),
		})
	}

	if strings.EqualFold(tx.SourceOfFunds, "gift") && cadAmount.GreaterThan(s.giftThreshold) {
		factors = append(factors, domain.RiskFactor{
			Code:        "LARGE_GIFT",
			Description: "Gift declared as source of funds for a large amount",
			Details:     cadAmount.StringFixed(2),
		})
	}

	if tx.ThirdPartyInvolved && strings.TrimSpace(tx.ThirdPartyName) == "" {
		factors = append(factors, domain.RiskFactor{
			Code:        "UNNAMED_THIRD_PARTY",
			Description: "Third party declared but not identified",
		})
	}

	if s.isHighRiskCountry(tx.Country) {
		factors = append(factors, domain.RiskFactor{
			Code:        "HIGH_RISK_JURISDICTION",
			Description: fmt.Sprintf("Transaction involves high-risk jurisdiction %s", strings.ToUpper(tx.Country)),
		})
	}

	return factors
}

func (s *SuspiciousActivityScreener) isStructuringAmount(amount decimal.Decimal) bool {
	for _, a := range s.structuringAmounts {
		if amount.Equal(a) {
			return true
		}
	}
	return false
}

func (s *SuspiciousActivityScreener) isHighRiskCountry(country string) bool {
	if country == "" {
		return false
	}
	return s.highRiskCountries[strings.ToUpper(strings.TrimSpace(country))]
}
