package compliance

import (
	"github.com/shopspring/decimal"

	"github.com/moneyex/compliance-service/internal/config"
	"github.com/moneyex/compliance-service/internal/domain"
)

// TransactionClassifier determines the compliance obligation for a
// transaction from its CAD-equivalent amount and payment method.
// Classification is a pure function of its inputs.
type TransactionClassifier struct {
	lctrThreshold     decimal.Decimal
	enhancedThreshold decimal.Decimal
}

// NewTransactionClassifier creates a classifier from the statutory thresholds
func NewTransactionClassifier(cfg *config.ComplianceConfig) *TransactionClassifier {
	return &TransactionClassifier{
		lctrThreshold:     decimal.NewFromFloat(cfg.LCTRThreshold),
		enhancedThreshold: decimal.NewFromFloat(cfg.EnhancedThreshold),
	}
}

// Classify returns the compliance level for a CAD-equivalent amount and
// payment method. Cash at or above the LCTR threshold requires a large
// cash transaction report; amounts at or above the enhanced threshold
// require enhanced records regardless of tender.
func (c *TransactionClassifier) Classify(cadAmount decimal.Decimal, method domain.PaymentMethod) domain.ComplianceLevel {
	if method.IsCash() && cadAmount.GreaterThanOrEqual(c.lctrThreshold) {
		return domain.LevelLCTRRequired
	}
	if cadAmount.GreaterThanOrEqual(c.enhancedThreshold) {
		return domain.LevelEnhancedRecords
	}
	return domain.LevelBasicRecords
}
