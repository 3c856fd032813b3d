package compliance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/moneyex/compliance-service/internal/config"
	"github.com/moneyex/compliance-service/internal/domain"
)

func testComplianceConfig() *config.ComplianceConfig {
	return &config.ComplianceConfig{
		LCTRThreshold:     10000,
		EnhancedThreshold: 3000,
		LCTRDeadlineDays:  15,
		STRDeadlineDays:   30,
		RetentionYears:    5,
		RiskReviewDays:    90,
	}
}

func TestClassifyCashAtThreshold(t *testing.T) {
	c := NewTransactionClassifier(testComplianceConfig())

	level := c.Classify(decimal.NewFromInt(10000), domain.PaymentMethodCash)
	assert.Equal(t, domain.LevelLCTRRequired, level)

	level = c.Classify(decimal.NewFromInt(12000), domain.PaymentMethodCash)
	assert.Equal(t, domain.LevelLCTRRequired, level)
}

func TestClassifyJustUnderThreshold(t *testing.T) {
	c := NewTransactionClassifier(testComplianceConfig())

	level := c.Classify(decimal.NewFromFloat(9999.99), domain.PaymentMethodCash)
	assert.Equal(t, domain.LevelEnhancedRecords, level)
}

func TestClassifyNonCashNeverLCTR(t *testing.T) {
	c := NewTransactionClassifier(testComplianceConfig())

	level := c.Classify(decimal.NewFromInt(50000), domain.PaymentMethodWire)
	assert.Equal(t, domain.LevelEnhancedRecords, level)
}

func TestClassifySmallAmount(t *testing.T) {
	c := NewTransactionClassifier(testComplianceConfig())

	level := c.Classify(decimal.NewFromInt(500), domain.PaymentMethodDebit)
	assert.Equal(t, domain.LevelBasicRecords, level)
}

func TestClassifyCaseInsensitiveCashLabel(t *testing.T) {
	c := NewTransactionClassifier(testComplianceConfig())

	level := c.Classify(decimal.NewFromInt(10000), domain.PaymentMethod("cash deposit"))
	assert.Equal(t, domain.LevelLCTRRequired, level)
}

func TestClassifyIsDeterministic(t *testing.T) {
	c := NewTransactionClassifier(testComplianceConfig())

	amount := decimal.NewFromFloat(10000)
	first := c.Classify(amount, domain.PaymentMethodCash)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, c.Classify(amount, domain.PaymentMethodCash))
	}
}
