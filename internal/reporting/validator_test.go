package reporting

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/moneyex/compliance-service/internal/domain"
)

func completeReport() *domain.RegulatoryReport {
	return &domain.RegulatoryReport{
		Customer: domain.CustomerSnapshot{
			FullName:    "Anne-Marie Leclerc",
			DateOfBirth: time.Date(1990, 4, 18, 0, 0, 0, 0, time.UTC),
			Address: domain.Address{
				Street:     "300 Rue Sainte-Catherine",
				City:       "Montreal",
				Province:   "QC",
				PostalCode: "H2X 3X6",
				Country:    "CA",
			},
			Occupation: "engineer",
			Identification: domain.Identification{
				Type:       "PASSPORT",
				Number:     "CA998877",
				ExpiryDate: time.Now().AddDate(4, 0, 0),
			},
		},
		Transaction: domain.TransactionSnapshot{
			Amount:          decimal.NewFromInt(14000),
			Currency:        "CAD",
			CADEquivalent:   decimal.NewFromInt(14000),
			PaymentMethod:   domain.PaymentMethodCash,
			SourceOfFunds:   "sale of vehicle",
			Purpose:         "currency exchange",
			TransactionDate: time.Now().Add(-48 * time.Hour),
		},
	}
}

func TestValidateCompleteReport(t *testing.T) {
	v := NewSubmissionValidator()
	assert.Empty(t, v.Validate(completeReport()))
}

func TestValidateMissingCustomerFields(t *testing.T) {
	v := NewSubmissionValidator()

	report := completeReport()
	report.Customer.FullName = ""
	report.Customer.Occupation = ""
	report.Customer.Identification.ExpiryDate = time.Time{}

	missing := v.Validate(report)
	assert.ElementsMatch(t, []string{
		"customer.full_name",
		"customer.occupation",
		"customer.identification.expiry_date",
	}, missing)
}

func TestValidateMissingTransactionFields(t *testing.T) {
	v := NewSubmissionValidator()

	report := completeReport()
	report.Transaction.SourceOfFunds = ""
	report.Transaction.Purpose = ""
	report.Transaction.CADEquivalent = decimal.Zero

	missing := v.Validate(report)
	assert.ElementsMatch(t, []string{
		"transaction.source_of_funds",
		"transaction.purpose_of_transaction",
		"transaction.cad_equivalent",
	}, missing)
}

func TestValidateNegativeAmount(t *testing.T) {
	v := NewSubmissionValidator()

	report := completeReport()
	report.Transaction.Amount = decimal.NewFromInt(-5)

	assert.Contains(t, v.Validate(report), "transaction.amount")
}
