package reporting

import (
	"github.com/moneyex/compliance-service/internal/domain"
)

// SubmissionValidator enforces the full completeness rule set a report
// must satisfy before submission. This is deliberately stricter than the
// advisory due-diligence check: every identity, address and
// identification field is mandatory, amounts must be positive, and both
// source of funds and purpose of transaction must be stated.
type SubmissionValidator struct{}

// NewSubmissionValidator creates a submission validator
func NewSubmissionValidator() *SubmissionValidator {
	return &SubmissionValidator{}
}

// Validate returns the list of missing items, empty when the report is
// ready to submit
func (v *SubmissionValidator) Validate(report *domain.RegulatoryReport) []string {
	missing := make([]string, 0)

	c := report.Customer
	if c.FullName == "" {
		missing = append(missing, "customer.full_name")
	}
	if c.DateOfBirth.IsZero() {
		missing = append(missing, "customer.date_of_birth")
	}
	if c.Address.Street == "" {
		missing = append(missing, "customer.address.street")
	}
	if c.Address.City == "" {
		missing = append(missing, "customer.address.city")
	}
	if c.Address.Province == "" {
		missing = append(missing, "customer.address.province")
	}
	if c.Address.PostalCode == "" {
		missing = append(missing, "customer.address.postal_code")
	}
	if c.Address.Country == "" {
		missing = append(missing, "customer.address.country")
	}
	if c.Occupation == "" {
		missing = append(missing, "customer.occupation")
	}
	if c.Identification.Type == "" {
		missing = append(missing, "customer.identification.type")
	}
	if c.Identification.Number == "" {
		missing = append(missing, "customer.identification.number")
	}
	if c.Identification.ExpiryDate.IsZero() {
		missing = append(missing, "customer.identification.expiry_date")
	}

	t := report.Transaction
	if !t.Amount.IsPositive() {
		missing = append(missing, "transaction.amount")
	}
	if t.Currency == "" {
		missing = append(missing, "transaction.currency")
	}
	if !t.CADEquivalent.IsPositive() {
		missing = append(missing, "transaction.cad_equivalent")
	}
	if t.TransactionDate.IsZero() {
		missing = append(missing, "transaction.transaction_date")
	}
	if t.SourceOfFunds == "" {
		missing = append(missing, "transaction.source_of_funds")
	}
	if t.Purpose == "" {
		missing = append(missing, "transaction.purpose_of_transaction")
	}

	return missing
}
