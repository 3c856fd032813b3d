package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is the tender label captured at the till
type PaymentMethod string

const (
	PaymentMethodCash          PaymentMethod = "CASH"
	PaymentMethodDebit         PaymentMethod = "DEBIT"
	PaymentMethodCredit        PaymentMethod = "CREDIT"
	PaymentMethodWire          PaymentMethod = "WIRE"
	PaymentMethodBankDraft     PaymentMethod = "BANK_DRAFT"
	PaymentMethodEmailTransfer PaymentMethod = "EMAIL_TRANSFER"
)

// IsCash returns true if the method is a cash tender. Matching is
// case-insensitive and tolerant of composite labels ("cash deposit").
func (m PaymentMethod) IsCash() bool {
	return strings.Contains(strings.ToLower(string(m)), "cash")
}

// Transaction represents a currency-exchange transaction as received
// from the transaction service
type Transaction struct {
	ID         uuid.UUID `json:"id" db:"id"`
	CustomerID uuid.UUID `json:"customer_id" db:"customer_id"`

	// Amounts
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	Currency   string          `json:"currency" db:"currency"`
	ToAmount   decimal.Decimal `json:"to_amount" db:"to_amount"`
	ToCurrency string          `json:"to_currency" db:"to_currency"`

	// Context
	PaymentMethod PaymentMethod `json:"payment_method" db:"payment_method"`
	SourceOfFunds string        `json:"source_of_funds,omitempty" db:"source_of_funds"`
	Purpose       string        `json:"purpose,omitempty" db:"purpose"`
	Country       string        `json:"country,omitempty" db:"country"`

	// Third party conducting on behalf of another person
	ThirdPartyInvolved bool   `json:"third_party_involved" db:"third_party_involved"`
	ThirdPartyName     string `json:"third_party_name,omitempty" db:"third_party_name"`

	// Timestamps
	TransactionDate time.Time `json:"transaction_date" db:"transaction_date"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// KYCStatus represents the customer's identity-verification disposition
type KYCStatus string

const (
	KYCStatusPending  KYCStatus = "PENDING"
	KYCStatusVerified KYCStatus = "VERIFIED"
	KYCStatusRejected KYCStatus = "REJECTED"
)

// Address is a customer's civic address
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// IsComplete returns true when every address line is present
func (a Address) IsComplete() bool {
	return a.Street != "" && a.City != "" && a.Province != "" &&
		a.PostalCode != "" && a.Country != ""
}

// Identification is a government-issued identity document on file
type Identification struct {
	Type       string    `json:"type"`
	Number     string    `json:"number"`
	ExpiryDate time.Time `json:"expiry_date"`
}

// IsExpired reports whether the identification lapsed before now
func (i Identification) IsExpired(now time.Time) bool {
	return !i.ExpiryDate.IsZero() && i.ExpiryDate.Before(now)
}

// Customer represents a retail currency-exchange customer
type Customer struct {
	ID uuid.UUID `json:"id" db:"id"`

	// Identity
	FullName    string    `json:"full_name" db:"full_name"`
	DateOfBirth time.Time `json:"date_of_birth" db:"date_of_birth"`
	Address     Address   `json:"address" db:"address"`

	// Due diligence
	Occupation     string         `json:"occupation,omitempty" db:"occupation"`
	SourceOfFunds  string         `json:"source_of_funds,omitempty" db:"source_of_funds"`
	Identification Identification `json:"identification" db:"identification"`

	// Risk
	RiskRating RiskRating `json:"risk_rating" db:"risk_rating"`
	KYCStatus  KYCStatus  `json:"kyc_status" db:"kyc_status"`

	// Activity aggregates maintained by the transaction service
	TotalTransactionVolume decimal.Decimal `json:"total_transaction_volume" db:"total_transaction_volume"`
	TransactionCount       int             `json:"transaction_count" db:"transaction_count"`
	LastTransactionAt      *time.Time      `json:"last_transaction_at,omitempty" db:"last_transaction_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AccountAgeDays returns the age of the customer relationship in days
func (c *Customer) AccountAgeDays(now time.Time) int {
	return int(now.Sub(c.CreatedAt).Hours() / 24)
}

// Document represents a supporting document held for a customer
type Document struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	CustomerID uuid.UUID  `json:"customer_id" db:"customer_id"`
	Type       string     `json:"type" db:"type"`
	Verified   bool       `json:"verified" db:"verified"`
	VerifiedAt *time.Time `json:"verified_at,omitempty" db:"verified_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// CountVerified returns the number of verified documents in the slice
func CountVerified(docs []Document) int {
	n := 0
	for _, d := range docs {
		if d.Verified {
			n++
		}
	}
	return n
}

// HasVerifiedType returns true if a verified document of the given type exists
func HasVerifiedType(docs []Document, docType string) bool {
	for _, d := range docs {
		if d.Verified && strings.EqualFold(d.Type, docType) {
			return true
		}
	}
	return false
}
