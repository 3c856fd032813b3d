package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ComplianceLevel represents the record-keeping and reporting obligation
// triggered by a transaction
type ComplianceLevel string

const (
	LevelNone            ComplianceLevel = "NONE"
	LevelBasicRecords    ComplianceLevel = "BASIC_RECORDS"
	LevelEnhancedRecords ComplianceLevel = "ENHANCED_RECORDS"
	LevelLCTRRequired    ComplianceLevel = "LCTR_REQUIRED"
	LevelSTRRequired     ComplianceLevel = "STR_REQUIRED"
)

// RequiresEnhancedRecords returns true for levels at or above enhanced
func (l ComplianceLevel) RequiresEnhancedRecords() bool {
	return l == LevelEnhancedRecords || l == LevelLCTRRequired || l == LevelSTRRequired
}

// ActionSeverity distinguishes actions that block compliance from
// standing record-keeping advisories
type ActionSeverity string

const (
	SeverityBlocking ActionSeverity = "BLOCKING"
	SeverityAdvisory ActionSeverity = "ADVISORY"
)

// RequiredAction is a single remediation or record-keeping step
type RequiredAction struct {
	Code        string         `json:"code"`
	Description string         `json:"description"`
	Severity    ActionSeverity `json:"severity"`
}

// RegulatoryFlag marks an assessment for follow-up handling
type RegulatoryFlag string

const (
	FlagSuspiciousActivityReview RegulatoryFlag = "SUSPICIOUS_ACTIVITY_REVIEW"
	FlagLCTRFiling               RegulatoryFlag = "LCTR_FILING"
	FlagEnhancedDueDiligence     RegulatoryFlag = "ENHANCED_DUE_DILIGENCE"
)

// Deadlines carries the statutory dates computed for an assessment.
// RetentionDate is always set; the filing deadlines are conditional.
type Deadlines struct {
	RetentionDate time.Time  `json:"retention_date"`
	LCTRDeadline  *time.Time `json:"lctr_deadline,omitempty"`
	STRDeadline   *time.Time `json:"str_deadline,omitempty"`
}

// RateQuote is the conversion rate snapshot recorded on an assessment so
// threshold decisions stay reproducible for audit
type RateQuote struct {
	FromCurrency string          `json:"from_currency"`
	ToCurrency   string          `json:"to_currency"`
	Rate         decimal.Decimal `json:"rate"`
	Version      string          `json:"version"`
	RetrievedAt  time.Time       `json:"retrieved_at"`
}

// RiskFactor is a qualitative indicator raised during screening
type RiskFactor struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Details     string `json:"details,omitempty"`
}

// ComplianceAssessment is the merged outcome of classifying, checking and
// screening a single transaction
type ComplianceAssessment struct {
	ID            uuid.UUID `json:"id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	CustomerID    uuid.UUID `json:"customer_id"`

	Level ComplianceLevel `json:"level"`

	// CAD-equivalent amount and the rate used to derive it
	CADEquivalent decimal.Decimal `json:"cad_equivalent"`
	Rate          *RateQuote      `json:"rate,omitempty"`

	RequiredActions  []RequiredAction `json:"required_actions"`
	MissingFields    []string         `json:"missing_fields"`
	MissingDocuments []string         `json:"missing_documents"`
	RiskFactors      []RiskFactor     `json:"risk_factors"`
	Flags            []RegulatoryFlag `json:"flags"`

	Deadlines Deadlines `json:"deadlines"`

	// Incomplete marks assessments where a dependent lookup failed; an
	// incomplete assessment is never reported as non-compliant.
	Incomplete        bool     `json:"incomplete"`
	IncompleteReasons []string `json:"incomplete_reasons,omitempty"`

	AssessedAt time.Time `json:"assessed_at"`
}

// IsCompliant returns true when nothing blocking remains. Advisory
// record-keeping actions do not count against compliance, and an
// incomplete assessment cannot be declared compliant either way.
func (a *ComplianceAssessment) IsCompliant() bool {
	if a.Incomplete {
		return false
	}
	if len(a.MissingFields) > 0 || len(a.MissingDocuments) > 0 {
		return false
	}
	for _, action := range a.RequiredActions {
		if action.Severity == SeverityBlocking {
			return false
		}
	}
	return true
}

// HasFlag returns true if the assessment carries the given flag
func (a *ComplianceAssessment) HasFlag(flag RegulatoryFlag) bool {
	for _, f := range a.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// AddFlag appends a flag if not already present
func (a *ComplianceAssessment) AddFlag(flag RegulatoryFlag) {
	if !a.HasFlag(flag) {
		a.Flags = append(a.Flags, flag)
	}
}
