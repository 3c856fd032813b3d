package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReportStatus represents the lifecycle state of a regulatory report
type ReportStatus string

const (
	ReportStatusDraft         ReportStatus = "DRAFT"
	ReportStatusPendingReview ReportStatus = "PENDING_REVIEW"
	ReportStatusSubmitted     ReportStatus = "SUBMITTED"
	ReportStatusAcknowledged  ReportStatus = "ACKNOWLEDGED"
	ReportStatusRejected      ReportStatus = "REJECTED"
)

// TransactionSnapshot is the immutable copy of transaction data captured
// when the report is created. Later changes to the transaction record
// never flow into an existing report.
type TransactionSnapshot struct {
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	ToAmount        decimal.Decimal `json:"to_amount"`
	ToCurrency      string          `json:"to_currency"`
	CADEquivalent   decimal.Decimal `json:"cad_equivalent"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	SourceOfFunds   string          `json:"source_of_funds,omitempty"`
	Purpose         string          `json:"purpose,omitempty"`
	TransactionDate time.Time       `json:"transaction_date"`
}

// CustomerSnapshot is the immutable copy of customer data captured when
// the report is created
type CustomerSnapshot struct {
	FullName       string         `json:"full_name"`
	DateOfBirth    time.Time      `json:"date_of_birth"`
	Address        Address        `json:"address"`
	Occupation     string         `json:"occupation,omitempty"`
	Identification Identification `json:"identification"`
}

// Amendment is an append-only annotation on a report
type Amendment struct {
	Note      string    `json:"note"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Attachment references supporting material filed with a report
type Attachment struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Reference string    `json:"reference"`
	AddedAt   time.Time `json:"added_at"`
}

// RegulatoryReport represents a large cash transaction report driven
// through the filing state machine
type RegulatoryReport struct {
	ID           uuid.UUID `json:"id" db:"id"`
	ReportNumber string    `json:"report_number" db:"report_number"`

	TransactionID uuid.UUID `json:"transaction_id" db:"transaction_id"`
	CustomerID    uuid.UUID `json:"customer_id" db:"customer_id"`

	Status ReportStatus `json:"status" db:"status"`

	Transaction TransactionSnapshot `json:"transaction" db:"transaction"`
	Customer    CustomerSnapshot    `json:"customer" db:"customer"`

	// Dates
	DueDate        time.Time  `json:"due_date" db:"due_date"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	SubmittedAt    *time.Time `json:"submitted_at,omitempty" db:"submitted_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty" db:"acknowledged_at"`

	// Submission
	SubmittedBy       string `json:"submitted_by,omitempty" db:"submitted_by"`
	ExternalReference string `json:"external_reference,omitempty" db:"external_reference"`

	Amendments  []Amendment  `json:"amendments,omitempty" db:"amendments"`
	Attachments []Attachment `json:"attachments,omitempty" db:"attachments"`

	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FormatReportNumber renders the sequential filing number for a year
func FormatReportNumber(year int, seq int64) string {
	return fmt.Sprintf("LCTR-%d-%06d", year, seq)
}

// IsMutable returns true while report content may still be edited
func (r *RegulatoryReport) IsMutable() bool {
	return r.Status == ReportStatusDraft || r.Status == ReportStatusPendingReview
}

// IsFiled returns true once the report has reached the regulator
func (r *RegulatoryReport) IsFiled() bool {
	return r.Status == ReportStatusSubmitted || r.Status == ReportStatusAcknowledged
}

// IsOverdue returns true if the report is unfiled past its due date
func (r *RegulatoryReport) IsOverdue(now time.Time) bool {
	return !r.IsFiled() && now.After(r.DueDate)
}

// IsDueWithin returns true if the report is unfiled and due inside the horizon
func (r *RegulatoryReport) IsDueWithin(now time.Time, horizon time.Duration) bool {
	return !r.IsFiled() && r.DueDate.Before(now.Add(horizon))
}

// AppendAmendment adds a timestamped note to the amendment log
func (r *RegulatoryReport) AppendAmendment(note, author string, at time.Time) {
	r.Amendments = append(r.Amendments, Amendment{
		Note:      note,
		Author:    author,
		CreatedAt: at,
	})
}

// UpdateReportRequest carries the editable report fields. Nil fields are
// left untouched.
type UpdateReportRequest struct {
	SourceOfFunds *string `json:"source_of_funds,omitempty"`
	Purpose       *string `json:"purpose,omitempty"`
	Occupation    *string `json:"occupation,omitempty"`
	AmendmentNote *string `json:"amendment_note,omitempty"`
}

// ReportSummary is a lean DTO for list views
type ReportSummary struct {
	ID            uuid.UUID       `json:"id"`
	ReportNumber  string          `json:"report_number"`
	TransactionID uuid.UUID       `json:"transaction_id"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	Status        ReportStatus    `json:"status"`
	CADEquivalent decimal.Decimal `json:"cad_equivalent"`
	DueDate       time.Time       `json:"due_date"`
	IsOverdue     bool            `json:"is_overdue"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToSummary converts RegulatoryReport to ReportSummary
func (r *RegulatoryReport) ToSummary(now time.Time) *ReportSummary {
	return &ReportSummary{
		ID:            r.ID,
		ReportNumber:  r.ReportNumber,
		TransactionID: r.TransactionID,
		CustomerID:    r.CustomerID,
		Status:        r.Status,
		CADEquivalent: r.Transaction.CADEquivalent,
		DueDate:       r.DueDate,
		IsOverdue:     r.IsOverdue(now),
		CreatedAt:     r.CreatedAt,
	}
}

// SubmissionRecord is the append-only ledger entry written when a report
// is submitted, read back by the audit reporter
type SubmissionRecord struct {
	ReportID      uuid.UUID       `json:"report_id" db:"report_id"`
	ReportNumber  string          `json:"report_number" db:"report_number"`
	TransactionID uuid.UUID       `json:"transaction_id" db:"transaction_id"`
	CustomerID    uuid.UUID       `json:"customer_id" db:"customer_id"`
	CADEquivalent decimal.Decimal `json:"cad_equivalent" db:"cad_equivalent"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	SubmittedAt   time.Time       `json:"submitted_at" db:"submitted_at"`
	SubmittedBy   string          `json:"submitted_by" db:"submitted_by"`
}
