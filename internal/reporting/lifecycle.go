package reporting

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moneyex/compliance-service/internal/config"
	"github.com/moneyex/compliance-service/internal/domain"
	"github.com/moneyex/compliance-service/internal/pkg/logger"
)

// ReportRepository persists regulatory reports. Insert must be an atomic
// check-and-insert keyed on transaction id: when a report already
// references the transaction it returns *domain.StateConflictError, even
// under concurrent calls.
type ReportRepository interface {
	Insert(ctx context.Context, report *domain.RegulatoryReport) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RegulatoryReport, error)
	GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*domain.RegulatoryReport, error)
	Update(ctx context.Context, report *domain.RegulatoryReport) error
	NextSequence(ctx context.Context, year int) (int64, error)
	ListUnfiledDueBefore(ctx context.Context, before time.Time) ([]*domain.RegulatoryReport, error)
}

// SubmissionLedger is the append-only record of filed reports
type SubmissionLedger interface {
	Append(ctx context.Context, record domain.SubmissionRecord) error
	ListBetween(ctx context.Context, from, to time.Time) ([]domain.SubmissionRecord, error)
}

// ReportedNotifier tells the transaction collaborator a transaction has
// been reported. Fired after a successful submission and never awaited.
type ReportedNotifier interface {
	TransactionReported(reportID, transactionID uuid.UUID, reportNumber string, reportedAt time.Time)
}

// TransactionSource looks up transactions for snapshotting
type TransactionSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
}

// CustomerSource looks up customers for snapshotting
type CustomerSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
}

// AmountConverter converts amounts to the reference currency for the
// report snapshot
type AmountConverter interface {
	ToReference(ctx context.Context, amount decimal.Decimal, currency string) (decimal.Decimal, *domain.RateQuote, error)
}

// ReportLifecycleManager drives regulatory reports through their state
// machine: Draft/PendingReview -> Submitted -> Acknowledged or Rejected
type ReportLifecycleManager struct {
	reports      ReportRepository
	ledger       SubmissionLedger
	transactions TransactionSource
	customers    CustomerSource
	rates        AmountConverter
	validator    *SubmissionValidator
	notifier     ReportedNotifier

	dueDays int
	log     *logger.Logger
	now     func() time.Time
}

// NewReportLifecycleManager creates a lifecycle manager from injected
// collaborators
func NewReportLifecycleManager(
	reports ReportRepository,
	ledger SubmissionLedger,
	transactions TransactionSource,
	customers CustomerSource,
	rates AmountConverter,
	notifier ReportedNotifier,
	cfg *config.ComplianceConfig,
	log *logger.Logger,
) *ReportLifecycleManager {
	return &ReportLifecycleManager{
		reports:      reports,
		ledger:       ledger,
		transactions: transactions,
		customers:    customers,
		rates:        rates,
		validator:    NewSubmissionValidator(),
		notifier:     notifier,
		dueDays:      cfg.LCTRDeadlineDays,
		log:          log.Named("report_lifecycle"),
		now:          time.Now,
	}
}

// Create opens a new report in Draft for a transaction, snapshotting the
// transaction and customer data as they stand right now. The snapshot
// never changes afterwards. Creation fails with a conflict when a report
// already references the transaction; the repository enforces this
// atomically so concurrent creates cannot both win.
func (m *ReportLifecycleManager) Create(ctx context.Context, transactionID, customerID uuid.UUID) (*domain.RegulatoryReport, error) {
	if existing, err := m.reports.GetByTransactionID(ctx, transactionID); err == nil && existing != nil {
		return nil, domain.NewDuplicateReportError(transactionID.String())
	}

	tx, err := m.transactions.GetByID(ctx, transactionID)
	if err != nil {
		return nil, lookupError("transaction", transactionID, err)
	}
	if tx == nil {
		return nil, domain.NewNotFoundError("transaction", transactionID.String())
	}

	customer, err := m.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, lookupError("customer", customerID, err)
	}
	if customer == nil {
		return nil, domain.NewNotFoundError("customer", customerID.String())
	}

	cadEquivalent, _, err := m.rates.ToReference(ctx, tx.Amount, tx.Currency)
	if err != nil {
		return nil, domain.NewDependencyUnavailableError("rate_source", err)
	}

	now := m.now()
	year := now.Year()
	seq, err := m.reports.NextSequence(ctx, year)
	if err != nil {
		return nil, domain.NewDependencyUnavailableError("report_sequence", err)
	}

	report := &domain.RegulatoryReport{
		ID:            uuid.New(),
		ReportNumber:  domain.FormatReportNumber(year, seq),
		TransactionID: tx.ID,
		CustomerID:    customer.ID,
		Status:        domain.ReportStatusDraft,
		Transaction: domain.TransactionSnapshot{
			Amount:          tx.Amount,
			Currency:        tx.Currency,
			ToAmount:        tx.ToAmount,
			ToCurrency:      tx.ToCurrency,
			CADEquivalent:   cadEquivalent,
			PaymentMethod:   tx.PaymentMethod,
			SourceOfFunds:   tx.SourceOfFunds,
			Purpose:         tx.Purpose,
			TransactionDate: tx.TransactionDate,
		},
		Customer: domain.CustomerSnapshot{
			FullName:       customer.FullName,
			DateOfBirth:    customer.DateOfBirth,
			Address:        customer.Address,
			Occupation:     customer.Occupation,
			Identification: customer.Identification,
		},
		DueDate:   tx.TransactionDate.AddDate(0, 0, m.dueDays),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := m.reports.Insert(ctx, report); err != nil {
		return nil, err
	}

	m.log.ReportCreated(report.ID.String(), report.ReportNumber, tx.ID.String())
	return report, nil
}

// Update edits report content while the report is still mutable. Once
// the status leaves Draft or PendingReview the edit is refused.
func (m *ReportLifecycleManager) Update(ctx context.Context, id uuid.UUID, req domain.UpdateReportRequest) (*domain.RegulatoryReport, error) {
	report, err := m.getReport(ctx, id)
	if err != nil {
		return nil, err
	}

	if !report.IsMutable() {
		return nil, domain.NewStateConflictError("update", report.Status)
	}

	if req.SourceOfFunds != nil {
		report.Transaction.SourceOfFunds = *req.SourceOfFunds
	}
	if req.Purpose != nil {
		report.Transaction.Purpose = *req.Purpose
	}
	if req.Occupation != nil {
		report.Customer.Occupation = *req.Occupation
	}
	if req.AmendmentNote != nil && *req.AmendmentNote != "" {
		report.AppendAmendment(*req.AmendmentNote, "", m.now())
	}
	report.UpdatedAt = m.now()

	if err := m.reports.Update(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// MarkPendingReview moves a Draft report into PendingReview
func (m *ReportLifecycleManager) MarkPendingReview(ctx context.Context, id uuid.UUID) (*domain.RegulatoryReport, error) {
	report, err := m.getReport(ctx, id)
	if err != nil {
		return nil, err
	}

	if report.Status != domain.ReportStatusDraft {
		return nil, domain.NewStateConflictError("mark pending review", report.Status)
	}

	report.Status = domain.ReportStatusPendingReview
	report.UpdatedAt = m.now()
	if err := m.reports.Update(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// Submit validates the report and, on success, moves it to Submitted,
// stamps the submission, writes the ledger entry and notifies the
// transaction collaborator without waiting for it. A validation failure
// returns the missing items and performs no mutation at all.
func (m *ReportLifecycleManager) Submit(ctx context.Context, id uuid.UUID, submittedBy string) (*domain.RegulatoryReport, error) {
	report, err := m.getReport(ctx, id)
	if err != nil {
		return nil, err
	}

	if !report.IsMutable() {
		return nil, domain.NewStateConflictError("submit", report.Status)
	}

	if missing := m.validator.Validate(report); len(missing) > 0 {
		return nil, domain.NewIncompleteError("report is not complete for submission", missing)
	}

	now := m.now()
	report.Status = domain.ReportStatusSubmitted
	report.SubmittedAt = &now
	report.SubmittedBy = submittedBy
	report.UpdatedAt = now

	if err := m.reports.Update(ctx, report); err != nil {
		return nil, err
	}

	rlog := m.log.WithReport(report.ID.String(), report.ReportNumber)
	if err := m.ledger.Append(ctx, domain.SubmissionRecord{
		ReportID:      report.ID,
		ReportNumber:  report.ReportNumber,
		TransactionID: report.TransactionID,
		CustomerID:    report.CustomerID,
		CADEquivalent: report.Transaction.CADEquivalent,
		CreatedAt:     report.CreatedAt,
		SubmittedAt:   now,
		SubmittedBy:   submittedBy,
	}); err != nil {
		// The submission stands; the ledger entry is recoverable.
		rlog.Warn("ledger append failed", logger.ErrorField(err))
	}

	if m.notifier != nil {
		m.notifier.TransactionReported(report.ID, report.TransactionID, report.ReportNumber, now)
	}

	m.log.ReportSubmitted(report.ID.String(), report.ReportNumber, submittedBy)
	return report, nil
}

// Acknowledge records the regulator's acceptance of a submitted report
func (m *ReportLifecycleManager) Acknowledge(ctx context.Context, id uuid.UUID, externalReference string) (*domain.RegulatoryReport, error) {
	report, err := m.getReport(ctx, id)
	if err != nil {
		return nil, err
	}

	if report.Status != domain.ReportStatusSubmitted {
		return nil, domain.NewStateConflictError("acknowledge", report.Status)
	}

	now := m.now()
	report.Status = domain.ReportStatusAcknowledged
	report.AcknowledgedAt = &now
	report.ExternalReference = externalReference
	report.UpdatedAt = now

	if err := m.reports.Update(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// Reject records the regulator's rejection of a submitted report. The
// reason is preserved as a timestamped amendment entry. There is no
// modeled path from Rejected back to Draft; a rejection is terminal
// apart from further amendment notes.
func (m *ReportLifecycleManager) Reject(ctx context.Context, id uuid.UUID, reason string) (*domain.RegulatoryReport, error) {
	report, err := m.getReport(ctx, id)
	if err != nil {
		return nil, err
	}

	if report.Status != domain.ReportStatusSubmitted {
		return nil, domain.NewStateConflictError("reject", report.Status)
	}

	now := m.now()
	report.Status = domain.ReportStatusRejected
	report.AppendAmendment("rejected by regulator: "+reason, "", now)
	report.UpdatedAt = now

	if err := m.reports.Update(ctx, report); err != nil {
		return nil, err
	}

	m.log.ReportRejected(report.ID.String(), reason)
	return report, nil
}

// AddAmendmentNote appends a note to a rejected report. Rejected reports
// accept further annotations even though their status is terminal.
func (m *ReportLifecycleManager) AddAmendmentNote(ctx context.Context, id uuid.UUID, note, author string) (*domain.RegulatoryReport, error) {
	report, err := m.getReport(ctx, id)
	if err != nil {
		return nil, err
	}

	if !report.IsMutable() && report.Status != domain.ReportStatusRejected {
		return nil, domain.NewStateConflictError("amend", report.Status)
	}

	report.AppendAmendment(note, author, m.now())
	report.UpdatedAt = m.now()
	if err := m.reports.Update(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// Overdue returns unfiled reports whose due date has passed
func (m *ReportLifecycleManager) Overdue(ctx context.Context) ([]*domain.ReportSummary, error) {
	return m.listDueBefore(ctx, m.now())
}

// DueSoon returns unfiled reports due inside the caller's horizon
func (m *ReportLifecycleManager) DueSoon(ctx context.Context, horizon time.Duration) ([]*domain.ReportSummary, error) {
	return m.listDueBefore(ctx, m.now().Add(horizon))
}

func (m *ReportLifecycleManager) listDueBefore(ctx context.Context, before time.Time) ([]*domain.ReportSummary, error) {
	reports, err := m.reports.ListUnfiledDueBefore(ctx, before)
	if err != nil {
		return nil, domain.NewDependencyUnavailableError("report_store", err)
	}

	now := m.now()
	summaries := make([]*domain.ReportSummary, 0, len(reports))
	for _, r := range reports {
		summaries = append(summaries, r.ToSummary(now))
	}
	return summaries, nil
}

func (m *ReportLifecycleManager) getReport(ctx context.Context, id uuid.UUID) (*domain.RegulatoryReport, error) {
	report, err := m.reports.GetByID(ctx, id)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return nil, err
		}
		return nil, domain.NewDependencyUnavailableError("report_store", err)
	}
	if report == nil {
		return nil, domain.NewNotFoundError("report", id.String())
	}
	return report, nil
}

func lookupError(entity string, id uuid.UUID, err error) error {
	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		return err
	}
	return domain.NewDependencyUnavailableError(entity+"_lookup", err)
}
