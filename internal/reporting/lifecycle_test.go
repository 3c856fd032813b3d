package reporting

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneyex/compliance-service/internal/config"
	"github.com/moneyex/compliance-service/internal/domain"
	"github.com/moneyex/compliance-service/internal/pkg/logger"
	"github.com/moneyex/compliance-service/internal/store/memory"
)

type identityConverter struct{}

func (identityConverter) ToReference(_ context.Context, amount decimal.Decimal, currency string) (decimal.Decimal, *domain.RateQuote, error) {
	return amount, &domain.RateQuote{
		FromCurrency: currency,
		ToCurrency:   "CAD",
		Rate:         decimal.NewFromInt(1),
		Version:      "static-v1",
		RetrievedAt:  time.Now(),
	}, nil
}

type capturedNotification struct {
	reportID      uuid.UUID
	transactionID uuid.UUID
	reportNumber  string
	reportedAt    time.Time
}

type captureNotifier struct {
	mu    sync.Mutex
	calls []capturedNotification
}

func (n *captureNotifier) TransactionReported(reportID, transactionID uuid.UUID, reportNumber string, reportedAt time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, capturedNotification{reportID, transactionID, reportNumber, reportedAt})
}

func (n *captureNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

type lifecycleFixture struct {
	manager      *ReportLifecycleManager
	reports      *memory.ReportStore
	ledger       *memory.Ledger
	transactions *memory.TransactionStore
	customers    *memory.CustomerStore
	notifier     *captureNotifier

	tx       *domain.Transaction
	customer *domain.Customer
}

func testLifecycleConfig() *config.ComplianceConfig {
	return &config.ComplianceConfig{
		LCTRThreshold:     10000,
		EnhancedThreshold: 3000,
		LCTRDeadlineDays:  15,
		STRDeadlineDays:   30,
		RetentionYears:    5,
		DueSoonHorizon:    72 * time.Hour,
	}
}

func reportableCustomer() *domain.Customer {
	return &domain.Customer{
		ID:          uuid.New(),
		FullName:    "Marcus Oduya",
		DateOfBirth: time.Date(1979, 2, 3, 0, 0, 0, 0, time.UTC),
		Address: domain.Address{
			Street:     "120 King St W",
			City:       "Hamilton",
			Province:   "ON",
			PostalCode: "L8P 4V2",
			Country:    "CA",
		},
		Occupation: "restaurateur",
		Identification: domain.Identification{
			Type:       "DRIVERS_LICENCE",
			Number:     "O1234-56789-01234",
			ExpiryDate: time.Now().AddDate(2, 0, 0),
		},
		KYCStatus: domain.KYCStatusVerified,
		CreatedAt: time.Now().AddDate(-3, 0, 0),
	}
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()

	f := &lifecycleFixture{
		reports:      memory.NewReportStore(),
		ledger:       memory.NewLedger(),
		transactions: memory.NewTransactionStore(),
		customers:    memory.NewCustomerStore(),
		notifier:     &captureNotifier{},
	}

	f.customer = reportableCustomer()
	f.tx = &domain.Transaction{
		ID:              uuid.New(),
		CustomerID:      f.customer.ID,
		Amount:          decimal.NewFromInt(15000),
		Currency:        "CAD",
		ToAmount:        decimal.NewFromInt(11000),
		ToCurrency:      "USD",
		PaymentMethod:   domain.PaymentMethodCash,
		SourceOfFunds:   "business revenue",
		Purpose:         "supplier payment",
		TransactionDate: time.Now().Add(-24 * time.Hour),
	}
	f.transactions.Put(f.tx)
	f.customers.Put(f.customer)

	f.manager = NewReportLifecycleManager(
		f.reports, f.ledger, f.transactions, f.customers,
		identityConverter{}, f.notifier,
		testLifecycleConfig(), logger.NewNop(),
	)
	return f
}

func (f *lifecycleFixture) createReport(t *testing.T) *domain.RegulatoryReport {
	t.Helper()
	report, err := f.manager.Create(context.Background(), f.tx.ID, f.customer.ID)
	require.NoError(t, err)
	return report
}

func (f *lifecycleFixture) submittedReport(t *testing.T) *domain.RegulatoryReport {
	t.Helper()
	report := f.createReport(t)
	submitted, err := f.manager.Submit(context.Background(), report.ID, "compliance officer")
	require.NoError(t, err)
	return submitted
}

func TestCreateReportSnapshotsAndNumbers(t *testing.T) {
	f := newLifecycleFixture(t)

	report := f.createReport(t)

	assert.Equal(t, domain.ReportStatusDraft, report.Status)
	assert.Regexp(t, `^LCTR-\d{4}-000001$`, report.ReportNumber)
	assert.Equal(t, f.tx.ID, report.TransactionID)
	assert.Equal(t, f.customer.FullName, report.Customer.FullName)
	assert.True(t, f.tx.Amount.Equal(report.Transaction.Amount))
	assert.Equal(t, f.tx.TransactionDate.AddDate(0, 0, 15), report.DueDate)
}

func TestCreateReportSnapshotIsImmutable(t *testing.T) {
	f := newLifecycleFixture(t)

	report := f.createReport(t)

	// A later change to the source record never reaches the report
	f.customer.FullName = "Someone Else"
	f.customers.Put(f.customer)

	stored, err := f.reports.GetByID(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, "Marcus Oduya", stored.Customer.FullName)
}

func TestCreateDuplicateReportConflicts(t *testing.T) {
	f := newLifecycleFixture(t)

	f.createReport(t)
	_, err := f.manager.Create(context.Background(), f.tx.ID, f.customer.ID)

	var conflict *domain.StateConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestConcurrentCreateHasOneWinner(t *testing.T) {
	f := newLifecycleFixture(t)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.manager.Create(context.Background(), f.tx.ID, f.customer.ID)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			var conflict *domain.StateConflictError
			assert.ErrorAs(t, err, &conflict)
		}
	}
	assert.Equal(t, 1, winners)
}

func TestCreateReportMissingTransaction(t *testing.T) {
	f := newLifecycleFixture(t)

	_, err := f.manager.Create(context.Background(), uuid.New(), f.customer.ID)

	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "transaction", notFound.Entity)
}

func TestReportNumbersAreSequentialWithinYear(t *testing.T) {
	f := newLifecycleFixture(t)

	first := f.createReport(t)

	tx2 := &domain.Transaction{
		ID:              uuid.New(),
		CustomerID:      f.customer.ID,
		Amount:          decimal.NewFromInt(11000),
		Currency:        "CAD",
		PaymentMethod:   domain.PaymentMethodCash,
		SourceOfFunds:   "savings",
		Purpose:         "travel",
		TransactionDate: time.Now(),
	}
	f.transactions.Put(tx2)

	second, err := f.manager.Create(context.Background(), tx2.ID, f.customer.ID)
	require.NoError(t, err)

	year := time.Now().Year()
	assert.Equal(t, domain.FormatReportNumber(year, 1), first.ReportNumber)
	assert.Equal(t, domain.FormatReportNumber(year, 2), second.ReportNumber)
}

func TestUpdateDraftReport(t *testing.T) {
	f := newLifecycleFixture(t)
	report := f.createReport(t)

	purpose := "property purchase"
	note := "purpose corrected per teller"
	updated, err := f.manager.Update(context.Background(), report.ID, domain.UpdateReportRequest{
		Purpose:       &purpose,
		AmendmentNote: &note,
	})
	require.NoError(t, err)

	assert.Equal(t, purpose, updated.Transaction.Purpose)
	require.Len(t, updated.Amendments, 1)
	assert.Equal(t, note, updated.Amendments[0].Note)
	// Untouched fields survive
	assert.Equal(t, "business revenue", updated.Transaction.SourceOfFunds)
}

func TestUpdateSubmittedReportRefused(t *testing.T) {
	f := newLifecycleFixture(t)
	report := f.submittedReport(t)

	purpose := "changed"
	_, err := f.manager.Update(context.Background(), report.ID, domain.UpdateReportRequest{Purpose: &purpose})

	var conflict *domain.StateConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestMarkPendingReview(t *testing.T) {
	f := newLifecycleFixture(t)
	report := f.createReport(t)

	reviewed, err := f.manager.MarkPendingReview(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportStatusPendingReview, reviewed.Status)

	// PendingReview reports still submit
	submitted, err := f.manager.Submit(context.Background(), reviewed.ID, "officer")
	require.NoError(t, err)
	assert.Equal(t, domain.ReportStatusSubmitted, submitted.Status)
}

func TestSubmitStampsAndNotifies(t *testing.T) {
	f := newLifecycleFixture(t)
	report := f.createReport(t)

	submitted, err := f.manager.Submit(context.Background(), report.ID, "compliance officer")
	require.NoError(t, err)

	assert.Equal(t, domain.ReportStatusSubmitted, submitted.Status)
	require.NotNil(t, submitted.SubmittedAt)
	assert.Equal(t, "compliance officer", submitted.SubmittedBy)

	// Ledger entry written
	records, err := f.ledger.ListBetween(context.Background(),
		time.Now().Add(-time.Minute), time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, submitted.ReportNumber, records[0].ReportNumber)
	assert.Equal(t, "compliance officer", records[0].SubmittedBy)

	// Collaborator notified exactly once
	require.Equal(t, 1, f.notifier.count())
	assert.Equal(t, submitted.ID, f.notifier.calls[0].reportID)
	assert.Equal(t, f.tx.ID, f.notifier.calls[0].transactionID)
}

func TestSubmitIncompleteReportMutatesNothing(t *testing.T) {
	f := newLifecycleFixture(t)

	// No purpose recorded on the transaction
	f.tx.Purpose = ""
	f.transactions.Put(f.tx)
	report := f.createReport(t)

	_, err := f.manager.Submit(context.Background(), report.ID, "officer")

	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Missing, "transaction.purpose_of_transaction")

	// The stored report is untouched
	stored, storeErr := f.reports.GetByID(context.Background(), report.ID)
	require.NoError(t, storeErr)
	assert.Equal(t, domain.ReportStatusDraft, stored.Status)
	assert.Nil(t, stored.SubmittedAt)
	assert.Empty(t, stored.SubmittedBy)

	// Nothing reached the ledger or the notifier
	records, _ := f.ledger.ListBetween(context.Background(),
		time.Now().Add(-time.Minute), time.Now().Add(time.Minute))
	assert.Empty(t, records)
	assert.Zero(t, f.notifier.count())
}

func TestSubmitTwiceConflicts(t *testing.T) {
	f := newLifecycleFixture(t)
	report := f.submittedReport(t)

	_, err := f.manager.Submit(context.Background(), report.ID, "officer")

	var conflict *domain.StateConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 1, f.notifier.count())
}

func TestAcknowledgeSubmittedReport(t *testing.T) {
	f := newLifecycleFixture(t)
	report := f.submittedReport(t)

	acked, err := f.manager.Acknowledge(context.Background(), report.ID, "FINTRAC-REF-991")
	require.NoError(t, err)

	assert.Equal(t, domain.ReportStatusAcknowledged, acked.Status)
	require.NotNil(t, acked.AcknowledgedAt)
	assert.Equal(t, "FINTRAC-REF-991", acked.ExternalReference)
}

func TestAcknowledgeDraftRefused(t *testing.T) {
	f := newLifecycleFixture(t)
	report := f.createReport(t)

	_, err := f.manager.Acknowledge(context.Background(), report.ID, "ref")

	var conflict *domain.StateConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestRejectPreservesReason(t *testing.T) {
	f := newLifecycleFixture(t)
	report := f.submittedReport(t)

	rejected, err := f.manager.Reject(context.Background(), report.ID, "incomplete conductor information")
	require.NoError(t, err)

	assert.Equal(t, domain.ReportStatusRejected, rejected.Status)
	require.Len(t, rejected.Amendments, 1)
	assert.Equal(t, "rejected by regulator: incomplete conductor information", rejected.Amendments[0].Note)
}

func TestRejectedReportIsTerminal(t *testing.T) {
	f := newLifecycleFixture(t)
	report := f.submittedReport(t)

	_, err := f.manager.Reject(context.Background(), report.ID, "first reason")
	require.NoError(t, err)

	var conflict *domain.StateConflictError

	_, err = f.manager.Reject(context.Background(), report.ID, "again")
	require.ErrorAs(t, err, &conflict)

	_, err = f.manager.Submit(context.Background(), report.ID, "officer")
	require.ErrorAs(t, err, &conflict)

	purpose := "edit"
	_, err = f.manager.Update(context.Background(), report.ID, domain.UpdateReportRequest{Purpose: &purpose})
	require.ErrorAs(t, err, &conflict)

	// Amendment notes are the one allowed mutation
	amended, err := f.manager.AddAmendmentNote(context.Background(), report.ID, "resubmission planned as new filing", "officer")
	require.NoError(t, err)
	assert.Len(t, amended.Amendments, 2)
}

func TestOverdueAndDueSoon(t *testing.T) {
	f := newLifecycleFixture(t)

	// Transaction old enough that the 15-day window already passed
	f.tx.TransactionDate = time.Now().AddDate(0, 0, -20)
	f.transactions.Put(f.tx)
	overdueReport := f.createReport(t)

	// A second report due in two days
	tx2 := &domain.Transaction{
		ID:              uuid.New(),
		CustomerID:      f.customer.ID,
		Amount:          decimal.NewFromInt(10500),
		Currency:        "CAD",
		PaymentMethod:   domain.PaymentMethodCash,
		SourceOfFunds:   "savings",
		Purpose:         "tuition",
		TransactionDate: time.Now().AddDate(0, 0, -13),
	}
	f.transactions.Put(tx2)
	dueSoonReport, err := f.manager.Create(context.Background(), tx2.ID, f.customer.ID)
	require.NoError(t, err)

	overdue, err := f.manager.Overdue(context.Background())
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, overdueReport.ID, overdue[0].ID)
	assert.True(t, overdue[0].IsOverdue)

	dueSoon, err := f.manager.DueSoon(context.Background(), 72*time.Hour)
	require.NoError(t, err)
	require.Len(t, dueSoon, 2)
	assert.Equal(t, overdueReport.ID, dueSoon[0].ID)
	assert.Equal(t, dueSoonReport.ID, dueSoon[1].ID)

	// A filed report leaves both lists
	_, err = f.manager.Submit(context.Background(), overdueReport.ID, "officer")
	require.NoError(t, err)

	overdue, err = f.manager.Overdue(context.Background())
	require.NoError(t, err)
	assert.Empty(t, overdue)
}
