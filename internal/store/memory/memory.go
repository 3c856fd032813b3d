// Package memory provides in-memory repositories with the same
// semantics as the postgres store: atomic check-and-insert on
// transaction id and per-year monotonic report sequences. Used for
// development mode and as the test double in package tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/moneyex/compliance-service/internal/domain"
)

// ReportStore is an in-memory ReportRepository
type ReportStore struct {
	mu            sync.Mutex
	byID          map[uuid.UUID]*domain.RegulatoryReport
	byTransaction map[uuid.UUID]uuid.UUID
	sequences     map[int]int64
}

// NewReportStore creates an empty report store
func NewReportStore() *ReportStore {
	return &ReportStore{
		byID:          make(map[uuid.UUID]*domain.RegulatoryReport),
		byTransaction: make(map[uuid.UUID]uuid.UUID),
		sequences:     make(map[int]int64),
	}
}

// Insert stores a new report. The duplicate check and the write happen
// under one lock so concurrent creates for the same transaction cannot
// both succeed.
func (s *ReportStore) Insert(_ context.Context, report *domain.RegulatoryReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byTransaction[report.TransactionID]; exists {
		return domain.NewDuplicateReportError(report.TransactionID.String())
	}

	clone := cloneReport(report)
	s.byID[report.ID] = clone
	s.byTransaction[report.TransactionID] = report.ID
	return nil
}

// GetByID returns a copy of the report or nil when absent
func (s *ReportStore) GetByID(_ context.Context, id uuid.UUID) (*domain.RegulatoryReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return cloneReport(report), nil
}

// GetByTransactionID returns the report referencing the transaction
func (s *ReportStore) GetByTransactionID(_ context.Context, transactionID uuid.UUID) (*domain.RegulatoryReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byTransaction[transactionID]
	if !ok {
		return nil, nil
	}
	return cloneReport(s.byID[id]), nil
}

// Update overwrites a stored report
func (s *ReportStore) Update(_ context.Context, report *domain.RegulatoryReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[report.ID]; !ok {
		return domain.NewNotFoundError("report", report.ID.String())
	}
	s.byID[report.ID] = cloneReport(report)
	return nil
}

// NextSequence issues the next report number sequence for a year.
// Sequences are strictly increasing and never reused.
func (s *ReportStore) NextSequence(_ context.Context, year int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sequences[year]++
	return s.sequences[year], nil
}

// ListUnfiledDueBefore returns unfiled reports with a due date before
// the cutoff, ordered by due date
func (s *ReportStore) ListUnfiledDueBefore(_ context.Context, before time.Time) ([]*domain.RegulatoryReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matches := make([]*domain.RegulatoryReport, 0)
	for _, report := range s.byID {
		if report.IsDueWithin(before, 0) {
			matches = append(matches, cloneReport(report))
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].DueDate.Before(matches[j].DueDate)
	})
	return matches, nil
}

func cloneReport(r *domain.RegulatoryReport) *domain.RegulatoryReport {
	clone := *r
	clone.Amendments = append([]domain.Amendment(nil), r.Amendments...)
	clone.Attachments = append([]domain.Attachment(nil), r.Attachments...)
	return &clone
}

// Ledger is an in-memory append-only submission ledger
type Ledger struct {
	mu      sync.Mutex
	records []domain.SubmissionRecord
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{records: make([]domain.SubmissionRecord, 0)}
}

// Append adds a submission record
func (l *Ledger) Append(_ context.Context, record domain.SubmissionRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, record)
	return nil
}

// ListBetween returns records whose submission time falls in [from, to]
func (l *Ledger) ListBetween(_ context.Context, from, to time.Time) ([]domain.SubmissionRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	matches := make([]domain.SubmissionRecord, 0)
	for _, r := range l.records {
		if !r.SubmittedAt.Before(from) && !r.SubmittedAt.After(to) {
			matches = append(matches, r)
		}
	}
	return matches, nil
}

// TransactionStore is an in-memory transaction lookup
type TransactionStore struct {
	mu           sync.RWMutex
	transactions map[uuid.UUID]*domain.Transaction
}

// NewTransactionStore creates an empty transaction store
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{transactions: make(map[uuid.UUID]*domain.Transaction)}
}

// Put stores a transaction
func (s *TransactionStore) Put(tx *domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[tx.ID] = tx
}

// GetByID returns a transaction or a NotFoundError
func (s *TransactionStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.transactions[id]
	if !ok {
		return nil, domain.NewNotFoundError("transaction", id.String())
	}
	clone := *tx
	return &clone, nil
}

// CustomerStore is an in-memory customer lookup
type CustomerStore struct {
	mu        sync.RWMutex
	customers map[uuid.UUID]*domain.Customer
}

// NewCustomerStore creates an empty customer store
func NewCustomerStore() *CustomerStore {
	return &CustomerStore{customers: make(map[uuid.UUID]*domain.Customer)}
}

// Put stores a customer
func (s *CustomerStore) Put(c *domain.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[c.ID] = c
}

// GetByID returns a customer or a NotFoundError
func (s *CustomerStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[id]
	if !ok {
		return nil, domain.NewNotFoundError("customer", id.String())
	}
	clone := *c
	return &clone, nil
}

// DocumentStore is an in-memory document lookup
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[uuid.UUID][]domain.Document
}

// NewDocumentStore creates an empty document store
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{documents: make(map[uuid.UUID][]domain.Document)}
}

// Put stores a document under its customer
func (s *DocumentStore) Put(doc domain.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.CustomerID] = append(s.documents[doc.CustomerID], doc)
}

// ListByCustomer returns the documents held for a customer
func (s *DocumentStore) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Document(nil), s.documents[customerID]...), nil
}
