// Package postgres provides pgx-backed repositories for the compliance
// service. The reports table carries a unique index on transaction_id
// so duplicate report creation is rejected by the database itself, not
// by a read-then-write check.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moneyex/compliance-service/internal/domain"
)

const uniqueViolationCode = "23505"

// Schema is the DDL for the report store and submission ledger
const Schema = `
CREATE TABLE IF NOT EXISTS regulatory_reports (
    id                 UUID PRIMARY KEY,
    report_number      TEXT NOT NULL UNIQUE,
    transaction_id     UUID NOT NULL UNIQUE,
    customer_id        UUID NOT NULL,
    status             TEXT NOT NULL,
    transaction        JSONB NOT NULL,
    customer           JSONB NOT NULL,
    due_date           TIMESTAMPTZ NOT NULL,
    created_at         TIMESTAMPTZ NOT NULL,
    submitted_at       TIMESTAMPTZ,
    acknowledged_at    TIMESTAMPTZ,
    submitted_by       TEXT NOT NULL DEFAULT '',
    external_reference TEXT NOT NULL DEFAULT '',
    amendments         JSONB NOT NULL DEFAULT '[]',
    attachments        JSONB NOT NULL DEFAULT '[]',
    updated_at         TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reports_due_date ON regulatory_reports (due_date) WHERE status NOT IN ('SUBMITTED', 'ACKNOWLEDGED');

CREATE TABLE IF NOT EXISTS report_sequences (
    year INT PRIMARY KEY,
    seq  BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS submission_ledger (
    report_id      UUID NOT NULL,
    report_number  TEXT NOT NULL,
    transaction_id UUID NOT NULL,
    customer_id    UUID NOT NULL,
    cad_equivalent NUMERIC(18,2) NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL,
    submitted_at   TIMESTAMPTZ NOT NULL,
    submitted_by   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ledger_submitted_at ON submission_ledger (submitted_at);
`

// ReportStore is the pgx-backed report repository
type ReportStore struct {
	db *pgxpool.Pool
}

// NewReportStore creates a report store over a pgx pool
func NewReportStore(db *pgxpool.Pool) *ReportStore {
	return &ReportStore{db: db}
}

// Migrate applies the schema
func (s *ReportStore) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, Schema)
	return err
}

// Insert writes a new report. The unique constraint on transaction_id
// makes the check-and-insert atomic; a second insert for the same
// transaction comes back as a StateConflictError.
func (s *ReportStore) Insert(ctx context.Context, report *domain.RegulatoryReport) error {
	txJSON, custJSON, amendJSON, attachJSON, err := marshalReport(report)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO regulatory_reports (
			id, report_number, transaction_id, customer_id, status,
			transaction, customer, due_date, created_at, submitted_at,
			acknowledged_at, submitted_by, external_reference,
			amendments, attachments, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		report.ID, report.ReportNumber, report.TransactionID, report.CustomerID, report.Status,
		txJSON, custJSON, report.DueDate, report.CreatedAt, report.SubmittedAt,
		report.AcknowledgedAt, report.SubmittedBy, report.ExternalReference,
		amendJSON, attachJSON, report.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return domain.NewDuplicateReportError(report.TransactionID.String())
		}
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// GetByID loads a report by id, nil when absent
func (s *ReportStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.RegulatoryReport, error) {
	return s.getOne(ctx, `WHERE id = $1`, id)
}

// GetByTransactionID loads the report referencing a transaction
func (s *ReportStore) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*domain.RegulatoryReport, error) {
	return s.getOne(ctx, `WHERE transaction_id = $1`, transactionID)
}

func (s *ReportStore) getOne(ctx context.Context, where string, arg any) (*domain.RegulatoryReport, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, report_number, transaction_id, customer_id, status,
		       transaction, customer, due_date, created_at, submitted_at,
		       acknowledged_at, submitted_by, external_reference,
		       amendments, attachments, updated_at
		FROM regulatory_reports `+where, arg)

	report, err := scanReport(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}
	return report, nil
}

// Update persists report mutations
func (s *ReportStore) Update(ctx context.Context, report *domain.RegulatoryReport) error {
	txJSON, custJSON, amendJSON, attachJSON, err := marshalReport(report)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE regulatory_reports SET
			status = $2, transaction = $3, customer = $4,
			submitted_at = $5, acknowledged_at = $6, submitted_by = $7,
			external_reference = $8, amendments = $9, attachments = $10,
			updated_at = $11
		WHERE id = $1`,
		report.ID, report.Status, txJSON, custJSON,
		report.SubmittedAt, report.AcknowledgedAt, report.SubmittedBy,
		report.ExternalReference, amendJSON, attachJSON, report.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("report", report.ID.String())
	}
	return nil
}

// NextSequence atomically issues the next per-year sequence number
func (s *ReportStore) NextSequence(ctx context.Context, year int) (int64, error) {
	var seq int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO report_sequences (year, seq) VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET seq = report_sequences.seq + 1
		RETURNING seq`, year).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next report sequence: %w", err)
	}
	return seq, nil
}

// ListUnfiledDueBefore returns unfiled reports due before the cutoff
func (s *ReportStore) ListUnfiledDueBefore(ctx context.Context, before time.Time) ([]*domain.RegulatoryReport, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, report_number, transaction_id, customer_id, status,
		       transaction, customer, due_date, created_at, submitted_at,
		       acknowledged_at, submitted_by, external_reference,
		       amendments, attachments, updated_at
		FROM regulatory_reports
		WHERE status NOT IN ('SUBMITTED', 'ACKNOWLEDGED') AND due_date < $1
		ORDER BY due_date`, before)
	if err != nil {
		return nil, fmt.Errorf("list due reports: %w", err)
	}
	defer rows.Close()

	reports := make([]*domain.RegulatoryReport, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*domain.RegulatoryReport, error) {
	var (
		report                                 domain.RegulatoryReport
		txJSON, custJSON, amendJSON, attachJSON []byte
	)

	err := row.Scan(
		&report.ID, &report.ReportNumber, &report.TransactionID, &report.CustomerID, &report.Status,
		&txJSON, &custJSON, &report.DueDate, &report.CreatedAt, &report.SubmittedAt,
		&report.AcknowledgedAt, &report.SubmittedBy, &report.ExternalReference,
		&amendJSON, &attachJSON, &report.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(txJSON, &report.Transaction); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(custJSON, &report.Customer); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(amendJSON, &report.Amendments); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(attachJSON, &report.Attachments); err != nil {
		return nil, err
	}
	return &report, nil
}

func marshalReport(report *domain.RegulatoryReport) (txJSON, custJSON, amendJSON, attachJSON []byte, err error) {
	if txJSON, err = json.Marshal(report.Transaction); err != nil {
		return
	}
	if custJSON, err = json.Marshal(report.Customer); err != nil {
		return
	}
	amendments := report.Amendments
	if amendments == nil {
		amendments = []domain.Amendment{}
	}
	if amendJSON, err = json.Marshal(amendments); err != nil {
		return
	}
	attachments := report.Attachments
	if attachments == nil {
		attachments = []domain.Attachment{}
	}
	attachJSON, err = json.Marshal(attachments)
	return
}
