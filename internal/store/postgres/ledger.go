package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moneyex/compliance-service/internal/domain"
)

// Ledger is the pgx-backed append-only submission ledger
type Ledger struct {
	db *pgxpool.Pool
}

// NewLedger creates a ledger over a pgx pool
func NewLedger(db *pgxpool.Pool) *Ledger {
	return &Ledger{db: db}
}

// Append writes one submission record. The table has no update path;
// rows are only ever inserted and read.
func (l *Ledger) Append(ctx context.Context, record domain.SubmissionRecord) error {
	_, err := l.db.Exec(ctx, `
		INSERT INTO submission_ledger (
			report_id, report_number, transaction_id, customer_id,
			cad_equivalent, created_at, submitted_at, submitted_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		record.ReportID, record.ReportNumber, record.TransactionID, record.CustomerID,
		record.CADEquivalent, record.CreatedAt, record.SubmittedAt, record.SubmittedBy,
	)
	if err != nil {
		return fmt.Errorf("append submission record: %w", err)
	}
	return nil
}

// ListBetween returns submissions made in [from, to], oldest first
func (l *Ledger) ListBetween(ctx context.Context, from, to time.Time) ([]domain.SubmissionRecord, error) {
	rows, err := l.db.Query(ctx, `
		SELECT report_id, report_number, transaction_id, customer_id,
		       cad_equivalent, created_at, submitted_at, submitted_by
		FROM submission_ledger
		WHERE submitted_at >= $1 AND submitted_at <= $2
		ORDER BY submitted_at`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list submission records: %w", err)
	}
	defer rows.Close()

	records := make([]domain.SubmissionRecord, 0)
	for rows.Next() {
		var rec domain.SubmissionRecord
		if err := rows.Scan(
			&rec.ReportID, &rec.ReportNumber, &rec.TransactionID, &rec.CustomerID,
			&rec.CADEquivalent, &rec.CreatedAt, &rec.SubmittedAt, &rec.SubmittedBy,
		); err != nil {
			return nil, fmt.Errorf("scan submission record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
