package reporting

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moneyex/compliance-service/internal/config"
	"github.com/moneyex/compliance-service/internal/domain"
	"github.com/moneyex/compliance-service/internal/pkg/logger"
)

// ViolationSeverity grades how badly the statutory window was missed
type ViolationSeverity string

const (
	ViolationSeverityMedium   ViolationSeverity = "MEDIUM"
	ViolationSeverityHigh     ViolationSeverity = "HIGH"
	ViolationSeverityCritical ViolationSeverity = "CRITICAL"
)

// DeadlineViolation is a submission filed outside the statutory window
type DeadlineViolation struct {
	ReportNumber string            `json:"report_number"`
	SubmittedAt  time.Time         `json:"submitted_at"`
	DaysOver     int               `json:"days_over"`
	Severity     ViolationSeverity `json:"severity"`
}

// AuditReport aggregates historical submissions over a date range
type AuditReport struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	TotalSubmissions  int             `json:"total_submissions"`
	TotalTransactions int             `json:"total_transactions"`
	TotalAmount       decimal.Decimal `json:"total_amount"`

	Violations     []DeadlineViolation `json:"violations"`
	DeterrentScore int                 `json:"deterrent_score"`

	GeneratedAt time.Time `json:"generated_at"`
}

// ComplianceAuditReporter builds audit exports from the submission ledger
type ComplianceAuditReporter struct {
	ledger     SubmissionLedger
	windowDays int
	log        *logger.Logger
	now        func() time.Time
}

// NewComplianceAuditReporter creates an audit reporter
func NewComplianceAuditReporter(ledger SubmissionLedger, cfg *config.ComplianceConfig, log *logger.Logger) *ComplianceAuditReporter {
	return &ComplianceAuditReporter{
		ledger:     ledger,
		windowDays: cfg.LCTRDeadlineDays,
		log:        log.Named("audit_reporter"),
		now:        time.Now,
	}
}

// GenerateReport totals the submissions in the range and flags every
// filing made outside the statutory window, tagged with severity and
// day-overage. The deterrent score starts at 100 and loses 10 points per
// violation, floored at zero.
func (r *ComplianceAuditReporter) GenerateReport(ctx context.Context, from, to time.Time) (*AuditReport, error) {
	records, err := r.ledger.ListBetween(ctx, from, to)
	if err != nil {
		return nil, domain.NewDependencyUnavailableError("submission_ledger", err)
	}

	report := &AuditReport{
		From:        from,
		To:          to,
		TotalAmount: decimal.Zero,
		Violations:  make([]DeadlineViolation, 0),
		GeneratedAt: r.now(),
	}

	transactions := make(map[string]bool)
	for _, rec := range records {
		report.TotalSubmissions++
		transactions[rec.TransactionID.String()] = true
		report.TotalAmount = report.TotalAmount.Add(rec.CADEquivalent)

		daysToFile := int(rec.SubmittedAt.Sub(rec.CreatedAt).Hours() / 24)
		if daysToFile > r.windowDays {
			daysOver := daysToFile - r.windowDays
			report.Violations = append(report.Violations, DeadlineViolation{
				ReportNumber: rec.ReportNumber,
				SubmittedAt:  rec.SubmittedAt,
				DaysOver:     daysOver,
				Severity:     severityForOverage(daysOver),
			})
			r.log.DeadlineViolation(rec.ReportNumber, daysOver)
		}
	}

	report.TotalTransactions = len(transactions)
	report.DeterrentScore = deterrentScore(len(report.Violations))

	return report, nil
}

func severityForOverage(daysOver int) ViolationSeverity {
	switch {
	case daysOver > 30:
		return ViolationSeverityCritical
	case daysOver > 7:
		return ViolationSeverityHigh
	default:
		return ViolationSeverityMedium
	}
}

func deterrentScore(violations int) int {
	score := 100 - 10*violations
	if score < 0 {
		return 0
	}
	return score
}
