package compliance

import (
	"time"

	"github.com/moneyex/compliance-service/internal/config"
	"github.com/moneyex/compliance-service/internal/domain"
)

// DeadlineCalculator computes the statutory dates attached to an
// assessment. Filing deadlines count from the transaction date, never
// from when the assessment ran; only the retention date anchors on now.
type DeadlineCalculator struct {
	lctrDeadlineDays int
	strDeadlineDays  int
	retentionYears   int
}

// NewDeadlineCalculator creates a calculator from the statutory windows
func NewDeadlineCalculator(cfg *config.ComplianceConfig) *DeadlineCalculator {
	return &DeadlineCalculator{
		lctrDeadlineDays: cfg.LCTRDeadlineDays,
		strDeadlineDays:  cfg.STRDeadlineDays,
		retentionYears:   cfg.RetentionYears,
	}
}

// Calculate returns the deadline set for a level and transaction date.
// The LCTR deadline applies only to LCTR-level transactions; the STR
// deadline applies whenever screening raised at least one risk factor.
func (d *DeadlineCalculator) Calculate(level domain.ComplianceLevel, txDate time.Time, hasRiskFactors bool, now time.Time) domain.Deadlines {
	deadlines := domain.Deadlines{
		RetentionDate: now.AddDate(d.retentionYears, 0, 0),
	}

	if level == domain.LevelLCTRRequired {
		lctr := txDate.AddDate(0, 0, d.lctrDeadlineDays)
		deadlines.LCTRDeadline = &lctr
	}

	if hasRiskFactors {
		str := txDate.AddDate(0, 0, d.strDeadlineDays)
		deadlines.STRDeadline = &str
	}

	return deadlines
}
