package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatReportNumber(t *testing.T) {
	assert.Equal(t, "LCTR-2026-000001", FormatReportNumber(2026, 1))
	assert.Equal(t, "LCTR-2026-000042", FormatReportNumber(2026, 42))
	assert.Equal(t, "LCTR-2027-123456", FormatReportNumber(2027, 123456))
}

func TestReportStateHelpers(t *testing.T) {
	r := &RegulatoryReport{Status: ReportStatusDraft}
	assert.True(t, r.IsMutable())
	assert.False(t, r.IsFiled())

	r.Status = ReportStatusPendingReview
	assert.True(t, r.IsMutable())

	r.Status = ReportStatusSubmitted
	assert.False(t, r.IsMutable())
	assert.True(t, r.IsFiled())

	r.Status = ReportStatusAcknowledged
	assert.True(t, r.IsFiled())

	r.Status = ReportStatusRejected
	assert.False(t, r.IsMutable())
	assert.False(t, r.IsFiled())
}

func TestReportOverdue(t *testing.T) {
	now := time.Now()

	r := &RegulatoryReport{Status: ReportStatusDraft, DueDate: now.Add(-time.Hour)}
	assert.True(t, r.IsOverdue(now))

	// A filed report is never overdue
	r.Status = ReportStatusSubmitted
	assert.False(t, r.IsOverdue(now))

	r.Status = ReportStatusDraft
	r.DueDate = now.Add(time.Hour)
	assert.False(t, r.IsOverdue(now))
	assert.True(t, r.IsDueWithin(now, 2*time.Hour))
	assert.False(t, r.IsDueWithin(now, 30*time.Minute))
}
