package logger

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with compliance-specific functionality
type Logger struct {
	*zap.Logger
	serviceName string
}

// ContextKey for request context values
type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	TraceIDKey   ContextKey = "trace_id"
	SubmitterKey ContextKey = "submitter"
)

// New creates a new logger instance
func New(serviceName, environment string, debug bool) (*Logger, error) {
	var config zap.Config

	if environment == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if debug {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	config.InitialFields = map[string]interface{}{
		"service": serviceName,
		"env":     environment,
		"pid":     os.Getpid(),
	}

	zapLogger, err := config.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
	)
	if err != nil {
		return nil, err
	}

	return &Logger{
		Logger:      zapLogger,
		serviceName: serviceName,
	}, nil
}

// NewNop returns a logger that discards everything, for tests
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop(), serviceName: "test"}
}

// Named returns a named sub-logger
func (l *Logger) Named(name string) *Logger {
	return &Logger{
		Logger:      l.Logger.Named(name),
		serviceName: l.serviceName,
	}
}

// WithContext returns a logger with context values
func (l *Logger) WithContext(ctx context.Context) *Logger {
	fields := []zap.Field{}

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok && traceID != "" {
		fields = append(fields, zap.String("trace_id", traceID))
	}
	if submitter, ok := ctx.Value(SubmitterKey).(string); ok && submitter != "" {
		fields = append(fields, zap.String("submitter", submitter))
	}

	return &Logger{
		Logger:      l.With(fields...),
		serviceName: l.serviceName,
	}
}

// WithReport returns a logger with report context
func (l *Logger) WithReport(reportID, reportNumber string) *Logger {
	return &Logger{
		Logger: l.With(
			zap.String("report_id", reportID),
			zap.String("report_number", reportNumber),
		),
		serviceName: l.serviceName,
	}
}

// AssessmentStarted logs the start of a compliance assessment
func (l *Logger) AssessmentStarted(txID, customerID string) {
	l.Info("assessment started",
		zap.String("transaction_id", txID),
		zap.String("customer_id", customerID),
	)
}

// AssessmentCompleted logs the outcome of a compliance assessment
func (l *Logger) AssessmentCompleted(txID, level string, compliant, incomplete bool, durationMs int64) {
	l.Info("assessment completed",
		zap.String("transaction_id", txID),
		zap.String("level", level),
		zap.Bool("compliant", compliant),
		zap.Bool("incomplete", incomplete),
		zap.Int64("duration_ms", durationMs),
	)
}

// SuspiciousActivityFlagged logs a screening hit
func (l *Logger) SuspiciousActivityFlagged(txID, factor string) {
	l.Warn("suspicious activity flagged",
		zap.String("transaction_id", txID),
		zap.String("factor", factor),
	)
}

// RiskScored logs a customer risk assessment
func (l *Logger) RiskScored(customerID string, score int, rating string) {
	l.Info("customer risk scored",
		zap.String("customer_id", customerID),
		zap.Int("score", score),
		zap.String("rating", rating),
	)
}

// ReportCreated logs report creation
func (l *Logger) ReportCreated(reportID, reportNumber, txID string) {
	l.Info("report created",
		zap.String("report_id", reportID),
		zap.String("report_number", reportNumber),
		zap.String("transaction_id", txID),
	)
}

// ReportSubmitted logs report submission
func (l *Logger) ReportSubmitted(reportID, reportNumber, submittedBy string) {
	l.Info("report submitted",
		zap.String("report_id", reportID),
		zap.String("report_number", reportNumber),
		zap.String("submitted_by", submittedBy),
	)
}

// ReportRejected logs an external rejection
func (l *Logger) ReportRejected(reportID, reason string) {
	l.Warn("report rejected",
		zap.String("report_id", reportID),
		zap.String("reason", reason),
	)
}

// DeadlineViolation logs a statutory window breach found during audit
func (l *Logger) DeadlineViolation(reportNumber string, daysOver int) {
	l.Warn("filing deadline violation",
		zap.String("report_number", reportNumber),
		zap.Int("days_over", daysOver),
	)
}

// DependencyFailure logs a downstream lookup failure
func (l *Logger) DependencyFailure(dependency string, err error) {
	l.Warn("dependency lookup failed",
		zap.String("dependency", dependency),
		zap.Error(err),
	)
}

// ErrorField creates an error field
func ErrorField(err error) zap.Field {
	return zap.Error(err)
}
