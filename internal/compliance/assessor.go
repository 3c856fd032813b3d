package compliance

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"

	"github.com/moneyex/compliance-service/internal/config"
	"github.com/moneyex/compliance-service/internal/domain"
	"github.com/moneyex/compliance-service/internal/pkg/logger"
)

// TransactionRepository looks up transactions from the transaction service
type TransactionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
}

// CustomerRepository looks up customer records
type CustomerRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
}

// DocumentRepository looks up documents held for a customer
type DocumentRepository interface {
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Document, error)
}

// RateConverter converts an amount to the reference currency, returning
// the versioned quote used so the assessment stays reproducible
type RateConverter interface {
	ToReference(ctx context.Context, amount decimal.Decimal, currency string) (decimal.Decimal, *domain.RateQuote, error)
}

// ComplianceAssessor runs the full assessment pipeline: classify, check
// due diligence, screen for suspicious activity, compute deadlines, and
// merge the outputs into a single assessment.
type ComplianceAssessor struct {
	classifier *TransactionClassifier
	checker    *DueDiligenceChecker
	screener   *SuspiciousActivityScreener
	deadlines  *DeadlineCalculator
	scorer     *RiskScorer

	transactions TransactionRepository
	customers    CustomerRepository
	documents    DocumentRepository
	rates        RateConverter

	customerBreaker *gobreaker.CircuitBreaker
	documentBreaker *gobreaker.CircuitBreaker

	cfg *config.ComplianceConfig
	log *logger.Logger

	now func() time.Time
}

// NewComplianceAssessor creates an assessor from injected collaborators
func NewComplianceAssessor(
	classifier *TransactionClassifier,
	checker *DueDiligenceChecker,
	screener *SuspiciousActivityScreener,
	deadlines *DeadlineCalculator,
	scorer *RiskScorer,
	transactions TransactionRepository,
	customers CustomerRepository,
	documents DocumentRepository,
	rates RateConverter,
	cfg *config.ComplianceConfig,
	log *logger.Logger,
) *ComplianceAssessor {
	breakerSettings := func(name string) gobreaker.Settings {
		return gobreaker.Settings{
			Name:    name,
			Timeout: cfg.BreakerOpenInterval,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.BreakerMaxFailures
			},
		}
	}

	return &ComplianceAssessor{
		classifier:      classifier,
		checker:         checker,
		screener:        screener,
		deadlines:       deadlines,
		scorer:          scorer,
		transactions:    transactions,
		customers:       customers,
		documents:       documents,
		rates:           rates,
		customerBreaker: gobreaker.NewCircuitBreaker(breakerSettings("customer_lookup")),
		documentBreaker: gobreaker.NewCircuitBreaker(breakerSettings("document_lookup")),
		cfg:             cfg,
		log:             log.Named("assessor"),
		now:             time.Now,
	}
}

// assessmentContext holds intermediate lookup results during assessment
type assessmentContext struct {
	transaction *domain.Transaction
	customer    *domain.Customer
	documents   []domain.Document

	incompleteReasons []string
	mu                sync.Mutex
}

func (a *assessmentContext) markIncomplete(reason string) {
	a.mu.Lock()
	a.incompleteReasons = append(a.incompleteReasons, reason)
	a.mu.Unlock()
}

// Assess runs the full pipeline for a transaction. A missing transaction
// raises NotFoundError and a failed transaction or rate lookup raises
// DependencyUnavailableError, because nothing can be classified without
// them. Failed customer or document lookups degrade to an assessment
// marked incomplete instead, so partial outages are never reported as
// non-compliance.
func (a *ComplianceAssessor) Assess(ctx context.Context, transactionID uuid.UUID) (*domain.ComplianceAssessment, error) {
	start := a.now()

	tx, err := a.transactions.GetByID(ctx, transactionID)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return nil, err
		}
		return nil, domain.NewDependencyUnavailableError("transaction_lookup", err)
	}
	if tx == nil {
		return nil, domain.NewNotFoundError("transaction", transactionID.String())
	}

	a.log.AssessmentStarted(tx.ID.String(), tx.CustomerID.String())

	cadAmount, quote, err := a.rates.ToReference(ctx, tx.Amount, tx.Currency)
	if err != nil {
		return nil, domain.NewDependencyUnavailableError("rate_source", err)
	}

	actx := &assessmentContext{transaction: tx}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.fetchCustomer(gctx, actx)
		return nil
	})
	g.Go(func() error {
		a.fetchDocuments(gctx, actx)
		return nil
	})
	_ = g.Wait()

	assessment := a.merge(actx, cadAmount, quote, start)

	a.log.AssessmentCompleted(
		tx.ID.String(),
		string(assessment.Level),
		assessment.IsCompliant(),
		assessment.Incomplete,
		time.Since(start).Milliseconds(),
	)

	return assessment, nil
}

func (a *ComplianceAssessor) fetchCustomer(ctx context.Context, actx *assessmentContext) {
	lookupCtx, cancel := context.WithTimeout(ctx, a.cfg.LookupTimeout)
	defer cancel()

	result, err := a.customerBreaker.Execute(func() (interface{}, error) {
		return a.customers.GetByID(lookupCtx, actx.transaction.CustomerID)
	})
	if err != nil {
		a.log.DependencyFailure("customer_lookup", err)
		actx.markIncomplete("customer lookup failed")
		return
	}

	customer, _ := result.(*domain.Customer)
	if customer == nil {
		actx.markIncomplete("customer record not found")
		return
	}

	actx.mu.Lock()
	actx.customer = customer
	actx.mu.Unlock()
}

func (a *ComplianceAssessor) fetchDocuments(ctx context.Context, actx *assessmentContext) {
	lookupCtx, cancel := context.WithTimeout(ctx, a.cfg.LookupTimeout)
	defer cancel()

	result, err := a.documentBreaker.Execute(func() (interface{}, error) {
		return a.documents.ListByCustomer(lookupCtx, actx.transaction.CustomerID)
	})
	if err != nil {
		a.log.DependencyFailure("document_lookup", err)
		actx.markIncomplete("document lookup failed")
		return
	}

	docs, _ := result.([]domain.Document)
	actx.mu.Lock()
	actx.documents = docs
	actx.mu.Unlock()
}

// merge combines the classifier, due-diligence, screening and deadline
// outputs into the final assessment
func (a *ComplianceAssessor) merge(actx *assessmentContext, cadAmount decimal.Decimal, quote *domain.RateQuote, now time.Time) *domain.ComplianceAssessment {
	tx := actx.transaction

	assessment := &domain.ComplianceAssessment{
		ID:               uuid.New(),
		TransactionID:    tx.ID,
		CustomerID:       tx.CustomerID,
		CADEquivalent:    cadAmount,
		Rate:             quote,
		RequiredActions:  make([]domain.RequiredAction, 0),
		MissingFields:    make([]string, 0),
		MissingDocuments: make([]string, 0),
		Flags:            make([]domain.RegulatoryFlag, 0),
		AssessedAt:       now,
	}

	assessment.Level = a.classifier.Classify(cadAmount, tx.PaymentMethod)
	if assessment.Level == domain.LevelLCTRRequired {
		assessment.AddFlag(domain.FlagLCTRFiling)
	}

	actx.mu.Lock()
	customer := actx.customer
	documents := actx.documents
	assessment.IncompleteReasons = actx.incompleteReasons
	actx.mu.Unlock()

	assessment.Incomplete = len(assessment.IncompleteReasons) > 0

	if customer != nil {
		dd := a.checker.Check(assessment.Level, customer, documents, now)
		assessment.MissingFields = dd.MissingFields
		assessment.MissingDocuments = dd.MissingDocuments
		assessment.RequiredActions = append(assessment.RequiredActions, dd.Actions...)

		if customer.RiskRating == domain.RiskRatingHigh {
			assessment.AddFlag(domain.FlagEnhancedDueDiligence)
		}
	}

	assessment.RiskFactors = a.screener.Screen(tx, cadAmount)
	if len(assessment.RiskFactors) > 0 {
		assessment.AddFlag(domain.FlagSuspiciousActivityReview)
		for _, f := range assessment.RiskFactors {
			a.log.SuspiciousActivityFlagged(tx.ID.String(), f.Code)
		}
	}

	assessment.Deadlines = a.deadlines.Calculate(assessment.Level, tx.TransactionDate, len(assessment.RiskFactors) > 0, now)

	assessment.RequiredActions = append(assessment.RequiredActions, recordKeepingActions(assessment.Level)...)

	return assessment
}

// recordKeepingActions returns the standing advisory actions appended to
// every assessment. These never block compliance.
func recordKeepingActions(level domain.ComplianceLevel) []domain.RequiredAction {
	actions := []domain.RequiredAction{
		{
			Code:        "RETAIN_RECEIPT",
			Description: "Retain a copy of the transaction receipt",
			Severity:    domain.SeverityAdvisory,
		},
		{
			Code:        "RETAIN_ID_RECORD",
			Description: "Retain the customer identification record",
			Severity:    domain.SeverityAdvisory,
		},
	}

	if level.RequiresEnhancedRecords() {
		actions = append(actions,
			domain.RequiredAction{
				Code:        "RETAIN_TRANSACTION_TICKET",
				Description: "Retain the foreign-exchange transaction ticket",
				Severity:    domain.SeverityAdvisory,
			},
			domain.RequiredAction{
				Code:        "RETAIN_SOURCE_OF_FUNDS_RECORD",
				Description: "Retain the source-of-funds declaration",
				Severity:    domain.SeverityAdvisory,
			},
			domain.RequiredAction{
				Code:        "RETAIN_REPORT_COPY",
				Description: "Retain a copy of any filed regulatory report",
				Severity:    domain.SeverityAdvisory,
			},
		)
	}

	return actions
}

// AssessCustomerRisk fetches the customer and document data and runs the
// risk model. Both lookups are mandatory here: risk cannot be graded on
// partial data, so failures surface as typed errors instead of an
// incomplete result.
func (a *ComplianceAssessor) AssessCustomerRisk(ctx context.Context, customerID uuid.UUID) (*domain.RiskAssessment, error) {
	customer, err := a.customers.GetByID(ctx, customerID)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return nil, err
		}
		return nil, domain.NewDependencyUnavailableError("customer_lookup", err)
	}
	if customer == nil {
		return nil, domain.NewNotFoundError("customer", customerID.String())
	}

	docs, err := a.documents.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, domain.NewDependencyUnavailableError("document_lookup", err)
	}

	now := a.now()
	assessment := a.scorer.Score(customerID, RiskInput{
		Rating:            customer.RiskRating,
		TotalVolume:       customer.TotalTransactionVolume,
		TransactionCount:  customer.TransactionCount,
		VerifiedDocuments: domain.CountVerified(docs),
		KYCStatus:         customer.KYCStatus,
		AccountAgeDays:    customer.AccountAgeDays(now),
	}, now)

	a.log.RiskScored(customerID.String(), assessment.Score, string(assessment.Rating))
	return assessment, nil
}
