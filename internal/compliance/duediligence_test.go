package compliance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/moneyex/compliance-service/internal/domain"
)

func completeCustomer(now time.Time) *domain.Customer {
	return &domain.Customer{
		ID:          uuid.New(),
		FullName:    "Priya Raman",
		DateOfBirth: time.Date(1985, 6, 12, 0, 0, 0, 0, time.UTC),
		Address: domain.Address{
			Street:     "44 Bay St",
			City:       "Toronto",
			Province:   "ON",
			PostalCode: "M5J 2K2",
			Country:    "CA",
		},
		Occupation:    "accountant",
		SourceOfFunds: "employment income",
		Identification: domain.Identification{
			Type:       "PASSPORT",
			Number:     "AB123456",
			ExpiryDate: now.AddDate(3, 0, 0),
		},
		KYCStatus: domain.KYCStatusVerified,
		CreatedAt: now.AddDate(-2, 0, 0),
	}
}

func verifiedDocs(customerID uuid.UUID, types ...string) []domain.Document {
	docs := make([]domain.Document, 0, len(types))
	for _, dt := range types {
		docs = append(docs, domain.Document{
			ID:         uuid.New(),
			CustomerID: customerID,
			Type:       dt,
			Verified:   true,
		})
	}
	return docs
}

func TestCheckCompleteCustomerAtLCTRLevel(t *testing.T) {
	now := time.Now()
	checker := NewDueDiligenceChecker()
	customer := completeCustomer(now)
	docs := verifiedDocs(customer.ID, "PHOTO_ID", "PROOF_OF_ADDRESS", "SOURCE_OF_FUNDS_DECLARATION")

	result := checker.Check(domain.LevelLCTRRequired, customer, docs, now)

	assert.Empty(t, result.MissingFields)
	assert.Empty(t, result.MissingDocuments)
	assert.Empty(t, result.Actions)
}

func TestCheckBasicLevelNeedsOnlyCoreFields(t *testing.T) {
	now := time.Now()
	checker := NewDueDiligenceChecker()
	customer := completeCustomer(now)
	customer.Occupation = ""
	customer.SourceOfFunds = ""
	docs := verifiedDocs(customer.ID, "PHOTO_ID")

	result := checker.Check(domain.LevelBasicRecords, customer, docs, now)

	assert.Empty(t, result.MissingFields)
	assert.Empty(t, result.MissingDocuments)
}

func TestCheckEnhancedLevelFlagsGaps(t *testing.T) {
	now := time.Now()
	checker := NewDueDiligenceChecker()
	customer := completeCustomer(now)
	customer.Occupation = ""
	docs := verifiedDocs(customer.ID, "PHOTO_ID")

	result := checker.Check(domain.LevelEnhancedRecords, customer, docs, now)

	assert.Equal(t, []string{"occupation"}, result.MissingFields)
	assert.ElementsMatch(t, []string{"PROOF_OF_ADDRESS", "SOURCE_OF_FUNDS_DECLARATION"}, result.MissingDocuments)

	for _, action := range result.Actions {
		assert.Equal(t, domain.SeverityBlocking, action.Severity)
	}
}

func TestCheckUnverifiedDocumentDoesNotCount(t *testing.T) {
	now := time.Now()
	checker := NewDueDiligenceChecker()
	customer := completeCustomer(now)
	docs := []domain.Document{
		{ID: uuid.New(), CustomerID: customer.ID, Type: "PHOTO_ID", Verified: false},
	}

	result := checker.Check(domain.LevelBasicRecords, customer, docs, now)
	assert.Equal(t, []string{"PHOTO_ID"}, result.MissingDocuments)
}

func TestCheckExpiredIdentification(t *testing.T) {
	now := time.Now()
	checker := NewDueDiligenceChecker()
	customer := completeCustomer(now)
	customer.Identification.ExpiryDate = now.AddDate(0, -1, 0)
	docs := verifiedDocs(customer.ID, "PHOTO_ID", "PROOF_OF_ADDRESS", "SOURCE_OF_FUNDS_DECLARATION")

	result := checker.Check(domain.LevelLCTRRequired, customer, docs, now)

	codes := make([]string, 0)
	for _, a := range result.Actions {
		codes = append(codes, a.Code)
	}
	assert.Contains(t, codes, "RENEW_IDENTIFICATION")
}

func TestCheckIncompleteAddress(t *testing.T) {
	now := time.Now()
	checker := NewDueDiligenceChecker()
	customer := completeCustomer(now)
	customer.Address.PostalCode = ""
	docs := verifiedDocs(customer.ID, "PHOTO_ID")

	result := checker.Check(domain.LevelBasicRecords, customer, docs, now)
	assert.Equal(t, []string{"address"}, result.MissingFields)
}
