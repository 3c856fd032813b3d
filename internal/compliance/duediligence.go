package compliance

import (
	"fmt"
	"time"

	"github.com/moneyex/compliance-service/internal/domain"
)

// Mandatory customer fields per compliance level
var requiredFieldsByLevel = map[domain.ComplianceLevel][]string{
	domain.LevelBasicRecords: {
		"full_name", "date_of_birth", "address",
	},
	domain.LevelEnhancedRecords: {
		"full_name", "date_of_birth", "address",
		"occupation", "source_of_funds",
		"identification_type", "identification_number", "identification_expiry",
	},
	domain.LevelLCTRRequired: {
		"full_name", "date_of_birth", "address",
		"occupation", "source_of_funds",
		"identification_type", "identification_number", "identification_expiry",
	},
}

// Mandatory document types per compliance level
var requiredDocumentsByLevel = map[domain.ComplianceLevel][]string{
	domain.LevelBasicRecords: {
		"PHOTO_ID",
	},
	domain.LevelEnhancedRecords: {
		"PHOTO_ID", "PROOF_OF_ADDRESS", "SOURCE_OF_FUNDS_DECLARATION",
	},
	domain.LevelLCTRRequired: {
		"PHOTO_ID", "PROOF_OF_ADDRESS", "SOURCE_OF_FUNDS_DECLARATION",
	},
}

// DueDiligenceResult carries what the checker found missing
type DueDiligenceResult struct {
	MissingFields    []string
	MissingDocuments []string
	Actions          []domain.RequiredAction
}

// DueDiligenceChecker verifies customer record and document completeness
// against the obligations of a compliance level
type DueDiligenceChecker struct{}

// NewDueDiligenceChecker creates a due-diligence checker
func NewDueDiligenceChecker() *DueDiligenceChecker {
	return &DueDiligenceChecker{}
}

// Check compares the customer record and document set against the
// required-field and required-document tables for the level. Every gap
// produces a blocking action; an expired identification is always a
// blocking action regardless of level.
func (c *DueDiligenceChecker) Check(level domain.ComplianceLevel, customer *domain.Customer, docs []domain.Document, now time.Time) DueDiligenceResult {
	result := DueDiligenceResult{
		MissingFields:    make([]string, 0),
		MissingDocuments: make([]string, 0),
		Actions:          make([]domain.RequiredAction, 0),
	}

	for _, field := range requiredFieldsByLevel[level] {
		if fieldPresent(customer, field) {
			continue
		}
		result.MissingFields = append(result.MissingFields, field)
		result.Actions = append(result.Actions, domain.RequiredAction{
			Code:        "COLLECT_FIELD",
			Description: fmt.Sprintf("Collect missing customer field: %s", field),
			Severity:    domain.SeverityBlocking,
		})
	}

	for _, docType := range requiredDocumentsByLevel[level] {
		if domain.HasVerifiedType(docs, docType) {
			continue
		}
		result.MissingDocuments = append(result.MissingDocuments, docType)
		result.Actions = append(result.Actions, domain.RequiredAction{
			Code:        "OBTAIN_DOCUMENT",
			Description: fmt.Sprintf("Obtain and verify document: %s", docType),
			Severity:    domain.SeverityBlocking,
		})
	}

	if customer.Identification.Number != "" && customer.Identification.IsExpired(now) {
		result.Actions = append(result.Actions, domain.RequiredAction{
			Code:        "RENEW_IDENTIFICATION",
			Description: fmt.Sprintf("Customer identification expired on %s", customer.Identification.ExpiryDate.Format("2006-01-02")),
			Severity:    domain.SeverityBlocking,
		})
	}

	return result
}

func fieldPresent(customer *domain.Customer, field string) bool {
	switch field {
	case "full_name":
		return customer.FullName != ""
	case "date_of_birth":
		return !customer.DateOfBirth.IsZero()
	case "address":
		return customer.Address.IsComplete()
	case "occupation":
		return customer.Occupation != ""
	case "source_of_funds":
		return customer.SourceOfFunds != ""
	case "identification_type":
		return customer.Identification.Type != ""
	case "identification_number":
		return customer.Identification.Number != ""
	case "identification_expiry":
		return !customer.Identification.ExpiryDate.IsZero()
	default:
		return true
	}
}
