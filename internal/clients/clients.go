// Package clients holds the HTTP clients for the collaborating
// services: transactions, customers and documents. Lookup failures map
// to the typed domain errors the engine distinguishes on.
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/moneyex/compliance-service/internal/config"
	"github.com/moneyex/compliance-service/internal/domain"
)

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func getJSON(ctx context.Context, client *http.Client, url, entity, id string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return domain.NewDependencyUnavailableError(entity+"_service", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.NewNotFoundError(entity, id)
	case resp.StatusCode != http.StatusOK:
		return domain.NewDependencyUnavailableError(entity+"_service",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewDependencyUnavailableError(entity+"_service", err)
	}
	return nil
}

// TransactionClient looks up transactions from the transaction service
type TransactionClient struct {
	baseURL string
	client  *http.Client
}

// NewTransactionClient creates a transaction service client
func NewTransactionClient(cfg *config.CollaboratorsConfig) *TransactionClient {
	return &TransactionClient{
		baseURL: cfg.TransactionServiceURL,
		client:  newHTTPClient(cfg.Timeout),
	}
}

// GetByID fetches a transaction by id
func (c *TransactionClient) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	var tx domain.Transaction
	url := fmt.Sprintf("%s/api/v1/transactions/%s", c.baseURL, id)
	if err := getJSON(ctx, c.client, url, "transaction", id.String(), &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// CustomerClient looks up customers from the customer service
type CustomerClient struct {
	baseURL string
	client  *http.Client
}

// NewCustomerClient creates a customer service client
func NewCustomerClient(cfg *config.CollaboratorsConfig) *CustomerClient {
	return &CustomerClient{
		baseURL: cfg.CustomerServiceURL,
		client:  newHTTPClient(cfg.Timeout),
	}
}

// GetByID fetches a customer by id
func (c *CustomerClient) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	var customer domain.Customer
	url := fmt.Sprintf("%s/api/v1/customers/%s", c.baseURL, id)
	if err := getJSON(ctx, c.client, url, "customer", id.String(), &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// DocumentClient looks up customer documents from the document service
type DocumentClient struct {
	baseURL string
	client  *http.Client
}

// NewDocumentClient creates a document service client
func NewDocumentClient(cfg *config.CollaboratorsConfig) *DocumentClient {
	return &DocumentClient{
		baseURL: cfg.DocumentServiceURL,
		client:  newHTTPClient(cfg.Timeout),
	}
}

// ListByCustomer fetches the documents held for a customer
func (c *DocumentClient) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Document, error) {
	var docs []domain.Document
	url := fmt.Sprintf("%s/api/v1/customers/%s/documents", c.baseURL, customerID)
	if err := getJSON(ctx, c.client, url, "document", customerID.String(), &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
