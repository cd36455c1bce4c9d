// Package engine is the HTTP client for the external billing engine,
// the system of record for monetary charge calculation and invoice
// numbering. The pipeline submits transactions here and reconciles the
// engine's totals back afterwards.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrAlreadyRebilled is returned when the engine reports the invoice is
// already marked for rebilling (HTTP 409). Callers treat it as success.
var ErrAlreadyRebilled = errors.New("invoice already marked for rebilling")

// Error carries the engine's HTTP status so callers can classify the
// failure: 4xx is a data problem terminal for the transaction, 5xx and
// transport failures are retryable infrastructure problems.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("billing engine returned %d: %s", e.StatusCode, e.Body)
}

// IsClientError reports whether err is an engine 4xx response.
func IsClientError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.StatusCode >= 400 && e.StatusCode < 500
}

// Client talks to one billing-engine instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for the given base URL. A nil httpClient
// gets a default with a conservative timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// FormatDate renders a date the way the engine expects: DD-MMM-YYYY,
// month abbreviation uppercased (e.g. 01-APR-2019).
func FormatDate(t time.Time) string {
	return strings.ToUpper(t.Format("02-Jan-2006"))
}

// TransactionRequest is the engine's transaction payload.
type TransactionRequest struct {
	PeriodStart          string  `json:"periodStart"`
	PeriodEnd            string  `json:"periodEnd"`
	Credit               bool    `json:"credit"`
	BillableDays         int     `json:"billableDays"`
	AuthorisedDays       int     `json:"authorisedDays"`
	Volume               string  `json:"volume"`
	Source               string  `json:"source"`
	Season               string  `json:"season"`
	Loss                 string  `json:"loss"`
	Section126Factor     *string `json:"section126Factor,omitempty"`
	Section127Agreement  bool    `json:"section127Agreement"`
	Section130Agreement  bool    `json:"section130Agreement"`
	CustomerReference    string  `json:"customerReference"`
	LineDescription      string  `json:"lineDescription"`
	LicenceNumber        string  `json:"licenceNumber"`
	Region               string  `json:"region"`
	CompensationCharge   bool    `json:"compensationCharge"`
	TwoPartTariff        bool    `json:"twoPartTariff"`
	TransactionReference string  `json:"transactionReference,omitempty"`
}

type transactionResponse struct {
	Transaction struct {
		ID string `json:"id"`
	} `json:"transaction"`
}

type billRunResponse struct {
	BillRun BillRunSummary `json:"billRun"`
}

// BillRunSummary is the engine's aggregate view of a bill run.
type BillRunSummary struct {
	ID              string           `json:"id"`
	Status          string           `json:"status"`
	BillRunNumber   int              `json:"billRunNumber"`
	CreditNoteCount int              `json:"creditNoteCount"`
	InvoiceCount    int              `json:"invoiceCount"`
	CreditNoteValue int64            `json:"creditNoteValue"`
	InvoiceValue    int64            `json:"invoiceValue"`
	NetTotal        int64            `json:"netTotal"`
	Invoices        []InvoiceSummary `json:"invoices"`
}

// InvoiceSummary is the engine's per-customer, per-financial-year view.
type InvoiceSummary struct {
	ID                string               `json:"id"`
	CustomerReference string               `json:"customerReference"`
	FinancialYear     int                  `json:"financialYear"`
	TransactionRef    string               `json:"transactionReference"`
	DeminimisInvoice  bool                 `json:"deminimisInvoice"`
	NetTotal          int64                `json:"netTotal"`
	Transactions      []TransactionSummary `json:"transactions"`
}

// TransactionSummary is one engine-side transaction line.
type TransactionSummary struct {
	ID              string `json:"id"`
	ChargeValue     int64  `json:"chargeValue"`
	Credit          bool   `json:"credit"`
	Deminimis       bool   `json:"deminimis"`
	MinimumCharge   bool   `json:"minimumCharge"`
	LineDescription string `json:"lineDescription"`
	LicenceNumber   string `json:"licenceNumber"`
	PeriodStart     string `json:"periodStart"`
	PeriodEnd       string `json:"periodEnd"`
}

type rebillResponse struct {
	Invoices []struct {
		ID string `json:"id"`
	} `json:"invoices"`
}

type createBillRunResponse struct {
	BillRun struct {
		ID string `json:"id"`
	} `json:"billRun"`
}

// CreateBillRun opens an engine-side bill run for a region and returns
// its id, recorded locally as the batch's external id.
func (c *Client) CreateBillRun(ctx context.Context, region string) (string, error) {
	var out createBillRunResponse
	err := c.do(ctx, http.MethodPost, "/v2/bill-runs", map[string]string{"region": region}, &out)
	if err != nil {
		return "", err
	}
	return out.BillRun.ID, nil
}

// CreateTransaction submits one transaction to a bill run and returns
// the engine-assigned id.
func (c *Client) CreateTransaction(ctx context.Context, billRunID string, req TransactionRequest) (string, error) {
	var out transactionResponse
	path := fmt.Sprintf("/v2/bill-runs/%s/transactions", billRunID)
	if err := c.do(ctx, http.MethodPost, path, req, &out); err != nil {
		return "", err
	}
	return out.Transaction.ID, nil
}

// Generate finalizes a bill run, triggering the engine's invoice
// numbering and de-minimis assessment.
func (c *Client) Generate(ctx context.Context, billRunID string) error {
	path := fmt.Sprintf("/v2/bill-runs/%s/generate", billRunID)
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

// GetBillRun fetches the aggregate summary including per-invoice
// headlines.
func (c *Client) GetBillRun(ctx context.Context, billRunID string) (*BillRunSummary, error) {
	var out billRunResponse
	path := fmt.Sprintf("/v2/bill-runs/%s", billRunID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out.BillRun, nil
}

// GetInvoice fetches one invoice's transaction-level summary.
func (c *Client) GetInvoice(ctx context.Context, billRunID, invoiceID string) (*InvoiceSummary, error) {
	var out struct {
		Invoice InvoiceSummary `json:"invoice"`
	}
	path := fmt.Sprintf("/v2/bill-runs/%s/invoices/%s", billRunID, invoiceID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out.Invoice, nil
}

// Rebill asks the engine to reissue an invoice into the bill run,
// returning the new engine invoice ids. A 409 conflict surfaces as
// ErrAlreadyRebilled.
func (c *Client) Rebill(ctx context.Context, billRunID, invoiceID string) ([]string, error) {
	var out rebillResponse
	path := fmt.Sprintf("/v2/bill-runs/%s/invoices/%s/rebill", billRunID, invoiceID)
	err := c.do(ctx, http.MethodPatch, path, nil, &out)
	if err != nil {
		var e *Error
		if errors.As(err, &e) && e.StatusCode == http.StatusConflict {
			return nil, ErrAlreadyRebilled
		}
		return nil, err
	}
	ids := make([]string, 0, len(out.Invoices))
	for _, inv := range out.Invoices {
		ids = append(ids, inv.ID)
	}
	return ids, nil
}

// DeleteBillRun removes an engine bill run (batch cleanup).
func (c *Client) DeleteBillRun(ctx context.Context, billRunID string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/v2/bill-runs/%s", billRunID), nil, nil)
}

// DeleteInvoice removes one invoice from a bill run.
func (c *Client) DeleteInvoice(ctx context.Context, billRunID, invoiceID string) error {
	path := fmt.Sprintf("/v2/bill-runs/%s/invoices/%s", billRunID, invoiceID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// DeleteLicence removes a licence's transactions from a bill run.
func (c *Client) DeleteLicence(ctx context.Context, billRunID, licenceID string) error {
	path := fmt.Sprintf("/v2/bill-runs/%s/licences/%s", billRunID, licenceID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode engine request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build engine request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call billing engine: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read engine response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &Error{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode engine response: %w", err)
		}
	}
	return nil
}
