package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/config"
	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/models"
	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/utils"
)

// Client is the thin HTTP client for the external donation REST API. The flow
// controller only consumes the shapes described here; the API itself lives
// outside this repository.
type Client struct {
	baseURL    string
	apiKey     string
	currency   string
	successURL string
	failureURL string
	cancelURL  string
	httpClient *http.Client
	log        *utils.Logger
}

func New(cfg config.Config, log *utils.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BackendBaseURL, "/"),
		apiKey:     cfg.BackendAPIKey,
		currency:   cfg.Currency,
		successURL: cfg.PaymentSuccessURL,
		failureURL: cfg.PaymentFailureURL,
		cancelURL:  cfg.PaymentCancelURL,
		httpClient: &http.Client{Timeout: cfg.BackendTimeout},
		log:        log,
	}
}

// HasDonorCertificateInfo reports whether certificate info is already
// registered for the donor. The backend answers with an empty body or 404
// when no record exists; only presence is consumed.
func (c *Client) HasDonorCertificateInfo(ctx context.Context, userID string) (bool, error) {
	endpoint := c.baseURL + "/api/DonorCertificateInfo?userId=" + url.QueryEscape(userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("donor certificate lookup returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return false, err
	}
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == "null" || trimmed == "{}" {
		return false, nil
	}
	return true, nil
}

func (c *Client) CreateDonorCertificateInfo(ctx context.Context, userID string, details models.DonorDetails) error {
	payload := map[string]string{
		"userId":          userID,
		"identityOrRegNo": details.IdentityOrRegNo,
		"incomeTaxNumber": details.IncomeTaxNumber,
		"address":         details.Address,
		"phoneNumber":     details.PhoneNumber,
	}
	resp, err := c.postJSON(ctx, "/api/DonorCertificateInfo", payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("donor certificate create returned status %d", resp.StatusCode)
	}
	return nil
}

// CreateOnlineDonation creates a donation paid through the hosted checkout
// page and returns the gateway redirect URL.
func (c *Client) CreateOnlineDonation(ctx context.Context, userID string, amountCents int64, isAnonymous bool) (string, error) {
	payload := map[string]interface{}{
		"userId":      userID,
		"amount":      utils.FormatCents(amountCents),
		"currency":    c.currency,
		"successUrl":  c.successURL,
		"failureUrl":  c.failureURL,
		"cancelUrl":   c.cancelURL,
		"isAnonymous": isAnonymous,
	}
	resp, err := c.postJSON(ctx, "/api/Donation/online", payload)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("online donation create returned status %d", resp.StatusCode)
	}

	var out struct {
		RedirectURL string `json:"redirectUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.RedirectURL) == "" {
		return "", errors.New("online donation response missing redirectUrl")
	}
	return out.RedirectURL, nil
}

// CreateManualDonation creates a bank-transfer donation and returns its
// reference id.
func (c *Client) CreateManualDonation(ctx context.Context, userID string, amountCents int64, isAnonymous bool) (string, error) {
	payload := map[string]interface{}{
		"userId":      userID,
		"amount":      utils.FormatCents(amountCents),
		"currency":    c.currency,
		"isAnonymous": isAnonymous,
	}
	resp, err := c.postJSON(ctx, "/api/Donation/manual", payload)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("manual donation create returned status %d", resp.StatusCode)
	}

	var out struct {
		ReferenceNumber string `json:"referenceNumber"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.ReferenceNumber) == "" {
		return "", errors.New("manual donation response missing referenceNumber")
	}
	return out.ReferenceNumber, nil
}

// UploadPaymentProof forwards the donor's proof-of-payment document for a
// manual donation.
func (c *Client) UploadPaymentProof(ctx context.Context, referenceNumber string, amountCents int64, filename string, doc io.Reader) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("referenceNumber", referenceNumber); err != nil {
		return err
	}
	if err := writer.WriteField("amount", utils.FormatCents(amountCents)); err != nil {
		return err
	}
	part, err := writer.CreateFormFile("docFile", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, doc); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/Donation/proof", &body)
	if err != nil {
		return err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("proof upload returned status %d", resp.StatusCode)
	}
	c.log.Info("payment_proof_uploaded", map[string]interface{}{
		"referenceNumber": referenceNumber,
		"elapsedMs":       time.Since(start).Milliseconds(),
	})
	return nil
}

// GetBankAccountInfo returns the bank details shown during the manual payment
// step.
func (c *Client) GetBankAccountInfo(ctx context.Context) (models.BankAccount, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/BankAccountInfo", nil)
	if err != nil {
		return models.BankAccount{}, err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.BankAccount{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.BankAccount{}, fmt.Errorf("bank account lookup returned status %d", resp.StatusCode)
	}

	var account models.BankAccount
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		return models.BankAccount{}, err
	}
	return account, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}

func (c *Client) setHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
}
