package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"contasai/web/models"
)

// accountsEnvelope is the response wrapper used by the accounts backend.
type accountsEnvelope struct {
	Status   string           `json:"status"`
	Message  string           `json:"message"`
	Accounts []models.Account `json:"accounts"`
	Account  *models.Account  `json:"account"`
}

// AccountsClient talks to the accounts CRUD backend.
type AccountsClient struct {
	baseURL string
	client  *http.Client
	log     *logrus.Logger
}

// NewAccountsClient initializes a client for the accounts backend.
func NewAccountsClient(baseURL string, timeout time.Duration, log *logrus.Logger) *AccountsClient {
	return &AccountsClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

// FetchMonth retrieves the accounts due in the given two-digit month.
func (c *AccountsClient) FetchMonth(month string) ([]models.Account, error) {
	url := fmt.Sprintf("%s/api/accounts?month=%s", c.baseURL, month)
	resp, err := c.client.Get(url)
	if err != nil {
		return nil, &APIError{Message: fmt.Sprintf("error fetching accounts: %v", err)}
	}
	defer resp.Body.Close()

	env, err := decodeEnvelope(resp)
	if err != nil {
		return nil, err
	}
	c.log.Debugf("fetched %d accounts for month %s", len(env.Accounts), month)
	return env.Accounts, nil
}

// Create adds a new account and returns the backend's record.
func (c *AccountsClient) Create(req models.NewAccount) (*models.Account, error) {
	env, err := c.send("POST", c.baseURL+"/api/accounts", req)
	if err != nil {
		return nil, err
	}
	if env.Account == nil {
		return nil, &APIError{Message: "accounts backend returned no record"}
	}
	return env.Account, nil
}

// Update applies a partial update to the account and returns the updated
// record.
func (c *AccountsClient) Update(id string, patch models.AccountPatch) (*models.Account, error) {
	env, err := c.send("PATCH", fmt.Sprintf("%s/api/accounts/%s", c.baseURL, id), patch)
	if err != nil {
		return nil, err
	}
	if env.Account == nil {
		return nil, &APIError{Message: "accounts backend returned no record"}
	}
	return env.Account, nil
}

// Delete removes the account.
func (c *AccountsClient) Delete(id string) error {
	req, err := http.NewRequest("DELETE", fmt.Sprintf("%s/api/accounts/%s", c.baseURL, id), nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &APIError{Message: fmt.Sprintf("error deleting account: %v", err)}
	}
	defer resp.Body.Close()

	_, err = decodeEnvelope(resp)
	return err
}

func (c *AccountsClient) send(method, url string, body interface{}) (*accountsEnvelope, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error encoding request: %w", err)
	}

	req, err := http.NewRequest(method, url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &APIError{Message: fmt.Sprintf("error calling accounts backend: %v", err)}
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp)
}

// decodeEnvelope reads an accounts backend response, converting non-2xx
// statuses and error envelopes into APIError with the backend's message when
// it sent one.
func decodeEnvelope(resp *http.Response) (*accountsEnvelope, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("error reading response: %v", err)}
	}

	var env accountsEnvelope
	if len(body) > 0 {
		// Tolerate non-JSON bodies; the status code still decides below.
		_ = json.Unmarshal(body, &env)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || env.Status == "error" {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	return &env, nil
}
