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

// PredictionClient talks to the prediction service, which also serves the
// pending-reminders feed. The client never retries; callers retry by
// resubmitting.
type PredictionClient struct {
	baseURL string
	client  *http.Client
	log     *logrus.Logger
}

// NewPredictionClient initializes a client for the prediction service.
func NewPredictionClient(baseURL string, timeout time.Duration, log *logrus.Logger) *PredictionClient {
	return &PredictionClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

// PredictPayment asks the prediction service whether the account is likely to
// be paid by the given due date.
func (c *PredictionClient) PredictPayment(accountID, dueDate string, value float64) (models.Prediction, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"valor":    value,
		"due_date": dueDate,
	})
	if err != nil {
		return "", fmt.Errorf("error encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/api/accounts/%s/predict_payment", c.baseURL, accountID)
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &APIError{Message: fmt.Sprintf("error calling prediction service: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("error reading response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &errBody)
		msg := errBody.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	var result struct {
		Prediction models.Prediction `json:"prediction"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("error decoding response: %w", err)
	}

	c.log.Debugf("prediction for account %s: %s", accountID, result.Prediction)
	return result.Prediction, nil
}

// FetchReminders retrieves the pending-reminders feed.
func (c *PredictionClient) FetchReminders() ([]models.Reminder, error) {
	resp, err := c.client.Get(c.baseURL + "/api/reminders")
	if err != nil {
		return nil, &APIError{Message: fmt.Sprintf("error fetching reminders: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &errBody)
		msg := errBody.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	var result struct {
		Reminders []models.Reminder `json:"reminders"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}
	return result.Reminders, nil
}
