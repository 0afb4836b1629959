package models

import (
	"fmt"
	"time"
)

// Prediction is the payment-likelihood classification returned by the
// prediction service. The wire values are the service's own labels.
type Prediction string

const (
	PredictionWillPay    Prediction = "pago"
	PredictionWillNotPay Prediction = "não pago"
)

// WillPay reports whether the prediction classifies the account as likely paid.
func (p Prediction) WillPay() bool {
	return p == PredictionWillPay
}

// Account is a recurring financial obligation as served by the accounts
// backend. DueDate stays in the ISO wire form; it is only reformatted at the
// view boundary.
type Account struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Value      float64    `json:"value"`
	DueDate    string     `json:"due_date"`
	Paid       bool       `json:"paid"`
	Prediction Prediction `json:"prediction,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

// NewAccount is the payload for creating an account.
type NewAccount struct {
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	DueDate string  `json:"due_date"`
	Paid    bool    `json:"paid"`
}

// AccountPatch is a partial update; nil fields are left untouched by the
// backend.
type AccountPatch struct {
	Name    *string  `json:"name,omitempty"`
	Value   *float64 `json:"value,omitempty"`
	DueDate *string  `json:"due_date,omitempty"`
	Paid    *bool    `json:"paid,omitempty"`
}

// dueDateLayouts are the wire shapes the backends have been observed to emit:
// a plain calendar date, or the same date with a timestamp attached.
var dueDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// ParseDueDate parses an ISO due date in any of the accepted wire shapes.
func ParseDueDate(s string) (time.Time, error) {
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// DisplayDate renders an ISO date as DD/MM/YYYY. Unparseable input is
// returned as-is rather than hiding the record.
func DisplayDate(s string) string {
	t, err := ParseDueDate(s)
	if err != nil {
		return s
	}
	return t.Format("02/01/2006")
}

// WireDate normalizes a due date to the plain calendar form sent to the
// backends.
func WireDate(s string) (string, error) {
	t, err := ParseDueDate(s)
	if err != nil {
		return "", err
	}
	return t.Format("2006-01-02"), nil
}

// DisplayValue renders a monetary amount with two decimal places.
func DisplayValue(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
