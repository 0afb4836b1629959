// Package views builds the JSON view models rendered by the HTTP layer.
// All display formatting lives here: monetary values carry two decimals and
// due dates become DD/MM/YYYY; nothing formatted ever flows back toward the
// backends.
package views

import (
	"contasai/web/controller"
	"contasai/web/models"
)

// AccountCard is one rendered account in the list.
type AccountCard struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Value      string `json:"value"`
	DueDate    string `json:"dueDate"`
	Paid       bool   `json:"paid"`
	Prediction string `json:"prediction,omitempty"`
	CanPredict bool   `json:"canPredict"`
}

// Pagination describes the pager controls.
type Pagination struct {
	Page       int  `json:"page"`
	TotalPages int  `json:"totalPages"`
	HasPrev    bool `json:"hasPrev"`
	HasNext    bool `json:"hasNext"`
}

// PredictionModal is the modal form state, present only while a draft is
// open.
type PredictionModal struct {
	AccountID   string `json:"accountId"`
	AccountName string `json:"accountName"`
	DueDate     string `json:"dueDate"`
	Value       string `json:"value"`
	Submitting  bool   `json:"submitting"`
}

// AccountsPage is the full accounts screen.
type AccountsPage struct {
	Month         string           `json:"month"`
	SearchQuery   string           `json:"searchQuery"`
	Loading       bool             `json:"loading"`
	Error         string           `json:"error,omitempty"`
	ShowReminders bool             `json:"showReminders"`
	Accounts      []AccountCard    `json:"accounts"`
	TotalMatches  int              `json:"totalMatches"`
	Pagination    Pagination       `json:"pagination"`
	Modal         *PredictionModal `json:"modal,omitempty"`
}

// NewAccountCard formats one account for display.
func NewAccountCard(a models.Account, canPredict bool) AccountCard {
	return AccountCard{
		ID:         a.ID,
		Name:       a.Name,
		Value:      models.DisplayValue(a.Value),
		DueDate:    models.DisplayDate(a.DueDate),
		Paid:       a.Paid,
		Prediction: string(a.Prediction),
		CanPredict: canPredict,
	}
}

// BuildAccountsPage renders a controller snapshot.
func BuildAccountsPage(s controller.Snapshot) AccountsPage {
	cards := make([]AccountCard, len(s.Accounts))
	for i, a := range s.Accounts {
		cards[i] = NewAccountCard(a, s.Features.Prediction)
	}

	page := AccountsPage{
		Month:         s.Month,
		SearchQuery:   s.SearchQuery,
		Loading:       s.Loading,
		Error:         s.LastError,
		ShowReminders: s.ShowReminders,
		Accounts:      cards,
		TotalMatches:  s.TotalMatches,
		Pagination: Pagination{
			Page:       s.Page,
			TotalPages: s.TotalPages,
			HasPrev:    s.Page > 1,
			HasNext:    s.Page < s.TotalPages,
		},
	}

	if s.Modal.Open {
		page.Modal = &PredictionModal{
			AccountID:   s.Modal.TargetID,
			AccountName: s.Modal.AccountName,
			DueDate:     s.Modal.DueDate,
			Value:       s.Modal.Value,
			Submitting:  s.Modal.Submitting,
		}
	}

	return page
}

// ReminderItem is one row of the reminder list.
type ReminderItem struct {
	Name    string `json:"name"`
	DueDate string `json:"dueDate"`
}

// ReminderDetail is the master/detail pane for the selected reminder.
type ReminderDetail struct {
	Name    string `json:"name"`
	Value   string `json:"value"`
	DueDate string `json:"dueDate"`
	Paid    bool   `json:"paid"`
}

// RemindersPage is the reminder browser screen.
type RemindersPage struct {
	Error      string          `json:"error,omitempty"`
	Reminders  []ReminderItem  `json:"reminders"`
	Pagination Pagination      `json:"pagination"`
	Selected   *ReminderDetail `json:"selected,omitempty"`
}

// BuildRemindersPage renders a reminder browser snapshot.
func BuildRemindersPage(s controller.ReminderSnapshot) RemindersPage {
	items := make([]ReminderItem, len(s.Reminders))
	for i, r := range s.Reminders {
		items[i] = ReminderItem{
			Name:    r.Name,
			DueDate: models.DisplayDate(r.DueDate),
		}
	}

	page := RemindersPage{
		Error:     s.Error,
		Reminders: items,
		Pagination: Pagination{
			Page:       s.Page,
			TotalPages: s.TotalPages,
			HasPrev:    s.Page > 1,
			HasNext:    s.Page < s.TotalPages,
		},
	}

	if s.Selected != nil {
		page.Selected = &ReminderDetail{
			Name:    s.Selected.Name,
			Value:   models.DisplayValue(s.Selected.Value),
			DueDate: models.DisplayDate(s.Selected.DueDate),
			Paid:    s.Selected.Paid,
		}
	}

	return page
}
