package controller

import "contasai/web/models"

// ModalState is the read projection of the prediction draft.
type ModalState struct {
	Open        bool
	Submitting  bool
	TargetID    string
	AccountName string
	DueDate     string
	Value       string
}

// Snapshot is a read-only projection of the account list for presentation.
// The Accounts slice is the current page window and is a copy; mutating it
// never touches the controller's collection.
type Snapshot struct {
	Month         string
	SearchQuery   string
	Loading       bool
	LastError     string
	ShowReminders bool
	Accounts      []models.Account
	Page          int
	TotalPages    int
	TotalMatches  int
	Features      Features
	Modal         ModalState
}

// Snapshot captures the current derived view: the filtered set windowed to
// the current page, plus page counts and the modal sub-state.
func (c *AccountList) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	filtered := c.filtered()
	totalPages := c.totalPages(len(filtered))

	page := c.currentPage
	if page > totalPages {
		page = totalPages
	}

	window := filtered
	if c.features.Pagination {
		start := (page - 1) * c.pageSize
		if start > len(filtered) {
			start = len(filtered)
		}
		end := start + c.pageSize
		if end > len(filtered) {
			end = len(filtered)
		}
		window = filtered[start:end]
	}

	accounts := make([]models.Account, len(window))
	copy(accounts, window)

	modal := ModalState{
		Open:       c.draft.open,
		Submitting: c.draft.submitting,
		TargetID:   c.draft.targetID,
		DueDate:    c.draft.dueDate,
		Value:      c.draft.value,
	}
	if modal.Open {
		if a := c.findLocked(modal.TargetID); a != nil {
			modal.AccountName = a.Name
		}
	}

	return Snapshot{
		Month:         c.selectedMonth,
		SearchQuery:   c.searchQuery,
		Loading:       c.loading,
		LastError:     c.lastError,
		ShowReminders: c.showReminders,
		Accounts:      accounts,
		Page:          page,
		TotalPages:    totalPages,
		TotalMatches:  len(filtered),
		Features:      c.features,
		Modal:         modal,
	}
}
