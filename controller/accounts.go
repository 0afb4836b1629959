package controller

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"contasai/web/models"
)

// AccountsAPI is the slice of the accounts backend the controller depends on.
type AccountsAPI interface {
	FetchMonth(month string) ([]models.Account, error)
	Create(req models.NewAccount) (*models.Account, error)
	Update(id string, patch models.AccountPatch) (*models.Account, error)
	Delete(id string) error
}

// PredictionAPI requests a payment-likelihood classification for an account.
type PredictionAPI interface {
	PredictPayment(accountID, dueDate string, value float64) (models.Prediction, error)
}

// Features selects which optional behaviors of the account list are active,
// so one controller covers every variant of the list screen.
type Features struct {
	Search     bool
	Pagination bool
	Prediction bool
}

// AllFeatures enables every optional behavior.
func AllFeatures() Features {
	return Features{Search: true, Pagination: true, Prediction: true}
}

// predictionDraft is the modal sub-state for an in-progress prediction
// request.
type predictionDraft struct {
	open       bool
	submitting bool
	targetID   string
	dueDate    string
	value      string
}

// AccountList owns the account collection and every piece of view state
// derived from it: the search filter, the page cursor, the selected month and
// the prediction draft. It is the only writer of the collection; presentation
// sees read-only snapshots.
type AccountList struct {
	mu sync.Mutex

	api       AccountsAPI
	predictor PredictionAPI
	log       *logrus.Logger

	features Features
	pageSize int

	accounts      []models.Account // server truth as last fetched
	searchQuery   string
	currentPage   int
	selectedMonth string
	loading       bool
	lastError     string
	showReminders bool

	draft predictionDraft

	// loadSeq tags month loads so that only the most recent fetch may
	// replace the collection.
	loadSeq uint64
}

// NewAccountList creates a controller with an empty collection. The reminders
// panel is shown until the first successful month load.
func NewAccountList(api AccountsAPI, predictor PredictionAPI, pageSize int, features Features, log *logrus.Logger) *AccountList {
	if pageSize < 1 {
		pageSize = 3
	}
	return &AccountList{
		api:           api,
		predictor:     predictor,
		log:           log,
		features:      features,
		pageSize:      pageSize,
		currentPage:   1,
		showReminders: true,
	}
}

// LoadForMonth replaces the collection with the accounts due in the given
// month. The collection and search query are cleared up front and the
// reminders panel re-shown until the load succeeds. A fetch failure lands in
// the page-level error; the previous collection is not restored. When loads
// overlap, only the most recently issued one may apply its response.
func (c *AccountList) LoadForMonth(month string) {
	c.mu.Lock()
	c.loadSeq++
	seq := c.loadSeq
	c.selectedMonth = month
	c.accounts = nil
	c.searchQuery = ""
	c.currentPage = 1
	c.loading = true
	c.showReminders = true
	c.mu.Unlock()

	accounts, err := c.api.FetchMonth(month)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.loadSeq {
		c.log.Debugf("discarding stale account load for month %s", month)
		return
	}
	c.loading = false
	if err != nil {
		c.log.Warnf("failed to load accounts for month %s: %v", month, err)
		c.lastError = fmt.Sprintf("failed to load accounts: %v", err)
		return
	}
	c.accounts = accounts
	c.lastError = ""
	c.currentPage = 1
	c.showReminders = false
}

// SetSearchQuery filters the visible accounts by a case-insensitive substring
// match on the name. The page cursor resets so the user never lands past the
// end of a shrunken result set. Ignored when search is not enabled.
func (c *AccountList) SetSearchQuery(query string) {
	if !c.features.Search {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searchQuery = query
	c.currentPage = 1
}

// filtered derives the matching subset of the collection. Caller holds the
// lock. The source slice is never mutated.
func (c *AccountList) filtered() []models.Account {
	if c.searchQuery == "" {
		return c.accounts
	}
	query := strings.ToLower(c.searchQuery)
	var matched []models.Account
	for _, a := range c.accounts {
		if strings.Contains(strings.ToLower(a.Name), query) {
			matched = append(matched, a)
		}
	}
	return matched
}

// totalPages for n filtered records; always at least 1 so the pager renders.
func (c *AccountList) totalPages(n int) int {
	if !c.features.Pagination {
		return 1
	}
	pages := (n + c.pageSize - 1) / c.pageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

// SetPage moves the page cursor. Out-of-range targets are ignored rather than
// clamped so repeated "next" clicks at the boundary stay no-ops.
func (c *AccountList) SetPage(page int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if page < 1 || page > c.totalPages(len(c.filtered())) {
		return
	}
	c.currentPage = page
}

// NextPage advances the page cursor, stopping at the last page.
func (c *AccountList) NextPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentPage < c.totalPages(len(c.filtered())) {
		c.currentPage++
	}
}

// PrevPage moves the page cursor back, stopping at the first page.
func (c *AccountList) PrevPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentPage > 1 {
		c.currentPage--
	}
}

// Create adds an account through the backend. The collection is not touched;
// it is refreshed wholesale by the next month load.
func (c *AccountList) Create(req models.NewAccount) (*models.Account, error) {
	if req.Name == "" {
		return nil, ValidationError("account name is required")
	}
	if req.Value < 0 {
		return nil, ValidationError("account value must not be negative")
	}
	wireDate, err := models.WireDate(req.DueDate)
	if err != nil {
		return nil, ValidationError("due date must be an ISO calendar date")
	}
	req.DueDate = wireDate

	return c.api.Create(req)
}

// Update patches an account through the backend and, on success, patches the
// matching record in place.
func (c *AccountList) Update(id string, patch models.AccountPatch) error {
	if patch.DueDate != nil {
		wireDate, err := models.WireDate(*patch.DueDate)
		if err != nil {
			return ValidationError("due date must be an ISO calendar date")
		}
		patch.DueDate = &wireDate
	}
	if patch.Value != nil && *patch.Value < 0 {
		return ValidationError("account value must not be negative")
	}

	updated, err := c.api.Update(id, patch)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.accounts {
		if c.accounts[i].ID != id {
			continue
		}
		if updated != nil {
			c.accounts[i] = *updated
		} else {
			applyPatch(&c.accounts[i], patch)
		}
		c.currentPage = 1
		return nil
	}
	return nil
}

func applyPatch(a *models.Account, patch models.AccountPatch) {
	if patch.Name != nil {
		a.Name = *patch.Name
	}
	if patch.Value != nil {
		a.Value = *patch.Value
	}
	if patch.DueDate != nil {
		a.DueDate = *patch.DueDate
	}
	if patch.Paid != nil {
		a.Paid = *patch.Paid
	}
}

// Delete removes an account. The confirmation flag is the destructive-action
// gate; without it no request is issued. On backend failure the collection is
// left untouched and the error is returned for a transient notification.
// Removing a record resets the page cursor like any other collection change.
func (c *AccountList) Delete(id string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := c.api.Delete(id); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.accounts {
		if c.accounts[i].ID == id {
			c.accounts = append(c.accounts[:i], c.accounts[i+1:]...)
			c.currentPage = 1
			break
		}
	}
	return nil
}

// OpenPrediction opens the prediction draft for the given account. Any
// previous draft fields are discarded.
func (c *AccountList) OpenPrediction(id string) error {
	if !c.features.Prediction {
		return ValidationError("prediction is not enabled for this list")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = predictionDraft{open: true, targetID: id}
	return nil
}

// ClosePrediction closes the draft and resets its fields, so reopening never
// shows stale input.
func (c *AccountList) ClosePrediction() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = predictionDraft{}
}

// SetPredictionDraft stores the user's modal input. Values are kept raw;
// validation happens on submit.
func (c *AccountList) SetPredictionDraft(dueDate, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.draft.open {
		return
	}
	c.draft.dueDate = dueDate
	c.draft.value = value
}

// SubmitPrediction validates the draft and requests a prediction. On success
// the result is merged into the targeted record and the draft closes; when
// chainSettlement is set the account is additionally marked paid with the
// drafted due date, matching the legacy flow. On failure the draft stays open
// so the user can retry without re-entering data.
func (c *AccountList) SubmitPrediction(chainSettlement bool) error {
	c.mu.Lock()
	if !c.draft.open {
		c.mu.Unlock()
		return ValidationError("no prediction in progress")
	}
	if c.draft.submitting {
		c.mu.Unlock()
		return ValidationError("prediction already being submitted")
	}
	d := c.draft
	if d.dueDate == "" || d.value == "" {
		c.mu.Unlock()
		return ValidationError("fill in all fields to run the prediction")
	}
	value, err := strconv.ParseFloat(d.value, 64)
	if err != nil || value <= 0 {
		c.mu.Unlock()
		return ValidationError("value must be a positive number")
	}
	wireDate, err := models.WireDate(d.dueDate)
	if err != nil {
		c.mu.Unlock()
		return ValidationError("due date must be an ISO calendar date")
	}
	if c.findLocked(d.targetID) == nil {
		c.mu.Unlock()
		return ValidationError("account not found")
	}
	c.draft.submitting = true
	c.mu.Unlock()

	prediction, err := c.predictor.PredictPayment(d.targetID, wireDate, value)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.submitting = false
	if err != nil {
		return err
	}

	c.mergePredictionLocked(d.targetID, prediction)
	if chainSettlement {
		c.markSettledLocked(d.targetID, wireDate)
	}
	c.draft = predictionDraft{}
	return nil
}

// MergePrediction records a prediction result on the matching account without
// touching its settlement state.
func (c *AccountList) MergePrediction(id string, prediction models.Prediction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mergePredictionLocked(id, prediction)
}

// MarkSettled flags the matching account as paid, moving its due date when a
// new one is given.
func (c *AccountList) MarkSettled(id, dueDate string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.markSettledLocked(id, dueDate)
}

func (c *AccountList) mergePredictionLocked(id string, prediction models.Prediction) {
	if a := c.findLocked(id); a != nil {
		a.Prediction = prediction
		c.currentPage = 1
	}
}

func (c *AccountList) markSettledLocked(id, dueDate string) {
	if a := c.findLocked(id); a != nil {
		a.Paid = true
		if dueDate != "" {
			a.DueDate = dueDate
		}
		c.currentPage = 1
	}
}

func (c *AccountList) findLocked(id string) *models.Account {
	for i := range c.accounts {
		if c.accounts[i].ID == id {
			return &c.accounts[i]
		}
	}
	return nil
}
