package controller

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"contasai/web/models"
)

// RemindersAPI is the read-only pending-reminders feed.
type RemindersAPI interface {
	FetchReminders() ([]models.Reminder, error)
}

// ReminderBrowser is a paginated, read-only view over the pending-reminders
// feed with a master/detail selection. Selection never triggers a network
// call; the detail pane renders from the already-fetched record.
type ReminderBrowser struct {
	mu sync.Mutex

	api RemindersAPI
	log *logrus.Logger

	pageSize    int
	reminders   []models.Reminder
	currentPage int
	selected    int // absolute index into reminders; -1 when nothing selected
	loaded      bool
	loading     bool
	loadErr     string
}

// NewReminderBrowser creates an empty browser; the feed is fetched by the
// first Load.
func NewReminderBrowser(api RemindersAPI, pageSize int, log *logrus.Logger) *ReminderBrowser {
	if pageSize < 1 {
		pageSize = 5
	}
	return &ReminderBrowser{
		api:         api,
		log:         log,
		pageSize:    pageSize,
		currentPage: 1,
		selected:    -1,
	}
}

// Load fetches the feed once. Overlapping calls share the fetch already in
// flight. A failed fetch leaves no partial list, only a page-level error; the
// next Load (a full page reload) tries again.
func (b *ReminderBrowser) Load() {
	b.mu.Lock()
	if b.loaded || b.loading {
		b.mu.Unlock()
		return
	}
	b.loading = true
	b.mu.Unlock()

	reminders, err := b.api.FetchReminders()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.loading = false
	if err != nil {
		b.log.Warnf("failed to load reminders: %v", err)
		b.loadErr = fmt.Sprintf("failed to load reminders: %v", err)
		b.reminders = nil
		return
	}
	b.loaded = true
	b.loadErr = ""
	b.reminders = reminders
	b.currentPage = 1
	b.selected = -1
}

func (b *ReminderBrowser) totalPages() int {
	pages := (len(b.reminders) + b.pageSize - 1) / b.pageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

// SetPage moves to the given page and clears the selection, so the detail
// pane never points at a record from another page's window.
func (b *ReminderBrowser) SetPage(page int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if page < 1 || page > b.totalPages() {
		return
	}
	b.currentPage = page
	b.selected = -1
}

// Select picks a reminder by its position within the current page window.
// Out-of-range positions are ignored.
func (b *ReminderBrowser) Select(indexOnPage int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if indexOnPage < 0 || indexOnPage >= b.pageSize {
		return
	}
	abs := (b.currentPage-1)*b.pageSize + indexOnPage
	if abs >= len(b.reminders) {
		return
	}
	b.selected = abs
}

// ReminderSnapshot is the read projection of the browser.
type ReminderSnapshot struct {
	Error      string
	Reminders  []models.Reminder
	Page       int
	TotalPages int
	Selected   *models.Reminder
}

// Snapshot returns the current page window and selection. Slices and records
// are copies.
func (b *ReminderBrowser) Snapshot() ReminderSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := (b.currentPage - 1) * b.pageSize
	if start > len(b.reminders) {
		start = len(b.reminders)
	}
	end := start + b.pageSize
	if end > len(b.reminders) {
		end = len(b.reminders)
	}

	window := make([]models.Reminder, end-start)
	copy(window, b.reminders[start:end])

	var selected *models.Reminder
	if b.selected >= 0 && b.selected < len(b.reminders) {
		r := b.reminders[b.selected]
		selected = &r
	}

	return ReminderSnapshot{
		Error:      b.loadErr,
		Reminders:  window,
		Page:       b.currentPage,
		TotalPages: b.totalPages(),
		Selected:   selected,
	}
}
