package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"contasai/web/controller"
	"contasai/web/views"
)

// RemindersHandler exposes the reminder browser over HTTP.
type RemindersHandler struct {
	browser *controller.ReminderBrowser
	log     *logrus.Logger
}

// NewRemindersHandler creates the handler set for the reminder browser.
func NewRemindersHandler(browser *controller.ReminderBrowser, log *logrus.Logger) *RemindersHandler {
	return &RemindersHandler{browser: browser, log: log}
}

func (h *RemindersHandler) view(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, views.BuildRemindersPage(h.browser.Snapshot()))
}

// GetView handles GET /api/view/reminders. The feed is fetched on the first
// view; a page reload after a failure retries it.
func (h *RemindersHandler) GetView(w http.ResponseWriter, r *http.Request) {
	h.browser.Load()
	h.view(w)
}

// Page handles POST /api/view/reminders/page
func (h *RemindersHandler) Page(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Page int `json:"page"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.browser.SetPage(req.Page)
	h.view(w)
}

// Select handles POST /api/view/reminders/select. Index is the position
// within the current page window.
func (h *RemindersHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.browser.Select(req.Index)
	h.view(w)
}
