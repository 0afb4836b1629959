package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"contasai/web/controller"
	"contasai/web/models"
	"contasai/web/views"
)

// AccountsHandler exposes the account list controller over HTTP. Every
// mutating endpoint responds with the refreshed page view so the client
// re-renders from one source of truth.
type AccountsHandler struct {
	list *controller.AccountList
	log  *logrus.Logger
}

// NewAccountsHandler creates the handler set for an account list.
func NewAccountsHandler(list *controller.AccountList, log *logrus.Logger) *AccountsHandler {
	return &AccountsHandler{list: list, log: log}
}

func (h *AccountsHandler) view(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, views.BuildAccountsPage(h.list.Snapshot()))
}

// GetView handles GET /api/view/accounts
func (h *AccountsHandler) GetView(w http.ResponseWriter, r *http.Request) {
	h.view(w)
}

// SelectMonth handles POST /api/view/accounts/month
func (h *AccountsHandler) SelectMonth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Month string `json:"month"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validMonth(req.Month) {
		writeError(w, http.StatusBadRequest, "month must be a two-digit value between 01 and 12")
		return
	}

	h.list.LoadForMonth(req.Month)
	h.view(w)
}

func validMonth(month string) bool {
	if len(month) != 2 {
		return false
	}
	n, err := strconv.Atoi(month)
	return err == nil && n >= 1 && n <= 12
}

// Search handles POST /api/view/accounts/search
func (h *AccountsHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.list.SetSearchQuery(req.Query)
	h.view(w)
}

// Page handles POST /api/view/accounts/page
func (h *AccountsHandler) Page(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Direction string `json:"direction"`
		Page      int    `json:"page"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch req.Direction {
	case "next":
		h.list.NextPage()
	case "prev":
		h.list.PrevPage()
	case "":
		h.list.SetPage(req.Page)
	default:
		writeError(w, http.StatusBadRequest, "direction must be next or prev")
		return
	}
	h.view(w)
}

// Create handles POST /api/view/accounts
func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.NewAccount
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.list.Create(req); err != nil {
		h.log.Warnf("create account failed: %v", err)
		writeError(w, statusForError(err), err.Error())
		return
	}
	h.view(w)
}

// Edit handles PATCH /api/view/accounts/{id}
func (h *AccountsHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var patch models.AccountPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.list.Dispatch(controller.EditCommand{ID: id, Patch: patch}); err != nil {
		h.log.Warnf("edit account %s failed: %v", id, err)
		writeError(w, statusForError(err), err.Error())
		return
	}
	h.view(w)
}

// Delete handles DELETE /api/view/accounts/{id}
func (h *AccountsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		Confirmed bool `json:"confirmed"`
	}
	if r.Body != nil {
		// A missing body counts as unconfirmed.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if err := h.list.Dispatch(controller.DeleteCommand{ID: id, Confirmed: req.Confirmed}); err != nil {
		h.log.Warnf("delete account %s failed: %v", id, err)
		writeError(w, statusForError(err), err.Error())
		return
	}
	h.view(w)
}

// PredictOpen handles POST /api/view/accounts/{id}/predict/open
func (h *AccountsHandler) PredictOpen(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.list.OpenPrediction(id); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	h.view(w)
}

// PredictClose handles POST /api/view/accounts/predict/close
func (h *AccountsHandler) PredictClose(w http.ResponseWriter, r *http.Request) {
	h.list.ClosePrediction()
	h.view(w)
}

// PredictSubmit handles POST /api/view/accounts/predict
func (h *AccountsHandler) PredictSubmit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DueDate         string      `json:"due_date"`
		Value           json.Number `json:"value"`
		ChainSettlement bool        `json:"chain_settlement"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.list.SetPredictionDraft(req.DueDate, req.Value.String())
	if err := h.list.Dispatch(controller.PredictCommand{ChainSettlement: req.ChainSettlement}); err != nil {
		h.log.Warnf("prediction failed: %v", err)
		writeError(w, statusForError(err), err.Error())
		return
	}
	h.view(w)
}
