package controller

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"contasai/web/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeAccountsAPI struct {
	mu          sync.Mutex
	accounts    []models.Account
	fetchErr    error
	deleteErr   error
	updateErr   error
	createErr   error
	fetchCalls  int
	deleteCalls int
	// fetchGate, when set, blocks FetchMonth until released so tests can
	// overlap loads deterministically.
	fetchGate chan struct{}
}

func (f *fakeAccountsAPI) FetchMonth(month string) ([]models.Account, error) {
	f.mu.Lock()
	f.fetchCalls++
	gate := f.fetchGate
	accounts := f.accounts
	err := f.fetchErr
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	out := make([]models.Account, len(accounts))
	copy(out, accounts)
	return out, nil
}

func (f *fakeAccountsAPI) Create(req models.NewAccount) (*models.Account, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.Account{ID: "new", Name: req.Name, Value: req.Value, DueDate: req.DueDate, Paid: req.Paid}, nil
}

func (f *fakeAccountsAPI) Update(id string, patch models.AccountPatch) (*models.Account, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return nil, nil
}

func (f *fakeAccountsAPI) Delete(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	return f.deleteErr
}

type fakePredictionAPI struct {
	prediction models.Prediction
	err        error
	calls      int
	lastID     string
	lastDate   string
	lastValue  float64
}

func (f *fakePredictionAPI) PredictPayment(id, dueDate string, value float64) (models.Prediction, error) {
	f.calls++
	f.lastID = id
	f.lastDate = dueDate
	f.lastValue = value
	if f.err != nil {
		return "", f.err
	}
	return f.prediction, nil
}

func testAccounts(n int) []models.Account {
	accounts := make([]models.Account, n)
	for i := range accounts {
		accounts[i] = models.Account{
			ID:      fmt.Sprintf("id-%d", i),
			Name:    fmt.Sprintf("Account %d", i),
			Value:   float64(10 * (i + 1)),
			DueDate: fmt.Sprintf("2024-03-%02d", i%28+1),
		}
	}
	return accounts
}

func newLoadedList(t *testing.T, api *fakeAccountsAPI, predictor *fakePredictionAPI, pageSize int) *AccountList {
	t.Helper()
	list := NewAccountList(api, predictor, pageSize, AllFeatures(), testLogger())
	list.LoadForMonth("03")
	if s := list.Snapshot(); s.LastError != "" {
		t.Fatalf("unexpected load error: %s", s.LastError)
	}
	return list
}

func TestLoadForMonthReplacesCollection(t *testing.T) {
	api := &fakeAccountsAPI{accounts: testAccounts(4)}
	list := NewAccountList(api, &fakePredictionAPI{}, 3, AllFeatures(), testLogger())

	if !list.Snapshot().ShowReminders {
		t.Error("Expected reminders shown before any load")
	}

	list.LoadForMonth("03")

	s := list.Snapshot()
	if s.Month != "03" {
		t.Errorf("Expected month 03, got %s", s.Month)
	}
	if s.TotalMatches != 4 {
		t.Errorf("Expected 4 accounts, got %d", s.TotalMatches)
	}
	if s.Page != 1 {
		t.Errorf("Expected page reset to 1, got %d", s.Page)
	}
	if s.ShowReminders {
		t.Error("Expected reminders hidden after a successful month load")
	}
	if s.LastError != "" {
		t.Errorf("Expected error cleared, got %q", s.LastError)
	}
}

func TestLoadForMonthFailure(t *testing.T) {
	api := &fakeAccountsAPI{accounts: testAccounts(2)}
	list := newLoadedList(t, api, &fakePredictionAPI{}, 3)

	api.mu.Lock()
	api.fetchErr = errors.New("connection refused")
	api.mu.Unlock()

	list.LoadForMonth("04")

	s := list.Snapshot()
	if s.LastError == "" {
		t.Error("Expected load failure recorded in the page error")
	}
	if s.TotalMatches != 0 {
		t.Errorf("Expected empty collection after failed load, got %d records", s.TotalMatches)
	}
	if !s.ShowReminders {
		t.Error("Expected reminders shown again after a failed load")
	}
}

func TestLatestLoadWins(t *testing.T) {
	first := testAccounts(2)
	second := []models.Account{{ID: "x", Name: "Other", DueDate: "2024-04-01"}}

	gate := make(chan struct{})
	api := &fakeAccountsAPI{accounts: first, fetchGate: gate}
	list := NewAccountList(api, &fakePredictionAPI{}, 3, AllFeatures(), testLogger())

	done := make(chan struct{})
	go func() {
		list.LoadForMonth("03")
		close(done)
	}()

	// Let the first load reach the fake, then issue a newer one that
	// completes immediately.
	api.mu.Lock()
	for api.fetchCalls == 0 {
		api.mu.Unlock()
		api.mu.Lock()
	}
	api.accounts = second
	api.fetchGate = nil
	api.mu.Unlock()

	list.LoadForMonth("04")

	// Release the stale response; it must be discarded.
	close(gate)
	<-done

	s := list.Snapshot()
	if s.Month != "04" {
		t.Errorf("Expected month 04, got %s", s.Month)
	}
	if len(s.Accounts) != 1 || s.Accounts[0].ID != "x" {
		t.Errorf("Expected the newer load's collection to win, got %+v", s.Accounts)
	}
}

func TestSearchFiltersByNameCaseInsensitive(t *testing.T) {
	api := &fakeAccountsAPI{accounts: []models.Account{
		{ID: "1", Name: "Energia", DueDate: "2024-03-01"},
		{ID: "2", Name: "Internet", DueDate: "2024-03-05"},
		{ID: "3", Name: "ENERGIA SOLAR", DueDate: "2024-03-10"},
	}}
	list := newLoadedList(t, api, &fakePredictionAPI{}, 10)

	list.SetSearchQuery("energia")

	s := list.Snapshot()
	if s.TotalMatches != 2 {
		t.Fatalf("Expected 2 matches, got %d", s.TotalMatches)
	}
	for _, a := range s.Accounts {
		if a.ID != "1" && a.ID != "3" {
			t.Errorf("Unexpected record in filtered view: %+v", a)
		}
	}

	// Filtering must not mutate the source collection.
	list.SetSearchQuery("")
	if s := list.Snapshot(); s.TotalMatches != 3 {
		t.Errorf("Expected full collection after clearing the query, got %d", s.TotalMatches)
	}
}

func TestSearchResetsPage(t *testing.T) {
	api := &fakeAccountsAPI{accounts: testAccounts(7)}
	list := newLoadedList(t, api, &fakePredictionAPI{}, 3)

	list.NextPage()
	if s := list.Snapshot(); s.Page != 2 {
		t.Fatalf("Expected page 2, got %d", s.Page)
	}

	list.SetSearchQuery("Account")
	if s := list.Snapshot(); s.Page != 1 {
		t.Errorf("Expected page reset to 1 after search change, got %d", s.Page)
	}
}

func TestPaginationWindowsReconstructFilteredView(t *testing.T) {
	for _, n := range []int{0, 1, 3, 4, 7, 9} {
		api := &fakeAccountsAPI{accounts: testAccounts(n)}
		list := newLoadedList(t, api, &fakePredictionAPI{}, 3)

		s := list.Snapshot()
		expectedPages := (n + 2) / 3
		if expectedPages < 1 {
			expectedPages = 1
		}
		if s.TotalPages != expectedPages {
			t.Errorf("n=%d: expected %d pages, got %d", n, expectedPages, s.TotalPages)
		}

		var joined []models.Account
		for page := 1; page <= s.TotalPages; page++ {
			list.SetPage(page)
			joined = append(joined, list.Snapshot().Accounts...)
		}
		if len(joined) != n {
			t.Errorf("n=%d: concatenated windows hold %d records", n, len(joined))
			continue
		}
		for i, a := range joined {
			if a.ID != fmt.Sprintf("id-%d", i) {
				t.Errorf("n=%d: record %d out of order: %s", n, i, a.ID)
			}
		}
	}
}

func TestPageBoundariesAreNoOps(t *testing.T) {
	api := &fakeAccountsAPI{accounts: testAccounts(4)}
	list := newLoadedList(t, api, &fakePredictionAPI{}, 3)

	list.PrevPage()
	if s := list.Snapshot(); s.Page != 1 {
		t.Errorf("Expected prev on first page to stay at 1, got %d", s.Page)
	}

	list.SetPage(2)
	list.NextPage()
	if s := list.Snapshot(); s.Page != 2 {
		t.Errorf("Expected next on last page to stay at 2, got %d", s.Page)
	}

	list.SetPage(99)
	if s := list.Snapshot(); s.Page != 2 {
		t.Errorf("Expected out-of-range SetPage ignored, got %d", s.Page)
	}
}

func TestDeleteRemovesExactlyOneOnSuccess(t *testing.T) {
	api := &fakeAccountsAPI{accounts: testAccounts(3)}
	list := newLoadedList(t, api, &fakePredictionAPI{}, 10)

	if err := list.Dispatch(DeleteCommand{ID: "id-1", Confirmed: true}); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	s := list.Snapshot()
	if s.TotalMatches != 2 {
		t.Fatalf("Expected 2 records after delete, got %d", s.TotalMatches)
	}
	for _, a := range s.Accounts {
		if a.ID == "id-1" {
			t.Error("Deleted record still present")
		}
	}
}

func TestCollectionMutationsResetPage(t *testing.T) {
	api := &fakeAccountsAPI{accounts: testAccounts(7)}
	predictor := &fakePredictionAPI{prediction: models.PredictionWillPay}
	list := newLoadedList(t, api, predictor, 3)

	list.SetPage(3)
	if err := list.Delete("id-6", true); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if s := list.Snapshot(); s.Page != 1 {
		t.Errorf("Expected page reset to 1 after delete, got %d", s.Page)
	}

	list.SetPage(2)
	name := "Renamed"
	if err := list.Update("id-0", models.AccountPatch{Name: &name}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if s := list.Snapshot(); s.Page != 1 {
		t.Errorf("Expected page reset to 1 after update, got %d", s.Page)
	}

	list.SetPage(2)
	list.OpenPrediction("id-1")
	list.SetPredictionDraft("2024-05-20", "10")
	if err := list.SubmitPrediction(false); err != nil {
		t.Fatalf("SubmitPrediction returned error: %v", err)
	}
	if s := list.Snapshot(); s.Page != 1 {
		t.Errorf("Expected page reset to 1 after prediction merge, got %d", s.Page)
	}
}

func TestDeleteFailureLeavesCollectionUntouched(t *testing.T) {
	api := &fakeAccountsAPI{accounts: testAccounts(3), deleteErr: errors.New("boom")}
	list := newLoadedList(t, api, &fakePredictionAPI{}, 10)

	before := list.Snapshot().Accounts
	err := list.Dispatch(DeleteCommand{ID: "id-1", Confirmed: true})
	if err == nil {
		t.Fatal("Expected delete failure to surface")
	}
	after := list.Snapshot()
	if after.LastError != "" {
		t.Errorf("Delete failure must not land in the page error, got %q", after.LastError)
	}
	if !reflect.DeepEqual(before, after.Accounts) {
		t.Error("Expected collection unchanged after failed delete")
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	api := &fakeAccountsAPI{accounts: testAccounts(1)}
	list := newLoadedList(t, api, &fakePredictionAPI{}, 10)

	err := list.Dispatch(DeleteCommand{ID: "id-0"})
	if !errors.Is(err, ErrConfirmationRequired) {
		t.Fatalf("Expected ErrConfirmationRequired, got %v", err)
	}
	if api.deleteCalls != 0 {
		t.Error("Unconfirmed delete must not reach the backend")
	}
	if list.Snapshot().TotalMatches != 1 {
		t.Error("Expected collection unchanged")
	}
}

func TestSubmitPredictionMergesOnlyTarget(t *testing.T) {
	api := &fakeAccountsAPI{accounts: testAccounts(3)}
	predictor := &fakePredictionAPI{prediction: models.PredictionWillPay}
	list := newLoadedList(t, api, predictor, 10)

	if err := list.OpenPrediction("id-1"); err != nil {
		t.Fatalf("OpenPrediction returned error: %v", err)
	}
	list.SetPredictionDraft("2024-05-20", "75.50")

	if err := list.Dispatch(PredictCommand{ChainSettlement: true}); err != nil {
		t.Fatalf("SubmitPrediction returned error: %v", err)
	}

	if predictor.lastID != "id-1" || predictor.lastDate != "2024-05-20" || predictor.lastValue != 75.5 {
		t.Errorf("Unexpected prediction request: %s %s %v", predictor.lastID, predictor.lastDate, predictor.lastValue)
	}

	s := list.Snapshot()
	for _, a := range s.Accounts {
		switch a.ID {
		case "id-1":
			if a.Prediction != models.PredictionWillPay {
				t.Errorf("Expected prediction merged, got %q", a.Prediction)
			}
			if !a.Paid || a.DueDate != "2024-05-20" {
				t.Errorf("Expected chained settlement applied, got paid=%v due=%s", a.Paid, a.DueDate)
			}
		default:
			if a.Prediction != "" || a.Paid {
				t.Errorf("Record %s modified by another account's prediction", a.ID)
			}
		}
	}
	if s.Modal.Open {
		t.Error("Expected draft closed after success")
	}
}

func TestSubmitPredictionWithoutChainLeavesSettlementAlone(t *testing.T) {
	api := &fakeAccountsAPI{accounts: testAccounts(2)}
	predictor := &fakePredictionAPI{prediction: models.PredictionWillNotPay}
	list := newLoadedList(t, api, predictor, 10)

	list.OpenPrediction("id-0")
	list.SetPredictionDraft("2024-05-20", "10")
	if err := list.SubmitPrediction(false); err != nil {
		t.Fatalf("SubmitPrediction returned error: %v", err)
	}

	var target models.Account
	for _, a := range list.Snapshot().Accounts {
		if a.ID == "id-0" {
			target = a
		}
	}
	if target.Prediction != models.PredictionWillNotPay {
		t.Errorf("Expected prediction merged, got %q", target.Prediction)
	}
	if target.Paid {
		t.Error("Settlement must not change without chaining")
	}
	if target.DueDate != "2024-03-01" {
		t.Errorf("Due date must not change without chaining, got %s", target.DueDate)
	}
}

func TestSubmitPredictionValidationNeverCallsNetwork(t *testing.T) {
	api := &fakeAccountsAPI{accounts: testAccounts(1)}
	predictor := &fakePredictionAPI{prediction: models.PredictionWillPay}
	list := newLoadedList(t, api, predictor, 10)

	tests := []struct {
		name    string
		dueDate string
		value   string
	}{
		{"empty due date", "", "10"},
		{"empty value", "2024-05-20", ""},
		{"non-numeric value", "2024-05-20", "ten"},
		{"zero value", "2024-05-20", "0"},
		{"malformed date", "20/05/2024", "10"},
	}

	for _, tt := range tests {
		list.OpenPrediction("id-0")
		list.SetPredictionDraft(tt.dueDate, tt.value)
		err := list.SubmitPrediction(false)
		var verr ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%s: expected ValidationError, got %v", tt.name, err)
		}
		if s := list.Snapshot(); !s.Modal.Open {
			t.Errorf("%s: expected draft to stay open", tt.name)
		}
		list.ClosePrediction()
	}

	if predictor.calls != 0 {
		t.Errorf("Validation failures must not reach the network, got %d calls", predictor.calls)
	}
}

func TestSubmitPredictionFailureKeepsDraftOpen(t *testing.T) {
	api := &fakeAccountsAPI{accounts: testAccounts(1)}
	predictor := &fakePredictionAPI{err: errors.New("model unavailable")}
	list := newLoadedList(t, api, predictor, 10)

	list.OpenPrediction("id-0")
	list.SetPredictionDraft("2024-05-20", "10")
	if err := list.SubmitPrediction(false); err == nil {
		t.Fatal("Expected prediction failure to surface")
	}

	s := list.Snapshot()
	if !s.Modal.Open {
		t.Error("Expected draft open for retry after failure")
	}
	if s.Modal.DueDate != "2024-05-20" || s.Modal.Value != "10" {
		t.Errorf("Expected draft input preserved, got %q %q", s.Modal.DueDate, s.Modal.Value)
	}
	if a := s.Accounts[0]; a.Prediction != "" || a.Paid {
		t.Error("Record must be unmodified after failed prediction")
	}
}

func TestClosePredictionResetsDraft(t *testing.T) {
	api := &fakeAccountsAPI{accounts: testAccounts(1)}
	list := newLoadedList(t, api, &fakePredictionAPI{}, 10)

	list.OpenPrediction("id-0")
	list.SetPredictionDraft("2024-05-20", "10")
	list.ClosePrediction()

	list.OpenPrediction("id-0")
	s := list.Snapshot()
	if s.Modal.DueDate != "" || s.Modal.Value != "" {
		t.Errorf("Reopened draft must not show stale input, got %q %q", s.Modal.DueDate, s.Modal.Value)
	}
}

func TestScenarioMonthSearchPageDelete(t *testing.T) {
	api := &fakeAccountsAPI{accounts: []models.Account{
		{ID: "A", Name: "Agua", Value: 100, DueDate: "2024-03-01", Paid: false},
		{ID: "B", Name: "Luz", Value: 50, DueDate: "2024-03-15", Paid: true},
	}}
	list := NewAccountList(api, &fakePredictionAPI{}, 1, AllFeatures(), testLogger())
	list.LoadForMonth("03")

	list.SetSearchQuery("a")
	s := list.Snapshot()
	if s.TotalMatches != 1 || s.Accounts[0].ID != "A" {
		t.Fatalf("Expected only A to match %q, got %+v", "a", s.Accounts)
	}

	list.SetSearchQuery("")
	list.SetPage(2)
	s = list.Snapshot()
	if s.TotalPages != 2 || len(s.Accounts) != 1 || s.Accounts[0].ID != "B" {
		t.Fatalf("Expected one-element second window holding B, got %+v", s.Accounts)
	}

	if err := list.Delete("A", true); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	list.SetSearchQuery("u")
	s = list.Snapshot()
	if s.TotalMatches != 1 || s.Accounts[0].ID != "B" {
		t.Errorf("Expected filtered view over the remaining set, got %+v", s.Accounts)
	}
}

func TestDisabledFeatures(t *testing.T) {
	api := &fakeAccountsAPI{accounts: testAccounts(5)}
	list := NewAccountList(api, &fakePredictionAPI{}, 3, Features{}, testLogger())
	list.LoadForMonth("03")

	list.SetSearchQuery("Account 1")
	s := list.Snapshot()
	if s.TotalMatches != 5 {
		t.Errorf("Search disabled: expected full set, got %d", s.TotalMatches)
	}
	if s.TotalPages != 1 || len(s.Accounts) != 5 {
		t.Errorf("Pagination disabled: expected one page with all records, got %d pages, %d records", s.TotalPages, len(s.Accounts))
	}

	if err := list.OpenPrediction("id-0"); err == nil {
		t.Error("Prediction disabled: expected OpenPrediction to be refused")
	}
}

func TestCreateValidatesBeforeNetwork(t *testing.T) {
	api := &fakeAccountsAPI{}
	list := NewAccountList(api, &fakePredictionAPI{}, 3, AllFeatures(), testLogger())

	if _, err := list.Create(models.NewAccount{Name: "", Value: 10, DueDate: "2024-03-01"}); err == nil {
		t.Error("Expected validation error for empty name")
	}
	if _, err := list.Create(models.NewAccount{Name: "Agua", Value: -1, DueDate: "2024-03-01"}); err == nil {
		t.Error("Expected validation error for negative value")
	}
	if _, err := list.Create(models.NewAccount{Name: "Agua", Value: 10, DueDate: "bad"}); err == nil {
		t.Error("Expected validation error for malformed date")
	}

	created, err := list.Create(models.NewAccount{Name: "Agua", Value: 10, DueDate: "2024-03-01T00:00:00Z"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.DueDate != "2024-03-01" {
		t.Errorf("Expected wire date normalized, got %s", created.DueDate)
	}
}

func TestUpdatePatchesRecordInPlace(t *testing.T) {
	api := &fakeAccountsAPI{accounts: testAccounts(2)}
	list := newLoadedList(t, api, &fakePredictionAPI{}, 10)

	name := "Renamed"
	if err := list.Dispatch(EditCommand{ID: "id-1", Patch: models.AccountPatch{Name: &name}}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	for _, a := range list.Snapshot().Accounts {
		if a.ID == "id-1" && a.Name != "Renamed" {
			t.Errorf("Expected record patched in place, got %q", a.Name)
		}
		if a.ID == "id-0" && a.Name != "Account 0" {
			t.Errorf("Other records must be untouched, got %q", a.Name)
		}
	}
}
