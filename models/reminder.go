package models

// Reminder is a pending obligation from the read-only reminders feed. The
// feed carries no identifier the UI relies on; selection is by list position.
type Reminder struct {
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	DueDate string  `json:"due_date"`
	Paid    bool    `json:"paid"`
}
