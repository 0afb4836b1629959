package controller

// ValidationError is a client-side input failure detected before any network
// call is made.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// ErrConfirmationRequired gates destructive actions behind an explicit user
// confirmation.
var ErrConfirmationRequired = ValidationError("deletion requires explicit confirmation")
