package controller

import (
	"fmt"

	"contasai/web/models"
)

// Command is one of the closed set of mutating actions presentation may
// dispatch at the account list. Keeping the set closed keeps the state
// machine auditable.
type Command interface {
	isCommand()
}

// EditCommand patches an account.
type EditCommand struct {
	ID    string
	Patch models.AccountPatch
}

// DeleteCommand removes an account. Confirmed carries the destructive-action
// gate; the controller refuses unconfirmed deletes.
type DeleteCommand struct {
	ID        string
	Confirmed bool
}

// PredictCommand submits the open prediction draft. ChainSettlement
// additionally marks the account paid with the drafted due date, which is the
// legacy combined flow.
type PredictCommand struct {
	ChainSettlement bool
}

func (EditCommand) isCommand()    {}
func (DeleteCommand) isCommand()  {}
func (PredictCommand) isCommand() {}

// Dispatch executes a command against the list.
func (c *AccountList) Dispatch(cmd Command) error {
	switch cmd := cmd.(type) {
	case EditCommand:
		return c.Update(cmd.ID, cmd.Patch)
	case DeleteCommand:
		return c.Delete(cmd.ID, cmd.Confirmed)
	case PredictCommand:
		return c.SubmitPrediction(cmd.ChainSettlement)
	default:
		return fmt.Errorf("unknown command %T", cmd)
	}
}
