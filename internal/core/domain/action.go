package domain

import "fmt"

type ActionKind string

const (
	ActionStartCall ActionKind = "start_call"
	ActionEndCall   ActionKind = "end_call"
	ActionSetHeld   ActionKind = "set_held"
)

// Action is one operation requested from the call backend.
type Action interface {
	Kind() ActionKind
	CallID() CallID
	String() string
}

type StartCallAction struct {
	Call    CallID
	Handle  Handle
	IsVideo bool
}

func (a StartCallAction) Kind() ActionKind { return ActionStartCall }
func (a StartCallAction) CallID() CallID   { return a.Call }

func (a StartCallAction) String() string {
	return fmt.Sprintf("%s(%s, %s, video=%t)", a.Kind(), a.Call, a.Handle, a.IsVideo)
}

type EndCallAction struct {
	Call CallID
}

func (a EndCallAction) Kind() ActionKind { return ActionEndCall }
func (a EndCallAction) CallID() CallID   { return a.Call }

func (a EndCallAction) String() string {
	return fmt.Sprintf("%s(%s)", a.Kind(), a.Call)
}

type SetHeldCallAction struct {
	Call   CallID
	OnHold bool
}

func (a SetHeldCallAction) Kind() ActionKind { return ActionSetHeld }
func (a SetHeldCallAction) CallID() CallID   { return a.Call }

func (a SetHeldCallAction) String() string {
	return fmt.Sprintf("%s(%s, on_hold=%t)", a.Kind(), a.Call, a.OnHold)
}

// Transaction groups actions submitted together to the call backend.
type Transaction struct {
	ID      TransactionID
	Actions []Action
}

func NewTransaction(actions ...Action) Transaction {
	return Transaction{
		ID:      NewTransactionID(),
		Actions: actions,
	}
}
