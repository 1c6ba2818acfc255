package domain

import (
	"github.com/google/uuid"
)

type CallID uuid.UUID
type TransactionID uuid.UUID

func NewCallID() CallID {
	return CallID(uuid.New())
}

func NewTransactionID() TransactionID {
	return TransactionID(uuid.New())
}

func ParseCallID(s string) (CallID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return CallID{}, err
	}
	return CallID(id), nil
}

func (id CallID) String() string {
	return uuid.UUID(id).String()
}

func (id TransactionID) String() string {
	return uuid.UUID(id).String()
}
