package domain

import "strings"

type HandleType string

const (
	HandlePhoneNumber  HandleType = "phone_number"
	HandleEmailAddress HandleType = "email"
	HandleGeneric      HandleType = "generic"
)

// Handle is how a call recipient can be reached.
type Handle struct {
	Type  HandleType
	Value string
}

// NewHandle guesses the handle type from the value: anything with an @ is an
// email address, anything made of dial characters is a phone number.
func NewHandle(value string) (Handle, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Handle{}, ErrInvalidHandle
	}
	return Handle{Type: detectHandleType(value), Value: value}, nil
}

func detectHandleType(value string) HandleType {
	if strings.Contains(value, "@") {
		return HandleEmailAddress
	}
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
		case strings.ContainsRune("+-() .*#", r):
		default:
			return HandleGeneric
		}
	}
	return HandlePhoneNumber
}

func (h Handle) String() string {
	return h.Value
}
