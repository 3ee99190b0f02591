package gogogate2

import (
	"errors"
	"fmt"
)

// Sentinel errors for the conditions signaled by the device API. An
// *ApiError unwraps to one of these, so callers can branch with errors.Is
// without matching numeric codes or message strings.
var (
	ErrCredentialsNotSet    = errors.New("credentials not set")
	ErrCredentialsIncorrect = errors.New("credentials incorrect")
	ErrInvalidOption        = errors.New("invalid option")
	ErrInvalidAPICode       = errors.New("invalid api code")
	ErrDoorNotSet           = errors.New("door not set")
	ErrInvalidDoor          = errors.New("invalid door")
	ErrCorruptedData        = errors.New("corrupted data")
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenNotSet          = errors.New("token not set")
)

// Error codes returned by GogoGate2 devices.
const (
	GogoGate2CodeCredentialsIncorrect = 1
	GogoGate2CodeCredentialsNotSet    = 2
	GogoGate2CodeInvalidDoor          = 5
	GogoGate2CodeDoorNotSet           = 8
	GogoGate2CodeInvalidOption        = 9
	GogoGate2CodeCorruptedData        = 11
	GogoGate2CodeInvalidAPICode       = 18
	GogoGate2CodeInvalidToken         = 998
	GogoGate2CodeTokenNotSet          = 999
)

// Error codes returned by iSmartGate devices.
const (
	ISmartGateCodeDoorNotSet           = 8
	ISmartGateCodeInvalidOption        = 9
	ISmartGateCodeInvalidAPICode       = 10
	ISmartGateCodeCredentialsIncorrect = 11
	ISmartGateCodeTokenNotSet          = 21
	ISmartGateCodeCredentialsNotSet    = 22
	ISmartGateCodeInvalidDoor          = 997
	ISmartGateCodeInvalidToken         = 998
	ISmartGateCodeCorruptedData        = 999
)

var gogoGate2Errors = map[int]error{
	GogoGate2CodeCredentialsIncorrect: ErrCredentialsIncorrect,
	GogoGate2CodeCredentialsNotSet:    ErrCredentialsNotSet,
	GogoGate2CodeInvalidDoor:          ErrInvalidDoor,
	GogoGate2CodeDoorNotSet:           ErrDoorNotSet,
	GogoGate2CodeInvalidOption:        ErrInvalidOption,
	GogoGate2CodeCorruptedData:        ErrCorruptedData,
	GogoGate2CodeInvalidAPICode:       ErrInvalidAPICode,
	GogoGate2CodeInvalidToken:         ErrInvalidToken,
	GogoGate2CodeTokenNotSet:          ErrTokenNotSet,
}

var iSmartGateErrors = map[int]error{
	ISmartGateCodeDoorNotSet:           ErrDoorNotSet,
	ISmartGateCodeInvalidOption:        ErrInvalidOption,
	ISmartGateCodeInvalidAPICode:       ErrInvalidAPICode,
	ISmartGateCodeCredentialsIncorrect: ErrCredentialsIncorrect,
	ISmartGateCodeTokenNotSet:          ErrTokenNotSet,
	ISmartGateCodeCredentialsNotSet:    ErrCredentialsNotSet,
	ISmartGateCodeInvalidDoor:          ErrInvalidDoor,
	ISmartGateCodeInvalidToken:         ErrInvalidToken,
	ISmartGateCodeCorruptedData:        ErrCorruptedData,
}

// ApiError is an error element returned by a device. Code and Message
// carry the raw values from the response; the error unwraps to the
// matching sentinel when the code is recognized for the device family.
type ApiError struct {
	Code    int
	Message string

	kind error
}

func (e *ApiError) Error() string {
	return fmt.Sprintf("code %d: %s", e.Code, e.Message)
}

func (e *ApiError) Unwrap() error {
	return e.kind
}

// TagNotFoundError indicates a response missing an expected element.
type TagNotFoundError struct {
	Tag string
}

func (e *TagNotFoundError) Error() string {
	return fmt.Sprintf("element tag %q not found", e.Tag)
}

// TextEmptyError indicates an element with no text where a value is
// required.
type TextEmptyError struct {
	Tag string
}

func (e *TextEmptyError) Error() string {
	return fmt.Sprintf("text was empty for tag %q", e.Tag)
}

// UnexpectedTypeError indicates element text that cannot be converted to
// the expected type.
type UnexpectedTypeError struct {
	Value    string
	Expected string
}

func (e *UnexpectedTypeError) Error() string {
	return fmt.Sprintf("expected %q to be %s", e.Value, e.Expected)
}

// InvalidDoorError indicates a door id that is not present in an info
// snapshot. It is raised locally, before any command is sent.
type InvalidDoorError struct {
	DoorID int
}

func (e *InvalidDoorError) Error() string {
	return fmt.Sprintf("door with id %d not found", e.DoorID)
}

func (e *InvalidDoorError) Unwrap() error {
	return ErrInvalidDoor
}
