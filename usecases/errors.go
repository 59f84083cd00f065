package usecases

import "errors"

// Error kinds surfaced to the API boundary. Concrete errors wrap one of these
// with a message and are matched with errors.Is.
var (
	ErrValidation     = errors.New("validation error")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrAuthentication = errors.New("incorrect email or password")
)
