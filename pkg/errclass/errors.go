// Package errclass defines the stable, machine-readable error classes
// surfaced by WCS operations.
package errclass

import "fmt"

// WCSError is a stable, machine-readable error class.
type WCSError struct {
	Code    string
	Message string
}

func (e *WCSError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *WCSError) Is(target error) bool {
	t, ok := target.(*WCSError)
	return ok && e.Code == t.Code
}

// WithMessage returns a new WCSError with the same Code but a specific message.
func (e *WCSError) WithMessage(msg string) *WCSError {
	return &WCSError{Code: e.Code, Message: msg}
}

// WithMessagef returns a new WCSError with a formatted message.
func (e *WCSError) WithMessagef(format string, args ...any) *WCSError {
	return &WCSError{Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns a new WCSError with the same Code carrying err's text.
func (e *WCSError) Wrap(err error) *WCSError {
	return &WCSError{Code: e.Code, Message: err.Error()}
}

// All stable error classes.
var (
	// ErrContextCreation: a client session could not be established. Fatal to
	// the handle; no operations are usable afterward.
	ErrContextCreation = &WCSError{Code: "E_CONTEXT_CREATE"}

	// ErrInvalidRevision: a revision string could not be parsed. Local to the
	// call that supplied it; the handle stays valid.
	ErrInvalidRevision = &WCSError{Code: "E_REVISION_INVALID"}

	// ErrEngineOperation: the engine rejected or failed an operation
	// (conflicting state, missing path, permission, ignore-rule mismatch).
	ErrEngineOperation = &WCSError{Code: "E_ENGINE_OPERATION"}

	// ErrPathEscape: a path argument resolves outside the working-copy root.
	ErrPathEscape = &WCSError{Code: "E_PATH_ESCAPE"}

	// ErrNotWorkingCopy: the target directory holds no working-copy control area.
	ErrNotWorkingCopy = &WCSError{Code: "E_NOT_WORKING_COPY"}
)
