package panel

import (
	"errors"
	"strings"
)

// GenericErrorMessage is shown when a collaborator fails without a message.
const GenericErrorMessage = "Something went wrong. Please try again."

var (
	// ErrReadOnly is returned for mutations attempted without the elevated role.
	ErrReadOnly = errors.New("read-only: the elevated role is required")
	// ErrBusy is returned while another action on the same product is in flight.
	ErrBusy = errors.New("another action on this product is in progress")
	// ErrCanceled is returned when the user declines a confirmation.
	ErrCanceled = errors.New("canceled")
	// ErrClosed is returned when a response arrives after the owner was discarded.
	ErrClosed = errors.New("discarded before the response arrived")
	// ErrAlreadySubmitting blocks re-submission of a form.
	ErrAlreadySubmitting = errors.New("form is already submitting")
	// ErrUploadInProgress blocks a second upload, or a submit, while an upload is pending.
	ErrUploadInProgress = errors.New("an image upload is in progress")
	// ErrFormNotOpen is returned for form operations outside the Open state.
	ErrFormNotOpen = errors.New("form is not open")
)

// ValidationError is a client-side check that failed before any request was sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// CollaboratorError wraps a rejection from the store or the image uploader.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return e.Op + ": " + e.Message()
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// Message is the text shown to the user: the collaborator's own message when
// it has one, the generic fallback otherwise.
func (e *CollaboratorError) Message() string {
	if e.Err == nil {
		return GenericErrorMessage
	}
	if msg := strings.TrimSpace(e.Err.Error()); msg != "" {
		return msg
	}
	return GenericErrorMessage
}

// UserMessage converts any error returned by this package into display text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ce *CollaboratorError
	if errors.As(err, &ce) {
		return ce.Message()
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return GenericErrorMessage
}
