package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"instaapp/internal/core"
	"instaapp/internal/session"
	"instaapp/internal/ui"
	"instaapp/internal/validation"
	"instaapp/pkg/instaapi"
)

// errReported marks errors the user has already been told about.
var errReported = errors.New("reported")

type reportedError struct {
	err error
}

func (e reportedError) Error() string {
	return e.err.Error()
}

func (e reportedError) Unwrap() []error {
	return []error{e.err, errReported}
}

func reported(err error) error {
	return reportedError{err: err}
}

// showFields prints the field errors carried by err, if any.
func showFields(out io.Writer, err error) {
	if fields := validation.Fields(err); fields != nil {
		fmt.Fprintln(out, "Invalid input:")
		ui.FieldErrors(out, fields)
	}
}

// fail tells the user about err: field errors inline, anything else as a
// notification with fallback when the server gave no message.
func fail(out io.Writer, notify core.Notifier, err error, fallback string) error {
	showFields(out, err)
	if !errors.Is(err, validation.ErrInvalid) {
		notify.Error(instaapi.Message(err, fallback))
	}
	return reported(err)
}

// enter authenticates the session, pointing the user to login when there is
// no usable credential.
func enter(ctx context.Context, s *session.Session, notify core.Notifier) (*instaapi.User, error) {
	user, err := s.Enter(ctx)
	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, session.ErrNoCredential):
		return nil, fmt.Errorf("%w, run 'instaapp login' first", err)
	case errors.Is(err, session.ErrCredentialExpired):
		return nil, fmt.Errorf("%w, run 'instaapp login' again", err)
	default:
		notify.Error(instaapi.Message(err, session.EnterFailed))
		return nil, reported(err)
	}
}
