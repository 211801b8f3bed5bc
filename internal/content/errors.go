package content

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

const (
	missingViewCode = "CONTENT_VIEW_MISSING"
	parseFailedCode = "CONTENT_PARSE_FAILED"
)

var (
	// ErrNoView is the root cause of every MissingViewError.
	ErrNoView = errors.New("content: no view available")
)

// MissingViewError reports a render context without a view capability.
// It is a configuration problem of the host, returned per request.
type MissingViewError struct {
	TemplateName string
	Bundle       string
}

func (e *MissingViewError) Error() string {
	if e == nil {
		return ErrNoView.Error()
	}
	return fmt.Sprintf("no view available rendering template named '%s' and content bundle '%s'", e.TemplateName, e.Bundle)
}

func (e *MissingViewError) Unwrap() error {
	return ErrNoView
}

// NewMissingViewError builds the categorised error returned when a render
// context carries no view.
func NewMissingViewError(templateName, bundle string) error {
	cause := &MissingViewError{TemplateName: templateName, Bundle: bundle}
	return goerrors.Wrap(cause, goerrors.CategoryValidation, cause.Error()).
		WithTextCode(missingViewCode)
}

// ParseError reports a bundle whose contents could not be parsed.
type ParseError struct {
	Bundle   string
	Location string
	Err      error
}

func (e *ParseError) Error() string {
	if e == nil {
		return "content: parse failed"
	}
	return fmt.Sprintf("content: parse bundle %q from %s: %v", e.Bundle, e.Location, e.Err)
}

func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func wrapParseError(bundle, location string, err error) error {
	if err == nil {
		return nil
	}
	cause := &ParseError{Bundle: bundle, Location: location, Err: err}
	return goerrors.Wrap(cause, goerrors.CategoryBadInput, cause.Error()).
		WithTextCode(parseFailedCode)
}
