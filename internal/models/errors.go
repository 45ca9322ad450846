package models

import (
	"errors"
	"fmt"
)

// Version related errors
var (
	ErrInvalidVersion = errors.New(`invalid version: use "latest" or a patch number such as "26.3" or "15.24"`)
)

// ValidationError is returned for input rejected before any network call.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("%s %q: %v", ve.Field, ve.Value, ve.Err)
}

func (ve *ValidationError) Unwrap() error {
	return ve.Err
}

// RequestError is a non-success HTTP outcome from the analysis service.
type RequestError struct {
	Op         string
	StatusCode int
	Status     string
}

func (re *RequestError) Error() string {
	return fmt.Sprintf("%s: analysis service returned %d %s", re.Op, re.StatusCode, re.Status)
}

// TransportError is a network or decoding failure talking to the analysis
// service. It is displayed the same way as a RequestError.
type TransportError struct {
	Op  string
	Err error
}

func (te *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", te.Op, te.Err)
}

func (te *TransportError) Unwrap() error {
	return te.Err
}

// IsUpstreamError reports whether err came from talking to the analysis
// service, as opposed to local validation.
func IsUpstreamError(err error) bool {
	var re *RequestError
	var te *TransportError
	return errors.As(err, &re) || errors.As(err, &te)
}
