// Package apperrors defines the error taxonomy for the Sonos protocol
// client. Every failure a caller may want to special-case (retry an
// unreachable device, surface a UPnP fault verbatim, skip an unparsable
// responder) is a distinct type compatible with errors.As.
package apperrors

import "fmt"

// UnreachableError indicates the device could not be contacted at all:
// connection refused, dial timeout, or a context deadline hit mid-request.
type UnreachableError struct {
	Endpoint string
	Err      error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("sonos endpoint %s unreachable: %v", e.Endpoint, e.Err)
}

func (e *UnreachableError) Unwrap() error {
	return e.Err
}

// BadResponseError indicates the device answered with a non-success HTTP
// status before any SOAP-level processing happened.
type BadResponseError struct {
	Endpoint   string
	StatusCode int
}

func (e *BadResponseError) Error() string {
	return fmt.Sprintf("sonos endpoint %s returned http %d", e.Endpoint, e.StatusCode)
}

// ParseError indicates malformed or structurally unexpected XML. Context
// names the element or field that was missing or unreadable, keeping "not
// well-formed" distinguishable from "well-formed but missing X".
type ParseError struct {
	Context string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to parse sonos response (%s): %v", e.Context, e.Err)
	}
	return fmt.Sprintf("failed to parse sonos response (%s)", e.Context)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DeviceNotFoundError indicates a topology or group lookup miss: the
// identifier was not present in the document the device served.
type DeviceNotFoundError struct {
	Identifier string
}

func (e *DeviceNotFoundError) Error() string {
	return fmt.Sprintf("couldn't find a device by the given identifier (%s)", e.Identifier)
}

// ValidationError rejects an out-of-range input before it reaches the wire.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewUnreachable(endpoint string, err error) *UnreachableError {
	return &UnreachableError{Endpoint: endpoint, Err: err}
}

func NewBadResponse(endpoint string, status int) *BadResponseError {
	return &BadResponseError{Endpoint: endpoint, StatusCode: status}
}

func NewParse(context string) *ParseError {
	return &ParseError{Context: context}
}

func NewParseWrap(context string, err error) *ParseError {
	return &ParseError{Context: context, Err: err}
}

func NewDeviceNotFound(identifier string) *DeviceNotFoundError {
	return &DeviceNotFoundError{Identifier: identifier}
}

func NewValidation(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
