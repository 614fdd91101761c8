package requester

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed call
type ErrorKind string

const (
	KindConfiguration ErrorKind = "configuration"
	KindTransport     ErrorKind = "transport"
	KindDecode        ErrorKind = "decode"
	KindHTTP          ErrorKind = "http"
	KindInternal      ErrorKind = "internal"
)

// CallError is the structured failure carried by a CallResult
type CallError struct {
	Kind       ErrorKind `json:"kind"`
	Message    string    `json:"message"`
	StatusCode int       `json:"statusCode,omitempty"`

	cause error
}

func (e *CallError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error (%d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *CallError) Unwrap() error {
	return e.cause
}

// HTTPStatus is the status a controller should answer with for this failure
func (e *CallError) HTTPStatus() int {
	if (e.Kind == KindHTTP || e.Kind == KindConfiguration) && e.StatusCode > 0 {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

// ConfigurationError reports missing or invalid setup detected before any
// network activity. Param is set when a call parameter is missing; Setting
// is set when the service configuration itself is incomplete.
type ConfigurationError struct {
	Param   string
	Setting string
	EnvVar  string
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// MissingParam returns the error for an absent required call parameter
func MissingParam(name string) *ConfigurationError {
	return &ConfigurationError{Param: name, Message: "missing " + name}
}

// TransportErrorKind distinguishes deadline expiry from other I/O failures
type TransportErrorKind string

const (
	TransportTimeout TransportErrorKind = "timeout"
	TransportIO      TransportErrorKind = "io"
)

// TransportError reports a failed network attempt
type TransportError struct {
	Kind TransportErrorKind
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError reports a 200 response whose body could not be decoded
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response body: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func configurationFailure(err *ConfigurationError) *CallError {
	status := http.StatusInternalServerError
	if err.Param != "" {
		status = http.StatusBadRequest
	}
	return &CallError{Kind: KindConfiguration, Message: err.Message, StatusCode: status, cause: err}
}

func transportFailure(err error) *CallError {
	var te *TransportError
	if !errors.As(err, &te) {
		te = &TransportError{Kind: TransportIO, Err: err}
	}
	return &CallError{Kind: KindTransport, Message: te.Error(), cause: te}
}

func internalFailure(err error) *CallError {
	return &CallError{Kind: KindInternal, Message: err.Error(), cause: err}
}
