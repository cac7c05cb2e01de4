// Package apperrors provides the error type used across the hobbyhub client.
// It keeps the standard error interface while adding error chaining, HTTP
// status codes, and message rewriting, so call sites can classify failures
// (credential error, session expiry, transport fault) with errors.Is.
package apperrors

// Error is the application error interface. All methods return Error so
// derived errors can be built by chaining.
type Error interface {
	error
	Unwrap() error // support for errors.Is / errors.As

	New(msg string) Error                  // derives a fresh error using the current one as template
	Msg(msg string) Error                  // derives an error with a new message, wrapping the original
	MsgErr(msg string, err ...error) Error // derives an error with a message plus extra wrapped errors
	Err(err ...error) Error                // attaches additional errors, keeping the message
	SetStatusCode(int) Error               // sets the HTTP status code associated with the error
	StatusCode() int                       // returns the HTTP status code, 0 when unset
	ErrorAll() string                      // full message including wrapped errors
	UnwrapAll() []error                    // all wrapped errors in attachment order
}
