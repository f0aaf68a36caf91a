// Package errors provides standardized error handling for aspect.
// It defines the error kinds produced by the catalog, the image pipeline and
// the rating store, plus helpers for creating, wrapping and inspecting them.
package errors

import "errors"

// Standard errors package errors that we re-export for convenience
var (
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// File error kinds
	FileNotFound
	FileAccessDenied
	InvalidPath
	NotAFile
	// Config error kinds
	InvalidConfig
	ConfigNotFound
	// Image error kinds
	DecodeFailed
	NoFrames
	TextureRegistrationFailed
	// Database error kinds
	DatabaseConnectionFailed
	DatabaseMigrationFailed
	DatabaseQueryFailed
	DatabaseOperationFailed
	InvalidInputData
)

// ApplicationError is the base error type for all application errors.
// subject names what the error is about: a path, a config key.
type ApplicationError struct {
	msg     string
	subject string
	err     error
	kind    ErrorKind
}

// Error renders "msg[: subject][: cause]".
func (e *ApplicationError) Error() string {
	s := e.msg
	if e.subject != "" {
		s += ": " + e.subject
	}
	if e.err != nil {
		s += ": " + e.err.Error()
	}
	return s
}

// Unwrap returns the wrapped error
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

func newBase(msg, subject string, kind ErrorKind, err error) ApplicationError {
	return ApplicationError{msg: msg, subject: subject, err: err, kind: kind}
}

// FileError represents errors related to file operations
type FileError struct {
	ApplicationError
}

// NewFileError creates a new file error
func NewFileError(msg string, path string, kind ErrorKind, err error) *FileError {
	return &FileError{newBase(msg, path, kind, err)}
}

// Path returns the file path associated with the error
func (e *FileError) Path() string { return e.subject }

// ConfigError represents errors related to configuration
type ConfigError struct {
	ApplicationError
}

// NewConfigError creates a new configuration error
func NewConfigError(msg string, param string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{newBase(msg, param, kind, err)}
}

// Param returns the configuration parameter associated with the error
func (e *ConfigError) Param() string { return e.subject }

// DecodeError represents a failure to turn a file into displayable frames.
// Texture registration failures use the same type with the
// TextureRegistrationFailed kind.
type DecodeError struct {
	ApplicationError
}

func NewDecodeError(msg string, path string, kind ErrorKind, err error) *DecodeError {
	return &DecodeError{newBase(msg, path, kind, err)}
}

// Path returns the image path associated with the error
func (e *DecodeError) Path() string { return e.subject }

// New creates a new error with a message
func New(msg string) error {
	return &ApplicationError{msg: msg}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{msg: msg, err: err}
}

// hasKind reports whether the first T in err's chain has kind.
func hasKind[T interface{ Kind() ErrorKind }](err error, kind ErrorKind) bool {
	var target T
	return errors.As(err, &target) && target.Kind() == kind
}

// IsFileNotFound checks if the error is a file not found error
func IsFileNotFound(err error) bool { return hasKind[*FileError](err, FileNotFound) }

// IsNotAFile checks if the error reports a path that is not a regular file
func IsNotAFile(err error) bool { return hasKind[*FileError](err, NotAFile) }

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool { return hasKind[*ConfigError](err, InvalidConfig) }

// IsNoFrames checks if the error reports an image without usable frames
func IsNoFrames(err error) bool { return hasKind[*DecodeError](err, NoFrames) }

// IsDecodeError checks if the error is a decode or texture error
func IsDecodeError(err error) bool {
	var decodeErr *DecodeError
	return errors.As(err, &decodeErr)
}

// DatabaseError represents errors related to database operations
type DatabaseError struct {
	ApplicationError
	operation string
	context   map[string]interface{}
}

// NewDatabaseError creates a new database error
func NewDatabaseError(msg string, err error) *DatabaseError {
	return &DatabaseError{
		ApplicationError: newBase(msg, "", DatabaseOperationFailed, err),
		context:          make(map[string]interface{}),
	}
}

// WithKind overrides the database error kind
func (e *DatabaseError) WithKind(kind ErrorKind) *DatabaseError {
	e.kind = kind
	return e
}

// WithOperation adds operation information to the database error
func (e *DatabaseError) WithOperation(operation string) *DatabaseError {
	e.operation = operation
	e.subject = "operation=" + operation
	return e
}

// WithContext adds context information to the database error
func (e *DatabaseError) WithContext(key string, value interface{}) *DatabaseError {
	e.context[key] = value
	return e
}

// Operation returns the database operation associated with the error
func (e *DatabaseError) Operation() string {
	return e.operation
}

// Context returns the context information associated with the error
func (e *DatabaseError) Context() map[string]interface{} {
	return e.context
}

// InvalidInputError reports an argument the caller should not have passed.
type InvalidInputError struct {
	ApplicationError
}

func NewInvalidInputError(msg string, err error) *InvalidInputError {
	return &InvalidInputError{newBase(msg, "", InvalidInputData, err)}
}

// IsDatabaseError checks if the error is a database error
func IsDatabaseError(err error) bool {
	var dbErr *DatabaseError
	return errors.As(err, &dbErr)
}

// IsInvalidInputError checks if the error is an invalid input error
func IsInvalidInputError(err error) bool {
	var inputErr *InvalidInputError
	return errors.As(err, &inputErr)
}
