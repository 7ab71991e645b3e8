package errors

import (
	"errors"
	"fmt"
)

// CryptoInitError indicates the master key could not be obtained. The credential
// store cannot persist anything without it.
type CryptoInitError struct {
	Err error
}

func NewCryptoInitError(err error) *CryptoInitError {
	return &CryptoInitError{Err: err}
}

func (e *CryptoInitError) Error() string {
	return fmt.Sprintf("credentials unavailable: master key: %v", e.Err)
}

func (e *CryptoInitError) Unwrap() error { return e.Err }

// IsCryptoInitError checks if the error is a CryptoInitError.
func IsCryptoInitError(err error) bool {
	var e *CryptoInitError
	return errors.As(err, &e)
}

// DecryptError indicates the credential file exists but could not be authenticated or decrypted.
type DecryptError struct {
	Err error
}

func NewDecryptError(err error) *DecryptError {
	return &DecryptError{Err: err}
}

func (e *DecryptError) Error() string {
	return fmt.Sprintf("decrypting credentials: %v", e.Err)
}

func (e *DecryptError) Unwrap() error { return e.Err }

func IsDecryptError(err error) bool {
	var e *DecryptError
	return errors.As(err, &e)
}

// EncryptError indicates the credential snapshot could not be encrypted.
type EncryptError struct {
	Err error
}

func NewEncryptError(err error) *EncryptError {
	return &EncryptError{Err: err}
}

func (e *EncryptError) Error() string {
	return fmt.Sprintf("encrypting credentials: %v", e.Err)
}

func (e *EncryptError) Unwrap() error { return e.Err }

func IsEncryptError(err error) bool {
	var e *EncryptError
	return errors.As(err, &e)
}

// StorageError indicates a filesystem failure while reading or replacing the credential file.
type StorageError struct {
	Op  string
	Err error
}

func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func IsStorageError(err error) bool {
	var e *StorageError
	return errors.As(err, &e)
}

// CredentialsUnavailableError is returned by a degraded store on write.
type CredentialsUnavailableError struct{}

func NewCredentialsUnavailableError() *CredentialsUnavailableError {
	return &CredentialsUnavailableError{}
}

func (e *CredentialsUnavailableError) Error() string {
	return "credentials unavailable: running without persistence"
}

func IsCredentialsUnavailableError(err error) bool {
	var e *CredentialsUnavailableError
	return errors.As(err, &e)
}

// ValidationError indicates a caller supplied value was rejected before anything was sent or written.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func IsValidationError(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// ResourceNotFoundError indicates a resource was not found.
type ResourceNotFoundError struct {
	Kind string
}

func NewResourceNotFoundError(kind string) *ResourceNotFoundError {
	return &ResourceNotFoundError{Kind: kind}
}

func NewDeviceNotFoundError() *ResourceNotFoundError {
	return NewResourceNotFoundError("device")
}

func NewCandidateNotFoundError() *ResourceNotFoundError {
	return NewResourceNotFoundError("network candidate")
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Kind)
}

func IsResourceNotFoundError(err error) bool {
	var e *ResourceNotFoundError
	return errors.As(err, &e)
}

// InvalidStateError indicates the operation cannot be performed in the current connection state.
type InvalidStateError struct {
	State string
}

func NewInvalidStateError(state string) *InvalidStateError {
	return &InvalidStateError{State: state}
}

func (e *InvalidStateError) Error() string {
	if e.State == "" {
		return "invalid state for this operation"
	}
	return fmt.Sprintf("invalid state for this operation: %s", e.State)
}

func IsInvalidStateError(err error) bool {
	var e *InvalidStateError
	return errors.As(err, &e)
}

// TransportError wraps a failure reported by the device transport.
type TransportError struct {
	Op  string
	Err error
}

func NewTransportError(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: err}
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func IsTransportError(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}
