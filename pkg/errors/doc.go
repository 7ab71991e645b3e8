// Package errors provides custom error types for the sync agent.
//
// Each error type includes a constructor, Error() method, and a type-checking
// helper using errors.As for proper error unwrapping.
//
// # Error Types Overview
//
//	┌─────────────────────────────┬────────┬──────────────────────────────────────────┐
//	│ Error Type                  │ HTTP   │ Description                              │
//	├─────────────────────────────┼────────┼──────────────────────────────────────────┤
//	│ CryptoInitError             │ -      │ Master key unavailable, store degraded   │
//	│ DecryptError                │ -      │ Credential file unreadable (load only)   │
//	│ EncryptError                │ 500    │ Credential snapshot could not be sealed  │
//	│ StorageError                │ 500    │ Filesystem failure on the credential file│
//	│ CredentialsUnavailableError │ 500    │ Write on a degraded store                │
//	│ ValidationError             │ 400    │ Rejected input, nothing sent or written  │
//	│ ResourceNotFoundError       │ 404    │ Requested resource doesn't exist         │
//	│ InvalidStateError           │ 409    │ Device is not ready for the operation    │
//	│ TransportError              │ 502    │ Transport reported a failure             │
//	└─────────────────────────────┴────────┴──────────────────────────────────────────┘
//
// # Credential store errors
//
// CryptoInitError is fatal to the store: the agent falls back to a
// degraded store that keeps credentials in memory only. DecryptError and
// StorageError returned while loading are not fatal; the store starts
// empty. EncryptError and StorageError returned by a write are reported to
// the caller, and the in-memory update is kept.
//
// # ValidationError
//
// Carries the offending field name and a short reason:
//
//	errors.NewValidationError("alarmHour", "must be between 0 and 23")
//
// # Type Checking Pattern
//
// All error types provide Is* helper functions that use errors.As
// for proper error chain unwrapping:
//
//	wrapped := fmt.Errorf("sync failed: %w", errors.NewValidationError("ssid", "required"))
//	errors.IsValidationError(wrapped) // returns true
//
// # Handler Error Mapping
//
//	switch {
//	case errors.IsValidationError(err):
//	    c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
//	case errors.IsInvalidStateError(err):
//	    c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
//	case errors.IsResourceNotFoundError(err):
//	    c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
//	default:
//	    c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
//	}
package errors
