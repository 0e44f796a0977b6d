// Package security holds the input checks, throttling and audit trail that
// sit in front of the store.
//
// Sanitize and ValidateAPIKey reject script-like input before it reaches the
// vault. Limiter caps actions at MaxRequestsPerMinute and MaxActionsPerSession.
// EventLog keeps the last MaxEvents security events in the medium as plain
// JSON. PathValidator confines import and export files to the working
// directory.
package security
