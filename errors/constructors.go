package errors

import (
	"fmt"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *SyncError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *SyncError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// BackendUnavailable creates an error for a backend that cannot be reached at all
func BackendUnavailable(endpoint string, err error) *SyncError {
	return Wrap(err, ErrCodeBackendUnavailable, fmt.Sprintf("backend not reachable at %s", endpoint)).
		WithDetail("endpoint", endpoint)
}

// TransportFailed creates an error for a command whose round-trip did not complete
func TransportFailed(command string, err error) *SyncError {
	return Wrap(err, ErrCodeBackendTransport, fmt.Sprintf("round-trip failed: %s", command)).
		WithDetail("command", command)
}

// BackendRejected creates an error for a command the backend answered with a failure
func BackendRejected(command string, reason string) *SyncError {
	return New(ErrCodeBackendRejected, fmt.Sprintf("backend rejected %s: %s", command, reason)).
		WithDetail("command", command).
		WithDetail("reason", reason)
}

// PatchResolution creates a structural error for a patch operation whose target does not resolve
func PatchResolution(index int, op string, path string, reason string) *SyncError {
	return New(ErrCodePatchResolution,
		fmt.Sprintf("operation %d (%s %q) does not resolve: %s", index, op, path, reason)).
		WithDetail("index", index).
		WithDetail("op", op).
		WithDetail("path", path)
}

// PatchInvalid creates an error for a malformed patch payload
func PatchInvalid(reason string) *SyncError {
	return New(ErrCodePatchInvalid, fmt.Sprintf("invalid patch: %s", reason))
}

// UnknownCommand creates an error for a command name outside the catalog
func UnknownCommand(name string) *SyncError {
	return New(ErrCodeUnknownCommand, fmt.Sprintf("unknown command '%s'", name)).
		WithDetail("command", name)
}
