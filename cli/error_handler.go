package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/grovetools/sheetsync/errors"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
	Out     io.Writer
}

// NewErrorHandler creates a new error handler writing to stderr
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
		Out:     os.Stderr,
	}
}

// Handle prints a message and a hint based on the error code, then returns err.
func (h *ErrorHandler) Handle(err error) error {
	if err == nil {
		return nil
	}
	out := h.Out
	if out == nil {
		out = os.Stderr
	}
	syncErr, _ := errors.AsSyncError(err)

	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(out, "❌ Configuration not found: %s\n", detail(syncErr, "path"))
		fmt.Fprintf(out, "Create sheetsync.yml or drop --config to use defaults.\n")

	case errors.ErrCodeConfigInvalid, errors.ErrCodeConfigValidation:
		fmt.Fprintf(out, "❌ Invalid configuration: %v\n", err)
		fmt.Fprintf(out, "Run 'sheetsync config validate' to see every problem.\n")

	case errors.ErrCodeBackendUnavailable:
		fmt.Fprintf(out, "❌ Editor backend is not reachable at %s\n", detail(syncErr, "endpoint"))
		fmt.Fprintf(out, "Start the editor, or set backend.socket / backend.url in sheetsync.yml.\n")

	case errors.ErrCodeBackendTransport:
		fmt.Fprintf(out, "❌ Lost contact with the backend during '%s'\n", detail(syncErr, "command"))
		fmt.Fprintf(out, "Nothing was applied. Re-run the command once the backend is back.\n")

	case errors.ErrCodeBackendRejected:
		fmt.Fprintf(out, "❌ Backend rejected '%s': %s\n", detail(syncErr, "command"), detail(syncErr, "reason"))

	case errors.ErrCodeUnknownCommand:
		fmt.Fprintf(out, "❌ Unknown command '%s'\n", detail(syncErr, "command"))
		fmt.Fprintf(out, "Run 'sheetsync invoke --list' to see available commands.\n")

	case errors.ErrCodePatchResolution:
		fmt.Fprintf(out, "❌ Backend patch does not fit the local state: %v\n", err)
		fmt.Fprintf(out, "The editor and sheetsync versions may not match.\n")

	default:
		fmt.Fprintf(out, "❌ Error: %v\n", err)
	}

	if h.Verbose && syncErr != nil {
		fmt.Fprintf(out, "\nError details:\n%s\n", syncErr.ToJSON())
	}
	return err
}

func detail(err *errors.SyncError, key string) interface{} {
	if err == nil || err.Details == nil {
		return "?"
	}
	if v, ok := err.Details[key]; ok {
		return v
	}
	return "?"
}
