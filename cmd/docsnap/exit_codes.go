package main

import (
	"errors"
	"os"

	docsnap "github.com/alunbr/go-docsnap"
	"github.com/alunbr/go-docsnap/internal/config"
)

// Exit codes for the docsnap CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful capture
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied, write failure
	ExitBrowser = 4 // Browser, navigation, or capture errors
	ExitAccess  = 5 // Unresolved gate or missing/rejected credentials
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Access errors (exit 5)
	if errors.Is(err, docsnap.ErrGateUnresolved) ||
		errors.Is(err, docsnap.ErrConfiguration) {
		return ExitAccess
	}

	// Browser/capture errors (exit 4)
	if errors.Is(err, docsnap.ErrBrowserConnect) ||
		errors.Is(err, docsnap.ErrPageCreate) ||
		errors.Is(err, docsnap.ErrPageLoad) ||
		errors.Is(err, docsnap.ErrCapture) ||
		errors.Is(err, docsnap.ErrContentNotFound) ||
		errors.Is(err, docsnap.ErrAssembly) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, docsnap.ErrWriteOutput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrInvalidArgs) ||
		errors.Is(err, docsnap.ErrNoURL) ||
		errors.Is(err, docsnap.ErrInvalidViewport) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrEmptyConfigName) {
		return ExitUsage
	}

	return ExitGeneral
}
