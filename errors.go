package docsnap

import "errors"

// Sentinel errors for library operations.
//
// The first group is the failure taxonomy surfaced by Service.Convert.
// Callers classify with errors.Is; the message attached to the wrapped error
// carries internal detail intended for logs, not end users.
var (
	// ErrConfiguration reports a required credential that was not supplied
	// (e.g. an email gate with no email configured). Not retryable.
	ErrConfiguration = errors.New("required credential not configured")

	// ErrGateUnresolved reports gating that is structurally present but could
	// not be cleared after exhausting all strategies within the time budget.
	ErrGateUnresolved = errors.New("document gate could not be cleared")

	// ErrContentNotFound reports that gating cleared but no renderable
	// document content was located.
	ErrContentNotFound = errors.New("no document content found")

	// ErrCapture reports a failed page snapshot.
	ErrCapture = errors.New("page capture failed")

	// ErrAssembly reports that PDF serialization produced an invalid artifact.
	ErrAssembly = errors.New("PDF assembly failed")
)

// Browser lifecycle errors.
var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
)

// Input validation errors.
var (
	ErrNoURL           = errors.New("no document URL")
	ErrNoCaptures      = errors.New("no captures to assemble")
	ErrInvalidViewport = errors.New("invalid viewport dimensions")
)

// ErrWriteOutput reports that the conversion succeeded but the finished
// document could not be written to disk.
var ErrWriteOutput = errors.New("failed to write output file")
