// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Search operations
	OpSearchArtwork Op = "fetch artwork"
	OpSearchAll     Op = "search artwork sources"

	// Image operations
	OpImageFetch    Op = "load image"
	OpImageValidate Op = "validate image"
	OpImageAttach   Op = "attach image to upload form"
	OpFullSizeFetch Op = "resolve full-size artwork"

	// Page operations
	OpPageScan    Op = "scan page for missing artwork"
	OpPageParse   Op = "parse page"
	OpLinkResolve Op = "resolve album link"

	// Tab operations
	OpTabOpen    Op = "open upload page"
	OpTabOpenAll Op = "open all missing artwork pages"
	OpTabWatch   Op = "watch upload tab"
	OpTabClose   Op = "close upload tab"

	// Ledger operations
	OpLedgerOpen Op = "open fixed-artworks ledger"
	OpLedgerMark Op = "record fixed artwork"
	OpLedgerRead Op = "read fixed-artworks count"

	// Settings
	OpSettingsLoad Op = "load settings"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
