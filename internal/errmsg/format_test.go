//nolint:goconst // test cases intentionally repeat strings for readability
package errmsg

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpSearchArtwork,
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with operation",
			op:       OpSearchArtwork,
			err:      errors.New("connection refused"),
			expected: "Failed to fetch artwork: connection refused",
		},
		{
			name:     "image fetch operation",
			op:       OpImageFetch,
			err:      errors.New("image too large"),
			expected: "Failed to load image: image too large",
		},
		{
			name:     "tab operation",
			op:       OpTabOpen,
			err:      errors.New("tab limit reached"),
			expected: "Failed to open upload page: tab limit reached",
		},
		{
			name:     "ledger operation",
			op:       OpLedgerMark,
			err:      errors.New("database is locked"),
			expected: "Failed to record fixed artwork: database is locked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.op, tt.err)
			if result != tt.expected {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.op, tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatWith(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		context  string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpImageFetch,
			context:  "https://example.com/cover.jpg",
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with context",
			op:       OpImageFetch,
			context:  "https://example.com/cover.jpg",
			err:      errors.New("host not allowed"),
			expected: "Failed to load image 'https://example.com/cover.jpg': host not allowed",
		},
		{
			name:     "empty context falls back to Format",
			op:       OpImageFetch,
			context:  "",
			err:      errors.New("host not allowed"),
			expected: "Failed to load image: host not allowed",
		},
		{
			name:     "link resolution with album context",
			op:       OpLinkResolve,
			context:  "Daft Punk - Discovery",
			err:      errors.New("no ancestor link"),
			expected: "Failed to resolve album link 'Daft Punk - Discovery': no ancestor link",
		},
		{
			name:     "full-size fetch with release context",
			op:       OpFullSizeFetch,
			context:  "discogs:249504",
			err:      errors.New("no og:image tag"),
			expected: "Failed to resolve full-size artwork 'discogs:249504': no og:image tag",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWith(tt.op, tt.context, tt.err)
			if result != tt.expected {
				t.Errorf("FormatWith(%q, %q, %v) = %q, want %q", tt.op, tt.context, tt.err, result, tt.expected)
			}
		})
	}
}

func TestOpConstants(t *testing.T) {
	// Verify that Op constants are non-empty and produce valid messages
	ops := []Op{
		OpSearchArtwork, OpSearchAll,
		OpImageFetch, OpImageValidate, OpImageAttach, OpFullSizeFetch,
		OpPageScan, OpPageParse, OpLinkResolve,
		OpTabOpen, OpTabOpenAll, OpTabWatch, OpTabClose,
		OpLedgerOpen, OpLedgerMark, OpLedgerRead,
		OpSettingsLoad,
		OpInitialize,
	}

	testErr := errors.New("test error")

	for _, op := range ops {
		t.Run(string(op), func(t *testing.T) {
			if op == "" {
				t.Error("Op constant should not be empty")
			}

			result := Format(op, testErr)
			if result == "" {
				t.Error("Format should return non-empty string for non-nil error")
			}

			expected := "Failed to " + string(op) + ": test error"
			if result != expected {
				t.Errorf("Format = %q, want %q", result, expected)
			}
		})
	}
}
