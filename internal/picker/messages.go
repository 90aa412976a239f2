package picker

import (
	"github.com/corentel/artfix/internal/artwork"
)

// SearchResultMsg is sent when a provider search completes.
type SearchResultMsg struct {
	Query  string
	Result *artwork.Result
}

// FullSizeResultMsg is sent when a release page resolves to its full-size
// artwork URL.
type FullSizeResultMsg struct {
	Candidate artwork.Candidate
	URL       string
	Err       error
}

// AttachDoneMsg is sent when the fetch-and-attach flow finishes, success
// or not. CandidateID is empty for direct-URL attaches.
type AttachDoneMsg struct {
	CandidateID string
	Err         error
}

// debounceMsg fires after the input settle delay; Seq pairs it with the
// keystroke generation that scheduled it.
type debounceMsg struct {
	Seq int
}
