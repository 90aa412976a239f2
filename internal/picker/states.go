package picker

// State represents the current state of the picker view.
type State int

const (
	// Phase 1: Query input
	StateInput     State = iota // Waiting for search input
	StateSearching              // Search in flight

	// Phase 2: Result selection
	StateResults // Showing candidates

	// Phase 3: Selection flow
	StateFullSizeLoading // Resolving full-size artwork URL
	StateAttaching       // Fetching image bytes and filling the form
)

// IsLoading returns true if this is a loading/async state.
func (s State) IsLoading() bool {
	switch s {
	case StateSearching, StateFullSizeLoading, StateAttaching:
		return true
	case StateInput, StateResults:
		return false
	}
	return false
}

// CanNavigate returns true if this state allows cursor navigation.
func (s State) CanNavigate() bool {
	return s == StateResults
}

// AcceptsInput returns true if typing should reach the query field.
func (s State) AcceptsInput() bool {
	return s == StateInput || s == StateResults
}
