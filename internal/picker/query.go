package picker

import (
	"regexp"
	"strings"
)

// noiseTokens are page-text fragments that hurt search relevance and are
// stripped from the default query.
var noiseTokens = []string{
	"[Explicit]",
	"[Clean]",
	"(Explicit)",
	"(Clean)",
}

// DefaultQuery builds the initial search query from page artist and album
// text.
func DefaultQuery(artist, album string) string {
	q := strings.TrimSpace(artist + " " + album)
	for _, tok := range noiseTokens {
		q = strings.ReplaceAll(q, tok, "")
	}
	return strings.Join(strings.Fields(q), " ")
}

var directImageURLPattern = regexp.MustCompile(`^https?://\S+\.(?i:jpe?g|png|gif)(\?\S*)?$`)

// isDirectImageURL reports whether the input is an image address to
// attach directly instead of a search query.
func isDirectImageURL(input string) bool {
	return directImageURLPattern.MatchString(input)
}

// isDataURL reports whether the input is an inline data: payload, which
// cannot be attached.
func isDataURL(input string) bool {
	return strings.HasPrefix(strings.ToLower(input), "data:")
}
