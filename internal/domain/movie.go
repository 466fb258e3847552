package domain

import "time"

// ParsedRequest is a decoded four-line posting submission.
// It is immutable once built by the request parser.
type ParsedRequest struct {
	Title         string
	PrintCode     string
	LanguageCodes []string
	Link          string
}

// Candidate is a single tentative title match returned by the movie
// metadata provider. Ordinal position in the provider's result list is
// significant: it drives user-facing numbering and choice validation.
type Candidate struct {
	ID          int64
	Title       string
	ReleaseYear string // empty when the provider reports no release date
}

// MovieDetails holds the resolved movie fields needed for composing a post.
type MovieDetails struct {
	Title     string
	PosterURL string // empty when the provider has no poster
	Genres    []string
}

// Session correlates a user's pending disambiguation choice with the
// candidate list that was presented. It lives only between presenting an
// ambiguous match list and consuming the numeric reply.
type Session struct {
	UserID     int64
	ChatID     int64
	Request    ParsedRequest
	Candidates []Candidate
	CreatedAt  time.Time
}

// Post is the final outbound content: a caption, the poster to attach,
// and the download link exposed as an inline button.
type Post struct {
	Caption   string
	PosterURL string
	LinkURL   string
}
