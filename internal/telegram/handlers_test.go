package telegram

import (
	"fmt"
	"testing"

	"github.com/cinemareddy/postbot/internal/domain"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("%w: got 1 lines", domain.ErrBadFormat), "The message format is incorrect. It should have exactly four lines."},
		{&domain.UnknownShorthandError{Kind: "print", Shorthand: "x"}, "An error occurred. Make sure your print shorthand is correct."},
		{&domain.UnknownShorthandError{Kind: "language", Shorthand: "zz"}, "An error occurred. Make sure your language shorthand is correct."},
		{fmt.Errorf("%w: %q", domain.ErrNoMatch, "Unknown"), "Movie not found on TMDb."},
		{domain.ErrNoPoster, "Poster not available for this movie."},
		{domain.ErrProviderUnavailable, "Failed to connect to the movie database."},
		{domain.ErrInvalidChoice, "That number is not on the list. Please send your request again."},
		{domain.ErrNoActiveSession, "There is no pending selection. Send a new four-line request first."},
		{fmt.Errorf("boom"), "Something went wrong. Please try again."},
	}
	for _, tt := range tests {
		if got := userMessage(tt.err); got != tt.want {
			t.Errorf("userMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
