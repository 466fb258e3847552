// Package disambig reduces a candidate list to a single movie, either
// automatically or by validating the user's numeric selection.
package disambig

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cinemareddy/postbot/internal/domain"
)

// Kind classifies the outcome of resolving a candidate list.
type Kind int

const (
	// NoMatch means the provider returned nothing.
	NoMatch Kind = iota
	// Auto means exactly one candidate matched and no session is needed.
	Auto
	// NeedsChoice means the user must pick a candidate by number.
	NeedsChoice
)

// Resolution is the decision for a fresh candidate list.
type Resolution struct {
	Kind       Kind
	Auto       domain.Candidate   // set when Kind == Auto
	Candidates []domain.Candidate // set when Kind == NeedsChoice
}

// Resolve decides how a search result collapses to one movie. It is a pure
// decision and does not touch any session state.
func Resolve(candidates []domain.Candidate) Resolution {
	switch len(candidates) {
	case 0:
		return Resolution{Kind: NoMatch}
	case 1:
		return Resolution{Kind: Auto, Auto: candidates[0]}
	default:
		return Resolution{Kind: NeedsChoice, Candidates: candidates}
	}
}

// ApplyChoice validates a numeric reply against the session's candidate
// list and returns the selected candidate. The caller must have consumed
// the session already; an invalid reply does not restore it.
func ApplyChoice(sess *domain.Session, reply string) (domain.Candidate, error) {
	n, err := strconv.Atoi(strings.TrimSpace(reply))
	if err != nil || n < 1 {
		return domain.Candidate{}, fmt.Errorf("%w: %q", domain.ErrInvalidChoice, reply)
	}
	if n > len(sess.Candidates) {
		return domain.Candidate{}, fmt.Errorf("%w: %d of %d", domain.ErrInvalidChoice, n, len(sess.Candidates))
	}
	return sess.Candidates[n-1], nil
}
