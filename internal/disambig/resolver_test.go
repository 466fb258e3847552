package disambig

import (
	"errors"
	"testing"

	"github.com/cinemareddy/postbot/internal/domain"
)

var candidates = []domain.Candidate{
	{ID: 10, Title: "First", ReleaseYear: "2001"},
	{ID: 20, Title: "Second", ReleaseYear: "2002"},
	{ID: 30, Title: "Third", ReleaseYear: ""},
}

func TestResolve(t *testing.T) {
	if r := Resolve(nil); r.Kind != NoMatch {
		t.Errorf("empty list: kind = %v, want NoMatch", r.Kind)
	}

	r := Resolve(candidates[:1])
	if r.Kind != Auto {
		t.Fatalf("single candidate: kind = %v, want Auto", r.Kind)
	}
	if r.Auto.ID != 10 {
		t.Errorf("auto candidate = %+v", r.Auto)
	}

	r = Resolve(candidates)
	if r.Kind != NeedsChoice {
		t.Fatalf("three candidates: kind = %v, want NeedsChoice", r.Kind)
	}
	if len(r.Candidates) != 3 {
		t.Errorf("candidate count = %d", len(r.Candidates))
	}
}

func TestApplyChoiceSelectsByOriginalOrder(t *testing.T) {
	sess := &domain.Session{UserID: 1, Candidates: candidates}
	got, err := ApplyChoice(sess, "2")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got.ID != 20 {
		t.Errorf("selected id = %d, want 20", got.ID)
	}
}

func TestApplyChoiceTrimsReply(t *testing.T) {
	sess := &domain.Session{UserID: 1, Candidates: candidates}
	if _, err := ApplyChoice(sess, " 1 "); err != nil {
		t.Errorf("apply with surrounding spaces: %v", err)
	}
}

func TestApplyChoiceInvalid(t *testing.T) {
	sess := &domain.Session{UserID: 1, Candidates: candidates}
	for _, reply := range []string{"0", "9", "-1", "abc", "", "1.5"} {
		if _, err := ApplyChoice(sess, reply); !errors.Is(err, domain.ErrInvalidChoice) {
			t.Errorf("ApplyChoice(%q) err = %v, want ErrInvalidChoice", reply, err)
		}
	}
}
