package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cinemareddy/postbot/internal/domain"
	"github.com/cinemareddy/postbot/internal/session"
)

type fakeProvider struct {
	candidates  []domain.Candidate
	searchErr   error
	details     map[int64]domain.MovieDetails
	detailsErr  error
	searchCalls int
}

func (f *fakeProvider) Search(_ context.Context, _ string) ([]domain.Candidate, error) {
	f.searchCalls++
	return f.candidates, f.searchErr
}

func (f *fakeProvider) Details(_ context.Context, id int64) (domain.MovieDetails, error) {
	if f.detailsErr != nil {
		return domain.MovieDetails{}, f.detailsErr
	}
	return f.details[id], nil
}

type recordedPost struct {
	userID, chatID, tmdbID int64
	post                   domain.Post
}

type fakeRecorder struct {
	records []recordedPost
}

func (f *fakeRecorder) Record(_ context.Context, userID, chatID, tmdbID int64, post domain.Post, _ domain.ParsedRequest) error {
	f.records = append(f.records, recordedPost{userID, chatID, tmdbID, post})
	return nil
}

const submission = "Inception\nh\ne\nhttps://example.com/dl"

func details(title string) map[int64]domain.MovieDetails {
	return map[int64]domain.MovieDetails{
		10: {Title: title, PosterURL: "https://img/p1.jpg", Genres: []string{"Action", "Sci-Fi"}},
		20: {Title: title + " II", PosterURL: "https://img/p2.jpg"},
		30: {Title: title + " III", PosterURL: "https://img/p3.jpg"},
	}
}

func newService(provider *fakeProvider) (*Service, *session.Store, *fakeRecorder) {
	store := session.NewStore(time.Minute)
	rec := &fakeRecorder{}
	return New(provider, store, rec), store, rec
}

func TestRoute(t *testing.T) {
	svc, _, _ := newService(&fakeProvider{})
	tests := []struct {
		text string
		want Kind
	}{
		{"2", KindChoice},
		{" 5 ", KindChoice},
		{"42", KindChoice},
		{"100", KindSubmission},
		{"0", KindSubmission},
		{"-1", KindSubmission},
		{"two", KindSubmission},
		{submission, KindSubmission},
	}
	for _, tt := range tests {
		if got := svc.Route(tt.text); got != tt.want {
			t.Errorf("Route(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestSingleMatchPostsWithoutSession(t *testing.T) {
	provider := &fakeProvider{
		candidates: []domain.Candidate{{ID: 10, Title: "Inception", ReleaseYear: "2010"}},
		details:    details("Inception"),
	}
	svc, store, rec := newService(provider)

	reply, err := svc.HandleSubmission(context.Background(), 7, 77, submission)
	if err != nil {
		t.Fatalf("submission: %v", err)
	}
	if reply.Post == nil {
		t.Fatal("expected a post")
	}
	if !strings.Contains(reply.Post.Caption, "Print: HD") {
		t.Errorf("caption missing print line:\n%s", reply.Post.Caption)
	}
	if store.Len() != 0 {
		t.Errorf("session stored for an unambiguous match, Len = %d", store.Len())
	}
	if len(rec.records) != 1 || rec.records[0].tmdbID != 10 {
		t.Errorf("history records = %+v", rec.records)
	}
}

func TestAmbiguousMatchStoresSessionAndListsCandidates(t *testing.T) {
	provider := &fakeProvider{
		candidates: []domain.Candidate{
			{ID: 10, Title: "Inception", ReleaseYear: "2010"},
			{ID: 20, Title: "Inception II", ReleaseYear: "2015"},
			{ID: 30, Title: "Inception III"},
		},
		details: details("Inception"),
	}
	svc, store, _ := newService(provider)

	reply, err := svc.HandleSubmission(context.Background(), 7, 77, submission)
	if err != nil {
		t.Fatalf("submission: %v", err)
	}
	if reply.Post != nil {
		t.Fatal("ambiguous match must not post directly")
	}
	for _, want := range []string{"1. Inception (2010)", "2. Inception II (2015)", "3. Inception III"} {
		if !strings.Contains(reply.Text, want) {
			t.Errorf("prompt missing %q:\n%s", want, reply.Text)
		}
	}
	sess, ok := store.Get(7)
	if !ok {
		t.Fatal("no session stored")
	}
	if len(sess.Candidates) != 3 {
		t.Errorf("stored candidates = %d", len(sess.Candidates))
	}
}

func TestChoiceResolvesSecondCandidateAndConsumesSession(t *testing.T) {
	provider := &fakeProvider{
		candidates: []domain.Candidate{
			{ID: 10, Title: "Inception", ReleaseYear: "2010"},
			{ID: 20, Title: "Inception II", ReleaseYear: "2015"},
			{ID: 30, Title: "Inception III"},
		},
		details: details("Inception"),
	}
	svc, store, rec := newService(provider)
	if _, err := svc.HandleSubmission(context.Background(), 7, 77, submission); err != nil {
		t.Fatalf("submission: %v", err)
	}

	reply, err := svc.HandleChoice(context.Background(), 7, "2")
	if err != nil {
		t.Fatalf("choice: %v", err)
	}
	if reply.Post == nil {
		t.Fatal("expected a post")
	}
	if !strings.Contains(reply.Post.Caption, "Inception II") {
		t.Errorf("wrong candidate posted:\n%s", reply.Post.Caption)
	}
	if store.Len() != 0 {
		t.Error("session not consumed")
	}
	if len(rec.records) != 1 || rec.records[0].tmdbID != 20 {
		t.Errorf("history records = %+v", rec.records)
	}

	// A repeated reply finds nothing pending.
	if _, err := svc.HandleChoice(context.Background(), 7, "2"); !errors.Is(err, domain.ErrNoActiveSession) {
		t.Errorf("second reply err = %v, want ErrNoActiveSession", err)
	}
}

func TestInvalidChoiceAbandonsSession(t *testing.T) {
	provider := &fakeProvider{
		candidates: []domain.Candidate{
			{ID: 10, Title: "A"}, {ID: 20, Title: "B"}, {ID: 30, Title: "C"},
		},
		details: details("A"),
	}
	svc, store, _ := newService(provider)
	if _, err := svc.HandleSubmission(context.Background(), 7, 77, submission); err != nil {
		t.Fatalf("submission: %v", err)
	}

	if _, err := svc.HandleChoice(context.Background(), 7, "9"); !errors.Is(err, domain.ErrInvalidChoice) {
		t.Fatalf("err = %v, want ErrInvalidChoice", err)
	}
	if store.Len() != 0 {
		t.Error("session survived an invalid choice; user must resubmit instead")
	}
	if _, err := svc.HandleChoice(context.Background(), 7, "1"); !errors.Is(err, domain.ErrNoActiveSession) {
		t.Errorf("follow-up err = %v, want ErrNoActiveSession", err)
	}
}

func TestChoiceWithoutSession(t *testing.T) {
	svc, _, _ := newService(&fakeProvider{})
	if _, err := svc.HandleChoice(context.Background(), 7, "1"); !errors.Is(err, domain.ErrNoActiveSession) {
		t.Errorf("err = %v, want ErrNoActiveSession", err)
	}
}

func TestResubmissionOverwritesPendingSession(t *testing.T) {
	provider := &fakeProvider{
		candidates: []domain.Candidate{
			{ID: 10, Title: "A"}, {ID: 20, Title: "B"},
		},
		details: details("A"),
	}
	svc, store, _ := newService(provider)
	if _, err := svc.HandleSubmission(context.Background(), 7, 77, submission); err != nil {
		t.Fatalf("first submission: %v", err)
	}
	provider.candidates = []domain.Candidate{
		{ID: 30, Title: "C"}, {ID: 20, Title: "B"},
	}
	if _, err := svc.HandleSubmission(context.Background(), 7, 77, submission); err != nil {
		t.Fatalf("second submission: %v", err)
	}

	sess, ok := store.Get(7)
	if !ok {
		t.Fatal("no session stored")
	}
	if sess.Candidates[0].ID != 30 {
		t.Errorf("old session not overwritten: %+v", sess.Candidates)
	}
}

func TestNoMatch(t *testing.T) {
	svc, store, _ := newService(&fakeProvider{})
	_, err := svc.HandleSubmission(context.Background(), 7, 77, submission)
	if !errors.Is(err, domain.ErrNoMatch) {
		t.Errorf("err = %v, want ErrNoMatch", err)
	}
	if store.Len() != 0 {
		t.Error("session stored for empty search result")
	}
}

func TestSubmissionErrorsBeforeSearch(t *testing.T) {
	provider := &fakeProvider{
		candidates: []domain.Candidate{{ID: 10, Title: "A"}},
		details:    details("A"),
	}
	svc, _, _ := newService(provider)

	if _, err := svc.HandleSubmission(context.Background(), 7, 77, "just one line"); !errors.Is(err, domain.ErrBadFormat) {
		t.Errorf("format err = %v, want ErrBadFormat", err)
	}
	var se *domain.UnknownShorthandError
	if _, err := svc.HandleSubmission(context.Background(), 7, 77, "T\nx\ne\nlink"); !errors.As(err, &se) {
		t.Errorf("shorthand err = %v, want UnknownShorthandError", err)
	}
	if provider.searchCalls != 0 {
		t.Errorf("provider searched %d times before validation passed", provider.searchCalls)
	}
}

func TestProviderFailurePropagates(t *testing.T) {
	svc, _, _ := newService(&fakeProvider{searchErr: domain.ErrProviderUnavailable})
	if _, err := svc.HandleSubmission(context.Background(), 7, 77, submission); !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Errorf("err = %v, want ErrProviderUnavailable", err)
	}
}

func TestMissingPosterDeclinesPost(t *testing.T) {
	provider := &fakeProvider{
		candidates: []domain.Candidate{{ID: 40, Title: "Obscure"}},
		details:    map[int64]domain.MovieDetails{40: {Title: "Obscure"}},
	}
	svc, _, rec := newService(provider)

	if _, err := svc.HandleSubmission(context.Background(), 7, 77, submission); !errors.Is(err, domain.ErrNoPoster) {
		t.Errorf("err = %v, want ErrNoPoster", err)
	}
	if len(rec.records) != 0 {
		t.Error("declined post was recorded")
	}
}
