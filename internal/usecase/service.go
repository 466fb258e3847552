// Package usecase wires the posting flow together: routing an inbound text
// to the submission or choice path, resolving candidates, and producing the
// outbound reply. All transport concerns stay outside.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/cinemareddy/postbot/internal/compose"
	"github.com/cinemareddy/postbot/internal/disambig"
	"github.com/cinemareddy/postbot/internal/domain"
	"github.com/cinemareddy/postbot/internal/logger"
	"github.com/cinemareddy/postbot/internal/request"
	"github.com/cinemareddy/postbot/internal/session"
	"github.com/cinemareddy/postbot/internal/shorthand"
)

// MovieProvider is the metadata collaborator the flow depends on.
type MovieProvider interface {
	Search(ctx context.Context, title string) ([]domain.Candidate, error)
	Details(ctx context.Context, id int64) (domain.MovieDetails, error)
}

// PostRecorder archives successfully composed posts. Recording is best
// effort; failures never abort the exchange.
type PostRecorder interface {
	Record(ctx context.Context, userID, chatID int64, tmdbID int64, post domain.Post, req domain.ParsedRequest) error
}

// Kind classifies an inbound non-command text.
type Kind int

const (
	// KindSubmission is a four-line posting attempt.
	KindSubmission Kind = iota
	// KindChoice is a one-token numeric selection reply.
	KindChoice
)

// Reply is what the transport should deliver back to the chat: either an
// informational text or a finished post.
type Reply struct {
	Text string
	Post *domain.Post
}

// Service owns the per-user disambiguation flow. Provider calls are the
// only blocking operations; everything else is pure or in-memory.
type Service struct {
	provider MovieProvider
	sessions *session.Store
	recorder PostRecorder
}

// New builds a Service. recorder may be nil when history is disabled.
func New(provider MovieProvider, sessions *session.Store, recorder PostRecorder) *Service {
	return &Service{
		provider: provider,
		sessions: sessions,
		recorder: recorder,
	}
}

// Route classifies an inbound text. A single short numeric token is always
// a choice reply so that a stale selection can never be misread as a
// malformed submission.
func (s *Service) Route(text string) Kind {
	if looksLikeChoice(text) {
		return KindChoice
	}
	return KindSubmission
}

// looksLikeChoice matches a small positive integer token (candidate lists
// never exceed the provider page size, so two digits are plenty).
func looksLikeChoice(text string) bool {
	tok := strings.TrimSpace(text)
	if tok == "" || len(tok) > 2 {
		return false
	}
	n, err := strconv.Atoi(tok)
	return err == nil && n > 0
}

// HandleSubmission runs the full submission path: parse, resolve
// shorthand, search, and either auto-post, ask for a selection, or fail.
func (s *Service) HandleSubmission(ctx context.Context, userID, chatID int64, text string) (Reply, error) {
	req, err := request.Parse(text)
	if err != nil {
		return Reply{}, err
	}
	printName, err := shorthand.ResolvePrint(req.PrintCode)
	if err != nil {
		return Reply{}, err
	}
	languages, err := shorthand.ResolveLanguages(req.LanguageCodes)
	if err != nil {
		return Reply{}, err
	}

	candidates, err := s.provider.Search(ctx, req.Title)
	if err != nil {
		return Reply{}, err
	}

	resolution := disambig.Resolve(candidates)
	switch resolution.Kind {
	case disambig.NoMatch:
		return Reply{}, fmt.Errorf("%w: %q", domain.ErrNoMatch, req.Title)

	case disambig.Auto:
		logger.Debug(ctx, "flow", "resolve.auto",
			slog.String("status", "ok"),
			slog.Int64("tmdb_id", resolution.Auto.ID),
		)
		return s.publish(ctx, userID, chatID, resolution.Auto.ID, req, printName, languages)

	default:
		s.sessions.Put(&domain.Session{
			UserID:     userID,
			ChatID:     chatID,
			Request:    req,
			Candidates: resolution.Candidates,
			CreatedAt:  time.Now(),
		})
		logger.Debug(ctx, "flow", "resolve.choice",
			slog.String("status", "ok"),
			slog.Int("candidates", len(resolution.Candidates)),
		)
		return Reply{Text: choicePrompt(req.Title, resolution.Candidates)}, nil
	}
}

// HandleChoice consumes the pending session and resolves the selection.
// The session is removed before validation, so an invalid or repeated
// reply leaves nothing to retry against; the user must resubmit.
func (s *Service) HandleChoice(ctx context.Context, userID int64, text string) (Reply, error) {
	sess, ok := s.sessions.Take(userID)
	if !ok {
		return Reply{}, domain.ErrNoActiveSession
	}

	chosen, err := disambig.ApplyChoice(sess, text)
	if err != nil {
		return Reply{}, err
	}

	printName, err := shorthand.ResolvePrint(sess.Request.PrintCode)
	if err != nil {
		return Reply{}, err
	}
	languages, err := shorthand.ResolveLanguages(sess.Request.LanguageCodes)
	if err != nil {
		return Reply{}, err
	}

	logger.Debug(ctx, "flow", "choice.applied",
		slog.String("status", "ok"),
		slog.Int64("tmdb_id", chosen.ID),
		slog.String("choice", strings.TrimSpace(text)),
	)
	return s.publish(ctx, userID, sess.ChatID, chosen.ID, sess.Request, printName, languages)
}

func (s *Service) publish(ctx context.Context, userID, chatID, tmdbID int64, req domain.ParsedRequest, printName string, languages []string) (Reply, error) {
	details, err := s.provider.Details(ctx, tmdbID)
	if err != nil {
		return Reply{}, err
	}
	post, err := compose.Compose(details, req, printName, languages)
	if err != nil {
		return Reply{}, err
	}

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, userID, chatID, tmdbID, post, req); err != nil {
			logger.Warn(ctx, "flow", "history.record",
				slog.String("status", "fail"),
				slog.Int64("tmdb_id", tmdbID),
				slog.String("err", err.Error()),
			)
		}
	}
	return Reply{Post: &post}, nil
}

func choicePrompt(title string, candidates []domain.Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d matches for %q. Reply with the number of your movie:\n", len(candidates), title)
	for i, c := range candidates {
		if c.ReleaseYear != "" {
			fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, c.Title, c.ReleaseYear)
		} else {
			fmt.Fprintf(&b, "%d. %s\n", i+1, c.Title)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
