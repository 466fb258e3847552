package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/cinemareddy/postbot/internal/domain"
	"github.com/cinemareddy/postbot/internal/logger"
	"github.com/cinemareddy/postbot/internal/storage"
	"github.com/cinemareddy/postbot/internal/usecase"
)

const helpText = `Send a movie request as four lines:

Movie Title
print code (d, h, f)
language codes (h, t, k, m, e, b, tm; comma separated)
download link

If several movies match the title, reply with the number of yours.`

// HistoryReader lists recently published posts for the admin command.
// nil disables /recent.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]storage.PostRecord, error)
}

// Handlers binds the posting flow to telebot endpoints. All outbound
// sends go through the dispatcher.
type Handlers struct {
	svc        *usecase.Service
	dispatcher *Dispatcher
	history    HistoryReader
	adminID    int64
}

// NewHandlers builds the endpoint set.
func NewHandlers(svc *usecase.Service, dispatcher *Dispatcher, history HistoryReader, adminID int64) *Handlers {
	return &Handlers{
		svc:        svc,
		dispatcher: dispatcher,
		history:    history,
		adminID:    adminID,
	}
}

// OnText handles every non-command text: a four-line submission or a
// numeric selection reply.
func (h *Handlers) OnText(c tele.Context) error {
	text := strings.TrimSpace(c.Text())
	if text == "" || strings.HasPrefix(text, "/") {
		return nil
	}

	ctx := logger.WithHandler(contextOf(c), "text")
	userID, chatID := senderIDs(c)
	start := time.Now()

	var (
		reply usecase.Reply
		err   error
		path  string
	)
	switch h.svc.Route(text) {
	case usecase.KindChoice:
		path = "choice"
		reply, err = h.svc.HandleChoice(ctx, userID, text)
	default:
		path = "submission"
		h.send(ctx, c, "Searching for poster...")
		reply, err = h.svc.HandleSubmission(ctx, userID, chatID, text)
	}

	if err != nil {
		logger.Warn(ctx, "tg", "handler.summary",
			slog.String("status", "fail"),
			slog.String("path", path),
			slog.String("code", domain.ErrorCode(err)),
			slog.Duration("duration", logger.Took(start)),
		)
		h.send(ctx, c, userMessage(err))
		return nil
	}

	if reply.Post != nil {
		h.sendPost(ctx, c, *reply.Post)
	} else if reply.Text != "" {
		h.send(ctx, c, reply.Text)
	}

	logger.Info(ctx, "tg", "handler.summary",
		slog.String("status", "ok"),
		slog.String("path", path),
		slog.Bool("posted", reply.Post != nil),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

// OnStart greets and explains the submission format.
func (h *Handlers) OnStart(c tele.Context) error {
	ctx := logger.WithHandler(contextOf(c), "start")
	h.send(ctx, c, "Welcome! "+helpText)
	return nil
}

// OnHelp repeats the submission format.
func (h *Handlers) OnHelp(c tele.Context) error {
	ctx := logger.WithHandler(contextOf(c), "help")
	h.send(ctx, c, helpText)
	return nil
}

// OnRecent lists the latest published posts. Admin only.
func (h *Handlers) OnRecent(c tele.Context) error {
	ctx := logger.WithHandler(contextOf(c), "recent")
	userID, _ := senderIDs(c)
	if h.history == nil || h.adminID == 0 || userID != h.adminID {
		return nil
	}

	records, err := h.history.Recent(ctx, 10)
	if err != nil {
		logger.Error(ctx, "tg", "recent.query",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		h.send(ctx, c, "Could not load post history.")
		return nil
	}
	h.send(ctx, c, storage.FormatRecent(records))
	return nil
}

func (h *Handlers) send(ctx context.Context, c tele.Context, text string) {
	if text == "" {
		return
	}
	h.enqueue(ctx, "send_text", func() error {
		return c.Send(text)
	})
}

func (h *Handlers) sendPost(ctx context.Context, c tele.Context, post domain.Post) {
	photo := &tele.Photo{
		File:    tele.FromURL(post.PosterURL),
		Caption: post.Caption,
	}
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(markup.URL("🔗 Download Now", post.LinkURL)))

	h.enqueue(ctx, "send_photo", func() error {
		return c.Send(photo, markup, tele.ModeMarkdown)
	})
}

func (h *Handlers) enqueue(ctx context.Context, action string, run func() error) {
	if err := h.dispatcher.Enqueue(ctx, action, run); err != nil {
		logger.Error(ctx, "tg", "enqueue",
			slog.String("status", "fail"),
			slog.String("action", action),
			slog.String("err", err.Error()),
		)
	}
}

// userMessage translates a flow error into the plain reply the user sees.
func userMessage(err error) string {
	var se *domain.UnknownShorthandError
	if errors.As(err, &se) {
		return fmt.Sprintf("An error occurred. Make sure your %s shorthand is correct.", se.Kind)
	}

	switch {
	case errors.Is(err, domain.ErrBadFormat):
		return "The message format is incorrect. It should have exactly four lines."
	case errors.Is(err, domain.ErrNoMatch):
		return "Movie not found on TMDb."
	case errors.Is(err, domain.ErrNoPoster):
		return "Poster not available for this movie."
	case errors.Is(err, domain.ErrProviderUnavailable):
		return "Failed to connect to the movie database."
	case errors.Is(err, domain.ErrInvalidChoice):
		return "That number is not on the list. Please send your request again."
	case errors.Is(err, domain.ErrNoActiveSession):
		return "There is no pending selection. Send a new four-line request first."
	default:
		return "Something went wrong. Please try again."
	}
}

func senderIDs(c tele.Context) (userID, chatID int64) {
	if user := c.Sender(); user != nil {
		userID = user.ID
	}
	if chat := c.Chat(); chat != nil {
		chatID = chat.ID
	}
	return userID, chatID
}

func contextOf(c tele.Context) context.Context {
	if ctx, ok := c.Get(ctxDataKey).(context.Context); ok && ctx != nil {
		return ctx
	}
	return context.Background()
}
