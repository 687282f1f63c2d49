package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"interview-screening-bot/internal/interview"
	"interview-screening-bot/internal/logger"
	"interview-screening-bot/internal/notify"
)

const (
	textHelp = "🤖 Interview bot\n\n" +
		"Commands:\n" +
		"/start - Begin the interview\n" +
		"/help - Show this message\n\n" +
		"After /start, tell us your first name and answer each question in your own words."
	textUnknownCommand = "Unknown command. Use /help to see the available commands."
	textRateLimited    = "⏳ Too many messages. Please wait a minute."

	cleanupInterval = time.Hour
)

// Interviewer applies chat events to candidate sessions.
type Interviewer interface {
	HandleEvent(ctx context.Context, candidateID int64, ev interview.Event) (interview.Effect, error)
}

// HandlerOptions wires a Handler. Sender, Interviews and Admins are required.
type HandlerOptions struct {
	Sender     notify.Sender
	Interviews Interviewer
	Admins     interview.Admins
	Limiter    *RateLimiter
	// Shutdown is called after a permitted /stop has been acknowledged.
	Shutdown func()
	Logger   *zap.Logger
}

// Handler turns chat updates into interview events and sends the replies.
type Handler struct {
	sender     notify.Sender
	interviews Interviewer
	admins     interview.Admins
	limiter    *RateLimiter
	shutdown   func()
	logger     *zap.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	switch {
	case opts.Sender == nil:
		return nil, errors.New("telegram: sender is required")
	case opts.Interviews == nil:
		return nil, errors.New("telegram: interviews are required")
	case opts.Admins == nil:
		return nil, errors.New("telegram: admin set is required")
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = NewRateLimiter(DefaultRateLimit, time.Minute)
	}
	shutdown := opts.Shutdown
	if shutdown == nil {
		shutdown = func() {}
	}
	return &Handler{
		sender:     opts.Sender,
		interviews: opts.Interviews,
		admins:     opts.Admins,
		limiter:    limiter,
		shutdown:   shutdown,
		logger:     logger.OrNop(opts.Logger),
	}, nil
}

// RunCleanup prunes idle rate limiter entries until ctx is done.
func (h *Handler) RunCleanup(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.limiter.Prune()
		}
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, update Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil || msg.From.IsBot {
		return
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	userID := msg.From.ID
	chatID := msg.Chat.ID

	if !h.limiter.IsAllowed(userID) {
		h.logger.Debug("message rate limited", zap.Int64(logger.FieldCandidateID, userID))
		h.send(ctx, chatID, textRateLimited)
		return
	}

	var ev interview.Event
	if strings.HasPrefix(text, "/") {
		switch command(text) {
		case "/start":
			ev = interview.StartCommand{Username: msg.From.Username}
		case "/stop":
			ev = interview.StopCommand{}
		case "/help":
			h.send(ctx, chatID, textHelp)
			return
		default:
			h.send(ctx, chatID, textUnknownCommand)
			return
		}
	} else {
		ev = interview.TextMessage{Text: text, Username: msg.From.Username}
	}

	effect, err := h.interviews.HandleEvent(ctx, userID, ev)
	if err != nil {
		h.logger.Error("handle event failed",
			zap.Int64(logger.FieldCandidateID, userID),
			zap.Stringer("effect", effect.Kind),
			zap.Error(err))
		if errors.Is(err, interview.ErrPersistence) {
			h.alertAdmins(ctx, userID, err)
		}
	}

	for _, m := range effect.Messages {
		h.send(ctx, chatID, m)
	}

	if effect.Kind == interview.EffectShutdown {
		h.shutdown()
	}
}

func (h *Handler) alertAdmins(ctx context.Context, candidateID int64, cause error) {
	text := fmt.Sprintf("⚠️ Storage failure for candidate %d: %v", candidateID, cause)
	for _, id := range h.admins.IDs() {
		h.send(ctx, id, text)
	}
}

func (h *Handler) send(ctx context.Context, chatID int64, text string) {
	if err := h.sender.SendMessage(ctx, chatID, text); err != nil {
		h.logger.Warn("send message failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// command returns the lower-cased command of text without a @botname suffix.
func command(text string) string {
	cmd, _, _ := strings.Cut(text, " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return strings.ToLower(cmd)
}
