package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"interview-screening-bot/internal/interview"
)

type sentMessage struct {
	chatID int64
	text   string
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (s *recordingSender) SendMessage(_ context.Context, chatID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func (s *recordingSender) messages() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentMessage(nil), s.sent...)
}

type call struct {
	id int64
	ev interview.Event
}

type stubInterviewer struct {
	calls  []call
	effect interview.Effect
	err    error
}

func (s *stubInterviewer) HandleEvent(_ context.Context, id int64, ev interview.Event) (interview.Effect, error) {
	s.calls = append(s.calls, call{id: id, ev: ev})
	return s.effect, s.err
}

type admins []int64

func (a admins) Contains(id int64) bool {
	for _, v := range a {
		if v == id {
			return true
		}
	}
	return false
}

func (a admins) IDs() []int64 { return a }

func textUpdate(userID int64, username, text string) Update {
	return Update{UpdateID: 1, Message: &Message{
		From: &User{ID: userID, Username: username},
		Chat: &Chat{ID: userID, Type: "private"},
		Text: text,
	}}
}

func newTestHandler(t *testing.T, iv Interviewer, shutdown func()) (*Handler, *recordingSender) {
	t.Helper()
	sender := &recordingSender{}
	h, err := NewHandler(HandlerOptions{
		Sender:     sender,
		Interviews: iv,
		Admins:     admins{900, 901},
		Shutdown:   shutdown,
		Logger:     zaptest.NewLogger(t),
	})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	return h, sender
}

func TestHandleUpdateMapsEvents(t *testing.T) {
	tests := []struct {
		name string
		text string
		want interview.Event
	}{
		{name: "start", text: "/start", want: interview.StartCommand{Username: "bob"}},
		{name: "start with bot name", text: "/start@screening_bot", want: interview.StartCommand{Username: "bob"}},
		{name: "start with payload", text: "/START ref123", want: interview.StartCommand{Username: "bob"}},
		{name: "stop", text: "/stop", want: interview.StopCommand{}},
		{name: "text", text: "  Bob  ", want: interview.TextMessage{Text: "Bob", Username: "bob"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iv := &stubInterviewer{effect: interview.Effect{Kind: interview.EffectPrompt, Messages: []string{"reply"}}}
			h, sender := newTestHandler(t, iv, nil)

			h.HandleUpdate(context.Background(), textUpdate(5, "bob", tt.text))

			if len(iv.calls) != 1 {
				t.Fatalf("expected one event, got %d", len(iv.calls))
			}
			if iv.calls[0].id != 5 || iv.calls[0].ev != tt.want {
				t.Fatalf("event = %+v for %d, want %+v", iv.calls[0].ev, iv.calls[0].id, tt.want)
			}
			sent := sender.messages()
			if len(sent) != 1 || sent[0].chatID != 5 || sent[0].text != "reply" {
				t.Fatalf("unexpected replies: %+v", sent)
			}
		})
	}
}

func TestHandleUpdateLocalCommands(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{text: "/help", want: textHelp},
		{text: "/status", want: textUnknownCommand},
	}
	for _, tt := range tests {
		iv := &stubInterviewer{}
		h, sender := newTestHandler(t, iv, nil)

		h.HandleUpdate(context.Background(), textUpdate(5, "", tt.text))

		if len(iv.calls) != 0 {
			t.Fatalf("%s: interview should not see local commands", tt.text)
		}
		sent := sender.messages()
		if len(sent) != 1 || sent[0].text != tt.want {
			t.Fatalf("%s: unexpected replies %+v", tt.text, sent)
		}
	}
}

func TestHandleUpdateIgnoresNonText(t *testing.T) {
	iv := &stubInterviewer{}
	h, sender := newTestHandler(t, iv, nil)

	h.HandleUpdate(context.Background(), Update{UpdateID: 1})
	h.HandleUpdate(context.Background(), textUpdate(5, "", "   "))
	bot := textUpdate(6, "", "hi")
	bot.Message.From.IsBot = true
	h.HandleUpdate(context.Background(), bot)

	if len(iv.calls) != 0 || len(sender.messages()) != 0 {
		t.Fatalf("expected no activity, got calls=%d sent=%d", len(iv.calls), len(sender.messages()))
	}
}

func TestHandleUpdateShutdown(t *testing.T) {
	iv := &stubInterviewer{effect: interview.Effect{Kind: interview.EffectShutdown, Messages: []string{"stopping"}}}
	stopped := false
	h, sender := newTestHandler(t, iv, func() { stopped = true })

	h.HandleUpdate(context.Background(), textUpdate(900, "", "/stop"))

	if !stopped {
		t.Fatalf("shutdown was not triggered")
	}
	if sent := sender.messages(); len(sent) != 1 || sent[0].text != "stopping" {
		t.Fatalf("stop acknowledgement not sent: %+v", sent)
	}
}

func TestHandleUpdatePermissionDeniedDoesNotStop(t *testing.T) {
	iv := &stubInterviewer{effect: interview.Effect{Kind: interview.EffectPermissionDenied, Messages: []string{"denied"}}}
	stopped := false
	h, _ := newTestHandler(t, iv, func() { stopped = true })

	h.HandleUpdate(context.Background(), textUpdate(5, "", "/stop"))

	if stopped {
		t.Fatalf("shutdown triggered for a non-admin")
	}
}

func TestHandleUpdatePersistenceFailureAlertsAdmins(t *testing.T) {
	iv := &stubInterviewer{
		effect: interview.Effect{Kind: interview.EffectRetryLater, Messages: []string{"retry"}},
		err:    fmt.Errorf("%w: disk full", interview.ErrPersistence),
	}
	h, sender := newTestHandler(t, iv, nil)

	h.HandleUpdate(context.Background(), textUpdate(5, "", "my answer"))

	alerts := map[int64]bool{}
	var candidateReply bool
	for _, m := range sender.messages() {
		switch {
		case m.chatID == 5 && m.text == "retry":
			candidateReply = true
		case strings.Contains(m.text, "candidate 5"):
			alerts[m.chatID] = true
		}
	}
	if !candidateReply {
		t.Fatalf("candidate did not get the retry message")
	}
	if !alerts[900] || !alerts[901] {
		t.Fatalf("admins not alerted: %v", alerts)
	}
}

func TestHandleUpdateOtherErrorsDoNotAlert(t *testing.T) {
	iv := &stubInterviewer{err: errors.New("boom")}
	h, sender := newTestHandler(t, iv, nil)

	h.HandleUpdate(context.Background(), textUpdate(5, "", "hello"))

	if sent := sender.messages(); len(sent) != 0 {
		t.Fatalf("unexpected messages: %+v", sent)
	}
}

func TestHandleUpdateRateLimited(t *testing.T) {
	iv := &stubInterviewer{effect: interview.Effect{Kind: interview.EffectPrompt}}
	sender := &recordingSender{}
	h, err := NewHandler(HandlerOptions{
		Sender:     sender,
		Interviews: iv,
		Admins:     admins{},
		Limiter:    NewRateLimiter(2, time.Minute),
	})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	for i := 0; i < 3; i++ {
		h.HandleUpdate(context.Background(), textUpdate(5, "", "answer"))
	}

	if len(iv.calls) != 2 {
		t.Fatalf("expected 2 events through the limiter, got %d", len(iv.calls))
	}
	sent := sender.messages()
	if len(sent) != 1 || sent[0].text != textRateLimited {
		t.Fatalf("expected one rate limit notice, got %+v", sent)
	}
}

func TestNewHandlerRequiresDependencies(t *testing.T) {
	if _, err := NewHandler(HandlerOptions{Interviews: &stubInterviewer{}, Admins: admins{}}); err == nil {
		t.Fatalf("expected error without sender")
	}
	if _, err := NewHandler(HandlerOptions{Sender: &recordingSender{}, Admins: admins{}}); err == nil {
		t.Fatalf("expected error without interviews")
	}
	if _, err := NewHandler(HandlerOptions{Sender: &recordingSender{}, Interviews: &stubInterviewer{}}); err == nil {
		t.Fatalf("expected error without admins")
	}
}
