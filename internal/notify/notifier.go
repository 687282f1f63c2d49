package notify

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"interview-screening-bot/internal/logger"
)

// Sender delivers a text message to a chat.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Notifier delivers completion summaries to operators. Best effort.
type Notifier interface {
	Notify(ctx context.Context, recipients []int64, s Summary) error
}

// NotificationError lists the recipients that could not be reached.
type NotificationError struct {
	Failed map[int64]error
}

func (e *NotificationError) Error() string {
	ids := make([]int64, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d: %v", id, e.Failed[id])
	}
	return "notify operators: " + strings.Join(parts, "; ")
}

func (e *NotificationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, err := range e.Failed {
		errs = append(errs, err)
	}
	return errs
}

// ChatNotifier sends the summary to every recipient through a chat Sender.
type ChatNotifier struct {
	sender Sender
	logger *zap.Logger
}

func NewChatNotifier(sender Sender, l *zap.Logger) *ChatNotifier {
	return &ChatNotifier{sender: sender, logger: logger.OrNop(l)}
}

// Notify tries every recipient; one failure does not stop the others.
func (n *ChatNotifier) Notify(ctx context.Context, recipients []int64, s Summary) error {
	if len(recipients) == 0 {
		return nil
	}
	msg := Message(s)

	failed := make(map[int64]error)
	for _, id := range recipients {
		if err := n.sender.SendMessage(ctx, id, msg); err != nil {
			failed[id] = err
			n.logger.Warn("operator notification failed",
				zap.Int64("recipient", id),
				zap.Int64(logger.FieldCandidateID, s.Candidate.ID),
				zap.Error(err))
			continue
		}
		n.logger.Info("operator notified",
			zap.Int64("recipient", id),
			zap.Int64(logger.FieldCandidateID, s.Candidate.ID))
	}
	if len(failed) > 0 {
		return &NotificationError{Failed: failed}
	}
	return nil
}

// IsNotificationError reports whether err came from a failed delivery.
func IsNotificationError(err error) bool {
	var ne *NotificationError
	return errors.As(err, &ne)
}
