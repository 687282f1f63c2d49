package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"interview-screening-bot/internal/logger"
)

const (
	DefaultAPIURL      = "https://api.telegram.org"
	DefaultPollTimeout = 30 * time.Second

	// MaxMessageLength is the Bot API limit for one message, in characters.
	MaxMessageLength = 4096
	chunkLength      = 4000

	pollRetryDelay = 5 * time.Second
	idleDelay      = time.Second
)

// Bot is a minimal Bot API client: long polling and plain text messages.
type Bot struct {
	client      *resty.Client
	pollTimeout time.Duration
	logger      *zap.Logger
}

func NewBot(token, apiURL string, pollTimeout time.Duration, l *zap.Logger) (*Bot, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("telegram: empty bot token")
	}
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if pollTimeout <= 0 {
		pollTimeout = DefaultPollTimeout
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(apiURL, "/")+"/bot"+token).
		SetHeader("Content-Type", "application/json").
		SetTimeout(pollTimeout + 10*time.Second)

	return &Bot{
		client:      client,
		pollTimeout: pollTimeout,
		logger:      logger.OrNop(l),
	}, nil
}

// GetUpdates long-polls for updates with id >= offset.
func (b *Bot) GetUpdates(ctx context.Context, offset int) ([]Update, error) {
	resp, err := b.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"offset":          strconv.Itoa(offset),
			"timeout":         strconv.Itoa(int(b.pollTimeout / time.Second)),
			"allowed_updates": `["message"]`,
		}).
		Get("/getUpdates")
	if err != nil {
		return nil, fmt.Errorf("telegram getUpdates: %w", err)
	}

	result, err := apiResult("getUpdates", resp.StatusCode(), resp.Body())
	if err != nil {
		return nil, err
	}

	var updates []Update
	if err := json.Unmarshal([]byte(result.Raw), &updates); err != nil {
		return nil, fmt.Errorf("telegram getUpdates: decode result: %w", err)
	}
	return updates, nil
}

// SendMessage sends text to a chat, split into several messages when it is
// longer than the Bot API allows.
func (b *Bot) SendMessage(ctx context.Context, chatID int64, text string) error {
	for _, chunk := range SplitMessage(text, chunkLength) {
		if err := b.sendChunk(ctx, chatID, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) sendChunk(ctx context.Context, chatID int64, text string) error {
	resp, err := b.client.R().
		SetContext(ctx).
		SetBody(sendMessageRequest{ChatID: chatID, Text: text}).
		Post("/sendMessage")
	if err != nil {
		return fmt.Errorf("telegram sendMessage: %w", err)
	}
	_, err = apiResult("sendMessage", resp.StatusCode(), resp.Body())
	return err
}

func apiResult(method string, status int, body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, &APIError{Method: method, Code: status, Description: "invalid response body"}
	}
	parsed := gjson.ParseBytes(body)
	if !parsed.Get("ok").Bool() {
		code := int(parsed.Get("error_code").Int())
		if code == 0 {
			code = status
		}
		return gjson.Result{}, &APIError{
			Method:      method,
			Code:        code,
			Description: parsed.Get("description").String(),
			RetryAfter:  int(parsed.Get("parameters.retry_after").Int()),
		}
	}
	return parsed.Get("result"), nil
}

// Poll fetches updates until ctx is done and hands them to handle. Updates
// from one sender run one at a time in arrival order; different senders run
// in parallel. It returns after all queued updates have been handled.
func (b *Bot) Poll(ctx context.Context, handle func(context.Context, Update)) error {
	d := newDispatcher(handle)
	defer d.wait()

	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		updates, err := b.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			delay := pollRetryDelay
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
				delay = time.Duration(apiErr.RetryAfter) * time.Second
			}
			b.logger.Warn("get updates failed", zap.Error(err), zap.Duration("retry_in", delay))
			if !sleep(ctx, delay) {
				return nil
			}
			continue
		}

		for _, update := range updates {
			offset = update.UpdateID + 1
			d.dispatch(ctx, update)
		}

		if len(updates) == 0 && !sleep(ctx, idleDelay) {
			return nil
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// SplitMessage cuts text into chunks of at most limit characters, preferring
// line breaks as cut points.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string
	runes := []rune(text)
	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		chunks = append(chunks, strings.TrimRight(string(runes[:cut]), "\n"))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}
