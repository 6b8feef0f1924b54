package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/readloop/readloop/pkg/models"
	"github.com/segmentio/encoding/json"
)

const defaultAPIBaseURL = "https://api.telegram.org"

// Telegram posts messages through the Telegram Bot API.
type Telegram struct {
	botToken string
	baseURL  string
	client   *http.Client
}

// TelegramOption configures a Telegram notifier.
type TelegramOption func(*Telegram)

// WithBaseURL points the notifier at a different API host. Used in tests.
func WithBaseURL(baseURL string) TelegramOption {
	return func(t *Telegram) {
		t.baseURL = baseURL
	}
}

func NewTelegram(botToken string, opts ...TelegramOption) *Telegram {
	t := &Telegram{
		botToken: botToken,
		baseURL:  defaultAPIBaseURL,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

type editMessageTextRequest struct {
	ChatID    int64  `json:"chat_id"`
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
}

type deleteMessageRequest struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int64 `json:"message_id"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

func (t *Telegram) DeliverReminder(ctx context.Context, channelID int64, _ *models.Book, reminder *models.Reminder) (int64, error) {
	return t.sendMessage(ctx, channelID, ReminderText(reminder))
}

func (t *Telegram) PostHeader(ctx context.Context, channelID int64, book *models.Book) (int64, error) {
	return t.sendMessage(ctx, channelID, HeaderText(book))
}

func (t *Telegram) EditHeader(ctx context.Context, channelID, messageID int64, book *models.Book) error {
	_, err := t.call(ctx, "editMessageText", editMessageTextRequest{
		ChatID:    channelID,
		MessageID: messageID,
		Text:      HeaderText(book),
	})
	return err
}

func (t *Telegram) PostCompletion(ctx context.Context, channelID int64, book *models.Book) error {
	_, err := t.sendMessage(ctx, channelID, CompletionText(book))
	return err
}

func (t *Telegram) DeleteMessage(ctx context.Context, channelID, messageID int64) error {
	_, err := t.call(ctx, "deleteMessage", deleteMessageRequest{
		ChatID:    channelID,
		MessageID: messageID,
	})
	return err
}

func (t *Telegram) sendMessage(ctx context.Context, channelID int64, text string) (int64, error) {
	resp, err := t.call(ctx, "sendMessage", sendMessageRequest{
		ChatID: channelID,
		Text:   text,
	})
	if err != nil {
		return 0, err
	}
	return resp.Result.MessageID, nil
}

func (t *Telegram) call(ctx context.Context, method string, payload any) (*apiResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", t.baseURL, t.botToken, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "telegram %s request failed", method)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	apiResp := &apiResponse{}
	if err := json.Unmarshal(respBody, apiResp); err != nil {
		return nil, errors.Wrapf(err, "telegram %s response unparseable", method)
	}
	if !apiResp.OK {
		return nil, errors.Errorf("telegram %s error: %s", method, apiResp.Description)
	}

	return apiResp, nil
}
