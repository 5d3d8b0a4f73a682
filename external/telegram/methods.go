package telegram

import (
	"context"
	"errors"
	"strings"

	"github.com/riskibarqy/puntodeoro/internal/domain/chat"
)

// Send posts a new message and returns its id.
func (c *Client) Send(ctx context.Context, chatID int64, msg chat.Message) (int64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	var sent message
	err := c.call(ctx, "sendMessage", sendMessageRequest{
		ChatID:      chatID,
		Text:        msg.Text,
		ParseMode:   c.parseMode,
		ReplyMarkup: keyboardFrom(msg.Options),
	}, &sent)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// Edit replaces the text and options of a message the bot sent earlier.
// Editing to identical content is not an error.
func (c *Client) Edit(ctx context.Context, chatID, messageID int64, msg chat.Message) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	err := c.call(ctx, "editMessageText", editMessageRequest{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        msg.Text,
		ParseMode:   c.parseMode,
		ReplyMarkup: keyboardFrom(msg.Options),
	}, nil)

	var apiErr *APIError
	if errors.As(err, &apiErr) && strings.Contains(apiErr.Description, "message is not modified") {
		return nil
	}
	return err
}

// Ack answers a callback query so the client stops its spinner.
func (c *Client) Ack(ctx context.Context, callbackID, text string) error {
	if strings.TrimSpace(callbackID) == "" {
		return nil
	}
	return c.call(ctx, "answerCallbackQuery", answerCallbackRequest{
		CallbackQueryID: callbackID,
		Text:            text,
	}, nil)
}

// Notifier adapts the client to usecase.Notifier. In private chats the chat
// id equals the user id.
func (c *Client) Notifier() *Notifier {
	return &Notifier{client: c}
}

type Notifier struct {
	client *Client
}

func (n *Notifier) Send(ctx context.Context, recipientID int64, text string) error {
	_, err := n.client.Send(ctx, recipientID, chat.Message{Text: text})
	return err
}
