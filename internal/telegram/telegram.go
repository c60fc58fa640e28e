package telegram

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/i474232898/weather-subscription-bot/internal/bot"
)

// Handler consumes inbound events.
type Handler interface {
	Handle(ctx context.Context, ev bot.Event) error
}

// Client is the Telegram side of the bot: it implements bot.Responder and
// reconcile.Notifier and feeds updates to a Handler.
type Client struct {
	api *tgbotapi.BotAPI
}

// New authenticates against the Bot API with token.
func New(token string) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: connect: %w", err)
	}
	log.Printf("INFO: authorized on telegram account %s", api.Self.UserName)
	return &Client{api: api}, nil
}

func (c *Client) Send(_ context.Context, chatID int64, reply bot.Reply) error {
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	if len(reply.Keyboard) > 0 {
		msg.ReplyMarkup = toMarkup(reply.Keyboard)
	}
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("telegram: send to %d: %w", chatID, err)
	}
	return nil
}

func (c *Client) EditKeyboard(_ context.Context, chatID int64, messageID int, kb bot.Keyboard) error {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, toMarkup(kb))
	if _, err := c.api.Request(edit); err != nil {
		return fmt.Errorf("telegram: edit markup %d/%d: %w", chatID, messageID, err)
	}
	return nil
}

func (c *Client) AnswerCallback(_ context.Context, callbackID, text string) error {
	if _, err := c.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("telegram: answer callback: %w", err)
	}
	return nil
}

// Notify sends a plain message; used by the reconciler.
func (c *Client) Notify(ctx context.Context, chatID int64, text string) error {
	return c.Send(ctx, chatID, bot.Reply{Text: text})
}

// Run long-polls for updates and hands them to h one at a time until ctx is
// done. Handler errors are logged and do not stop the loop.
func (c *Client) Run(ctx context.Context, h Handler) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := c.api.GetUpdatesChan(u)
	defer c.api.StopReceivingUpdates()

	log.Println("INFO: bot started")
	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			ev, ok := toEvent(update)
			if !ok {
				continue
			}
			if err := h.Handle(ctx, ev); err != nil {
				log.Printf("ERROR: handle update %d for chat %d: %v", update.UpdateID, ev.ChatID, err)
			}
		}
	}
}

// toEvent converts the updates the bot cares about; everything else is skipped.
func toEvent(update tgbotapi.Update) (bot.Event, bool) {
	switch {
	case update.CallbackQuery != nil:
		q := update.CallbackQuery
		ev := bot.Event{
			Kind:         bot.EventCallback,
			CallbackID:   q.ID,
			CallbackData: q.Data,
		}
		if q.Message != nil && q.Message.Chat != nil {
			ev.ChatID = q.Message.Chat.ID
			ev.MessageID = q.Message.MessageID
		} else if q.From != nil {
			ev.ChatID = q.From.ID
		}
		return ev, ev.ChatID != 0

	case update.Message != nil && update.Message.Chat != nil:
		m := update.Message
		if m.IsCommand() {
			return bot.Event{Kind: bot.EventCommand, ChatID: m.Chat.ID, Command: m.Command()}, true
		}
		if m.Text == "" {
			return bot.Event{}, false
		}
		return bot.Event{Kind: bot.EventText, ChatID: m.Chat.ID, Text: m.Text}, true
	}
	return bot.Event{}, false
}

// toMarkup converts a bot keyboard; an empty keyboard yields an empty markup,
// which removes buttons when used in an edit.
func toMarkup(kb bot.Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, r := range kb {
		row := make([]tgbotapi.InlineKeyboardButton, 0, len(r))
		for _, b := range r {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		rows = append(rows, row)
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}
