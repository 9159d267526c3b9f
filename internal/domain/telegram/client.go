package telegram

import "gopkg.in/telebot.v3"

// Client sends messages via a Telegram bot. It backs the secondary manager
// alert channel and keeps the alert handler decoupled from the bot library.
type Client interface {
	SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error
}
