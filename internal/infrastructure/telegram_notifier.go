package infrastructure

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramNotifier forwards escalations to the operators' Telegram chat,
// out-of-band from the WhatsApp transport so alerts still arrive when the
// session drops.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    zerolog.Logger
}

func NewTelegramNotifier(token string, chatID int64, log zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
		log:    log.With().Str("comp", "telegram").Logger(),
	}, nil
}

func (t *TelegramNotifier) Notify(text string) error {
	_, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, text))
	if err != nil {
		t.log.Warn().Err(err).Msg("telegram send failed")
	}
	return err
}
