package gateway

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rahul/abacus/internal/observability"
	"go.uber.org/zap"
)

var _ Messenger = (*TelegramGateway)(nil)

type TelegramGateway struct {
	Bot    *tgbotapi.BotAPI
	Runner Runner
	Logger *observability.Logger
}

func NewTelegramGateway(token string, runner Runner, logger *observability.Logger) (*TelegramGateway, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = observability.NewNopLogger()
	}

	logger.Zap().Info("authorized on telegram", zap.String("account", bot.Self.UserName))

	return &TelegramGateway{
		Bot:    bot,
		Runner: runner,
		Logger: logger,
	}, nil
}

// Start handles updates until ctx is done or the update channel closes.
// Each message is answered before the next is read.
func (tg *TelegramGateway) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := tg.Bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			tg.Bot.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || strings.TrimSpace(update.Message.Text) == "" {
				continue
			}
			tg.handle(ctx, update.Message)
		}
	}
}

func (tg *TelegramGateway) handle(ctx context.Context, m *tgbotapi.Message) {
	user := ""
	if m.From != nil {
		user = m.From.UserName
	}
	tg.Logger.Zap().Info("telegram request", zap.String("user", user), zap.String("text", m.Text))

	reply := HandleText(ctx, tg.Runner, m.Text)
	if _, err := tg.Bot.Send(tgbotapi.NewMessage(m.Chat.ID, reply)); err != nil {
		tg.Logger.Zap().Warn("failed to send telegram reply", zap.Error(err))
	}
}

// HandleText answers one chat message. "/start" and "/help" get usage text.
func HandleText(ctx context.Context, runner Runner, text string) string {
	text = strings.TrimSpace(text)
	switch text {
	case "/start", "/help":
		return "Send me a calculation in plain words, e.g. \"Add 5 and 3, then multiply by 2\"."
	}
	return Render(runner.Run(ctx, text))
}

func (tg *TelegramGateway) Send(chatID string, text string) error {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil || id == 0 {
		return fmt.Errorf("invalid chat ID: %s", chatID)
	}

	_, err = tg.Bot.Send(tgbotapi.NewMessage(id, text))
	return err
}

func (tg *TelegramGateway) Stop() error {
	tg.Bot.StopReceivingUpdates()
	return nil
}
