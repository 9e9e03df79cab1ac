// Package bot connects chat transports to the conversation engine.
package bot

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/centromex/food-rescue-bot/internal/conversation"
	"github.com/centromex/food-rescue-bot/internal/messaging"
)

// Handler runs one conversation turn.
type Handler interface {
	Handle(ctx context.Context, in conversation.Inbound) conversation.Result
}

const textOnly = "Por enquanto só entendo mensagens de texto. Digite MENU para ver as opções."

// Bot is the Telegram long-poll transport. The chat id is the conversation key.
type Bot struct {
	api        *tgbotapi.BotAPI
	handler    Handler
	dispatcher *messaging.Dispatcher
	log        *zap.Logger
}

type Config struct {
	Token       string
	SendTimeout time.Duration
	Debug       bool
}

func New(cfg Config, handler Handler, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	api.Debug = cfg.Debug
	log.Info("authorized on telegram", zap.String("account", api.Self.UserName))

	return &Bot{
		api:        api,
		handler:    handler,
		dispatcher: messaging.NewDispatcher(&messaging.TelegramSender{API: api}, cfg.SendTimeout, log),
		log:        log,
	}, nil
}

// Run polls for updates until ctx is cancelled, handling them one at a time
// so messages of a chat are processed in order.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.dispatcher.Wait()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	in, ok := inboundFromMessage(msg)
	if !ok {
		b.dispatcher.Dispatch([]messaging.Message{{To: chatKey(msg.Chat.ID), Text: textOnly}})
		return
	}

	res := b.handler.Handle(ctx, in)
	if res.Debug.DedupHit {
		b.log.Debug("duplicate telegram update", zap.String("message_id", in.MessageID))
	}
	b.dispatcher.Dispatch(res.Messages)
}

// inboundFromMessage maps a Telegram message to a turn. Commands become the
// equivalent keywords; non-text messages are rejected.
func inboundFromMessage(msg *tgbotapi.Message) (conversation.Inbound, bool) {
	if msg == nil || msg.Chat == nil {
		return conversation.Inbound{}, false
	}

	text := msg.Text
	if msg.IsCommand() {
		switch msg.Command() {
		case "start", "menu", "help":
			text = "menu"
		case "cancel", "cancelar":
			text = "cancelar"
		default:
			text = msg.CommandArguments()
		}
	}
	if text == "" {
		return conversation.Inbound{}, false
	}

	return conversation.Inbound{
		Phone:     chatKey(msg.Chat.ID),
		Text:      text,
		MessageID: fmt.Sprintf("tg:%d:%d", msg.Chat.ID, msg.MessageID),
	}, true
}

func chatKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}
