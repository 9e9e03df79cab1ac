package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BridgeSender posts {"numero","mensagem"} to the WhatsApp bridge /send endpoint.
type BridgeSender struct {
	URL    string
	Client *http.Client
}

func (s *BridgeSender) Send(ctx context.Context, to, text string) error {
	body, err := json.Marshal(map[string]string{"numero": to, "mensagem": text})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build bridge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post to bridge: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("bridge returned %s", resp.Status)
	}
	return nil
}

// TelegramAPI is the part of tgbotapi.BotAPI used for sending.
type TelegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSender delivers to Telegram chats. Recipients are chat ids in decimal.
type TelegramSender struct {
	API TelegramAPI
}

func (s *TelegramSender) Send(ctx context.Context, to, text string) error {
	chatID, err := strconv.ParseInt(to, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid telegram chat id %q: %w", to, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.API.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
