package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gostudio/logger"
)

// TelegramNotifier posts messages through the Telegram Bot API.
type TelegramNotifier struct {
	botToken string
	apiBase  string
	client   *http.Client
	log      *logger.Logger
}

func NewTelegramNotifier(botToken string) *TelegramNotifier {
	return &TelegramNotifier{
		botToken: botToken,
		apiBase:  "https://api.telegram.org",
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: logger.L(),
	}
}

func (t *TelegramNotifier) Send(ctx context.Context, channelID, message string) error {
	if t.botToken == "" {
		return fmt.Errorf("telegram bot token is not configured")
	}

	apiURL := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.botToken)
	form := url.Values{
		"chat_id": {channelID},
		"text":    {message},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}

	return nil
}

// ConsoleNotifier writes messages to the log instead of a chat
// platform. Useful for running without a bot token.
type ConsoleNotifier struct {
	log *logger.Logger
}

func NewConsoleNotifier() *ConsoleNotifier {
	return &ConsoleNotifier{log: logger.L()}
}

func (c *ConsoleNotifier) Send(_ context.Context, channelID, message string) error {
	c.log.Info("Game notification", map[string]interface{}{
		"channel": channelID,
		"message": message,
	})
	return nil
}
