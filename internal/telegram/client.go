// Package telegram is a thin client for the Telegram Bot API: exactly
// the two calls the engine needs, sendMessage and getUpdates.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dharani043/result-bot/internal/monitor"
)

const defaultBaseURL = "https://api.telegram.org"

// Config controls the API client.
type Config struct {
	// Token is the bot token issued by BotFather.
	Token string
	// BaseURL overrides the API host, mainly for tests.
	BaseURL string
	// SendTimeout bounds one sendMessage call. Defaults to 10s.
	SendTimeout time.Duration
	// PollTimeout bounds one getUpdates call. Defaults to 15s.
	PollTimeout time.Duration
}

// Client talks to the Bot API over plain HTTP. It implements both
// monitor.Notifier and monitor.CommandSource.
type Client struct {
	base       string
	sendClient *http.Client
	pollClient *http.Client
	logger     *zap.Logger
}

// New creates a Client.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram token is required")
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	sendTimeout := cfg.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}
	pollTimeout := cfg.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		base:       strings.TrimSuffix(base, "/") + "/bot" + cfg.Token,
		sendClient: &http.Client{Timeout: sendTimeout},
		pollClient: &http.Client{Timeout: pollTimeout},
		logger:     logger,
	}, nil
}

// Send delivers one text message to a chat. Best-effort: the error is
// returned for observability but callers treat delivery as
// fire-and-forget.
func (c *Client) Send(ctx context.Context, chatID int64, text string) error {
	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(chatID, 10))
	form.Set("text", text)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.base+"/sendMessage",
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.sendClient.Do(req)
	if err != nil {
		c.logger.Warn("send message failed", zap.Int64("chat_id", chatID), zap.Error(err))
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("send message rejected",
			zap.Int64("chat_id", chatID),
			zap.Int("status", resp.StatusCode),
		)
		return fmt.Errorf("send message: unexpected status %d", resp.StatusCode)
	}
	return nil
}

type update struct {
	UpdateID int64    `json:"update_id"`
	Message  *message `json:"message"`
}

type message struct {
	Chat chat   `json:"chat"`
	Text string `json:"text"`
}

type chat struct {
	ID int64 `json:"id"`
}

type updatesResponse struct {
	OK          bool     `json:"ok"`
	Description string   `json:"description"`
	Result      []update `json:"result"`
}

// Commands fetches updates with sequence id greater than after and maps
// them to engine commands, ascending. Updates without a text message
// are returned with empty text so the cursor still advances past them.
func (c *Client) Commands(ctx context.Context, after int64) ([]monitor.Command, error) {
	endpoint := fmt.Sprintf("%s/getUpdates?offset=%d", c.base, after+1)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build updates request: %w", err)
	}

	resp, err := c.pollClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch updates: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch updates: unexpected status %d", resp.StatusCode)
	}

	var body updatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	if !body.OK {
		return nil, fmt.Errorf("fetch updates: api error: %s", body.Description)
	}

	commands := make([]monitor.Command, 0, len(body.Result))
	for _, u := range body.Result {
		cmd := monitor.Command{Seq: u.UpdateID}
		if u.Message != nil {
			cmd.ChatID = u.Message.Chat.ID
			cmd.Text = strings.TrimSpace(u.Message.Text)
		}
		commands = append(commands, cmd)
	}
	return commands, nil
}
