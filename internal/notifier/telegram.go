package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/pauljones0/listing-watch-bot/internal/util"
)

const (
	// Telegram allows roughly 20 messages per minute to the same group.
	sendInterval = 3 * time.Second
	sendBurst    = 5

	maxCaptionLength = 1024
	maxTextLength    = 4096
)

// NotificationError reports a send the sink did not accept.
type NotificationError struct {
	Method string
	Err    error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("telegram %s failed: %v", e.Method, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }

// telegramAPI is the subset of *tgbotapi.BotAPI the client needs.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Client struct {
	api         telegramAPI
	chatID      int64
	channel     string
	rateLimiter *rate.Limiter
}

// New connects to the Bot API. destination is a numeric chat ID or a
// channel username such as "@listings".
func New(token, destination string) (*Client, error) {
	if token == "" {
		return nil, errors.New("telegram token is empty")
	}
	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, &http.Client{Timeout: 10 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram client: %w", err)
	}
	return newClient(api, destination, rate.NewLimiter(rate.Every(sendInterval), sendBurst))
}

func newClient(api telegramAPI, destination string, limiter *rate.Limiter) (*Client, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return nil, errors.New("telegram destination is empty")
	}
	c := &Client{api: api, rateLimiter: limiter}
	if id, err := strconv.ParseInt(destination, 10, 64); err == nil {
		c.chatID = id
	} else {
		c.channel = destination
	}
	return c, nil
}

// SendText posts a plain text message.
func (c *Client) SendText(ctx context.Context, text string) error {
	var msg tgbotapi.MessageConfig
	if c.channel != "" {
		msg = tgbotapi.NewMessageToChannel(c.channel, util.Truncate(text, maxTextLength))
	} else {
		msg = tgbotapi.NewMessage(c.chatID, util.Truncate(text, maxTextLength))
	}
	msg.DisableWebPagePreview = true
	return c.send(ctx, "sendMessage", msg)
}

// SendPhoto posts an image by URL with a caption. Telegram downloads the
// image itself.
func (c *Client) SendPhoto(ctx context.Context, photoURL, caption string) error {
	var msg tgbotapi.PhotoConfig
	if c.channel != "" {
		msg = tgbotapi.NewPhotoToChannel(c.channel, tgbotapi.FileURL(photoURL))
	} else {
		msg = tgbotapi.NewPhoto(c.chatID, tgbotapi.FileURL(photoURL))
	}
	msg.Caption = util.Truncate(caption, maxCaptionLength)
	return c.send(ctx, "sendPhoto", msg)
}

func (c *Client) send(ctx context.Context, method string, msg tgbotapi.Chattable) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return &NotificationError{Method: method, Err: err}
	}
	if _, err := c.api.Send(msg); err != nil {
		return &NotificationError{Method: method, Err: err}
	}
	return nil
}
