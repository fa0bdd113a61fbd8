// Command function serves the bot as a serverless webhook. The platform
// invokes Handler with the raw update in the request body.
package main

import (
	"context"
	"net/http"
	"sync"

	"github.com/victordebonilla/Guardian-domestico/internal/bot"
	"github.com/victordebonilla/Guardian-domestico/internal/config"
	"github.com/victordebonilla/Guardian-domestico/internal/logger"
	"github.com/victordebonilla/Guardian-domestico/internal/repository"
	"github.com/victordebonilla/Guardian-domestico/internal/service"
)

// Request is the incoming API Gateway request.
type Request struct {
	Body string `json:"body"`
}

// Response is returned to the API Gateway.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Body       string            `json:"body"`
	Headers    map[string]string `json:"headers,omitempty"`
}

// The bot and its sessions live as long as the function instance stays warm.
var (
	baseLog = logger.New("info", "json")
	lazy    = &lazyBot{build: build}
)

// lazyBot builds the bot on first use. A failed build is not remembered, so
// the next invocation tries again once config or the backend recovers.
type lazyBot struct {
	mu    sync.Mutex
	bot   *bot.Bot
	build func() (*bot.Bot, error)
}

func (l *lazyBot) get() (*bot.Bot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.bot != nil {
		return l.bot, nil
	}
	b, err := l.build()
	if err != nil {
		return nil, err
	}
	l.bot = b
	return b, nil
}

func build() (*bot.Bot, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := baseLog.Level(logger.ParseLevel(cfg.LogLevel))

	store, err := repository.Open(cfg, logger.Component(log, "store"))
	if err != nil {
		return nil, err
	}
	tracker := service.NewTracker(store, logger.Component(log, "tracker"))
	b, err := bot.NewBot(cfg.TelegramToken, tracker, logger.Component(log, "bot"))
	if err != nil {
		store.Close()
		return nil, err
	}
	return b, nil
}

func Handler(ctx context.Context, request Request) (*Response, error) {
	b, err := lazy.get()
	ctx = logger.WithContext(ctx, baseLog)
	if err != nil {
		return errorResponse(ctx, err), nil
	}
	if err := b.HandleWebhook(ctx, []byte(request.Body)); err != nil {
		return errorResponse(ctx, err), nil
	}
	return &Response{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}, nil
}

func errorResponse(ctx context.Context, err error) *Response {
	log := logger.FromContext(ctx)
	log.Error().Err(err).Msg("webhook failed")
	return &Response{
		StatusCode: http.StatusInternalServerError,
		Body:       err.Error(),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

func main() {}
