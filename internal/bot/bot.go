// Package bot is the Telegram front end of the household tracker.
package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/victordebonilla/Guardian-domestico/internal/charts"
	"github.com/victordebonilla/Guardian-domestico/internal/logger"
	"github.com/victordebonilla/Guardian-domestico/internal/model"
	"github.com/victordebonilla/Guardian-domestico/internal/service"
)

// telegram is the part of the Bot API the handlers use.
type telegram interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Bot struct {
	api     telegram
	tracker *service.Tracker
	charts  *charts.Generator
	http    *http.Client
	log     zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*service.Session
	states   map[int64]*model.UserState
	// users serializes the updates of one user; sessions are not safe for
	// concurrent mutation.
	users map[int64]*sync.Mutex
}

func NewBot(token string, tracker *service.Tracker, log zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}
	log.Info().Str("username", api.Self.UserName).Msg("authorized on telegram")
	return newBot(api, tracker, log), nil
}

func newBot(api telegram, tracker *service.Tracker, log zerolog.Logger) *Bot {
	return &Bot{
		api:      api,
		tracker:  tracker,
		charts:   charts.NewGenerator(),
		http:     &http.Client{Timeout: 30 * time.Second},
		log:      log,
		sessions: make(map[string]*service.Session),
		states:   make(map[int64]*model.UserState),
		users:    make(map[int64]*sync.Mutex),
	}
}

// Start polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.log.Info().Msg("polling for updates")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := b.handleUpdate(ctx, update); err != nil {
				b.log.Error().Err(err).Int("update_id", update.UpdateID).Msg("failed to handle update")
			}
		}
	}
}

// HandleWebhook processes one update delivered by a webhook.
func (b *Bot) HandleWebhook(ctx context.Context, body []byte) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return fmt.Errorf("failed to decode update: %w", err)
	}
	return b.handleUpdate(ctx, update)
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	ctx = logger.WithContext(ctx, b.log.With().Int("update_id", update.UpdateID).Logger())
	if userID, ok := sender(update); ok {
		lock := b.userLock(userID)
		lock.Lock()
		defer lock.Unlock()
	}
	switch {
	case update.CallbackQuery != nil:
		return b.handleCallback(ctx, update.CallbackQuery)
	case update.Message == nil || update.Message.From == nil:
		return nil
	case update.Message.IsCommand():
		return b.handleCommand(ctx, update.Message)
	case update.Message.Document != nil:
		return b.handleDocument(ctx, update.Message)
	default:
		return b.handleMessage(ctx, update.Message)
	}
}

func sender(update tgbotapi.Update) (int64, bool) {
	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		return update.CallbackQuery.From.ID, true
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID, true
	}
	return 0, false
}

func (b *Bot) userLock(userID int64) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()
	lock, ok := b.users[userID]
	if !ok {
		lock = &sync.Mutex{}
		b.users[userID] = lock
	}
	return lock
}

func ownerID(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// session returns the open session of the user, opening one on first use.
func (b *Bot) session(ctx context.Context, userID int64) (*service.Session, error) {
	owner := ownerID(userID)

	b.mu.Lock()
	sess, ok := b.sessions[owner]
	b.mu.Unlock()
	if ok {
		return sess, nil
	}

	sess, err := b.tracker.Open(ctx, owner)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.sessions[owner] = sess
	b.mu.Unlock()
	return sess, nil
}

// closeSession forgets the user's session and any half-built entry.
func (b *Bot) closeSession(userID int64) {
	b.mu.Lock()
	delete(b.sessions, ownerID(userID))
	delete(b.states, userID)
	b.mu.Unlock()
}

func (b *Bot) state(userID int64) (*model.UserState, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.states[userID]
	return st, ok
}

func (b *Bot) setState(st *model.UserState) {
	st.UpdatedAt = time.Now()
	b.mu.Lock()
	b.states[st.UserID] = st
	b.mu.Unlock()
}

func (b *Bot) clearState(userID int64) {
	b.mu.Lock()
	delete(b.states, userID)
	b.mu.Unlock()
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.log.Error().Err(err).Msg("failed to send message")
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	b.sendText(chatID, "❌ "+text)
}

// sendFailure logs err and shows the user a readable reason.
func (b *Bot) sendFailure(chatID int64, action string, err error) {
	b.log.Warn().Err(err).Int64("chat_id", chatID).Str("action", action).Msg("request refused")
	b.sendErrorMessage(chatID, describeError(err))
}

func (b *Bot) sendPhoto(chatID int64, name string, img []byte, err error) {
	if err != nil {
		b.log.Error().Err(err).Str("chart", name).Msg("failed to draw chart")
		return
	}
	if img == nil {
		return
	}
	b.send(tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: name + ".png", Bytes: img}))
}
