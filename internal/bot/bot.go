package bot

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"newsbrief/internal/session"
)

const (
	maxBackoffSeconds     = 60
	initialBackoffSeconds = 3
	backoffGrowthFactor   = 2

	updateProcessingTimeout = 3 * time.Minute

	BotUpdateTimeout = 60
)

// Bot is the secondary front-end: send an article URL or paste text,
// get back a headline and summary, regenerate from an inline button.
// Each chat owns one session controller.
type Bot struct {
	api            *tgbotapi.BotAPI
	pipeline       session.Runner
	minWords       int
	maxWords       int
	mu             sync.Mutex
	sessions       map[int64]*session.Controller
	resultKeyboard [][]tgbotapi.InlineKeyboardButton
	log            *slog.Logger
}

func New(
	token string,
	pipeline session.Runner,
	minWords, maxWords int,
	log *slog.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}

	return &Bot{
		api:            api,
		pipeline:       pipeline,
		minWords:       minWords,
		maxWords:       maxWords,
		sessions:       make(map[int64]*session.Controller),
		resultKeyboard: getResultKeyboard(),
		log:            log,
	}, nil
}

func (b *Bot) Start(ctx context.Context) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = BotUpdateTimeout

	backoffSeconds := initialBackoffSeconds

	for {
		select {
		case <-ctx.Done():
			b.log.InfoContext(ctx, "Bot context is done",
				"error", ctx.Err())
			return
		default:
		}

		updates := b.api.GetUpdatesChan(updateConfig)
		updatesClosed := false

		for !updatesClosed {
			select {
			case <-ctx.Done():
				b.log.InfoContext(ctx, "Bot context is done",
					"error", ctx.Err())
				return

			case update, ok := <-updates:
				if !ok {
					updatesClosed = true
					continue
				}
				updateConfig.Offset = update.UpdateID + 1

				b.handleUpdate(ctx, &update)
			}
		}

		if ctx.Err() != nil {
			return
		}

		b.log.WarnContext(ctx, "Update channel is closed, reconnecting...",
			"offset", updateConfig.Offset,
			"backoffSeconds", backoffSeconds)

		time.Sleep(time.Duration(backoffSeconds) * time.Second)

		backoffSeconds = updateBackoffSeconds(backoffSeconds)
	}
}

func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
}

func (b *Bot) handleUpdate(ctx context.Context, update *tgbotapi.Update) {
	updateCtx, cancel := context.WithTimeout(ctx, updateProcessingTimeout)
	defer cancel()

	switch {
	case update.Message != nil:
		if err := b.handleMessage(updateCtx, update.Message); err != nil {
			b.log.ErrorContext(updateCtx, "Failed to handle message",
				"error", err,
				"chatID", update.Message.Chat.ID,
				"messageID", update.Message.MessageID)
		}

	case update.CallbackQuery != nil:
		if err := b.handleCallbackQuery(updateCtx, update.CallbackQuery); err != nil {
			b.log.ErrorContext(updateCtx, "Failed to handle callback query",
				"error", err,
				"data", update.CallbackQuery.Data)
		}
	}
}

// controller returns the chat's session controller, creating it on
// first contact.
func (b *Bot) controller(chatID int64) *session.Controller {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.sessions[chatID]
	if !ok {
		c = session.NewController(b.pipeline)
		b.sessions[chatID] = c
	}

	return c
}

func updateBackoffSeconds(backoffSeconds int) int {
	if backoffSeconds < maxBackoffSeconds {
		backoffSeconds *= backoffGrowthFactor
		if backoffSeconds > maxBackoffSeconds {
			backoffSeconds = maxBackoffSeconds
		}
	}
	return backoffSeconds
}

func getResultKeyboard() [][]tgbotapi.InlineKeyboardButton {
	return [][]tgbotapi.InlineKeyboardButton{
		{
			tgbotapi.NewInlineKeyboardButtonData("🔁 Regenerate", "regenerate"),
			tgbotapi.NewInlineKeyboardButtonData("🏠 Home", "home"),
		},
	}
}
