package bot

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"mvdan.cc/xurls/v2"

	"newsbrief/internal/domain"
	"newsbrief/internal/extract"
	"newsbrief/internal/session"
	"newsbrief/internal/summarize"
)

const welcomeText = `🤖 *Welcome to newsbrief\!*

Send me a news article URL and I'll reply with a headline and a
summary in the article's own language\.

You can also paste the article text itself \(at least 50 words\)\.

– 🔁 Regenerate redoes the last summary
– 🏠 Home \(or /home\) forgets the last request`

const tooShortText = `✖️ That doesn't look like a URL, and it's too short to summarize\.

Send an article URL or at least 50 words of text\.`

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID

	return b.withSpinner(ctx, chatID, func() error {
		text := strings.TrimSpace(message.Text)

		switch {
		case strings.HasPrefix(text, "/start"), strings.HasPrefix(text, "/help"):
			return b.sendMessage(chatID, welcomeText, nil)
		case strings.HasPrefix(text, "/home"):
			b.controller(chatID).Home()
			return b.sendMessage(chatID, "🏠 Cleared\\. Send me a new article\\.", nil)
		default:
			return b.handleArticleRequest(ctx, chatID, text)
		}
	})
}

func (b *Bot) handleArticleRequest(ctx context.Context, chatID int64, text string) error {
	input, ok := parseInput(text, b.minWords, b.maxWords)
	if !ok {
		return b.sendMessage(chatID, tooShortText, nil)
	}

	result, err := b.controller(chatID).Generate(ctx, input)
	if err != nil {
		return b.sendMessage(chatID, errorText(err), nil)
	}

	return b.sendResult(chatID, result)
}

var httpsURLRe = func() *regexp.Regexp {
	re, err := xurls.StrictMatchingScheme("https://")
	if err != nil {
		panic(err)
	}
	return re
}()

// parseInput builds the pipeline input: the first https URL in the
// message wins, otherwise the whole message is treated as pasted text
// when it is long enough.
func parseInput(text string, minWords, maxWords int) (domain.Input, bool) {
	input := domain.Input{
		MinWords: minWords,
		MaxWords: maxWords,
	}

	if url := httpsURLRe.FindString(text); url != "" {
		input.Mode = domain.ModeURL
		input.URL = url

		return input, true
	}

	if len(strings.Fields(text)) < extract.MinWords {
		return domain.Input{}, false
	}

	input.Mode = domain.ModeText
	input.Text = text

	return input, true
}

func (b *Bot) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback.Message == nil || callback.Message.Chat == nil {
		return errors.New("callback without chat")
	}

	chatID := callback.Message.Chat.ID

	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.log.WarnContext(ctx, "Failed to answer callback query",
			"error", err,
			"data", callback.Data)
	}

	switch callback.Data {
	case "regenerate":
		return b.withSpinner(ctx, chatID, func() error {
			result, err := b.controller(chatID).Regenerate(ctx)
			if err != nil {
				return b.sendMessage(chatID, errorText(err), nil)
			}

			return b.sendResult(chatID, result)
		})

	case "home":
		b.controller(chatID).Home()
		return b.sendMessage(chatID, "🏠 Cleared\\. Send me a new article\\.", nil)

	default:
		return fmt.Errorf("unknown callback data %q", callback.Data)
	}
}

func (b *Bot) sendResult(chatID int64, result domain.SummaryResult) error {
	text := fmt.Sprintf("*%s*\n\n%s",
		escapeMarkdownV2(result.Headline),
		escapeMarkdownV2(result.Body))

	return b.sendMessage(chatID, text, b.resultKeyboard)
}

func (b *Bot) sendMessage(
	chatID int64,
	text string,
	keyboard [][]tgbotapi.InlineKeyboardButton,
) error {
	normalizedText := strings.ToValidUTF8(text, "?")

	message := tgbotapi.NewMessage(chatID, normalizedText)

	// See https://core.telegram.org/bots/api#markdownv2-style.
	message.ParseMode = tgbotapi.ModeMarkdownV2
	message.DisableWebPagePreview = true

	if keyboard != nil {
		message.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(keyboard...)
	}

	_, err := b.api.Send(message)
	return err
}

func errorText(err error) string {
	switch {
	case errors.Is(err, summarize.ErrNotConfigured):
		return "⚙️ Summarization is not configured\\. Ask the operator to set an API key\\."
	case errors.Is(err, extract.ErrFetch):
		return "🌐 Could not fetch that page\\. Check the URL and try again\\."
	case errors.Is(err, extract.ErrInsufficientContent):
		return "✖️ Too little article text found there\\. Check the URL\\."
	case errors.Is(err, summarize.ErrEmptyResponse):
		return "🤐 The model returned nothing\\. Try regenerating\\."
	case errors.Is(err, session.ErrBusy):
		return "⏳ Still working on the previous request\\."
	case errors.Is(err, session.ErrNoResult):
		return "✖️ Nothing to regenerate yet\\. Send me an article first\\."
	default:
		return "❌ Summarization failed\\. Try again later\\."
	}
}
