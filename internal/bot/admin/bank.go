package admin

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/sukalov/lyricbot/internal/bot"
	"github.com/sukalov/lyricbot/internal/logger"
	"github.com/sukalov/lyricbot/internal/lyrics"
)

const maxRhymesShown = 30

func (h *AdminHandlers) bankHandler(_ context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := bot.ChatID(update)
	themes := lyrics.Themes
	if arg := update.Message.CommandArguments(); arg != "" {
		theme, err := lyrics.ParseTheme(arg)
		if err != nil {
			return b.SendMessage(chatID, fmt.Sprintf("no theme called %q", arg))
		}
		themes = []lyrics.Theme{theme}
	}

	var msg strings.Builder
	msg.WriteString("keywords by die face:\n")
	for _, theme := range themes {
		fmt.Fprintf(&msg, "\n%s:", theme)
		for i, word := range h.bank.Keywords[theme] {
			fmt.Fprintf(&msg, " %d=%s", i+1, word)
		}
	}

	msg.WriteString("\n\ntemplates:\n")
	for _, style := range lyrics.Styles {
		fmt.Fprintf(&msg, "\n%s:", style)
		for _, section := range lyrics.Sections {
			fmt.Fprintf(&msg, " %s %d", section, len(h.bank.Templates[style][section]))
		}
	}
	return b.SendMessage(chatID, msg.String())
}

// rhymesHandler looks a word up right away, or waits for the next message.
func (h *AdminHandlers) rhymesHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := bot.ChatID(update)
	if word := update.Message.CommandArguments(); word != "" {
		return h.sendRhymes(ctx, b, chatID, word)
	}

	h.mu.Lock()
	h.awaitingRhymes[chatID] = true
	h.mu.Unlock()
	return b.SendMessage(chatID, "send me a word to look up")
}

func (h *AdminHandlers) messageHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	if update.Message == nil {
		return nil
	}
	chatID := bot.ChatID(update)

	h.mu.Lock()
	awaiting := h.awaitingRhymes[chatID]
	delete(h.awaitingRhymes, chatID)
	h.mu.Unlock()

	if !awaiting || update.Message.IsCommand() {
		return b.SendMessage(chatID, "not sure what you mean. commands: /sessions /clear_sessions /bank /rhymes /flush_rhymes /status")
	}
	return h.sendRhymes(ctx, b, chatID, update.Message.Text)
}

func (h *AdminHandlers) sendRhymes(ctx context.Context, b *bot.Bot, chatID int64, word string) error {
	word = strings.ToLower(strings.TrimSpace(word))
	if h.lookup == nil {
		return b.SendMessage(chatID, "no rhyme lookup configured")
	}

	rhymes, err := h.lookup.Rhymes(ctx, word)
	if err != nil {
		return b.SendMessage(chatID, fmt.Sprintf("lookup failed: %v", err))
	}
	if len(rhymes) == 0 {
		return b.SendMessage(chatID, fmt.Sprintf("nothing rhymes with %q", word))
	}

	message := fmt.Sprintf("rhymes for %q:\n%s", word, strings.Join(rhymes[:min(len(rhymes), maxRhymesShown)], ", "))
	if len(rhymes) > maxRhymesShown {
		message += fmt.Sprintf("\n(first %d of %d)", maxRhymesShown, len(rhymes))
	}
	return b.SendMessage(chatID, message)
}

func (h *AdminHandlers) flushRhymesHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := bot.ChatID(update)
	if h.cache == nil {
		return b.SendMessage(chatID, "no rhyme cache configured")
	}

	size, err := h.cache.Size(ctx)
	if err != nil {
		return logger.LogWithErr("failed to read rhyme cache size", err)
	}
	deleted, err := h.cache.Flush(ctx)
	if err != nil {
		return logger.LogWithErr("failed to flush rhyme cache", err)
	}

	logger.Info("rhyme cache flushed", zap.Int64("deleted", deleted), zap.Int("size", size))
	return b.SendMessage(chatID, fmt.Sprintf("rhyme cache flushed: %d of %d words removed", deleted, size))
}
