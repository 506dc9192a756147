package common

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sukalov/lyricbot/internal/bot"
	"github.com/sukalov/lyricbot/internal/state"
)

type CommonHandlers struct {
	sessions *state.StateManager
}

func GetCommandHandlers(sessions *state.StateManager) map[string]bot.Handler {
	handlers := &CommonHandlers{sessions: sessions}
	return map[string]bot.Handler{
		"status": handlers.statusHandler,
	}
}

// GetCallbackHandlers returns common callback handlers
func GetCallbackHandlers() map[string]bot.Handler {
	return map[string]bot.Handler{}
}

func (h *CommonHandlers) statusHandler(_ context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := bot.ChatID(update)
	s := h.sessions.Get(chatID)
	return b.SendMessage(chatID, DescribeSession(s)+fmt.Sprintf("\n\nactive sessions: %d", h.sessions.Count()))
}

// DescribeSession summarises the selections of a session.
func DescribeSession(s state.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "theme: %s\n", orDash(string(s.Theme)))

	rolls := make([]string, len(s.Rolls))
	for i, r := range s.Rolls {
		rolls[i] = fmt.Sprintf("%d→%s", r.Face, r.Keyword)
	}
	fmt.Fprintf(&b, "dice: %s (%d left)\n", orDash(strings.Join(rolls, ", ")), s.RollsLeft())
	fmt.Fprintf(&b, "custom keywords: %s\n", orDash(strings.Join(s.Custom, ", ")))
	fmt.Fprintf(&b, "style: %s\n", orDash(string(s.Style)))
	fmt.Fprintf(&b, "rhyme scheme: %s", orDash(string(s.Scheme)))
	if s.LastLyric != nil {
		fmt.Fprintf(&b, "\nlast lyric: seed %d", s.LastLyric.Seed)
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
