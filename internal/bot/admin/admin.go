package admin

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/sukalov/lyricbot/internal/bot"
	"github.com/sukalov/lyricbot/internal/bot/common"
	"github.com/sukalov/lyricbot/internal/logger"
	"github.com/sukalov/lyricbot/internal/lyrics"
	"github.com/sukalov/lyricbot/internal/rhyme"
	"github.com/sukalov/lyricbot/internal/state"
)

// RhymeCache is the maintenance side of a rhyme cache.
type RhymeCache interface {
	Flush(ctx context.Context) (int64, error)
	Size(ctx context.Context) (int, error)
}

type AdminHandlers struct {
	sessions        *state.StateManager
	bank            *lyrics.Bank
	lookup          rhyme.Lookup
	cache           RhymeCache
	admins          map[string]bool
	clock           func(time.Time) string
	clearInProgress atomic.Bool

	mu             sync.Mutex
	awaitingRhymes map[int64]bool
}

type Option func(*AdminHandlers)

// WithRhymeCache enables /flush_rhymes.
func WithRhymeCache(c RhymeCache) Option {
	return func(h *AdminHandlers) { h.cache = c }
}

// WithClock sets how session times are shown.
func WithClock(clock func(time.Time) string) Option {
	return func(h *AdminHandlers) { h.clock = clock }
}

func NewAdminHandlers(sessions *state.StateManager, bank *lyrics.Bank, lookup rhyme.Lookup, adminUsernames []string, opts ...Option) *AdminHandlers {
	admins := make(map[string]bool)
	for _, username := range adminUsernames {
		admins[strings.ToLower(strings.TrimPrefix(username, "@"))] = true
	}

	h := &AdminHandlers{
		sessions:       sessions,
		bank:           bank,
		lookup:         lookup,
		admins:         admins,
		clock:          func(t time.Time) string { return t.Format("15:04:05") },
		awaitingRhymes: make(map[int64]bool),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *AdminHandlers) isAdmin(update tgbotapi.Update) bool {
	return h.admins[strings.ToLower(bot.Username(update))]
}

// adminOnly rejects updates from anyone not on the admin list.
func (h *AdminHandlers) adminOnly(next bot.Handler) bot.Handler {
	return func(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
		if !h.isAdmin(update) {
			return b.SendMessage(bot.ChatID(update), "you are not an admin")
		}
		return next(ctx, b, update)
	}
}

func (h *AdminHandlers) sessionsHandler(_ context.Context, b *bot.Bot, update tgbotapi.Update) error {
	sessions := h.sessions.Snapshot()
	if len(sessions) == 0 {
		return b.SendMessage(bot.ChatID(update), "no active sessions")
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "sessions: %d\n", len(sessions))
	for idx, s := range sessions {
		username := s.Username
		if username == "" {
			username = "unknown"
		}
		fmt.Fprintf(&msg, "\n%d. @%s (chat %d)\n   %s · %d/%d dice · %s · %s\n   custom: %d · lyric: %t · active: %s\n",
			idx+1,
			username,
			s.ChatID,
			dash(string(s.Theme)),
			len(s.Rolls), len(s.Rolls)+s.RollsLeft(),
			dash(string(s.Style)),
			dash(string(s.Scheme)),
			len(s.Custom),
			s.LastLyric != nil,
			h.clock(s.UpdatedAt),
		)
	}
	return b.SendMessage(bot.ChatID(update), msg.String())
}

func (h *AdminHandlers) clearSessionsHandler(_ context.Context, b *bot.Bot, update tgbotapi.Update) error {
	h.clearInProgress.Store(true)
	return b.SendMessageWithButtons(bot.ChatID(update),
		fmt.Sprintf("all %d sessions will be dropped. sure?", h.sessions.Count()),
		tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("drop them", "confirm_clear_sessions"),
				tgbotapi.NewInlineKeyboardButtonData("cancel", "abort_clear_sessions"),
			),
		),
	)
}

func (h *AdminHandlers) confirmHandler(_ context.Context, b *bot.Bot, update tgbotapi.Update) error {
	if h.clearInProgress.CompareAndSwap(true, false) {
		count := h.sessions.Count()
		h.sessions.Clear()
		logger.Info("sessions cleared", zap.Int("count", count), zap.String("admin", bot.Username(update)))
		return b.SendMessage(bot.ChatID(update), "sessions cleared")
	}
	return b.SendMessage(bot.ChatID(update), "that button no longer works")
}

func (h *AdminHandlers) abortHandler(_ context.Context, b *bot.Bot, update tgbotapi.Update) error {
	if h.clearInProgress.CompareAndSwap(true, false) {
		return b.SendMessage(bot.ChatID(update), "ok, cancelled")
	}
	return b.SendMessage(bot.ChatID(update), "that button no longer works")
}

// SetupHandlers registers the admin commands on a bot.
func SetupHandlers(adminBot *bot.Bot, handlers *AdminHandlers) {
	commandHandlers := common.GetCommandHandlers(handlers.sessions)
	commandHandlers["sessions"] = handlers.adminOnly(handlers.sessionsHandler)
	commandHandlers["clear_sessions"] = handlers.adminOnly(handlers.clearSessionsHandler)
	commandHandlers["bank"] = handlers.adminOnly(handlers.bankHandler)
	commandHandlers["rhymes"] = handlers.adminOnly(handlers.rhymesHandler)
	commandHandlers["flush_rhymes"] = handlers.adminOnly(handlers.flushRhymesHandler)

	callbackHandlers := common.GetCallbackHandlers()
	callbackHandlers["abort_clear_sessions"] = handlers.adminOnly(handlers.abortHandler)
	callbackHandlers["confirm_clear_sessions"] = handlers.adminOnly(handlers.confirmHandler)

	adminBot.Register(commandHandlers, []bot.Handler{handlers.adminOnly(handlers.messageHandler)}, callbackHandlers)
}

func dash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
