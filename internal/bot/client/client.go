package client

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/sukalov/lyricbot/internal/bot"
	"github.com/sukalov/lyricbot/internal/bot/common"
	"github.com/sukalov/lyricbot/internal/export"
	"github.com/sukalov/lyricbot/internal/logger"
	"github.com/sukalov/lyricbot/internal/lyrics"
	"github.com/sukalov/lyricbot/internal/rhyme"
	"github.com/sukalov/lyricbot/internal/state"
)

const (
	callbackTheme    = "theme"
	callbackStyle    = "style"
	callbackScheme   = "scheme"
	callbackRoll     = "roll"
	callbackGenerate = "generate"
	callbackExport   = "export"
)

// sharedRand draws from the goroutine-safe top-level source.
type sharedRand struct{}

func (sharedRand) IntN(n int) int { return rand.IntN(n) }

type ClientHandlers struct {
	sessions         *state.StateManager
	bank             *lyrics.Bank
	generator        *lyrics.Generator
	dice             lyrics.Rand
	maxKeywordLength int
}

type Option func(*ClientHandlers)

// WithDice replaces the die source, mostly for tests.
func WithDice(r lyrics.Rand) Option {
	return func(h *ClientHandlers) { h.dice = r }
}

func WithMaxKeywordLength(n int) Option {
	return func(h *ClientHandlers) { h.maxKeywordLength = n }
}

func NewClientHandlers(sessions *state.StateManager, bank *lyrics.Bank, generator *lyrics.Generator, opts ...Option) *ClientHandlers {
	h := &ClientHandlers{
		sessions:  sessions,
		bank:      bank,
		generator: generator,
		dice:      sharedRand{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *ClientHandlers) startHandler(_ context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := bot.ChatID(update)
	username := bot.Username(update)
	if _, err := h.sessions.Update(chatID, func(s *state.Session) error {
		s.Username = username
		return nil
	}); err != nil {
		return err
	}

	return b.SendMessageWithButtons(chatID,
		"hi! let's write a song snippet together.\n\nfirst, pick a theme:",
		themeKeyboard())
}

func (h *ClientHandlers) helpHandler(_ context.Context, b *bot.Bot, update tgbotapi.Update) error {
	return b.SendMessage(bot.ChatID(update), helpText)
}

func (h *ClientHandlers) themeHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	if arg := update.Message.CommandArguments(); arg != "" {
		return h.selectTheme(ctx, b, update, arg)
	}
	return b.SendMessageWithButtons(bot.ChatID(update), "pick a theme:", themeKeyboard())
}

func (h *ClientHandlers) themeCallback(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	_, value := bot.SplitCallback(update.CallbackQuery.Data)
	return h.selectTheme(ctx, b, update, value)
}

func (h *ClientHandlers) selectTheme(_ context.Context, b *bot.Bot, update tgbotapi.Update, raw string) error {
	chatID := bot.ChatID(update)
	theme, err := lyrics.ParseTheme(raw)
	if err != nil {
		return b.SendMessageWithButtons(chatID, fmt.Sprintf("no theme called %q. pick one:", raw), themeKeyboard())
	}

	s, err := h.sessions.Update(chatID, func(s *state.Session) error {
		s.SetTheme(theme)
		return nil
	})
	if err != nil {
		return err
	}
	return b.SendMessageWithButtons(chatID,
		fmt.Sprintf("theme: %s. now roll the dice, %d roll(s) to go", theme, s.RollsLeft()),
		rollKeyboard())
}

func (h *ClientHandlers) rollHandler(_ context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := bot.ChatID(update)

	var roll state.Roll
	s, err := h.sessions.Update(chatID, func(s *state.Session) error {
		if s.Theme == "" {
			return state.ErrNoTheme
		}
		face := lyrics.RollDie(h.dice)
		keyword, err := h.bank.Keyword(s.Theme, face)
		if err != nil {
			return err
		}
		roll = state.Roll{Face: face, Keyword: keyword}
		return s.AddRoll(face, keyword)
	})
	switch {
	case errors.Is(err, state.ErrNoTheme):
		return b.SendMessageWithButtons(chatID, "pick a theme before rolling:", themeKeyboard())
	case errors.Is(err, state.ErrRollLimit):
		return b.SendMessage(chatID, "all dice are rolled. change the theme to roll again, or add your own words with /keyword")
	case err != nil:
		return err
	}

	text := fmt.Sprintf("🎲 %d → %s", roll.Face, roll.Keyword)
	if left := s.RollsLeft(); left > 0 {
		return b.SendMessageWithButtons(chatID, fmt.Sprintf("%s\n\n%d roll(s) left", text, left), rollKeyboard())
	}

	text += fmt.Sprintf("\n\nyour keywords: %s", strings.Join(s.Keywords(), ", "))
	if s.Style == "" {
		return b.SendMessageWithButtons(chatID, text+"\n\npick a music style:", styleKeyboard())
	}
	return b.SendMessageWithButtons(chatID, text, generateKeyboard())
}

func (h *ClientHandlers) keywordHandler(_ context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := bot.ChatID(update)
	arg := update.Message.CommandArguments()
	if arg == "" {
		if _, err := h.sessions.Update(chatID, func(s *state.Session) error {
			s.Stage = state.StageAwaitingKeyword
			return nil
		}); err != nil {
			return err
		}
		return b.SendMessage(chatID, "send me a word to use as a keyword")
	}
	return h.addKeyword(b, chatID, arg)
}

func (h *ClientHandlers) addKeyword(b *bot.Bot, chatID int64, raw string) error {
	// A rejected word still ends the keyword prompt.
	if _, err := h.sessions.Update(chatID, func(s *state.Session) error {
		s.Stage = state.StageIdle
		return nil
	}); err != nil {
		return err
	}

	word, err := lyrics.NormalizeKeyword(raw, h.maxKeywordLength)
	if err == nil {
		_, err = h.sessions.Update(chatID, func(s *state.Session) error {
			return s.AddCustomKeyword(word)
		})
	}

	switch {
	case errors.Is(err, lyrics.ErrEmptyKeyword):
		return b.SendMessage(chatID, "that keyword is empty")
	case errors.Is(err, lyrics.ErrKeywordTooLong):
		return b.SendMessage(chatID, "that keyword is too long, try a shorter word")
	case errors.Is(err, state.ErrDuplicateKeyword):
		return b.SendMessage(chatID, fmt.Sprintf("%q is already on your list", word))
	case errors.Is(err, state.ErrTooManyKeywords):
		return b.SendMessage(chatID, "you can't add more keywords. remove one with /unkeyword word")
	case err != nil:
		return err
	}

	s := h.sessions.Get(chatID)
	return b.SendMessage(chatID, fmt.Sprintf("added %q. your keywords: %s", word, strings.Join(s.Keywords(), ", ")))
}

func (h *ClientHandlers) unkeywordHandler(_ context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := bot.ChatID(update)
	word := strings.ToLower(strings.TrimSpace(update.Message.CommandArguments()))
	if word == "" {
		return b.SendMessage(chatID, "which one? /unkeyword word")
	}

	_, err := h.sessions.Update(chatID, func(s *state.Session) error {
		return s.RemoveCustomKeyword(word)
	})
	if errors.Is(err, state.ErrUnknownKeyword) {
		return b.SendMessage(chatID, fmt.Sprintf("%q is not one of your custom keywords", word))
	}
	if err != nil {
		return err
	}
	return b.SendMessage(chatID, fmt.Sprintf("removed %q", word))
}

func (h *ClientHandlers) styleHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	if arg := update.Message.CommandArguments(); arg != "" {
		return h.selectStyle(ctx, b, update, arg)
	}
	return b.SendMessageWithButtons(bot.ChatID(update), "pick a music style:", styleKeyboard())
}

func (h *ClientHandlers) styleCallback(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	_, value := bot.SplitCallback(update.CallbackQuery.Data)
	return h.selectStyle(ctx, b, update, value)
}

func (h *ClientHandlers) selectStyle(_ context.Context, b *bot.Bot, update tgbotapi.Update, raw string) error {
	chatID := bot.ChatID(update)
	style, err := lyrics.ParseStyle(raw)
	if err != nil {
		return b.SendMessageWithButtons(chatID, fmt.Sprintf("no style called %q. pick one:", raw), styleKeyboard())
	}

	s, err := h.sessions.Update(chatID, func(s *state.Session) error {
		s.SetStyle(style)
		return nil
	})
	if err != nil {
		return err
	}
	if s.Scheme == "" {
		return b.SendMessageWithButtons(chatID, fmt.Sprintf("style: %s\n\n%s", style, schemeChoices()), schemeKeyboard())
	}
	return b.SendMessageWithButtons(chatID, fmt.Sprintf("style: %s", style), generateKeyboard())
}

func (h *ClientHandlers) schemeHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	if arg := update.Message.CommandArguments(); arg != "" {
		return h.selectScheme(ctx, b, update, arg)
	}
	return b.SendMessageWithButtons(bot.ChatID(update), schemeChoices(), schemeKeyboard())
}

func (h *ClientHandlers) schemeCallback(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	_, value := bot.SplitCallback(update.CallbackQuery.Data)
	return h.selectScheme(ctx, b, update, value)
}

func (h *ClientHandlers) selectScheme(_ context.Context, b *bot.Bot, update tgbotapi.Update, raw string) error {
	chatID := bot.ChatID(update)
	scheme, err := rhyme.ParseScheme(raw)
	if err != nil {
		return b.SendMessageWithButtons(chatID, fmt.Sprintf("no rhyme scheme called %q.\n\n%s", raw, schemeChoices()), schemeKeyboard())
	}

	s, err := h.sessions.Update(chatID, func(s *state.Session) error {
		s.SetScheme(scheme)
		return nil
	})
	if err != nil {
		return err
	}

	text := fmt.Sprintf("rhyme scheme: %s", scheme.Description())
	var missing *state.MissingSelectionError
	if err := s.Ready(); errors.As(err, &missing) {
		return b.SendMessage(chatID, text+"\n\n"+MissingSelectionText(missing, s))
	}
	return b.SendMessageWithButtons(chatID, text+"\n\nall set!", generateKeyboard())
}

func (h *ClientHandlers) generateHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	var seed uint64
	if update.Message != nil {
		if arg := update.Message.CommandArguments(); arg != "" {
			n, err := strconv.ParseUint(arg, 10, 64)
			if err != nil {
				return b.SendMessage(bot.ChatID(update), "the seed must be a positive number, e.g. /generate 42")
			}
			seed = n
		}
	}
	return h.generate(ctx, b, bot.ChatID(update), seed)
}

func (h *ClientHandlers) regenerateHandler(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	return h.generate(ctx, b, bot.ChatID(update), 0)
}

func (h *ClientHandlers) generateCallback(ctx context.Context, b *bot.Bot, update tgbotapi.Update) error {
	return h.generate(ctx, b, bot.ChatID(update), 0)
}

func (h *ClientHandlers) generate(ctx context.Context, b *bot.Bot, chatID int64, seed uint64) error {
	s := h.sessions.Get(chatID)
	var missing *state.MissingSelectionError
	if err := s.Ready(); errors.As(err, &missing) {
		return b.SendMessage(chatID, MissingSelectionText(missing, s))
	}

	lyric, err := h.generator.Generate(ctx, lyrics.Request{
		Keywords:  s.Keywords(),
		Style:     s.Style,
		Scheme:    s.Scheme,
		Theme:     s.Theme,
		DiceRolls: s.Faces(),
		Seed:      seed,
	})
	if err != nil {
		logger.Error("generation failed", zap.Int64("chat_id", chatID), zap.Error(err))
		return b.SendMessage(chatID, "something went wrong while writing, try again")
	}

	if _, err := h.sessions.Update(chatID, func(s *state.Session) error {
		s.SetLyric(lyric)
		return nil
	}); err != nil {
		return err
	}

	logger.Info("lyric generated",
		zap.Int64("chat_id", chatID),
		zap.String("username", s.Username),
		zap.String("theme", string(s.Theme)),
		zap.String("style", string(lyric.Style)),
		zap.String("scheme", string(lyric.Scheme)),
		zap.Uint64("seed", lyric.Seed))

	return b.SendMessageWithButtons(chatID, RenderLyric(lyric), lyricKeyboard())
}

func (h *ClientHandlers) snippetHandler(_ context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := bot.ChatID(update)
	length := 4
	if arg := update.Message.CommandArguments(); arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return b.SendMessage(chatID, "snippets are 4 or 6 lines: /snippet 4")
		}
		length = n
	}

	s := h.sessions.Get(chatID)
	lines, err := lyrics.GenerateSimple(s.Keywords(), length)
	if errors.Is(err, lyrics.ErrInvalidLength) {
		return b.SendMessage(chatID, "snippets are 4 or 6 lines: /snippet 4")
	}
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return b.SendMessage(chatID, "no keywords yet. /roll the dice or add one with /keyword")
	}
	return b.SendMessage(chatID, strings.Join(lines, "\n"))
}

func (h *ClientHandlers) exportHandler(_ context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := bot.ChatID(update)
	arg := update.Message.CommandArguments()
	if arg == "" {
		if h.sessions.Get(chatID).LastLyric == nil {
			return b.SendMessage(chatID, "nothing to export yet. /generate first")
		}
		return b.SendMessageWithButtons(chatID, "pick a format:", lyricKeyboard())
	}
	return h.sendExport(b, chatID, arg)
}

func (h *ClientHandlers) exportCallback(_ context.Context, b *bot.Bot, update tgbotapi.Update) error {
	_, value := bot.SplitCallback(update.CallbackQuery.Data)
	return h.sendExport(b, bot.ChatID(update), value)
}

func (h *ClientHandlers) sendExport(b *bot.Bot, chatID int64, raw string) error {
	format, err := export.ParseFormat(raw)
	if err != nil {
		return b.SendMessage(chatID, "formats: txt, md, html")
	}

	s := h.sessions.Get(chatID)
	if s.LastLyric == nil {
		return b.SendMessage(chatID, "nothing to export yet. /generate first")
	}

	data, err := export.Render(format, s.LastLyric, export.MetadataFor(s.LastLyric))
	if err != nil {
		return fmt.Errorf("failed to export lyric: %w", err)
	}
	return b.SendDocument(chatID, export.Filename(format, s.LastLyric.GeneratedAt), data, "your lyric")
}

func (h *ClientHandlers) resetHandler(_ context.Context, b *bot.Bot, update tgbotapi.Update) error {
	chatID := bot.ChatID(update)
	h.sessions.Reset(chatID)
	return b.SendMessageWithButtons(chatID, "cleared. pick a theme to start over:", themeKeyboard())
}

// textHandler takes a plain message as a keyword when one was asked for.
func (h *ClientHandlers) textHandler(_ context.Context, b *bot.Bot, update tgbotapi.Update) error {
	if update.Message == nil || update.Message.Text == "" {
		return nil
	}
	chatID := bot.ChatID(update)
	if update.Message.IsCommand() {
		return b.SendMessage(chatID, "unknown command. /help lists what I can do")
	}
	if h.sessions.Get(chatID).Stage == state.StageAwaitingKeyword {
		return h.addKeyword(b, chatID, update.Message.Text)
	}
	return b.SendMessage(chatID, "i don't understand that yet. /help lists what I can do")
}

// SetupHandlers registers the client commands on a bot.
func SetupHandlers(clientBot *bot.Bot, handlers *ClientHandlers) {
	commandHandlers := common.GetCommandHandlers(handlers.sessions)
	commandHandlers["start"] = handlers.startHandler
	commandHandlers["help"] = handlers.helpHandler
	commandHandlers["theme"] = handlers.themeHandler
	commandHandlers["roll"] = handlers.rollHandler
	commandHandlers["keyword"] = handlers.keywordHandler
	commandHandlers["unkeyword"] = handlers.unkeywordHandler
	commandHandlers["style"] = handlers.styleHandler
	commandHandlers["scheme"] = handlers.schemeHandler
	commandHandlers["generate"] = handlers.generateHandler
	commandHandlers["regenerate"] = handlers.regenerateHandler
	commandHandlers["snippet"] = handlers.snippetHandler
	commandHandlers["export"] = handlers.exportHandler
	commandHandlers["reset"] = handlers.resetHandler

	callbackHandlers := common.GetCallbackHandlers()
	callbackHandlers[callbackTheme] = handlers.themeCallback
	callbackHandlers[callbackStyle] = handlers.styleCallback
	callbackHandlers[callbackScheme] = handlers.schemeCallback
	callbackHandlers[callbackRoll] = handlers.rollHandler
	callbackHandlers[callbackGenerate] = handlers.generateCallback
	callbackHandlers[callbackExport] = handlers.exportCallback

	clientBot.Register(commandHandlers, []bot.Handler{handlers.textHandler}, callbackHandlers)
}
