package bot

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/sukalov/lyricbot/internal/logger"
)

// API is the part of the Telegram client the bot uses.
// *tgbotapi.BotAPI satisfies it.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Handler processes one update.
type Handler func(ctx context.Context, b *Bot, update tgbotapi.Update) error

// Bot represents a configurable Telegram bot
type Bot struct {
	Client   API
	Username string
	name     string

	mu               sync.RWMutex
	commandHandlers  map[string]Handler
	messageHandlers  []Handler
	callbackHandlers map[string]Handler
	wg               sync.WaitGroup
}

// New creates a new bot instance
func New(name, token string) (*Bot, error) {
	botClient, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return NewWithAPI(name, botClient.Self.UserName, botClient), nil
}

// NewWithAPI wraps an existing client.
func NewWithAPI(name, username string, api API) *Bot {
	return &Bot{
		Client:           api,
		Username:         username,
		name:             name,
		commandHandlers:  map[string]Handler{},
		callbackHandlers: map[string]Handler{},
	}
}

func (b *Bot) Name() string {
	return b.name
}

// Register installs handlers. Commands are keyed without the slash,
// callbacks by the part of the callback data before the first colon.
func (b *Bot) Register(
	commandHandlers map[string]Handler,
	messageHandlers []Handler,
	callbackHandlers map[string]Handler,
) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for k, h := range commandHandlers {
		b.commandHandlers[k] = h
	}
	b.messageHandlers = append(b.messageHandlers, messageHandlers...)
	for k, h := range callbackHandlers {
		b.callbackHandlers[k] = h
	}
}

// Start polls for updates and handles each on its own goroutine until
// ctx is cancelled. In-flight handlers are waited for before returning.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.Client.GetUpdatesChan(updateConfig)

	logger.Info("bot started", zap.String("bot", b.name), zap.String("account", b.Username))

	defer b.wg.Wait()
	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.ProcessUpdate(ctx, update)
			}()
		case <-ctx.Done():
			b.Client.StopReceivingUpdates()
			logger.Info("bot stopped", zap.String("bot", b.name))
			return nil
		}
	}
}

// ProcessUpdate routes one update to its handler.
func (b *Bot) ProcessUpdate(ctx context.Context, update tgbotapi.Update) {
	b.mu.RLock()
	commands, messages, callbacks := b.commandHandlers, b.messageHandlers, b.callbackHandlers
	b.mu.RUnlock()

	if update.Message != nil && update.Message.IsCommand() {
		if handler, exists := commands[update.Message.Command()]; exists {
			b.run(ctx, "command", update.Message.Command(), handler, update)
			return
		}
	}

	if update.CallbackQuery != nil {
		kind, _ := SplitCallback(update.CallbackQuery.Data)
		defer b.AnswerCallback(update.CallbackQuery.ID, "")
		if handler, exists := callbacks[kind]; exists {
			b.run(ctx, "callback", kind, handler, update)
		}
		return
	}

	for _, handler := range messages {
		b.run(ctx, "message", "", handler, update)
	}
}

func (b *Bot) run(ctx context.Context, kind, name string, handler Handler, update tgbotapi.Update) {
	if err := handler(ctx, b, update); err != nil {
		logger.Error("handler failed",
			zap.String("bot", b.name),
			zap.String("kind", kind),
			zap.String("name", name),
			zap.Error(err))
	}
}

// SplitCallback splits "kind:value" callback data.
func SplitCallback(data string) (kind, value string) {
	kind, value, _ = strings.Cut(data, ":")
	return kind, value
}

// CallbackData joins a callback kind and value.
func CallbackData(kind, value string) string {
	return kind + ":" + value
}

func (b *Bot) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.Client.Send(msg)
	return err
}

func (b *Bot) SendMessageWithMarkdown(chatID int64, text string, disableLinks bool) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = disableLinks
	_, err := b.Client.Send(msg)
	return err
}

func (b *Bot) SendMessageWithButtons(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	_, err := b.Client.Send(msg)
	return err
}

// SendDocument uploads data as a file.
func (b *Bot) SendDocument(chatID int64, filename string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: filename, Bytes: data})
	doc.Caption = caption
	_, err := b.Client.Send(doc)
	return err
}

func (b *Bot) AnswerCallback(callbackID, text string) {
	if _, err := b.Client.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		logger.Debug("failed to answer callback", zap.String("bot", b.name), zap.Error(err))
	}
}

// ChatID returns the chat an update belongs to, or 0.
func ChatID(update tgbotapi.Update) int64 {
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		return update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil:
		return update.CallbackQuery.Message.Chat.ID
	}
	return 0
}

// Username returns the sender's username, or "".
func Username(update tgbotapi.Update) string {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.UserName
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		return update.CallbackQuery.From.UserName
	}
	return ""
}
