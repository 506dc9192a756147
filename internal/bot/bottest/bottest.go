// Package bottest provides a recording Telegram client and update
// builders for handler tests.
package bottest

import (
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// FakeAPI records everything sent through it.
type FakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	Updates  chan tgbotapi.Update
	stopped  bool
}

func NewFakeAPI() *FakeAPI {
	return &FakeAPI{Updates: make(chan tgbotapi.Update, 16)}
}

func (f *FakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *FakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *FakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.Updates
}

func (f *FakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *FakeAPI) Stopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

// Messages returns the text messages sent so far.
func (f *FakeAPI) Messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.MessageConfig
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

// Documents returns the files sent so far.
func (f *FakeAPI) Documents() []tgbotapi.DocumentConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.DocumentConfig
	for _, c := range f.sent {
		if d, ok := c.(tgbotapi.DocumentConfig); ok {
			out = append(out, d)
		}
	}
	return out
}

// CallbackAnswers returns the callback queries answered so far.
func (f *FakeAPI) CallbackAnswers() []tgbotapi.CallbackConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.CallbackConfig
	for _, c := range f.requests {
		if cb, ok := c.(tgbotapi.CallbackConfig); ok {
			out = append(out, cb)
		}
	}
	return out
}

// LastText returns the text of the most recent message, or "".
func (f *FakeAPI) LastText() string {
	msgs := f.Messages()
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1].Text
}

// LastButtons returns the callback data of the last message's inline
// keyboard, row by row flattened.
func (f *FakeAPI) LastButtons() []string {
	msgs := f.Messages()
	if len(msgs) == 0 {
		return nil
	}
	markup, ok := msgs[len(msgs)-1].ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok {
		return nil
	}
	var out []string
	for _, row := range markup.InlineKeyboard {
		for _, button := range row {
			if button.CallbackData != nil {
				out = append(out, *button.CallbackData)
			}
		}
	}
	return out
}

// Reset forgets recorded traffic.
func (f *FakeAPI) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
	f.requests = nil
}

// Command builds a message update carrying a bot command.
func Command(chatID int64, username, text string) tgbotapi.Update {
	u := Text(chatID, username, text)
	name, _, _ := strings.Cut(text, " ")
	u.Message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name)}}
	return u
}

// Text builds a plain text message update.
func Text(chatID int64, username, text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: chatID, UserName: username},
			Chat: &tgbotapi.Chat{ID: chatID},
			Text: text,
		},
	}
}

// Callback builds a callback query update.
func Callback(chatID int64, username, data string) tgbotapi.Update {
	return tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb",
			From:    &tgbotapi.User{ID: chatID, UserName: username},
			Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
			Data:    data,
		},
	}
}
