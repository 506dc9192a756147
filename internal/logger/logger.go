package logger

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	ChannelID int64
	mu        sync.RWMutex
	botClient BotClient
	base      atomic.Pointer[zap.Logger]
)

func init() {
	base.Store(zap.NewNop())
}

// BotClient delivers log lines to a Telegram channel
type BotClient interface {
	SendMessage(chatID int64, text string) error
}

// Init builds the process logger. level is one of debug, info, warn, error.
func Init(level string, development bool) error {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("failed to parse log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	base.Store(l)
	return nil
}

// Use replaces the process logger, mostly for tests.
func Use(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	base.Store(l)
}

// AttachChannel forwards info, error and success lines to a Telegram chat.
func AttachChannel(client BotClient, channelID int64) {
	mu.Lock()
	defer mu.Unlock()
	botClient = client
	ChannelID = channelID
}

// L returns the process logger.
func L() *zap.Logger {
	return base.Load()
}

func Info(message string, fields ...zap.Field) {
	L().Info(message, fields...)
	sendLog("ℹ️ INFO", message, fields)
}

func Error(message string, fields ...zap.Field) {
	L().Error(message, fields...)
	sendLog("❌ ERROR", message, fields)
}

// Debug lines stay local and are never forwarded to the channel.
func Debug(message string, fields ...zap.Field) {
	L().Debug(message, fields...)
}

func Success(message string, fields ...zap.Field) {
	L().Info(message, append(fields, zap.String("status", "success"))...)
	sendLog("✅ SUCCESS", message, fields)
}

// LogWithErr logs message as info when err is nil, as an error otherwise,
// and returns err wrapped with message.
func LogWithErr(message string, err error) error {
	if err == nil {
		Info(message)
		return nil
	}
	Error(message, zap.Error(err))
	return fmt.Errorf("%s: %w", message, err)
}

// Sync flushes buffered entries.
func Sync() {
	_ = L().Sync()
}

func sendLog(prefix, message string, fields []zap.Field) {
	mu.RLock()
	client, chatID := botClient, ChannelID
	mu.RUnlock()
	if client == nil {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	logMessage := fmt.Sprintf("[%s] %s\n%s", timestamp, prefix, message)
	if extra := formatFields(fields); extra != "" {
		logMessage += "\n" + extra
	}

	go func() {
		if err := client.SendMessage(chatID, logMessage); err != nil {
			L().Warn("failed to send log to channel", zap.Error(err), zap.String("log", logMessage))
		}
	}()
}

func formatFields(fields []zap.Field) string {
	if len(fields) == 0 {
		return ""
	}
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(enc)
	}
	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s: %v", k, enc.Fields[k])
	}
	return b.String()
}
