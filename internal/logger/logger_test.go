package logger

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type channelRecorder struct {
	mu   sync.Mutex
	sent []string
	ch   chan struct{}
}

func newRecorder() *channelRecorder {
	return &channelRecorder{ch: make(chan struct{}, 16)}
}

func (c *channelRecorder) SendMessage(chatID int64, text string) error {
	c.mu.Lock()
	c.sent = append(c.sent, text)
	c.mu.Unlock()
	c.ch <- struct{}{}
	return nil
}

func (c *channelRecorder) wait(t *testing.T) string {
	t.Helper()
	select {
	case <-c.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("no message forwarded to the channel")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sent[len(c.sent)-1]
}

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	Use(zap.New(core))
	t.Cleanup(func() {
		Use(nil)
		AttachChannel(nil, 0)
	})
	return logs
}

func TestLevels(t *testing.T) {
	logs := observe(t)

	Info("bank loaded", zap.String("source", "file"))
	Debug("cache miss")
	Success("pushed")
	Error("redis down", zap.Error(errors.New("refused")))

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "file", entries[0].ContextMap()["source"])
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	assert.Equal(t, "success", entries[2].ContextMap()["status"])
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestLogWithErr(t *testing.T) {
	logs := observe(t)

	assert.NoError(t, LogWithErr("flush", nil))
	err := LogWithErr("flush", errors.New("timeout"))
	require.Error(t, err)
	assert.Equal(t, "flush: timeout", err.Error())

	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestChannelForwarding(t *testing.T) {
	observe(t)
	rec := newRecorder()
	AttachChannel(rec, -100)

	Error("redis down", zap.String("url", "localhost:6379"), zap.Int("attempt", 2))
	msg := rec.wait(t)
	assert.Contains(t, msg, "❌ ERROR")
	assert.Contains(t, msg, "redis down")
	assert.Contains(t, msg, "attempt: 2\nurl: localhost:6379")

	Debug("quiet")
	select {
	case <-rec.ch:
		t.Fatal("debug lines must stay local")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	t.Cleanup(func() { Use(nil) })
	assert.Error(t, Init("loud", false))
	assert.NoError(t, Init("debug", true))
}
