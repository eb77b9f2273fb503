package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewLevels(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, New("").GetLevel())
	assert.Equal(t, zerolog.DebugLevel, New("debug").GetLevel())
	assert.Equal(t, zerolog.WarnLevel, New("warn").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New("loud").GetLevel())
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Str("chat_id", "100").Msg("test message")

	assert.Contains(t, buf.String(), "test message")
	assert.Contains(t, buf.String(), `"chat_id":"100"`)
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf))

	got := FromContext(ctx, zerolog.Nop())
	got.Info().Msg("test")
	assert.NotZero(t, buf.Len(), "expected log output from retrieved logger")
}

func TestFromContextFallback(t *testing.T) {
	buf := &bytes.Buffer{}
	got := FromContext(context.Background(), NewWithWriter(buf))
	got.Info().Msg("fallback")
	assert.Contains(t, buf.String(), "fallback")
}
