package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	log := New("debug", "json")
	require.Equal(t, zerolog.DebugLevel, log.GetLevel())

	console := New("", "console")
	require.Equal(t, zerolog.InfoLevel, console.GetLevel())
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, zerolog.WarnLevel, ParseLevel("WARN"))
	require.Equal(t, zerolog.ErrorLevel, ParseLevel(" error "))
	require.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
	require.Equal(t, zerolog.InfoLevel, ParseLevel(""))
}

func TestComponent(t *testing.T) {
	buf := &bytes.Buffer{}
	log := Component(NewWithWriter(buf), "bot")

	log.Info().Str("owner", "42").Msg("session opened")

	out := buf.String()
	require.Contains(t, out, `"component":"bot"`)
	require.Contains(t, out, `"owner":"42"`)
	require.Contains(t, out, "session opened")
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf))

	retrieved := FromContext(ctx)
	retrieved.Info().Msg("test")
	require.NotZero(t, buf.Len())
}

func TestFromContext_DefaultLogger(t *testing.T) {
	log := FromContext(context.Background())
	require.Equal(t, zerolog.Disabled, log.GetLevel())
}
