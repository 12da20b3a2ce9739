package logutil

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "debug", false)
	ctx := WithLogger(context.Background(), logger)
	log := GetOrDefault(ctx)
	log.Debug().Str("who", "test").Msg("hello")
	require.Contains(t, buf.String(), `"who":"test"`)
	require.Contains(t, buf.String(), `"message":"hello"`)
}

func TestUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "chatty", false)
	require.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	logger.Debug().Msg("hidden")
	require.Empty(t, buf.String())
}
