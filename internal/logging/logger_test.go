package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/shelf/internal/logging"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" warn ":  zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, logging.ParseLevel(in), "level %q", in)
	}
}

func TestContextHelpersAddFields(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Config{Level: zerolog.DebugLevel, Format: "json", Output: &buf})

	ctx := logging.WithContext(context.Background(), logger)
	ctx = logging.WithComponent(ctx, "favicon")
	ctx = logging.WithDomain(ctx, "github.com")
	logging.FromContext(ctx).Info().Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "favicon", line["component"])
	assert.Equal(t, "github.com", line["domain"])
	assert.Equal(t, "hello", line["message"])
}

func TestFromContextWithoutLoggerIsNoop(t *testing.T) {
	logger := logging.FromContext(context.Background())
	require.NotNil(t, logger)
	logger.Info().Msg("dropped")
}
