package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWriter_RenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, slog.LevelInfo, false)

	logger.Info("export failed", "error", errors.New("disk full"))
	logger.Debug("hidden")

	assert.Contains(t, buf.String(), `err="disk full"`)
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	NewWriter(&buf, slog.LevelDebug, true).Debug("built", "slices", 3)

	assert.Contains(t, buf.String(), `"msg":"built"`)
	assert.Contains(t, buf.String(), `"slices":3`)
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"":      slog.LevelInfo,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}
