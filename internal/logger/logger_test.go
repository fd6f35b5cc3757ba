package logger_test

import (
	"bytes"
	"testing"

	"github.com/ostafen/partedit/internal/logger"
	"github.com/stretchr/testify/require"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(&buf, logger.WarnLevel)

	l.Info("hidden")
	l.Debugf("hidden %d", 1)
	l.Warnf("shown %d", 2)
	l.Named("label").Error("boom")

	require.Equal(t, "[WARN] shown 2\n[ERROR] label: boom\n", buf.String())
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, logger.DebugLevel, logger.ParseLevel("debug"))
	require.Equal(t, logger.ErrorLevel, logger.ParseLevel(" ERROR "))
	require.Equal(t, logger.InfoLevel, logger.ParseLevel("verbose"))
}

func TestDefault(t *testing.T) {
	prev := logger.Default()
	defer logger.SetDefault(prev)

	var buf bytes.Buffer
	logger.SetDefault(logger.New(&buf, logger.DebugLevel))
	logger.Default().Debug("hello")
	require.Equal(t, "[DEBUG] hello\n", buf.String())
}
