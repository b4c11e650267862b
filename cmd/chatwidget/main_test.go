package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/z-tavern/chatwidget/internal/config"
)

func TestWithFileLoggingClosesOnError(t *testing.T) {
	previous := log.Logger
	t.Cleanup(func() { log.Logger = previous })

	opts := &rootOptions{logFile: filepath.Join(t.TempDir(), "chatwidget.log")}
	cfg := config.LogConfig{Level: zerolog.InfoLevel}

	err := withFileLogging(cfg, opts, func() error {
		log.Info().Msg("inside")
		return errors.New("terminal ui failed")
	})
	require.EqualError(t, err, "terminal ui failed")

	log.Info().Msg("after")

	data, readErr := os.ReadFile(opts.logFile)
	require.NoError(t, readErr)
	require.Contains(t, string(data), "inside")
	require.NotContains(t, string(data), "after")
}

func TestSetupLoggingRejectsBadLevel(t *testing.T) {
	previous := log.Logger
	t.Cleanup(func() { log.Logger = previous })

	opts := &rootOptions{logLevel: "loud", logFile: filepath.Join(t.TempDir(), "x.log")}
	err := withFileLogging(config.LogConfig{}, opts, func() error { return nil })
	require.Error(t, err)
}
