package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/z-tavern/chatwidget/internal/config"
	"github.com/zhouzirui/z-tavern/chatwidget/internal/i18n"
	"github.com/zhouzirui/z-tavern/chatwidget/internal/service/audio"
	"github.com/zhouzirui/z-tavern/chatwidget/internal/service/backend"
	"github.com/zhouzirui/z-tavern/chatwidget/internal/ui"
	"github.com/zhouzirui/z-tavern/chatwidget/internal/widget"
)

func runTUI(ctx context.Context, cfg *config.Config) error {
	client := backend.NewClient(cfg.API.BaseURL, backend.WithTimeout(cfg.API.Timeout))

	var playerOpts []audio.Option
	if cfg.Widget.AudioPlayer != "" {
		playerOpts = append(playerOpts, audio.WithCommand(cfg.Widget.AudioPlayer))
	}
	player := audio.NewPlayer(playerOpts...)

	w := widget.New(client, client, player,
		widget.WithCatalog(i18n.Lookup(cfg.Widget.Locale)),
		widget.WithNotification(cfg.Widget.NotifyInterval, cfg.Widget.NotifyDuration),
	)
	w.Mount()
	defer w.Unmount()

	log.Info().
		Str("api", cfg.API.BaseURL).
		Str("locale", w.Catalog().Locale).
		Msg("chat widget mounted")

	program := tea.NewProgram(ui.New(ctx, w), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "run terminal ui")
	}
	return nil
}
