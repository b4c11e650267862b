package main

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	speechmodel "github.com/zhouzirui/z-tavern/chatwidget/internal/model/speech"
	"github.com/zhouzirui/z-tavern/chatwidget/internal/service/audio"
	"github.com/zhouzirui/z-tavern/chatwidget/internal/service/speech"
)

func newSpeakCommand(opts *rootOptions) *cobra.Command {
	var (
		outputPath string
		voice      string
	)

	cmd := &cobra.Command{
		Use:   "speak TEXT...",
		Short: "Synthesize text with ElevenLabs and play or save the audio",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			svc := speech.NewService(cfg.Speech.Model())
			started := time.Now()
			resp, err := svc.SynthesizeSpeech(cmd.Context(), &speechmodel.TTSRequest{
				Text:    strings.Join(args, " "),
				VoiceID: voice,
			})
			if err != nil {
				return err
			}
			data := resp.AudioData
			log.Info().Int("bytes", len(data)).Dur("elapsed", time.Since(started)).Msg("TTS 合成成功")

			if outputPath != "" {
				if err := os.WriteFile(outputPath, data, 0o644); err != nil {
					return errors.Wrapf(err, "write %s", outputPath)
				}
				log.Info().Str("path", outputPath).Msg("audio saved")
				return nil
			}

			var playerOpts []audio.Option
			if cfg.Widget.AudioPlayer != "" {
				playerOpts = append(playerOpts, audio.WithCommand(cfg.Widget.AudioPlayer))
			}
			return audio.NewPlayer(playerOpts...).Play(cmd.Context(), data)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "out", "o", "", "write the audio to this file instead of playing it")
	cmd.Flags().StringVar(&voice, "voice", "", "voice ID or premade alias (defaults to ELEVENLABS_VOICE_ID)")
	return cmd
}
