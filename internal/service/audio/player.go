// Package audio plays synthesized speech through an external player process.
package audio

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrNoPlayer is returned when no usable player program was found.
var ErrNoPlayer = errors.New("no audio player found (install ffplay, mpg123, mpv or afplay, or set AUDIO_PLAYER)")

// candidates 按顺序探测的播放器及其静默参数
var candidates = [][]string{
	{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
	{"mpg123", "-q"},
	{"mpv", "--no-video", "--really-quiet"},
	{"afplay"},
}

// Runner starts a program and waits for it to exit.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(output.String()); msg != "" {
			return errors.Wrapf(err, "%s: %s", name, msg)
		}
		return errors.Wrap(err, name)
	}
	return nil
}

// Player writes each payload to its own temporary file and plays it. Calls
// are independent; overlapping calls play at the same time.
type Player struct {
	custom   []string
	tempDir  string
	runner   Runner
	lookPath func(string) (string, error)
	logger   zerolog.Logger

	onRelease func(path string)

	resolveOnce sync.Once
	command     []string
	resolveErr  error
}

// Option customises a Player.
type Option func(*Player)

// WithCommand uses an explicit command line; the audio path is appended.
func WithCommand(command string) Option {
	return func(p *Player) {
		p.custom = strings.Fields(command)
	}
}

// WithRunner replaces process execution.
func WithRunner(r Runner) Option {
	return func(p *Player) {
		p.runner = r
	}
}

// WithTempDir sets where temporary audio files are created.
func WithTempDir(dir string) Option {
	return func(p *Player) {
		p.tempDir = dir
	}
}

// WithLookPath replaces PATH lookup during auto-detection.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(p *Player) {
		p.lookPath = fn
	}
}

// WithReleaseHook is called once per payload after its temporary file is removed.
func WithReleaseHook(fn func(path string)) Option {
	return func(p *Player) {
		p.onRelease = fn
	}
}

// NewPlayer creates a player. Detection of the player program is deferred to
// the first Play.
func NewPlayer(options ...Option) *Player {
	p := &Player{
		runner:   execRunner{},
		lookPath: exec.LookPath,
		logger:   log.With().Str("component", "audio").Logger(),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Play blocks until playback of data finishes, then releases the temporary
// file.
func (p *Player) Play(ctx context.Context, data []byte) error {
	if len(data) == 0 {
		return errors.New("audio payload is empty")
	}

	command, err := p.resolve()
	if err != nil {
		return err
	}

	res, err := newResource(p.tempDir, "chatwidget-*.mp3", data)
	if err != nil {
		return err
	}
	res.onRelease = p.onRelease
	defer func() {
		if err := res.Release(); err != nil {
			p.logger.Warn().Err(err).Str("path", res.Path()).Msg("failed to release audio resource")
		}
	}()

	args := append(append([]string{}, command[1:]...), res.Path())
	p.logger.Debug().Str("player", command[0]).Int("bytes", len(data)).Msg("playing audio")
	if err := p.runner.Run(ctx, command[0], args...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Wrap(err, "audio playback failed")
	}
	return nil
}

func (p *Player) resolve() ([]string, error) {
	p.resolveOnce.Do(func() {
		if len(p.custom) > 0 {
			p.command = p.custom
			return
		}
		for _, candidate := range candidates {
			if _, err := p.lookPath(candidate[0]); err == nil {
				p.command = candidate
				return
			}
		}
		p.resolveErr = ErrNoPlayer
	})
	return p.command, p.resolveErr
}
