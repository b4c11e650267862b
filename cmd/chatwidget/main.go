package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/z-tavern/chatwidget/internal/config"
)

type rootOptions struct {
	logLevel string
	logFile  string
	caller   bool

	// envErr 记录 .env 加载失败，待日志初始化后再输出
	envErr error
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "chatwidget",
		Short:         "A collapsible chat widget for the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			opts.envErr = godotenv.Load()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return errors.Wrap(err, "load configuration")
			}
			// 终端界面占用 stdout，日志写入文件
			return withFileLogging(cfg.Log, opts, func() error {
				return runTUI(cmd.Context(), cfg)
			})
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	flags.BoolVar(&opts.caller, "with-caller", false, "include caller information in logs")
	root.Flags().StringVar(&opts.logFile, "log-file", filepath.Join(os.TempDir(), "chatwidget.log"), "log file used while the TUI is running")

	root.AddCommand(newServeCommand(opts), newSpeakCommand(opts))
	return root
}

// loadConfig 加载配置并把日志输出到控制台
func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	if err := setupLogging(writer, cfg.Log, opts); err != nil {
		return nil, err
	}
	return cfg, nil
}

// withFileLogging 在 run 期间把日志写入 --log-file，结束后关闭文件并恢复原 logger
func withFileLogging(cfg config.LogConfig, opts *rootOptions, run func() error) error {
	previous := log.Logger
	closer, err := setupFileLogging(cfg, opts)
	if err != nil {
		return err
	}
	defer func() {
		log.Logger = previous
		_ = closer.Close()
	}()
	return run()
}

func setupFileLogging(cfg config.LogConfig, opts *rootOptions) (io.Closer, error) {
	f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "open log file %s", opts.logFile)
	}
	if err := setupLogging(f, cfg, opts); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func setupLogging(w io.Writer, cfg config.LogConfig, opts *rootOptions) error {
	level := cfg.Level
	if opts.logLevel != "" {
		parsed, err := zerolog.ParseLevel(opts.logLevel)
		if err != nil {
			return errors.Wrapf(err, "invalid --log-level %q", opts.logLevel)
		}
		level = parsed
	}
	zerolog.SetGlobalLevel(level)

	ctx := zerolog.New(w).With().Timestamp()
	if cfg.Caller || opts.caller {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()

	if opts.envErr != nil {
		log.Debug().Err(opts.envErr).Msg("no .env file loaded, using system environment only")
	}
	return nil
}
