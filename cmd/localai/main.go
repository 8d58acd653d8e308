package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ChrisRuff/obsidian-localai/config"
	"github.com/ChrisRuff/obsidian-localai/internal/application"
)

const usageText = `usage: localai [-config config.yaml] <command> [flags]

commands:
  transcribe  -note FILE [-from L:C -to L:C]   transcribe the embedded audio file in the selection
  summarize   -note FILE [-from L:C -to L:C]   append a summary of the selection
  settings    [list | set KEY VALUE]           show or change plugin settings
  serve                                        run the HTTP bridge
`

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usageText)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	logger, closeLog := setupLogger(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	err = run(ctx, cfg, logger, flag.Arg(0), flag.Args()[1:])
	cancel()
	closeLog()

	switch {
	case errors.Is(err, errUsage):
		flag.Usage()
		os.Exit(2)
	case err != nil && !errors.Is(err, context.Canceled):
		logger.Error("localai failed", "error", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("usage")

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, command string, args []string) error {
	app, err := newApp(cfg, logger)
	if err != nil {
		return err
	}

	switch command {
	case "transcribe":
		return app.runCommand(ctx, application.TranscribeCommandID, args)
	case "summarize":
		return app.runCommand(ctx, application.SummarizeCommandID, args)
	case "settings":
		return app.runSettings(os.Stdout, args)
	case "serve":
		return app.serve(ctx)
	default:
		return errUsage
	}
}

// setupLogger writes to stderr so command output on stdout stays clean.
// With log.file set, records are also written to a rotating file.
func setupLogger(cfg config.LogConfig) (*slog.Logger, func()) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var out io.Writer = os.Stderr
	closeFn := func() {}
	if cfg.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		out = io.MultiWriter(os.Stderr, rotating)
		closeFn = func() { rotating.Close() }
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler), closeFn
}
