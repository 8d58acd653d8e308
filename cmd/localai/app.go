package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ChrisRuff/obsidian-localai/config"
	"github.com/ChrisRuff/obsidian-localai/internal/application"
	"github.com/ChrisRuff/obsidian-localai/internal/domain"
	"github.com/ChrisRuff/obsidian-localai/internal/infra"
	"github.com/ChrisRuff/obsidian-localai/internal/infra/bridge"
	"github.com/ChrisRuff/obsidian-localai/internal/infra/editor"
	"github.com/ChrisRuff/obsidian-localai/internal/infra/localai"
	"github.com/ChrisRuff/obsidian-localai/internal/infra/notify"
	"github.com/ChrisRuff/obsidian-localai/internal/infra/vault"
	"github.com/ChrisRuff/obsidian-localai/internal/metrics"
	"github.com/ChrisRuff/obsidian-localai/internal/settings"
)

type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	index    *vault.Index
	holder   *settings.Holder
	panel    *settings.Panel
	plugin   *application.Plugin
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	registry := prometheus.NewRegistry()
	m := metrics.NewMetrics(registry)

	index := vault.NewIndex(cfg.Vault.Dir, logger)
	if err := index.Refresh(); err != nil {
		return nil, fmt.Errorf("indexing vault: %w", err)
	}

	holder := settings.NewHolder(newSettingsStore(cfg.Settings))

	retry := infra.DefaultRetryConfig()
	retry.MaxAttempts = cfg.HTTP.Retry.MaxAttempts
	retry.InitialDelay = cfg.HTTP.Retry.InitialDelay

	client := localai.NewClient(logger,
		localai.WithTimeout(cfg.HTTP.Timeout),
		localai.WithRetry(retry),
		localai.WithObserver(m),
	)

	plugin := application.NewPlugin(
		holder,
		index,
		client,
		client,
		newNotifier(cfg.Notify, logger),
		m,
		logger,
	)

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		metrics:  m,
		index:    index,
		holder:   holder,
		panel:    settings.NewPanel(holder),
		plugin:   plugin,
	}, nil
}

func newSettingsStore(cfg config.SettingsConfig) settings.Store {
	if cfg.Path == "" {
		return settings.NewMemoryStore()
	}
	return settings.NewFileStore(cfg.Path)
}

func newNotifier(cfg config.NotifyConfig, logger *slog.Logger) application.Notifier {
	switch cfg.Kind {
	case "desktop":
		return notify.NewDesktop(cfg.Title)
	case "pushover":
		return notify.NewPushover(cfg.Pushover.Token, cfg.Pushover.UserKey, cfg.Title)
	case "log":
		return notify.NewLog(logger)
	case "none":
		return &application.NoopNotifier{}
	default:
		logger.Warn("unknown notifier, using desktop", "kind", cfg.Kind)
		return notify.NewDesktop(cfg.Title)
	}
}

type trackedEditor interface {
	application.Editor
	Edited() bool
}

func (a *app) runCommand(ctx context.Context, id string, args []string) error {
	fs := flag.NewFlagSet(id, flag.ContinueOnError)
	note := fs.String("note", "", "note file holding the selection")
	from := fs.String("from", "", "selection start as LINE:CH")
	to := fs.String("to", "", "selection end as LINE:CH")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	ed, err := a.openEditor(*note, *from, *to)
	if err != nil {
		return err
	}

	if err := a.plugin.Activate(ctx); err != nil {
		return fmt.Errorf("activating plugin: %w", err)
	}
	defer a.plugin.Deactivate()

	if err := a.plugin.Execute(ctx, id, ed); err != nil {
		return err
	}

	if !ed.Edited() {
		a.logger.Info("selection left unchanged")
	}
	return nil
}

func (a *app) openEditor(note, from, to string) (trackedEditor, error) {
	if a.cfg.Editor.Kind == "clipboard" {
		return editor.OpenClipboard()
	}

	if note == "" {
		return nil, fmt.Errorf("%w: -note is required", errUsage)
	}
	start, end, err := parseRange(from, to)
	if err != nil {
		return nil, err
	}
	return editor.OpenDocument(note, start, end)
}

// parseRange turns the -from/-to flags into optional positions.
func parseRange(from, to string) (*domain.Position, *domain.Position, error) {
	var start, end *domain.Position
	if from != "" {
		pos, err := editor.ParsePosition(from)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing -from: %w", err)
		}
		start = &pos
	}
	if to != "" {
		pos, err := editor.ParsePosition(to)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing -to: %w", err)
		}
		end = &pos
	}
	return start, end, nil
}

func (a *app) runSettings(out io.Writer, args []string) error {
	if err := a.holder.Load(); err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	switch {
	case len(args) == 0 || args[0] == "list":
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "KEY\tNAME\tVALUE")
		for _, f := range a.panel.Fields() {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Key, f.Name, f.Value)
		}
		return tw.Flush()

	case args[0] == "set" && len(args) == 3:
		if err := a.panel.Set(args[1], args[2]); err != nil {
			return err
		}
		a.logger.Info("setting updated", "key", args[1])
		return nil

	default:
		return errUsage
	}
}

func (a *app) serve(ctx context.Context) error {
	if err := a.plugin.Activate(ctx); err != nil {
		return fmt.Errorf("activating plugin: %w", err)
	}
	defer a.plugin.Deactivate()

	if a.cfg.Vault.Watch {
		if err := a.index.Watch(ctx); err != nil {
			return fmt.Errorf("watching vault: %w", err)
		}
	}

	server := bridge.NewServer(
		bridge.Config{
			Addr:               a.cfg.Bridge.Addr,
			AuthToken:          a.cfg.Bridge.AuthToken,
			RateLimitPerMinute: a.cfg.Bridge.RateLimitPerMinute,
		},
		a.plugin,
		a.panel,
		promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}),
		a.metrics,
		a.logger,
	)

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting bridge: %w", err)
	}

	a.logger.Info("starting localai bridge",
		"addr", a.cfg.Bridge.Addr,
		"vault", a.index.Root(),
		"settings", a.cfg.Settings.Path,
	)

	<-ctx.Done()
	return server.Stop()
}
