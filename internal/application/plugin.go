package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ChrisRuff/obsidian-localai/internal/settings"
)

var ErrUnknownCommand = errors.New("unknown command")

// Command is an editor command registered with the host while the plugin
// is active.
type Command struct {
	ID   string
	Name string

	// Notice is shown to the user when the command fails.
	Notice string

	run func(ctx context.Context, editor Editor, logger *slog.Logger) (bool, error)
}

type Plugin struct {
	settings *settings.Holder
	files    FileIndex
	stt      SpeechToText
	gen      TextGenerator
	notifier Notifier
	metrics  Metrics
	logger   *slog.Logger

	mu       sync.RWMutex
	commands map[string]Command
}

func NewPlugin(
	holder *settings.Holder,
	files FileIndex,
	stt SpeechToText,
	gen TextGenerator,
	notifier Notifier,
	metrics Metrics,
	logger *slog.Logger,
) *Plugin {
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &Plugin{
		settings: holder,
		files:    files,
		stt:      stt,
		gen:      gen,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
	}
}

// Activate loads the persisted settings and registers the commands.
func (p *Plugin) Activate(ctx context.Context) error {
	if err := p.settings.Load(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.commands = make(map[string]Command)
	for _, cmd := range []Command{p.transcribeCommand(), p.summarizeCommand()} {
		p.commands[cmd.ID] = cmd
	}

	cfg := p.settings.Get()
	p.logger.Info("plugin activated",
		"server_url", cfg.ServerURL,
		"commands", len(p.commands),
	)
	return nil
}

func (p *Plugin) Deactivate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.commands = nil
	p.logger.Info("plugin deactivated")
}

// Commands lists the registered commands sorted by ID.
func (p *Plugin) Commands() []Command {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make([]Command, 0, len(p.commands))
	for _, cmd := range p.commands {
		result = append(result, cmd)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Execute runs the command against editor. A selection the command cannot
// act on is not an error. On failure the user is notified once, the editor
// is left untouched and the error is returned to the host.
func (p *Plugin) Execute(ctx context.Context, id string, editor Editor) error {
	p.mu.RLock()
	cmd, ok := p.commands[id]
	p.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, id)
	}

	logger := p.logger.With("command", id, "invocation_id", uuid.NewString())
	start := time.Now()

	changed, err := cmd.run(ctx, editor, logger)
	if err != nil {
		p.metrics.ObserveCommand(id, OutcomeFailed, time.Since(start))
		logger.Error("command failed", "error", err)
		if notifyErr := p.notifier.Notify(ctx, cmd.Notice); notifyErr != nil {
			logger.Error("notifying failure", "error", notifyErr)
		}
		return fmt.Errorf("%s: %w", id, err)
	}

	if !changed {
		p.metrics.ObserveCommand(id, OutcomeNoop, time.Since(start))
		logger.Debug("nothing to do")
		return nil
	}

	p.metrics.ObserveCommand(id, OutcomeEdited, time.Since(start))
	logger.Info("selection updated", "elapsed", time.Since(start))
	return nil
}
