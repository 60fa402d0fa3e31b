package bot

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dharani043/result-bot/internal/metrics"
	"github.com/dharani043/result-bot/internal/monitor"
	"github.com/dharani043/result-bot/internal/registry"
)

// CursorStore persists the command stream position.
type CursorStore interface {
	Load() (int64, error)
	Advance(seq int64) error
}

type forcedSweeper interface {
	Forced(ctx context.Context) (int, error)
}

type healthChecker interface {
	Check(ctx context.Context) monitor.Health
}

// Dispatcher drains the inbound command stream and executes each
// command exactly once. The cursor is advanced and persisted before a
// command's side effects run, so a command is never reprocessed after a
// restart; the price is that a crash mid-action silently drops that one
// action.
type Dispatcher struct {
	source       monitor.CommandSource
	cursor       CursorStore
	registry     *registry.Registry
	notifier     monitor.Notifier
	sweeper      forcedSweeper
	health       healthChecker
	stop         *monitor.StopSignal
	adminChatID  int64
	pollInterval time.Duration
	logger       *zap.Logger

	lastSeq int64
}

// NewDispatcher constructs a Dispatcher. The cursor is read once here;
// afterwards the in-memory position is authoritative.
func NewDispatcher(
	source monitor.CommandSource,
	cursor CursorStore,
	reg *registry.Registry,
	notifier monitor.Notifier,
	sweeper forcedSweeper,
	health healthChecker,
	stop *monitor.StopSignal,
	adminChatID int64,
	pollInterval time.Duration,
	logger *zap.Logger,
) (*Dispatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	lastSeq, err := cursor.Load()
	if err != nil {
		return nil, err
	}
	return &Dispatcher{
		source:       source,
		cursor:       cursor,
		registry:     reg,
		notifier:     notifier,
		sweeper:      sweeper,
		health:       health,
		stop:         stop,
		adminChatID:  adminChatID,
		pollInterval: pollInterval,
		logger:       logger,
		lastSeq:      lastSeq,
	}, nil
}

// Drain fetches commands past the cursor and handles them in sequence
// order. A stream fetch failure skips this tick silently; the next tick
// retries from the same cursor.
func (d *Dispatcher) Drain(ctx context.Context) {
	commands, err := d.source.Commands(ctx, d.lastSeq)
	if err != nil {
		d.logger.Debug("command stream unavailable", zap.Error(err))
		return
	}
	sort.Slice(commands, func(i, j int) bool { return commands[i].Seq < commands[j].Seq })

	for _, cmd := range commands {
		if cmd.Seq <= d.lastSeq {
			continue
		}
		// Cursor first, action second: never reprocess.
		if err := d.cursor.Advance(cmd.Seq); err != nil {
			d.logger.Error("cursor advance failed", zap.Int64("seq", cmd.Seq), zap.Error(err))
			return
		}
		d.lastSeq = cmd.Seq
		d.handle(ctx, cmd)
	}
}

func (d *Dispatcher) handle(ctx context.Context, cmd monitor.Command) {
	parts := strings.Fields(cmd.Text)
	if len(parts) == 0 {
		return
	}
	verb := strings.ToLower(parts[0])

	switch verb {
	case "/start":
		d.reply(ctx, cmd.ChatID, msgWelcome(cmd.ChatID))
	case "/help":
		d.reply(ctx, cmd.ChatID, msgHelp)
	case "/add":
		d.handleAdd(ctx, cmd.ChatID, parts)
	case "/remove":
		d.handleRemove(ctx, cmd.ChatID, parts)
	case "/list":
		d.handleList(ctx, cmd.ChatID)
	case "/status":
		d.handleStatus(ctx, cmd.ChatID)
	case "/health":
		d.reply(ctx, cmd.ChatID, msgHealthReport(d.health.Check(ctx)))
	case "/fetchnow":
		d.handleFetchNow(ctx, cmd.ChatID)
	case "/stop":
		d.handleStop(ctx, cmd.ChatID)
	default:
		// Unknown verbs are ignored.
		return
	}
	metrics.CommandHandled(strings.TrimPrefix(verb, "/"))
}

func (d *Dispatcher) handleAdd(ctx context.Context, chatID int64, parts []string) {
	if len(parts) != 3 {
		d.reply(ctx, chatID, msgAddUsage)
		return
	}
	roll := monitor.NormalizeRoll(parts[1])
	d.reply(ctx, chatID, msgAdding(roll))

	err := d.registry.Add(ctx, monitor.Subscriber{
		Roll:   roll,
		DOB:    parts[2],
		ChatID: chatID,
	})
	switch {
	case errors.Is(err, registry.ErrAlreadyExists):
		d.reply(ctx, chatID, msgAlreadyAdded(roll))
	case err != nil:
		d.logger.Error("add subscriber failed", zap.String("roll", roll), zap.Error(err))
		d.reply(ctx, chatID, msgRegistryBusy)
	default:
		d.reply(ctx, chatID, msgAdded(roll))
	}
}

func (d *Dispatcher) handleRemove(ctx context.Context, chatID int64, parts []string) {
	if len(parts) != 2 {
		d.reply(ctx, chatID, msgRemoveUsage)
		return
	}
	roll := monitor.NormalizeRoll(parts[1])

	err := d.registry.Remove(ctx, monitor.Key{Roll: roll, ChatID: chatID})
	switch {
	case errors.Is(err, registry.ErrNotFound):
		d.reply(ctx, chatID, msgNotFound(roll))
	case err != nil:
		d.logger.Error("remove subscriber failed", zap.String("roll", roll), zap.Error(err))
		d.reply(ctx, chatID, msgRegistryBusy)
	default:
		d.reply(ctx, chatID, msgRemoved(roll))
	}
}

func (d *Dispatcher) handleList(ctx context.Context, chatID int64) {
	subs, err := d.registry.ListChat(ctx, chatID)
	if err != nil {
		d.logger.Error("list subscribers failed", zap.Error(err))
		d.reply(ctx, chatID, msgRegistryBusy)
		return
	}
	if len(subs) == 0 {
		d.reply(ctx, chatID, msgNoStudents)
		return
	}
	rolls := make([]string, 0, len(subs))
	for _, sub := range subs {
		rolls = append(rolls, sub.Roll)
	}
	d.reply(ctx, chatID, msgStudentList(rolls))
}

func (d *Dispatcher) handleStatus(ctx context.Context, chatID int64) {
	subs, err := d.registry.ListChat(ctx, chatID)
	if err != nil {
		d.logger.Error("status query failed", zap.Error(err))
		d.reply(ctx, chatID, msgRegistryBusy)
		return
	}
	d.reply(ctx, chatID, msgStatus(len(subs), d.pollInterval))
}

func (d *Dispatcher) handleFetchNow(ctx context.Context, chatID int64) {
	if chatID != d.adminChatID {
		d.reply(ctx, chatID, msgNotAuthorized)
		return
	}
	d.stop.Reset()
	d.reply(ctx, chatID, msgFetching)

	count, err := d.sweeper.Forced(ctx)
	switch {
	case err != nil:
		d.logger.Error("forced sweep failed", zap.Error(err))
		d.reply(ctx, chatID, msgFetchFailed)
	case d.stop.Stopped():
		d.reply(ctx, chatID, msgFetchStopped)
	default:
		d.reply(ctx, chatID, msgPushed(count))
	}
}

func (d *Dispatcher) handleStop(ctx context.Context, chatID int64) {
	if chatID != d.adminChatID {
		d.reply(ctx, chatID, msgNotAuthorized)
		return
	}
	d.stop.Trip()
	d.reply(ctx, chatID, msgStopping)
}

// reply is best-effort; a failed reply is logged and dropped.
func (d *Dispatcher) reply(ctx context.Context, chatID int64, text string) {
	if err := d.notifier.Send(ctx, chatID, text); err != nil {
		d.logger.Warn("reply not delivered", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
