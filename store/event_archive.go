package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"portfolio/api/database"
	"portfolio/api/models"
)

// EventSink receives batches of accepted events.
type EventSink interface {
	WriteBatch(ctx context.Context, events []models.ArchivedEvent) error
}

// ClickHouseSink appends events to the portfolio_events table.
type ClickHouseSink struct {
	DB *database.ClickHouseClient
}

func NewClickHouseSink(client *database.ClickHouseClient) *ClickHouseSink {
	return &ClickHouseSink{DB: client}
}

func (s *ClickHouseSink) WriteBatch(ctx context.Context, events []models.ArchivedEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO portfolio_events (
			event_id, event_type, visitor_id, page, device,
			duration_seconds, pages, theme, language, timestamp
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	for _, ev := range events {
		id, err := uuid.Parse(ev.EventID)
		if err != nil {
			id = uuid.New()
		}
		if err := batch.Append(
			id,
			ev.EventType,
			ev.VisitorID,
			ev.Page,
			ev.Device,
			ev.DurationSeconds,
			ev.Pages,
			ev.Theme,
			ev.Language,
			ev.Timestamp,
		); err != nil {
			batch.Abort()
			return fmt.Errorf("failed to append event %s: %w", ev.EventID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}
	return nil
}

// EventArchive forwards accepted events to an EventSink off the request
// path. Enqueue never blocks; when the buffer is full the event is dropped.
type EventArchive struct {
	sink          EventSink
	events        chan models.ArchivedEvent
	batchSize     int
	flushInterval time.Duration
	logger        *zap.Logger
	onDrop        func()

	closeOnce sync.Once
	done      chan struct{}
}

type ArchiveOptions struct {
	BufferSize    int
	BatchSize     int
	FlushInterval time.Duration
	// OnDrop is called for every event discarded on a full buffer.
	OnDrop func()
}

func NewEventArchive(sink EventSink, opts ArchiveOptions, logger *zap.Logger) *EventArchive {
	if opts.BufferSize <= 0 {
		opts.BufferSize = 1024
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 200
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = 5 * time.Second
	}
	if opts.OnDrop == nil {
		opts.OnDrop = func() {}
	}
	return &EventArchive{
		sink:          sink,
		events:        make(chan models.ArchivedEvent, opts.BufferSize),
		batchSize:     opts.BatchSize,
		flushInterval: opts.FlushInterval,
		logger:        logger,
		onDrop:        opts.OnDrop,
		done:          make(chan struct{}),
	}
}

func (a *EventArchive) Enqueue(ev models.ArchivedEvent) error {
	if ev.EventID == "" {
		ev.EventID = uuid.New().String()
	}
	select {
	case a.events <- ev:
		return nil
	default:
		a.onDrop()
		return ErrArchiveFull
	}
}

// Run drains the buffer into the sink until Close is called or ctx is
// cancelled. Remaining buffered events are flushed before Run returns.
// Sink writes are not cancelled with ctx.
func (a *EventArchive) Run(ctx context.Context) {
	ticker := time.NewTicker(a.flushInterval)
	defer ticker.Stop()

	writeCtx := context.WithoutCancel(ctx)
	batch := make([]models.ArchivedEvent, 0, a.batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := a.sink.WriteBatch(writeCtx, batch); err != nil {
			a.logger.Warn("event archive write failed",
				zap.Int("events", len(batch)),
				zap.Error(err),
			)
		}
		batch = batch[:0]
	}
	drain := func() {
		for {
			select {
			case ev := <-a.events:
				batch = append(batch, ev)
				if len(batch) >= a.batchSize {
					flush()
				}
			default:
				flush()
				return
			}
		}
	}

	for {
		select {
		case ev := <-a.events:
			batch = append(batch, ev)
			if len(batch) >= a.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-a.done:
			drain()
			return
		case <-ctx.Done():
			drain()
			return
		}
	}
}

// Close signals Run to drain what is buffered and stop.
func (a *EventArchive) Close() {
	a.closeOnce.Do(func() { close(a.done) })
}

func ArchivedPageView(ev models.PageView) models.ArchivedEvent {
	return models.ArchivedEvent{
		EventID:   uuid.New().String(),
		EventType: models.EventPageView,
		VisitorID: ev.VisitorID,
		Page:      ev.Page,
		Device:    string(ev.Device),
		Timestamp: ev.Timestamp,
	}
}

func ArchivedSession(ev models.SessionEnd) models.ArchivedEvent {
	return models.ArchivedEvent{
		EventID:         uuid.New().String(),
		EventType:       models.EventSession,
		VisitorID:       ev.VisitorID,
		DurationSeconds: ev.DurationSeconds,
		Pages:           uint32(ev.Pages),
		Theme:           string(ev.Theme),
		Language:        string(ev.Language),
		Timestamp:       ev.Timestamp,
	}
}
