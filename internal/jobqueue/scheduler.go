package jobqueue

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"

	"polychat/internal/models"
	"polychat/internal/observability"
)

// Pipeline schedules deferred pipeline work for a stored message. Handlers
// depend on this interface so tests can swap in a mock.
type Pipeline interface {
	ScheduleTranslation(ctx context.Context, msg models.Message, senderLanguage string) error
	ScheduleAssistant(ctx context.Context, chatID, messageID int) error
}

var _ Pipeline = (*Scheduler)(nil)

// Scheduler owns the durable job queue: it runs the workers and inserts
// deferred jobs. Jobs survive process restarts; a crash between accepting a
// message and running its fan-out only delays the fan-out.
type Scheduler struct {
	client *river.Client[pgx.Tx]
	pool   *pgxpool.Pool
}

// NewScheduler connects a dedicated pool, applies the queue schema and
// registers the workers. Call Start before scheduling.
func NewScheduler(ctx context.Context, databaseURL string, deps WorkerDeps, maxWorkers int) (*Scheduler, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create queue pool: %w", err)
	}

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("create queue migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate queue schema: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewTranslationWorker(deps))
	river.AddWorker(workers, NewAssistantWorker(deps))

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: maxWorkers},
		},
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("create queue client: %w", err)
	}

	return &Scheduler{client: client, pool: pool}, nil
}

// Start launches the queue workers.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.client.Start(ctx); err != nil {
		return fmt.Errorf("start queue: %w", err)
	}
	log.Printf("job queue started")
	return nil
}

// Stop drains the workers and closes the pool.
func (s *Scheduler) Stop(ctx context.Context) error {
	err := s.client.Stop(ctx)
	s.pool.Close()
	return err
}

// ScheduleTranslation enqueues a fan-out run for a stored text message.
func (s *Scheduler) ScheduleTranslation(ctx context.Context, msg models.Message, senderLanguage string) error {
	_, err := s.client.Insert(ctx, TranslationFanOutArgs{
		MessageID:      msg.ID,
		ChatID:         msg.ChatID,
		OriginalText:   msg.Content,
		SenderLanguage: senderLanguage,
	}, &river.InsertOpts{ScheduledAt: time.Now().Add(TranslationDelay)})
	if err != nil {
		return fmt.Errorf("schedule translation: %w", err)
	}
	observability.IncTranslationScheduled()
	return nil
}

// ScheduleAssistant enqueues an assistant reply for a mention.
func (s *Scheduler) ScheduleAssistant(ctx context.Context, chatID, messageID int) error {
	_, err := s.client.Insert(ctx, AssistantMentionArgs{
		ChatID:    chatID,
		MessageID: messageID,
	}, &river.InsertOpts{ScheduledAt: time.Now().Add(AssistantDelay)})
	if err != nil {
		return fmt.Errorf("schedule assistant reply: %w", err)
	}
	return nil
}
