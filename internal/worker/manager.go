package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"foodgram/internal/queue"
)

const (
	DefaultWorkerCount  = 2
	DefaultBatchSize    = 10
	DefaultBlockTimeout = 5 * time.Second

	// DefaultReclaimIdle is how long an entry may sit unacknowledged before
	// another worker takes it over.
	DefaultReclaimIdle = time.Minute
)

// ManagerConfig tunes the consumer loop. Zero values fall back to defaults.
type ManagerConfig struct {
	Stream       string
	Group        string
	WorkerCount  int
	BatchSize    int64
	BlockTimeout time.Duration
	ReclaimIdle  time.Duration
}

func (c *ManagerConfig) applyDefaults() {
	if c.Stream == "" {
		c.Stream = queue.StreamEngagement
	}
	if c.Group == "" {
		c.Group = queue.ConsumerGroupRanking
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = DefaultWorkerCount
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.BlockTimeout <= 0 {
		c.BlockTimeout = DefaultBlockTimeout
	}
	if c.ReclaimIdle <= 0 {
		c.ReclaimIdle = DefaultReclaimIdle
	}
}

// Manager runs a pool of group consumers feeding the Handler.
type Manager struct {
	consumer queue.Consumer
	handler  *Handler
	cfg      ManagerConfig

	wg       sync.WaitGroup
	cancel   context.CancelFunc
	stopOnce sync.Once
}

func NewManager(consumer queue.Consumer, handler *Handler, cfg ManagerConfig) *Manager {
	cfg.applyDefaults()
	return &Manager{consumer: consumer, handler: handler, cfg: cfg}
}

// Start creates the consumer group and launches the workers. They run until
// ctx is cancelled or Stop is called.
func (m *Manager) Start(ctx context.Context) error {
	if err := m.consumer.EnsureGroup(ctx, m.cfg.Stream, m.cfg.Group); err != nil {
		return err
	}

	ctx, m.cancel = context.WithCancel(ctx)
	host, _ := os.Hostname()
	for i := 1; i <= m.cfg.WorkerCount; i++ {
		m.wg.Add(1)
		go m.run(ctx, fmt.Sprintf("%s-worker-%d", host, i))
	}

	log.Printf("[Manager] %d workers consuming stream=%s group=%s", m.cfg.WorkerCount, m.cfg.Stream, m.cfg.Group)
	return nil
}

// Stop cancels the workers and waits for in-flight batches. Safe to call more
// than once, and before Start.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		if m.cancel != nil {
			m.cancel()
		}
		m.wg.Wait()
		log.Printf("[Manager] Workers stopped")
	})
}

func (m *Manager) run(ctx context.Context, name string) {
	defer m.wg.Done()

	reclaim := time.NewTicker(m.cfg.ReclaimIdle)
	defer reclaim.Stop()

	// entries a crashed worker left behind
	m.reclaim(ctx, name)

	for ctx.Err() == nil {
		select {
		case <-reclaim.C:
			m.reclaim(ctx, name)
			continue
		default:
		}

		messages, err := m.consumer.Read(ctx, m.cfg.Stream, m.cfg.Group, name, m.cfg.BatchSize, m.cfg.BlockTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			log.Printf("[%s] Read failed: %v", name, err)
			sleep(ctx, time.Second)
			continue
		}
		m.process(ctx, name, messages)
	}
}

func (m *Manager) reclaim(ctx context.Context, name string) {
	messages, err := m.consumer.Reclaim(ctx, m.cfg.Stream, m.cfg.Group, name, m.cfg.ReclaimIdle, m.cfg.BatchSize)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("[%s] Reclaim failed: %v", name, err)
		}
		return
	}
	m.process(ctx, name, messages)
}

// process handles a batch and acknowledges all of it, undecodable entries
// included. A failed invalidation is not retried: the cache TTL bounds staleness.
func (m *Manager) process(ctx context.Context, name string, messages []queue.Message) {
	if len(messages) == 0 {
		return
	}

	ids := make([]string, 0, len(messages))
	events := make([]queue.EngagementEvent, 0, len(messages))
	for _, msg := range messages {
		ids = append(ids, msg.ID)
		if msg.Err != nil {
			log.Printf("[%s] Dropping undecodable entry %s: %v", name, msg.ID, msg.Err)
			continue
		}
		events = append(events, msg.Event)
	}

	if err := m.handler.HandleBatch(ctx, events); err != nil {
		log.Printf("[%s] Batch of %d failed: %v", name, len(events), err)
	}
	if err := m.consumer.Ack(ctx, m.cfg.Stream, m.cfg.Group, ids...); err != nil {
		log.Printf("[%s] Ack failed: %v", name, err)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
