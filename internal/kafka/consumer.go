package kafka

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Handler returns nil only when the message may be committed.
type Handler func(ctx context.Context, m kafka.Message) error

type committer interface {
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

const (
	retryBase = 200 * time.Millisecond
	retryMax  = 10 * time.Second
)

// Consumer fans messages out to workers by partition, so each partition is
// handled in order and a failed message holds back later offsets until it
// succeeds or the consumer stops.
type Consumer struct {
	r       *kafka.Reader
	commit  committer
	workers int
	backoff time.Duration
	log     *slog.Logger
}

func NewConsumer(brokers []string, group string, topics []string, workers int, log *slog.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		GroupTopics:    topics,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{r: r, commit: r, workers: workers, backoff: retryBase, log: log.With("group", group)}
}

func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make([]chan kafka.Message, c.workers)
	var wg sync.WaitGroup
	for i := range jobs {
		jobs[i] = make(chan kafka.Message, 128)
		wg.Add(1)
		go func(in <-chan kafka.Message) {
			defer wg.Done()
			for m := range in {
				if !c.process(ctx, h, m) {
					return
				}
			}
		}(jobs[i])
	}
	defer wg.Wait()
	defer func() {
		for _, ch := range jobs {
			close(ch)
		}
	}()

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		select {
		case jobs[slot(m, c.workers)] <- m:
		case <-ctx.Done():
			return nil
		}
	}
}

func slot(m kafka.Message, workers int) int {
	return m.Partition % workers
}

// process retries h until it succeeds, then commits. It reports false once
// ctx is done; the message stays uncommitted and is redelivered later.
func (c *Consumer) process(ctx context.Context, h Handler, m kafka.Message) bool {
	wait := c.backoff
	for {
		err := h(ctx, m)
		if err == nil {
			break
		}
		c.log.Warn("handler failed", "topic", m.Topic, "partition", m.Partition, "offset", m.Offset, "err", err)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return false
		}
		if wait *= 2; wait > retryMax {
			wait = retryMax
		}
	}
	if err := c.commit.CommitMessages(ctx, m); err != nil {
		c.log.Warn("commit failed", "topic", m.Topic, "partition", m.Partition, "offset", m.Offset, "err", err)
		return ctx.Err() == nil
	}
	return true
}
