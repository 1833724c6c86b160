package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mercatto/catalog-sync/internal/dto"
	kafkapc "github.com/mercatto/catalog-sync/internal/infrastructure/kafka"
	"github.com/mercatto/catalog-sync/internal/usecase"
	"github.com/mercatto/catalog-sync/pkg/logger"
	"github.com/mercatto/catalog-sync/pkg/types/errs"
	"github.com/segmentio/kafka-go"
)

// Controller consumes the typed work events and fans them out to a fixed
// worker pool. Messages commit only after successful handling, so a crashed
// worker replays its event; every handler is idempotent to absorb that.
type Controller struct {
	sync   usecase.SyncUseCase
	fork   usecase.ForkUseCase
	ec     *kafkapc.EventConsumer
	logger logger.Interface

	commitTimeout  time.Duration
	processTimeout time.Duration
	batchTimeout   time.Duration

	workers int
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	started atomic.Bool
}

func New(
	syncUC usecase.SyncUseCase,
	forkUC usecase.ForkUseCase,
	ec *kafkapc.EventConsumer,
	l logger.Interface,
	commitTimeout time.Duration,
	processTimeout time.Duration,
	batchTimeout time.Duration,
	workers int,
) *Controller {
	return &Controller{
		sync:           syncUC,
		fork:           forkUC,
		ec:             ec,
		logger:         l,
		commitTimeout:  commitTimeout,
		processTimeout: processTimeout,
		batchTimeout:   batchTimeout,
		workers:        workers,
	}
}

func (c *Controller) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return fmt.Errorf("KafkaController - Start - controller already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)

	tasks := make(chan kafka.Message, c.workers*2)

	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker(tasks)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(tasks)

		for {
			select {
			case <-c.ctx.Done():
				return
			default:
				event, err := c.ec.ReadEvent(c.ctx)
				if err != nil {
					if !errors.Is(err, context.Canceled) {
						c.logger.Error(err, "KafkaController - Start - c.ec.ReadEvent")
					}
					continue
				}

				select {
				case tasks <- event:
				case <-c.ctx.Done():
					return
				}
			}
		}
	}()

	return nil
}

func (c *Controller) processEvent(event kafka.Message) error {
	switch kafkapc.EventTypeOf(event) {
	case dto.EventSyncRequested:
		var payload dto.SyncRequested
		if err := json.Unmarshal(event.Value, &payload); err != nil {
			return fmt.Errorf("KafkaController - processEvent - json.Unmarshal: %w", err)
		}

		// backlog drains run far longer than single-object work
		ctx, cancel := context.WithTimeout(c.ctx, c.batchTimeout)
		defer cancel()

		return c.sync.ProcessBacklog(ctx, payload)

	case dto.EventForkRequested:
		var payload dto.ForkRequested
		if err := json.Unmarshal(event.Value, &payload); err != nil {
			return fmt.Errorf("KafkaController - processEvent - json.Unmarshal: %w", err)
		}

		ctx, cancel := context.WithTimeout(c.ctx, c.processTimeout)
		defer cancel()

		_, _, err := c.fork.ForkImage(ctx, payload)
		return err

	case dto.EventBrandCopyRequested:
		var payload dto.BrandCopyRequested
		if err := json.Unmarshal(event.Value, &payload); err != nil {
			return fmt.Errorf("KafkaController - processEvent - json.Unmarshal: %w", err)
		}

		ctx, cancel := context.WithTimeout(c.ctx, c.processTimeout)
		defer cancel()

		destPath, publicURL, err := c.fork.CopyBrandAsset(ctx, payload)
		if err == nil {
			c.logger.Info("brand copy: %s available at %s (%s)", payload.BrandID, destPath, publicURL)
		}
		return err

	default:
		return fmt.Errorf("KafkaController - processEvent: %w", errs.ErrUnknownEvent)
	}
}

func (c *Controller) worker(tasks <-chan kafka.Message) {
	defer c.wg.Done()

	for event := range tasks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error(fmt.Errorf("panic %v", r), "KafkaController - worker - panic")
				}
			}()

			err := c.processEvent(event)
			if err != nil && !errors.Is(err, errs.ErrUnknownEvent) {
				c.logger.Error(err, "KafkaController - worker - c.processEvent")

				return
			}
			if errors.Is(err, errs.ErrUnknownEvent) {
				// commit anyway: replaying an unknown event cannot help
				c.logger.Warn("KafkaController - worker - skipping unknown event type")
			}

			commitCtx, commitCancel := context.WithTimeout(c.ctx, c.commitTimeout)
			err = c.ec.CommitEvent(commitCtx, event)
			commitCancel()
			if err != nil {
				c.logger.Error(err, "KafkaController - worker - c.ec.CommitEvent")
			}
		}()
	}
}

func (c *Controller) Shutdown(ctx context.Context) error {
	if !c.started.Load() {
		return nil
	}

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})

	go func() {
		c.wg.Wait()
		c.ec.Close()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return nil
	}
}
