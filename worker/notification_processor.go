package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/willowyoga/studiobooking/model"
	"github.com/willowyoga/studiobooking/repository"
	"github.com/willowyoga/studiobooking/service"
)

// retryBackoff is the pause between delivery attempts for one message
const retryBackoff = 2 * time.Second

type NotificationProcessor struct {
	repo        repository.NotificationRepository
	mailer      service.EmailProvider
	consumer    *kafka.Reader
	maxAttempts int

	// Worker pool for managing goroutines
	workerPool chan chan kafka.Message
	workers    []*NotificationWorker

	// Metrics
	processedCount int64
	activeWorkers  int64
}

type NotificationWorker struct {
	id         int
	processor  *NotificationProcessor
	jobChannel chan kafka.Message
	workerPool chan chan kafka.Message
	quit       chan bool
}

func NewNotificationProcessor(
	repo repository.NotificationRepository,
	mailer service.EmailProvider,
	consumer *kafka.Reader,
	maxWorkers int,
	maxAttempts int,
) *NotificationProcessor {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	processor := &NotificationProcessor{
		repo:        repo,
		mailer:      mailer,
		consumer:    consumer,
		maxAttempts: maxAttempts,
		workerPool:  make(chan chan kafka.Message, maxWorkers),
		workers:     make([]*NotificationWorker, maxWorkers),
	}

	for i := 0; i < maxWorkers; i++ {
		worker := &NotificationWorker{
			id:         i,
			processor:  processor,
			jobChannel: make(chan kafka.Message),
			workerPool: processor.workerPool,
			quit:       make(chan bool),
		}
		processor.workers[i] = worker
	}

	return processor
}

// Start begins consuming notification messages from Kafka
func (p *NotificationProcessor) Start(ctx context.Context) error {
	log.Printf("Starting notification processor with %d workers...", len(p.workers))

	for _, worker := range p.workers {
		worker.start()
	}

	go p.reportMetrics(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("Notification processor shutting down...")
			p.shutdown()
			return ctx.Err()
		default:
			msg, err := p.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				log.Printf("Error reading message: %v", err)
				continue
			}

			// Dispatch to worker pool (blocks if all workers busy)
			select {
			case jobChannel := <-p.workerPool:
				select {
				case jobChannel <- msg:
					// Successfully dispatched
				case <-ctx.Done():
					return ctx.Err()
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (w *NotificationWorker) start() {
	go func() {
		for {
			// Register this worker in the pool
			w.workerPool <- w.jobChannel

			select {
			case job := <-w.jobChannel:
				atomic.AddInt64(&w.processor.activeWorkers, 1)

				if err := w.processor.processNotification(job); err != nil {
					log.Printf("Worker %d error processing notification: %v", w.id, err)
				}

				atomic.AddInt64(&w.processor.processedCount, 1)
				atomic.AddInt64(&w.processor.activeWorkers, -1)

			case <-w.quit:
				log.Printf("Worker %d shutting down", w.id)
				return
			}
		}
	}()
}

func (w *NotificationWorker) stop() {
	w.quit <- true
}

// shutdown gracefully stops all workers
func (p *NotificationProcessor) shutdown() {
	for _, worker := range p.workers {
		worker.stop()
	}

	// Wait for active workers to finish (with timeout)
	timeout := time.After(30 * time.Second)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			log.Println("Shutdown timeout reached, forcing exit")
			return
		case <-ticker.C:
			if atomic.LoadInt64(&p.activeWorkers) == 0 {
				log.Println("All workers finished gracefully")
				return
			}
		}
	}
}

// reportMetrics logs throughput counters
func (p *NotificationProcessor) reportMetrics(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			processed := atomic.LoadInt64(&p.processedCount)
			active := atomic.LoadInt64(&p.activeWorkers)
			log.Printf("Notification Processor Metrics - Processed: %d, Active Workers: %d",
				processed, active)
		}
	}
}

// processNotification delivers one queued email with bounded retries and
// records the outcome against the notification row
func (p *NotificationProcessor) processNotification(msg kafka.Message) error {
	var message model.NotificationMessage
	if err := json.Unmarshal(msg.Value, &message); err != nil {
		return fmt.Errorf("failed to unmarshal notification message: %w", err)
	}

	log.Printf("Processing notification %s (%s) for %s",
		message.NotificationID, message.Type, message.RecipientEmail)

	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		lastErr = p.mailer.SendEmail(message.RecipientEmail, message.Subject, message.Body)
		if lastErr == nil {
			if err := p.repo.MarkNotificationSent(message.NotificationID, time.Now()); err != nil {
				log.Printf("Failed to mark notification %s sent: %v", message.NotificationID, err)
			}
			return nil
		}

		log.Printf("Delivery attempt %d/%d failed for notification %s: %v",
			attempt, p.maxAttempts, message.NotificationID, lastErr)
		if attempt < p.maxAttempts {
			time.Sleep(retryBackoff)
		}
	}

	if err := p.repo.MarkNotificationFailed(message.NotificationID, p.maxAttempts, lastErr.Error()); err != nil {
		log.Printf("Failed to mark notification %s failed: %v", message.NotificationID, err)
	}

	return fmt.Errorf("delivery failed after %d attempts: %w", p.maxAttempts, lastErr)
}
