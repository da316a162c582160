package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
)

// Config holds in-process notifier configuration
type Config struct {
	WorkerCount     int           // default: 2
	QueueSize       int           // default: 1000
	DeliveryTimeout time.Duration // default: 30 seconds
}

// QueueNotifier delivers notifications from a buffered queue on background
// workers. It is used when no Redis-backed queue is configured.
type QueueNotifier struct {
	deliverer notification.Deliverer
	config    Config

	queue   chan notification.Message
	wg      sync.WaitGroup
	stopCh  chan struct{}
	stopped bool
	mu      sync.RWMutex
}

// NewQueueNotifier creates a notifier and starts its workers
func NewQueueNotifier(deliverer notification.Deliverer, cfg Config) *QueueNotifier {
	// Set defaults
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}
	if cfg.DeliveryTimeout == 0 {
		cfg.DeliveryTimeout = 30 * time.Second
	}

	n := &QueueNotifier{
		deliverer: deliverer,
		config:    cfg,
		queue:     make(chan notification.Message, cfg.QueueSize),
		stopCh:    make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		n.wg.Add(1)
		go n.worker(i)
	}

	slog.Info("Notification queue started", "workers", cfg.WorkerCount, "queue_size", cfg.QueueSize)
	return n
}

func (n *QueueNotifier) worker(id int) {
	defer n.wg.Done()

	for {
		select {
		case msg := <-n.queue:
			n.deliver(id, msg)
		case <-n.stopCh:
			// Drain what is already queued before exiting.
			for {
				select {
				case msg := <-n.queue:
					n.deliver(id, msg)
				default:
					return
				}
			}
		}
	}
}

func (n *QueueNotifier) deliver(worker int, msg notification.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), n.config.DeliveryTimeout)
	defer cancel()

	if err := n.deliverer.Deliver(ctx, msg); err != nil {
		slog.Error("Failed to deliver notification", "worker", worker, "kind", msg.Kind, "employee_id", msg.Payload.EmployeeID, "error", err)
	}
}

// Notify implements notification.Notifier. When the queue is full the
// message is delivered on the caller's goroutine.
func (n *QueueNotifier) Notify(ctx context.Context, kind notification.Kind, email string, payload notification.Payload) error {
	msg := notification.Message{Kind: kind, Email: email, Payload: payload}
	if err := validateMessage(msg); err != nil {
		return err
	}

	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.stopped {
		return notification.ErrNotifierStopped
	}

	select {
	case n.queue <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		slog.Warn("Notification queue full, delivering directly", "kind", kind)
		return n.deliverer.Deliver(ctx, msg)
	}
}

// Stop drains queued messages and waits for workers to exit
func (n *QueueNotifier) Stop() {
	n.mu.Lock()
	if n.stopped {
		n.mu.Unlock()
		return
	}
	n.stopped = true
	close(n.stopCh)
	n.mu.Unlock()

	n.wg.Wait()
	slog.Info("Notification queue stopped")
}
