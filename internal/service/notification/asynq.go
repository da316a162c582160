package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/hibiken/asynq"
)

const maxTaskRetry = 3

// AsynqNotifier enqueues notifications on Redis for cmd/worker to deliver.
type AsynqNotifier struct {
	client *asynq.Client
	queue  string
}

func NewAsynqNotifier(client *asynq.Client, queue string) *AsynqNotifier {
	if queue == "" {
		queue = "default"
	}
	return &AsynqNotifier{client: client, queue: queue}
}

// NewTask builds the asynq task for a message; the task type is the kind.
func NewTask(msg notification.Message) (*asynq.Task, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(string(msg.Kind), b), nil
}

// TaskID dedupes a kind per employee and date.
func TaskID(msg notification.Message) string {
	kind := strings.TrimPrefix(string(msg.Kind), "attendance:")
	return fmt.Sprintf("%s-%s-%s", kind, msg.Payload.EmployeeID, msg.Payload.Date)
}

// Notify implements notification.Notifier.
func (n *AsynqNotifier) Notify(ctx context.Context, kind notification.Kind, email string, payload notification.Payload) error {
	msg := notification.Message{Kind: kind, Email: email, Payload: payload}
	if err := validateMessage(msg); err != nil {
		return err
	}

	task, err := NewTask(msg)
	if err != nil {
		return fmt.Errorf("failed to build %s task: %w", kind, err)
	}

	info, err := n.client.EnqueueContext(ctx, task,
		asynq.TaskID(TaskID(msg)),
		asynq.MaxRetry(maxTaskRetry),
		asynq.Queue(n.queue),
	)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
			slog.Info("Notification already queued", "task_id", TaskID(msg))
			return nil
		}
		return fmt.Errorf("failed to enqueue %s task: %w", kind, err)
	}

	slog.Info("Enqueued notification task", "task_id", info.ID, "kind", kind, "queue", info.Queue)
	return nil
}

// HandleDelivery decodes a notification task and hands it to the deliverer.
func HandleDelivery(deliverer notification.Deliverer) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var msg notification.Message
		if err := json.Unmarshal(t.Payload(), &msg); err != nil {
			// A malformed payload will never succeed.
			return fmt.Errorf("decode %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
		}
		msg.Kind = notification.Kind(t.Type())

		if err := validateMessage(msg); err != nil {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return deliverer.Deliver(ctx, msg)
	}
}

// RegisterHandlers binds every notification kind on the worker mux.
func RegisterHandlers(mux *asynq.ServeMux, deliverer notification.Deliverer) {
	handler := HandleDelivery(deliverer)
	for _, kind := range notification.AllKinds() {
		mux.HandleFunc(string(kind), handler)
	}
}
