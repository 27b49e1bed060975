package payment

import (
	"context"
	"sync"
	"time"

	"github.com/Mayckon02/shapebot-ai/pkg/logger"
)

// StatusChecker is the slice of the gateway client the watcher needs.
type StatusChecker interface {
	GetPaymentStatus(ctx context.Context, id string) (*PixPayment, error)
}

// Callbacks receive the outcome of a watched charge. OnFailed gets the
// gateway status, or "timeout" when the attempt budget runs out.
type Callbacks struct {
	OnApproved func(payment *PixPayment)
	OnFailed   func(status string)
}

type Watcher struct {
	checker     StatusChecker
	interval    time.Duration
	maxAttempts int
	log         *logger.Logger
}

func NewWatcher(checker StatusChecker, interval time.Duration, maxAttempts int, log *logger.Logger) *Watcher {
	return &Watcher{
		checker:     checker,
		interval:    interval,
		maxAttempts: maxAttempts,
		log:         log,
	}
}

// Task is a handle on one polling loop. Stop is idempotent and returns after
// the loop has exited.
type Task struct {
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

func (t *Task) Stop() {
	t.stopOnce.Do(t.cancel)
	<-t.done
}

// Start polls the gateway until the charge reaches a terminal status, the
// attempt budget is spent, or the task is stopped. Callbacks run on the
// polling goroutine.
func (w *Watcher) Start(ctx context.Context, gatewayID string, callbacks Callbacks) *Task {
	ctx, cancel := context.WithCancel(ctx)
	task := &Task{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(task.done)
		defer cancel()

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for attempt := 1; attempt <= w.maxAttempts; attempt++ {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			payment, err := w.checker.GetPaymentStatus(ctx, gatewayID)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				w.log.Warnf("payment status check failed for %s: %v", gatewayID, err)
				continue
			}

			switch payment.Status {
			case GatewayApproved:
				callbacks.OnApproved(payment)
				return
			case GatewayRejected, GatewayExpired:
				callbacks.OnFailed(payment.Status)
				return
			}
		}

		w.log.Warnf("payment %s still pending after %d checks", gatewayID, w.maxAttempts)
		callbacks.OnFailed("timeout")
	}()

	return task
}
