package dispatch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/mossvale/gardenbell/internal/metrics"
	"github.com/mossvale/gardenbell/internal/policy"
	"github.com/mossvale/gardenbell/internal/registry"
)

// Summary reports what happened to one dispatch batch.
type Summary struct {
	Sent          int
	Failed        int
	ComposeErrors int
}

// Dispatcher composes and delivers approved intents.
type Dispatcher struct {
	composer *Composer
	gateway  Gateway
	workers  int
	logger   *slog.Logger
}

// New creates a dispatcher. workers bounds per-device parallelism.
func New(composer *Composer, gateway Gateway, workers int, logger *slog.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{composer: composer, gateway: gateway, workers: workers, logger: logger}
}

// Dispatch sends every intent in the batch. Devices are independent:
// a failed send is logged and counted, never retried within the cycle,
// and never blocks the rest of the batch. A compose failure aborts only
// its own intent so no garbled payload ever reaches a device.
//
// onComposed, when non-nil, runs once per successfully composed intent
// before delivery. The engine uses it to record dedup entries; compose
// failures are deliberately not recorded so a later cycle can retry the
// same signature.
func (d *Dispatcher) Dispatch(ctx context.Context, intents []policy.Intent, onComposed func(policy.Intent)) Summary {
	if len(intents) == 0 {
		return Summary{}
	}

	workers := d.workers
	if workers > len(intents) {
		workers = len(intents)
	}

	ch := make(chan policy.Intent, len(intents))
	for _, in := range intents {
		ch <- in
	}
	close(ch)

	var mu sync.Mutex
	var sum Summary
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for in := range ch {
				outcome := d.send(ctx, in, onComposed)
				mu.Lock()
				sum.Sent += outcome.Sent
				sum.Failed += outcome.Failed
				sum.ComposeErrors += outcome.ComposeErrors
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return sum
}

func (d *Dispatcher) send(ctx context.Context, in policy.Intent, onComposed func(policy.Intent)) Summary {
	dispatchID := uuid.NewString()

	payload, err := d.composer.Compose(ctx, in)
	if err != nil {
		d.logger.Error("compose failed, intent dropped",
			"dispatch_id", dispatchID,
			"kind", in.Kind,
			"device", registry.RedactToken(in.Token),
			"error", err)
		metrics.NotificationsSent.WithLabelValues("compose_error").Inc()
		return Summary{ComposeErrors: 1}
	}
	if onComposed != nil {
		onComposed(in)
	}

	res, err := d.gateway.Send(ctx, payload, in.Token)
	if err != nil || res.Failed > 0 {
		d.logger.Warn("push delivery failed",
			"dispatch_id", dispatchID,
			"kind", in.Kind,
			"device", registry.RedactToken(in.Token),
			"reason", res.Reason,
			"error", err)
		metrics.NotificationsSent.WithLabelValues("failed").Inc()
		return Summary{Failed: 1}
	}

	metrics.NotificationsSent.WithLabelValues("sent").Inc()
	return Summary{Sent: 1}
}
