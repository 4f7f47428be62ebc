package services

import (
	"context"
	"sync"
	"time"

	"github.com/eunyuson/GRACE-sub002/application/ports"
	"github.com/eunyuson/GRACE-sub002/domain/core/entities"

	"go.uber.org/zap"
)

// CardOutbox settles card writes against the store. Mutations are
// optimistic: the in-memory card changes first, then the write is
// attempted here. A failed write does not roll the mutation back; the
// card stays dirty and the write is queued for retry with backoff
// until the store acknowledges it or attempts run out.
type CardOutbox struct {
	repo   ports.CardRepository
	logger *zap.Logger

	mu      sync.Mutex
	pending map[string]*pendingWrite

	// Configuration
	processingInterval time.Duration
	baseBackoff        time.Duration
	maxAttempts        int

	// Control channels
	stopChan    chan struct{}
	stoppedChan chan struct{}
}

type pendingWrite struct {
	card        *entities.ConceptCard
	attempts    int
	nextAttempt time.Time
	lastError   string
}

// NewCardOutbox creates a new card outbox
func NewCardOutbox(repo ports.CardRepository, logger *zap.Logger) *CardOutbox {
	return &CardOutbox{
		repo:               repo,
		logger:             logger,
		pending:            make(map[string]*pendingWrite),
		processingInterval: 5 * time.Second,
		baseBackoff:        2 * time.Second,
		maxAttempts:        5,
		stopChan:           make(chan struct{}),
		stoppedChan:        make(chan struct{}),
	}
}

// Save attempts to persist a card immediately and queues a retry on
// failure. The returned error is always nil for store failures; only
// the card's dirty flag tells callers the write has not settled.
func (o *CardOutbox) Save(ctx context.Context, card *entities.ConceptCard) error {
	if err := o.repo.Save(ctx, card); err != nil {
		o.logger.Warn("card write failed, queued for retry",
			zap.String("cardID", card.ID().String()),
			zap.Error(err),
		)
		o.enqueue(card, err.Error())
		return nil
	}

	o.settle(card)
	return nil
}

// PendingCount returns the number of writes awaiting acknowledgement
func (o *CardOutbox) PendingCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}

// Start begins the background retry loop
func (o *CardOutbox) Start(ctx context.Context) {
	o.logger.Info("Starting card outbox",
		zap.Duration("interval", o.processingInterval),
		zap.Int("maxAttempts", o.maxAttempts),
	)
	go o.processLoop(ctx)
}

// Stop gracefully stops the retry loop
func (o *CardOutbox) Stop() {
	close(o.stopChan)
	<-o.stoppedChan
	o.logger.Info("Card outbox stopped")
}

func (o *CardOutbox) processLoop(ctx context.Context) {
	defer close(o.stoppedChan)

	ticker := time.NewTicker(o.processingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-o.stopChan:
			return
		case <-ticker.C:
			o.RetryPending(ctx)
		}
	}
}

// RetryPending attempts every due write once. Exposed so tests and
// shutdown paths can drain the queue without waiting for the ticker.
func (o *CardOutbox) RetryPending(ctx context.Context) {
	now := time.Now()

	o.mu.Lock()
	due := make([]*pendingWrite, 0, len(o.pending))
	for _, w := range o.pending {
		if !w.nextAttempt.After(now) {
			due = append(due, w)
		}
	}
	o.mu.Unlock()

	for _, w := range due {
		if err := o.repo.Save(ctx, w.card); err != nil {
			o.recordFailure(w, err)
			continue
		}
		o.settle(w.card)
	}
}

func (o *CardOutbox) enqueue(card *entities.ConceptCard, reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	key := card.ID().String()
	w, exists := o.pending[key]
	if !exists {
		w = &pendingWrite{}
		o.pending[key] = w
	}
	// always retry the latest state of the card
	w.card = card
	w.attempts++
	w.lastError = reason
	w.nextAttempt = time.Now().Add(o.backoff(w.attempts))
}

func (o *CardOutbox) recordFailure(w *pendingWrite, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	w.attempts++
	w.lastError = err.Error()
	w.nextAttempt = time.Now().Add(o.backoff(w.attempts))

	if w.attempts >= o.maxAttempts {
		o.logger.Error("card write abandoned after max attempts",
			zap.String("cardID", w.card.ID().String()),
			zap.Int("attempts", w.attempts),
			zap.String("lastError", w.lastError),
		)
		delete(o.pending, w.card.ID().String())
		return
	}

	o.logger.Warn("card write retry failed",
		zap.String("cardID", w.card.ID().String()),
		zap.Int("attempts", w.attempts),
		zap.Error(err),
	)
}

func (o *CardOutbox) settle(card *entities.ConceptCard) {
	o.mu.Lock()
	delete(o.pending, card.ID().String())
	o.mu.Unlock()

	card.MarkClean()
	card.MarkEventsAsCommitted()
}

// backoff doubles per attempt: 2s, 4s, 8s, ...
func (o *CardOutbox) backoff(attempts int) time.Duration {
	d := o.baseBackoff
	for i := 1; i < attempts; i++ {
		d *= 2
	}
	return d
}
