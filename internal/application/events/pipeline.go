package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/finpal/backend/internal/application/alerts"
	"github.com/finpal/backend/internal/application/gamification"
	"github.com/finpal/backend/internal/domain"
)

// XP awarded per financial event.
const (
	XPPerTransaction = 10
	XPPerBudget      = 5
)

const eventTimeout = 30 * time.Second

// TransactionCreated is emitted after a transaction is persisted.
type TransactionCreated struct {
	UserID   string
	Amount   float64
	Category string
	Type     string
}

// BudgetCreated is emitted after a budget is persisted.
type BudgetCreated struct {
	UserID string
}

// Pipeline reacts to financial events: security and budget alerts, XP and
// achievements. Events are processed off the request path by a single
// background worker; the whole pipeline is a best-effort side channel and
// never surfaces errors to the triggering request.
type Pipeline struct {
	alerts alerts.Service
	gamify gamification.Service

	queue chan func(ctx context.Context)
	wg    sync.WaitGroup
	once  sync.Once
}

func NewPipeline(alertSvc alerts.Service, gamifySvc gamification.Service, queueSize int) *Pipeline {
	if queueSize <= 0 {
		queueSize = 256
	}
	p := &Pipeline{
		alerts: alertSvc,
		gamify: gamifySvc,
		queue:  make(chan func(ctx context.Context), queueSize),
	}
	p.wg.Add(1)
	go p.worker()
	return p
}

func (p *Pipeline) worker() {
	defer p.wg.Done()
	for job := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
		job(ctx)
		cancel()
	}
}

// Close stops accepting events and waits for queued ones to drain.
func (p *Pipeline) Close() {
	p.once.Do(func() { close(p.queue) })
	p.wg.Wait()
}

// TransactionCreated enqueues the event. When the queue is full the event is
// dropped with a log line rather than blocking the request.
func (p *Pipeline) TransactionCreated(ev TransactionCreated) {
	p.enqueue(func(ctx context.Context) { p.handleTransactionCreated(ctx, ev) })
}

// BudgetCreated enqueues the event.
func (p *Pipeline) BudgetCreated(ev BudgetCreated) {
	p.enqueue(func(ctx context.Context) { p.handleBudgetCreated(ctx, ev) })
}

func (p *Pipeline) enqueue(job func(ctx context.Context)) {
	select {
	case p.queue <- job:
	default:
		slog.Warn("event queue full, dropping event")
	}
}

func (p *Pipeline) handleTransactionCreated(ctx context.Context, ev TransactionCreated) {
	if ev.Type == domain.TxExpense {
		runStep("large_transaction", func() {
			p.alerts.CheckLargeTransaction(ctx, ev.UserID, ev.Amount, ev.Category)
		})
		runStep("budget_threshold", func() {
			p.alerts.CheckBudget(ctx, ev.UserID, ev.Category)
		})
	}
	runStep("gamification", func() {
		p.gamify.AwardXPAndCheckAchievements(ctx, ev.UserID, XPPerTransaction)
	})
}

func (p *Pipeline) handleBudgetCreated(ctx context.Context, ev BudgetCreated) {
	runStep("gamification", func() {
		p.gamify.AwardXPAndCheckAchievements(ctx, ev.UserID, XPPerBudget)
	})
}

// runStep isolates one watcher: a panic in one step must not stop the rest
// of the pipeline, let alone the process.
func runStep(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event step panicked", "step", name, "panic", r)
		}
	}()
	fn()
}
