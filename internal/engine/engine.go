// Package engine schedules and runs the autonomy cycles: deciding what each
// bot does next, mutating its economy, and growing the alliance network.
package engine

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agenthands/hive/internal/bot"
	"github.com/agenthands/hive/internal/gateway"
	"github.com/agenthands/hive/internal/store"
)

// Repository is the engine's view of persistent state. *store.Store satisfies
// it; tests may substitute their own.
type Repository interface {
	GetBot(ctx context.Context, id string) (*bot.Bot, error)
	SaveBot(ctx context.Context, b *bot.Bot) error
	ListEligibleBots(ctx context.Context, f store.EligibleFilter) ([]*bot.Bot, error)
	ListRestorableBots(ctx context.Context) ([]*bot.Bot, error)
	ListDecayableBots(ctx context.Context) ([]*bot.Bot, error)
	ListAllianceSeekers(ctx context.Context) ([]*bot.Bot, error)
	ListAllianceCandidates(ctx context.Context, district bot.District, exclude string, limit int) ([]*bot.Bot, error)
	CountPostsSince(ctx context.Context, botID string, since time.Time) (int, error)
	RecentCommentTarget(ctx context.Context, excludeBotID string, since time.Time) (*bot.Post, error)
	Credits(ctx context.Context, accountID string) (int, error)
	CommitAction(ctx context.Context, b *bot.Bot, p *bot.Post, debit int) error
	CommitAlliance(ctx context.Context, a, b *bot.Bot, status bot.AllianceStatus, at time.Time) error
	AllianceExists(ctx context.Context, botA, botB string) (bool, error)
	Stats(ctx context.Context, now time.Time) (store.Aggregate, error)
}

// AllianceMirror projects formed alliances into an external graph store.
type AllianceMirror interface {
	RecordAlliance(ctx context.Context, a, b *bot.Bot, status bot.AllianceStatus, score float64, at time.Time) error
}

// Options wires an Engine. Zero values get sensible defaults; Repo and
// Gateway are required.
type Options struct {
	Repo    Repository
	Gateway gateway.Client
	Mirror  AllianceMirror // optional

	Now  func() time.Time
	Rand bot.Rand

	Workers        int
	GatewayTimeout time.Duration

	ProcessingInterval time.Duration
	RestoreInterval    time.Duration
	DecayInterval      time.Duration
	AllianceInterval   time.Duration
}

// Engine owns the four autonomy cycles. It is an explicit instance with
// injected dependencies; multiple isolated engines can coexist in one
// process.
type Engine struct {
	repo    Repository
	gateway gateway.Client
	mirror  AllianceMirror

	now  func() time.Time
	rng  bot.Rand
	rngM sync.Mutex

	workers        int
	gatewayTimeout time.Duration
	intervals      map[string]time.Duration

	// Per-cycle guards: a cycle still running when its ticker fires again is
	// skipped, not queued.
	guards map[string]*atomic.Bool

	// Per-bot locks serialize mutations when two cycles touch the same bot.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

const (
	cycleProcessing = "processing"
	cycleRestore    = "restore"
	cycleDecay      = "decay"
	cycleAlliance   = "alliance"
)

// New builds an engine from the options.
func New(opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Workers <= 0 {
		opts.Workers = 8
	}
	if opts.GatewayTimeout <= 0 {
		opts.GatewayTimeout = 30 * time.Second
	}
	if opts.ProcessingInterval <= 0 {
		opts.ProcessingInterval = 5 * time.Minute
	}
	if opts.RestoreInterval <= 0 {
		opts.RestoreInterval = time.Hour
	}
	if opts.DecayInterval <= 0 {
		opts.DecayInterval = 24 * time.Hour
	}
	if opts.AllianceInterval <= 0 {
		opts.AllianceInterval = 6 * time.Hour
	}

	e := &Engine{
		repo:           opts.Repo,
		gateway:        opts.Gateway,
		mirror:         opts.Mirror,
		now:            opts.Now,
		rng:            opts.Rand,
		workers:        opts.Workers,
		gatewayTimeout: opts.GatewayTimeout,
		intervals: map[string]time.Duration{
			cycleProcessing: opts.ProcessingInterval,
			cycleRestore:    opts.RestoreInterval,
			cycleDecay:      opts.DecayInterval,
			cycleAlliance:   opts.AllianceInterval,
		},
		guards: map[string]*atomic.Bool{
			cycleProcessing: {},
			cycleRestore:    {},
			cycleDecay:      {},
			cycleAlliance:   {},
		},
		locks:  make(map[string]*sync.Mutex),
		stopCh: make(chan struct{}),
	}
	return e
}

// Start launches the four cycle timers. Call Stop to drain and shut down.
func (e *Engine) Start() {
	e.runCycleLoop(cycleProcessing, func(ctx context.Context) { e.RunProcessingCycle(ctx) })
	e.runCycleLoop(cycleRestore, func(ctx context.Context) { e.RunRestoreCycle(ctx) })
	e.runCycleLoop(cycleDecay, func(ctx context.Context) { e.RunDecayCycle(ctx) })
	e.runCycleLoop(cycleAlliance, func(ctx context.Context) { e.RunAllianceCycle(ctx) })
	log.Printf("[engine] started: processing=%s restore=%s decay=%s alliance=%s",
		e.intervals[cycleProcessing], e.intervals[cycleRestore], e.intervals[cycleDecay], e.intervals[cycleAlliance])
}

// Stop prevents new cycle firings and waits for in-flight work to finish.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stopCh) })
	e.wg.Wait()
	log.Printf("[engine] stopped")
}

func (e *Engine) runCycleLoop(name string, fire func(ctx context.Context)) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ticker := time.NewTicker(e.intervals[name])
		defer ticker.Stop()
		for {
			select {
			case <-e.stopCh:
				return
			case <-ticker.C:
				e.fire(name, fire)
			}
		}
	}()
}

// fire runs one cycle firing unless the same cycle is still running.
// In-flight work is tracked so Stop can drain it; the work context is not
// canceled on Stop, the gateway timeout bounds it.
func (e *Engine) fire(name string, fn func(ctx context.Context)) {
	guard := e.guards[name]
	if !guard.CompareAndSwap(false, true) {
		log.Printf("[cycle] %s still running, skipping this firing", name)
		return
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer guard.Store(false)
		fn(context.Background())
	}()
}

// draw takes one uniform sample. The shared source is guarded because cycles
// run concurrently.
func (e *Engine) draw() float64 {
	e.rngM.Lock()
	defer e.rngM.Unlock()
	return e.rng.Float64()
}

type lockedDraw struct{ e *Engine }

func (l lockedDraw) Float64() float64 { return l.e.draw() }

func (e *Engine) botLock(id string) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()
	m, ok := e.locks[id]
	if !ok {
		m = &sync.Mutex{}
		e.locks[id] = m
	}
	return m
}

// Stats exposes aggregate counts for external dashboards.
func (e *Engine) Stats(ctx context.Context) (store.Aggregate, error) {
	return e.repo.Stats(ctx, e.now())
}
