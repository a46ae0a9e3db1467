package pile

import (
	"context"
	"log"
	"sync"
	"time"
)

// How often a lagging step loop may complain.
const lagWarningInterval = time.Second

type State int

const (
	Uninitialized State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

type handleOptions struct {
	config Config
	seed   int64
	manual bool
	logger *log.Logger
}

type HandleOption func(*handleOptions)

// WithConfig replaces DefaultConfig.
func WithConfig(cfg Config) HandleOption {
	return func(o *handleOptions) {
		o.config = cfg
	}
}

// WithViewport overrides the configured viewport size.
func WithViewport(width, height float64) HandleOption {
	return func(o *handleOptions) {
		o.config.Width = width
		o.config.Height = height
	}
}

// WithSeed makes spawning reproducible.
func WithSeed(seed int64) HandleOption {
	return func(o *handleOptions) {
		o.seed = seed
	}
}

// WithManualStepping starts no step loop; the caller drives time with Advance.
func WithManualStepping() HandleOption {
	return func(o *handleOptions) {
		o.manual = true
	}
}

// WithLogger sets the logger. Nil means log.Default().
func WithLogger(logger *log.Logger) HandleOption {
	return func(o *handleOptions) {
		o.logger = logger
	}
}

// Handle owns a running world: the step loop, the spawner and the lock that keeps
// them apart. All methods are safe for concurrent use.
type Handle struct {
	mu    sync.Mutex
	state State

	world   *World
	spawner *Spawner

	tick        time.Duration
	maxFrame    time.Duration
	accumulator time.Duration

	logger  *log.Logger
	lastLag time.Time

	cancel   context.CancelFunc
	detach   func() bool
	done     chan struct{}
	stopOnce sync.Once
}

// Start builds a world sized to the configured viewport and starts stepping it on a fixed tick.
// Cancelling ctx has the same effect as Stop.
func Start(ctx context.Context, opts ...HandleOption) (*Handle, error) {
	o := handleOptions{
		config: DefaultConfig(),
		seed:   time.Now().UnixNano(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.Default()
	}

	cfg := o.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	world, err := NewWorld(cfg.Width, cfg.Height, cfg.Physics)
	if err != nil {
		return nil, err
	}
	spawner, err := NewSpawner(cfg.Catalog(), cfg.Spawn, o.seed)
	if err != nil {
		return nil, err
	}

	h := &Handle{
		state:    Running,
		world:    world,
		spawner:  spawner,
		tick:     cfg.Physics.Tick,
		maxFrame: cfg.Physics.MaxFrameTime,
		logger:   o.logger,
		done:     make(chan struct{}),
	}

	if o.manual {
		close(h.done)
		h.detach = context.AfterFunc(ctx, h.Stop)
		h.logger.Printf("[pile] started %vx%v, manual stepping", cfg.Width, cfg.Height)
		return h, nil
	}

	ctx, h.cancel = context.WithCancel(ctx)
	h.logger.Printf("[pile] started %vx%v, tick %v", cfg.Width, cfg.Height, h.tick)
	go h.loop(ctx)
	return h, nil
}

func (h *Handle) loop(ctx context.Context) {
	defer close(h.done)

	ticker := time.NewTicker(h.tick)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			h.release()
			return
		case now := <-ticker.C:
			h.Advance(now.Sub(last))
			last = now
		}
	}
}

// Stop halts the step loop, waits for it to exit and drops every body. It is safe to call more than once.
func (h *Handle) Stop() {
	h.stopOnce.Do(func() {
		if h.detach != nil {
			h.detach()
		}
		if h.cancel != nil {
			h.cancel()
		}
		<-h.done
		h.release()
	})
}

func (h *Handle) release() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state == Stopped {
		return
	}
	h.state = Stopped
	steps := h.world.Steps()
	h.world.Clear()
	h.world = nil
	h.logger.Printf("[pile] stopped after %d steps", steps)
}

func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Advance feeds d of real time to the world, which steps in whole ticks and keeps the remainder.
func (h *Handle) Advance(d time.Duration) {
	if d <= 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != Running {
		return
	}

	if d > h.maxFrame {
		if now := time.Now(); now.Sub(h.lastLag) >= lagWarningInterval {
			h.lastLag = now
			h.logger.Printf("[pile] WARNING: frame took %v, simulating only %v", d, h.maxFrame)
		}
		d = h.maxFrame
	}

	h.accumulator += d
	dt := h.tick.Seconds()
	for h.accumulator >= h.tick {
		h.world.Step(dt)
		h.accumulator -= h.tick
	}
}

// Spawn drops a random tile above the viewport and returns its id.
func (h *Handle) Spawn() (ID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != Running {
		return 0, ErrStopped
	}
	body, err := h.spawner.Spawn(h.world)
	if err != nil {
		return 0, err
	}
	return body.ID(), nil
}

// Reset removes every tile. The next snapshot is empty.
func (h *Handle) Reset() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != Running {
		return ErrStopped
	}
	h.world.Clear()
	return nil
}

// Resize moves the floor and walls to fit a new viewport.
func (h *Handle) Resize(width, height float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != Running {
		return ErrStopped
	}
	return h.world.Resize(width, height)
}

// Snapshot returns the current pose of every tile, or an empty snapshot once stopped.
func (h *Handle) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != Running {
		return Snapshot{}
	}
	return Project(h.world)
}

// Stats summarises the running world. It is zero once stopped.
func (h *Handle) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != Running {
		return Stats{}
	}
	return h.world.Stats()
}

func (h *Handle) Tick() time.Duration {
	return h.tick
}
