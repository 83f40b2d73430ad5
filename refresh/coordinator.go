// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package refresh

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/repodeck/apiclient"
	"github.com/xmidt-org/repodeck/cache"
	"github.com/xmidt-org/repodeck/model"
	"github.com/xmidt-org/repodeck/notify"
	"github.com/xmidt-org/repodeck/store"
	"go.uber.org/zap"
)

var (
	ErrNilMeasures        = errors.New("measures cannot be nil")
	ErrNoReaderProvided   = errors.New("no repository reader provided")
	ErrNoStoreProvided    = errors.New("no store provided")
	ErrListenerNotStopped = errors.New("coordinator is either running or starting")
	ErrListenerNotRunning = errors.New("coordinator is either stopped or stopping")
)

// cycle states
const (
	idle int32 = iota
	busy
)

// lifecycle states
const (
	stopped int32 = iota
	running
	transitioning
)

const defaultTimeout = time.Minute

// Config drives the background refresh behavior.
type Config struct {
	// LoadOnStart issues a non-forced refresh when the coordinator starts.
	LoadOnStart bool

	// Interval issues a non-forced refresh periodically.
	// (Optional). Zero disables periodic refreshes.
	Interval time.Duration

	// Timeout bounds a single refresh cycle.
	// (Optional). Defaults to one minute.
	Timeout time.Duration

	// TTL is how long a fetched collection stays fresh.
	// (Optional). Defaults to 24 hours.
	TTL time.Duration
}

// Coordinator keeps the cached repository collection up to date and
// multicasts it. At most one refresh cycle runs at a time; requests made
// while one is in flight are dropped.
type Coordinator struct {
	store    store.S
	reader   apiclient.ReposReader
	notifier *notify.Notifier
	measures *Measures
	logger   *zap.Logger
	config   Config
	now      func() time.Time

	cycle int32

	lcLock   sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	inFlight sync.WaitGroup
	state    int32
	ticker   *time.Ticker
	shutdown chan struct{}

	pubLock   sync.Mutex
	latest    model.Repositories
	hasLatest bool
	nextID    uint64
	listeners map[uint64]Listener
	order     []uint64
}

func New(config Config, s store.S, r apiclient.ReposReader, n *notify.Notifier, measures *Measures, logger *zap.Logger) (*Coordinator, error) {
	if s == nil {
		return nil, ErrNoStoreProvided
	}
	if r == nil {
		return nil, ErrNoReaderProvided
	}
	if measures == nil {
		return nil, ErrNilMeasures
	}
	if n == nil {
		n = notify.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	if config.TTL <= 0 {
		config.TTL = cache.ReposTTL
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		store:     s,
		reader:    r,
		notifier:  n,
		measures:  measures,
		logger:    logger,
		config:    config,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
		shutdown:  make(chan struct{}),
		listeners: make(map[uint64]Listener),
	}, nil
}

// RequestRefresh asks for a refresh cycle and returns immediately. When a
// cycle is already in flight the request is dropped, whatever force is, and
// false is returned.
func (c *Coordinator) RequestRefresh(force bool) bool {
	if !atomic.CompareAndSwapInt32(&c.cycle, idle, busy) {
		c.measures.Dropped.With(prometheus.Labels{ForceLabel: strconv.FormatBool(force)}).Inc()
		c.logger.Debug("refresh already in flight, dropping request", zap.Bool("force", force))
		return false
	}

	c.lcLock.Lock()
	defer c.lcLock.Unlock()
	if c.ctx.Err() != nil {
		atomic.StoreInt32(&c.cycle, idle)
		return false
	}

	c.inFlight.Add(1)
	go func(ctx context.Context) {
		defer c.inFlight.Done()
		defer atomic.StoreInt32(&c.cycle, idle)
		c.run(ctx, force)
	}(c.ctx)
	return true
}

func (c *Coordinator) run(ctx context.Context, force bool) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	start := c.now()
	outcome := FailureOutcome
	defer func() {
		c.measures.Cycles.With(prometheus.Labels{OutcomeLabel: outcome}).Inc()
		c.measures.CycleDuration.With(prometheus.Labels{OutcomeLabel: outcome}).Observe(c.now().Sub(start).Seconds())
	}()

	entry, ok, err := cache.Load[model.Repositories](ctx, c.store, cache.ReposKey)
	switch {
	case errors.Is(err, cache.ErrDecodeEntry):
		c.logger.Warn("discarding unreadable cached repositories", zap.Error(err))
		ok = false
	case err != nil:
		c.fail("failed reading cached repositories", err)
		return
	}

	now := c.now()
	if ok && entry.Valid(now) && !force {
		outcome = HitOutcome
		c.logger.Debug("serving cached repositories", zap.Duration("age", entry.Age(now)))
		c.publish(Event{Repositories: entry.Value})
		return
	}

	repos, err := c.reader.GetRepositories(ctx)
	if err != nil {
		c.fail("failed fetching repositories", err)
		return
	}

	if err = cache.Save(ctx, c.store, cache.ReposKey, cache.New(repos, c.now(), c.config.TTL)); err != nil {
		c.fail("failed caching repositories", err)
		return
	}

	outcome = FetchedOutcome
	c.logger.Info("repositories refreshed", zap.Int("count", len(repos.Repos)), zap.Bool("force", force))
	c.notifier.Fire()
	c.publish(Event{Repositories: repos})
}

func (c *Coordinator) fail(msg string, err error) {
	c.logger.Error(msg, zap.Error(err))
	c.publish(Event{Err: err})
}

func (c *Coordinator) publish(e Event) {
	c.pubLock.Lock()
	defer c.pubLock.Unlock()
	if e.Err == nil {
		c.latest = e.Repositories
		c.hasLatest = true
	}
	for _, id := range c.order {
		c.listeners[id].Update(e)
	}
}

// Subscribe adds l to the stream. If a collection was already published, l
// receives it before Subscribe returns. Subscribing never starts a refresh.
// The returned function removes l and may be called more than once.
func (c *Coordinator) Subscribe(l Listener) (cancel func()) {
	c.pubLock.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	c.order = append(c.order, id)
	if c.hasLatest {
		l.Update(Event{Repositories: c.latest})
	}
	c.pubLock.Unlock()
	c.measures.Subscribers.Inc()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.pubLock.Lock()
			defer c.pubLock.Unlock()
			delete(c.listeners, id)
			for i, o := range c.order {
				if o == id {
					c.order = append(c.order[:i:i], c.order[i+1:]...)
					break
				}
			}
			c.measures.Subscribers.Dec()
		})
	}
}

// Latest returns the last published collection.
func (c *Coordinator) Latest() (model.Repositories, bool) {
	c.pubLock.Lock()
	defer c.pubLock.Unlock()
	return c.latest, c.hasLatest
}

// Lookup finds app in the cached collection. It reads the store directly,
// ignores freshness and returns the first repository whose name matches.
// An unreadable entry is reported as absent.
func (c *Coordinator) Lookup(ctx context.Context, app string) (model.LookupResult, bool, error) {
	entry, ok, err := cache.Load[model.Repositories](ctx, c.store, cache.ReposKey)
	if errors.Is(err, cache.ErrDecodeEntry) {
		return model.LookupResult{}, false, nil
	}
	if err != nil || !ok {
		return model.LookupResult{}, false, err
	}
	for _, r := range entry.Value.Repos {
		if r.Identity() == app {
			return model.LookupResult{App: r, Params: entry.Value.Params}, true, nil
		}
	}
	return model.LookupResult{}, false, nil
}

// RepositoryState fetches the live state of app. It is never cached.
func (c *Coordinator) RepositoryState(ctx context.Context, app string) (model.RepositoryState, error) {
	return c.reader.GetRepositoryState(ctx, app)
}

// Start begins the periodic refreshes and, when configured, issues the
// initial load. Calling Start on a running coordinator returns an error.
func (c *Coordinator) Start(_ context.Context) error {
	if !atomic.CompareAndSwapInt32(&c.state, stopped, transitioning) {
		c.logger.Error("Start called when the coordinator was not in stopped state", zap.Error(ErrListenerNotStopped))
		return ErrListenerNotStopped
	}

	c.lcLock.Lock()
	if c.ctx.Err() != nil {
		c.ctx, c.cancel = context.WithCancel(context.Background())
	}
	c.lcLock.Unlock()

	if c.config.LoadOnStart {
		c.RequestRefresh(false)
	}

	if c.config.Interval > 0 {
		c.ticker = time.NewTicker(c.config.Interval)
		go func(ticker *time.Ticker) {
			for {
				select {
				case <-c.shutdown:
					return
				case <-ticker.C:
					c.RequestRefresh(false)
				}
			}
		}(c.ticker)
	}

	atomic.SwapInt32(&c.state, running)
	return nil
}

// Stop ends the periodic refreshes, cancels the in-flight cycle and waits
// for it to return.
func (c *Coordinator) Stop(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&c.state, running, transitioning) {
		c.logger.Error("Stop called when the coordinator was not in running state", zap.Error(ErrListenerNotRunning))
		return ErrListenerNotRunning
	}

	if c.ticker != nil {
		c.ticker.Stop()
		c.shutdown <- struct{}{}
		c.ticker = nil
	}

	c.lcLock.Lock()
	c.cancel()
	c.lcLock.Unlock()

	done := make(chan struct{})
	go func() {
		c.inFlight.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	atomic.SwapInt32(&c.state, stopped)
	return err
}
