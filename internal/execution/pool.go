package execution

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	ErrPoolClosed  = errors.New("execution pool is closed")
	ErrPoolTimeout = errors.New("execution pool acquisition timeout")
)

// PoolConfig defines the pre-warmed client set
type PoolConfig struct {
	Size           int
	AcquireTimeout time.Duration
	Client         ClientConfig
}

// Pool manages initialized clients, each with its own worker
type Pool struct {
	loader  Loader
	config  PoolConfig
	clients chan *Client
	logger  *zap.Logger
	mu      sync.RWMutex
	closed  bool
	done    chan struct{}

	// replacing counts clients being respawned after a failure
	replacing  atomic.Int32
	minBackoff time.Duration
	maxBackoff time.Duration
}

// NewPool starts and initializes config.Size clients
func NewPool(ctx context.Context, loader Loader, config PoolConfig) (*Pool, error) {
	if config.Size <= 0 {
		config.Size = 2
	}
	if config.AcquireTimeout <= 0 {
		config.AcquireTimeout = 5 * time.Second
	}
	logger := config.Client.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pool := &Pool{
		loader:     loader,
		config:     config,
		clients:    make(chan *Client, config.Size),
		logger:     logger,
		done:       make(chan struct{}),
		minBackoff: 100 * time.Millisecond,
		maxBackoff: 5 * time.Second,
	}

	for i := 0; i < config.Size; i++ {
		client, err := pool.spawn(ctx)
		if err != nil {
			pool.Close()
			return nil, err
		}
		pool.clients <- client
	}

	return pool, nil
}

func (p *Pool) spawn(ctx context.Context) (*Client, error) {
	client := Dial(p.loader, p.config.Client)
	if err := client.Init(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// Acquire takes an idle client
func (p *Pool) Acquire(ctx context.Context) (*Client, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, ErrPoolClosed
	}

	timer := time.NewTimer(p.config.AcquireTimeout)
	defer timer.Stop()

	select {
	case client := <-p.clients:
		return client, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrPoolTimeout
	}
}

// Release returns a client. An unhealthy client is discarded and
// replaced in the background.
func (p *Pool) Release(client *Client) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		client.Close()
		return
	}

	if !client.Healthy() {
		p.replacing.Add(1)
		go client.Close()
		go p.replace()
		return
	}

	select {
	case p.clients <- client:
	default:
		client.Close()
	}
}

// replace spawns a successor for a discarded client, backing off
// between failed attempts until it succeeds or the pool closes
func (p *Pool) replace() {
	defer p.replacing.Add(-1)

	backoff := p.minBackoff
	for attempt := 1; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		client, err := p.spawn(ctx)
		cancel()
		if err == nil {
			p.admit(client)
			return
		}

		p.logger.Error("Failed to replace execution worker",
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", backoff),
			zap.Error(err),
		)
		select {
		case <-p.done:
			return
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, p.maxBackoff)
	}
}

func (p *Pool) admit(client *Client) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		client.Close()
		return
	}
	select {
	case p.clients <- client:
		p.logger.Info("Replaced execution worker")
	default:
		client.Close()
	}
}

// Execute runs source on a pooled client
func (p *Pool) Execute(ctx context.Context, source string) (Response, error) {
	client, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.Release(client)

	return client.Execute(ctx, source)
}

// Close terminates every idle client
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	close(p.done)
	close(p.clients)

	for client := range p.clients {
		client.Close()
	}
}

// PoolStats is a snapshot for health endpoints
type PoolStats struct {
	Size      int  `json:"size"`
	Available int  `json:"available"`
	InUse     int  `json:"in_use"`
	Replacing int  `json:"replacing"`
	Closed    bool `json:"closed"`
}

// Stats returns pool statistics
func (p *Pool) Stats() PoolStats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	available := len(p.clients)
	replacing := int(p.replacing.Load())
	return PoolStats{
		Size:      p.config.Size,
		Available: available,
		InUse:     max(p.config.Size-available-replacing, 0),
		Replacing: replacing,
		Closed:    p.closed,
	}
}
