package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrBreakerOpen is returned instead of calling a service that has failed
// too many times in a row.
var ErrBreakerOpen = eris.New("resilience: breaker open")

// Breaker stops calls to a service after Threshold consecutive failures and
// lets one probe through once Cooldown has passed. It is safe for
// concurrent use.
type Breaker struct {
	name      string
	threshold int
	cooldown  time.Duration

	mu       sync.Mutex
	failures int
	openedAt time.Time
	open     bool

	now func() time.Time
}

// NewBreaker creates a breaker. threshold <= 0 defaults to 5 and cooldown
// <= 0 to one minute.
func NewBreaker(name string, threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	return &Breaker{name: name, threshold: threshold, cooldown: cooldown, now: time.Now}
}

// Open reports whether calls are currently being rejected.
func (b *Breaker) Open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open && b.now().Sub(b.openedAt) < b.cooldown
}

// Do runs fn unless the breaker is open. Context cancellation is not counted
// as a service failure.
func (b *Breaker) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if b.Open() {
		return ErrBreakerOpen
	}
	err := fn(ctx)
	if ctx.Err() == nil {
		b.record(err)
	}
	return err
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		if b.open {
			zap.L().Info("resilience: breaker closed", zap.String("service", b.name))
		}
		b.failures = 0
		b.open = false
		return
	}

	b.failures++
	if b.failures >= b.threshold {
		if !b.open || b.now().Sub(b.openedAt) >= b.cooldown {
			zap.L().Warn("resilience: breaker opened",
				zap.String("service", b.name),
				zap.Int("consecutive_failures", b.failures),
				zap.Error(err),
			)
		}
		b.open = true
		b.openedAt = b.now()
	}
}
