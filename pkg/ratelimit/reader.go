// Package ratelimit throttles file reads with a token bucket shared by
// every reader of a scan, so crawling a network share does not saturate it.
package ratelimit

import (
	"context"
	"io"
	"sync"
	"time"
)

// minBurst keeps reads of small files from stalling on tiny rates
const minBurst = 64 * 1024

// Limiter is a token bucket measured in bytes. A nil *Limiter never blocks.
type Limiter struct {
	mu             sync.Mutex
	bytesPerSecond int64
	burst          int64
	tokens         int64
	lastRefill     time.Time
	now            func() time.Time
}

// NewLimiter returns a limiter allowing bytesPerSecond with a burst of one
// second of data (at least 64 KiB). It returns nil when bytesPerSecond <= 0.
func NewLimiter(bytesPerSecond int64) *Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}

	burst := bytesPerSecond
	if burst < minBurst {
		burst = minBurst
	}

	return &Limiter{
		bytesPerSecond: bytesPerSecond,
		burst:          burst,
		tokens:         burst,
		lastRefill:     time.Now(),
		now:            time.Now,
	}
}

// Rate returns the configured bytes per second (0 for a nil limiter)
func (l *Limiter) Rate() int64 {
	if l == nil {
		return 0
	}
	return l.bytesPerSecond
}

// Wait blocks until n bytes may be read and takes them from the bucket.
// n is capped at the burst size.
func (l *Limiter) Wait(ctx context.Context, n int) error {
	if l == nil {
		return ctx.Err()
	}

	need := int64(n)
	if need > l.burst {
		need = l.burst
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		l.mu.Lock()
		l.refill()
		if l.tokens >= need {
			l.tokens -= need
			l.mu.Unlock()
			return nil
		}
		deficit := need - l.tokens
		l.mu.Unlock()

		wait := time.Duration(float64(deficit) / float64(l.bytesPerSecond) * float64(time.Second))
		if wait < time.Millisecond {
			wait = time.Millisecond
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// refund returns unused tokens after a short read
func (l *Limiter) refund(n int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tokens += n
	if l.tokens > l.burst {
		l.tokens = l.burst
	}
}

// refill adds tokens for the time elapsed; must be called with mu held
func (l *Limiter) refill() {
	now := l.now()
	add := int64(float64(now.Sub(l.lastRefill)) / float64(time.Second) * float64(l.bytesPerSecond))
	if add > 0 {
		l.tokens += add
		if l.tokens > l.burst {
			l.tokens = l.burst
		}
		l.lastRefill = now
	}
}

// Reader is an io.Reader throttled by a Limiter
type Reader struct {
	ctx     context.Context
	reader  io.Reader
	limiter *Limiter
}

// NewReader wraps r. With a nil limiter r is returned unchanged.
func NewReader(ctx context.Context, r io.Reader, limiter *Limiter) io.Reader {
	if limiter == nil {
		return r
	}
	return &Reader{ctx: ctx, reader: r, limiter: limiter}
}

// Read waits for tokens, then reads at most one burst
func (r *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if int64(len(p)) > r.limiter.burst {
		p = p[:r.limiter.burst]
	}

	if err := r.limiter.Wait(r.ctx, len(p)); err != nil {
		return 0, err
	}

	n, err := r.reader.Read(p)
	if n < len(p) {
		r.limiter.refund(int64(len(p) - n))
	}
	return n, err
}
