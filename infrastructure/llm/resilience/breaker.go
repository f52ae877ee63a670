package resilience

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"journeymap/application/ports"
	pkgerrors "journeymap/pkg/errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerConfig holds configuration for the circuit breaker
type BreakerConfig struct {
	Name string
	// MaxFailures is the number of consecutive failed extractions that opens the circuit
	MaxFailures uint32
	// OpenTimeout is how long the circuit stays open before a trial request
	OpenTimeout time.Duration
}

// BreakerSource guards an ExtractionSource with a circuit breaker. An
// extraction counts as failed when it cannot be opened or its stream ends
// with a transport error. Cancellation by the caller is not a failure.
type BreakerSource struct {
	next    ports.ExtractionSource
	breaker *gobreaker.TwoStepCircuitBreaker
	logger  *zap.Logger
}

// NewBreakerSource wraps next
func NewBreakerSource(next ports.ExtractionSource, cfg BreakerConfig, logger *zap.Logger) *BreakerSource {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.Name == "" {
		cfg.Name = "language-model"
	}

	breaker := gobreaker.NewTwoStepCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &BreakerSource{next: next, breaker: breaker, logger: logger}
}

var _ ports.ExtractionSource = (*BreakerSource)(nil)

// State reports the breaker state, e.g. for readiness checks
func (b *BreakerSource) State() gobreaker.State {
	return b.breaker.State()
}

// Open fails fast with an unavailable error while the circuit is open
func (b *BreakerSource) Open(ctx context.Context, req ports.ExtractionRequest) (ports.DeltaStream, error) {
	done, err := b.breaker.Allow()
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, pkgerrors.NewUnavailableError("language model").WithCause(err)
		}
		return nil, err
	}

	stream, err := b.next.Open(ctx, req)
	if err != nil {
		done(isCancellation(err))
		return nil, err
	}
	return &guardedStream{DeltaStream: stream, done: done}, nil
}

type guardedStream struct {
	ports.DeltaStream
	done func(success bool)
	once sync.Once
}

func (g *guardedStream) report(success bool) {
	g.once.Do(func() { g.done(success) })
}

func (g *guardedStream) Recv(ctx context.Context) (string, error) {
	delta, err := g.DeltaStream.Recv(ctx)
	switch {
	case err == nil:
	case errors.Is(err, io.EOF), isCancellation(err):
		g.report(true)
	default:
		g.report(false)
	}
	return delta, err
}

// Close settles an unfinished stream as a success; abandoning a stream
// says nothing about the model's health
func (g *guardedStream) Close() error {
	g.report(true)
	return g.DeltaStream.Close()
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}
