package resilience

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"journeymap/application/ports"
	"journeymap/application/ports/mocks"
	pkgerrors "journeymap/pkg/errors"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newBreaker(src ports.ExtractionSource) *BreakerSource {
	return NewBreakerSource(src, BreakerConfig{MaxFailures: 2, OpenTimeout: time.Hour}, zap.NewNop())
}

func drain(s ports.DeltaStream) error {
	defer s.Close()
	for {
		if _, err := s.Recv(context.Background()); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

func TestBreakerSource_OpensAfterConsecutiveOpenFailures(t *testing.T) {
	// Arrange
	src := &mocks.ScriptedSource{OpenErr: errors.New("connection refused")}
	b := newBreaker(src)

	// Act
	for i := 0; i < 2; i++ {
		_, err := b.Open(context.Background(), ports.ExtractionRequest{})
		require.Error(t, err)
	}
	_, err := b.Open(context.Background(), ports.ExtractionRequest{})

	// Assert
	assert.Equal(t, gobreaker.StateOpen, b.State())
	assert.Equal(t, pkgerrors.ErrorTypeUnavailable, pkgerrors.GetAppError(err).Type)
	assert.Len(t, src.Requests, 2, "open circuit must not reach the source")
}

func TestBreakerSource_StreamFailuresCount(t *testing.T) {
	src := &mocks.ScriptedSource{Deltas: []string{"{"}, Err: errors.New("reset by peer")}
	b := newBreaker(src)

	for i := 0; i < 2; i++ {
		stream, err := b.Open(context.Background(), ports.ExtractionRequest{})
		require.NoError(t, err)
		require.Error(t, drain(stream))
	}

	assert.Equal(t, gobreaker.StateOpen, b.State())
}

func TestBreakerSource_SuccessResetsFailures(t *testing.T) {
	failing := &mocks.ScriptedSource{OpenErr: errors.New("down")}
	healthy := &mocks.ScriptedSource{Deltas: []string{"{}"}}
	b := newBreaker(failing)

	_, err := b.Open(context.Background(), ports.ExtractionRequest{})
	require.Error(t, err)

	b.next = healthy
	stream, err := b.Open(context.Background(), ports.ExtractionRequest{})
	require.NoError(t, err)
	require.NoError(t, drain(stream))

	b.next = failing
	_, err = b.Open(context.Background(), ports.ExtractionRequest{})
	require.Error(t, err)

	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreakerSource_CancellationIsNotAFailure(t *testing.T) {
	src := &mocks.ScriptedSource{Deltas: []string{"{", "}"}}
	b := newBreaker(src)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 3; i++ {
		stream, err := b.Open(context.Background(), ports.ExtractionRequest{})
		require.NoError(t, err)
		_, err = stream.Recv(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		stream.Close()
	}

	assert.Equal(t, gobreaker.StateClosed, b.State())
}
