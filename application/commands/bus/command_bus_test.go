package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type pingCommand struct{ invalid bool }

func (c pingCommand) Validate() error {
	if c.invalid {
		return errors.New("invalid ping")
	}
	return nil
}

type pongCommand struct{}

func (pongCommand) Validate() error { return nil }

func TestCommandBus_Send(t *testing.T) {
	// Arrange
	var order []string
	trace := func(name string) Middleware {
		return func(next CommandHandler) CommandHandler {
			return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
				order = append(order, name)
				return next.Handle(ctx, cmd)
			})
		}
	}
	b := NewCommandBus(trace("outer"), trace("inner"), LoggingMiddleware(zap.NewNop()))
	require.NoError(t, b.Register(pingCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		order = append(order, "handler")
		return nil
	})))

	// Act
	err := b.Send(context.Background(), pingCommand{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestCommandBus_Errors(t *testing.T) {
	// Arrange
	handlerErr := errors.New("handler failed")
	b := NewCommandBus()
	require.NoError(t, b.Register(pingCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		return handlerErr
	})))

	// Act & Assert
	assert.ErrorIs(t, b.Register(pingCommand{}, nil), ErrHandlerAlreadyRegistered)
	assert.ErrorIs(t, b.Send(context.Background(), pongCommand{}), ErrHandlerNotFound)
	assert.ErrorIs(t, b.Send(context.Background(), pingCommand{}), handlerErr)

	err := b.Send(context.Background(), pingCommand{invalid: true})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "command validation failed")
}

type spanRecorder struct{ names []string }

func (r *spanRecorder) TraceFunction(ctx context.Context, name string, fn func(context.Context) error) error {
	r.names = append(r.names, name)
	return fn(ctx)
}

func TestTracingMiddleware(t *testing.T) {
	// Arrange
	spans := &spanRecorder{}
	handlerErr := errors.New("boom")
	b := NewCommandBus(TracingMiddleware(spans))
	require.NoError(t, b.Register(pongCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		return handlerErr
	})))

	// Act
	err := b.Send(context.Background(), pongCommand{})

	// Assert
	assert.ErrorIs(t, err, handlerErr)
	assert.Equal(t, []string{"command.pongCommand"}, spans.names)
}
