package extraction

import (
	"context"
	"errors"
	"io"

	"journeymap/application/ports"
	pkgerrors "journeymap/pkg/errors"
	"journeymap/pkg/jsonstream"
	"go.uber.org/zap"
)

// Extractor drives a jsonstream.Decoder over a delta stream and reports each
// category once. A single Extractor may run many streams, one at a time.
type Extractor struct {
	logger    *zap.Logger
	maxBuffer int
}

// Option configures an Extractor
type Option func(*Extractor)

// WithMaxBuffer caps how much of the model's answer is held in memory.
func WithMaxBuffer(bytes int) Option {
	return func(e *Extractor) { e.maxBuffer = bytes }
}

// NewExtractor creates a new extractor
func NewExtractor(logger *zap.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Extractor{logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run consumes stream until the model completes, the transport fails or ctx
// is cancelled. emit receives each category at most once, then exactly one
// Completed or Failed. After cancellation emit is never called again and Run
// returns ctx.Err(). The stream is always closed before Run returns.
func (e *Extractor) Run(ctx context.Context, stream ports.DeltaStream, emit func(Event)) error {
	defer func() {
		if err := stream.Close(); err != nil {
			e.logger.Debug("Failed to close delta stream", zap.Error(err))
		}
	}()

	var opts []jsonstream.Option
	if e.maxBuffer > 0 {
		opts = append(opts, jsonstream.WithMaxBuffer(e.maxBuffer))
	}
	dec := jsonstream.NewDecoder(SchemaKeys(), opts...)
	defer dec.Close()

	seen := make(map[Category]bool, len(Categories))
	deltas := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		delta, err := stream.Recv(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if errors.Is(err, io.EOF) {
				e.logCompletion(seen, deltas, dec.Buffered())
				emit(Completed{})
				return nil
			}
			e.logger.Error("Extraction stream failed", zap.Error(err), zap.Int("deltas", deltas))
			emit(Failed{Err: err})
			return pkgerrors.NewExternalError("language model", err)
		}
		deltas++

		completed, err := dec.Feed(delta)
		if err != nil {
			e.logger.Error("Extraction buffer rejected delta", zap.Error(err), zap.Int("buffered", dec.Buffered()))
			emit(Failed{Err: err})
			return pkgerrors.NewExternalError("language model", err)
		}

		for _, c := range completed {
			if err := ctx.Err(); err != nil {
				return err
			}
			cat, ok := CategoryForKey(c.Key)
			if !ok || seen[cat] {
				continue
			}
			seen[cat] = true

			ev, err := decode(cat, c.Raw)
			if err != nil {
				e.logger.Warn("Category payload does not match schema, using empty list",
					zap.String("category", cat.String()),
					zap.String("key", c.Key),
					zap.Error(err),
				)
				ev = empty(cat)
			}
			emit(ev)
		}
	}
}

func (e *Extractor) logCompletion(seen map[Category]bool, deltas, buffered int) {
	var missing []string
	for _, c := range Categories {
		if !seen[c] {
			missing = append(missing, c.String())
		}
	}
	fields := []zap.Field{zap.Int("deltas", deltas), zap.Int("bytes", buffered)}
	if len(missing) > 0 {
		e.logger.Warn("Extraction completed with missing categories",
			append(fields, zap.Strings("missing", missing))...)
		return
	}
	e.logger.Debug("Extraction completed", fields...)
}

// Collect runs the extractor to completion and gathers every category. The
// returned error is the transport failure, if any.
func (e *Extractor) Collect(ctx context.Context, stream ports.DeltaStream) (Result, error) {
	var res Result
	err := e.Run(ctx, stream, func(ev Event) {
		_ = res.Apply(ev)
	})
	return res, err
}
