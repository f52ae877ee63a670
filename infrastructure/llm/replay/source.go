// Package replay serves a recorded model answer as if it were being streamed.
package replay

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"journeymap/application/ports"
)

const defaultChunkSize = 64

// Source replays the same answer for every request
type Source struct {
	answer    []byte
	chunkSize int
	delay     time.Duration
}

// Option configures a Source
type Option func(*Source)

// WithChunkSize sets how many bytes each delta carries
func WithChunkSize(n int) Option {
	return func(s *Source) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// WithDelay pauses between deltas
func WithDelay(d time.Duration) Option {
	return func(s *Source) { s.delay = d }
}

// NewSource replays answer
func NewSource(answer []byte, opts ...Option) *Source {
	s := &Source{answer: answer, chunkSize: defaultChunkSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadFile replays the contents of path
func LoadFile(path string, opts ...Option) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read replay file: %w", err)
	}
	return NewSource(data, opts...), nil
}

var _ ports.ExtractionSource = (*Source)(nil)

// Open ignores the request; the recording is the answer
func (s *Source) Open(ctx context.Context, req ports.ExtractionRequest) (ports.DeltaStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &stream{src: s}, nil
}

type stream struct {
	src    *Source
	offset int
	closed bool
}

func (st *stream) Recv(ctx context.Context) (string, error) {
	if st.closed || st.offset >= len(st.src.answer) {
		return "", io.EOF
	}
	if st.src.delay > 0 && st.offset > 0 {
		timer := time.NewTimer(st.src.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	end := min(st.offset+st.src.chunkSize, len(st.src.answer))
	delta := string(st.src.answer[st.offset:end])
	st.offset = end
	return delta, nil
}

func (st *stream) Close() error {
	st.closed = true
	return nil
}
