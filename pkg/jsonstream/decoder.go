// Package jsonstream recognises complete top-level array values of a JSON
// object while the object is still being streamed.
//
// The decoder is deliberately not a general streaming parser. It tracks just
// enough structure (string state, escapes, container nesting) to find
// "key": [ ... ] pairs at the top level of the first object in the buffer and
// to know when each array closes.
package jsonstream

import (
	"encoding/json"
	"errors"
)

// ErrBufferLimitExceeded is returned by Feed when the accumulated text grows
// past the configured limit.
var ErrBufferLimitExceeded = errors.New("jsonstream: buffer limit exceeded")

// Completed is a fully received array value for one schema key.
type Completed struct {
	Key string
	Raw json.RawMessage
}

// Option configures a Decoder
type Option func(*Decoder)

// WithMaxBuffer caps the number of bytes the decoder will hold.
func WithMaxBuffer(n int) Option {
	return func(d *Decoder) { d.maxBuffer = n }
}

type scanState int

const (
	stateValue     scanState = iota // anything else
	stateAfterKey                   // top-level key string just closed
	stateAfterColon                 // ':' seen after a top-level key
)

// Decoder accumulates deltas and reports each schema key's array exactly once.
// It is not safe for concurrent use.
type Decoder struct {
	keys      []string
	rank      map[string]int
	emitted   map[string]bool
	maxBuffer int

	buf []byte
	pos int

	stack    []byte
	inString bool
	escaped  bool
	strStart int
	strIsKey bool

	state      scanState
	lastKey    string
	arrayKey   string
	arrayStart int
	arrayDepth int
}

// NewDecoder returns a decoder for the given keys. The order of keys is the
// order in which completions found by the same Feed call are returned.
func NewDecoder(keys []string, opts ...Option) *Decoder {
	d := &Decoder{
		keys: append([]string(nil), keys...),
		rank: make(map[string]int, len(keys)),
	}
	for i, k := range keys {
		if _, dup := d.rank[k]; !dup {
			d.rank[k] = i
		}
	}
	for _, opt := range opts {
		opt(d)
	}
	d.Reset()
	return d
}

// Reset clears all state so the decoder can consume a new stream.
func (d *Decoder) Reset() {
	d.emitted = make(map[string]bool, len(d.keys))
	d.buf = d.buf[:0]
	d.pos = 0
	d.stack = d.stack[:0]
	d.inString = false
	d.escaped = false
	d.state = stateValue
	d.lastKey = ""
	d.arrayKey = ""
	d.arrayStart = -1
	d.arrayDepth = 0
}

// Close releases the buffer. The decoder must be Reset before reuse.
func (d *Decoder) Close() {
	d.buf = nil
	d.stack = nil
	d.emitted = nil
}

// Emitted reports whether key has already been returned by Feed.
func (d *Decoder) Emitted(key string) bool {
	return d.emitted[key]
}

// Buffered returns the number of bytes accumulated so far.
func (d *Decoder) Buffered() int {
	return len(d.buf)
}

// Feed appends delta and returns the schema keys whose arrays became complete.
// Keys completing within the same call are returned in schema order. A key is
// never returned twice.
func (d *Decoder) Feed(delta string) ([]Completed, error) {
	if d.emitted == nil {
		d.Reset()
	}
	if d.maxBuffer > 0 && len(d.buf)+len(delta) > d.maxBuffer {
		return nil, ErrBufferLimitExceeded
	}
	d.buf = append(d.buf, delta...)

	var out []Completed
	for ; d.pos < len(d.buf); d.pos++ {
		if c, ok := d.step(d.pos); ok {
			out = insertByRank(out, c, d.rank)
		}
	}
	return out, nil
}

func (d *Decoder) step(i int) (Completed, bool) {
	ch := d.buf[i]

	if d.inString {
		switch {
		case d.escaped:
			d.escaped = false
		case ch == '\\':
			d.escaped = true
		case ch == '"':
			d.inString = false
			d.closeString(i)
		}
		return Completed{}, false
	}

	if len(d.stack) == 0 {
		// Ignore anything before the object opens, e.g. a markdown fence.
		if ch == '{' {
			d.stack = append(d.stack, '{')
			d.state = stateValue
		}
		return Completed{}, false
	}

	if isSpace(ch) {
		return Completed{}, false
	}

	valuePos := d.state == stateAfterColon
	switch d.state {
	case stateAfterKey:
		if ch == ':' {
			d.state = stateAfterColon
			return Completed{}, false
		}
		d.state = stateValue
	case stateAfterColon:
		d.state = stateValue
		if ch == '[' && d.atTop() {
			d.arrayKey = d.lastKey
			d.arrayStart = i
			d.arrayDepth = len(d.stack) + 1
		}
	}

	switch ch {
	case '"':
		d.inString = true
		d.strStart = i
		d.strIsKey = d.atTop() && !valuePos
	case '{', '[':
		d.stack = append(d.stack, ch)
	case '}', ']':
		return d.closeContainer(i, ch)
	}
	return Completed{}, false
}

func (d *Decoder) closeString(end int) {
	if !d.strIsKey {
		return
	}
	var key string
	if err := json.Unmarshal(d.buf[d.strStart:end+1], &key); err != nil {
		d.state = stateValue
		return
	}
	d.lastKey = key
	d.state = stateAfterKey
}

func (d *Decoder) closeContainer(i int, ch byte) (Completed, bool) {
	open := byte('{')
	if ch == ']' {
		open = '['
	}
	top := len(d.stack) - 1
	if d.stack[top] != open {
		// Mismatched closer; treat as noise.
		return Completed{}, false
	}

	depth := len(d.stack)
	d.stack = d.stack[:top]

	if ch != ']' || d.arrayStart < 0 || depth != d.arrayDepth {
		return Completed{}, false
	}

	key, start := d.arrayKey, d.arrayStart
	d.arrayKey, d.arrayStart, d.arrayDepth = "", -1, 0

	if _, known := d.rank[key]; !known || d.emitted[key] {
		return Completed{}, false
	}
	raw := d.buf[start : i+1]
	if !json.Valid(raw) {
		// Not ready; a later occurrence of the key gets another chance.
		return Completed{}, false
	}
	d.emitted[key] = true
	return Completed{Key: key, Raw: append(json.RawMessage(nil), raw...)}, true
}

// atTop reports whether the scanner sits directly inside the outermost object.
func (d *Decoder) atTop() bool {
	return len(d.stack) == 1 && d.stack[0] == '{'
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func insertByRank(out []Completed, c Completed, rank map[string]int) []Completed {
	i := len(out)
	for i > 0 && rank[out[i-1].Key] > rank[c.Key] {
		i--
	}
	out = append(out, Completed{})
	copy(out[i+1:], out[i:])
	out[i] = c
	return out
}
