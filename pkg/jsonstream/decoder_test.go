package jsonstream

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var schema = []string{"users", "phases", "contexts", "nodes", "connectors", "intersections"}

const phasesDoc = `{"phases":[{"name":"A","order":0,"duration":"1h"}], "contexts":[]}`

func keysOf(cs []Completed) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Key
	}
	return out
}

func feedAll(t *testing.T, d *Decoder, deltas ...string) []Completed {
	t.Helper()
	var all []Completed
	for _, delta := range deltas {
		got, err := d.Feed(delta)
		require.NoError(t, err)
		all = append(all, got...)
	}
	return all
}

func TestDecoder_SingleChunk(t *testing.T) {
	// Arrange
	d := NewDecoder(schema)

	// Act
	first, err := d.Feed(phasesDoc)
	require.NoError(t, err)
	second, err := d.Feed(phasesDoc)
	require.NoError(t, err)

	// Assert
	require.Equal(t, []string{"phases", "contexts"}, keysOf(first))
	assert.JSONEq(t, `[{"name":"A","order":0,"duration":"1h"}]`, string(first[0].Raw))
	assert.JSONEq(t, `[]`, string(first[1].Raw))
	assert.Empty(t, second)
}

func TestDecoder_SplitMidArray(t *testing.T) {
	for offset := 1; offset < len(phasesDoc); offset++ {
		d := NewDecoder(schema)

		head, err := d.Feed(phasesDoc[:offset])
		require.NoError(t, err)
		tail, err := d.Feed(phasesDoc[offset:])
		require.NoError(t, err)

		all := append(head, tail...)
		require.Equal(t, []string{"phases", "contexts"}, keysOf(all), "offset %d", offset)

		closeIdx := strings.Index(phasesDoc, "}]") + 1
		if offset <= closeIdx {
			assert.Empty(t, head, "phases emitted before its array closed at offset %d", offset)
		}
	}
}

func TestDecoder_ByteAtATime(t *testing.T) {
	doc := `{"users":[{"name":"Worker A"}],"phases":[{"name":"P","order":1}],"nodes":[[1,[2]],{"a":[3]}]}`
	d := NewDecoder(schema)

	var emittedAt []int
	var all []Completed
	for i := 0; i < len(doc); i++ {
		got, err := d.Feed(doc[i : i+1])
		require.NoError(t, err)
		for range got {
			emittedAt = append(emittedAt, i)
		}
		all = append(all, got...)
	}

	require.Equal(t, []string{"users", "phases", "nodes"}, keysOf(all))
	for k, c := range all {
		assert.True(t, json.Valid(c.Raw))
		assert.Equal(t, byte(']'), doc[emittedAt[k]], "emitted on a closing bracket")
	}
}

func TestDecoder_BracketsInsideStrings(t *testing.T) {
	doc := `{"nodes":[{"action":"press ] then [ twice","painPoint":"quote \" and ]"}],"connectors":[]}`
	d := NewDecoder(schema)

	all := feedAll(t, d, doc[:20], doc[20:40], doc[40:])

	require.Equal(t, []string{"nodes", "connectors"}, keysOf(all))
	var nodes []map[string]string
	require.NoError(t, json.Unmarshal(all[0].Raw, &nodes))
	assert.Equal(t, "press ] then [ twice", nodes[0]["action"])
	assert.Equal(t, `quote " and ]`, nodes[0]["painPoint"])
}

func TestDecoder_IdempotentEmission(t *testing.T) {
	d := NewDecoder(schema)

	all := feedAll(t, d,
		`{"phases":[{"name":"A"}],`,
		`"nodes":[{"action":"\"phases\": [ \"again\" ]"}],`,
		`"phases":[{"name":"B"}]}`,
	)

	require.Equal(t, []string{"phases", "nodes"}, keysOf(all))
	assert.JSONEq(t, `[{"name":"A"}]`, string(all[0].Raw))
	assert.True(t, d.Emitted("phases"))
}

func TestDecoder_NestedKeysAreNotTopLevel(t *testing.T) {
	d := NewDecoder(schema)

	all := feedAll(t, d, `{"meta":{"phases":[1,2]},"contexts":[{"name":"Dock"}]}`)

	require.Equal(t, []string{"contexts"}, keysOf(all))
	assert.False(t, d.Emitted("phases"))
}

func TestDecoder_IgnoresUnknownKeysAndPreamble(t *testing.T) {
	d := NewDecoder(schema)

	all := feedAll(t, d, "Here you go [draft]:\n```json\n", `{"extra":[1],"title":"phases","users":[]}`, "\n```")

	assert.Equal(t, []string{"users"}, keysOf(all))
}

func TestDecoder_SchemaOrderWithinOneFeed(t *testing.T) {
	d := NewDecoder(schema)

	all := feedAll(t, d, `{"contexts":[],"users":[],"phases":[]}`)

	assert.Equal(t, []string{"users", "phases", "contexts"}, keysOf(all))
}

func TestDecoder_MalformedArrayIsNeverEmitted(t *testing.T) {
	d := NewDecoder(schema)

	all := feedAll(t, d, `{"phases":[1,,2],"contexts":[]}`)

	assert.Equal(t, []string{"contexts"}, keysOf(all))
	assert.False(t, d.Emitted("phases"))
}

func TestDecoder_BufferLimit(t *testing.T) {
	d := NewDecoder(schema, WithMaxBuffer(10))

	_, err := d.Feed(`{"users":`)
	require.NoError(t, err)
	_, err = d.Feed(`[1,2,3]}`)

	assert.ErrorIs(t, err, ErrBufferLimitExceeded)
}

func TestDecoder_ResetAndClose(t *testing.T) {
	d := NewDecoder(schema)
	feedAll(t, d, phasesDoc)
	require.True(t, d.Emitted("phases"))

	d.Reset()
	assert.False(t, d.Emitted("phases"))
	assert.Zero(t, d.Buffered())
	again := feedAll(t, d, phasesDoc)
	assert.Len(t, again, 2)

	d.Close()
	assert.Zero(t, d.Buffered())
	afterClose := feedAll(t, d, phasesDoc)
	assert.Len(t, afterClose, 2)
}
