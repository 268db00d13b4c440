package qpack

import (
	"testing"

	"golang.org/x/net/http2/hpack"

	"github.com/stretchr/testify/require"
)

func TestEncoderStreamSetCapacity(t *testing.T) {
	dec := NewDecoder()
	require.NoError(t, dec.ParseEncoderInstructions(setCapacity(nil, 4096)))
	require.Equal(t, uint64(4096), dec.table.capacity)
	require.Equal(t, uint64(128), dec.table.maxEntries)

	// shrinking the table doesn't shrink maxEntries
	require.NoError(t, dec.ParseEncoderInstructions(setCapacity(nil, 64)))
	require.Equal(t, uint64(64), dec.table.capacity)
	require.Equal(t, uint64(128), dec.table.maxEntries)
}

func TestEncoderStreamShrinkingEvicts(t *testing.T) {
	dec := NewDecoder()
	data := setCapacity(nil, 256)
	data = insertWithLiteralName(data, "foo", "bar")
	data = insertWithLiteralName(data, "lorem", "ipsum")
	require.NoError(t, dec.ParseEncoderInstructions(data))
	require.Equal(t, uint64(2), dec.table.inserted())

	require.NoError(t, dec.ParseEncoderInstructions(setCapacity(nil, 10)))
	require.Equal(t, uint64(2), dec.table.evicted)
	require.Zero(t, dec.table.size)
}

func TestEncoderStreamInsertWithNameReference(t *testing.T) {
	dec := NewDecoder()
	data := setCapacity(nil, 1024)
	data = insertWithStaticNameRef(data, 0, "www.example.com")
	data = insertWithLiteralName(data, "custom-key", "custom-value")
	data = duplicate(data, 1)
	require.NoError(t, dec.ParseEncoderInstructions(data))

	require.Equal(t, uint64(3), dec.table.inserted())
	for i, expected := range []HeaderField{
		{Name: ":authority", Value: "www.example.com"},
		{Name: "custom-key", Value: "custom-value"},
		{Name: ":authority", Value: "www.example.com"},
	} {
		hf, ok := dec.table.at(uint64(i))
		require.True(t, ok)
		require.Equal(t, expected, hf)
	}
}

func TestEncoderStreamHuffmanEncodedLiteral(t *testing.T) {
	name := "x-custom"
	value := "some encoded value"

	data := setCapacity(nil, 1024)
	offset := len(data)
	data = appendVarInt(data, 5, hpack.HuffmanEncodeLength(name))
	data[offset] ^= 0x40 | 0x20 // insert with literal name, Huffman-encoded
	data = hpack.AppendHuffmanString(data, name)
	offset = len(data)
	data = appendVarInt(data, 7, hpack.HuffmanEncodeLength(value))
	data[offset] ^= 0x80
	data = hpack.AppendHuffmanString(data, value)

	dec := NewDecoder()
	require.NoError(t, dec.ParseEncoderInstructions(data))
	hf, ok := dec.table.at(0)
	require.True(t, ok)
	require.Equal(t, HeaderField{Name: name, Value: value}, hf)
}

func TestEncoderStreamErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "static name reference out of range",
			input:    insertWithStaticNameRef(setCapacity(nil, 1024), 512, "foo"),
			expected: "invalid indexed representation index 512",
		},
		{
			name: "dynamic name reference into an empty table",
			input: func() []byte {
				data := setCapacity(nil, 1024)
				offset := len(data)
				data = appendVarInt(data, 6, 0)
				data[offset] ^= 0x80 // T bit unset: dynamic reference
				data = appendVarInt(data, 7, 3)
				return append(data, "foo"...)
			}(),
			expected: "invalid indexed representation index 0",
		},
		{
			name:     "duplicate with an empty table",
			input:    duplicate(setCapacity(nil, 1024), 0),
			expected: "invalid indexed representation index 0",
		},
		{
			name:     "entry larger than the table capacity",
			input:    insertWithLiteralName(setCapacity(nil, 32), "foo", "bar"),
			expected: "entry of size 38 exceeds table capacity 32",
		},
		{
			name:     "insert without capacity",
			input:    insertWithLiteralName(nil, "foo", "bar"),
			expected: "entry of size 38 exceeds table capacity 0",
		},
		{
			name:     "truncated instruction",
			input:    insertWithLiteralName(nil, "foo", "bar")[:3],
			expected: errNeedMore.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := NewDecoder()
			err := dec.ParseEncoderInstructions(tt.input)
			require.ErrorContains(t, err, tt.expected)
		})
	}
}
