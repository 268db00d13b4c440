package interop

import (
	"errors"
	"io"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quic-go/qpack-interop/qpack"
)

// stubCodec records what the driver feeds it and yields one synthetic
// header field per block.
type stubCodec struct {
	instructions [][]byte
	numBlocks    int
	instrErr     error
	decodeErr    error
}

func (c *stubCodec) ParseEncoderInstructions(p []byte) error {
	if c.instrErr != nil {
		return c.instrErr
	}
	c.instructions = append(c.instructions, append([]byte{}, p...))
	return nil
}

func (c *stubCodec) Decode(p []byte) func() (qpack.HeaderField, error) {
	c.numBlocks++
	n := c.numBlocks
	var done bool
	return func() (qpack.HeaderField, error) {
		if c.decodeErr != nil {
			return qpack.HeaderField{}, c.decodeErr
		}
		if done {
			return qpack.HeaderField{}, io.EOF
		}
		done = true
		return qpack.HeaderField{Name: "block", Value: strconv.Itoa(n)}, nil
	}
}

func TestDecodeStreamInOrder(t *testing.T) {
	data := appendFrame(nil, 0, []byte("instructions"))
	data = appendFrame(data, 1, []byte("block 1"))
	data = appendFrame(data, 0, []byte("more instructions"))
	data = appendFrame(data, 2, []byte("block 2"))
	data = appendFrame(data, 3, []byte("block 3"))

	codec := &stubCodec{}
	blocks, err := DecodeStream(data, codec)
	require.NoError(t, err)
	require.Equal(t, [][]qpack.HeaderField{
		{{Name: "block", Value: "1"}},
		{{Name: "block", Value: "2"}},
		{{Name: "block", Value: "3"}},
	}, blocks)
	require.Equal(t, [][]byte{[]byte("instructions"), []byte("more instructions")}, codec.instructions)
}

// An out-of-order stream ID stops the pass without an error.
// This intentionally mirrors the behavior of existing interop runners:
// everything decoded up to the mismatch counts, the tail is dropped.
func TestDecodeStreamOutOfOrder(t *testing.T) {
	data := appendFrame(nil, 1, []byte("block 1"))
	data = appendFrame(data, 3, []byte("wrong, expected 2"))
	data = appendFrame(data, 2, []byte("never reached"))

	codec := &stubCodec{}
	blocks, err := DecodeStream(data, codec)
	require.NoError(t, err)
	require.Equal(t, [][]qpack.HeaderField{{{Name: "block", Value: "1"}}}, blocks)
	require.Equal(t, 1, codec.numBlocks)
}

func TestDecodeStreamDuplicateStreamID(t *testing.T) {
	data := appendFrame(nil, 1, []byte("block 1"))
	data = appendFrame(data, 1, []byte("duplicate"))

	blocks, err := DecodeStream(data, &stubCodec{})
	require.NoError(t, err)
	require.Len(t, blocks, 1)
}

func TestDecodeStreamEmpty(t *testing.T) {
	blocks, err := DecodeStream(nil, &stubCodec{})
	require.NoError(t, err)
	require.Empty(t, blocks)
}

func TestDecodeStreamErrors(t *testing.T) {
	instrErr := errors.New("malformed instruction")
	decodeErr := errors.New("malformed header block")

	t.Run("encoder instruction error", func(t *testing.T) {
		data := appendFrame(nil, 0, []byte("bad"))
		_, err := DecodeStream(data, &stubCodec{instrErr: instrErr})
		require.ErrorIs(t, err, instrErr)
	})

	t.Run("header block error", func(t *testing.T) {
		data := appendFrame(nil, 1, []byte("bad"))
		_, err := DecodeStream(data, &stubCodec{decodeErr: decodeErr})
		require.ErrorIs(t, err, decodeErr)
	})

	t.Run("trailing data", func(t *testing.T) {
		data := appendFrame(nil, 1, []byte("block 1"))
		data = append(data, 0xff, 0xff)
		_, err := DecodeStream(data, &stubCodec{})
		var trailing *TrailingDataError
		require.ErrorAs(t, err, &trailing)
		require.Equal(t, 2, trailing.Remaining)
	})

	t.Run("truncated frame", func(t *testing.T) {
		data := appendFrame(nil, 1, []byte("block 1"))
		_, err := DecodeStream(data[:len(data)-3], &stubCodec{})
		require.ErrorIs(t, err, ErrUnexpectedEnd)
	})
}

// Replays a handcrafted file through the real decoder: one encoder
// stream frame setting up the dynamic table, then a static-only block
// and a block referencing the inserted entry.
func TestDecodeStreamWithDecoder(t *testing.T) {
	instructions := []byte{
		0x3f, 0xe1, 0x01, // set capacity 256
		0x43, 'f', 'o', 'o', 0x03, 'b', 'a', 'r', // insert foo: bar
	}
	staticBlock := []byte{0x00, 0x00, 0xd1}  // :method: GET
	dynamicBlock := []byte{0x02, 0x00, 0x80} // Required Insert Count 1, foo: bar

	data := appendFrame(nil, 0, instructions)
	data = appendFrame(data, 1, staticBlock)
	data = appendFrame(data, 2, dynamicBlock)

	blocks, err := DecodeStream(data, qpack.NewDecoder())
	require.NoError(t, err)
	require.Equal(t, [][]qpack.HeaderField{
		{{Name: ":method", Value: "GET"}},
		{{Name: "foo", Value: "bar"}},
	}, blocks)
}
