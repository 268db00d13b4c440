package qpack

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVarIntRoundTrip(t *testing.T) {
	for n := byte(1); n <= 8; n++ {
		for _, i := range []uint64{0, 1, 10, (1 << n) - 2, (1 << n) - 1, 1 << n, 127, 128, 1337, 1 << 20, 1 << 40} {
			data := appendVarInt(nil, n, i)
			val, rest, err := readVarInt(n, data)
			require.NoError(t, err, "n: %d, i: %d", n, i)
			require.Equal(t, i, val, "n: %d", n)
			require.Empty(t, rest)
		}
	}
}

func TestVarIntLeavesRemainder(t *testing.T) {
	data := appendVarInt(nil, 5, 1234)
	data = append(data, 0xde, 0xad)
	val, rest, err := readVarInt(5, data)
	require.NoError(t, err)
	require.Equal(t, uint64(1234), val)
	require.Equal(t, []byte{0xde, 0xad}, rest)
}

func TestVarIntIncomplete(t *testing.T) {
	data := appendVarInt(nil, 4, 12345)
	for i := range data {
		_, _, err := readVarInt(4, data[:i])
		require.ErrorIs(t, err, errNeedMore)
	}
}

func TestVarIntOverflow(t *testing.T) {
	data := []byte{0xff}
	for i := 0; i < 10; i++ {
		data = append(data, 0xff)
	}
	data = append(data, 0x01)
	_, _, err := readVarInt(8, data)
	require.ErrorIs(t, err, errVarintOverflow)
}
