package interop

import (
	"github.com/quic-go/qpack-interop/interop"
	"github.com/quic-go/qpack-interop/qpack"
)

func Fuzz(data []byte) int {
	blocks, err := interop.DecodeStream(data, qpack.NewDecoder())
	if err != nil {
		return 0
	}
	if len(blocks) == 0 {
		return 0
	}
	return 1
}
