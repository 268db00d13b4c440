package interop

import (
	"io"

	"github.com/quic-go/qpack-interop/qpack"
)

// A Codec is the decoder an encoded file is replayed through.
// *qpack.Decoder implements it.
type Codec interface {
	// ParseEncoderInstructions applies one encoder stream chunk to the
	// codec's table state.
	ParseEncoderInstructions(p []byte) error
	// Decode decodes a single header block. The returned function
	// yields the block's fields and io.EOF when done.
	Decode(p []byte) func() (qpack.HeaderField, error)
}

// DecodeStream replays one encoded file through codec and returns the
// decoded header blocks, in stream ID order.
//
// Frames on stream 0 feed the encoder stream. Any other stream ID must
// be exactly one above the number of blocks decoded so far; when it
// isn't, DecodeStream stops and returns the blocks accumulated up to
// that point without an error. Upstream implementations of this
// harness behave the same way, so a file whose tail is out of order
// counts as a (partial) success rather than a failure. Parser and
// codec errors do abort the file.
func DecodeStream(data []byte, codec Codec) ([][]qpack.HeaderField, error) {
	parser := NewFrameParser(data)
	var blocks [][]qpack.HeaderField
	for {
		frame, err := parser.Next()
		if err == io.EOF {
			return blocks, nil
		}
		if err != nil {
			return nil, err
		}

		if frame.StreamID == 0 {
			if err := codec.ParseEncoderInstructions(frame.Payload); err != nil {
				return nil, err
			}
			continue
		}

		if frame.StreamID != uint64(len(blocks))+1 {
			return blocks, nil
		}

		var fields []qpack.HeaderField
		next := codec.Decode(frame.Payload)
		for {
			hf, err := next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, err
			}
			fields = append(fields, hf)
		}
		blocks = append(blocks, fields)
	}
}
