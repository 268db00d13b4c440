package interop

import (
	"encoding/binary"
	"io"
)

// frameHeaderLen is the length of a frame header:
// an 8-byte stream ID followed by a 4-byte payload length,
// both in network byte order.
const frameHeaderLen = 12

// A Frame is one record of an encoded file: the payload of either the
// encoder stream (stream ID 0) or a single header block (stream ID > 0).
//
// The payload borrows from the parser's buffer and is only valid until
// the next call to Next.
type Frame struct {
	StreamID uint64
	Payload  []byte
}

// A FrameParser yields the frames of an encoded file, in order.
// It reads forward only and cannot be reset.
type FrameParser struct {
	buf  []byte
	skip int // payload length of the previously returned frame
}

// NewFrameParser returns a parser reading from data.
// The parser borrows data for its entire lifetime.
func NewFrameParser(data []byte) *FrameParser {
	return &FrameParser{buf: data}
}

// Next returns the next frame. It returns io.EOF after the last frame.
// If bytes remain but don't form a complete frame, it returns a
// *TrailingDataError; if a frame header declares more payload than
// remains, it returns ErrUnexpectedEnd.
func (p *FrameParser) Next() (Frame, error) {
	p.buf = p.buf[p.skip:]
	p.skip = 0
	if len(p.buf) < frameHeaderLen {
		if len(p.buf) == 0 {
			return Frame{}, io.EOF
		}
		return Frame{}, &TrailingDataError{Remaining: len(p.buf)}
	}
	streamID := binary.BigEndian.Uint64(p.buf[:8])
	length := binary.BigEndian.Uint32(p.buf[8:frameHeaderLen])
	p.buf = p.buf[frameHeaderLen:]
	if uint64(len(p.buf)) < uint64(length) {
		return Frame{}, ErrUnexpectedEnd
	}
	p.skip = int(length)
	return Frame{StreamID: streamID, Payload: p.buf[:length]}, nil
}
