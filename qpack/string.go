package qpack

import "golang.org/x/net/http2/hpack"

// readString reads a length-prefixed string literal off the beginning
// of p. n is the length of the integer prefix; the bit directly above
// it marks the string as Huffman-encoded.
func readString(n byte, p []byte) (string, []byte, error) {
	if len(p) == 0 {
		return "", p, errNeedMore
	}
	usesHuffman := p[0]&(1<<n) > 0
	l, p, err := readVarInt(n, p)
	if err != nil {
		return "", p, err
	}
	if uint64(len(p)) < l {
		return "", p, errNeedMore
	}
	var s string
	if usesHuffman {
		s, err = hpack.HuffmanDecodeToString(p[:l])
		if err != nil {
			return "", p, decodingError{err}
		}
	} else {
		s = string(p[:l])
	}
	return s, p[l:], nil
}
