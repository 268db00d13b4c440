package qpack

import (
	"fmt"
	"io"
)

// A decodingError is something the spec defines as a decoding error.
type decodingError struct {
	err error
}

func (de decodingError) Error() string {
	return fmt.Sprintf("decoding error: %v", de.err)
}

func (de decodingError) Unwrap() error { return de.err }

// An invalidIndexError is returned when an encoder references a table
// entry before the static table or after the end of the dynamic table.
type invalidIndexError int

func (e invalidIndexError) Error() string {
	return fmt.Sprintf("invalid indexed representation index %d", int(e))
}

// A RequiredInsertCountError is returned when a header block references
// insertions the encoder stream has not yet delivered. The harness
// reads each file in a single pass and cannot wait for them.
type RequiredInsertCountError struct {
	RequiredInsertCount uint64
	Inserted            uint64
}

func (e RequiredInsertCountError) Error() string {
	return fmt.Sprintf("header block requires %d insertions, only %d received", e.RequiredInsertCount, e.Inserted)
}

// A Decoder is the decoding context for incremental processing of
// header blocks. It owns the dynamic table fed by the encoder stream
// (via ParseEncoderInstructions) and consulted by Decode.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	table dynamicTable
}

// NewDecoder returns a new decoder with an empty dynamic table.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a single header block.
// It returns a function that can be called to get the next header field.
// That function returns io.EOF once all header fields in the block have
// been returned, and io.ErrUnexpectedEOF if the block is truncated.
func (d *Decoder) Decode(p []byte) func() (HeaderField, error) {
	st := &blockState{dec: d, buf: p}
	return st.next
}

// blockState is the per-header-block cursor. The prefix is parsed on
// the first call to next, so prefix errors surface like any field error.
type blockState struct {
	dec *Decoder
	buf []byte

	parsedPrefix bool
	base         uint64
	failed       bool
}

func (st *blockState) next() (HeaderField, error) {
	if st.failed {
		return HeaderField{}, fmt.Errorf("decoding previously failed")
	}
	hf, err := st.parseNext()
	if err != nil && err != io.EOF {
		st.failed = true
		if err == errNeedMore {
			err = io.ErrUnexpectedEOF
		}
	}
	return hf, err
}

func (st *blockState) parseNext() (HeaderField, error) {
	if !st.parsedPrefix {
		if err := st.parsePrefix(); err != nil {
			return HeaderField{}, err
		}
		st.parsedPrefix = true
	}
	if len(st.buf) == 0 {
		return HeaderField{}, io.EOF
	}
	b := st.buf[0]
	switch {
	case b&0x80 > 0:
		return st.parseIndexedHeaderField()
	case b&0xc0 == 0x40:
		return st.parseLiteralHeaderFieldWithNameReference()
	case b&0xe0 == 0x20:
		return st.parseLiteralHeaderFieldWithoutNameReference()
	case b&0xf0 == 0x10:
		return st.parseIndexedHeaderFieldWithPostBaseIndex()
	default: // 0000 xxxx
		return st.parseLiteralHeaderFieldWithPostBaseNameReference()
	}
}

// parsePrefix reads the Required Insert Count and the Base,
// see section 4.5.1 of RFC 9204.
func (st *blockState) parsePrefix() error {
	encodedInsertCount, rest, err := readVarInt(8, st.buf)
	if err != nil {
		return err
	}
	st.buf = rest
	reqInsertCount, err := st.dec.decodeRequiredInsertCount(encodedInsertCount)
	if err != nil {
		return err
	}
	if inserted := st.dec.table.inserted(); reqInsertCount > inserted {
		return RequiredInsertCountError{RequiredInsertCount: reqInsertCount, Inserted: inserted}
	}
	if len(st.buf) == 0 {
		return errNeedMore
	}
	signBit := st.buf[0]&0x80 > 0
	deltaBase, rest, err := readVarInt(7, st.buf)
	if err != nil {
		return err
	}
	st.buf = rest
	if signBit {
		if deltaBase+1 > reqInsertCount {
			return decodingError{fmt.Errorf("negative Base: Required Insert Count %d, Delta Base %d", reqInsertCount, deltaBase)}
		}
		st.base = reqInsertCount - deltaBase - 1
	} else {
		st.base = reqInsertCount + deltaBase
	}
	return nil
}

// decodeRequiredInsertCount reconstructs the Required Insert Count from
// its encoded form, see section 4.5.1.1 of RFC 9204.
func (d *Decoder) decodeRequiredInsertCount(encoded uint64) (uint64, error) {
	if encoded == 0 {
		return 0, nil
	}
	maxEntries := d.table.maxEntries
	fullRange := 2 * maxEntries
	if encoded > fullRange {
		return 0, decodingError{fmt.Errorf("encoded Required Insert Count %d exceeds full range %d", encoded, fullRange)}
	}
	maxValue := d.table.inserted() + maxEntries
	maxWrapped := (maxValue / fullRange) * fullRange
	reqInsertCount := maxWrapped + encoded - 1
	if reqInsertCount > maxValue {
		if reqInsertCount <= fullRange {
			return 0, decodingError{fmt.Errorf("invalid Required Insert Count %d", reqInsertCount)}
		}
		reqInsertCount -= fullRange
	}
	if reqInsertCount == 0 {
		return 0, decodingError{fmt.Errorf("invalid Required Insert Count %d", reqInsertCount)}
	}
	return reqInsertCount, nil
}

func (st *blockState) parseIndexedHeaderField() (HeaderField, error) {
	isStatic := st.buf[0]&0x40 > 0
	index, rest, err := readVarInt(6, st.buf)
	if err != nil {
		return HeaderField{}, err
	}
	st.buf = rest
	if isStatic {
		if index >= uint64(len(staticTableEntries)) {
			return HeaderField{}, decodingError{invalidIndexError(index)}
		}
		return staticTableEntries[index], nil
	}
	hf, ok := st.dynamicAt(index)
	if !ok {
		return HeaderField{}, decodingError{invalidIndexError(index)}
	}
	return hf, nil
}

func (st *blockState) parseIndexedHeaderFieldWithPostBaseIndex() (HeaderField, error) {
	index, rest, err := readVarInt(4, st.buf)
	if err != nil {
		return HeaderField{}, err
	}
	st.buf = rest
	hf, ok := st.dec.table.at(st.base + index)
	if !ok {
		return HeaderField{}, decodingError{invalidIndexError(index)}
	}
	return hf, nil
}

func (st *blockState) parseLiteralHeaderFieldWithNameReference() (HeaderField, error) {
	isStatic := st.buf[0]&0x10 > 0
	index, rest, err := readVarInt(4, st.buf)
	if err != nil {
		return HeaderField{}, err
	}
	st.buf = rest
	var hf HeaderField
	if isStatic {
		if index >= uint64(len(staticTableEntries)) {
			return HeaderField{}, decodingError{invalidIndexError(index)}
		}
		hf.Name = staticTableEntries[index].Name
	} else {
		entry, ok := st.dynamicAt(index)
		if !ok {
			return HeaderField{}, decodingError{invalidIndexError(index)}
		}
		hf.Name = entry.Name
	}
	return st.readValue(hf)
}

func (st *blockState) parseLiteralHeaderFieldWithPostBaseNameReference() (HeaderField, error) {
	index, rest, err := readVarInt(3, st.buf)
	if err != nil {
		return HeaderField{}, err
	}
	st.buf = rest
	entry, ok := st.dec.table.at(st.base + index)
	if !ok {
		return HeaderField{}, decodingError{invalidIndexError(index)}
	}
	return st.readValue(HeaderField{Name: entry.Name})
}

func (st *blockState) parseLiteralHeaderFieldWithoutNameReference() (HeaderField, error) {
	name, rest, err := readString(3, st.buf)
	if err != nil {
		return HeaderField{}, err
	}
	st.buf = rest
	return st.readValue(HeaderField{Name: name})
}

func (st *blockState) readValue(hf HeaderField) (HeaderField, error) {
	value, rest, err := readString(7, st.buf)
	if err != nil {
		return HeaderField{}, err
	}
	st.buf = rest
	hf.Value = value
	return hf, nil
}

// dynamicAt resolves an index relative to the Base,
// as used inside header blocks.
func (st *blockState) dynamicAt(rel uint64) (HeaderField, bool) {
	if rel >= st.base {
		return HeaderField{}, false
	}
	return st.dec.table.at(st.base - 1 - rel)
}
