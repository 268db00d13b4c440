package qpack

// ParseEncoderInstructions applies a chunk of the encoder stream to the
// dynamic table. The chunk must contain complete instructions; a
// truncated or malformed instruction leaves the table in an undefined
// state and makes the Decoder unusable.
//
// Instructions are defined in section 4.3 of RFC 9204.
func (d *Decoder) ParseEncoderInstructions(p []byte) error {
	for len(p) > 0 {
		var err error
		b := p[0]
		switch {
		case b&0x80 > 0:
			p, err = d.parseInsertWithNameReference(p)
		case b&0x40 > 0:
			p, err = d.parseInsertWithLiteralName(p)
		case b&0x20 > 0:
			p, err = d.parseSetDynamicTableCapacity(p)
		default:
			p, err = d.parseDuplicate(p)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *Decoder) parseInsertWithNameReference(p []byte) ([]byte, error) {
	isStatic := p[0]&0x40 > 0
	index, p, err := readVarInt(6, p)
	if err != nil {
		return p, err
	}
	var name string
	if isStatic {
		if index >= uint64(len(staticTableEntries)) {
			return p, decodingError{invalidIndexError(index)}
		}
		name = staticTableEntries[index].Name
	} else {
		hf, ok := d.table.at(d.relativeToAbsolute(index))
		if !ok {
			return p, decodingError{invalidIndexError(index)}
		}
		name = hf.Name
	}
	value, p, err := readString(7, p)
	if err != nil {
		return p, err
	}
	return p, d.table.insert(HeaderField{Name: name, Value: value})
}

func (d *Decoder) parseInsertWithLiteralName(p []byte) ([]byte, error) {
	name, p, err := readString(5, p)
	if err != nil {
		return p, err
	}
	value, p, err := readString(7, p)
	if err != nil {
		return p, err
	}
	return p, d.table.insert(HeaderField{Name: name, Value: value})
}

func (d *Decoder) parseSetDynamicTableCapacity(p []byte) ([]byte, error) {
	capacity, p, err := readVarInt(5, p)
	if err != nil {
		return p, err
	}
	d.table.setCapacity(capacity)
	return p, nil
}

func (d *Decoder) parseDuplicate(p []byte) ([]byte, error) {
	index, p, err := readVarInt(5, p)
	if err != nil {
		return p, err
	}
	hf, ok := d.table.at(d.relativeToAbsolute(index))
	if !ok {
		return p, decodingError{invalidIndexError(index)}
	}
	return p, d.table.insert(hf)
}

// relativeToAbsolute converts an index relative to the most recently
// inserted entry, as used on the encoder stream, to an absolute index.
func (d *Decoder) relativeToAbsolute(rel uint64) uint64 {
	inserted := d.table.inserted()
	if rel >= inserted {
		// the subtraction below would wrap; return an index that
		// is guaranteed to miss the table
		return inserted
	}
	return inserted - 1 - rel
}
