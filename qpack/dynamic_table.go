package qpack

import "fmt"

// The size of a dynamic table entry, as defined in section 3.2.1 of RFC 9204.
const entryOverhead = 32

func entrySize(hf HeaderField) uint64 {
	return uint64(len(hf.Name)) + uint64(len(hf.Value)) + entryOverhead
}

// A dynamicTable holds the entries inserted by encoder instructions.
// Entries are identified by their absolute index: the first entry ever
// inserted has index 0, regardless of how many entries have since been
// evicted.
type dynamicTable struct {
	entries  []HeaderField // entries[0] is the oldest entry still in the table
	evicted  uint64        // number of entries evicted so far
	size     uint64
	capacity uint64
	// maxEntries the Required Insert Count reconstruction is based on.
	// Derived from the largest capacity the encoder stream has set.
	maxEntries uint64
}

// inserted returns the total number of insertions performed,
// including entries that have since been evicted.
func (t *dynamicTable) inserted() uint64 {
	return t.evicted + uint64(len(t.entries))
}

func (t *dynamicTable) setCapacity(capacity uint64) {
	t.capacity = capacity
	if me := capacity / entryOverhead; me > t.maxEntries {
		t.maxEntries = me
	}
	t.evict()
}

func (t *dynamicTable) insert(hf HeaderField) error {
	size := entrySize(hf)
	if size > t.capacity {
		return decodingError{fmt.Errorf("entry of size %d exceeds table capacity %d", size, t.capacity)}
	}
	t.entries = append(t.entries, hf)
	t.size += size
	t.evict()
	return nil
}

func (t *dynamicTable) evict() {
	for t.size > t.capacity {
		t.size -= entrySize(t.entries[0])
		t.entries = t.entries[1:]
		t.evicted++
	}
}

// at looks up an entry by its absolute index.
func (t *dynamicTable) at(i uint64) (HeaderField, bool) {
	if i < t.evicted || i >= t.inserted() {
		return HeaderField{}, false
	}
	return t.entries[i-t.evicted], true
}
