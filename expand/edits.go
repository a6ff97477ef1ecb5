package expand

import (
	"bytes"
	"sort"
)

// edit replaces the source bytes in [start, end) with text.  An insertion is an
// edit with start == end.
type edit struct {
	start, end int
	text       string

	// seq orders edits at the same offset by the order they were added.
	seq int
}

// editList is a set of non-overlapping edits to a source buffer.  Offsets
// always refer to the buffer before any edit is applied.
type editList struct {
	edits  []edit
	sorted bool
}

func (el *editList) insert(offset int, text string) {
	el.replace(offset, offset, text)
}

func (el *editList) replace(start, end int, text string) {
	el.edits = append(el.edits, edit{start: start, end: end, text: text, seq: len(el.edits)})
	el.sorted = false
}

func (el *editList) sort() {
	if !el.sorted {
		sort.Slice(el.edits, func(i, j int) bool {
			a, b := el.edits[i], el.edits[j]
			if a.start != b.start {
				return a.start < b.start
			}

			return a.seq < b.seq
		})
		el.sorted = true
	}
}

// apply returns a copy of src with every edit applied.
func (el *editList) apply(src []byte) []byte {
	el.sort()

	var buf bytes.Buffer
	buf.Grow(len(src) + 64*len(el.edits))

	last := 0
	for _, e := range el.edits {
		buf.Write(src[last:e.start])
		buf.WriteString(e.text)
		last = e.end
	}
	buf.Write(src[last:])

	return buf.Bytes()
}

// mapOffset converts an offset in the original buffer into an offset in the
// edited buffer.  Text inserted at an offset precedes the original byte at that
// offset.
func (el *editList) mapOffset(offset int) int {
	el.sort()

	delta := 0
	for _, e := range el.edits {
		if e.end > offset {
			break
		}

		delta += len(e.text) - (e.end - e.start)
	}

	return offset + delta
}

// unmapOffset converts an offset in the edited buffer back into an offset in
// the original buffer.  Offsets falling inside replacement text map to the
// start of the edit.
func (el *editList) unmapOffset(offset int) int {
	el.sort()

	delta := 0
	for _, e := range el.edits {
		newStart := e.start + delta
		if offset < newStart {
			break
		}

		if offset < newStart+len(e.text) {
			return e.start
		}

		delta += len(e.text) - (e.end - e.start)
	}

	return offset - delta
}
