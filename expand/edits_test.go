package expand

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEditListApply(t *testing.T) {
	src := []byte("for x { } else { }")

	var el editList
	el.insert(0, "{ f := true; ")
	el.replace(10, 14, "; if f")
	el.insert(18, " }")

	assert.Equal(t, "{ f := true; for x { } ; if f { } }", string(el.apply(src)))
}

func TestEditListInsertOrder(t *testing.T) {
	var el editList
	el.insert(1, "b")
	el.insert(1, "c")
	el.insert(0, "a")

	assert.Equal(t, "axbc", string(el.apply([]byte("x"))))
}

func TestEditListMapOffsets(t *testing.T) {
	src := []byte("for x { } else { }")

	var el editList
	el.insert(0, "{ f := true; ")
	el.replace(10, 14, "; if f")

	out := el.apply(src)

	// the `for` keyword follows the inserted text
	forOffset := el.mapOffset(0)
	assert.Equal(t, "for", string(out[forOffset:forOffset+3]))

	lbrace := el.mapOffset(15)
	assert.Equal(t, byte('{'), out[lbrace])
	assert.Equal(t, 15, el.unmapOffset(lbrace))

	// offsets inside inserted or replacement text map to the edit
	assert.Equal(t, 0, el.unmapOffset(3))
	assert.Equal(t, 10, el.unmapOffset(el.mapOffset(10)+2))
}

func TestGensym(t *testing.T) {
	idents := map[string]struct{}{"_f0": {}, "_f2": {}}
	g := newGensym("_f", idents, []string{"_f3"})

	assert.Equal(t, "_f1", g.next())
	assert.Equal(t, "_f4", g.next())
	assert.Equal(t, "_f5", g.next())
}
