package progress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBar(t *testing.T) {
	var buf bytes.Buffer
	b := New(&buf, "indexing")

	b.Start(4)
	b.Advance("a")
	b.Advance("b")
	assert.InDelta(t, 0.5, b.Percent(), 1e-9)
	b.Advance("c")
	b.Advance("d")
	b.Finish()

	assert.InDelta(t, 1.0, b.Percent(), 1e-9)
	assert.Contains(t, buf.String(), "indexing")
	assert.Contains(t, buf.String(), "4/4")
}

func TestBarEmptyScan(t *testing.T) {
	var buf bytes.Buffer
	b := New(&buf, "indexing")
	b.Start(0)
	b.Advance("x")
	b.Finish()
	assert.Zero(t, b.Percent())
	assert.Empty(t, buf.String())
}
