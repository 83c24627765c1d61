package vtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeader_FitMeasuresFirstLine(t *testing.T) {
	h := NewHeader([]string{"body"})
	h.Fit([][]Value{{"short\na much longer second line"}})
	assert.Equal(t, len("short"), h.Width(0))

	h.Resize(0, 12)
	h.Fit([][]Value{{"a value wider than twelve"}})
	assert.Equal(t, 12, h.Width(0), "resized columns are left alone")
}
